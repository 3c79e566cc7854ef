package claude

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// cliEnvelope is the Claude CLI --output-format json wrapper.
type cliEnvelope struct {
	Type      string `json:"type"`
	Result    string `json:"result"`
	SessionID string `json:"session_id"`
	IsError   bool   `json:"is_error"`
}

// ParseResponse unwraps raw CLI output into the response content and session
// identifier. Output that is not the CLI envelope is returned as-is, so
// callers can also feed pre-extracted content through.
func ParseResponse(raw []byte) (content string, sessionID string, err error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return "", "", fmt.Errorf("empty claude output")
	}

	var envelope cliEnvelope
	if jsonErr := json.Unmarshal([]byte(trimmed), &envelope); jsonErr == nil && envelope.Result != "" {
		if envelope.IsError {
			return "", envelope.SessionID, fmt.Errorf("claude reported an error: %s", truncate(envelope.Result, 200))
		}
		return strings.TrimSpace(envelope.Result), envelope.SessionID, nil
	}

	return trimmed, "", nil
}

var fencedJSONPattern = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// ExtractJSON pulls a JSON object out of mixed content: a fenced code block
// first, then the first balanced object literal.
func ExtractJSON(content string) (string, bool) {
	if m := fencedJSONPattern.FindStringSubmatch(content); m != nil {
		return m[1], true
	}

	start := strings.Index(content, "{")
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(content); i++ {
		c := content[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return content[start : i+1], true
			}
		}
	}
	return "", false
}

var scorePattern = regexp.MustCompile(`(?i)"?score"?\s*[:=]\s*(\d+(?:\.\d+)?)`)

// ExtractScore is the last-resort parser for malformed agent responses: it
// regex-matches a score field and returns it clamped to [0,10].
func ExtractScore(content string) (float64, bool) {
	m := scorePattern.FindStringSubmatch(content)
	if m == nil {
		return 0, false
	}
	s, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	if s < 0 {
		s = 0
	}
	if s > 10 {
		s = 10
	}
	return s, true
}

// Unmarshal decodes content into result, trying the content directly and
// then falling back to JSON extraction from mixed prose.
func Unmarshal(content string, result any) error {
	if err := json.Unmarshal([]byte(content), result); err == nil {
		return nil
	}
	extracted, ok := ExtractJSON(content)
	if !ok {
		return fmt.Errorf("no JSON object found in response (content: %s)", truncate(content, 200))
	}
	if err := json.Unmarshal([]byte(extracted), result); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w (content: %s)", err, truncate(extracted, 200))
	}
	return nil
}
