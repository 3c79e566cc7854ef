package models

import "time"

// CommandOutcome is the result of one bounded external-process invocation.
// It is a value type with no identity; every probe produces a fresh instance.
type CommandOutcome struct {
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`

	// ExitCode is nil when the process could not be observed to exit
	// (spawn failure or timeout). Callers must treat nil as "could not
	// complete", distinct from a non-zero exit.
	ExitCode *int `json:"exit_code"`

	// TimedOut is true when the invocation was killed by its deadline.
	TimedOut bool `json:"timed_out"`

	Duration time.Duration `json:"duration"`
}

// Completed reports whether the process was observed to exit at all.
func (o CommandOutcome) Completed() bool {
	return o.ExitCode != nil
}

// Succeeded reports a clean completion: the process exited with code zero.
// An unobservable exit is never a success.
func (o CommandOutcome) Succeeded() bool {
	return o.ExitCode != nil && *o.ExitCode == 0
}

// FailedCleanly reports a non-zero exit, the expected shape for a tool
// rejecting invalid input.
func (o CommandOutcome) FailedCleanly() bool {
	return o.ExitCode != nil && *o.ExitCode != 0
}
