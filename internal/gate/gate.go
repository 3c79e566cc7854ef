// Package gate carries the caller-supplied usage decision consumed by the
// orchestrator. Quota and billing logic live outside this repository; the
// audit core only reads the booleans and degrades gracefully.
package gate

// Decision is the caller's verdict on what this run may do.
type Decision struct {
	// AuditAllowed is false when the caller's remaining quota is exhausted.
	AuditAllowed bool

	// ValidationAuthorized is false when the caller's tier does not include
	// the validation pipeline.
	ValidationAuthorized bool

	// Tier is the caller's plan label, echoed into results.
	Tier string
}

// Unrestricted permits everything. Used when no gate provider is wired in.
func Unrestricted() Decision {
	return Decision{AuditAllowed: true, ValidationAuthorized: true}
}

// Resolve reconciles the requested configuration with the decision. It
// returns whether validation should run and a warning when a requested
// feature had to be disabled.
func (d Decision) Resolve(validateRequested bool) (validate bool, warning string) {
	if !validateRequested {
		return false, ""
	}
	if !d.ValidationAuthorized {
		return false, "validation requested but not authorized for this tier, continuing without it"
	}
	return true, ""
}
