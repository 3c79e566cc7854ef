package gate

import "testing"

func TestResolve(t *testing.T) {
	tests := []struct {
		name         string
		decision     Decision
		requested    bool
		wantValidate bool
		wantWarning  bool
	}{
		{"authorized and requested", Unrestricted(), true, true, false},
		{"authorized, not requested", Unrestricted(), false, false, false},
		{"unauthorized and requested", Decision{AuditAllowed: true}, true, false, true},
		{"unauthorized, not requested", Decision{AuditAllowed: true}, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validate, warning := tt.decision.Resolve(tt.requested)
			if validate != tt.wantValidate {
				t.Errorf("validate = %v, want %v", validate, tt.wantValidate)
			}
			if (warning != "") != tt.wantWarning {
				t.Errorf("warning = %q, wantWarning = %v", warning, tt.wantWarning)
			}
		})
	}
}
