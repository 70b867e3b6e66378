package validation

import (
	"strings"
	"testing"
)

func TestCredentialsValidator_ValidateCredentials(t *testing.T) {
	cv := NewCredentialsValidator()

	tests := []struct {
		name       string
		username   string
		password   string
		wantFields []string
	}{
		{"Valid", "ann", "secret", nil},
		{"Password with spaces", "ann", " pass phrase ", nil},
		{"Empty username", "  ", "secret", []string{"username"}},
		{"Empty password", "ann", "", []string{"password"}},
		{"Both empty", "", "", []string{"username", "password"}},
		{"Username too long", strings.Repeat("u", 300), "secret", []string{"username"}},
		{"Username control char", "an\nn", "secret", []string{"username"}},
		{"Password too long", "ann", strings.Repeat("p", 300), []string{"password"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cv.ValidateCredentials(tt.username, tt.password)
			if tt.wantFields == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			ve, ok := err.(*ValidationError)
			if !ok {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if len(ve.Errors) != len(tt.wantFields) {
				t.Fatalf("got %d errors, expected %d: %v", len(ve.Errors), len(tt.wantFields), ve)
			}
			for i, field := range tt.wantFields {
				if ve.Errors[i].Field != field {
					t.Errorf("error %d field = %q, expected %q", i, ve.Errors[i].Field, field)
				}
			}
		})
	}
}
