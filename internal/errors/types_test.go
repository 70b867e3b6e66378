package errors

import (
	"errors"
	"testing"
)

func TestErrorType_String(t *testing.T) {
	tests := []struct {
		name      string
		errorType ErrorType
		expected  string
	}{
		{"Validation", ErrorTypeValidation, "validation"},
		{"NotFound", ErrorTypeNotFound, "not_found"},
		{"Storage", ErrorTypeStorage, "storage"},
		{"InvalidInput", ErrorTypeInvalidInput, "invalid_input"},
		{"Timeout", ErrorTypeTimeout, "timeout"},
		{"AuthInvalid", ErrorTypeAuthInvalid, "auth_invalid"},
		{"Network", ErrorTypeNetwork, "network"},
		{"Remote", ErrorTypeRemote, "remote"},
		{"Decode", ErrorTypeDecode, "decode"},
		{"NotAuthenticated", ErrorTypeNotAuthenticated, "not_authenticated"},
		{"Unknown", ErrorType(999), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.errorType.String()
			if result != tt.expected {
				t.Errorf("ErrorType.String() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appError *AppError
		expected string
	}{
		{
			name: "Error without cause",
			appError: &AppError{
				Type:    ErrorTypeValidation,
				Message: "invalid input",
			},
			expected: "validation: invalid input",
		},
		{
			name: "Error with cause",
			appError: &AppError{
				Type:    ErrorTypeStorage,
				Message: "write failed",
				Cause:   errors.New("disk full"),
			},
			expected: "storage: write failed (caused by: disk full)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.appError.Error()
			if result != tt.expected {
				t.Errorf("AppError.Error() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("original error")
	appError := &AppError{
		Type:    ErrorTypeNetwork,
		Message: "wrapped error",
		Cause:   cause,
	}

	if appError.Unwrap() != cause {
		t.Errorf("AppError.Unwrap() = %v, want %v", appError.Unwrap(), cause)
	}
	if !errors.Is(appError, cause) {
		t.Errorf("errors.Is should see the cause through Unwrap")
	}
}

func TestAppError_Is(t *testing.T) {
	appError1 := &AppError{Type: ErrorTypeAuthInvalid, Code: "AUTH_INVALID"}
	appError2 := &AppError{Type: ErrorTypeAuthInvalid, Code: "AUTH_INVALID"}
	appError3 := &AppError{Type: ErrorTypeRemote, Code: "REMOTE_ERROR"}
	regularError := errors.New("regular error")

	tests := []struct {
		name     string
		err      *AppError
		target   error
		expected bool
	}{
		{"Same type and code", appError1, appError2, true},
		{"Different type", appError1, appError3, false},
		{"Regular error", appError1, regularError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.err.Is(tt.target)
			if result != tt.expected {
				t.Errorf("AppError.Is() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestAppError_WithContext(t *testing.T) {
	appError := &AppError{Type: ErrorTypeValidation, Message: "test error"}

	result := appError.WithContext("field", "username")
	if result != appError {
		t.Errorf("WithContext should return the same instance")
	}
	if appError.Context["field"] != "username" {
		t.Errorf("Context should contain the added key-value pair")
	}

	value, exists := appError.GetContext("field")
	if !exists || value != "username" {
		t.Errorf("GetContext should return the stored value")
	}

	appError.Context = nil
	if _, exists := appError.GetContext("field"); exists {
		t.Errorf("GetContext should return false when context is nil")
	}
}
