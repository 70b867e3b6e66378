package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestConstructors(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name     string
		err      *AppError
		wantType ErrorType
		wantCode string
		wantMsg  string
	}{
		{"validation", NewValidationError("validation failed", cause), ErrorTypeValidation, "VALIDATION_FAILED", "validation failed"},
		{"not found", NewNotFoundError("route", "/nope"), ErrorTypeNotFound, "NOT_FOUND", "route not found: /nope"},
		{"storage", NewStorageError("set token", cause), ErrorTypeStorage, "STORAGE_ERROR", "storage operation failed: set token"},
		{"invalid input", NewInvalidInputError("priority", 9, "must be between 0 and 3"), ErrorTypeInvalidInput, "INVALID_INPUT", "invalid input for priority: must be between 0 and 3"},
		{"timeout", NewTimeoutError("GET /api/tasks", cause), ErrorTypeTimeout, "TIMEOUT", "operation timed out: GET /api/tasks"},
		{"auth invalid", NewAuthInvalidError("GET /api/tasks", cause), ErrorTypeAuthInvalid, "AUTH_INVALID", "session is no longer valid: GET /api/tasks"},
		{"network", NewNetworkError("POST /api/tasks", cause), ErrorTypeNetwork, "NETWORK_ERROR", "request failed: POST /api/tasks"},
		{"remote", NewRemoteError("POST /api/tasks", 500, cause), ErrorTypeRemote, "REMOTE_ERROR", "server rejected POST /api/tasks with status 500"},
		{"decode", NewDecodeError("login response", cause), ErrorTypeDecode, "DECODE_ERROR", "malformed login response"},
		{"not authenticated", NewNotAuthenticatedError("list tasks"), ErrorTypeNotAuthenticated, "NOT_AUTHENTICATED", "not logged in: list tasks requires a session"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Type != tt.wantType {
				t.Errorf("type = %v, want %v", tt.err.Type, tt.wantType)
			}
			if tt.err.Code != tt.wantCode {
				t.Errorf("code = %v, want %v", tt.err.Code, tt.wantCode)
			}
			if tt.err.Message != tt.wantMsg {
				t.Errorf("message = %v, want %v", tt.err.Message, tt.wantMsg)
			}
		})
	}
}

func TestNewRemoteError_Context(t *testing.T) {
	err := NewRemoteError("GET /api/tasks", 502, nil)

	status, ok := err.GetContext("status")
	if !ok || status != 502 {
		t.Errorf("NewRemoteError should set status context")
	}
}

func TestWrapError(t *testing.T) {
	cause := errors.New("original error")
	err := WrapError(cause, ErrorTypeStorage, "wrapped message")

	if err.Type != ErrorTypeStorage {
		t.Errorf("WrapError type = %v, want %v", err.Type, ErrorTypeStorage)
	}
	if err.Code != "storage" {
		t.Errorf("WrapError code = %v, want %v", err.Code, "storage")
	}
	if err.Cause != cause {
		t.Errorf("WrapError cause = %v, want %v", err.Cause, cause)
	}
}

func TestAsAppError_ThroughWrapping(t *testing.T) {
	inner := NewAuthInvalidError("GET /api/tasks", nil)
	wrapped := fmt.Errorf("fetch dashboard: %w", inner)

	result, ok := AsAppError(wrapped)
	if !ok || result != inner {
		t.Errorf("AsAppError should find the AppError through fmt wrapping")
	}
	if !IsAuthInvalid(wrapped) {
		t.Errorf("IsAuthInvalid should be true for wrapped auth failure")
	}
	if IsAuthInvalid(errors.New("plain")) {
		t.Errorf("IsAuthInvalid should be false for plain errors")
	}
	if IsAppError(nil) {
		t.Errorf("IsAppError should return false for nil")
	}
}

func TestGetUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"Validation error", NewValidationError("title is required", nil), "title is required"},
		{"Storage error", NewStorageError("get", errors.New("locked")), "Local session storage failed. Please try again."},
		{"Timeout error", NewTimeoutError("query", nil), "The operation timed out. Please try again."},
		{"Auth invalid", NewAuthInvalidError("GET /api/tasks", nil), "Your session has expired. Run 'tb login' to sign in again."},
		{"Not authenticated", NewNotAuthenticatedError("list tasks"), "You are not logged in. Run 'tb login' first."},
		{"Remote with cause", NewRemoteError("POST /api/users/register", 409, errors.New("username taken")), "server rejected POST /api/users/register with status 409: username taken"},
		{"Decode", NewDecodeError("task", nil), "The server sent a response that could not be understood."},
		{"Regular error", errors.New("regular error"), "regular error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := GetUserMessage(tt.err)
			if result != tt.expected {
				t.Errorf("GetUserMessage() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestGetErrorCode(t *testing.T) {
	if GetErrorCode(NewDecodeError("user", nil)) != "DECODE_ERROR" {
		t.Errorf("GetErrorCode should return correct code for AppError")
	}
	if GetErrorCode(errors.New("regular error")) != "UNKNOWN_ERROR" {
		t.Errorf("GetErrorCode should return UNKNOWN_ERROR for regular error")
	}
}

func TestShouldLogError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"Validation error", NewValidationError("invalid input", nil), false},
		{"Invalid input error", NewInvalidInputError("status", "x", "unknown"), false},
		{"Auth invalid", NewAuthInvalidError("GET /api/tasks", nil), false},
		{"Not authenticated", NewNotAuthenticatedError("list tasks"), false},
		{"Storage error", NewStorageError("set", errors.New("io")), true},
		{"Network error", NewNetworkError("GET /api/tasks", errors.New("refused")), true},
		{"Regular error", errors.New("regular error"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ShouldLogError(tt.err)
			if result != tt.expected {
				t.Errorf("ShouldLogError() = %v, want %v", result, tt.expected)
			}
		})
	}
}
