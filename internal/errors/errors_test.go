package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestToHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, http.StatusOK},
		{"validation", ErrValidation, http.StatusBadRequest},
		{"user exists", ErrUserExists, http.StatusConflict},
		{"user not found", ErrUserNotFound, http.StatusNotFound},
		{"invalid credentials", ErrInvalidCredentials, http.StatusUnauthorized},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"invalid token", ErrInvalidToken, http.StatusUnauthorized},
		{"upload failed", ErrUpload, http.StatusInternalServerError},
		{"internal", ErrInternal, http.StatusInternalServerError},
		{"wrapped sentinel", WrapError(ErrUserNotFound, errors.New("row missing")), http.StatusNotFound},
		{"plain error", errors.New("something"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToHTTPStatus(tt.err); got != tt.want {
				t.Errorf("Expected status %d, got %d", tt.want, got)
			}
		})
	}
}

func TestWrappedErrorMatchesSentinel(t *testing.T) {
	cause := errors.New("underlying cause")
	wrapped := WrapError(ErrInternal, cause)

	if !errors.Is(wrapped, ErrInternal) {
		t.Error("Expected wrapped error to match its sentinel")
	}
	if !errors.Is(wrapped, cause) {
		t.Error("Expected wrapped error to unwrap to its cause")
	}
	if errors.Is(wrapped, ErrValidation) {
		t.Error("Expected no match against a different sentinel")
	}
}

func TestWithMessageKeepsCode(t *testing.T) {
	err := WithMessage(ErrValidation, "avatar image is required")

	if !errors.Is(err, ErrValidation) {
		t.Error("Expected the substituted message to keep the sentinel code")
	}
	if got := GetErrorMessage(err); got != "avatar image is required" {
		t.Errorf("Expected the substituted message, got %q", got)
	}
}

func TestGetErrorMessage(t *testing.T) {
	if got := GetErrorMessage(nil); got != "" {
		t.Errorf("Expected empty message for nil, got %q", got)
	}
	if got := GetErrorMessage(ErrUserNotFound); got != "user not found" {
		t.Errorf("Expected sentinel message, got %q", got)
	}
	// Wrapping must not leak the cause into the caller-facing message.
	wrapped := WrapError(ErrInternal, errors.New("pq: connection refused"))
	if got := GetErrorMessage(wrapped); got != "internal server error" {
		t.Errorf("Expected the domain message only, got %q", got)
	}
	if got := GetErrorMessage(errors.New("plain")); got != "plain" {
		t.Errorf("Expected the raw message for non-domain errors, got %q", got)
	}
}

func TestDomainErrorString(t *testing.T) {
	if got := ErrUpload.Error(); got != "media upload failed" {
		t.Errorf("Expected bare message, got %q", got)
	}

	wrapped := WrapError(ErrUpload, errors.New("bucket missing"))
	if got := wrapped.Error(); got != "media upload failed: bucket missing" {
		t.Errorf("Expected message with cause, got %q", got)
	}
}
