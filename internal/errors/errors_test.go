package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "error without cause",
			err:  &AppError{Code: ErrCodeNotFound, Message: "resource not found"},
			want: "resource not found",
		},
		{
			name: "error with cause",
			err: &AppError{
				Code:    ErrCodeInternal,
				Message: "failed to process",
				Cause:   errors.New("underlying error"),
			},
			want: "failed to process: underlying error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("AppError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := &AppError{Code: ErrCodeInternal, Message: "wrapped error", Cause: cause}

	if unwrapped := err.Unwrap(); !errors.Is(unwrapped, cause) {
		t.Errorf("AppError.Unwrap() = %v, want %v", unwrapped, cause)
	}
}

func TestFromStatus(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorCode
	}{
		{http.StatusUnauthorized, ErrCodeUnauthorized},
		{http.StatusForbidden, ErrCodeForbidden},
		{http.StatusNotFound, ErrCodeNotFound},
		{http.StatusConflict, ErrCodeConflict},
		{http.StatusBadRequest, ErrCodeValidation},
		{http.StatusUnprocessableEntity, ErrCodeValidation},
		{http.StatusGatewayTimeout, ErrCodeTimeout},
		{http.StatusBadGateway, ErrCodeTransport},
		{http.StatusInternalServerError, ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := FromStatus(tt.status, "")
			if err.Code != tt.want {
				t.Errorf("FromStatus(%d).Code = %v, want %v", tt.status, err.Code, tt.want)
			}
			if err.Status != tt.status {
				t.Errorf("FromStatus(%d).Status = %v", tt.status, err.Status)
			}
			if err.Message != http.StatusText(tt.status) {
				t.Errorf("FromStatus(%d).Message = %q", tt.status, err.Message)
			}
		})
	}
}

func TestFromStatus_KeepsBackendMessage(t *testing.T) {
	err := FromStatus(http.StatusBadRequest, "cannot delete posting with applicants")
	if err.Message != "cannot delete posting with applicants" {
		t.Errorf("FromStatus().Message = %q", err.Message)
	}
	if GetCode(err) != ErrCodeValidation {
		t.Errorf("expected validation error, got %v", err.Code)
	}
}

func TestFromTransport(t *testing.T) {
	if FromTransport(nil) != nil {
		t.Fatal("FromTransport(nil) should be nil")
	}

	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"canceled", fmt.Errorf("do: %w", context.Canceled), ErrCodeCanceled},
		{"deadline", fmt.Errorf("do: %w", context.DeadlineExceeded), ErrCodeTimeout},
		{"dial", errors.New("dial tcp 127.0.0.1:8080: connect: connection refused"), ErrCodeTransport},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromTransport(tt.err).Code; got != tt.want {
				t.Errorf("FromTransport().Code = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifiers(t *testing.T) {
	wrapped := fmt.Errorf("login: %w", Unauthorized("bad credentials"))
	if !IsUnauthorized(wrapped) {
		t.Error("IsUnauthorized should see through fmt.Errorf wrapping")
	}
	if IsTransport(wrapped) {
		t.Error("an auth failure must not be reported as transport")
	}

	timeout := FromTransport(context.DeadlineExceeded)
	if !IsTransport(timeout) || GetCode(timeout) != ErrCodeTimeout {
		t.Error("timeouts count as transport failures")
	}
	if !IsTransport(FromStatus(http.StatusServiceUnavailable, "")) {
		t.Error("a 503 from the backend counts as transport")
	}
	if IsTransport(FromStatus(http.StatusInternalServerError, "")) {
		t.Error("a 500 is a server error, not a transport failure")
	}
	if !IsCanceled(context.Canceled) {
		t.Error("IsCanceled should accept a bare context.Canceled")
	}
	if !IsForbidden(FromStatus(http.StatusForbidden, "")) {
		t.Error("a 403 should classify as forbidden")
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(cause, ErrCodeInternal, "wrapped error")

	if err.Code != ErrCodeInternal {
		t.Errorf("Wrap().Code = %v, want %v", err.Code, ErrCodeInternal)
	}
	if err.Message != "wrapped error" {
		t.Errorf("Wrap().Message = %v, want %v", err.Message, "wrapped error")
	}
	if !errors.Is(err, cause) {
		t.Errorf("Wrap() does not unwrap to %v", cause)
	}
	if Wrap(nil, ErrCodeInternal, "x") != nil {
		t.Error("Wrap(nil) should be nil")
	}
}

func TestGetters(t *testing.T) {
	err := fmt.Errorf("ctx: %w", FromStatus(http.StatusBadRequest, "title is required"))
	if GetCode(err) != ErrCodeValidation {
		t.Errorf("GetCode() = %v", GetCode(err))
	}
	if GetMessage(err) != "title is required" {
		t.Errorf("GetMessage() = %v", GetMessage(err))
	}
	if GetStatus(FromStatus(http.StatusConflict, "dup")) != http.StatusConflict {
		t.Error("GetStatus() lost the backend status")
	}
	if GetCode(errors.New("plain")) != "" {
		t.Error("GetCode() on a plain error should be empty")
	}
}
