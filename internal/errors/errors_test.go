package errors

import (
	"errors"
	"fmt"
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
			err: &AppError{
				Code:    ErrCodeNotFound,
				Message: "resource not found",
			},
			want: "resource not found",
		},
		{
			name: "error with cause",
			err: &AppError{
				Code:    ErrCodeRequestFailed,
				Message: "Login failed",
				Cause:   errors.New("connection refused"),
			},
			want: "Login failed: connection refused",
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
	err := Wrap(cause, ErrCodeInternal, "wrapped error")

	if !errors.Is(err, cause) {
		t.Errorf("errors.Is(Wrap(cause), cause) = false, want true")
	}
}

func TestWrap_NilError(t *testing.T) {
	if err := Wrap(nil, ErrCodeInternal, "ignored"); err != nil {
		t.Errorf("Wrap(nil) = %v, want nil", err)
	}
}

func TestRequestFailed(t *testing.T) {
	cause := errors.New("status 409")
	err := RequestFailed("Email already registered", 409, cause)

	if !IsRequestFailed(err) {
		t.Fatalf("RequestFailed().Code = %v, want %v", err.Code, ErrCodeRequestFailed)
	}
	if err.Status != 409 {
		t.Errorf("RequestFailed().Status = %d, want 409", err.Status)
	}
	if got := UserMessage(err, "fallback"); got != "Email already registered" {
		t.Errorf("UserMessage() = %q, want server message", got)
	}

	wrapped := fmt.Errorf("register: %w", err)
	if !IsRequestFailed(wrapped) {
		t.Errorf("IsRequestFailed should see through fmt.Errorf wrapping")
	}
}

func TestValidationFields(t *testing.T) {
	if err := ValidationFields("Please fix the errors in the form", nil); err != nil {
		t.Fatalf("ValidationFields(nil) = %v, want nil", err)
	}

	fields := map[string]string{"title": "Title is required"}
	err := ValidationFields("Please fix the errors in the form", fields)
	fields["title"] = "mutated"

	if !IsValidation(err) {
		t.Fatalf("ValidationFields().Code = %v, want validation", err.Code)
	}
	got := GetFields(err)
	if got["title"] != "Title is required" {
		t.Errorf("GetFields()[title] = %q, want copy of original message", got["title"])
	}
}

func TestValidationField(t *testing.T) {
	err := ValidationField("email", "Email is required")
	if GetField(err) != "email" {
		t.Errorf("GetField() = %q, want email", GetField(err))
	}
	if GetFields(err)["email"] != "Email is required" {
		t.Errorf("GetFields() should include the single field")
	}
}

func TestIsHelpers(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{name: "not found", err: NotFound("missing"), check: IsNotFound, want: true},
		{name: "not found formatted", err: NotFoundf("job %d missing", 3), check: IsNotFound, want: true},
		{name: "conflict", err: Conflict("dup"), check: IsConflict, want: true},
		{name: "validation", err: Validation("bad"), check: IsValidation, want: true},
		{name: "transition", err: InvalidTransition("not editing"), check: IsInvalidTransition, want: true},
		{name: "internal", err: Internal("boom"), check: IsInternal, want: true},
		{name: "timeout", err: &AppError{Code: ErrCodeTimeout}, check: IsTimeout, want: true},
		{name: "canceled", err: &AppError{Code: ErrCodeCanceled}, check: IsCanceled, want: true},
		{name: "plain error", err: errors.New("plain"), check: IsNotFound, want: false},
		{name: "nil", err: nil, check: IsRequestFailed, want: false},
		{name: "wrong code", err: Conflict("dup"), check: IsValidation, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.check(tt.err); got != tt.want {
				t.Errorf("check(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(Wrapf(errors.New("x"), ErrCodeInternal, "op %s", "save")); got != ErrCodeInternal {
		t.Errorf("GetCode() = %v, want %v", got, ErrCodeInternal)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode(plain) = %v, want empty", got)
	}
}

func TestUserMessage_Fallback(t *testing.T) {
	if got := UserMessage(errors.New("dial tcp: refused"), "Failed to fetch user"); got != "Failed to fetch user" {
		t.Errorf("UserMessage() = %q, want fallback", got)
	}
	if got := UserMessage(&AppError{Code: ErrCodeRequestFailed}, "Failed to delete user"); got != "Failed to delete user" {
		t.Errorf("UserMessage() with empty message = %q, want fallback", got)
	}
}
