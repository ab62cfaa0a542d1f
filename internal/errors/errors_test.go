package errors

import (
	"context"
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
				Message: "position not found",
			},
			want: "position not found",
		},
		{
			name: "error with cause",
			err: &AppError{
				Code:    ErrCodeUpstream,
				Message: "failed to load positions",
				Cause:   errors.New("connection refused"),
			},
			want: "failed to load positions: connection refused",
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
	cause := context.DeadlineExceeded
	err := Wrap(cause, ErrCodeTimeout, "remote API timed out")

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected errors.Is to find the cause through AppError")
	}
	if !IsTimeout(fmt.Errorf("outer: %w", err)) {
		t.Errorf("expected IsTimeout through fmt wrapping")
	}
}

func TestValidationField(t *testing.T) {
	err := ValidationField("positionCode", "Position code is required.")
	if err.Code != ErrCodeValidation {
		t.Errorf("ValidationField().Code = %v, want %v", err.Code, ErrCodeValidation)
	}
	if got := err.FieldErrors(); got["positionCode"] != "Position code is required." {
		t.Errorf("unexpected field errors %v", got)
	}
}

func TestValidationFields(t *testing.T) {
	if ValidationFields(nil) != nil {
		t.Fatalf("expected nil for empty field map")
	}

	err := ValidationFields(map[string]string{
		"positionName": "Position name is required.",
		"positionCode": "Position code is required.",
	})
	if err.Field != "positionCode" {
		t.Errorf("expected first field in sorted order, got %q", err.Field)
	}
	if len(GetFieldErrors(err)) != 2 {
		t.Errorf("expected both field errors, got %v", GetFieldErrors(err))
	}
	if !IsValidation(err) {
		t.Errorf("expected validation error")
	}
}

func TestWrap_NilError(t *testing.T) {
	if err := Wrap(nil, ErrCodeInternal, "ignored"); err != nil {
		t.Errorf("Wrap(nil) = %v, want nil", err)
	}
}

func TestCodePredicates(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{name: "not found", err: NotFound("x"), check: IsNotFound, want: true},
		{name: "unauthorized", err: Unauthorized("x"), check: IsUnauthorized, want: true},
		{name: "upstream", err: Upstream(errors.New("500"), "x"), check: IsUpstream, want: true},
		{name: "internal", err: Internalf("x %d", 1), check: IsInternal, want: true},
		{name: "canceled", err: Wrap(context.Canceled, ErrCodeCanceled, "x"), check: IsCanceled, want: true},
		{name: "plain error", err: errors.New("x"), check: IsValidation, want: false},
		{name: "nil", err: nil, check: IsNotFound, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.check(tt.err); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetCodeAndField(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", ValidationField("username", "Username is required."))
	if GetCode(err) != ErrCodeValidation {
		t.Errorf("GetCode() = %v", GetCode(err))
	}
	if GetField(err) != "username" {
		t.Errorf("GetField() = %v", GetField(err))
	}
	if GetCode(errors.New("plain")) != "" {
		t.Errorf("expected empty code for plain error")
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(Validation("Bad input."), "fallback"); got != "Bad input." {
		t.Errorf("UserMessage() = %q", got)
	}
	if got := UserMessage(errors.New("boom"), "fallback"); got != "fallback" {
		t.Errorf("UserMessage() = %q", got)
	}
}
