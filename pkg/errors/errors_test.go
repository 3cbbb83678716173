package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodePrecondition, "unknown node: %s", "x1")

	if err.Code != ErrCodePrecondition {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodePrecondition)
	}

	if err.Message != "unknown node: x1" {
		t.Errorf("Message = %v, want %v", err.Message, "unknown node: x1")
	}

	expected := "PRECONDITION_FAILED: unknown node: x1"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeInvalidFormat, cause, "failed to decode")

	if err.Code != ErrCodeInvalidFormat {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidFormat)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestShorthands(t *testing.T) {
	if got := Precondition("x").Code; got != ErrCodePrecondition {
		t.Errorf("Precondition().Code = %v, want %v", got, ErrCodePrecondition)
	}
	if got := ModelConsistency("x").Code; got != ErrCodeModelConsistency {
		t.Errorf("ModelConsistency().Code = %v, want %v", got, ErrCodeModelConsistency)
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodePrecondition, "test"),
			code:     ErrCodePrecondition,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodePrecondition, "test"),
			code:     ErrCodeModelConsistency,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodeArchitectureMismatch, New(ErrCodeInvalidInput, "inner"), "outer"),
			code:     ErrCodeArchitectureMismatch,
			expected: true,
		},
		{
			name:     "fmt wrapped",
			err:      fmt.Errorf("synthesize: %w", New(ErrCodePrecondition, "inner")),
			code:     ErrCodePrecondition,
			expected: true,
		},
		{
			name:     "scale limit",
			err:      fmt.Errorf("cycles: %w", &ScaleLimitError{Limit: 10}),
			code:     ErrCodeScaleLimit,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeModelConsistency, "test"),
			expected: ErrCodeModelConsistency,
		},
		{
			name:     "scale limit",
			err:      &ScaleLimitError{Limit: 3},
			expected: ErrCodeScaleLimit,
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			expected: "",
		},
		{
			name:     "nil",
			err:      nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeInvalidInput, "friendly message"),
			expected: "friendly message",
		},
		{
			name:     "plain error",
			err:      errors.New("plain error"),
			expected: "plain error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestScaleLimitError(t *testing.T) {
	t.Run("with subject", func(t *testing.T) {
		err := &ScaleLimitError{Limit: 100, What: "simple cycles"}
		expected := "too many simple cycles: limit of 100 exceeded"
		if err.Error() != expected {
			t.Errorf("Error() = %v, want %v", err.Error(), expected)
		}
	})

	t.Run("without subject", func(t *testing.T) {
		err := &ScaleLimitError{Limit: 5}
		expected := "scale limit of 5 exceeded"
		if err.Error() != expected {
			t.Errorf("Error() = %v, want %v", err.Error(), expected)
		}
	})

	t.Run("explicit message", func(t *testing.T) {
		err := &ScaleLimitError{Limit: 5, Message: "narrow the function set"}
		if err.Error() != "narrow the function set" {
			t.Errorf("Error() = %v, want %v", err.Error(), "narrow the function set")
		}
	})

	t.Run("errors.As", func(t *testing.T) {
		var target *ScaleLimitError
		wrapped := fmt.Errorf("nested ordering: %w", &ScaleLimitError{Limit: 7})
		if !errors.As(wrapped, &target) {
			t.Fatal("errors.As() = false, want true")
		}
		if target.Limit != 7 {
			t.Errorf("Limit = %d, want 7", target.Limit)
		}
	})
}
