package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name: "message only",
			err: &Error{
				Code:    EEMPTY,
				Message: "file has no data rows",
			},
			expected: "file has no data rows",
		},
		{
			name: "with operation",
			err: &Error{
				Code:    EEMPTY,
				Op:      "recipient.read",
				Message: "file has no data rows",
			},
			expected: "recipient.read: file has no data rows",
		},
		{
			name: "with wrapped error",
			err: &Error{
				Code:    EFILE,
				Op:      "recipient.read",
				Message: "cannot read file",
				Err:     errors.New("zip: not a valid zip file"),
			},
			expected: "recipient.read: cannot read file: zip: not a valid zip file",
		},
		{
			name: "wrapped error without op",
			err: &Error{
				Code:    EFILE,
				Message: "cannot read file",
				Err:     errors.New("permission denied"),
			},
			expected: "cannot read file: permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error.Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	underlying := errors.New("underlying error")
	err := &Error{
		Code:    EINTERNAL,
		Message: "wrapped",
		Err:     underlying,
	}

	if unwrapped := err.Unwrap(); unwrapped != underlying {
		t.Errorf("Error.Unwrap() = %v, want %v", unwrapped, underlying)
	}

	if !errors.Is(err, underlying) {
		t.Error("errors.Is should find underlying error")
	}
}

type codedError struct{ code string }

func (e codedError) Error() string     { return "coded" }
func (e codedError) ErrorCode() string { return e.code }

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: "",
		},
		{
			name:     "domain error",
			err:      &Error{Code: ESCHEMA, Message: "test"},
			expected: ESCHEMA,
		},
		{
			name:     "wrapped domain error",
			err:      fmt.Errorf("wrapped: %w", &Error{Code: EFILE, Message: "test"}),
			expected: EFILE,
		},
		{
			name:     "foreign error with code method",
			err:      fmt.Errorf("wrapped: %w", codedError{code: ESEND}),
			expected: ESEND,
		},
		{
			name:     "non-domain error",
			err:      errors.New("some error"),
			expected: EINTERNAL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorCode(tt.err); got != tt.expected {
				t.Errorf("ErrorCode() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: "",
		},
		{
			name:     "domain error with message",
			err:      &Error{Code: EEMPTY, Op: "recipient.read", Message: "file has no data rows"},
			expected: "file has no data rows",
		},
		{
			name:     "domain error keeps cause",
			err:      &Error{Code: EFILE, Message: "cannot read file", Err: errors.New("no such file")},
			expected: "cannot read file: no such file",
		},
		{
			name:     "non-domain error returns its text",
			err:      errors.New("boom"),
			expected: "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorMessage(tt.err); got != tt.expected {
				t.Errorf("ErrorMessage() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestErrorOp(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "nil error", err: nil, expected: ""},
		{name: "domain error with op", err: &Error{Code: EFILE, Op: "recipient.read"}, expected: "recipient.read"},
		{name: "domain error without op", err: &Error{Code: EFILE}, expected: ""},
		{name: "non-domain error", err: errors.New("test"), expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorOp(tt.err); got != tt.expected {
				t.Errorf("ErrorOp() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestErrorf(t *testing.T) {
	err := Errorf(ECONFIG, "config.load", "invalid SMTP port: %s", "abc")

	var domainErr *Error
	if !errors.As(err, &domainErr) {
		t.Fatal("Errorf should return *Error")
	}

	if domainErr.Code != ECONFIG {
		t.Errorf("Code = %q, want %q", domainErr.Code, ECONFIG)
	}
	if domainErr.Op != "config.load" {
		t.Errorf("Op = %q, want %q", domainErr.Op, "config.load")
	}
	if domainErr.Message != "invalid SMTP port: abc" {
		t.Errorf("Message = %q, want %q", domainErr.Message, "invalid SMTP port: abc")
	}
}

func TestWrapError(t *testing.T) {
	t.Run("wraps non-nil error", func(t *testing.T) {
		underlying := errors.New("open failed")
		err := WrapError(underlying, EFILE, "recipient.read", "cannot read file")

		var domainErr *Error
		if !errors.As(err, &domainErr) {
			t.Fatal("WrapError should return *Error")
		}
		if domainErr.Code != EFILE {
			t.Errorf("Code = %q, want %q", domainErr.Code, EFILE)
		}
		if !errors.Is(err, underlying) {
			t.Error("should wrap underlying error")
		}
	})

	t.Run("returns nil for nil error", func(t *testing.T) {
		if err := WrapError(nil, EINTERNAL, "test", "test"); err != nil {
			t.Errorf("WrapError(nil) should return nil, got %v", err)
		}
	})
}

func TestIsCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     string
		expected bool
	}{
		{name: "matching code", err: &Error{Code: ESCHEMA}, code: ESCHEMA, expected: true},
		{name: "non-matching code", err: &Error{Code: EFILE}, code: ESCHEMA, expected: false},
		{name: "non-domain error matches EINTERNAL", err: errors.New("test"), code: EINTERNAL, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsCode(tt.err, tt.code); got != tt.expected {
				t.Errorf("IsCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}
