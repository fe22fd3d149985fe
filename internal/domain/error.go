package domain

import (
	"errors"
	"fmt"
)

// Application error codes.
// Structural codes (file, empty, schema, config) abort an operation; content
// codes (invalid, send) are collected and reported alongside partial results.
const (
	EFILE     = "file"     // Source file unreadable or unparsable
	EEMPTY    = "empty"    // Source file has no data rows
	ESCHEMA   = "schema"   // Required columns absent
	EINVALID  = "invalid"  // Row content failed validation
	ESEND     = "send"     // SMTP exchange failed for one recipient
	ECONFIG   = "config"   // Configuration missing or malformed
	EINTERNAL = "internal" // Anything else
)

// Error represents an application error with a code and message.
// It implements the error interface and supports error wrapping.
type Error struct {
	// Code is a machine-readable error code (e.g., EFILE, ESCHEMA).
	Code string

	// Message is a human-readable error message safe to show to users.
	Message string

	// Op is the operation where the error occurred (e.g., "recipient.read").
	// Used for debugging and logging, not shown to users.
	Op string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		if e.Op != "" {
			return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
		}
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

// Unwrap implements error unwrapping for errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorCode returns the error code for consistent status mapping.
func (e *Error) ErrorCode() string {
	return e.Code
}

// coder is implemented by package-level error types that carry a domain code
// without wrapping a *Error (see recipient.SchemaError, email.SendFailure).
type coder interface {
	ErrorCode() string
}

// ErrorCode extracts the error code from an error.
// Returns EINTERNAL for errors that carry no code.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}

	var c coder
	if errors.As(err, &c) {
		return c.ErrorCode()
	}

	return EINTERNAL
}

// ErrorMessage extracts a user-facing message from an error.
// Wrapped causes are included.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var e *Error
	if errors.As(err, &e) {
		if e.Err != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Err)
		}
		return e.Message
	}

	return err.Error()
}

// ErrorOp extracts the operation from an error (for logging).
func ErrorOp(err error) string {
	if err == nil {
		return ""
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Op
	}

	return ""
}

// Errorf creates a new domain error with formatted message.
// Example: domain.Errorf(domain.ECONFIG, "config.load", "invalid SMTP port: %s", raw)
func Errorf(code, op, format string, args ...interface{}) error {
	return &Error{
		Code:    code,
		Op:      op,
		Message: fmt.Sprintf(format, args...),
	}
}

// WrapError wraps an existing error with a domain error code and operation.
// Returns nil if err is nil.
// Example: domain.WrapError(err, domain.EFILE, "recipient.read", "cannot read file")
func WrapError(err error, code, op, message string) error {
	if err == nil {
		return nil
	}

	return &Error{
		Code:    code,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// IsCode returns true if err has the given error code.
func IsCode(err error, code string) bool {
	return ErrorCode(err) == code
}
