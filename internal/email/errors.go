package email

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dukerupert/bulkmail/internal/domain"
	"github.com/go-playground/validator/v10"
)

// SendFailure records a failed delivery attempt for one recipient.
type SendFailure struct {
	Email string // recipient address
	Err   error  // underlying cause (connect, TLS, auth or protocol)
}

// Error renders the failure as "<email> → <cause>".
func (f *SendFailure) Error() string {
	return fmt.Sprintf("%s → %v", f.Email, f.Err)
}

func (f *SendFailure) Unwrap() error {
	return f.Err
}

// ErrorCode returns domain.ESEND.
func (f *SendFailure) ErrorCode() string {
	return domain.ESEND
}

// configError converts validator output into a single config error naming
// each offending field.
func configError(op string, err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return domain.WrapError(err, domain.ECONFIG, op, "invalid SMTP configuration")
	}

	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		parts = append(parts, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
	}
	return domain.Errorf(domain.ECONFIG, op, "invalid SMTP configuration: %s", strings.Join(parts, "; "))
}
