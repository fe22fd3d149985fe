package recipient

import (
	"fmt"
	"strings"

	"github.com/dukerupert/bulkmail/internal/domain"
)

const opRead = "recipient.read"

// ErrEmptyFile is returned when a spreadsheet has a header but no data rows.
var ErrEmptyFile = &domain.Error{
	Code:    domain.EEMPTY,
	Op:      opRead,
	Message: "file has no data rows",
}

// newFileError wraps an open or parse failure of the source spreadsheet.
func newFileError(location string, err error) error {
	return domain.WrapError(err, domain.EFILE, opRead, fmt.Sprintf("cannot read file %s", location))
}

// SchemaError is returned when required columns are absent from the header row.
type SchemaError struct {
	Missing []string // in RequiredColumns order
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: missing columns: %s", opRead, strings.Join(e.Missing, ", "))
}

// ErrorCode returns domain.ESCHEMA.
func (e *SchemaError) ErrorCode() string {
	return domain.ESCHEMA
}

// Reason classifies why a row was rejected.
type Reason string

const (
	ReasonMissingData    Reason = "missing_data"
	ReasonInvalidSTT     Reason = "invalid_stt"
	ReasonInvalidEmail   Reason = "invalid_email"
	ReasonDuplicateEmail Reason = "duplicate_email"
)

// RowError describes one rejected row. Row is the 1-based row number as shown
// in a spreadsheet application, counting the header row.
type RowError struct {
	Row    int
	Reason Reason
	Value  string // offending value, empty for missing data
}

func (e RowError) Error() string {
	switch e.Reason {
	case ReasonMissingData:
		return fmt.Sprintf("row %d: missing data (STT / Full_Name / Academic_Year / Email)", e.Row)
	case ReasonInvalidSTT:
		return fmt.Sprintf("row %d: invalid STT: %q", e.Row, e.Value)
	case ReasonInvalidEmail:
		return fmt.Sprintf("row %d: invalid email: %q", e.Row, e.Value)
	case ReasonDuplicateEmail:
		return fmt.Sprintf("row %d: duplicate email: %q", e.Row, e.Value)
	default:
		return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
	}
}

// ErrorCode returns domain.EINVALID.
func (e RowError) ErrorCode() string {
	return domain.EINVALID
}
