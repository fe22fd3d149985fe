// Package report turns read and send outcomes into titled message blocks and
// delivers them to the operator.
package report

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dukerupert/bulkmail/internal/domain"
	"github.com/dukerupert/bulkmail/internal/email"
	"github.com/dukerupert/bulkmail/internal/recipient"
)

// Block titles.
const (
	TitleFileError      = "File Error"
	TitleEmptyFile      = "Empty File"
	TitleMissingColumns = "Missing Columns"
	TitleConfigError    = "Configuration Error"
	TitleValidation     = "Data Validation Errors"
	TitleSend           = "Error Sending"
	TitlePreview        = "Ready to Send"
)

// Block is one notification: a title followed by message lines.
type Block struct {
	Title string
	Lines []string
}

func (b Block) String() string {
	if len(b.Lines) == 0 {
		return b.Title
	}
	return b.Title + "\n" + strings.Join(b.Lines, "\n")
}

// FromReadError builds the block for a read that failed before any row was
// processed. ok is false when err is nil.
func FromReadError(err error) (block Block, ok bool) {
	if err == nil {
		return Block{}, false
	}

	var schemaErr *recipient.SchemaError
	if errors.As(err, &schemaErr) {
		return Block{
			Title: TitleMissingColumns,
			Lines: []string{
				"Missing columns: " + strings.Join(schemaErr.Missing, ", "),
				"Required columns: " + strings.Join(recipient.RequiredColumns, ", "),
			},
		}, true
	}

	if domain.IsCode(err, domain.EEMPTY) {
		return Block{Title: TitleEmptyFile, Lines: []string{"The file has no data rows."}}, true
	}
	if domain.IsCode(err, domain.ECONFIG) {
		return Block{Title: TitleConfigError, Lines: []string{domain.ErrorMessage(err)}}, true
	}
	return Block{Title: TitleFileError, Lines: []string{domain.ErrorMessage(err)}}, true
}

// FromRowErrors lists every rejected row in file order.
func FromRowErrors(rowErrs []recipient.RowError) (Block, bool) {
	if len(rowErrs) == 0 {
		return Block{}, false
	}

	lines := make([]string, 0, len(rowErrs))
	for _, re := range rowErrs {
		lines = append(lines, re.Error())
	}
	return Block{Title: TitleValidation, Lines: lines}, true
}

// FromSendFailures lists every recipient whose send failed.
func FromSendFailures(failures []email.SendFailure) (Block, bool) {
	if len(failures) == 0 {
		return Block{}, false
	}

	lines := make([]string, 0, len(failures))
	for _, f := range failures {
		lines = append(lines, f.Error())
	}
	return Block{Title: TitleSend, Lines: lines}, true
}

// FromPreview renders tmpl for every recipient without sending and lists
// each one as ready, with the size of the body it would receive.
func FromPreview(recipients []domain.Recipient, tmpl string) (Block, bool) {
	if len(recipients) == 0 {
		return Block{}, false
	}

	lines := make([]string, 0, len(recipients))
	for _, r := range recipients {
		body := email.Render(tmpl, r.FullName)
		lines = append(lines, fmt.Sprintf("%d. %s <%s>: ready (%d bytes)", r.SequenceNumber, r.FullName, r.Email, len(body)))
	}
	return Block{Title: TitlePreview, Lines: lines}, true
}
