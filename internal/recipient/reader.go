package recipient

import (
	"context"
	"io"
	"log/slog"

	"github.com/dukerupert/bulkmail/internal/domain"
	"github.com/dukerupert/bulkmail/internal/telemetry"
)

// Opener resolves a location to a readable stream (see storage.Resolver).
type Opener interface {
	Open(ctx context.Context, location string) (io.ReadCloser, error)
}

// Reader turns a spreadsheet into validated, deduplicated recipients.
type Reader struct {
	opener  Opener
	logger  *slog.Logger
	metrics *telemetry.Metrics
}

// NewReader creates a Reader. logger and metrics may be nil.
func NewReader(opener Opener, logger *slog.Logger, metrics *telemetry.Metrics) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{opener: opener, logger: logger, metrics: metrics}
}

// Read loads the spreadsheet at location and returns the recipients that
// passed validation together with one RowError per rejected row.
//
// Structural problems abort the read: an unreadable file yields a file error,
// a file without data rows yields ErrEmptyFile, and absent required columns
// yield a *SchemaError. Row defects never abort; every row is examined and an
// empty recipient list with a full error list is a normal result.
func (r *Reader) Read(ctx context.Context, location string) ([]domain.Recipient, []RowError, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, newFileError(location, err)
	}

	rc, err := r.opener.Open(ctx, location)
	if err != nil {
		return nil, nil, newFileError(location, err)
	}
	defer rc.Close()

	t, err := parseTable(rc, formatOf(location))
	if err != nil {
		return nil, nil, newFileError(location, err)
	}

	recipients, rowErrs, err := r.process(t)
	if err != nil {
		return nil, nil, err
	}

	r.logger.Info("recipients read",
		"location", location,
		"accepted", len(recipients),
		"rejected", len(rowErrs),
	)
	return recipients, rowErrs, nil
}

func (r *Reader) process(t *table) ([]domain.Recipient, []RowError, error) {
	dataRows := 0
	for _, line := range t.rows {
		if !isBlank(line) {
			dataRows++
		}
	}
	if t.header == nil || dataRows == 0 {
		return nil, nil, ErrEmptyFile
	}

	cols, err := resolveColumns(t.header)
	if err != nil {
		return nil, nil, err
	}

	var (
		recipients = make([]domain.Recipient, 0, dataRows)
		rowErrs    []RowError
		seen       = make(map[string]struct{}, dataRows)
	)
	for idx, line := range t.rows {
		if isBlank(line) {
			continue
		}
		r.metrics.RowSeen()
		row := t.headerLine + 1 + idx

		res := validateRow(cols.extract(line))
		if res.ok() {
			if _, dup := seen[res.recipient.Email]; dup {
				res = reject(ReasonDuplicateEmail, res.recipient.Email)
			} else {
				seen[res.recipient.Email] = struct{}{}
			}
		}

		if !res.ok() {
			rowErr := RowError{Row: row, Reason: res.reason, Value: res.value}
			r.logger.Debug("row rejected", "row", row, "reason", res.reason, "value", res.value)
			r.metrics.RowRejected(string(res.reason))
			rowErrs = append(rowErrs, rowErr)
			continue
		}

		r.metrics.RecipientAccepted()
		recipients = append(recipients, res.recipient)
	}

	return recipients, rowErrs, nil
}
