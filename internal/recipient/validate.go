package recipient

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/dukerupert/bulkmail/internal/domain"
)

// Required header names, exact and case-sensitive after trimming.
const (
	ColumnSTT          = "STT"
	ColumnFullName     = "Full_Name"
	ColumnAcademicYear = "Academic_Year"
	ColumnEmail        = "Email"
)

// RequiredColumns lists the headers every recipient spreadsheet must carry.
var RequiredColumns = []string{ColumnSTT, ColumnFullName, ColumnAcademicYear, ColumnEmail}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)

// ValidEmail reports whether s has the accepted address shape:
// local part of [A-Za-z0-9_.+-], one "@", and a dotted domain.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// columns maps each required header to its position in a row.
type columns struct {
	stt, fullName, academicYear, email int
}

func resolveColumns(header []string) (columns, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if _, dup := pos[name]; !dup {
			pos[name] = i
		}
	}

	var missing []string
	for _, name := range RequiredColumns {
		if _, ok := pos[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return columns{}, &SchemaError{Missing: missing}
	}

	return columns{
		stt:          pos[ColumnSTT],
		fullName:     pos[ColumnFullName],
		academicYear: pos[ColumnAcademicYear],
		email:        pos[ColumnEmail],
	}, nil
}

// rowInput holds the raw cells of one row for the required columns.
type rowInput struct {
	stt, fullName, academicYear, email string
}

func (c columns) extract(line []string) rowInput {
	cell := func(i int) string {
		if i < len(line) {
			return line[i]
		}
		return ""
	}
	return rowInput{
		stt:          cell(c.stt),
		fullName:     cell(c.fullName),
		academicYear: cell(c.academicYear),
		email:        cell(c.email),
	}
}

// rowResult is the outcome of validating one row. reason is empty on success.
type rowResult struct {
	recipient domain.Recipient
	reason    Reason
	value     string
}

func (r rowResult) ok() bool { return r.reason == "" }

func reject(reason Reason, value string) rowResult {
	return rowResult{reason: reason, value: value}
}

// validateRow runs the per-row rules in order. Duplicate detection needs the
// whole read and is left to the caller.
func validateRow(in rowInput) rowResult {
	if !hasRequired(in) {
		return reject(ReasonMissingData, "")
	}

	seq, ok := parseSequence(in.stt)
	if !ok {
		return reject(ReasonInvalidSTT, strings.TrimSpace(in.stt))
	}

	email := strings.TrimSpace(in.email)
	if !ValidEmail(email) {
		return reject(ReasonInvalidEmail, email)
	}

	return rowResult{recipient: domain.Recipient{
		SequenceNumber: seq,
		FullName:       strings.TrimSpace(in.fullName),
		AcademicYear:   strings.TrimSpace(in.academicYear),
		Email:          email,
	}}
}

// hasRequired reports whether every required cell holds non-blank text.
func hasRequired(in rowInput) bool {
	for _, v := range []string{in.stt, in.fullName, in.academicYear, in.email} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

// parseSequence reads an STT cell as a number and truncates it toward zero,
// so "3", "3.0" and "3.7" all yield 3.
func parseSequence(raw string) (int, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	f = math.Trunc(f)
	// MinInt is a power of two, so -MinInt is the exact exclusive upper bound.
	if f >= -float64(math.MinInt) || f < float64(math.MinInt) {
		return 0, false
	}
	return int(f), true
}
