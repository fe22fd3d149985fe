package recipient

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/xuri/excelize/v2"
)

// table is a parsed spreadsheet: the header row and the data rows below it.
type table struct {
	header     []string
	rows       [][]string
	headerLine int // 1-based sheet row holding the header
}

// format picks a parser from the location's extension.
type format int

const (
	formatXLSX format = iota
	formatCSV
	formatXLS
)

// errLegacyXLS rejects the binary Excel 97-2003 format, which excelize cannot read.
var errLegacyXLS = errors.New("legacy .xls workbooks are not supported, save the file as .xlsx or .csv")

func formatOf(location string) format {
	switch strings.ToLower(path.Ext(location)) {
	case ".csv":
		return formatCSV
	case ".xls":
		return formatXLS
	default:
		return formatXLSX
	}
}

func parseTable(r io.Reader, f format) (*table, error) {
	var (
		lines [][]string
		err   error
	)
	switch f {
	case formatCSV:
		lines, err = readCSV(r)
	case formatXLS:
		err = errLegacyXLS
	default:
		lines, err = readXLSX(r)
	}
	if err != nil {
		return nil, err
	}

	t := &table{}
	for i, line := range lines {
		if isBlank(line) {
			continue
		}
		t.header = line
		t.headerLine = i + 1
		t.rows = lines[i+1:]
		break
	}
	return t, nil
}

// readXLSX returns every row of the first sheet.
func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("not a readable xlsx workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	return f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func readCSV(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	body := bytes.TrimPrefix(data, utf8BOM)
	reader := csv.NewReader(bytes.NewReader(body))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	// encoding/csv drops empty lines; pad them back so row numbers match the
	// file. A quoted cell may span several physical lines but is still one
	// row, so only the gap between the end of one record and the start of the
	// next is padded.
	var (
		lines    [][]string
		consumed int   // physical lines up to the end of the previous record
		offset   int64 // byte offset of the end of the previous record
	)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		start, _ := reader.FieldPos(0)
		for gap := start - consumed - 1; gap > 0; gap-- {
			lines = append(lines, nil)
		}
		lines = append(lines, record)

		end := reader.InputOffset()
		consumed += bytes.Count(body[offset:end], []byte{'\n'})
		offset = end
	}
	return lines, nil
}

func isBlank(line []string) bool {
	for _, cell := range line {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
