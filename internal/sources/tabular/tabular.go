// Package tabular reads serialized tables (CSV files and XLSX workbooks) into
// header-keyed rows and maps them onto canonical records.
package tabular

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/agentstation/datamap/pkg/errors"
)

// Supported formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Format returns the table format implied by name's extension, or "" when
// the name has no extension or one that is not supported.
func Format(name string) string {
	ext := filepath.Ext(filepath.Base(name))
	if ext == "" || ext == "." {
		return ""
	}
	switch strings.ToLower(ext[1:]) {
	case FormatCSV:
		return FormatCSV
	case FormatXLSX:
		return FormatXLSX
	default:
		return ""
	}
}

// Table is a header row plus data rows.
type Table struct {
	Name   string
	Format string
	Header []string
	Rows   [][]string

	index map[string]int
}

func newTable(name, format string, header []string, rows [][]string) *Table {
	t := &Table{
		Name:   name,
		Format: format,
		Header: header,
		index:  make(map[string]int, len(header)),
	}
	for i, col := range header {
		col = strings.TrimSpace(col)
		t.Header[i] = col
		if _, dup := t.index[col]; !dup && col != "" {
			t.index[col] = i
		}
	}
	for _, row := range rows {
		if !blank(row) {
			t.Rows = append(t.Rows, row)
		}
	}
	return t
}

// Has reports whether the header contains column.
func (t *Table) Has(column string) bool {
	_, ok := t.index[column]
	return ok
}

// Get returns the value of column in row, or "" when either is absent.
func (t *Table) Get(row int, column string) string {
	i, ok := t.index[column]
	if !ok || row < 0 || row >= len(t.Rows) || i >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][i]
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Read reads the table at path, choosing the reader from its extension.
func Read(path string) (*Table, error) {
	format := Format(path)
	if format == "" {
		return nil, errors.NewParseError("table", path, "unsupported file extension", nil)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer func() { _ = f.Close() }()

	if format == FormatXLSX {
		return ReadXLSX(f, path)
	}
	return ReadCSV(f, path)
}

// ReadCSV reads a CSV table whose first record is the header. Rows may be
// ragged; missing trailing cells read as "".
func ReadCSV(r io.Reader, name string) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	// Catalog exports carry stray quotes such as 12" in free text.
	cr.LazyQuotes = true

	all, err := cr.ReadAll()
	if err != nil {
		return nil, errors.WrapParse(FormatCSV, name, err)
	}
	if len(all) == 0 {
		return nil, errors.NewParseError(FormatCSV, name, "missing header row", nil)
	}

	header := all[0]
	if len(header) > 0 {
		header[0] = string(bytes.TrimPrefix([]byte(header[0]), utf8BOM))
	}
	return newTable(name, FormatCSV, header, all[1:]), nil
}

// ReadXLSX reads the first worksheet of a workbook. Its first row is the header.
func ReadXLSX(r io.Reader, name string) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.WrapParse(FormatXLSX, name, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.NewParseError(FormatXLSX, name, "workbook has no sheets", nil)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.WrapParse(FormatXLSX, name, err)
	}
	if len(rows) == 0 {
		return nil, errors.NewParseError(FormatXLSX, name, "missing header row", nil)
	}
	return newTable(name, FormatXLSX, rows[0], rows[1:]), nil
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
