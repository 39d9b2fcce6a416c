// Package table loads small CSV summary tables into memory and provides the
// column access and grouping used to aggregate figure data.
//
// Cells follow dataframe conventions: empty and NA-like markers are null,
// numeric columns hold NaN for null or unparseable cells.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	apperrors "rentalfigs/internal/errors"
)

const utf8BOM = "\ufeff"

// nullMarkers are cell values read as missing
var nullMarkers = map[string]struct{}{
	"":     {},
	"NA":   {},
	"N/A":  {},
	"n/a":  {},
	"NaN":  {},
	"nan":  {},
	"-NaN": {},
	"-nan": {},
	"NULL": {},
	"null": {},
	"None": {},
	"<NA>": {},
	"#N/A": {},
}

// Table is an in-memory CSV table with a header row
type Table struct {
	Name    string
	Header  []string
	Rows    [][]string
	columns map[string]int
}

// Load reads the CSV file at path. A missing file yields a NOT_FOUND error.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.NewNotFoundError(path)
		}
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to open %s", path), err)
	}
	defer f.Close()

	return Read(f, filepath.Base(path))
}

// Read parses a CSV stream. name identifies the table in error messages.
func Read(r io.Reader, name string) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to parse %s", name), err)
	}
	if len(records) == 0 {
		return nil, apperrors.NewParsingError(fmt.Sprintf("%s has no header row", name), nil)
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		header[i] = strings.TrimSpace(h)
	}

	rows := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		if isBlank(rec) {
			continue
		}
		row := make([]string, len(header))
		copy(row, rec)
		rows = append(rows, row)
	}

	return New(name, header, rows), nil
}

// New builds a table from an already split header and rows
func New(name string, header []string, rows [][]string) *Table {
	columns := make(map[string]int, len(header))
	for i, h := range header {
		// first occurrence wins for duplicated headers
		if _, ok := columns[h]; !ok {
			columns[h] = i
		}
	}
	return &Table{Name: name, Header: header, Rows: rows, columns: columns}
}

// Len returns the number of data rows
func (t *Table) Len() int {
	return len(t.Rows)
}

// HasColumn reports whether the header contains name
func (t *Table) HasColumn(name string) bool {
	_, ok := t.columns[name]
	return ok
}

// RequireColumns returns a MissingColumnsError naming every absent column
func (t *Table) RequireColumns(names ...string) error {
	var missing []string
	for _, n := range names {
		if !t.HasColumn(n) {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return apperrors.NewMissingColumnsError(t.Name, missing)
	}
	return nil
}

// Strings returns the raw cells of column name
func (t *Table) Strings(name string) ([]string, error) {
	idx, ok := t.columns[name]
	if !ok {
		return nil, apperrors.NewMissingColumnsError(t.Name, []string{name})
	}
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		if idx < len(row) {
			out[i] = row[idx]
		}
	}
	return out, nil
}

// Floats returns column name parsed as numbers, with NaN for null or
// unparseable cells
func (t *Table) Floats(name string) ([]float64, error) {
	cells, err := t.Strings(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(cells))
	for i, c := range cells {
		out[i] = ParseFloat(c)
	}
	return out, nil
}

// IsNull reports whether a cell is treated as missing
func IsNull(cell string) bool {
	_, ok := nullMarkers[strings.TrimSpace(cell)]
	return ok
}

// ParseFloat parses a numeric cell, returning NaN when it is null or invalid
func ParseFloat(cell string) float64 {
	if IsNull(cell) {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func isBlank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
