package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Table is a PEtab table held as text.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string

	index map[string]int
}

// CellError reports a problem with one cell. Row is 1-based and counts
// data rows only; it is 0 for problems with the table as a whole.
type CellError struct {
	Table  string
	Row    int
	Column string
	Err    error
}

// Error implements the error interface.
func (e *CellError) Error() string {
	switch {
	case e.Row > 0 && e.Column != "":
		return fmt.Sprintf("%s row %d, column %s: %v", e.Table, e.Row, e.Column, e.Err)
	case e.Row > 0:
		return fmt.Sprintf("%s row %d: %v", e.Table, e.Row, e.Err)
	case e.Column != "":
		return fmt.Sprintf("%s column %s: %v", e.Table, e.Column, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Table, e.Err)
}

// Unwrap returns the underlying error.
func (e *CellError) Unwrap() error {
	return e.Err
}

// Read parses a tab-separated table. Short rows are padded with empty
// cells; extra cells are an error.
func Read(r io.Reader, name string) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &CellError{Table: name, Err: errors.New("missing header row")}
	}
	if err != nil {
		return nil, &CellError{Table: name, Err: err}
	}
	t := &Table{Name: name}
	for i, h := range header {
		h = strings.TrimSpace(h)
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		t.Header = append(t.Header, h)
	}
	t.buildIndex()

	for row := 1; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &CellError{Table: name, Row: row, Err: err}
		}
		if blank(rec) {
			row--
			continue
		}
		if len(rec) > len(t.Header) {
			return nil, &CellError{Table: name, Row: row,
				Err: fmt.Errorf("%d cells, header has %d columns", len(rec), len(t.Header))}
		}
		cells := make([]string, len(t.Header))
		for i, c := range rec {
			cells[i] = strings.TrimSpace(c)
		}
		t.Rows = append(t.Rows, cells)
	}
	return t, nil
}

// ReadFile reads the table at path. The table is named after the file.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open table: %w", err)
	}
	defer f.Close()
	return Read(f, filepath.Base(path))
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func (t *Table) buildIndex() {
	t.index = make(map[string]int, len(t.Header))
	for i, h := range t.Header {
		if _, dup := t.index[h]; !dup {
			t.index[h] = i
		}
	}
}

// Has reports whether the table has the column.
func (t *Table) Has(column string) bool {
	if t.index == nil {
		t.buildIndex()
	}
	_, ok := t.index[column]
	return ok
}

// Get returns the cell of a 0-based row, or "" if the column is absent.
func (t *Table) Get(row int, column string) string {
	if t.index == nil {
		t.buildIndex()
	}
	i, ok := t.index[column]
	if !ok || row < 0 || row >= len(t.Rows) {
		return ""
	}
	return t.Rows[row][i]
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Require checks that all columns are present.
func (t *Table) Require(columns ...string) error {
	var missing []string
	for _, c := range columns {
		if !t.Has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &CellError{Table: t.Name, Err: fmt.Errorf("missing required column(s): %s", strings.Join(missing, ", "))}
	}
	return nil
}

// Write writes the table tab-separated, header first.
func (t *Table) Write(w io.Writer) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	c := &Table{Name: t.Name, Header: slices.Clone(t.Header), Rows: make([][]string, len(t.Rows))}
	for i, r := range t.Rows {
		c.Rows[i] = slices.Clone(r)
	}
	c.buildIndex()
	return c
}

// AddColumn appends an empty column unless it exists.
func (t *Table) AddColumn(column string) {
	if t.Has(column) {
		return
	}
	t.Header = append(t.Header, column)
	t.index[column] = len(t.Header) - 1
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], "")
	}
}

// Set writes a cell of a 0-based row, adding the column if needed.
func (t *Table) Set(row int, column, value string) {
	t.AddColumn(column)
	t.Rows[row][t.index[column]] = value
}

// Append adds a row from column values, adding missing columns.
func (t *Table) Append(values map[string]string) {
	for _, col := range slices.Sorted(maps.Keys(values)) {
		t.AddColumn(col)
	}
	row := make([]string, len(t.Header))
	for col, v := range values {
		row[t.index[col]] = v
	}
	t.Rows = append(t.Rows, row)
}
