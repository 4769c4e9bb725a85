package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Column names used by the analysis. Every other archive column passes
// through untouched.
const (
	ColState     = "STATE"
	ColMonth     = "MONTH"
	ColLatitude  = "LATITUDE"
	ColLongitude = "LONGITUD"
	ColYear      = "year"
)

// Table is a column-named, row-ordered set of records. Values are kept as the
// text the CSV parser produced; typed access goes through Int and Float.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]string
}

// NewTable creates an empty table with the given header. Duplicate column
// names resolve to their first occurrence.
func NewTable(columns []string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	index := make(map[string]int, len(cols))
	for i, c := range cols {
		if _, ok := index[c]; !ok {
			index[c] = i
		}
	}
	return &Table{columns: cols, index: index}
}

// Append adds a row. The row must have one value per column.
func (t *Table) Append(row []string) error {
	if len(row) != len(t.columns) {
		return fmt.Errorf("row has %d fields, table has %d columns", len(row), len(t.columns))
	}
	t.rows = append(t.rows, row)
	return nil
}

// Columns returns a copy of the header.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// HasColumn reports whether the table has the named column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Row returns the i-th row. The slice must not be modified.
func (t *Table) Row(i int) []string {
	return t.rows[i]
}

// Value returns the raw value of column col in row i.
func (t *Table) Value(i int, col string) (string, error) {
	j, ok := t.index[col]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingColumn, col)
	}
	return t.rows[i][j], nil
}

// Int parses column col of row i as an integer.
func (t *Table) Int(i int, col string) (int, error) {
	v, err := t.Value(i, col)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("row %d column %s: %w", i+1, col, err)
	}
	return n, nil
}

// Float parses column col of row i as a float64.
func (t *Table) Float(i int, col string) (float64, error) {
	v, err := t.Value(i, col)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, fmt.Errorf("row %d column %s: %w", i+1, col, err)
	}
	return f, nil
}

// Select projects the table onto the named columns, in the given order.
func (t *Table) Select(cols ...string) (*Table, error) {
	idx := make([]int, len(cols))
	for k, c := range cols {
		j, ok := t.index[c]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, c)
		}
		idx[k] = j
	}

	out := NewTable(cols)
	out.rows = make([][]string, len(t.rows))
	for i, row := range t.rows {
		projected := make([]string, len(idx))
		for k, j := range idx {
			projected[k] = row[j]
		}
		out.rows[i] = projected
	}
	return out, nil
}

// Filter returns a new table holding the rows for which keep returns true.
func (t *Table) Filter(keep func(i int) bool) *Table {
	out := NewTable(t.columns)
	for i, row := range t.rows {
		if keep(i) {
			out.rows = append(out.rows, row)
		}
	}
	return out
}

// WithColumn returns a new table with an extra column holding value on every
// row. An existing column of the same name is overwritten.
func (t *Table) WithColumn(name, value string) *Table {
	if j, ok := t.index[name]; ok {
		out := NewTable(t.columns)
		out.rows = make([][]string, len(t.rows))
		for i, row := range t.rows {
			r := make([]string, len(row))
			copy(r, row)
			r[j] = value
			out.rows[i] = r
		}
		return out
	}

	out := NewTable(append(t.Columns(), name))
	out.rows = make([][]string, len(t.rows))
	for i, row := range t.rows {
		r := make([]string, len(row), len(row)+1)
		copy(r, row)
		out.rows[i] = append(r, value)
	}
	return out
}

// Distinct returns the distinct values of a column in first-seen order.
func (t *Table) Distinct(col string) ([]string, error) {
	j, ok := t.index[col]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
	}
	seen := make(map[string]struct{})
	var out []string
	for _, row := range t.rows {
		v := strings.TrimSpace(row[j])
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out, nil
}
