// Package table holds read-only reference tables keyed by an integer
// ability index and interpolates between their rows.
package table

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrTooFewRows is returned when a table cannot define a slope.
	ErrTooFewRows = errors.New("table needs at least two rows")
	// ErrDuplicateIndex is returned when two rows share an index.
	ErrDuplicateIndex = errors.New("duplicate row index")
	// ErrUnknownColumn is returned when a lookup names a column the table lacks.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrRowNotFound is returned when no row exists at the floor of a query.
	ErrRowNotFound = errors.New("row not found")
	// ErrInvalidQuery is returned for negative or non-finite queries.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrNoData is returned when a column holds no parseable values.
	ErrNoData = errors.New("column has no values")
)

// Row is one table row. Values holds durations in seconds; cells that were
// blank or unparseable in the source are simply absent.
type Row struct {
	Index  int
	Values map[string]int
}

// Value returns the duration stored in column.
func (r Row) Value(column string) (int, bool) {
	v, ok := r.Values[column]
	return v, ok
}

// Table is an immutable reference table. It is safe for concurrent use.
type Table struct {
	name    string
	columns []string
	rows    []Row // ascending by Index
	byIndex map[int]int
}

// New validates rows and builds a table. Rows may be given in any order.
func New(name string, columns []string, rows []Row) (*Table, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s: %w (got %d)", name, ErrTooFewRows, len(rows))
	}

	t := &Table{
		name:    name,
		columns: append([]string(nil), columns...),
		rows:    make([]Row, len(rows)),
		byIndex: make(map[int]int, len(rows)),
	}
	for i, r := range rows {
		values := make(map[string]int, len(r.Values))
		for k, v := range r.Values {
			values[k] = v
		}
		t.rows[i] = Row{Index: r.Index, Values: values}
	}
	sort.Slice(t.rows, func(i, j int) bool { return t.rows[i].Index < t.rows[j].Index })

	for i, r := range t.rows {
		if _, dup := t.byIndex[r.Index]; dup {
			return nil, fmt.Errorf("%s: %w %d", name, ErrDuplicateIndex, r.Index)
		}
		t.byIndex[r.Index] = i
	}
	return t, nil
}

// Name identifies the table in errors and traces.
func (t *Table) Name() string { return t.name }

// Columns lists the value columns in source order.
func (t *Table) Columns() []string { return append([]string(nil), t.columns...) }

// Len is the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// MinIndex is the smallest row index.
func (t *Table) MinIndex() int { return t.rows[0].Index }

// MaxIndex is the largest row index.
func (t *Table) MaxIndex() int { return t.rows[len(t.rows)-1].Index }

// HasColumn reports whether column is part of the table.
func (t *Table) HasColumn(column string) bool {
	for _, c := range t.columns {
		if c == column {
			return true
		}
	}
	return false
}

// Require returns an error naming every column in want the table lacks.
func (t *Table) Require(want ...string) error {
	var missing []string
	for _, c := range want {
		if !t.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s: %w %v", t.name, ErrUnknownColumn, missing)
	}
	return nil
}

// Row returns the row stored at index.
func (t *Table) Row(index int) (Row, bool) {
	i, ok := t.byIndex[index]
	if !ok {
		return Row{}, false
	}
	r := t.rows[i]
	values := make(map[string]int, len(r.Values))
	for k, v := range r.Values {
		values[k] = v
	}
	return Row{Index: r.Index, Values: values}, true
}
