// Package table provides the tabular container used for contact batches,
// resource listings and response exports: rows of values addressed by
// named columns. A missing value is represented by nil.
package table

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"strconv"
)

// Row is a read-only view of a single table row keyed by column name.
type Row map[string]any

// Table holds rows of values under an ordered set of column names.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]any
}

// New creates an empty table with the given columns. Repeated column names
// are renamed with a numeric suffix ("name", "name.1", ...).
func New(columns ...string) *Table {
	t := &Table{index: make(map[string]int, len(columns))}
	for _, col := range columns {
		t.addColumn(col)
	}
	return t
}

// FromRecords builds a table from a list of records. The column set is the
// union of all record keys in sorted order; absent keys become nil.
func FromRecords(records []map[string]any) *Table {
	seen := make(map[string]struct{})
	for _, rec := range records {
		for k := range rec {
			seen[k] = struct{}{}
		}
	}
	columns := make([]string, 0, len(seen))
	for k := range seen {
		columns = append(columns, k)
	}
	sort.Strings(columns)

	t := New(columns...)
	for _, rec := range records {
		t.AddRecord(rec)
	}
	return t
}

func (t *Table) addColumn(name string) string {
	unique := name
	for n := 1; ; n++ {
		if _, exists := t.index[unique]; !exists {
			break
		}
		unique = name + "." + strconv.Itoa(n)
	}
	t.index[unique] = len(t.columns)
	t.columns = append(t.columns, unique)
	for i := range t.rows {
		t.rows[i] = append(t.rows[i], nil)
	}
	return unique
}

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string {
	return slices.Clone(t.columns)
}

// HasColumn reports whether the table has a column with the exact name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// AddRow appends a row. The number of values must match the column count.
func (t *Table) AddRow(values ...any) error {
	if len(values) != len(t.columns) {
		return fmt.Errorf("row has %d values, table has %d columns", len(values), len(t.columns))
	}
	t.rows = append(t.rows, slices.Clone(values))
	return nil
}

// AddRecord appends a row from a record. Keys without a column add a new
// column, backfilled with nil for earlier rows.
func (t *Table) AddRecord(rec map[string]any) {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, ok := t.index[k]; !ok {
			t.addColumn(k)
		}
	}

	row := make([]any, len(t.columns))
	for k, v := range rec {
		row[t.index[k]] = v
	}
	t.rows = append(t.rows, row)
}

// Row returns a view of row i.
func (t *Table) Row(i int) Row {
	row := make(Row, len(t.columns))
	for j, col := range t.columns {
		row[col] = t.rows[i][j]
	}
	return row
}

// Records returns every row as a Row view, in order.
func (t *Table) Records() []Row {
	out := make([]Row, len(t.rows))
	for i := range t.rows {
		out[i] = t.Row(i)
	}
	return out
}

// Value returns the value at row i in the named column.
func (t *Table) Value(i int, column string) (any, bool) {
	j, ok := t.index[column]
	if !ok || i < 0 || i >= len(t.rows) {
		return nil, false
	}
	return t.rows[i][j], true
}

// Column returns all values of the named column.
func (t *Table) Column(name string) ([]any, bool) {
	j, ok := t.index[name]
	if !ok {
		return nil, false
	}
	out := make([]any, len(t.rows))
	for i, row := range t.rows {
		out[i] = row[j]
	}
	return out, true
}

// Filter returns a new table with the rows for which keep returns true.
func (t *Table) Filter(keep func(Row) bool) *Table {
	out := New(t.columns...)
	for i, row := range t.rows {
		if keep(t.Row(i)) {
			out.rows = append(out.rows, slices.Clone(row))
		}
	}
	return out
}

// IsNull reports whether v is a missing value: nil or a float NaN.
func IsNull(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	}
	return false
}
