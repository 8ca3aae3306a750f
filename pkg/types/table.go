package types

import "fmt"

// Table is an ordered event table with optional derived columns.
// Insertion order is preserved: row i of every derived column aligns
// with events[i]. Source columns are never modified; attaching a
// derived column is the only mutation.
type Table struct {
	events    []Event
	order     []Column // derived columns in attachment order
	intCols   map[Column][]int64
	floatCols map[Column][]float64
}

// NewTable creates a table over the given events. The slice is owned by
// the table after this call.
func NewTable(events []Event) *Table {
	return &Table{
		events:    events,
		intCols:   make(map[Column][]int64),
		floatCols: make(map[Column][]float64),
	}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.events)
}

// Events returns the underlying rows in insertion order.
func (t *Table) Events() []Event {
	return t.events
}

// Columns returns all column names: source columns first, then derived
// columns in attachment order.
func (t *Table) Columns() []Column {
	cols := SourceColumns()
	return append(cols, t.order...)
}

// AttachInt adds a derived int64 column. The values slice must align
// one-to-one with the table's rows. Attaching over a source column or
// an existing derived column is an error.
func (t *Table) AttachInt(col Column, values []int64) error {
	if err := t.checkAttach(col, len(values)); err != nil {
		return err
	}
	t.intCols[col] = values
	t.order = append(t.order, col)
	return nil
}

// AttachFloat adds a derived float64 column under the same rules as
// AttachInt.
func (t *Table) AttachFloat(col Column, values []float64) error {
	if err := t.checkAttach(col, len(values)); err != nil {
		return err
	}
	t.floatCols[col] = values
	t.order = append(t.order, col)
	return nil
}

// ReplaceFloat overwrites an existing derived float64 column. Used when
// a transform is deliberately re-applied (classification is idempotent).
func (t *Table) ReplaceFloat(col Column, values []float64) error {
	if _, ok := t.floatCols[col]; !ok {
		return fmt.Errorf("column %q is not an attached float column", col)
	}
	if len(values) != len(t.events) {
		return fmt.Errorf("column %q has %d values for %d rows", col, len(values), len(t.events))
	}
	t.floatCols[col] = values
	return nil
}

// IntColumn returns an attached int64 column.
func (t *Table) IntColumn(col Column) ([]int64, bool) {
	v, ok := t.intCols[col]
	return v, ok
}

// FloatColumn returns an attached float64 column.
func (t *Table) FloatColumn(col Column) ([]float64, bool) {
	v, ok := t.floatCols[col]
	return v, ok
}

// Value returns the value at row i for any column, source or derived.
func (t *Table) Value(i int, col Column) (interface{}, error) {
	if i < 0 || i >= len(t.events) {
		return nil, fmt.Errorf("row %d out of range [0,%d)", i, len(t.events))
	}
	if v, ok := t.intCols[col]; ok {
		return v[i], nil
	}
	if v, ok := t.floatCols[col]; ok {
		return v[i], nil
	}
	return col.Value(t.events[i])
}

func (t *Table) checkAttach(col Column, n int) error {
	for _, src := range SourceColumns() {
		if col == src {
			return fmt.Errorf("cannot attach over source column %q", col)
		}
	}
	if _, ok := t.intCols[col]; ok {
		return fmt.Errorf("column %q already attached", col)
	}
	if _, ok := t.floatCols[col]; ok {
		return fmt.Errorf("column %q already attached", col)
	}
	if n != len(t.events) {
		return fmt.Errorf("column %q has %d values for %d rows", col, n, len(t.events))
	}
	return nil
}
