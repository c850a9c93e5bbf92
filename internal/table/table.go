// Package table holds the in-memory tabular representation: ordered, uniquely named,
// typed columns of equal length addressed by dense 0-based row positions.
package table

import (
	"fmt"
)

// Column is a named, typed sequence of cells.
type Column struct {
	Name  string
	Kind  Kind
	cells []Value
}

// NewColumn builds a column over the given cells. The slice is owned by the column.
func NewColumn(name string, kind Kind, cells []Value) *Column {
	return &Column{Name: name, Kind: kind, cells: cells}
}

func (c *Column) Len() int { return len(c.cells) }

func (c *Column) At(i int) Value { return c.cells[i] }

// Values returns a copy of the cells.
func (c *Column) Values() []Value {
	out := make([]Value, len(c.cells))
	copy(out, c.cells)
	return out
}

// Floats returns the present numeric cells together with their row positions.
func (c *Column) Floats() (vals []float64, rows []int) {
	for i, v := range c.cells {
		if f, ok := v.Float(); ok {
			vals = append(vals, f)
			rows = append(rows, i)
		}
	}
	return vals, rows
}

func (c *Column) clone() *Column {
	return &Column{Name: c.Name, Kind: c.Kind, cells: c.Values()}
}

// Table is a 2-D labeled dataset. All columns have the same length.
type Table struct {
	cols  []*Column
	index map[string]int
	rows  int
}

// New assembles a table. Column names must be unique and lengths equal.
func New(cols ...*Column) (*Table, error) {
	t := &Table{index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if _, dup := t.index[c.Name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", c.Name)
		}
		if i == 0 {
			t.rows = c.Len()
		} else if c.Len() != t.rows {
			return nil, fmt.Errorf("column %q has %d rows, want %d", c.Name, c.Len(), t.rows)
		}
		t.index[c.Name] = i
		t.cols = append(t.cols, c)
	}
	return t, nil
}

// Rows returns the number of rows.
func (t *Table) Rows() int { return t.rows }

// Width returns the number of columns.
func (t *Table) Width() int { return len(t.cols) }

// Cells returns rows × columns.
func (t *Table) Cells() int { return t.rows * len(t.cols) }

// Names returns the column names in order.
func (t *Table) Names() []string {
	out := make([]string, len(t.cols))
	for i, c := range t.cols {
		out[i] = c.Name
	}
	return out
}

// Columns returns the columns in order. Callers must not modify them.
func (t *Table) Columns() []*Column { return t.cols }

// ColumnAt returns the i-th column.
func (t *Table) ColumnAt(i int) *Column { return t.cols[i] }

// Column looks up a column by name.
func (t *Table) Column(name string) (*Column, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, &ColumnNotFoundError{Name: name}
	}
	return t.cols[i], nil
}

// Has reports whether a column exists.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Get reads the cell at (row, column).
func (t *Table) Get(row int, name string) (Value, error) {
	c, err := t.Column(name)
	if err != nil {
		return Value{}, err
	}
	if row < 0 || row >= t.rows {
		return Value{}, &RowRangeError{Row: row, Rows: t.rows}
	}
	return c.cells[row], nil
}

// Set writes v into (row, column) in place. An unresolved column adopts the kind of
// the first present value written into it; otherwise v must match the column kind.
func (t *Table) Set(row int, name string, v Value) error {
	c, err := t.Column(name)
	if err != nil {
		return err
	}
	if row < 0 || row >= t.rows {
		return &RowRangeError{Row: row, Rows: t.rows}
	}
	if !v.IsMissing() {
		vk := KindOf(v)
		switch {
		case c.Kind == KindUnresolved:
			c.Kind = vk
		case c.Kind != vk:
			return fmt.Errorf("value of kind %s does not fit %s column %q", vk, c.Kind, name)
		}
	}
	c.cells[row] = v
	return nil
}

// Row returns the values of one row in column order.
func (t *Table) Row(i int) []Value {
	out := make([]Value, len(t.cols))
	for j, c := range t.cols {
		out[j] = c.cells[i]
	}
	return out
}

// Copy returns a deep copy.
func (t *Table) Copy() *Table {
	cols := make([]*Column, len(t.cols))
	for i, c := range t.cols {
		cols[i] = c.clone()
	}
	return &Table{cols: cols, index: copyIndex(t.index), rows: t.rows}
}

// SelectRows returns a new table holding the given row positions in the given order.
func (t *Table) SelectRows(rows []int) (*Table, error) {
	for _, r := range rows {
		if r < 0 || r >= t.rows {
			return nil, &RowRangeError{Row: r, Rows: t.rows}
		}
	}
	cols := make([]*Column, len(t.cols))
	for i, c := range t.cols {
		cells := make([]Value, len(rows))
		for k, r := range rows {
			cells[k] = c.cells[r]
		}
		cols[i] = &Column{Name: c.Name, Kind: c.Kind, cells: cells}
	}
	return &Table{cols: cols, index: copyIndex(t.index), rows: len(rows)}, nil
}

// Where returns a new table with the rows for which keep returns true, in order.
func (t *Table) Where(keep func(row int) bool) *Table {
	var rows []int
	for i := 0; i < t.rows; i++ {
		if keep(i) {
			rows = append(rows, i)
		}
	}
	out, _ := t.SelectRows(rows)
	return out
}

// SelectColumns returns a new table holding copies of the named columns in the given order.
func (t *Table) SelectColumns(names []string) (*Table, error) {
	cols := make([]*Column, 0, len(names))
	for _, n := range names {
		c, err := t.Column(n)
		if err != nil {
			return nil, err
		}
		cols = append(cols, c.clone())
	}
	return New(cols...)
}

// WithColumn returns a copy of t where the named column is replaced by c.
func (t *Table) WithColumn(c *Column) (*Table, error) {
	i, ok := t.index[c.Name]
	if !ok {
		return nil, &ColumnNotFoundError{Name: c.Name}
	}
	if c.Len() != t.rows {
		return nil, fmt.Errorf("column %q has %d rows, want %d", c.Name, c.Len(), t.rows)
	}
	out := t.Copy()
	out.cols[i] = c
	return out, nil
}

// Equal reports whether both tables have the same shape, names, kinds and cells.
// Missing cells compare equal to each other here.
func (t *Table) Equal(o *Table) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.rows != o.rows || len(t.cols) != len(o.cols) {
		return false
	}
	for i, c := range t.cols {
		oc := o.cols[i]
		if c.Name != oc.Name || c.Kind != oc.Kind {
			return false
		}
		for r := range c.cells {
			if !c.cells[r].Same(oc.cells[r]) {
				return false
			}
		}
	}
	return true
}

func copyIndex(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
