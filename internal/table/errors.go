package table

import "fmt"

// ColumnNotFoundError indicates a referenced column is absent from the table.
type ColumnNotFoundError struct {
	Name string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("column %q does not exist", e.Name)
}

// CoercionError indicates text could not be converted to a column's kind.
type CoercionError struct {
	Input string
	Kind  Kind
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("cannot convert %q to %s", e.Input, e.Kind)
}

// RowRangeError indicates a row position outside the table.
type RowRangeError struct {
	Row  int
	Rows int
}

func (e *RowRangeError) Error() string {
	return fmt.Sprintf("row %d out of range [0, %d)", e.Row, e.Rows)
}
