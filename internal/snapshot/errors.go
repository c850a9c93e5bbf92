package snapshot

import "fmt"

// FilterError indicates an invalid column, operator or value combination.
type FilterError struct {
	Column string
	Op     Operator
	Value  string
	Err    error
}

func (e *FilterError) Error() string {
	return fmt.Sprintf("filter %s %s %q: %v", e.Column, e.Op, e.Value, e.Err)
}

func (e *FilterError) Unwrap() error { return e.Err }

// SelectionError indicates a sub-table specification was rejected.
type SelectionError struct {
	Spec string
	Err  error
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("invalid selection %q: %v", e.Spec, e.Err)
}

func (e *SelectionError) Unwrap() error { return e.Err }
