// Package editor writes a single user-typed value into the active table.
package editor

import (
	"fmt"

	"github.com/KaramelBytes/dataloom-cli/internal/grid"
	"github.com/KaramelBytes/dataloom-cli/internal/snapshot"
	"github.com/KaramelBytes/dataloom-cli/internal/table"
)

// Change records one applied edit.
type Change struct {
	Row    int
	Column string
	Old    table.Value
	New    table.Value
}

// Message describes the change, rendering missing cells with the policy's placeholder.
func (c Change) Message(p table.Policy) string {
	return fmt.Sprintf("Changed cell [%d, %s]: '%s' → '%s'", c.Row, c.Column, show(c.Old, p), show(c.New, p))
}

func show(v table.Value, p table.Policy) string {
	if v.IsMissing() {
		return p.MissingToken
	}
	return p.Format(v)
}

// Current returns the text a user would start editing from: the cell's formatted
// value, or empty for a missing cell.
func Current(m *snapshot.Manager, cell grid.Cell) (string, error) {
	t := m.Active()
	if t == nil {
		return "", snapshot.ErrNotLoaded
	}
	v, err := t.Get(cell.Row, cell.Column)
	if err != nil {
		return "", err
	}
	return m.Policy().Format(v), nil
}

// Edit coerces raw through the column's kind and writes it in place. Blank input and
// the missing placeholder store the missing marker. On any error the table is unchanged.
func Edit(m *snapshot.Manager, cell grid.Cell, raw string) (Change, error) {
	t := m.Active()
	if t == nil {
		return Change{}, snapshot.ErrNotLoaded
	}
	old, err := t.Get(cell.Row, cell.Column)
	if err != nil {
		return Change{}, err
	}
	col, err := t.Column(cell.Column)
	if err != nil {
		return Change{}, err
	}
	v, err := m.Policy().Coerce(col.Kind, raw)
	if err != nil {
		return Change{}, err
	}
	if err := m.SetCell(cell.Row, cell.Column, v); err != nil {
		return Change{}, err
	}
	return Change{Row: cell.Row, Column: cell.Column, Old: old, New: v}, nil
}
