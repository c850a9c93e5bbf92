// Package snapshot owns the pair of tables a session works on: the original, kept
// exactly as loaded, and the active view that filters, replacements and edits act on.
package snapshot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/KaramelBytes/dataloom-cli/internal/table"
)

// ErrNotLoaded is returned by operations that need a loaded table.
var ErrNotLoaded = errors.New("no data loaded")

// Summary counts what is shown against what was loaded.
type Summary struct {
	Rows         int
	Columns      int
	OriginalRows int
}

func (s Summary) String() string {
	out := fmt.Sprintf("Rows: %d | Columns: %d", s.Rows, s.Columns)
	if s.Rows != s.OriginalRows {
		out += fmt.Sprintf(" | Filtered from %d", s.OriginalRows)
	}
	return out
}

// Manager holds the original and active tables. Only one active table exists at a
// time; filter, reset and replace swap the reference, SetCell writes into it.
// A Manager is not safe for concurrent use.
type Manager struct {
	policy   table.Policy
	original *table.Table
	active   *table.Table
	onChange func(Summary)
}

// NewManager returns an empty manager. onChange, if non-nil, runs after every
// successful mutation so the caller can refresh its display.
func NewManager(p table.Policy, onChange func(Summary)) *Manager {
	return &Manager{policy: p, onChange: onChange}
}

// Load takes ownership of t as the original and activates a copy of it.
func (m *Manager) Load(t *table.Table) error {
	if t == nil {
		return errors.New("load: nil table")
	}
	m.original = t
	m.active = t.Copy()
	m.notify()
	return nil
}

func (m *Manager) Loaded() bool { return m.original != nil }

// Original returns the table as loaded. Callers must not modify it.
func (m *Manager) Original() *table.Table { return m.original }

// Active returns the current working table.
func (m *Manager) Active() *table.Table { return m.active }

func (m *Manager) Policy() table.Policy { return m.policy }

// Summary describes the active table relative to the original.
func (m *Manager) Summary() Summary {
	if m.active == nil {
		return Summary{}
	}
	return Summary{Rows: m.active.Rows(), Columns: m.active.Width(), OriginalRows: m.original.Rows()}
}

// Reset re-activates a copy of the original, discarding filters and edits.
func (m *Manager) Reset() error {
	if m.original == nil {
		return ErrNotLoaded
	}
	m.active = m.original.Copy()
	m.notify()
	return nil
}

// Filter derives the active table from the original rows matching the predicate.
// Edits made to the previous active table are discarded.
func (m *Manager) Filter(column string, op Operator, value string) (*table.Table, error) {
	if m.original == nil {
		return nil, ErrNotLoaded
	}
	ferr := func(err error) error {
		return &FilterError{Column: column, Op: op, Value: value, Err: err}
	}
	col, err := m.original.Column(column)
	if err != nil {
		return nil, ferr(err)
	}
	if value == "" {
		return nil, ferr(errors.New("a value is required"))
	}
	keep, err := m.predicate(col, op, value)
	if err != nil {
		return nil, ferr(err)
	}
	m.active = m.original.Where(keep)
	m.notify()
	return m.active, nil
}

func (m *Manager) predicate(col *table.Column, op Operator, value string) (func(int) bool, error) {
	p := m.policy
	switch op {
	case OpEquals:
		return func(i int) bool {
			v := col.At(i)
			return !v.IsMissing() && p.Format(v) == value
		}, nil
	case OpNotEquals:
		return func(i int) bool {
			v := col.At(i)
			return v.IsMissing() || p.Format(v) != value
		}, nil
	case OpContains:
		return func(i int) bool {
			v := col.At(i)
			return !v.IsMissing() && strings.Contains(p.Format(v), value)
		}, nil
	case OpGreater, OpLess:
		if col.Kind == table.KindTemporal {
			if ref, ok := table.ParseTime(value); ok {
				return func(i int) bool {
					t, ok := col.At(i).TimeValue()
					if !ok {
						return false
					}
					if op == OpGreater {
						return t.After(ref)
					}
					return t.Before(ref)
				}, nil
			}
		}
		ref, ok := p.ParseNumber(value)
		if !ok {
			return nil, fmt.Errorf("value %q is not a number", value)
		}
		return func(i int) bool {
			f, ok := p.Numeric(col.At(i))
			if !ok {
				return false
			}
			if op == OpGreater {
				return f > ref
			}
			return f < ref
		}, nil
	default:
		return nil, fmt.Errorf("unknown operator %d", int(op))
	}
}

// Replace substitutes every cell of column equal to oldText with newText in the active
// table. Both strings are coerced through the column's kind; a blank oldText matches
// missing cells and a blank newText writes the missing marker. It returns the number of
// cells replaced.
func (m *Manager) Replace(column, oldText, newText string) (int, error) {
	if m.active == nil {
		return 0, ErrNotLoaded
	}
	col, err := m.active.Column(column)
	if err != nil {
		return 0, err
	}
	oldV, err := m.policy.Coerce(col.Kind, oldText)
	if err != nil {
		return 0, err
	}
	newV, err := m.policy.Coerce(col.Kind, newText)
	if err != nil {
		return 0, err
	}
	cells := col.Values()
	n := 0
	for i, v := range cells {
		match := v.Equal(oldV)
		if oldV.IsMissing() {
			match = v.IsMissing()
		}
		if match {
			cells[i] = newV
			n++
		}
	}
	kind := col.Kind
	if kind == table.KindUnresolved && n > 0 && !newV.IsMissing() {
		kind = table.KindOf(newV)
	}
	next, err := m.active.WithColumn(table.NewColumn(col.Name, kind, cells))
	if err != nil {
		return 0, err
	}
	m.active = next
	m.notify()
	return n, nil
}

// SetCell writes v into the active table in place.
func (m *Manager) SetCell(row int, column string, v table.Value) error {
	if m.active == nil {
		return ErrNotLoaded
	}
	if err := m.active.Set(row, column, v); err != nil {
		return err
	}
	m.notify()
	return nil
}

// Extract returns a sub-table of the active table without changing it. spec is either
// a comma-separated list of row positions or a comma-separated list of column names.
func (m *Manager) Extract(spec string) (*table.Table, error) {
	if m.active == nil {
		return nil, ErrNotLoaded
	}
	serr := func(err error) error { return &SelectionError{Spec: spec, Err: err} }
	if strings.TrimSpace(spec) == "" {
		return nil, serr(errors.New("empty selection"))
	}
	parts := strings.Split(spec, ",")
	tokens := make([]string, len(parts))
	var rows []int
	for i, p := range parts {
		tok := strings.TrimSpace(p)
		if tok == "" {
			return nil, serr(fmt.Errorf("empty item at position %d", i+1))
		}
		tokens[i] = tok
		if isDigits(tok) {
			n, err := strconv.Atoi(tok)
			if err != nil {
				return nil, serr(err)
			}
			rows = append(rows, n)
		}
	}
	switch len(rows) {
	case len(tokens):
		sub, err := m.active.SelectRows(rows)
		if err != nil {
			return nil, serr(err)
		}
		return sub, nil
	case 0:
		sub, err := m.active.SelectColumns(tokens)
		if err != nil {
			return nil, serr(err)
		}
		return sub, nil
	default:
		return nil, serr(errors.New("mixed row indices and column names"))
	}
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func (m *Manager) notify() {
	if m.onChange != nil {
		m.onChange(m.Summary())
	}
}
