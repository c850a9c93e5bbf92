package editor

import (
	"errors"
	"strings"
	"testing"

	"github.com/KaramelBytes/dataloom-cli/internal/grid"
	"github.com/KaramelBytes/dataloom-cli/internal/parser"
	"github.com/KaramelBytes/dataloom-cli/internal/snapshot"
	"github.com/KaramelBytes/dataloom-cli/internal/table"
)

func newManager(t *testing.T, csv string) *snapshot.Manager {
	t.Helper()
	tb, err := parser.Read(strings.NewReader(csv), parser.DefaultOptions())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	m := snapshot.NewManager(table.DefaultPolicy(), nil)
	if err := m.Load(tb); err != nil {
		t.Fatalf("load: %v", err)
	}
	return m
}

const data = "qty;day;note;empty\n3;2024-05-01;first;\n7;2024-05-02;second;\n"

func TestEditNumericRejectsText(t *testing.T) {
	m := newManager(t, data)
	before := m.Active().Copy()
	_, err := Edit(m, grid.Cell{Row: 0, Column: "qty"}, "abc")
	var ce *table.CoercionError
	if !errors.As(err, &ce) {
		t.Fatalf("want CoercionError, got %v", err)
	}
	if ce.Input != "abc" || ce.Kind != table.KindNumeric {
		t.Fatalf("error = %+v", ce)
	}
	if !m.Active().Equal(before) {
		t.Fatalf("failed edit changed the table")
	}
}

func TestEditEmptyStoresMissing(t *testing.T) {
	m := newManager(t, data)
	for _, col := range []string{"qty", "day", "note"} {
		if _, err := Edit(m, grid.Cell{Row: 1, Column: col}, ""); err != nil {
			t.Fatalf("%s: %v", col, err)
		}
		v, _ := m.Active().Get(1, col)
		if !v.IsMissing() {
			t.Fatalf("%s should be missing, got %q", col, v.String())
		}
	}
}

func TestEditCoercesByKind(t *testing.T) {
	m := newManager(t, data)
	ch, err := Edit(m, grid.Cell{Row: 0, Column: "qty"}, "4.25")
	if err != nil {
		t.Fatalf("numeric: %v", err)
	}
	if f, ok := ch.New.Float(); !ok || f != 4.25 {
		t.Fatalf("new value = %q", ch.New.String())
	}
	if got := ch.Message(table.DefaultPolicy()); got != "Changed cell [0, qty]: '3' → '4.25'" {
		t.Fatalf("message = %q", got)
	}

	if _, err := Edit(m, grid.Cell{Row: 0, Column: "day"}, "not a date"); err == nil {
		t.Fatalf("expected coercion error for temporal column")
	}
	if _, err := Edit(m, grid.Cell{Row: 0, Column: "day"}, "2024-06-30"); err != nil {
		t.Fatalf("temporal: %v", err)
	}

	if _, err := Edit(m, grid.Cell{Row: 0, Column: "note"}, "  spaced  "); err != nil {
		t.Fatalf("text: %v", err)
	}
	v, _ := m.Active().Get(0, "note")
	if v.String() != "  spaced  " {
		t.Fatalf("text should be stored as typed, got %q", v.String())
	}
}

func TestEditTextKeepsNullSpellings(t *testing.T) {
	m := newManager(t, data)
	for _, raw := range []string{"None", "NA", "null"} {
		if _, err := Edit(m, grid.Cell{Row: 0, Column: "note"}, raw); err != nil {
			t.Fatalf("%s: %v", raw, err)
		}
		v, _ := m.Active().Get(0, "note")
		if v.IsMissing() || v.String() != raw {
			t.Fatalf("%s stored as %q missing=%v", raw, v.String(), v.IsMissing())
		}
	}
	if _, err := Edit(m, grid.Cell{Row: 0, Column: "note"}, "NaN"); err != nil {
		t.Fatalf("placeholder: %v", err)
	}
	if v, _ := m.Active().Get(0, "note"); !v.IsMissing() {
		t.Fatalf("placeholder should store the missing marker")
	}
}

func TestEditUnresolvedColumnAdoptsKind(t *testing.T) {
	m := newManager(t, data)
	if _, err := Edit(m, grid.Cell{Row: 0, Column: "empty"}, "12"); err != nil {
		t.Fatalf("edit: %v", err)
	}
	c, _ := m.Active().Column("empty")
	if c.Kind != table.KindNumeric {
		t.Fatalf("kind = %s, want numeric", c.Kind)
	}
	if _, err := Edit(m, grid.Cell{Row: 1, Column: "empty"}, "twelve"); err == nil {
		t.Fatalf("expected error once the column is numeric")
	}
}

func TestEditBadAddress(t *testing.T) {
	m := newManager(t, data)
	var rr *table.RowRangeError
	if _, err := Edit(m, grid.Cell{Row: 5, Column: "qty"}, "1"); !errors.As(err, &rr) {
		t.Fatalf("want RowRangeError, got %v", err)
	}
	var nf *table.ColumnNotFoundError
	if _, err := Edit(m, grid.Cell{Row: 0, Column: "nope"}, "1"); !errors.As(err, &nf) {
		t.Fatalf("want ColumnNotFoundError, got %v", err)
	}
	if _, err := Edit(snapshot.NewManager(table.DefaultPolicy(), nil), grid.Cell{}, "1"); !errors.Is(err, snapshot.ErrNotLoaded) {
		t.Fatalf("want ErrNotLoaded, got %v", err)
	}
}

func TestCurrent(t *testing.T) {
	m := newManager(t, data)
	got, err := Current(m, grid.Cell{Row: 1, Column: "day"})
	if err != nil || got != "2024-05-02" {
		t.Fatalf("current = %q, %v", got, err)
	}
	got, _ = Current(m, grid.Cell{Row: 0, Column: "empty"})
	if got != "" {
		t.Fatalf("missing cell current = %q, want empty", got)
	}
}
