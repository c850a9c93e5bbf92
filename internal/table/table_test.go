package table

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func sample(t *testing.T) *Table {
	t.Helper()
	p := DefaultPolicy()
	tb, err := New(
		InferColumn("id", []string{"1", "2", "3"}, p),
		InferColumn("name", []string{"ala", "", "ola"}, p),
		InferColumn("when", []string{"2024-01-02", "2024-02-03", "NaN"}, p),
		InferColumn("empty", []string{"", "", ""}, p),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return tb
}

func TestInferColumnKinds(t *testing.T) {
	tb := sample(t)
	got := map[string]Kind{}
	for _, c := range tb.Columns() {
		got[c.Name] = c.Kind
	}
	want := map[string]Kind{"id": KindNumeric, "name": KindText, "when": KindTemporal, "empty": KindUnresolved}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestInferColumnMixedKeepsText(t *testing.T) {
	c := InferColumn("mixed", []string{"1", "x", ""}, DefaultPolicy())
	if c.Kind != KindText {
		t.Fatalf("kind = %s, want text", c.Kind)
	}
	if got := c.At(0).String(); got != "1" {
		t.Fatalf("first cell = %q", got)
	}
	if !c.At(2).IsMissing() {
		t.Fatalf("blank cell should be missing")
	}
}

func TestMissingNeverEqual(t *testing.T) {
	if Missing().Equal(Missing()) {
		t.Fatalf("missing must not equal missing")
	}
	if Missing().Equal(Text("")) {
		t.Fatalf("missing must not equal empty text")
	}
	if !Missing().Same(Missing()) {
		t.Fatalf("Same should treat two missing markers as identical")
	}
	if !Number(2).Equal(Number(2)) {
		t.Fatalf("numbers should compare by value")
	}
}

func TestCoerce(t *testing.T) {
	p := DefaultPolicy()
	tests := []struct {
		name    string
		kind    Kind
		raw     string
		want    string
		missing bool
		wantErr bool
	}{
		{name: "number", kind: KindNumeric, raw: " 4.5 ", want: "4.5"},
		{name: "number blank", kind: KindNumeric, raw: "  ", missing: true},
		{name: "number garbage", kind: KindNumeric, raw: "abc", wantErr: true},
		{name: "date", kind: KindTemporal, raw: "2024-03-01", want: "2024-03-01"},
		{name: "datetime", kind: KindTemporal, raw: "2024-03-01 10:20:30", want: "2024-03-01 10:20:30"},
		{name: "date garbage", kind: KindTemporal, raw: "tomorrow", wantErr: true},
		{name: "text as typed", kind: KindText, raw: " hi ", want: " hi "},
		{name: "text blank", kind: KindText, raw: "", missing: true},
		{name: "placeholder", kind: KindText, raw: "NaN", missing: true},
		{name: "unresolved number", kind: KindUnresolved, raw: "7", want: "7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := p.Coerce(tt.kind, tt.raw)
			if tt.wantErr {
				var ce *CoercionError
				if !errors.As(err, &ce) {
					t.Fatalf("want CoercionError, got %v", err)
				}
				if ce.Input != tt.raw || ce.Kind != tt.kind {
					t.Fatalf("error fields = %+v", ce)
				}
				return
			}
			if err != nil {
				t.Fatalf("Coerce: %v", err)
			}
			if v.IsMissing() != tt.missing {
				t.Fatalf("missing = %v, want %v", v.IsMissing(), tt.missing)
			}
			if !tt.missing && v.String() != tt.want {
				t.Fatalf("value = %q, want %q", v.String(), tt.want)
			}
		})
	}
}

func TestCommaDecimalPolicy(t *testing.T) {
	p := Policy{Decimal: ',', MissingToken: "NaN"}
	f, ok := p.ParseNumber("1.234,5")
	if !ok || f != 1234.5 {
		t.Fatalf("ParseNumber = %v, %v", f, ok)
	}
	if got := p.FormatNumber(2.5); got != "2,5" {
		t.Fatalf("FormatNumber = %q", got)
	}
	if f, ok := p.ParseNumber("1.5"); ok {
		t.Fatalf("ParseNumber(1.5) = %v, want rejection", f)
	}
	if _, err := p.Coerce(KindNumeric, "1.5"); !errors.As(err, new(*CoercionError)) {
		t.Fatalf("Coerce(1.5) = %v, want CoercionError", err)
	}
	v := p.Infer("02.01.2006")
	if KindOf(v) != KindTemporal || v.String() != "2006-01-02" {
		t.Fatalf("Infer(02.01.2006) = %s %q", KindOf(v), v.String())
	}
	if f, ok := p.ParseNumber("-12.345.678,9"); !ok || f != -12345678.9 {
		t.Fatalf("grouped = %v, %v", f, ok)
	}
}

func TestCoerceKeepsNullSpellingsAsText(t *testing.T) {
	p := DefaultPolicy()
	for _, raw := range []string{"NA", "None", "null", "N/A"} {
		v, err := p.Coerce(KindText, raw)
		if err != nil || v.IsMissing() || v.String() != raw {
			t.Fatalf("Coerce(text, %q) = %q missing=%v, %v", raw, v.String(), v.IsMissing(), err)
		}
	}
	if _, err := p.Coerce(KindNumeric, "NA"); err == nil {
		t.Fatalf("NA is not a number")
	}
	if !p.Infer("NA").IsMissing() {
		t.Fatalf("NA still reads as missing on load")
	}
}

func TestFormatTimeKeepsOffset(t *testing.T) {
	in := "2024-01-02T10:00:00+02:00"
	tm, ok := ParseTime(in)
	if !ok {
		t.Fatalf("ParseTime(%q) failed", in)
	}
	if got := FormatTime(tm); got != in {
		t.Fatalf("FormatTime = %q, want %q", got, in)
	}
	back, ok := ParseTime(FormatTime(tm))
	if !ok || !back.Equal(tm) {
		t.Fatalf("instant moved: %v -> %v", tm, back)
	}
	utc, _ := ParseTime("2024-01-02 10:00:00")
	if got := FormatTime(utc); got != "2024-01-02 10:00:00" {
		t.Fatalf("utc = %q", got)
	}
}

func TestSetAndCopyIsolation(t *testing.T) {
	tb := sample(t)
	cp := tb.Copy()
	if err := tb.Set(1, "id", Number(20)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, _ := cp.Get(1, "id"); v.String() != "2" {
		t.Fatalf("copy changed with original: %s", v)
	}
	if tb.Equal(cp) {
		t.Fatalf("tables should differ after edit")
	}
	if err := tb.Set(0, "id", Text("x")); err == nil {
		t.Fatalf("expected kind mismatch error")
	}
	var nf *ColumnNotFoundError
	if err := tb.Set(0, "nope", Number(1)); !errors.As(err, &nf) {
		t.Fatalf("want ColumnNotFoundError, got %v", err)
	}
	var rr *RowRangeError
	if err := tb.Set(3, "id", Number(1)); !errors.As(err, &rr) {
		t.Fatalf("want RowRangeError, got %v", err)
	}
}

func TestSetAdoptsKindOnUnresolved(t *testing.T) {
	tb := sample(t)
	if err := tb.Set(0, "empty", Time(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))); err != nil {
		t.Fatalf("Set: %v", err)
	}
	c, _ := tb.Column("empty")
	if c.Kind != KindTemporal {
		t.Fatalf("kind = %s, want datetime", c.Kind)
	}
}

func TestSelectRowsAndColumns(t *testing.T) {
	tb := sample(t)
	sub, err := tb.SelectRows([]int{2, 0})
	if err != nil {
		t.Fatalf("SelectRows: %v", err)
	}
	var ids []string
	for i := 0; i < sub.Rows(); i++ {
		v, _ := sub.Get(i, "id")
		ids = append(ids, v.String())
	}
	if diff := cmp.Diff([]string{"3", "1"}, ids); diff != "" {
		t.Fatalf("row order (-want +got):\n%s", diff)
	}
	if _, err := tb.SelectRows([]int{5}); err == nil {
		t.Fatalf("expected range error")
	}

	cols, err := tb.SelectColumns([]string{"when", "id"})
	if err != nil {
		t.Fatalf("SelectColumns: %v", err)
	}
	if diff := cmp.Diff([]string{"when", "id"}, cols.Names()); diff != "" {
		t.Fatalf("column order (-want +got):\n%s", diff)
	}
	if _, err := tb.SelectColumns([]string{"id", "ghost"}); err == nil {
		t.Fatalf("expected missing column error")
	}
}

func TestNewRejectsRaggedColumns(t *testing.T) {
	_, err := New(
		NewColumn("a", KindNumeric, []Value{Number(1)}),
		NewColumn("b", KindNumeric, []Value{Number(1), Number(2)}),
	)
	if err == nil {
		t.Fatalf("expected error for unequal lengths")
	}
	_, err = New(
		NewColumn("a", KindNumeric, nil),
		NewColumn("a", KindNumeric, nil),
	)
	if err == nil {
		t.Fatalf("expected error for duplicate names")
	}
}
