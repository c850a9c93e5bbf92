package table

import (
	"strconv"
	"time"
)

// Kind is the declared type of a column.
type Kind int

const (
	// KindUnresolved marks a column that holds only missing values so far.
	KindUnresolved Kind = iota
	KindNumeric
	KindTemporal
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindTemporal:
		return "datetime"
	case KindText:
		return "text"
	default:
		return "unresolved"
	}
}

type valueKind uint8

const (
	vMissing valueKind = iota
	vNumber
	vTime
	vText
)

// Value is a single cell. The zero Value is the missing marker.
type Value struct {
	kind valueKind
	num  float64
	text string
	t    time.Time
}

// Missing returns the missing marker.
func Missing() Value { return Value{} }

// Number wraps a float. NaN is stored as missing.
func Number(f float64) Value {
	if f != f {
		return Value{}
	}
	return Value{kind: vNumber, num: f}
}

func Time(t time.Time) Value { return Value{kind: vTime, t: t} }

func Text(s string) Value { return Value{kind: vText, text: s} }

func (v Value) IsMissing() bool { return v.kind == vMissing }

// Float returns the numeric payload; ok is false for non-numeric values.
func (v Value) Float() (float64, bool) { return v.num, v.kind == vNumber }

// TimeValue returns the temporal payload; ok is false for non-temporal values.
func (v Value) TimeValue() (time.Time, bool) { return v.t, v.kind == vTime }

// String is the canonical textual form used for display, equality filters and saving.
// The missing marker renders as the empty string; renderers substitute a placeholder.
func (v Value) String() string {
	switch v.kind {
	case vNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case vTime:
		return FormatTime(v.t)
	case vText:
		return v.text
	default:
		return ""
	}
}

// Equal reports value equality. Missing never equals anything, itself included.
func (v Value) Equal(o Value) bool {
	if v.kind == vMissing || o.kind != v.kind {
		return false
	}
	switch v.kind {
	case vNumber:
		return v.num == o.num
	case vTime:
		return v.t.Equal(o.t)
	default:
		return v.text == o.text
	}
}

// Same is like Equal but treats two missing markers as identical. Used for table comparison.
func (v Value) Same(o Value) bool {
	if v.kind == vMissing && o.kind == vMissing {
		return true
	}
	return v.Equal(o)
}

// FormatTime renders dates without a clock part when the clock is midnight UTC.
// A non-zero zone offset is kept so the instant reads back unchanged.
func FormatTime(t time.Time) string {
	if _, off := t.Zone(); off != 0 {
		return t.Format(time.RFC3339Nano)
	}
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04:05.999999999")
}
