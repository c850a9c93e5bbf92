package table

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Policy is the single coercion table keyed by column kind. The loader, the filter and
// the cell editor all convert user text through it.
type Policy struct {
	// Decimal is the accepted decimal separator. 0 means '.'.
	Decimal rune
	// MissingToken is the placeholder shown for missing cells; it always reads back as missing.
	MissingToken string
}

// DefaultPolicy matches the file format defaults: '.' decimals and a NaN placeholder.
func DefaultPolicy() Policy {
	return Policy{Decimal: '.', MissingToken: "NaN"}
}

var missingTokens = map[string]struct{}{
	"": {}, "NA": {}, "N/A": {}, "n/a": {}, "NaN": {}, "nan": {}, "-NaN": {}, "-nan": {},
	"NULL": {}, "null": {}, "None": {}, "<NA>": {}, "#N/A": {},
}

// IsMissingToken reports whether raw text denotes a missing cell.
func (p Policy) IsMissingToken(raw string) bool {
	s := strings.TrimSpace(raw)
	if p.MissingToken != "" && s == p.MissingToken {
		return true
	}
	_, ok := missingTokens[s]
	return ok
}

var groupedComma = regexp.MustCompile(`^[+-]?\d{1,3}(\.\d{3})+(,\d*)?$`)

// ParseNumber parses a number honouring the policy's decimal separator.
func (p Policy) ParseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, "\u00A0", " "))
	if s == "" {
		return 0, false
	}
	dec := p.Decimal
	if dec == 0 {
		dec = '.'
	}
	if dec != '.' {
		// '.' is only accepted as a thousands mark between groups of three digits
		if strings.Contains(s, ".") {
			if !groupedComma.MatchString(s) {
				return 0, false
			}
			s = strings.ReplaceAll(s, ".", "")
		}
		s = strings.ReplaceAll(s, string(dec), ".")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != f {
		return 0, false
	}
	return f, true
}

// FormatNumber renders f with the policy's decimal separator.
func (p Policy) FormatNumber(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if p.Decimal != 0 && p.Decimal != '.' {
		s = strings.Replace(s, ".", string(p.Decimal), 1)
	}
	return s
}

var timeLayouts = []string{
	time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006",
	"2006-01-02T15:04:05", "2006-01-02 15:04", "2006-01-02 15:04:05",
	"1/2/2006 15:04", "1/2/2006 15:04:05", "02.01.2006",
}

// ParseTime tries the supported date/time layouts in order.
func ParseTime(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// isBlank reports input the editor stores as missing: empty text or the placeholder.
// Other null spellings such as "NA" are only recognised on load.
func (p Policy) isBlank(raw string) bool {
	s := strings.TrimSpace(raw)
	return s == "" || (p.MissingToken != "" && s == p.MissingToken)
}

// Coerce converts user text to a Value of the given column kind. Blank input and the
// missing placeholder become the missing marker. Text is stored as typed.
func (p Policy) Coerce(kind Kind, raw string) (Value, error) {
	if p.isBlank(raw) {
		return Missing(), nil
	}
	switch kind {
	case KindNumeric:
		f, ok := p.ParseNumber(raw)
		if !ok {
			return Value{}, &CoercionError{Input: raw, Kind: kind}
		}
		return Number(f), nil
	case KindTemporal:
		t, ok := ParseTime(raw)
		if !ok {
			return Value{}, &CoercionError{Input: raw, Kind: kind}
		}
		return Time(t), nil
	case KindText:
		return Text(raw), nil
	default:
		if f, ok := p.ParseNumber(raw); ok {
			return Number(f), nil
		}
		if t, ok := ParseTime(raw); ok {
			return Time(t), nil
		}
		return Text(raw), nil
	}
}

// Infer picks the narrowest kind for a single raw token: number, then date/time, then text.
func (p Policy) Infer(raw string) Value {
	if p.IsMissingToken(raw) {
		return Missing()
	}
	if f, ok := p.ParseNumber(raw); ok {
		return Number(f)
	}
	if t, ok := ParseTime(raw); ok {
		return Time(t)
	}
	return Text(raw)
}

// Numeric coerces a stored value to a number the way a numeric filter needs it:
// numbers pass through, text is parsed, everything else is treated as missing.
func (p Policy) Numeric(v Value) (float64, bool) {
	switch v.kind {
	case vNumber:
		return v.num, true
	case vText:
		return p.ParseNumber(v.text)
	default:
		return 0, false
	}
}

// KindOf returns the column kind a value naturally belongs to.
func KindOf(v Value) Kind {
	switch v.kind {
	case vNumber:
		return KindNumeric
	case vTime:
		return KindTemporal
	case vText:
		return KindText
	default:
		return KindUnresolved
	}
}

// InferColumn builds a column from raw tokens. A column is numeric when every present
// token is a number, temporal when every present token is a date/time, unresolved when
// nothing is present, and text otherwise (in which case every token is kept verbatim).
func InferColumn(name string, raw []string, p Policy) *Column {
	cells := make([]Value, len(raw))
	numCnt, timeCnt, present := 0, 0, 0
	for i, s := range raw {
		v := p.Infer(s)
		cells[i] = v
		switch v.kind {
		case vMissing:
			continue
		case vNumber:
			numCnt++
		case vTime:
			timeCnt++
		}
		present++
	}
	kind := KindText
	switch {
	case present == 0:
		kind = KindUnresolved
	case numCnt == present:
		kind = KindNumeric
	case timeCnt == present:
		kind = KindTemporal
	}
	if kind == KindText {
		for i, s := range raw {
			if cells[i].IsMissing() {
				continue
			}
			cells[i] = Text(s)
		}
	}
	return &Column{Name: name, Kind: kind, cells: cells}
}

// Format renders a value as text, numbers using the policy's decimal separator.
// Missing values render as the empty string.
func (p Policy) Format(v Value) string {
	if f, ok := v.Float(); ok {
		return p.FormatNumber(f)
	}
	return v.String()
}
