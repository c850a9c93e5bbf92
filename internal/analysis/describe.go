package analysis

import (
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/dataloom-cli/internal/table"
)

// ColumnStats summarises one column. Numeric columns fill Mean through Max; other
// kinds fill Unique, Top and Freq.
type ColumnStats struct {
	Name    string
	Kind    table.Kind
	Numeric bool
	Count   int

	Mean, Std, Min, Q1, Median, Q3, Max float64

	Unique int
	Top    string
	Freq   int
}

// Description is a statistics table keyed by statistic name and column.
type Description struct {
	Columns []ColumnStats
	opt     Options
}

var (
	otherStats   = []string{"unique", "top", "freq"}
	numericStats = []string{"mean", "std", "min", "25%", "50%", "75%", "max"}
)

// Describe computes per-column statistics over present cells.
func Describe(t *table.Table, opt Options) *Description {
	opt = opt.withDefaults()
	d := &Description{opt: opt}
	for _, c := range t.Columns() {
		cs := ColumnStats{Name: c.Name, Kind: c.Kind}
		if c.Kind == table.KindNumeric {
			cs.Numeric = true
			describeNumeric(&cs, c)
		} else {
			describeOther(&cs, c, opt.Policy)
		}
		d.Columns = append(d.Columns, cs)
	}
	return d
}

func describeNumeric(cs *ColumnStats, c *table.Column) {
	vals, _ := c.Floats()
	cs.Count = len(vals)
	if cs.Count == 0 {
		nan := math.NaN()
		cs.Mean, cs.Std, cs.Min, cs.Q1, cs.Median, cs.Q3, cs.Max = nan, nan, nan, nan, nan, nan, nan
		return
	}
	cs.Mean, cs.Std = stat.MeanStdDev(vals, nil)
	if cs.Count < 2 {
		cs.Std = math.NaN()
	}
	sorted := sortedCopy(vals)
	cs.Min = sorted[0]
	cs.Q1 = quantile(sorted, 0.25)
	cs.Median = quantile(sorted, 0.5)
	cs.Q3 = quantile(sorted, 0.75)
	cs.Max = sorted[len(sorted)-1]
}

func describeOther(cs *ColumnStats, c *table.Column, p table.Policy) {
	counts := map[string]int{}
	var order []string
	for i := 0; i < c.Len(); i++ {
		v := c.At(i)
		if v.IsMissing() {
			continue
		}
		cs.Count++
		k := p.Format(v)
		if _, ok := counts[k]; !ok {
			order = append(order, k)
		}
		counts[k]++
	}
	cs.Unique = len(order)
	for _, k := range order {
		if counts[k] > cs.Freq {
			cs.Top, cs.Freq = k, counts[k]
		}
	}
}

// Stats lists the statistic names that apply to at least one column, in display order.
func (d *Description) Stats() []string {
	var hasNum, hasOther bool
	for _, c := range d.Columns {
		if c.Numeric {
			hasNum = true
		} else {
			hasOther = true
		}
	}
	out := []string{"count"}
	if hasOther {
		out = append(out, otherStats...)
	}
	if hasNum {
		out = append(out, numericStats...)
	}
	return out
}

// Value returns one statistic for one column as text. Statistics that do not apply to
// the column render as the missing placeholder; ok is false for an unknown column.
func (d *Description) Value(statName, column string) (string, bool) {
	for _, c := range d.Columns {
		if c.Name == column {
			return d.cell(c, statName), true
		}
	}
	return "", false
}

func (d *Description) cell(c ColumnStats, statName string) string {
	na := d.opt.Policy.MissingToken
	if statName == "count" {
		return strconv.Itoa(c.Count)
	}
	if !c.Numeric {
		switch statName {
		case "unique":
			return strconv.Itoa(c.Unique)
		case "top":
			if c.Freq == 0 {
				return na
			}
			return safeVal(c.Top)
		case "freq":
			if c.Freq == 0 {
				return na
			}
			return strconv.Itoa(c.Freq)
		}
		return na
	}
	var f float64
	switch statName {
	case "mean":
		f = c.Mean
	case "std":
		f = c.Std
	case "min":
		f = c.Min
	case "25%":
		f = c.Q1
	case "50%":
		f = c.Median
	case "75%":
		f = c.Q3
	case "max":
		f = c.Max
	default:
		return na
	}
	return fmtFloat(f, na)
}

// Text renders the description with statistics as rows and columns as columns.
func (d *Description) Text() string {
	var b strings.Builder
	section(&b, "DESCRIBE")
	if len(d.Columns) == 0 {
		b.WriteString("No columns.\n")
		return b.String()
	}
	header := []string{""}
	for _, c := range d.Columns {
		header = append(header, c.Name)
	}
	var rows [][]string
	for _, s := range d.Stats() {
		row := []string{s}
		for _, c := range d.Columns {
			row = append(row, d.cell(c, s))
		}
		rows = append(rows, row)
	}
	writeGrid(&b, header, rows)
	return b.String()
}
