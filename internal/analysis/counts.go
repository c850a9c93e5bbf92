package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/KaramelBytes/dataloom-cli/internal/table"
)

type ValueCount struct {
	Value string
	Count int
}

// Counts is the frequency of each present value in one column.
type Counts struct {
	Column string
	Values []ValueCount
	opt    Options
}

const barWidth = 40

// CountValues tallies present values, most frequent first, ties by first appearance.
func CountValues(t *table.Table, column string, opt Options) (*Counts, error) {
	opt = opt.withDefaults()
	c, err := t.Column(column)
	if err != nil {
		return nil, err
	}
	index := map[string]int{}
	out := &Counts{Column: column, opt: opt}
	for i := 0; i < c.Len(); i++ {
		v := c.At(i)
		if v.IsMissing() {
			continue
		}
		k := opt.Policy.Format(v)
		if j, ok := index[k]; ok {
			out.Values[j].Count++
			continue
		}
		index[k] = len(out.Values)
		out.Values = append(out.Values, ValueCount{Value: k, Count: 1})
	}
	sort.SliceStable(out.Values, func(a, b int) bool { return out.Values[a].Count > out.Values[b].Count })
	return out, nil
}

// Text draws one bar per value scaled to the most frequent one.
func (c *Counts) Text() string {
	var b strings.Builder
	section(&b, "VALUE COUNTS: "+c.Column)
	if len(c.Values) == 0 {
		b.WriteString("No values present.\n")
		return b.String()
	}
	labelW := 0
	for _, v := range c.Values {
		if w := runewidth.StringWidth(safeVal(v.Value)); w > labelW {
			labelW = w
		}
	}
	top := c.Values[0].Count
	for _, v := range c.Values {
		n := v.Count * barWidth / top
		if n == 0 {
			n = 1
		}
		label := runewidth.FillRight(safeVal(v.Value), labelW)
		b.WriteString(fmt.Sprintf("%s  %s %d\n", label, strings.Repeat("█", n), v.Count))
	}
	return b.String()
}
