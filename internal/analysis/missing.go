package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/KaramelBytes/dataloom-cli/internal/table"
)

type ColumnMissing struct {
	Column  string
	Kind    table.Kind
	Count   int
	Percent float64
	// Rows holds every row index with a missing cell; reports truncate it.
	Rows []int
}

type RowMissing struct {
	Row   int
	Count int
}

// Pattern is one shape of missingness: the columns missing together and how many rows share it.
type Pattern struct {
	Columns []string
	Rows    int
}

type MissingReport struct {
	TotalCells   int
	MissingCells int
	Percent      float64
	Columns      []ColumnMissing
	WorstRows    []RowMissing
	Patterns     []Pattern
	opt          Options
}

// AnalyzeMissing counts missing cells globally, per column and per row, and groups
// rows by which columns they are missing.
func AnalyzeMissing(t *table.Table, opt Options) *MissingReport {
	opt = opt.withDefaults()
	rep := &MissingReport{TotalCells: t.Cells(), opt: opt}
	perRow := make([]int, t.Rows())
	shapes := make([][]byte, t.Rows())
	for i := range shapes {
		shapes[i] = make([]byte, t.Width())
	}
	for j, c := range t.Columns() {
		cm := ColumnMissing{Column: c.Name, Kind: c.Kind}
		for i := 0; i < c.Len(); i++ {
			if c.At(i).IsMissing() {
				cm.Count++
				cm.Rows = append(cm.Rows, i)
				perRow[i]++
				shapes[i][j] = 1
			}
		}
		cm.Percent = pct(cm.Count, t.Rows())
		rep.MissingCells += cm.Count
		rep.Columns = append(rep.Columns, cm)
	}
	rep.Percent = pct(rep.MissingCells, rep.TotalCells)

	for i, n := range perRow {
		if n > 0 {
			rep.WorstRows = append(rep.WorstRows, RowMissing{Row: i, Count: n})
		}
	}
	sort.SliceStable(rep.WorstRows, func(a, b int) bool { return rep.WorstRows[a].Count > rep.WorstRows[b].Count })
	if len(rep.WorstRows) > opt.TopRows {
		rep.WorstRows = rep.WorstRows[:opt.TopRows]
	}

	if rep.MissingCells > 0 {
		rep.Patterns = patterns(t.Names(), shapes, opt.TopPatterns)
	}
	return rep
}

func patterns(names []string, shapes [][]byte, limit int) []Pattern {
	index := map[string]int{}
	var out []Pattern
	for _, s := range shapes {
		key := string(s)
		if i, ok := index[key]; ok {
			out[i].Rows++
			continue
		}
		p := Pattern{Rows: 1}
		for j, miss := range s {
			if miss == 1 {
				p.Columns = append(p.Columns, names[j])
			}
		}
		index[key] = len(out)
		out = append(out, p)
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Rows > out[b].Rows })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// PercentText formats the global missing share with two decimals.
func (r *MissingReport) PercentText() string {
	return fmt.Sprintf("%.2f%%", r.Percent)
}

func (r *MissingReport) Text() string {
	var b strings.Builder
	section(&b, "MISSING DATA")
	b.WriteString(fmt.Sprintf("Total cells: %d\n", r.TotalCells))
	b.WriteString(fmt.Sprintf("Missing cells: %d\n", r.MissingCells))
	b.WriteString(fmt.Sprintf("Missing percentage: %s\n", r.PercentText()))

	section(&b, "MISSING BY COLUMN")
	for _, c := range r.Columns {
		b.WriteString(fmt.Sprintf("- %s (%s): %d missing (%.2f%%)", c.Column, c.Kind, c.Count, c.Percent))
		if c.Count > 0 {
			b.WriteString(" rows " + joinInts(c.Rows, r.opt.IndexLimit))
		}
		b.WriteString("\n")
	}

	if len(r.WorstRows) > 0 {
		section(&b, "ROWS WITH MOST MISSING")
		for _, w := range r.WorstRows {
			b.WriteString(fmt.Sprintf("- Row %d: %d missing\n", w.Row, w.Count))
		}
	}
	if len(r.Patterns) > 0 {
		section(&b, "MISSING PATTERNS")
		for _, p := range r.Patterns {
			if len(p.Columns) == 0 {
				b.WriteString(fmt.Sprintf("- Complete rows: %d\n", p.Rows))
				continue
			}
			b.WriteString(fmt.Sprintf("- Missing in [%s]: %d rows\n", strings.Join(p.Columns, ", "), p.Rows))
		}
	}
	return b.String()
}
