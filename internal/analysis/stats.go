package analysis

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/KaramelBytes/dataloom-cli/internal/table"
)

func numericColumns(t *table.Table) []*table.Column {
	var out []*table.Column
	for _, c := range t.Columns() {
		if c.Kind == table.KindNumeric {
			out = append(out, c)
		}
	}
	return out
}

func sortedCopy(vals []float64) []float64 {
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	return cp
}

// quantile interpolates linearly between the closest ranks of sorted data.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

// fmtFloat renders a statistic compactly; NaN uses the missing placeholder.
func fmtFloat(f float64, missing string) string {
	if math.IsNaN(f) {
		return missing
	}
	return strconv.FormatFloat(f, 'g', 6, 64)
}

func pct(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) * 100 / float64(whole)
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "\t", " ") }
