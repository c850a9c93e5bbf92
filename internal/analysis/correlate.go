package analysis

import (
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/dataloom-cli/internal/table"
)

// Matrix is a symmetric Pearson correlation matrix across numeric columns.
type Matrix struct {
	Columns []string
	Values  [][]float64 // row-major, Values[i][j]
	opt     Options
}

// Correlate computes pairwise Pearson correlation over rows where both cells are
// present. A constant column correlates as NaN, its diagonal included.
func Correlate(t *table.Table, opt Options) (*Matrix, error) {
	opt = opt.withDefaults()
	cols := numericColumns(t)
	if len(cols) == 0 {
		return nil, &NoNumericDataError{Analysis: "correlation"}
	}
	n := len(cols)
	m := &Matrix{Columns: make([]string, n), Values: make([][]float64, n), opt: opt}
	for i, c := range cols {
		m.Columns[i] = c.Name
		m.Values[i] = make([]float64, n)
	}
	for a := 0; a < n; a++ {
		for b := a; b < n; b++ {
			r := pearson(cols[a], cols[b])
			if a == b && !math.IsNaN(r) {
				r = 1
			}
			m.Values[a][b] = r
			m.Values[b][a] = r
		}
	}
	return m, nil
}

func pearson(x, y *table.Column) float64 {
	var xs, ys []float64
	for i := 0; i < x.Len(); i++ {
		fx, okx := x.At(i).Float()
		fy, oky := y.At(i).Float()
		if okx && oky {
			xs = append(xs, fx)
			ys = append(ys, fy)
		}
	}
	if len(xs) < 2 || constant(xs) || constant(ys) {
		return math.NaN()
	}
	r := stat.Correlation(xs, ys, nil)
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r
}

func constant(xs []float64) bool {
	for _, x := range xs[1:] {
		if x != xs[0] {
			return false
		}
	}
	return true
}

// At returns the correlation between two named columns.
func (m *Matrix) At(a, b string) (float64, bool) {
	ia, ib := -1, -1
	for i, c := range m.Columns {
		if c == a {
			ia = i
		}
		if c == b {
			ib = i
		}
	}
	if ia < 0 || ib < 0 {
		return 0, false
	}
	return m.Values[ia][ib], true
}

func (m *Matrix) Text() string {
	var b strings.Builder
	section(&b, "CORRELATION MATRIX")
	header := append([]string{""}, m.Columns...)
	rows := make([][]string, len(m.Columns))
	for i, name := range m.Columns {
		row := []string{name}
		for _, r := range m.Values[i] {
			if math.IsNaN(r) {
				row = append(row, m.opt.Policy.MissingToken)
				continue
			}
			row = append(row, strconv.FormatFloat(r, 'f', 4, 64))
		}
		rows[i] = row
	}
	writeGrid(&b, header, rows)
	return b.String()
}
