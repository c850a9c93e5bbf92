package analysis

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/dataloom-cli/internal/table"
)

// ColumnOutliers reports both criteria for one numeric column. The IQR set and the
// z-score count are computed independently and may disagree.
type ColumnOutliers struct {
	Column       string
	Present      int
	Q1, Q3, IQR  float64
	Lower, Upper float64
	// Rows and Values list the IQR outliers in row order.
	Rows   []int
	Values []float64
	// ZCount counts present values with |z| above the threshold (population std).
	ZCount int
}

type OutlierReport struct {
	Columns []ColumnOutliers
	opt     Options
}

// DetectOutliers runs the IQR and z-score criteria on every numeric column.
func DetectOutliers(t *table.Table, opt Options) (*OutlierReport, error) {
	opt = opt.withDefaults()
	cols := numericColumns(t)
	if len(cols) == 0 {
		return nil, &NoNumericDataError{Analysis: "outlier detection"}
	}
	rep := &OutlierReport{opt: opt}
	for _, c := range cols {
		rep.Columns = append(rep.Columns, columnOutliers(c, opt))
	}
	return rep, nil
}

func columnOutliers(c *table.Column, opt Options) ColumnOutliers {
	vals, rows := c.Floats()
	co := ColumnOutliers{Column: c.Name, Present: len(vals)}
	if len(vals) == 0 {
		nan := math.NaN()
		co.Q1, co.Q3, co.IQR, co.Lower, co.Upper = nan, nan, nan, nan, nan
		return co
	}
	sorted := sortedCopy(vals)
	co.Q1 = quantile(sorted, 0.25)
	co.Q3 = quantile(sorted, 0.75)
	co.IQR = co.Q3 - co.Q1
	co.Lower = co.Q1 - opt.IQRFactor*co.IQR
	co.Upper = co.Q3 + opt.IQRFactor*co.IQR
	for i, v := range vals {
		if v < co.Lower || v > co.Upper {
			co.Rows = append(co.Rows, rows[i])
			co.Values = append(co.Values, v)
		}
	}

	mean, std := stat.PopMeanStdDev(vals, nil)
	if std > 0 {
		for _, v := range vals {
			if math.Abs(stat.StdScore(v, mean, std)) > opt.ZThreshold {
				co.ZCount++
			}
		}
	}
	return co
}

// Any reports whether either criterion flagged a value.
func (r *OutlierReport) Any() bool {
	for _, c := range r.Columns {
		if len(c.Rows) > 0 || c.ZCount > 0 {
			return true
		}
	}
	return false
}

func (r *OutlierReport) Text() string {
	var b strings.Builder
	section(&b, "OUTLIERS")
	na := r.opt.Policy.MissingToken
	b.WriteString(fmt.Sprintf("Criteria: outside [Q1 - %g·IQR, Q3 + %g·IQR]; |z| > %g\n", r.opt.IQRFactor, r.opt.IQRFactor, r.opt.ZThreshold))
	if !r.Any() {
		b.WriteString("No outliers found in numeric columns.\n")
	}
	for _, c := range r.Columns {
		b.WriteString(fmt.Sprintf("\n--- Column: %s ---\n", c.Column))
		if c.Present == 0 {
			b.WriteString("No values present.\n")
			continue
		}
		b.WriteString(fmt.Sprintf("Bounds: %.2f - %.2f\n", c.Lower, c.Upper))
		b.WriteString(fmt.Sprintf("IQR outliers: %d\n", len(c.Rows)))
		if len(c.Rows) > 0 {
			vals := make([]string, len(c.Values))
			for i, v := range c.Values {
				vals[i] = fmtFloat(v, na)
			}
			b.WriteString(fmt.Sprintf("Values: [%s] at rows %s\n", strings.Join(vals, ", "), joinInts(c.Rows, r.opt.IndexLimit)))
		}
		b.WriteString(fmt.Sprintf("Z-score outliers (|z| > %g): %d\n", r.opt.ZThreshold, c.ZCount))
	}
	return b.String()
}
