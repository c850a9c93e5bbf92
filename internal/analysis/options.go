// Package analysis computes read-only reports over a table: descriptive statistics,
// Pearson correlation, IQR and z-score outliers, missing-data accounting and value counts.
package analysis

import (
	"fmt"

	"github.com/KaramelBytes/dataloom-cli/internal/table"
)

// Options controls analysis behavior.
type Options struct {
	// IQRFactor scales the interquartile range when computing outlier bounds.
	IQRFactor float64
	// ZThreshold flags values whose absolute z-score exceeds it.
	ZThreshold float64
	// IndexLimit caps how many missing row indices are listed per column.
	IndexLimit int
	// TopRows is how many rows with the most missing cells are reported.
	TopRows int
	// TopPatterns is how many missing-value patterns are reported.
	TopPatterns int
	// Policy formats values in reports.
	Policy table.Policy
}

// DefaultOptions returns the classic thresholds: 1.5·IQR, |z| > 3, 10 indices, top 5.
func DefaultOptions() Options {
	return Options{
		IQRFactor:   1.5,
		ZThreshold:  3,
		IndexLimit:  10,
		TopRows:     5,
		TopPatterns: 5,
		Policy:      table.DefaultPolicy(),
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.IQRFactor <= 0 {
		o.IQRFactor = d.IQRFactor
	}
	if o.ZThreshold <= 0 {
		o.ZThreshold = d.ZThreshold
	}
	if o.IndexLimit <= 0 {
		o.IndexLimit = d.IndexLimit
	}
	if o.TopRows <= 0 {
		o.TopRows = d.TopRows
	}
	if o.TopPatterns <= 0 {
		o.TopPatterns = d.TopPatterns
	}
	if o.Policy.MissingToken == "" {
		o.Policy.MissingToken = d.Policy.MissingToken
	}
	return o
}

// NoNumericDataError is returned when an analysis needs numeric columns and the table has none.
type NoNumericDataError struct {
	Analysis string
}

func (e *NoNumericDataError) Error() string {
	return fmt.Sprintf("%s: no numeric columns in the data", e.Analysis)
}
