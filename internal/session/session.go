// Package session is the boundary a presentation layer talks to. It owns one snapshot
// manager, renders what should be displayed, and turns positions in that display into
// cell edits. Every command returns text ready to show or a typed error.
package session

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/KaramelBytes/dataloom-cli/internal/analysis"
	"github.com/KaramelBytes/dataloom-cli/internal/config"
	"github.com/KaramelBytes/dataloom-cli/internal/editor"
	"github.com/KaramelBytes/dataloom-cli/internal/grid"
	"github.com/KaramelBytes/dataloom-cli/internal/parser"
	"github.com/KaramelBytes/dataloom-cli/internal/snapshot"
	"github.com/KaramelBytes/dataloom-cli/internal/table"
)

// ExtractTitle heads the rendering of an extracted sub-table.
const ExtractTitle = "Extracted sub-table:"

type Session struct {
	ID string

	mgr      *snapshot.Manager
	parse    parser.Options
	layout   grid.Options
	analyze  analysis.Options
	resolver *grid.Resolver
	title    string
	log      zerolog.Logger

	path    string
	view    *grid.View // nil when the display is not the active table
	summary snapshot.Summary
}

// New builds a session from configuration. The logger is tagged with the session id.
func New(cfg *config.Global, log zerolog.Logger) *Session {
	policy := cfg.Policy()
	s := &Session{
		ID:     uuid.NewString(),
		parse:  cfg.ParserOptions(),
		layout: grid.Options{Gap: cfg.ColumnGap, Policy: policy},
		analyze: analysis.Options{
			IQRFactor:   cfg.IQRFactor,
			ZThreshold:  cfg.ZThreshold,
			IndexLimit:  cfg.MissingIndexLimit,
			TopRows:     cfg.TopRows,
			TopPatterns: cfg.TopPatterns,
			Policy:      policy,
		},
		title: cfg.PreviewTitle,
	}
	s.log = log.With().Str("session", s.ID).Logger()
	s.resolver = grid.NewResolver(s.layout)
	s.mgr = snapshot.NewManager(policy, s.changed)
	return s
}

func (s *Session) changed(sum snapshot.Summary) {
	s.summary = sum
	s.log.Info().Int("rows", sum.Rows).Int("cols", sum.Columns).Int("total", sum.OriginalRows).Msg("active table updated")
}

func (s *Session) fail(op string, err error) error {
	s.log.Warn().Err(err).Str("op", op).Msg("operation failed")
	return err
}

// Loaded reports whether a file has been loaded.
func (s *Session) Loaded() bool { return s.mgr.Loaded() }

// Path is the file the data was loaded from.
func (s *Session) Path() string { return s.path }

// Active exposes the working table for read-only use.
func (s *Session) Active() *table.Table { return s.mgr.Active() }

// Status is the row/column summary of the active table.
func (s *Session) Status() string {
	if !s.mgr.Loaded() {
		return "No data loaded"
	}
	return s.summary.String()
}

// Load reads path and displays it.
func (s *Session) Load(path string) (string, error) {
	t, err := parser.ReadFile(path, s.parse)
	if err != nil {
		return "", s.fail("load", err)
	}
	if err := s.mgr.Load(t); err != nil {
		return "", s.fail("load", err)
	}
	s.path = path
	s.log.Info().Str("path", path).Int("rows", t.Rows()).Msg("loaded")
	return s.preview(), nil
}

// Show re-renders the active table.
func (s *Session) Show() (string, error) {
	if !s.mgr.Loaded() {
		return "", s.fail("show", snapshot.ErrNotLoaded)
	}
	return s.preview(), nil
}

func (s *Session) preview() string {
	s.view = grid.Render(s.mgr.Active(), s.title, s.layout)
	return s.view.Text()
}

// Filter re-derives the active table from the original and displays it.
func (s *Session) Filter(column, op, value string) (string, error) {
	o, err := snapshot.ParseOperator(op)
	if err != nil {
		return "", s.fail("filter", &snapshot.FilterError{Column: column, Value: value, Err: err})
	}
	if _, err := s.mgr.Filter(column, o, value); err != nil {
		return "", s.fail("filter", err)
	}
	return s.preview(), nil
}

// Reset restores the original table and displays it.
func (s *Session) Reset() (string, error) {
	if err := s.mgr.Reset(); err != nil {
		return "", s.fail("reset", err)
	}
	return s.preview(), nil
}

// report runs a read-only analysis. The display no longer shows the table, so
// positions resolve to nothing until it is shown again.
func (s *Session) report(op string, fn func(t *table.Table) (string, error)) (string, error) {
	if !s.mgr.Loaded() {
		return "", s.fail(op, snapshot.ErrNotLoaded)
	}
	out, err := fn(s.mgr.Active())
	if err != nil {
		return "", s.fail(op, err)
	}
	s.view = nil
	return out, nil
}

func (s *Session) Describe() (string, error) {
	return s.report("describe", func(t *table.Table) (string, error) {
		return analysis.Describe(t, s.analyze).Text(), nil
	})
}

func (s *Session) Correlate() (string, error) {
	return s.report("correlate", func(t *table.Table) (string, error) {
		m, err := analysis.Correlate(t, s.analyze)
		if err != nil {
			return "", err
		}
		return m.Text(), nil
	})
}

func (s *Session) Outliers() (string, error) {
	return s.report("outliers", func(t *table.Table) (string, error) {
		r, err := analysis.DetectOutliers(t, s.analyze)
		if err != nil {
			return "", err
		}
		return r.Text(), nil
	})
}

func (s *Session) Missing() (string, error) {
	return s.report("missing", func(t *table.Table) (string, error) {
		return analysis.AnalyzeMissing(t, s.analyze).Text(), nil
	})
}

func (s *Session) Counts(column string) (string, error) {
	return s.report("counts", func(t *table.Table) (string, error) {
		c, err := analysis.CountValues(t, column, s.analyze)
		if err != nil {
			return "", err
		}
		return c.Text(), nil
	})
}

// Extract renders a sub-table of the active table without changing it.
func (s *Session) Extract(spec string) (string, error) {
	return s.report("extract", func(t *table.Table) (string, error) {
		sub, err := s.mgr.Extract(spec)
		if err != nil {
			return "", err
		}
		return grid.Render(sub, ExtractTitle, s.layout).Text(), nil
	})
}

// Replace substitutes values in one column of the active table and displays it.
func (s *Session) Replace(column, oldText, newText string) (string, error) {
	n, err := s.mgr.Replace(column, oldText, newText)
	if err != nil {
		return "", s.fail("replace", err)
	}
	msg := fmt.Sprintf("Replaced '%s' with '%s' in column '%s' (%d cells)", oldText, newText, column, n)
	return msg + "\n\n" + s.preview(), nil
}

// Click resolves a position in the current display. ok is false when the position is
// not on a cell or the display is not the active table; that is not an error.
func (s *Session) Click(pos grid.Position) (cell grid.Cell, ok bool) {
	if s.view == nil || !s.mgr.Loaded() {
		return grid.Cell{}, false
	}
	cell, err := s.resolver.Resolve(s.view.Text(), s.title, s.mgr.Active(), pos)
	if err != nil {
		var nc *grid.NoCellResolvedError
		if errors.As(err, &nc) {
			s.log.Debug().Str("reason", nc.Reason).Int("line", pos.Line).Int("offset", pos.Offset).Msg("click ignored")
		}
		return grid.Cell{}, false
	}
	return cell, true
}

// Display is the text currently shown, or empty when a report is shown.
func (s *Session) Display() string {
	if s.view == nil {
		return ""
	}
	return s.view.Text()
}

// CurrentValue is the text an edit of cell starts from.
func (s *Session) CurrentValue(cell grid.Cell) (string, error) {
	v, err := editor.Current(s.mgr, cell)
	if err != nil {
		return "", s.fail("edit", err)
	}
	return v, nil
}

// EditCell writes raw into cell and returns the change message followed by the new display.
func (s *Session) EditCell(cell grid.Cell, raw string) (string, error) {
	ch, err := editor.Edit(s.mgr, cell, raw)
	if err != nil {
		return "", s.fail("edit", err)
	}
	s.log.Info().Int("row", cell.Row).Str("column", cell.Column).Msg("cell edited")
	return ch.Message(s.mgr.Policy()) + "\n\n" + s.preview(), nil
}

// Save writes the active table to path, or back to the loaded file when path is empty.
func (s *Session) Save(path string) (string, error) {
	if !s.mgr.Loaded() {
		return "", s.fail("save", snapshot.ErrNotLoaded)
	}
	if path == "" {
		path = s.path
	}
	t := s.mgr.Active()
	if err := parser.WriteFile(path, t, s.parse); err != nil {
		return "", s.fail("save", err)
	}
	s.log.Info().Str("path", path).Int("rows", t.Rows()).Msg("saved")
	return fmt.Sprintf("Saved %d rows to %s", t.Rows(), filepath.Clean(path)), nil
}
