package session

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/KaramelBytes/dataloom-cli/internal/config"
	"github.com/KaramelBytes/dataloom-cli/internal/grid"
	"github.com/KaramelBytes/dataloom-cli/internal/parser"
	"github.com/KaramelBytes/dataloom-cli/internal/snapshot"
	"github.com/KaramelBytes/dataloom-cli/internal/table"
)

const sample = "name;age;city\nAnna;31;Oslo\nBen;;Rome\nCleo;27;Oslo\n"

func newSession(t *testing.T) (*Session, string) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "people.csv")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return New(cfg, zerolog.Nop()), path
}

func TestLoadShowsPreview(t *testing.T) {
	s, path := newSession(t)
	out, err := s.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := "Data preview:\n" +
		"name  age  city\n" +
		"Anna  31   Oslo\n" +
		"Ben   NaN  Rome\n" +
		"Cleo  27   Oslo\n"
	if out != want {
		t.Fatalf("preview:\n%q\nwant:\n%q", out, want)
	}
	if s.Status() != "Rows: 3 | Columns: 3" {
		t.Fatalf("status = %q", s.Status())
	}
}

func TestClickThenEdit(t *testing.T) {
	s, path := newSession(t)
	if _, err := s.Load(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	// line 3 is Ben's row; offset 6 falls in the age column
	cell, ok := s.Click(grid.Position{Line: 3, Offset: 6})
	if !ok || cell != (grid.Cell{Row: 1, Column: "age"}) {
		t.Fatalf("click = %+v, %v", cell, ok)
	}
	cur, err := s.CurrentValue(cell)
	if err != nil || cur != "" {
		t.Fatalf("current = %q, %v", cur, err)
	}
	out, err := s.EditCell(cell, "45")
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if !strings.HasPrefix(out, "Changed cell [1, age]: 'NaN' → '45'\n") {
		t.Fatalf("edit output:\n%s", out)
	}
	if !strings.Contains(out, "Ben   45   Rome") {
		t.Fatalf("display not refreshed:\n%s", out)
	}

	if _, err := s.EditCell(cell, "old"); !errors.As(err, new(*table.CoercionError)) {
		t.Fatalf("want CoercionError, got %v", err)
	}
	if _, ok := s.Click(grid.Position{Line: 3, Offset: 40}); ok {
		t.Fatalf("click past the last column should resolve nothing")
	}
}

func TestReportDisablesClicks(t *testing.T) {
	s, path := newSession(t)
	if _, err := s.Load(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := s.Describe(); err != nil {
		t.Fatalf("describe: %v", err)
	}
	if _, ok := s.Click(grid.Position{Line: 2, Offset: 0}); ok {
		t.Fatalf("click on a report resolved a cell")
	}
	out, err := s.Extract("0,2")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !strings.HasPrefix(out, ExtractTitle+"\n") || strings.Contains(out, "Ben") {
		t.Fatalf("extract output:\n%s", out)
	}
	if _, ok := s.Click(grid.Position{Line: 2, Offset: 0}); ok {
		t.Fatalf("click on an extracted sub-table resolved a cell")
	}
	if _, err := s.Show(); err != nil {
		t.Fatalf("show: %v", err)
	}
	if _, ok := s.Click(grid.Position{Line: 2, Offset: 0}); !ok {
		t.Fatalf("click after show should resolve")
	}
}

func TestFilterResetReplaceSave(t *testing.T) {
	s, path := newSession(t)
	if _, err := s.Load(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := s.Filter("city", "equals", "Oslo"); err != nil {
		t.Fatalf("filter: %v", err)
	}
	if s.Status() != "Rows: 2 | Columns: 3 | Filtered from 3" {
		t.Fatalf("status = %q", s.Status())
	}
	if _, err := s.Filter("city", "like", "Oslo"); !errors.As(err, new(*snapshot.FilterError)) {
		t.Fatalf("bad operator: %v", err)
	}
	out, err := s.Replace("city", "Oslo", "Bergen")
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if !strings.HasPrefix(out, "Replaced 'Oslo' with 'Bergen' in column 'city' (2 cells)") {
		t.Fatalf("replace output:\n%s", out)
	}

	dst := filepath.Join(t.TempDir(), "out.csv")
	if _, err := s.Save(dst); err != nil {
		t.Fatalf("save: %v", err)
	}
	back, err := parser.ReadFile(dst, parser.DefaultOptions())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !back.Equal(s.Active()) {
		t.Fatalf("saved table differs from active")
	}

	if _, err := s.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if s.Status() != "Rows: 3 | Columns: 3" {
		t.Fatalf("status after reset = %q", s.Status())
	}
}

func TestNotLoaded(t *testing.T) {
	s, _ := newSession(t)
	for name, fn := range map[string]func() (string, error){
		"show":      s.Show,
		"describe":  s.Describe,
		"correlate": s.Correlate,
		"missing":   s.Missing,
		"reset":     s.Reset,
	} {
		if _, err := fn(); !errors.Is(err, snapshot.ErrNotLoaded) {
			t.Fatalf("%s: want ErrNotLoaded, got %v", name, err)
		}
	}
	if _, err := s.Load(filepath.Join(t.TempDir(), "absent.csv")); !errors.As(err, new(*parser.LoadError)) {
		t.Fatalf("want LoadError, got %v", err)
	}
}
