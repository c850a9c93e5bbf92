package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Delimiter != ";" || c.MissingToken != "NaN" || c.ColumnGap != 2 {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.IQRFactor != 1.5 || c.ZThreshold != 3 || c.MissingIndexLimit != 10 || c.TopRows != 5 {
		t.Fatalf("unexpected analysis defaults: %+v", c)
	}
	if c.LogFile != filepath.Join(home, ".dataloom", "dataloom.log") {
		t.Fatalf("log file = %q", c.LogFile)
	}
	if p := c.Policy(); p.Decimal != '.' || p.MissingToken != "NaN" {
		t.Fatalf("policy = %+v", p)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(path, []byte("delimiter: \",\"\ncolumn_gap: 4\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("DATALOOM_COLUMN_GAP", "3")
	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Delimiter != "," {
		t.Fatalf("delimiter = %q", c.Delimiter)
	}
	if c.ColumnGap != 3 {
		t.Fatalf("column_gap = %d, want env value 3", c.ColumnGap)
	}
	if c.ParserOptions().Delimiter != ',' {
		t.Fatalf("parser delimiter = %q", c.ParserOptions().Delimiter)
	}
}

func TestSetValidates(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := c.Set("column_gap", "0"); err == nil {
		t.Fatalf("expected error for column_gap 0")
	}
	if err := c.Set("delimiter", "#"); err == nil {
		t.Fatalf("expected error for unsupported delimiter")
	}
	if err := c.Set("nope", "1"); err == nil {
		t.Fatalf("expected unknown key error")
	}
	if c.ColumnGap != 2 || c.Delimiter != ";" {
		t.Fatalf("failed Set changed config: %+v", c)
	}
	if err := c.Set("decimal", ","); err != nil {
		t.Fatalf("set decimal: %v", err)
	}
	if got, _ := c.Get("decimal"); got != "," {
		t.Fatalf("decimal = %q", got)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := c.Set("preview_title", "Preview"); err != nil {
		t.Fatalf("set: %v", err)
	}
	path := filepath.Join(t.TempDir(), "saved.yaml")
	if err := Save(c, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if back.PreviewTitle != "Preview" {
		t.Fatalf("preview_title = %q", back.PreviewTitle)
	}
}
