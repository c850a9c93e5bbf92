package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	SetDefault(zerolog.New(&buf))

	logger := Component("grid")
	logger.Info().Msg("rendered")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log: %v", err)
	}
	if entry["cmp"] != "grid" {
		t.Errorf("cmp = %v, want grid", entry["cmp"])
	}
	if entry["message"] != "rendered" {
		t.Errorf("message = %v, want rendered", entry["message"])
	}
}

func TestNewWritesToFileAndFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "dataloom.log")
	l, closeFn, err := New("warn", path)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	l.Info().Msg("quiet")
	l.Warn().Msg("loud")
	closeFn()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(b)
	if strings.Contains(out, "quiet") || !strings.Contains(out, "loud") {
		t.Fatalf("unexpected log contents: %s", out)
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	if _, _, err := New("chatty", "-"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
