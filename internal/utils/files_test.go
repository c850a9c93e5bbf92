package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSafeWriteFileReplacesContent(t *testing.T) {
	p := filepath.Join(t.TempDir(), "out.csv")
	if err := SafeWriteFile(p, []byte("a")); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := SafeWriteFile(p, []byte("b")); err != nil {
		t.Fatalf("second write: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil || string(b) != "b" {
		t.Fatalf("content = %q, %v", b, err)
	}
	if _, err := os.Stat(p + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind")
	}
}

func TestSafeWriteFileMissingDir(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nope", "out.csv")
	if err := SafeWriteFile(p, []byte("x")); err == nil {
		t.Fatalf("expected error writing into a missing directory")
	}
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	got, err := ExpandHome("~/.dataloom/config.yaml")
	if err != nil {
		t.Fatalf("ExpandHome: %v", err)
	}
	if want := filepath.Join(home, ".dataloom", "config.yaml"); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if got, _ := ExpandHome("/abs/path"); got != "/abs/path" {
		t.Fatalf("absolute path changed: %q", got)
	}
}
