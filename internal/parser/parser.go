package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/dataloom-cli/internal/table"
)

// Format describes a delimited text dialect recognised by file name.
type Format interface {
	CanParse(filename string) bool
	Delimiter() rune
}

var registry []Format

// Register adds a format to the registry.
func Register(f Format) {
	registry = append(registry, f)
}

// Options controls reading and writing delimited files.
type Options struct {
	// Delimiter overrides the registry choice when non-zero.
	Delimiter rune
	Policy    table.Policy
}

// DefaultOptions reads and writes semicolon-separated files with the default coercion policy.
func DefaultOptions() Options {
	return Options{Policy: table.DefaultPolicy()}
}

// delimiterFor picks the separator for path: explicit option, then registry, then ';'.
func delimiterFor(path string, opt Options) rune {
	if opt.Delimiter != 0 {
		return opt.Delimiter
	}
	for _, f := range registry {
		if f.CanParse(path) {
			return f.Delimiter()
		}
	}
	return ';'
}

// ParseDelimiter maps user spellings to a separator rune.
func ParseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "", ";", "semicolon":
		return ';', nil
	case ",", "comma":
		return ',', nil
	case "\t", "tab", `\t`:
		return '\t', nil
	case "|", "pipe":
		return '|', nil
	default:
		return 0, fmt.Errorf("unsupported delimiter: %s (use ';' | ',' | 'tab' | '|')", s)
	}
}

type csvFormat struct{}

func (csvFormat) CanParse(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".csv")
}

func (csvFormat) Delimiter() rune { return ';' }

type tsvFormat struct{}

func (tsvFormat) CanParse(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".tsv" || ext == ".tab"
}

func (tsvFormat) Delimiter() rune { return '\t' }

func init() {
	Register(csvFormat{})
	Register(tsvFormat{})
}
