package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/KaramelBytes/dataloom-cli/internal/table"
	"github.com/KaramelBytes/dataloom-cli/internal/utils"
)

// ReadFile loads a delimited file with a header row into a Table.
func ReadFile(path string, opt Options) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()
	opt.Delimiter = delimiterFor(path, opt)
	t, err := Read(f, opt)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return t, nil
}

// Read parses delimited text. Short rows are padded with missing cells; rows longer
// than the header are rejected.
func Read(r io.Reader, opt Options) (*table.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.Comma = opt.Delimiter
	if cr.Comma == 0 {
		cr.Comma = ';'
	}

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("no columns to parse from file")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	names := normalizeHeader(header)
	ncol := len(names)

	raw := make([][]string, ncol)
	line := 1
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		line++
		if len(rec) > ncol {
			return nil, fmt.Errorf("row %d: expected %d fields, saw %d", line, ncol, len(rec))
		}
		for j := 0; j < ncol; j++ {
			v := ""
			if j < len(rec) {
				v = rec[j]
			}
			raw[j] = append(raw[j], v)
		}
	}

	cols := make([]*table.Column, ncol)
	for j, name := range names {
		cols[j] = table.InferColumn(name, raw[j], opt.Policy)
	}
	return table.New(cols...)
}

// normalizeHeader trims names, names blank headers "Unnamed: i" and suffixes
// duplicates with ".1", ".2", ... so every name is unique.
func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF"))
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if seen[name] {
			base := name
			for n := 1; seen[name]; n++ {
				name = fmt.Sprintf("%s.%d", base, n)
			}
		}
		seen[name] = true
		out[i] = name
	}
	return out
}

// WriteFile saves t as delimited text without a row-index column, atomically.
func WriteFile(path string, t *table.Table, opt Options) error {
	opt.Delimiter = delimiterFor(path, opt)
	var buf bytes.Buffer
	if err := Write(&buf, t, opt); err != nil {
		return &SaveError{Path: path, Err: err}
	}
	if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
		return &SaveError{Path: path, Err: err}
	}
	return nil
}

// Write encodes t. Missing cells are written as empty fields.
func Write(w io.Writer, t *table.Table, opt Options) error {
	cw := csv.NewWriter(w)
	cw.Comma = opt.Delimiter
	if cw.Comma == 0 {
		cw.Comma = ';'
	}
	if err := cw.Write(t.Names()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	rec := make([]string, t.Width())
	for i := 0; i < t.Rows(); i++ {
		for j, v := range t.Row(i) {
			rec[j] = opt.Policy.Format(v)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
