package grid

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/KaramelBytes/dataloom-cli/internal/table"
)

// Position is a 0-based line number and a 0-based display-cell offset within that line.
type Position struct {
	Line   int
	Offset int
}

// Cell addresses one value of the rendered table.
type Cell struct {
	Row    int
	Column string
}

// NoCellResolvedError means a position did not land on a cell. Callers ignore it.
type NoCellResolvedError struct {
	Position Position
	Reason   string
}

func (e *NoCellResolvedError) Error() string {
	return fmt.Sprintf("no cell at line %d, offset %d: %s", e.Position.Line, e.Position.Offset, e.Reason)
}

// Resolver maps positions in rendered text back to cells of the table that produced it.
type Resolver struct {
	opt Options
}

func NewResolver(opt Options) *Resolver { return &Resolver{opt: opt} }

// Resolve finds the cell under pos in text, which must be a rendering of t made with
// the same options. The header is the first non-blank line that is not the title.
func (r *Resolver) Resolve(text, title string, t *table.Table, pos Position) (Cell, error) {
	miss := func(reason string) (Cell, error) {
		return Cell{}, &NoCellResolvedError{Position: pos, Reason: reason}
	}
	lines := strings.Split(text, "\n")
	start := headerLine(lines, sanitize(title))
	if start < 0 {
		return miss("no header line")
	}

	l, _ := newLayout(t, r.opt)
	header := l.header()
	if strings.TrimRight(lines[start], " ") != strings.TrimRight(header, " ") {
		return miss("text does not match the current table")
	}

	row := pos.Line - start - 1
	if row < 0 || row >= t.Rows() {
		return miss("line is not a data row")
	}
	for j, s := range ScanSpans(header, l.names) {
		if pos.Offset >= s.Start && pos.Offset < s.End {
			return Cell{Row: row, Column: t.ColumnAt(j).Name}, nil
		}
	}
	return miss("offset is outside every column")
}

func headerLine(lines []string, title string) int {
	for i, ln := range lines {
		s := strings.TrimSpace(ln)
		if s == "" || (title != "" && s == strings.TrimSpace(title)) {
			continue
		}
		return i
	}
	return -1
}

// ScanSpans locates each name in a formatted header line. Each name is searched for
// strictly after the end of the previous one, so a name contained in an earlier name
// still finds its own column. A span closes where the next begins; the last closes at
// the end of the line.
func ScanSpans(header string, names []string) []Span {
	spans := make([]Span, 0, len(names))
	cursor := 0
	for _, name := range names {
		idx := strings.Index(header[cursor:], name)
		if idx < 0 {
			break
		}
		at := cursor + idx
		spans = append(spans, Span{Name: name, Start: runewidth.StringWidth(header[:at])})
		cursor = at + len(name)
	}
	for j := range spans {
		if j+1 < len(spans) {
			spans[j].End = spans[j+1].Start
		} else {
			spans[j].End = runewidth.StringWidth(header)
		}
	}
	return spans
}

