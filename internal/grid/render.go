// Package grid renders a table as fixed-width text and maps positions in that text back
// to cells. Rendering and resolving share one layout so the two never disagree.
package grid

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/KaramelBytes/dataloom-cli/internal/table"
)

// Options controls the text layout.
type Options struct {
	// Gap is the number of spaces between columns; values below 1 mean 1.
	Gap int
	// Policy formats cells; its MissingToken is the placeholder for missing cells.
	Policy table.Policy
}

func DefaultOptions() Options {
	return Options{Gap: 2, Policy: table.DefaultPolicy()}
}

func (o Options) placeholder() string {
	if o.Policy.MissingToken == "" {
		return "NaN"
	}
	return o.Policy.MissingToken
}

// Span is the half-open range [Start, End) of display cells a column occupies on every line.
type Span struct {
	Name  string
	Start int
	End   int
}

// View is one rendering: an optional title line, the header line, then one line per row.
type View struct {
	Lines  []string
	Header int
	Rows   int
	Spans  []Span
}

// Text joins the lines, each terminated by a newline.
func (v *View) Text() string {
	if len(v.Lines) == 0 {
		return ""
	}
	return strings.Join(v.Lines, "\n") + "\n"
}

// layout fixes column widths for one table. Every line of a rendering, and the header
// the resolver scans, goes through formatLine.
type layout struct {
	names  []string
	widths []int
	gap    int
}

func newLayout(t *table.Table, opt Options) (layout, [][]string) {
	gap := opt.Gap
	if gap < 1 {
		gap = 1
	}
	l := layout{gap: gap}
	cols := t.Columns()
	cells := make([][]string, t.Rows())
	for i := range cells {
		cells[i] = make([]string, len(cols))
	}
	for j, c := range cols {
		name := sanitize(c.Name)
		w := runewidth.StringWidth(name)
		for i := 0; i < c.Len(); i++ {
			s := cellText(c.At(i), opt)
			cells[i][j] = s
			if cw := runewidth.StringWidth(s); cw > w {
				w = cw
			}
		}
		l.names = append(l.names, name)
		l.widths = append(l.widths, w)
	}
	return l, cells
}

// formatLine left-aligns each field in its column, padding every column including the last.
func (l layout) formatLine(fields []string) string {
	var b strings.Builder
	for j, f := range fields {
		if j > 0 {
			b.WriteString(strings.Repeat(" ", l.gap))
		}
		b.WriteString(runewidth.FillRight(f, l.widths[j]))
	}
	return b.String()
}

func (l layout) header() string { return l.formatLine(l.names) }

func (l layout) spans() []Span {
	out := make([]Span, len(l.names))
	pos := 0
	for j, name := range l.names {
		out[j] = Span{Name: name, Start: pos}
		pos += l.widths[j]
		if j < len(l.names)-1 {
			pos += l.gap
		}
	}
	for j := range out {
		if j+1 < len(out) {
			out[j].End = out[j+1].Start
		} else {
			out[j].End = pos
		}
	}
	return out
}

// Render formats t. When title is non-empty it occupies the first line.
func Render(t *table.Table, title string, opt Options) *View {
	l, cells := newLayout(t, opt)
	v := &View{Rows: t.Rows(), Spans: l.spans()}
	if title != "" {
		v.Lines = append(v.Lines, sanitize(title))
	}
	v.Header = len(v.Lines)
	v.Lines = append(v.Lines, l.header())
	for _, row := range cells {
		v.Lines = append(v.Lines, l.formatLine(row))
	}
	return v
}

func cellText(v table.Value, opt Options) string {
	if v.IsMissing() {
		return opt.placeholder()
	}
	return sanitize(opt.Policy.Format(v))
}

var sanitizer = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ")

// sanitize keeps every value on one line.
func sanitize(s string) string { return sanitizer.Replace(s) }

// DisplayOffset converts an offset counted in characters into display cells for line.
func DisplayOffset(line string, chars int) int {
	w, n := 0, 0
	for _, r := range line {
		if n == chars {
			break
		}
		w += runewidth.RuneWidth(r)
		n++
	}
	if chars > n {
		w += chars - n
	}
	return w
}
