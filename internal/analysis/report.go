package analysis

import (
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// writeGrid renders rows under header as a bordered text table.
func writeGrid(w io.Writer, header []string, rows [][]string) {
	tw := tablewriter.NewWriter(w)
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.SetHeader(header)
	for _, r := range rows {
		tw.Append(r)
	}
	tw.Render()
}

func section(b *strings.Builder, title string) {
	if b.Len() > 0 {
		b.WriteString("\n")
	}
	b.WriteString("[" + title + "]\n")
}

func joinInts(xs []int, limit int) string {
	var b strings.Builder
	b.WriteString("[")
	for i, x := range xs {
		if limit > 0 && i == limit {
			break
		}
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.Itoa(x))
	}
	b.WriteString("]")
	if limit > 0 && len(xs) > limit {
		b.WriteString("...")
	}
	return b.String()
}
