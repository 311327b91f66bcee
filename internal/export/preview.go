package export

import (
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/joseph-ayodele/nfse-extractor/internal/entity"
)

// Preview renders the first n rows as a plain-text table for the terminal.
func Preview(t *Table, n int) string {
	if t == nil || n <= 0 {
		return ""
	}
	if n > len(t.Rows) {
		n = len(t.Rows)
	}

	var b strings.Builder
	tw := tablewriter.NewWriter(&b)
	tw.SetHeader(t.Columns)
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	for _, row := range t.Rows[:n] {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = previewCell(v)
		}
		tw.Append(cells)
	}
	tw.Render()
	return b.String()
}

func previewCell(v entity.Value) string {
	if v.Kind == entity.KindNumber {
		return strconv.FormatFloat(v.Number, 'f', 2, 64)
	}
	return truncate(v.Text, 40)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
