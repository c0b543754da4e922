package tui

import (
	"github.com/jedib0t/go-pretty/v6/table"
)

// Table renders header and rows as a light box-drawing table, or as a GitHub
// markdown table when markdown is set.
func Table(header []string, rows [][]any, markdown bool) string {
	w := table.NewWriter()
	w.SetStyle(table.StyleLight)

	h := make(table.Row, len(header))
	for i, c := range header {
		h[i] = c
	}
	w.AppendHeader(h)
	for _, r := range rows {
		w.AppendRow(table.Row(r))
	}

	if markdown {
		return w.RenderMarkdown() + "\n"
	}
	return w.Render() + "\n"
}
