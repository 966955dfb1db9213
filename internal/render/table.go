// Package render provides terminal table and badge formatting for the
// GoFresh CLI.
package render

import (
	"strings"

	"github.com/gookit/color"
	"github.com/mattn/go-runewidth"
)

// columnGap separates adjacent columns.
const columnGap = "  "

// Table accumulates rows and renders them under a header with every
// column sized to its widest cell. Widths are measured on display width,
// so wide runes line up and color escape codes do not count.
type Table struct {
	headers []string
	rows    [][]string
}

// NewTable creates a table with the given column headers.
func NewTable(headers ...string) *Table {
	return &Table{headers: headers}
}

// AddRow appends a row. Missing trailing cells render empty; extra cells
// beyond the header count are dropped.
func (t *Table) AddRow(cells ...string) *Table {
	row := make([]string, len(t.headers))
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
		}
	}
	t.rows = append(t.rows, row)
	return t
}

// String renders the table with a dashed rule under the header. Every
// line ends with a newline.
func (t *Table) String() string {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = cellWidth(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if w := cellWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	writeRow(&b, t.headers, widths)

	rule := make([]string, len(t.headers))
	for i, w := range widths {
		rule[i] = strings.Repeat("-", w)
	}
	writeRow(&b, rule, widths)

	for _, row := range t.rows {
		writeRow(&b, row, widths)
	}
	return b.String()
}

// writeRow emits one padded line. The final column is never padded.
func writeRow(b *strings.Builder, cells []string, widths []int) {
	for i, cell := range cells {
		b.WriteString(cell)
		if i == len(cells)-1 {
			break
		}
		if pad := widths[i] - cellWidth(cell); pad > 0 {
			b.WriteString(strings.Repeat(" ", pad))
		}
		b.WriteString(columnGap)
	}
	b.WriteString("\n")
}

// cellWidth measures the display width of a cell with any color escape
// codes stripped.
func cellWidth(s string) int {
	return runewidth.StringWidth(color.ClearCode(s))
}
