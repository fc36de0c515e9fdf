// Package stats contains collection summaries and text reporting.
package stats

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const variationSelector16 = '\uFE0F'

// column describes one table column. max > 0 caps the cell width.
type column struct {
	title string
	right bool
	max   int
}

// textTable lays out rows in aligned columns separated by two spaces. The
// header line is printed only when some column has a title.
type textTable struct {
	cols []column
	rows [][]string
}

func newTable(cols ...column) *textTable {
	return &textTable{cols: cols}
}

func (t *textTable) add(cells ...string) {
	row := make([]string, len(t.cols))
	for i := range row {
		if i < len(cells) {
			row[i] = clipCell(cells[i], t.cols[i].max)
		}
	}
	t.rows = append(t.rows, row)
}

func (t *textTable) hasHeader() bool {
	for _, c := range t.cols {
		if c.title != "" {
			return true
		}
	}
	return false
}

func (t *textTable) lines() []string {
	if len(t.cols) == 0 {
		return nil
	}
	header := t.hasHeader()
	widths := make([]int, len(t.cols))
	if header {
		for i, c := range t.cols {
			widths[i] = cellWidth(c.title)
		}
	}
	for _, row := range t.rows {
		for i, cell := range row {
			widths[i] = max(widths[i], cellWidth(cell))
		}
	}

	out := make([]string, 0, len(t.rows)+1)
	if header {
		titles := make([]string, len(t.cols))
		for i, c := range t.cols {
			titles[i] = c.title
		}
		out = append(out, t.line(titles, widths))
	}
	for _, row := range t.rows {
		out = append(out, t.line(row, widths))
	}
	return out
}

func (t *textTable) String() string {
	return strings.Join(t.lines(), "\n")
}

func (t *textTable) line(cells []string, widths []int) string {
	var b strings.Builder
	for i, cell := range cells {
		if i > 0 {
			b.WriteString("  ")
		}
		pad := strings.Repeat(" ", widths[i]-cellWidth(cell))
		if t.cols[i].right {
			b.WriteString(pad + cell)
		} else {
			b.WriteString(cell + pad)
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// cellWidth counts terminal cells. A narrow symbol followed by U+FE0F is
// drawn as a two-cell emoji, so it counts as two.
func cellWidth(s string) int {
	width, prev := 0, 0
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if r == variationSelector16 && prev == 1 {
			w = 1
		}
		width += w
		prev = w
	}
	return width
}

// clipCell cuts s to limit cells, ending with "…" when cut.
func clipCell(s string, limit int) string {
	if limit <= 0 || cellWidth(s) <= limit {
		return s
	}
	var b strings.Builder
	width, prev := 0, 0
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if r == variationSelector16 && prev == 1 {
			w = 1
		}
		if width+w > limit-1 {
			break
		}
		b.WriteRune(r)
		width += w
		prev = w
	}
	return b.String() + "…"
}
