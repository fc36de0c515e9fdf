package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// markdownRenderer renders markdown for the current terminal width and falls
// back to the raw text when rendering is unavailable.
type markdownRenderer struct {
	width    int
	renderer *glamour.TermRenderer
	failed   bool
}

func newMarkdownRenderer() *markdownRenderer {
	return &markdownRenderer{width: 80}
}

func (r *markdownRenderer) setWidth(width int) {
	width = maxInt(20, minInt(width-2, 100))
	if width == r.width {
		return
	}
	r.width = width
	r.renderer = nil
	r.failed = false
}

func (r *markdownRenderer) render(md string) string {
	if r.renderer == nil && !r.failed {
		tr, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(r.width),
		)
		if err != nil {
			r.failed = true
		} else {
			r.renderer = tr
		}
	}
	if r.renderer == nil {
		return strings.Join(wrapText(md, r.width), "\n")
	}
	out, err := r.renderer.Render(md)
	if err != nil {
		return strings.Join(wrapText(md, r.width), "\n")
	}
	return strings.Trim(out, "\n")
}
