package stats

import (
	"fmt"
	"math"
	"strings"

	"github.com/verte-zerg/badgedex/internal/model"
)

// StatusCount is the per-status slice of a Summary.
type StatusCount struct {
	Status model.Status
	Total  int
	Owned  int
}

// Summary describes how much of the catalog is owned.
type Summary struct {
	Total    int
	Owned    int
	Percent  int
	ByStatus []StatusCount
}

// Summarize counts owned achievements overall and per status. Statuses with
// no achievements are omitted.
func Summarize(items []model.Achievement, owned func(model.Achievement) bool) Summary {
	counts := make(map[model.Status]*StatusCount, len(model.Statuses))
	var s Summary
	for _, a := range items {
		c, ok := counts[a.Status]
		if !ok {
			c = &StatusCount{Status: a.Status}
			counts[a.Status] = c
		}
		c.Total++
		s.Total++
		if owned != nil && owned(a) {
			c.Owned++
			s.Owned++
		}
	}
	for _, st := range model.Statuses {
		if c, ok := counts[st]; ok {
			s.ByStatus = append(s.ByStatus, *c)
		}
	}
	if s.Total > 0 {
		s.Percent = int(math.Round(float64(s.Owned) / float64(s.Total) * 100))
	}
	return s
}

// RenderSummary renders a summary as a status table with a collection line.
func RenderSummary(s Summary) string {
	t := newTable(column{title: "Status"}, column{title: "Owned", right: true}, column{title: "Total", right: true})
	for _, c := range s.ByStatus {
		t.add(c.Status.String(), fmt.Sprintf("%d", c.Owned), fmt.Sprintf("%d", c.Total))
	}
	lines := t.lines()
	lines = append(lines, "", fmt.Sprintf("Collection: %d/%d (%d%%) %s", s.Owned, s.Total, s.Percent, Bar(s.Percent, 20)))
	return strings.Join(lines, "\n")
}

// Bar renders percent as a fixed-width text progress bar.
func Bar(percent, width int) string {
	if width <= 0 {
		return ""
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := int(math.Round(float64(percent) * float64(width) / 100))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
