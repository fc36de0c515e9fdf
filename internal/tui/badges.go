package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/verte-zerg/badgedex/internal/guide"
	"github.com/verte-zerg/badgedex/internal/model"
	"github.com/verte-zerg/badgedex/internal/query"
	"github.com/verte-zerg/badgedex/internal/stats"
)

func newBadgeTable() table.Model {
	t := table.New(
		table.WithColumns(badgeColumns(80)),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#F0F0F0")).
		Background(lipgloss.Color("#3A3A3A")).
		Bold(true)
	t.SetStyles(styles)
	return t
}

func badgeColumns(width int) []table.Column {
	const (
		ownedW    = 5
		statusW   = 17
		progressW = 18
		groupW    = 8
	)
	nameW := maxInt(16, width-ownedW-statusW-progressW-groupW-10)
	return []table.Column{
		{Title: "Own", Width: ownedW},
		{Title: "Badge", Width: nameW},
		{Title: "Status", Width: statusW},
		{Title: "Progress", Width: progressW},
		{Title: "Group", Width: groupW},
	}
}

func (m *Model) ownership() query.OwnershipFunc {
	return m.evaluator.Resolver(m.owned, m.user)
}

// refreshList reruns the query and rebuilds the table, keeping the cursor on
// the same achievement when it is still visible.
func (m *Model) refreshList() {
	selected := m.selectedID()
	opts := query.OptionsFrom(m.browse)
	opts.Search = m.search.Value()
	sorted := query.Run(m.catalog.All(), opts, m.ownership())
	earnable, retired := query.Partition(sorted)
	m.visible = append(append([]model.Achievement{}, earnable...), retired...)
	m.earnable = len(earnable)

	owned := m.ownership()
	rows := make([]table.Row, 0, len(m.visible))
	cursor := 0
	for i, a := range m.visible {
		mark := ""
		if owned(a) {
			mark = "✓"
		}
		group := "Earnable"
		if i >= m.earnable {
			group = "Retired"
		}
		rows = append(rows, table.Row{
			mark,
			strings.TrimSpace(a.Emoji + " " + a.Name),
			a.Status.String(),
			m.progressCell(a),
			group,
		})
		if a.ID == selected {
			cursor = i
		}
	}
	m.list.SetRows(rows)
	if len(rows) > 0 {
		m.list.SetCursor(cursor)
	}
}

func (m *Model) progressCell(a model.Achievement) string {
	snap, ok := m.evaluator.Evaluate(a, m.user)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s %3d%%", stats.Bar(snap.Percent, 10), snap.Percent)
}

func (m *Model) selectedID() string {
	if len(m.visible) == 0 {
		return ""
	}
	idx := m.list.Cursor()
	if idx < 0 || idx >= len(m.visible) {
		return ""
	}
	return m.visible[idx].ID
}

func (m *Model) summaryLine() string {
	s := stats.Summarize(m.catalog.All(), m.ownership())
	return fmt.Sprintf("Owned %d/%d (%d%%)", s.Owned, s.Total, s.Percent)
}

func (m *Model) updateBadges(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		switch msg.Type {
		case tea.KeyEnter, tea.KeyEsc:
			m.searching = false
			m.search.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		m.refreshList()
		return m, cmd
	}
	if m.detail {
		switch msg.String() {
		case "esc", "backspace":
			m.detail = false
			return m, nil
		case "q":
			m.cancel()
			return m, tea.Quit
		case " ", "o":
			m.toggleSelected()
			m.renderDetail()
			return m, nil
		}
		var cmd tea.Cmd
		m.detailView, cmd = m.detailView.Update(msg)
		return m, cmd
	}
	switch msg.String() {
	case "q":
		m.cancel()
		return m, tea.Quit
	case "/":
		m.searching = true
		return m, m.search.Focus()
	case "f":
		m.browse.Filter = m.browse.Filter.Next()
		m.refreshList()
		return m, nil
	case "s":
		m.browse.Sort = m.browse.Sort.Next()
		m.refreshList()
		return m, nil
	case "a":
		m.browse.Status = nextStatus(m.browse.Status)
		m.refreshList()
		return m, nil
	case " ", "o":
		m.toggleSelected()
		return m, nil
	case "enter":
		if m.selectedID() == "" {
			return m, nil
		}
		m.detail = true
		m.renderDetail()
		m.detailView.GotoTop()
		return m, nil
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// nextStatus cycles nil (any) through every status and back to nil.
func nextStatus(cur *model.Status) *model.Status {
	if cur == nil {
		s := model.Statuses[0]
		return &s
	}
	for i, s := range model.Statuses {
		if s == *cur && i+1 < len(model.Statuses) {
			next := model.Statuses[i+1]
			return &next
		}
	}
	return nil
}

func (m *Model) toggleSelected() {
	id := m.selectedID()
	if id == "" {
		return
	}
	m.owned = m.owned.Toggle(id)
	if m.store != nil {
		if err := m.store.SaveOwned(m.ctx, m.owned.IDs()); err != nil {
			m.logger.Error("failed to save owned achievements", zap.Error(err))
			m.errMsg = fmt.Sprintf("failed to save: %v", err)
		}
	}
	m.refreshList()
	m.renderProfile()
}

func (m *Model) renderDetail() {
	a, ok := m.catalog.Get(m.selectedID())
	if !ok {
		return
	}
	var b strings.Builder
	b.WriteString(guide.Strategy(a))
	b.WriteString("\n\n**Status:** ")
	b.WriteString(a.Status.String())
	if m.ownership()(a) {
		b.WriteString(" · ✓ owned")
		if m.owned.Has(a.ID) {
			b.WriteString(" (marked by hand)")
		}
	}
	if snap, ok := m.evaluator.Evaluate(a, m.user); ok {
		fmt.Fprintf(&b, "\n\n**Progress:** `%s` %d%% (%d/%d)", stats.Bar(snap.Percent, 20), snap.Percent, snap.Current, snap.Target)
		if !snap.IsMaxed {
			fmt.Fprintf(&b, ", next tier %s", snap.NextTierName)
		}
	}
	if related := m.catalog.Related(a.ID, 3); len(related) > 0 {
		b.WriteString("\n\n**Related:**\n")
		for _, r := range related {
			fmt.Fprintf(&b, "- %s %s\n", r.Emoji, r.Name)
		}
	}
	m.detailView.SetContent(m.markdown.render(b.String()))
}
