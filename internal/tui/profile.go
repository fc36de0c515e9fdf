package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/verte-zerg/badgedex/internal/github"
	"github.com/verte-zerg/badgedex/internal/model"
	"github.com/verte-zerg/badgedex/internal/stats"
)

type profileMsg struct {
	seq      int
	username string
	stats    model.UserStats
	err      error
}

func (m *Model) startFetch(username string) tea.Cmd {
	if m.fetcher == nil {
		m.errMsg = "profile lookup is not configured"
		return nil
	}
	m.fetching = true
	m.fetchSeq++
	seq, fetcher, ctx := m.fetchSeq, m.fetcher, m.ctx
	m.renderProfile()
	return tea.Batch(func() tea.Msg {
		st, err := fetcher.FetchUserStats(ctx, username)
		return profileMsg{seq: seq, username: username, stats: st, err: err}
	}, m.spinner.Tick)
}

// handleProfile applies a fetch result. Results of superseded fetches are dropped.
func (m *Model) handleProfile(msg profileMsg) tea.Cmd {
	if msg.seq != m.fetchSeq {
		return nil
	}
	m.fetching = false
	if msg.err != nil {
		m.logger.Warn("profile fetch failed", zap.String("user", msg.username), zap.Error(msg.err))
		m.errMsg = github.UserMessage(msg.err)
		m.renderProfile()
		return nil
	}
	m.errMsg = ""
	st := msg.stats
	m.user = &st
	if m.store != nil {
		if err := m.store.SetLinkedProfile(m.ctx, st.Username); err != nil {
			m.logger.Error("failed to remember linked profile", zap.Error(err))
		}
	}
	m.refreshList()
	m.renderProfile()
	return nil
}

func (m *Model) unlink() {
	m.user = nil
	m.fetching = false
	m.fetchSeq++
	m.userInput.SetValue("")
	if m.store != nil {
		if err := m.store.ClearLinkedProfile(m.ctx); err != nil {
			m.logger.Error("failed to clear linked profile", zap.Error(err))
			m.errMsg = fmt.Sprintf("failed to unlink: %v", err)
		}
	}
	m.refreshList()
	m.renderProfile()
}

func (m *Model) updateProfile(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		name := strings.TrimSpace(m.userInput.Value())
		if name == "" {
			return m, nil
		}
		m.errMsg = ""
		return m, m.startFetch(name)
	case "ctrl+x":
		m.unlink()
		return m, nil
	case "up", "down", "pgup", "pgdown":
		var cmd tea.Cmd
		m.profileVP, cmd = m.profileVP.Update(msg)
		return m, cmd
	}
	var cmd tea.Cmd
	m.userInput, cmd = m.userInput.Update(msg)
	return m, cmd
}

func (m *Model) renderProfile() {
	switch {
	case m.fetching:
		m.profileVP.SetContent(m.spinner.View() + " Fetching profile...")
		return
	case m.user == nil:
		m.profileVP.SetContent(headerStyle.Render("Enter a GitHub username to check progress on trackable badges."))
		return
	}
	u := m.user
	cards := []string{
		metricCard("Repos", humanize.Comma(int64(u.PublicRepos))),
		metricCard("Followers", humanize.Comma(int64(u.Followers))),
		metricCard("Merged PRs", humanize.Comma(int64(u.MergedPRs))),
		metricCard("Stars", humanize.Comma(int64(u.TotalStars))),
	}
	var tiles string
	if m.width > 0 && m.width < 60 {
		tiles = lipgloss.JoinVertical(lipgloss.Left, cards...)
	} else {
		tiles = lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	}

	lines := []string{titleStyle.Render(fmt.Sprintf("%s (@%s)", u.DisplayName, u.Username)), tiles}
	report := stats.Resolve(m.catalog.All(), m.owned, m.evaluator, m.user)
	for _, r := range report.Rows {
		if r.Progress == nil {
			continue
		}
		p := r.Progress
		label := fmt.Sprintf("%s %s", r.Achievement.Emoji, r.Achievement.Name)
		if r.Owned {
			label += " " + ownedStyle.Render("✓")
		}
		next := "max tier"
		if !p.IsMaxed {
			next = "next: " + p.NextTierName
		}
		lines = append(lines, "", label,
			fmt.Sprintf("%s %d%%  %s/%s  %s", stats.Bar(p.Percent, 24), p.Percent,
				humanize.Comma(int64(p.Current)), humanize.Comma(int64(p.Target)), next))
	}
	m.profileVP.SetContent(strings.Join(lines, "\n"))
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}
