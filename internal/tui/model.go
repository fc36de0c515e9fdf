// Package tui provides the Bubble Tea achievement browser.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/verte-zerg/badgedex/internal/catalog"
	"github.com/verte-zerg/badgedex/internal/guide"
	"github.com/verte-zerg/badgedex/internal/model"
	"github.com/verte-zerg/badgedex/internal/progress"
)

const (
	tabBadges = iota
	tabProfile
	tabGuide
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	titleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	ownedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#3FB950"))
	questionStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	cardStyle      = lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder(), true).BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
)

// OwnedStore persists the owned set and the linked profile.
type OwnedStore interface {
	SaveOwned(ctx context.Context, ids []string) error
	SetLinkedProfile(ctx context.Context, username string) error
	ClearLinkedProfile(ctx context.Context) error
}

// StatsFetcher loads profile statistics.
type StatsFetcher interface {
	FetchUserStats(ctx context.Context, username string) (model.UserStats, error)
}

// Deps wires the model to the engine and its collaborators.
type Deps struct {
	Catalog    *catalog.Catalog
	Evaluator  *progress.Evaluator
	Owned      progress.OwnedSet
	Store      OwnedStore
	Fetcher    StatsFetcher
	Guide      guide.Responder
	Browse     model.BrowseConfig
	LinkedUser string
	Logger     *zap.Logger
}

// Model implements the Bubble Tea browser UI.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger

	catalog   *catalog.Catalog
	evaluator *progress.Evaluator
	store     OwnedStore
	fetcher   StatsFetcher
	responder guide.Responder

	owned  progress.OwnedSet
	user   *model.UserStats
	browse model.BrowseConfig

	tabs      []string
	activeTab int
	width     int
	height    int
	errMsg    string

	// Badges tab.
	search     textinput.Model
	searching  bool
	list       table.Model
	visible    []model.Achievement
	earnable   int
	detail     bool
	detailView viewport.Model

	// Profile tab.
	userInput textinput.Model
	fetching  bool
	fetchSeq  int
	profileVP viewport.Model

	// Guide tab.
	question   textinput.Model
	transcript []exchange
	nextSeq    int
	guideVP    viewport.Model

	spinner  spinner.Model
	markdown *markdownRenderer
}

// NewModel constructs the browser model.
func NewModel(d Deps) *Model {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m := &Model{
		ctx:       ctx,
		cancel:    cancel,
		logger:    logger,
		catalog:   d.Catalog,
		evaluator: d.Evaluator,
		store:     d.Store,
		fetcher:   d.Fetcher,
		responder: d.Guide,
		owned:     d.Owned,
		browse:    d.Browse,
		tabs:      []string{"Badges", "Profile", "Guide"},
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		markdown:  newMarkdownRenderer(),
	}
	m.search = newInput("Search: ", "name or description")
	m.search.SetValue(d.Browse.Search)
	m.userInput = newInput("GitHub user: ", "octocat")
	m.userInput.SetValue(d.LinkedUser)
	m.question = newInput("Ask: ", "how do I get pull shark?")
	m.list = newBadgeTable()
	m.detailView = viewport.New(0, 0)
	m.profileVP = viewport.New(0, 0)
	m.guideVP = viewport.New(0, 0)
	m.refreshList()
	m.renderProfile()
	m.renderTranscript()
	return m
}

func newInput(prompt, placeholder string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.Placeholder = placeholder
	input.CharLimit = 200
	return input
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if name := strings.TrimSpace(m.userInput.Value()); name != "" {
		return m.startFetch(name)
	}
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case profileMsg:
		return m, m.handleProfile(msg)
	case guideReplyMsg:
		m.handleGuideReply(msg)
		return m, nil
	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.renderProfile()
		m.renderTranscript()
		return m, cmd
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.cancel()
			return m, tea.Quit
		}
		if msg.Type == tea.KeyTab && !m.searching {
			m.moveTab(1)
			return m, m.focusActiveInput()
		}
		if msg.Type == tea.KeyShiftTab && !m.searching {
			m.moveTab(-1)
			return m, m.focusActiveInput()
		}
		switch m.activeTab {
		case tabProfile:
			return m.updateProfile(msg)
		case tabGuide:
			return m.updateGuide(msg)
		default:
			return m.updateBadges(msg)
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) busy() bool {
	return m.fetching || m.pendingReplies() > 0
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	next := (m.activeTab + delta + count) % count
	m.activeTab = next
	m.errMsg = ""
}

func (m *Model) focusActiveInput() tea.Cmd {
	m.search.Blur()
	m.userInput.Blur()
	m.question.Blur()
	m.searching = false
	switch m.activeTab {
	case tabProfile:
		return m.userInput.Focus()
	case tabGuide:
		return m.question.Focus()
	}
	return nil
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = maxInt(1, m.height-headerHeight-footerHeight)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.list.SetWidth(m.width)
	m.list.SetHeight(maxInt(1, bodyHeight-1))
	m.list.SetColumns(badgeColumns(m.width))
	m.markdown.setWidth(m.width)
	for _, vp := range []*viewport.Model{&m.detailView, &m.profileVP, &m.guideVP} {
		vp.Width = m.width
		vp.Height = maxInt(1, bodyHeight-1)
	}
	for _, in := range []*textinput.Model{&m.search, &m.userInput, &m.question} {
		in.Width = maxInt(10, m.width-lipgloss.Width(in.Prompt)-2)
	}
	m.refreshList()
	if m.detail {
		m.renderDetail()
	}
	m.renderProfile()
	m.renderTranscript()
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	return tabs + "\n" + headerStyle.Render(truncateLine(m.headerLine(), m.width))
}

func (m *Model) headerLine() string {
	switch m.activeTab {
	case tabProfile:
		if m.user != nil {
			return "Linked: @" + m.user.Username
		}
		return "No profile linked"
	case tabGuide:
		return "Ask about any badge by name"
	}
	status := "any"
	if m.browse.Status != nil {
		status = m.browse.Status.String()
	}
	return "Filter: " + m.browse.Filter.String() + "  Sort: " + m.browse.Sort.String() + "  Status: " + status
}

func (m *Model) renderBody() string {
	switch m.activeTab {
	case tabProfile:
		return m.userInput.View() + "\n" + m.profileVP.View()
	case tabGuide:
		return m.guideVP.View() + "\n" + m.question.View()
	}
	if m.detail {
		return m.detailView.View()
	}
	if len(m.visible) == 0 {
		return m.search.View() + "\nNo achievements match."
	}
	return m.search.View() + "\n" + m.list.View()
}

func (m *Model) renderHelp() string {
	switch m.activeTab {
	case tabProfile:
		return "enter: fetch  ctrl+x: unlink  tab: next tab  ctrl+c: quit"
	case tabGuide:
		return "enter: ask  up/down: scroll  tab: next tab  ctrl+c: quit"
	}
	if m.detail {
		return "space: toggle owned  esc: back  up/down: scroll  q: quit"
	}
	if m.searching {
		return "type to search  enter/esc: done"
	}
	return "/: search  f: filter  s: sort  a: status  space: toggle owned  enter: details  tab: next tab  q: quit"
}

func (m *Model) renderFooter() string {
	summary := m.summaryLine()
	help := m.renderHelp()
	line := footerStyle.Render(truncateLine(summary+"  "+help, m.width))
	if m.errMsg != "" {
		return line + "\n" + errorStyle.Render(truncateLine(m.errMsg, m.width))
	}
	return line
}
