package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/badgedex/internal/guide"
)

// exchange is one question in the guide transcript. Replies fill the entry
// with the matching seq, so the transcript keeps the order questions were
// asked in even when replies arrive out of order.
type exchange struct {
	seq      int
	question string
	answer   string
	pending  bool
}

type guideReplyMsg struct {
	seq    int
	answer string
}

func askCmd(ctx context.Context, responder guide.Responder, seq int, question string) tea.Cmd {
	return func() tea.Msg {
		if responder == nil {
			return guideReplyMsg{seq: seq, answer: guide.ServiceUnavailableMessage}
		}
		return guideReplyMsg{seq: seq, answer: responder.Respond(ctx, question)}
	}
}

func (m *Model) ask(question string) tea.Cmd {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil
	}
	m.nextSeq++
	m.transcript = append(m.transcript, exchange{seq: m.nextSeq, question: question, pending: true})
	m.renderTranscript()
	m.guideVP.GotoBottom()
	return tea.Batch(askCmd(m.ctx, m.responder, m.nextSeq, question), m.spinner.Tick)
}

func (m *Model) handleGuideReply(msg guideReplyMsg) {
	for i := range m.transcript {
		if m.transcript[i].seq == msg.seq {
			m.transcript[i].answer = msg.answer
			m.transcript[i].pending = false
			break
		}
	}
	m.renderTranscript()
	m.guideVP.GotoBottom()
}

func (m *Model) pendingReplies() int {
	n := 0
	for _, e := range m.transcript {
		if e.pending {
			n++
		}
	}
	return n
}

func (m *Model) updateGuide(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		question := m.question.Value()
		m.question.SetValue("")
		return m, m.ask(question)
	case "up", "down", "pgup", "pgdown":
		var cmd tea.Cmd
		m.guideVP, cmd = m.guideVP.Update(msg)
		return m, cmd
	}
	var cmd tea.Cmd
	m.question, cmd = m.question.Update(msg)
	return m, cmd
}

func (m *Model) renderTranscript() {
	if len(m.transcript) == 0 {
		m.guideVP.SetContent(m.markdown.render(guide.DefaultMessage))
		return
	}
	parts := make([]string, 0, len(m.transcript))
	for _, e := range m.transcript {
		var b strings.Builder
		b.WriteString(questionStyle.Render("> " + e.question))
		b.WriteString("\n")
		if e.pending {
			b.WriteString(m.spinner.View() + " thinking...")
		} else {
			b.WriteString(m.markdown.render(e.answer))
		}
		parts = append(parts, b.String())
	}
	m.guideVP.SetContent(strings.Join(parts, "\n\n"))
}
