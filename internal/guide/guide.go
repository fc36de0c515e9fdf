// Package guide answers free-text questions about achievements.
package guide

import (
	"context"
	"strings"
	"time"

	"github.com/verte-zerg/badgedex/internal/model"
)

// DefaultThinkingDelay is the pause the local responder takes before answering.
const DefaultThinkingDelay = 600 * time.Millisecond

// DefaultMessage is returned when a question matches nothing.
const DefaultMessage = `### **How can I help?**
I am your interactive Profile Guide. I can help you with:

- **Specific Badges**: Ask about "YOLO", "Pull Shark", or "Quickdraw".
- **Strategies**: Ask "How to get stars?" or "How to merge PRs?".
- **Profile Tips**: Ask how to improve your GitHub presence.

*Type the name of a badge to see its detailed guide.*`

// TrackingMessage answers questions about statistics and linking a profile.
const TrackingMessage = `### **Tracking Your Stats**
You can connect your real GitHub profile with ` + "`badgedex link <username>`" + ` or from the Profile tab.
This will automatically check your eligibility for badges like **Pull Shark** and **Starstruck** based on real data.`

// ServiceUnavailableMessage replaces remote answers when the backend cannot be used.
const ServiceUnavailableMessage = `### **Guide unavailable**
The remote guide service could not be reached. Check the API key and network, or set ` + "`backend = \"local\"`" + ` in the [guide] config section.`

// Responder answers a question. It never fails; problems become text.
type Responder interface {
	Respond(ctx context.Context, question string) string
}

var topicalKeywords = []string{"stat", "track", "connect", "link"}

// Local matches questions against catalog text without any network access.
type Local struct {
	items []model.Achievement
	delay time.Duration
}

// NewLocal returns a local responder over items. A zero delay answers immediately.
func NewLocal(items []model.Achievement, delay time.Duration) *Local {
	return &Local{items: items, delay: delay}
}

// Respond waits for the thinking delay, then answers. Cancelling ctx only
// cuts the wait short.
func (l *Local) Respond(ctx context.Context, question string) string {
	if l.delay > 0 {
		timer := time.NewTimer(l.delay)
		select {
		case <-ctx.Done():
		case <-timer.C:
		}
		timer.Stop()
	}
	return Answer(l.items, question)
}

// Answer returns the deterministic reply for question. The first achievement
// in catalog order whose name or id appears in the question wins.
func Answer(items []model.Achievement, question string) string {
	q := strings.ToLower(question)
	for _, a := range items {
		if strings.Contains(q, strings.ToLower(a.Name)) || strings.Contains(q, strings.ToLower(a.ID)) {
			return Strategy(a)
		}
	}
	for _, kw := range topicalKeywords {
		if strings.Contains(q, kw) {
			return TrackingMessage
		}
	}
	return DefaultMessage
}

// Strategy renders the markdown guide for one achievement.
func Strategy(a model.Achievement) string {
	var b strings.Builder
	b.WriteString("### **")
	if a.Emoji != "" {
		b.WriteString(a.Emoji)
		b.WriteString(" ")
	}
	b.WriteString(a.Name)
	b.WriteString(" Strategy**\n\n")
	b.WriteString(a.Description)
	b.WriteString("\n\n**Official Requirements:**\n")
	b.WriteString(a.HowToEarn)
	b.WriteString("\n\n**Step-by-Step Guide:**\n")
	for _, step := range a.GuideSteps {
		b.WriteString("- ")
		b.WriteString(step)
		b.WriteString("\n")
	}
	if a.Tiered() {
		b.WriteString("\n**Tiers:**\n")
		for _, t := range a.Tiers {
			b.WriteString("- **")
			b.WriteString(t.Name)
			b.WriteString("**: ")
			b.WriteString(t.Criteria)
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
