package guide

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/badgedex/internal/model"
)

const (
	BackendLocal  = "local"
	BackendOpenAI = "openai"
	BackendGemini = "gemini"
)

// Options selects and configures a responder.
type Options struct {
	Backend       string
	Model         string
	BaseURL       string
	ThinkingDelay time.Duration
	OpenAIKey     string
	GeminiKey     string
}

// New builds the responder named by opts.Backend. An empty backend means local.
func New(ctx context.Context, opts Options, items []model.Achievement, logger *zap.Logger) (Responder, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendLocal:
		return NewLocal(items, opts.ThinkingDelay), nil
	case BackendOpenAI:
		return NewOpenAI(opts.OpenAIKey, opts.BaseURL, opts.Model, items, logger), nil
	case BackendGemini:
		return NewGemini(ctx, opts.GeminiKey, opts.Model, items, logger), nil
	default:
		return nil, fmt.Errorf("unknown guide backend %q (want local, openai or gemini)", opts.Backend)
	}
}
