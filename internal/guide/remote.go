package guide

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"google.golang.org/genai"
	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/badgedex/internal/model"
)

const (
	// DefaultOpenAIModel is used when no model is configured for the openai backend.
	DefaultOpenAIModel = "gpt-4o-mini"
	// DefaultGeminiModel is used when no model is configured for the gemini backend.
	DefaultGeminiModel = "gemini-2.5-flash"
)

const systemPrompt = `You are the badgedex guide. You help people earn GitHub profile achievements.
Answer using only the achievement catalog below. Reply in short markdown with concrete steps.
If the question is not about GitHub achievements, say what you can help with instead.

Catalog:
`

type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// OpenAI answers through an OpenAI-compatible chat completion endpoint.
type OpenAI struct {
	client chatClient
	model  string
	prompt string
	logger *zap.Logger
}

// NewOpenAI builds an OpenAI responder. An empty apiKey leaves the responder
// permanently unavailable.
func NewOpenAI(apiKey, baseURL, modelID string, items []model.Achievement, logger *zap.Logger) *OpenAI {
	if logger == nil {
		logger = zap.NewNop()
	}
	if modelID == "" {
		modelID = DefaultOpenAIModel
	}
	r := &OpenAI{model: modelID, prompt: systemPrompt + catalogContext(items), logger: logger}
	if apiKey == "" {
		logger.Warn("openai guide has no api key")
		return r
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	r.client = openai.NewClientWithConfig(cfg)
	return r
}

// Respond sends the catalog and question as a chat completion.
func (r *OpenAI) Respond(ctx context.Context, question string) string {
	if r.client == nil {
		return ServiceUnavailableMessage
	}
	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: r.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: r.prompt},
			{Role: openai.ChatMessageRoleUser, Content: question},
		},
	})
	if err != nil {
		r.logger.Warn("openai guide request failed", zap.String("model", r.model), zap.Error(err))
		return ServiceUnavailableMessage
	}
	if len(resp.Choices) == 0 {
		r.logger.Warn("openai guide returned no choices", zap.String("model", r.model))
		return ServiceUnavailableMessage
	}
	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	if answer == "" {
		return ServiceUnavailableMessage
	}
	r.logger.Debug("openai guide answered", zap.Int("length", len(answer)))
	return answer
}

// Gemini answers through the Gemini generate content API.
type Gemini struct {
	models contentGenerator
	model  string
	prompt string
	logger *zap.Logger
}

// NewGemini builds a Gemini responder. A missing key or client setup failure
// leaves the responder permanently unavailable.
func NewGemini(ctx context.Context, apiKey, modelID string, items []model.Achievement, logger *zap.Logger) *Gemini {
	if logger == nil {
		logger = zap.NewNop()
	}
	if modelID == "" {
		modelID = DefaultGeminiModel
	}
	r := &Gemini{model: modelID, prompt: systemPrompt + catalogContext(items), logger: logger}
	if apiKey == "" {
		logger.Warn("gemini guide has no api key")
		return r
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		logger.Warn("failed to create gemini client", zap.Error(err))
		return r
	}
	r.models = client.Models
	return r
}

// Respond sends the question with the catalog as system instruction.
func (r *Gemini) Respond(ctx context.Context, question string) string {
	if r.models == nil {
		return ServiceUnavailableMessage
	}
	resp, err := r.models.GenerateContent(ctx, r.model,
		[]*genai.Content{genai.NewContentFromText(question, genai.RoleUser)},
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(r.prompt, genai.RoleUser),
		},
	)
	if err != nil {
		r.logger.Warn("gemini guide request failed", zap.String("model", r.model), zap.Error(err))
		return ServiceUnavailableMessage
	}
	answer := strings.TrimSpace(responseText(resp))
	if answer == "" {
		r.logger.Warn("gemini guide returned no text", zap.String("model", r.model))
		return ServiceUnavailableMessage
	}
	return answer
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}

type contextEntry struct {
	ID        string   `yaml:"id"`
	Name      string   `yaml:"name"`
	Status    string   `yaml:"status"`
	About     string   `yaml:"about"`
	HowToEarn string   `yaml:"how_to_earn"`
	Tiers     []string `yaml:"tiers,omitempty"`
	Steps     []string `yaml:"steps"`
}

// catalogContext serializes items for a model prompt.
func catalogContext(items []model.Achievement) string {
	entries := make([]contextEntry, 0, len(items))
	for _, a := range items {
		e := contextEntry{
			ID:        a.ID,
			Name:      a.Name,
			Status:    a.Status.String(),
			About:     a.Description,
			HowToEarn: a.HowToEarn,
			Steps:     a.GuideSteps,
		}
		for _, t := range a.Tiers {
			e.Tiers = append(e.Tiers, fmt.Sprintf("%s: %s", t.Name, t.Criteria))
		}
		entries = append(entries, e)
	}
	data, err := yaml.Marshal(entries)
	if err != nil {
		return ""
	}
	return string(data)
}
