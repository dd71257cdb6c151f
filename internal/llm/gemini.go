package llm

import (
	"context"
	"fmt"

	"github.com/IshpreetSingh8264/InflowBackend/internal/domain"
	"google.golang.org/genai"
)

// GeminiClient implements ModelClient on top of the Gemini API.
// Credentials come from the environment (GEMINI_API_KEY or application
// default credentials), same as the rest of the Google Cloud clients.
type GeminiClient struct {
	client    *genai.Client
	modelName string
}

// NewGeminiClient creates a Gemini-backed model client.
func NewGeminiClient(ctx context.Context, modelName string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("NewGeminiClient: create genai client: %w", err)
	}

	return &GeminiClient{
		client:    client,
		modelName: modelName,
	}, nil
}

// Generate implements ModelClient. A system message, when present, is passed
// as the model's system instruction rather than as a conversation turn.
func (g *GeminiClient) Generate(ctx context.Context, messages []Message, opts Options) (string, error) {
	var contents []*genai.Content
	cfg := &genai.GenerateContentConfig{}

	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			cfg.SystemInstruction = genai.NewContentFromText(m.Content, genai.RoleUser)
		case RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}

	if opts.Temperature > 0 {
		temp := opts.Temperature
		cfg.Temperature = &temp
	}
	if opts.MaxOutputTokens > 0 {
		cfg.MaxOutputTokens = opts.MaxOutputTokens
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("%w: generate content: %v", domain.ErrUpstreamUnavailable, err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: empty response from model", domain.ErrUpstreamUnavailable)
	}

	return text, nil
}
