package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiClient calls the Gemini API with an API key.
type GeminiClient struct {
	client   *genai.Client
	model    string
	defaults Settings
}

func NewGeminiClient(ctx context.Context, apiKey, model string, defaults Settings) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not found")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: model, defaults: defaults}, nil
}

func (c *GeminiClient) Model() string { return c.model }

func (c *GeminiClient) Close() error { return c.client.Close() }

func (c *GeminiClient) Chat(ctx context.Context, messages []Message, opts ...Option) (string, error) {
	settings := c.defaults.apply(opts)
	system, rest := splitSystem(messages)
	if len(rest) == 0 {
		return "", fmt.Errorf("at least one non-system message is required")
	}

	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(float32(settings.Temperature))
	if settings.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(settings.MaxTokens))
	}
	if len(system) > 0 {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(strings.Join(system, "\n\n"))}}
	}

	cs := model.StartChat()
	for _, m := range rest[:len(rest)-1] {
		cs.History = append(cs.History, &genai.Content{Role: geminiRole(m.Role), Parts: []genai.Part{genai.Text(m.Content)}})
	}
	resp, err := cs.SendMessage(ctx, genai.Text(rest[len(rest)-1].Content))
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	return geminiText(resp)
}

func geminiRole(r Role) string {
	if r == RoleAssistant {
		return "model"
	}
	return "user"
}

func geminiText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return sb.String(), nil
}
