package llm

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"

	"github.com/Lllllllleong/financialdocumentflow/internal/gcp"
)

// VertexClient calls Gemini models through Vertex AI using application
// default credentials.
type VertexClient struct {
	client   *genai.Client
	model    string
	defaults Settings
}

func NewVertexClient(ctx context.Context, projectID, region, model string, defaults Settings) (*VertexClient, error) {
	client, err := gcp.NewVertexClient(ctx, projectID, region)
	if err != nil {
		return nil, err
	}
	return &VertexClient{client: client, model: model, defaults: defaults}, nil
}

func (c *VertexClient) Model() string { return c.model }

func (c *VertexClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func (c *VertexClient) Chat(ctx context.Context, messages []Message, opts ...Option) (string, error) {
	settings := c.defaults.apply(opts)
	system, rest := splitSystem(messages)
	if len(rest) == 0 {
		return "", fmt.Errorf("at least one non-system message is required")
	}

	model := c.client.GenerativeModel(c.model)
	model.GenerationConfig = genai.GenerationConfig{
		Temperature: genai.Ptr(float32(settings.Temperature)),
	}
	if settings.MaxTokens > 0 {
		model.GenerationConfig.MaxOutputTokens = genai.Ptr(int32(settings.MaxTokens))
	}
	if len(system) > 0 {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(strings.Join(system, "\n\n"))},
		}
	}

	cs := model.StartChat()
	for _, m := range rest[:len(rest)-1] {
		cs.History = append(cs.History, &genai.Content{Role: geminiRole(m.Role), Parts: []genai.Part{genai.Text(m.Content)}})
	}
	resp, err := cs.SendMessage(ctx, genai.Text(rest[len(rest)-1].Content))
	if err != nil {
		return "", fmt.Errorf("failed to generate content from vertex: %w", err)
	}
	return vertexText(resp)
}

func vertexText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(sb.String()), nil
}
