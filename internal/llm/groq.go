package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultGroqBaseURL is Groq's OpenAI-compatible endpoint.
const DefaultGroqBaseURL = "https://api.groq.com/openai/v1/"

// GroqClient talks to Groq through the OpenAI chat-completions API.
type GroqClient struct {
	client   openai.Client
	model    string
	defaults Settings
}

type GroqOption func(*groqConfig)

type groqConfig struct {
	baseURL string
}

// WithBaseURL points the client at another OpenAI-compatible endpoint.
func WithBaseURL(url string) GroqOption {
	return func(c *groqConfig) { c.baseURL = url }
}

func NewGroqClient(apiKey, model string, defaults Settings, opts ...GroqOption) (*GroqClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GROQ_API_KEY must be provided")
	}
	if model == "" {
		return nil, fmt.Errorf("model name must be provided")
	}
	cfg := groqConfig{baseURL: DefaultGroqBaseURL}
	for _, opt := range opts {
		opt(&cfg)
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(cfg.baseURL),
		option.WithMaxRetries(0),
	)
	return &GroqClient{client: client, model: model, defaults: defaults}, nil
}

func (c *GroqClient) Model() string { return c.model }

func (c *GroqClient) Close() error { return nil }

func (c *GroqClient) Chat(ctx context.Context, messages []Message, opts ...Option) (string, error) {
	settings := c.defaults.apply(opts)

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)),
		Temperature: openai.Float(settings.Temperature),
	}
	if settings.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(settings.MaxTokens))
	}
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			params.Messages = append(params.Messages, openai.SystemMessage(m.Content))
		case RoleAssistant:
			params.Messages = append(params.Messages, openai.AssistantMessage(m.Content))
		default:
			params.Messages = append(params.Messages, openai.UserMessage(m.Content))
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("groq request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}
