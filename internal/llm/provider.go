package llm

import (
	"context"
	"fmt"

	"github.com/Lllllllleong/financialdocumentflow/internal/config"
)

// New builds the ChatClient selected by cfg.LLMProvider, with the
// configured defaults and per-call timeout applied.
func New(ctx context.Context, cfg *config.Config) (ChatClient, error) {
	defaults := Settings{Temperature: cfg.Temperature, MaxTokens: cfg.MaxTokens}

	var (
		client ChatClient
		err    error
	)
	switch cfg.LLMProvider {
	case config.ProviderGroq:
		client, err = NewGroqClient(cfg.LLMAPIKey, cfg.LLMModel, defaults)
	case config.ProviderGemini:
		client, err = NewGeminiClient(ctx, cfg.LLMAPIKey, cfg.LLMModel, defaults)
	case config.ProviderVertex:
		client, err = NewVertexClient(ctx, cfg.ProjectID, cfg.VertexAIRegion, cfg.LLMModel, defaults)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLMProvider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", cfg.LLMProvider, err)
	}
	return WithTimeout(client, cfg.LLMTimeout), nil
}
