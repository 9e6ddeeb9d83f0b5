// Package llm wraps the chat-completion providers the assistant can talk to
// behind a single ChatClient interface.
package llm

import (
	"context"
	"errors"
	"time"
)

// ErrEmptyResponse is returned when a provider answers without any choices.
var ErrEmptyResponse = errors.New("LLM returned an empty response")

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Settings are the generation parameters of a single call.
type Settings struct {
	Temperature float64
	MaxTokens   int
}

type Option func(*Settings)

func WithTemperature(temp float64) Option {
	return func(s *Settings) { s.Temperature = temp }
}

func WithMaxTokens(tokens int) Option {
	return func(s *Settings) { s.MaxTokens = tokens }
}

func (s Settings) apply(opts []Option) Settings {
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// ChatClient sends a conversation to a model and returns the reply text.
// Implementations make exactly one request per call.
type ChatClient interface {
	Chat(ctx context.Context, messages []Message, opts ...Option) (string, error)
	Model() string
	Close() error
}

// WithTimeout bounds every Chat call of c by d.
func WithTimeout(c ChatClient, d time.Duration) ChatClient {
	if d <= 0 {
		return c
	}
	return &timeoutClient{ChatClient: c, timeout: d}
}

type timeoutClient struct {
	ChatClient
	timeout time.Duration
}

func (t *timeoutClient) Chat(ctx context.Context, messages []Message, opts ...Option) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.ChatClient.Chat(ctx, messages, opts...)
}

// splitSystem separates system instructions from the rest of the conversation.
func splitSystem(messages []Message) (system []string, rest []Message) {
	for _, m := range messages {
		if m.Role == RoleSystem {
			system = append(system, m.Content)
			continue
		}
		rest = append(rest, m)
	}
	return system, rest
}
