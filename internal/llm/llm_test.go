package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Lllllllleong/financialdocumentflow/internal/config"
	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatRequest struct {
	Model               string    `json:"model"`
	Messages            []Message `json:"messages"`
	Temperature         float64   `json:"temperature"`
	MaxCompletionTokens int       `json:"max_completion_tokens"`
}

func completionJSON(content string) string {
	body, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1731600000,
		"model":   "llama-3.3-70b-versatile",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
	})
	return string(body)
}

func newGroqServer(t *testing.T, handler func(req chatRequest) (int, string)) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/openai/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		raw, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		var req chatRequest
		assert.NoError(t, json.Unmarshal(raw, &req))

		status, body := handler(req)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func TestGroqClientChat(t *testing.T) {
	var got chatRequest
	server, _ := newGroqServer(t, func(req chatRequest) (int, string) {
		got = req
		return http.StatusOK, completionJSON("Resumen listo")
	})

	client, err := NewGroqClient("test-key", "llama-3.3-70b-versatile", Settings{Temperature: 0.7, MaxTokens: 2000},
		WithBaseURL(server.URL+"/openai/v1/"))
	require.NoError(t, err)
	assert.Equal(t, "llama-3.3-70b-versatile", client.Model())

	reply, err := client.Chat(context.Background(), SummaryMessages("Ingresos 100"), WithTemperature(0.3), WithMaxTokens(1500))
	require.NoError(t, err)
	assert.Equal(t, "Resumen listo", reply)

	assert.Equal(t, "llama-3.3-70b-versatile", got.Model)
	assert.InDelta(t, 0.3, got.Temperature, 1e-9)
	assert.Equal(t, 1500, got.MaxCompletionTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, RoleSystem, got.Messages[0].Role)
	assert.Equal(t, SystemPrompt, got.Messages[0].Content)
	assert.Equal(t, RoleUser, got.Messages[1].Role)
	assert.Contains(t, got.Messages[1].Content, "INFORME:\nIngresos 100")
}

func TestGroqClientDefaults(t *testing.T) {
	var got chatRequest
	server, _ := newGroqServer(t, func(req chatRequest) (int, string) {
		got = req
		return http.StatusOK, completionJSON("ok")
	})
	client, err := NewGroqClient("test-key", "m", Settings{Temperature: 0.7, MaxTokens: 2000}, WithBaseURL(server.URL+"/openai/v1/"))
	require.NoError(t, err)

	_, err = client.Chat(context.Background(), []Message{{Role: RoleUser, Content: "hola"}})
	require.NoError(t, err)
	assert.InDelta(t, 0.7, got.Temperature, 1e-9)
	assert.Equal(t, 2000, got.MaxCompletionTokens)
}

func TestGroqClientDoesNotRetry(t *testing.T) {
	server, calls := newGroqServer(t, func(chatRequest) (int, string) {
		return http.StatusInternalServerError, `{"error":{"message":"upstream down","type":"server_error"}}`
	})
	client, err := NewGroqClient("test-key", "m", Settings{}, WithBaseURL(server.URL+"/openai/v1/"))
	require.NoError(t, err)

	_, err = client.Chat(context.Background(), []Message{{Role: RoleUser, Content: "hola"}})
	assert.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGroqClientEmptyChoices(t *testing.T) {
	server, _ := newGroqServer(t, func(chatRequest) (int, string) {
		return http.StatusOK, `{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[]}`
	})
	client, err := NewGroqClient("test-key", "m", Settings{}, WithBaseURL(server.URL+"/openai/v1/"))
	require.NoError(t, err)

	_, err = client.Chat(context.Background(), []Message{{Role: RoleUser, Content: "hola"}})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestNewGroqClientValidates(t *testing.T) {
	_, err := NewGroqClient("", "m", Settings{})
	assert.Error(t, err)
	_, err = NewGroqClient("k", "", Settings{})
	assert.Error(t, err)
}

func TestPing(t *testing.T) {
	var got chatRequest
	server, _ := newGroqServer(t, func(req chatRequest) (int, string) {
		got = req
		return http.StatusOK, completionJSON("  Conexión exitosa \n")
	})
	client, err := NewGroqClient("test-key", "m", Settings{Temperature: 0.7, MaxTokens: 2000}, WithBaseURL(server.URL+"/openai/v1/"))
	require.NoError(t, err)

	reply, err := Ping(context.Background(), client)
	require.NoError(t, err)
	assert.Equal(t, "Conexión exitosa", reply)
	assert.Equal(t, 100, got.MaxCompletionTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "Eres un asistente financiero experto.", got.Messages[0].Content)
	assert.Equal(t, "Di 'Conexión exitosa' si me entiendes.", got.Messages[1].Content)
}

func TestComparisonMessages(t *testing.T) {
	msgs := ComparisonMessages("uno", "dos")
	require.Len(t, msgs, 2)
	assert.Equal(t, RoleSystem, msgs[0].Role)
	assert.Equal(t,
		"Compara estos dos informes financieros y destaca las diferencias clave.\n\nDOCUMENTO 1:\nuno\n\nDOCUMENTO 2:\ndos",
		msgs[1].Content)
}

func TestSummaryMessagesStructure(t *testing.T) {
	content := SummaryMessages("X")[1].Content
	for _, section := range []string{"**Resumen Ejecutivo**", "**Métricas Clave**", "**Tendencias Principales**", "**Riesgos u Observaciones**", "**Conclusión**"} {
		assert.Contains(t, content, section)
	}
	assert.Contains(t, content, "INFORME:\nX")
}

type slowClient struct{}

func (slowClient) Chat(ctx context.Context, _ []Message, _ ...Option) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}
func (slowClient) Model() string { return "slow" }
func (slowClient) Close() error  { return nil }

func TestWithTimeout(t *testing.T) {
	c := WithTimeout(slowClient{}, 10*time.Millisecond)
	_, err := c.Chat(context.Background(), nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "slow", c.Model())

	assert.Equal(t, slowClient{}, WithTimeout(slowClient{}, 0))
}

func TestSplitSystem(t *testing.T) {
	system, rest := splitSystem([]Message{
		{Role: RoleSystem, Content: "s"},
		{Role: RoleUser, Content: "u"},
		{Role: RoleAssistant, Content: "a"},
	})
	assert.Equal(t, []string{"s"}, system)
	assert.Equal(t, []Message{{Role: RoleUser, Content: "u"}, {Role: RoleAssistant, Content: "a"}}, rest)
	assert.Equal(t, "model", geminiRole(RoleAssistant))
	assert.Equal(t, "user", geminiRole(RoleUser))
}

func TestGeminiText(t *testing.T) {
	_, err := geminiText(nil)
	assert.ErrorIs(t, err, ErrEmptyResponse)

	text, err := geminiText(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []genai.Part{genai.Text("Hola "), genai.Text("mundo")}},
	}}})
	require.NoError(t, err)
	assert.Equal(t, "Hola mundo", text)
}

func TestNewSelectsProvider(t *testing.T) {
	cfg := &config.Config{LLMProvider: config.ProviderGroq, LLMAPIKey: "k", LLMModel: "m", LLMTimeout: time.Second}
	c, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "m", c.Model())
	assert.IsType(t, &timeoutClient{}, c)

	_, err = New(context.Background(), &config.Config{LLMProvider: "ollama"})
	assert.Error(t, err)
}
