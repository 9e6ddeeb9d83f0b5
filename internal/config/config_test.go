package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable FromEnv reads so the host environment
// cannot leak into a test. GetEnv treats empty values as unset.
func clearEnv(t *testing.T) {
	for _, key := range []string{
		"LLM_PROVIDER", "GROQ_API_KEY", "LLM_API_KEY", "GEMINI_API_KEY", "MODEL_NAME",
		"TEMPERATURE", "MAX_TOKENS", "LLM_TIMEOUT", "APP_NAME", "APP_VERSION", "PORT",
		"LOG_LEVEL", "UPLOAD_DIR", "MAX_UPLOAD_BYTES", "STORAGE_BACKEND", "GCS_BUCKET",
		"STATUS_BACKEND", "STATUS_DB_PATH", "FIRESTORE_COLLECTION", "FIRESTORE_DATABASE", "PROJECT_ID",
		"VERTEX_AI_REGION", "WORKFLOW_ID", "WORKFLOW_LOCATION", "CORS_ALLOW_ORIGINS",
	} {
		t.Setenv(key, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("GROQ_API_KEY", "gsk-test")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ProviderGroq, cfg.LLMProvider)
	assert.Equal(t, "gsk-test", cfg.LLMAPIKey)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.LLMModel)
	assert.Equal(t, 0.7, cfg.Temperature)
	assert.Equal(t, 2000, cfg.MaxTokens)
	assert.Equal(t, 60*time.Second, cfg.LLMTimeout)
	assert.Equal(t, "Asistente Financiero", cfg.AppName)
	assert.Equal(t, "0.1.0", cfg.AppVersion)
	assert.Equal(t, "./uploads/raw", cfg.UploadDir)
	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, StorageLocal, cfg.StorageBackend)
	assert.Equal(t, StatusMemory, cfg.StatusBackend)
	assert.Equal(t, int64(50<<20), cfg.MaxUploadBytes)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, "document_status", cfg.FirestoreCollection)
	assert.Empty(t, cfg.FirestoreDatabase)
}

func TestFromEnvCORSOrigins(t *testing.T) {
	clearEnv(t)
	t.Setenv("GROQ_API_KEY", "gsk-test")
	t.Setenv("CORS_ALLOW_ORIGINS", " https://app.example.com , http://localhost:3000,")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://app.example.com", "http://localhost:3000"}, cfg.CORSOrigins)

	t.Setenv("CORS_ALLOW_ORIGINS", "*,https://app.example.com")
	_, err = FromEnv()
	assert.ErrorContains(t, err, "CORS_ALLOW_ORIGINS")
}

func TestFromEnvMissingAPIKey(t *testing.T) {
	clearEnv(t)

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GROQ_API_KEY")
}

func TestFromEnvVertexNeedsProjectNotKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_PROVIDER", "vertex")
	t.Setenv("PROJECT_ID", "demo-project")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ProviderVertex, cfg.LLMProvider)
	assert.Empty(t, cfg.LLMAPIKey)
	assert.Equal(t, "gemini-1.5-pro", cfg.LLMModel)
}

func TestFromEnvRejectsOutOfRange(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantMsg string
	}{
		{"temperature high", "TEMPERATURE", "2.5", "TEMPERATURE must be within"},
		{"temperature negative", "TEMPERATURE", "-0.1", "TEMPERATURE must be within"},
		{"temperature garbage", "TEMPERATURE", "warm", "TEMPERATURE must be a number"},
		{"max tokens zero", "MAX_TOKENS", "0", "MAX_TOKENS must be greater than 0"},
		{"timeout", "LLM_TIMEOUT", "soon", "LLM_TIMEOUT must be a duration"},
		{"storage backend", "STORAGE_BACKEND", "s3", "STORAGE_BACKEND"},
		{"status backend", "STATUS_BACKEND", "redis", "STATUS_BACKEND"},
		{"provider", "LLM_PROVIDER", "acme", "LLM_PROVIDER"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("GROQ_API_KEY", "gsk-test")
			t.Setenv(tt.key, tt.value)

			_, err := FromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestFromEnvBoundaryTemperatures(t *testing.T) {
	for _, v := range []string{"0", "0.0", "2", "2.0"} {
		clearEnv(t)
		t.Setenv("GROQ_API_KEY", "gsk-test")
		t.Setenv("TEMPERATURE", v)

		_, err := FromEnv()
		assert.NoError(t, err, "TEMPERATURE=%s", v)
	}
}

func TestFromEnvReportsAllProblems(t *testing.T) {
	clearEnv(t)
	t.Setenv("TEMPERATURE", "9")
	t.Setenv("MAX_TOKENS", "-1")
	t.Setenv("STORAGE_BACKEND", "gcs")

	_, err := FromEnv()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "GROQ_API_KEY")
	assert.Contains(t, msg, "TEMPERATURE")
	assert.Contains(t, msg, "MAX_TOKENS")
	assert.Contains(t, msg, "GCS_BUCKET")
}

func TestGetEnv(t *testing.T) {
	t.Setenv("FDF_SET", "value")
	t.Setenv("FDF_EMPTY", "")

	assert.Equal(t, "value", GetEnv("FDF_SET", "fallback"))
	assert.Equal(t, "fallback", GetEnv("FDF_EMPTY", "fallback"))
	assert.Equal(t, "fallback", GetEnv("FDF_NEVER_SET_ANYWHERE", "fallback"))
}
