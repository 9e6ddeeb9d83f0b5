// Package config loads and validates the service configuration from the
// environment. A .env file in the working directory is honoured.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderGroq   = "groq"
	ProviderGemini = "gemini"
	ProviderVertex = "vertex"

	StorageLocal = "local"
	StorageGCS   = "gcs"

	StatusMemory    = "memory"
	StatusSQLite    = "sqlite"
	StatusFirestore = "firestore"
)

// Config holds every setting the service reads at startup.
type Config struct {
	// LLM
	LLMProvider string
	LLMAPIKey   string
	LLMModel    string
	Temperature float64
	MaxTokens   int
	LLMTimeout  time.Duration

	// API
	AppName        string
	AppVersion     string
	Port           string
	LogLevel       slog.Level
	UploadDir      string
	MaxUploadBytes int64
	CORSOrigins    []string

	// Storage and status tracking
	StorageBackend      string
	GCSBucket           string
	StatusBackend       string
	StatusDBPath        string
	FirestoreCollection string
	FirestoreDatabase   string

	// Google Cloud
	ProjectID        string
	VertexAIRegion   string
	WorkflowID       string
	WorkflowLocation string
}

// GetEnv is a helper to read an environment variable or return a default value.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

// Load reads .env (if present) and the environment, returning every
// validation problem at once.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	var errs []error

	cfg := &Config{
		LLMProvider:         strings.ToLower(GetEnv("LLM_PROVIDER", ProviderGroq)),
		AppName:             GetEnv("APP_NAME", "Asistente Financiero"),
		AppVersion:          GetEnv("APP_VERSION", "0.1.0"),
		Port:                GetEnv("PORT", "8000"),
		UploadDir:           GetEnv("UPLOAD_DIR", "./uploads/raw"),
		StorageBackend:      strings.ToLower(GetEnv("STORAGE_BACKEND", StorageLocal)),
		GCSBucket:           GetEnv("GCS_BUCKET", ""),
		StatusBackend:       strings.ToLower(GetEnv("STATUS_BACKEND", StatusMemory)),
		StatusDBPath:        GetEnv("STATUS_DB_PATH", "./uploads/status.db"),
		FirestoreCollection: GetEnv("FIRESTORE_COLLECTION", "document_status"),
		FirestoreDatabase:   GetEnv("FIRESTORE_DATABASE", ""),
		ProjectID:           GetEnv("PROJECT_ID", ""),
		VertexAIRegion:      GetEnv("VERTEX_AI_REGION", "us-central1"),
		WorkflowID:          GetEnv("WORKFLOW_ID", ""),
		WorkflowLocation:    GetEnv("WORKFLOW_LOCATION", "us-central1"),
	}

	defaultModel := "llama-3.3-70b-versatile"
	if cfg.LLMProvider == ProviderGemini || cfg.LLMProvider == ProviderVertex {
		defaultModel = "gemini-1.5-pro"
	}
	cfg.LLMModel = GetEnv("MODEL_NAME", defaultModel)

	for _, origin := range strings.Split(GetEnv("CORS_ALLOW_ORIGINS", "*"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}
	if len(cfg.CORSOrigins) > 1 && slices.Contains(cfg.CORSOrigins, "*") {
		errs = append(errs, fmt.Errorf("CORS_ALLOW_ORIGINS must be \"*\" or a list of origins, got %q", strings.Join(cfg.CORSOrigins, ",")))
	}

	cfg.LLMAPIKey = GetEnv("GROQ_API_KEY", GetEnv("LLM_API_KEY", ""))
	if cfg.LLMProvider == ProviderGemini {
		cfg.LLMAPIKey = GetEnv("GEMINI_API_KEY", cfg.LLMAPIKey)
	}

	var err error
	if cfg.Temperature, err = strconv.ParseFloat(GetEnv("TEMPERATURE", "0.7"), 64); err != nil {
		errs = append(errs, fmt.Errorf("TEMPERATURE must be a number: %w", err))
	} else if cfg.Temperature < 0 || cfg.Temperature > 2 {
		errs = append(errs, fmt.Errorf("TEMPERATURE must be within [0.0, 2.0], got %v", cfg.Temperature))
	}
	if cfg.MaxTokens, err = strconv.Atoi(GetEnv("MAX_TOKENS", "2000")); err != nil {
		errs = append(errs, fmt.Errorf("MAX_TOKENS must be an integer: %w", err))
	} else if cfg.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("MAX_TOKENS must be greater than 0, got %d", cfg.MaxTokens))
	}
	if cfg.LLMTimeout, err = time.ParseDuration(GetEnv("LLM_TIMEOUT", "60s")); err != nil {
		errs = append(errs, fmt.Errorf("LLM_TIMEOUT must be a duration: %w", err))
	} else if cfg.LLMTimeout <= 0 {
		errs = append(errs, fmt.Errorf("LLM_TIMEOUT must be positive, got %s", cfg.LLMTimeout))
	}
	if cfg.MaxUploadBytes, err = strconv.ParseInt(GetEnv("MAX_UPLOAD_BYTES", "52428800"), 10, 64); err != nil {
		errs = append(errs, fmt.Errorf("MAX_UPLOAD_BYTES must be an integer: %w", err))
	} else if cfg.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("MAX_UPLOAD_BYTES must be greater than 0, got %d", cfg.MaxUploadBytes))
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(GetEnv("LOG_LEVEL", "info"))); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}

	switch cfg.LLMProvider {
	case ProviderGroq, ProviderGemini:
		if cfg.LLMAPIKey == "" {
			errs = append(errs, fmt.Errorf("GROQ_API_KEY (or LLM_API_KEY) environment variable must be set for provider %q", cfg.LLMProvider))
		}
	case ProviderVertex:
		if cfg.ProjectID == "" {
			errs = append(errs, fmt.Errorf("PROJECT_ID environment variable must be set for provider %q", ProviderVertex))
		}
	default:
		errs = append(errs, fmt.Errorf("LLM_PROVIDER must be one of groq, gemini, vertex, got %q", cfg.LLMProvider))
	}

	switch cfg.StorageBackend {
	case StorageLocal:
	case StorageGCS:
		if cfg.GCSBucket == "" {
			errs = append(errs, fmt.Errorf("GCS_BUCKET must be set when STORAGE_BACKEND=gcs"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORAGE_BACKEND must be local or gcs, got %q", cfg.StorageBackend))
	}

	switch cfg.StatusBackend {
	case StatusMemory, StatusSQLite:
	case StatusFirestore:
		if cfg.ProjectID == "" {
			errs = append(errs, fmt.Errorf("PROJECT_ID must be set when STATUS_BACKEND=firestore"))
		}
	default:
		errs = append(errs, fmt.Errorf("STATUS_BACKEND must be memory, sqlite or firestore, got %q", cfg.StatusBackend))
	}

	if cfg.WorkflowID != "" && cfg.ProjectID == "" {
		errs = append(errs, fmt.Errorf("PROJECT_ID must be set when WORKFLOW_ID is configured"))
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return cfg, nil
}
