// Package function registers the Cloud Functions entry points: the HTTP API
// and a storage trigger that summarizes every uploaded PDF.
package function

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/Lllllllleong/financialdocumentflow/internal/apperr"
	"github.com/Lllllllleong/financialdocumentflow/internal/app"
	"github.com/Lllllllleong/financialdocumentflow/internal/config"
	"github.com/Lllllllleong/financialdocumentflow/internal/models"
	"github.com/Lllllllleong/financialdocumentflow/internal/services"
	cloudevents "github.com/cloudevents/sdk-go/v2"
)

var (
	instance *app.App
	handler  http.Handler
	once     sync.Once
	initErr  error
)

func init() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.HTTP("FinancialAssistantAPI", financialAssistantAPI)
	functions.CloudEvent("SummarizeOnUpload", summarizeOnUpload)
}

func setup() error {
	once.Do(func() {
		cfg, err := config.Load()
		if err != nil {
			initErr = err
			return
		}
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))
		instance, initErr = app.New(context.Background(), cfg)
		if initErr == nil {
			handler = instance.Server().Handler()
		}
	})
	return initErr
}

func financialAssistantAPI(w http.ResponseWriter, r *http.Request) {
	if err := setup(); err != nil {
		slog.Error("Critical error during function initialization", "error", err)
		http.Error(w, `{"detail":"service unavailable"}`, http.StatusServiceUnavailable)
		return
	}
	handler.ServeHTTP(w, r)
}

func summarizeOnUpload(ctx context.Context, e cloudevents.Event) error {
	if err := setup(); err != nil {
		slog.Error("Critical error during function initialization", "error", err)
		return err
	}
	return HandleStorageEvent(ctx, instance.Analysis, instance.Config.GCSBucket, e)
}

// Summarizer is the part of the analysis service the storage trigger uses.
type Summarizer interface {
	SummarizeAndStore(ctx context.Context, filename string) (*models.SummaryResult, string, error)
}

// HandleStorageEvent summarizes the PDF named by a storage finalize event.
// Objects outside bucket (when set), non-PDF objects and generated
// summaries are skipped. Failures that a retry cannot fix are logged and
// acknowledged.
func HandleStorageEvent(ctx context.Context, s Summarizer, bucket string, e cloudevents.Event) error {
	var gcsEvent models.GCSEvent
	if err := json.Unmarshal(e.Data(), &gcsEvent); err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "data", string(e.Data()))
		return fmt.Errorf("json.Unmarshal: %w", err)
	}

	logCtx := slog.With("gcsBucket", gcsEvent.Bucket, "gcsObject", gcsEvent.Name)
	switch {
	case bucket != "" && gcsEvent.Bucket != bucket:
		logCtx.Warn("SKIPPING: Object is not in the configured bucket.", "expected", bucket)
		return nil
	case strings.HasPrefix(gcsEvent.Name, services.SummaryPrefix):
		logCtx.Info("SKIPPING: Object is a generated summary.")
		return nil
	case strings.ToLower(path.Ext(gcsEvent.Name)) != ".pdf":
		logCtx.Info("SKIPPING: Object is not a PDF.")
		return nil
	}

	logCtx.Info("Processing new GCS object.")
	result, location, err := s.SummarizeAndStore(ctx, gcsEvent.Name)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) || errors.Is(err, apperr.ErrInvalidInput) {
			logCtx.Warn("Document cannot be summarized, acknowledging event.", "error", err)
			return nil
		}
		logCtx.Error("Failed to summarize document", "error", err)
		return err
	}
	logCtx.Info("Summary stored.", "summary", location, "summaryChars", result.SummaryLength)
	return nil
}
