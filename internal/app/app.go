// Package app wires the configured backends into the services shared by
// the server, the cloud function and the CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Lllllllleong/financialdocumentflow/internal/config"
	"github.com/Lllllllleong/financialdocumentflow/internal/gcp"
	"github.com/Lllllllleong/financialdocumentflow/internal/llm"
	"github.com/Lllllllleong/financialdocumentflow/internal/pdftext"
	"github.com/Lllllllleong/financialdocumentflow/internal/server"
	"github.com/Lllllllleong/financialdocumentflow/internal/services"
	"github.com/Lllllllleong/financialdocumentflow/internal/status"
	"github.com/Lllllllleong/financialdocumentflow/internal/storage"
)

// App holds the long-lived clients and services of one process.
type App struct {
	Config    *config.Config
	Store     storage.BlobStore
	Tracker   *status.Tracker
	Chat      llm.ChatClient
	Extractor *pdftext.Extractor
	Documents *services.DocumentService
	Analysis  *services.AnalysisService

	closers []func() error
}

// New builds every component selected by cfg. On error, anything already
// opened is closed again.
func New(ctx context.Context, cfg *config.Config) (_ *App, err error) {
	a := &App{Config: cfg}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	if a.Store, err = a.openBlobStore(ctx); err != nil {
		return nil, err
	}
	statusStore, err := a.openStatusStore(ctx)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, statusStore.Close)
	a.Tracker = status.NewTracker(statusStore)

	if a.Chat, err = llm.New(ctx, cfg); err != nil {
		return nil, err
	}
	a.closers = append(a.closers, a.Chat.Close)

	docOpts := []services.DocumentOption{
		services.WithTracker(a.Tracker),
		services.WithMaxUploadBytes(cfg.MaxUploadBytes),
	}
	if cfg.WorkflowID != "" {
		execClient, err := gcp.NewExecutionsClient(ctx)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, execClient.Close)
		docOpts = append(docOpts, services.WithHandoff(
			services.NewWorkflowTrigger(execClient, cfg.ProjectID, cfg.WorkflowLocation, cfg.WorkflowID)))
	}

	a.Extractor = pdftext.NewExtractor(a.Store)
	a.Documents = services.NewDocumentService(a.Store, docOpts...)
	a.Analysis = services.NewAnalysisService(a.Store, a.Extractor, a.Chat, a.Tracker)
	return a, nil
}

func (a *App) openBlobStore(ctx context.Context) (storage.BlobStore, error) {
	switch a.Config.StorageBackend {
	case config.StorageGCS:
		client, err := gcp.NewStorageClient(ctx)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		return storage.NewGCSStore(client, a.Config.GCSBucket)
	default:
		return storage.NewLocalStore(a.Config.UploadDir)
	}
}

func (a *App) openStatusStore(ctx context.Context) (status.Store, error) {
	switch a.Config.StatusBackend {
	case config.StatusSQLite:
		return status.OpenSQLite(a.Config.StatusDBPath)
	case config.StatusFirestore:
		client, err := gcp.NewFirestoreClient(ctx, a.Config.ProjectID, a.Config.FirestoreDatabase)
		if err != nil {
			return nil, err
		}
		return status.NewFirestoreStore(client, a.Config.FirestoreCollection), nil
	default:
		return status.NewMemoryStore(), nil
	}
}

// Server returns an HTTP server over the app's services.
func (a *App) Server() *server.Server {
	return server.NewServer(a.Documents, a.Analysis, a.Tracker, server.Info{
		AppName:        a.Config.AppName,
		Version:        a.Config.AppVersion,
		MaxUploadBytes: a.Config.MaxUploadBytes,
		CORSOrigins:    a.Config.CORSOrigins,
	})
}

// LogBanner logs the startup configuration and the outcome of a model
// connectivity check. A failed check only warns.
func (a *App) LogBanner(ctx context.Context) {
	cfg := a.Config
	slog.Info(fmt.Sprintf("=== Iniciando %s ===", cfg.AppName),
		"version", cfg.AppVersion,
		"provider", cfg.LLMProvider,
		"model", a.Chat.Model(),
		"temperature", cfg.Temperature,
		"storage", cfg.StorageBackend,
		"statusBackend", cfg.StatusBackend)

	reply, err := llm.Ping(ctx, a.Chat)
	if err != nil {
		slog.Warn("Could not verify the LLM connection.", "error", err)
		return
	}
	slog.Info("LLM connection verified.", "reply", reply)
}

// Close releases every client in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
