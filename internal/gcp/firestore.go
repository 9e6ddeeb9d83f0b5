// Package gcp centralizes construction of the Google Cloud clients used by
// the storage, status and LLM backends.
package gcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"
)

// ErrNoProject is returned by the client constructors when no Google Cloud
// project is configured.
var ErrNoProject = errors.New("PROJECT_ID is required")

// NewFirestoreClient opens the Firestore database backing the status
// tracker. databaseID selects a named database; empty means "(default)".
func NewFirestoreClient(ctx context.Context, projectID, databaseID string) (*firestore.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("NewFirestoreClient: %w", ErrNoProject)
	}
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}
	logCtx := slog.With("projectID", projectID, "database", databaseID)

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		logCtx.Error("Failed to create Firestore client", "error", err)
		return nil, fmt.Errorf("firestore.NewClientWithDatabase: %w", err)
	}
	logCtx.Info("Firestore client created")
	return client, nil
}
