// Package status tracks the processing lifecycle of uploaded documents.
package status

import (
	"context"
	"errors"

	"github.com/Lllllllleong/financialdocumentflow/internal/models"
)

var (
	// ErrNotFound is returned when no record matches.
	ErrNotFound = errors.New("status record not found")
	// ErrDuplicate is returned by Insert when the doc id is taken.
	ErrDuplicate = errors.New("status record already exists")
)

// Store persists DocumentStatus records.
type Store interface {
	Insert(ctx context.Context, st *models.DocumentStatus) error
	Get(ctx context.Context, docID string) (*models.DocumentStatus, error)
	// LatestByFilename returns the most recently uploaded record for filename.
	LatestByFilename(ctx context.Context, filename string) (*models.DocumentStatus, error)
	// Update atomically reads the record, applies fn and writes the result.
	// If fn returns an error nothing is written.
	Update(ctx context.Context, docID string, fn func(*models.DocumentStatus) error) (*models.DocumentStatus, error)
	Close() error
}
