// Package storage provides the blob stores uploaded documents live in: a
// local directory for development and a Cloud Storage bucket for
// deployments.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrExists is returned by Create when the name is already taken.
var ErrExists = errors.New("object already exists")

// ObjectInfo describes one stored object.
type ObjectInfo struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// BlobStore is a flat namespace of immutable objects. Implementations
// report missing objects with errors matching fs.ErrNotExist.
type BlobStore interface {
	// Create writes r under name. It never overwrites: ErrExists is
	// returned if name is taken. A failed write leaves no object behind.
	Create(ctx context.Context, name string, r io.Reader) (int64, error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Stat(ctx context.Context, name string) (ObjectInfo, error)
	// List returns the top-level objects. Nested names are not included.
	List(ctx context.Context) ([]ObjectInfo, error)
	Delete(ctx context.Context, name string) error
	// Location is the human-readable path or URI of name.
	Location(name string) string
}
