package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

// ErrObjectExists is returned by WriteIfAbsent when the object is already present.
var ErrObjectExists = errors.New("gcs object already exists")

// NewStorageClient creates a Cloud Storage client using application default credentials.
func NewStorageClient(ctx context.Context) (*storage.Client, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Storage client: %w", err)
	}
	return client, nil
}

// WriteIfAbsent streams r to a GCS object only if it doesn't already exist.
// A precondition failure is reported as ErrObjectExists.
func WriteIfAbsent(ctx context.Context, bucket *storage.BucketHandle, objectName string, r io.Reader) (int64, error) {
	writer := bucket.Object(objectName).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)

	n, err := io.Copy(writer, r)
	if err != nil {
		_ = writer.Close()
		if IsPreconditionFailed(err) {
			return 0, ErrObjectExists
		}
		slog.Error("Failed to copy content to GCS object.", "gcsObject", objectName, "error", err)
		return 0, fmt.Errorf("failed to write to GCS: %w", err)
	}

	if err := writer.Close(); err != nil {
		if IsPreconditionFailed(err) {
			return 0, ErrObjectExists
		}
		slog.Error("Failed to close GCS writer.", "gcsObject", objectName, "error", err)
		return 0, fmt.Errorf("failed to finalize GCS write: %w", err)
	}
	return n, nil
}

// IsPreconditionFailed reports whether err is an HTTP 412 from the GCS API.
func IsPreconditionFailed(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed
}
