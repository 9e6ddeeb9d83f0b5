package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"cloud.google.com/go/storage"
	"github.com/Lllllllleong/financialdocumentflow/internal/gcp"
	"google.golang.org/api/iterator"
)

// GCSStore keeps objects in a Cloud Storage bucket.
type GCSStore struct {
	bucket     *storage.BucketHandle
	bucketName string
}

// NewGCSStore returns a store over bucketName.
func NewGCSStore(client *storage.Client, bucketName string) (*GCSStore, error) {
	if bucketName == "" {
		return nil, fmt.Errorf("bucket name must be provided")
	}
	return &GCSStore{bucket: client.Bucket(bucketName), bucketName: bucketName}, nil
}

func (s *GCSStore) Create(ctx context.Context, name string, r io.Reader) (int64, error) {
	n, err := gcp.WriteIfAbsent(ctx, s.bucket, name, r)
	if errors.Is(err, gcp.ErrObjectExists) {
		return 0, fmt.Errorf("%w: %s", ErrExists, name)
	}
	return n, err
}

func (s *GCSStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	rc, err := s.bucket.Object(name).NewReader(ctx)
	if err != nil {
		return nil, s.mapErr("open", name, err)
	}
	return rc, nil
}

func (s *GCSStore) Stat(ctx context.Context, name string) (ObjectInfo, error) {
	attrs, err := s.bucket.Object(name).Attrs(ctx)
	if err != nil {
		return ObjectInfo{}, s.mapErr("stat", name, err)
	}
	return ObjectInfo{Name: attrs.Name, Size: attrs.Size, ModTime: attrs.Updated}, nil
}

// List returns the objects at the top level of the bucket.
func (s *GCSStore) List(ctx context.Context) ([]ObjectInfo, error) {
	it := s.bucket.Objects(ctx, &storage.Query{Delimiter: "/"})
	var objects []ObjectInfo
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list gs://%s: %w", s.bucketName, err)
		}
		if attrs.Prefix != "" {
			continue // synthetic directory entry
		}
		objects = append(objects, ObjectInfo{Name: attrs.Name, Size: attrs.Size, ModTime: attrs.Updated})
	}
	return objects, nil
}

func (s *GCSStore) Delete(ctx context.Context, name string) error {
	if err := s.bucket.Object(name).Delete(ctx); err != nil {
		return s.mapErr("delete", name, err)
	}
	return nil
}

func (s *GCSStore) Location(name string) string {
	return fmt.Sprintf("gs://%s/%s", s.bucketName, name)
}

func (s *GCSStore) mapErr(op, name string, err error) error {
	if errors.Is(err, storage.ErrObjectNotExist) {
		return &fs.PathError{Op: op, Path: s.Location(name), Err: fs.ErrNotExist}
	}
	return fmt.Errorf("failed to %s gs://%s/%s: %w", op, s.bucketName, name, err)
}
