package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// LocalStore keeps objects as files below a root directory.
type LocalStore struct {
	root string
}

// NewLocalStore returns a store rooted at dir, creating it if needed.
func NewLocalStore(dir string) (*LocalStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("local store directory must be provided")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return &LocalStore{root: dir}, nil
}

// path resolves name below the root. Names that would escape the root do
// not exist.
func (s *LocalStore) path(op, name string) (string, error) {
	if !filepath.IsLocal(name) {
		return "", &fs.PathError{Op: op, Path: name, Err: fs.ErrNotExist}
	}
	return filepath.Join(s.root, filepath.FromSlash(name)), nil
}

func (s *LocalStore) Create(ctx context.Context, name string, r io.Reader) (int64, error) {
	p, err := s.path("create", name)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return 0, fmt.Errorf("failed to create directory for %s: %w", name, err)
	}

	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return 0, fmt.Errorf("%w: %s", ErrExists, name)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", p, err)
	}

	n, err := io.Copy(f, contextReader{ctx: ctx, r: r})
	if err != nil {
		_ = f.Close()
		s.removePartial(p)
		return 0, fmt.Errorf("failed to write %s: %w", p, err)
	}
	if err := f.Close(); err != nil {
		s.removePartial(p)
		return 0, fmt.Errorf("failed to finalize %s: %w", p, err)
	}
	return n, nil
}

func (s *LocalStore) removePartial(p string) {
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Failed to remove partial file.", "path", p, "error", err)
	}
}

func (s *LocalStore) Open(_ context.Context, name string) (io.ReadCloser, error) {
	p, err := s.path("open", name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return f, nil
}

func (s *LocalStore) Stat(_ context.Context, name string) (ObjectInfo, error) {
	p, err := s.path("stat", name)
	if err != nil {
		return ObjectInfo{}, err
	}
	info, err := os.Stat(p)
	if err != nil {
		return ObjectInfo{}, err
	}
	if info.IsDir() {
		return ObjectInfo{}, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
	}
	return ObjectInfo{Name: name, Size: info.Size(), ModTime: info.ModTime()}, nil
}

// List returns the regular files directly under the root. The root is
// recreated if it was removed.
func (s *LocalStore) List(_ context.Context) ([]ObjectInfo, error) {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", s.root, err)
	}
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload directory %s: %w", s.root, err)
	}

	objects := make([]ObjectInfo, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if errors.Is(err, fs.ErrNotExist) {
			continue // removed since ReadDir
		}
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", entry.Name(), err)
		}
		objects = append(objects, ObjectInfo{Name: entry.Name(), Size: info.Size(), ModTime: info.ModTime()})
	}
	return objects, nil
}

func (s *LocalStore) Delete(_ context.Context, name string) error {
	p, err := s.path("remove", name)
	if err != nil {
		return err
	}
	return os.Remove(p)
}

func (s *LocalStore) Location(name string) string {
	return filepath.Join(s.root, filepath.FromSlash(name))
}

// contextReader stops a copy once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
