package status

import (
	"context"
	"fmt"
	"sync"

	"github.com/Lllllllleong/financialdocumentflow/internal/models"
)

// MemoryStore keeps records in process memory. Records are lost on restart.
type MemoryStore struct {
	mu         sync.RWMutex
	records    map[string]*models.DocumentStatus
	byFilename map[string][]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records:    make(map[string]*models.DocumentStatus),
		byFilename: make(map[string][]string),
	}
}

func (m *MemoryStore) Insert(_ context.Context, st *models.DocumentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[st.DocID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, st.DocID)
	}
	rec := *st
	m.records[st.DocID] = &rec
	m.byFilename[st.Filename] = append(m.byFilename[st.Filename], st.DocID)
	return nil
}

func (m *MemoryStore) Get(_ context.Context, docID string) (*models.DocumentStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[docID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, docID)
	}
	out := *rec
	return &out, nil
}

func (m *MemoryStore) LatestByFilename(_ context.Context, filename string) (*models.DocumentStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *models.DocumentStatus
	for _, id := range m.byFilename[filename] {
		rec := m.records[id]
		if latest == nil || !rec.UploadedAt.Before(latest.UploadedAt) {
			latest = rec
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, filename)
	}
	out := *latest
	return &out, nil
}

func (m *MemoryStore) Update(_ context.Context, docID string, fn func(*models.DocumentStatus) error) (*models.DocumentStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[docID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, docID)
	}
	next := *rec
	if err := fn(&next); err != nil {
		return nil, err
	}
	m.records[docID] = &next
	out := next
	return &out, nil
}

func (m *MemoryStore) Close() error { return nil }
