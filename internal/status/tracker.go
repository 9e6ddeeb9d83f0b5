package status

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/Lllllllleong/financialdocumentflow/internal/apperr"
	"github.com/Lllllllleong/financialdocumentflow/internal/models"
)

var transitions = map[models.ProcessingStatus][]models.ProcessingStatus{
	models.StatusPending:    {models.StatusProcessing},
	models.StatusProcessing: {models.StatusEmbedding, models.StatusIndexing, models.StatusCompleted, models.StatusFailed},
	models.StatusEmbedding:  {models.StatusIndexing, models.StatusFailed},
	models.StatusIndexing:   {models.StatusCompleted, models.StatusFailed},
	models.StatusCompleted:  {models.StatusProcessing},
	models.StatusFailed:     {models.StatusProcessing},
}

// CanTransition reports whether a record may move from one state to
// another. Staying in the same state is always allowed.
func CanTransition(from, to models.ProcessingStatus) bool {
	if from == to {
		return from.Valid()
	}
	return slices.Contains(transitions[from], to)
}

// Tracker enforces the lifecycle rules on top of a Store.
type Tracker struct {
	store Store
	now   func() time.Time
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithTrackerClock sets the clock used for upload and processing times.
func WithTrackerClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) { t.now = now }
}

func NewTracker(store Store, opts ...TrackerOption) *Tracker {
	t := &Tracker{store: store, now: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Now returns the tracker's current time.
func (t *Tracker) Now() time.Time { return t.now() }

// Register records a new document in the pending state.
func (t *Tracker) Register(ctx context.Context, docID, filename string) (*models.DocumentStatus, error) {
	if docID == "" || filename == "" {
		return nil, apperr.InvalidInput("doc_id y filename son obligatorios")
	}
	st := &models.DocumentStatus{
		DocID:      docID,
		Filename:   filename,
		Status:     models.StatusPending,
		UploadedAt: t.now(),
	}
	if err := t.store.Insert(ctx, st); err != nil {
		return nil, t.mapErr(err, docID)
	}
	slog.Debug("Status registered.", "docId", docID, "filename", filename)
	return st, nil
}

func (t *Tracker) Get(ctx context.Context, docID string) (*models.DocumentStatus, error) {
	st, err := t.store.Get(ctx, docID)
	if err != nil {
		return nil, t.mapErr(err, docID)
	}
	return st, nil
}

// GetByFilename returns the most recent record for a stored filename.
func (t *Tracker) GetByFilename(ctx context.Context, filename string) (*models.DocumentStatus, error) {
	st, err := t.store.LatestByFilename(ctx, filename)
	if err != nil {
		return nil, t.mapErr(err, filename)
	}
	return st, nil
}

// Transition moves docID to the target state and applies upd. Entering
// processing clears any previous error message.
func (t *Tracker) Transition(ctx context.Context, docID string, to models.ProcessingStatus, upd models.StatusUpdate) (*models.DocumentStatus, error) {
	if !to.Valid() {
		return nil, apperr.InvalidInput("Estado desconocido: %s", to)
	}
	st, err := t.store.Update(ctx, docID, func(st *models.DocumentStatus) error {
		if !CanTransition(st.Status, to) {
			return apperr.InvalidInput("Transición de estado no permitida: %s → %s", st.Status, to)
		}
		if to == models.StatusProcessing && st.Status != models.StatusProcessing {
			st.ErrorMessage = nil
		}
		st.Status = to
		upd.Apply(st)
		return nil
	})
	if err != nil {
		return nil, t.mapErr(err, docID)
	}
	slog.Info("Status updated.", "docId", docID, "status", to)
	return st, nil
}

func (t *Tracker) mapErr(err error, key string) error {
	var appErr *apperr.Error
	switch {
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, ErrNotFound):
		return apperr.NotFound("Estado no encontrado: %s", key)
	case errors.Is(err, ErrDuplicate):
		return apperr.InvalidInput("El documento ya está registrado: %s", key)
	default:
		return apperr.Storage("Error al acceder al estado del documento", fmt.Errorf("%s: %w", key, err))
	}
}
