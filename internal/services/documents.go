package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Lllllllleong/financialdocumentflow/internal/apperr"
	"github.com/Lllllllleong/financialdocumentflow/internal/models"
	"github.com/Lllllllleong/financialdocumentflow/internal/status"
	"github.com/Lllllllleong/financialdocumentflow/internal/storage"
	"github.com/google/uuid"
)

// fileTypes is the upload allow-list, keyed by lower-case extension.
var fileTypes = map[string]string{
	".pdf":  "PDF",
	".xlsx": "Excel",
	".xls":  "Excel",
	".docx": "Word",
	".doc":  "Word",
	".csv":  "CSV",
}

const maxNameAttempts = 5

// AllowedExtensions returns the accepted upload extensions in sorted order.
func AllowedExtensions() []string {
	exts := make([]string, 0, len(fileTypes))
	for ext := range fileTypes {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// FileType returns the type label of an extension such as ".PDF".
func FileType(ext string) (string, bool) {
	label, ok := fileTypes[strings.ToLower(ext)]
	return label, ok
}

// Handoff is notified of every stored PDF.
type Handoff interface {
	Trigger(ctx context.Context, doc *models.StoredDocument) error
}

// DocumentService stores uploads and lists the stored documents.
type DocumentService struct {
	store    storage.BlobStore
	tracker  *status.Tracker
	handoff  Handoff
	maxBytes int64
	now      func() time.Time
	newID    func() string
}

type DocumentOption func(*DocumentService)

// WithTracker registers a pending status record for each upload.
func WithTracker(t *status.Tracker) DocumentOption {
	return func(s *DocumentService) { s.tracker = t }
}

// WithHandoff sets the trigger called after a PDF is stored.
func WithHandoff(h Handoff) DocumentOption {
	return func(s *DocumentService) { s.handoff = h }
}

// WithMaxUploadBytes caps the size of a single upload.
func WithMaxUploadBytes(n int64) DocumentOption {
	return func(s *DocumentService) { s.maxBytes = n }
}

// WithDocumentClock sets the clock used for stored names and timestamps.
func WithDocumentClock(now func() time.Time) DocumentOption {
	return func(s *DocumentService) { s.now = now }
}

func NewDocumentService(store storage.BlobStore, opts ...DocumentOption) *DocumentService {
	s := &DocumentService{
		store:    store,
		maxBytes: 50 << 20,
		now:      time.Now,
		newID:    func() string { return strings.ReplaceAll(uuid.NewString(), "-", "")[:8] },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upload stores the bytes read from r under a unique name derived from
// originalFilename. The original bytes are written verbatim.
func (s *DocumentService) Upload(ctx context.Context, originalFilename string, r io.Reader) (*models.StoredDocument, error) {
	base := path.Base(strings.ReplaceAll(originalFilename, `\`, "/"))
	if base == "" || base == "." || base == "/" {
		return nil, apperr.InvalidInput("Nombre de archivo no válido: %q", originalFilename)
	}
	rawExt := filepath.Ext(base)
	fileType, ok := FileType(rawExt)
	if !ok {
		return nil, apperr.UnsupportedFormat("Formato no soportado. Extensiones permitidas: %s", strings.Join(AllowedExtensions(), ", "))
	}
	stem := strings.TrimSuffix(base, rawExt)
	logCtx := slog.With("filename", base)

	now := s.now()
	timestamp := now.Format("20060102_150405")
	start, seekable := s.startOffset(r)

	var (
		stored string
		size   int64
		err    error
	)
	for attempt := 1; attempt <= maxNameAttempts; attempt++ {
		stored = fmt.Sprintf("%s_%s_%06d%s%s", stem, timestamp, now.Nanosecond()/1000, s.newID(), rawExt)
		size, err = s.store.Create(ctx, stored, io.LimitReader(r, s.maxBytes+1))
		if !errors.Is(err, storage.ErrExists) {
			break
		}
		logCtx.Warn("Stored name already taken, drawing a new one.", "storedFilename", stored, "attempt", attempt)
		if !seekable {
			break
		}
		if _, serr := r.(io.Seeker).Seek(start, io.SeekStart); serr != nil {
			err = serr
			break
		}
	}
	if err != nil {
		logCtx.Error("Failed to store upload", "error", err)
		return nil, apperr.Storage("Error al guardar el archivo", err)
	}
	if size > s.maxBytes {
		if derr := s.store.Delete(ctx, stored); derr != nil {
			logCtx.Warn("Failed to remove oversized upload.", "storedFilename", stored, "error", derr)
		}
		return nil, apperr.InvalidInput("El archivo excede el tamaño máximo permitido (%d bytes)", s.maxBytes)
	}

	doc := &models.StoredDocument{
		DocID:            fmt.Sprintf("%s_%s", strings.TrimSuffix(stored, rawExt), now.Format("20060102150405")),
		OriginalFilename: base,
		StoredFilename:   stored,
		FileType:         fileType,
		Extension:        strings.ToLower(rawExt),
		SizeBytes:        size,
		Path:             s.store.Location(stored),
		Timestamp:        timestamp,
		UploadedAt:       now,
	}
	logCtx.Info("Document stored.", "storedFilename", stored, "sizeBytes", size, "docId", doc.DocID)

	if s.tracker != nil {
		if _, err := s.tracker.Register(ctx, doc.DocID, stored); err != nil {
			logCtx.Warn("Failed to register document status.", "docId", doc.DocID, "error", err)
		}
	}
	if s.handoff != nil && doc.Extension == ".pdf" {
		if err := s.handoff.Trigger(ctx, doc); err != nil {
			logCtx.Warn("Failed to hand off document.", "docId", doc.DocID, "error", err)
		}
	}
	return doc, nil
}

func (s *DocumentService) startOffset(r io.Reader) (int64, bool) {
	seeker, ok := r.(io.Seeker)
	if !ok {
		return 0, false
	}
	off, err := seeker.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, false
	}
	return off, true
}

// List returns the stored documents with an allowed extension, most
// recently modified first.
func (s *DocumentService) List(ctx context.Context) (*models.DocumentListing, error) {
	objects, err := s.store.List(ctx)
	if err != nil {
		return nil, apperr.Storage("Error al listar los documentos", err)
	}

	listing := &models.DocumentListing{
		Documents: make([]models.DocumentEntry, 0, len(objects)),
		ByType:    make(map[string]int),
	}
	for _, obj := range objects {
		ext := filepath.Ext(obj.Name)
		label, ok := FileType(ext)
		if !ok {
			continue
		}
		listing.Documents = append(listing.Documents, models.DocumentEntry{
			Name:       obj.Name,
			FileType:   label,
			Extension:  strings.ToLower(ext),
			SizeBytes:  obj.Size,
			UploadedAt: obj.ModTime,
		})
		listing.ByType[label]++
	}
	sort.SliceStable(listing.Documents, func(i, j int) bool {
		a, b := listing.Documents[i], listing.Documents[j]
		if !a.UploadedAt.Equal(b.UploadedAt) {
			return a.UploadedAt.After(b.UploadedAt)
		}
		return a.Name < b.Name
	})
	listing.Total = len(listing.Documents)
	return listing, nil
}
