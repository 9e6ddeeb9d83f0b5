// Package pdftext extracts cleaned, page-ordered text and tables from stored
// PDF reports.
package pdftext

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Lllllllleong/financialdocumentflow/internal/apperr"
	"github.com/Lllllllleong/financialdocumentflow/internal/models"
)

// Source is the blob store the extractor reads documents from. Open must
// return an error matching fs.ErrNotExist for missing names.
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// Extractor turns stored PDFs into ExtractedDocuments.
type Extractor struct {
	source Source
	open   Opener
	now    func() time.Time
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithOpener replaces the PDF backend.
func WithOpener(o Opener) Option {
	return func(e *Extractor) { e.open = o }
}

// WithClock sets the clock used for document ids.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) { e.now = now }
}

// NewExtractor creates an Extractor reading from source.
func NewExtractor(source Source, opts ...Option) *Extractor {
	e := &Extractor{source: source, open: OpenPDF, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Process extracts the page-structured content of filename. Either the full
// document is returned or an error; partial results are never exposed.
func (e *Extractor) Process(ctx context.Context, filename string) (*models.ExtractedDocument, error) {
	logCtx := slog.With("filename", filename)

	rc, err := e.source.Open(ctx, filename)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, apperr.NotFound("Archivo no encontrado: %s", filename)
	}
	if err != nil {
		return nil, apperr.Processing("Error al leer el archivo", err)
	}
	defer rc.Close()

	if strings.ToLower(filepath.Ext(filename)) != ".pdf" {
		return nil, apperr.InvalidInput("El archivo no es un PDF: %s", filename)
	}

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, apperr.Processing("Error al leer el PDF", err)
	}

	logCtx.Info("Processing PDF.", "bytes", len(data))
	meta := ParseFilenameMetadata(filename)

	src, err := e.open(data)
	if err != nil {
		logCtx.Error("Failed to open PDF", "error", err)
		return nil, apperr.Processing("Error al procesar el PDF", err)
	}

	totalPages := src.NumPage()
	pages := make([]models.PageContent, 0, totalPages)
	totalChars := 0
	for n := 1; n <= totalPages; n++ {
		if err := ctx.Err(); err != nil {
			return nil, apperr.Processing("Error al procesar el PDF", err)
		}
		page, err := src.Page(n)
		if err != nil {
			logCtx.Error("Failed to extract page", "page", n, "error", err)
			return nil, apperr.Processing("Error al procesar el PDF", err)
		}

		var clean string
		if page.Text != "" {
			clean = CleanText(page.Text)
		}
		tables := make([]string, 0, len(page.Tables))
		for _, t := range page.Tables {
			tables = append(tables, FormatTable(t))
		}
		if page.Text == "" && len(tables) == 0 {
			continue
		}

		pages = append(pages, models.PageContent{
			PageNumber: n,
			Text:       clean,
			Tables:     tables,
			HasTables:  len(tables) > 0,
		})
		chars := utf8.RuneCountInString(clean)
		totalChars += chars
		logCtx.Debug("Page extracted.", "page", n, "chars", chars, "tables", len(tables))
	}

	logCtx.Info("PDF processed.", "totalPages", totalPages, "pagesWithContent", len(pages), "totalChars", totalChars)

	base := filepath.Base(filename)
	return &models.ExtractedDocument{
		DocID:      fmt.Sprintf("%s_%s", strings.TrimSuffix(base, filepath.Ext(base)), e.now().Format("20060102150405")),
		Filename:   filename,
		Company:    meta.Company,
		Year:       meta.Year,
		TotalPages: totalPages,
		Pages:      pages,
	}, nil
}

// ExtractText returns the flat text rendering of filename.
func (e *Extractor) ExtractText(ctx context.Context, filename string) (string, error) {
	doc, err := e.Process(ctx, filename)
	if err != nil {
		return "", err
	}
	return Flatten(doc), nil
}

// Flatten renders an extracted document as one string: each page with
// content is introduced by a page marker, followed by its cleaned text and
// its tables labelled [TABLA n]. Page order is preserved.
func Flatten(doc *models.ExtractedDocument) string {
	sections := make([]string, 0, len(doc.Pages))
	for _, p := range doc.Pages {
		hasText := strings.TrimSpace(p.Text) != ""
		if !hasText && len(p.Tables) == 0 {
			continue
		}
		parts := []string{fmt.Sprintf("--- Página %d ---", p.PageNumber)}
		if hasText {
			parts = append(parts, p.Text)
		}
		for i, t := range p.Tables {
			parts = append(parts, fmt.Sprintf("[TABLA %d]\n%s", i+1, t))
		}
		sections = append(sections, strings.Join(parts, "\n"))
	}
	return strings.Join(sections, "\n\n")
}
