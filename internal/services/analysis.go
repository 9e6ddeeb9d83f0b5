package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/Lllllllleong/financialdocumentflow/internal/apperr"
	"github.com/Lllllllleong/financialdocumentflow/internal/llm"
	"github.com/Lllllllleong/financialdocumentflow/internal/models"
	"github.com/Lllllllleong/financialdocumentflow/internal/pdftext"
	"github.com/Lllllllleong/financialdocumentflow/internal/status"
	"github.com/Lllllllleong/financialdocumentflow/internal/storage"
	"golang.org/x/sync/errgroup"
)

// Sampling parameters for analysis calls, tighter than the service defaults.
const (
	analysisTemperature = 0.3
	analysisMaxTokens   = 1500
)

// SummaryPrefix is where generated summaries are saved in the blob store.
const SummaryPrefix = "summaries/"

// Extractor produces the page-structured content of a stored PDF.
type Extractor interface {
	Process(ctx context.Context, filename string) (*models.ExtractedDocument, error)
}

// AnalysisService summarizes and compares stored PDF reports.
type AnalysisService struct {
	store     storage.BlobStore
	extractor Extractor
	chat      llm.ChatClient
	tracker   *status.Tracker
}

func NewAnalysisService(store storage.BlobStore, extractor Extractor, chat llm.ChatClient, tracker *status.Tracker) *AnalysisService {
	return &AnalysisService{store: store, extractor: extractor, chat: chat, tracker: tracker}
}

// Model returns the identifier of the model used for analysis.
func (s *AnalysisService) Model() string { return s.chat.Model() }

// Summarize extracts filename and asks the model for a structured summary.
// The document's status record follows the run.
func (s *AnalysisService) Summarize(ctx context.Context, filename string) (*models.SummaryResult, error) {
	logCtx := slog.With("filename", filename)

	if _, err := s.store.Stat(ctx, filename); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperr.NotFound("Archivo no encontrado: %s", filename)
		}
		return nil, apperr.Storage("Error al leer el archivo", err)
	}

	run := s.startRun(ctx, filename)
	doc, err := s.extractor.Process(ctx, filename)
	if err != nil {
		run.fail(ctx, err)
		return nil, err
	}
	text := pdftext.Flatten(doc)
	if strings.TrimSpace(text) == "" {
		err := apperr.EmptyContent("El PDF no contiene texto extraíble")
		run.fail(ctx, err)
		return nil, err
	}

	logCtx.Info("Requesting summary.", "chars", utf8.RuneCountInString(text), "model", s.chat.Model())
	summary, err := s.chat.Chat(ctx, llm.SummaryMessages(text),
		llm.WithTemperature(analysisTemperature), llm.WithMaxTokens(analysisMaxTokens))
	if err != nil {
		logCtx.Error("Summary generation failed", "error", err)
		perr := apperr.Processing("Error al generar el resumen", err)
		run.fail(ctx, perr)
		return nil, perr
	}

	run.complete(ctx, doc)
	logCtx.Info("Summary generated.", "summaryChars", utf8.RuneCountInString(summary))
	return &models.SummaryResult{
		Filename:       filename,
		OriginalLength: utf8.RuneCountInString(text),
		Summary:        summary,
		SummaryLength:  utf8.RuneCountInString(summary),
		ModelUsed:      s.chat.Model(),
	}, nil
}

// SummarizeAndStore summarizes filename and saves the summary as Markdown
// under SummaryPrefix. An existing summary is left untouched.
func (s *AnalysisService) SummarizeAndStore(ctx context.Context, filename string) (*models.SummaryResult, string, error) {
	result, err := s.Summarize(ctx, filename)
	if err != nil {
		return nil, "", err
	}
	base := filepath.Base(filename)
	name := SummaryPrefix + strings.TrimSuffix(base, filepath.Ext(base)) + ".md"
	_, err = s.store.Create(ctx, name, strings.NewReader(result.Summary))
	if errors.Is(err, storage.ErrExists) {
		slog.Info("SKIPPING: Summary already exists.", "summary", name)
		return result, s.store.Location(name), nil
	}
	if err != nil {
		return nil, "", apperr.Storage("Error al guardar el resumen", err)
	}
	return result, s.store.Location(name), nil
}

// Compare extracts two reports concurrently and asks the model to contrast them.
func (s *AnalysisService) Compare(ctx context.Context, filenames []string) (*models.ComparisonResult, error) {
	if len(filenames) != 2 {
		return nil, apperr.InvalidInput("Se requieren exactamente dos archivos para comparar, se recibieron %d", len(filenames))
	}

	texts := make([]string, len(filenames))
	eg, gctx := errgroup.WithContext(ctx)
	for i, name := range filenames {
		eg.Go(func() error {
			doc, err := s.extractor.Process(gctx, name)
			if err != nil {
				return err
			}
			texts[i] = pdftext.Flatten(doc)
			if strings.TrimSpace(texts[i]) == "" {
				return apperr.EmptyContent("El PDF no contiene texto extraíble: %s", name)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	comparison, err := s.chat.Chat(ctx, llm.ComparisonMessages(texts[0], texts[1]),
		llm.WithTemperature(analysisTemperature), llm.WithMaxTokens(analysisMaxTokens))
	if err != nil {
		slog.Error("Comparison failed", "filenames", filenames, "error", err)
		return nil, apperr.Processing("Error al comparar los documentos", err)
	}
	return &models.ComparisonResult{
		Filenames:  append([]string(nil), filenames...),
		Comparison: comparison,
		ModelUsed:  s.chat.Model(),
	}, nil
}

// run drives a document's status through one summarization. Status
// failures are logged and never fail the summarization itself.
type run struct {
	tracker *status.Tracker
	docID   string
	logCtx  *slog.Logger
}

func (s *AnalysisService) startRun(ctx context.Context, filename string) *run {
	r := &run{tracker: s.tracker, logCtx: slog.With("filename", filename)}
	if s.tracker == nil {
		return r
	}

	st, err := s.tracker.GetByFilename(ctx, filename)
	if errors.Is(err, apperr.ErrNotFound) {
		base := filepath.Base(filename)
		docID := fmt.Sprintf("%s_%s", strings.TrimSuffix(base, filepath.Ext(base)), s.tracker.Now().Format("20060102150405"))
		st, err = s.tracker.Register(ctx, docID, filename)
	}
	if err != nil {
		r.logCtx.Warn("Status tracking unavailable.", "error", err)
		return r
	}
	r.docID = st.DocID
	r.transition(ctx, models.StatusProcessing, models.StatusUpdate{})
	return r
}

func (r *run) transition(ctx context.Context, to models.ProcessingStatus, upd models.StatusUpdate) {
	if r.tracker == nil || r.docID == "" {
		return
	}
	if _, err := r.tracker.Transition(ctx, r.docID, to, upd); err != nil {
		r.logCtx.Warn("Failed to update document status.", "docId", r.docID, "status", to, "error", err)
	}
}

func (r *run) fail(ctx context.Context, cause error) {
	msg := apperr.Message(cause)
	r.transition(ctx, models.StatusFailed, models.StatusUpdate{ErrorMessage: &msg})
}

func (r *run) complete(ctx context.Context, doc *models.ExtractedDocument) {
	if r.tracker == nil {
		return
	}
	now := r.tracker.Now()
	pages := doc.TotalPages
	r.transition(ctx, models.StatusCompleted, models.StatusUpdate{
		ProcessedAt: &now,
		TotalPages:  &pages,
		Company:     doc.Company,
		Year:        doc.Year,
	})
}
