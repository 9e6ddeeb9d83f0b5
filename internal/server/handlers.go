package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Lllllllleong/financialdocumentflow/internal/apperr"
	"github.com/Lllllllleong/financialdocumentflow/internal/models"
	"github.com/gin-gonic/gin"
)

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, models.RootResponse{
		Name:    s.info.AppName,
		Version: s.info.Version,
		Status:  "operativo",
		Docs:    "/docs",
	})
}

// handleDocs lists the registered routes.
func (s *Server) handleDocs(c *gin.Context) {
	routes := s.router.Routes()
	out := make([]gin.H, 0, len(routes))
	for _, r := range routes {
		out = append(out, gin.H{"method": r.Method, "path": r.Path})
	}
	c.JSON(http.StatusOK, gin.H{"name": s.info.AppName, "version": s.info.Version, "routes": out})
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:    "healthy",
		Timestamp: s.now().Format(time.RFC3339),
		Model:     s.analysis.Model(),
		Version:   s.info.Version,
	})
}

// handleUpload stores the multipart "file" field. With auto_summarize set,
// a stored PDF is summarized as well; a failed summary is reported next to
// the upload result and never undoes the upload.
func (s *Server) handleUpload(c *gin.Context) {
	autoSummarize := false
	if raw := c.Query("auto_summarize"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			handleError(c, apperr.InvalidInput("Valor inválido para auto_summarize: %q", raw))
			return
		}
		autoSummarize = v
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.info.MaxUploadBytes+multipartOverhead)
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			handleError(c, apperr.InvalidInput("El archivo supera el tamaño máximo de %d bytes", s.info.MaxUploadBytes))
			return
		}
		handleError(c, apperr.InvalidInput("Falta el archivo en el campo 'file'"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		handleError(c, apperr.Storage("Error al leer el archivo subido", err))
		return
	}
	defer f.Close()

	ctx := c.Request.Context()
	doc, err := s.docs.Upload(ctx, fh.Filename, f)
	if err != nil {
		handleError(c, err)
		return
	}

	resp := models.UploadResponse{Message: "Archivo subido exitosamente", StoredDocument: *doc}
	if autoSummarize && doc.Extension == ".pdf" {
		summary, err := s.analysis.Summarize(ctx, doc.StoredFilename)
		if err != nil {
			slog.Warn("Auto-summarize failed, returning upload result only.", "filename", doc.StoredFilename, "error", err)
			resp.SummaryError = apperr.Message(err)
		} else {
			resp.Summary = summary
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleList(c *gin.Context) {
	listing, err := s.docs.List(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

func (s *Server) handleStatus(c *gin.Context) {
	docID := c.Param("doc_id")
	if s.tracker == nil {
		handleError(c, apperr.NotFound("Estado no encontrado: %s", docID))
		return
	}
	st, err := s.tracker.Get(c.Request.Context(), docID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) handleSummarize(c *gin.Context) {
	var req models.SummarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, apperr.InvalidInput("Cuerpo de la petición inválido: %v", err))
		return
	}
	result, err := s.analysis.Summarize(c.Request.Context(), strings.TrimSpace(req.Filename))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleCompare(c *gin.Context) {
	var req models.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, apperr.InvalidInput("Cuerpo de la petición inválido: %v", err))
		return
	}
	result, err := s.analysis.Compare(c.Request.Context(), req.Filenames)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// handleError writes err as a {"detail": ...} body with its mapped status.
func handleError(c *gin.Context, err error) {
	code := apperr.HTTPStatus(err)
	logCtx := slog.With("method", c.Request.Method, "path", c.Request.URL.Path, "status", code)
	if code >= http.StatusInternalServerError {
		logCtx.Error("Request failed", "error", err)
	} else {
		logCtx.Warn("Request rejected.", "error", err)
	}
	c.JSON(code, models.ErrorResponse{Detail: apperr.Message(err)})
}
