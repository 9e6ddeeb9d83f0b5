// Package server exposes the document and analysis services over HTTP.
package server

import (
	"net/http"
	"time"

	"github.com/Lllllllleong/financialdocumentflow/internal/services"
	"github.com/Lllllllleong/financialdocumentflow/internal/status"
	"github.com/gin-gonic/gin"
)

// multipartOverhead is allowed on top of the upload cap for form boundaries
// and headers.
const multipartOverhead = 1 << 20

// Info describes the running service. CORSOrigins lists the browser
// origins allowed to call the API; empty or "*" allows any origin.
type Info struct {
	AppName        string
	Version        string
	MaxUploadBytes int64
	CORSOrigins    []string
}

// Server holds the state for the REST API server.
type Server struct {
	docs     *services.DocumentService
	analysis *services.AnalysisService
	tracker  *status.Tracker
	info     Info
	router   *gin.Engine
	now      func() time.Time
}

// NewServer creates a new Server instance. tracker may be nil, in which
// case status lookups always report not found.
func NewServer(docs *services.DocumentService, analysis *services.AnalysisService, tracker *status.Tracker, info Info) *Server {
	if info.MaxUploadBytes <= 0 {
		info.MaxUploadBytes = 50 << 20
	}
	r := gin.New()
	r.Use(requestLogger(), recovery(), corsPolicy(info.CORSOrigins))
	s := &Server{
		docs:     docs,
		analysis: analysis,
		tracker:  tracker,
		info:     info,
		router:   r,
		now:      func() time.Time { return time.Now().UTC() },
	}
	s.setupRoutes()
	return s
}

// Handler returns the router for use in an http.Server or a function.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleRoot)
	s.router.GET("/docs", s.handleDocs)
	s.router.GET("/health", s.healthCheck)

	docs := s.router.Group("/documents")
	docs.POST("/upload", s.handleUpload)
	docs.GET("/", s.handleList)
	docs.GET("/status/:doc_id", s.handleStatus)

	analyze := s.router.Group("/analyze")
	analyze.POST("/summarize", s.handleSummarize)
	analyze.POST("/compare", s.handleCompare)

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not Found"})
	})
}
