package models

// These structs define the JSON payloads of the HTTP API.

// RootResponse is returned by GET /.
type RootResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Status  string `json:"status"`
	Docs    string `json:"docs"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Model     string `json:"model"`
	Version   string `json:"version"`
}

// UploadResponse is returned by POST /documents/upload. Summary fields are
// only present when auto_summarize was requested for a PDF.
type UploadResponse struct {
	Message string `json:"message"`
	StoredDocument
	Summary      *SummaryResult `json:"summary,omitempty"`
	SummaryError string         `json:"summary_error,omitempty"`
}

// SummarizeRequest is the input for POST /analyze/summarize.
type SummarizeRequest struct {
	Filename string `json:"filename" binding:"required"`
}

// CompareRequest is the input for POST /analyze/compare.
type CompareRequest struct {
	Filenames []string `json:"filenames" binding:"required"`
}

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// GCSEvent is the data payload of a Cloud Storage object event.
type GCSEvent struct {
	Bucket string `json:"bucket"`
	Name   string `json:"name"`
}
