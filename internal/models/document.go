package models

import "time"

// StoredDocument describes a file persisted by the document store.
// It is created on upload and never modified afterwards.
type StoredDocument struct {
	DocID            string    `json:"doc_id"`
	OriginalFilename string    `json:"original_filename"`
	StoredFilename   string    `json:"stored_filename"`
	FileType         string    `json:"file_type"`
	Extension        string    `json:"extension"`
	SizeBytes        int64     `json:"size_bytes"`
	Path             string    `json:"path"`
	Timestamp        string    `json:"timestamp"` // YYYYMMDD_HHMMSS
	UploadedAt       time.Time `json:"uploaded_at"`
}

// DocumentEntry is one row of a document listing.
type DocumentEntry struct {
	Name       string    `json:"name"`
	FileType   string    `json:"file_type"`
	Extension  string    `json:"extension"`
	SizeBytes  int64     `json:"size_bytes"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// DocumentListing is the result of listing the upload directory.
type DocumentListing struct {
	Documents []DocumentEntry `json:"documents"`
	Total     int             `json:"total"`
	ByType    map[string]int  `json:"by_type"`
}

// PageContent holds the cleaned text and formatted tables of a single page.
type PageContent struct {
	PageNumber int      `json:"page_number"`
	Text       string   `json:"text"`
	Tables     []string `json:"tables"`
	HasTables  bool     `json:"has_tables"`
}

// ExtractedDocument is the page-structured result of a PDF extraction.
// It is built per request and never persisted.
type ExtractedDocument struct {
	DocID      string        `json:"doc_id"`
	Filename   string        `json:"filename"`
	Company    *string       `json:"company"`
	Year       *int          `json:"year"`
	TotalPages int           `json:"total_pages"`
	Pages      []PageContent `json:"pages"`
}

// SummaryResult is the outcome of a summarization request.
type SummaryResult struct {
	Filename       string `json:"filename"`
	OriginalLength int    `json:"original_length"`
	Summary        string `json:"summary"`
	SummaryLength  int    `json:"summary_length"`
	ModelUsed      string `json:"model_used"`
}

// ComparisonResult is the outcome of comparing two reports.
type ComparisonResult struct {
	Filenames  []string `json:"filenames"`
	Comparison string   `json:"comparison"`
	ModelUsed  string   `json:"model_used"`
}
