package models

import "time"

// ProcessingStatus is the lifecycle state of an uploaded document.
type ProcessingStatus string

const (
	StatusPending    ProcessingStatus = "pending"
	StatusProcessing ProcessingStatus = "processing"
	StatusEmbedding  ProcessingStatus = "embedding"
	StatusIndexing   ProcessingStatus = "indexing"
	StatusCompleted  ProcessingStatus = "completed"
	StatusFailed     ProcessingStatus = "failed"
)

// Valid reports whether s is one of the declared states.
func (s ProcessingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusEmbedding, StatusIndexing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// DocumentStatus tracks the processing state of a document.
type DocumentStatus struct {
	DocID                string           `json:"doc_id" firestore:"docId"`
	Filename             string           `json:"filename" firestore:"filename"`
	Status               ProcessingStatus `json:"status" firestore:"status"`
	UploadedAt           time.Time        `json:"uploaded_at" firestore:"uploadedAt"`
	ProcessedAt          *time.Time       `json:"processed_at" firestore:"processedAt"`
	TotalChunks          *int             `json:"total_chunks" firestore:"totalChunks"`
	TotalPages           *int             `json:"total_pages" firestore:"totalPages"`
	Company              *string          `json:"company" firestore:"company"`
	Year                 *int             `json:"year" firestore:"year"`
	ErrorMessage         *string          `json:"error_message" firestore:"errorMessage"`
	EmbeddingsGenerated  bool             `json:"embeddings_generated" firestore:"embeddingsGenerated"`
	IndexedInVectorStore bool             `json:"indexed_in_vector_store" firestore:"indexedInVectorStore"`
}

// StatusUpdate is a partial update applied with a transition. Nil fields
// are left untouched.
type StatusUpdate struct {
	ProcessedAt          *time.Time
	TotalChunks          *int
	TotalPages           *int
	Company              *string
	Year                 *int
	ErrorMessage         *string
	EmbeddingsGenerated  *bool
	IndexedInVectorStore *bool
}

// Apply copies the set fields of u onto s.
func (u StatusUpdate) Apply(s *DocumentStatus) {
	if u.ProcessedAt != nil {
		s.ProcessedAt = u.ProcessedAt
	}
	if u.TotalChunks != nil {
		s.TotalChunks = u.TotalChunks
	}
	if u.TotalPages != nil {
		s.TotalPages = u.TotalPages
	}
	if u.Company != nil {
		s.Company = u.Company
	}
	if u.Year != nil {
		s.Year = u.Year
	}
	if u.ErrorMessage != nil {
		s.ErrorMessage = u.ErrorMessage
	}
	if u.EmbeddingsGenerated != nil {
		s.EmbeddingsGenerated = *u.EmbeddingsGenerated
	}
	if u.IndexedInVectorStore != nil {
		s.IndexedInVectorStore = *u.IndexedInVectorStore
	}
}
