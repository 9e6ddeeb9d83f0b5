package status

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Lllllllleong/financialdocumentflow/internal/models"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS document_status (
	doc_id                  TEXT PRIMARY KEY,
	filename                TEXT NOT NULL,
	status                  TEXT NOT NULL,
	uploaded_at             INTEGER NOT NULL,
	processed_at            INTEGER,
	total_chunks            INTEGER,
	total_pages             INTEGER,
	company                 TEXT,
	year                    INTEGER,
	error_message           TEXT,
	embeddings_generated    INTEGER NOT NULL DEFAULT 0,
	indexed_in_vector_store INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_document_status_filename ON document_status (filename, uploaded_at);
`

const selectColumns = `doc_id, filename, status, uploaded_at, processed_at, total_chunks, total_pages,
	company, year, error_message, embeddings_generated, indexed_in_vector_store`

// SQLiteStore keeps records in a local SQLite database file.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens or creates the database at path and ensures the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string { return s.path }

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) Insert(ctx context.Context, st *models.DocumentStatus) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO document_status (`+selectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(doc_id) DO NOTHING
	`, statusArgs(st)...)
	if err != nil {
		return fmt.Errorf("failed to insert status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to insert status: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrDuplicate, st.DocID)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, docID string) (*models.DocumentStatus, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+selectColumns+" FROM document_status WHERE doc_id = ?", docID)
	st, err := scanStatus(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, docID)
	}
	return st, err
}

func (s *SQLiteStore) LatestByFilename(ctx context.Context, filename string) (*models.DocumentStatus, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+selectColumns+` FROM document_status
		WHERE filename = ?
		ORDER BY uploaded_at DESC, rowid DESC
		LIMIT 1
	`, filename)
	st, err := scanStatus(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, filename)
	}
	return st, err
}

func (s *SQLiteStore) Update(ctx context.Context, docID string, fn func(*models.DocumentStatus) error) (*models.DocumentStatus, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	st, err := scanStatus(tx.QueryRowContext(ctx, "SELECT "+selectColumns+" FROM document_status WHERE doc_id = ?", docID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, docID)
	}
	if err != nil {
		return nil, err
	}
	if err := fn(st); err != nil {
		return nil, err
	}

	args := statusArgs(st)
	_, err = tx.ExecContext(ctx, `
		UPDATE document_status SET
			filename = ?, status = ?, uploaded_at = ?, processed_at = ?, total_chunks = ?, total_pages = ?,
			company = ?, year = ?, error_message = ?, embeddings_generated = ?, indexed_in_vector_store = ?
		WHERE doc_id = ?
	`, append(args[1:], st.DocID)...)
	if err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit status update: %w", err)
	}
	return st, nil
}

func statusArgs(st *models.DocumentStatus) []any {
	var processedAt sql.NullInt64
	if st.ProcessedAt != nil {
		processedAt = sql.NullInt64{Int64: st.ProcessedAt.UnixNano(), Valid: true}
	}
	return []any{
		st.DocID,
		st.Filename,
		string(st.Status),
		st.UploadedAt.UnixNano(),
		processedAt,
		nullInt(st.TotalChunks),
		nullInt(st.TotalPages),
		nullString(st.Company),
		nullInt(st.Year),
		nullString(st.ErrorMessage),
		st.EmbeddingsGenerated,
		st.IndexedInVectorStore,
	}
}

func scanStatus(row *sql.Row) (*models.DocumentStatus, error) {
	var (
		st                               models.DocumentStatus
		status                           string
		uploadedAt                       int64
		processedAt, chunks, pages, year sql.NullInt64
		company, errMsg                  sql.NullString
	)
	err := row.Scan(&st.DocID, &st.Filename, &status, &uploadedAt, &processedAt, &chunks, &pages,
		&company, &year, &errMsg, &st.EmbeddingsGenerated, &st.IndexedInVectorStore)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read status: %w", err)
	}

	st.Status = models.ProcessingStatus(status)
	st.UploadedAt = time.Unix(0, uploadedAt).UTC()
	if processedAt.Valid {
		t := time.Unix(0, processedAt.Int64).UTC()
		st.ProcessedAt = &t
	}
	st.TotalChunks = intPtr(chunks)
	st.TotalPages = intPtr(pages)
	st.Year = intPtr(year)
	if company.Valid {
		st.Company = &company.String
	}
	if errMsg.Valid {
		st.ErrorMessage = &errMsg.String
	}
	return &st, nil
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
