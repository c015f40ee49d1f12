// Package docstore keeps document metadata (filename, size, index time) in
// PostgreSQL so the API can describe matched documents without re-reading
// the corpus directory. The store is optional: when Postgres is disabled the
// API returns bare document IDs.
package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/karthikrangan/irengine/internal/corpus"
	apperrors "github.com/karthikrangan/irengine/pkg/errors"
	"github.com/karthikrangan/irengine/pkg/postgres"
)

// Record is one document's stored metadata.
type Record struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	ByteSize  int       `json:"byte_size"`
	IndexedAt time.Time `json:"indexed_at"`
}

// Store wraps the documents table.
type Store struct {
	db     *postgres.Client
	logger *slog.Logger
}

// New creates a Store on an established Postgres client.
func New(db *postgres.Client) *Store {
	return &Store{
		db:     db,
		logger: slog.Default().With("component", "docstore"),
	}
}

// EnsureSchema creates the documents table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS documents (
			id         TEXT PRIMARY KEY,
			filename   TEXT NOT NULL,
			byte_size  BIGINT NOT NULL,
			indexed_at TIMESTAMPTZ NOT NULL
		)`
	if _, err := s.db.DB.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("creating documents table: %w", err)
	}
	return nil
}

// SaveCorpus upserts metadata for every corpus document in one transaction.
func (s *Store) SaveCorpus(ctx context.Context, docs []corpus.Document) error {
	now := time.Now().UTC()
	err := s.db.InTx(ctx, func(tx *sql.Tx) error {
		const upsert = `
			INSERT INTO documents (id, filename, byte_size, indexed_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE
			SET filename = EXCLUDED.filename,
			    byte_size = EXCLUDED.byte_size,
			    indexed_at = EXCLUDED.indexed_at`
		for _, doc := range docs {
			if _, err := tx.ExecContext(ctx, upsert, doc.ID, doc.Filename, doc.ByteSize, now); err != nil {
				return fmt.Errorf("upserting document %s: %w", doc.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("corpus metadata saved", "documents", len(docs))
	return nil
}

// Get returns one document's metadata, or ErrDocumentNotFound.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	const query = `
		SELECT id, filename, byte_size, indexed_at
		FROM documents WHERE id = $1`
	var rec Record
	err := s.db.DB.QueryRowContext(ctx, query, id).
		Scan(&rec.ID, &rec.Filename, &rec.ByteSize, &rec.IndexedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.Newf(apperrors.ErrDocumentNotFound, 404, "document %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying document %s: %w", id, err)
	}
	return &rec, nil
}

// Count returns the number of stored documents.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return count, nil
}
