package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/ipo-scorecard/internal/contracts"
)

// ErrDocumentNotFound is returned by Get for unknown file ids
var ErrDocumentNotFound = errors.New("document not found")

// DocumentRegistry records analyzed uploads in PostgreSQL
type DocumentRegistry struct {
	db *pgxpool.Pool
}

var _ contracts.DocumentRepository = (*DocumentRegistry)(nil)

// NewDocumentRegistry creates a new registry on pool
func NewDocumentRegistry(db *pgxpool.Pool) *DocumentRegistry {
	return &DocumentRegistry{db: db}
}

// EnsureSchema creates the registry table if it does not exist
func (r *DocumentRegistry) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE SCHEMA IF NOT EXISTS scorecard;

		CREATE TABLE IF NOT EXISTS scorecard.documents (
			file_id     CHAR(64) PRIMARY KEY,
			filename    TEXT NOT NULL,
			slug        TEXT NOT NULL,
			size_bytes  BIGINT NOT NULL,
			first_seen  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			last_seen   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS documents_last_seen_idx ON scorecard.documents (last_seen DESC);
	`

	if _, err := r.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("ensure document schema: %w", err)
	}
	return nil
}

// Record upserts doc and fills in FirstSeen/LastSeen from the database
func (r *DocumentRegistry) Record(ctx context.Context, doc *contracts.Document) error {
	query := `
		INSERT INTO scorecard.documents (file_id, filename, slug, size_bytes)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (file_id) DO UPDATE SET
			filename = EXCLUDED.filename,
			slug = EXCLUDED.slug,
			last_seen = NOW()
		RETURNING first_seen, last_seen
	`

	err := r.db.QueryRow(ctx, query,
		doc.FileID,
		doc.Filename,
		doc.Slug,
		doc.SizeBytes,
	).Scan(&doc.FirstSeen, &doc.LastSeen)
	if err != nil {
		return fmt.Errorf("record document: %w", err)
	}
	return nil
}

// Get returns one document by file id
func (r *DocumentRegistry) Get(ctx context.Context, fileID string) (*contracts.Document, error) {
	query := `
		SELECT file_id, filename, slug, size_bytes, first_seen, last_seen
		FROM scorecard.documents
		WHERE file_id = $1
	`

	doc := &contracts.Document{}
	err := r.db.QueryRow(ctx, query, fileID).Scan(
		&doc.FileID,
		&doc.Filename,
		&doc.Slug,
		&doc.SizeBytes,
		&doc.FirstSeen,
		&doc.LastSeen,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query document: %w", err)
	}
	return doc, nil
}

// Recent returns the most recently seen documents
func (r *DocumentRegistry) Recent(ctx context.Context, limit int) ([]*contracts.Document, error) {
	query := `
		SELECT file_id, filename, slug, size_bytes, first_seen, last_seen
		FROM scorecard.documents
		ORDER BY last_seen DESC
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent documents: %w", err)
	}
	defer rows.Close()

	docs := make([]*contracts.Document, 0, limit)
	for rows.Next() {
		doc := &contracts.Document{}
		if err := rows.Scan(
			&doc.FileID,
			&doc.Filename,
			&doc.Slug,
			&doc.SizeBytes,
			&doc.FirstSeen,
			&doc.LastSeen,
		); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	return docs, nil
}
