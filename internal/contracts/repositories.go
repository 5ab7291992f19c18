package contracts

import (
	"context"
	"time"
)

// ⭐ SSOT: Repository 인터페이스 정의는 여기서만

// UploadStore keeps uploaded documents, addressed by content hash
type UploadStore interface {
	Save(ctx context.Context, content []byte) (*StoredFile, error)
	Path(fileID string) string
}

// StoredFile describes a saved upload
type StoredFile struct {
	ID      string // sha256 hex of the content
	Path    string
	Size    int64
	Created bool // false when the same content was already stored
}

// ResponseCache stores structured extraction responses by file id.
// Get reports found=false for missing or unreadable entries.
type ResponseCache interface {
	Get(ctx context.Context, fileID string) (*Envelope, bool)
	Set(ctx context.Context, fileID string, env *Envelope) error
}

// DocumentRepository records which documents were analyzed.
// Metrics and verdicts are never persisted.
type DocumentRepository interface {
	Record(ctx context.Context, doc *Document) error
	Get(ctx context.Context, fileID string) (*Document, error)
	Recent(ctx context.Context, limit int) ([]*Document, error)
}

// Document is one analyzed upload
type Document struct {
	FileID    string    `json:"file_id"`
	Filename  string    `json:"filename"`
	Slug      string    `json:"slug"`
	SizeBytes int64     `json:"size_bytes"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
}
