// Package storage keeps uploaded documents, cached extraction responses and the
// optional document registry. Metrics and verdicts are never stored.
package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/wonny/ipo-scorecard/internal/contracts"
	"github.com/wonny/ipo-scorecard/pkg/logger"
)

var fileIDPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// ValidFileID reports whether id looks like a content hash produced by FileID
func ValidFileID(id string) bool {
	return fileIDPattern.MatchString(id)
}

// FileID is the sha256 hex digest of content
func FileID(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// UploadStore is a content-addressed directory of PDFs
// ⭐ SSOT: 업로드 파일 저장은 여기서만
type UploadStore struct {
	dir    string
	logger *logger.Logger
}

var _ contracts.UploadStore = (*UploadStore)(nil)

// NewUploadStore creates dir if needed
func NewUploadStore(dir string, log *logger.Logger) (*UploadStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &UploadStore{dir: dir, logger: log.WithComponent("uploads")}, nil
}

// Path returns where the file with id is (or would be) stored
func (s *UploadStore) Path(fileID string) string {
	return filepath.Join(s.dir, fileID+".pdf")
}

// Save stores content under its hash. Saving existing content only refreshes its mtime.
func (s *UploadStore) Save(ctx context.Context, content []byte) (*contracts.StoredFile, error) {
	id := FileID(content)
	path := s.Path(id)
	stored := &contracts.StoredFile{ID: id, Path: path, Size: int64(len(content))}

	if _, err := os.Stat(path); err == nil {
		now := time.Now()
		if err := os.Chtimes(path, now, now); err != nil {
			s.logger.WithError(err).WithField("file_id", id).Warn("Failed to refresh upload mtime")
		}
		return stored, nil
	}

	if err := writeAtomic(path, content); err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}
	stored.Created = true

	s.logger.WithContext(ctx).WithFields(map[string]interface{}{
		"file_id": id,
		"size":    stored.Size,
	}).Info("Stored upload")

	return stored, nil
}

// Prune deletes uploads not touched within olderThan
func (s *UploadStore) Prune(ctx context.Context, olderThan time.Duration) (int, error) {
	return pruneFiles(ctx, s.dir, ".pdf", time.Now().Add(-olderThan))
}

// writeAtomic writes via a temp file and rename so readers never see partial content
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// pruneFiles removes files with ext modified before cutoff; it returns how many were removed
func pruneFiles(ctx context.Context, dir, ext string, cutoff time.Time) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	removed := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ext) {
			continue
		}

		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("failed to remove %s: %w", entry.Name(), err)
		}
		removed++
	}
	return removed, nil
}
