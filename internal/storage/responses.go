package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/wonny/ipo-scorecard/internal/contracts"
	"github.com/wonny/ipo-scorecard/pkg/logger"
	"github.com/wonny/ipo-scorecard/pkg/redis"
)

// ResponseCache keeps structured extraction responses as JSON files,
// fronted by Redis when it is enabled
// ⭐ SSOT: 추출 응답 캐시는 여기서만
type ResponseCache struct {
	dir    string
	shared *redis.Cache
	logger *logger.Logger
}

var _ contracts.ResponseCache = (*ResponseCache)(nil)

// NewResponseCache creates dir if needed; shared may wrap a disabled client
func NewResponseCache(dir string, shared *redis.Cache, log *logger.Logger) (*ResponseCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create response cache dir: %w", err)
	}
	return &ResponseCache{dir: dir, shared: shared, logger: log.WithComponent("response_cache")}, nil
}

func (c *ResponseCache) path(fileID string) string {
	return filepath.Join(c.dir, fileID+".json")
}

// Get returns the cached envelope. Missing, corrupt or unreadable entries are a miss.
func (c *ResponseCache) Get(ctx context.Context, fileID string) (*contracts.Envelope, bool) {
	if !ValidFileID(fileID) {
		return nil, false
	}
	log := c.logger.WithContext(ctx).WithField("file_id", fileID)

	var env contracts.Envelope
	found, err := c.shared.Get(ctx, redis.ResponseKey(fileID), &env)
	if err != nil {
		log.WithError(err).Debug("Shared response cache read failed")
	}
	if found {
		return &env, true
	}

	data, err := os.ReadFile(c.path(fileID))
	if err != nil {
		if !os.IsNotExist(err) {
			log.WithError(err).Warn("Unreadable response cache entry")
		}
		return nil, false
	}

	env = contracts.Envelope{}
	if err := json.Unmarshal(data, &env); err != nil {
		log.WithError(err).Warn("Corrupt response cache entry")
		return nil, false
	}

	// 파일 캐시 적중 → 공유 캐시 채움
	if err := c.shared.Set(ctx, redis.ResponseKey(fileID), &env, redis.TTLResponse); err != nil {
		log.WithError(err).Debug("Shared response cache backfill failed")
	}
	return &env, true
}

// Set writes the envelope to disk, then to Redis. Only the disk write can fail the call.
func (c *ResponseCache) Set(ctx context.Context, fileID string, env *contracts.Envelope) error {
	if !ValidFileID(fileID) {
		return fmt.Errorf("invalid file id %q", fileID)
	}

	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}
	if err := writeAtomic(c.path(fileID), data); err != nil {
		return fmt.Errorf("failed to write response cache: %w", err)
	}

	if err := c.shared.Set(ctx, redis.ResponseKey(fileID), env, redis.TTLResponse); err != nil {
		c.logger.WithContext(ctx).WithError(err).WithField("file_id", fileID).Warn("Shared response cache write failed")
	}
	return nil
}

// Prune deletes cached responses older than olderThan (disk only; Redis entries expire by TTL)
func (c *ResponseCache) Prune(ctx context.Context, olderThan time.Duration) (int, error) {
	return pruneFiles(ctx, c.dir, ".json", time.Now().Add(-olderThan))
}
