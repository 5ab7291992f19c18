package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/ipo-scorecard/pkg/logger"
)

// Job names
const (
	UploadRetention        = "upload_retention"
	ResponseCacheRetention = "response_cache_retention"
)

// Pruner deletes stored files older than a cutoff age
type Pruner interface {
	Prune(ctx context.Context, olderThan time.Duration) (int, error)
}

// RetentionJob removes files that outlived the retention window
type RetentionJob struct {
	name      string
	schedule  string
	store     Pruner
	retention time.Duration
	logger    *logger.Logger
}

// NewUploadRetentionJob prunes uploaded PDFs
func NewUploadRetentionJob(store Pruner, schedule string, retention time.Duration, log *logger.Logger) *RetentionJob {
	return newRetentionJob(UploadRetention, store, schedule, retention, log)
}

// NewResponseCacheRetentionJob prunes cached extraction responses
func NewResponseCacheRetentionJob(store Pruner, schedule string, retention time.Duration, log *logger.Logger) *RetentionJob {
	return newRetentionJob(ResponseCacheRetention, store, schedule, retention, log)
}

func newRetentionJob(name string, store Pruner, schedule string, retention time.Duration, log *logger.Logger) *RetentionJob {
	return &RetentionJob{
		name:      name,
		schedule:  schedule,
		store:     store,
		retention: retention,
		logger:    log,
	}
}

// Name returns the job name
func (j *RetentionJob) Name() string {
	return j.name
}

// Schedule returns the cron schedule
func (j *RetentionJob) Schedule() string {
	return j.schedule
}

// Run executes one retention sweep
func (j *RetentionJob) Run(ctx context.Context) error {
	j.logger.WithField("job", j.name).Debug("Starting retention sweep")

	removed, err := j.store.Prune(ctx, j.retention)
	if err != nil {
		return fmt.Errorf("%s: %w", j.name, err)
	}

	if removed > 0 {
		j.logger.WithFields(map[string]interface{}{
			"job":     j.name,
			"removed": removed,
		}).Info("Retention sweep completed")
	}

	return nil
}
