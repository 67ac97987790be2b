package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/meridian-backoffice/meridian/internal/jobs"
)

// KeyPruner removes idempotency keys older than a cutoff.
type KeyPruner interface {
	Cleanup(ctx context.Context, olderThan time.Duration) (int64, error)
}

// IdempotencyCleanupJob prunes stale idempotency keys so replays of old
// requests cannot collide with fresh ones forever.
type IdempotencyCleanupJob struct {
	store   KeyPruner
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewIdempotencyCleanupJob constructs the cleanup job.
func NewIdempotencyCleanupJob(store KeyPruner, logger *slog.Logger, metrics *jobmetrics.Metrics) *IdempotencyCleanupJob {
	if metrics == nil {
		metrics = jobmetrics.NewMetrics(nil)
	}
	return &IdempotencyCleanupJob{store: store, logger: logger, metrics: metrics}
}

// Handle processes TaskIdempotencyCleanup tasks.
func (j *IdempotencyCleanupJob) Handle(ctx context.Context, task *asynq.Task) error {
	tracker := j.metrics.Track("idempotency_cleanup")

	var payload IdempotencyCleanupPayload
	if len(task.Payload()) > 0 {
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	olderThan := time.Duration(payload.OlderThanHours) * time.Hour
	if olderThan <= 0 {
		olderThan = 24 * time.Hour
	}

	removed, err := j.store.Cleanup(ctx, olderThan)
	if err != nil {
		j.logger.Error("idempotency cleanup failed", slog.Any("error", err))
		return tracker.End(err)
	}
	j.logger.Info("idempotency cleanup complete",
		slog.Int64("removed", removed),
		slog.Duration("older_than", olderThan))
	return tracker.End(nil)
}
