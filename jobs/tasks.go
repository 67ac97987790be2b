package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskIdempotencyCleanup prunes stale idempotency keys.
	TaskIdempotencyCleanup = "maintenance:idempotency_cleanup"
	// TaskLowStockScan flags items whose stock fell below the minimum.
	TaskLowStockScan = "inventory:low_stock_scan"
	// TaskBookSnapshot caches the day-book closing balances.
	TaskBookSnapshot = "ledger:book_snapshot"
)

// IdempotencyCleanupPayload bounds the cleanup window.
type IdempotencyCleanupPayload struct {
	OlderThanHours int `json:"older_than_hours"`
}

// NewIdempotencyCleanupTask constructs the cleanup task.
func NewIdempotencyCleanupTask(olderThan time.Duration) (*asynq.Task, error) {
	data, err := json.Marshal(IdempotencyCleanupPayload{OlderThanHours: int(olderThan.Hours())})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIdempotencyCleanup, data), nil
}

// NewLowStockScanTask constructs the low-stock scan task.
func NewLowStockScanTask() (*asynq.Task, error) {
	return asynq.NewTask(TaskLowStockScan, nil), nil
}

// BookSnapshotPayload selects the books to snapshot.
type BookSnapshotPayload struct {
	Books []string `json:"books"`
}

// NewBookSnapshotTask constructs the book snapshot task.
func NewBookSnapshotTask(books ...string) (*asynq.Task, error) {
	data, err := json.Marshal(BookSnapshotPayload{Books: books})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskBookSnapshot, data), nil
}
