package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	jobmetrics "github.com/meridian-backoffice/meridian/internal/jobs"
	"github.com/meridian-backoffice/meridian/internal/ledger"
)

// BookBuilder assembles the day books.
type BookBuilder interface {
	CashBook(ctx context.Context, filter ledger.Filter) (ledger.Book, error)
	BankBook(ctx context.Context, filter ledger.Filter) (ledger.Book, error)
}

// BookSnapshotJob caches each book's closing balance in Redis so dashboards
// read a precomputed figure instead of folding the journal per request.
type BookSnapshotJob struct {
	books   BookBuilder
	cache   redis.UniversalClient
	ttl     time.Duration
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewBookSnapshotJob constructs the snapshot job.
func NewBookSnapshotJob(books BookBuilder, cache redis.UniversalClient, logger *slog.Logger, metrics *jobmetrics.Metrics) *BookSnapshotJob {
	if metrics == nil {
		metrics = jobmetrics.NewMetrics(nil)
	}
	return &BookSnapshotJob{books: books, cache: cache, ttl: 48 * time.Hour, logger: logger, metrics: metrics}
}

// Handle processes TaskBookSnapshot tasks.
func (j *BookSnapshotJob) Handle(ctx context.Context, task *asynq.Task) error {
	tracker := j.metrics.Track("book_snapshot")

	var payload BookSnapshotPayload
	if len(task.Payload()) > 0 {
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	if len(payload.Books) == 0 {
		payload.Books = []string{"cash", "bank"}
	}

	for _, name := range payload.Books {
		var (
			book ledger.Book
			err  error
		)
		switch name {
		case "cash":
			book, err = j.books.CashBook(ctx, ledger.Filter{})
		case "bank":
			book, err = j.books.BankBook(ctx, ledger.Filter{})
		default:
			j.logger.Warn("unknown book requested", slog.String("book", name))
			continue
		}
		if err != nil {
			j.logger.Error("book snapshot failed", slog.String("book", name), slog.Any("error", err))
			return tracker.End(err)
		}
		if j.cache != nil {
			key := fmt.Sprintf("meridian:book:%s:closing", name)
			if err := j.cache.Set(ctx, key, book.ClosingBalance.String(), j.ttl).Err(); err != nil {
				j.logger.Warn("cache book closing balance", slog.String("book", name), slog.Any("error", err))
			}
		}
		j.logger.Info("book snapshot complete",
			slog.String("book", name),
			slog.String("closing_balance", book.ClosingBalance.String()),
			slog.Int("entries", len(book.Entries)))
	}
	return tracker.End(nil)
}
