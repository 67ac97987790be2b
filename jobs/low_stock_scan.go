package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/meridian-backoffice/meridian/internal/inventory"
	jobmetrics "github.com/meridian-backoffice/meridian/internal/jobs"
)

// StockReader reports items at or below their minimum stock.
type StockReader interface {
	LowStock(ctx context.Context) ([]inventory.Item, error)
}

// LowStockScanJob surfaces items that need reordering.
type LowStockScanJob struct {
	stock   StockReader
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewLowStockScanJob constructs the scan job.
func NewLowStockScanJob(stock StockReader, logger *slog.Logger, metrics *jobmetrics.Metrics) *LowStockScanJob {
	if metrics == nil {
		metrics = jobmetrics.NewMetrics(nil)
	}
	return &LowStockScanJob{stock: stock, logger: logger, metrics: metrics}
}

// Handle processes TaskLowStockScan tasks.
func (j *LowStockScanJob) Handle(ctx context.Context, _ *asynq.Task) error {
	tracker := j.metrics.Track("low_stock_scan")

	items, err := j.stock.LowStock(ctx)
	if err != nil {
		j.logger.Error("low stock scan failed", slog.Any("error", err))
		return tracker.End(err)
	}
	j.metrics.SetLowStock(len(items))
	for _, item := range items {
		j.logger.Warn("item below minimum stock",
			slog.String("sku", item.SKU),
			slog.Float64("stock", item.Stock),
			slog.Float64("min_stock", item.MinStock))
	}
	j.logger.Info("low stock scan complete", slog.Int("flagged", len(items)))
	return tracker.End(nil)
}
