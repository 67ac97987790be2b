package sales

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meridian-backoffice/meridian/internal/shared"
)

// RepositoryPort abstracts invoice persistence.
type RepositoryPort interface {
	Create(ctx context.Context, inv Invoice) (Invoice, error)
	Get(ctx context.Context, id int64) (Invoice, error)
	List(ctx context.Context, filters shared.ListFilters) ([]Invoice, error)
	All(ctx context.Context) ([]Invoice, error)
}

// Service orchestrates sales invoicing.
type Service struct {
	repo   RepositoryPort
	logger *slog.Logger
}

// NewService constructs sales service.
func NewService(repo RepositoryPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// CreateInvoiceInput describes an invoice payload.
type CreateInvoiceInput struct {
	Number       string
	CustomerID   int64
	CustomerName string
	IssuedAt     time.Time
	SubTotal     decimal.Decimal
	TotalNet     decimal.Decimal
	GrandTotal   decimal.Decimal
	Mode         string
	Note         string
	Lines        []InvoiceLine
}

// CreateInvoice records a customer bill.
func (s *Service) CreateInvoice(ctx context.Context, input CreateInvoiceInput) (Invoice, error) {
	if input.CustomerID == 0 && input.CustomerName == "" {
		return Invoice{}, ErrValidation
	}
	if input.Number == "" {
		input.Number = fmt.Sprintf("INV-%d", time.Now().UnixNano())
	}
	if input.IssuedAt.IsZero() {
		input.IssuedAt = time.Now()
	}
	inv := Invoice{
		Number:       input.Number,
		CustomerID:   input.CustomerID,
		CustomerName: input.CustomerName,
		IssuedAt:     input.IssuedAt,
		SubTotal:     input.SubTotal,
		TotalNet:     input.TotalNet,
		GrandTotal:   input.GrandTotal,
		Mode:         input.Mode,
		Note:         input.Note,
		Lines:        input.Lines,
	}
	return s.repo.Create(ctx, inv)
}

// GetInvoice loads an invoice with lines.
func (s *Service) GetInvoice(ctx context.Context, id int64) (Invoice, error) {
	return s.repo.Get(ctx, id)
}

// ListInvoices returns an invoice page.
func (s *Service) ListInvoices(ctx context.Context, filters shared.ListFilters) ([]Invoice, error) {
	return s.repo.List(ctx, filters)
}

// AllInvoices returns every invoice for ledger assembly.
func (s *Service) AllInvoices(ctx context.Context) ([]Invoice, error) {
	return s.repo.All(ctx)
}
