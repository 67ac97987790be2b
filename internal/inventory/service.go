package inventory

import (
	"context"
	"strings"

	"github.com/meridian-backoffice/meridian/internal/shared"
)

// RepositoryPort abstracts persistence for Service.
type RepositoryPort interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Item, int, error)
	GetBySKU(ctx context.Context, sku string) (Item, error)
	Create(ctx context.Context, item Item) (Item, error)
	Update(ctx context.Context, item Item) error
	ListBelowMin(ctx context.Context) ([]Item, error)
}

// Service coordinates catalog operations.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// CreateItemInput describes a new catalog row.
type CreateItemInput struct {
	SKU      string
	Name     string
	Unit     string
	Stock    float64
	MinStock float64
	MaxStock float64
}

// CreateItem registers a catalog item.
func (s *Service) CreateItem(ctx context.Context, input CreateItemInput) (Item, error) {
	input.SKU = strings.TrimSpace(input.SKU)
	if input.SKU == "" || input.Name == "" {
		return Item{}, ErrValidation
	}
	item := Item{
		SKU:      input.SKU,
		Name:     input.Name,
		Unit:     input.Unit,
		Stock:    SanitizeQty(input.Stock),
		MinStock: SanitizeQty(input.MinStock),
		MaxStock: SanitizeQty(input.MaxStock),
	}
	return s.repo.Create(ctx, item)
}

// UpdateItem stores mutable fields of an existing item.
func (s *Service) UpdateItem(ctx context.Context, item Item) error {
	if item.SKU == "" {
		return ErrValidation
	}
	item.MinStock = SanitizeQty(item.MinStock)
	item.MaxStock = SanitizeQty(item.MaxStock)
	return s.repo.Update(ctx, item)
}

// GetItem fetches one item by SKU.
func (s *Service) GetItem(ctx context.Context, sku string) (Item, error) {
	if sku == "" {
		return Item{}, ErrValidation
	}
	return s.repo.GetBySKU(ctx, sku)
}

// ListItems returns a catalog page.
func (s *Service) ListItems(ctx context.Context, filters shared.ListFilters) ([]Item, int, error) {
	return s.repo.List(ctx, filters)
}

// LowStock lists items under their reorder threshold.
func (s *Service) LowStock(ctx context.Context) ([]Item, error) {
	return s.repo.ListBelowMin(ctx)
}
