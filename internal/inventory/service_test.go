package inventory

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridian-backoffice/meridian/internal/shared"
)

type memoryItemRepo struct {
	items  map[string]*Item
	nextID int64
}

func newMemoryItemRepo() *memoryItemRepo {
	return &memoryItemRepo{items: make(map[string]*Item)}
}

func (r *memoryItemRepo) List(ctx context.Context, filters shared.ListFilters) ([]Item, int, error) {
	var out []Item
	for _, it := range r.items {
		if filters.Search != "" && !strings.Contains(strings.ToLower(it.Name), strings.ToLower(filters.Search)) {
			continue
		}
		out = append(out, *it)
	}
	return out, len(out), nil
}

func (r *memoryItemRepo) GetBySKU(ctx context.Context, sku string) (Item, error) {
	it, ok := r.items[sku]
	if !ok {
		return Item{}, ErrNotFound
	}
	return *it, nil
}

func (r *memoryItemRepo) Create(ctx context.Context, item Item) (Item, error) {
	if _, exists := r.items[item.SKU]; exists {
		return Item{}, ErrDuplicateSKU
	}
	r.nextID++
	item.ID = r.nextID
	r.items[item.SKU] = &item
	return item, nil
}

func (r *memoryItemRepo) Update(ctx context.Context, item Item) error {
	existing, ok := r.items[item.SKU]
	if !ok {
		return ErrNotFound
	}
	existing.Name = item.Name
	existing.Unit = item.Unit
	existing.MinStock = item.MinStock
	existing.MaxStock = item.MaxStock
	return nil
}

func (r *memoryItemRepo) ListBelowMin(ctx context.Context) ([]Item, error) {
	var out []Item
	for _, it := range r.items {
		if it.BelowMin() {
			out = append(out, *it)
		}
	}
	return out, nil
}

func TestCreateItem(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryItemRepo())

	item, err := svc.CreateItem(ctx, CreateItemInput{SKU: "A-100", Name: "Widget", Unit: "pcs", Stock: 12, MinStock: 5})
	require.NoError(t, err)
	require.Equal(t, "A-100", item.SKU)
	require.Equal(t, 12.0, item.Stock)
	require.NotZero(t, item.ID)
}

func TestCreateItemRejectsMissingSKU(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryItemRepo())

	_, err := svc.CreateItem(ctx, CreateItemInput{Name: "No SKU"})
	require.ErrorIs(t, err, ErrValidation)
}

func TestCreateItemRejectsDuplicateSKU(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryItemRepo())

	_, err := svc.CreateItem(ctx, CreateItemInput{SKU: "A-100", Name: "Widget"})
	require.NoError(t, err)

	_, err = svc.CreateItem(ctx, CreateItemInput{SKU: "A-100", Name: "Widget again"})
	require.ErrorIs(t, err, ErrDuplicateSKU)
}

func TestCreateItemCoercesNegativeStock(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryItemRepo())

	item, err := svc.CreateItem(ctx, CreateItemInput{SKU: "A-101", Name: "Widget", Stock: -4})
	require.NoError(t, err)
	require.Equal(t, 0.0, item.Stock)
}

func TestLowStockListsOnlyBelowMin(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryItemRepo()
	svc := NewService(repo)

	_, err := svc.CreateItem(ctx, CreateItemInput{SKU: "OK", Name: "Stocked", Stock: 20, MinStock: 5})
	require.NoError(t, err)
	_, err = svc.CreateItem(ctx, CreateItemInput{SKU: "LOW", Name: "Scarce", Stock: 2, MinStock: 5})
	require.NoError(t, err)

	low, err := svc.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 1)
	require.Equal(t, "LOW", low[0].SKU)
}
