package inventory

import (
	"errors"
	"time"
)

// Item is one row of the product catalog with its on-hand stock.
type Item struct {
	ID        int64     `json:"id"`
	SKU       string    `json:"sku"`
	Name      string    `json:"name"`
	Unit      string    `json:"unit"`
	Stock     float64   `json:"stock"`
	MinStock  float64   `json:"min_stock"`
	MaxStock  float64   `json:"max_stock"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BelowMin reports whether on-hand stock dipped under the reorder threshold.
func (i Item) BelowMin() bool {
	return i.MinStock > 0 && i.Stock < i.MinStock
}

// QuantityDelta is one line of a goods receipt or purchase return applied
// against stock. Receipts add, returns subtract.
type QuantityDelta struct {
	SKU string  `json:"sku"`
	Qty float64 `json:"qty"`
}

var (
	// ErrNotFound indicates a missing catalog row.
	ErrNotFound = errors.New("inventory: item not found")
	// ErrDuplicateSKU indicates the SKU is already registered.
	ErrDuplicateSKU = errors.New("inventory: sku already exists")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("inventory: invalid input")
)
