package sales

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is a customer bill. Its amounts feed the journal ledger's debit
// side; TotalNet is preferred, falling back to GrandTotal then SubTotal.
type Invoice struct {
	ID           int64           `json:"id"`
	Number       string          `json:"number"`
	CustomerID   int64           `json:"customer_id,omitempty"`
	CustomerName string          `json:"customer_name"`
	IssuedAt     time.Time       `json:"issued_at"`
	SubTotal     decimal.Decimal `json:"sub_total"`
	TotalNet     decimal.Decimal `json:"total_net"`
	GrandTotal   decimal.Decimal `json:"grand_total"`
	Mode         string          `json:"mode,omitempty"`
	Note         string          `json:"note,omitempty"`
	Lines        []InvoiceLine   `json:"lines"`
	CreatedAt    time.Time       `json:"created_at"`
}

// InvoiceLine is one billed item.
type InvoiceLine struct {
	SKU  string          `json:"sku"`
	Qty  float64         `json:"qty"`
	Rate decimal.Decimal `json:"rate"`
}

var (
	ErrNotFound   = errors.New("sales: not found")
	ErrValidation = errors.New("sales: invalid input")
)
