package procurement

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meridian-backoffice/meridian/internal/inventory"
)

// FulfillmentStatus is derived from a purchase order's received-vs-ordered
// quantities.
type FulfillmentStatus string

const (
	FulfillmentOpen     FulfillmentStatus = "open"
	FulfillmentPartial  FulfillmentStatus = "partially_received"
	FulfillmentReceived FulfillmentStatus = "received"
)

// GRNStatus tracks whether a goods receipt has been applied to stock.
type GRNStatus string

const (
	GRNStatusDraft  GRNStatus = "DRAFT"
	GRNStatusPosted GRNStatus = "POSTED"
)

// PurchaseOrder aggregates ordered lines against one supplier.
type PurchaseOrder struct {
	ID           int64             `json:"id"`
	Number       string            `json:"number"`
	SupplierID   int64             `json:"supplier_id"`
	SupplierName string            `json:"supplier_name"`
	Fulfillment  FulfillmentStatus `json:"fulfillment_status"`
	ExpectedAt   time.Time         `json:"expected_at"`
	Note         string            `json:"note,omitempty"`
	Lines        []POLine          `json:"lines"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// POLine is one ordered item with its cumulative received quantity,
// net of returns.
type POLine struct {
	ID       int64           `json:"id"`
	POID     int64           `json:"po_id"`
	SKU      string          `json:"sku"`
	Qty      float64         `json:"qty"`
	Received float64         `json:"received"`
	Price    decimal.Decimal `json:"price"`
}

// GoodsReceipt records goods physically received, optionally against a PO.
// Immutable once posted.
type GoodsReceipt struct {
	ID         int64         `json:"id"`
	Number     string        `json:"number"`
	POID       int64         `json:"po_id,omitempty"`
	SupplierID int64         `json:"supplier_id,omitempty"`
	Status     GRNStatus     `json:"status"`
	ReceivedAt time.Time     `json:"received_at"`
	Note       string        `json:"note,omitempty"`
	Lines      []ReceiptLine `json:"lines"`
	CreatedAt  time.Time     `json:"created_at"`
}

// ReceiptLine is one received item.
type ReceiptLine struct {
	SKU   string          `json:"sku"`
	Qty   float64         `json:"qty"`
	Price decimal.Decimal `json:"price"`
}

// Deltas maps receipt lines onto inventory quantity deltas.
func (g GoodsReceipt) Deltas() []inventory.QuantityDelta {
	deltas := make([]inventory.QuantityDelta, 0, len(g.Lines))
	for _, line := range g.Lines {
		deltas = append(deltas, inventory.QuantityDelta{SKU: line.SKU, Qty: line.Qty})
	}
	return deltas
}

// PurchaseReturn sends goods back to a supplier. Applied at most once per
// identity; Processed is the terminal flag.
type PurchaseReturn struct {
	ID           int64        `json:"id"`
	ReturnNumber string       `json:"return_number"`
	POID         int64        `json:"po_id,omitempty"`
	SupplierID   int64        `json:"supplier_id,omitempty"`
	SupplierName string       `json:"supplier_name,omitempty"`
	ReturnedAt   time.Time    `json:"returned_at"`
	Processed    bool         `json:"processed"`
	Note         string       `json:"note,omitempty"`
	Lines        []ReturnLine `json:"lines"`
	CreatedAt    time.Time    `json:"created_at"`
}

// ReturnLine is one returned item.
type ReturnLine struct {
	SKU   string          `json:"sku"`
	Qty   float64         `json:"qty"`
	Price decimal.Decimal `json:"price"`
}

// Deltas maps return lines onto inventory quantity deltas.
func (r PurchaseReturn) Deltas() []inventory.QuantityDelta {
	deltas := make([]inventory.QuantityDelta, 0, len(r.Lines))
	for _, line := range r.Lines {
		deltas = append(deltas, inventory.QuantityDelta{SKU: line.SKU, Qty: line.Qty})
	}
	return deltas
}

// TotalAmount sums qty times price over all lines. Malformed quantities
// count as zero.
func (r PurchaseReturn) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, line := range r.Lines {
		qty := decimal.NewFromFloat(inventory.SanitizeQty(line.Qty))
		total = total.Add(line.Price.Mul(qty))
	}
	return total
}

// HasIdentity reports whether the return can be deduplicated at all.
func (r PurchaseReturn) HasIdentity() bool {
	return r.ID != 0 || r.ReturnNumber != ""
}

// SupplierCredit is issued as the side effect of an applied return.
// Never mutated afterwards.
type SupplierCredit struct {
	ID           string          `json:"id"`
	SupplierID   int64           `json:"supplier_id,omitempty"`
	SupplierName string          `json:"supplier_name"`
	Amount       decimal.Decimal `json:"amount"`
	IssuedAt     time.Time       `json:"issued_at"`
	Note         string          `json:"note,omitempty"`
}

// PurchaseInvoice is the supplier-billing document feeding the journal
// ledger's credit side.
type PurchaseInvoice struct {
	ID           int64                 `json:"id"`
	Number       string                `json:"number"`
	SupplierID   int64                 `json:"supplier_id,omitempty"`
	SupplierName string                `json:"supplier_name"`
	IssuedAt     time.Time             `json:"issued_at"`
	SubTotal     decimal.Decimal       `json:"sub_total"`
	NetAmount    decimal.Decimal       `json:"net_amount"`
	Total        decimal.Decimal       `json:"total"`
	Mode         string                `json:"mode,omitempty"`
	Note         string                `json:"note,omitempty"`
	Lines        []PurchaseInvoiceLine `json:"lines"`
	CreatedAt    time.Time             `json:"created_at"`
}

// PurchaseInvoiceLine is one billed item.
type PurchaseInvoiceLine struct {
	SKU  string          `json:"sku"`
	Qty  float64         `json:"qty"`
	Rate decimal.Decimal `json:"rate"`
}

var (
	// ErrNotFound indicates record missing.
	ErrNotFound = errors.New("procurement: not found")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("procurement: invalid input")
	// ErrInvalidState occurs when an action violates document state.
	ErrInvalidState = errors.New("procurement: invalid state transition")
	// ErrNoReturnIdentity is a caller bug: a return needs an id or a number.
	ErrNoReturnIdentity = errors.New("procurement: return has no identity")
)
