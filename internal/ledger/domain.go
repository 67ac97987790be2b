package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meridian-backoffice/meridian/internal/finance"
	"github.com/meridian-backoffice/meridian/internal/procurement"
	"github.com/meridian-backoffice/meridian/internal/sales"
)

// DocumentType classifies the source document behind a journal entry.
type DocumentType string

const (
	DocSaleInvoice     DocumentType = "sale_invoice"
	DocPurchaseInvoice DocumentType = "purchase_invoice"
	DocReceipt         DocumentType = "receipt_voucher"
	DocPayment         DocumentType = "payment_voucher"
)

// Entry is one normalized journal row. Money collected or owed to us lands
// in Debit, money paid or owed by us in Credit; exactly one side is set.
type Entry struct {
	SourceType  DocumentType    `json:"source_type"`
	SourceID    int64           `json:"source_id"`
	Date        time.Time       `json:"date"`
	Number      string          `json:"number"`
	PartyID     int64           `json:"party_id,omitempty"`
	PartyName   string          `json:"party_name"`
	Particulars string          `json:"particulars"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Mode        string          `json:"mode,omitempty"`
	Note        string          `json:"note,omitempty"`
	Balance     decimal.Decimal `json:"balance"`
}

// Key is the dedup identity of an entry across repeated source feeds.
func (e Entry) Key() string {
	return fmt.Sprintf("%s-%d", e.SourceType, e.SourceID)
}

// Sources bundles the raw documents the journal is assembled from.
type Sources struct {
	SaleInvoices     []sales.Invoice
	PurchaseInvoices []procurement.PurchaseInvoice
	ReceiptVouchers  []finance.Voucher
	PaymentVouchers  []finance.Voucher
}

// Statement is a journal slice with aggregate totals and the closing
// balance after folding from the opening balance.
type Statement struct {
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Entries        []Entry         `json:"entries"`
	TotalDebit     decimal.Decimal `json:"total_debit"`
	TotalCredit    decimal.Decimal `json:"total_credit"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
}

var ErrValidation = errors.New("ledger: invalid input")
