package finance

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// VoucherKind separates money-in from money-out vouchers.
type VoucherKind string

const (
	KindReceipt VoucherKind = "receipt"
	KindPayment VoucherKind = "payment"
)

// Voucher is a cash movement document. Receipt vouchers record money
// collected from a party, payment vouchers money paid out.
type Voucher struct {
	ID        int64           `json:"id"`
	Kind      VoucherKind     `json:"kind"`
	Number    string          `json:"number"`
	Date      time.Time       `json:"date"`
	PartyID   int64           `json:"party_id,omitempty"`
	PartyName string          `json:"party_name"`
	Amount    decimal.Decimal `json:"amount"`
	Mode      string          `json:"mode"`
	Note      string          `json:"note,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// BookSetting holds the operator-set opening balance for one day book.
type BookSetting struct {
	Book           string          `json:"book"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

var (
	ErrNotFound   = errors.New("finance: not found")
	ErrValidation = errors.New("finance: invalid input")
)
