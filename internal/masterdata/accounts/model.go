// Package accounts holds the counterparty directory: the customers and
// suppliers documents are issued against, together with their carried-forward
// opening balances.
package accounts

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// AccountType distinguishes customers from suppliers.
type AccountType string

const (
	TypeCustomer AccountType = "customer"
	TypeSupplier AccountType = "supplier"
)

// Account is one directory entry.
type Account struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	Type           AccountType     `json:"type"`
	Phone          string          `json:"phone,omitempty"`
	Note           string          `json:"note,omitempty"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

var (
	// ErrNotFound indicates a missing account.
	ErrNotFound = errors.New("accounts: not found")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("accounts: invalid input")
)
