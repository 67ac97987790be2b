package ledger

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// BookEntry is one day-book row. Money in lands in Receipt, money out in
// Payment.
type BookEntry struct {
	SourceType  DocumentType    `json:"source_type"`
	SourceID    int64           `json:"source_id"`
	Date        time.Time       `json:"date"`
	Number      string          `json:"number"`
	PartyName   string          `json:"party_name"`
	Particulars string          `json:"particulars"`
	Mode        string          `json:"mode"`
	Receipt     decimal.Decimal `json:"receipt"`
	Payment     decimal.Decimal `json:"payment"`
	Balance     decimal.Decimal `json:"balance"`
	Note        string          `json:"note,omitempty"`
}

// Book is a day book over one set of settlement modes.
type Book struct {
	Modes          []string        `json:"modes"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Entries        []BookEntry     `json:"entries"`
	TotalReceipts  decimal.Decimal `json:"total_receipts"`
	TotalPayments  decimal.Decimal `json:"total_payments"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
}

// CashModes is the fixed mode set of the cash book.
var CashModes = []string{"cash"}

// BuildBook folds journal entries settled in one of the given modes into a
// day book. Entries with other modes are skipped; mode comparison is
// case-insensitive.
func BuildBook(opening decimal.Decimal, entries []Entry, modes []string) Book {
	allowed := make(map[string]struct{}, len(modes))
	normalized := make([]string, 0, len(modes))
	for _, m := range modes {
		m = strings.ToLower(strings.TrimSpace(m))
		if m == "" {
			continue
		}
		if _, ok := allowed[m]; ok {
			continue
		}
		allowed[m] = struct{}{}
		normalized = append(normalized, m)
	}

	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	Sort(sorted)

	book := Book{
		Modes:          normalized,
		OpeningBalance: opening,
		ClosingBalance: opening,
		TotalReceipts:  decimal.Zero,
		TotalPayments:  decimal.Zero,
	}
	for _, e := range sorted {
		mode := strings.ToLower(strings.TrimSpace(e.Mode))
		if _, ok := allowed[mode]; !ok {
			continue
		}
		row := BookEntry{
			SourceType:  e.SourceType,
			SourceID:    e.SourceID,
			Date:        e.Date,
			Number:      e.Number,
			PartyName:   e.PartyName,
			Particulars: e.Particulars,
			Mode:        mode,
			Receipt:     e.Debit,
			Payment:     e.Credit,
			Note:        e.Note,
		}
		book.TotalReceipts = book.TotalReceipts.Add(row.Receipt)
		book.TotalPayments = book.TotalPayments.Add(row.Payment)
		book.ClosingBalance = book.ClosingBalance.Add(row.Receipt).Sub(row.Payment)
		row.Balance = book.ClosingBalance
		book.Entries = append(book.Entries, row)
	}
	return book
}
