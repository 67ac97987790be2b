package ledger

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
)

// Filter narrows a journal. Zero-valued fields do not constrain; the set
// ones combine with AND, so application order never changes the result.
type Filter struct {
	PartyID   int64
	PartyName string
	DocTypes  []DocumentType
	From      time.Time
	To        time.Time
	Search    string
}

var fold = cases.Fold()

// Matches reports whether the entry passes every set constraint. The To
// bound is inclusive through the end of its calendar day.
func (f Filter) Matches(e Entry) bool {
	if f.PartyID != 0 && e.PartyID != f.PartyID {
		return false
	}
	if f.PartyName != "" && fold.String(e.PartyName) != fold.String(f.PartyName) {
		return false
	}
	if len(f.DocTypes) > 0 && !containsDocType(f.DocTypes, e.SourceType) {
		return false
	}
	if !f.From.IsZero() && e.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !e.Date.Before(endOfDay(f.To)) {
		return false
	}
	if f.Search != "" {
		needle := fold.String(f.Search)
		if !strings.Contains(fold.String(e.Number), needle) &&
			!strings.Contains(fold.String(e.PartyName), needle) &&
			!strings.Contains(fold.String(e.Particulars), needle) &&
			!strings.Contains(fold.String(e.Note), needle) {
			return false
		}
	}
	return true
}

// Apply keeps the entries passing the filter, preserving order.
func (f Filter) Apply(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if f.Matches(e) {
			out = append(out, e)
		}
	}
	return out
}

// Sort orders entries by date, then document type, then source id. The
// ordering is total, so assembly order of the sources never shows through.
func Sort(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.SourceType != b.SourceType {
			return a.SourceType < b.SourceType
		}
		return a.SourceID < b.SourceID
	})
}

// Build sorts the entries and folds a running balance through them from the
// opening balance. Each entry carries the balance after itself; the
// statement's closing balance equals the last entry's balance.
func Build(opening decimal.Decimal, entries []Entry) Statement {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	Sort(sorted)

	stmt := Statement{
		OpeningBalance: opening,
		ClosingBalance: opening,
		TotalDebit:     decimal.Zero,
		TotalCredit:    decimal.Zero,
	}
	for i := range sorted {
		stmt.TotalDebit = stmt.TotalDebit.Add(sorted[i].Debit)
		stmt.TotalCredit = stmt.TotalCredit.Add(sorted[i].Credit)
		stmt.ClosingBalance = stmt.ClosingBalance.Add(sorted[i].Debit).Sub(sorted[i].Credit)
		sorted[i].Balance = stmt.ClosingBalance
	}
	stmt.Entries = sorted
	return stmt
}

func containsDocType(types []DocumentType, t DocumentType) bool {
	for _, dt := range types {
		if dt == t {
			return true
		}
	}
	return false
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location()).AddDate(0, 0, 1)
}
