package ledger

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/meridian-backoffice/meridian/internal/finance"
	"github.com/meridian-backoffice/meridian/internal/procurement"
	"github.com/meridian-backoffice/meridian/internal/sales"
)

type fakeSources struct {
	invoices []sales.Invoice
	bills    []procurement.PurchaseInvoice
	receipts []finance.Voucher
	payments []finance.Voucher
	openings map[string]decimal.Decimal
	parties  map[int64]decimal.Decimal
}

func (f *fakeSources) AllInvoices(context.Context) ([]sales.Invoice, error) { return f.invoices, nil }

func (f *fakeSources) ListPurchaseInvoices(context.Context) ([]procurement.PurchaseInvoice, error) {
	return f.bills, nil
}

func (f *fakeSources) AllVouchers(_ context.Context, kind finance.VoucherKind) ([]finance.Voucher, error) {
	if kind == finance.KindReceipt {
		return f.receipts, nil
	}
	return f.payments, nil
}

func (f *fakeSources) BookOpeningBalance(_ context.Context, book string) (decimal.Decimal, error) {
	return f.openings[book], nil
}

func (f *fakeSources) OpeningBalance(_ context.Context, partyID int64) (decimal.Decimal, error) {
	return f.parties[partyID], nil
}

func TestJournalSeedsPartyOpeningBalance(t *testing.T) {
	src := &fakeSources{
		invoices: []sales.Invoice{
			{ID: 1, CustomerID: 7, CustomerName: "Blue Ridge Stores", IssuedAt: day(1), TotalNet: decimal.NewFromInt(300)},
			{ID: 2, CustomerID: 8, CustomerName: "Other", IssuedAt: day(1), TotalNet: decimal.NewFromInt(999)},
		},
		receipts: []finance.Voucher{
			{ID: 1, PartyID: 7, Date: day(2), Amount: decimal.NewFromInt(100)},
		},
		parties: map[int64]decimal.Decimal{7: decimal.NewFromInt(50)},
	}
	svc := NewService(src, src, src, src, nil, nil)

	stmt, err := svc.Journal(context.Background(), Filter{PartyID: 7})
	require.NoError(t, err)
	require.Len(t, stmt.Entries, 2)
	require.True(t, stmt.OpeningBalance.Equal(decimal.NewFromInt(50)))
	require.True(t, stmt.ClosingBalance.Equal(decimal.NewFromInt(450)))
}

func TestJournalWithoutPartyStartsAtZero(t *testing.T) {
	src := &fakeSources{
		payments: []finance.Voucher{{ID: 1, Date: day(1), Amount: decimal.NewFromInt(30)}},
	}
	svc := NewService(src, src, src, src, nil, nil)

	stmt, err := svc.Journal(context.Background(), Filter{})
	require.NoError(t, err)
	require.True(t, stmt.OpeningBalance.IsZero())
	require.True(t, stmt.ClosingBalance.Equal(decimal.NewFromInt(-30)))
}

func TestCashBookUsesStoredOpening(t *testing.T) {
	src := &fakeSources{
		receipts: []finance.Voucher{{ID: 1, Date: day(1), Mode: "cash", Amount: decimal.NewFromInt(200)}},
		payments: []finance.Voucher{{ID: 2, Date: day(2), Mode: "cash", Amount: decimal.NewFromInt(80)}},
		openings: map[string]decimal.Decimal{"cash": decimal.NewFromInt(1000)},
	}
	svc := NewService(src, src, src, src, nil, nil)

	book, err := svc.CashBook(context.Background(), Filter{})
	require.NoError(t, err)
	require.True(t, book.OpeningBalance.Equal(decimal.NewFromInt(1000)))
	require.True(t, book.ClosingBalance.Equal(decimal.NewFromInt(1120)))
}

func TestBankBookCoversConfiguredModes(t *testing.T) {
	src := &fakeSources{
		receipts: []finance.Voucher{
			{ID: 1, Date: day(1), Mode: "upi", Amount: decimal.NewFromInt(500)},
			{ID: 2, Date: day(1), Mode: "cash", Amount: decimal.NewFromInt(100)},
		},
		openings: map[string]decimal.Decimal{"bank": decimal.NewFromInt(10)},
	}
	svc := NewService(src, src, src, src, []string{"bank", "upi"}, nil)

	book, err := svc.BankBook(context.Background(), Filter{})
	require.NoError(t, err)
	require.Len(t, book.Entries, 1)
	require.True(t, book.ClosingBalance.Equal(decimal.NewFromInt(510)))
}
