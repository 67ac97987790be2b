package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func bookEntries() []Entry {
	return []Entry{
		{SourceType: DocReceipt, SourceID: 1, Date: day(1), Mode: "cash", Debit: decimal.NewFromInt(200)},
		{SourceType: DocPayment, SourceID: 1, Date: day(2), Mode: "Cash", Credit: decimal.NewFromInt(50)},
		{SourceType: DocReceipt, SourceID: 2, Date: day(2), Mode: "upi", Debit: decimal.NewFromInt(300)},
		{SourceType: DocPayment, SourceID: 2, Date: day(3), Mode: "bank", Credit: decimal.NewFromInt(120)},
		{SourceType: DocSaleInvoice, SourceID: 1, Date: day(3), Mode: "", Debit: decimal.NewFromInt(999)},
	}
}

func TestBuildBookCashModePartition(t *testing.T) {
	book := BuildBook(decimal.NewFromInt(100), bookEntries(), CashModes)

	require.Len(t, book.Entries, 2)
	require.True(t, book.TotalReceipts.Equal(decimal.NewFromInt(200)))
	require.True(t, book.TotalPayments.Equal(decimal.NewFromInt(50)))
	require.True(t, book.ClosingBalance.Equal(decimal.NewFromInt(250)))
	require.True(t, book.Entries[0].Balance.Equal(decimal.NewFromInt(300)))
	require.True(t, book.Entries[1].Balance.Equal(decimal.NewFromInt(250)))
}

func TestBuildBookBankModesConfigurable(t *testing.T) {
	book := BuildBook(decimal.Zero, bookEntries(), []string{"bank", "online", "card", "upi", "cheque"})

	require.Len(t, book.Entries, 2)
	require.True(t, book.TotalReceipts.Equal(decimal.NewFromInt(300)))
	require.True(t, book.TotalPayments.Equal(decimal.NewFromInt(120)))
	require.True(t, book.ClosingBalance.Equal(decimal.NewFromInt(180)))
}

func TestBuildBookModeMatchingIsCaseInsensitive(t *testing.T) {
	entries := []Entry{
		{SourceType: DocReceipt, SourceID: 1, Date: day(1), Mode: "CASH", Debit: decimal.NewFromInt(10)},
	}

	book := BuildBook(decimal.Zero, entries, []string{"Cash"})

	require.Len(t, book.Entries, 1)
}

func TestBuildBookSkipsUnsettledEntries(t *testing.T) {
	book := BuildBook(decimal.Zero, bookEntries(), []string{"cash", "bank", "upi"})

	for _, row := range book.Entries {
		require.NotEmpty(t, row.Mode)
	}
}

func TestBuildBookNormalizesModeList(t *testing.T) {
	book := BuildBook(decimal.Zero, nil, []string{" Cash ", "cash", "", "UPI"})
	require.Equal(t, []string{"cash", "upi"}, book.Modes)
}
