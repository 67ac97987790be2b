package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/meridian-backoffice/meridian/internal/ledger"
)

func TestStatementExportLayout(t *testing.T) {
	stmt := ledger.Build(decimal.NewFromInt(100), []ledger.Entry{
		{
			SourceType: ledger.DocSaleInvoice,
			SourceID:   1,
			Date:       time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC),
			Number:     "INV-1",
			PartyName:  "Blue Ridge Stores",
			Debit:      decimal.NewFromInt(250),
		},
	})

	f, err := NewExporter().Statement("Ledger", stmt)
	require.NoError(t, err)

	number, err := f.GetCellValue("Ledger", "C3")
	require.NoError(t, err)
	require.Equal(t, "INV-1", number)

	balance, err := f.GetCellValue("Ledger", "G3")
	require.NoError(t, err)
	require.Equal(t, "350", balance)

	closing, err := f.GetCellValue("Ledger", "G4")
	require.NoError(t, err)
	require.Equal(t, "350", closing)
}

func TestBookExportLayout(t *testing.T) {
	book := ledger.BuildBook(decimal.NewFromInt(10), []ledger.Entry{
		{
			SourceType: ledger.DocReceipt,
			SourceID:   1,
			Date:       time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC),
			Number:     "RV-1",
			Mode:       "cash",
			Debit:      decimal.NewFromInt(40),
		},
	}, ledger.CashModes)

	f, err := NewExporter().Book("Cash Book", book)
	require.NoError(t, err)

	receipt, err := f.GetCellValue("Cash Book", "F3")
	require.NoError(t, err)
	require.Equal(t, "40", receipt)

	closing, err := f.GetCellValue("Cash Book", "H4")
	require.NoError(t, err)
	require.Equal(t, "50", closing)
}
