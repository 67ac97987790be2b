package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/meridian-backoffice/meridian/internal/finance"
	"github.com/meridian-backoffice/meridian/internal/procurement"
	"github.com/meridian-backoffice/meridian/internal/sales"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestNormalizeSaleAmountFallback(t *testing.T) {
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		inv  sales.Invoice
		want decimal.Decimal
	}{
		{"prefers net total", sales.Invoice{ID: 1, IssuedAt: day, SubTotal: d(90), TotalNet: d(100), GrandTotal: d(110)}, d(100)},
		{"falls back to grand total", sales.Invoice{ID: 2, IssuedAt: day, SubTotal: d(90), GrandTotal: d(110)}, d(110)},
		{"falls back to subtotal", sales.Invoice{ID: 3, IssuedAt: day, SubTotal: d(90)}, d(90)},
		{"all zero stays zero", sales.Invoice{ID: 4, IssuedAt: day}, decimal.Zero},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			entries := Normalize(Sources{SaleInvoices: []sales.Invoice{tc.inv}})
			require.Len(t, entries, 1)
			require.True(t, entries[0].Debit.Equal(tc.want), "got %s", entries[0].Debit)
			require.True(t, entries[0].Credit.IsZero())
		})
	}
}

func TestNormalizePurchaseAmountFallsBackToLines(t *testing.T) {
	inv := procurement.PurchaseInvoice{
		ID: 1,
		Lines: []procurement.PurchaseInvoiceLine{
			{SKU: "WIDGET", Qty: 3, Rate: d(10)},
			{SKU: "GASKET", Qty: 2, Rate: d(5)},
		},
	}

	entries := Normalize(Sources{PurchaseInvoices: []procurement.PurchaseInvoice{inv}})

	require.Len(t, entries, 1)
	require.True(t, entries[0].Credit.Equal(d(40)), "got %s", entries[0].Credit)
	require.True(t, entries[0].Debit.IsZero())
}

func TestNormalizePurchasePrefersTotal(t *testing.T) {
	inv := procurement.PurchaseInvoice{ID: 1, SubTotal: d(90), NetAmount: d(95), Total: d(100)}

	entries := Normalize(Sources{PurchaseInvoices: []procurement.PurchaseInvoice{inv}})

	require.True(t, entries[0].Credit.Equal(d(100)))
}

func TestNormalizeVoucherSides(t *testing.T) {
	entries := Normalize(Sources{
		ReceiptVouchers: []finance.Voucher{{ID: 1, Kind: finance.KindReceipt, Amount: d(200)}},
		PaymentVouchers: []finance.Voucher{{ID: 2, Kind: finance.KindPayment, Amount: d(150)}},
	})

	require.Len(t, entries, 2)
	require.True(t, entries[0].Debit.Equal(d(200)))
	require.True(t, entries[1].Credit.Equal(d(150)))
}

func TestNormalizeParticulars(t *testing.T) {
	entries := Normalize(Sources{
		SaleInvoices:     []sales.Invoice{{ID: 1, CustomerName: "Blue Ridge", TotalNet: d(100)}},
		PurchaseInvoices: []procurement.PurchaseInvoice{{ID: 2, SupplierName: "Acme", Total: d(60)}},
		ReceiptVouchers:  []finance.Voucher{{ID: 3, PartyName: "Blue Ridge", Amount: d(30)}},
		PaymentVouchers:  []finance.Voucher{{ID: 4, PartyName: "Acme", Amount: d(20)}},
	})

	require.Equal(t, "Sale to Blue Ridge", entries[0].Particulars)
	require.Equal(t, "Purchase from Acme", entries[1].Particulars)
	require.Equal(t, "Receipt from Blue Ridge", entries[2].Particulars)
	require.Equal(t, "Payment to Acme", entries[3].Particulars)
}

func TestNormalizeDropsDuplicateSources(t *testing.T) {
	inv := sales.Invoice{ID: 9, TotalNet: d(100)}

	entries := Normalize(Sources{SaleInvoices: []sales.Invoice{inv, inv, inv}})

	require.Len(t, entries, 1)
}

func TestNormalizeSameIDAcrossTypesAreDistinct(t *testing.T) {
	entries := Normalize(Sources{
		SaleInvoices:     []sales.Invoice{{ID: 5, TotalNet: d(100)}},
		PurchaseInvoices: []procurement.PurchaseInvoice{{ID: 5, Total: d(60)}},
		ReceiptVouchers:  []finance.Voucher{{ID: 5, Amount: d(30)}},
	})

	require.Len(t, entries, 3)
}
