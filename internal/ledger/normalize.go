package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/meridian-backoffice/meridian/internal/procurement"
	"github.com/meridian-backoffice/meridian/internal/sales"
)

// Normalize flattens raw documents into journal entries. Repeated documents
// of the same type and id collapse to their first occurrence; source order
// is otherwise preserved.
func Normalize(src Sources) []Entry {
	seen := make(map[string]struct{})
	var out []Entry
	add := func(e Entry) {
		if _, ok := seen[e.Key()]; ok {
			return
		}
		seen[e.Key()] = struct{}{}
		out = append(out, e)
	}

	for _, inv := range src.SaleInvoices {
		add(Entry{
			SourceType:  DocSaleInvoice,
			SourceID:    inv.ID,
			Date:        inv.IssuedAt,
			Number:      inv.Number,
			PartyID:     inv.CustomerID,
			PartyName:   inv.CustomerName,
			Particulars: fmt.Sprintf("Sale to %s", inv.CustomerName),
			Debit:       saleAmount(inv),
			Mode:        inv.Mode,
			Note:        inv.Note,
		})
	}
	for _, inv := range src.PurchaseInvoices {
		add(Entry{
			SourceType:  DocPurchaseInvoice,
			SourceID:    inv.ID,
			Date:        inv.IssuedAt,
			Number:      inv.Number,
			PartyID:     inv.SupplierID,
			PartyName:   inv.SupplierName,
			Particulars: fmt.Sprintf("Purchase from %s", inv.SupplierName),
			Credit:      purchaseAmount(inv),
			Mode:        inv.Mode,
			Note:        inv.Note,
		})
	}
	for _, v := range src.ReceiptVouchers {
		add(Entry{
			SourceType:  DocReceipt,
			SourceID:    v.ID,
			Date:        v.Date,
			Number:      v.Number,
			PartyID:     v.PartyID,
			PartyName:   v.PartyName,
			Particulars: fmt.Sprintf("Receipt from %s", v.PartyName),
			Debit:       v.Amount,
			Mode:        v.Mode,
			Note:        v.Note,
		})
	}
	for _, v := range src.PaymentVouchers {
		add(Entry{
			SourceType:  DocPayment,
			SourceID:    v.ID,
			Date:        v.Date,
			Number:      v.Number,
			PartyID:     v.PartyID,
			PartyName:   v.PartyName,
			Particulars: fmt.Sprintf("Payment to %s", v.PartyName),
			Credit:      v.Amount,
			Mode:        v.Mode,
			Note:        v.Note,
		})
	}
	return out
}

// saleAmount picks the first usable amount from a sale invoice: net total,
// then grand total, then subtotal.
func saleAmount(inv sales.Invoice) decimal.Decimal {
	return firstNonZero(inv.TotalNet, inv.GrandTotal, inv.SubTotal)
}

// purchaseAmount picks the first usable amount from a supplier bill: total,
// then net, then subtotal, finally the lines summed.
func purchaseAmount(inv procurement.PurchaseInvoice) decimal.Decimal {
	amount := firstNonZero(inv.Total, inv.NetAmount, inv.SubTotal)
	if !amount.IsZero() {
		return amount
	}
	sum := decimal.Zero
	for _, line := range inv.Lines {
		sum = sum.Add(line.Rate.Mul(decimal.NewFromFloat(line.Qty)))
	}
	return sum
}

func firstNonZero(values ...decimal.Decimal) decimal.Decimal {
	for _, v := range values {
		if !v.IsZero() {
			return v
		}
	}
	return decimal.Zero
}
