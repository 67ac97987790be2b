package procurement

import (
	"math"

	"github.com/meridian-backoffice/meridian/internal/inventory"
)

// Pure reconciliation transforms. Each takes a snapshot plus a delta source
// and returns a new snapshot; inputs are never mutated. Persistence is the
// caller's concern.

// ApplyReceipt applies a goods receipt to an inventory snapshot and the
// linked purchase order in one step.
func ApplyReceipt(items []inventory.Item, po PurchaseOrder, grn GoodsReceipt) ([]inventory.Item, PurchaseOrder) {
	return inventory.ApplyReceipt(items, grn.Deltas()), ApplyReceiptToPO(po, grn)
}

// ApplyReturn applies a purchase return to an inventory snapshot and the
// linked purchase order in one step.
func ApplyReturn(items []inventory.Item, po PurchaseOrder, ret PurchaseReturn) ([]inventory.Item, PurchaseOrder) {
	return inventory.ApplyReturn(items, ret.Deltas()), ApplyReturnToPO(po, ret)
}

// ApplyReceiptToPO adds received quantities to matching PO lines. A receipt
// not linked to this PO leaves it untouched. Received is capped at the
// ordered quantity per line.
func ApplyReceiptToPO(po PurchaseOrder, grn GoodsReceipt) PurchaseOrder {
	if grn.POID == 0 || grn.POID != po.ID {
		return po
	}
	qtyBySKU := sumLineQty(grn.Deltas())
	out := cloneOrder(po)
	for i := range out.Lines {
		if qty, ok := qtyBySKU[out.Lines[i].SKU]; ok {
			out.Lines[i].Received = math.Min(out.Lines[i].Qty, out.Lines[i].Received+qty)
		}
	}
	out.Fulfillment = Fulfillment(out.Lines)
	return out
}

// ApplyReturnToPO subtracts returned quantities from matching PO lines,
// clamping received at zero.
func ApplyReturnToPO(po PurchaseOrder, ret PurchaseReturn) PurchaseOrder {
	if ret.POID == 0 || ret.POID != po.ID {
		return po
	}
	qtyBySKU := sumLineQty(ret.Deltas())
	out := cloneOrder(po)
	for i := range out.Lines {
		if qty, ok := qtyBySKU[out.Lines[i].SKU]; ok {
			out.Lines[i].Received = math.Max(0, out.Lines[i].Received-qty)
		}
	}
	out.Fulfillment = Fulfillment(out.Lines)
	return out
}

// Fulfillment derives the order status from aggregate ordered and received
// quantities.
func Fulfillment(lines []POLine) FulfillmentStatus {
	var ordered, received float64
	for _, line := range lines {
		ordered += inventory.SanitizeQty(line.Qty)
		received += inventory.SanitizeQty(line.Received)
	}
	switch {
	case received <= 0:
		return FulfillmentOpen
	case received >= ordered:
		return FulfillmentReceived
	default:
		return FulfillmentPartial
	}
}

func cloneOrder(po PurchaseOrder) PurchaseOrder {
	out := po
	out.Lines = make([]POLine, len(po.Lines))
	copy(out.Lines, po.Lines)
	return out
}

func sumLineQty(deltas []inventory.QuantityDelta) map[string]float64 {
	totals := make(map[string]float64, len(deltas))
	for _, d := range deltas {
		if d.SKU == "" {
			continue
		}
		totals[d.SKU] += inventory.SanitizeQty(d.Qty)
	}
	return totals
}
