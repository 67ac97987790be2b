package inventory

import "math"

// The quantity ledger applies receipt and return deltas to a stock snapshot.
// Both operations copy the input: callers decide when and how to commit the
// returned snapshot.

// ApplyReceipt adds received quantities to matching items. Deltas whose SKU
// has no catalog row are skipped; receiving may legitimately include
// non-catalog lines.
func ApplyReceipt(items []Item, deltas []QuantityDelta) []Item {
	bySKU := sumBySKU(deltas)
	out := make([]Item, len(items))
	for i, item := range items {
		if qty, ok := bySKU[item.SKU]; ok {
			item.Stock += qty
		}
		out[i] = item
	}
	return out
}

// ApplyReturn subtracts returned quantities from matching items, clamping
// stock at zero. A shortfall is absorbed, not reported.
func ApplyReturn(items []Item, deltas []QuantityDelta) []Item {
	bySKU := sumBySKU(deltas)
	out := make([]Item, len(items))
	for i, item := range items {
		if qty, ok := bySKU[item.SKU]; ok {
			item.Stock = math.Max(0, item.Stock-qty)
		}
		out[i] = item
	}
	return out
}

// sumBySKU folds deltas into per-SKU totals. Malformed quantities count as 0.
func sumBySKU(deltas []QuantityDelta) map[string]float64 {
	totals := make(map[string]float64, len(deltas))
	for _, d := range deltas {
		if d.SKU == "" {
			continue
		}
		totals[d.SKU] += SanitizeQty(d.Qty)
	}
	return totals
}

// SanitizeQty coerces missing or malformed quantity values to zero.
func SanitizeQty(q float64) float64 {
	if math.IsNaN(q) || math.IsInf(q, 0) || q < 0 {
		return 0
	}
	return q
}
