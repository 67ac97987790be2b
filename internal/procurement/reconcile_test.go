package procurement

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridian-backoffice/meridian/internal/inventory"
)

func TestApplyReceiptToPOPartialThenComplete(t *testing.T) {
	po := PurchaseOrder{
		ID:          1,
		Fulfillment: FulfillmentOpen,
		Lines:       []POLine{{ID: 10, POID: 1, SKU: "WIDGET", Qty: 5}},
	}

	first := ApplyReceiptToPO(po, GoodsReceipt{POID: 1, Lines: []ReceiptLine{{SKU: "WIDGET", Qty: 2}}})
	require.Equal(t, 2.0, first.Lines[0].Received)
	require.Equal(t, FulfillmentPartial, first.Fulfillment)

	second := ApplyReceiptToPO(first, GoodsReceipt{POID: 1, Lines: []ReceiptLine{{SKU: "WIDGET", Qty: 3}}})
	require.Equal(t, 5.0, second.Lines[0].Received)
	require.Equal(t, FulfillmentReceived, second.Fulfillment)
}

func TestApplyReceiptToPOCapsAtOrdered(t *testing.T) {
	po := PurchaseOrder{ID: 1, Lines: []POLine{{SKU: "WIDGET", Qty: 5}}}

	got := ApplyReceiptToPO(po, GoodsReceipt{POID: 1, Lines: []ReceiptLine{{SKU: "WIDGET", Qty: 12}}})

	require.Equal(t, 5.0, got.Lines[0].Received)
	require.Equal(t, FulfillmentReceived, got.Fulfillment)
}

func TestApplyReturnToPOClampsAtZero(t *testing.T) {
	po := PurchaseOrder{
		ID:          1,
		Fulfillment: FulfillmentPartial,
		Lines:       []POLine{{SKU: "WIDGET", Qty: 5, Received: 2}},
	}

	got := ApplyReturnToPO(po, PurchaseReturn{POID: 1, Lines: []ReturnLine{{SKU: "WIDGET", Qty: 9}}})

	require.Equal(t, 0.0, got.Lines[0].Received)
	require.Equal(t, FulfillmentOpen, got.Fulfillment)
}

func TestApplyReceiptToPOIgnoresUnlinkedReceipt(t *testing.T) {
	po := PurchaseOrder{ID: 1, Lines: []POLine{{SKU: "WIDGET", Qty: 5, Received: 1}}}

	got := ApplyReceiptToPO(po, GoodsReceipt{POID: 99, Lines: []ReceiptLine{{SKU: "WIDGET", Qty: 4}}})

	require.Equal(t, po, got)
}

func TestApplyReceiptToPODoesNotMutateInput(t *testing.T) {
	po := PurchaseOrder{ID: 1, Lines: []POLine{{SKU: "WIDGET", Qty: 5}}}

	_ = ApplyReceiptToPO(po, GoodsReceipt{POID: 1, Lines: []ReceiptLine{{SKU: "WIDGET", Qty: 3}}})

	require.Equal(t, 0.0, po.Lines[0].Received)
	require.Equal(t, FulfillmentStatus(""), po.Fulfillment)
}

func TestApplyReceiptAndReturnSymmetry(t *testing.T) {
	items := []inventory.Item{{SKU: "WIDGET", Stock: 10}}
	po := PurchaseOrder{ID: 1, Lines: []POLine{{SKU: "WIDGET", Qty: 8, Received: 2}}}

	grn := GoodsReceipt{POID: 1, Lines: []ReceiptLine{{SKU: "WIDGET", Qty: 3}}}
	itemsAfter, poAfter := ApplyReceipt(items, po, grn)
	require.Equal(t, 13.0, itemsAfter[0].Stock)
	require.Equal(t, 5.0, poAfter.Lines[0].Received)

	ret := PurchaseReturn{POID: 1, Lines: []ReturnLine{{SKU: "WIDGET", Qty: 3}}}
	itemsBack, poBack := ApplyReturn(itemsAfter, poAfter, ret)
	require.Equal(t, items[0].Stock, itemsBack[0].Stock)
	require.Equal(t, po.Lines[0].Received, poBack.Lines[0].Received)
}

func TestFulfillmentDerivation(t *testing.T) {
	cases := []struct {
		name  string
		lines []POLine
		want  FulfillmentStatus
	}{
		{"nothing received", []POLine{{Qty: 5}, {Qty: 3}}, FulfillmentOpen},
		{"some received", []POLine{{Qty: 5, Received: 5}, {Qty: 3}}, FulfillmentPartial},
		{"all received", []POLine{{Qty: 5, Received: 5}, {Qty: 3, Received: 3}}, FulfillmentReceived},
		{"empty order", nil, FulfillmentOpen},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Fulfillment(tc.lines))
		})
	}
}

func TestFulfillmentIgnoresMalformedQuantities(t *testing.T) {
	lines := []POLine{{Qty: 5, Received: -3}, {Qty: 2, Received: 2}}
	require.Equal(t, FulfillmentPartial, Fulfillment(lines))
}
