package procurement

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/meridian-backoffice/meridian/internal/inventory"
	"github.com/meridian-backoffice/meridian/internal/masterdata/accounts"
	"github.com/meridian-backoffice/meridian/internal/shared"
)

type memoryProcRepo struct {
	items    map[string]inventory.Item
	pos      map[int64]PurchaseOrder
	grns     map[int64]GoodsReceipt
	returns  []PurchaseReturn
	credits  []SupplierCredit
	invoices []PurchaseInvoice
	nextID   int64
}

func newMemoryProcRepo() *memoryProcRepo {
	return &memoryProcRepo{
		items:  make(map[string]inventory.Item),
		pos:    make(map[int64]PurchaseOrder),
		grns:   make(map[int64]GoodsReceipt),
		nextID: 1,
	}
}

func (m *memoryProcRepo) id() int64 {
	id := m.nextID
	m.nextID++
	return id
}

func (m *memoryProcRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, m)
}

func (m *memoryProcRepo) CreatePO(_ context.Context, po PurchaseOrder) (PurchaseOrder, error) {
	po.ID = m.id()
	for i := range po.Lines {
		po.Lines[i].ID = m.id()
		po.Lines[i].POID = po.ID
	}
	m.pos[po.ID] = po
	return po, nil
}

func (m *memoryProcRepo) GetPO(_ context.Context, id int64) (PurchaseOrder, error) {
	po, ok := m.pos[id]
	if !ok {
		return PurchaseOrder{}, ErrNotFound
	}
	return cloneOrder(po), nil
}

func (m *memoryProcRepo) CreateGRN(_ context.Context, grn GoodsReceipt) (GoodsReceipt, error) {
	grn.ID = m.id()
	m.grns[grn.ID] = grn
	return grn, nil
}

func (m *memoryProcRepo) GetGRN(_ context.Context, id int64) (GoodsReceipt, error) {
	grn, ok := m.grns[id]
	if !ok {
		return GoodsReceipt{}, ErrNotFound
	}
	return grn, nil
}

func (m *memoryProcRepo) FindReturn(_ context.Context, id int64, number string) (*PurchaseReturn, error) {
	for i := range m.returns {
		r := m.returns[i]
		if (id != 0 && r.ID == id) || (number != "" && r.ReturnNumber == number) {
			out := r
			return &out, nil
		}
	}
	return nil, nil
}

func (m *memoryProcRepo) CreatePurchaseInvoice(_ context.Context, inv PurchaseInvoice) (PurchaseInvoice, error) {
	inv.ID = m.id()
	m.invoices = append(m.invoices, inv)
	return inv, nil
}

func (m *memoryProcRepo) ListPOs(_ context.Context, _ shared.ListFilters) ([]PurchaseOrder, error) {
	out := make([]PurchaseOrder, 0, len(m.pos))
	for _, po := range m.pos {
		out = append(out, po)
	}
	return out, nil
}

func (m *memoryProcRepo) ListGRNs(_ context.Context, _ shared.ListFilters) ([]GoodsReceipt, error) {
	out := make([]GoodsReceipt, 0, len(m.grns))
	for _, grn := range m.grns {
		out = append(out, grn)
	}
	return out, nil
}

func (m *memoryProcRepo) ListReturns(_ context.Context, _ shared.ListFilters) ([]PurchaseReturn, error) {
	return append([]PurchaseReturn(nil), m.returns...), nil
}

func (m *memoryProcRepo) ListCredits(_ context.Context, _ shared.ListFilters) ([]SupplierCredit, error) {
	return append([]SupplierCredit(nil), m.credits...), nil
}

func (m *memoryProcRepo) ListPurchaseInvoices(_ context.Context) ([]PurchaseInvoice, error) {
	return append([]PurchaseInvoice(nil), m.invoices...), nil
}

func (m *memoryProcRepo) ItemsForUpdate(_ context.Context, skus []string) ([]inventory.Item, error) {
	var out []inventory.Item
	for _, sku := range skus {
		if it, ok := m.items[sku]; ok {
			out = append(out, it)
		}
	}
	return out, nil
}

func (m *memoryProcRepo) SaveItemStocks(_ context.Context, items []inventory.Item) error {
	for _, it := range items {
		stored := m.items[it.SKU]
		stored.SKU = it.SKU
		stored.Stock = it.Stock
		m.items[it.SKU] = stored
	}
	return nil
}

func (m *memoryProcRepo) POForUpdate(ctx context.Context, id int64) (PurchaseOrder, error) {
	return m.GetPO(ctx, id)
}

func (m *memoryProcRepo) SavePOProgress(_ context.Context, po PurchaseOrder) error {
	m.pos[po.ID] = po
	return nil
}

func (m *memoryProcRepo) UpsertReturn(ctx context.Context, ret PurchaseReturn) (PurchaseReturn, error) {
	existing, _ := m.FindReturn(ctx, ret.ID, ret.ReturnNumber)
	if existing != nil {
		ret.ID = existing.ID
		for i := range m.returns {
			if m.returns[i].ID == ret.ID {
				m.returns[i] = ret
			}
		}
		return ret, nil
	}
	if ret.ID == 0 {
		ret.ID = m.id()
	}
	m.returns = append(m.returns, ret)
	return ret, nil
}

func (m *memoryProcRepo) InsertCredit(_ context.Context, credit SupplierCredit) error {
	m.credits = append(m.credits, credit)
	return nil
}

func (m *memoryProcRepo) SetGRNStatus(_ context.Context, id int64, status GRNStatus) error {
	grn, ok := m.grns[id]
	if !ok {
		return ErrNotFound
	}
	grn.Status = status
	m.grns[id] = grn
	return nil
}

type memoryDirectory struct {
	suppliers map[int64]accounts.Account
}

func (d *memoryDirectory) ResolveSupplier(_ context.Context, id int64, fallbackName string) (accounts.Account, bool, error) {
	if acc, ok := d.suppliers[id]; ok {
		mismatch := fallbackName != "" && !strings.EqualFold(acc.Name, fallbackName)
		return acc, mismatch, nil
	}
	return accounts.Account{Name: fallbackName, Type: accounts.TypeSupplier}, false, nil
}

func newProcService(repo *memoryProcRepo, dir DirectoryPort) *Service {
	return NewService(repo, dir, nil, nil, nil, slog.Default())
}

func TestProcessReturnAppliesOnce(t *testing.T) {
	repo := newMemoryProcRepo()
	repo.items["WIDGET"] = inventory.Item{SKU: "WIDGET", Stock: 10}
	svc := newProcService(repo, nil)

	ret := PurchaseReturn{
		ReturnNumber: "PRN-100",
		SupplierID:   7,
		SupplierName: "Acme Traders",
		Lines:        []ReturnLine{{SKU: "WIDGET", Qty: 4, Price: decimal.NewFromInt(25)}},
	}

	first, err := svc.ProcessReturn(context.Background(), ret)
	require.NoError(t, err)
	require.True(t, first.Applied)
	require.Equal(t, 6.0, repo.items["WIDGET"].Stock)
	require.NotNil(t, first.Credit)
	require.True(t, first.Credit.Amount.Equal(decimal.NewFromInt(100)))

	second, err := svc.ProcessReturn(context.Background(), ret)
	require.NoError(t, err)
	require.False(t, second.Applied)
	require.Equal(t, "Return already processed", second.Message)
	require.Equal(t, 6.0, repo.items["WIDGET"].Stock)
	require.Len(t, repo.credits, 1)
}

func TestProcessReturnMatchesEitherIdentityField(t *testing.T) {
	repo := newMemoryProcRepo()
	repo.items["WIDGET"] = inventory.Item{SKU: "WIDGET", Stock: 10}
	svc := newProcService(repo, nil)

	first, err := svc.ProcessReturn(context.Background(), PurchaseReturn{
		ID:           42,
		ReturnNumber: "PRN-42",
		Lines:        []ReturnLine{{SKU: "WIDGET", Qty: 1}},
	})
	require.NoError(t, err)
	require.True(t, first.Applied)

	byNumber, err := svc.ProcessReturn(context.Background(), PurchaseReturn{
		ReturnNumber: "PRN-42",
		Lines:        []ReturnLine{{SKU: "WIDGET", Qty: 1}},
	})
	require.NoError(t, err)
	require.False(t, byNumber.Applied)

	byID, err := svc.ProcessReturn(context.Background(), PurchaseReturn{
		ID:    42,
		Lines: []ReturnLine{{SKU: "WIDGET", Qty: 1}},
	})
	require.NoError(t, err)
	require.False(t, byID.Applied)
	require.Equal(t, 9.0, repo.items["WIDGET"].Stock)
}

func TestProcessReturnRejectsMissingIdentity(t *testing.T) {
	svc := newProcService(newMemoryProcRepo(), nil)

	_, err := svc.ProcessReturn(context.Background(), PurchaseReturn{
		Lines: []ReturnLine{{SKU: "WIDGET", Qty: 1}},
	})
	require.ErrorIs(t, err, ErrNoReturnIdentity)
}

func TestProcessReturnClampsStockAtZero(t *testing.T) {
	repo := newMemoryProcRepo()
	repo.items["WIDGET"] = inventory.Item{SKU: "WIDGET", Stock: 10}
	svc := newProcService(repo, nil)

	result, err := svc.ProcessReturn(context.Background(), PurchaseReturn{
		ReturnNumber: "PRN-7",
		Lines:        []ReturnLine{{SKU: "WIDGET", Qty: 15}},
	})
	require.NoError(t, err)
	require.True(t, result.Applied)
	require.Equal(t, 0.0, repo.items["WIDGET"].Stock)
}

func TestProcessReturnPrefersDirectorySupplierByID(t *testing.T) {
	repo := newMemoryProcRepo()
	repo.items["WIDGET"] = inventory.Item{SKU: "WIDGET", Stock: 5}
	dir := &memoryDirectory{suppliers: map[int64]accounts.Account{
		7: {ID: 7, Name: "Acme Traders", Type: accounts.TypeSupplier},
	}}
	svc := newProcService(repo, dir)

	result, err := svc.ProcessReturn(context.Background(), PurchaseReturn{
		ReturnNumber: "PRN-9",
		SupplierID:   7,
		SupplierName: "Akme Tader",
		Lines:        []ReturnLine{{SKU: "WIDGET", Qty: 1, Price: decimal.NewFromInt(10)}},
	})
	require.NoError(t, err)
	require.Equal(t, "Acme Traders", result.Credit.SupplierName)
	require.Equal(t, int64(7), result.Credit.SupplierID)
}

func TestProcessReturnUpdatesLinkedPO(t *testing.T) {
	repo := newMemoryProcRepo()
	repo.items["WIDGET"] = inventory.Item{SKU: "WIDGET", Stock: 10}
	svc := newProcService(repo, nil)

	po, err := svc.CreatePurchaseOrder(context.Background(), CreatePOInput{
		SupplierID: 7,
		Lines:      []POLineInput{{SKU: "WIDGET", Qty: 5}},
	})
	require.NoError(t, err)
	stored := repo.pos[po.ID]
	stored.Lines[0].Received = 5
	stored.Fulfillment = FulfillmentReceived
	repo.pos[po.ID] = stored

	result, err := svc.ProcessReturn(context.Background(), PurchaseReturn{
		ReturnNumber: "PRN-11",
		POID:         po.ID,
		Lines:        []ReturnLine{{SKU: "WIDGET", Qty: 2}},
	})
	require.NoError(t, err)
	require.NotNil(t, result.PO)
	require.Equal(t, 3.0, result.PO.Lines[0].Received)
	require.Equal(t, FulfillmentPartial, result.PO.Fulfillment)
}

func TestPostGoodsReceiptAppliesStockAndPO(t *testing.T) {
	repo := newMemoryProcRepo()
	repo.items["WIDGET"] = inventory.Item{SKU: "WIDGET", Stock: 1}
	svc := newProcService(repo, nil)

	po, err := svc.CreatePurchaseOrder(context.Background(), CreatePOInput{
		SupplierID: 7,
		Lines:      []POLineInput{{SKU: "WIDGET", Qty: 5}},
	})
	require.NoError(t, err)

	grn, err := svc.CreateGoodsReceipt(context.Background(), CreateGRNInput{
		POID:  po.ID,
		Lines: []ReceiptLineInput{{SKU: "WIDGET", Qty: 2}},
	})
	require.NoError(t, err)
	require.Equal(t, GRNStatusDraft, grn.Status)
	require.Equal(t, po.SupplierID, grn.SupplierID)

	items, updated, err := svc.PostGoodsReceipt(context.Background(), grn.ID)
	require.NoError(t, err)
	require.Equal(t, 3.0, items[0].Stock)
	require.NotNil(t, updated)
	require.Equal(t, 2.0, updated.Lines[0].Received)
	require.Equal(t, FulfillmentPartial, updated.Fulfillment)

	_, _, err = svc.PostGoodsReceipt(context.Background(), grn.ID)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestCreatePurchaseOrderRequiresLines(t *testing.T) {
	svc := newProcService(newMemoryProcRepo(), nil)

	_, err := svc.CreatePurchaseOrder(context.Background(), CreatePOInput{SupplierID: 1})
	require.ErrorIs(t, err, ErrValidation)
}
