package procurement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/meridian-backoffice/meridian/internal/inventory"
	"github.com/meridian-backoffice/meridian/internal/masterdata/accounts"
	"github.com/meridian-backoffice/meridian/internal/shared"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetPO(ctx context.Context, id int64) (PurchaseOrder, error)
	GetGRN(ctx context.Context, id int64) (GoodsReceipt, error)
	FindReturn(ctx context.Context, id int64, number string) (*PurchaseReturn, error)
	CreatePO(ctx context.Context, po PurchaseOrder) (PurchaseOrder, error)
	CreateGRN(ctx context.Context, grn GoodsReceipt) (GoodsReceipt, error)
	CreatePurchaseInvoice(ctx context.Context, inv PurchaseInvoice) (PurchaseInvoice, error)
	ListPOs(ctx context.Context, filters shared.ListFilters) ([]PurchaseOrder, error)
	ListGRNs(ctx context.Context, filters shared.ListFilters) ([]GoodsReceipt, error)
	ListReturns(ctx context.Context, filters shared.ListFilters) ([]PurchaseReturn, error)
	ListCredits(ctx context.Context, filters shared.ListFilters) ([]SupplierCredit, error)
	ListPurchaseInvoices(ctx context.Context) ([]PurchaseInvoice, error)
}

// TxRepository exposes the operations applied as one atomic unit.
type TxRepository interface {
	ItemsForUpdate(ctx context.Context, skus []string) ([]inventory.Item, error)
	SaveItemStocks(ctx context.Context, items []inventory.Item) error
	POForUpdate(ctx context.Context, id int64) (PurchaseOrder, error)
	SavePOProgress(ctx context.Context, po PurchaseOrder) error
	UpsertReturn(ctx context.Context, ret PurchaseReturn) (PurchaseReturn, error)
	InsertCredit(ctx context.Context, credit SupplierCredit) error
	SetGRNStatus(ctx context.Context, id int64, status GRNStatus) error
}

// DirectoryPort resolves suppliers against the account directory.
type DirectoryPort interface {
	ResolveSupplier(ctx context.Context, id int64, fallbackName string) (accounts.Account, bool, error)
}

// AuditPort reused from shared.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service orchestrates procurement flows.
type Service struct {
	repo        RepositoryPort
	directory   DirectoryPort
	audit       AuditPort
	idempotency *shared.IdempotencyStore
	locker      *shared.IdentityLocker
	logger      *slog.Logger
}

// NewService constructs procurement service.
func NewService(repo RepositoryPort, directory DirectoryPort, audit AuditPort, idem *shared.IdempotencyStore, locker *shared.IdentityLocker, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, directory: directory, audit: audit, idempotency: idem, locker: locker, logger: logger}
}

// CreatePOInput describes creation payload.
type CreatePOInput struct {
	Number       string
	SupplierID   int64
	SupplierName string
	ExpectedAt   time.Time
	Note         string
	Lines        []POLineInput
}

// POLineInput describes an ordered line.
type POLineInput struct {
	SKU   string
	Qty   float64
	Price decimal.Decimal
}

// CreateGRNInput describes GRN creation.
type CreateGRNInput struct {
	Number     string
	POID       int64
	SupplierID int64
	ReceivedAt time.Time
	Note       string
	Lines      []ReceiptLineInput
}

// ReceiptLineInput describes a received line.
type ReceiptLineInput struct {
	SKU   string
	Qty   float64
	Price decimal.Decimal
}

// PurchaseInvoiceInput describes a supplier bill.
type PurchaseInvoiceInput struct {
	Number       string
	SupplierID   int64
	SupplierName string
	IssuedAt     time.Time
	SubTotal     decimal.Decimal
	NetAmount    decimal.Decimal
	Total        decimal.Decimal
	Mode         string
	Note         string
	Lines        []PurchaseInvoiceLine
}

// ReturnResult reports the outcome of a return submission together with the
// post-application snapshots.
type ReturnResult struct {
	Applied bool
	Message string
	Items   []inventory.Item
	PO      *PurchaseOrder
	Credit  *SupplierCredit
}

// CreatePurchaseOrder persists a PO header and lines.
func (s *Service) CreatePurchaseOrder(ctx context.Context, input CreatePOInput) (PurchaseOrder, error) {
	if len(input.Lines) == 0 {
		return PurchaseOrder{}, fmt.Errorf("%w: minimal 1 line", ErrValidation)
	}
	if input.Number == "" {
		input.Number = generateNumber("PO")
	}
	po := PurchaseOrder{
		Number:       input.Number,
		SupplierID:   input.SupplierID,
		SupplierName: input.SupplierName,
		Fulfillment:  FulfillmentOpen,
		ExpectedAt:   input.ExpectedAt,
		Note:         input.Note,
	}
	for _, line := range input.Lines {
		if line.SKU == "" || line.Qty <= 0 {
			return PurchaseOrder{}, ErrValidation
		}
		po.Lines = append(po.Lines, POLine{SKU: line.SKU, Qty: line.Qty, Price: line.Price})
	}
	created, err := s.repo.CreatePO(ctx, po)
	if err != nil {
		return PurchaseOrder{}, err
	}
	s.recordAudit(ctx, "PO_CREATE", created.ID, map[string]any{"number": created.Number})
	return created, nil
}

// GetPurchaseOrder loads a PO with lines.
func (s *Service) GetPurchaseOrder(ctx context.Context, id int64) (PurchaseOrder, error) {
	return s.repo.GetPO(ctx, id)
}

// ListPurchaseOrders returns a PO page.
func (s *Service) ListPurchaseOrders(ctx context.Context, filters shared.ListFilters) ([]PurchaseOrder, error) {
	return s.repo.ListPOs(ctx, filters)
}

// CreateGoodsReceipt inserts a draft GRN.
func (s *Service) CreateGoodsReceipt(ctx context.Context, input CreateGRNInput) (GoodsReceipt, error) {
	if len(input.Lines) == 0 {
		return GoodsReceipt{}, ErrValidation
	}
	if input.Number == "" {
		input.Number = generateNumber("GRN")
	}
	if input.SupplierID == 0 && input.POID != 0 {
		po, err := s.repo.GetPO(ctx, input.POID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return GoodsReceipt{}, err
		}
		input.SupplierID = po.SupplierID
	}
	grn := GoodsReceipt{
		Number:     input.Number,
		POID:       input.POID,
		SupplierID: input.SupplierID,
		Status:     GRNStatusDraft,
		ReceivedAt: defaultTime(input.ReceivedAt),
		Note:       input.Note,
	}
	for _, line := range input.Lines {
		if line.SKU == "" {
			return GoodsReceipt{}, ErrValidation
		}
		grn.Lines = append(grn.Lines, ReceiptLine{SKU: line.SKU, Qty: inventory.SanitizeQty(line.Qty), Price: line.Price})
	}
	created, err := s.repo.CreateGRN(ctx, grn)
	if err != nil {
		return GoodsReceipt{}, err
	}
	s.recordAudit(ctx, "GRN_CREATE", created.ID, map[string]any{"number": created.Number})
	return created, nil
}

// ListGoodsReceipts returns a GRN page.
func (s *Service) ListGoodsReceipts(ctx context.Context, filters shared.ListFilters) ([]GoodsReceipt, error) {
	return s.repo.ListGRNs(ctx, filters)
}

// PostGoodsReceipt applies a draft GRN to stock and to the linked purchase
// order as one atomic unit, returning the post-application snapshots.
func (s *Service) PostGoodsReceipt(ctx context.Context, grnID int64) ([]inventory.Item, *PurchaseOrder, error) {
	grn, err := s.repo.GetGRN(ctx, grnID)
	if err != nil {
		return nil, nil, err
	}
	if grn.Status != GRNStatusDraft {
		return nil, nil, ErrInvalidState
	}

	key := fmt.Sprintf("GRN:%s", grn.Number)
	insertedKey := false
	if s.idempotency != nil {
		if err := s.idempotency.CheckAndInsert(ctx, key, "procurement.grn"); err != nil {
			return nil, nil, err
		}
		insertedKey = true
	}

	var (
		items   []inventory.Item
		orderPt *PurchaseOrder
	)
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.SetGRNStatus(ctx, grn.ID, GRNStatusPosted); err != nil {
			return err
		}
		snapshot, err := tx.ItemsForUpdate(ctx, lineSKUs(grn.Deltas()))
		if err != nil {
			return err
		}
		items = inventory.ApplyReceipt(snapshot, grn.Deltas())
		if err := tx.SaveItemStocks(ctx, items); err != nil {
			return err
		}
		if grn.POID != 0 {
			po, err := tx.POForUpdate(ctx, grn.POID)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					// Dangling PO link is tolerated; the stock part still applies.
					return nil
				}
				return err
			}
			updated := ApplyReceiptToPO(po, grn)
			if err := tx.SavePOProgress(ctx, updated); err != nil {
				return err
			}
			orderPt = &updated
		}
		return nil
	})
	if err != nil {
		if insertedKey {
			_ = s.idempotency.Delete(ctx, key)
		}
		return nil, nil, err
	}
	s.recordAudit(ctx, "GRN_POST", grn.ID, map[string]any{"number": grn.Number})
	return items, orderPt, nil
}

// ProcessReturn applies a purchase return at most once per identity. A
// resubmission of a processed return is a reported no-op, not an error.
func (s *Service) ProcessReturn(ctx context.Context, ret PurchaseReturn) (ReturnResult, error) {
	if !ret.HasIdentity() {
		return ReturnResult{}, ErrNoReturnIdentity
	}

	release, err := s.locker.Acquire(ctx, shared.ReturnLockKey(returnIdentity(ret)))
	if err != nil {
		return ReturnResult{}, err
	}
	defer release()

	existing, err := s.repo.FindReturn(ctx, ret.ID, ret.ReturnNumber)
	if err != nil {
		return ReturnResult{}, err
	}
	if existing != nil && existing.Processed {
		return ReturnResult{Applied: false, Message: "Return already processed"}, nil
	}

	supplier, mismatch, err := s.resolveSupplier(ctx, ret)
	if err != nil {
		return ReturnResult{}, err
	}
	if mismatch {
		s.logger.Warn("return supplier name disagrees with directory entry",
			slog.Int64("supplier_id", ret.SupplierID),
			slog.String("given_name", ret.SupplierName),
			slog.String("directory_name", supplier.Name))
	}

	if ret.ReturnNumber == "" {
		ret.ReturnNumber = generateNumber("PRN")
	}
	ret.Processed = true
	ret.ReturnedAt = defaultTime(ret.ReturnedAt)

	result := ReturnResult{Applied: true}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		stored, err := tx.UpsertReturn(ctx, ret)
		if err != nil {
			return err
		}
		ret = stored

		snapshot, err := tx.ItemsForUpdate(ctx, lineSKUs(ret.Deltas()))
		if err != nil {
			return err
		}
		result.Items = inventory.ApplyReturn(snapshot, ret.Deltas())
		if err := tx.SaveItemStocks(ctx, result.Items); err != nil {
			return err
		}

		if ret.POID != 0 {
			po, err := tx.POForUpdate(ctx, ret.POID)
			if err != nil && !errors.Is(err, ErrNotFound) {
				return err
			}
			if err == nil {
				updated := ApplyReturnToPO(po, ret)
				if err := tx.SavePOProgress(ctx, updated); err != nil {
					return err
				}
				result.PO = &updated
			}
		}

		credit := SupplierCredit{
			ID:           uuid.NewString(),
			SupplierID:   supplier.ID,
			SupplierName: supplier.Name,
			Amount:       ret.TotalAmount(),
			IssuedAt:     ret.ReturnedAt,
			Note:         fmt.Sprintf("Credit note for purchase return %s", ret.ReturnNumber),
		}
		if err := tx.InsertCredit(ctx, credit); err != nil {
			return err
		}
		result.Credit = &credit
		return nil
	})
	if err != nil {
		return ReturnResult{}, err
	}

	s.recordAudit(ctx, "RETURN_PROCESS", ret.ID, map[string]any{
		"return_number": ret.ReturnNumber,
		"credit":        result.Credit.Amount.String(),
	})
	return result, nil
}

// ListReturns returns a purchase-return page.
func (s *Service) ListReturns(ctx context.Context, filters shared.ListFilters) ([]PurchaseReturn, error) {
	return s.repo.ListReturns(ctx, filters)
}

// ListSupplierCredits returns issued credit notes.
func (s *Service) ListSupplierCredits(ctx context.Context, filters shared.ListFilters) ([]SupplierCredit, error) {
	return s.repo.ListCredits(ctx, filters)
}

// CreatePurchaseInvoice records a supplier bill.
func (s *Service) CreatePurchaseInvoice(ctx context.Context, input PurchaseInvoiceInput) (PurchaseInvoice, error) {
	if input.SupplierID == 0 && input.SupplierName == "" {
		return PurchaseInvoice{}, ErrValidation
	}
	if input.Number == "" {
		input.Number = generateNumber("PINV")
	}
	inv := PurchaseInvoice{
		Number:       input.Number,
		SupplierID:   input.SupplierID,
		SupplierName: input.SupplierName,
		IssuedAt:     defaultTime(input.IssuedAt),
		SubTotal:     input.SubTotal,
		NetAmount:    input.NetAmount,
		Total:        input.Total,
		Mode:         input.Mode,
		Note:         input.Note,
		Lines:        input.Lines,
	}
	created, err := s.repo.CreatePurchaseInvoice(ctx, inv)
	if err != nil {
		return PurchaseInvoice{}, err
	}
	s.recordAudit(ctx, "PINV_CREATE", created.ID, map[string]any{"number": created.Number})
	return created, nil
}

// ListPurchaseInvoices lists supplier bills.
func (s *Service) ListPurchaseInvoices(ctx context.Context) ([]PurchaseInvoice, error) {
	return s.repo.ListPurchaseInvoices(ctx)
}

func (s *Service) resolveSupplier(ctx context.Context, ret PurchaseReturn) (accounts.Account, bool, error) {
	if s.directory == nil {
		return accounts.Account{ID: ret.SupplierID, Name: ret.SupplierName}, false, nil
	}
	supplier, mismatch, err := s.directory.ResolveSupplier(ctx, ret.SupplierID, ret.SupplierName)
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			return accounts.Account{ID: ret.SupplierID, Name: ret.SupplierName}, false, nil
		}
		return accounts.Account{}, false, err
	}
	return supplier, mismatch, nil
}

func (s *Service) recordAudit(ctx context.Context, action string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{Action: action, Entity: "procurement", EntityID: fmt.Sprintf("%d", entityID), Meta: meta})
}

func returnIdentity(ret PurchaseReturn) string {
	return fmt.Sprintf("%d:%s", ret.ID, ret.ReturnNumber)
}

func lineSKUs(deltas []inventory.QuantityDelta) []string {
	seen := make(map[string]struct{}, len(deltas))
	skus := make([]string, 0, len(deltas))
	for _, d := range deltas {
		if d.SKU == "" {
			continue
		}
		if _, ok := seen[d.SKU]; ok {
			continue
		}
		seen[d.SKU] = struct{}{}
		skus = append(skus, d.SKU)
	}
	return skus
}

func generateNumber(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

func defaultTime(value time.Time) time.Time {
	if value.IsZero() {
		return time.Now()
	}
	return value
}
