package procurement

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-backoffice/meridian/internal/inventory"
	"github.com/meridian-backoffice/meridian/internal/shared"
)

// Repository provides PostgreSQL backed persistence for procurement.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// WithTx executes fn inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(ctx, &txRepo{db: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// --- Purchase orders ---

// CreatePO inserts a PO header with lines.
func (r *Repository) CreatePO(ctx context.Context, po PurchaseOrder) (PurchaseOrder, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO purchase_orders (number, supplier_id, supplier_name, fulfillment, expected_at, note, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		 RETURNING id, created_at, updated_at`,
		po.Number, po.SupplierID, po.SupplierName, po.Fulfillment, po.ExpectedAt, po.Note,
	).Scan(&po.ID, &po.CreatedAt, &po.UpdatedAt)
	if err != nil {
		return PurchaseOrder{}, err
	}
	for i := range po.Lines {
		po.Lines[i].POID = po.ID
		err := r.pool.QueryRow(ctx,
			`INSERT INTO purchase_order_lines (po_id, sku, qty, received, price)
			 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			po.ID, po.Lines[i].SKU, po.Lines[i].Qty, po.Lines[i].Received, po.Lines[i].Price,
		).Scan(&po.Lines[i].ID)
		if err != nil {
			return PurchaseOrder{}, err
		}
	}
	return po, nil
}

// GetPO loads a PO with lines.
func (r *Repository) GetPO(ctx context.Context, id int64) (PurchaseOrder, error) {
	return getPO(ctx, r.pool, id, "")
}

// ListPOs returns a PO page, newest first.
func (r *Repository) ListPOs(ctx context.Context, filters shared.ListFilters) ([]PurchaseOrder, error) {
	filters.Normalize()
	rows, err := r.pool.Query(ctx,
		`SELECT id, number, supplier_id, supplier_name, fulfillment, expected_at, note, created_at, updated_at
		 FROM purchase_orders
		 WHERE ($1 = '' OR number ILIKE '%'||$1||'%' OR supplier_name ILIKE '%'||$1||'%')
		 ORDER BY id DESC LIMIT $2 OFFSET $3`,
		filters.Search, filters.Limit, filters.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PurchaseOrder
	for rows.Next() {
		var po PurchaseOrder
		if err := rows.Scan(&po.ID, &po.Number, &po.SupplierID, &po.SupplierName, &po.Fulfillment, &po.ExpectedAt, &po.Note, &po.CreatedAt, &po.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, po)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		lines, err := loadPOLines(ctx, r.pool, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Lines = lines
	}
	return out, nil
}

func getPO(ctx context.Context, db dbtx, id int64, lock string) (PurchaseOrder, error) {
	var po PurchaseOrder
	query := `SELECT id, number, supplier_id, supplier_name, fulfillment, expected_at, note, created_at, updated_at
		 FROM purchase_orders WHERE id = $1` + lock
	err := db.QueryRow(ctx, query, id).Scan(
		&po.ID, &po.Number, &po.SupplierID, &po.SupplierName, &po.Fulfillment, &po.ExpectedAt, &po.Note, &po.CreatedAt, &po.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return PurchaseOrder{}, ErrNotFound
	}
	if err != nil {
		return PurchaseOrder{}, err
	}
	po.Lines, err = loadPOLines(ctx, db, id)
	return po, err
}

func loadPOLines(ctx context.Context, db dbtx, poID int64) ([]POLine, error) {
	rows, err := db.Query(ctx,
		`SELECT id, po_id, sku, qty, received, price FROM purchase_order_lines WHERE po_id = $1 ORDER BY id`, poID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []POLine
	for rows.Next() {
		var l POLine
		if err := rows.Scan(&l.ID, &l.POID, &l.SKU, &l.Qty, &l.Received, &l.Price); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// --- Goods receipts ---

// CreateGRN inserts a GRN header with lines.
func (r *Repository) CreateGRN(ctx context.Context, grn GoodsReceipt) (GoodsReceipt, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO goods_receipts (number, po_id, supplier_id, status, received_at, note, created_at)
		 VALUES ($1, NULLIF($2, 0), $3, $4, $5, $6, NOW())
		 RETURNING id, created_at`,
		grn.Number, grn.POID, grn.SupplierID, grn.Status, grn.ReceivedAt, grn.Note,
	).Scan(&grn.ID, &grn.CreatedAt)
	if err != nil {
		return GoodsReceipt{}, err
	}
	for _, line := range grn.Lines {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO goods_receipt_lines (grn_id, sku, qty, price) VALUES ($1, $2, $3, $4)`,
			grn.ID, line.SKU, line.Qty, line.Price)
		if err != nil {
			return GoodsReceipt{}, err
		}
	}
	return grn, nil
}

// GetGRN loads a GRN with lines.
func (r *Repository) GetGRN(ctx context.Context, id int64) (GoodsReceipt, error) {
	var grn GoodsReceipt
	err := r.pool.QueryRow(ctx,
		`SELECT id, number, COALESCE(po_id, 0), supplier_id, status, received_at, note, created_at
		 FROM goods_receipts WHERE id = $1`, id).Scan(
		&grn.ID, &grn.Number, &grn.POID, &grn.SupplierID, &grn.Status, &grn.ReceivedAt, &grn.Note, &grn.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return GoodsReceipt{}, ErrNotFound
	}
	if err != nil {
		return GoodsReceipt{}, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT sku, qty, price FROM goods_receipt_lines WHERE grn_id = $1 ORDER BY id`, id)
	if err != nil {
		return GoodsReceipt{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var l ReceiptLine
		if err := rows.Scan(&l.SKU, &l.Qty, &l.Price); err != nil {
			return GoodsReceipt{}, err
		}
		grn.Lines = append(grn.Lines, l)
	}
	return grn, rows.Err()
}

// ListGRNs returns a GRN page, newest first.
func (r *Repository) ListGRNs(ctx context.Context, filters shared.ListFilters) ([]GoodsReceipt, error) {
	filters.Normalize()
	rows, err := r.pool.Query(ctx,
		`SELECT id, number, COALESCE(po_id, 0), supplier_id, status, received_at, note, created_at
		 FROM goods_receipts
		 WHERE ($1 = '' OR number ILIKE '%'||$1||'%')
		 ORDER BY id DESC LIMIT $2 OFFSET $3`,
		filters.Search, filters.Limit, filters.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GoodsReceipt
	for rows.Next() {
		var grn GoodsReceipt
		if err := rows.Scan(&grn.ID, &grn.Number, &grn.POID, &grn.SupplierID, &grn.Status, &grn.ReceivedAt, &grn.Note, &grn.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, grn)
	}
	return out, rows.Err()
}

// --- Purchase returns ---

// FindReturn looks a return up by either half of its identity pair.
func (r *Repository) FindReturn(ctx context.Context, id int64, number string) (*PurchaseReturn, error) {
	ret, err := findReturn(ctx, r.pool, id, number)
	if err != nil {
		return nil, err
	}
	return ret, nil
}

func findReturn(ctx context.Context, db dbtx, id int64, number string) (*PurchaseReturn, error) {
	var ret PurchaseReturn
	err := db.QueryRow(ctx,
		`SELECT id, return_number, COALESCE(po_id, 0), supplier_id, supplier_name, returned_at, processed, note, created_at
		 FROM purchase_returns
		 WHERE ($1 <> 0 AND id = $1) OR ($2 <> '' AND return_number = $2)
		 LIMIT 1`, id, number).Scan(
		&ret.ID, &ret.ReturnNumber, &ret.POID, &ret.SupplierID, &ret.SupplierName, &ret.ReturnedAt, &ret.Processed, &ret.Note, &ret.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	ret.Lines, err = loadReturnLines(ctx, db, ret.ID)
	if err != nil {
		return nil, err
	}
	return &ret, nil
}

func loadReturnLines(ctx context.Context, db dbtx, returnID int64) ([]ReturnLine, error) {
	rows, err := db.Query(ctx,
		`SELECT sku, qty, price FROM purchase_return_lines WHERE return_id = $1 ORDER BY id`, returnID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []ReturnLine
	for rows.Next() {
		var l ReturnLine
		if err := rows.Scan(&l.SKU, &l.Qty, &l.Price); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// ListReturns returns a purchase-return page, newest first.
func (r *Repository) ListReturns(ctx context.Context, filters shared.ListFilters) ([]PurchaseReturn, error) {
	filters.Normalize()
	rows, err := r.pool.Query(ctx,
		`SELECT id, return_number, COALESCE(po_id, 0), supplier_id, supplier_name, returned_at, processed, note, created_at
		 FROM purchase_returns
		 WHERE ($1 = '' OR return_number ILIKE '%'||$1||'%' OR supplier_name ILIKE '%'||$1||'%')
		 ORDER BY id DESC LIMIT $2 OFFSET $3`,
		filters.Search, filters.Limit, filters.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PurchaseReturn
	for rows.Next() {
		var ret PurchaseReturn
		if err := rows.Scan(&ret.ID, &ret.ReturnNumber, &ret.POID, &ret.SupplierID, &ret.SupplierName, &ret.ReturnedAt, &ret.Processed, &ret.Note, &ret.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, ret)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		lines, err := loadReturnLines(ctx, r.pool, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Lines = lines
	}
	return out, nil
}

// --- Supplier credits ---

// ListCredits returns issued credit notes, newest first.
func (r *Repository) ListCredits(ctx context.Context, filters shared.ListFilters) ([]SupplierCredit, error) {
	filters.Normalize()
	rows, err := r.pool.Query(ctx,
		`SELECT id, supplier_id, supplier_name, amount, issued_at, note
		 FROM supplier_credits
		 WHERE ($1 = '' OR supplier_name ILIKE '%'||$1||'%')
		 ORDER BY issued_at DESC LIMIT $2 OFFSET $3`,
		filters.Search, filters.Limit, filters.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SupplierCredit
	for rows.Next() {
		var c SupplierCredit
		if err := rows.Scan(&c.ID, &c.SupplierID, &c.SupplierName, &c.Amount, &c.IssuedAt, &c.Note); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// --- Purchase invoices ---

// CreatePurchaseInvoice inserts a supplier bill with lines.
func (r *Repository) CreatePurchaseInvoice(ctx context.Context, inv PurchaseInvoice) (PurchaseInvoice, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO purchase_invoices (number, supplier_id, supplier_name, issued_at, sub_total, net_amount, total, mode, note, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		 RETURNING id, created_at`,
		inv.Number, inv.SupplierID, inv.SupplierName, inv.IssuedAt, inv.SubTotal, inv.NetAmount, inv.Total, inv.Mode, inv.Note,
	).Scan(&inv.ID, &inv.CreatedAt)
	if err != nil {
		return PurchaseInvoice{}, err
	}
	for _, line := range inv.Lines {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO purchase_invoice_lines (invoice_id, sku, qty, rate) VALUES ($1, $2, $3, $4)`,
			inv.ID, line.SKU, line.Qty, line.Rate)
		if err != nil {
			return PurchaseInvoice{}, err
		}
	}
	return inv, nil
}

// ListPurchaseInvoices returns all supplier bills with lines.
func (r *Repository) ListPurchaseInvoices(ctx context.Context) ([]PurchaseInvoice, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, number, supplier_id, supplier_name, issued_at, sub_total, net_amount, total, mode, note, created_at
		 FROM purchase_invoices ORDER BY issued_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PurchaseInvoice
	for rows.Next() {
		var inv PurchaseInvoice
		if err := rows.Scan(&inv.ID, &inv.Number, &inv.SupplierID, &inv.SupplierName, &inv.IssuedAt, &inv.SubTotal, &inv.NetAmount, &inv.Total, &inv.Mode, &inv.Note, &inv.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		lineRows, err := r.pool.Query(ctx,
			`SELECT sku, qty, rate FROM purchase_invoice_lines WHERE invoice_id = $1 ORDER BY id`, out[i].ID)
		if err != nil {
			return nil, err
		}
		for lineRows.Next() {
			var l PurchaseInvoiceLine
			if err := lineRows.Scan(&l.SKU, &l.Qty, &l.Rate); err != nil {
				lineRows.Close()
				return nil, err
			}
			out[i].Lines = append(out[i].Lines, l)
		}
		err = lineRows.Err()
		lineRows.Close()
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// --- Transactional repository ---

type txRepo struct {
	db dbtx
}

func (t *txRepo) ItemsForUpdate(ctx context.Context, skus []string) ([]inventory.Item, error) {
	if len(skus) == 0 {
		return nil, nil
	}
	rows, err := t.db.Query(ctx,
		`SELECT id, sku, name, unit, stock, min_stock, max_stock, created_at, updated_at
		 FROM inventory_items WHERE sku = ANY($1) ORDER BY sku FOR UPDATE`, skus)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []inventory.Item
	for rows.Next() {
		var it inventory.Item
		if err := rows.Scan(&it.ID, &it.SKU, &it.Name, &it.Unit, &it.Stock, &it.MinStock, &it.MaxStock, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (t *txRepo) SaveItemStocks(ctx context.Context, items []inventory.Item) error {
	for _, it := range items {
		_, err := t.db.Exec(ctx,
			`UPDATE inventory_items SET stock = $2, updated_at = NOW() WHERE sku = $1`, it.SKU, it.Stock)
		if err != nil {
			return err
		}
	}
	return nil
}

func (t *txRepo) POForUpdate(ctx context.Context, id int64) (PurchaseOrder, error) {
	return getPO(ctx, t.db, id, " FOR UPDATE")
}

func (t *txRepo) SavePOProgress(ctx context.Context, po PurchaseOrder) error {
	for _, line := range po.Lines {
		_, err := t.db.Exec(ctx,
			`UPDATE purchase_order_lines SET received = $2 WHERE id = $1`, line.ID, line.Received)
		if err != nil {
			return err
		}
	}
	_, err := t.db.Exec(ctx,
		`UPDATE purchase_orders SET fulfillment = $2, updated_at = NOW() WHERE id = $1`, po.ID, po.Fulfillment)
	return err
}

// UpsertReturn stores the return under its identity pair, replacing any prior
// unprocessed record.
func (t *txRepo) UpsertReturn(ctx context.Context, ret PurchaseReturn) (PurchaseReturn, error) {
	existing, err := findReturn(ctx, t.db, ret.ID, ret.ReturnNumber)
	if err != nil {
		return PurchaseReturn{}, err
	}
	if existing != nil {
		ret.ID = existing.ID
		_, err = t.db.Exec(ctx,
			`UPDATE purchase_returns
			 SET return_number=$2, po_id=NULLIF($3, 0), supplier_id=$4, supplier_name=$5, returned_at=$6, processed=$7, note=$8
			 WHERE id=$1`,
			ret.ID, ret.ReturnNumber, ret.POID, ret.SupplierID, ret.SupplierName, ret.ReturnedAt, ret.Processed, ret.Note)
		if err != nil {
			return PurchaseReturn{}, err
		}
		if _, err := t.db.Exec(ctx, `DELETE FROM purchase_return_lines WHERE return_id=$1`, ret.ID); err != nil {
			return PurchaseReturn{}, err
		}
	} else {
		err = t.db.QueryRow(ctx,
			`INSERT INTO purchase_returns (return_number, po_id, supplier_id, supplier_name, returned_at, processed, note, created_at)
			 VALUES ($1, NULLIF($2, 0), $3, $4, $5, $6, $7, NOW())
			 RETURNING id, created_at`,
			ret.ReturnNumber, ret.POID, ret.SupplierID, ret.SupplierName, ret.ReturnedAt, ret.Processed, ret.Note,
		).Scan(&ret.ID, &ret.CreatedAt)
		if err != nil {
			return PurchaseReturn{}, err
		}
	}
	for _, line := range ret.Lines {
		_, err := t.db.Exec(ctx,
			`INSERT INTO purchase_return_lines (return_id, sku, qty, price) VALUES ($1, $2, $3, $4)`,
			ret.ID, line.SKU, line.Qty, line.Price)
		if err != nil {
			return PurchaseReturn{}, err
		}
	}
	return ret, nil
}

func (t *txRepo) InsertCredit(ctx context.Context, credit SupplierCredit) error {
	_, err := t.db.Exec(ctx,
		`INSERT INTO supplier_credits (id, supplier_id, supplier_name, amount, issued_at, note)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		credit.ID, credit.SupplierID, credit.SupplierName, credit.Amount, credit.IssuedAt, credit.Note)
	return err
}

func (t *txRepo) SetGRNStatus(ctx context.Context, id int64, status GRNStatus) error {
	tag, err := t.db.Exec(ctx, `UPDATE goods_receipts SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
