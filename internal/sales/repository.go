package sales

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-backoffice/meridian/internal/shared"
)

// Repository provides PostgreSQL backed persistence for sales invoices.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts an invoice with lines.
func (r *Repository) Create(ctx context.Context, inv Invoice) (Invoice, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO sales_invoices (number, customer_id, customer_name, issued_at, sub_total, total_net, grand_total, mode, note, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		 RETURNING id, created_at`,
		inv.Number, inv.CustomerID, inv.CustomerName, inv.IssuedAt, inv.SubTotal, inv.TotalNet, inv.GrandTotal, inv.Mode, inv.Note,
	).Scan(&inv.ID, &inv.CreatedAt)
	if err != nil {
		return Invoice{}, err
	}
	for _, line := range inv.Lines {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO sales_invoice_lines (invoice_id, sku, qty, rate) VALUES ($1, $2, $3, $4)`,
			inv.ID, line.SKU, line.Qty, line.Rate)
		if err != nil {
			return Invoice{}, err
		}
	}
	return inv, nil
}

// Get loads an invoice with lines.
func (r *Repository) Get(ctx context.Context, id int64) (Invoice, error) {
	var inv Invoice
	err := r.pool.QueryRow(ctx,
		`SELECT id, number, customer_id, customer_name, issued_at, sub_total, total_net, grand_total, mode, note, created_at
		 FROM sales_invoices WHERE id = $1`, id).Scan(
		&inv.ID, &inv.Number, &inv.CustomerID, &inv.CustomerName, &inv.IssuedAt,
		&inv.SubTotal, &inv.TotalNet, &inv.GrandTotal, &inv.Mode, &inv.Note, &inv.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Invoice{}, ErrNotFound
	}
	if err != nil {
		return Invoice{}, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT sku, qty, rate FROM sales_invoice_lines WHERE invoice_id = $1 ORDER BY id`, id)
	if err != nil {
		return Invoice{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var l InvoiceLine
		if err := rows.Scan(&l.SKU, &l.Qty, &l.Rate); err != nil {
			return Invoice{}, err
		}
		inv.Lines = append(inv.Lines, l)
	}
	return inv, rows.Err()
}

// List returns an invoice page, oldest first so ledger consumers see
// document order.
func (r *Repository) List(ctx context.Context, filters shared.ListFilters) ([]Invoice, error) {
	filters.Normalize()
	rows, err := r.pool.Query(ctx,
		`SELECT id, number, customer_id, customer_name, issued_at, sub_total, total_net, grand_total, mode, note, created_at
		 FROM sales_invoices
		 WHERE ($1 = '' OR number ILIKE '%'||$1||'%' OR customer_name ILIKE '%'||$1||'%')
		 ORDER BY issued_at, id LIMIT $2 OFFSET $3`,
		filters.Search, filters.Limit, filters.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Invoice
	for rows.Next() {
		var inv Invoice
		if err := rows.Scan(&inv.ID, &inv.Number, &inv.CustomerID, &inv.CustomerName, &inv.IssuedAt,
			&inv.SubTotal, &inv.TotalNet, &inv.GrandTotal, &inv.Mode, &inv.Note, &inv.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

// All returns every invoice without paging, for ledger assembly.
func (r *Repository) All(ctx context.Context) ([]Invoice, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, number, customer_id, customer_name, issued_at, sub_total, total_net, grand_total, mode, note, created_at
		 FROM sales_invoices ORDER BY issued_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Invoice
	for rows.Next() {
		var inv Invoice
		if err := rows.Scan(&inv.ID, &inv.Number, &inv.CustomerID, &inv.CustomerName, &inv.IssuedAt,
			&inv.SubTotal, &inv.TotalNet, &inv.GrandTotal, &inv.Mode, &inv.Note, &inv.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}
