package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-backoffice/meridian/internal/shared"
)

// Repository persists catalog items in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const itemColumns = `id, sku, name, unit, stock, min_stock, max_stock, created_at, updated_at`

func scanItem(row pgx.Row) (Item, error) {
	var it Item
	err := row.Scan(&it.ID, &it.SKU, &it.Name, &it.Unit, &it.Stock, &it.MinStock, &it.MaxStock, &it.CreatedAt, &it.UpdatedAt)
	return it, err
}

// List returns catalog items with optional search over sku and name.
func (r *Repository) List(ctx context.Context, filters shared.ListFilters) ([]Item, int, error) {
	filters.Normalize()
	query := fmt.Sprintf(`SELECT %s FROM inventory_items
		WHERE ($1 = '' OR sku ILIKE '%%'||$1||'%%' OR name ILIKE '%%'||$1||'%%')
		ORDER BY sku LIMIT $2 OFFSET $3`, itemColumns)
	rows, err := r.pool.Query(ctx, query, filters.Search, filters.Limit, filters.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	err = r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM inventory_items WHERE ($1 = '' OR sku ILIKE '%'||$1||'%' OR name ILIKE '%'||$1||'%')`,
		filters.Search).Scan(&total)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// GetBySKU fetches a single item.
func (r *Repository) GetBySKU(ctx context.Context, sku string) (Item, error) {
	query := fmt.Sprintf(`SELECT %s FROM inventory_items WHERE sku = $1`, itemColumns)
	it, err := scanItem(r.pool.QueryRow(ctx, query, sku))
	if errors.Is(err, pgx.ErrNoRows) {
		return Item{}, ErrNotFound
	}
	return it, err
}

// GetBySKUs fetches the snapshot rows matching the given SKUs.
func (r *Repository) GetBySKUs(ctx context.Context, skus []string) ([]Item, error) {
	if len(skus) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM inventory_items WHERE sku = ANY($1) ORDER BY sku`, itemColumns)
	rows, err := r.pool.Query(ctx, query, skus)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Create inserts a catalog item.
func (r *Repository) Create(ctx context.Context, item Item) (Item, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO inventory_items (sku, name, unit, stock, min_stock, max_stock, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		 RETURNING id, created_at, updated_at`,
		item.SKU, item.Name, item.Unit, item.Stock, item.MinStock, item.MaxStock,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Item{}, ErrDuplicateSKU
		}
		return Item{}, err
	}
	return item, nil
}

// Update stores mutable master-data fields of an item.
func (r *Repository) Update(ctx context.Context, item Item) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE inventory_items SET name=$2, unit=$3, min_stock=$4, max_stock=$5, updated_at=NOW() WHERE sku=$1`,
		item.SKU, item.Name, item.Unit, item.MinStock, item.MaxStock)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListBelowMin returns items whose stock dipped under min_stock.
func (r *Repository) ListBelowMin(ctx context.Context) ([]Item, error) {
	query := fmt.Sprintf(`SELECT %s FROM inventory_items WHERE min_stock > 0 AND stock < min_stock ORDER BY sku`, itemColumns)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
