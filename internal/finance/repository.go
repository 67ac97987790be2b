package finance

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-backoffice/meridian/internal/shared"
)

// Repository provides PostgreSQL backed persistence for vouchers and
// book settings.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateVoucher inserts a voucher.
func (r *Repository) CreateVoucher(ctx context.Context, v Voucher) (Voucher, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO vouchers (kind, number, voucher_date, party_id, party_name, amount, mode, note, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		 RETURNING id, created_at`,
		v.Kind, v.Number, v.Date, v.PartyID, v.PartyName, v.Amount, v.Mode, v.Note,
	).Scan(&v.ID, &v.CreatedAt)
	if err != nil {
		return Voucher{}, err
	}
	return v, nil
}

// GetVoucher loads one voucher.
func (r *Repository) GetVoucher(ctx context.Context, id int64) (Voucher, error) {
	var v Voucher
	err := r.pool.QueryRow(ctx,
		`SELECT id, kind, number, voucher_date, party_id, party_name, amount, mode, note, created_at
		 FROM vouchers WHERE id = $1`, id).Scan(
		&v.ID, &v.Kind, &v.Number, &v.Date, &v.PartyID, &v.PartyName, &v.Amount, &v.Mode, &v.Note, &v.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Voucher{}, ErrNotFound
	}
	return v, err
}

// ListVouchers returns a voucher page for one kind, document order.
func (r *Repository) ListVouchers(ctx context.Context, kind VoucherKind, filters shared.ListFilters) ([]Voucher, error) {
	filters.Normalize()
	rows, err := r.pool.Query(ctx,
		`SELECT id, kind, number, voucher_date, party_id, party_name, amount, mode, note, created_at
		 FROM vouchers
		 WHERE kind = $1 AND ($2 = '' OR number ILIKE '%'||$2||'%' OR party_name ILIKE '%'||$2||'%')
		 ORDER BY voucher_date, id LIMIT $3 OFFSET $4`,
		kind, filters.Search, filters.Limit, filters.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanVouchers(rows)
}

// AllVouchers returns every voucher of one kind for ledger assembly.
func (r *Repository) AllVouchers(ctx context.Context, kind VoucherKind) ([]Voucher, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, kind, number, voucher_date, party_id, party_name, amount, mode, note, created_at
		 FROM vouchers WHERE kind = $1 ORDER BY voucher_date, id`, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanVouchers(rows)
}

func scanVouchers(rows pgx.Rows) ([]Voucher, error) {
	var out []Voucher
	for rows.Next() {
		var v Voucher
		if err := rows.Scan(&v.ID, &v.Kind, &v.Number, &v.Date, &v.PartyID, &v.PartyName, &v.Amount, &v.Mode, &v.Note, &v.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// GetBookSetting loads the opening-balance setting for one book. A book
// without a stored setting starts from zero.
func (r *Repository) GetBookSetting(ctx context.Context, book string) (BookSetting, error) {
	var s BookSetting
	err := r.pool.QueryRow(ctx,
		`SELECT book, opening_balance, updated_at FROM book_settings WHERE book = $1`, book).Scan(
		&s.Book, &s.OpeningBalance, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return BookSetting{Book: book}, nil
	}
	return s, err
}

// SaveBookSetting upserts the opening balance for one book.
func (r *Repository) SaveBookSetting(ctx context.Context, s BookSetting) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO book_settings (book, opening_balance, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (book) DO UPDATE SET opening_balance = EXCLUDED.opening_balance, updated_at = NOW()`,
		s.Book, s.OpeningBalance)
	return err
}
