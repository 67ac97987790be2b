package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-backoffice/meridian/internal/shared"
)

// Repository persists accounts in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const accountColumns = `id, name, type, phone, note, opening_balance, created_at, updated_at`

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Name, &a.Type, &a.Phone, &a.Note, &a.OpeningBalance, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// Get fetches one account by id.
func (r *Repository) Get(ctx context.Context, id int64) (Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE id = $1`, accountColumns)
	acc, err := scanAccount(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, ErrNotFound
	}
	return acc, err
}

// FindByName looks an account up by exact, case-insensitive name.
func (r *Repository) FindByName(ctx context.Context, name string) (Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE LOWER(name) = LOWER($1) LIMIT 1`, accountColumns)
	acc, err := scanAccount(r.pool.QueryRow(ctx, query, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, ErrNotFound
	}
	return acc, err
}

// List returns directory entries of an optional type with optional search.
func (r *Repository) List(ctx context.Context, accType AccountType, filters shared.ListFilters) ([]Account, int, error) {
	filters.Normalize()
	query := fmt.Sprintf(`SELECT %s FROM accounts
		WHERE ($1 = '' OR type = $1)
		  AND ($2 = '' OR name ILIKE '%%'||$2||'%%')
		ORDER BY name LIMIT $3 OFFSET $4`, accountColumns)
	rows, err := r.pool.Query(ctx, query, string(accType), filters.Search, filters.Limit, filters.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	err = r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM accounts WHERE ($1 = '' OR type = $1) AND ($2 = '' OR name ILIKE '%'||$2||'%')`,
		string(accType), filters.Search).Scan(&total)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Create inserts a new account.
func (r *Repository) Create(ctx context.Context, acc Account) (Account, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO accounts (name, type, phone, note, opening_balance, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		 RETURNING id, created_at, updated_at`,
		acc.Name, acc.Type, acc.Phone, acc.Note, acc.OpeningBalance,
	).Scan(&acc.ID, &acc.CreatedAt, &acc.UpdatedAt)
	if err != nil {
		return Account{}, err
	}
	return acc, nil
}

// Update stores mutable fields of an account.
func (r *Repository) Update(ctx context.Context, acc Account) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE accounts SET name=$2, phone=$3, note=$4, opening_balance=$5, updated_at=NOW() WHERE id=$1`,
		acc.ID, acc.Name, acc.Phone, acc.Note, acc.OpeningBalance)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
