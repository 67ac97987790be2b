package accounts

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/meridian-backoffice/meridian/internal/shared"
)

// RepositoryPort abstracts persistence for Service.
type RepositoryPort interface {
	Get(ctx context.Context, id int64) (Account, error)
	FindByName(ctx context.Context, name string) (Account, error)
	List(ctx context.Context, accType AccountType, filters shared.ListFilters) ([]Account, int, error)
	Create(ctx context.Context, acc Account) (Account, error)
	Update(ctx context.Context, acc Account) error
}

// Service coordinates directory operations.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// CreateAccountInput describes a new directory entry.
type CreateAccountInput struct {
	Name           string
	Type           AccountType
	Phone          string
	Note           string
	OpeningBalance decimal.Decimal
}

// CreateAccount registers a customer or supplier.
func (s *Service) CreateAccount(ctx context.Context, input CreateAccountInput) (Account, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return Account{}, ErrValidation
	}
	if input.Type != TypeCustomer && input.Type != TypeSupplier {
		return Account{}, ErrValidation
	}
	return s.repo.Create(ctx, Account{
		Name:           input.Name,
		Type:           input.Type,
		Phone:          input.Phone,
		Note:           input.Note,
		OpeningBalance: input.OpeningBalance,
	})
}

// UpdateAccount stores mutable fields.
func (s *Service) UpdateAccount(ctx context.Context, acc Account) error {
	if acc.ID == 0 || strings.TrimSpace(acc.Name) == "" {
		return ErrValidation
	}
	return s.repo.Update(ctx, acc)
}

// GetAccount fetches one entry.
func (s *Service) GetAccount(ctx context.Context, id int64) (Account, error) {
	if id == 0 {
		return Account{}, ErrValidation
	}
	return s.repo.Get(ctx, id)
}

// ListAccounts returns a directory page.
func (s *Service) ListAccounts(ctx context.Context, accType AccountType, filters shared.ListFilters) ([]Account, int, error) {
	return s.repo.List(ctx, accType, filters)
}

// ResolveSupplier resolves a supplier name with the id-based match preferred
// over the free-text fallback. When both resolve and disagree the id-based
// name wins; the caller may log the discrepancy.
func (s *Service) ResolveSupplier(ctx context.Context, id int64, fallbackName string) (Account, bool, error) {
	if id != 0 {
		acc, err := s.repo.Get(ctx, id)
		if err == nil {
			mismatch := fallbackName != "" && !strings.EqualFold(acc.Name, fallbackName)
			return acc, mismatch, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return Account{}, false, err
		}
	}
	if fallbackName == "" {
		return Account{}, false, ErrNotFound
	}
	acc, err := s.repo.FindByName(ctx, fallbackName)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Unknown supplier: keep the free-text name, no directory row.
			return Account{Name: fallbackName}, false, nil
		}
		return Account{}, false, err
	}
	return acc, false, nil
}

// OpeningBalance returns the carried-forward balance for a party, zero when
// the party is unknown.
func (s *Service) OpeningBalance(ctx context.Context, id int64) (decimal.Decimal, error) {
	if id == 0 {
		return decimal.Zero, nil
	}
	acc, err := s.repo.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return acc.OpeningBalance, nil
}
