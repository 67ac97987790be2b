package finance

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meridian-backoffice/meridian/internal/shared"
)

// RepositoryPort abstracts voucher and book-setting persistence.
type RepositoryPort interface {
	CreateVoucher(ctx context.Context, v Voucher) (Voucher, error)
	GetVoucher(ctx context.Context, id int64) (Voucher, error)
	ListVouchers(ctx context.Context, kind VoucherKind, filters shared.ListFilters) ([]Voucher, error)
	AllVouchers(ctx context.Context, kind VoucherKind) ([]Voucher, error)
	GetBookSetting(ctx context.Context, book string) (BookSetting, error)
	SaveBookSetting(ctx context.Context, s BookSetting) error
}

// Service orchestrates cash vouchers and book settings.
type Service struct {
	repo   RepositoryPort
	logger *slog.Logger
}

// NewService constructs finance service.
func NewService(repo RepositoryPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// CreateVoucherInput describes a voucher payload.
type CreateVoucherInput struct {
	Number    string
	Date      time.Time
	PartyID   int64
	PartyName string
	Amount    decimal.Decimal
	Mode      string
	Note      string
}

// CreateReceiptVoucher records money collected from a party.
func (s *Service) CreateReceiptVoucher(ctx context.Context, input CreateVoucherInput) (Voucher, error) {
	return s.createVoucher(ctx, KindReceipt, "RV", input)
}

// CreatePaymentVoucher records money paid out to a party.
func (s *Service) CreatePaymentVoucher(ctx context.Context, input CreateVoucherInput) (Voucher, error) {
	return s.createVoucher(ctx, KindPayment, "PV", input)
}

func (s *Service) createVoucher(ctx context.Context, kind VoucherKind, prefix string, input CreateVoucherInput) (Voucher, error) {
	if input.Amount.IsNegative() {
		return Voucher{}, fmt.Errorf("%w: amount must not be negative", ErrValidation)
	}
	if input.PartyID == 0 && input.PartyName == "" {
		return Voucher{}, ErrValidation
	}
	if input.Number == "" {
		input.Number = fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
	}
	if input.Date.IsZero() {
		input.Date = time.Now()
	}
	v := Voucher{
		Kind:      kind,
		Number:    input.Number,
		Date:      input.Date,
		PartyID:   input.PartyID,
		PartyName: input.PartyName,
		Amount:    input.Amount,
		Mode:      strings.ToLower(strings.TrimSpace(input.Mode)),
		Note:      input.Note,
	}
	return s.repo.CreateVoucher(ctx, v)
}

// GetVoucher loads one voucher.
func (s *Service) GetVoucher(ctx context.Context, id int64) (Voucher, error) {
	return s.repo.GetVoucher(ctx, id)
}

// ListVouchers returns a page of one voucher kind.
func (s *Service) ListVouchers(ctx context.Context, kind VoucherKind, filters shared.ListFilters) ([]Voucher, error) {
	return s.repo.ListVouchers(ctx, kind, filters)
}

// AllVouchers returns every voucher of one kind for ledger assembly.
func (s *Service) AllVouchers(ctx context.Context, kind VoucherKind) ([]Voucher, error) {
	return s.repo.AllVouchers(ctx, kind)
}

// BookOpeningBalance returns the stored opening balance for a book,
// zero when unset.
func (s *Service) BookOpeningBalance(ctx context.Context, book string) (decimal.Decimal, error) {
	setting, err := s.repo.GetBookSetting(ctx, book)
	if err != nil {
		return decimal.Zero, err
	}
	return setting.OpeningBalance, nil
}

// SetBookOpeningBalance stores the operator-set opening balance for a book.
func (s *Service) SetBookOpeningBalance(ctx context.Context, book string, balance decimal.Decimal) error {
	book = strings.ToLower(strings.TrimSpace(book))
	if book == "" {
		return ErrValidation
	}
	return s.repo.SaveBookSetting(ctx, BookSetting{Book: book, OpeningBalance: balance})
}
