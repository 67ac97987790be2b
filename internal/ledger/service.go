package ledger

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/meridian-backoffice/meridian/internal/finance"
	"github.com/meridian-backoffice/meridian/internal/procurement"
	"github.com/meridian-backoffice/meridian/internal/sales"
)

// SalesPort supplies customer invoices.
type SalesPort interface {
	AllInvoices(ctx context.Context) ([]sales.Invoice, error)
}

// PurchasesPort supplies supplier bills.
type PurchasesPort interface {
	ListPurchaseInvoices(ctx context.Context) ([]procurement.PurchaseInvoice, error)
}

// VouchersPort supplies cash vouchers and book opening balances.
type VouchersPort interface {
	AllVouchers(ctx context.Context, kind finance.VoucherKind) ([]finance.Voucher, error)
	BookOpeningBalance(ctx context.Context, book string) (decimal.Decimal, error)
}

// AccountsPort supplies party opening balances.
type AccountsPort interface {
	OpeningBalance(ctx context.Context, partyID int64) (decimal.Decimal, error)
}

// Service assembles journals and day books from the document stores.
type Service struct {
	sales     SalesPort
	purchases PurchasesPort
	vouchers  VouchersPort
	accounts  AccountsPort
	bankModes []string
	logger    *slog.Logger
}

// NewService constructs ledger service. bankModes decides which settlement
// modes the bank book covers.
func NewService(salesPort SalesPort, purchasesPort PurchasesPort, vouchersPort VouchersPort, accountsPort AccountsPort, bankModes []string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		sales:     salesPort,
		purchases: purchasesPort,
		vouchers:  vouchersPort,
		accounts:  accountsPort,
		bankModes: bankModes,
		logger:    logger,
	}
}

func (s *Service) gather(ctx context.Context) (Sources, error) {
	var src Sources
	var err error
	if src.SaleInvoices, err = s.sales.AllInvoices(ctx); err != nil {
		return Sources{}, err
	}
	if src.PurchaseInvoices, err = s.purchases.ListPurchaseInvoices(ctx); err != nil {
		return Sources{}, err
	}
	if src.ReceiptVouchers, err = s.vouchers.AllVouchers(ctx, finance.KindReceipt); err != nil {
		return Sources{}, err
	}
	if src.PaymentVouchers, err = s.vouchers.AllVouchers(ctx, finance.KindPayment); err != nil {
		return Sources{}, err
	}
	return src, nil
}

// Journal builds a filtered party or global statement. A party filter seeds
// the running balance from that account's opening balance.
func (s *Service) Journal(ctx context.Context, filter Filter) (Statement, error) {
	src, err := s.gather(ctx)
	if err != nil {
		return Statement{}, err
	}
	entries := filter.Apply(Normalize(src))

	opening := decimal.Zero
	if filter.PartyID != 0 && s.accounts != nil {
		opening, err = s.accounts.OpeningBalance(ctx, filter.PartyID)
		if err != nil {
			return Statement{}, err
		}
	}
	return Build(opening, entries), nil
}

// CashBook builds the cash day book over the given date window.
func (s *Service) CashBook(ctx context.Context, filter Filter) (Book, error) {
	return s.book(ctx, filter, "cash", CashModes)
}

// BankBook builds the bank day book over the configured bank modes.
func (s *Service) BankBook(ctx context.Context, filter Filter) (Book, error) {
	return s.book(ctx, filter, "bank", s.bankModes)
}

func (s *Service) book(ctx context.Context, filter Filter, name string, modes []string) (Book, error) {
	src, err := s.gather(ctx)
	if err != nil {
		return Book{}, err
	}
	entries := filter.Apply(Normalize(src))

	opening, err := s.vouchers.BookOpeningBalance(ctx, name)
	if err != nil {
		return Book{}, err
	}
	return BuildBook(opening, entries, modes), nil
}
