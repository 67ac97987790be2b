package finance

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/meridian-backoffice/meridian/internal/shared"
)

type memoryVoucherRepo struct {
	vouchers []Voucher
	settings map[string]BookSetting
	nextID   int64
}

func newMemoryVoucherRepo() *memoryVoucherRepo {
	return &memoryVoucherRepo{settings: make(map[string]BookSetting)}
}

func (m *memoryVoucherRepo) CreateVoucher(_ context.Context, v Voucher) (Voucher, error) {
	m.nextID++
	v.ID = m.nextID
	m.vouchers = append(m.vouchers, v)
	return v, nil
}

func (m *memoryVoucherRepo) GetVoucher(_ context.Context, id int64) (Voucher, error) {
	for _, v := range m.vouchers {
		if v.ID == id {
			return v, nil
		}
	}
	return Voucher{}, ErrNotFound
}

func (m *memoryVoucherRepo) ListVouchers(_ context.Context, kind VoucherKind, _ shared.ListFilters) ([]Voucher, error) {
	return m.AllVouchers(context.Background(), kind)
}

func (m *memoryVoucherRepo) AllVouchers(_ context.Context, kind VoucherKind) ([]Voucher, error) {
	var out []Voucher
	for _, v := range m.vouchers {
		if v.Kind == kind {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *memoryVoucherRepo) GetBookSetting(_ context.Context, book string) (BookSetting, error) {
	if s, ok := m.settings[book]; ok {
		return s, nil
	}
	return BookSetting{Book: book}, nil
}

func (m *memoryVoucherRepo) SaveBookSetting(_ context.Context, s BookSetting) error {
	m.settings[s.Book] = s
	return nil
}

func TestCreateVouchersSeparateKinds(t *testing.T) {
	repo := newMemoryVoucherRepo()
	svc := NewService(repo, nil)

	_, err := svc.CreateReceiptVoucher(context.Background(), CreateVoucherInput{
		PartyName: "Blue Ridge Stores",
		Amount:    decimal.NewFromInt(200),
		Mode:      "Cash",
	})
	require.NoError(t, err)

	_, err = svc.CreatePaymentVoucher(context.Background(), CreateVoucherInput{
		PartyName: "Acme Traders",
		Amount:    decimal.NewFromInt(150),
		Mode:      "bank",
	})
	require.NoError(t, err)

	receipts, err := svc.AllVouchers(context.Background(), KindReceipt)
	require.NoError(t, err)
	require.Len(t, receipts, 1)
	require.Equal(t, "cash", receipts[0].Mode)

	payments, err := svc.AllVouchers(context.Background(), KindPayment)
	require.NoError(t, err)
	require.Len(t, payments, 1)
}

func TestCreateVoucherRejectsNegativeAmount(t *testing.T) {
	svc := NewService(newMemoryVoucherRepo(), nil)

	_, err := svc.CreateReceiptVoucher(context.Background(), CreateVoucherInput{
		PartyName: "Blue Ridge Stores",
		Amount:    decimal.NewFromInt(-5),
		Mode:      "cash",
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestBookOpeningBalanceDefaultsToZero(t *testing.T) {
	svc := NewService(newMemoryVoucherRepo(), nil)

	balance, err := svc.BookOpeningBalance(context.Background(), "cash")
	require.NoError(t, err)
	require.True(t, balance.IsZero())
}

func TestSetBookOpeningBalanceRoundTrip(t *testing.T) {
	svc := NewService(newMemoryVoucherRepo(), nil)

	require.NoError(t, svc.SetBookOpeningBalance(context.Background(), " Cash ", decimal.NewFromInt(1000)))

	balance, err := svc.BookOpeningBalance(context.Background(), "cash")
	require.NoError(t, err)
	require.True(t, balance.Equal(decimal.NewFromInt(1000)))
}

func TestSetBookOpeningBalanceRequiresBook(t *testing.T) {
	svc := NewService(newMemoryVoucherRepo(), nil)

	err := svc.SetBookOpeningBalance(context.Background(), "  ", decimal.NewFromInt(1))
	require.ErrorIs(t, err, ErrValidation)
}
