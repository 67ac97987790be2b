package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC)
}

func sampleEntries() []Entry {
	return []Entry{
		{SourceType: DocPayment, SourceID: 1, Date: day(2), PartyName: "Acme Traders", Number: "PV-1", Credit: decimal.NewFromInt(400)},
		{SourceType: DocReceipt, SourceID: 1, Date: day(3), PartyName: "Blue Ridge Stores", Number: "RV-1", Debit: decimal.NewFromInt(200)},
		{SourceType: DocPayment, SourceID: 2, Date: day(4), PartyName: "Acme Traders", Number: "PV-2", Credit: decimal.NewFromInt(150)},
	}
}

func TestBuildRunningBalanceFold(t *testing.T) {
	stmt := Build(decimal.NewFromInt(1000), sampleEntries())

	require.Len(t, stmt.Entries, 3)
	require.True(t, stmt.Entries[0].Balance.Equal(decimal.NewFromInt(600)))
	require.True(t, stmt.Entries[1].Balance.Equal(decimal.NewFromInt(800)))
	require.True(t, stmt.Entries[2].Balance.Equal(decimal.NewFromInt(650)))
	require.True(t, stmt.ClosingBalance.Equal(decimal.NewFromInt(650)))
	require.True(t, stmt.TotalDebit.Equal(decimal.NewFromInt(200)))
	require.True(t, stmt.TotalCredit.Equal(decimal.NewFromInt(550)))
}

func TestBuildClosingEqualsLastEntryBalance(t *testing.T) {
	stmt := Build(decimal.NewFromInt(77), sampleEntries())
	require.True(t, stmt.ClosingBalance.Equal(stmt.Entries[len(stmt.Entries)-1].Balance))
}

func TestBuildEmptyJournalClosesAtOpening(t *testing.T) {
	stmt := Build(decimal.NewFromInt(42), nil)
	require.Empty(t, stmt.Entries)
	require.True(t, stmt.ClosingBalance.Equal(decimal.NewFromInt(42)))
}

func TestSortIsIndependentOfInputOrder(t *testing.T) {
	a := []Entry{
		{SourceType: DocSaleInvoice, SourceID: 2, Date: day(1)},
		{SourceType: DocPayment, SourceID: 1, Date: day(1)},
		{SourceType: DocSaleInvoice, SourceID: 1, Date: day(1)},
		{SourceType: DocReceipt, SourceID: 9, Date: day(2)},
	}
	b := []Entry{a[3], a[0], a[2], a[1]}

	Sort(a)
	Sort(b)

	require.Equal(t, a, b)
	require.Equal(t, DocPayment, a[0].SourceType)
	require.Equal(t, int64(1), a[1].SourceID)
	require.Equal(t, int64(2), a[2].SourceID)
	require.Equal(t, day(2), a[3].Date)
}

func TestFilterOrderDoesNotMatter(t *testing.T) {
	entries := sampleEntries()
	byParty := Filter{PartyName: "acme traders"}
	byType := Filter{DocTypes: []DocumentType{DocPayment}}
	combined := Filter{PartyName: "Acme Traders", DocTypes: []DocumentType{DocPayment}}

	partyThenType := byType.Apply(byParty.Apply(entries))
	typeThenParty := byParty.Apply(byType.Apply(entries))
	atOnce := combined.Apply(entries)

	require.Equal(t, partyThenType, typeThenParty)
	require.Equal(t, partyThenType, atOnce)
	require.Len(t, atOnce, 2)
}

func TestFilterToIsInclusiveThroughEndOfDay(t *testing.T) {
	entries := []Entry{
		{SourceID: 1, Date: time.Date(2025, 3, 2, 23, 30, 0, 0, time.UTC)},
		{SourceID: 2, Date: time.Date(2025, 3, 3, 0, 30, 0, 0, time.UTC)},
	}

	got := Filter{To: day(2)}.Apply(entries)

	require.Len(t, got, 1)
	require.Equal(t, int64(1), got[0].SourceID)
}

func TestFilterSearchIsCaseInsensitive(t *testing.T) {
	entries := []Entry{
		{SourceID: 1, Number: "INV-7", PartyName: "Blue Ridge Stores"},
		{SourceID: 2, Number: "INV-8", PartyName: "Acme Traders"},
	}

	got := Filter{Search: "blue RIDGE"}.Apply(entries)

	require.Len(t, got, 1)
	require.Equal(t, int64(1), got[0].SourceID)
}

func TestFilterByPartyID(t *testing.T) {
	entries := []Entry{
		{SourceID: 1, PartyID: 7},
		{SourceID: 2, PartyID: 8},
	}

	got := Filter{PartyID: 7}.Apply(entries)

	require.Len(t, got, 1)
}
