package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/meridian-backoffice/meridian/internal/ledger"
)

const dateLayout = "2006-01-02"

// Exporter renders journals and day books as Excel workbooks.
type Exporter struct{}

// NewExporter constructs an Exporter.
func NewExporter() *Exporter {
	return &Exporter{}
}

// Statement renders a journal statement onto one sheet. Row one is the
// header, row two the opening balance, then one row per entry and a
// closing totals row.
func (e *Exporter) Statement(title string, stmt ledger.Statement) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	if err := f.SetSheetName(sheet, title); err != nil {
		return nil, err
	}
	sheet = title

	header := []any{"Date", "Document", "Number", "Party", "Debit", "Credit", "Balance", "Note"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}
	opening := []any{"", "", "", "Opening balance", "", "", stmt.OpeningBalance.InexactFloat64(), ""}
	if err := f.SetSheetRow(sheet, "A2", &opening); err != nil {
		return nil, err
	}
	for i, entry := range stmt.Entries {
		row := []any{
			entry.Date.Format(dateLayout),
			string(entry.SourceType),
			entry.Number,
			entry.PartyName,
			entry.Debit.InexactFloat64(),
			entry.Credit.InexactFloat64(),
			entry.Balance.InexactFloat64(),
			entry.Note,
		}
		cell := fmt.Sprintf("A%d", i+3)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}
	totals := []any{
		"", "", "", "Closing balance",
		stmt.TotalDebit.InexactFloat64(),
		stmt.TotalCredit.InexactFloat64(),
		stmt.ClosingBalance.InexactFloat64(),
		"",
	}
	cell := fmt.Sprintf("A%d", len(stmt.Entries)+3)
	if err := f.SetSheetRow(sheet, cell, &totals); err != nil {
		return nil, err
	}
	return f, nil
}

// Book renders a day book onto one sheet with receipt and payment columns.
func (e *Exporter) Book(title string, book ledger.Book) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	if err := f.SetSheetName(sheet, title); err != nil {
		return nil, err
	}
	sheet = title

	header := []any{"Date", "Document", "Number", "Party", "Mode", "Receipt", "Payment", "Balance"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}
	opening := []any{"", "", "", "Opening balance", "", "", "", book.OpeningBalance.InexactFloat64()}
	if err := f.SetSheetRow(sheet, "A2", &opening); err != nil {
		return nil, err
	}
	for i, row := range book.Entries {
		values := []any{
			row.Date.Format(dateLayout),
			string(row.SourceType),
			row.Number,
			row.PartyName,
			row.Mode,
			row.Receipt.InexactFloat64(),
			row.Payment.InexactFloat64(),
			row.Balance.InexactFloat64(),
		}
		cell := fmt.Sprintf("A%d", i+3)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, err
		}
	}
	totals := []any{
		"", "", "", "Closing balance", "",
		book.TotalReceipts.InexactFloat64(),
		book.TotalPayments.InexactFloat64(),
		book.ClosingBalance.InexactFloat64(),
	}
	cell := fmt.Sprintf("A%d", len(book.Entries)+3)
	if err := f.SetSheetRow(sheet, cell, &totals); err != nil {
		return nil, err
	}
	return f, nil
}
