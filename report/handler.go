package report

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/xuri/excelize/v2"

	"github.com/meridian-backoffice/meridian/internal/ledger"
)

// Handler streams workbook downloads for the journal and day books.
type Handler struct {
	logger   *slog.Logger
	ledgers  *ledger.Service
	exporter *Exporter
}

// NewHandler builds Handler.
func NewHandler(logger *slog.Logger, ledgers *ledger.Service) *Handler {
	return &Handler{logger: logger, ledgers: ledgers, exporter: NewExporter()}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/ledger.xlsx", h.ledgerExport)
	r.Get("/cash-book.xlsx", h.cashBookExport)
	r.Get("/bank-book.xlsx", h.bankBookExport)
}

func (h *Handler) ledgerExport(w http.ResponseWriter, r *http.Request) {
	stmt, err := h.ledgers.Journal(r.Context(), ledger.Filter{})
	if err != nil {
		h.fail(w, "build ledger export", err)
		return
	}
	f, err := h.exporter.Statement("Ledger", stmt)
	if err != nil {
		h.fail(w, "render ledger export", err)
		return
	}
	h.stream(w, "ledger.xlsx", f)
}

func (h *Handler) cashBookExport(w http.ResponseWriter, r *http.Request) {
	book, err := h.ledgers.CashBook(r.Context(), ledger.Filter{})
	if err != nil {
		h.fail(w, "build cash book export", err)
		return
	}
	f, err := h.exporter.Book("Cash Book", book)
	if err != nil {
		h.fail(w, "render cash book export", err)
		return
	}
	h.stream(w, "cash-book.xlsx", f)
}

func (h *Handler) bankBookExport(w http.ResponseWriter, r *http.Request) {
	book, err := h.ledgers.BankBook(r.Context(), ledger.Filter{})
	if err != nil {
		h.fail(w, "build bank book export", err)
		return
	}
	f, err := h.exporter.Book("Bank Book", book)
	if err != nil {
		h.fail(w, "render bank book export", err)
		return
	}
	h.stream(w, "bank-book.xlsx", f)
}

func (h *Handler) stream(w http.ResponseWriter, filename string, f *excelize.File) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := f.Write(w); err != nil {
		h.logger.Error("stream workbook", slog.Any("error", err))
	}
}

func (h *Handler) fail(w http.ResponseWriter, msg string, err error) {
	h.logger.Error(msg, slog.Any("error", err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
