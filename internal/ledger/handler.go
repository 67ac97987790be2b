package ledger

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-backoffice/meridian/internal/platform/httpx"
)

// Handler exposes journal and day-book endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers ledger routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/ledger", h.journal)
	r.Get("/cash-book", h.cashBook)
	r.Get("/bank-book", h.bankBook)
}

func filterFromQuery(r *http.Request) Filter {
	q := r.URL.Query()
	partyID, _ := strconv.ParseInt(q.Get("party_id"), 10, 64)
	filter := Filter{
		PartyID:   partyID,
		PartyName: q.Get("party"),
		Search:    q.Get("search"),
	}
	if from := q.Get("from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			filter.From = t
		}
	}
	if to := q.Get("to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			filter.To = t
		}
	}
	for _, dt := range q["doc_type"] {
		filter.DocTypes = append(filter.DocTypes, DocumentType(dt))
	}
	return filter
}

func (h *Handler) journal(w http.ResponseWriter, r *http.Request) {
	stmt, err := h.service.Journal(r.Context(), filterFromQuery(r))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stmt)
}

func (h *Handler) cashBook(w http.ResponseWriter, r *http.Request) {
	book, err := h.service.CashBook(r.Context(), filterFromQuery(r))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, book)
}

func (h *Handler) bankBook(w http.ResponseWriter, r *http.Request) {
	book, err := h.service.BankBook(r.Context(), filterFromQuery(r))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, book)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	h.logger.Error("ledger request failed", slog.Any("error", err))
	httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
}
