package sales

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/meridian-backoffice/meridian/internal/platform/httpx"
	"github.com/meridian-backoffice/meridian/internal/shared"
)

// Handler exposes sales endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers sales routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/invoices", h.listInvoices)
	r.Post("/invoices", h.createInvoice)
	r.Get("/invoices/{id}", h.getInvoice)
}

type invoiceLinePayload struct {
	SKU  string          `json:"sku" validate:"required"`
	Qty  float64         `json:"qty"`
	Rate decimal.Decimal `json:"rate"`
}

type invoicePayload struct {
	Number       string               `json:"number"`
	CustomerID   int64                `json:"customer_id"`
	CustomerName string               `json:"customer_name"`
	IssuedAt     time.Time            `json:"issued_at"`
	SubTotal     decimal.Decimal      `json:"sub_total"`
	TotalNet     decimal.Decimal      `json:"total_net"`
	GrandTotal   decimal.Decimal      `json:"grand_total"`
	Mode         string               `json:"mode"`
	Note         string               `json:"note"`
	Lines        []invoiceLinePayload `json:"lines" validate:"dive"`
}

func (h *Handler) createInvoice(w http.ResponseWriter, r *http.Request) {
	var payload invoicePayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", err.Error())
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	input := CreateInvoiceInput{
		Number:       payload.Number,
		CustomerID:   payload.CustomerID,
		CustomerName: payload.CustomerName,
		IssuedAt:     payload.IssuedAt,
		SubTotal:     payload.SubTotal,
		TotalNet:     payload.TotalNet,
		GrandTotal:   payload.GrandTotal,
		Mode:         payload.Mode,
		Note:         payload.Note,
	}
	for _, line := range payload.Lines {
		input.Lines = append(input.Lines, InvoiceLine{SKU: line.SKU, Qty: line.Qty, Rate: line.Rate})
	}
	inv, err := h.service.CreateInvoice(r.Context(), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", "invalid id")
		return
	}
	inv, err := h.service.GetInvoice(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	filters := shared.ListFilters{Limit: limit, Offset: offset, Search: r.URL.Query().Get("search")}

	invoices, err := h.service.ListInvoices(r.Context(), filters)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"invoices": invoices})
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("sales request failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
