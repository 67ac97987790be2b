package finance

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

// Handler exposes voucher and book-setting endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers finance routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/receipt-vouchers", h.listKind(KindReceipt))
	r.Post("/receipt-vouchers", h.createKind(KindReceipt))
	r.Get("/payment-vouchers", h.listKind(KindPayment))
	r.Post("/payment-vouchers", h.createKind(KindPayment))
	r.Get("/vouchers/{id}", h.getVoucher)
	r.Put("/book-settings/{book}", h.setBookOpening)
	r.Get("/book-settings/{book}", h.getBookOpening)
}

type voucherPayload struct {
	Number    string          `json:"number"`
	Date      time.Time       `json:"date"`
	PartyID   int64           `json:"party_id"`
	PartyName string          `json:"party_name"`
	Amount    decimal.Decimal `json:"amount"`
	Mode      string          `json:"mode" validate:"required"`
	Note      string          `json:"note"`
}

func (h *Handler) createKind(kind VoucherKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload voucherPayload
		if err := httpx.DecodeJSON(r, &payload); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", err.Error())
			return
		}
		if err := h.validate.Struct(payload); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
			return
		}
		input := CreateVoucherInput{
			Number:    payload.Number,
			Date:      payload.Date,
			PartyID:   payload.PartyID,
			PartyName: payload.PartyName,
			Amount:    payload.Amount,
			Mode:      payload.Mode,
			Note:      payload.Note,
		}
		var (
			v   Voucher
			err error
		)
		if kind == KindReceipt {
			v, err = h.service.CreateReceiptVoucher(r.Context(), input)
		} else {
			v, err = h.service.CreatePaymentVoucher(r.Context(), input)
		}
		if err != nil {
			h.respondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusCreated, v)
	}
}

func (h *Handler) listKind(kind VoucherKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		filters := shared.ListFilters{Limit: limit, Offset: offset, Search: r.URL.Query().Get("search")}

		vouchers, err := h.service.ListVouchers(r.Context(), kind, filters)
		if err != nil {
			h.respondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"vouchers": vouchers})
	}
}

func (h *Handler) getVoucher(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", "invalid id")
		return
	}
	v, err := h.service.GetVoucher(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, v)
}

type bookSettingPayload struct {
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

func (h *Handler) setBookOpening(w http.ResponseWriter, r *http.Request) {
	var payload bookSettingPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", err.Error())
		return
	}
	book := chi.URLParam(r, "book")
	if err := h.service.SetBookOpeningBalance(r.Context(), book, payload.OpeningBalance); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

func (h *Handler) getBookOpening(w http.ResponseWriter, r *http.Request) {
	book := chi.URLParam(r, "book")
	balance, err := h.service.BookOpeningBalance(r.Context(), book)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"book": book, "opening_balance": balance})
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("finance request failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
