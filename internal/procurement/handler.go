package procurement

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

// Handler exposes procurement endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers procurement routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/purchase-orders", h.listPOs)
	r.Post("/purchase-orders", h.createPO)
	r.Get("/purchase-orders/{id}", h.getPO)

	r.Get("/grns", h.listGRNs)
	r.Post("/grns", h.createGRN)
	r.Post("/grns/{id}/post", h.postGRN)

	r.Get("/returns", h.listReturns)
	r.Post("/returns", h.processReturn)

	r.Get("/supplier-credits", h.listCredits)

	r.Get("/purchase-invoices", h.listPurchaseInvoices)
	r.Post("/purchase-invoices", h.createPurchaseInvoice)
}

type poLinePayload struct {
	SKU   string          `json:"sku" validate:"required"`
	Qty   float64         `json:"qty" validate:"gt=0"`
	Price decimal.Decimal `json:"price"`
}

type poPayload struct {
	Number       string          `json:"number"`
	SupplierID   int64           `json:"supplier_id"`
	SupplierName string          `json:"supplier_name"`
	ExpectedAt   time.Time       `json:"expected_at"`
	Note         string          `json:"note"`
	Lines        []poLinePayload `json:"lines" validate:"required,min=1,dive"`
}

func (h *Handler) createPO(w http.ResponseWriter, r *http.Request) {
	var payload poPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", err.Error())
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	input := CreatePOInput{
		Number:       payload.Number,
		SupplierID:   payload.SupplierID,
		SupplierName: payload.SupplierName,
		ExpectedAt:   payload.ExpectedAt,
		Note:         payload.Note,
	}
	for _, line := range payload.Lines {
		input.Lines = append(input.Lines, POLineInput{SKU: line.SKU, Qty: line.Qty, Price: line.Price})
	}
	po, err := h.service.CreatePurchaseOrder(r.Context(), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, po)
}

func (h *Handler) getPO(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", "invalid id")
		return
	}
	po, err := h.service.GetPurchaseOrder(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, po)
}

func (h *Handler) listPOs(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListPurchaseOrders(r.Context(), listFilters(r))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"purchase_orders": orders})
}

type grnLinePayload struct {
	SKU   string          `json:"sku" validate:"required"`
	Qty   float64         `json:"qty"`
	Price decimal.Decimal `json:"price"`
}

type grnPayload struct {
	Number     string           `json:"number"`
	POID       int64            `json:"po_id"`
	SupplierID int64            `json:"supplier_id"`
	ReceivedAt time.Time        `json:"received_at"`
	Note       string           `json:"note"`
	Lines      []grnLinePayload `json:"lines" validate:"required,min=1,dive"`
}

func (h *Handler) createGRN(w http.ResponseWriter, r *http.Request) {
	var payload grnPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", err.Error())
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	input := CreateGRNInput{
		Number:     payload.Number,
		POID:       payload.POID,
		SupplierID: payload.SupplierID,
		ReceivedAt: payload.ReceivedAt,
		Note:       payload.Note,
	}
	for _, line := range payload.Lines {
		input.Lines = append(input.Lines, ReceiptLineInput{SKU: line.SKU, Qty: line.Qty, Price: line.Price})
	}
	grn, err := h.service.CreateGoodsReceipt(r.Context(), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, grn)
}

func (h *Handler) postGRN(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", "invalid id")
		return
	}
	items, po, err := h.service.PostGoodsReceipt(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items, "purchase_order": po})
}

func (h *Handler) listGRNs(w http.ResponseWriter, r *http.Request) {
	grns, err := h.service.ListGoodsReceipts(r.Context(), listFilters(r))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"goods_receipts": grns})
}

type returnLinePayload struct {
	SKU   string          `json:"sku" validate:"required"`
	Qty   float64         `json:"qty"`
	Price decimal.Decimal `json:"price"`
}

type returnPayload struct {
	ID           int64               `json:"id"`
	ReturnNumber string              `json:"return_number"`
	POID         int64               `json:"po_id"`
	SupplierID   int64               `json:"supplier_id"`
	SupplierName string              `json:"supplier_name"`
	ReturnedAt   time.Time           `json:"returned_at"`
	Note         string              `json:"note"`
	Lines        []returnLinePayload `json:"lines" validate:"required,min=1,dive"`
}

func (h *Handler) processReturn(w http.ResponseWriter, r *http.Request) {
	var payload returnPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", err.Error())
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	ret := PurchaseReturn{
		ID:           payload.ID,
		ReturnNumber: payload.ReturnNumber,
		POID:         payload.POID,
		SupplierID:   payload.SupplierID,
		SupplierName: payload.SupplierName,
		ReturnedAt:   payload.ReturnedAt,
		Note:         payload.Note,
	}
	for _, line := range payload.Lines {
		ret.Lines = append(ret.Lines, ReturnLine{SKU: line.SKU, Qty: line.Qty, Price: line.Price})
	}
	result, err := h.service.ProcessReturn(r.Context(), ret)
	if err != nil {
		h.respondError(w, err)
		return
	}
	status := http.StatusOK
	if result.Applied {
		status = http.StatusCreated
	}
	httpx.JSON(w, status, map[string]any{
		"applied":         result.Applied,
		"message":         result.Message,
		"items":           result.Items,
		"purchase_order":  result.PO,
		"supplier_credit": result.Credit,
	})
}

func (h *Handler) listReturns(w http.ResponseWriter, r *http.Request) {
	returns, err := h.service.ListReturns(r.Context(), listFilters(r))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"returns": returns})
}

func (h *Handler) listCredits(w http.ResponseWriter, r *http.Request) {
	credits, err := h.service.ListSupplierCredits(r.Context(), listFilters(r))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"supplier_credits": credits})
}

type purchaseInvoicePayload struct {
	Number       string                `json:"number"`
	SupplierID   int64                 `json:"supplier_id"`
	SupplierName string                `json:"supplier_name"`
	IssuedAt     time.Time             `json:"issued_at"`
	SubTotal     decimal.Decimal       `json:"sub_total"`
	NetAmount    decimal.Decimal       `json:"net_amount"`
	Total        decimal.Decimal       `json:"total"`
	Mode         string                `json:"mode"`
	Note         string                `json:"note"`
	Lines        []PurchaseInvoiceLine `json:"lines"`
}

func (h *Handler) createPurchaseInvoice(w http.ResponseWriter, r *http.Request) {
	var payload purchaseInvoicePayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", err.Error())
		return
	}
	inv, err := h.service.CreatePurchaseInvoice(r.Context(), PurchaseInvoiceInput{
		Number:       payload.Number,
		SupplierID:   payload.SupplierID,
		SupplierName: payload.SupplierName,
		IssuedAt:     payload.IssuedAt,
		SubTotal:     payload.SubTotal,
		NetAmount:    payload.NetAmount,
		Total:        payload.Total,
		Mode:         payload.Mode,
		Note:         payload.Note,
		Lines:        payload.Lines,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

func (h *Handler) listPurchaseInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.service.ListPurchaseInvoices(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"purchase_invoices": invoices})
}

func listFilters(r *http.Request) shared.ListFilters {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	return shared.ListFilters{Limit: limit, Offset: offset, Search: r.URL.Query().Get("search")}
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrValidation), errors.Is(err, ErrNoReturnIdentity):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrInvalidState):
		httpx.Problem(w, http.StatusConflict, "Invalid State", err.Error())
	case errors.Is(err, shared.ErrIdempotencyConflict):
		httpx.Problem(w, http.StatusConflict, "Duplicate Request", err.Error())
	case errors.Is(err, shared.ErrLockBusy):
		httpx.Problem(w, http.StatusConflict, "Busy", "another submission for this return is in flight")
	default:
		h.logger.Error("procurement request failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
