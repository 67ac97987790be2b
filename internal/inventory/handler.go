package inventory

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridian-backoffice/meridian/internal/platform/httpx"
	"github.com/meridian-backoffice/meridian/internal/shared"
)

// Handler exposes catalog endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers inventory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/items", h.listItems)
	r.Post("/items", h.createItem)
	r.Get("/items/low-stock", h.listLowStock)
	r.Get("/items/{sku}", h.getItem)
	r.Put("/items/{sku}", h.updateItem)
}

type itemPayload struct {
	SKU      string  `json:"sku" validate:"required"`
	Name     string  `json:"name" validate:"required"`
	Unit     string  `json:"unit"`
	Stock    float64 `json:"stock" validate:"gte=0"`
	MinStock float64 `json:"min_stock" validate:"gte=0"`
	MaxStock float64 `json:"max_stock" validate:"gte=0"`
}

type itemResponse struct {
	ID       int64   `json:"id"`
	SKU      string  `json:"sku"`
	Name     string  `json:"name"`
	Unit     string  `json:"unit"`
	Stock    float64 `json:"stock"`
	MinStock float64 `json:"min_stock"`
	MaxStock float64 `json:"max_stock"`
}

func toItemResponse(it Item) itemResponse {
	return itemResponse{
		ID:       it.ID,
		SKU:      it.SKU,
		Name:     it.Name,
		Unit:     it.Unit,
		Stock:    it.Stock,
		MinStock: it.MinStock,
		MaxStock: it.MaxStock,
	}
}

func (h *Handler) createItem(w http.ResponseWriter, r *http.Request) {
	var payload itemPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", err.Error())
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	item, err := h.service.CreateItem(r.Context(), CreateItemInput{
		SKU:      payload.SKU,
		Name:     payload.Name,
		Unit:     payload.Unit,
		Stock:    payload.Stock,
		MinStock: payload.MinStock,
		MaxStock: payload.MaxStock,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toItemResponse(item))
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	var payload itemPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", err.Error())
		return
	}
	item := Item{
		SKU:      chi.URLParam(r, "sku"),
		Name:     payload.Name,
		Unit:     payload.Unit,
		MinStock: payload.MinStock,
		MaxStock: payload.MaxStock,
	}
	if err := h.service.UpdateItem(r.Context(), item); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) getItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.GetItem(r.Context(), chi.URLParam(r, "sku"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toItemResponse(item))
}

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	filters := shared.ListFilters{Limit: limit, Offset: offset, Search: r.URL.Query().Get("search")}

	items, total, err := h.service.ListItems(r.Context(), filters)
	if err != nil {
		h.respondError(w, err)
		return
	}
	out := make([]itemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, toItemResponse(it))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": out, "total": total})
}

func (h *Handler) listLowStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.LowStock(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	out := make([]itemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, toItemResponse(it))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": out})
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrDuplicateSKU):
		httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("inventory request failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
