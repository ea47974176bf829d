package pricing

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/pricing-engine/internal/common"
)

// Handler exposes the pricing calculation endpoints.
type Handler struct {
	Engine   *Engine
	Validate *validator.Validate

	// MaxBatchSize bounds a batch request; values below 1 disable the bound.
	MaxBatchSize int
}

type calculateRequest struct {
	CustomerCode     string          `json:"customerCode" validate:"required"`
	ItemRef          string          `json:"itemRef" validate:"required"`
	Quantity         decimal.Decimal `json:"quantity"`
	Currency         string          `json:"currency" validate:"required"`
	UnitOfMeasure    string          `json:"unitOfMeasure" validate:"required"`
	OrderDate        *time.Time      `json:"orderDate"`
	Site             string          `json:"site"`
	SalesRep         string          `json:"salesRep"`
	CustomerCategory string          `json:"customerCategory"`
	ItemCategory     string          `json:"itemCategory"`
}

type batchRequest struct {
	Contexts []calculateRequest `json:"contexts" validate:"required,min=1,dive"`
}

func (r calculateRequest) toContext() Context {
	pc := Context{
		CustomerCode:     r.CustomerCode,
		ItemRef:          r.ItemRef,
		Quantity:         r.Quantity,
		Currency:         r.Currency,
		UnitOfMeasure:    r.UnitOfMeasure,
		Site:             r.Site,
		SalesRep:         r.SalesRep,
		CustomerCategory: r.CustomerCategory,
		ItemCategory:     r.ItemCategory,
	}
	if r.OrderDate != nil {
		pc.OrderDate = *r.OrderDate
	}
	return pc
}

// Calculate prices a single context.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	if h.Engine == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "pricing engine not configured", nil)
		return
	}
	var payload calculateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if err := h.validate(payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	res, err := h.Engine.Calculate(r.Context(), payload.toContext())
	if err != nil {
		h.renderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, res)
}

// CalculateBatch prices multiple independent contexts in one request.
func (h *Handler) CalculateBatch(w http.ResponseWriter, r *http.Request) {
	if h.Engine == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "pricing engine not configured", nil)
		return
	}
	var payload batchRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if err := h.validate(payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	if h.MaxBatchSize > 0 && len(payload.Contexts) > h.MaxBatchSize {
		common.JSONError(w, http.StatusRequestEntityTooLarge, "BATCH_TOO_LARGE", "too many contexts in one batch", map[string]int{"max": h.MaxBatchSize})
		return
	}
	contexts := make([]Context, 0, len(payload.Contexts))
	for _, req := range payload.Contexts {
		contexts = append(contexts, req.toContext())
	}
	results, err := h.Engine.CalculateBatch(r.Context(), contexts)
	if err != nil {
		h.renderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"results": results})
}

func (h *Handler) validate(payload any) error {
	if h.Validate == nil {
		return nil
	}
	return h.Validate.Struct(payload)
}

func (h *Handler) renderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidContext):
		common.JSONError(w, http.StatusUnprocessableEntity, "INVALID_CONTEXT", err.Error(), nil)
	case IsDatasetError(err):
		common.JSONError(w, http.StatusServiceUnavailable, "DATASET_UNAVAILABLE", "reference dataset unavailable", nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "pricing calculation failed", nil)
	}
}
