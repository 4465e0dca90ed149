package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/validator"
)

// CartHandler handles HTTP requests for cart endpoints.
type CartHandler struct {
	service *service.CartService
	logger  *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(svc *service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		service: svc,
		logger:  logger,
	}
}

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.Get(r.Context(), logger.ClientIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, newCartView(state, h.service.MaxQuantity()))
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	state, outcome, err := h.service.AddItem(r.Context(), logger.ClientIDFromContext(r.Context()), req.ProductID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	status := http.StatusOK
	if outcome.Changed {
		status = http.StatusCreated
	}
	httputil.WriteData(w, status, newMutationResponse(outcome, newCartView(state, h.service.MaxQuantity())))
}

// UpdateItemQuantity handles PUT /api/v1/cart/items/{productId}
func (h *CartHandler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseID(w, "product id", chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	var req UpdateQuantityRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	state, outcome, err := h.service.SetQuantity(r.Context(), logger.ClientIDFromContext(r.Context()), productID, req.Quantity)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, newMutationResponse(outcome, newCartView(state, h.service.MaxQuantity())))
}

// RemoveItem handles DELETE /api/v1/cart/items/{productId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseID(w, "product id", chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	state, outcome, err := h.service.RemoveItem(r.Context(), logger.ClientIDFromContext(r.Context()), productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, newMutationResponse(outcome, newCartView(state, h.service.MaxQuantity())))
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	state, outcome, err := h.service.Clear(r.Context(), logger.ClientIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, newMutationResponse(outcome, newCartView(state, h.service.MaxQuantity())))
}
