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

// WishlistHandler handles HTTP requests for wishlist endpoints.
type WishlistHandler struct {
	service *service.WishlistService
	logger  *slog.Logger
}

// NewWishlistHandler creates a new wishlist HTTP handler.
func NewWishlistHandler(svc *service.WishlistService, logger *slog.Logger) *WishlistHandler {
	return &WishlistHandler{service: svc, logger: logger}
}

// GetWishlist handles GET /api/v1/wishlist. A catalog failure still answers
// 200 with the ids and a hydration_error.
func (h *WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	hydrated, err := h.service.Hydrate(r.Context(), logger.ClientIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, newWishlistView(hydrated))
}

// AddItem handles POST /api/v1/wishlist/items
func (h *WishlistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	state, outcome, err := h.service.Add(r.Context(), logger.ClientIDFromContext(r.Context()), req.ProductID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	status := http.StatusOK
	if outcome.Changed {
		status = http.StatusCreated
	}
	httputil.WriteData(w, status, newMutationResponse(outcome, newWishlistIDsView(state)))
}

// RemoveItem handles DELETE /api/v1/wishlist/items/{productId}
func (h *WishlistHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseID(w, "product id", chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	state, outcome, err := h.service.Remove(r.Context(), logger.ClientIDFromContext(r.Context()), productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, newMutationResponse(outcome, newWishlistIDsView(state)))
}
