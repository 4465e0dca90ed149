package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/pagination"
)

// ProductHandler serves the product grid, detail and category views.
type ProductHandler struct {
	service  *service.ProductService
	pageSize int
	logger   *slog.Logger
}

// NewProductHandler creates a product handler. pageSize is the default grid
// page size.
func NewProductHandler(svc *service.ProductService, pageSize int, logger *slog.Logger) *ProductHandler {
	if pageSize <= 0 {
		pageSize = service.DefaultPageSize
	}
	return &ProductHandler{service: svc, pageSize: pageSize, logger: logger}
}

// List handles GET /api/v1/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.List(r.Context(), pagination.FromRequest(r, h.pageSize))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, pagination.Result[ProductView]{
		Data:       newProductViews(page.Data),
		TotalCount: page.TotalCount,
		Page:       page.Page,
		PerPage:    page.PerPage,
		TotalPages: page.TotalPages,
		HasNext:    page.HasNext,
		HasPrev:    page.HasPrev,
	})
}

// Get handles GET /api/v1/products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, "product id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, newProductView(p))
}

// Categories handles GET /api/v1/categories
func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.service.Categories(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, cats)
}

// CategoryProducts handles GET /api/v1/categories/{category}/products
func (h *ProductHandler) CategoryProducts(w http.ResponseWriter, r *http.Request) {
	value := chi.URLParam(r, "category")

	cat, page, err := h.service.InCategory(r.Context(), value, pagination.FromRequest(r, h.pageSize))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, CategoryProductsView{
		Category:   cat,
		Products:   newProductViews(page.Data),
		TotalCount: page.TotalCount,
		Page:       page.Page,
		PerPage:    page.PerPage,
		TotalPages: page.TotalPages,
	})
}
