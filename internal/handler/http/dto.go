package http

import (
	"errors"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/service"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
)

// ShippingLabel is shown on the cart summary; shipping is never charged.
const ShippingLabel = "Free"

// --- Request DTOs ---

// AddItemRequest is the JSON body for adding a product to the cart or wishlist.
type AddItemRequest struct {
	ProductID int `json:"product_id" validate:"required,gt=0"`
}

// UpdateQuantityRequest is the JSON body for changing a cart quantity.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,gte=1"`
}

// --- Response DTOs ---

// ProductView is a product with its display prices.
type ProductView struct {
	domain.Product
	DiscountedPrice string `json:"discounted_price"`
	OriginalPrice   string `json:"original_price"`
}

func newProductView(p domain.Product) ProductView {
	return ProductView{
		Product:         p,
		DiscountedPrice: domain.Money(p.DiscountedPrice()),
		OriginalPrice:   domain.Money(p.OriginalPrice()),
	}
}

func newProductViews(products []domain.Product) []ProductView {
	out := make([]ProductView, len(products))
	for i, p := range products {
		out[i] = newProductView(p)
	}
	return out
}

// CartItemView is one cart line.
type CartItemView struct {
	domain.CartEntry
	DiscountedPrice string `json:"discounted_price"`
	LineTotal       string `json:"line_total"`
}

// CartView is the cart page.
type CartView struct {
	Items         []CartItemView `json:"items"`
	ItemCount     int            `json:"item_count"`
	Subtotal      string         `json:"subtotal"`
	Shipping      string         `json:"shipping"`
	ShippingLabel string         `json:"shipping_label"`
	Total         string         `json:"total"`
	MaxQuantity   int            `json:"max_quantity"`
	Version       int64          `json:"version"`
}

func newCartView(state service.CartState, maxQuantity int) CartView {
	items := make([]CartItemView, len(state.Cart.Entries))
	for i, e := range state.Cart.Entries {
		items[i] = CartItemView{
			CartEntry:       e,
			DiscountedPrice: domain.Money(e.DiscountedPrice()),
			LineTotal:       domain.Money(e.LineTotal()),
		}
	}

	totals := state.Cart.Totals()
	return CartView{
		Items:         items,
		ItemCount:     state.Cart.ItemCount(),
		Subtotal:      domain.Money(totals.Subtotal),
		Shipping:      domain.Money(totals.Shipping),
		ShippingLabel: ShippingLabel,
		Total:         domain.Money(totals.Total),
		MaxQuantity:   maxQuantity,
		Version:       state.Version,
	}
}

// WishlistView is the wishlist page. HydrationError is set when the catalog
// could not be read; Items is then empty but ProductIDs is still accurate.
type WishlistView struct {
	ProductIDs     []int                   `json:"product_ids"`
	Items          []ProductView           `json:"items"`
	HydrationError *httputil.ErrorResponse `json:"hydration_error,omitempty"`
	Version        int64                   `json:"version"`
}

func newWishlistView(h service.HydratedWishlist) WishlistView {
	v := WishlistView{
		ProductIDs: h.Wishlist.IDs(),
		Items:      newProductViews(h.Items),
		Version:    h.Version,
	}
	if h.Err != nil {
		v.HydrationError = displayError(h.Err)
	}
	return v
}

// WishlistIDsView is returned by wishlist intents, which do not hydrate.
type WishlistIDsView struct {
	ProductIDs []int `json:"product_ids"`
	Version    int64 `json:"version"`
}

func newWishlistIDsView(state service.WishlistState) WishlistIDsView {
	return WishlistIDsView{ProductIDs: state.Wishlist.IDs(), Version: state.Version}
}

// MutationResponse wraps the collection after an intent with what it did.
type MutationResponse[T any] struct {
	Changed bool   `json:"changed"`
	Notice  string `json:"notice,omitempty"`
	Result  T      `json:"result"`
}

func newMutationResponse[T any](outcome service.Outcome, result T) MutationResponse[T] {
	return MutationResponse[T]{Changed: outcome.Changed, Notice: outcome.Notice, Result: result}
}

// CategoryProductsView is one page of a category listing.
type CategoryProductsView struct {
	Category   domain.Category `json:"category"`
	Products   []ProductView   `json:"products"`
	TotalCount int             `json:"total_count"`
	Page       int             `json:"page"`
	PerPage    int             `json:"per_page"`
	TotalPages int             `json:"total_pages"`
}

func displayError(err error) *httputil.ErrorResponse {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return &httputil.ErrorResponse{Code: appErr.Code, Message: appErr.Message}
	}
	return &httputil.ErrorResponse{Code: "CATALOG_UNAVAILABLE", Message: "the catalog could not be read"}
}
