package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/middleware"
)

// Services groups the application services the router exposes.
type Services struct {
	Products  *service.ProductService
	Carts     *service.CartService
	Wishlists *service.WishlistService
	Badges    *service.BadgeService
	Notifier  *service.Notifier
}

// RouterConfig tunes the HTTP surface.
type RouterConfig struct {
	CORS            middleware.CORSConfig
	PageSize        int
	CatalogMaxAge   int
	RequestTimeout  time.Duration
	StreamHeartbeat time.Duration
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(svcs Services, healthHandler *health.Handler, cfg RouterConfig, logger *slog.Logger) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.Tracing)
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORS))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	products := NewProductHandler(svcs.Products, cfg.PageSize, logger)
	carts := NewCartHandler(svcs.Carts, logger)
	wishlists := NewWishlistHandler(svcs.Wishlists, logger)
	badges := NewBadgeHandler(svcs.Badges, logger)
	events := NewEventsHandler(svcs.Notifier, svcs.Badges, cfg.StreamHeartbeat, logger)

	r.Route("/api/v1", func(r chi.Router) {
		// The change stream is long-lived: no timeout, no compression.
		r.With(middleware.RequireClientID, middleware.NoStore).Get("/events", events.Stream)

		r.Group(func(r chi.Router) {
			r.Use(chimw.Timeout(cfg.RequestTimeout))
			r.Use(chimw.Compress(5))

			// Catalog views
			r.Group(func(r chi.Router) {
				r.Use(middleware.CacheControl(cfg.CatalogMaxAge))

				r.Get("/products", products.List)
				r.Get("/products/{id}", products.Get)
				r.Get("/categories", products.Categories)
				r.Get("/categories/{category}/products", products.CategoryProducts)
			})

			// Per-client collections
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireClientID)
				r.Use(middleware.NoStore)
				r.Use(ContentTypeJSON)

				r.Get("/badge", badges.GetBadge)

				r.Get("/cart", carts.GetCart)
				r.Delete("/cart", carts.ClearCart)
				r.Post("/cart/items", carts.AddItem)
				r.Put("/cart/items/{productId}", carts.UpdateItemQuantity)
				r.Delete("/cart/items/{productId}", carts.RemoveItem)

				r.Get("/wishlist", wishlists.GetWishlist)
				r.Post("/wishlist/items", wishlists.AddItem)
				r.Delete("/wishlist/items/{productId}", wishlists.RemoveItem)
			})
		})
	})

	return r
}
