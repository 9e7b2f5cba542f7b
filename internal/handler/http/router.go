package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/litreads/internal/view"
	"github.com/utafrali/litreads/pkg/health"
	"github.com/utafrali/litreads/pkg/middleware"
)

const (
	serviceName     = "storefront"
	requestTimeout  = 30 * time.Second
	staticMaxAgeSec = 3600
)

// RouterConfig carries the HTTP-level settings of the storefront.
type RouterConfig struct {
	PprofCIDRs    []string
	CookieSecure  bool
	FormRateLimit middleware.RateLimitConfig
}

// NewRouter creates a chi router with every storefront route registered.
// ctx bounds background work owned by the router, such as limiter eviction.
func NewRouter(
	ctx context.Context,
	storefront *StorefrontHandler,
	api *APIHandler,
	healthHandler *health.Handler,
	logger *slog.Logger,
	cfg RouterConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(requestTimeout))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(serviceName))
	r.Use(middleware.Tracing(serviceName))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	r.With(middleware.CacheControl(staticMaxAgeSec)).
		Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(view.StaticFS())))

	visitor := middleware.Visitor(middleware.VisitorOptions{Secure: cfg.CookieSecure})
	r.Group(func(r chi.Router) {
		r.Use(visitor)
		r.Use(middleware.NoStore)
		r.Use(VaryOnFragment)

		r.Get("/", storefront.Home)
		r.Get("/products", storefront.Products)
		r.Get("/products/grid", storefront.ProductsGrid)
		r.Get("/product", storefront.Product)
		r.Get("/about", storefront.About)
		r.Get("/contact", storefront.Contact)
		r.Get("/checkout", storefront.Checkout)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", storefront.Cart)
			r.Get("/fragment", storefront.CartFragment)
			r.Get("/count", storefront.CartCount)
			r.Post("/add", storefront.AddToCart)
			r.Post("/adjust", storefront.AdjustCart)
			r.Post("/remove", storefront.RemoveFromCart)
			r.Post("/clear", storefront.ClearCart)
		})

		r.Post("/preferences/dark-mode", storefront.ToggleDarkMode)

		// Simulated forms are throttled per client IP.
		r.Group(func(r chi.Router) {
			limit := cfg.FormRateLimit
			limit.OnLimited = http.HandlerFunc(storefront.RateLimited)
			r.Use(middleware.RateLimit(ctx, limit, logger))

			r.Post("/checkout", storefront.SubmitCheckout)
			r.Post("/contact", storefront.SubmitContact)
			r.Post("/newsletter", storefront.SubmitNewsletter)
		})

		r.Route("/api/v1", func(r chi.Router) {
			r.Use(ContentTypeJSON)

			r.Get("/products", api.ListProducts)
			r.Get("/products/{id}", api.GetProduct)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", api.GetCart)
				r.Delete("/", api.ClearCart)

				r.Post("/items", api.AddItem)
				r.Put("/items/{productId}", api.UpdateItemQuantity)
				r.Delete("/items/{productId}", api.RemoveItem)
			})
		})
	})

	r.NotFound(visitor(http.HandlerFunc(storefront.NotFound)).ServeHTTP)

	return r
}
