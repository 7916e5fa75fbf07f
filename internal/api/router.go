package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"storefront/pkg/metrics"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Products *ProductHandler
	Cart     *CartHandler
	Checkout *CheckoutHandler
	Roles    *RoleHandler
	Settings *SettingsHandler
}

// NewRouter assembles the HTTP surface. Metrics may be nil (tests).
func NewRouter(h Handlers, m *metrics.ServerMetrics, requestTimeout time.Duration) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))
	if m != nil {
		r.Use(m.Middleware)
	}
	r.Use(PrincipalMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.Products.List)
			r.Get("/featured", h.Products.ListFeatured)
			r.Post("/", h.Products.Create)
			r.Get("/{id}", h.Products.Get)
			r.Put("/{id}", h.Products.Update)
			r.Delete("/{id}", h.Products.Delete)
			r.Put("/{id}/featured", h.Products.SetFeatured)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.Cart.Summary)
			r.Delete("/", h.Cart.Clear)
			r.Post("/items", h.Cart.AddItem)
			r.Delete("/items/{product_id}", h.Cart.RemoveItem)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/sessions", h.Checkout.CreateSession)
			r.Get("/sessions/{session_id}", h.Checkout.SessionStatus)
		})

		r.Get("/me/role", h.Roles.CallerRole)
		r.Put("/roles/{principal}", h.Roles.AssignRole)

		r.Route("/banners", func(r chi.Router) {
			r.Get("/", h.Settings.ListBanners)
			r.Post("/", h.Settings.AddBanner)
			r.Delete("/", h.Settings.DeleteBanner)
		})

		r.Route("/gateway", func(r chi.Router) {
			r.Get("/configured", h.Settings.IsConfigured)
			r.Get("/configuration", h.Settings.GetConfiguration)
			r.Put("/configuration", h.Settings.SetConfiguration)
		})
	})

	return r
}
