package router

import (
	"tcsgo-engine/internal/handler"
	"tcsgo-engine/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler    *handler.Handler
	Operations *handler.OperationsHandler
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery)
	r.Use(middleware.EventID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Event-ID"},
		ExposedHeaders:   []string{"X-Event-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.Handler != nil {
		r.Get("/api/status", cfg.Handler.Status)
	}

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.Handler != nil {
			r.Get("/health", cfg.Handler.Health)
		}

		if cfg.Operations != nil {
			r.Route("/ops", func(r chi.Router) {
				r.Post("/buy-case", cfg.Operations.BuyCase)
				r.Post("/buy-key", cfg.Operations.BuyKey)
				r.Post("/open-case", cfg.Operations.OpenCase)
				r.Post("/sell-start", cfg.Operations.SellStart)
				r.Post("/sell-confirm", cfg.Operations.SellConfirm)
			})

			r.Get("/inventory/{platform}/{username}", cfg.Operations.ListInventory)
			r.Get("/results/{event_id}", cfg.Operations.GetResult)
			r.Post("/admin/reconcile", cfg.Operations.Reconcile)
		}
	})

	return r
}
