package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/eunoia-app/eunoia-server/internal/analysis"
	"github.com/eunoia-app/eunoia-server/internal/config"
	"github.com/eunoia-app/eunoia-server/internal/db"
	"github.com/eunoia-app/eunoia-server/internal/inference"
)

func NewRouter(cfg *config.Config, database *db.DB, analyzer *analysis.Analyzer, client *inference.Client) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware)

	handlers := NewHandlers(cfg, database, analyzer, client)

	// Public endpoints
	r.Get("/health", handlers.Health)
	r.Get("/ready", handlers.Ready)

	// API v1 routes (authenticated)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.JWTSecret))
		r.Use(JSONContentType)

		r.Route("/entries", func(r chi.Router) {
			r.Post("/", handlers.CreateEntry)
			r.Get("/", handlers.ListEntries)
			r.Get("/{id}", handlers.GetEntry)
			r.Put("/{id}", handlers.UpdateEntry)
			r.Delete("/{id}", handlers.DeleteEntry)
		})

		r.Get("/profile", handlers.GetProfile)
		r.Put("/profile", handlers.UpdateProfile)

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/trends", handlers.Trends)
			r.Get("/insights", handlers.Insights)
			r.Get("/stats", handlers.Stats)
		})

		r.Route("/ai", func(r chi.Router) {
			r.Get("/methods", handlers.Methods)
			r.Post("/analyze", handlers.Analyze)
			r.Post("/analyze/rule-based", handlers.AnalyzeRuleBased)
		})
	})

	return r
}
