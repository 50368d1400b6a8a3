package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/api/handlers"
	custommiddleware "github.com/ndewijer/Gold-Price-Tracker-Backend/internal/api/middleware"
	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(priceService *service.PriceService, systemService *service.SystemService, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(allowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(systemService)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/gold", func(r chi.Router) {
			goldHandler := handlers.NewGoldHandler(priceService)
			r.Get("/", goldHandler.Dashboard)
			r.Get("/chart-data", goldHandler.ChartData)
		})
	})

	return r
}
