package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/ignite/lead-console/internal/config"
)

// SetupRoutes configures all API routes.
func SetupRoutes(h *Handlers, health *HealthChecker, corsCfg config.CORSConfig) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsCfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Link"},
		MaxAge:         300,
	}))

	// Health checks
	r.Get("/health", health.HandleHealth)
	r.Get("/health/live", health.HandleLiveness)
	r.Get("/health/ready", health.HandleReadiness)

	r.Route("/api", func(r chi.Router) {
		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/", h.GetDashboard)
			r.Post("/refresh", h.RefreshDashboard)
			r.Post("/leads/{id}/automation", h.ToggleDashboardAutomation)
		})

		r.Route("/pipeline", func(r chi.Router) {
			r.Get("/", h.GetPipeline)
			r.Post("/refresh", h.RefreshPipeline)
			r.Post("/move", h.MoveLead)
		})

		r.Route("/leads", func(r chi.Router) {
			r.Get("/", h.GetLeads)
			r.Post("/refresh", h.RefreshLeads)
			r.Put("/{id}/draft", h.EditLeadName)
			r.Post("/{id}/blur", h.BlurLeadName)
			r.Put("/{id}/stage", h.SetLeadStage)
			r.Post("/{id}/automation", h.ToggleLeadAutomation)
			r.Post("/{id}/advertisement", h.ToggleLeadAdvertisement)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "route not found")
	})

	return r
}
