package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/talentgrid/intake-service/internal/http/handlers"
	httpmiddleware "github.com/talentgrid/intake-service/internal/http/middleware"
	"github.com/talentgrid/intake-service/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	IntakeHandler      *handlers.IntakeHandler
	AdminHandler       *handlers.AdminSubmissionsHandler
	AdminAuthSecret    string
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// FloodGuardRate/Burst throttle raw request traffic per IP before it
	// reaches any handler. Zero rate disables the guard.
	FloodGuardRate  float64
	FloodGuardBurst int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}
	if cfg.FloodGuardRate > 0 {
		r.Use(httpmiddleware.Throttle(cfg.FloodGuardRate, cfg.FloodGuardBurst))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", handlers.Health)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.IntakeHandler != nil {
			public.Route("/intake", func(r chi.Router) {
				r.Post("/contact", cfg.IntakeHandler.Submit)
				r.Get("/csrf", cfg.IntakeHandler.IssueToken)
			})
		}
	})

	// Admin routes (protected by JWT)
	if cfg.AdminHandler != nil {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			admin.Get("/submissions", cfg.AdminHandler.List)
			admin.Get("/submissions/{id}", cfg.AdminHandler.Get)
			admin.Delete("/submissions/{id}", cfg.AdminHandler.Delete)
			admin.Post("/ratelimit/reset", cfg.AdminHandler.ResetRateLimit)
		})
	}

	return r
}
