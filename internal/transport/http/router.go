package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"rentalfigs/internal/config"
	"rentalfigs/internal/infrastructure"
	"rentalfigs/internal/middleware"
)

// NewRouter builds the gallery router. providers may be nil, which disables
// tracing middleware and the /metrics endpoint.
func NewRouter(paths *config.Paths, cfg config.ServerConfig, providers *infrastructure.OTelProviders, logger *slog.Logger) chi.Router {
	figures := NewFiguresHandler(paths, logger)
	health := NewHealthHandler(figures, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	r.Group(func(r chi.Router) {
		if providers != nil {
			otelMiddleware, err := middleware.NewOTelMiddleware(providers)
			if err != nil {
				logger.Error("Failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
			} else {
				r.Use(otelMiddleware.Handler)
			}
		}
		r.Use(middleware.StructuredLogger(logger))
		r.Use(middleware.Recoverer(logger))
		r.Use(middleware.SecurityHeaders)
		if cfg.RateLimitRPS > 0 {
			r.Use(middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, logger).Handler)
		}

		r.Get("/", ServeGallery(figures, logger))
		r.Route("/api", func(r chi.Router) {
			r.Get("/health", health.HealthCheck)
			figures.RegisterRoutes(r)
		})
	})

	if providers != nil && providers.PrometheusHTTP != nil {
		r.Handle("/metrics", providers.PrometheusHTTP)
	}

	return r
}

// NewServer wraps handler in an http.Server configured from cfg
func NewServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}
