package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"rentalfigs/internal/config"
)

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	figures *FiguresHandler
	started time.Time
	logger  *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(figures *FiguresHandler, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		figures: figures,
		started: time.Now(),
		logger:  logger.With(slog.String("handler", "health")),
	}
}

// HealthCheck handles GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	count := 0
	figures, err := h.figures.listFigures()
	if err != nil {
		h.logger.WarnContext(r.Context(), "output directory unreadable", slog.String("error", err.Error()))
		status = "degraded"
	} else {
		count = len(figures)
	}

	render.JSON(w, r, map[string]interface{}{
		"status":  status,
		"service": config.AppName,
		"version": config.AppVersion,
		"figures": count,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
	})
}
