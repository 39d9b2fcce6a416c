package http

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"rentalfigs/internal/config"
	apperrors "rentalfigs/internal/errors"
	"rentalfigs/internal/middleware"
	"rentalfigs/pkg/contracts/domain"
)

// FiguresHandler serves the rendered figures and the run manifest
type FiguresHandler struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewFiguresHandler creates a new figures handler
func NewFiguresHandler(paths *config.Paths, logger *slog.Logger) *FiguresHandler {
	return &FiguresHandler{
		paths:  paths,
		logger: logger.With(slog.String("handler", "figures")),
	}
}

// RegisterRoutes adds the figure routes to r
func (h *FiguresHandler) RegisterRoutes(r chi.Router) {
	r.Get("/figures", h.ListFigures)
	r.Get("/figures/{name}", h.GetFigure)
	r.Get("/manifest", h.GetManifest)
}

// ListFigures handles GET /api/figures
func (h *FiguresHandler) ListFigures(w http.ResponseWriter, r *http.Request) {
	figures, err := h.listFigures()
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list figures",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetRequestID(r.Context())))
		apperrors.WriteError(w, r, apperrors.FileSystemError("listing figures", err))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"figures": figures,
		"count":   len(figures),
	})
}

// GetFigure handles GET /api/figures/{name}
func (h *FiguresHandler) GetFigure(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !validFigureName(name) {
		apperrors.WriteError(w, r, apperrors.NewWithDetails(http.StatusBadRequest, "INVALID_PARAMETER",
			"figure name must be a .png file name", name))
		return
	}

	path := h.paths.GetFigurePath(name)
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		apperrors.WriteError(w, r, apperrors.NotFoundError(name))
		return
	}
	if err != nil {
		apperrors.WriteError(w, r, apperrors.FileSystemError("opening figure", err))
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		apperrors.WriteError(w, r, apperrors.FileSystemError("reading figure", err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeContent(w, r, name, info.ModTime(), f)
}

// GetManifest handles GET /api/manifest
func (h *FiguresHandler) GetManifest(w http.ResponseWriter, r *http.Request) {
	data, err := os.ReadFile(h.paths.ManifestFile)
	if os.IsNotExist(err) {
		apperrors.WriteError(w, r, apperrors.NotFoundError(config.ManifestFileName))
		return
	}
	if err != nil {
		apperrors.WriteError(w, r, apperrors.FileSystemError("reading manifest", err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *FiguresHandler) listFigures() ([]domain.FigureInfo, error) {
	entries, err := os.ReadDir(h.paths.OutDir)
	if os.IsNotExist(err) {
		return []domain.FigureInfo{}, nil
	}
	if err != nil {
		return nil, err
	}

	figures := make([]domain.FigureInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !validFigureName(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		figures = append(figures, domain.FigureInfo{
			Name:       entry.Name(),
			Size:       info.Size(),
			ModifiedAt: info.ModTime(),
			URL:        "/api/figures/" + entry.Name(),
		})
	}

	sort.Slice(figures, func(i, j int) bool { return figures[i].Name < figures[j].Name })
	return figures, nil
}

// validFigureName accepts plain .png file names, rejecting paths and
// hidden temp files
func validFigureName(name string) bool {
	if name == "" || strings.HasPrefix(name, ".") {
		return false
	}
	if filepath.Base(name) != name || strings.ContainsAny(name, `/\`) {
		return false
	}
	return strings.EqualFold(filepath.Ext(name), ".png")
}
