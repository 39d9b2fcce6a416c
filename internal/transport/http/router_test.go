package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentalfigs/internal/config"
	"rentalfigs/internal/infrastructure"
	"rentalfigs/pkg/contracts/domain"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n")

func setupGallery(t *testing.T) (*config.Paths, http.Handler) {
	t.Helper()
	base := t.TempDir()
	paths, err := config.NewPaths(config.PathsConfig{
		DataDir: filepath.Join(base, "cleaned_data"),
		OutDir:  filepath.Join(base, "figures"),
	})
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(paths.DataExportDir, 0755))

	for _, name := range []string{"fig_rq2_roi_top10_all.png", "fig_rq1_rf_importance.png", ".tmp-123.png", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(paths.OutDir, name), pngHeader, 0644))
	}

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return paths, NewRouter(paths, config.Default().Server, nil, logger)
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealthCheck(t *testing.T) {
	_, router := setupGallery(t)

	rec := get(t, router, "/api/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, config.AppVersion, body["version"])
	assert.Equal(t, float64(2), body["figures"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestListFigures(t *testing.T) {
	_, router := setupGallery(t)

	rec := get(t, router, "/api/figures")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Figures []domain.FigureInfo `json:"figures"`
		Count   int                 `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 2, body.Count)
	assert.Equal(t, "fig_rq1_rf_importance.png", body.Figures[0].Name)
	assert.Equal(t, "/api/figures/fig_rq1_rf_importance.png", body.Figures[0].URL)
	assert.Equal(t, int64(len(pngHeader)), body.Figures[0].Size)
	assert.Equal(t, "fig_rq2_roi_top10_all.png", body.Figures[1].Name)
}

func TestListFigures_MissingOutDir(t *testing.T) {
	paths, err := config.NewPaths(config.PathsConfig{DataDir: t.TempDir(), OutDir: filepath.Join(t.TempDir(), "none")})
	require.NoError(t, err)
	router := NewRouter(paths, config.Default().Server, nil, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))

	rec := get(t, router, "/api/figures")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"figures":[],"count":0}`, rec.Body.String())
}

func TestGetFigure(t *testing.T) {
	_, router := setupGallery(t)

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantBody   string
	}{
		{"existing figure", "/api/figures/fig_rq1_rf_importance.png", http.StatusOK, ""},
		{"missing figure", "/api/figures/fig_rq3_avg_price_prepost.png", http.StatusNotFound, "NOT_FOUND"},
		{"not a png", "/api/figures/notes.txt", http.StatusBadRequest, "INVALID_PARAMETER"},
		{"hidden temp file", "/api/figures/.tmp-123.png", http.StatusBadRequest, "INVALID_PARAMETER"},
		{"encoded traversal", "/api/figures/..%2Fsecret.png", http.StatusBadRequest, "INVALID_PARAMETER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, router, tt.target)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
				assert.Equal(t, pngHeader, rec.Body.Bytes())
				return
			}
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}

func TestGetManifest(t *testing.T) {
	paths, router := setupGallery(t)

	rec := get(t, router, "/api/manifest")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	require.NoError(t, os.WriteFile(paths.ManifestFile, []byte(`{"run_id":"abc","status":"completed"}`), 0644))
	rec = get(t, router, "/api/manifest")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"run_id":"abc","status":"completed"}`, rec.Body.String())
}

func TestGallery(t *testing.T) {
	_, router := setupGallery(t)

	rec := get(t, router, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), `<img src="/api/figures/fig_rq1_rf_importance.png"`)
	assert.NotContains(t, rec.Body.String(), ".tmp-123.png")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestMetricsEndpoint(t *testing.T) {
	paths, err := config.NewPaths(config.PathsConfig{DataDir: t.TempDir(), OutDir: t.TempDir()})
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	providers, err := infrastructure.InitializeOTel(&infrastructure.OTelConfig{EnableMetrics: true, TraceExporter: "none"}, logger)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	router := NewRouter(paths, config.Default().Server, providers, logger)
	get(t, router, "/api/health")

	rec := get(t, router, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestValidFigureName(t *testing.T) {
	assert.True(t, validFigureName("fig_rq1_rf_importance.png"))
	assert.True(t, validFigureName("FIG.PNG"))
	assert.False(t, validFigureName(""))
	assert.False(t, validFigureName("../fig.png"))
	assert.False(t, validFigureName(`dir\fig.png`))
	assert.False(t, validFigureName("manifest.json"))
}
