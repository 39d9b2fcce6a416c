package http

import (
	"html/template"
	"log/slog"
	"net/http"

	"rentalfigs/internal/config"
	apperrors "rentalfigs/internal/errors"
	"rentalfigs/pkg/contracts/domain"
)

var galleryTemplate = template.Must(template.New("gallery").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>{{.Title}}</title>
    <style>
        body { font-family: sans-serif; margin: 24px; }
        figure { display: inline-block; margin: 12px; }
        img { max-width: 640px; border: 1px solid #ddd; }
    </style>
</head>
<body>
    <h1>{{.Title}}</h1>
    {{if .Figures}}{{range .Figures}}
    <figure>
        <img src="{{.URL}}" alt="{{.Name}}">
        <figcaption>{{.Name}}</figcaption>
    </figure>
    {{end}}{{else}}
    <p>No figures rendered yet.</p>
    {{end}}
</body>
</html>
`))

// ServeGallery serves an HTML page showing every rendered figure
func ServeGallery(figures *FiguresHandler, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := figures.listFigures()
		if err != nil {
			apperrors.WriteError(w, r, apperrors.FileSystemError("listing figures", err))
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		data := struct {
			Title   string
			Figures []domain.FigureInfo
		}{
			Title:   config.AppName + " figures",
			Figures: list,
		}
		if err := galleryTemplate.Execute(w, data); err != nil {
			logger.ErrorContext(r.Context(), "failed to render gallery", slog.String("error", err.Error()))
		}
	}
}
