// Package http serves a rendered figure directory over HTTP.
//
// Handlers are thin: they read the output directory and the run manifest
// and translate failures into JSON errors through the errors package.
//
// # Routes
//
//	GET /                      HTML gallery of the rendered figures
//	GET /api/health            liveness and figure count
//	GET /api/figures           rendered PNGs as domain.FigureInfo
//	GET /api/figures/{name}    a single PNG
//	GET /api/manifest          the manifest.json of the last run
//	GET /metrics               Prometheus metrics, when enabled
//
// # Middleware
//
// Requests pass RequestID, RealIP, OpenTelemetry, StructuredLogger,
// Recoverer, SecurityHeaders and, when configured, the rate limiter, in
// that order.
package http
