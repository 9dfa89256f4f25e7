package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"steam-proxy-go/internal/config"
	"steam-proxy-go/internal/metrics"
)

// SteamPaths are the paths the router is served on. The second matches the
// Netlify function path existing browser clients call.
var SteamPaths = []string{"/api/steam-api", "/.netlify/functions/steam-api"}

// RegisterRoutes wires all route handlers onto the Echo instance.
func RegisterRoutes(e *echo.Echo, steam *SteamHandler, health *HealthHandler, cfg *config.Config, m *metrics.Metrics) {
	e.GET("/healthz", health.Healthz)
	e.GET("/proxy/status", health.Status)

	for _, p := range SteamPaths {
		e.GET(p, steam.Handle)
		e.OPTIONS(p, steam.Preflight)
	}

	if cfg.Metrics.Enabled && m != nil {
		e.GET(cfg.Metrics.Path, echo.WrapHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))
	}
}
