package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"steam-proxy-go/internal/config"
	"steam-proxy-go/internal/router"
)

// Version is a string type for dependency injection of the build version.
type Version string

// HealthHandler serves health and status endpoints.
type HealthHandler struct {
	cfg     *config.Config
	version Version
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(cfg *config.Config, v Version) *HealthHandler {
	return &HealthHandler{cfg: cfg, version: v}
}

// Healthz returns a simple OK response for liveness probes.
func (h *HealthHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// statusResponse is the body of the proxy status endpoint. It never carries the key itself.
type statusResponse struct {
	Status           string   `json:"status"`
	Version          string   `json:"version"`
	StoreURL         string   `json:"store_url"`
	APIURL           string   `json:"api_url"`
	APIKeyConfigured bool     `json:"api_key_configured"`
	Endpoints        []string `json:"endpoints"`
}

// Status returns proxy status information.
func (h *HealthHandler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, statusResponse{
		Status:           "ok",
		Version:          string(h.version),
		StoreURL:         h.cfg.Steam.StoreURL,
		APIURL:           h.cfg.Steam.APIURL,
		APIKeyConfigured: h.cfg.Steam.APIKey != "",
		Endpoints:        router.Names(),
	})
}
