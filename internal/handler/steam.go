package handler

import (
	"log/slog"
	"net/url"

	"github.com/labstack/echo/v4"

	"steam-proxy-go/internal/model"
	"steam-proxy-go/internal/router"
)

// SteamHandler serves the Steam endpoint router over HTTP.
type SteamHandler struct {
	router *router.Router
	logger *slog.Logger
}

// NewSteamHandler creates a SteamHandler.
func NewSteamHandler(r *router.Router, logger *slog.Logger) *SteamHandler {
	return &SteamHandler{
		router: r,
		logger: logger.With("component", "steam_handler"),
	}
}

// Handle runs the query string through the router and writes the envelope.
func (h *SteamHandler) Handle(c echo.Context) error {
	req := c.Request()
	env := h.router.Handle(req.Context(), FirstValues(req.URL.Query()))
	return writeEnvelope(c, env)
}

// Preflight answers CORS preflight requests.
func (h *SteamHandler) Preflight(c echo.Context) error {
	return writeEnvelope(c, router.Preflight())
}

// FirstValues flattens query values, keeping the first value of each key.
func FirstValues(q url.Values) map[string]string {
	params := make(map[string]string, len(q))
	for k, vals := range q {
		if len(vals) > 0 {
			params[k] = vals[0]
		}
	}
	return params
}

func writeEnvelope(c echo.Context, env model.Envelope) error {
	header := c.Response().Header()
	for k, v := range env.Headers {
		header.Set(k, v)
	}
	if env.Body == "" {
		return c.NoContent(env.StatusCode)
	}
	c.Response().WriteHeader(env.StatusCode)
	_, err := c.Response().Write([]byte(env.Body))
	return err
}
