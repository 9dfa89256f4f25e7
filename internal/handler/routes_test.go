package handler

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"steam-proxy-go/internal/client"
	"steam-proxy-go/internal/config"
	"steam-proxy-go/internal/metrics"
	"steam-proxy-go/internal/router"
)

func newTestEcho(t *testing.T, upstreamURL string, cfg *config.Config) *echo.Echo {
	t.Helper()
	cfg.Steam.APIKey = "test-key"
	cfg.Steam.StoreURL = upstreamURL
	cfg.Steam.APIURL = upstreamURL
	cfg.Upstream = config.UpstreamConfig{TimeoutSeconds: 10, IdleConnections: 10}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New()
	sc := client.NewSteamClient(cfg, logger, m)
	r, err := router.New(cfg, sc, m, logger)
	if err != nil {
		t.Fatalf("router.New: %v", err)
	}

	e := echo.New()
	RegisterRoutes(e, NewSteamHandler(r, logger), NewHealthHandler(cfg, "test"), cfg, m)
	return e
}

func TestRegisterRoutes_Wiring(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer upstream.Close()

	e := newTestEcho(t, upstream.URL, &config.Config{
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
	})

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{"GET /healthz", http.MethodGet, "/healthz", http.StatusOK},
		{"GET /proxy/status", http.MethodGet, "/proxy/status", http.StatusOK},
		{"GET /metrics", http.MethodGet, "/metrics", http.StatusOK},
		{"GET /api/steam-api featured", http.MethodGet, "/api/steam-api?endpoint=featured", http.StatusOK},
		{"GET netlify path featured", http.MethodGet, "/.netlify/functions/steam-api?endpoint=featured", http.StatusOK},
		{"GET /api/steam-api without endpoint", http.MethodGet, "/api/steam-api", http.StatusBadRequest},
		{"OPTIONS /api/steam-api", http.MethodOptions, "/api/steam-api", http.StatusNoContent},
		{"POST /api/steam-api not allowed", http.MethodPost, "/api/steam-api?endpoint=featured", http.StatusMethodNotAllowed},
		{"GET /unknown returns 404", http.MethodGet, "/unknown", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, http.NoBody)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestRegisterRoutes_MetricsDisabled(t *testing.T) {
	e := newTestEcho(t, "https://store.steampowered.com", &config.Config{})

	req := httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestRegisterRoutes_MetricsExposeEndpointCounter(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer upstream.Close()

	e := newTestEcho(t, upstream.URL, &config.Config{
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/steam-api?endpoint=featuredgames", http.NoBody)
	e.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	want := `steam_proxy_endpoint_responses_total{endpoint="featuredgames",status_code="200"} 1`
	if !strings.Contains(rec.Body.String(), want) {
		t.Errorf("metrics output missing %q", want)
	}
}
