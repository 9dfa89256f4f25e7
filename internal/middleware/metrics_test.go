package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	dto "github.com/prometheus/client_model/go"

	"steam-proxy-go/internal/metrics"
)

// findMetric returns the first sample of family name whose labels include want.
func findMetric(t *testing.T, m *metrics.Metrics, name string, want map[string]string) *dto.Metric {
	t.Helper()
	families, err := m.Registry.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
	next:
		for _, metric := range f.GetMetric() {
			labels := make(map[string]string)
			for _, lp := range metric.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			for k, v := range want {
				if labels[k] != v {
					continue next
				}
			}
			return metric
		}
	}
	return nil
}

func serve(e *echo.Echo, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, http.NoBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestMetricsMiddleware_CountsRequests(t *testing.T) {
	m := metrics.New()
	e := echo.New()
	e.Use(MetricsMiddleware(m))
	e.GET("/api/steam-api", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	serve(e, http.MethodGet, "/api/steam-api?endpoint=featured")

	metric := findMetric(t, m, "steam_proxy_http_requests_total", map[string]string{
		"method": "GET", "status_code": "200", "path_prefix": "/api/steam-api",
	})
	if metric == nil {
		t.Fatal("expected steam_proxy_http_requests_total for GET /api/steam-api 200")
	}
	if v := metric.GetCounter().GetValue(); v != 1 {
		t.Errorf("counter value = %v, want 1", v)
	}

	hist := findMetric(t, m, "steam_proxy_http_request_duration_seconds", map[string]string{"path_prefix": "/api/steam-api"})
	if hist == nil || hist.GetHistogram().GetSampleCount() != 1 {
		t.Error("expected one duration sample for /api/steam-api")
	}
}

func TestMetricsMiddleware_Statuses(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		wantLabels map[string]string
	}{
		{
			name:       "envelope error status",
			method:     http.MethodGet,
			path:       "/api/steam-api",
			wantLabels: map[string]string{"status_code": "400", "path_prefix": "/api/steam-api"},
		},
		{
			name:       "http error",
			method:     http.MethodGet,
			path:       "/.netlify/functions/steam-api",
			wantLabels: map[string]string{"status_code": "404", "path_prefix": "/.netlify/functions/steam-api"},
		},
		{
			name:       "unknown method normalized",
			method:     "XYZZY",
			path:       "/healthz",
			wantLabels: map[string]string{"method": "other", "path_prefix": "/healthz"},
		},
		{
			name:       "router not found",
			method:     http.MethodGet,
			path:       "/nonexistent",
			wantLabels: map[string]string{"method": "GET", "status_code": "404", "path_prefix": "other"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := metrics.New()
			e := echo.New()
			e.Use(MetricsMiddleware(m))
			e.GET("/api/steam-api", func(c echo.Context) error {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "Missing endpoint parameter"})
			})
			e.GET("/.netlify/functions/steam-api", func(c echo.Context) error {
				return echo.NewHTTPError(http.StatusNotFound, "not found")
			})
			e.Any("/healthz", func(c echo.Context) error {
				return c.String(http.StatusOK, "ok")
			})

			serve(e, tt.method, tt.path)

			if findMetric(t, m, "steam_proxy_http_requests_total", tt.wantLabels) == nil {
				t.Errorf("expected steam_proxy_http_requests_total with labels %v", tt.wantLabels)
			}
		})
	}
}

func TestMetricsMiddleware_InFlightReturnsToZero(t *testing.T) {
	m := metrics.New()
	e := echo.New()
	e.Use(MetricsMiddleware(m))

	var during float64
	e.GET("/healthz", func(c echo.Context) error {
		during = findMetric(t, m, "steam_proxy_http_requests_in_flight", nil).GetGauge().GetValue()
		return c.String(http.StatusOK, "ok")
	})

	serve(e, http.MethodGet, "/healthz")

	if during != 1 {
		t.Errorf("in-flight during request = %v, want 1", during)
	}
	if after := findMetric(t, m, "steam_proxy_http_requests_in_flight", nil).GetGauge().GetValue(); after != 0 {
		t.Errorf("in-flight after request = %v, want 0", after)
	}
}
