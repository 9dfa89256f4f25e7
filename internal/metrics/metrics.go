// Package metrics exposes Prometheus collectors for the Steam endpoint router:
// inbound HTTP traffic, calls to the Steam store and Web API hosts, and the
// envelopes the router returns per logical endpoint.
package metrics

import (
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "steam_proxy"

// Inbound handling is local work; Steam calls run up to the 30s client timeout.
var (
	inboundBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}
	steamBuckets   = []float64{.05, .1, .25, .5, 1, 2, 5, 10, 20, 30}
	// 1 KiB to 16 MiB; featuredcategories payloads sit in the hundreds of KiB.
	bodyBuckets = prometheus.ExponentialBuckets(1024, 4, 8)
)

// StatusError labels upstream calls that produced no HTTP response.
const StatusError = "error"

// Metrics holds the registry and every collector the proxy records into.
// Observe methods are safe on a nil *Metrics, which the serverless binary uses.
type Metrics struct {
	Registry *prometheus.Registry

	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	UpstreamDuration  *prometheus.HistogramVec
	UpstreamResponses *prometheus.CounterVec
	UpstreamBodyBytes *prometheus.HistogramVec

	EndpointResponses *prometheus.CounterVec
}

// New builds a private registry so tests and binaries never share global state.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		Registry: reg,

		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Inbound requests to the router, health and metrics routes.",
		}, []string{"method", "status_code", "path_prefix"}),

		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Time to answer an inbound request, Steam round trip included.",
			Buckets:   inboundBuckets,
		}, []string{"method", "status_code", "path_prefix"}),

		RequestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Inbound requests currently waiting on a handler.",
		}),

		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Round trip to store.steampowered.com or api.steampowered.com per logical endpoint.",
			Buckets:   steamBuckets,
		}, []string{"endpoint"}),

		UpstreamResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_responses_total",
			Help:      "Steam responses per logical endpoint and HTTP status; status_code=\"error\" counts transport failures.",
		}, []string{"endpoint", "status_code"}),

		UpstreamBodyBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_body_bytes",
			Help:      "Size of Steam response bodies read per logical endpoint.",
			Buckets:   bodyBuckets,
		}, []string{"endpoint"}),

		EndpointResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "endpoint_responses_total",
			Help:      "Envelopes returned by the router per endpoint name (or missing/invalid) and status.",
		}, []string{"endpoint", "status_code"}),
	}

	reg.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.RequestsInFlight,
		m.UpstreamDuration,
		m.UpstreamResponses,
		m.UpstreamBodyBytes,
		m.EndpointResponses,
	)

	return m
}

// ObserveUpstream records one completed Steam call.
func (m *Metrics) ObserveUpstream(endpoint string, status int, seconds float64, bodyBytes int) {
	if m == nil {
		return
	}
	m.UpstreamDuration.WithLabelValues(endpoint).Observe(seconds)
	m.UpstreamResponses.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	m.UpstreamBodyBytes.WithLabelValues(endpoint).Observe(float64(bodyBytes))
}

// ObserveUpstreamError records a Steam call that failed before a response arrived.
func (m *Metrics) ObserveUpstreamError(endpoint string, seconds float64) {
	if m == nil {
		return
	}
	m.UpstreamDuration.WithLabelValues(endpoint).Observe(seconds)
	m.UpstreamResponses.WithLabelValues(endpoint, StatusError).Inc()
}

// ObserveEndpoint records one router envelope. The caller bounds the label.
func (m *Metrics) ObserveEndpoint(label string, status int) {
	if m == nil {
		return
	}
	m.EndpointResponses.WithLabelValues(label, strconv.Itoa(status)).Inc()
}

// knownMethods bounds the method label.
var knownMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "DELETE": true,
	"PATCH": true, "HEAD": true, "OPTIONS": true,
}

// NormalizeMethod maps non-standard methods to "other".
func NormalizeMethod(method string) string {
	if knownMethods[method] {
		return method
	}
	return "other"
}

// knownPrefixes are the routes the server registers: both router paths
// (the second is the Netlify function path browsers already call), health,
// status and the default metrics path.
var knownPrefixes = []string{"/api/steam-api", "/.netlify/functions/steam-api", "/healthz", "/proxy/status", "/metrics"}

// NormalizePath maps a request path onto a registered route, or "other".
func NormalizePath(path string) string {
	for _, prefix := range knownPrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") || strings.HasPrefix(path, prefix+"?") {
			return prefix
		}
	}
	return "other"
}
