// Package router maps logical Steam endpoints onto upstream calls and turns
// every outcome into a response envelope.
//
// Handle never returns an error: client mistakes become 400s, a missing key
// for an endpoint that requires one becomes a 500, upstream failures keep the upstream
// status, and anything unexpected becomes a generic 500 with the cause in
// "details".
package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"steam-proxy-go/internal/config"
	"steam-proxy-go/internal/metrics"
	"steam-proxy-go/internal/model"
)

// Fetcher performs the single outbound GET of an invocation.
type Fetcher interface {
	Fetch(*model.UpstreamRequest) (*model.UpstreamResponse, error)
}

// Error bodies returned to the caller.
const (
	MsgMissingEndpoint = "Missing endpoint parameter"
	MsgInvalidEndpoint = "Invalid endpoint parameter"
	MsgNoAPIKey        = "API key not configured"
	MsgInvalidURL      = "Invalid url parameter"
	MsgUnexpected      = "An error occurred fetching data from Steam API"
)

const jsonUserAgent = "steam-proxy-go/1.0"

// ErrInvalidURL is returned for a customurl target that is not an allowed absolute http(s) URL.
var ErrInvalidURL = errors.New("invalid url parameter")

// keyPattern matches key query parameter values in URLs embedded in messages.
var keyPattern = regexp.MustCompile(`(?i)(key=)[^&\s"]+`)

// Router dispatches inbound query parameters through the endpoint table.
// It holds no mutable state and is safe for concurrent use.
type Router struct {
	fetcher     Fetcher
	apiKey      string
	storeURL    *url.URL
	apiURL      *url.URL
	userAgent   string
	customHosts map[string]bool
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

// New creates a Router. The metrics parameter is optional.
func New(cfg *config.Config, f Fetcher, m *metrics.Metrics, logger *slog.Logger) (*Router, error) {
	store, err := url.Parse(cfg.Steam.StoreURL)
	if err != nil {
		return nil, fmt.Errorf("parse steam.store_url: %w", err)
	}
	api, err := url.Parse(cfg.Steam.APIURL)
	if err != nil {
		return nil, fmt.Errorf("parse steam.api_url: %w", err)
	}

	hosts := make(map[string]bool, len(cfg.Steam.CustomURLHosts))
	for _, h := range cfg.Steam.CustomURLHosts {
		hosts[strings.ToLower(h)] = true
	}

	ua := cfg.Steam.UserAgent
	if ua == "" {
		ua = config.DefaultUserAgent
	}

	r := &Router{
		fetcher:     f,
		apiKey:      cfg.Steam.APIKey,
		storeURL:    store,
		apiURL:      api,
		userAgent:   ua,
		customHosts: hosts,
		logger:      logger.With("component", "router"),
		metrics:     m,
	}
	r.logger.Info("router ready", "api_key_configured", r.apiKey != "", "endpoints", len(Endpoints))
	return r, nil
}

// KeyConfigured reports whether a Steam API key was supplied.
func (r *Router) KeyConfigured() bool {
	return r.apiKey != ""
}

// Handle resolves params to an upstream call and returns the envelope for it.
func (r *Router) Handle(ctx context.Context, params map[string]string) (env model.Envelope) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("router panic", "panic", p)
			env = r.failure(fmt.Errorf("internal error: %v", p))
		}
		r.observe(params["endpoint"], env.StatusCode)
	}()

	r.logger.Debug("request received", "params", params, "api_key_configured", r.apiKey != "")

	return r.dispatch(ctx, params)
}

func (r *Router) dispatch(ctx context.Context, params map[string]string) model.Envelope {
	name := params["endpoint"]
	if name == "" {
		return errorEnvelope(http.StatusBadRequest, MsgMissingEndpoint)
	}

	ep, ok := Lookup(name)
	if ok && ep.RequiresKey && r.apiKey == "" {
		return errorEnvelope(http.StatusInternalServerError, MsgNoAPIKey)
	}
	if !ok {
		return errorEnvelope(http.StatusBadRequest, MsgInvalidEndpoint)
	}
	if ep.Param != "" && params[ep.Param] == "" {
		return errorEnvelope(http.StatusBadRequest, fmt.Sprintf("Missing %s parameter", ep.Param))
	}

	target, err := r.buildURL(ep, params)
	if errors.Is(err, ErrInvalidURL) {
		return errorEnvelope(http.StatusBadRequest, MsgInvalidURL)
	}
	if err != nil {
		return r.failure(err)
	}

	return r.fetch(ctx, ep, target)
}

// buildURL resolves the endpoint's outbound URL for the given parameters.
func (r *Router) buildURL(ep Endpoint, params map[string]string) (string, error) {
	var base *url.URL
	switch ep.Host {
	case HostLiteral:
		return r.checkCustomURL(params[ep.Param])
	case HostAPI:
		base = r.apiURL
	default:
		base = r.storeURL
	}

	u := *base
	u.Path = strings.TrimSuffix(base.Path, "/") + ep.Path

	q := make(url.Values, len(ep.Query)+2)
	for k, v := range ep.Query {
		q[k] = v
	}
	if ep.Param != "" && ep.ParamQuery != "" {
		q.Set(ep.ParamQuery, params[ep.Param])
	}
	if ep.Keyed {
		q.Set("key", r.apiKey)
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func (r *Router) checkCustomURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: no host", ErrInvalidURL)
	}
	if len(r.customHosts) > 0 && !r.customHosts[strings.ToLower(u.Hostname())] {
		return "", fmt.Errorf("%w: host %q not allowed", ErrInvalidURL, u.Hostname())
	}
	return raw, nil
}

func (r *Router) fetch(ctx context.Context, ep Endpoint, target string) model.Envelope {
	header := make(http.Header)
	switch ep.Kind {
	case KindHTML:
		header.Set("User-Agent", r.userAgent)
		header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		header.Set("Accept-Language", "en-US,en;q=0.9")
	default:
		header.Set("User-Agent", jsonUserAgent)
		header.Set("Accept", "application/json")
	}

	r.logger.Debug("fetching upstream", "endpoint", ep.Name, "url", r.redact(target))

	resp, err := r.fetcher.Fetch(&model.UpstreamRequest{
		Ctx:      ctx,
		Endpoint: ep.Name,
		URL:      target,
		Header:   header,
	})
	if err != nil {
		return r.failure(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		r.logger.Warn("upstream returned non-success status",
			"endpoint", ep.Name,
			"status", resp.StatusCode,
		)
		return jsonEnvelope(resp.StatusCode, map[string]string{
			"error":   fmt.Sprintf("Steam API returned %d status", resp.StatusCode),
			"details": r.scrub(string(resp.Body)),
		})
	}

	if ep.Kind == KindHTML {
		return newEnvelope(http.StatusOK, KindHTML, string(resp.Body))
	}

	body, err := decodeJSON(resp.Body, ep.Transform)
	if err != nil {
		return r.failure(fmt.Errorf("%s: %w", ep.Name, err))
	}
	return newEnvelope(http.StatusOK, KindJSON, string(body))
}

// failure converts an unexpected error into the generic 500 envelope.
func (r *Router) failure(err error) model.Envelope {
	msg := r.redact(err.Error())
	r.logger.Error("request failed", "err", msg)
	return jsonEnvelope(http.StatusInternalServerError, map[string]string{
		"error":   MsgUnexpected,
		"details": msg,
	})
}

// redact removes the API key from error messages and URLs, including key
// parameters that do not match the configured secret.
func (r *Router) redact(s string) string {
	return r.scrub(keyPattern.ReplaceAllString(s, "${1}REDACTED"))
}

// scrub removes only the configured secret, leaving upstream bodies otherwise
// untouched.
func (r *Router) scrub(s string) string {
	if r.apiKey == "" {
		return s
	}
	return strings.ReplaceAll(s, r.apiKey, "REDACTED")
}

func (r *Router) observe(name string, status int) {
	label := name
	if name == "" {
		label = "missing"
	} else if _, ok := Lookup(name); !ok {
		label = "invalid"
	}
	r.metrics.ObserveEndpoint(label, status)
}

// CORSHeaders returns the headers every envelope carries.
func CORSHeaders() map[string]string {
	return map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Headers": "Content-Type",
	}
}

// Preflight returns the envelope answering a CORS preflight request.
func Preflight() model.Envelope {
	h := CORSHeaders()
	h["Access-Control-Allow-Methods"] = "GET, OPTIONS"
	return model.Envelope{StatusCode: http.StatusNoContent, Headers: h}
}

func newEnvelope(status int, kind Kind, body string) model.Envelope {
	h := CORSHeaders()
	h["Content-Type"] = kind.ContentType()
	return model.Envelope{StatusCode: status, Headers: h, Body: body}
}

func jsonEnvelope(status int, v map[string]string) model.Envelope {
	// Marshaling a map of strings cannot fail.
	b, _ := json.Marshal(v)
	return newEnvelope(status, KindJSON, string(b))
}

func errorEnvelope(status int, msg string) model.Envelope {
	return jsonEnvelope(status, map[string]string{"error": msg})
}
