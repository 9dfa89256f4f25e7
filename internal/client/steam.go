// Package client provides the upstream HTTP client for the Steam API.
package client

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"steam-proxy-go/internal/config"
	"steam-proxy-go/internal/metrics"
	"steam-proxy-go/internal/model"
)

// ErrBodyTooLarge is returned when the upstream body exceeds upstream.max_body_bytes.
var ErrBodyTooLarge = errors.New("upstream response body too large")

// SteamClient sends GET requests to the Steam storefront and Web API.
type SteamClient struct {
	httpClient   *http.Client
	logger       *slog.Logger
	metrics      *metrics.Metrics
	maxBodyBytes int64
}

// NewSteamClient creates a SteamClient with connection pooling and timeouts.
// A nil m disables upstream metrics.
func NewSteamClient(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) *SteamClient {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        cfg.Upstream.IdleConnections,
		MaxIdleConnsPerHost: cfg.Upstream.IdleConnections,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}

	return &SteamClient{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   time.Duration(cfg.Upstream.TimeoutSeconds) * time.Second,
		},
		logger:       logger.With("component", "steam_client"),
		metrics:      m,
		maxBodyBytes: cfg.Upstream.MaxBodyBytes,
	}
}

// Fetch performs a single GET and buffers the whole response body.
// The request context bounds the call; no retries are made.
func (c *SteamClient) Fetch(ur *model.UpstreamRequest) (*model.UpstreamResponse, error) {
	req, err := http.NewRequestWithContext(ur.Ctx, http.MethodGet, ur.URL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}
	if ur.Header != nil {
		req.Header = ur.Header.Clone()
	}

	c.logger.Debug("upstream request",
		"endpoint", ur.Endpoint,
		"host", req.URL.Host,
		"path", req.URL.Path,
	)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveUpstreamError(ur.Endpoint, time.Since(start).Seconds())
		return nil, fmt.Errorf("upstream request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := c.readBody(resp.Body)
	c.metrics.ObserveUpstream(ur.Endpoint, resp.StatusCode, time.Since(start).Seconds(), len(body))
	if err != nil {
		return nil, err
	}

	return &model.UpstreamResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

func (c *SteamClient) readBody(r io.Reader) ([]byte, error) {
	if c.maxBodyBytes <= 0 {
		body, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read upstream body: %w", err)
		}
		return body, nil
	}

	// One extra byte tells an exact-size body apart from an oversized one.
	body, err := io.ReadAll(io.LimitReader(r, c.maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upstream body: %w", err)
	}
	if int64(len(body)) > c.maxBodyBytes {
		return nil, fmt.Errorf("%w: limit %d bytes", ErrBodyTooLarge, c.maxBodyBytes)
	}
	return body, nil
}
