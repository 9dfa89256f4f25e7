// Package model defines shared types for the proxy.
package model

import (
	"context"
	"net/http"
)

// Envelope is the uniform response produced for every proxy invocation.
// Hosts relay it verbatim: the serverless adapter maps it onto a Lambda
// response, the HTTP server writes it to the client.
type Envelope struct {
	StatusCode int
	Headers    map[string]string
	Body       string
}

// UpstreamRequest is a single outbound GET against the Steam API.
type UpstreamRequest struct {
	Ctx      context.Context
	Endpoint string // logical endpoint name, used for metric labels
	URL      string
	Header   http.Header
}

// UpstreamResponse is a fully buffered upstream reply.
type UpstreamResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}
