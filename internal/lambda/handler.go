// Package lambda adapts the endpoint router to AWS Lambda / Netlify Functions
// API Gateway proxy events.
package lambda

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"steam-proxy-go/internal/model"
	"steam-proxy-go/internal/router"
)

// Handler serves API Gateway proxy events through the router.
type Handler struct {
	router *router.Router
	logger *slog.Logger
}

// NewHandler creates a Handler.
func NewHandler(r *router.Router, logger *slog.Logger) *Handler {
	return &Handler{
		router: r,
		logger: logger.With("component", "lambda_handler"),
	}
}

// Handle converts the event to router input and the envelope to a proxy
// response. The returned error is always nil: a function error would make the
// platform answer with its own 502 and no CORS headers.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if req.HTTPMethod == http.MethodOptions {
		return toResponse(router.Preflight()), nil
	}

	params := queryParams(req)
	h.logger.Debug("invocation", "method", req.HTTPMethod, "path", req.Path, "endpoint", params["endpoint"])

	return toResponse(h.router.Handle(ctx, params)), nil
}

// queryParams prefers the single-value map and falls back to the first of
// each multi-value entry.
func queryParams(req events.APIGatewayProxyRequest) map[string]string {
	params := make(map[string]string, len(req.QueryStringParameters)+len(req.MultiValueQueryStringParameters))
	for k, vals := range req.MultiValueQueryStringParameters {
		if len(vals) > 0 {
			params[k] = vals[0]
		}
	}
	for k, v := range req.QueryStringParameters {
		params[k] = v
	}
	return params
}

func toResponse(env model.Envelope) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: env.StatusCode,
		Headers:    env.Headers,
		Body:       env.Body,
	}
}
