// Package gateway puts the auth engine in front of net/http. It resolves
// sessions for incoming requests, enforces the RequireAuth and OptionalAuth
// access policies, and proxies the engine's own endpoints through the
// Protocol Bridge.
//
// The resolved Identity travels on the request context as an immutable
// value, written at most once per request before the route handler runs.
package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"authgateway/pkg/authengine"
	"authgateway/pkg/fetch"
)

// DefaultMaxBodyBytes bounds request bodies forwarded to the engine.
const DefaultMaxBodyBytes int64 = 1 << 20

// Engine is what the gateway needs from the auth engine.
type Engine interface {
	GetSession(ctx context.Context, headers fetch.Headers) (*authengine.SessionResult, error)
	Handler(ctx context.Context, req *fetch.Request) (*fetch.Response, error)
}

type Options struct {
	// TrustProxy makes the bridge take the scheme from X-Forwarded-Proto.
	TrustProxy   bool
	MaxBodyBytes int64
}

type Gateway struct {
	engine Engine
	logger *slog.Logger
	opts   Options
}

func New(engine Engine, logger *slog.Logger, opts Options) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return &Gateway{engine: engine, logger: logger, opts: opts}
}

// errorBody is the wire shape of every error the gateway writes itself.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code"`
}

var (
	errUnauthorized = errorBody{
		Error:   "Unauthorized",
		Message: "You must be logged in to access this resource",
		Code:    "UNAUTHORIZED",
	}
	errAuthCheckFailed = errorBody{
		Error: "Internal server error",
		Code:  "AUTH_CHECK_FAILED",
	}
	errAuthFailure = errorBody{
		Error: "Internal authentication error",
		Code:  "AUTH_FAILURE",
	}
)

func (g *Gateway) writeError(w http.ResponseWriter, status int, body errorBody) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		g.logger.Error("failed to write error response", "error", err)
	}
}
