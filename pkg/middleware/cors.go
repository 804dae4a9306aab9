package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"authgateway/internal/origin"
)

var (
	corsMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	corsHeaders = []string{"Content-Type", "Authorization", "X-Requested-With", "Accept"}
)

const corsMaxAge = 24 * time.Hour

type corsPolicy struct {
	allowed map[string]struct{}
}

// CORS lets the configured browser origins call the API with credentials.
// Requests from other origins pass through without CORS headers, so the
// browser refuses to expose the response.
func CORS(origins []string, logger *slog.Logger) (func(http.Handler) http.Handler, error) {
	policy := corsPolicy{allowed: make(map[string]struct{})}
	for _, raw := range origins {
		normalized, err := origin.Normalize(raw)
		if err != nil {
			return nil, fmt.Errorf("parse origin %q: %w", raw, err)
		}
		if normalized != "" {
			policy.allowed[normalized] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestOrigin := strings.TrimSpace(r.Header.Get("Origin"))
			if requestOrigin == "" {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Add("Vary", "Origin")
			if !policy.allows(requestOrigin) {
				logger.Debug("origin not allowed for CORS", "origin", requestOrigin, "path", r.URL.Path)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", requestOrigin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.Header().Set("Access-Control-Allow-Methods", strings.Join(corsMethods, ", "))
				w.Header().Set("Access-Control-Allow-Headers", strings.Join(corsHeaders, ", "))
				w.Header().Set("Access-Control-Max-Age", strconv.Itoa(int(corsMaxAge/time.Second)))
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}, nil
}

func (p corsPolicy) allows(requestOrigin string) bool {
	normalized, err := origin.Normalize(requestOrigin)
	if err != nil || normalized == "" {
		return false
	}
	_, ok := p.allowed[normalized]
	return ok
}
