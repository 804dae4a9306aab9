package gateway

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"authgateway/internal/observability"
	"authgateway/pkg/fetch"
)

var errNoResponse = errors.New("auth engine returned no response")

// Bridge serves the engine's catch-all route. The engine response is fully
// buffered before anything is written, so a failure at any step can still
// be answered with 500 AUTH_FAILURE.
func (g *Gateway) Bridge() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp, body, err := g.roundTrip(w, r)
		if err != nil {
			observability.BridgeRequests.WithLabelValues("error").Inc()
			g.logger.Error("authentication error", "method", r.Method, "path", r.URL.Path, "error", err)
			g.writeError(w, http.StatusInternalServerError, errAuthFailure)
			return
		}
		observability.BridgeRequests.WithLabelValues("ok").Inc()
		g.commit(w, resp, body)
	})
}

func (g *Gateway) roundTrip(w http.ResponseWriter, r *http.Request) (*fetch.Response, []byte, error) {
	req, err := g.ToFetchRequest(w, r)
	if err != nil {
		return nil, nil, err
	}

	resp, err := g.engine.Handler(r.Context(), req)
	if err != nil {
		return nil, nil, fmt.Errorf("auth handler: %w", err)
	}
	if resp == nil {
		return nil, nil, errNoResponse
	}

	if !resp.HasBody() {
		return resp, nil, nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read auth response: %w", err)
	}
	if body == nil {
		body = []byte{}
	}
	return resp, body, nil
}

// ToFetchRequest rebuilds r as a standards-shaped request: absolute URL,
// ordered headers with multi-valued names kept as separate entries, and
// the raw body. w is only used to signal an oversized body.
func (g *Gateway) ToFetchRequest(w http.ResponseWriter, r *http.Request) (*fetch.Request, error) {
	if r.Host == "" {
		return nil, errors.New("request has no host")
	}
	rawURL := g.scheme(r) + "://" + r.Host + r.URL.RequestURI()

	var body []byte
	if r.Body != nil && r.Body != http.NoBody {
		data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, g.opts.MaxBodyBytes))
		if err != nil {
			return nil, fmt.Errorf("read request body: %w", err)
		}
		body = data
	}

	return fetch.NewRequest(r.Method, rawURL, fetch.FromHTTP(r.Header), body)
}

func (g *Gateway) scheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if g.opts.TrustProxy {
		proto, _, _ := strings.Cut(r.Header.Get("X-Forwarded-Proto"), ",")
		proto = strings.ToLower(strings.TrimSpace(proto))
		if proto == "http" || proto == "https" {
			return proto
		}
	}
	return "http"
}

func (g *Gateway) commit(w http.ResponseWriter, resp *fetch.Response, body []byte) {
	header := w.Header()
	for _, h := range resp.Header.Entries() {
		header.Add(h.Name, h.Value)
	}

	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)

	if body == nil {
		return
	}
	if _, err := w.Write(body); err != nil {
		g.logger.Error("failed to write auth response", "error", err)
	}
}
