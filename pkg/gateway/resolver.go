package gateway

import (
	"context"
	"fmt"
	"net/http"

	"authgateway/pkg/fetch"
)

// Resolve asks the engine for the session carried by header. A nil or
// half-filled engine answer is the anonymous identity. Engine failures are
// returned to the caller, which decides whether they are fatal.
func (g *Gateway) Resolve(ctx context.Context, header http.Header) (Identity, error) {
	res, err := g.engine.GetSession(ctx, fetch.FromHTTP(header))
	if err != nil {
		return Identity{}, fmt.Errorf("get session: %w", err)
	}
	if res == nil {
		return Identity{}, nil
	}
	return NewIdentity(res.Session, res.User), nil
}
