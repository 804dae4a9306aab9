package gateway

import (
	"net/http"

	"authgateway/internal/observability"
)

type Policy string

const (
	PolicyRequire  Policy = "require"
	PolicyOptional Policy = "optional"
)

// Outcome is the terminal state of one access check.
type Outcome string

const (
	Authenticated Outcome = "authenticated"
	Anonymous     Outcome = "anonymous"
	Rejected      Outcome = "rejected"
	Errored       Outcome = "errored"
)

// RequireAuth lets only authenticated requests reach next. Anonymous
// requests get 401 UNAUTHORIZED, resolver failures 500 AUTH_CHECK_FAILED.
func (g *Gateway) RequireAuth(next http.Handler) http.Handler {
	return g.policy(PolicyRequire, next)
}

// OptionalAuth always reaches next, with the identity attached when there
// is one. Resolver failures are logged and treated as anonymous.
func (g *Gateway) OptionalAuth(next http.Handler) http.Handler {
	return g.policy(PolicyOptional, next)
}

func (g *Gateway) policy(policy Policy, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, resolved := IdentityFromContext(ctx)
		var err error
		if !resolved {
			id, err = g.Resolve(ctx, r.Header)
		}

		outcome := decide(policy, id, err)
		observability.AuthDecisions.WithLabelValues(string(policy), string(outcome)).Inc()

		switch outcome {
		case Rejected:
			g.writeError(w, http.StatusUnauthorized, errUnauthorized)
			return
		case Errored:
			g.logger.Error("auth check failed", "method", r.Method, "path", r.URL.Path, "error", err)
			g.writeError(w, http.StatusInternalServerError, errAuthCheckFailed)
			return
		}

		if err != nil {
			g.logger.Error("optional auth check failed", "method", r.Method, "path", r.URL.Path, "error", err)
		}
		if !resolved {
			ctx = WithIdentity(ctx, id)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

func decide(policy Policy, id Identity, err error) Outcome {
	switch {
	case err != nil && policy == PolicyRequire:
		return Errored
	case err != nil:
		return Anonymous
	case id.Authenticated():
		return Authenticated
	case policy == PolicyRequire:
		return Rejected
	default:
		return Anonymous
	}
}
