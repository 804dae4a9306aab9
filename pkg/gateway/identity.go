package gateway

import (
	"context"

	"authgateway/pkg/session"
	"authgateway/pkg/user"
)

// Identity is the resolved session/user pair of one request. Either both
// are set or neither is. Accessors hand out copies.
type Identity struct {
	session *session.Session
	user    *user.User
}

// NewIdentity pairs s and u. If either is nil the result is anonymous.
func NewIdentity(s *session.Session, u *user.User) Identity {
	if s == nil || u == nil {
		return Identity{}
	}
	sc, uc := *s, *u
	return Identity{session: &sc, user: &uc}
}

func (i Identity) Authenticated() bool {
	return i.session != nil && i.user != nil
}

// Session returns a copy of the session, or nil when anonymous.
func (i Identity) Session() *session.Session {
	if i.session == nil {
		return nil
	}
	s := *i.session
	return &s
}

// User returns a copy of the user, or nil when anonymous.
func (i Identity) User() *user.User {
	if i.user == nil {
		return nil
	}
	u := *i.user
	return &u
}

type identityContextKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext reports the identity stored by an access policy. ok is
// false when no policy ran for this request.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	id, ok := ctx.Value(identityContextKey{}).(Identity)
	return id, ok
}
