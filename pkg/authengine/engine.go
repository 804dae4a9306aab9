// Package authengine is the credential and session service behind the
// gateway. It speaks only fetch.Request/fetch.Response, owns the user and
// session stores, and is built once per process.
package authengine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"authgateway/internal/origin"
	"authgateway/pkg/claims"
	"authgateway/pkg/fetch"
	"authgateway/pkg/session"
	"authgateway/pkg/user"
)

const (
	DefaultBasePath     = "/api/auth"
	DefaultSessionTTL   = 7 * 24 * time.Hour
	DefaultCookiePrefix = "authgw"

	// MaxPasswordLength is the most bcrypt will hash.
	MaxPasswordLength = 72
)

type Options struct {
	// BaseURL is the public URL of the server. Its scheme decides whether
	// cookies are marked Secure and its origin is always trusted.
	BaseURL        string
	BasePath       string
	SessionTTL     time.Duration
	CookiePrefix   string
	TrustedOrigins []string

	MinPasswordLength int
	MaxPasswordLength int
	// PasswordCost overrides the bcrypt cost when non-zero.
	PasswordCost int
}

func (o *Options) setDefaults() {
	if o.BasePath == "" {
		o.BasePath = DefaultBasePath
	}
	o.BasePath = "/" + strings.Trim(o.BasePath, "/")
	if o.SessionTTL <= 0 {
		o.SessionTTL = DefaultSessionTTL
	}
	if o.CookiePrefix == "" {
		o.CookiePrefix = DefaultCookiePrefix
	}
	if o.MinPasswordLength <= 0 {
		o.MinPasswordLength = 8
	}
	if o.MaxPasswordLength <= 0 || o.MaxPasswordLength > MaxPasswordLength {
		o.MaxPasswordLength = MaxPasswordLength
	}
}

// SessionResult pairs a live session with its user.
type SessionResult struct {
	Session *session.Session `json:"session"`
	User    *user.User       `json:"user"`
}

type Engine struct {
	users    user.Repository
	accounts user.ServiceInterface
	sessions session.Repository
	signer   *claims.Signer
	opts     Options
	secure   bool
	trusted  map[string]struct{}
	logger   *slog.Logger
	now      func() time.Time
}

func New(users user.Repository, sessions session.Repository, signer *claims.Signer, opts Options, logger *slog.Logger) (*Engine, error) {
	if users == nil || sessions == nil || signer == nil {
		return nil, errors.New("authengine: users, sessions and signer are required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	opts.setDefaults()

	accounts := user.NewService(users)
	if opts.PasswordCost != 0 {
		accounts.Cost = opts.PasswordCost
	}

	e := &Engine{
		users:    users,
		accounts: accounts,
		sessions: sessions,
		signer:   signer,
		opts:     opts,
		trusted:  make(map[string]struct{}),
		logger:   logger,
		now:      time.Now,
	}
	if opts.BaseURL != "" {
		base, err := url.Parse(opts.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("parse base url: %w", err)
		}
		e.secure = base.Scheme == "https"
	}
	for _, raw := range append([]string{opts.BaseURL}, opts.TrustedOrigins...) {
		normalized, err := origin.Normalize(raw)
		if err != nil {
			return nil, fmt.Errorf("parse trusted origin %q: %w", raw, err)
		}
		if normalized != "" {
			e.trusted[normalized] = struct{}{}
		}
	}
	return e, nil
}

func (e *Engine) BasePath() string {
	return e.opts.BasePath
}

// GetSession resolves the session carried by headers, either as a bearer
// token or as the session cookie. A missing, forged or expired credential
// yields (nil, nil); only storage failures are errors.
func (e *Engine) GetSession(ctx context.Context, headers fetch.Headers) (*SessionResult, error) {
	token := e.tokenFrom(headers)
	if token == "" {
		return nil, nil
	}

	c, err := e.signer.Parse(token)
	if err != nil {
		e.logger.Debug("rejected session token", "error", err)
		return nil, nil
	}

	s, err := e.sessions.FindByID(ctx, c.SessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	if s.UserID != c.Subject || s.Expired(e.now()) {
		return nil, nil
	}

	u, err := e.users.FindByID(ctx, s.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	return &SessionResult{Session: s, User: u}, nil
}

// PurgeExpired removes sessions whose expiry has passed.
func (e *Engine) PurgeExpired(ctx context.Context) (int64, error) {
	return e.sessions.DeleteExpired(ctx, e.now())
}

func (e *Engine) tokenFrom(headers fetch.Headers) string {
	if auth := headers.Get("authorization"); auth != "" {
		const bearer = "Bearer "
		if len(auth) > len(bearer) && strings.EqualFold(auth[:len(bearer)], bearer) {
			return strings.TrimSpace(auth[len(bearer):])
		}
	}

	cookies := headers.Values("cookie")
	if len(cookies) == 0 {
		return ""
	}
	r := &http.Request{Header: http.Header{"Cookie": cookies}}
	c, err := r.Cookie(e.sessionCookieName())
	if err != nil {
		return ""
	}
	return c.Value
}

func (e *Engine) originAllowed(requestOrigin string, requestURL *url.URL) bool {
	if requestOrigin == "" {
		return true
	}
	normalized, err := origin.Normalize(requestOrigin)
	if err != nil || normalized == "" {
		return false
	}
	if _, ok := e.trusted[normalized]; ok {
		return true
	}
	self, err := origin.Normalize(requestURL.Scheme + "://" + requestURL.Host)
	return err == nil && normalized == self
}
