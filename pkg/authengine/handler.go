package authengine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"authgateway/pkg/fetch"
	"authgateway/pkg/generator"
	"authgateway/pkg/session"
	"authgateway/pkg/user"
)

// Error codes returned in {"code": ..., "message": ...} bodies.
const (
	CodeNotFound               = "NOT_FOUND"
	CodeInvalidOrigin          = "INVALID_ORIGIN"
	CodeInvalidJSON            = "INVALID_JSON"
	CodeInvalidEmail           = "INVALID_EMAIL"
	CodeNameRequired           = "NAME_REQUIRED"
	CodePasswordTooShort       = "PASSWORD_TOO_SHORT"
	CodePasswordTooLong        = "PASSWORD_TOO_LONG"
	CodeUserAlreadyExists      = "USER_ALREADY_EXISTS"
	CodeInvalidEmailOrPassword = "INVALID_EMAIL_OR_PASSWORD"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type signUpBody struct {
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Password   string  `json:"password"`
	Image      *string `json:"image"`
	RememberMe *bool   `json:"rememberMe"`
}

type signInBody struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe *bool  `json:"rememberMe"`
}

type tokenResponse struct {
	Redirect *bool      `json:"redirect,omitempty"`
	Token    string     `json:"token"`
	User     *user.User `json:"user"`
}

// Handler serves every endpoint under the base path. Client mistakes come
// back as 4xx responses; a returned error means the engine itself failed.
func (e *Engine) Handler(ctx context.Context, req *fetch.Request) (*fetch.Response, error) {
	route, ok := strings.CutPrefix(req.URL.Path, e.opts.BasePath)
	if !ok || (route != "" && !strings.HasPrefix(route, "/")) {
		return errorResponse(http.StatusNotFound, CodeNotFound, "not found")
	}
	route = "/" + strings.Trim(route, "/")

	if req.Method == http.MethodPost && !e.originAllowed(req.Header.Get("origin"), req.URL) {
		e.logger.Warn("blocked auth request origin", "origin", req.Header.Get("origin"), "path", req.URL.Path)
		return errorResponse(http.StatusForbidden, CodeInvalidOrigin, "Invalid origin")
	}

	switch {
	case req.Method == http.MethodPost && route == "/sign-up/email":
		return e.signUp(ctx, req)
	case req.Method == http.MethodPost && route == "/sign-in/email":
		return e.signIn(ctx, req)
	case req.Method == http.MethodPost && route == "/sign-out":
		return e.signOut(ctx, req)
	case req.Method == http.MethodGet && (route == "/get-session" || route == "/session"):
		return e.getSession(ctx, req)
	case req.Method == http.MethodGet && route == "/ok":
		return fetch.NewJSONResponse(http.StatusOK, map[string]bool{"ok": true})
	}
	return errorResponse(http.StatusNotFound, CodeNotFound, "not found")
}

func (e *Engine) signUp(ctx context.Context, req *fetch.Request) (*fetch.Response, error) {
	var body signUpBody
	if err := req.JSON(&body); err != nil {
		return errorResponse(http.StatusBadRequest, CodeInvalidJSON, "Invalid request body")
	}
	if strings.TrimSpace(body.Name) == "" {
		return errorResponse(http.StatusBadRequest, CodeNameRequired, "Name is required")
	}
	if !plainAddress(body.Email) {
		return errorResponse(http.StatusBadRequest, CodeInvalidEmail, "Invalid email")
	}
	if code, msg := e.passwordProblem(body.Password); code != "" {
		return errorResponse(http.StatusBadRequest, code, msg)
	}

	u, err := e.accounts.Register(ctx, user.RegisterForm{
		Name:     body.Name,
		Email:    body.Email,
		Password: body.Password,
		Image:    body.Image,
	})
	if err != nil {
		switch {
		case errors.Is(err, user.ErrAlreadyExists):
			return errorResponse(http.StatusUnprocessableEntity, CodeUserAlreadyExists, "User already exists")
		case errors.Is(err, user.ErrPasswordTooLong):
			return errorResponse(http.StatusBadRequest, CodePasswordTooLong, "Password too long")
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	e.logger.Info("user registered", "user", u.ID)
	return e.issueSession(ctx, req, u, rememberMe(body.RememberMe), nil)
}

func (e *Engine) signIn(ctx context.Context, req *fetch.Request) (*fetch.Response, error) {
	var body signInBody
	if err := req.JSON(&body); err != nil {
		return errorResponse(http.StatusBadRequest, CodeInvalidJSON, "Invalid request body")
	}

	u, err := e.accounts.Login(ctx, body.Email, body.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			return errorResponse(http.StatusUnauthorized, CodeInvalidEmailOrPassword, "Invalid email or password")
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	e.logger.Info("user signed in", "user", u.ID)
	redirect := false
	return e.issueSession(ctx, req, u, rememberMe(body.RememberMe), &redirect)
}

func (e *Engine) signOut(ctx context.Context, req *fetch.Request) (*fetch.Response, error) {
	if token := e.tokenFrom(req.Header); token != "" {
		if c, err := e.signer.Parse(token); err == nil {
			if err := e.sessions.Delete(ctx, c.SessionID); err != nil {
				return nil, fmt.Errorf("sign out: %w", err)
			}
			e.logger.Info("user signed out", "user", c.Subject)
		}
	}

	resp, err := fetch.NewJSONResponse(http.StatusOK, map[string]bool{"success": true})
	if err != nil {
		return nil, err
	}
	resp.Header.Append("Set-Cookie", e.clearCookie(e.sessionCookieName()))
	resp.Header.Append("Set-Cookie", e.clearCookie(e.dontRememberCookieName()))
	return resp, nil
}

func (e *Engine) getSession(ctx context.Context, req *fetch.Request) (*fetch.Response, error) {
	res, err := e.GetSession(ctx, req.Header)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return fetch.NewJSONResponse(http.StatusOK, nil)
	}
	return fetch.NewJSONResponse(http.StatusOK, res)
}

func (e *Engine) issueSession(ctx context.Context, req *fetch.Request, u *user.User, remember bool, redirect *bool) (*fetch.Response, error) {
	id, err := generator.SessionID()
	if err != nil {
		return nil, fmt.Errorf("session id: %w", err)
	}
	now := e.now().UTC()
	s := &session.Session{
		ID:        id,
		UserID:    u.ID,
		ExpiresAt: now.Add(e.opts.SessionTTL),
		IPAddress: clientIP(req.Header),
		UserAgent: req.Header.Get("user-agent"),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := e.sessions.Create(ctx, s); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	token, err := e.signer.Sign(s.ID, u.ID, s.ExpiresAt)
	if err != nil {
		return nil, err
	}

	resp, err := fetch.NewJSONResponse(http.StatusOK, tokenResponse{Redirect: redirect, Token: token, User: u})
	if err != nil {
		return nil, err
	}
	if remember {
		resp.Header.Append("Set-Cookie", e.cookie(e.sessionCookieName(), token, e.opts.SessionTTL))
	} else {
		resp.Header.Append("Set-Cookie", e.cookie(e.sessionCookieName(), token, 0))
		resp.Header.Append("Set-Cookie", e.cookie(e.dontRememberCookieName(), "true", 0))
	}
	return resp, nil
}

func (e *Engine) passwordProblem(password string) (code, message string) {
	switch {
	case len(password) < e.opts.MinPasswordLength:
		return CodePasswordTooShort, "Password too short"
	case len(password) > e.opts.MaxPasswordLength:
		return CodePasswordTooLong, "Password too long"
	}
	return "", ""
}

func (e *Engine) sessionCookieName() string {
	return e.opts.CookiePrefix + ".session_token"
}

func (e *Engine) dontRememberCookieName() string {
	return e.opts.CookiePrefix + ".dont_remember"
}

// cookie renders a Set-Cookie value. A zero maxAge makes a browser-session
// cookie.
func (e *Engine) cookie(name, value string, maxAge time.Duration) string {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   e.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(maxAge / time.Second),
	}
	return c.String()
}

func (e *Engine) clearCookie(name string) string {
	c := &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   e.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	}
	return c.String()
}

// plainAddress accepts a bare address only. Display-name forms such as
// "Ann <a@x.com>" parse fine but would be stored verbatim.
func plainAddress(email string) bool {
	email = strings.TrimSpace(email)
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Name == "" && addr.Address == email
}

func rememberMe(v *bool) bool {
	return v == nil || *v
}

func clientIP(h fetch.Headers) string {
	if fwd := h.Get("x-forwarded-for"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	return strings.TrimSpace(h.Get("x-real-ip"))
}

func errorResponse(status int, code, message string) (*fetch.Response, error) {
	return fetch.NewJSONResponse(status, apiError{Code: code, Message: message})
}
