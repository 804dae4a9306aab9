package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"authgateway/pkg/gateway"
	"authgateway/pkg/user"
)

// UserHandler serves /api/user/*. Me and Dashboard are mounted behind
// RequireAuth, Profile behind OptionalAuth.
type UserHandler struct {
	Logger *slog.Logger
}

func NewUserHandler(logger *slog.Logger) *UserHandler {
	return &UserHandler{Logger: logger}
}

type sessionSummary struct {
	ID        string    `json:"id"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type meData struct {
	User    *user.User     `json:"user"`
	Session sessionSummary `json:"session"`
}

type meResponse struct {
	Success bool   `json:"success"`
	Data    meData `json:"data"`
}

type profileUser struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Image *string `json:"image"`
}

type profileResponse struct {
	Authenticated bool         `json:"authenticated"`
	Message       string       `json:"message"`
	User          *profileUser `json:"user,omitempty"`
}

type dashboardUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type dashboardResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	User    dashboardUser `json:"user"`
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authenticated(w, r)
	if !ok {
		return
	}
	s := id.Session()
	writeJSON(w, h.Logger, http.StatusOK, meResponse{
		Success: true,
		Data: meData{
			User:    id.User(),
			Session: sessionSummary{ID: s.ID, ExpiresAt: s.ExpiresAt},
		},
	})
}

func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	id, _ := gateway.IdentityFromContext(r.Context())
	if !id.Authenticated() {
		writeJSON(w, h.Logger, http.StatusOK, profileResponse{
			Authenticated: false,
			Message:       "Welcome, guest! Please sign in to access your profile.",
		})
		return
	}

	u := id.User()
	writeJSON(w, h.Logger, http.StatusOK, profileResponse{
		Authenticated: true,
		Message:       "Welcome back, " + u.Name + "!",
		User:          &profileUser{ID: u.ID, Name: u.Name, Email: u.Email, Image: u.Image},
	})
}

func (h *UserHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authenticated(w, r)
	if !ok {
		return
	}
	u := id.User()
	if ok := writeJSON(w, h.Logger, http.StatusOK, dashboardResponse{
		Success: true,
		Message: "Welcome to your dashboard!",
		User:    dashboardUser{ID: u.ID, Name: u.Name, Email: u.Email},
	}); ok {
		h.Logger.Debug("dashboard served", "user", u.ID)
	}
}

// authenticated guards handlers that were mounted without RequireAuth by
// mistake.
func (h *UserHandler) authenticated(w http.ResponseWriter, r *http.Request) (gateway.Identity, bool) {
	id, _ := gateway.IdentityFromContext(r.Context())
	if !id.Authenticated() {
		h.Logger.Warn("user route reached without identity", "path", r.URL.Path)
		writeError(w, h.Logger, http.StatusUnauthorized, typeMessage, "unauthorized")
		return gateway.Identity{}, false
	}
	return id, true
}
