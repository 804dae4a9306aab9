package handlers

import (
	"log/slog"
	"net/http"
)

type rootDocs struct {
	Auth   string `json:"auth"`
	Health string `json:"health"`
	User   string `json:"user"`
}

type rootResponse struct {
	Name    string   `json:"name"`
	Version string   `json:"version"`
	Status  string   `json:"status"`
	Docs    rootDocs `json:"docs"`
}

// Root describes the API.
func Root(logger *slog.Logger) http.HandlerFunc {
	body := rootResponse{
		Name:    "Auth Gateway API",
		Version: Version,
		Status:  "running",
		Docs: rootDocs{
			Auth:   "/api/auth/* - Authentication endpoints",
			Health: "/api/health - Health check",
			User:   "/api/user/* - User endpoints (protected)",
		},
	}
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, logger, http.StatusOK, body)
	}
}
