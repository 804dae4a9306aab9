package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

const (
	typeError   string = "error"
	typeMessage string = "message"
)

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, data any) bool {
	resp, err := json.Marshal(data)
	if err != nil {
		logger.Error("Failed to serialize JSON response", "error", err)
		writeError(w, logger, http.StatusInternalServerError, typeError, "failed json marshal")
		return false
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if _, err := w.Write(resp); err != nil {
		logger.Error("Failed to write response to client", "error", err)
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, field, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{field: msg}); err != nil {
		logger.Error("Failed to write error response", "error", err)
	}
}
