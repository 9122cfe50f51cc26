package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/isdelr/recipe-api-be/internal/models"
	"github.com/rs/zerolog/log"
)

// errorResponse is the uniform JSON error body. Fields carries
// per-field validation detail when present.
type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeServiceError maps service errors onto the HTTP error taxonomy.
// Rows owned by another user surface exactly like missing rows.
func writeServiceError(w http.ResponseWriter, err error, resource string) {
	if ve, ok := models.AsValidationError(err); ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "validation failed", Fields: ve.Fields})
		return
	}
	if errors.Is(err, models.ErrNotFound) {
		writeError(w, http.StatusNotFound, resource+" not found")
		return
	}
	log.Error().Err(err).Str("resource", resource).Msg("Unexpected service error")
	writeError(w, http.StatusInternalServerError, "internal server error")
}
