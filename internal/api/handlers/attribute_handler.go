package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/recipe-api-be/internal/auth"
	"github.com/isdelr/recipe-api-be/internal/services"
	"github.com/rs/zerolog/log"
)

// AttributeHandler handles HTTP requests for tags and ingredients. The
// two resources share behavior and differ only in the backing service.
type AttributeHandler struct {
	service  services.AttributeServiceProvider
	resource string // "tag" or "ingredient", for error messages and logs
}

// NewTagHandler creates the handler for the tags resource.
func NewTagHandler(service services.AttributeServiceProvider) *AttributeHandler {
	return &AttributeHandler{service: service, resource: "tag"}
}

// NewIngredientHandler creates the handler for the ingredients resource.
func NewIngredientHandler(service services.AttributeServiceProvider) *AttributeHandler {
	return &AttributeHandler{service: service, resource: "ingredient"}
}

// isTruthy interprets the assigned_only query flag.
func isTruthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	}
	return false
}

// GetAll lists the caller's attributes, name-descending. The
// assigned_only query flag restricts the result to attributes attached
// to at least one of the caller's recipes.
func (h *AttributeHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	assignedOnly := isTruthy(r.URL.Query().Get("assigned_only"))

	attrs, err := h.service.List(user.ID, assignedOnly)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Str("resource", h.resource).Msg("Failed to list attributes")
		writeError(w, http.StatusInternalServerError, "failed to list "+h.resource+"s")
		return
	}

	writeJSON(w, http.StatusOK, attrs)
}

// Get returns a single caller-owned attribute.
func (h *AttributeHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, h.resource+" not found")
		return
	}

	attr, err := h.service.Get(user.ID, id)
	if err != nil {
		writeServiceError(w, err, h.resource)
		return
	}

	writeJSON(w, http.StatusOK, attr)
}

// Patch renames a caller-owned attribute.
func (h *AttributeHandler) Patch(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, h.resource+" not found")
		return
	}

	var payload struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	attr, err := h.service.Rename(user.ID, id, payload.Name)
	if err != nil {
		writeServiceError(w, err, h.resource)
		return
	}

	writeJSON(w, http.StatusOK, attr)
}

// Delete removes a caller-owned attribute.
func (h *AttributeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, h.resource+" not found")
		return
	}

	if err := h.service.Delete(user.ID, id); err != nil {
		writeServiceError(w, err, h.resource)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
