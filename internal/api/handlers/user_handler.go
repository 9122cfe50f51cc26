package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/isdelr/recipe-api-be/internal/auth"
	"github.com/isdelr/recipe-api-be/internal/models"
	"github.com/isdelr/recipe-api-be/internal/services"
	"github.com/rs/zerolog/log"
)

// UserHandler handles HTTP requests for user accounts.
type UserHandler struct {
	users  services.UserServiceProvider
	tokens services.TokenServiceProvider
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users services.UserServiceProvider, tokens services.TokenServiceProvider) *UserHandler {
	return &UserHandler{users: users, tokens: tokens}
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// TokenPayload defines the structure for token requests.
type TokenPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles new user registration. Public.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.users.RegisterUser(payload.Email, payload.Password, payload.Name)
	if err != nil {
		if _, ok := models.AsValidationError(err); !ok {
			log.Error().Err(err).Str("email", payload.Email).Msg("Failed to register user")
		}
		writeServiceError(w, err, "user")
		return
	}

	writeJSON(w, http.StatusCreated, user.Profile())
}

// Token exchanges credentials for an opaque bearer token. Public. Bad
// credentials produce a 400 with no token field.
func (h *UserHandler) Token(w http.ResponseWriter, r *http.Request) {
	var payload TokenPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.users.Authenticate(payload.Email, payload.Password)
	if err != nil {
		if !errors.Is(err, models.ErrInvalidCredentials) {
			log.Error().Err(err).Str("email", payload.Email).Msg("Authentication lookup failed")
		} else {
			log.Warn().Str("email", payload.Email).Msg("Failed authentication attempt")
		}
		writeError(w, http.StatusBadRequest, "unable to authenticate with provided credentials")
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to issue token")
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// GetMe returns the profile of the authenticated user.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		log.Error().Msg("Could not retrieve user from context")
		writeError(w, http.StatusInternalServerError, "could not retrieve user from token")
		return
	}

	writeJSON(w, http.StatusOK, user.Profile())
}

// UpdateMe applies a partial update to the authenticated user's name
// and/or password.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		log.Error().Msg("Could not retrieve user from context")
		writeError(w, http.StatusInternalServerError, "could not retrieve user from token")
		return
	}

	var payload struct {
		Name     *string `json:"name"`
		Password *string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.users.UpdateProfile(user.ID, payload.Name, payload.Password)
	if err != nil {
		writeServiceError(w, err, "user")
		return
	}

	writeJSON(w, http.StatusOK, updated.Profile())
}
