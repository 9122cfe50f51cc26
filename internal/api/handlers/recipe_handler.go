package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/recipe-api-be/internal/auth"
	"github.com/isdelr/recipe-api-be/internal/services"
	"github.com/rs/zerolog/log"
)

// maxImageUploadBytes caps multipart uploads on the image endpoint.
const maxImageUploadBytes = 10 << 20

// RecipeHandler handles HTTP requests for recipes.
type RecipeHandler struct {
	service services.RecipeServiceProvider
}

// NewRecipeHandler creates a new RecipeHandler.
func NewRecipeHandler(service services.RecipeServiceProvider) *RecipeHandler {
	return &RecipeHandler{service: service}
}

func recipeID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// GetAll returns the caller's recipes in the reduced list
// representation, newest first.
func (h *RecipeHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	recipes, err := h.service.ListRecipes(user.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to list recipes")
		writeError(w, http.StatusInternalServerError, "failed to list recipes")
		return
	}

	writeJSON(w, http.StatusOK, recipes)
}

// Get returns the full representation of a single caller-owned recipe.
func (h *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	id, err := recipeID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "recipe not found")
		return
	}

	recipe, err := h.service.GetRecipe(user.ID, id)
	if err != nil {
		writeServiceError(w, err, "recipe")
		return
	}

	writeJSON(w, http.StatusOK, recipe)
}

// Create creates a recipe owned by the caller. Any client-supplied owner
// is ignored; ownership always comes from the token.
func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	var input services.RecipeInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	recipe, err := h.service.CreateRecipe(user.ID, input)
	if err != nil {
		writeServiceError(w, err, "recipe")
		return
	}

	writeJSON(w, http.StatusCreated, recipe)
}

// Patch applies a partial update; omitted fields keep their values.
func (h *RecipeHandler) Patch(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, false)
}

// Put applies a full update; the required scalar fields must all be
// present in the payload.
func (h *RecipeHandler) Put(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, true)
}

func (h *RecipeHandler) update(w http.ResponseWriter, r *http.Request, full bool) {
	user, _ := auth.UserFromContext(r.Context())
	id, err := recipeID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "recipe not found")
		return
	}

	var patch services.RecipePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if full {
		fields := map[string]bool{
			"title":        patch.Title != nil,
			"time_minutes": patch.TimeMinutes != nil,
			"price":        patch.Price != nil,
		}
		missing := map[string]string{}
		for field, present := range fields {
			if !present {
				missing[field] = "this field is required"
			}
		}
		if len(missing) > 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "validation failed", Fields: missing})
			return
		}
		// A full update resets the optional scalars when omitted.
		empty := ""
		if patch.Description == nil {
			patch.Description = &empty
		}
		if patch.Link == nil {
			patch.Link = &empty
		}
	}

	recipe, err := h.service.UpdateRecipe(user.ID, id, patch)
	if err != nil {
		writeServiceError(w, err, "recipe")
		return
	}

	writeJSON(w, http.StatusOK, recipe)
}

// Delete removes a caller-owned recipe.
func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	id, err := recipeID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "recipe not found")
		return
	}

	if err := h.service.DeleteRecipe(user.ID, id); err != nil {
		writeServiceError(w, err, "recipe")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UploadImage accepts a multipart image upload for a caller-owned
// recipe and returns the updated representation.
func (h *RecipeHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	id, err := recipeID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "recipe not found")
		return
	}

	if err := r.ParseMultipartForm(maxImageUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:  "validation failed",
			Fields: map[string]string{"image": "a multipart image upload is required"},
		})
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:  "validation failed",
			Fields: map[string]string{"image": "no image was submitted"},
		})
		return
	}
	defer file.Close()

	recipe, err := h.service.SaveRecipeImage(user.ID, id, file, header.Filename)
	if err != nil {
		writeServiceError(w, err, "recipe")
		return
	}

	writeJSON(w, http.StatusOK, recipe)
}
