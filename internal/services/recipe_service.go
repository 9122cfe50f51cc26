package services

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/isdelr/recipe-api-be/internal/models"
)

// NamedItem is an inline tag or ingredient reference in a recipe payload,
// identified only by name.
type NamedItem struct {
	Name string `json:"name"`
}

// RecipeInput is the payload for creating a recipe.
type RecipeInput struct {
	Title       string      `json:"title"`
	TimeMinutes int         `json:"time_minutes"`
	Price       string      `json:"price"`
	Description string      `json:"description"`
	Link        string      `json:"link"`
	Tags        []NamedItem `json:"tags"`
	Ingredients []NamedItem `json:"ingredients"`
}

// RecipePatch is a partial update. Nil fields are left untouched. A nil
// Tags/Ingredients list leaves the associations alone; an empty list
// clears them; a non-empty list replaces them entirely.
type RecipePatch struct {
	Title       *string      `json:"title"`
	TimeMinutes *int         `json:"time_minutes"`
	Price       *string      `json:"price"`
	Description *string      `json:"description"`
	Link        *string      `json:"link"`
	Tags        *[]NamedItem `json:"tags"`
	Ingredients *[]NamedItem `json:"ingredients"`
}

// RecipeServiceProvider defines the interface for recipe services.
type RecipeServiceProvider interface {
	ListRecipes(userID string) ([]models.RecipeSummary, error)
	GetRecipe(userID string, id int64) (models.Recipe, error)
	CreateRecipe(userID string, input RecipeInput) (models.Recipe, error)
	UpdateRecipe(userID string, id int64, patch RecipePatch) (models.Recipe, error)
	DeleteRecipe(userID string, id int64) error
	SaveRecipeImage(userID string, id int64, file io.Reader, origName string) (models.Recipe, error)
}

// RecipeService provides business logic for recipe management.
type RecipeService struct {
	db        *sql.DB
	mediaPath string
}

// NewRecipeService creates a new RecipeService. Uploaded images are
// stored under mediaPath.
func NewRecipeService(db *sql.DB, mediaPath string) *RecipeService {
	return &RecipeService{db: db, mediaPath: mediaPath}
}

var pricePattern = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)

// NormalizePrice validates a decimal price string and canonicalizes it
// to two decimal places.
func NormalizePrice(price string) (string, error) {
	if !pricePattern.MatchString(price) {
		return "", models.NewValidationError("price", "a valid decimal number with up to 2 places is required")
	}
	dot := strings.IndexByte(price, '.')
	switch {
	case dot < 0:
		return price + ".00", nil
	case len(price)-dot == 2:
		return price + "0", nil
	default:
		return price, nil
	}
}

func validateRecipeInput(input RecipeInput) (RecipeInput, error) {
	if input.Title == "" {
		return input, models.NewValidationError("title", "must not be empty")
	}
	if input.TimeMinutes < 0 {
		return input, models.NewValidationError("time_minutes", "must not be negative")
	}
	price, err := NormalizePrice(input.Price)
	if err != nil {
		return input, err
	}
	input.Price = price
	return input, nil
}

// ListRecipes returns the caller's recipes, newest first, in the reduced
// list representation.
func (s *RecipeService) ListRecipes(userID string) ([]models.RecipeSummary, error) {
	rows, err := s.db.Query(
		"SELECT id, title, time_minutes, price, link FROM recipes WHERE user_id = ? ORDER BY id DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recipes := []models.RecipeSummary{}
	for rows.Next() {
		var r models.RecipeSummary
		if err := rows.Scan(&r.ID, &r.Title, &r.TimeMinutes, &r.Price, &r.Link); err != nil {
			return nil, err
		}
		recipes = append(recipes, r)
	}
	return recipes, rows.Err()
}

// GetRecipe returns the full representation of a single recipe. Rows
// owned by other users are reported as not found.
func (s *RecipeService) GetRecipe(userID string, id int64) (models.Recipe, error) {
	var r models.Recipe
	row := s.db.QueryRow(`
		SELECT id, user_id, title, time_minutes, price, description, link, image_path, created_at
		FROM recipes WHERE id = ? AND user_id = ?`, id, userID)
	err := row.Scan(&r.ID, &r.UserID, &r.Title, &r.TimeMinutes, &r.Price,
		&r.Description, &r.Link, &r.ImagePath, &r.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Recipe{}, models.ErrNotFound
		}
		return models.Recipe{}, err
	}

	if r.Tags, err = s.recipeTags(id); err != nil {
		return models.Recipe{}, err
	}
	if r.Ingredients, err = s.recipeIngredients(id); err != nil {
		return models.Recipe{}, err
	}
	return r, nil
}

func (s *RecipeService) recipeTags(recipeID int64) ([]models.Tag, error) {
	rows, err := s.db.Query(`
		SELECT t.id, t.user_id, t.name FROM tags t
		JOIN recipe_tags rt ON rt.tag_id = t.id
		WHERE rt.recipe_id = ? ORDER BY t.name`, recipeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []models.Tag{}
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

func (s *RecipeService) recipeIngredients(recipeID int64) ([]models.Ingredient, error) {
	rows, err := s.db.Query(`
		SELECT i.id, i.user_id, i.name FROM ingredients i
		JOIN recipe_ingredients ri ON ri.ingredient_id = i.id
		WHERE ri.recipe_id = ? ORDER BY i.name`, recipeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ingredients := []models.Ingredient{}
	for rows.Next() {
		var i models.Ingredient
		if err := rows.Scan(&i.ID, &i.UserID, &i.Name); err != nil {
			return nil, err
		}
		ingredients = append(ingredients, i)
	}
	return ingredients, rows.Err()
}

// CreateRecipe inserts a recipe owned by the caller. Inline tags and
// ingredients are reconciled in the same transaction: existing rows with
// a matching (owner, name) are reused, the rest are created.
func (s *RecipeService) CreateRecipe(userID string, input RecipeInput) (models.Recipe, error) {
	input, err := validateRecipeInput(input)
	if err != nil {
		return models.Recipe{}, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return models.Recipe{}, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		INSERT INTO recipes(user_id, title, time_minutes, price, description, link)
		VALUES(?, ?, ?, ?, ?, ?)`,
		userID, input.Title, input.TimeMinutes, input.Price, input.Description, input.Link)
	if err != nil {
		return models.Recipe{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Recipe{}, err
	}

	if err := replaceAssociations(tx, userID, id, "tags", "recipe_tags", "tag_id", input.Tags); err != nil {
		return models.Recipe{}, err
	}
	if err := replaceAssociations(tx, userID, id, "ingredients", "recipe_ingredients", "ingredient_id", input.Ingredients); err != nil {
		return models.Recipe{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Recipe{}, err
	}
	return s.GetRecipe(userID, id)
}

// UpdateRecipe applies a partial update to a caller-owned recipe. The
// whole write, association replacement included, is one transaction.
func (s *RecipeService) UpdateRecipe(userID string, id int64, patch RecipePatch) (models.Recipe, error) {
	if patch.Title != nil && *patch.Title == "" {
		return models.Recipe{}, models.NewValidationError("title", "must not be empty")
	}
	if patch.Price != nil {
		price, err := NormalizePrice(*patch.Price)
		if err != nil {
			return models.Recipe{}, err
		}
		patch.Price = &price
	}

	tx, err := s.db.Begin()
	if err != nil {
		return models.Recipe{}, err
	}
	defer tx.Rollback()

	// Ownership gate for the whole write. Runs inside the transaction so
	// the row cannot change hands between the check and the update.
	var owned int64
	if err := tx.QueryRow("SELECT id FROM recipes WHERE id = ? AND user_id = ?", id, userID).Scan(&owned); err != nil {
		if err == sql.ErrNoRows {
			return models.Recipe{}, models.ErrNotFound
		}
		return models.Recipe{}, err
	}

	sets := []string{}
	args := []any{}
	appendSet := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if patch.Title != nil {
		appendSet("title", *patch.Title)
	}
	if patch.TimeMinutes != nil {
		appendSet("time_minutes", *patch.TimeMinutes)
	}
	if patch.Price != nil {
		appendSet("price", *patch.Price)
	}
	if patch.Description != nil {
		appendSet("description", *patch.Description)
	}
	if patch.Link != nil {
		appendSet("link", *patch.Link)
	}
	if len(sets) > 0 {
		args = append(args, id, userID)
		query := fmt.Sprintf("UPDATE recipes SET %s WHERE id = ? AND user_id = ?", strings.Join(sets, ", "))
		if _, err := tx.Exec(query, args...); err != nil {
			return models.Recipe{}, err
		}
	}

	if patch.Tags != nil {
		if err := replaceAssociations(tx, userID, id, "tags", "recipe_tags", "tag_id", *patch.Tags); err != nil {
			return models.Recipe{}, err
		}
	}
	if patch.Ingredients != nil {
		if err := replaceAssociations(tx, userID, id, "ingredients", "recipe_ingredients", "ingredient_id", *patch.Ingredients); err != nil {
			return models.Recipe{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return models.Recipe{}, err
	}
	return s.GetRecipe(userID, id)
}

// DeleteRecipe removes a caller-owned recipe. Associations go with it
// via cascade; tag and ingredient rows stay.
func (s *RecipeService) DeleteRecipe(userID string, id int64) error {
	res, err := s.db.Exec("DELETE FROM recipes WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}

// replaceAssociations resolves each named item to an existing row owned
// by the user, creating the ones that do not exist, then replaces the
// recipe's association set with exactly the resolved rows. Must run
// inside the transaction of the surrounding recipe write.
func replaceAssociations(tx *sql.Tx, userID string, recipeID int64, table, joinTable, joinCol string, items []NamedItem) error {
	ids := make([]int64, 0, len(items))
	seen := make(map[int64]bool, len(items))
	for _, item := range items {
		if item.Name == "" {
			return models.NewValidationError("name", "must not be empty")
		}
		var attrID int64
		err := tx.QueryRow(
			fmt.Sprintf("SELECT id FROM %s WHERE user_id = ? AND name = ?", table),
			userID, item.Name).Scan(&attrID)
		if err == sql.ErrNoRows {
			res, insErr := tx.Exec(
				fmt.Sprintf("INSERT INTO %s(user_id, name) VALUES(?, ?)", table),
				userID, item.Name)
			if insErr != nil {
				return insErr
			}
			if attrID, insErr = res.LastInsertId(); insErr != nil {
				return insErr
			}
		} else if err != nil {
			return err
		}
		if !seen[attrID] {
			seen[attrID] = true
			ids = append(ids, attrID)
		}
	}

	if _, err := tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE recipe_id = ?", joinTable), recipeID); err != nil {
		return err
	}
	for _, attrID := range ids {
		if _, err := tx.Exec(
			fmt.Sprintf("INSERT INTO %s(recipe_id, %s) VALUES(?, ?)", joinTable, joinCol),
			recipeID, attrID); err != nil {
			return err
		}
	}
	return nil
}

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// SaveRecipeImage stores an uploaded image for a caller-owned recipe
// under a freshly generated name and records its path on the row. The
// row is only updated after the file is fully written.
func (s *RecipeService) SaveRecipeImage(userID string, id int64, file io.Reader, origName string) (models.Recipe, error) {
	if _, err := s.GetRecipe(userID, id); err != nil {
		return models.Recipe{}, err
	}

	ext := strings.ToLower(filepath.Ext(origName))
	if !allowedImageExts[ext] {
		return models.Recipe{}, models.NewValidationError("image", "upload a valid image file")
	}

	dir := filepath.Join(s.mediaPath, "recipe-images")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return models.Recipe{}, err
	}

	name := uuid.New().String() + ext
	dest := filepath.Join(dir, name)
	out, err := os.Create(dest)
	if err != nil {
		return models.Recipe{}, err
	}
	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		os.Remove(dest)
		return models.Recipe{}, err
	}
	if err := out.Close(); err != nil {
		os.Remove(dest)
		return models.Recipe{}, err
	}

	res, err := s.db.Exec("UPDATE recipes SET image_path = ? WHERE id = ? AND user_id = ?",
		filepath.ToSlash(filepath.Join("recipe-images", name)), id, userID)
	if err != nil {
		os.Remove(dest)
		return models.Recipe{}, err
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		os.Remove(dest)
		if err != nil {
			return models.Recipe{}, err
		}
		return models.Recipe{}, models.ErrNotFound
	}

	return s.GetRecipe(userID, id)
}
