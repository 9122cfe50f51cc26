package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/isdelr/recipe-api-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecipeInput() RecipeInput {
	return RecipeInput{
		Title:       "Default recipe",
		TimeMinutes: 5,
		Price:       "5.25",
		Description: "Short default description for default recipe.",
		Link:        "http://example.com/default_recipe.pdf",
	}
}

func TestCreateRecipe(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "recipe@example.com")
	s := NewRecipeService(db, t.TempDir())

	recipe, err := s.CreateRecipe(user.ID, RecipeInput{
		Title:       "Test Recipe",
		TimeMinutes: 30,
		Price:       "5.99",
	})
	require.NoError(t, err)

	assert.Equal(t, "Test Recipe", recipe.Title)
	assert.Equal(t, 30, recipe.TimeMinutes)
	assert.Equal(t, "5.99", recipe.Price)
	assert.Equal(t, user.ID, recipe.UserID)
	assert.Empty(t, recipe.Tags)
	assert.Empty(t, recipe.Ingredients)
}

func TestCreateRecipe_Validation(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "recipe@example.com")
	s := NewRecipeService(db, t.TempDir())

	t.Run("missing title", func(t *testing.T) {
		input := sampleRecipeInput()
		input.Title = ""
		_, err := s.CreateRecipe(user.ID, input)
		ve, ok := models.AsValidationError(err)
		require.True(t, ok)
		assert.Contains(t, ve.Fields, "title")
	})

	t.Run("bad price", func(t *testing.T) {
		for _, price := range []string{"", "abc", "5.999", "-1.00", "1,50"} {
			input := sampleRecipeInput()
			input.Price = price
			_, err := s.CreateRecipe(user.ID, input)
			ve, ok := models.AsValidationError(err)
			require.True(t, ok, "price %q", price)
			assert.Contains(t, ve.Fields, "price")
		}
	})

	t.Run("price canonicalized", func(t *testing.T) {
		for in, want := range map[string]string{"5": "5.00", "5.9": "5.90", "5.99": "5.99"} {
			input := sampleRecipeInput()
			input.Price = in
			recipe, err := s.CreateRecipe(user.ID, input)
			require.NoError(t, err)
			assert.Equal(t, want, recipe.Price)
		}
	})
}

func TestListRecipes_ScopedAndOrdered(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	other := createTestUser(t, db, "other@example.com")
	s := NewRecipeService(db, t.TempDir())

	first, err := s.CreateRecipe(owner.ID, sampleRecipeInput())
	require.NoError(t, err)
	second, err := s.CreateRecipe(owner.ID, sampleRecipeInput())
	require.NoError(t, err)
	_, err = s.CreateRecipe(other.ID, sampleRecipeInput())
	require.NoError(t, err)

	recipes, err := s.ListRecipes(owner.ID)
	require.NoError(t, err)
	require.Len(t, recipes, 2)

	// Newest first.
	assert.Equal(t, second.ID, recipes[0].ID)
	assert.Equal(t, first.ID, recipes[1].ID)
}

func TestGetRecipe_OtherOwnerIsNotFound(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	other := createTestUser(t, db, "other@example.com")
	s := NewRecipeService(db, t.TempDir())

	recipe, err := s.CreateRecipe(owner.ID, sampleRecipeInput())
	require.NoError(t, err)

	_, err = s.GetRecipe(other.ID, recipe.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = s.GetRecipe(owner.ID, recipe.ID)
	assert.NoError(t, err)
}

func TestUpdateRecipe_Partial(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "recipe@example.com")
	s := NewRecipeService(db, t.TempDir())

	input := sampleRecipeInput()
	input.Link = "https://example.com/recipe.pdf"
	created, err := s.CreateRecipe(user.ID, input)
	require.NoError(t, err)

	title := "New Recipe title"
	updated, err := s.UpdateRecipe(user.ID, created.ID, RecipePatch{Title: &title})
	require.NoError(t, err)

	assert.Equal(t, "New Recipe title", updated.Title)
	// Omitted fields keep their values.
	assert.Equal(t, "https://example.com/recipe.pdf", updated.Link)
	assert.Equal(t, created.Price, updated.Price)
	assert.Equal(t, created.Description, updated.Description)
}

func TestUpdateRecipe_OtherOwnerIsNotFound(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	other := createTestUser(t, db, "other@example.com")
	s := NewRecipeService(db, t.TempDir())

	created, err := s.CreateRecipe(owner.ID, sampleRecipeInput())
	require.NoError(t, err)

	title := "Hijacked"
	_, err = s.UpdateRecipe(other.ID, created.ID, RecipePatch{Title: &title})
	assert.ErrorIs(t, err, models.ErrNotFound)

	unchanged, err := s.GetRecipe(owner.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Title, unchanged.Title)
}

func TestDeleteRecipe(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	other := createTestUser(t, db, "other@example.com")
	s := NewRecipeService(db, t.TempDir())

	created, err := s.CreateRecipe(owner.ID, sampleRecipeInput())
	require.NoError(t, err)

	// A non-owner delete reports not found and leaves the row alone.
	err = s.DeleteRecipe(other.ID, created.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = s.GetRecipe(owner.ID, created.ID)
	require.NoError(t, err)

	require.NoError(t, s.DeleteRecipe(owner.ID, created.ID))
	_, err = s.GetRecipe(owner.ID, created.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCreateRecipe_WithNewTagsAndIngredients(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "recipe@example.com")
	s := NewRecipeService(db, t.TempDir())

	input := sampleRecipeInput()
	input.Tags = []NamedItem{{Name: "Thai"}, {Name: "Dinner"}}
	input.Ingredients = []NamedItem{{Name: "Prawns"}, {Name: "Curry paste"}}

	recipe, err := s.CreateRecipe(user.ID, input)
	require.NoError(t, err)

	require.Len(t, recipe.Tags, 2)
	require.Len(t, recipe.Ingredients, 2)
	for _, tag := range recipe.Tags {
		assert.Equal(t, user.ID, tag.UserID)
	}
}

func TestCreateRecipe_ReusesExistingTag(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "recipe@example.com")
	s := NewRecipeService(db, t.TempDir())

	res, err := db.Exec("INSERT INTO tags(user_id, name) VALUES(?, ?)", user.ID, "FirstTag")
	require.NoError(t, err)
	existingID, err := res.LastInsertId()
	require.NoError(t, err)

	input := sampleRecipeInput()
	input.Tags = []NamedItem{{Name: "FirstTag"}, {Name: "Breakfast"}}
	recipe, err := s.CreateRecipe(user.ID, input)
	require.NoError(t, err)

	names := make(map[string]int64, len(recipe.Tags))
	for _, tag := range recipe.Tags {
		names[tag.Name] = tag.ID
	}
	assert.Equal(t, existingID, names["FirstTag"])

	// Only the genuinely new name created a row.
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM tags WHERE user_id = ?", user.ID).Scan(&n))
	assert.Equal(t, 2, n)
}

func TestUpdateRecipe_ReplacesTagSet(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "recipe@example.com")
	s := NewRecipeService(db, t.TempDir())

	input := sampleRecipeInput()
	input.Tags = []NamedItem{{Name: "Breakfast"}}
	created, err := s.CreateRecipe(user.ID, input)
	require.NoError(t, err)

	tags := []NamedItem{{Name: "Lunch"}}
	updated, err := s.UpdateRecipe(user.ID, created.ID, RecipePatch{Tags: &tags})
	require.NoError(t, err)

	require.Len(t, updated.Tags, 1)
	assert.Equal(t, "Lunch", updated.Tags[0].Name)

	// The detached tag row is not deleted.
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM tags WHERE user_id = ? AND name = 'Breakfast'", user.ID).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestUpdateRecipe_EmptyTagListClearsAssociations(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "recipe@example.com")
	s := NewRecipeService(db, t.TempDir())

	input := sampleRecipeInput()
	input.Tags = []NamedItem{{Name: "Dessert"}}
	created, err := s.CreateRecipe(user.ID, input)
	require.NoError(t, err)

	empty := []NamedItem{}
	updated, err := s.UpdateRecipe(user.ID, created.ID, RecipePatch{Tags: &empty})
	require.NoError(t, err)
	assert.Empty(t, updated.Tags)

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM tags WHERE user_id = ?", user.ID).Scan(&n))
	assert.Equal(t, 1, n, "tag row itself must survive")
}

func TestUpdateRecipe_NilTagListLeavesAssociations(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "recipe@example.com")
	s := NewRecipeService(db, t.TempDir())

	input := sampleRecipeInput()
	input.Tags = []NamedItem{{Name: "Dinner"}}
	created, err := s.CreateRecipe(user.ID, input)
	require.NoError(t, err)

	title := "Still tagged"
	updated, err := s.UpdateRecipe(user.ID, created.ID, RecipePatch{Title: &title})
	require.NoError(t, err)
	require.Len(t, updated.Tags, 1)
	assert.Equal(t, "Dinner", updated.Tags[0].Name)
}

func TestUpdateRecipe_IngredientReconciliation(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "recipe@example.com")
	s := NewRecipeService(db, t.TempDir())

	input := sampleRecipeInput()
	input.Ingredients = []NamedItem{{Name: "Flour"}, {Name: "Sugar"}}
	created, err := s.CreateRecipe(user.ID, input)
	require.NoError(t, err)

	// Replace keeps Flour by name and adds Butter; Sugar is detached.
	items := []NamedItem{{Name: "Flour"}, {Name: "Butter"}}
	updated, err := s.UpdateRecipe(user.ID, created.ID, RecipePatch{Ingredients: &items})
	require.NoError(t, err)

	names := []string{}
	for _, ing := range updated.Ingredients {
		names = append(names, ing.Name)
	}
	assert.ElementsMatch(t, []string{"Flour", "Butter"}, names)

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM ingredients WHERE user_id = ?", user.ID).Scan(&n))
	assert.Equal(t, 3, n, "detached ingredient row survives")
}

func TestCreateRecipe_DuplicateInlineNamesCollapse(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "recipe@example.com")
	s := NewRecipeService(db, t.TempDir())

	input := sampleRecipeInput()
	input.Tags = []NamedItem{{Name: "Vegan"}, {Name: "Vegan"}}
	recipe, err := s.CreateRecipe(user.ID, input)
	require.NoError(t, err)
	assert.Len(t, recipe.Tags, 1)
}

func TestSaveRecipeImage(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "recipe@example.com")
	mediaPath := t.TempDir()
	s := NewRecipeService(db, mediaPath)

	created, err := s.CreateRecipe(user.ID, sampleRecipeInput())
	require.NoError(t, err)

	t.Run("stores file under fresh name", func(t *testing.T) {
		updated, err := s.SaveRecipeImage(user.ID, created.ID, strings.NewReader("not-really-a-jpeg"), "photo.JPG")
		require.NoError(t, err)

		require.NotEmpty(t, updated.ImagePath)
		assert.True(t, strings.HasPrefix(updated.ImagePath, "recipe-images/"))
		assert.True(t, strings.HasSuffix(updated.ImagePath, ".jpg"))
		assert.NotContains(t, updated.ImagePath, "photo")

		data, err := os.ReadFile(filepath.Join(mediaPath, filepath.FromSlash(updated.ImagePath)))
		require.NoError(t, err)
		assert.Equal(t, "not-really-a-jpeg", string(data))
	})

	t.Run("rejects unknown extension without mutating the row", func(t *testing.T) {
		before, err := s.GetRecipe(user.ID, created.ID)
		require.NoError(t, err)

		_, err = s.SaveRecipeImage(user.ID, created.ID, strings.NewReader("zip"), "archive.zip")
		ve, ok := models.AsValidationError(err)
		require.True(t, ok)
		assert.Contains(t, ve.Fields, "image")

		after, err := s.GetRecipe(user.ID, created.ID)
		require.NoError(t, err)
		assert.Equal(t, before.ImagePath, after.ImagePath)
	})

	t.Run("not found for non-owner", func(t *testing.T) {
		other := createTestUser(t, db, "other@example.com")
		_, err := s.SaveRecipeImage(other.ID, created.ID, strings.NewReader("img"), "photo.png")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestNormalizePrice(t *testing.T) {
	got, err := NormalizePrice("10.5")
	require.NoError(t, err)
	assert.Equal(t, "10.50", got)

	_, err = NormalizePrice("1.2.3")
	assert.Error(t, err)
}
