package services

import (
	"testing"

	"github.com/isdelr/recipe-api-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func attrNames(attrs []Attribute) []string {
	names := make([]string, 0, len(attrs))
	for _, a := range attrs {
		names = append(names, a.Name)
	}
	return names
}

func TestAttributeList_ScopedAndOrdered(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	other := createTestUser(t, db, "other@example.com")
	s := NewTagService(db)

	for _, name := range []string{"Dessert", "Vegan", "Breakfast"} {
		_, err := db.Exec("INSERT INTO tags(user_id, name) VALUES(?, ?)", owner.ID, name)
		require.NoError(t, err)
	}
	_, err := db.Exec("INSERT INTO tags(user_id, name) VALUES(?, ?)", other.ID, "Fruity")
	require.NoError(t, err)

	attrs, err := s.List(owner.ID, false)
	require.NoError(t, err)

	// Name-descending, other users' rows absent.
	assert.Equal(t, []string{"Vegan", "Dessert", "Breakfast"}, attrNames(attrs))
}

func TestAttributeList_AssignedOnly(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "owner@example.com")
	tags := NewTagService(db)
	recipes := NewRecipeService(db, t.TempDir())

	input := sampleRecipeInput()
	input.Tags = []NamedItem{{Name: "Assigned"}}
	_, err := recipes.CreateRecipe(user.ID, input)
	require.NoError(t, err)

	_, err = db.Exec("INSERT INTO tags(user_id, name) VALUES(?, ?)", user.ID, "Unassigned")
	require.NoError(t, err)

	attrs, err := tags.List(user.ID, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"Assigned"}, attrNames(attrs))

	all, err := tags.List(user.ID, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestAttributeList_AssignedOnlyDeduplicates(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "owner@example.com")
	ingredients := NewIngredientService(db)
	recipes := NewRecipeService(db, t.TempDir())

	// Same ingredient on two recipes must appear once.
	for i := 0; i < 2; i++ {
		input := sampleRecipeInput()
		input.Ingredients = []NamedItem{{Name: "Eggs"}}
		_, err := recipes.CreateRecipe(user.ID, input)
		require.NoError(t, err)
	}

	attrs, err := ingredients.List(user.ID, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"Eggs"}, attrNames(attrs))
}

func TestAttributeGet_OwnershipHidesExistence(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	other := createTestUser(t, db, "other@example.com")
	s := NewIngredientService(db)

	res, err := db.Exec("INSERT INTO ingredients(user_id, name) VALUES(?, ?)", owner.ID, "Salt")
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)

	_, err = s.Get(other.ID, id)
	assert.ErrorIs(t, err, models.ErrNotFound)

	attr, err := s.Get(owner.ID, id)
	require.NoError(t, err)
	assert.Equal(t, "Salt", attr.Name)
}

func TestAttributeRename(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	other := createTestUser(t, db, "other@example.com")
	s := NewTagService(db)

	res, err := db.Exec("INSERT INTO tags(user_id, name) VALUES(?, ?)", owner.ID, "After Dinner")
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)

	t.Run("owner renames", func(t *testing.T) {
		attr, err := s.Rename(owner.ID, id, "Dessert")
		require.NoError(t, err)
		assert.Equal(t, "Dessert", attr.Name)
	})

	t.Run("non-owner gets not found", func(t *testing.T) {
		_, err := s.Rename(other.ID, id, "Stolen")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("empty name rejected", func(t *testing.T) {
		_, err := s.Rename(owner.ID, id, "")
		_, ok := models.AsValidationError(err)
		assert.True(t, ok)
	})

	t.Run("duplicate name rejected by schema", func(t *testing.T) {
		_, err := db.Exec("INSERT INTO tags(user_id, name) VALUES(?, ?)", owner.ID, "Lunch")
		require.NoError(t, err)
		_, err = s.Rename(owner.ID, id, "Lunch")
		ve, ok := models.AsValidationError(err)
		require.True(t, ok)
		assert.Contains(t, ve.Fields, "name")
	})
}

func TestAttributeDelete(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	other := createTestUser(t, db, "other@example.com")
	s := NewTagService(db)

	res, err := db.Exec("INSERT INTO tags(user_id, name) VALUES(?, ?)", owner.ID, "Transient")
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)

	assert.ErrorIs(t, s.Delete(other.ID, id), models.ErrNotFound)
	require.NoError(t, s.Delete(owner.ID, id))
	assert.ErrorIs(t, s.Delete(owner.ID, id), models.ErrNotFound)
}
