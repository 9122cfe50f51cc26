package models

import "time"

// Recipe represents a recipe owned by a single user.
type Recipe struct {
	ID          int64        `json:"id"`
	UserID      string       `json:"-"`
	Title       string       `json:"title"`
	TimeMinutes int          `json:"time_minutes"`
	Price       string       `json:"price"` // fixed-point decimal, 2 places
	Description string       `json:"description"`
	Link        string       `json:"link"`
	ImagePath   string       `json:"image"`
	Tags        []Tag        `json:"tags"`
	Ingredients []Ingredient `json:"ingredients"`
	CreatedAt   time.Time    `json:"-"`
}

// RecipeSummary is the reduced representation returned by the recipe
// list endpoint. Detail endpoints return the full Recipe.
type RecipeSummary struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	TimeMinutes int    `json:"time_minutes"`
	Price       string `json:"price"`
	Link        string `json:"link"`
}

// Summary returns the reduced representation of the recipe.
func (r Recipe) Summary() RecipeSummary {
	return RecipeSummary{
		ID:          r.ID,
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price,
		Link:        r.Link,
	}
}

// Tag is a user-owned label that can be attached to recipes.
type Tag struct {
	ID     int64  `json:"id"`
	UserID string `json:"-"`
	Name   string `json:"name"`
}

func (t Tag) String() string { return t.Name }

// Ingredient is a user-owned ingredient that can be attached to recipes.
type Ingredient struct {
	ID     int64  `json:"id"`
	UserID string `json:"-"`
	Name   string `json:"name"`
}

func (i Ingredient) String() string { return i.Name }
