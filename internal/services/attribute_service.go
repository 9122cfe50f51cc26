package services

import (
	"database/sql"
	"fmt"

	"github.com/isdelr/recipe-api-be/internal/models"
)

// Attribute is a user-owned recipe attribute row (a tag or an
// ingredient).
type Attribute struct {
	ID     int64  `json:"id"`
	UserID string `json:"-"`
	Name   string `json:"name"`
}

// AttributeServiceProvider defines the interface shared by the tag and
// ingredient services, which differ only by table.
type AttributeServiceProvider interface {
	List(userID string, assignedOnly bool) ([]Attribute, error)
	Get(userID string, id int64) (Attribute, error)
	Rename(userID string, id int64, name string) (Attribute, error)
	Delete(userID string, id int64) error
}

// AttributeService provides owner-scoped CRUD over a recipe attribute
// table.
type AttributeService struct {
	db        *sql.DB
	table     string
	joinTable string
	joinCol   string
}

// NewTagService creates the attribute service backed by the tags table.
func NewTagService(db *sql.DB) *AttributeService {
	return &AttributeService{db: db, table: "tags", joinTable: "recipe_tags", joinCol: "tag_id"}
}

// NewIngredientService creates the attribute service backed by the
// ingredients table.
func NewIngredientService(db *sql.DB) *AttributeService {
	return &AttributeService{db: db, table: "ingredients", joinTable: "recipe_ingredients", joinCol: "ingredient_id"}
}

// List returns the caller's attributes ordered by name, descending. With
// assignedOnly set, only attributes attached to at least one of the
// caller's recipes are returned, each at most once.
func (s *AttributeService) List(userID string, assignedOnly bool) ([]Attribute, error) {
	query := fmt.Sprintf("SELECT id, user_id, name FROM %s WHERE user_id = ? ORDER BY name DESC", s.table)
	if assignedOnly {
		query = fmt.Sprintf(`
			SELECT DISTINCT a.id, a.user_id, a.name FROM %s a
			JOIN %s j ON j.%s = a.id
			WHERE a.user_id = ? ORDER BY a.name DESC`, s.table, s.joinTable, s.joinCol)
	}

	rows, err := s.db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attrs := []Attribute{}
	for rows.Next() {
		var a Attribute
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name); err != nil {
			return nil, err
		}
		attrs = append(attrs, a)
	}
	return attrs, rows.Err()
}

// Get returns a single caller-owned attribute.
func (s *AttributeService) Get(userID string, id int64) (Attribute, error) {
	var a Attribute
	row := s.db.QueryRow(
		fmt.Sprintf("SELECT id, user_id, name FROM %s WHERE id = ? AND user_id = ?", s.table), id, userID)
	if err := row.Scan(&a.ID, &a.UserID, &a.Name); err != nil {
		if err == sql.ErrNoRows {
			return Attribute{}, models.ErrNotFound
		}
		return Attribute{}, err
	}
	return a, nil
}

// Rename changes the name of a caller-owned attribute.
func (s *AttributeService) Rename(userID string, id int64, name string) (Attribute, error) {
	if name == "" {
		return Attribute{}, models.NewValidationError("name", "must not be empty")
	}

	res, err := s.db.Exec(
		fmt.Sprintf("UPDATE %s SET name = ? WHERE id = ? AND user_id = ?", s.table), name, id, userID)
	if err != nil {
		if isUniqueViolation(err) {
			return Attribute{}, models.NewValidationError("name", "already exists for this user")
		}
		return Attribute{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Attribute{}, err
	}
	if n == 0 {
		return Attribute{}, models.ErrNotFound
	}
	return s.Get(userID, id)
}

// Delete removes a caller-owned attribute. Join rows referencing it go
// with it via cascade.
func (s *AttributeService) Delete(userID string, id int64) error {
	res, err := s.db.Exec(
		fmt.Sprintf("DELETE FROM %s WHERE id = ? AND user_id = ?", s.table), id, userID)
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
