package services

import (
	"database/sql"
	"testing"

	"github.com/isdelr/recipe-api-be/internal/database"
	"github.com/isdelr/recipe-api-be/internal/models"
	"github.com/stretchr/testify/require"
)

// newTestDB opens an in-memory database with the full schema applied.
// A single connection keeps every statement on the same memory store.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.New(":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *sql.DB, email string) models.User {
	t.Helper()

	user, err := NewUserService(db).CreateUser(email, "good_password", "Test User")
	require.NoError(t, err)
	return user
}
