package services

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"

	"github.com/isdelr/recipe-api-be/internal/models"
)

// TokenServiceProvider defines the interface for bearer token services.
type TokenServiceProvider interface {
	Issue(userID string) (string, error)
	Resolve(token string) (models.User, error)
	Revoke(token string) error
}

// TokenService issues and resolves opaque bearer tokens backed by the
// auth_tokens table.
type TokenService struct {
	db *sql.DB
}

// NewTokenService creates a new TokenService.
func NewTokenService(db *sql.DB) *TokenService {
	return &TokenService{db: db}
}

// Issue creates a fresh opaque token for the given user and persists it.
func (s *TokenService) Issue(userID string) (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	token := hex.EncodeToString(buf)

	if _, err := s.db.Exec("INSERT INTO auth_tokens(token, user_id) VALUES(?, ?)", token, userID); err != nil {
		return "", err
	}
	return token, nil
}

// Resolve maps a token string back to its active account. The token and
// account checks run in a single query so a token never resolves to a
// row it should not see.
func (s *TokenService) Resolve(token string) (models.User, error) {
	var user models.User
	row := s.db.QueryRow(`
		SELECT u.id, u.email, u.name, u.is_active, u.is_staff, u.is_superuser, u.created_at
		FROM auth_tokens t
		JOIN users u ON u.id = t.user_id
		WHERE t.token = ? AND u.is_active = 1`, token)
	err := row.Scan(&user.ID, &user.Email, &user.Name,
		&user.IsActive, &user.IsStaff, &user.IsSuperuser, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, models.ErrInvalidToken
		}
		return models.User{}, err
	}
	return user, nil
}

// Revoke deletes a token, ending its session.
func (s *TokenService) Revoke(token string) error {
	_, err := s.db.Exec("DELETE FROM auth_tokens WHERE token = ?", token)
	return err
}
