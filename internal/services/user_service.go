package services

import (
	"database/sql"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/isdelr/recipe-api-be/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the minimum password length accepted at the
// registration and profile-update boundary.
const MinPasswordLength = 5

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	GetUserByID(id string) (models.User, error)
	CreateUser(email, password, name string) (models.User, error)
	CreateSuperuser(email, password, name string) (models.User, error)
	RegisterUser(email, password, name string) (models.User, error)
	UpdateProfile(id string, name, password *string) (models.User, error)
	Authenticate(email, password string) (models.User, error)
}

// UserService provides business logic for user management.
type UserService struct {
	db *sql.DB
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

// NormalizeEmail lower-cases the domain portion of an email address,
// leaving the local part untouched.
func NormalizeEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at+1] + strings.ToLower(email[at+1:])
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(id string) (models.User, error) {
	return s.getUser("id = ?", id)
}

func (s *UserService) getUser(where string, arg any) (models.User, error) {
	var user models.User
	row := s.db.QueryRow(
		"SELECT id, email, name, password_hash, is_active, is_staff, is_superuser, created_at FROM users WHERE "+where, arg)
	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash,
		&user.IsActive, &user.IsStaff, &user.IsSuperuser, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, models.ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// CreateUser creates a new user account. The email is required and has
// its domain portion normalized to lowercase. The password may be empty,
// which yields an account that cannot authenticate.
func (s *UserService) CreateUser(email, password, name string) (models.User, error) {
	if email == "" {
		return models.User{}, models.NewValidationError("email", "must not be empty")
	}

	var hash string
	if password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return models.User{}, fmt.Errorf("failed to hash password: %w", err)
		}
		hash = string(hashed)
	}

	user := models.User{
		ID:           uuid.New().String(),
		Email:        NormalizeEmail(email),
		Name:         name,
		PasswordHash: hash,
		IsActive:     true,
	}

	_, err := s.db.Exec(
		"INSERT INTO users(id, email, name, password_hash, is_active) VALUES(?, ?, ?, ?, 1)",
		user.ID, user.Email, user.Name, user.PasswordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, models.NewValidationError("email", "a user with this email already exists")
		}
		return models.User{}, err
	}

	// Return user without password hash
	user.PasswordHash = ""
	return user, nil
}

// CreateSuperuser creates a user and promotes it to staff and superuser.
func (s *UserService) CreateSuperuser(email, password, name string) (models.User, error) {
	user, err := s.CreateUser(email, password, name)
	if err != nil {
		return models.User{}, err
	}

	_, err = s.db.Exec("UPDATE users SET is_staff = 1, is_superuser = 1 WHERE id = ?", user.ID)
	if err != nil {
		return models.User{}, err
	}
	user.IsStaff = true
	user.IsSuperuser = true
	return user, nil
}

// RegisterUser applies the public registration rules (well-formed email,
// minimum password length) before creating the account.
func (s *UserService) RegisterUser(email, password, name string) (models.User, error) {
	if _, err := mail.ParseAddress(email); err != nil {
		return models.User{}, models.NewValidationError("email", "enter a valid email address")
	}
	if len(password) < MinPasswordLength {
		return models.User{}, models.NewValidationError("password",
			fmt.Sprintf("ensure this field has at least %d characters", MinPasswordLength))
	}
	return s.CreateUser(email, password, name)
}

// UpdateProfile applies a partial update to the user's name and password.
// A nil field is left untouched. A new password is re-hashed before it is
// stored.
func (s *UserService) UpdateProfile(id string, name, password *string) (models.User, error) {
	if password != nil {
		if len(*password) < MinPasswordLength {
			return models.User{}, models.NewValidationError("password",
				fmt.Sprintf("ensure this field has at least %d characters", MinPasswordLength))
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
		if err != nil {
			return models.User{}, fmt.Errorf("failed to hash password: %w", err)
		}
		if _, err := s.db.Exec("UPDATE users SET password_hash = ? WHERE id = ?", string(hashed), id); err != nil {
			return models.User{}, err
		}
	}

	if name != nil {
		if _, err := s.db.Exec("UPDATE users SET name = ? WHERE id = ?", *name, id); err != nil {
			return models.User{}, err
		}
	}

	return s.GetUserByID(id)
}

// Authenticate verifies a user's credentials against an active account.
func (s *UserService) Authenticate(email, password string) (models.User, error) {
	if password == "" {
		return models.User{}, models.ErrInvalidCredentials
	}

	user, err := s.getUser("email = ? AND is_active = 1", NormalizeEmail(email))
	if err != nil {
		return models.User{}, models.ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return models.User{}, models.ErrInvalidCredentials
	}

	// Don't send the password hash to the client
	user.PasswordHash = ""
	return user, nil
}

// isUniqueViolation reports whether err comes from a UNIQUE constraint.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
