package models

import "time"

// User represents a user account in the system.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"` // Never expose this to the client
	IsActive     bool      `json:"isActive"`
	IsStaff      bool      `json:"isStaff"`
	IsSuperuser  bool      `json:"isSuperuser"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Profile is the reduced self-service representation of an account,
// returned by the /users/me endpoints.
type Profile struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Profile returns the reduced representation of the user.
func (u User) Profile() Profile {
	return Profile{Email: u.Email, Name: u.Name}
}
