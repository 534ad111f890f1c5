package domain

import (
	"time"

	"github.com/google/uuid"
)

// User Model
type User struct {
	ID        string    `json:"id"`         // Time-ordered identifier
	Name      string    `json:"name"`       // Display name
	Email     string    `json:"email"`      // Unique, compared exactly
	Password  string    `json:"password"`   // bcrypt hash
	CreatedAt time.Time `json:"created_at"` // Registration time
}

// Actor is the acting user of a ledger call; it is what a session exposes
type Actor struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Actor returns the session view of the user
func (u User) Actor() *Actor {
	return &Actor{ID: u.ID, Name: u.Name, Email: u.Email}
}

// NewID returns a unique identifier that increases with creation time
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}
