// Package auth provides user accounts and session tokens for the web app.
// Credentials live in the application database; sessions are in-memory and
// end on logout or restart.
package auth

import "errors"

// User is a registered account. The email doubles as the user identifier
// for game scores.
type User struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

var (
	ErrEmailTaken         = errors.New("email already exists, please use a different email")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password must be at least 6 characters long")
	ErrMissingFields      = errors.New("all fields are required")
)
