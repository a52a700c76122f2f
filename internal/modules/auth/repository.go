package auth

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Repository handles the users table.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a user repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "users").Logger(),
	}
}

// Init creates the users table if absent.
func (r *Repository) Init() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT UNIQUE NOT NULL,
			password TEXT NOT NULL,
			name TEXT NOT NULL,
			created_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}
	return nil
}

// Create inserts a new user with an already-hashed password. Returns
// ErrEmailTaken when the email is registered.
func (r *Repository) Create(email, passwordHash, name string) (*User, error) {
	createdAt := time.Now().Format("2006-01-02 15:04:05")

	res, err := r.db.Exec(
		"INSERT INTO users (email, password, name, created_at) VALUES (?, ?, ?, ?)",
		email, passwordHash, name, createdAt,
	)
	if err != nil {
		// modernc/sqlite reports constraint violations in the error text.
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get new user id: %w", err)
	}

	return &User{ID: id, Email: email, Name: name, CreatedAt: createdAt}, nil
}

// GetByCredentials looks up a user by email and hashed password. Returns
// ErrInvalidCredentials when no row matches.
func (r *Repository) GetByCredentials(email, passwordHash string) (*User, error) {
	var u User
	err := r.db.QueryRow(
		"SELECT id, email, name, created_at FROM users WHERE email = ? AND password = ?",
		email, passwordHash,
	).Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to verify credentials: %w", err)
	}
	return &u, nil
}
