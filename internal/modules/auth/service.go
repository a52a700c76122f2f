package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/rs/zerolog"
)

// Service implements signup and login on top of the user repository and the
// in-memory session store.
type Service struct {
	repo     *Repository
	sessions *SessionStore
	log      zerolog.Logger
}

// NewService creates an auth service.
func NewService(repo *Repository, sessions *SessionStore, log zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		sessions: sessions,
		log:      log.With().Str("service", "auth").Logger(),
	}
}

// hashPassword hashes a password with SHA-256, matching the stored format.
func hashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// Signup creates an account and logs the user in. Returns the session token
// and the created user.
func (s *Service) Signup(name, email, password string) (string, *User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return "", nil, ErrMissingFields
	}
	if len(password) < 6 {
		return "", nil, ErrWeakPassword
	}

	user, err := s.repo.Create(email, hashPassword(password), name)
	if err != nil {
		return "", nil, err
	}

	s.log.Info().Str("email", email).Msg("User account created")

	return s.sessions.New(user), user, nil
}

// Login verifies credentials and opens a session.
func (s *Service) Login(email, password string) (string, *User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", nil, ErrMissingFields
	}

	user, err := s.repo.GetByCredentials(email, hashPassword(password))
	if err != nil {
		return "", nil, err
	}

	return s.sessions.New(user), user, nil
}

// Logout closes a session and returns the identifier of the user who owned
// it, if any.
func (s *Service) Logout(token string) (string, bool) {
	return s.sessions.Delete(token)
}
