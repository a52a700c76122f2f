package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
)

// SessionDropper discards per-user state on logout (the game session).
type SessionDropper interface {
	Drop(userID string)
}

// Handler provides the HTTP endpoints for signup, login and logout.
type Handler struct {
	service *Service
	dropper SessionDropper
	log     zerolog.Logger
}

// NewHandler creates an auth handler.
func NewHandler(service *Service, dropper SessionDropper, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		dropper: dropper,
		log:     log.With().Str("handler", "auth").Logger(),
	}
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrWeakPassword), errors.Is(err, ErrMissingFields):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// HandleSignup handles POST /api/auth/signup
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	token, user, err := h.service.Signup(req.Name, req.Email, req.Password)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(authResponse{Token: token, User: user})
}

// HandleLogin handles POST /api/auth/login
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	token, user, err := h.service.Login(req.Email, req.Password)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(authResponse{Token: token, User: user})
}

// HandleLogout handles POST /api/auth/logout
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		http.Error(w, "Missing session token", http.StatusUnauthorized)
		return
	}

	userID, ok := h.service.Logout(token)
	if ok && h.dropper != nil {
		// The game session ends with the login session.
		h.dropper.Drop(userID)
	}

	w.WriteHeader(http.StatusNoContent)
}
