package handlers

import (
	"errors"
	"net/http"

	"photo-gallery-backend/internal/middleware"
	"photo-gallery-backend/internal/models"
	"photo-gallery-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// AuthHandler handles login links and logout
type AuthHandler struct {
	authService *services.AuthService
	sessions    *middleware.Sessions
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, sessions *middleware.Sessions) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
	}
}

// LoginResponse is returned after a successful login
type LoginResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// Login handles GET /auth/{username}/{token}
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	username := chi.URLParam(r, "username")

	user, err := h.authService.Authenticate(ctx, username, chi.URLParam(r, "token"))
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			log.Warn().Str("username", username).Msg("Rejected login link")
			respondError(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}
		log.Error().Err(err).Str("username", username).Msg("Failed to authenticate")
		respondError(w, "Failed to authenticate", http.StatusInternalServerError)
		return
	}

	token, err := h.authService.GenerateJWT(user.ID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to generate token")
		respondError(w, "Failed to authenticate", http.StatusInternalServerError)
		return
	}

	if err := h.sessions.Login(w, r, user.ID); err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to save session")
		respondError(w, "Failed to authenticate", http.StatusInternalServerError)
		return
	}

	log.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("User logged in")

	respondJSON(w, LoginResponse{User: user, Token: token}, http.StatusOK)
}

// Logout handles POST /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(w, r); err != nil {
		log.Error().Err(err).Msg("Failed to clear session")
		respondError(w, "Failed to log out", http.StatusInternalServerError)
		return
	}
	respondJSON(w, map[string]string{"message": "Logged out"}, http.StatusOK)
}
