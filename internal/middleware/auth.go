package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/sessions"
	"github.com/rs/zerolog/log"
)

type contextKey string

const userIDKey contextKey = "user_id"

const (
	sessionName    = "gallery_session"
	sessionUserKey = "user_id"
)

// TokenValidator resolves a bearer token to a user ID
type TokenValidator interface {
	ValidateJWT(token string) (int64, error)
}

// Sessions keeps the logged in user ID in a signed cookie
type Sessions struct {
	store sessions.Store
}

// NewSessions creates a cookie backed session store
func NewSessions(secret string, maxAge time.Duration, secure bool) *Sessions {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Sessions{store: store}
}

// Login stores userID in the session cookie
func (s *Sessions) Login(w http.ResponseWriter, r *http.Request, userID int64) error {
	session, _ := s.store.Get(r, sessionName)
	session.Values[sessionUserKey] = userID
	return session.Save(r, w)
}

// Logout expires the session cookie
func (s *Sessions) Logout(w http.ResponseWriter, r *http.Request) error {
	session, _ := s.store.Get(r, sessionName)
	delete(session.Values, sessionUserKey)
	session.Options.MaxAge = -1
	return session.Save(r, w)
}

// UserID returns the user ID stored in the session, or 0
func (s *Sessions) UserID(r *http.Request) int64 {
	session, err := s.store.Get(r, sessionName)
	if err != nil {
		return 0
	}
	userID, ok := session.Values[sessionUserKey].(int64)
	if !ok {
		return 0
	}
	return userID
}

// Authenticate resolves the current user from a Bearer token or, failing
// that, the session cookie. Anonymous requests pass through with no user ID.
// A malformed or invalid Authorization header is rejected.
func Authenticate(s *Sessions, tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var userID int64

			if authHeader := r.Header.Get("Authorization"); authHeader != "" {
				parts := strings.Split(authHeader, " ")
				if len(parts) != 2 || parts[0] != "Bearer" {
					respondError(w, "Invalid authorization header format", http.StatusUnauthorized)
					return
				}

				id, err := tokens.ValidateJWT(parts[1])
				if err != nil {
					log.Debug().Err(err).Msg("Rejected bearer token")
					respondError(w, "Invalid token", http.StatusUnauthorized)
					return
				}
				userID = id
			} else if s != nil {
				userID = s.UserID(r)
			}

			if userID == 0 {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// RequireUser rejects anonymous requests with message
func RequireUser(message string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if GetUserID(r.Context()) == 0 {
				respondError(w, message, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithUserID returns a copy of ctx carrying userID
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserID extracts user ID from context, 0 when anonymous
func GetUserID(ctx context.Context) int64 {
	userID, ok := ctx.Value(userIDKey).(int64)
	if !ok {
		return 0
	}
	return userID
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
