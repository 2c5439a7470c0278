package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"photo-gallery-backend/internal/models"
	"photo-gallery-backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// SeedUser is a user created at startup, optionally with a known login token
type SeedUser struct {
	Username  string
	Email     string
	Name      string
	LastName  string
	AuthToken string
}

// AuthService handles login links and bearer tokens
type AuthService struct {
	users     UserStore
	tokens    AuthTokenStore
	jwtSecret string
	jwtTTL    time.Duration
	now       func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(users UserStore, tokens AuthTokenStore, jwtSecret string, jwtTTL time.Duration) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		jwtSecret: jwtSecret,
		jwtTTL:    jwtTTL,
		now:       time.Now,
	}
}

// Authenticate resolves a login link. The token must exist and belong to
// the user named username; every failure is ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, username, token string) (*models.User, error) {
	if username == "" || token == "" {
		return nil, ErrInvalidCredentials
	}

	authToken, err := s.tokens.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get auth token: %w", err)
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if authToken.UserID != user.ID {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// IssueAuthToken creates a fresh login token for userID
func (s *AuthService) IssueAuthToken(ctx context.Context, userID int64) (*models.AuthToken, error) {
	token := &models.AuthToken{
		Token:     uuid.NewString(),
		UserID:    userID,
		CreatedAt: s.now(),
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		return nil, fmt.Errorf("failed to create auth token: %w", err)
	}
	return token, nil
}

// GenerateJWT generates a bearer token for a user
func (s *AuthService) GenerateJWT(userID int64) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateJWT validates a bearer token and returns the user ID
func (s *AuthService) ValidateJWT(tokenString string) (int64, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		return []byte(s.jwtSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return 0, fmt.Errorf("failed to parse token: %w", err)
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, fmt.Errorf("invalid subject in token")
	}

	return userID, nil
}

// SeedUsers upserts the configured users and their login tokens. Users
// without a configured token get a generated one.
func (s *AuthService) SeedUsers(ctx context.Context, seeds []SeedUser) error {
	for _, seed := range seeds {
		user := &models.User{
			Username: seed.Username,
			Email:    seed.Email,
			Name:     seed.Name,
			LastName: seed.LastName,
		}
		if err := s.users.Upsert(ctx, user); err != nil {
			return fmt.Errorf("failed to seed user %s: %w", seed.Username, err)
		}

		token := seed.AuthToken
		if token == "" {
			issued, err := s.IssueAuthToken(ctx, user.ID)
			if err != nil {
				return err
			}
			token = issued.Token
		} else {
			err := s.tokens.Create(ctx, &models.AuthToken{Token: token, UserID: user.ID, CreatedAt: s.now()})
			if err != nil {
				return fmt.Errorf("failed to seed auth token for %s: %w", seed.Username, err)
			}
		}

		log.Info().
			Int64("user_id", user.ID).
			Str("username", user.Username).
			Msg("Seeded user")
		// the path embeds the secret token
		log.Debug().
			Str("username", user.Username).
			Str("login_path", "/auth/"+user.Username+"/"+token).
			Msg("Seeded user login path")
	}
	return nil
}
