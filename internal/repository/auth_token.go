package repository

import (
	"context"
	"fmt"

	"photo-gallery-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AuthTokenRepository handles database operations for login tokens
type AuthTokenRepository struct {
	db *pgxpool.Pool
}

// NewAuthTokenRepository creates a new auth token repository
func NewAuthTokenRepository(db *pgxpool.Pool) *AuthTokenRepository {
	return &AuthTokenRepository{db: db}
}

// Create stores a token. An existing identical token is kept as is.
func (r *AuthTokenRepository) Create(ctx context.Context, token *models.AuthToken) error {
	query := `
		INSERT INTO auth_tokens (token, user_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (token) DO NOTHING
	`
	_, err := conn(ctx, r.db).Exec(ctx, query, token.Token, token.UserID, token.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create auth token: %w", err)
	}
	return nil
}

// GetByToken retrieves a token record by its value
func (r *AuthTokenRepository) GetByToken(ctx context.Context, token string) (*models.AuthToken, error) {
	query := `
		SELECT id, token, user_id, created_at
		FROM auth_tokens
		WHERE token = $1
	`
	var t models.AuthToken
	err := conn(ctx, r.db).QueryRow(ctx, query, token).Scan(
		&t.ID, &t.Token, &t.UserID, &t.CreatedAt,
	)
	if err != nil {
		return nil, notFound(err, "auth token")
	}
	return &t, nil
}
