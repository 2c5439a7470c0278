package repository

import (
	"context"
	"fmt"

	"photo-gallery-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, username, email, name, last_name, bio, age, phoenix_access_token`

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Upsert inserts a user or refreshes the profile of the user with the same
// username. The Phoenix token is left untouched.
func (r *UserRepository) Upsert(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (username, email, name, last_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (username) DO UPDATE
		SET email = EXCLUDED.email, name = EXCLUDED.name, last_name = EXCLUDED.last_name
		RETURNING id
	`
	err := conn(ctx, r.db).QueryRow(ctx, query,
		user.Username, user.Email, user.Name, user.LastName,
	).Scan(&user.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(conn(ctx, r.db).QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "user")
	}
	return user, nil
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	user, err := scanUser(conn(ctx, r.db).QueryRow(ctx, query, username))
	if err != nil {
		return nil, notFound(err, "user")
	}
	return user, nil
}

// UpdateProfile updates the editable profile fields
func (r *UserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users SET email = $1, name = $2, last_name = $3, bio = $4, age = $5
		WHERE id = $6
	`
	result, err := conn(ctx, r.db).Exec(ctx, query,
		user.Email, user.Name, user.LastName, user.Bio, user.Age, user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user not found: %w", ErrNotFound)
	}
	return nil
}

// UpdatePhoenixToken stores the Phoenix access token for a user
func (r *UserRepository) UpdatePhoenixToken(ctx context.Context, userID int64, token string) error {
	query := `UPDATE users SET phoenix_access_token = $1 WHERE id = $2`
	result, err := conn(ctx, r.db).Exec(ctx, query, token, userID)
	if err != nil {
		return fmt.Errorf("failed to update phoenix token: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user not found: %w", ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.Name, &user.LastName,
		&user.Bio, &user.Age, &user.PhoenixAccessToken,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
