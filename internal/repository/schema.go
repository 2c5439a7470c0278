package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username VARCHAR(180) NOT NULL UNIQUE,
		email VARCHAR(255) NOT NULL,
		name VARCHAR(255) NOT NULL DEFAULT '',
		last_name VARCHAR(255) NOT NULL DEFAULT '',
		bio TEXT,
		age INTEGER,
		phoenix_access_token TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS auth_tokens (
		id BIGSERIAL PRIMARY KEY,
		token VARCHAR(255) NOT NULL UNIQUE,
		user_id BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS photos (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		image_url VARCHAR(2048) NOT NULL,
		location VARCHAR(255),
		camera VARCHAR(255),
		description TEXT,
		taken_at TIMESTAMPTZ,
		like_counter INTEGER NOT NULL DEFAULT 0 CHECK (like_counter >= 0),
		CONSTRAINT photos_user_image_url_key UNIQUE (user_id, image_url)
	)`,
	`CREATE TABLE IF NOT EXISTS likes (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		photo_id BIGINT NOT NULL REFERENCES photos (id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT likes_user_photo_key UNIQUE (user_id, photo_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_photos_taken_at ON photos (taken_at)`,
	`CREATE INDEX IF NOT EXISTS idx_likes_photo_id ON likes (photo_id)`,
}

// EnsureSchema creates the tables and indexes that do not exist yet
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
