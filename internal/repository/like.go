package repository

import (
	"context"
	"errors"
	"fmt"

	"photo-gallery-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LikeRepository handles database operations for likes
type LikeRepository struct {
	db *pgxpool.Pool
}

// NewLikeRepository creates a new like repository
func NewLikeRepository(db *pgxpool.Pool) *LikeRepository {
	return &LikeRepository{db: db}
}

// Create inserts a like and reports whether a row was written. An existing
// like for the same (user, photo) is left in place.
func (r *LikeRepository) Create(ctx context.Context, like *models.Like) (bool, error) {
	query := `
		INSERT INTO likes (user_id, photo_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, photo_id) DO NOTHING
		RETURNING id
	`
	err := conn(ctx, r.db).QueryRow(ctx, query, like.UserID, like.PhotoID, like.CreatedAt).Scan(&like.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create like: %w", err)
	}
	return true, nil
}

// Delete removes the like of userID on photoID and reports whether one existed
func (r *LikeRepository) Delete(ctx context.Context, userID, photoID int64) (bool, error) {
	query := `DELETE FROM likes WHERE user_id = $1 AND photo_id = $2`
	result, err := conn(ctx, r.db).Exec(ctx, query, userID, photoID)
	if err != nil {
		return false, fmt.Errorf("failed to delete like: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// Exists checks whether userID has liked photoID
func (r *LikeRepository) Exists(ctx context.Context, userID, photoID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM likes WHERE user_id = $1 AND photo_id = $2)`
	var exists bool
	err := conn(ctx, r.db).QueryRow(ctx, query, userID, photoID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check like existence: %w", err)
	}
	return exists, nil
}

// LikedPhotoIDs returns the subset of photoIDs liked by userID
func (r *LikeRepository) LikedPhotoIDs(ctx context.Context, userID int64, photoIDs []int64) (map[int64]bool, error) {
	liked := make(map[int64]bool, len(photoIDs))
	if len(photoIDs) == 0 {
		return liked, nil
	}

	query := `SELECT photo_id FROM likes WHERE user_id = $1 AND photo_id = ANY($2)`
	rows, err := conn(ctx, r.db).Query(ctx, query, userID, photoIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get liked photos: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var photoID int64
		if err := rows.Scan(&photoID); err != nil {
			return nil, fmt.Errorf("failed to scan like: %w", err)
		}
		liked[photoID] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating likes: %w", err)
	}

	return liked, nil
}

// ListByPhoto returns all likes of a photo, oldest first
func (r *LikeRepository) ListByPhoto(ctx context.Context, photoID int64) ([]*models.Like, error) {
	query := `
		SELECT id, user_id, photo_id, created_at
		FROM likes
		WHERE photo_id = $1
		ORDER BY created_at ASC, id ASC
	`
	rows, err := conn(ctx, r.db).Query(ctx, query, photoID)
	if err != nil {
		return nil, fmt.Errorf("failed to list likes: %w", err)
	}
	defer rows.Close()

	likes := []*models.Like{}
	for rows.Next() {
		var like models.Like
		if err := rows.Scan(&like.ID, &like.UserID, &like.PhotoID, &like.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan like: %w", err)
		}
		likes = append(likes, &like)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating likes: %w", err)
	}

	return likes, nil
}
