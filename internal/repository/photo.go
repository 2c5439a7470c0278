package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"photo-gallery-backend/internal/filter"
	"photo-gallery-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const photoColumns = `id, user_id, image_url, location, camera, description, taken_at, like_counter`

const listPhotosQuery = `
		SELECT p.id, p.user_id, p.image_url, p.location, p.camera, p.description,
			p.taken_at, p.like_counter, u.id, u.username, u.email, u.name, u.last_name
		FROM photos p
		JOIN users u ON u.id = p.user_id`

// PhotoRepository handles database operations for photos
type PhotoRepository struct {
	db *pgxpool.Pool
}

// NewPhotoRepository creates a new photo repository
func NewPhotoRepository(db *pgxpool.Pool) *PhotoRepository {
	return &PhotoRepository{db: db}
}

// Create inserts a photo and reports whether a row was written. A photo with
// the same (user_id, image_url) is left in place and reported as not created.
func (r *PhotoRepository) Create(ctx context.Context, photo *models.Photo) (bool, error) {
	query := `
		INSERT INTO photos (user_id, image_url, location, camera, description, taken_at, like_counter)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, image_url) DO NOTHING
		RETURNING id
	`
	err := conn(ctx, r.db).QueryRow(ctx, query,
		photo.UserID, photo.ImageURL, photo.Location, photo.Camera,
		photo.Description, photo.TakenAt, photo.LikeCounter,
	).Scan(&photo.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create photo: %w", err)
	}
	return true, nil
}

// GetByID retrieves a photo by ID
func (r *PhotoRepository) GetByID(ctx context.Context, id int64) (*models.Photo, error) {
	query := `SELECT ` + photoColumns + ` FROM photos WHERE id = $1`
	photo, err := scanPhoto(conn(ctx, r.db).QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "photo")
	}
	return photo, nil
}

// LockByID retrieves a photo and locks its row until the surrounding
// transaction ends. It must be called inside TxManager.WithinTx.
func (r *PhotoRepository) LockByID(ctx context.Context, id int64) (*models.Photo, error) {
	query := `SELECT ` + photoColumns + ` FROM photos WHERE id = $1 FOR UPDATE`
	photo, err := scanPhoto(conn(ctx, r.db).QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "photo")
	}
	return photo, nil
}

// ExistsForUser checks whether the user already owns a photo with imageURL
func (r *PhotoRepository) ExistsForUser(ctx context.Context, userID int64, imageURL string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM photos WHERE user_id = $1 AND image_url = $2)`
	var exists bool
	err := conn(ctx, r.db).QueryRow(ctx, query, userID, imageURL).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check photo existence: %w", err)
	}
	return exists, nil
}

// AdjustLikeCounter adds delta to the like counter, never going below zero,
// and returns the new value
func (r *PhotoRepository) AdjustLikeCounter(ctx context.Context, photoID int64, delta int) (int, error) {
	query := `
		UPDATE photos SET like_counter = GREATEST(like_counter + $1, 0)
		WHERE id = $2
		RETURNING like_counter
	`
	var counter int
	err := conn(ctx, r.db).QueryRow(ctx, query, delta, photoID).Scan(&counter)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("photo not found: %w", ErrNotFound)
		}
		return 0, fmt.Errorf("failed to update like counter: %w", err)
	}
	return counter, nil
}

// List returns photos joined with their owners, filtered by c and ordered by
// id. It runs a single query.
func (r *PhotoRepository) List(ctx context.Context, c filter.Criteria) ([]*models.Photo, error) {
	query, args := buildListQuery(c)

	rows, err := conn(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}
	defer rows.Close()

	photos := []*models.Photo{}
	for rows.Next() {
		var photo models.Photo
		var owner models.User
		err := rows.Scan(
			&photo.ID, &photo.UserID, &photo.ImageURL, &photo.Location, &photo.Camera,
			&photo.Description, &photo.TakenAt, &photo.LikeCounter,
			&owner.ID, &owner.Username, &owner.Email, &owner.Name, &owner.LastName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		photo.User = &owner
		photos = append(photos, &photo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating photos: %w", err)
	}

	return photos, nil
}

// buildListQuery composes the listing query. Text filters are
// case-insensitive substring matches; date bounds are inclusive.
func buildListQuery(c filter.Criteria) (string, []any) {
	var conditions []string
	var args []any

	add := func(condition string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(condition, len(args)))
	}

	if c.Location != "" {
		add(`p.location ILIKE $%d ESCAPE '\'`, containsPattern(c.Location))
	}
	if c.Camera != "" {
		add(`p.camera ILIKE $%d ESCAPE '\'`, containsPattern(c.Camera))
	}
	if c.Description != "" {
		add(`p.description ILIKE $%d ESCAPE '\'`, containsPattern(c.Description))
	}
	if c.Username != "" {
		add(`u.username ILIKE $%d ESCAPE '\'`, containsPattern(c.Username))
	}
	if c.TakenAtFrom != nil {
		add(`p.taken_at >= $%d`, *c.TakenAtFrom)
	}
	if c.TakenAtTo != nil {
		add(`p.taken_at <= $%d`, *c.TakenAtTo)
	}

	query := listPhotosQuery
	if len(conditions) > 0 {
		query += "\n\t\tWHERE " + strings.Join(conditions, " AND ")
	}
	query += "\n\t\tORDER BY p.id ASC"

	return query, args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(value string) string {
	return "%" + likeEscaper.Replace(value) + "%"
}

func scanPhoto(row rowScanner) (*models.Photo, error) {
	var photo models.Photo
	err := row.Scan(
		&photo.ID, &photo.UserID, &photo.ImageURL, &photo.Location, &photo.Camera,
		&photo.Description, &photo.TakenAt, &photo.LikeCounter,
	)
	if err != nil {
		return nil, err
	}
	return &photo, nil
}
