package services

import (
	"context"
	"errors"
	"fmt"

	"photo-gallery-backend/internal/filter"
	"photo-gallery-backend/internal/models"
	"photo-gallery-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

// HomeData is everything the gallery page shows
type HomeData struct {
	Photos           []*models.Photo `json:"photos"`
	CurrentUser      *models.User    `json:"current_user"`
	UserLikes        map[int64]bool  `json:"user_likes"`
	Filters          filter.Criteria `json:"filters"`
	FilterSummary    []string        `json:"filter_summary"`
	HasActiveFilters bool            `json:"has_active_filters"`
}

// GalleryService lists photos for the gallery
type GalleryService struct {
	photos PhotoStore
	users  UserStore
	likes  LikeStore
}

// NewGalleryService creates a new gallery service
func NewGalleryService(photos PhotoStore, users UserStore, likes LikeStore) *GalleryService {
	return &GalleryService{photos: photos, users: users, likes: likes}
}

// ListPhotos returns the photos matching c, each with its owner, ordered by id
func (s *GalleryService) ListPhotos(ctx context.Context, c filter.Criteria) ([]*models.Photo, error) {
	photos, err := s.photos.List(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}
	return photos, nil
}

// Home assembles the gallery for userID. userID 0 is an anonymous visitor;
// a session pointing at a deleted user is treated the same way.
func (s *GalleryService) Home(ctx context.Context, c filter.Criteria, userID int64) (*HomeData, error) {
	photos, err := s.ListPhotos(ctx, c)
	if err != nil {
		return nil, err
	}

	data := &HomeData{
		Photos:           photos,
		UserLikes:        map[int64]bool{},
		Filters:          c,
		FilterSummary:    c.Summary(),
		HasActiveFilters: c.HasActiveFilters(),
	}
	if userID == 0 {
		return data, nil
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Warn().Int64("user_id", userID).Msg("Session user no longer exists")
			return data, nil
		}
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	data.CurrentUser = user

	ids := make([]int64, len(photos))
	for i, p := range photos {
		ids[i] = p.ID
	}
	liked, err := s.likes.LikedPhotoIDs(ctx, userID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get user likes: %w", err)
	}
	for _, id := range ids {
		data.UserLikes[id] = liked[id]
	}

	return data, nil
}
