package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"photo-gallery-backend/internal/models"
	"photo-gallery-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

// LikeState is the (user, photo) like state after an operation
type LikeState struct {
	PhotoID     int64 `json:"photo_id"`
	Liked       bool  `json:"liked"`
	LikeCounter int   `json:"like_counter"`
	Changed     bool  `json:"changed"`
}

// LikeService keeps likes and the photo like counter in step. Every change
// locks the photo row first, so concurrent likes on one photo serialize.
type LikeService struct {
	photos   PhotoStore
	likes    LikeStore
	tx       Transactor
	notifier LikeNotifier
	now      func() time.Time
}

// NewLikeService creates a new like service. notifier may be nil.
func NewLikeService(photos PhotoStore, likes LikeStore, tx Transactor, notifier LikeNotifier) *LikeService {
	return &LikeService{
		photos:   photos,
		likes:    likes,
		tx:       tx,
		notifier: notifier,
		now:      time.Now,
	}
}

// Like records a like of userID on photoID. Liking an already liked photo
// changes nothing.
func (s *LikeService) Like(ctx context.Context, userID, photoID int64) (*LikeState, error) {
	return s.run(ctx, userID, photoID, func(ctx context.Context, photo *models.Photo, liked bool) (*LikeState, error) {
		if liked {
			return &LikeState{PhotoID: photo.ID, Liked: true, LikeCounter: photo.LikeCounter}, nil
		}
		return s.likeLocked(ctx, userID, photo)
	})
}

// Unlike removes the like of userID on photoID. Unliking a photo that is not
// liked changes nothing and never drives the counter below zero.
func (s *LikeService) Unlike(ctx context.Context, userID, photoID int64) (*LikeState, error) {
	return s.run(ctx, userID, photoID, func(ctx context.Context, photo *models.Photo, liked bool) (*LikeState, error) {
		if !liked {
			return &LikeState{PhotoID: photo.ID, LikeCounter: photo.LikeCounter}, nil
		}
		return s.unlikeLocked(ctx, userID, photo)
	})
}

// Toggle flips the like state of userID on photoID
func (s *LikeService) Toggle(ctx context.Context, userID, photoID int64) (*LikeState, error) {
	return s.run(ctx, userID, photoID, func(ctx context.Context, photo *models.Photo, liked bool) (*LikeState, error) {
		if liked {
			return s.unlikeLocked(ctx, userID, photo)
		}
		return s.likeLocked(ctx, userID, photo)
	})
}

// HasLiked reports whether userID has liked photoID
func (s *LikeService) HasLiked(ctx context.Context, userID, photoID int64) (bool, error) {
	liked, err := s.likes.Exists(ctx, userID, photoID)
	if err != nil {
		return false, fmt.Errorf("failed to check like: %w", err)
	}
	return liked, nil
}

// ListLikes returns all likes of a photo
func (s *LikeService) ListLikes(ctx context.Context, photoID int64) ([]*models.Like, error) {
	if _, err := s.photos.GetByID(ctx, photoID); err != nil {
		return nil, mapPhotoErr(err)
	}
	likes, err := s.likes.ListByPhoto(ctx, photoID)
	if err != nil {
		return nil, fmt.Errorf("failed to list likes: %w", err)
	}
	return likes, nil
}

type likeStep func(ctx context.Context, photo *models.Photo, liked bool) (*LikeState, error)

// run locks the photo, reads the current membership and applies step in
// one transaction. Listeners hear about the change only after commit.
func (s *LikeService) run(ctx context.Context, userID, photoID int64, step likeStep) (*LikeState, error) {
	var state *LikeState
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		photo, err := s.photos.LockByID(ctx, photoID)
		if err != nil {
			return mapPhotoErr(err)
		}
		liked, err := s.likes.Exists(ctx, userID, photoID)
		if err != nil {
			return fmt.Errorf("failed to check like: %w", err)
		}
		state, err = step(ctx, photo, liked)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notify(state)
	return state, nil
}

func (s *LikeService) likeLocked(ctx context.Context, userID int64, photo *models.Photo) (*LikeState, error) {
	created, err := s.likes.Create(ctx, &models.Like{UserID: userID, PhotoID: photo.ID, CreatedAt: s.now()})
	if err != nil {
		return nil, err
	}
	if !created {
		return &LikeState{PhotoID: photo.ID, Liked: true, LikeCounter: photo.LikeCounter}, nil
	}
	counter, err := s.adjustCounter(ctx, photo.ID, 1)
	if err != nil {
		return nil, err
	}
	return &LikeState{PhotoID: photo.ID, Liked: true, LikeCounter: counter, Changed: true}, nil
}

func (s *LikeService) unlikeLocked(ctx context.Context, userID int64, photo *models.Photo) (*LikeState, error) {
	deleted, err := s.likes.Delete(ctx, userID, photo.ID)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return &LikeState{PhotoID: photo.ID, LikeCounter: photo.LikeCounter}, nil
	}
	counter, err := s.adjustCounter(ctx, photo.ID, -1)
	if err != nil {
		return nil, err
	}
	return &LikeState{PhotoID: photo.ID, LikeCounter: counter, Changed: true}, nil
}

// adjustCounter must run in the same transaction as the like row change
func (s *LikeService) adjustCounter(ctx context.Context, photoID int64, delta int) (int, error) {
	counter, err := s.photos.AdjustLikeCounter(ctx, photoID, delta)
	if err != nil {
		return 0, fmt.Errorf("failed to adjust like counter: %w", err)
	}
	return counter, nil
}

func (s *LikeService) notify(state *LikeState) {
	if s.notifier == nil || state == nil || !state.Changed {
		return
	}
	s.notifier.NotifyLikeChanged(state.PhotoID, state.LikeCounter)
	log.Debug().
		Int64("photo_id", state.PhotoID).
		Int("like_counter", state.LikeCounter).
		Msg("Like change broadcast")
}

func mapPhotoErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrPhotoNotFound
	}
	return err
}
