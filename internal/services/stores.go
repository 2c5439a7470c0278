package services

import (
	"context"
	"errors"

	"photo-gallery-backend/internal/filter"
	"photo-gallery-backend/internal/models"
	"photo-gallery-backend/internal/phoenix"
)

var (
	// ErrPhotoNotFound is returned when a like targets an unknown photo
	ErrPhotoNotFound = errors.New("photo not found")
	// ErrUserNotFound is returned when the session points at a missing user
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned by Authenticate for any bad login link
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Transactor runs fn inside one database transaction
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserStore is the user persistence used by the services
type UserStore interface {
	Upsert(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	UpdatePhoenixToken(ctx context.Context, userID int64, token string) error
}

// AuthTokenStore is the login token persistence
type AuthTokenStore interface {
	Create(ctx context.Context, token *models.AuthToken) error
	GetByToken(ctx context.Context, token string) (*models.AuthToken, error)
}

// PhotoStore is the photo persistence
type PhotoStore interface {
	Create(ctx context.Context, photo *models.Photo) (bool, error)
	GetByID(ctx context.Context, id int64) (*models.Photo, error)
	LockByID(ctx context.Context, id int64) (*models.Photo, error)
	ExistsForUser(ctx context.Context, userID int64, imageURL string) (bool, error)
	AdjustLikeCounter(ctx context.Context, photoID int64, delta int) (int, error)
	List(ctx context.Context, c filter.Criteria) ([]*models.Photo, error)
}

// LikeStore is the like persistence
type LikeStore interface {
	Create(ctx context.Context, like *models.Like) (bool, error)
	Delete(ctx context.Context, userID, photoID int64) (bool, error)
	Exists(ctx context.Context, userID, photoID int64) (bool, error)
	LikedPhotoIDs(ctx context.Context, userID int64, photoIDs []int64) (map[int64]bool, error)
	ListByPhoto(ctx context.Context, photoID int64) ([]*models.Like, error)
}

// PhotoFetcher retrieves the remote photo list for an access token
type PhotoFetcher interface {
	Fetch(ctx context.Context, token string) phoenix.Result
}

// LikeNotifier is told about committed like counter changes
type LikeNotifier interface {
	NotifyLikeChanged(photoID int64, likeCounter int)
}
