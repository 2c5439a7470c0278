package models

import "time"

// User represents a gallery user
type User struct {
	ID                 int64   `json:"id"`
	Username           string  `json:"username"`
	Email              string  `json:"email"`
	Name               string  `json:"name"`
	LastName           string  `json:"last_name"`
	Bio                *string `json:"bio,omitempty"`
	Age                *int    `json:"age,omitempty"`
	PhoenixAccessToken *string `json:"-"`
}

// HasPhoenixToken reports whether the user has stored a Phoenix access token
func (u *User) HasPhoenixToken() bool {
	return u.PhoenixAccessToken != nil && *u.PhoenixAccessToken != ""
}

// Photo represents a photo owned by a user.
// User is only populated by listing queries that join the owner.
type Photo struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	ImageURL    string     `json:"image_url"`
	Location    *string    `json:"location,omitempty"`
	Camera      *string    `json:"camera,omitempty"`
	Description *string    `json:"description,omitempty"`
	TakenAt     *time.Time `json:"taken_at,omitempty"`
	LikeCounter int        `json:"like_counter"`
	User        *User      `json:"user,omitempty"`
}

// AuthToken bootstraps a session for its owner
type AuthToken struct {
	ID        int64     `json:"id"`
	Token     string    `json:"-"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Like records that a user liked a photo
type Like struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	PhotoID   int64     `json:"photo_id"`
	CreatedAt time.Time `json:"created_at"`
}
