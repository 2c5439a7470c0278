package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"photo-gallery-backend/internal/models"
	"photo-gallery-backend/internal/repository"

	"github.com/go-playground/validator/v10"
)

// ValidationError lists the fields of a request that failed validation
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid fields: " + strings.Join(e.Fields, ", ")
}

// Profile is the user as shown on the profile page
type Profile struct {
	*models.User
	HasPhoenixToken bool `json:"has_phoenix_token"`
}

// UpdateProfileRequest holds the editable profile fields
type UpdateProfileRequest struct {
	Email    string  `json:"email" validate:"required,email,max=180"`
	Name     string  `json:"name" validate:"required,max=255"`
	LastName string  `json:"last_name" validate:"required,max=255"`
	Bio      *string `json:"bio" validate:"omitempty,max=1000"`
	Age      *int    `json:"age" validate:"omitempty,gte=0,lte=150"`
}

// ProfileService reads and edits the current user's profile
type ProfileService struct {
	users    UserStore
	validate *validator.Validate
}

// NewProfileService creates a new profile service
func NewProfileService(users UserStore) *ProfileService {
	return &ProfileService{users: users, validate: validator.New()}
}

// Get returns the profile of userID
func (s *ProfileService) Get(ctx context.Context, userID int64) (*Profile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &Profile{User: user, HasPhoenixToken: user.HasPhoenixToken()}, nil
}

// Update validates req and stores it on the profile of userID
func (s *ProfileService) Update(ctx context.Context, userID int64, req UpdateProfileRequest) (*Profile, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	req.LastName = strings.TrimSpace(req.LastName)

	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field())
			}
			return nil, &ValidationError{Fields: fields}
		}
		return nil, fmt.Errorf("failed to validate profile: %w", err)
	}

	profile, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	user := profile.User
	user.Email = req.Email
	user.Name = req.Name
	user.LastName = req.LastName
	user.Bio = req.Bio
	user.Age = req.Age

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return profile, nil
}
