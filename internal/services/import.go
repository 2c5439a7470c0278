package services

import (
	"context"
	"fmt"

	"photo-gallery-backend/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

const (
	maxImageURLLength      = 2048
	unexpectedErrorMessage = "An unexpected error occurred"
)

// ImportFailure tells callers which stage of an import failed
type ImportFailure int

const (
	FailureNone ImportFailure = iota
	FailureValidation
	FailureRemote
	FailurePersistence
	FailureUnexpected
)

// ImportResult is the outcome of ImportPhotos
type ImportResult struct {
	Success  bool          `json:"success"`
	Message  string        `json:"message,omitempty"`
	Error    string        `json:"error,omitempty"`
	Errors   []string      `json:"errors,omitempty"`
	Imported int           `json:"imported"`
	Skipped  int           `json:"skipped"`
	Failure  ImportFailure `json:"-"`
}

// ImportService pulls photos from Phoenix into a user's gallery
type ImportService struct {
	users    UserStore
	photos   PhotoStore
	tx       Transactor
	fetcher  PhotoFetcher
	validate *validator.Validate
}

// NewImportService creates a new import service
func NewImportService(users UserStore, photos PhotoStore, tx Transactor, fetcher PhotoFetcher) *ImportService {
	return &ImportService{
		users:    users,
		photos:   photos,
		tx:       tx,
		fetcher:  fetcher,
		validate: validator.New(),
	}
}

// ImportPhotos validates token, fetches the remote photo list and stores the
// token plus every new, valid photo URL in one transaction. The fetch happens
// before the transaction is opened. Invalid or already imported URLs are
// skipped. ImportPhotos never panics; all failures end up in the result.
func (s *ImportService) ImportPhotos(ctx context.Context, token string, userID int64) (result ImportResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Int64("user_id", userID).Msg("Photo import panicked")
			result = ImportResult{Error: unexpectedErrorMessage, Failure: FailureUnexpected}
		}
	}()

	validation := ValidateToken(token)
	if !validation.Valid {
		return ImportResult{
			Error:   validation.Errors[0],
			Errors:  validation.Errors,
			Failure: FailureValidation,
		}
	}

	fetched := s.fetcher.Fetch(ctx, token)
	if !fetched.Success() {
		log.Warn().
			Err(fetched.Err.Unwrap()).
			Int64("user_id", userID).
			Int("status", fetched.Err.StatusCode).
			Msg("Phoenix fetch failed")
		return ImportResult{Error: fetched.Err.Error(), Failure: FailureRemote}
	}

	var imported, skipped int
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		imported, skipped = 0, 0

		if err := s.users.UpdatePhoenixToken(ctx, userID, token); err != nil {
			return err
		}

		seen := make(map[string]struct{}, len(fetched.Photos))
		for _, remote := range fetched.Photos {
			imageURL := remote.PhotoURL
			if !s.importableURL(imageURL) {
				skipped++
				continue
			}
			if _, dup := seen[imageURL]; dup {
				skipped++
				continue
			}
			seen[imageURL] = struct{}{}

			exists, err := s.photos.ExistsForUser(ctx, userID, imageURL)
			if err != nil {
				return err
			}
			if exists {
				skipped++
				continue
			}

			created, err := s.photos.Create(ctx, &models.Photo{UserID: userID, ImageURL: imageURL})
			if err != nil {
				return err
			}
			if created {
				imported++
			} else {
				skipped++
			}
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("Failed to persist imported photos")
		return ImportResult{Error: "Failed to import photos: " + err.Error(), Failure: FailurePersistence}
	}

	log.Info().
		Int64("user_id", userID).
		Int("imported", imported).
		Int("skipped", skipped).
		Msg("Photos imported from Phoenix")

	message := fetched.Message
	if message == "" {
		message = fmt.Sprintf("Successfully imported %d photos", imported)
	}
	return ImportResult{Success: true, Message: message, Imported: imported, Skipped: skipped}
}

func (s *ImportService) importableURL(imageURL string) bool {
	if len(imageURL) > maxImageURLLength {
		return false
	}
	return s.validate.Var(imageURL, "required,url") == nil
}
