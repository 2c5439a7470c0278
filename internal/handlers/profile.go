package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"photo-gallery-backend/internal/middleware"
	"photo-gallery-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// ProfileHandler handles the current user's profile and Phoenix import
type ProfileHandler struct {
	profileService *services.ProfileService
	importService  *services.ImportService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService *services.ProfileService, importService *services.ImportService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		importService:  importService,
	}
}

// ImportRequest represents the request body for a Phoenix import
type ImportRequest struct {
	PhoenixAccessToken string `json:"phoenix_access_token"`
}

// GetProfile handles GET /api/v1/profile
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	profile, err := h.profileService.Get(ctx, userID)
	if err != nil {
		h.respondProfileError(w, err, userID)
		return
	}

	respondJSON(w, profile, http.StatusOK)
}

// UpdateProfile handles PUT /api/v1/profile
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req services.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	profile, err := h.profileService.Update(ctx, userID, req)
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			respondJSON(w, ErrorResponse{Error: "Invalid profile data", Errors: verr.Fields}, http.StatusUnprocessableEntity)
			return
		}
		h.respondProfileError(w, err, userID)
		return
	}

	log.Info().Int64("user_id", userID).Msg("Profile updated")

	respondJSON(w, profile, http.StatusOK)
}

// ImportPhotos handles POST /api/v1/profile/phoenix-import
func (h *ProfileHandler) ImportPhotos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result := h.importService.ImportPhotos(ctx, req.PhoenixAccessToken, userID)

	statusCode := http.StatusOK
	switch result.Failure {
	case services.FailureValidation:
		statusCode = http.StatusUnprocessableEntity
	case services.FailureRemote:
		statusCode = http.StatusBadGateway
	case services.FailurePersistence, services.FailureUnexpected:
		statusCode = http.StatusInternalServerError
	}

	respondJSON(w, result, statusCode)
}

func (h *ProfileHandler) respondProfileError(w http.ResponseWriter, err error, userID int64) {
	if errors.Is(err, services.ErrUserNotFound) {
		respondError(w, "User not found", http.StatusNotFound)
		return
	}
	log.Error().Err(err).Int64("user_id", userID).Msg("Failed to handle profile")
	respondError(w, "Failed to handle profile", http.StatusInternalServerError)
}
