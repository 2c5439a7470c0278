package handlers

import (
	"context"
	"errors"
	"net/http"

	"photo-gallery-backend/internal/filter"
	"photo-gallery-backend/internal/middleware"
	"photo-gallery-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// LoginRequiredToLike is returned to anonymous users trying to like a photo
const LoginRequiredToLike = "You must be logged in to like photos"

// PhotoHandler handles gallery and like HTTP requests
type PhotoHandler struct {
	galleryService *services.GalleryService
	likeService    *services.LikeService
}

// NewPhotoHandler creates a new photo handler
func NewPhotoHandler(galleryService *services.GalleryService, likeService *services.LikeService) *PhotoHandler {
	return &PhotoHandler{
		galleryService: galleryService,
		likeService:    likeService,
	}
}

// LikeResponse is returned by the like endpoints
type LikeResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	PhotoID     int64  `json:"photo_id"`
	Liked       bool   `json:"liked"`
	LikeCounter int    `json:"like_counter"`
}

// GetPhotos handles GET /api/v1/photos
func (h *PhotoHandler) GetPhotos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	criteria := filter.NormalizeQuery(r.URL.Query())

	data, err := h.galleryService.Home(ctx, criteria, userID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("Failed to get photos")
		respondError(w, "Failed to get photos", http.StatusInternalServerError)
		return
	}

	respondJSON(w, data, http.StatusOK)
}

// ToggleLike handles POST /api/v1/photos/{photo_id}/like
func (h *PhotoHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	h.changeLike(w, r, h.likeService.Toggle)
}

// Like handles PUT /api/v1/photos/{photo_id}/like
func (h *PhotoHandler) Like(w http.ResponseWriter, r *http.Request) {
	h.changeLike(w, r, h.likeService.Like)
}

// Unlike handles DELETE /api/v1/photos/{photo_id}/like
func (h *PhotoHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	h.changeLike(w, r, h.likeService.Unlike)
}

// GetLikes handles GET /api/v1/photos/{photo_id}/likes
func (h *PhotoHandler) GetLikes(w http.ResponseWriter, r *http.Request) {
	photoID, ok := idParam(r, "photo_id")
	if !ok {
		respondError(w, "Invalid photo id", http.StatusBadRequest)
		return
	}

	likes, err := h.likeService.ListLikes(r.Context(), photoID)
	if err != nil {
		if errors.Is(err, services.ErrPhotoNotFound) {
			respondError(w, "Photo not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Int64("photo_id", photoID).Msg("Failed to list likes")
		respondError(w, "Failed to list likes", http.StatusInternalServerError)
		return
	}

	respondJSON(w, map[string]any{"photo_id": photoID, "likes": likes}, http.StatusOK)
}

type likeAction func(ctx context.Context, userID, photoID int64) (*services.LikeState, error)

func (h *PhotoHandler) changeLike(w http.ResponseWriter, r *http.Request, action likeAction) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	if userID == 0 {
		respondError(w, LoginRequiredToLike, http.StatusUnauthorized)
		return
	}

	photoID, ok := idParam(r, "photo_id")
	if !ok {
		respondError(w, "Invalid photo id", http.StatusBadRequest)
		return
	}

	state, err := action(ctx, userID, photoID)
	if err != nil {
		if errors.Is(err, services.ErrPhotoNotFound) {
			respondError(w, "Photo not found", http.StatusNotFound)
			return
		}
		log.Error().
			Err(err).
			Int64("user_id", userID).
			Int64("photo_id", photoID).
			Msg("Failed to change like")
		respondError(w, "Failed to update like", http.StatusInternalServerError)
		return
	}

	message := "Photo unliked!"
	if state.Liked {
		message = "Photo liked!"
	}

	respondJSON(w, LikeResponse{
		Success:     true,
		Message:     message,
		PhotoID:     state.PhotoID,
		Liked:       state.Liked,
		LikeCounter: state.LikeCounter,
	}, http.StatusOK)
}
