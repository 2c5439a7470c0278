package services

import (
	"context"
	"testing"
	"time"

	"photo-gallery-backend/internal/filter"
	"photo-gallery-backend/internal/models"
)

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func newGalleryFixture() (*memDB, *GalleryService) {
	db := newMemDB()
	return db, NewGalleryService(memPhotos{db}, memUsers{db}, memLikes{db})
}

func photoIDs(photos []*models.Photo) []int64 {
	ids := make([]int64, len(photos))
	for i, p := range photos {
		ids[i] = p.ID
	}
	return ids
}

func TestGalleryService_LocationFilter(t *testing.T) {
	db, svc := newGalleryFixture()
	owner := db.addUser("alice")
	paris := db.addPhoto(models.Photo{UserID: owner.ID, ImageURL: "https://example.com/1.jpg", Location: strPtr("Paris")})
	db.addPhoto(models.Photo{UserID: owner.ID, ImageURL: "https://example.com/2.jpg", Location: strPtr("London")})

	photos, err := svc.ListPhotos(context.Background(), filter.Normalize(map[string]string{"location": "Paris"}))
	if err != nil {
		t.Fatalf("ListPhotos() error = %v", err)
	}
	if len(photos) != 1 || photos[0].ID != paris.ID {
		t.Errorf("photos = %v, want [%d]", photoIDs(photos), paris.ID)
	}
	if photos[0].User == nil || photos[0].User.Username != "alice" {
		t.Errorf("owner not loaded: %+v", photos[0].User)
	}
}

func TestGalleryService_TakenAtToIncludesWholeDay(t *testing.T) {
	db, svc := newGalleryFixture()
	owner := db.addUser("alice")
	lastSecond := db.addPhoto(models.Photo{
		UserID:   owner.ID,
		ImageURL: "https://example.com/1.jpg",
		TakenAt:  timePtr(time.Date(2023, 1, 31, 23, 59, 59, 0, time.UTC)),
	})
	db.addPhoto(models.Photo{
		UserID:   owner.ID,
		ImageURL: "https://example.com/2.jpg",
		TakenAt:  timePtr(time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)),
	})

	photos, err := svc.ListPhotos(context.Background(), filter.Normalize(map[string]string{"taken_at_to": "2023-01-31"}))
	if err != nil {
		t.Fatalf("ListPhotos() error = %v", err)
	}
	if len(photos) != 1 || photos[0].ID != lastSecond.ID {
		t.Errorf("photos = %v, want [%d]", photoIDs(photos), lastSecond.ID)
	}
}

func TestGalleryService_HomeAnonymous(t *testing.T) {
	db, svc := newGalleryFixture()
	owner := db.addUser("alice")
	db.addPhoto(models.Photo{UserID: owner.ID, ImageURL: "https://example.com/1.jpg"})
	db.addPhoto(models.Photo{UserID: owner.ID, ImageURL: "https://example.com/2.jpg"})

	data, err := svc.Home(context.Background(), filter.Criteria{}, 0)
	if err != nil {
		t.Fatalf("Home() error = %v", err)
	}
	if len(data.Photos) != 2 {
		t.Errorf("photos = %d, want 2", len(data.Photos))
	}
	if data.Photos[0].ID > data.Photos[1].ID {
		t.Error("photos not ordered by id")
	}
	if data.CurrentUser != nil {
		t.Errorf("CurrentUser = %+v, want nil", data.CurrentUser)
	}
	if len(data.UserLikes) != 0 {
		t.Errorf("UserLikes = %v, want empty", data.UserLikes)
	}
	if data.HasActiveFilters || len(data.FilterSummary) != 0 {
		t.Errorf("filters reported active: %+v", data)
	}
}

func TestGalleryService_HomeWithUser(t *testing.T) {
	db, svc := newGalleryFixture()
	ctx := context.Background()
	owner := db.addUser("alice")
	viewer := db.addUser("bob")
	liked := db.addPhoto(models.Photo{UserID: owner.ID, ImageURL: "https://example.com/1.jpg", Camera: strPtr("Canon")})
	other := db.addPhoto(models.Photo{UserID: owner.ID, ImageURL: "https://example.com/2.jpg", Camera: strPtr("canon eos")})

	memLikes{db}.Create(ctx, &models.Like{UserID: viewer.ID, PhotoID: liked.ID})

	criteria := filter.Normalize(map[string]string{"camera": "CANON"})
	data, err := svc.Home(ctx, criteria, viewer.ID)
	if err != nil {
		t.Fatalf("Home() error = %v", err)
	}
	if data.CurrentUser == nil || data.CurrentUser.ID != viewer.ID {
		t.Errorf("CurrentUser = %+v", data.CurrentUser)
	}
	if len(data.Photos) != 2 {
		t.Errorf("photos = %v, want both", photoIDs(data.Photos))
	}
	if !data.UserLikes[liked.ID] || data.UserLikes[other.ID] {
		t.Errorf("UserLikes = %v", data.UserLikes)
	}
	if _, ok := data.UserLikes[other.ID]; !ok {
		t.Error("UserLikes missing entry for unliked photo")
	}
	if !data.HasActiveFilters {
		t.Error("HasActiveFilters = false")
	}
	if len(data.FilterSummary) != 1 || data.FilterSummary[0] != "Camera: CANON" {
		t.Errorf("FilterSummary = %v", data.FilterSummary)
	}
}

func TestGalleryService_HomeDeletedSessionUser(t *testing.T) {
	_, svc := newGalleryFixture()

	data, err := svc.Home(context.Background(), filter.Criteria{}, 404)
	if err != nil {
		t.Fatalf("Home() error = %v", err)
	}
	if data.CurrentUser != nil {
		t.Errorf("CurrentUser = %+v, want nil", data.CurrentUser)
	}
}
