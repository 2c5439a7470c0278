package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"photo-gallery-backend/internal/filter"
	"photo-gallery-backend/internal/models"
	"photo-gallery-backend/internal/phoenix"
	"photo-gallery-backend/internal/repository"
)

type likeKey struct {
	userID  int64
	photoID int64
}

type memState struct {
	users  map[int64]models.User
	tokens map[string]models.AuthToken
	photos map[int64]models.Photo
	likes  map[likeKey]models.Like
	nextID int64
}

func (s memState) clone() memState {
	c := memState{
		users:  make(map[int64]models.User, len(s.users)),
		tokens: make(map[string]models.AuthToken, len(s.tokens)),
		photos: make(map[int64]models.Photo, len(s.photos)),
		likes:  make(map[likeKey]models.Like, len(s.likes)),
		nextID: s.nextID,
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.tokens {
		c.tokens[k] = v
	}
	for k, v := range s.photos {
		c.photos[k] = v
	}
	for k, v := range s.likes {
		c.likes[k] = v
	}
	return c
}

// memDB is an in-memory stand-in for the Postgres repositories. WithinTx
// serializes transactions and restores a snapshot when fn fails.
type memDB struct {
	txMu sync.Mutex
	mu   sync.Mutex
	st   memState

	createPhotoErr error
	createPhotoHit int
}

func newMemDB() *memDB {
	return &memDB{st: memState{
		users:  map[int64]models.User{},
		tokens: map[string]models.AuthToken{},
		photos: map[int64]models.Photo{},
		likes:  map[likeKey]models.Like{},
	}}
}

func (db *memDB) id() int64 {
	db.st.nextID++
	return db.st.nextID
}

func (db *memDB) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	db.txMu.Lock()
	defer db.txMu.Unlock()

	db.mu.Lock()
	snapshot := db.st.clone()
	db.mu.Unlock()

	if err := fn(ctx); err != nil {
		db.mu.Lock()
		db.st = snapshot
		db.mu.Unlock()
		return err
	}
	return nil
}

func (db *memDB) addUser(username string) *models.User {
	db.mu.Lock()
	defer db.mu.Unlock()
	u := models.User{ID: db.id(), Username: username, Email: username + "@example.com", Name: "Test", LastName: "User"}
	db.st.users[u.ID] = u
	return &u
}

func (db *memDB) addPhoto(p models.Photo) *models.Photo {
	db.mu.Lock()
	defer db.mu.Unlock()
	p.ID = db.id()
	db.st.photos[p.ID] = p
	return &p
}

func (db *memDB) photoCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.st.photos)
}

func (db *memDB) photo(id int64) models.Photo {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.st.photos[id]
}

func (db *memDB) user(id int64) models.User {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.st.users[id]
}

func (db *memDB) likeCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.st.likes)
}

func notFoundErr(what string) error {
	return fmt.Errorf("%s not found: %w", what, repository.ErrNotFound)
}

type memUsers struct{ db *memDB }

func (r memUsers) Upsert(ctx context.Context, user *models.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for id, u := range r.db.st.users {
		if u.Username == user.Username {
			u.Email, u.Name, u.LastName = user.Email, user.Name, user.LastName
			r.db.st.users[id] = u
			user.ID = id
			return nil
		}
	}
	user.ID = r.db.id()
	r.db.st.users[user.ID] = *user
	return nil
}

func (r memUsers) GetByID(ctx context.Context, id int64) (*models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.st.users[id]
	if !ok {
		return nil, notFoundErr("user")
	}
	return &u, nil
}

func (r memUsers) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.st.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, notFoundErr("user")
}

func (r memUsers) UpdateProfile(ctx context.Context, user *models.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.st.users[user.ID]
	if !ok {
		return notFoundErr("user")
	}
	u.Email, u.Name, u.LastName, u.Bio, u.Age = user.Email, user.Name, user.LastName, user.Bio, user.Age
	r.db.st.users[user.ID] = u
	return nil
}

func (r memUsers) UpdatePhoenixToken(ctx context.Context, userID int64, token string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.st.users[userID]
	if !ok {
		return notFoundErr("user")
	}
	u.PhoenixAccessToken = &token
	r.db.st.users[userID] = u
	return nil
}

type memTokens struct{ db *memDB }

func (r memTokens) Create(ctx context.Context, token *models.AuthToken) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, exists := r.db.st.tokens[token.Token]; exists {
		return nil
	}
	token.ID = r.db.id()
	r.db.st.tokens[token.Token] = *token
	return nil
}

func (r memTokens) GetByToken(ctx context.Context, token string) (*models.AuthToken, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t, ok := r.db.st.tokens[token]
	if !ok {
		return nil, notFoundErr("auth token")
	}
	return &t, nil
}

type memPhotos struct{ db *memDB }

func (r memPhotos) Create(ctx context.Context, photo *models.Photo) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.createPhotoHit++
	if r.db.createPhotoErr != nil {
		return false, r.db.createPhotoErr
	}
	for _, p := range r.db.st.photos {
		if p.UserID == photo.UserID && p.ImageURL == photo.ImageURL {
			return false, nil
		}
	}
	photo.ID = r.db.id()
	r.db.st.photos[photo.ID] = *photo
	return true, nil
}

func (r memPhotos) GetByID(ctx context.Context, id int64) (*models.Photo, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.st.photos[id]
	if !ok {
		return nil, notFoundErr("photo")
	}
	return &p, nil
}

func (r memPhotos) LockByID(ctx context.Context, id int64) (*models.Photo, error) {
	return r.GetByID(ctx, id)
}

func (r memPhotos) ExistsForUser(ctx context.Context, userID int64, imageURL string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, p := range r.db.st.photos {
		if p.UserID == userID && p.ImageURL == imageURL {
			return true, nil
		}
	}
	return false, nil
}

func (r memPhotos) AdjustLikeCounter(ctx context.Context, photoID int64, delta int) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.st.photos[photoID]
	if !ok {
		return 0, notFoundErr("photo")
	}
	p.LikeCounter = max(p.LikeCounter+delta, 0)
	r.db.st.photos[photoID] = p
	return p.LikeCounter, nil
}

func containsFold(value *string, sub string) bool {
	return value != nil && strings.Contains(strings.ToLower(*value), strings.ToLower(sub))
}

func (r memPhotos) List(ctx context.Context, c filter.Criteria) ([]*models.Photo, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	photos := []*models.Photo{}
	for _, p := range r.db.st.photos {
		owner := r.db.st.users[p.UserID]
		switch {
		case c.Location != "" && !containsFold(p.Location, c.Location),
			c.Camera != "" && !containsFold(p.Camera, c.Camera),
			c.Description != "" && !containsFold(p.Description, c.Description),
			c.Username != "" && !containsFold(&owner.Username, c.Username),
			c.TakenAtFrom != nil && (p.TakenAt == nil || p.TakenAt.Before(*c.TakenAtFrom)),
			c.TakenAtTo != nil && (p.TakenAt == nil || p.TakenAt.After(*c.TakenAtTo)):
			continue
		}
		p.User = &owner
		photos = append(photos, &p)
	}
	sort.Slice(photos, func(i, j int) bool { return photos[i].ID < photos[j].ID })
	return photos, nil
}

type memLikes struct{ db *memDB }

func (r memLikes) Create(ctx context.Context, like *models.Like) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	key := likeKey{like.UserID, like.PhotoID}
	if _, exists := r.db.st.likes[key]; exists {
		return false, nil
	}
	like.ID = r.db.id()
	r.db.st.likes[key] = *like
	return true, nil
}

func (r memLikes) Delete(ctx context.Context, userID, photoID int64) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	key := likeKey{userID, photoID}
	if _, exists := r.db.st.likes[key]; !exists {
		return false, nil
	}
	delete(r.db.st.likes, key)
	return true, nil
}

func (r memLikes) Exists(ctx context.Context, userID, photoID int64) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	_, exists := r.db.st.likes[likeKey{userID, photoID}]
	return exists, nil
}

func (r memLikes) LikedPhotoIDs(ctx context.Context, userID int64, photoIDs []int64) (map[int64]bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	liked := map[int64]bool{}
	for _, id := range photoIDs {
		if _, exists := r.db.st.likes[likeKey{userID, id}]; exists {
			liked[id] = true
		}
	}
	return liked, nil
}

func (r memLikes) ListByPhoto(ctx context.Context, photoID int64) ([]*models.Like, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	likes := []*models.Like{}
	for _, l := range r.db.st.likes {
		if l.PhotoID == photoID {
			likes = append(likes, &l)
		}
	}
	sort.Slice(likes, func(i, j int) bool { return likes[i].ID < likes[j].ID })
	return likes, nil
}

type fakeFetcher struct {
	result phoenix.Result
	panic  bool
	calls  int
	tokens []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, token string) phoenix.Result {
	f.calls++
	f.tokens = append(f.tokens, token)
	if f.panic {
		panic("fetcher exploded")
	}
	return f.result
}

func photosResult(urls ...string) phoenix.Result {
	photos := make([]phoenix.Photo, len(urls))
	for i, u := range urls {
		photos[i] = phoenix.Photo{ID: []byte(fmt.Sprint(i + 1)), PhotoURL: u}
	}
	message := "No photos found"
	if len(urls) > 0 {
		message = fmt.Sprintf("%d photos imported successfully", len(urls))
	}
	return phoenix.Result{Photos: photos, Message: message}
}

func failedResult(kind phoenix.Kind, status int) phoenix.Result {
	return phoenix.Result{Err: &phoenix.Error{Kind: kind, StatusCode: status}}
}

type recordingNotifier struct {
	mu     sync.Mutex
	events [][2]int64
}

func (n *recordingNotifier) NotifyLikeChanged(photoID int64, likeCounter int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, [2]int64{photoID, int64(likeCounter)})
}

var errBoom = errors.New("boom")
