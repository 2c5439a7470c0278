// Package phoenix fetches a user's photos from the external Phoenix API and
// classifies every outcome into a Result.
package phoenix

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	photosPath       = "/api/photos"
	tokenHeader      = "access-token"
	defaultUserAgent = "photo-gallery-backend/1.0"
	// DefaultTimeout bounds a single fetch including reading the body.
	DefaultTimeout = 60 * time.Second
)

// Kind classifies a failed fetch.
type Kind int

const (
	KindTransport Kind = iota + 1
	KindUnauthorized
	KindRateLimited
	KindServer
	KindUnexpectedStatus
	KindInvalidFormat
	KindUnexpected
)

// Message returns the user-facing text for the kind.
func (k Kind) Message() string {
	switch k {
	case KindTransport:
		return "Failed to connect to Phoenix API"
	case KindUnauthorized:
		return "Invalid or expired token"
	case KindRateLimited:
		return "Rate limit exceeded"
	case KindServer:
		return "Server error occurred"
	case KindUnexpectedStatus:
		return "Unexpected response from server"
	case KindInvalidFormat:
		return "Invalid response format"
	default:
		return "An unexpected error occurred"
	}
}

// Error describes a failed fetch. StatusCode is zero when no response was
// received.
type Error struct {
	Kind       Kind
	StatusCode int
	cause      error
}

func (e *Error) Error() string {
	return e.Kind.Message()
}

// Unwrap exposes the underlying cause for logging.
func (e *Error) Unwrap() error {
	return e.cause
}

// Photo is a single entry of the remote photo list.
type Photo struct {
	ID       json.RawMessage `json:"id"`
	PhotoURL string          `json:"photo_url"`
}

// Result is the outcome of Fetch. Exactly one of Err or the success fields
// is meaningful.
type Result struct {
	Photos  []Photo
	Message string
	Err     *Error
}

// Success reports whether the fetch succeeded.
func (r Result) Success() bool {
	return r.Err == nil
}

func failure(kind Kind, status int, cause error) Result {
	return Result{Photos: []Photo{}, Err: &Error{Kind: kind, StatusCode: status, cause: cause}}
}

// decodePhoto reads one record of the photo list. A record that is not an
// object, or whose photo_url is not a string, yields an empty PhotoURL so the
// importer skips it instead of losing the whole batch.
func decodePhoto(record json.RawMessage) Photo {
	var fields struct {
		ID       json.RawMessage `json:"id"`
		PhotoURL json.RawMessage `json:"photo_url"`
	}
	if err := json.Unmarshal(record, &fields); err != nil {
		return Photo{}
	}

	var photoURL string
	if err := json.Unmarshal(fields.PhotoURL, &photoURL); err != nil {
		photoURL = ""
	}
	return Photo{ID: fields.ID, PhotoURL: photoURL}
}

// Client talks to the Phoenix HTTP API.
type Client struct {
	baseURL   string
	http      *http.Client
	userAgent string
}

// NewClient builds a Client for baseURL. A non-positive timeout falls back to
// DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:   strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:      &http.Client{Timeout: timeout},
		userAgent: defaultUserAgent,
	}
}

// Fetch retrieves the photo list for token. It never returns an error or
// panics; every failure is reported through Result.Err.
func (c *Client) Fetch(ctx context.Context, token string) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Phoenix fetch panicked")
			result = failure(KindUnexpected, 0, fmt.Errorf("panic: %v", r))
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+photosPath, nil)
	if err != nil {
		return failure(KindUnexpected, 0, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set(tokenHeader, token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("url", c.baseURL).Msg("Phoenix API unreachable")
		return failure(KindTransport, 0, fmt.Errorf("execute request: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	if kind, ok := classifyStatus(resp.StatusCode); !ok {
		log.Warn().Int("status", resp.StatusCode).Msg("Phoenix API returned an error status")
		return failure(kind, resp.StatusCode, fmt.Errorf("status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return failure(KindTransport, resp.StatusCode, fmt.Errorf("read body: %w", err))
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		if json.Valid(body) {
			return failure(KindInvalidFormat, resp.StatusCode, fmt.Errorf("response is not an object: %w", err))
		}
		return failure(KindUnexpected, resp.StatusCode, fmt.Errorf("decode response: %w", err))
	}

	rawPhotos, ok := envelope["photos"]
	if !ok || bytes.Equal(bytes.TrimSpace(rawPhotos), []byte("null")) {
		return failure(KindInvalidFormat, resp.StatusCode, nil)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(rawPhotos, &records); err != nil {
		return failure(KindInvalidFormat, resp.StatusCode, fmt.Errorf("photos is not a list: %w", err))
	}

	photos := make([]Photo, 0, len(records))
	for _, record := range records {
		photos = append(photos, decodePhoto(record))
	}
	if len(photos) == 0 {
		return Result{Photos: []Photo{}, Message: "No photos found"}
	}
	return Result{
		Photos:  photos,
		Message: fmt.Sprintf("%d photos imported successfully", len(photos)),
	}
}

// classifyStatus returns ok for 200 and the failure kind for anything else.
func classifyStatus(status int) (Kind, bool) {
	switch {
	case status == http.StatusOK:
		return 0, true
	case status == http.StatusUnauthorized:
		return KindUnauthorized, false
	case status == http.StatusTooManyRequests:
		return KindRateLimited, false
	case status >= http.StatusInternalServerError:
		return KindServer, false
	default:
		return KindUnexpectedStatus, false
	}
}
