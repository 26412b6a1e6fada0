// Package api talks to the fitness backend over HTTP JSON.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/alexjbarnes/fitsync/internal/errors"
	"github.com/alexjbarnes/fitsync/internal/models"
	"github.com/tidwall/gjson"
)

// TransientError wraps an error that is likely temporary and safe to retry.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// IsTransient reports whether err (or any error in its chain) is a
// TransientError, meaning the caller should retry on the next sync run.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

const (
	// maxRedirects is the maximum number of HTTP redirects to follow
	// before giving up, matching the default net/http limit.
	maxRedirects = 10

	// httpClientTimeout is the timeout for the default HTTP client used
	// when no custom client is provided.
	httpClientTimeout = 30 * time.Second

	// maxAPIResponseBytes caps response body reads to prevent a
	// misbehaving server from consuming unbounded memory.
	maxAPIResponseBytes = 1024 * 1024
)

// Client talks to the fitness backend REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// sameHostRedirectPolicy follows redirects only when the target host
// matches the original request host. This prevents the session token
// from leaking to third-party domains.
func sameHostRedirectPolicy(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return errors.New("stopped after 10 redirects")
	}

	if len(via) > 0 {
		origHost := via[0].URL.Host
		if req.URL.Host != origHost {
			return fmt.Errorf("redirect to different host blocked: %s -> %s", origHost, req.URL.Host)
		}
	}

	return nil
}

// NewClient creates an API client for the given base URL and session
// token. If httpClient is nil, a client with a 30-second timeout and
// same-host redirect policy is created.
func NewClient(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:       httpClientTimeout,
			CheckRedirect: sameHostRedirectPolicy,
		}
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
	}
}

// sanitizeResponseBody truncates and sanitizes a response body for
// inclusion in error messages. Limits to 256 bytes and replaces
// non-printable characters to prevent log injection.
func sanitizeResponseBody(body []byte) string {
	const maxLen = 256
	if len(body) > maxLen {
		body = body[:maxLen]
	}

	var clean []byte

	for len(body) > 0 {
		r, size := utf8.DecodeRune(body)
		if r == utf8.RuneError && size <= 1 {
			clean = append(clean, '?')
			body = body[1:]

			continue
		}

		if r < 0x20 && r != '\n' && r != '\r' && r != '\t' {
			clean = append(clean, '?')
		} else {
			clean = append(clean, body[:size]...)
		}

		body = body[size:]
	}

	return string(clean)
}

// post sends a JSON POST request and decodes the response into result.
func (c *Client) post(ctx context.Context, endpoint string, body, result interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshalling request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		wrapped := fmt.Errorf("sending request to %s: %w", endpoint, err)
		// Network errors (timeouts, connection refused, DNS failures)
		// are transient by nature.
		return &TransientError{Err: wrapped}
	}
	defer resp.Body.Close()

	// Cap response reads at 1MB. API responses are small JSON payloads.
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxAPIResponseBytes))
	if err != nil {
		return fmt.Errorf("reading response from %s: %w", endpoint, err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("API %s (%d): %w", endpoint, resp.StatusCode, apperrors.ErrUnauthorized)
	}

	// All record endpoints are owner-scoped; the backend answers 404
	// when the owner id does not exist.
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("API %s (%d): %w", endpoint, resp.StatusCode, apperrors.ErrUnknownOwner)
	}

	if resp.StatusCode != http.StatusOK {
		if msg := gjson.GetBytes(respBody, "error").String(); msg != "" {
			err := fmt.Errorf("%w: %s (%d): %s", apperrors.ErrAPIRequest, endpoint, resp.StatusCode, msg)
			if isTransientStatus(resp.StatusCode) || isTransientMessage(msg) {
				return &TransientError{Err: err}
			}

			return err
		}

		err := fmt.Errorf("%w: %s returned status %d: %s", apperrors.ErrAPIRequest, endpoint, resp.StatusCode, sanitizeResponseBody(respBody))
		if isTransientStatus(resp.StatusCode) {
			return &TransientError{Err: err}
		}

		return err
	}

	// The backend also reports errors as 200 with an "error" field.
	if msg := gjson.GetBytes(respBody, "error").String(); msg != "" {
		err := fmt.Errorf("%w: %s: %s", apperrors.ErrAPIRequest, endpoint, msg)
		if isTransientMessage(msg) {
			return &TransientError{Err: err}
		}

		return err
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("%w: decoding %s: %w", apperrors.ErrAPIResponse, endpoint, err)
		}
	}

	return nil
}

// isTransientStatus returns true for HTTP status codes that indicate a
// temporary server-side problem worth retrying.
func isTransientStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}

	return false
}

// isTransientMessage checks whether an API error message suggests a
// temporary condition worth retrying on the next run.
func isTransientMessage(msg string) bool {
	lower := strings.ToLower(msg)

	return strings.Contains(lower, "overloaded") ||
		strings.Contains(lower, "try again") ||
		strings.Contains(lower, "temporarily unavailable")
}

// ListActivities returns all activity records on the server for an owner.
func (c *Client) ListActivities(ctx context.Context, ownerID string) ([]RemoteActivity, error) {
	req := activityListRequest{Token: c.token, OwnerID: ownerID}

	var resp activityListResponse
	if err := c.post(ctx, "/activity/list", req, &resp); err != nil {
		return nil, fmt.Errorf("listing activities: %w", err)
	}

	return resp.Records, nil
}

// UpsertActivityResult is the outcome of an activity upsert. Record
// carries the server's canonical timestamps; Created reports whether
// the server inserted a new record.
type UpsertActivityResult struct {
	Record  RemoteActivity
	Created bool
}

// UpsertActivity creates or replaces the activity for (owner, day) on
// the server and returns the canonical stored record.
func (c *Client) UpsertActivity(ctx context.Context, ownerID string, snap models.ActivitySnapshot) (UpsertActivityResult, error) {
	req := activityUpsertRequest{
		Token:   c.token,
		OwnerID: ownerID,
		Record:  FromSnapshot(snap),
	}

	var resp upsertActivityResponse
	if err := c.post(ctx, "/activity/upsert", req, &resp); err != nil {
		return UpsertActivityResult{}, fmt.Errorf("upserting activity day %d: %w", snap.Day, err)
	}

	if err := resp.Record.Validate(); err != nil {
		return UpsertActivityResult{}, fmt.Errorf("%w: %w", apperrors.ErrAPIResponse, err)
	}

	return UpsertActivityResult{Record: resp.Record, Created: resp.Created}, nil
}

// DeleteActivity removes the activity for (owner, day) from the server.
// Deleting a day that does not exist remotely is not an error.
func (c *Client) DeleteActivity(ctx context.Context, ownerID string, day int) error {
	req := activityDeleteRequest{Token: c.token, OwnerID: ownerID, Day: day}

	if err := c.post(ctx, "/activity/delete", req, nil); err != nil {
		return fmt.Errorf("deleting activity day %d: %w", day, err)
	}

	return nil
}

// UploadActivityPhoto attaches photo data to the activity for
// (owner, day). Photos travel outside the record wire shape so list
// responses stay small.
func (c *Client) UploadActivityPhoto(ctx context.Context, ownerID string, day int, photo []byte) error {
	req := photoUpsertRequest{Token: c.token, OwnerID: ownerID, Day: day, Photo: photo}

	if err := c.post(ctx, "/activity/photo/upsert", req, nil); err != nil {
		return fmt.Errorf("uploading photo for day %d: %w", day, err)
	}

	return nil
}

// DeleteActivityPhoto removes the photo for (owner, day) on the server.
func (c *Client) DeleteActivityPhoto(ctx context.Context, ownerID string, day int) error {
	req := photoDeleteRequest{Token: c.token, OwnerID: ownerID, Day: day}

	if err := c.post(ctx, "/activity/photo/delete", req, nil); err != nil {
		return fmt.Errorf("deleting photo for day %d: %w", day, err)
	}

	return nil
}

// ListExercises returns all custom exercises on the server for an owner.
func (c *Client) ListExercises(ctx context.Context, ownerID string) ([]RemoteExercise, error) {
	req := exerciseListRequest{Token: c.token, OwnerID: ownerID}

	var resp exerciseListResponse
	if err := c.post(ctx, "/exercise/list", req, &resp); err != nil {
		return nil, fmt.Errorf("listing exercises: %w", err)
	}

	return resp.Records, nil
}

// UpsertExerciseResult is the outcome of an exercise upsert.
type UpsertExerciseResult struct {
	Record  RemoteExercise
	Created bool
}

// UpsertExercise creates or replaces the exercise on the server and
// returns the canonical stored record.
func (c *Client) UpsertExercise(ctx context.Context, ownerID string, snap models.ExerciseSnapshot) (UpsertExerciseResult, error) {
	req := exerciseUpsertRequest{
		Token:   c.token,
		OwnerID: ownerID,
		Record:  FromExerciseSnapshot(snap),
	}

	var resp upsertExerciseResponse
	if err := c.post(ctx, "/exercise/upsert", req, &resp); err != nil {
		return UpsertExerciseResult{}, fmt.Errorf("upserting exercise %s: %w", snap.ID, err)
	}

	if err := resp.Record.Validate(); err != nil {
		return UpsertExerciseResult{}, fmt.Errorf("%w: %w", apperrors.ErrAPIResponse, err)
	}

	return UpsertExerciseResult{Record: resp.Record, Created: resp.Created}, nil
}

// DeleteExercise removes the exercise from the server.
func (c *Client) DeleteExercise(ctx context.Context, ownerID string, id string) error {
	req := exerciseDeleteRequest{Token: c.token, OwnerID: ownerID, ID: id}

	if err := c.post(ctx, "/exercise/delete", req, nil); err != nil {
		return fmt.Errorf("deleting exercise %s: %w", id, err)
	}

	return nil
}

// ListCountries returns the full reference list of countries.
func (c *Client) ListCountries(ctx context.Context) ([]models.Country, error) {
	req := countryListRequest{Token: c.token}

	var resp countryListResponse
	if err := c.post(ctx, "/refdata/countries", req, &resp); err != nil {
		return nil, fmt.Errorf("listing countries: %w", err)
	}

	return resp.Countries, nil
}
