// Package backend is the HTTP client for the watch-tracking API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"github.com/mmcdole/watchlog/internal/domain"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout    = 15 * time.Second
	defaultRetries    = 3
	baseRetryDelay    = 500 * time.Millisecond
	defaultRatePerSec = 10
)

// Options configure a Client. Zero values pick defaults.
type Options struct {
	Timeout           time.Duration
	Retries           int     // extra attempts for idempotent reads
	RequestsPerSecond float64 // <= 0 uses the default
	HTTPClient        *http.Client
	Logger            *slog.Logger
}

// Client implements domain.Backend over JSON/HTTP
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	retries    uint
	retryDelay time.Duration
	logger     *slog.Logger
}

var _ domain.Backend = (*Client)(nil)

// NewClient creates a new API client for baseURL (e.g. http://localhost:8080)
func NewClient(baseURL string, opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	retries := opts.Retries
	if retries < 0 {
		retries = 0
	} else if retries == 0 {
		retries = defaultRetries
	}
	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRatePerSec
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(rps), max(1, int(rps))),
		retries:    uint(retries),
		retryDelay: baseRetryDelay,
		logger:     logger,
	}
}

// errorBody is the error envelope returned by the API
type errorBody struct {
	Error string `json:"error"`
}

// doRequest performs one API call and returns the response body.
// GET requests retry 5xx responses with exponential backoff; other methods
// are attempted once. Transport failures map to domain.ErrServerOffline.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reqBody []byte
	if payload != nil {
		var err error
		reqBody, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
	}

	attempts := uint(1)
	if method == http.MethodGet {
		attempts += c.retries
	}

	return retry.DoWithData(
		func() ([]byte, error) {
			return c.attempt(ctx, method, reqURL, reqBody)
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetryable),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Warn("backend server error, will retry", "attempt", n+1, "max", attempts, "path", path, "error", err)
		}),
	)
}

func (c *Client) attempt(ctx context.Context, method, reqURL string, body []byte) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("backend request", "method", method, "url", reqURL, "request_id", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Error("backend request failed", "request_id", requestID, "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrServerOffline, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		srvErr := &domain.ServerError{Status: resp.StatusCode, Message: errorMessage(respBody)}
		c.logger.Debug("backend error response", "status", resp.StatusCode, "request_id", requestID, "message", srvErr.Message)
		return nil, srvErr
	}

	return respBody, nil
}

func isRetryable(err error) bool {
	var srvErr *domain.ServerError
	return errors.As(err, &srvErr) && srvErr.Status >= 500
}

// errorMessage extracts the API error message, falling back to the raw body
func errorMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Error != "" {
		return eb.Error
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}

// getJSON decodes a GET response into out
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	body, err := c.doRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// sendJSON performs a mutating call and decodes the response when out is non-nil
func (c *Client) sendJSON(ctx context.Context, method, path string, payload, out any) error {
	body, err := c.doRequest(ctx, method, path, nil, payload)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func entryPath(id domain.EntryID) string {
	return "/api/library/" + strconv.FormatInt(int64(id), 10)
}

// Health returns the backend's self-reported status
func (c *Client) Health(ctx context.Context) (domain.Health, error) {
	var resp healthDTO
	if err := c.getJSON(ctx, "/api/health", nil, &resp); err != nil {
		return domain.Health{}, err
	}
	return domain.Health{Status: resp.Status, Version: resp.Version}, nil
}

// FetchLibrary returns every entry
func (c *Client) FetchLibrary(ctx context.Context) ([]domain.LibraryEntry, error) {
	var resp []entryDTO
	if err := c.getJSON(ctx, "/api/library", nil, &resp); err != nil {
		return nil, err
	}
	return mapEntries(resp), nil
}

// FetchEntryDetail returns the detail payload for one entry
func (c *Client) FetchEntryDetail(ctx context.Context, id domain.EntryID) (domain.EntryDetail, error) {
	var resp detailDTO
	if err := c.getJSON(ctx, entryPath(id), nil, &resp); err != nil {
		return domain.EntryDetail{}, notFound(err)
	}
	return mapDetail(id, resp), nil
}

// AddEntry creates an entry from a search selection
func (c *Client) AddEntry(ctx context.Context, entry domain.NewEntry) (domain.LibraryEntry, error) {
	var resp entryDTO
	if err := c.sendJSON(ctx, http.MethodPost, "/api/library", toNewEntryDTO(entry), &resp); err != nil {
		return domain.LibraryEntry{}, err
	}
	return mapEntry(resp), nil
}

// UpdateEntry applies an in-place edit
func (c *Client) UpdateEntry(ctx context.Context, id domain.EntryID, patch domain.EntryPatch) (domain.LibraryEntry, error) {
	var resp entryDTO
	if err := c.sendJSON(ctx, http.MethodPatch, entryPath(id), toPatchDTO(patch), &resp); err != nil {
		return domain.LibraryEntry{}, notFound(err)
	}
	return mapEntry(resp), nil
}

// SetWatchStatus persists a status transition
func (c *Client) SetWatchStatus(ctx context.Context, id domain.EntryID, status domain.WatchStatus) (domain.LibraryEntry, error) {
	var resp entryDTO
	if err := c.sendJSON(ctx, http.MethodPut, entryPath(id)+"/status", toStatusDTO(status), &resp); err != nil {
		return domain.LibraryEntry{}, notFound(err)
	}
	return mapEntry(resp), nil
}

// DeleteEntry removes an entry
func (c *Client) DeleteEntry(ctx context.Context, id domain.EntryID) error {
	return notFound(c.sendJSON(ctx, http.MethodDelete, entryPath(id), nil, nil))
}

// FetchEpisodeProgress returns the progress records of a series entry
func (c *Client) FetchEpisodeProgress(ctx context.Context, id domain.EntryID) ([]domain.EpisodeProgress, error) {
	var resp []episodeDTO
	if err := c.getJSON(ctx, entryPath(id)+"/episodes", nil, &resp); err != nil {
		return nil, notFound(err)
	}
	return mapEpisodes(id, resp), nil
}

// ToggleEpisode sets one episode's watched flag
func (c *Client) ToggleEpisode(ctx context.Context, id domain.EntryID, season, episode int, watched bool) ([]domain.EpisodeProgress, error) {
	path := fmt.Sprintf("%s/episodes/%d/%d", entryPath(id), season, episode)
	var resp []episodeDTO
	if err := c.sendJSON(ctx, http.MethodPut, path, watchedDTO{Watched: watched}, &resp); err != nil {
		return nil, notFound(err)
	}
	return mapEpisodes(id, resp), nil
}

// MarkSeason marks every episode of a season watched
func (c *Client) MarkSeason(ctx context.Context, id domain.EntryID, season int) ([]domain.EpisodeProgress, error) {
	path := fmt.Sprintf("%s/seasons/%d/watched", entryPath(id), season)
	var resp []episodeDTO
	if err := c.sendJSON(ctx, http.MethodPost, path, nil, &resp); err != nil {
		return nil, notFound(err)
	}
	return mapEpisodes(id, resp), nil
}

// FetchFriends returns all friends
func (c *Client) FetchFriends(ctx context.Context) ([]domain.Friend, error) {
	var resp []friendDTO
	if err := c.getJSON(ctx, "/api/friends", nil, &resp); err != nil {
		return nil, err
	}
	return mapFriends(resp), nil
}

// AddFriend creates a friend
func (c *Client) AddFriend(ctx context.Context, input domain.FriendInput) (domain.Friend, error) {
	var resp friendDTO
	if err := c.sendJSON(ctx, http.MethodPost, "/api/friends", friendDTO{Name: input.Name}, &resp); err != nil {
		return domain.Friend{}, err
	}
	return mapFriend(resp), nil
}

// UpdateFriend renames a friend
func (c *Client) UpdateFriend(ctx context.Context, id domain.FriendID, input domain.FriendInput) (domain.Friend, error) {
	var resp friendDTO
	path := "/api/friends/" + strconv.FormatInt(int64(id), 10)
	if err := c.sendJSON(ctx, http.MethodPut, path, friendDTO{Name: input.Name}, &resp); err != nil {
		return domain.Friend{}, err
	}
	return mapFriend(resp), nil
}

// DeleteFriend removes a friend
func (c *Client) DeleteFriend(ctx context.Context, id domain.FriendID) error {
	return c.sendJSON(ctx, http.MethodDelete, "/api/friends/"+strconv.FormatInt(int64(id), 10), nil, nil)
}

// FetchTags returns all tags
func (c *Client) FetchTags(ctx context.Context) ([]domain.Tag, error) {
	var resp []tagDTO
	if err := c.getJSON(ctx, "/api/tags", nil, &resp); err != nil {
		return nil, err
	}
	return mapTags(resp), nil
}

// AddTag creates a tag
func (c *Client) AddTag(ctx context.Context, input domain.TagInput) (domain.Tag, error) {
	var resp tagDTO
	if err := c.sendJSON(ctx, http.MethodPost, "/api/tags", tagDTO{Name: input.Name, Color: input.Color}, &resp); err != nil {
		return domain.Tag{}, err
	}
	return mapTag(resp), nil
}

// UpdateTag edits a tag
func (c *Client) UpdateTag(ctx context.Context, id domain.TagID, input domain.TagInput) (domain.Tag, error) {
	var resp tagDTO
	path := "/api/tags/" + strconv.FormatInt(int64(id), 10)
	if err := c.sendJSON(ctx, http.MethodPut, path, tagDTO{Name: input.Name, Color: input.Color}, &resp); err != nil {
		return domain.Tag{}, err
	}
	return mapTag(resp), nil
}

// DeleteTag removes a tag
func (c *Client) DeleteTag(ctx context.Context, id domain.TagID) error {
	return c.sendJSON(ctx, http.MethodDelete, "/api/tags/"+strconv.FormatInt(int64(id), 10), nil, nil)
}

// SearchTitles searches the metadata provider
func (c *Client) SearchTitles(ctx context.Context, query string) ([]domain.SearchResult, error) {
	var resp []searchResultDTO
	if err := c.getJSON(ctx, "/api/search", url.Values{"q": {query}}, &resp); err != nil {
		return nil, err
	}
	return mapSearchResults(resp), nil
}

// notFound maps a 404 on an entry route to domain.ErrEntryNotFound,
// keeping the server error in the chain
func notFound(err error) error {
	var srvErr *domain.ServerError
	if errors.As(err, &srvErr) && srvErr.Status == http.StatusNotFound {
		return fmt.Errorf("%w: %w", domain.ErrEntryNotFound, err)
	}
	return err
}
