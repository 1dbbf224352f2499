package backend

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/watchlog/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, Options{
		Retries:           2,
		RequestsPerSecond: 1000,
		Logger:            slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	c.retryDelay = time.Millisecond
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestFetchLibrary_DecodesMediaAndStatusUnions(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/library", r.URL.Path)
		_, err := uuid.Parse(r.Header.Get("X-Request-ID"))
		assert.NoError(t, err, "every request carries a request id")

		_, _ = io.WriteString(w, `[
			{"id": 1, "media": {"kind": "movie", "external_id": 11, "title": "Heat", "release_date": "1995-12-15", "runtime": 170},
			 "status": {"kind": "completed"}, "personal_rating": 5, "tags": [3], "friends": [], "date_added": "2024-03-01T10:00:00Z"},
			{"id": 2, "media": {"kind": "series", "external_id": 22, "title": "Dark", "first_air_date": "2017-12-01",
			  "number_of_seasons": 3, "number_of_episodes": 26, "seasons": [{"season_number": 1, "episode_count": 10}]},
			 "status": {"kind": "abandoned", "reason": "bored", "stopped_season": 2}, "personal_rating": null,
			 "tags": [], "friends": [7], "date_added": "2024-03-02T10:00:00Z", "is_favorite": true}
		]`)
	})

	entries, err := c.FetchLibrary(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)

	heat := entries[0]
	assert.Equal(t, domain.EntryID(1), heat.ID)
	assert.Equal(t, domain.Completed{}, heat.Status)
	assert.Equal(t, 1995, heat.Year())
	require.NotNil(t, heat.PersonalRating)
	assert.Equal(t, 5, *heat.PersonalRating)
	assert.Equal(t, []domain.TagID{3}, heat.Tags)
	movie, ok := heat.Media.(*domain.Movie)
	require.True(t, ok)
	assert.Equal(t, 170, movie.Runtime)

	dark := entries[1]
	require.True(t, dark.IsSeries())
	assert.Equal(t, 26, dark.Series().NumberOfEpisodes)
	assert.Equal(t, []domain.SeasonInfo{{Number: 1, EpisodeCount: 10}}, dark.Series().Seasons)
	assert.Nil(t, dark.PersonalRating)
	assert.True(t, dark.IsFavorite)
	assert.Equal(t, []domain.FriendID{7}, dark.Friends)

	abandoned, ok := dark.Status.(domain.Abandoned)
	require.True(t, ok)
	assert.Equal(t, "bored", abandoned.Reason)
	require.NotNil(t, abandoned.StoppedSeason)
	assert.Equal(t, 2, *abandoned.StoppedSeason)
	assert.Nil(t, abandoned.StoppedEpisode)
}

func TestAddEntry_ServerErrorBodyIsSurfaced(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var body newEntryDTO
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, int64(42), body.ExternalID)
		assert.Equal(t, "series", body.Kind)
		assert.Equal(t, []int64{1, 2}, body.Tags)
		assert.Equal(t, []int64{}, body.Friends)
		writeJSON(w, http.StatusConflict, map[string]string{"error": "duplicate"})
	})

	_, err := c.AddEntry(context.Background(), domain.NewEntry{
		Selection: domain.SearchResult{ExternalID: 42, Kind: domain.MediaKindSeries},
		Tags:      []domain.TagID{1, 2},
	})

	var srvErr *domain.ServerError
	require.ErrorAs(t, err, &srvErr)
	assert.Equal(t, http.StatusConflict, srvErr.Status)
	assert.Equal(t, "duplicate", srvErr.Message)
	assert.Equal(t, "duplicate", domain.ErrorInfoFrom(err).Message)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGet_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "warming up"})
			return
		}
		writeJSON(w, http.StatusOK, []friendDTO{{ID: 1, Name: "Ana"}})
	})

	friends, err := c.FetchFriends(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Friend{{ID: 1, Name: "Ana"}}, friends)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGet_GivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "boom"})
	})

	_, err := c.FetchTags(context.Background())
	var srvErr *domain.ServerError
	require.ErrorAs(t, err, &srvErr)
	assert.Equal(t, "boom", srvErr.Message)
	assert.Equal(t, int32(3), calls.Load(), "one attempt plus two retries")
}

func TestMutations_AreNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "upstream"})
	})

	err := c.DeleteTag(context.Background(), 5)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClientErrors_AreNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "nope", http.StatusBadRequest)
	})

	_, err := c.FetchLibrary(context.Background())
	var srvErr *domain.ServerError
	require.ErrorAs(t, err, &srvErr)
	assert.Equal(t, "nope", srvErr.Message, "plain-text bodies are used verbatim")
	assert.Equal(t, int32(1), calls.Load())
}

func TestEntryNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/library/9", r.URL.Path)
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no such entry"})
	})

	_, err := c.FetchEntryDetail(context.Background(), 9)
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)
	var srvErr *domain.ServerError
	assert.ErrorAs(t, err, &srvErr)
}

func TestOffline(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, Options{Retries: -1, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	_, err := c.Health(context.Background())
	require.ErrorIs(t, err, domain.ErrServerOffline)

	info := domain.ErrorInfoFrom(err)
	assert.Equal(t, domain.NetworkError, info.Kind)
	assert.NotEmpty(t, info.RetryHint)
}

func TestSetWatchStatus_EncodesUnion(t *testing.T) {
	season, episode := 2, 4
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/library/3/status", r.URL.Path)

		var body statusDTO
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, statusAbandoned, body.Kind)
		assert.Equal(t, "slow", body.Reason)

		writeJSON(w, http.StatusOK, entryDTO{
			ID:     3,
			Media:  mediaDTO{Kind: "series", Title: "Dark", NumberOfEpisodes: 26},
			Status: body,
		})
	})

	entry, err := c.SetWatchStatus(context.Background(), 3, domain.Abandoned{Reason: "slow", StoppedSeason: &season, StoppedEpisode: &episode})
	require.NoError(t, err)
	assert.Equal(t, domain.Abandoned{Reason: "slow", StoppedSeason: &season, StoppedEpisode: &episode}, entry.Status)
}

func TestToggleEpisode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/library/4/episodes/1/3", r.URL.Path)
		var body watchedDTO
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.True(t, body.Watched)
		writeJSON(w, http.StatusOK, []episodeDTO{{Season: 1, Episode: 3, Watched: true}})
	})

	episodes, err := c.ToggleEpisode(context.Background(), 4, 1, 3, true)
	require.NoError(t, err)
	assert.Equal(t, []domain.EpisodeProgress{{EntryID: 4, Season: 1, Episode: 3, Watched: true}}, episodes)
}

func TestSearchTitles_EncodesQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/search", r.URL.Path)
		assert.Equal(t, "the matrix", r.URL.Query().Get("q"))
		writeJSON(w, http.StatusOK, []searchResultDTO{{ExternalID: 603, Kind: "tv", Title: "The Matrix", Year: 1999}})
	})

	results, err := c.SearchTitles(context.Background(), "the matrix")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, domain.MediaKindSeries, results[0].Kind)
	assert.Equal(t, 1999, results[0].Year)
}

func TestUpdateEntry_SendsOnlyChangedFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		var raw map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		assert.Equal(t, map[string]any{"is_favorite": true, "tags": []any{}}, raw)
		writeJSON(w, http.StatusOK, entryDTO{ID: 1, Media: mediaDTO{Kind: "movie", Title: "Heat"}, Status: statusDTO{Kind: statusNotStarted}, IsFavorite: true})
	})

	fav := true
	tags := []domain.TagID{}
	entry, err := c.UpdateEntry(context.Background(), 1, domain.EntryPatch{IsFavorite: &fav, Tags: &tags})
	require.NoError(t, err)
	assert.True(t, entry.IsFavorite)
}

func TestParseDate(t *testing.T) {
	assert.Nil(t, parseDate(""))
	assert.Nil(t, parseDate("soon"))
	require.NotNil(t, parseDate("2017-12-01"))
	assert.Equal(t, 2017, parseDate("2017-12-01T00:00:00Z").Year())
}
