package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/mmcdole/watchlog/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

type stubSearch struct {
	results []domain.SearchResult
	err     error
	calls   int
}

func (s *stubSearch) SearchTitles(context.Context, string) ([]domain.SearchResult, error) {
	s.calls++
	return s.results, s.err
}

func titles(results []domain.SearchResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Title
	}
	return out
}

func TestSearchTitles_RanksByMatchQuality(t *testing.T) {
	stub := &stubSearch{results: []domain.SearchResult{
		{ExternalID: 1, Title: "Matrix Resurrections", Year: 2021},
		{ExternalID: 2, Title: "The Animatrix", Year: 2003},
		{ExternalID: 3, Title: "Matrix", Year: 1999},
		{ExternalID: 4, Title: "Mars Attacks", Year: 1996},
	}}
	svc := NewSearchService(stub, quiet)

	got, err := svc.SearchTitles(context.Background(), "  Matrix ")
	require.NoError(t, err)
	assert.Equal(t, []string{"Matrix", "Matrix Resurrections", "The Animatrix", "Mars Attacks"}, titles(got))
}

func TestSearchTitles_BlankQuerySkipsRequest(t *testing.T) {
	stub := &stubSearch{}
	svc := NewSearchService(stub, quiet)

	got, err := svc.SearchTitles(context.Background(), "   ")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Zero(t, stub.calls)
}

func TestSearchTitles_DropsDuplicates(t *testing.T) {
	stub := &stubSearch{results: []domain.SearchResult{
		{ExternalID: 1, Kind: domain.MediaKindMovie, Title: "Dune"},
		{ExternalID: 1, Kind: domain.MediaKindMovie, Title: "Dune"},
		{ExternalID: 1, Kind: domain.MediaKindSeries, Title: "Dune"},
	}}
	got, err := NewSearchService(stub, quiet).SearchTitles(context.Background(), "dune")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestSearchTitles_PropagatesErrors(t *testing.T) {
	stub := &stubSearch{err: domain.ErrServerOffline}
	_, err := NewSearchService(stub, quiet).SearchTitles(context.Background(), "x")
	assert.True(t, errors.Is(err, domain.ErrServerOffline))
}

func TestCalculateMatchScore(t *testing.T) {
	r := domain.SearchResult{Year: 2000}
	assert.Equal(t, 0, calculateMatchScore("heat", "heat", r))
	assert.Equal(t, 10, calculateMatchScore("heat wave", "heat", r))
	assert.Equal(t, 50, calculateMatchScore("the heat", "heat", r))
	assert.Less(t, calculateMatchScore("lord of the rings", "lotr", r), 100)
	assert.GreaterOrEqual(t, calculateMatchScore("alien", "zzz", r), 100)
}

type stubTags struct {
	added []domain.TagInput
}

func (s *stubTags) FetchTags(context.Context) ([]domain.Tag, error) { return nil, nil }
func (s *stubTags) AddTag(_ context.Context, in domain.TagInput) (domain.Tag, error) {
	s.added = append(s.added, in)
	return domain.Tag{ID: 1, Name: in.Name, Color: in.Color}, nil
}
func (s *stubTags) UpdateTag(_ context.Context, id domain.TagID, in domain.TagInput) (domain.Tag, error) {
	return domain.Tag{ID: id, Name: in.Name, Color: in.Color}, nil
}
func (s *stubTags) DeleteTag(context.Context, domain.TagID) error { return nil }

func TestTagService_NormalizesAndValidates(t *testing.T) {
	stub := &stubTags{}
	svc := NewTagService(stub, quiet)

	tag, err := svc.AddTag(context.Background(), domain.TagInput{Name: "  noir ", Color: " #ABC "})
	require.NoError(t, err)
	assert.Equal(t, "noir", tag.Name)
	assert.Equal(t, "#abc", tag.Color)

	_, err = svc.AddTag(context.Background(), domain.TagInput{Name: " "})
	var valErr *domain.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Len(t, stub.added, 1, "invalid input never reaches the client")
}

type stubEpisodes struct{ calls int }

func (s *stubEpisodes) FetchEpisodeProgress(context.Context, domain.EntryID) ([]domain.EpisodeProgress, error) {
	return nil, nil
}
func (s *stubEpisodes) ToggleEpisode(context.Context, domain.EntryID, int, int, bool) ([]domain.EpisodeProgress, error) {
	s.calls++
	return nil, nil
}
func (s *stubEpisodes) MarkSeason(context.Context, domain.EntryID, int) ([]domain.EpisodeProgress, error) {
	s.calls++
	return nil, nil
}

func TestEpisodeService_RejectsOutOfRange(t *testing.T) {
	stub := &stubEpisodes{}
	svc := NewEpisodeService(stub, quiet)

	_, err := svc.ToggleEpisode(context.Background(), 1, 0, 3, true)
	assert.Error(t, err)
	_, err = svc.MarkSeason(context.Background(), 1, 0)
	assert.Error(t, err)
	assert.Zero(t, stub.calls)

	_, err = svc.MarkSeason(context.Background(), 1, 2)
	assert.NoError(t, err)
	assert.Equal(t, 1, stub.calls)
}
