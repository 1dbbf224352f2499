package store

import (
	"testing"

	"github.com/mmcdole/watchlog/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePrefs() domain.Prefs {
	rating := 3
	return domain.Prefs{
		SearchText:    "alien",
		StatusFilter:  int(domain.StatusCompleted),
		TagFilter:     []domain.TagID{2, 5},
		MinRating:     &rating,
		SortKey:       "title",
		SortDirection: "asc",
		LastPage:      "tags",
	}
}

func TestPrefsStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := NewPrefsStore(dir, "http://localhost:8080")
	require.NoError(t, err)

	_, ok := s.LoadPrefs()
	assert.False(t, ok, "fresh store has nothing saved")

	require.NoError(t, s.SavePrefs(samplePrefs()))
	require.NoError(t, s.Close())

	s, err = NewPrefsStore(dir, "http://LOCALHOST:8080/")
	require.NoError(t, err)
	defer s.Close()

	got, ok := s.LoadPrefs()
	require.True(t, ok)
	assert.Equal(t, samplePrefs(), got)
}

func TestPrefsStore_SeparatedPerBackend(t *testing.T) {
	dir := t.TempDir()

	a, err := NewPrefsStore(dir, "http://a.example")
	require.NoError(t, err)
	defer a.Close()
	require.NoError(t, a.SavePrefs(samplePrefs()))

	b, err := NewPrefsStore(dir, "http://b.example")
	require.NoError(t, err)
	defer b.Close()

	_, ok := b.LoadPrefs()
	assert.False(t, ok)
}

func TestPrefsStore_MemoryOnly(t *testing.T) {
	s, err := NewPrefsStore("", "http://localhost:8080")
	require.NoError(t, err)

	require.NoError(t, s.SavePrefs(samplePrefs()))
	got, ok := s.LoadPrefs()
	require.True(t, ok)
	assert.Equal(t, "alien", got.SearchText)

	require.NoError(t, s.ClearPrefs())
	_, ok = s.LoadPrefs()
	assert.False(t, ok)
	assert.NoError(t, s.Close())
}

func TestPrefsStore_Clear(t *testing.T) {
	s, err := NewPrefsStore(t.TempDir(), "")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SavePrefs(samplePrefs()))
	require.NoError(t, s.ClearPrefs())

	_, ok := s.LoadPrefs()
	assert.False(t, ok)
}
