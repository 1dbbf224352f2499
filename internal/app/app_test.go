package app

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/watchlog/internal/domain"
	"github.com/mmcdole/watchlog/internal/library"
	"github.com/mmcdole/watchlog/internal/remote"
	"github.com/mmcdole/watchlog/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func seededBackend() *fakeBackend {
	b := newFakeBackend()
	b.entries = []domain.LibraryEntry{
		{ID: 1, Media: &domain.Movie{Title: "Heat"}, Status: domain.NotStarted{}, DateAdded: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: 2, Media: &domain.Series{Title: "Dark", NumberOfEpisodes: 10, NumberOfSeasons: 1}, Status: domain.InProgress{}, Tags: []domain.TagID{7}, DateAdded: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{ID: 3, Media: &domain.Movie{Title: "Alien"}, Status: domain.Completed{}, Friends: []domain.FriendID{5}, DateAdded: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)},
	}
	b.friends = []domain.Friend{{ID: 5, Name: "Sam"}}
	b.tags = []domain.Tag{{ID: 7, Name: "mystery", Color: "#333"}}
	b.results = []domain.SearchResult{{ExternalID: 603, Kind: domain.MediaKindMovie, Title: "The Matrix", Year: 1999}}
	return b
}

func loadedCore(t *testing.T, b *fakeBackend) *Core {
	t.Helper()
	c := newTestCore(b, nil)
	settle(t, c, c.Dispatch(Init{}))
	require.Equal(t, remote.Success, c.State().Library.Status())
	return c
}

func TestInit_LoadsEveryResource(t *testing.T) {
	b := seededBackend()
	c := newTestCore(b, nil)

	cmd := c.Dispatch(Init{})
	s := c.State()
	assert.True(t, s.Library.IsLoading())
	assert.True(t, s.Friends.IsLoading())
	assert.True(t, s.Tags.IsLoading())
	assert.True(t, s.Health.IsLoading())

	assert.Nil(t, c.Dispatch(RefreshLibrary{}), "duplicate request while loading schedules nothing")

	settle(t, c, cmd)
	s = c.State()
	assert.Len(t, s.Library.GetOrDefault(nil), 3)
	assert.Equal(t, "Sam", s.FriendName(5))
	h, _ := s.Health.Value()
	assert.True(t, h.OK())
	assert.Equal(t, 1, b.count("FetchLibrary"))
}

func TestInit_FailureLandsInResource(t *testing.T) {
	b := seededBackend()
	b.errs["FetchLibrary"] = domain.ErrServerOffline
	c := newTestCore(b, nil)
	settle(t, c, c.Dispatch(Init{}))

	info, ok := c.State().Library.Err()
	require.True(t, ok)
	assert.Equal(t, domain.NetworkError, info.Kind)
	assert.NotEmpty(t, info.RetryHint)

	delete(b.errs, "FetchLibrary")
	settle(t, c, c.Dispatch(RefreshLibrary{}))
	assert.Equal(t, remote.Success, c.State().Library.Status())
}

func TestSearch_DebouncedQueriesFetchOnlyTheLast(t *testing.T) {
	b := seededBackend()
	c := loadedCore(t, b)

	require.Nil(t, c.Dispatch(OpenSearch{}))

	var pending []tea.Cmd
	for _, q := range []string{"m", "ma", "mat"} {
		cmd := c.Dispatch(EditField{Field: workflow.FieldQuery, Value: q})
		require.NotNil(t, cmd)
		pending = append(pending, cmd)
	}
	assert.True(t, c.State().SearchPending())
	assert.Zero(t, b.count("SearchTitles"), "nothing is fetched during the quiet period")

	for _, cmd := range pending {
		settle(t, c, cmd)
	}

	assert.Equal(t, []string{"mat"}, b.searches)
	assert.False(t, c.State().SearchPending())
	results, ok := c.State().Search.Value()
	require.True(t, ok)
	assert.Equal(t, "The Matrix", results[0].Title)
}

func TestSearch_EmptyQueryClearsWithoutFetch(t *testing.T) {
	b := seededBackend()
	c := loadedCore(t, b)
	c.Dispatch(OpenSearch{})

	settle(t, c, c.Dispatch(EditField{Field: workflow.FieldQuery, Value: "matrix"}))
	require.Equal(t, remote.Success, c.State().Search.Status())

	pending := c.Dispatch(EditField{Field: workflow.FieldQuery, Value: "ma"})
	assert.Nil(t, c.Dispatch(EditField{Field: workflow.FieldQuery, Value: "  "}))
	settle(t, c, pending)

	assert.Equal(t, remote.NotRequested, c.State().Search.Status())
	assert.Equal(t, []string{"matrix"}, b.searches)
}

func TestSearch_StaleResponseIsDiscarded(t *testing.T) {
	b := seededBackend()
	c := loadedCore(t, b)
	c.Dispatch(OpenSearch{})

	slow := c.Dispatch(EditField{Field: workflow.FieldQuery, Value: "old"})
	slowFetch := collect(slow)
	require.Len(t, slowFetch, 1)
	fetchOld := c.Dispatch(slowFetch[0].(Intent))
	require.NotNil(t, fetchOld)
	oldSeq := c.State().Search.Seq()

	settle(t, c, c.Dispatch(EditField{Field: workflow.FieldQuery, Value: "new"}))
	newest := c.State()
	require.Equal(t, remote.Success, newest.Search.Status())

	c.Dispatch(SearchLoaded{Seq: oldSeq, Query: "old", Results: []domain.SearchResult{{Title: "Stale"}}})
	assert.Equal(t, newest.Search, c.State().Search)
}

func TestQuickAdd_DuplicateKeepsModalOpen(t *testing.T) {
	b := seededBackend()
	b.errs["AddEntry"] = &domain.ServerError{Status: 409, Message: "duplicate"}
	c := loadedCore(t, b)

	c.Dispatch(OpenQuickAdd{Item: b.results[0]})
	c.Dispatch(ToggleQuickAddTag{ID: 7})

	cmd := c.Dispatch(SubmitWorkflow{})
	require.NotNil(t, cmd)
	assert.True(t, workflow.IsSubmitting(c.State().Workflow))

	settle(t, c, cmd)

	w, ok := c.State().Workflow.(workflow.QuickAdd)
	require.True(t, ok, "modal stays open")
	assert.False(t, w.Submitting)
	require.NotNil(t, w.Err)
	assert.Equal(t, "duplicate", w.Err.Message)
	assert.Equal(t, []domain.TagID{7}, w.Tags, "selection survives for retry")
	assert.Len(t, c.State().Library.GetOrDefault(nil), 3)

	delete(b.errs, "AddEntry")
	settle(t, c, c.Dispatch(SubmitWorkflow{}))
	assert.Nil(t, c.State().Workflow)
	assert.Len(t, c.State().Library.GetOrDefault(nil), 4)
	require.NotNil(t, c.State().Notification)
	assert.Equal(t, NotifySuccess, c.State().Notification.Kind)
}

func TestWorkflow_CloseIgnoredWhileSubmitting(t *testing.T) {
	b := seededBackend()
	c := loadedCore(t, b)

	c.Dispatch(OpenFriendForm{})
	c.Dispatch(EditField{Field: workflow.FieldName, Value: "Robin"})
	cmd := c.Dispatch(SubmitWorkflow{})
	require.NotNil(t, cmd)

	c.Dispatch(CloseWorkflow{})
	c.Dispatch(OpenTagForm{})
	assert.IsType(t, workflow.FriendForm{}, c.State().Workflow)
	assert.Nil(t, c.Dispatch(SubmitWorkflow{}), "no duplicate submission")

	settle(t, c, cmd)
	assert.Nil(t, c.State().Workflow)
	assert.Equal(t, "Robin", c.State().FriendName(101))
	assert.Equal(t, 1, b.count("AddFriend"))
}

func TestWorkflow_ValidationNeverReachesNetwork(t *testing.T) {
	b := seededBackend()
	c := loadedCore(t, b)

	c.Dispatch(OpenTagForm{})
	assert.Nil(t, c.Dispatch(SubmitWorkflow{}))

	w := c.State().Workflow
	require.NotNil(t, w.State().Err)
	assert.Equal(t, domain.ValidationErrorKind, w.State().Err.Kind)
	assert.Zero(t, b.count("AddTag"))
}

func TestAbandonWorkflow(t *testing.T) {
	b := seededBackend()
	c := loadedCore(t, b)

	c.Dispatch(OpenAbandon{ID: 1})
	c.Dispatch(EditField{Field: workflow.FieldReason, Value: "bored"})
	settle(t, c, c.Dispatch(SubmitWorkflow{}))

	assert.Nil(t, c.State().Workflow)
	entry, _ := c.State().Entry(1)
	assert.Equal(t, domain.Abandoned{Reason: "bored"}, entry.Status)

	// Completed entries cannot be abandoned; the workflow reports it locally
	c.Dispatch(OpenAbandon{ID: 3})
	assert.Nil(t, c.Dispatch(SubmitWorkflow{}))
	w := c.State().Workflow
	require.IsType(t, workflow.Abandon{}, w)
	require.NotNil(t, w.State().Err)
	assert.Equal(t, 1, b.count("SetWatchStatus"))
}

func TestMarkCompleted_IsPessimistic(t *testing.T) {
	b := seededBackend()
	c := loadedCore(t, b)

	cmd := c.Dispatch(MarkCompleted{ID: 1})
	require.NotNil(t, cmd)

	entry, _ := c.State().Entry(1)
	assert.Equal(t, domain.NotStarted{}, entry.Status, "nothing changes before the server answers")
	assert.True(t, c.State().IsPending(1))
	assert.Nil(t, c.Dispatch(MarkCompleted{ID: 1}), "duplicate intent for a pending entry")

	settle(t, c, cmd)
	entry, _ = c.State().Entry(1)
	assert.Equal(t, domain.Completed{}, entry.Status)
	assert.False(t, c.State().IsPending(1))
}

func TestMarkCompleted_FailureRaisesNotification(t *testing.T) {
	b := seededBackend()
	b.errs["SetWatchStatus"] = &domain.ServerError{Status: 500, Message: "boom"}
	c := loadedCore(t, b)

	settle(t, c, c.Dispatch(MarkCompleted{ID: 1}))

	entry, _ := c.State().Entry(1)
	assert.Equal(t, domain.NotStarted{}, entry.Status)
	n := c.State().Notification
	require.NotNil(t, n)
	assert.Equal(t, NotifyError, n.Kind)
	assert.Contains(t, n.Message, "boom")
	assert.NotEmpty(t, n.Hint)
}

func TestSeriesCompletionRequiresEveryEpisode(t *testing.T) {
	b := seededBackend()
	for ep := 1; ep <= 9; ep++ {
		b.episodes[2] = append(b.episodes[2], domain.EpisodeProgress{EntryID: 2, Season: 1, Episode: ep, Watched: true})
	}
	c := loadedCore(t, b)
	settle(t, c, c.Dispatch(Navigate{Page: EntryPage{ID: 2}}))
	require.Equal(t, remote.Success, c.State().EpisodeProgress(2).Status())

	msgs := collect(c.Dispatch(MarkCompleted{ID: 2}))
	require.Len(t, msgs, 1)
	assert.IsType(t, NotificationExpired{}, msgs[0], "only the error notification is scheduled")
	assert.Zero(t, b.count("SetWatchStatus"))
	assert.Equal(t, NotifyError, c.State().Notification.Kind)

	settle(t, c, c.Dispatch(ToggleEpisode{ID: 2, Key: domain.EpisodeKey{Season: 1, Episode: 10}}))
	entry, _ := c.State().Entry(2)
	assert.Equal(t, domain.InProgress{}, entry.Status, "checking the last episode never completes the series")

	settle(t, c, c.Dispatch(MarkCompleted{ID: 2}))
	entry, _ = c.State().Entry(2)
	assert.Equal(t, domain.Completed{}, entry.Status)
}

func TestNotification_ExpiresOnlyForItsOwnSeq(t *testing.T) {
	b := seededBackend()
	c := loadedCore(t, b)

	first := settle(t, c, c.Dispatch(MarkCompleted{ID: 1}))
	require.Len(t, first, 1)
	second := settle(t, c, c.Dispatch(MarkUnwatched{ID: 1}))
	require.Len(t, second, 1)
	require.NotNil(t, c.State().Notification)

	c.Dispatch(first[0])
	assert.NotNil(t, c.State().Notification, "an older expiry leaves the newer notification")

	c.Dispatch(second[0])
	assert.Nil(t, c.State().Notification)
}

func TestDeleteTag_StripsReferences(t *testing.T) {
	b := seededBackend()
	c := loadedCore(t, b)
	c.Dispatch(ToggleTagFilter{ID: 7})

	c.Dispatch(OpenConfirmDelete{Target: workflow.DeleteTarget{Kind: workflow.TargetTag, ID: 7, Label: "mystery"}})
	settle(t, c, c.Dispatch(SubmitWorkflow{}))

	s := c.State()
	assert.Nil(t, s.Workflow)
	assert.Empty(t, s.Tags.GetOrDefault(nil))
	entry, _ := s.Entry(2)
	assert.Empty(t, entry.Tags)
	assert.False(t, s.Filters.HasTag(7))
}

func TestDeleteEntry_LeavesEntryPage(t *testing.T) {
	b := seededBackend()
	c := loadedCore(t, b)
	settle(t, c, c.Dispatch(Navigate{Page: EntryPage{ID: 1}}))

	c.Dispatch(OpenConfirmDelete{Target: workflow.DeleteTarget{Kind: workflow.TargetEntry, ID: 1, Label: "Heat"}})
	settle(t, c, c.Dispatch(SubmitWorkflow{}))

	s := c.State()
	assert.Equal(t, LibraryPage{}, s.Page)
	_, ok := s.Entry(1)
	assert.False(t, ok)
	_, ok = s.Details[1]
	assert.False(t, ok)
}

func TestEditEntry_TogglesGoThroughServer(t *testing.T) {
	b := seededBackend()
	c := loadedCore(t, b)

	settle(t, c, c.Dispatch(ToggleFavorite{ID: 1}))
	settle(t, c, c.Dispatch(SetRating{ID: 1, Rating: intPtr(4)}))
	settle(t, c, c.Dispatch(ToggleEntryTag{ID: 1, Tag: 7}))
	settle(t, c, c.Dispatch(ToggleEntryFriend{ID: 3, Friend: 5}))

	entry, _ := c.State().Entry(1)
	assert.True(t, entry.IsFavorite)
	assert.Equal(t, 4, *entry.PersonalRating)
	assert.Equal(t, []domain.TagID{7}, entry.Tags)

	alien, _ := c.State().Entry(3)
	assert.Empty(t, alien.Friends)

	msgs := collect(c.Dispatch(SetRating{ID: 1, Rating: intPtr(9)}))
	require.Len(t, msgs, 1)
	assert.IsType(t, NotificationExpired{}, msgs[0])
	assert.Equal(t, 4, b.count("UpdateEntry"))
}

func TestFilters_PersistAndRestore(t *testing.T) {
	b := seededBackend()
	prefs := &memPrefs{}
	c := newTestCore(b, prefs)

	settle(t, c, c.Dispatch(SetSortKey{Key: library.SortTitle}))
	settle(t, c, c.Dispatch(SetStatusFilter{Filter: library.StatusOnly(domain.StatusCompleted)}))
	settle(t, c, c.Dispatch(Navigate{Page: TagsPage{}}))

	restored := newTestCore(b, prefs).State()
	assert.Equal(t, library.SortTitle, restored.Filters.SortKey)
	assert.Equal(t, library.SortAsc, restored.Filters.SortDir)
	assert.Equal(t, library.StatusOnly(domain.StatusCompleted), restored.Filters.Status)
	assert.Equal(t, TagsPage{}, restored.Page)
}

func TestVisibleEntries(t *testing.T) {
	b := seededBackend()
	c := loadedCore(t, b)

	c.Dispatch(SetFilterText{Text: "a"})
	c.Dispatch(SetSortKey{Key: library.SortTitle})

	var titles []string
	for _, e := range c.State().VisibleEntries() {
		titles = append(titles, e.Title())
	}
	assert.Equal(t, []string{"Alien", "Dark", "Heat"}, titles)

	c.Dispatch(ClearFilters{})
	assert.Equal(t, 0, c.State().Filters.Active())
	assert.Equal(t, library.SortTitle, c.State().Filters.SortKey)
}

func TestClearFilters_KeepsSortOrder(t *testing.T) {
	c := loadedCore(t, seededBackend())
	c.Dispatch(SetSortKey{Key: library.SortTitle})
	c.Dispatch(ToggleSortDirection{})
	c.Dispatch(SetFilterText{Text: "dark"})

	c.Dispatch(ClearFilters{})
	f := c.State().Filters
	assert.Empty(t, f.SearchText)
	assert.Equal(t, library.SortTitle, f.SortKey)
	assert.Equal(t, library.SortDesc, f.SortDir)
}

func TestFilters_BurstOfEditsSavesTheLastSnapshot(t *testing.T) {
	prefs := &memPrefs{}
	c := newTestCore(seededBackend(), prefs)

	var pending []tea.Cmd
	for _, text := range []string{"a", "ab", "abc"} {
		cmd := c.Dispatch(SetFilterText{Text: text})
		require.NotNil(t, cmd)
		pending = append(pending, cmd)
	}
	assert.Zero(t, prefs.saveCount(), "nothing is written during the save delay")

	// Timers complete in reverse order
	for i := len(pending) - 1; i >= 0; i-- {
		settle(t, c, pending[i])
	}

	saved, ok := prefs.LoadPrefs()
	require.True(t, ok)
	assert.Equal(t, "abc", saved.SearchText)
	assert.Equal(t, 1, prefs.saveCount())
}

func TestFlushPrefs_WritesPendingChange(t *testing.T) {
	prefs := &memPrefs{}
	c := newTestCore(seededBackend(), prefs)

	late := c.Dispatch(SetFilterText{Text: "heat"})
	require.NoError(t, c.FlushPrefs())

	saved, ok := prefs.LoadPrefs()
	require.True(t, ok)
	assert.Equal(t, "heat", saved.SearchText)

	settle(t, c, late)
	require.NoError(t, c.FlushPrefs())
	assert.Equal(t, 1, prefs.saveCount(), "a flushed change is not written again")
}

func TestDeleteEntry_WaitsForPendingMutation(t *testing.T) {
	b := seededBackend()
	c := loadedCore(t, b)
	target := workflow.DeleteTarget{Kind: workflow.TargetEntry, ID: 1, Label: "Heat"}

	held := collect(c.Dispatch(ToggleFavorite{ID: 1}))
	require.Len(t, held, 1)

	c.Dispatch(OpenConfirmDelete{Target: target})
	assert.Nil(t, c.State().Workflow, "delete is refused while an update is in flight")
	require.NotNil(t, c.State().Notification)
	assert.Equal(t, NotifyInfo, c.State().Notification.Kind)

	update, ok := held[0].(EntryUpdated)
	require.True(t, ok)
	c.Dispatch(update)
	require.False(t, c.State().IsPending(1))

	c.Dispatch(OpenConfirmDelete{Target: target})
	submit := c.Dispatch(SubmitWorkflow{})
	assert.True(t, c.State().IsPending(1), "the entry is locked while the delete is in flight")
	assert.Nil(t, c.Dispatch(ToggleFavorite{ID: 1}))
	settle(t, c, submit)

	_, ok = c.State().Entry(1)
	require.False(t, ok)
	assert.False(t, c.State().IsPending(1))

	// A response from before the delete must not bring the entry back
	c.Dispatch(update)
	_, ok = c.State().Entry(1)
	assert.False(t, ok)
	assert.Equal(t, 1, b.count("DeleteEntry"))
}

func TestDeleteEntry_FailureUnlocksEntry(t *testing.T) {
	b := seededBackend()
	b.errs["DeleteEntry"] = &domain.ServerError{Status: 500, Message: "boom"}
	c := loadedCore(t, b)

	c.Dispatch(OpenConfirmDelete{Target: workflow.DeleteTarget{Kind: workflow.TargetEntry, ID: 1, Label: "Heat"}})
	settle(t, c, c.Dispatch(SubmitWorkflow{}))

	s := c.State()
	assert.False(t, s.IsPending(1))
	_, ok := s.Entry(1)
	assert.True(t, ok)
	require.NotNil(t, s.Workflow)
	assert.NotNil(t, s.Workflow.State().Err)
}

func TestMarkCompleted_SeriesLoadsEpisodesFirst(t *testing.T) {
	b := seededBackend()
	for ep := 1; ep <= 10; ep++ {
		b.episodes[2] = append(b.episodes[2], domain.EpisodeProgress{EntryID: 2, Season: 1, Episode: ep, Watched: true})
	}
	c := loadedCore(t, b)
	require.Equal(t, remote.NotRequested, c.State().EpisodeProgress(2).Status())

	settle(t, c, c.Dispatch(MarkCompleted{ID: 2}))
	assert.Zero(t, b.count("SetWatchStatus"), "completion is not judged against unloaded progress")
	assert.Equal(t, 1, b.count("FetchEpisodeProgress"))
	assert.Equal(t, remote.Success, c.State().EpisodeProgress(2).Status())
	require.NotNil(t, c.State().Notification)
	assert.Equal(t, NotifyInfo, c.State().Notification.Kind)

	settle(t, c, c.Dispatch(MarkCompleted{ID: 2}))
	entry, _ := c.State().Entry(2)
	assert.Equal(t, domain.Completed{}, entry.Status)
}
