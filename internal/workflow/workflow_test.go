package workflow

import (
	"testing"

	"github.com/mmcdole/watchlog/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quickAdd() QuickAdd {
	return QuickAdd{Item: domain.SearchResult{ExternalID: 603, Kind: domain.MediaKindMovie, Title: "The Matrix", Year: 1999}}
}

func TestOpen_ReplacesWithoutKeepingInput(t *testing.T) {
	var w Workflow = FriendForm{Name: "half typed"}

	w, ok := Open(w, TagForm{})
	require.True(t, ok)
	assert.Equal(t, TagForm{}, w)

	w, ok = Open(w, FriendForm{})
	require.True(t, ok)
	assert.Equal(t, FriendForm{}, w, "previous partial input is discarded")
}

func TestCloseAndOpen_BlockedWhileSubmitting(t *testing.T) {
	w, err := BeginSubmit(quickAdd())
	require.NoError(t, err)
	require.True(t, IsSubmitting(w))

	closed, ok := Close(w)
	assert.False(t, ok)
	assert.Equal(t, w, closed)

	opened, ok := Open(w, Search{})
	assert.False(t, ok)
	assert.Equal(t, w, opened)

	_, err = BeginSubmit(w)
	assert.ErrorIs(t, err, ErrSubmitting)
}

func TestClose(t *testing.T) {
	w, ok := Close(Search{Query: "x"})
	assert.True(t, ok)
	assert.Nil(t, w)

	w, ok = Close(nil)
	assert.True(t, ok)
	assert.Nil(t, w)
}

func TestBeginSubmit_ClearsPreviousError(t *testing.T) {
	w := Fail(quickAdd(), domain.ErrorInfo{Kind: domain.ServerErrorKind, Message: "duplicate"})
	require.NotNil(t, w.State().Err)
	assert.False(t, w.State().Submitting)

	w, err := BeginSubmit(w)
	require.NoError(t, err)
	assert.Equal(t, Submission{Submitting: true}, w.State())
}

func TestFail_KeepsWorkflowOpenWithError(t *testing.T) {
	w, err := BeginSubmit(quickAdd())
	require.NoError(t, err)

	w = Fail(w, domain.ErrorInfoFrom(&domain.ServerError{Status: 409, Message: "duplicate"}))

	require.IsType(t, QuickAdd{}, w)
	assert.False(t, w.State().Submitting)
	require.NotNil(t, w.State().Err)
	assert.Equal(t, "duplicate", w.State().Err.Message)
	assert.Equal(t, domain.ServerErrorKind, w.State().Err.Kind)
}

func TestBeginSubmit_Validation(t *testing.T) {
	tests := []struct {
		name  string
		w     Workflow
		field string
	}{
		{"empty friend name", FriendForm{Name: "   "}, "name"},
		{"empty tag name", TagForm{Color: "#fff"}, "name"},
		{"bad tag color", TagForm{Name: "noir", Color: "red"}, "color"},
		{"non numeric season", Abandon{Target: 1, StopSeason: "two"}, "season"},
		{"zero episode", Abandon{Target: 1, StopSeason: "1", StopEpisode: "0"}, "episode"},
		{"episode without season", Abandon{Target: 1, StopEpisode: "4"}, "season"},
		{"untitled item", QuickAdd{}, "item"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BeginSubmit(tt.w)
			var valErr *domain.ValidationError
			require.ErrorAs(t, err, &valErr)
			assert.Equal(t, tt.field, valErr.Field)

			assert.False(t, got.State().Submitting)
			require.NotNil(t, got.State().Err)
			assert.Equal(t, domain.ValidationErrorKind, got.State().Err.Kind)
		})
	}
}

func TestBeginSubmit_NotSubmittable(t *testing.T) {
	_, err := BeginSubmit(Search{Query: "x"})
	assert.ErrorIs(t, err, ErrNotSubmittable)

	_, err = BeginSubmit(nil)
	assert.ErrorIs(t, err, ErrNotSubmittable)
}

func TestAbandonPosition(t *testing.T) {
	season, episode, err := Abandon{StopSeason: " 2 ", StopEpisode: "5"}.Position()
	require.NoError(t, err)
	assert.Equal(t, 2, *season)
	assert.Equal(t, 5, *episode)

	season, episode, err = Abandon{}.Position()
	require.NoError(t, err)
	assert.Nil(t, season)
	assert.Nil(t, episode)
}

func TestQuickAdd_TogglesAreLocalSets(t *testing.T) {
	w := quickAdd().ToggleTag(1).ToggleTag(2).ToggleFriend(9)
	assert.Equal(t, []domain.TagID{1, 2}, w.Tags)
	assert.Equal(t, []domain.FriendID{9}, w.Friends)

	before := w
	w = w.ToggleTag(1)
	assert.Equal(t, []domain.TagID{2}, w.Tags)
	assert.Equal(t, []domain.TagID{1, 2}, before.Tags, "toggles never alias the previous value")

	entry := w.NewEntry()
	assert.Equal(t, "The Matrix", entry.Selection.Title)
	assert.Equal(t, []domain.TagID{2}, entry.Tags)
}

func TestSetField(t *testing.T) {
	var w Workflow = TagForm{}
	w = SetField(w, FieldName, "noir")
	w = SetField(w, FieldColor, "#222")
	w = SetField(w, FieldReason, "ignored")
	assert.Equal(t, TagForm{Name: "noir", Color: "#222"}, w)
	assert.Equal(t, "noir", Value(w, FieldName))

	w, err := BeginSubmit(w)
	require.NoError(t, err)
	frozen := SetField(w, FieldName, "changed")
	assert.Equal(t, "noir", Value(frozen, FieldName))
}

func TestFilterOptions(t *testing.T) {
	names := []string{"Horror", "Sci-Fi", "Documentary", "Comedy"}

	assert.Equal(t, []int{0, 1, 2, 3}, FilterOptions("", names))
	assert.Equal(t, []int{1}, FilterOptions("scifi", names))

	got := FilterOptions("o", names)
	assert.Len(t, got, 3)
	assert.NotContains(t, got, 1)

	assert.Empty(t, FilterOptions("zzz", names))
}
