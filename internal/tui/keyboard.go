package tui

import (
	"slices"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/watchlog/internal/app"
	"github.com/mmcdole/watchlog/internal/domain"
	"github.com/mmcdole/watchlog/internal/library"
	"github.com/mmcdole/watchlog/internal/progress"
	"github.com/mmcdole/watchlog/internal/tui/components"
	"github.com/mmcdole/watchlog/internal/workflow"
)

// handleKeyMsg routes a key press to the layer that owns input:
// picker, then workflow, then filter line, then the page.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch {
	case m.picker.IsVisible():
		return m.handlePickerKey(msg)
	case m.core.State().Workflow != nil:
		return m.handleWorkflowKey(msg)
	case m.filtering:
		return m.handleFilterKey(msg)
	}

	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	return m.handlePageKey(msg)
}

func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	picker, cmd, toggled, _ := m.picker.Update(msg)
	m.picker = picker
	if toggled == nil {
		return m, cmd
	}

	s := m.core.State()
	var in app.Intent
	switch m.pickTarget {
	case pickTagFilter:
		in = app.ToggleTagFilter{ID: domain.TagID(*toggled)}
	case pickEntryTags:
		if id, ok := m.focusedEntry(s); ok {
			in = app.ToggleEntryTag{ID: id, Tag: domain.TagID(*toggled)}
		}
	case pickEntryFriends:
		if id, ok := m.focusedEntry(s); ok {
			in = app.ToggleEntryFriend{ID: id, Friend: domain.FriendID(*toggled)}
		}
	case pickQuickAddTags:
		in = app.ToggleQuickAddTag{ID: domain.TagID(*toggled)}
	case pickQuickAddFriends:
		in = app.ToggleQuickAddFriend{ID: domain.FriendID(*toggled)}
	}
	if in == nil {
		return m, cmd
	}

	next, effect := m.dispatch(in)
	return next, tea.Batch(cmd, effect)
}

func (m Model) handleWorkflowKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.core.State()
	w := s.Workflow

	if confirm, ok := w.(workflow.ConfirmDelete); ok {
		switch {
		case key.Matches(msg, m.keys.Confirm):
			return m.dispatch(app.SubmitWorkflow{})
		case key.Matches(msg, m.keys.Deny):
			return m.dispatch(app.CloseWorkflow{})
		case key.Matches(msg, m.keys.Enter) && confirm.Err != nil:
			return m.dispatch(app.SubmitWorkflow{})
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Escape):
		return m.dispatch(app.CloseWorkflow{})

	case key.Matches(msg, m.keys.NextField), key.Matches(msg, m.keys.PrevField):
		if key.Matches(msg, m.keys.NextField) {
			m.field++
		} else {
			m.field--
		}
		m.loadField(w)
		return m, nil

	case key.Matches(msg, m.keys.Enter):
		if _, ok := w.(workflow.Search); ok {
			results := s.Search.GetOrDefault(nil)
			if m.searchCursor < len(results) {
				return m.dispatch(app.OpenQuickAdd{Item: results[m.searchCursor]})
			}
			return m, nil
		}
		return m.dispatch(app.SubmitWorkflow{})
	}

	switch w.(type) {
	case workflow.Search:
		switch msg.String() {
		case "up", "ctrl+k":
			m.searchCursor = max(0, m.searchCursor-1)
			return m, nil
		case "down", "ctrl+j":
			m.searchCursor = min(m.searchCursor+1, max(0, min(len(s.Search.GetOrDefault(nil)), maxSearchRows)-1))
			return m, nil
		}
	case workflow.QuickAdd:
		switch msg.String() {
		case "ctrl+t":
			m.pickTarget = pickQuickAddTags
			m.picker.Show("Tags", m.pickerOptions(s))
			return m, nil
		case "ctrl+n":
			m.pickTarget = pickQuickAddFriends
			m.picker.Show("Friends", m.pickerOptions(s))
			return m, nil
		}
	}

	if workflow.IsSubmitting(w) {
		return m, nil
	}
	fields := workflow.Fields(w)
	if len(fields) == 0 {
		return m, nil
	}

	before := m.fieldInput.Value()
	var cmd tea.Cmd
	m.fieldInput, cmd = m.fieldInput.Update(msg)
	if value := m.fieldInput.Value(); value != before {
		next, effect := m.dispatch(app.EditField{Field: fields[m.field], Value: value})
		return next, tea.Batch(cmd, effect)
	}
	return m, cmd
}

func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.filtering = false
		m.filterInput.Blur()
		m.filterInput.SetValue("")
		return m.dispatch(app.SetFilterText{Text: ""})
	case key.Matches(msg, m.keys.Enter):
		m.filtering = false
		m.filterInput.Blur()
		return m, nil
	}

	before := m.filterInput.Value()
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	if value := m.filterInput.Value(); value != before {
		next, effect := m.dispatch(app.SetFilterText{Text: value})
		return next, tea.Batch(cmd, effect)
	}
	return m, cmd
}

func (m Model) handlePageKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.core.State()

	// Global keys
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.Library):
		m.cursor = 0
		return m.dispatch(app.Navigate{Page: app.LibraryPage{}})
	case key.Matches(msg, m.keys.Friends):
		m.cursor = 0
		return m.dispatch(app.Navigate{Page: app.FriendsPage{}})
	case key.Matches(msg, m.keys.Tags):
		m.cursor = 0
		return m.dispatch(app.Navigate{Page: app.TagsPage{}})
	case key.Matches(msg, m.keys.Escape) && s.Notification != nil:
		return m.dispatch(app.DismissNotification{})
	}

	switch page := s.Page.(type) {
	case app.LibraryPage:
		return m.handleLibraryKey(msg, s)
	case app.EntryPage:
		return m.handleEntryKey(msg, s, page.ID)
	case app.FriendsPage:
		return m.handleFriendsKey(msg, s)
	case app.TagsPage:
		return m.handleTagsKey(msg, s)
	}
	return m, nil
}

// moveCursor applies list navigation keys to *cursor over n rows
func (m Model) moveCursor(msg tea.KeyMsg, cursor *int, n int) bool {
	switch {
	case key.Matches(msg, m.keys.Up):
		*cursor = max(0, *cursor-1)
	case key.Matches(msg, m.keys.Down):
		*cursor = max(0, min(*cursor+1, n-1))
	case key.Matches(msg, m.keys.Home):
		*cursor = 0
	case key.Matches(msg, m.keys.End):
		*cursor = max(0, n-1)
	default:
		return false
	}
	return true
}

func (m Model) handleLibraryKey(msg tea.KeyMsg, s app.State) (tea.Model, tea.Cmd) {
	entries := s.VisibleEntries()
	if m.moveCursor(msg, &m.cursor, len(entries)) {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
		m.filterInput.SetValue(s.Filters.SearchText)
		m.filterInput.CursorEnd()
		return m, m.filterInput.Focus()
	case key.Matches(msg, m.keys.StatusFilter):
		return m.dispatch(app.SetStatusFilter{Filter: nextStatusFilter(s.Filters.Status)})
	case key.Matches(msg, m.keys.Sort):
		return m.dispatch(app.SetSortKey{Key: nextSortKey(s.Filters.SortKey)})
	case key.Matches(msg, m.keys.SortDirection):
		return m.dispatch(app.ToggleSortDirection{})
	case key.Matches(msg, m.keys.ClearFilters):
		m.filterInput.SetValue("")
		return m.dispatch(app.ClearFilters{})
	case key.Matches(msg, m.keys.PickTags):
		m.pickTarget = pickTagFilter
		m.picker.Show("Filter by tag", m.pickerOptions(s))
		return m, nil
	case key.Matches(msg, m.keys.Add):
		return m.dispatch(app.OpenSearch{})
	case key.Matches(msg, m.keys.Refresh):
		return m.dispatchAll(app.RefreshLibrary{}, app.RefreshTags{}, app.RefreshFriends{}, app.CheckHealth{})
	}

	if m.cursor >= len(entries) {
		return m, nil
	}
	entry := entries[m.cursor]

	switch {
	case key.Matches(msg, m.keys.Enter):
		m.entryCursor = 0
		return m.dispatch(app.Navigate{Page: app.EntryPage{ID: entry.ID}})
	case key.Matches(msg, m.keys.Delete):
		return m.dispatch(app.OpenConfirmDelete{Target: workflow.DeleteTarget{
			Kind: workflow.TargetEntry, ID: int64(entry.ID), Label: entry.Title(),
		}})
	}
	return m.handleEntryAction(msg, entry.ID)
}

// handleEntryAction maps the shared entry keys to intents
func (m Model) handleEntryAction(msg tea.KeyMsg, id domain.EntryID) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.MarkCompleted):
		return m.dispatch(app.MarkCompleted{ID: id})
	case key.Matches(msg, m.keys.MarkUnwatched):
		return m.dispatch(app.MarkUnwatched{ID: id})
	case key.Matches(msg, m.keys.StartWatching):
		return m.dispatch(app.StartWatching{ID: id})
	case key.Matches(msg, m.keys.Resume):
		return m.dispatch(app.Resume{ID: id})
	case key.Matches(msg, m.keys.Abandon):
		return m.dispatch(app.OpenAbandon{ID: id})
	case key.Matches(msg, m.keys.Favorite):
		return m.dispatch(app.ToggleFavorite{ID: id})
	case key.Matches(msg, m.keys.Rate):
		rating := int(msg.Runes[0] - '0')
		return m.dispatch(app.SetRating{ID: id, Rating: &rating})
	case key.Matches(msg, m.keys.ClearRating):
		return m.dispatch(app.SetRating{ID: id})
	}
	return m, nil
}

func (m Model) handleEntryKey(msg tea.KeyMsg, s app.State, id domain.EntryID) (tea.Model, tea.Cmd) {
	rows := episodeRows(s, id)
	if m.moveCursor(msg, &m.entryCursor, len(rows)) {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Escape):
		return m.dispatch(app.Navigate{Page: app.LibraryPage{}})
	case key.Matches(msg, m.keys.Refresh):
		return m.dispatch(app.RefreshEntry{ID: id})
	case key.Matches(msg, m.keys.PickTags):
		m.pickTarget = pickEntryTags
		m.picker.Show("Tags", m.pickerOptions(s))
		return m, nil
	case key.Matches(msg, m.keys.PickFriends):
		m.pickTarget = pickEntryFriends
		m.picker.Show("Friends", m.pickerOptions(s))
		return m, nil
	case key.Matches(msg, m.keys.Delete):
		if entry, ok := s.Entry(id); ok {
			return m.dispatch(app.OpenConfirmDelete{Target: workflow.DeleteTarget{
				Kind: workflow.TargetEntry, ID: int64(id), Label: entry.Title(),
			}})
		}
		return m, nil
	case key.Matches(msg, m.keys.ToggleEpisode):
		if m.entryCursor < len(rows) {
			return m.dispatch(app.ToggleEpisode{ID: id, Key: rows[m.entryCursor]})
		}
		return m, nil
	case key.Matches(msg, m.keys.MarkSeason):
		if m.entryCursor < len(rows) {
			return m.dispatch(app.MarkSeasonWatched{ID: id, Season: rows[m.entryCursor].Season})
		}
		return m, nil
	}
	return m.handleEntryAction(msg, id)
}

func (m Model) handleFriendsKey(msg tea.KeyMsg, s app.State) (tea.Model, tea.Cmd) {
	friends := s.Friends.GetOrDefault(nil)
	if m.moveCursor(msg, &m.cursor, len(friends)) {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Add):
		return m.dispatch(app.OpenFriendForm{})
	case key.Matches(msg, m.keys.Refresh):
		return m.dispatch(app.RefreshFriends{})
	}

	if m.cursor >= len(friends) {
		return m, nil
	}
	friend := friends[m.cursor]

	switch {
	case key.Matches(msg, m.keys.Edit), key.Matches(msg, m.keys.Enter):
		return m.dispatch(app.OpenFriendForm{Editing: &friend})
	case key.Matches(msg, m.keys.Delete):
		return m.dispatch(app.OpenConfirmDelete{Target: workflow.DeleteTarget{
			Kind: workflow.TargetFriend, ID: int64(friend.ID), Label: friend.Name,
		}})
	}
	return m, nil
}

func (m Model) handleTagsKey(msg tea.KeyMsg, s app.State) (tea.Model, tea.Cmd) {
	tags := s.Tags.GetOrDefault(nil)
	if m.moveCursor(msg, &m.cursor, len(tags)) {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Add):
		return m.dispatch(app.OpenTagForm{})
	case key.Matches(msg, m.keys.Refresh):
		return m.dispatch(app.RefreshTags{})
	}

	if m.cursor >= len(tags) {
		return m, nil
	}
	tag := tags[m.cursor]

	switch {
	case key.Matches(msg, m.keys.Enter):
		// Show the library narrowed to this tag
		var ins []app.Intent
		if !s.Filters.HasTag(tag.ID) {
			ins = append(ins, app.ToggleTagFilter{ID: tag.ID})
		}
		m.cursor = 0
		return m.dispatchAll(append(ins, app.Navigate{Page: app.LibraryPage{}})...)
	case key.Matches(msg, m.keys.Edit):
		return m.dispatch(app.OpenTagForm{Editing: &tag})
	case key.Matches(msg, m.keys.Delete):
		return m.dispatch(app.OpenConfirmDelete{Target: workflow.DeleteTarget{
			Kind: workflow.TargetTag, ID: int64(tag.ID), Label: tag.Name,
		}})
	}
	return m, nil
}

// focusedEntry returns the entry the page is acting on
func (m Model) focusedEntry(s app.State) (domain.EntryID, bool) {
	switch page := s.Page.(type) {
	case app.EntryPage:
		return page.ID, true
	case app.LibraryPage:
		entries := s.VisibleEntries()
		if m.cursor < len(entries) {
			return entries[m.cursor].ID, true
		}
	}
	return 0, false
}

// pickerOptions builds the picker rows for the current target from state
func (m Model) pickerOptions(s app.State) []components.PickerOption {
	tagOptions := func(selected func(domain.TagID) bool) []components.PickerOption {
		var out []components.PickerOption
		for _, t := range s.Tags.GetOrDefault(nil) {
			out = append(out, components.PickerOption{ID: int64(t.ID), Label: t.Name, Selected: selected(t.ID)})
		}
		return out
	}
	friendOptions := func(selected func(domain.FriendID) bool) []components.PickerOption {
		var out []components.PickerOption
		for _, f := range s.Friends.GetOrDefault(nil) {
			out = append(out, components.PickerOption{ID: int64(f.ID), Label: f.Name, Selected: selected(f.ID)})
		}
		return out
	}

	switch m.pickTarget {
	case pickTagFilter:
		return tagOptions(s.Filters.HasTag)
	case pickEntryTags, pickEntryFriends:
		id, _ := m.focusedEntry(s)
		entry, _ := s.Entry(id)
		if m.pickTarget == pickEntryTags {
			return tagOptions(entry.HasTag)
		}
		return friendOptions(entry.HasFriend)
	case pickQuickAddTags, pickQuickAddFriends:
		qa, _ := s.Workflow.(workflow.QuickAdd)
		if m.pickTarget == pickQuickAddTags {
			return tagOptions(func(id domain.TagID) bool { return slices.Contains(qa.Tags, id) })
		}
		return friendOptions(func(id domain.FriendID) bool { return slices.Contains(qa.Friends, id) })
	}
	return nil
}

// refreshPicker re-reads selection marks after a dispatch
func (m *Model) refreshPicker() {
	if m.picker.IsVisible() {
		m.picker.SetOptions(m.pickerOptions(m.core.State()))
	}
}

// episodeRows lists every episode of a series entry in season order
func episodeRows(s app.State, id domain.EntryID) []domain.EpisodeKey {
	var rows []domain.EpisodeKey
	for _, season := range s.Seasons(id) {
		for ep := 1; ep <= season.Total; ep++ {
			rows = append(rows, domain.EpisodeKey{Season: season.Season, Episode: ep})
		}
	}
	return rows
}

func nextStatusFilter(current library.StatusFilter) library.StatusFilter {
	options := library.StatusFilters()
	i := slices.Index(options, current)
	return options[(i+1)%len(options)]
}

func nextSortKey(current library.SortKey) library.SortKey {
	keys := library.SortKeys()
	i := slices.Index(keys, current)
	return keys[(i+1)%len(keys)]
}

func fieldLabel(f workflow.Field) string {
	switch f {
	case workflow.FieldQuery:
		return "Search"
	case workflow.FieldNote:
		return "Note"
	case workflow.FieldName:
		return "Name"
	case workflow.FieldColor:
		return "Color (#hex)"
	case workflow.FieldReason:
		return "Reason"
	case workflow.FieldStopSeason:
		return "Stopped season"
	case workflow.FieldStopEpisode:
		return "Stopped episode"
	default:
		return ""
	}
}

// actionKeys pairs each progress action with the key that triggers it
func (m Model) actionKeys(actions []progress.Action) []string {
	var pairs []string
	for _, a := range actions {
		var b key.Binding
		switch a {
		case progress.ActionMarkCompleted:
			b = m.keys.MarkCompleted
		case progress.ActionMarkUnwatched:
			b = m.keys.MarkUnwatched
		case progress.ActionAbandon:
			b = m.keys.Abandon
		case progress.ActionResume:
			b = m.keys.Resume
		case progress.ActionStartWatching:
			b = m.keys.StartWatching
		}
		pairs = append(pairs, b.Help().Key, a.String())
	}
	return pairs
}
