package app

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/watchlog/internal/debounce"
	"github.com/mmcdole/watchlog/internal/domain"
	"github.com/mmcdole/watchlog/internal/library"
	"github.com/mmcdole/watchlog/internal/remote"
	"github.com/mmcdole/watchlog/internal/workflow"
)

// Reduce applies one intent. It never blocks and never touches the network;
// all I/O happens in the returned command.
func Reduce(s State, in Intent, deps Deps) (State, tea.Cmd) {
	switch in := in.(type) {
	case Init:
		return initialize(s, deps)
	case RefreshLibrary:
		return requestLibrary(s, deps)
	case RefreshFriends:
		return requestFriends(s, deps)
	case RefreshTags:
		return requestTags(s, deps)
	case CheckHealth:
		return requestHealth(s, deps)
	case RefreshEntry:
		return requestEntry(s, in.ID, true, deps)
	case Navigate:
		return navigate(s, in.Page, deps)

	case SetFilterText:
		s.Filters.SearchText = in.Text
		return persistPrefs(s, deps)
	case SetStatusFilter:
		s.Filters.Status = in.Filter
		return persistPrefs(s, deps)
	case ToggleTagFilter:
		s.Filters = s.Filters.ToggleTag(in.ID)
		return persistPrefs(s, deps)
	case SetMinRating:
		s.Filters.MinRating = in.Rating
		return persistPrefs(s, deps)
	case SetSortKey:
		s.Filters = s.Filters.WithSortKey(in.Key)
		return persistPrefs(s, deps)
	case ToggleSortDirection:
		s.Filters.SortDir = s.Filters.SortDir.Toggle()
		return persistPrefs(s, deps)
	case ClearFilters:
		cleared := library.DefaultFilters().WithSortKey(s.Filters.SortKey)
		cleared.SortDir = s.Filters.SortDir
		s.Filters = cleared
		return persistPrefs(s, deps)

	case OpenSearch, OpenQuickAdd, OpenFriendForm, OpenTagForm, OpenAbandon, OpenConfirmDelete:
		return openWorkflow(s, in, deps)
	case CloseWorkflow:
		return closeWorkflow(s, deps)
	case EditField:
		return editField(s, in, deps)
	case ToggleQuickAddTag:
		if w, ok := s.Workflow.(workflow.QuickAdd); ok && !w.Submitting {
			s.Workflow = w.ToggleTag(in.ID)
		}
		return s, nil
	case ToggleQuickAddFriend:
		if w, ok := s.Workflow.(workflow.QuickAdd); ok && !w.Submitting {
			s.Workflow = w.ToggleFriend(in.ID)
		}
		return s, nil
	case SubmitWorkflow:
		return submitWorkflow(s, deps)
	case SearchQuiet:
		return searchQuiet(s, in, deps)
	case PrefsQuiet:
		return prefsQuiet(s, in, deps)

	case MarkCompleted, MarkUnwatched, Resume, StartWatching:
		return transitionEntry(s, in, deps)
	case ToggleFavorite, SetRating, ToggleEntryTag, ToggleEntryFriend:
		return editEntry(s, in, deps)
	case ToggleEpisode:
		return toggleEpisode(s, in, deps)
	case MarkSeasonWatched:
		return markSeason(s, in, deps)

	case DismissNotification:
		s.Notification = nil
		return s, nil
	case NotificationExpired:
		if s.Notification != nil && s.Notification.seq == in.Seq {
			s.Notification = nil
		}
		return s, nil

	case LibraryLoaded:
		var applied bool
		s.Library, applied = s.Library.Resolve(in.Seq, in.Entries, in.Err)
		logResolve(deps, "library", applied, in.Err, len(in.Entries))
		return s, nil
	case FriendsLoaded:
		var applied bool
		s.Friends, applied = s.Friends.Resolve(in.Seq, in.Friends, in.Err)
		logResolve(deps, "friends", applied, in.Err, len(in.Friends))
		return s, nil
	case TagsLoaded:
		var applied bool
		s.Tags, applied = s.Tags.Resolve(in.Seq, in.Tags, in.Err)
		logResolve(deps, "tags", applied, in.Err, len(in.Tags))
		return s, nil
	case HealthLoaded:
		var applied bool
		s.Health, applied = s.Health.Resolve(in.Seq, in.Health, in.Err)
		logResolve(deps, "health", applied, in.Err, 1)
		return s, nil
	case SearchLoaded:
		var applied bool
		s.Search, applied = s.Search.Resolve(in.Seq, in.Results, in.Err)
		logResolve(deps, "search", applied, in.Err, len(in.Results))
		return s, nil
	case DetailLoaded:
		r, applied := s.Details[in.ID].Resolve(in.Seq, in.Detail, in.Err)
		logResolve(deps, "detail", applied, in.Err, 1)
		if applied {
			s = s.withDetail(in.ID, r)
		}
		return s, nil
	case EpisodesLoaded:
		r, applied := s.Episodes[in.ID].Resolve(in.Seq, in.Episodes, in.Err)
		logResolve(deps, "episodes", applied, in.Err, len(in.Episodes))
		if applied {
			s = s.withEpisodes(in.ID, r)
		}
		return s, nil

	case EntryUpdated:
		return entryUpdated(s, in, deps)
	case EpisodesUpdated:
		return episodesUpdated(s, in, deps)
	case EntryAdded:
		return entryAdded(s, in, deps)
	case EntryAbandoned:
		return entryAbandoned(s, in, deps)
	case FriendSaved:
		return friendSaved(s, in, deps)
	case TagSaved:
		return tagSaved(s, in, deps)
	case Deleted:
		return deleted(s, in, deps)

	default:
		deps.Options.Logger.Warn("unhandled intent", "intent", in)
		return s, nil
	}
}

func logResolve(deps Deps, slot string, applied bool, err error, n int) {
	log := deps.Options.Logger
	switch {
	case !applied:
		log.Debug("discarded stale response", "slot", slot)
	case err != nil:
		log.Error("fetch failed", "slot", slot, "error", err)
	default:
		log.Debug("fetch complete", "slot", slot, "count", n)
	}
}

func initialize(s State, deps Deps) (State, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	s, cmd = requestLibrary(s, deps)
	cmds = append(cmds, cmd)
	s, cmd = requestFriends(s, deps)
	cmds = append(cmds, cmd)
	s, cmd = requestTags(s, deps)
	cmds = append(cmds, cmd)
	s, cmd = requestHealth(s, deps)
	cmds = append(cmds, cmd)

	return s, tea.Batch(cmds...)
}

func requestLibrary(s State, deps Deps) (State, tea.Cmd) {
	next, seq, ok := s.Library.Request()
	if !ok {
		return s, nil
	}
	s.Library = next
	return s, fetchLibraryCmd(deps.Services.Library, deps.Options.RequestTimeout, seq)
}

func requestFriends(s State, deps Deps) (State, tea.Cmd) {
	next, seq, ok := s.Friends.Request()
	if !ok {
		return s, nil
	}
	s.Friends = next
	return s, fetchFriendsCmd(deps.Services.Friends, deps.Options.RequestTimeout, seq)
}

func requestTags(s State, deps Deps) (State, tea.Cmd) {
	next, seq, ok := s.Tags.Request()
	if !ok {
		return s, nil
	}
	s.Tags = next
	return s, fetchTagsCmd(deps.Services.Tags, deps.Options.RequestTimeout, seq)
}

func requestHealth(s State, deps Deps) (State, tea.Cmd) {
	if deps.Services.Health == nil {
		return s, nil
	}
	next, seq, ok := s.Health.Request()
	if !ok {
		return s, nil
	}
	s.Health = next
	return s, fetchHealthCmd(deps.Services.Health, deps.Options.RequestTimeout, seq)
}

// requestEntry fetches detail, and episodes for series. Unless force is set,
// slots that already loaded are left alone.
func requestEntry(s State, id domain.EntryID, force bool, deps Deps) (State, tea.Cmd) {
	var cmds []tea.Cmd

	if d := s.Details[id]; force || needsFetch(d.Status()) {
		if next, seq, ok := d.Request(); ok {
			s = s.withDetail(id, next)
			cmds = append(cmds, fetchDetailCmd(deps.Services.Library, deps.Options.RequestTimeout, id, seq))
		}
	}

	entry, ok := s.Entry(id)
	if ok && entry.IsSeries() {
		if e := s.Episodes[id]; force || needsFetch(e.Status()) {
			if next, seq, ok := e.Request(); ok {
				s = s.withEpisodes(id, next)
				cmds = append(cmds, fetchEpisodesCmd(deps.Services.Episodes, deps.Options.RequestTimeout, id, seq))
			}
		}
	}

	return s, tea.Batch(cmds...)
}

func needsFetch(status remote.Status) bool {
	return status == remote.NotRequested || status == remote.Failure
}

func navigate(s State, page Page, deps Deps) (State, tea.Cmd) {
	if page == nil {
		page = LibraryPage{}
	}
	s.Page = page

	var cmd tea.Cmd
	switch p := page.(type) {
	case EntryPage:
		s, cmd = requestEntry(s, p.ID, false, deps)
		return s, cmd
	case FriendsPage:
		if needsFetch(s.Friends.Status()) {
			s, cmd = requestFriends(s, deps)
		}
	case TagsPage:
		if needsFetch(s.Tags.Status()) {
			s, cmd = requestTags(s, deps)
		}
	case LibraryPage:
		if needsFetch(s.Library.Status()) {
			s, cmd = requestLibrary(s, deps)
		}
	}
	var save tea.Cmd
	s, save = persistPrefs(s, deps)
	return s, tea.Batch(cmd, save)
}

// persistPrefs restarts the save delay with the current filters and page.
// Only the last snapshot of a burst is written, so saves never race.
func persistPrefs(s State, deps Deps) (State, tea.Cmd) {
	if deps.Services.Prefs == nil {
		return s, nil
	}
	var cmd tea.Cmd
	s.prefsTimer, cmd = s.prefsTimer.Trigger(s.prefs())
	return s, mapCmd(cmd, toPrefsQuiet)
}

func toPrefsQuiet(msg tea.Msg) tea.Msg {
	if elapsed, ok := msg.(debounce.Elapsed[domain.Prefs]); ok {
		return PrefsQuiet{Elapsed: elapsed}
	}
	return msg
}

func prefsQuiet(s State, in PrefsQuiet, deps Deps) (State, tea.Cmd) {
	var fire bool
	s.prefsTimer, fire = s.prefsTimer.Fire(in.Elapsed)
	if !fire || deps.Services.Prefs == nil {
		return s, nil
	}
	return s, savePrefsCmd(deps.Services.Prefs, in.Payload, deps.Options.Logger)
}

// notify replaces the notification and schedules its expiry
func notify(s State, kind NotificationKind, msg, hint string, deps Deps) (State, tea.Cmd) {
	s.notifySeq++
	seq := s.notifySeq
	s.Notification = &Notification{Kind: kind, Message: msg, Hint: hint, seq: seq}
	return s, deps.Options.Tick(deps.Options.NotificationTTL, func(time.Time) tea.Msg {
		return NotificationExpired{Seq: seq}
	})
}

func notifyError(s State, what string, err error, deps Deps) (State, tea.Cmd) {
	info := domain.ErrorInfoFrom(err)
	msg := info.Message
	if what != "" {
		msg = what + ": " + msg
	}
	return notify(s, NotifyError, msg, info.RetryHint, deps)
}

func searchQuiet(s State, in SearchQuiet, deps Deps) (State, tea.Cmd) {
	var fire bool
	s.searchTimer, fire = s.searchTimer.Fire(in.Elapsed)
	if !fire {
		return s, nil
	}
	query := strings.TrimSpace(in.Payload)
	if query == "" {
		return s, nil
	}
	s.Search = s.Search.Reload()
	deps.Options.Logger.Debug("searching", "query", query, "seq", s.Search.Seq())
	return s, searchCmd(deps.Services.Search, deps.Options.RequestTimeout, s.Search.Seq(), query)
}
