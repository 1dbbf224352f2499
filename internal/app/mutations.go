package app

import (
	"fmt"
	"slices"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/watchlog/internal/domain"
	"github.com/mmcdole/watchlog/internal/progress"
	"github.com/mmcdole/watchlog/internal/remote"
)

// Entry mutations outside workflows are pessimistic. The request goes out,
// the entry is marked pending, and the library only changes once the server
// returns the stored entity. Intents for a pending entry are dropped.

// mutable looks up an entry that is loaded and has no mutation in flight
func mutable(s State, id domain.EntryID, deps Deps) (domain.LibraryEntry, bool) {
	entry, ok := s.Entry(id)
	if !ok {
		return entry, false
	}
	if s.pending[id] {
		deps.Options.Logger.Debug("ignored mutation for pending entry", "entry", id)
		return entry, false
	}
	return entry, true
}

func transitionEntry(s State, in Intent, deps Deps) (State, tea.Cmd) {
	var (
		id     domain.EntryID
		status domain.WatchStatus
		err    error
		label  string
	)

	switch in := in.(type) {
	case MarkCompleted:
		id, label = in.ID, "marked completed"
		entry, ok := mutable(s, id, deps)
		if !ok {
			return s, nil
		}
		if entry.IsSeries() && s.Episodes[id].Status() != remote.Success {
			return awaitEpisodes(s, entry, deps)
		}
		status, err = progress.MarkCompleted(entry, s.Episodes[id].GetOrDefault(nil))
	case MarkUnwatched:
		id, label = in.ID, "marked unwatched"
		entry, ok := mutable(s, id, deps)
		if !ok {
			return s, nil
		}
		status, err = progress.MarkUnwatched(entry)
	case Resume:
		id, label = in.ID, "resumed"
		entry, ok := mutable(s, id, deps)
		if !ok {
			return s, nil
		}
		status, err = progress.Resume(entry)
	case StartWatching:
		id, label = in.ID, "started"
		entry, ok := mutable(s, id, deps)
		if !ok {
			return s, nil
		}
		var season, episode *int
		if entry.IsSeries() {
			var detail *domain.EntryDetail
			if d, ok := s.Details[id].Value(); ok {
				detail = &d
			}
			if next, ok := progress.NextEpisode(entry, s.Episodes[id].GetOrDefault(nil), detail); ok {
				season, episode = &next.Season, &next.Episode
			}
		}
		status, err = progress.StartWatching(entry, season, episode)
	default:
		return s, nil
	}

	if err != nil {
		deps.Options.Logger.Debug("rejected transition", "entry", id, "error", err)
		return notify(s, NotifyError, err.Error(), "", deps)
	}

	s = s.withPending(id, true)
	return s, setStatusCmd(deps.Services.Library, deps.Options.RequestTimeout, id, status, label)
}

// awaitEpisodes loads a series' episode progress before completion can be
// checked against it
func awaitEpisodes(s State, entry domain.LibraryEntry, deps Deps) (State, tea.Cmd) {
	var fetch tea.Cmd
	if e := s.Episodes[entry.ID]; needsFetch(e.Status()) {
		if next, seq, ok := e.Request(); ok {
			s = s.withEpisodes(entry.ID, next)
			fetch = fetchEpisodesCmd(deps.Services.Episodes, deps.Options.RequestTimeout, entry.ID, seq)
		}
	}
	s, cmd := notify(s, NotifyInfo, fmt.Sprintf("Loading episode progress for %s, try again in a moment", entry.Title()), "", deps)
	return s, tea.Batch(fetch, cmd)
}

func editEntry(s State, in Intent, deps Deps) (State, tea.Cmd) {
	var (
		id    domain.EntryID
		patch domain.EntryPatch
	)

	switch in := in.(type) {
	case ToggleFavorite:
		id = in.ID
		entry, ok := mutable(s, id, deps)
		if !ok {
			return s, nil
		}
		fav := !entry.IsFavorite
		patch.IsFavorite = &fav
	case SetRating:
		id = in.ID
		if _, ok := mutable(s, id, deps); !ok {
			return s, nil
		}
		if in.Rating == nil {
			patch.ClearRating = true
			break
		}
		if *in.Rating < 1 || *in.Rating > 5 {
			return notify(s, NotifyError, "Rating must be between 1 and 5", "", deps)
		}
		rating := *in.Rating
		patch.PersonalRating = &rating
	case ToggleEntryTag:
		id = in.ID
		entry, ok := mutable(s, id, deps)
		if !ok {
			return s, nil
		}
		tags := toggleID(entry.Tags, in.Tag)
		patch.Tags = &tags
	case ToggleEntryFriend:
		id = in.ID
		entry, ok := mutable(s, id, deps)
		if !ok {
			return s, nil
		}
		friends := toggleID(entry.Friends, in.Friend)
		patch.Friends = &friends
	default:
		return s, nil
	}

	s = s.withPending(id, true)
	return s, updateEntryCmd(deps.Services.Library, deps.Options.RequestTimeout, id, patch, "")
}

func toggleEpisode(s State, in ToggleEpisode, deps Deps) (State, tea.Cmd) {
	entry, ok := mutable(s, in.ID, deps)
	if !ok {
		return s, nil
	}
	if !entry.IsSeries() {
		return notifyError(s, "", domain.ErrNotASeries, deps)
	}
	watched := !progress.IsWatched(s.Episodes[in.ID].GetOrDefault(nil), in.Key)

	s = s.withPending(in.ID, true)
	return s, toggleEpisodeCmd(deps.Services.Episodes, deps.Options.RequestTimeout, in.ID, in.Key, watched)
}

func markSeason(s State, in MarkSeasonWatched, deps Deps) (State, tea.Cmd) {
	entry, ok := mutable(s, in.ID, deps)
	if !ok {
		return s, nil
	}
	if !entry.IsSeries() {
		return notifyError(s, "", domain.ErrNotASeries, deps)
	}

	s = s.withPending(in.ID, true)
	return s, markSeasonCmd(deps.Services.Episodes, deps.Options.RequestTimeout, in.ID, in.Season)
}

func entryUpdated(s State, in EntryUpdated, deps Deps) (State, tea.Cmd) {
	s = s.withPending(in.ID, false)
	if in.Err != nil {
		deps.Options.Logger.Error("entry update failed", "entry", in.ID, "error", in.Err)
		return notifyError(s, "Update failed", in.Err, deps)
	}

	s.Library = s.Library.Patch(func(entries []domain.LibraryEntry) []domain.LibraryEntry {
		return replaceEntry(entries, in.Entry)
	})
	if in.Action == "" {
		return s, nil
	}
	return notify(s, NotifySuccess, fmt.Sprintf("%s %s", in.Entry.Title(), in.Action), "", deps)
}

func episodesUpdated(s State, in EpisodesUpdated, deps Deps) (State, tea.Cmd) {
	s = s.withPending(in.ID, false)
	if in.Err != nil {
		deps.Options.Logger.Error("episode update failed", "entry", in.ID, "error", in.Err)
		return notifyError(s, "Episode update failed", in.Err, deps)
	}
	if _, ok := s.Entry(in.ID); !ok {
		return s, nil
	}

	episodes := in.Episodes
	s = s.withEpisodes(in.ID, s.Episodes[in.ID].Patch(func([]domain.EpisodeProgress) []domain.EpisodeProgress {
		return episodes
	}))
	return s, nil
}

func toggleID[T comparable](ids []T, id T) []T {
	if i := slices.Index(ids, id); i >= 0 {
		return slices.Delete(slices.Clone(ids), i, i+1)
	}
	return append(slices.Clone(ids), id)
}
