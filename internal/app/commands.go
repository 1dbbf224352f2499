package app

import (
	"context"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/watchlog/internal/domain"
	"github.com/mmcdole/watchlog/internal/remote"
	"github.com/mmcdole/watchlog/internal/workflow"
)

// Command factories for async operations. Each returns the completion intent
// for Reduce, success or failure.

func fetchLibraryCmd(svc domain.LibraryClient, timeout time.Duration, seq remote.Seq) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		entries, err := svc.FetchLibrary(ctx)
		return LibraryLoaded{Seq: seq, Entries: entries, Err: err}
	}
}

func fetchFriendsCmd(svc domain.FriendClient, timeout time.Duration, seq remote.Seq) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		friends, err := svc.FetchFriends(ctx)
		return FriendsLoaded{Seq: seq, Friends: friends, Err: err}
	}
}

func fetchTagsCmd(svc domain.TagClient, timeout time.Duration, seq remote.Seq) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		tags, err := svc.FetchTags(ctx)
		return TagsLoaded{Seq: seq, Tags: tags, Err: err}
	}
}

func fetchHealthCmd(svc domain.HealthClient, timeout time.Duration, seq remote.Seq) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		h, err := svc.Health(ctx)
		return HealthLoaded{Seq: seq, Health: h, Err: err}
	}
}

func searchCmd(svc domain.SearchClient, timeout time.Duration, seq remote.Seq, query string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		results, err := svc.SearchTitles(ctx, query)
		return SearchLoaded{Seq: seq, Query: query, Results: results, Err: err}
	}
}

func fetchDetailCmd(svc domain.LibraryClient, timeout time.Duration, id domain.EntryID, seq remote.Seq) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		detail, err := svc.FetchEntryDetail(ctx, id)
		return DetailLoaded{ID: id, Seq: seq, Detail: detail, Err: err}
	}
}

func fetchEpisodesCmd(svc domain.EpisodeClient, timeout time.Duration, id domain.EntryID, seq remote.Seq) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		episodes, err := svc.FetchEpisodeProgress(ctx, id)
		return EpisodesLoaded{ID: id, Seq: seq, Episodes: episodes, Err: err}
	}
}

func setStatusCmd(svc domain.LibraryClient, timeout time.Duration, id domain.EntryID, status domain.WatchStatus, action string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		entry, err := svc.SetWatchStatus(ctx, id, status)
		return EntryUpdated{ID: id, Entry: entry, Action: action, Err: err}
	}
}

func updateEntryCmd(svc domain.LibraryClient, timeout time.Duration, id domain.EntryID, patch domain.EntryPatch, action string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		entry, err := svc.UpdateEntry(ctx, id, patch)
		return EntryUpdated{ID: id, Entry: entry, Action: action, Err: err}
	}
}

func toggleEpisodeCmd(svc domain.EpisodeClient, timeout time.Duration, id domain.EntryID, key domain.EpisodeKey, watched bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		episodes, err := svc.ToggleEpisode(ctx, id, key.Season, key.Episode, watched)
		return EpisodesUpdated{ID: id, Episodes: episodes, Err: err}
	}
}

func markSeasonCmd(svc domain.EpisodeClient, timeout time.Duration, id domain.EntryID, season int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		episodes, err := svc.MarkSeason(ctx, id, season)
		return EpisodesUpdated{ID: id, Episodes: episodes, Err: err}
	}
}

func addEntryCmd(svc domain.LibraryClient, timeout time.Duration, gen uint64, entry domain.NewEntry) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		added, err := svc.AddEntry(ctx, entry)
		return EntryAdded{Gen: gen, Entry: added, Err: err}
	}
}

func abandonCmd(svc domain.LibraryClient, timeout time.Duration, gen uint64, id domain.EntryID, status domain.WatchStatus) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		entry, err := svc.SetWatchStatus(ctx, id, status)
		return EntryAbandoned{Gen: gen, Entry: entry, Err: err}
	}
}

func saveFriendCmd(svc domain.FriendClient, timeout time.Duration, gen uint64, editing *domain.FriendID, input domain.FriendInput) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if editing != nil {
			f, err := svc.UpdateFriend(ctx, *editing, input)
			return FriendSaved{Gen: gen, Friend: f, Err: err}
		}
		f, err := svc.AddFriend(ctx, input)
		return FriendSaved{Gen: gen, Created: true, Friend: f, Err: err}
	}
}

func saveTagCmd(svc domain.TagClient, timeout time.Duration, gen uint64, editing *domain.TagID, input domain.TagInput) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if editing != nil {
			t, err := svc.UpdateTag(ctx, *editing, input)
			return TagSaved{Gen: gen, Tag: t, Err: err}
		}
		t, err := svc.AddTag(ctx, input)
		return TagSaved{Gen: gen, Created: true, Tag: t, Err: err}
	}
}

func deleteCmd(svc Services, timeout time.Duration, gen uint64, target workflow.DeleteTarget) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		var err error
		switch target.Kind {
		case workflow.TargetEntry:
			err = svc.Library.DeleteEntry(ctx, domain.EntryID(target.ID))
		case workflow.TargetFriend:
			err = svc.Friends.DeleteFriend(ctx, domain.FriendID(target.ID))
		case workflow.TargetTag:
			err = svc.Tags.DeleteTag(ctx, domain.TagID(target.ID))
		}
		return Deleted{Gen: gen, Target: target, Err: err}
	}
}

// savePrefsCmd persists prefs off the update loop. Failures are logged only.
func savePrefsCmd(store domain.PrefsStore, prefs domain.Prefs, logger *slog.Logger) tea.Cmd {
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		if err := store.SavePrefs(prefs); err != nil {
			logger.Error("failed to save preferences", "error", err)
		}
		return nil
	}
}

// mapCmd converts the message produced by cmd
func mapCmd(cmd tea.Cmd, f func(tea.Msg) tea.Msg) tea.Cmd {
	if cmd == nil {
		return nil
	}
	return func() tea.Msg {
		return f(cmd())
	}
}
