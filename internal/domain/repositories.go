package domain

import "context"

// LibraryClient provides network access to the user's library
type LibraryClient interface {
	// FetchLibrary returns every entry in the library
	FetchLibrary(ctx context.Context) ([]LibraryEntry, error)

	// FetchEntryDetail returns the detail payload for one entry
	FetchEntryDetail(ctx context.Context, id EntryID) (EntryDetail, error)

	// AddEntry creates an entry from a search selection
	AddEntry(ctx context.Context, entry NewEntry) (LibraryEntry, error)

	// UpdateEntry applies an in-place edit and returns the stored entry
	UpdateEntry(ctx context.Context, id EntryID, patch EntryPatch) (LibraryEntry, error)

	// SetWatchStatus persists a status transition and returns the stored entry
	SetWatchStatus(ctx context.Context, id EntryID, status WatchStatus) (LibraryEntry, error)

	// DeleteEntry removes an entry and its episode progress
	DeleteEntry(ctx context.Context, id EntryID) error
}

// EpisodeClient provides network access to per-episode progress
type EpisodeClient interface {
	// FetchEpisodeProgress returns all progress records for a series entry
	FetchEpisodeProgress(ctx context.Context, id EntryID) ([]EpisodeProgress, error)

	// ToggleEpisode sets one episode's watched flag and returns the full set
	ToggleEpisode(ctx context.Context, id EntryID, season, episode int, watched bool) ([]EpisodeProgress, error)

	// MarkSeason marks every episode of a season watched and returns the full set
	MarkSeason(ctx context.Context, id EntryID, season int) ([]EpisodeProgress, error)
}

// FriendClient provides CRUD access to friends
type FriendClient interface {
	FetchFriends(ctx context.Context) ([]Friend, error)
	AddFriend(ctx context.Context, input FriendInput) (Friend, error)
	UpdateFriend(ctx context.Context, id FriendID, input FriendInput) (Friend, error)
	DeleteFriend(ctx context.Context, id FriendID) error
}

// TagClient provides CRUD access to tags
type TagClient interface {
	FetchTags(ctx context.Context) ([]Tag, error)
	AddTag(ctx context.Context, input TagInput) (Tag, error)
	UpdateTag(ctx context.Context, id TagID, input TagInput) (Tag, error)
	DeleteTag(ctx context.Context, id TagID) error
}

// HealthClient reports backend liveness
type HealthClient interface {
	Health(ctx context.Context) (Health, error)
}
