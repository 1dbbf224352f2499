package app

import (
	"github.com/mmcdole/watchlog/internal/debounce"
	"github.com/mmcdole/watchlog/internal/domain"
	"github.com/mmcdole/watchlog/internal/library"
	"github.com/mmcdole/watchlog/internal/remote"
	"github.com/mmcdole/watchlog/internal/workflow"
)

// Intent is anything Reduce accepts: user actions and effect completions.
// The set is closed to this package.
type Intent interface {
	isIntent()
}

// Loading and navigation

// Init requests every top-level resource
type Init struct{}

// RefreshLibrary refetches the library
type RefreshLibrary struct{}

// RefreshFriends refetches friends
type RefreshFriends struct{}

// RefreshTags refetches tags
type RefreshTags struct{}

// CheckHealth refetches backend health
type CheckHealth struct{}

// RefreshEntry refetches one entry's detail and episode progress
type RefreshEntry struct {
	ID domain.EntryID
}

// Navigate switches the main page
type Navigate struct {
	Page Page
}

// Library filters

type SetFilterText struct {
	Text string
}

type SetStatusFilter struct {
	Filter library.StatusFilter
}

type ToggleTagFilter struct {
	ID domain.TagID
}

type SetMinRating struct {
	Rating *int
}

// SetSortKey switches the key and resets the direction to the key's default
type SetSortKey struct {
	Key library.SortKey
}

type ToggleSortDirection struct{}

type ClearFilters struct{}

// Workflows

type OpenSearch struct{}

// OpenQuickAdd starts adding a search result
type OpenQuickAdd struct {
	Item domain.SearchResult
}

// OpenFriendForm creates a friend, or edits Editing when set
type OpenFriendForm struct {
	Editing *domain.Friend
}

// OpenTagForm creates a tag, or edits Editing when set
type OpenTagForm struct {
	Editing *domain.Tag
}

type OpenAbandon struct {
	ID domain.EntryID
}

type OpenConfirmDelete struct {
	Target workflow.DeleteTarget
}

type CloseWorkflow struct{}

// EditField sets a text field on the active workflow
type EditField struct {
	Field workflow.Field
	Value string
}

type ToggleQuickAddTag struct {
	ID domain.TagID
}

type ToggleQuickAddFriend struct {
	ID domain.FriendID
}

type SubmitWorkflow struct{}

// Entry mutations

type MarkCompleted struct {
	ID domain.EntryID
}

type MarkUnwatched struct {
	ID domain.EntryID
}

type Resume struct {
	ID domain.EntryID
}

type StartWatching struct {
	ID domain.EntryID
}

type ToggleFavorite struct {
	ID domain.EntryID
}

// SetRating sets the personal rating; nil clears it
type SetRating struct {
	ID     domain.EntryID
	Rating *int
}

type ToggleEntryTag struct {
	ID  domain.EntryID
	Tag domain.TagID
}

type ToggleEntryFriend struct {
	ID     domain.EntryID
	Friend domain.FriendID
}

type ToggleEpisode struct {
	ID  domain.EntryID
	Key domain.EpisodeKey
}

type MarkSeasonWatched struct {
	ID     domain.EntryID
	Season int
}

type DismissNotification struct{}

// Effect completions

type LibraryLoaded struct {
	Seq     remote.Seq
	Entries []domain.LibraryEntry
	Err     error
}

type FriendsLoaded struct {
	Seq     remote.Seq
	Friends []domain.Friend
	Err     error
}

type TagsLoaded struct {
	Seq  remote.Seq
	Tags []domain.Tag
	Err  error
}

type HealthLoaded struct {
	Seq    remote.Seq
	Health domain.Health
	Err    error
}

type SearchLoaded struct {
	Seq     remote.Seq
	Query   string
	Results []domain.SearchResult
	Err     error
}

type DetailLoaded struct {
	ID     domain.EntryID
	Seq    remote.Seq
	Detail domain.EntryDetail
	Err    error
}

type EpisodesLoaded struct {
	ID       domain.EntryID
	Seq      remote.Seq
	Episodes []domain.EpisodeProgress
	Err      error
}

// SearchQuiet fires when the search input has been idle for the debounce period
type SearchQuiet struct {
	debounce.Elapsed[string]
}

// PrefsQuiet fires when filters and page have been unchanged for the save delay
type PrefsQuiet struct {
	debounce.Elapsed[domain.Prefs]
}

// NotificationExpired clears the notification it was scheduled for
type NotificationExpired struct {
	Seq uint64
}

// EntryUpdated carries the server's copy of an entry after a mutation
type EntryUpdated struct {
	ID     domain.EntryID
	Entry  domain.LibraryEntry
	Action string
	Err    error
}

// EpisodesUpdated carries the server's episode set after a toggle or batch
type EpisodesUpdated struct {
	ID       domain.EntryID
	Episodes []domain.EpisodeProgress
	Err      error
}

// Workflow completions carry the generation of the workflow that submitted.

type EntryAdded struct {
	Gen   uint64
	Entry domain.LibraryEntry
	Err   error
}

type EntryAbandoned struct {
	Gen   uint64
	Entry domain.LibraryEntry
	Err   error
}

type FriendSaved struct {
	Gen     uint64
	Created bool
	Friend  domain.Friend
	Err     error
}

type TagSaved struct {
	Gen     uint64
	Created bool
	Tag     domain.Tag
	Err     error
}

type Deleted struct {
	Gen    uint64
	Target workflow.DeleteTarget
	Err    error
}

func (Init) isIntent()                 {}
func (RefreshLibrary) isIntent()       {}
func (RefreshFriends) isIntent()       {}
func (RefreshTags) isIntent()          {}
func (CheckHealth) isIntent()          {}
func (RefreshEntry) isIntent()         {}
func (Navigate) isIntent()             {}
func (SetFilterText) isIntent()        {}
func (SetStatusFilter) isIntent()      {}
func (ToggleTagFilter) isIntent()      {}
func (SetMinRating) isIntent()         {}
func (SetSortKey) isIntent()           {}
func (ToggleSortDirection) isIntent()  {}
func (ClearFilters) isIntent()         {}
func (OpenSearch) isIntent()           {}
func (OpenQuickAdd) isIntent()         {}
func (OpenFriendForm) isIntent()       {}
func (OpenTagForm) isIntent()          {}
func (OpenAbandon) isIntent()          {}
func (OpenConfirmDelete) isIntent()    {}
func (CloseWorkflow) isIntent()        {}
func (EditField) isIntent()            {}
func (ToggleQuickAddTag) isIntent()    {}
func (ToggleQuickAddFriend) isIntent() {}
func (SubmitWorkflow) isIntent()       {}
func (MarkCompleted) isIntent()        {}
func (MarkUnwatched) isIntent()        {}
func (Resume) isIntent()               {}
func (StartWatching) isIntent()        {}
func (ToggleFavorite) isIntent()       {}
func (SetRating) isIntent()            {}
func (ToggleEntryTag) isIntent()       {}
func (ToggleEntryFriend) isIntent()    {}
func (ToggleEpisode) isIntent()        {}
func (MarkSeasonWatched) isIntent()    {}
func (DismissNotification) isIntent()  {}
func (LibraryLoaded) isIntent()        {}
func (FriendsLoaded) isIntent()        {}
func (TagsLoaded) isIntent()           {}
func (HealthLoaded) isIntent()         {}
func (SearchLoaded) isIntent()         {}
func (DetailLoaded) isIntent()         {}
func (EpisodesLoaded) isIntent()       {}
func (SearchQuiet) isIntent()          {}
func (PrefsQuiet) isIntent()           {}
func (NotificationExpired) isIntent()  {}
func (EntryUpdated) isIntent()         {}
func (EpisodesUpdated) isIntent()      {}
func (EntryAdded) isIntent()           {}
func (EntryAbandoned) isIntent()       {}
func (FriendSaved) isIntent()          {}
func (TagSaved) isIntent()             {}
func (Deleted) isIntent()              {}
