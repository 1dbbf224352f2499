package app

import (
	"maps"

	"github.com/mmcdole/watchlog/internal/debounce"
	"github.com/mmcdole/watchlog/internal/domain"
	"github.com/mmcdole/watchlog/internal/library"
	"github.com/mmcdole/watchlog/internal/progress"
	"github.com/mmcdole/watchlog/internal/remote"
	"github.com/mmcdole/watchlog/internal/workflow"
)

// Page selects the main view. The set is closed: LibraryPage, EntryPage,
// FriendsPage, TagsPage.
type Page interface {
	Name() string
	isPage()
}

// LibraryPage lists the filtered library
type LibraryPage struct{}

// EntryPage shows one entry with its detail and episode progress
type EntryPage struct {
	ID domain.EntryID
}

// FriendsPage lists friends
type FriendsPage struct{}

// TagsPage lists tags
type TagsPage struct{}

func (LibraryPage) Name() string { return "library" }
func (EntryPage) Name() string   { return "entry" }
func (FriendsPage) Name() string { return "friends" }
func (TagsPage) Name() string    { return "tags" }

func (LibraryPage) isPage() {}
func (EntryPage) isPage()   {}
func (FriendsPage) isPage() {}
func (TagsPage) isPage()    {}

// PageFromName restores a top-level page saved in prefs. Entry pages are not
// restored since the entry may be gone.
func PageFromName(name string) Page {
	switch name {
	case "friends":
		return FriendsPage{}
	case "tags":
		return TagsPage{}
	default:
		return LibraryPage{}
	}
}

// NotificationKind styles a notification
type NotificationKind int

const (
	NotifySuccess NotificationKind = iota
	NotifyError
	NotifyInfo
)

// Notification is a transient message that expires on its own
type Notification struct {
	Kind    NotificationKind
	Message string
	Hint    string
	seq     uint64
}

// State is the whole client state. It is a value: Reduce returns a new State
// and never modifies the maps of the one it was given.
type State struct {
	Library remote.Resource[[]domain.LibraryEntry]
	Friends remote.Resource[[]domain.Friend]
	Tags    remote.Resource[[]domain.Tag]
	Search  remote.Resource[[]domain.SearchResult]
	Health  remote.Resource[domain.Health]

	// Per-entry slots, fetched lazily when an entry page opens
	Details  map[domain.EntryID]remote.Resource[domain.EntryDetail]
	Episodes map[domain.EntryID]remote.Resource[[]domain.EpisodeProgress]

	Filters      library.Filters
	Page         Page
	Workflow     workflow.Workflow
	Notification *Notification

	workflowGen uint64
	notifySeq   uint64
	searchTimer debounce.Timer[string]
	prefsTimer  debounce.Timer[domain.Prefs]
	pending     map[domain.EntryID]bool
}

// NewState returns the initial state with every resource NotRequested
func NewState(filters library.Filters, page Page, searchDelay debounce.Timer[string]) State {
	if page == nil {
		page = LibraryPage{}
	}
	return State{
		Details:     map[domain.EntryID]remote.Resource[domain.EntryDetail]{},
		Episodes:    map[domain.EntryID]remote.Resource[[]domain.EpisodeProgress]{},
		Filters:     filters,
		Page:        page,
		searchTimer: searchDelay,
		pending:     map[domain.EntryID]bool{},
	}
}

// VisibleEntries returns the library filtered and sorted by the current filters
func (s State) VisibleEntries() []domain.LibraryEntry {
	return library.Apply(s.Filters, s.Library.GetOrDefault(nil))
}

// Counts returns per-status tallies over the whole library
func (s State) Counts() library.StatusCounts {
	return library.Counts(s.Library.GetOrDefault(nil))
}

// prefs snapshots the settings that survive a restart
func (s State) prefs() domain.Prefs {
	prefs := s.Filters.ToPrefs(domain.Prefs{})
	prefs.LastPage = s.Page.Name()
	return prefs
}

// Entry looks up a loaded entry by id
func (s State) Entry(id domain.EntryID) (domain.LibraryEntry, bool) {
	for _, e := range s.Library.GetOrDefault(nil) {
		if e.ID == id {
			return e, true
		}
	}
	return domain.LibraryEntry{}, false
}

// Detail returns the detail slot for an entry
func (s State) Detail(id domain.EntryID) remote.Resource[domain.EntryDetail] {
	return s.Details[id]
}

// EpisodeProgress returns the episode slot for an entry
func (s State) EpisodeProgress(id domain.EntryID) remote.Resource[[]domain.EpisodeProgress] {
	return s.Episodes[id]
}

// Actions returns the watch actions offered for an entry
func (s State) Actions(id domain.EntryID) []progress.Action {
	entry, ok := s.Entry(id)
	if !ok {
		return nil
	}
	return progress.AvailableActions(entry, s.Episodes[id].GetOrDefault(nil))
}

// Seasons returns per-season progress for a series entry
func (s State) Seasons(id domain.EntryID) []progress.SeasonProgress {
	entry, ok := s.Entry(id)
	if !ok || !entry.IsSeries() {
		return nil
	}
	var detail *domain.EntryDetail
	if d, ok := s.Details[id].Value(); ok {
		detail = &d
	}
	return progress.Seasons(entry, s.Episodes[id].GetOrDefault(nil), detail)
}

// IsPending reports whether a mutation for the entry is in flight
func (s State) IsPending(id domain.EntryID) bool {
	return s.pending[id]
}

// FriendName resolves a friend id for display
func (s State) FriendName(id domain.FriendID) string {
	for _, f := range s.Friends.GetOrDefault(nil) {
		if f.ID == id {
			return f.Name
		}
	}
	return ""
}

// Tag resolves a tag id for display
func (s State) Tag(id domain.TagID) (domain.Tag, bool) {
	for _, t := range s.Tags.GetOrDefault(nil) {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Tag{}, false
}

// SearchPending reports whether a debounced search is waiting to fire
func (s State) SearchPending() bool {
	return s.searchTimer.Pending()
}

func (s State) withDetail(id domain.EntryID, r remote.Resource[domain.EntryDetail]) State {
	s.Details = maps.Clone(s.Details)
	if s.Details == nil {
		s.Details = map[domain.EntryID]remote.Resource[domain.EntryDetail]{}
	}
	s.Details[id] = r
	return s
}

func (s State) withEpisodes(id domain.EntryID, r remote.Resource[[]domain.EpisodeProgress]) State {
	s.Episodes = maps.Clone(s.Episodes)
	if s.Episodes == nil {
		s.Episodes = map[domain.EntryID]remote.Resource[[]domain.EpisodeProgress]{}
	}
	s.Episodes[id] = r
	return s
}

func (s State) withoutEntry(id domain.EntryID) State {
	s.Details = maps.Clone(s.Details)
	delete(s.Details, id)
	s.Episodes = maps.Clone(s.Episodes)
	delete(s.Episodes, id)
	return s
}

func (s State) withPending(id domain.EntryID, on bool) State {
	s.pending = maps.Clone(s.pending)
	if s.pending == nil {
		s.pending = map[domain.EntryID]bool{}
	}
	if on {
		s.pending[id] = true
	} else {
		delete(s.pending, id)
	}
	return s
}
