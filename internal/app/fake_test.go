package app

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/watchlog/internal/domain"
)

// fakeBackend is an in-memory domain.Backend that records calls
type fakeBackend struct {
	mu sync.Mutex

	entries  []domain.LibraryEntry
	episodes map[domain.EntryID][]domain.EpisodeProgress
	friends  []domain.Friend
	tags     []domain.Tag
	results  []domain.SearchResult
	nextID   int64

	searches []string
	calls    []string

	// errs maps a call name to the error it should return
	errs map[string]error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		episodes: map[domain.EntryID][]domain.EpisodeProgress{},
		errs:     map[string]error{},
		nextID:   100,
	}
}

func (f *fakeBackend) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.errs[call]
}

func (f *fakeBackend) count(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeBackend) find(id domain.EntryID) int {
	return slices.IndexFunc(f.entries, func(e domain.LibraryEntry) bool { return e.ID == id })
}

func (f *fakeBackend) FetchLibrary(context.Context) ([]domain.LibraryEntry, error) {
	if err := f.record("FetchLibrary"); err != nil {
		return nil, err
	}
	return slices.Clone(f.entries), nil
}

func (f *fakeBackend) FetchEntryDetail(_ context.Context, id domain.EntryID) (domain.EntryDetail, error) {
	if err := f.record("FetchEntryDetail"); err != nil {
		return domain.EntryDetail{}, err
	}
	return domain.EntryDetail{EntryID: id}, nil
}

func (f *fakeBackend) AddEntry(_ context.Context, in domain.NewEntry) (domain.LibraryEntry, error) {
	if err := f.record("AddEntry"); err != nil {
		return domain.LibraryEntry{}, err
	}
	f.nextID++
	entry := domain.LibraryEntry{
		ID:        domain.EntryID(f.nextID),
		Media:     &domain.Movie{Title: in.Selection.Title},
		Status:    domain.NotStarted{},
		Tags:      in.Tags,
		Friends:   in.Friends,
		Notes:     in.Note,
		DateAdded: time.Now(),
	}
	f.entries = append(f.entries, entry)
	return entry, nil
}

func (f *fakeBackend) UpdateEntry(_ context.Context, id domain.EntryID, patch domain.EntryPatch) (domain.LibraryEntry, error) {
	if err := f.record("UpdateEntry"); err != nil {
		return domain.LibraryEntry{}, err
	}
	i := f.find(id)
	if i < 0 {
		return domain.LibraryEntry{}, domain.ErrEntryNotFound
	}
	e := f.entries[i]
	if patch.IsFavorite != nil {
		e.IsFavorite = *patch.IsFavorite
	}
	if patch.Tags != nil {
		e.Tags = *patch.Tags
	}
	if patch.Friends != nil {
		e.Friends = *patch.Friends
	}
	if patch.PersonalRating != nil {
		e.PersonalRating = patch.PersonalRating
	}
	if patch.ClearRating {
		e.PersonalRating = nil
	}
	f.entries[i] = e
	return e, nil
}

func (f *fakeBackend) SetWatchStatus(_ context.Context, id domain.EntryID, status domain.WatchStatus) (domain.LibraryEntry, error) {
	if err := f.record("SetWatchStatus"); err != nil {
		return domain.LibraryEntry{}, err
	}
	i := f.find(id)
	if i < 0 {
		return domain.LibraryEntry{}, domain.ErrEntryNotFound
	}
	f.entries[i].Status = status
	return f.entries[i], nil
}

func (f *fakeBackend) DeleteEntry(_ context.Context, id domain.EntryID) error {
	if err := f.record("DeleteEntry"); err != nil {
		return err
	}
	f.entries = slices.DeleteFunc(f.entries, func(e domain.LibraryEntry) bool { return e.ID == id })
	return nil
}

func (f *fakeBackend) FetchEpisodeProgress(_ context.Context, id domain.EntryID) ([]domain.EpisodeProgress, error) {
	if err := f.record("FetchEpisodeProgress"); err != nil {
		return nil, err
	}
	return slices.Clone(f.episodes[id]), nil
}

func (f *fakeBackend) ToggleEpisode(_ context.Context, id domain.EntryID, season, episode int, watched bool) ([]domain.EpisodeProgress, error) {
	if err := f.record("ToggleEpisode"); err != nil {
		return nil, err
	}
	eps := f.episodes[id]
	key := domain.EpisodeKey{Season: season, Episode: episode}
	if i := slices.IndexFunc(eps, func(p domain.EpisodeProgress) bool { return p.Key() == key }); i >= 0 {
		eps[i].Watched = watched
	} else {
		eps = append(eps, domain.EpisodeProgress{EntryID: id, Season: season, Episode: episode, Watched: watched})
	}
	f.episodes[id] = eps
	return slices.Clone(eps), nil
}

func (f *fakeBackend) MarkSeason(_ context.Context, id domain.EntryID, season int) ([]domain.EpisodeProgress, error) {
	if err := f.record("MarkSeason"); err != nil {
		return nil, err
	}
	return slices.Clone(f.episodes[id]), nil
}

func (f *fakeBackend) FetchFriends(context.Context) ([]domain.Friend, error) {
	if err := f.record("FetchFriends"); err != nil {
		return nil, err
	}
	return slices.Clone(f.friends), nil
}

func (f *fakeBackend) AddFriend(_ context.Context, in domain.FriendInput) (domain.Friend, error) {
	if err := f.record("AddFriend"); err != nil {
		return domain.Friend{}, err
	}
	f.nextID++
	friend := domain.Friend{ID: domain.FriendID(f.nextID), Name: in.Name}
	f.friends = append(f.friends, friend)
	return friend, nil
}

func (f *fakeBackend) UpdateFriend(_ context.Context, id domain.FriendID, in domain.FriendInput) (domain.Friend, error) {
	if err := f.record("UpdateFriend"); err != nil {
		return domain.Friend{}, err
	}
	return domain.Friend{ID: id, Name: in.Name}, nil
}

func (f *fakeBackend) DeleteFriend(context.Context, domain.FriendID) error {
	return f.record("DeleteFriend")
}

func (f *fakeBackend) FetchTags(context.Context) ([]domain.Tag, error) {
	if err := f.record("FetchTags"); err != nil {
		return nil, err
	}
	return slices.Clone(f.tags), nil
}

func (f *fakeBackend) AddTag(_ context.Context, in domain.TagInput) (domain.Tag, error) {
	if err := f.record("AddTag"); err != nil {
		return domain.Tag{}, err
	}
	f.nextID++
	return domain.Tag{ID: domain.TagID(f.nextID), Name: in.Name, Color: in.Color}, nil
}

func (f *fakeBackend) UpdateTag(_ context.Context, id domain.TagID, in domain.TagInput) (domain.Tag, error) {
	if err := f.record("UpdateTag"); err != nil {
		return domain.Tag{}, err
	}
	return domain.Tag{ID: id, Name: in.Name, Color: in.Color}, nil
}

func (f *fakeBackend) DeleteTag(context.Context, domain.TagID) error {
	return f.record("DeleteTag")
}

func (f *fakeBackend) SearchTitles(_ context.Context, query string) ([]domain.SearchResult, error) {
	if err := f.record("SearchTitles"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.searches = append(f.searches, query)
	f.mu.Unlock()
	return slices.Clone(f.results), nil
}

func (f *fakeBackend) Health(context.Context) (domain.Health, error) {
	if err := f.record("Health"); err != nil {
		return domain.Health{}, err
	}
	return domain.Health{Status: "ok", Version: "test"}, nil
}

// memPrefs is an in-memory domain.PrefsStore
type memPrefs struct {
	mu    sync.Mutex
	prefs *domain.Prefs
	saves int
}

func (m *memPrefs) LoadPrefs() (domain.Prefs, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.prefs == nil {
		return domain.Prefs{}, false
	}
	return *m.prefs, true
}

func (m *memPrefs) SavePrefs(p domain.Prefs) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs = &p
	m.saves++
	return nil
}

func (m *memPrefs) Close() error { return nil }

// immediateTick fires without waiting
func immediateTick(_ time.Duration, fn func(time.Time) tea.Msg) tea.Cmd {
	return func() tea.Msg { return fn(time.Time{}) }
}

func servicesFor(b *fakeBackend) Services {
	return Services{Library: b, Episodes: b, Friends: b, Tags: b, Search: b, Health: b}
}

func newTestCore(b *fakeBackend, prefs domain.PrefsStore) *Core {
	svc := servicesFor(b)
	svc.Prefs = prefs
	return New(svc, Options{
		Tick:   immediateTick,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

// collect runs cmd and every batched sub-command, returning the messages
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	switch m := msg.(type) {
	case nil:
		return nil
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range m {
			out = append(out, collect(c)...)
		}
		return out
	default:
		return []tea.Msg{msg}
	}
}

// settle dispatches every completion produced by cmd until nothing is left.
// Notification expiries are held back so tests can inspect notifications.
func settle(t *testing.T, c *Core, cmd tea.Cmd) []NotificationExpired {
	t.Helper()
	var expired []NotificationExpired
	queue := collect(cmd)
	for len(queue) > 0 {
		msg := queue[0]
		queue = queue[1:]
		if e, ok := msg.(NotificationExpired); ok {
			expired = append(expired, e)
			continue
		}
		in, ok := msg.(Intent)
		if !ok {
			t.Fatalf("effect produced non-intent %T", msg)
		}
		queue = append(queue, collect(c.Dispatch(in))...)
	}
	return expired
}

func (m *memPrefs) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
