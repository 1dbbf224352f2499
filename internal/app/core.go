// Package app owns the client state and the single reducer that updates it.
//
// User actions and effect completions are both Intents. Reduce applies one
// intent to a State and returns the next State plus the effects to run. Effects
// are tea.Cmds; whatever they return is dispatched back as another Intent.
package app

import (
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/watchlog/internal/debounce"
	"github.com/mmcdole/watchlog/internal/domain"
	"github.com/mmcdole/watchlog/internal/library"
)

// Services is the backend surface the reducer's effects call into.
// Prefs is optional.
type Services struct {
	Library  domain.LibraryClient
	Episodes domain.EpisodeClient
	Friends  domain.FriendClient
	Tags     domain.TagClient
	Search   domain.SearchClient
	Health   domain.HealthClient
	Prefs    domain.PrefsStore
}

// Options tune timing and logging
type Options struct {
	SearchDebounce  time.Duration
	NotificationTTL time.Duration
	RequestTimeout  time.Duration
	DefaultSort     library.SortKey
	Tick            debounce.TickFunc // nil uses tea.Tick
	Logger          *slog.Logger
}

const (
	defaultNotificationTTL = 4 * time.Second
	defaultRequestTimeout  = 30 * time.Second

	// prefsSaveDelay coalesces bursts of filter edits into one write
	prefsSaveDelay = 500 * time.Millisecond
)

func (o Options) withDefaults() Options {
	if o.SearchDebounce <= 0 {
		o.SearchDebounce = debounce.DefaultDelay
	}
	if o.NotificationTTL <= 0 {
		o.NotificationTTL = defaultNotificationTTL
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = defaultRequestTimeout
	}
	if o.Tick == nil {
		o.Tick = tea.Tick
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Deps are the collaborators Reduce needs besides the state
type Deps struct {
	Services Services
	Options  Options
}

// Core owns one State and serializes intents into it. It must only be used
// from the Bubble Tea update loop.
type Core struct {
	state State
	deps  Deps
}

// New builds a Core, restoring saved filters and page when a prefs store is
// configured.
func New(svc Services, opts Options) *Core {
	opts = opts.withDefaults()

	filters := library.DefaultFilters().WithSortKey(opts.DefaultSort)
	var page Page = LibraryPage{}
	if svc.Prefs != nil {
		if prefs, ok := svc.Prefs.LoadPrefs(); ok {
			filters = library.FiltersFromPrefs(prefs)
			page = PageFromName(prefs.LastPage)
		}
	}

	timer := debounce.New[string](opts.SearchDebounce).WithTick(opts.Tick)
	state := NewState(filters, page, timer)
	state.prefsTimer = debounce.New[domain.Prefs](prefsSaveDelay).WithTick(opts.Tick)
	return &Core{
		state: state,
		deps:  Deps{Services: svc, Options: opts},
	}
}

// State returns a snapshot of the current state
func (c *Core) State() State {
	return c.state
}

// Dispatch applies an intent and returns the effects it scheduled
func (c *Core) Dispatch(in Intent) tea.Cmd {
	next, cmd := Reduce(c.state, in, c.deps)
	c.state = next
	return cmd
}

// FlushPrefs writes a preferences change that is still waiting for its save
// delay. Call it after the program exits so the last edit is not lost.
func (c *Core) FlushPrefs() error {
	store := c.deps.Services.Prefs
	if store == nil || !c.state.prefsTimer.Pending() {
		return nil
	}
	c.state.prefsTimer = c.state.prefsTimer.Cancel()
	return store.SavePrefs(c.state.prefs())
}
