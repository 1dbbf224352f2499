package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the application
type KeyMap struct {
	// Navigation
	Up        key.Binding
	Down      key.Binding
	Enter     key.Binding
	Back      key.Binding
	Home      key.Binding
	End       key.Binding
	Library   key.Binding
	Friends   key.Binding
	Tags      key.Binding
	NextField key.Binding
	PrevField key.Binding

	// Library
	Filter        key.Binding
	StatusFilter  key.Binding
	Sort          key.Binding
	SortDirection key.Binding
	ClearFilters  key.Binding
	Add           key.Binding
	Refresh       key.Binding

	// Entry actions
	MarkCompleted key.Binding
	MarkUnwatched key.Binding
	StartWatching key.Binding
	Resume        key.Binding
	Abandon       key.Binding
	Favorite      key.Binding
	Rate          key.Binding
	ClearRating   key.Binding
	ToggleEpisode key.Binding
	MarkSeason    key.Binding
	PickTags      key.Binding
	PickFriends   key.Binding

	// Records
	Edit   key.Binding
	Delete key.Binding

	// Actions
	Quit   key.Binding
	Help   key.Binding
	Escape key.Binding

	// Confirmations
	Confirm key.Binding
	Deny    key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		// Navigation
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open/submit"),
		),
		Back: key.NewBinding(
			key.WithKeys("h", "left", "backspace"),
			key.WithHelp("h/←", "back"),
		),
		Home: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "go to top"),
		),
		End: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "go to bottom"),
		),
		Library: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "library"),
		),
		Friends: key.NewBinding(
			key.WithKeys("N"),
			key.WithHelp("N", "friends"),
		),
		Tags: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "tags"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("S-tab", "previous field"),
		),

		// Library
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		StatusFilter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "status filter"),
		),
		Sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort"),
		),
		SortDirection: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "reverse sort"),
		),
		ClearFilters: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "clear filters"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),

		// Entry actions
		MarkCompleted: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "mark completed"),
		),
		MarkUnwatched: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "mark unwatched"),
		),
		StartWatching: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "start watching"),
		),
		Resume: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "resume"),
		),
		Abandon: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "abandon"),
		),
		Favorite: key.NewBinding(
			key.WithKeys("*"),
			key.WithHelp("*", "favorite"),
		),
		Rate: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5"),
			key.WithHelp("1-5", "rate"),
		),
		ClearRating: key.NewBinding(
			key.WithKeys("0"),
			key.WithHelp("0", "clear rating"),
		),
		ToggleEpisode: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "toggle"),
		),
		MarkSeason: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mark season watched"),
		),
		PickTags: key.NewBinding(
			key.WithKeys("t", "ctrl+t"),
			key.WithHelp("t", "tags"),
		),
		PickFriends: key.NewBinding(
			key.WithKeys("n", "ctrl+n"),
			key.WithHelp("n", "friends"),
		),

		// Records
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "delete"),
		),

		// Actions
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel/clear"),
		),

		// Confirmations
		Confirm: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "confirm"),
		),
		Deny: key.NewBinding(
			key.WithKeys("n", "N", "esc"),
			key.WithHelp("n/esc", "cancel"),
		),
	}
}

// Keys is the global key bindings instance
var Keys = DefaultKeyMap()
