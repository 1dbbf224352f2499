// Package tui is the Bubble Tea front end. It renders app.State and turns
// key presses into app intents; all state changes go through app.Core.
package tui

import (
	"log/slog"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/watchlog/internal/app"
	"github.com/mmcdole/watchlog/internal/tui/components"
	"github.com/mmcdole/watchlog/internal/tui/styles"
	"github.com/mmcdole/watchlog/internal/workflow"
)

// pickTarget says which intent a picker toggle turns into
type pickTarget int

const (
	pickTagFilter pickTarget = iota
	pickEntryTags
	pickEntryFriends
	pickQuickAddTags
	pickQuickAddFriends
)

// Model is the main Bubble Tea model for the application
type Model struct {
	core   *app.Core
	keys   KeyMap
	logger *slog.Logger

	// Dimensions
	Width  int
	Height int
	Ready  bool

	// Cursors are view-only; they are clamped after every dispatch
	cursor       int // row on the library, friends and tags pages
	entryCursor  int // episode row on the entry page
	searchCursor int // result row in the search workflow

	filtering   bool
	filterInput textinput.Model

	// Workflow text fields
	fieldInput   textinput.Model
	field        int
	openWorkflow *workflow.Kind

	picker     components.Picker
	pickTarget pickTarget

	showHelp bool
}

// NewModel creates a new application model around core
func NewModel(core *app.Core, logger *slog.Logger) Model {
	if logger == nil {
		logger = slog.Default()
	}

	filter := textinput.New()
	filter.Prompt = "/ "
	filter.PromptStyle = styles.FilterPromptStyle
	filter.Placeholder = "filter titles"
	filter.PlaceholderStyle = styles.DimStyle
	filter.CharLimit = 80

	field := textinput.New()
	field.Prompt = ""
	field.CharLimit = 200
	field.Width = 40
	field.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	field.PlaceholderStyle = styles.DimStyle

	return Model{
		core:        core,
		keys:        Keys,
		logger:      logger,
		filterInput: filter,
		fieldInput:  field,
		picker:      components.NewPicker(),
	}
}

// Init loads the initial data
func (m Model) Init() tea.Cmd {
	return m.core.Dispatch(app.Init{})
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case app.Intent:
		return m.dispatch(msg)
	}

	// Cursor blink and other input housekeeping
	var cmd tea.Cmd
	if m.filtering {
		m.filterInput, cmd = m.filterInput.Update(msg)
	} else if m.openWorkflow != nil {
		m.fieldInput, cmd = m.fieldInput.Update(msg)
	}
	return m, cmd
}

// dispatch runs an intent through the core and resyncs view-local state
func (m Model) dispatch(in app.Intent) (Model, tea.Cmd) {
	cmd := m.core.Dispatch(in)
	m.syncWorkflow()
	m.refreshPicker()
	m.clampCursors()
	return m, cmd
}

// dispatchAll applies several intents in order and batches their effects
func (m Model) dispatchAll(ins ...app.Intent) (Model, tea.Cmd) {
	var cmds []tea.Cmd
	for _, in := range ins {
		var cmd tea.Cmd
		m, cmd = m.dispatch(in)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// syncWorkflow focuses the first field when a different workflow opens and
// blurs the input when the workflow closes
func (m *Model) syncWorkflow() {
	w := m.core.State().Workflow
	if w == nil {
		if m.openWorkflow != nil {
			m.openWorkflow = nil
			m.fieldInput.Blur()
			if m.pickTarget == pickQuickAddTags || m.pickTarget == pickQuickAddFriends {
				m.picker.Hide()
			}
		}
		return
	}

	kind := w.Kind()
	if m.openWorkflow != nil && *m.openWorkflow == kind {
		return
	}
	m.openWorkflow = &kind
	m.field = 0
	m.searchCursor = 0
	m.loadField(w)
}

// loadField copies the focused field's value into the text input
func (m *Model) loadField(w workflow.Workflow) {
	fields := workflow.Fields(w)
	if len(fields) == 0 {
		m.fieldInput.Blur()
		return
	}
	m.field = ((m.field % len(fields)) + len(fields)) % len(fields)
	m.fieldInput.SetValue(workflow.Value(w, fields[m.field]))
	m.fieldInput.Placeholder = fieldLabel(fields[m.field])
	m.fieldInput.CursorEnd()
	m.fieldInput.Focus()
}

func (m *Model) clampCursors() {
	s := m.core.State()
	clamp := func(v, n int) int { return max(0, min(v, n-1)) }

	switch page := s.Page.(type) {
	case app.LibraryPage:
		m.cursor = clamp(m.cursor, len(s.VisibleEntries()))
	case app.FriendsPage:
		m.cursor = clamp(m.cursor, len(s.Friends.GetOrDefault(nil)))
	case app.TagsPage:
		m.cursor = clamp(m.cursor, len(s.Tags.GetOrDefault(nil)))
	case app.EntryPage:
		m.entryCursor = clamp(m.entryCursor, len(episodeRows(s, page.ID)))
	}
	m.searchCursor = clamp(m.searchCursor, len(s.Search.GetOrDefault(nil)))
}

// View renders the application
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	s := m.core.State()
	body := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(s),
		m.renderPage(s),
	)
	body = styles.PageStyle.Render(body)

	footer := m.renderFooter(s)
	bodyHeight := max(0, m.Height-lipgloss.Height(footer))
	body = lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(body)

	if overlay := m.renderOverlay(s); overlay != "" {
		body = lipgloss.Place(m.Width, bodyHeight, lipgloss.Center, lipgloss.Center, overlay)
	}

	return lipgloss.JoinVertical(lipgloss.Left, body, footer)
}
