package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/watchlog/internal/tui/styles"
	"github.com/mmcdole/watchlog/internal/workflow"
)

// PickerOption is one selectable row
type PickerOption struct {
	ID       int64
	Label    string
	Selected bool
}

// Picker is a multi-select popup with a fuzzy filter line. It only reports
// toggles; selection state is owned by the caller and passed back through
// SetOptions.
type Picker struct {
	visible bool
	title   string
	options []PickerOption
	matches []int // indices into options, filter order
	cursor  int
	input   textinput.Model
}

// NewPicker creates a new picker
func NewPicker() Picker {
	ti := textinput.New()
	ti.Placeholder = "filter..."
	ti.CharLimit = 40
	ti.Width = 30
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.PlaceholderStyle = styles.DimStyle

	return Picker{input: ti}
}

// Show displays the picker with a title and options
func (p *Picker) Show(title string, options []PickerOption) {
	p.visible = true
	p.title = title
	p.cursor = 0
	p.input.SetValue("")
	p.input.Focus()
	p.SetOptions(options)
}

// Hide dismisses the picker
func (p *Picker) Hide() {
	p.visible = false
	p.input.Blur()
}

// IsVisible returns whether the picker is shown
func (p Picker) IsVisible() bool {
	return p.visible
}

// SetOptions replaces the options, keeping the filter and clamping the cursor
func (p *Picker) SetOptions(options []PickerOption) {
	p.options = options
	p.refilter()
}

func (p *Picker) refilter() {
	names := make([]string, len(p.options))
	for i, o := range p.options {
		names[i] = o.Label
	}
	p.matches = workflow.FilterOptions(p.input.Value(), names)
	p.cursor = max(0, min(p.cursor, len(p.matches)-1))
}

// Update handles input events. toggled is the option ID the user toggled,
// if any; closed reports that the picker was dismissed.
func (p Picker) Update(msg tea.Msg) (picker Picker, cmd tea.Cmd, toggled *int64, closed bool) {
	if !p.visible {
		return p, nil, nil, false
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			p.Hide()
			return p, nil, nil, true
		case "up", "ctrl+k":
			if p.cursor > 0 {
				p.cursor--
			}
			return p, nil, nil, false
		case "down", "ctrl+j":
			if p.cursor < len(p.matches)-1 {
				p.cursor++
			}
			return p, nil, nil, false
		case "enter", " ":
			if len(p.matches) == 0 {
				return p, nil, nil, false
			}
			id := p.options[p.matches[p.cursor]].ID
			return p, nil, &id, false
		}
	}

	before := p.input.Value()
	p.input, cmd = p.input.Update(msg)
	if p.input.Value() != before {
		p.cursor = 0
		p.refilter()
	}
	return p, cmd, nil, false
}

// View renders the picker
func (p Picker) View() string {
	if !p.visible {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.ModalTitleStyle.Render(p.title))
	b.WriteString("\n")
	b.WriteString(p.input.View())
	b.WriteString("\n\n")

	if len(p.options) == 0 {
		b.WriteString(styles.DimStyle.Render("nothing to pick yet"))
	} else if len(p.matches) == 0 {
		b.WriteString(styles.DimStyle.Render("no matches"))
	}
	for row, idx := range p.matches {
		opt := p.options[idx]
		mark := "[ ]"
		if opt.Selected {
			mark = styles.SuccessStyle.Render("[x]")
		}
		line := mark + " " + opt.Label
		if row == p.cursor {
			line = styles.SelectedItemStyle.Render(line)
		} else {
			line = styles.NormalItemStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.RenderHelp("space", "toggle", "esc", "done"))
	return styles.ModalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, b.String()))
}
