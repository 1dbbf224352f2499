package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/watchlog/internal/domain"
)

// Color palette
var (
	Amber      = lipgloss.Color("#E5A00D")
	SlateDark  = lipgloss.Color("#1F2937")
	SlateLight = lipgloss.Color("#374151")
	DimGray    = lipgloss.Color("#6B7280")
	LightGray  = lipgloss.Color("#9CA3AF")
	White      = lipgloss.Color("#F9FAFB")
	Green      = lipgloss.Color("#10B981")
	Red        = lipgloss.Color("#EF4444")
	Blue       = lipgloss.Color("#3B82F6")
)

// Text styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(LightGray)

	DimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	AccentStyle = lipgloss.NewStyle().
			Foreground(Amber)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Green)

	InfoStyle = lipgloss.NewStyle().
			Foreground(Blue)
)

// Raw watch status characters (unstyled)
const (
	NotStartedChar = "●"
	InProgressChar = "◐"
	CompletedChar  = "✓"
	AbandonedChar  = "✗"
)

// Watch status indicator styles
var (
	NotStartedStyle = lipgloss.NewStyle().Foreground(Amber)
	InProgressStyle = lipgloss.NewStyle().Foreground(Amber)
	CompletedStyle  = lipgloss.NewStyle().Foreground(Green)
	AbandonedStyle  = lipgloss.NewStyle().Foreground(DimGray)
)

// Panel styles
var (
	PageStyle = lipgloss.NewStyle().
			Padding(1, 2)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(White).
			Background(SlateDark).
			Padding(0, 1)
)

// List item styles
var (
	SelectedItemStyle = lipgloss.NewStyle().
				Foreground(White).
				Background(SlateLight)

	NormalItemStyle = lipgloss.NewStyle().
			Foreground(LightGray)

	PendingItemStyle = lipgloss.NewStyle().
				Foreground(DimGray).
				Italic(true)
)

// Modal styles
var (
	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Amber).
			Padding(1, 2)

	ModalTitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true).
			MarginBottom(1)

	FieldLabelStyle = lipgloss.NewStyle().
			Foreground(LightGray).
			Width(14)

	FocusedLabelStyle = lipgloss.NewStyle().
				Foreground(Amber).
				Bold(true).
				Width(14)
)

// Help styles
var (
	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(Amber)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(DimGray)
)

// Progress bar styles
var (
	ProgressFullStyle = lipgloss.NewStyle().
				Foreground(Amber)

	ProgressEmptyStyle = lipgloss.NewStyle().
				Foreground(DimGray)
)

// Badge styles
var (
	BadgeStyle = lipgloss.NewStyle().
			Foreground(White).
			Background(Amber).
			Padding(0, 1)

	DimBadgeStyle = lipgloss.NewStyle().
			Foreground(LightGray).
			Background(SlateLight).
			Padding(0, 1)
)

// Filter styles
var (
	FilterPromptStyle = lipgloss.NewStyle().
				Foreground(Amber).
				Bold(true)
)

// Spinner frames for loading indicators
var SpinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Helper functions

// Truncate truncates a string to the given display width with ellipsis
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	if width <= 3 {
		return string(runes[:min(width, len(runes))])
	}
	for len(runes) > 0 && lipgloss.Width(string(runes))+3 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}

// RenderProgressBar renders a progress bar
func RenderProgressBar(percent float64, width int) string {
	if width < 3 {
		return ""
	}

	filled := min(int(float64(width)*percent/100), width)
	return ProgressFullStyle.Render(strings.Repeat("█", filled)) +
		ProgressEmptyStyle.Render(strings.Repeat("░", width-filled))
}

// RenderWatchStatus renders the watch status indicator
func RenderWatchStatus(status domain.WatchStatus) string {
	switch domain.StatusKindOf(status) {
	case domain.StatusInProgress:
		return InProgressStyle.Render(InProgressChar)
	case domain.StatusCompleted:
		return CompletedStyle.Render(CompletedChar)
	case domain.StatusAbandoned:
		return AbandonedStyle.Render(AbandonedChar)
	default:
		return NotStartedStyle.Render(NotStartedChar)
	}
}

// RenderRating renders a 1-5 personal rating as stars, dim when unset
func RenderRating(rating *int) string {
	if rating == nil {
		return DimStyle.Render("·····")
	}
	r := max(0, min(*rating, 5))
	return AccentStyle.Render(strings.Repeat("★", r)) + DimStyle.Render(strings.Repeat("☆", 5-r))
}

// RenderTag renders a tag badge in its own color when it has one
func RenderTag(tag domain.Tag) string {
	if tag.Color == "" {
		return DimBadgeStyle.Render(tag.Name)
	}
	return BadgeStyle.Background(lipgloss.Color(tag.Color)).Render(tag.Name)
}

// RenderHelp renders "key desc" pairs on one line
func RenderHelp(pairs ...string) string {
	var parts []string
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, HelpKeyStyle.Render(pairs[i])+" "+HelpDescStyle.Render(pairs[i+1]))
	}
	return strings.Join(parts, HelpDescStyle.Render(" • "))
}
