package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/watchlog/internal/app"
	"github.com/mmcdole/watchlog/internal/domain"
	"github.com/mmcdole/watchlog/internal/library"
	"github.com/mmcdole/watchlog/internal/progress"
	"github.com/mmcdole/watchlog/internal/remote"
	"github.com/mmcdole/watchlog/internal/tui/styles"
	"github.com/mmcdole/watchlog/internal/workflow"
)

func (m Model) renderHeader(s app.State) string {
	tabs := []struct {
		label string
		page  app.Page
	}{
		{"Library", app.LibraryPage{}},
		{"Friends", app.FriendsPage{}},
		{"Tags", app.TagsPage{}},
	}

	var parts []string
	for _, t := range tabs {
		active := t.page.Name() == s.Page.Name() ||
			(t.page.Name() == "library" && s.Page.Name() == "entry")
		if active {
			parts = append(parts, styles.BadgeStyle.Render(t.label))
		} else {
			parts = append(parts, styles.DimBadgeStyle.Render(t.label))
		}
	}

	health := styles.DimStyle.Render("○ connecting")
	if h, ok := s.Health.Value(); ok {
		if h.OK() {
			health = styles.SuccessStyle.Render("● online")
		} else {
			health = styles.ErrorStyle.Render("● " + h.Status)
		}
	} else if _, failed := s.Health.Err(); failed {
		health = styles.ErrorStyle.Render("● offline")
	}

	return lipgloss.JoinHorizontal(lipgloss.Center, strings.Join(parts, " "), "  ", health) + "\n"
}

func (m Model) renderPage(s app.State) string {
	switch page := s.Page.(type) {
	case app.EntryPage:
		return m.renderEntry(s, page.ID)
	case app.FriendsPage:
		return m.renderFriends(s)
	case app.TagsPage:
		return m.renderTags(s)
	default:
		return m.renderLibrary(s)
	}
}

// renderResourceState renders the placeholder for a resource without data
func renderResourceState[T any](r remote.Resource[T], what string) (string, bool) {
	switch r.Status() {
	case remote.Success:
		return "", false
	case remote.Failure:
		info, _ := r.Err()
		msg := styles.ErrorStyle.Render(fmt.Sprintf("Could not load %s: %s", what, info.Message))
		if info.RetryHint != "" {
			msg += "\n" + styles.DimStyle.Render(info.RetryHint+" (r to retry)")
		}
		return msg, true
	default:
		return styles.DimStyle.Render("Loading " + what + "..."), true
	}
}

func (m Model) renderLibrary(s app.State) string {
	if placeholder, ok := renderResourceState(s.Library, "library"); ok {
		return placeholder
	}

	var b strings.Builder
	b.WriteString(m.renderFilterBar(s))
	b.WriteString("\n\n")

	entries := s.VisibleEntries()
	if len(entries) == 0 {
		if s.Counts().Total() == 0 {
			b.WriteString(styles.DimStyle.Render("Your library is empty. Press a to add something."))
		} else {
			b.WriteString(styles.DimStyle.Render("No entries match the current filters."))
		}
		return b.String()
	}

	// Keep the cursor row on screen
	visible := max(1, m.Height-10)
	start := max(0, min(m.cursor-visible/2, len(entries)-visible))
	end := min(len(entries), start+visible)

	titleWidth := max(10, m.Width-40)
	for i := start; i < end; i++ {
		e := entries[i]
		fav := " "
		if e.IsFavorite {
			fav = styles.AccentStyle.Render("♥")
		}
		year := ""
		if y := e.Year(); y > 0 {
			year = fmt.Sprintf("(%d)", y)
		}
		title := styles.Truncate(e.Title(), titleWidth)
		row := fmt.Sprintf("%s %s %-*s %-6s %s", styles.RenderWatchStatus(e.Status), fav, titleWidth, title, year, styles.RenderRating(e.PersonalRating))

		switch {
		case s.IsPending(e.ID):
			row = styles.PendingItemStyle.Render(row + " …")
		case i == m.cursor:
			row = styles.SelectedItemStyle.Render(row)
		default:
			row = styles.NormalItemStyle.Render(row)
		}
		b.WriteString(row)
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderFilterBar(s app.State) string {
	f := s.Filters
	counts := s.Counts()

	var parts []string
	if m.filtering {
		parts = append(parts, m.filterInput.View())
	} else if f.SearchText != "" {
		parts = append(parts, styles.FilterPromptStyle.Render("/ ")+f.SearchText)
	}

	status := f.Status.String()
	if f.Status != library.StatusAll {
		status += fmt.Sprintf(" (%d)", counts[domain.WatchStatusKind(f.Status)])
	} else {
		status += fmt.Sprintf(" (%d)", counts.Total())
	}
	parts = append(parts, styles.SubtitleStyle.Render("status: ")+status)
	parts = append(parts, styles.SubtitleStyle.Render("sort: ")+fmt.Sprintf("%s %s", f.SortKey, f.SortDir))

	for _, id := range f.Tags {
		if tag, ok := s.Tag(id); ok {
			parts = append(parts, styles.RenderTag(tag))
		}
	}
	if f.MinRating != nil {
		parts = append(parts, styles.SubtitleStyle.Render("rating ≥ ")+fmt.Sprint(*f.MinRating))
	}
	if n := f.Active(); n > 0 {
		parts = append(parts, styles.DimStyle.Render(fmt.Sprintf("[%d active]", n)))
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderEntry(s app.State, id domain.EntryID) string {
	entry, ok := s.Entry(id)
	if !ok {
		if placeholder, loading := renderResourceState(s.Library, "library"); loading {
			return placeholder
		}
		return styles.DimStyle.Render("This entry is no longer in the library.")
	}

	var b strings.Builder
	title := entry.Title()
	if y := entry.Year(); y > 0 {
		title += fmt.Sprintf(" (%d)", y)
	}
	b.WriteString(styles.TitleStyle.Render(title))
	if entry.IsFavorite {
		b.WriteString(" " + styles.AccentStyle.Render("♥"))
	}
	if s.IsPending(id) {
		b.WriteString(" " + styles.PendingItemStyle.Render("saving…"))
	}
	b.WriteString("\n")

	meta := []string{styles.RenderWatchStatus(entry.Status) + " " + domain.DescribeStatus(entry.Status), styles.RenderRating(entry.PersonalRating)}
	switch media := entry.Media.(type) {
	case *domain.Movie:
		if rt := media.FormattedRuntime(); rt != "" {
			meta = append(meta, rt)
		}
	case *domain.Series:
		meta = append(meta, media.Description())
	}
	b.WriteString(styles.SubtitleStyle.Render(strings.Join(meta, "  ·  ")))
	b.WriteString("\n")

	var tags []string
	for _, tid := range entry.Tags {
		if tag, ok := s.Tag(tid); ok {
			tags = append(tags, styles.RenderTag(tag))
		}
	}
	if len(tags) > 0 {
		b.WriteString(strings.Join(tags, " ") + "\n")
	}
	var friends []string
	for _, fid := range entry.Friends {
		if name := s.FriendName(fid); name != "" {
			friends = append(friends, name)
		}
	}
	if len(friends) > 0 {
		b.WriteString(styles.DimStyle.Render("with "+strings.Join(friends, ", ")) + "\n")
	}
	if entry.WhyAdded != "" {
		b.WriteString(styles.DimStyle.Render(entry.WhyAdded) + "\n")
	}
	if entry.Notes != "" {
		b.WriteString(entry.Notes + "\n")
	}

	b.WriteString("\n")
	detail := s.Detail(id)
	if d, ok := detail.Value(); ok {
		if d.Tagline != "" {
			b.WriteString(styles.AccentStyle.Render(d.Tagline) + "\n")
		}
		if d.Overview != "" {
			b.WriteString(lipgloss.NewStyle().Width(max(20, m.Width-6)).Render(d.Overview) + "\n")
		}
		if d.Director != "" {
			b.WriteString(styles.DimStyle.Render("Directed by "+d.Director) + "\n")
		}
	} else if placeholder, ok := renderResourceState(detail, "details"); ok {
		b.WriteString(placeholder + "\n")
	}

	if actions := s.Actions(id); len(actions) > 0 {
		b.WriteString("\n" + styles.RenderHelp(m.actionKeys(actions)...) + "\n")
	}

	if entry.IsSeries() {
		b.WriteString("\n")
		b.WriteString(m.renderEpisodes(s, entry))
	}
	return b.String()
}

func (m Model) renderEpisodes(s app.State, entry domain.LibraryEntry) string {
	eps := s.EpisodeProgress(entry.ID)
	if placeholder, ok := renderResourceState(eps, "episodes"); ok {
		return placeholder
	}
	episodes := eps.GetOrDefault(nil)

	var b strings.Builder
	pct := progress.PercentWatched(entry, episodes)
	b.WriteString(fmt.Sprintf("%s %3.0f%%  %d/%d episodes\n",
		styles.RenderProgressBar(pct, 20), pct,
		progress.WatchedEpisodeCount(entry.ID, episodes), entry.Series().NumberOfEpisodes))

	rows := episodeRows(s, entry.ID)
	visible := max(1, m.Height-22)
	start := max(0, min(m.entryCursor-visible/2, len(rows)-visible))
	end := min(len(rows), start+visible)

	seasons := s.Seasons(entry.ID)
	for i := start; i < end; i++ {
		row := rows[i]
		if row.Episode == 1 || i == start {
			for _, sp := range seasons {
				if sp.Season == row.Season {
					label := fmt.Sprintf("Season %d  %d/%d", sp.Season, sp.Watched, sp.Total)
					if sp.Complete() {
						label += " " + styles.CompletedStyle.Render(styles.CompletedChar)
					}
					b.WriteString(styles.SubtitleStyle.Render(label) + "\n")
				}
			}
		}

		mark := "[ ]"
		if progress.IsWatched(episodes, row) {
			mark = styles.SuccessStyle.Render("[x]")
		}
		line := fmt.Sprintf("  %s %s", mark, row)
		if i == m.entryCursor {
			line = styles.SelectedItemStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m Model) renderFriends(s app.State) string {
	if placeholder, ok := renderResourceState(s.Friends, "friends"); ok {
		return placeholder
	}
	friends := s.Friends.GetOrDefault(nil)
	if len(friends) == 0 {
		return styles.DimStyle.Render("No friends yet. Press a to add one.")
	}

	var b strings.Builder
	for i, f := range friends {
		shared := 0
		for _, e := range s.Library.GetOrDefault(nil) {
			if e.HasFriend(f.ID) {
				shared++
			}
		}
		line := fmt.Sprintf("%-30s %s", styles.Truncate(f.Name, 30), styles.DimStyle.Render(fmt.Sprintf("%d entries", shared)))
		if i == m.cursor {
			line = styles.SelectedItemStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m Model) renderTags(s app.State) string {
	if placeholder, ok := renderResourceState(s.Tags, "tags"); ok {
		return placeholder
	}
	tags := s.Tags.GetOrDefault(nil)
	if len(tags) == 0 {
		return styles.DimStyle.Render("No tags yet. Press a to create one.")
	}

	var b strings.Builder
	for i, t := range tags {
		used := 0
		for _, e := range s.Library.GetOrDefault(nil) {
			if e.HasTag(t.ID) {
				used++
			}
		}
		filter := " "
		if s.Filters.HasTag(t.ID) {
			filter = styles.AccentStyle.Render("◆")
		}
		line := fmt.Sprintf("%s %s %s", filter, styles.RenderTag(t), styles.DimStyle.Render(fmt.Sprintf("%d entries", used)))
		if i == m.cursor {
			line = styles.SelectedItemStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m Model) renderFooter(s app.State) string {
	if n := s.Notification; n != nil {
		msg := n.Message
		if n.Hint != "" {
			msg += " (" + n.Hint + ")"
		}
		switch n.Kind {
		case app.NotifyError:
			return styles.ErrorStyle.Render("✗ " + msg)
		case app.NotifySuccess:
			return styles.SuccessStyle.Render("✓ " + msg)
		default:
			return styles.InfoStyle.Render(msg)
		}
	}

	k := m.keys
	switch s.Page.(type) {
	case app.EntryPage:
		return styles.RenderHelp(k.Back.Help().Key, "back", "space", "toggle episode", "m", "season", "t", "tags", "n", "friends", "?", "help")
	case app.FriendsPage, app.TagsPage:
		return styles.RenderHelp("a", "add", "e", "edit", "x", "delete", "L", "library", "q", "quit")
	default:
		return styles.RenderHelp("enter", "open", "a", "add", "/", "filter", "f", "status", "s", "sort", "?", "help", "q", "quit")
	}
}

// renderOverlay renders the picker, the active workflow or the help screen
func (m Model) renderOverlay(s app.State) string {
	switch {
	case m.picker.IsVisible():
		return m.picker.View()
	case s.Workflow != nil:
		return m.renderWorkflow(s, s.Workflow)
	case m.showHelp:
		return m.renderHelp()
	}
	return ""
}

func (m Model) renderWorkflow(s app.State, w workflow.Workflow) string {
	var b strings.Builder

	title := w.Kind().String()
	switch v := w.(type) {
	case workflow.QuickAdd:
		title += ": " + v.Item.Title
	case workflow.FriendForm:
		if v.Editing != nil {
			title = "Edit friend"
		} else {
			title = "New friend"
		}
	case workflow.TagForm:
		if v.Editing != nil {
			title = "Edit tag"
		} else {
			title = "New tag"
		}
	case workflow.Abandon:
		title += ": " + v.Title
	}
	b.WriteString(styles.ModalTitleStyle.Render(title) + "\n")

	if confirm, ok := w.(workflow.ConfirmDelete); ok {
		b.WriteString(fmt.Sprintf("Delete %q? This cannot be undone.\n", confirm.Target.Label))
	}

	for i, f := range workflow.Fields(w) {
		label := styles.FieldLabelStyle.Render(fieldLabel(f))
		value := workflow.Value(w, f)
		if i == m.field {
			label = styles.FocusedLabelStyle.Render(fieldLabel(f))
			value = m.fieldInput.View()
		}
		b.WriteString(label + " " + value + "\n")
	}

	switch v := w.(type) {
	case workflow.Search:
		b.WriteString("\n" + m.renderSearchResults(s))
	case workflow.QuickAdd:
		var tags, friends []string
		for _, id := range v.Tags {
			if t, ok := s.Tag(id); ok {
				tags = append(tags, styles.RenderTag(t))
			}
		}
		for _, id := range v.Friends {
			friends = append(friends, s.FriendName(id))
		}
		b.WriteString(styles.FieldLabelStyle.Render("Tags") + " " + strings.Join(tags, " ") + "\n")
		b.WriteString(styles.FieldLabelStyle.Render("Friends") + " " + strings.Join(friends, ", ") + "\n")
	}

	sub := w.State()
	if sub.Submitting {
		b.WriteString("\n" + styles.DimStyle.Render("Saving..."))
	} else if sub.Err != nil {
		msg := sub.Err.Message
		if sub.Err.RetryHint != "" {
			msg += " (" + sub.Err.RetryHint + ")"
		}
		b.WriteString("\n" + styles.ErrorStyle.Render(msg))
	}

	b.WriteString("\n\n")
	switch w.(type) {
	case workflow.ConfirmDelete:
		b.WriteString(styles.RenderHelp("y", "delete", "n", "cancel"))
	case workflow.Search:
		b.WriteString(styles.RenderHelp("↑/↓", "select", "enter", "add", "esc", "close"))
	case workflow.QuickAdd:
		b.WriteString(styles.RenderHelp("enter", "add", "C-t", "tags", "C-n", "friends", "esc", "cancel"))
	default:
		b.WriteString(styles.RenderHelp("tab", "next field", "enter", "save", "esc", "cancel"))
	}

	width := min(70, max(40, m.Width-10))
	return styles.ModalStyle.Width(width).Render(b.String())
}

// maxSearchRows caps the results shown in the search dialog
const maxSearchRows = 10

func (m Model) renderSearchResults(s app.State) string {
	q, _ := s.Workflow.(workflow.Search)
	if strings.TrimSpace(q.Query) == "" {
		return styles.DimStyle.Render("Type to search movies and series.")
	}
	if s.SearchPending() {
		return styles.DimStyle.Render("...")
	}
	if placeholder, ok := renderResourceState(s.Search, "results"); ok {
		return placeholder
	}

	results := s.Search.GetOrDefault(nil)
	if len(results) == 0 {
		return styles.DimStyle.Render("No results.")
	}

	var b strings.Builder
	for i, r := range results[:min(len(results), maxSearchRows)] {
		kind := "film"
		if r.Kind == domain.MediaKindSeries {
			kind = "series"
		}
		line := r.Title
		if r.Year > 0 {
			line += fmt.Sprintf(" (%d)", r.Year)
		}
		line = fmt.Sprintf("%-6s %s", kind, line)
		if i == m.searchCursor {
			line = styles.SelectedItemStyle.Render(line)
		} else {
			line = styles.NormalItemStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m Model) renderHelp() string {
	k := m.keys
	groups := [][]key.Binding{
		{k.Up, k.Down, k.Home, k.End, k.Enter, k.Back, k.Library, k.Friends, k.Tags},
		{k.Filter, k.StatusFilter, k.Sort, k.SortDirection, k.ClearFilters, k.PickTags, k.Add, k.Refresh},
		{k.MarkCompleted, k.MarkUnwatched, k.StartWatching, k.Resume, k.Abandon, k.Favorite, k.Rate, k.ClearRating},
		{k.ToggleEpisode, k.MarkSeason, k.PickFriends, k.Edit, k.Delete, k.Quit},
	}

	var cols []string
	for _, g := range groups {
		var lines []string
		for _, b := range g {
			h := b.Help()
			lines = append(lines, styles.HelpKeyStyle.Width(8).Render(h.Key)+styles.HelpDescStyle.Render(h.Desc))
		}
		cols = append(cols, lipgloss.NewStyle().MarginRight(3).Render(strings.Join(lines, "\n")))
	}

	return styles.ModalStyle.Render(
		styles.ModalTitleStyle.Render("Keys") + "\n" +
			lipgloss.JoinHorizontal(lipgloss.Top, cols...),
	)
}
