package workflow

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mmcdole/watchlog/internal/domain"
	"github.com/sahilm/fuzzy"
)

// Field names an editable text field of a workflow
type Field int

const (
	FieldQuery Field = iota
	FieldNote
	FieldName
	FieldColor
	FieldReason
	FieldStopSeason
	FieldStopEpisode
)

// Fields returns the editable fields of w in tab order
func Fields(w Workflow) []Field {
	switch w.(type) {
	case Search:
		return []Field{FieldQuery}
	case QuickAdd:
		return []Field{FieldNote}
	case FriendForm:
		return []Field{FieldName}
	case TagForm:
		return []Field{FieldName, FieldColor}
	case Abandon:
		return []Field{FieldReason, FieldStopSeason, FieldStopEpisode}
	default:
		return nil
	}
}

// Value returns the current text of field, empty when w has no such field
func Value(w Workflow, field Field) string {
	switch v := w.(type) {
	case Search:
		if field == FieldQuery {
			return v.Query
		}
	case QuickAdd:
		if field == FieldNote {
			return v.Note
		}
	case FriendForm:
		if field == FieldName {
			return v.Name
		}
	case TagForm:
		switch field {
		case FieldName:
			return v.Name
		case FieldColor:
			return v.Color
		}
	case Abandon:
		switch field {
		case FieldReason:
			return v.Reason
		case FieldStopSeason:
			return v.StopSeason
		case FieldStopEpisode:
			return v.StopEpisode
		}
	}
	return ""
}

// SetField updates one text field. Input is frozen while submitting, and
// fields that w does not have are ignored.
func SetField(w Workflow, field Field, value string) Workflow {
	if w == nil || IsSubmitting(w) {
		return w
	}
	switch v := w.(type) {
	case Search:
		if field == FieldQuery {
			v.Query = value
		}
		return v
	case QuickAdd:
		if field == FieldNote {
			v.Note = value
		}
		return v
	case FriendForm:
		if field == FieldName {
			v.Name = value
		}
		return v
	case TagForm:
		switch field {
		case FieldName:
			v.Name = value
		case FieldColor:
			v.Color = value
		}
		return v
	case Abandon:
		switch field {
		case FieldReason:
			v.Reason = value
		case FieldStopSeason:
			v.StopSeason = value
		case FieldStopEpisode:
			v.StopEpisode = value
		}
		return v
	default:
		return w
	}
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

func (Search) validate() error { return nil }

func (w QuickAdd) validate() error {
	if strings.TrimSpace(w.Item.Title) == "" {
		return &domain.ValidationError{Field: "item", Message: "Pick a title to add"}
	}
	return nil
}

func (w FriendForm) validate() error {
	if strings.TrimSpace(w.Name) == "" {
		return &domain.ValidationError{Field: "name", Message: "Name is required"}
	}
	return nil
}

func (w TagForm) validate() error {
	if strings.TrimSpace(w.Name) == "" {
		return &domain.ValidationError{Field: "name", Message: "Name is required"}
	}
	if c := strings.TrimSpace(w.Color); c != "" && !hexColor.MatchString(c) {
		return &domain.ValidationError{Field: "color", Message: "Color must look like #1a2b3c"}
	}
	return nil
}

func (w Abandon) validate() error {
	_, _, err := w.Position()
	return err
}

func (ConfirmDelete) validate() error { return nil }

// FriendInput returns the trimmed create/edit payload
func (w FriendForm) FriendInput() domain.FriendInput {
	return domain.FriendInput{Name: strings.TrimSpace(w.Name)}
}

// TagInput returns the trimmed create/edit payload
func (w TagForm) TagInput() domain.TagInput {
	return domain.TagInput{Name: strings.TrimSpace(w.Name), Color: strings.TrimSpace(w.Color)}
}

// Position parses the optional stop position. An episode without a season
// is rejected.
func (w Abandon) Position() (season, episode *int, err error) {
	season, err = parsePositive("season", w.StopSeason)
	if err != nil {
		return nil, nil, err
	}
	episode, err = parsePositive("episode", w.StopEpisode)
	if err != nil {
		return nil, nil, err
	}
	if episode != nil && season == nil {
		return nil, nil, &domain.ValidationError{Field: "season", Message: "Enter a season for the episode"}
	}
	return season, episode, nil
}

func parsePositive(field, raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return nil, &domain.ValidationError{Field: field, Message: "The " + field + " must be a positive number"}
	}
	return &n, nil
}

// FilterOptions returns the indices of names matching query, best match
// first. An empty query keeps every option in its original order.
func FilterOptions(query string, names []string) []int {
	query = strings.TrimSpace(query)
	if query == "" {
		out := make([]int, len(names))
		for i := range names {
			out[i] = i
		}
		return out
	}

	lower := make([]string, len(names))
	for i, n := range names {
		lower[i] = strings.ToLower(n)
	}

	matches := fuzzy.Find(strings.ToLower(query), lower)
	out := make([]int, len(matches))
	for i, m := range matches {
		out[i] = m.Index
	}
	return out
}
