package library

import (
	"slices"

	"github.com/mmcdole/watchlog/internal/domain"
)

// SortKey represents a field to sort by
type SortKey int

const (
	SortDateAdded SortKey = iota
	SortTitle
	SortYear
	SortRating
)

// String returns the display name for the sort key
func (k SortKey) String() string {
	switch k {
	case SortDateAdded:
		return "Date Added"
	case SortTitle:
		return "Title"
	case SortYear:
		return "Year"
	case SortRating:
		return "Rating"
	default:
		return "Unknown"
	}
}

// Name returns the stable identifier used in config and prefs
func (k SortKey) Name() string {
	switch k {
	case SortTitle:
		return "title"
	case SortYear:
		return "year"
	case SortRating:
		return "rating"
	default:
		return "date_added"
	}
}

// ParseSortKey is the inverse of Name; unknown names map to SortDateAdded
func ParseSortKey(name string) SortKey {
	for _, k := range SortKeys() {
		if k.Name() == name {
			return k
		}
	}
	return SortDateAdded
}

// SortKeys returns the available sort options in menu order
func SortKeys() []SortKey {
	return []SortKey{SortDateAdded, SortTitle, SortYear, SortRating}
}

// DefaultDirection returns the default sort direction for a key
func (k SortKey) DefaultDirection() SortDirection {
	if k == SortTitle {
		return SortAsc // A-Z
	}
	return SortDesc // newest / highest first
}

// SortDirection represents sort direction
type SortDirection int

const (
	SortAsc SortDirection = iota
	SortDesc
)

// String returns the display name for the direction
func (d SortDirection) String() string {
	if d == SortDesc {
		return "desc"
	}
	return "asc"
}

// ParseSortDirection is the inverse of String; anything but "desc" is ascending
func ParseSortDirection(s string) SortDirection {
	if s == "desc" {
		return SortDesc
	}
	return SortAsc
}

// Toggle flips the direction
func (d SortDirection) Toggle() SortDirection {
	if d == SortAsc {
		return SortDesc
	}
	return SortAsc
}

// StatusFilter selects entries by watch status kind; StatusAll disables it
type StatusFilter int

// StatusAll matches every status
const StatusAll StatusFilter = -1

// StatusOnly returns a filter matching exactly one status kind
func StatusOnly(kind domain.WatchStatusKind) StatusFilter {
	return StatusFilter(kind)
}

// String returns the display name for the filter
func (f StatusFilter) String() string {
	if f == StatusAll {
		return "All"
	}
	return domain.WatchStatusKind(f).String()
}

// StatusFilters returns the filter options in menu order
func StatusFilters() []StatusFilter {
	return []StatusFilter{
		StatusAll,
		StatusOnly(domain.StatusNotStarted),
		StatusOnly(domain.StatusInProgress),
		StatusOnly(domain.StatusCompleted),
		StatusOnly(domain.StatusAbandoned),
	}
}

// Filters is the UI-scoped query over the library. It is a value type;
// the mutators return modified copies.
type Filters struct {
	SearchText string
	Status     StatusFilter
	Tags       []domain.TagID // Match entries carrying any of these; empty matches all
	MinRating  *int           // Personal rating threshold; nil disables
	SortKey    SortKey
	SortDir    SortDirection
}

// DefaultFilters returns the filters shown on first launch
func DefaultFilters() Filters {
	return Filters{
		Status:  StatusAll,
		SortKey: SortDateAdded,
		SortDir: SortDateAdded.DefaultDirection(),
	}
}

// WithSortKey switches the sort key and resets the direction to its default
func (f Filters) WithSortKey(key SortKey) Filters {
	f.SortKey = key
	f.SortDir = key.DefaultDirection()
	return f
}

// ToggleTag adds the tag to the selection, or removes it when present
func (f Filters) ToggleTag(id domain.TagID) Filters {
	if i := slices.Index(f.Tags, id); i >= 0 {
		f.Tags = slices.Delete(slices.Clone(f.Tags), i, i+1)
		return f
	}
	f.Tags = append(slices.Clone(f.Tags), id)
	return f
}

// HasTag reports whether the tag is selected
func (f Filters) HasTag(id domain.TagID) bool {
	return slices.Contains(f.Tags, id)
}

// Active returns the number of predicates that narrow the result
func (f Filters) Active() int {
	n := 0
	if f.SearchText != "" {
		n++
	}
	if f.Status != StatusAll {
		n++
	}
	if len(f.Tags) > 0 {
		n++
	}
	if f.MinRating != nil {
		n++
	}
	return n
}

// ToPrefs converts the filters into their persisted form
func (f Filters) ToPrefs(prefs domain.Prefs) domain.Prefs {
	prefs.SearchText = f.SearchText
	prefs.StatusFilter = int(f.Status)
	prefs.TagFilter = slices.Clone(f.Tags)
	prefs.MinRating = f.MinRating
	prefs.SortKey = f.SortKey.Name()
	prefs.SortDirection = f.SortDir.String()
	return prefs
}

// FiltersFromPrefs restores filters saved by ToPrefs
func FiltersFromPrefs(prefs domain.Prefs) Filters {
	f := DefaultFilters()
	f.SearchText = prefs.SearchText
	if prefs.StatusFilter >= int(domain.StatusNotStarted) && prefs.StatusFilter <= int(domain.StatusAbandoned) {
		f.Status = StatusFilter(prefs.StatusFilter)
	}
	f.Tags = slices.Clone(prefs.TagFilter)
	f.MinRating = prefs.MinRating
	if prefs.SortKey != "" {
		f.SortKey = ParseSortKey(prefs.SortKey)
		f.SortDir = ParseSortDirection(prefs.SortDirection)
	}
	return f
}
