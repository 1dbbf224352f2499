// Package library computes the visible, ordered view of the library.
//
// Everything here is a pure function of its arguments: the input slice is
// never modified and no state is kept between calls.
package library

import (
	"slices"
	"strings"

	"github.com/mmcdole/watchlog/internal/domain"
)

// predicate reports whether an entry passes one filter
type predicate func(domain.LibraryEntry) bool

// Apply returns the entries matching every active filter, ordered by the
// filter's sort key and direction.
func Apply(f Filters, entries []domain.LibraryEntry) []domain.LibraryEntry {
	preds := predicates(f)

	out := make([]domain.LibraryEntry, 0, len(entries))
	for _, e := range entries {
		if matchesAll(e, preds) {
			out = append(out, e)
		}
	}

	sortEntries(out, f.SortKey)
	if f.SortDir == SortDesc {
		slices.Reverse(out)
	}
	return out
}

// Matches reports whether a single entry passes every active filter
func Matches(f Filters, e domain.LibraryEntry) bool {
	return matchesAll(e, predicates(f))
}

// predicates builds the active filters in evaluation order:
// text, status, tags, minimum rating.
func predicates(f Filters) []predicate {
	var preds []predicate

	if f.SearchText != "" {
		needle := strings.ToLower(f.SearchText)
		preds = append(preds, func(e domain.LibraryEntry) bool {
			return strings.Contains(strings.ToLower(e.Title()), needle)
		})
	}

	if f.Status != StatusAll {
		want := domain.WatchStatusKind(f.Status)
		preds = append(preds, func(e domain.LibraryEntry) bool {
			return domain.StatusKindOf(e.Status) == want
		})
	}

	if len(f.Tags) > 0 {
		selected := f.Tags
		preds = append(preds, func(e domain.LibraryEntry) bool {
			return slices.ContainsFunc(e.Tags, func(id domain.TagID) bool {
				return slices.Contains(selected, id)
			})
		})
	}

	if f.MinRating != nil {
		threshold := *f.MinRating
		preds = append(preds, func(e domain.LibraryEntry) bool {
			return e.PersonalRating != nil && *e.PersonalRating >= threshold
		})
	}

	return preds
}

func matchesAll(e domain.LibraryEntry, preds []predicate) bool {
	for _, p := range preds {
		if !p(e) {
			return false
		}
	}
	return true
}

// sortEntries stable-sorts ascending by key. Descending order is produced by
// reversing the result, never by flipping the comparator.
func sortEntries(entries []domain.LibraryEntry, key SortKey) {
	switch key {
	case SortTitle:
		slices.SortStableFunc(entries, func(a, b domain.LibraryEntry) int {
			return strings.Compare(strings.ToLower(a.Title()), strings.ToLower(b.Title()))
		})
	case SortYear:
		slices.SortStableFunc(entries, func(a, b domain.LibraryEntry) int {
			return a.Year() - b.Year()
		})
	case SortRating:
		slices.SortStableFunc(entries, func(a, b domain.LibraryEntry) int {
			return ratingOrZero(a) - ratingOrZero(b)
		})
	default:
		slices.SortStableFunc(entries, func(a, b domain.LibraryEntry) int {
			return a.DateAdded.Compare(b.DateAdded)
		})
	}
}

func ratingOrZero(e domain.LibraryEntry) int {
	if e.PersonalRating == nil {
		return 0
	}
	return *e.PersonalRating
}

// StatusCounts tallies entries per watch status kind
type StatusCounts map[domain.WatchStatusKind]int

// Counts returns per-status tallies for the filter bar
func Counts(entries []domain.LibraryEntry) StatusCounts {
	counts := make(StatusCounts, 4)
	for _, e := range entries {
		counts[domain.StatusKindOf(e.Status)]++
	}
	return counts
}

// Total returns the number of counted entries
func (c StatusCounts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}
