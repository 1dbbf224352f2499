// Package progress implements the watch-status state machine and the
// episode aggregates that gate it.
//
// Transitions:
//
//	NotStarted | InProgress --complete--> Completed
//	Completed               --unwatch---> NotStarted   (movies only)
//	NotStarted | InProgress --abandon---> Abandoned
//	Abandoned               --resume----> InProgress
//	Abandoned               --complete--> Completed
//	NotStarted              --start-----> InProgress
//
// Series may only complete once every episode is watched. Nothing here
// completes a series automatically.
package progress

import (
	"errors"
	"fmt"

	"github.com/mmcdole/watchlog/internal/domain"
)

var (
	// ErrInvalidTransition indicates the action is not defined for the current status
	ErrInvalidTransition = errors.New("invalid watch status transition")

	// ErrEpisodesRemaining indicates a series was marked completed before all episodes were watched
	ErrEpisodesRemaining = errors.New("series has unwatched episodes")
)

// Action is a user-triggered watch action
type Action int

const (
	ActionMarkCompleted Action = iota
	ActionMarkUnwatched
	ActionAbandon
	ActionResume
	ActionStartWatching
)

// String returns the menu label for the action
func (a Action) String() string {
	switch a {
	case ActionMarkCompleted:
		return "Mark completed"
	case ActionMarkUnwatched:
		return "Mark unwatched"
	case ActionAbandon:
		return "Abandon"
	case ActionResume:
		return "Resume"
	case ActionStartWatching:
		return "Start watching"
	default:
		return "Unknown"
	}
}

// TransitionError wraps a rejected transition with its context
type TransitionError struct {
	From   domain.WatchStatusKind
	Action Action
	Err    error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s from %s: %v", e.Action, e.From, e.Err)
}

func (e *TransitionError) Unwrap() error { return e.Err }

func reject(from domain.WatchStatus, action Action, err error) error {
	return &TransitionError{From: domain.StatusKindOf(from), Action: action, Err: err}
}

// MarkCompleted moves an entry to Completed. For series every episode must
// already be watched according to episodes.
func MarkCompleted(entry domain.LibraryEntry, episodes []domain.EpisodeProgress) (domain.WatchStatus, error) {
	switch entry.Status.(type) {
	case nil, domain.NotStarted, domain.InProgress, domain.Abandoned:
	default:
		return entry.Status, reject(entry.Status, ActionMarkCompleted, ErrInvalidTransition)
	}
	if !seriesFinished(entry, episodes) {
		return entry.Status, reject(entry.Status, ActionMarkCompleted, ErrEpisodesRemaining)
	}
	return domain.Completed{}, nil
}

// MarkUnwatched moves a completed movie back to NotStarted
func MarkUnwatched(entry domain.LibraryEntry) (domain.WatchStatus, error) {
	if _, ok := entry.Status.(domain.Completed); !ok || entry.IsSeries() {
		return entry.Status, reject(entry.Status, ActionMarkUnwatched, ErrInvalidTransition)
	}
	return domain.NotStarted{}, nil
}

// Abandon moves a not-started or in-progress entry to Abandoned.
// reason may be empty; season and episode may be nil.
func Abandon(entry domain.LibraryEntry, reason string, season, episode *int) (domain.WatchStatus, error) {
	switch entry.Status.(type) {
	case nil, domain.NotStarted, domain.InProgress:
		return domain.Abandoned{Reason: reason, StoppedSeason: season, StoppedEpisode: episode}, nil
	default:
		return entry.Status, reject(entry.Status, ActionAbandon, ErrInvalidTransition)
	}
}

// Resume moves an abandoned entry back to InProgress with no position.
// Episode records keep whatever progress they already capture.
func Resume(entry domain.LibraryEntry) (domain.WatchStatus, error) {
	if _, ok := entry.Status.(domain.Abandoned); !ok {
		return entry.Status, reject(entry.Status, ActionResume, ErrInvalidTransition)
	}
	return domain.InProgress{}, nil
}

// StartWatching moves a not-started entry to InProgress at an optional position
func StartWatching(entry domain.LibraryEntry, season, episode *int) (domain.WatchStatus, error) {
	switch entry.Status.(type) {
	case nil, domain.NotStarted:
		return domain.InProgress{CurrentSeason: season, CurrentEpisode: episode}, nil
	default:
		return entry.Status, reject(entry.Status, ActionStartWatching, ErrInvalidTransition)
	}
}

// AvailableActions returns the actions offered for the entry's current state
func AvailableActions(entry domain.LibraryEntry, episodes []domain.EpisodeProgress) []Action {
	var actions []Action
	switch entry.Status.(type) {
	case nil, domain.NotStarted:
		actions = append(actions, ActionStartWatching)
		if seriesFinished(entry, episodes) {
			actions = append(actions, ActionMarkCompleted)
		}
		actions = append(actions, ActionAbandon)
	case domain.InProgress:
		if seriesFinished(entry, episodes) {
			actions = append(actions, ActionMarkCompleted)
		}
		actions = append(actions, ActionAbandon)
	case domain.Abandoned:
		actions = append(actions, ActionResume)
		if seriesFinished(entry, episodes) {
			actions = append(actions, ActionMarkCompleted)
		}
	case domain.Completed:
		if !entry.IsSeries() {
			actions = append(actions, ActionMarkUnwatched)
		}
	}
	return actions
}

// CanComplete reports whether "mark completed" is currently valid
func CanComplete(entry domain.LibraryEntry, episodes []domain.EpisodeProgress) bool {
	_, err := MarkCompleted(entry, episodes)
	return err == nil
}

// seriesFinished is true for movies, and for series once the watched count
// reaches the series' episode total.
func seriesFinished(entry domain.LibraryEntry, episodes []domain.EpisodeProgress) bool {
	series := entry.Series()
	if series == nil {
		return true
	}
	return WatchedEpisodeCount(entry.ID, episodes) >= series.NumberOfEpisodes
}
