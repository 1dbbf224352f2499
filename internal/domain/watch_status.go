package domain

import "fmt"

// WatchStatusKind is the tag of a WatchStatus value
type WatchStatusKind int

const (
	StatusNotStarted WatchStatusKind = iota
	StatusInProgress
	StatusCompleted
	StatusAbandoned
)

// String returns a human-readable representation of the watch status kind
func (k WatchStatusKind) String() string {
	switch k {
	case StatusNotStarted:
		return "Not Started"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	case StatusAbandoned:
		return "Abandoned"
	default:
		return "Unknown"
	}
}

// WatchStatus is the viewing state of an entry. The set of implementations is
// closed: NotStarted, InProgress, Completed, Abandoned.
type WatchStatus interface {
	Kind() WatchStatusKind
	isWatchStatus()
}

// NotStarted means the entry has not been watched at all
type NotStarted struct{}

// InProgress means the entry is being watched; position is optional
type InProgress struct {
	CurrentSeason  *int
	CurrentEpisode *int
}

// Completed means the entry was watched to the end
type Completed struct{}

// Abandoned means the user stopped watching; all fields are optional
type Abandoned struct {
	Reason         string
	StoppedSeason  *int
	StoppedEpisode *int
}

func (NotStarted) Kind() WatchStatusKind { return StatusNotStarted }
func (InProgress) Kind() WatchStatusKind { return StatusInProgress }
func (Completed) Kind() WatchStatusKind  { return StatusCompleted }
func (Abandoned) Kind() WatchStatusKind  { return StatusAbandoned }

func (NotStarted) isWatchStatus() {}
func (InProgress) isWatchStatus() {}
func (Completed) isWatchStatus()  {}
func (Abandoned) isWatchStatus()  {}

// StatusKindOf returns the kind of s, treating nil as NotStarted
func StatusKindOf(s WatchStatus) WatchStatusKind {
	if s == nil {
		return StatusNotStarted
	}
	return s.Kind()
}

// DescribeStatus renders a status with its position or reason
func DescribeStatus(s WatchStatus) string {
	switch v := s.(type) {
	case nil, NotStarted:
		return StatusNotStarted.String()
	case InProgress:
		if v.CurrentSeason != nil && v.CurrentEpisode != nil {
			return fmt.Sprintf("In Progress (%s)", EpisodeKey{Season: *v.CurrentSeason, Episode: *v.CurrentEpisode})
		}
		return StatusInProgress.String()
	case Completed:
		return StatusCompleted.String()
	case Abandoned:
		desc := StatusAbandoned.String()
		if v.StoppedSeason != nil && v.StoppedEpisode != nil {
			desc += fmt.Sprintf(" at %s", EpisodeKey{Season: *v.StoppedSeason, Episode: *v.StoppedEpisode})
		} else if v.StoppedSeason != nil {
			desc += fmt.Sprintf(" in season %d", *v.StoppedSeason)
		}
		if v.Reason != "" {
			desc += ": " + v.Reason
		}
		return desc
	default:
		panic(fmt.Sprintf("domain: unhandled watch status %T", s))
	}
}
