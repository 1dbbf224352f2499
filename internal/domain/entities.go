package domain

import (
	"fmt"
	"slices"
	"time"
)

// EntryID identifies a library entry on the server
type EntryID int64

// FriendID identifies a friend on the server
type FriendID int64

// TagID identifies a tag on the server
type TagID int64

// MediaKind distinguishes content types
type MediaKind int

const (
	MediaKindMovie MediaKind = iota
	MediaKindSeries
)

// String returns the wire name of the media kind
func (k MediaKind) String() string {
	switch k {
	case MediaKindMovie:
		return "movie"
	case MediaKindSeries:
		return "series"
	default:
		return "unknown"
	}
}

// Media is the payload wrapped by a library entry: either *Movie or *Series.
type Media interface {
	Kind() MediaKind
	GetTitle() string
	GetYear() int
	GetGenres() []string
	GetRating() float64
	GetPosterPath() string
	isMedia()
}

// Movie is a single feature film
type Movie struct {
	ExternalID   int64      // Metadata provider ID (TMDB)
	Title        string     // Display title
	Overview     string     // Plot synopsis
	PosterPath   string     // Poster image reference (optional)
	BackdropPath string     // Backdrop image reference (optional)
	ReleaseDate  *time.Time // Theatrical release date (optional)
	Genres       []string   // Genre names
	Rating       float64    // Community rating (0-10 scale)
	Runtime      int        // Runtime in minutes
}

func (m *Movie) Kind() MediaKind       { return MediaKindMovie }
func (m *Movie) GetTitle() string      { return m.Title }
func (m *Movie) GetGenres() []string   { return m.Genres }
func (m *Movie) GetRating() float64    { return m.Rating }
func (m *Movie) GetPosterPath() string { return m.PosterPath }
func (m *Movie) isMedia()              {}

// GetYear returns the release year, 0 when unknown
func (m *Movie) GetYear() int {
	if m.ReleaseDate == nil {
		return 0
	}
	return m.ReleaseDate.Year()
}

// FormattedRuntime returns the runtime in a human-readable format
func (m *Movie) FormattedRuntime() string {
	if m.Runtime <= 0 {
		return ""
	}
	h := m.Runtime / 60
	mins := m.Runtime % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, mins)
	}
	return fmt.Sprintf("%dm", mins)
}

// SeasonInfo describes one season of a series
type SeasonInfo struct {
	Number       int    // Season number (0 = specials)
	Name         string // "Season 1" or custom name
	EpisodeCount int    // Episodes in this season, 0 when unknown
}

// DisplayTitle returns the display title for the season
func (s SeasonInfo) DisplayTitle() string {
	if s.Number == 0 {
		return "Specials"
	}
	if s.Name != "" && s.Name != fmt.Sprintf("Season %d", s.Number) {
		return fmt.Sprintf("Season %d: %s", s.Number, s.Name)
	}
	return fmt.Sprintf("Season %d", s.Number)
}

// Series is a TV series
type Series struct {
	ExternalID       int64      // Metadata provider ID (TMDB)
	Title            string     // Series title
	Overview         string     // Series synopsis
	PosterPath       string     // Poster image reference (optional)
	BackdropPath     string     // Backdrop image reference (optional)
	FirstAirDate     *time.Time // First air date (optional)
	Genres           []string   // Genre names
	Rating           float64    // Community rating (0-10 scale)
	NumberOfSeasons  int        // Total number of seasons (excluding specials)
	NumberOfEpisodes int        // Total number of episodes (excluding specials)
	Seasons          []SeasonInfo
}

func (s *Series) Kind() MediaKind       { return MediaKindSeries }
func (s *Series) GetTitle() string      { return s.Title }
func (s *Series) GetGenres() []string   { return s.Genres }
func (s *Series) GetRating() float64    { return s.Rating }
func (s *Series) GetPosterPath() string { return s.PosterPath }
func (s *Series) isMedia()              {}

// GetYear returns the first air year, 0 when unknown
func (s *Series) GetYear() int {
	if s.FirstAirDate == nil {
		return 0
	}
	return s.FirstAirDate.Year()
}

// Description returns secondary info for display (e.g., "3 Seasons")
func (s *Series) Description() string {
	if s.NumberOfSeasons == 1 {
		return "1 Season"
	}
	return fmt.Sprintf("%d Seasons", s.NumberOfSeasons)
}

// LibraryEntry is one movie or series in the user's library
type LibraryEntry struct {
	ID             EntryID
	Media          Media
	Status         WatchStatus
	PersonalRating *int // 1-5, nil when unrated
	Tags           []TagID
	Friends        []FriendID
	DateAdded      time.Time
	IsFavorite     bool
	Notes          string
	WhyAdded       string // Free-text attribution ("recommended by ...")
}

// Title returns the media title, empty when the entry has no payload
func (e LibraryEntry) Title() string {
	if e.Media == nil {
		return ""
	}
	return e.Media.GetTitle()
}

// Year returns the release/air year, 0 when unknown
func (e LibraryEntry) Year() int {
	if e.Media == nil {
		return 0
	}
	return e.Media.GetYear()
}

// IsSeries reports whether the entry wraps a series
func (e LibraryEntry) IsSeries() bool {
	return e.Media != nil && e.Media.Kind() == MediaKindSeries
}

// Series returns the series payload, or nil for movies
func (e LibraryEntry) Series() *Series {
	s, _ := e.Media.(*Series)
	return s
}

// HasTag reports whether the entry carries the tag
func (e LibraryEntry) HasTag(id TagID) bool {
	return slices.Contains(e.Tags, id)
}

// HasFriend reports whether the entry is linked to the friend
func (e LibraryEntry) HasFriend(id FriendID) bool {
	return slices.Contains(e.Friends, id)
}

// EpisodeKey addresses one episode of a series
type EpisodeKey struct {
	Season  int
	Episode int
}

// String returns the formatted episode code (e.g., "S01E05")
func (k EpisodeKey) String() string {
	return fmt.Sprintf("S%02dE%02d", k.Season, k.Episode)
}

// EpisodeProgress is the watched flag for one episode of a series entry
type EpisodeProgress struct {
	EntryID EntryID
	Season  int
	Episode int
	Watched bool
}

// Key returns the episode address of the record
func (p EpisodeProgress) Key() EpisodeKey {
	return EpisodeKey{Season: p.Season, Episode: p.Episode}
}

// EntryDetail is the lazily fetched detail payload for an entry
type EntryDetail struct {
	EntryID  EntryID
	Overview string
	Tagline  string
	Seasons  []SeasonInfo // Exact per-season counts when the provider knows them
	Cast     []string
	Director string
}

// Friend is someone entries can be attributed to or shared with
type Friend struct {
	ID   FriendID
	Name string
}

// Tag is a user-defined label
type Tag struct {
	ID    TagID
	Name  string
	Color string // Hex color, optional
}

// SearchResult is a title returned by the metadata search, not yet in the library
type SearchResult struct {
	ExternalID int64
	Kind       MediaKind
	Title      string
	Year       int
	PosterPath string
	Overview   string
}

// Health is the backend's self-reported status
type Health struct {
	Status  string
	Version string
}

// OK reports whether the backend considers itself healthy
func (h Health) OK() bool {
	return h.Status == "ok"
}

// NewEntry is the add-entry request built by the quick-add workflow
type NewEntry struct {
	Selection SearchResult
	Note      string
	Tags      []TagID
	Friends   []FriendID
}

// EntryPatch carries the entry fields that can be edited in place.
// Nil fields are left untouched by the server.
type EntryPatch struct {
	Tags           *[]TagID
	Friends        *[]FriendID
	IsFavorite     *bool
	PersonalRating *int
	ClearRating    bool
	Notes          *string
}

// FriendInput is the create/edit payload for a friend
type FriendInput struct {
	Name string
}

// TagInput is the create/edit payload for a tag
type TagInput struct {
	Name  string
	Color string
}
