package domain

// PrefsStore persists client-side preferences between sessions.
// Nothing in it is ever sent to the backend.
type PrefsStore interface {
	// LoadPrefs returns the saved preferences, false when nothing is stored
	LoadPrefs() (Prefs, bool)
	SavePrefs(prefs Prefs) error
	Close() error
}

// Prefs is the persisted subset of UI state
type Prefs struct {
	SearchText    string  `json:"search_text"`
	StatusFilter  int     `json:"status_filter"` // -1 = all, otherwise a WatchStatusKind
	TagFilter     []TagID `json:"tag_filter"`
	MinRating     *int    `json:"min_rating,omitempty"`
	SortKey       string  `json:"sort_key"`
	SortDirection string  `json:"sort_direction"`
	LastPage      string  `json:"last_page"`
}
