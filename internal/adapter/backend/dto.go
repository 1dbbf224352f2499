package backend

// Wire shapes for the /api JSON surface. Dates are "2006-01-02" strings;
// timestamps are RFC 3339.

type healthDTO struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// statusDTO is the tagged watch-status union
type statusDTO struct {
	Kind           string `json:"kind"`
	CurrentSeason  *int   `json:"current_season,omitempty"`
	CurrentEpisode *int   `json:"current_episode,omitempty"`
	Reason         string `json:"reason,omitempty"`
	StoppedSeason  *int   `json:"stopped_season,omitempty"`
	StoppedEpisode *int   `json:"stopped_episode,omitempty"`
}

const (
	statusNotStarted = "not_started"
	statusInProgress = "in_progress"
	statusCompleted  = "completed"
	statusAbandoned  = "abandoned"
)

type seasonDTO struct {
	SeasonNumber int    `json:"season_number"`
	Name         string `json:"name,omitempty"`
	EpisodeCount int    `json:"episode_count"`
}

// mediaDTO is the tagged movie/series union
type mediaDTO struct {
	Kind         string   `json:"kind"`
	ExternalID   int64    `json:"external_id"`
	Title        string   `json:"title"`
	Overview     string   `json:"overview,omitempty"`
	PosterPath   string   `json:"poster_path,omitempty"`
	BackdropPath string   `json:"backdrop_path,omitempty"`
	Genres       []string `json:"genres,omitempty"`
	Rating       float64  `json:"vote_average,omitempty"`

	// Movie
	ReleaseDate string `json:"release_date,omitempty"`
	Runtime     int    `json:"runtime,omitempty"`

	// Series
	FirstAirDate     string      `json:"first_air_date,omitempty"`
	NumberOfSeasons  int         `json:"number_of_seasons,omitempty"`
	NumberOfEpisodes int         `json:"number_of_episodes,omitempty"`
	Seasons          []seasonDTO `json:"seasons,omitempty"`
}

type entryDTO struct {
	ID             int64     `json:"id"`
	Media          mediaDTO  `json:"media"`
	Status         statusDTO `json:"status"`
	PersonalRating *int      `json:"personal_rating"`
	Tags           []int64   `json:"tags"`
	Friends        []int64   `json:"friends"`
	DateAdded      string    `json:"date_added"`
	IsFavorite     bool      `json:"is_favorite"`
	Notes          string    `json:"notes,omitempty"`
	WhyAdded       string    `json:"why_added,omitempty"`
}

type detailDTO struct {
	Overview string      `json:"overview,omitempty"`
	Tagline  string      `json:"tagline,omitempty"`
	Seasons  []seasonDTO `json:"seasons,omitempty"`
	Cast     []string    `json:"cast,omitempty"`
	Director string      `json:"director,omitempty"`
}

type episodeDTO struct {
	Season  int  `json:"season"`
	Episode int  `json:"episode"`
	Watched bool `json:"watched"`
}

type watchedDTO struct {
	Watched bool `json:"watched"`
}

type friendDTO struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name"`
}

type tagDTO struct {
	ID    int64  `json:"id,omitempty"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

type searchResultDTO struct {
	ExternalID int64  `json:"external_id"`
	Kind       string `json:"kind"`
	Title      string `json:"title"`
	Year       int    `json:"year,omitempty"`
	PosterPath string `json:"poster_path,omitempty"`
	Overview   string `json:"overview,omitempty"`
}

type newEntryDTO struct {
	ExternalID int64   `json:"external_id"`
	Kind       string  `json:"kind"`
	Note       string  `json:"note,omitempty"`
	Tags       []int64 `json:"tags"`
	Friends    []int64 `json:"friends"`
}

// patchDTO carries only the fields being changed. A null personal_rating
// is sent when clear_rating is set.
type patchDTO struct {
	Tags           *[]int64 `json:"tags,omitempty"`
	Friends        *[]int64 `json:"friends,omitempty"`
	IsFavorite     *bool    `json:"is_favorite,omitempty"`
	PersonalRating *int     `json:"personal_rating,omitempty"`
	ClearRating    bool     `json:"clear_rating,omitempty"`
	Notes          *string  `json:"notes,omitempty"`
}
