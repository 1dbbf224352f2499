package progress

import (
	"slices"

	"github.com/mmcdole/watchlog/internal/domain"
)

// WatchedEpisodeCount counts watched records belonging to the entry
func WatchedEpisodeCount(id domain.EntryID, episodes []domain.EpisodeProgress) int {
	n := 0
	for _, ep := range episodes {
		if ep.EntryID == id && ep.Watched {
			n++
		}
	}
	return n
}

// IsWatched reports whether a specific episode is marked watched
func IsWatched(episodes []domain.EpisodeProgress, key domain.EpisodeKey) bool {
	for _, ep := range episodes {
		if ep.Key() == key {
			return ep.Watched
		}
	}
	return false
}

// SetEpisode returns a copy of episodes with one record set to watched.
// It never touches the entry's watch status.
func SetEpisode(entry domain.LibraryEntry, episodes []domain.EpisodeProgress, key domain.EpisodeKey, watched bool) ([]domain.EpisodeProgress, error) {
	if !entry.IsSeries() {
		return episodes, domain.ErrNotASeries
	}
	out := slices.Clone(episodes)
	for i := range out {
		if out[i].Key() == key {
			out[i].Watched = watched
			return out, nil
		}
	}
	out = append(out, domain.EpisodeProgress{EntryID: entry.ID, Season: key.Season, Episode: key.Episode, Watched: watched})
	sortEpisodes(out)
	return out, nil
}

// MarkSeason returns a copy of episodes with every episode of season watched.
// count is the season's episode count (see SeasonEpisodeCounts).
func MarkSeason(entry domain.LibraryEntry, episodes []domain.EpisodeProgress, season, count int) ([]domain.EpisodeProgress, error) {
	if !entry.IsSeries() {
		return episodes, domain.ErrNotASeries
	}
	out := slices.Clone(episodes)
	for ep := 1; ep <= count; ep++ {
		var err error
		out, err = SetEpisode(entry, out, domain.EpisodeKey{Season: season, Episode: ep}, true)
		if err != nil {
			return episodes, err
		}
	}
	return out, nil
}

func sortEpisodes(episodes []domain.EpisodeProgress) {
	slices.SortFunc(episodes, func(a, b domain.EpisodeProgress) int {
		if a.Season != b.Season {
			return a.Season - b.Season
		}
		return a.Episode - b.Episode
	})
}

// SeasonEpisodeCounts returns the episode count of each regular season.
//
// Exact counts come from the detail payload when it has them, then from the
// series payload. Otherwise the total is divided evenly across seasons with
// the remainder going to the last season. That fallback is an approximation
// and can be wrong for series with uneven seasons.
func SeasonEpisodeCounts(series *domain.Series, detail *domain.EntryDetail) map[int]int {
	if series == nil {
		return nil
	}
	if detail != nil {
		if counts := exactCounts(detail.Seasons); counts != nil {
			return counts
		}
	}
	if counts := exactCounts(series.Seasons); counts != nil {
		return counts
	}
	return estimateCounts(series.NumberOfEpisodes, series.NumberOfSeasons)
}

func exactCounts(seasons []domain.SeasonInfo) map[int]int {
	counts := make(map[int]int)
	for _, s := range seasons {
		if s.Number == 0 {
			continue // specials are not part of the episode total
		}
		if s.EpisodeCount <= 0 {
			return nil
		}
		counts[s.Number] = s.EpisodeCount
	}
	if len(counts) == 0 {
		return nil
	}
	return counts
}

func estimateCounts(totalEpisodes, seasons int) map[int]int {
	if seasons <= 0 || totalEpisodes <= 0 {
		return map[int]int{}
	}
	per := totalEpisodes / seasons
	counts := make(map[int]int, seasons)
	for s := 1; s <= seasons; s++ {
		counts[s] = per
	}
	counts[seasons] += totalEpisodes - per*seasons
	return counts
}

// SeasonProgress summarizes one season
type SeasonProgress struct {
	Season  int
	Watched int
	Total   int
}

// Complete reports whether every episode of the season is watched
func (s SeasonProgress) Complete() bool {
	return s.Total > 0 && s.Watched >= s.Total
}

// Seasons returns per-season progress in season order
func Seasons(entry domain.LibraryEntry, episodes []domain.EpisodeProgress, detail *domain.EntryDetail) []SeasonProgress {
	counts := SeasonEpisodeCounts(entry.Series(), detail)
	out := make([]SeasonProgress, 0, len(counts))
	for season, total := range counts {
		sp := SeasonProgress{Season: season, Total: total}
		for _, ep := range episodes {
			if ep.EntryID == entry.ID && ep.Season == season && ep.Watched {
				sp.Watched++
			}
		}
		out = append(out, sp)
	}
	slices.SortFunc(out, func(a, b SeasonProgress) int { return a.Season - b.Season })
	return out
}

// NextEpisode returns the first unwatched episode in season order
func NextEpisode(entry domain.LibraryEntry, episodes []domain.EpisodeProgress, detail *domain.EntryDetail) (domain.EpisodeKey, bool) {
	for _, sp := range Seasons(entry, episodes, detail) {
		for ep := 1; ep <= sp.Total; ep++ {
			key := domain.EpisodeKey{Season: sp.Season, Episode: ep}
			if !IsWatched(episodes, key) {
				return key, true
			}
		}
	}
	return domain.EpisodeKey{}, false
}

// PercentWatched returns the share of watched episodes, 0-100
func PercentWatched(entry domain.LibraryEntry, episodes []domain.EpisodeProgress) float64 {
	series := entry.Series()
	if series == nil || series.NumberOfEpisodes == 0 {
		return 0
	}
	pct := float64(WatchedEpisodeCount(entry.ID, episodes)) / float64(series.NumberOfEpisodes) * 100
	return min(pct, 100)
}
