package backend

import (
	"time"

	"github.com/mmcdole/watchlog/internal/domain"
)

const dateLayout = "2006-01-02"

// parseDate accepts a plain date or an RFC 3339 timestamp. Empty or
// malformed values yield nil.
func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{dateLayout, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func parseTimestamp(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t := parseDate(s); t != nil {
		return *t
	}
	return time.Time{}
}

// mapStatus converts a wire status to the domain union. Unknown kinds map to
// NotStarted.
func mapStatus(s statusDTO) domain.WatchStatus {
	switch s.Kind {
	case statusInProgress:
		return domain.InProgress{CurrentSeason: s.CurrentSeason, CurrentEpisode: s.CurrentEpisode}
	case statusCompleted:
		return domain.Completed{}
	case statusAbandoned:
		return domain.Abandoned{Reason: s.Reason, StoppedSeason: s.StoppedSeason, StoppedEpisode: s.StoppedEpisode}
	default:
		return domain.NotStarted{}
	}
}

// toStatusDTO converts a domain status to its wire form
func toStatusDTO(s domain.WatchStatus) statusDTO {
	switch v := s.(type) {
	case domain.InProgress:
		return statusDTO{Kind: statusInProgress, CurrentSeason: v.CurrentSeason, CurrentEpisode: v.CurrentEpisode}
	case domain.Completed:
		return statusDTO{Kind: statusCompleted}
	case domain.Abandoned:
		return statusDTO{Kind: statusAbandoned, Reason: v.Reason, StoppedSeason: v.StoppedSeason, StoppedEpisode: v.StoppedEpisode}
	default:
		return statusDTO{Kind: statusNotStarted}
	}
}

func mapSeasons(in []seasonDTO) []domain.SeasonInfo {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.SeasonInfo, len(in))
	for i, s := range in {
		out[i] = domain.SeasonInfo{Number: s.SeasonNumber, Name: s.Name, EpisodeCount: s.EpisodeCount}
	}
	return out
}

// mapMedia converts the wire media union
func mapMedia(m mediaDTO) domain.Media {
	if m.Kind == domain.MediaKindSeries.String() {
		return &domain.Series{
			ExternalID:       m.ExternalID,
			Title:            m.Title,
			Overview:         m.Overview,
			PosterPath:       m.PosterPath,
			BackdropPath:     m.BackdropPath,
			FirstAirDate:     parseDate(m.FirstAirDate),
			Genres:           m.Genres,
			Rating:           m.Rating,
			NumberOfSeasons:  m.NumberOfSeasons,
			NumberOfEpisodes: m.NumberOfEpisodes,
			Seasons:          mapSeasons(m.Seasons),
		}
	}
	return &domain.Movie{
		ExternalID:   m.ExternalID,
		Title:        m.Title,
		Overview:     m.Overview,
		PosterPath:   m.PosterPath,
		BackdropPath: m.BackdropPath,
		ReleaseDate:  parseDate(m.ReleaseDate),
		Genres:       m.Genres,
		Rating:       m.Rating,
		Runtime:      m.Runtime,
	}
}

func mapIDs[T ~int64](in []int64) []T {
	if len(in) == 0 {
		return nil
	}
	out := make([]T, len(in))
	for i, id := range in {
		out[i] = T(id)
	}
	return out
}

func wireIDs[T ~int64](in []T) []int64 {
	out := make([]int64, len(in))
	for i, id := range in {
		out[i] = int64(id)
	}
	return out
}

// mapEntry converts one wire entry
func mapEntry(e entryDTO) domain.LibraryEntry {
	return domain.LibraryEntry{
		ID:             domain.EntryID(e.ID),
		Media:          mapMedia(e.Media),
		Status:         mapStatus(e.Status),
		PersonalRating: e.PersonalRating,
		Tags:           mapIDs[domain.TagID](e.Tags),
		Friends:        mapIDs[domain.FriendID](e.Friends),
		DateAdded:      parseTimestamp(e.DateAdded),
		IsFavorite:     e.IsFavorite,
		Notes:          e.Notes,
		WhyAdded:       e.WhyAdded,
	}
}

// mapEntries converts a wire library listing
func mapEntries(in []entryDTO) []domain.LibraryEntry {
	out := make([]domain.LibraryEntry, 0, len(in))
	for _, e := range in {
		out = append(out, mapEntry(e))
	}
	return out
}

// mapDetail converts the detail payload for id
func mapDetail(id domain.EntryID, d detailDTO) domain.EntryDetail {
	return domain.EntryDetail{
		EntryID:  id,
		Overview: d.Overview,
		Tagline:  d.Tagline,
		Seasons:  mapSeasons(d.Seasons),
		Cast:     d.Cast,
		Director: d.Director,
	}
}

// mapEpisodes converts progress records, stamping them with the owning entry
func mapEpisodes(id domain.EntryID, in []episodeDTO) []domain.EpisodeProgress {
	out := make([]domain.EpisodeProgress, 0, len(in))
	for _, ep := range in {
		out = append(out, domain.EpisodeProgress{EntryID: id, Season: ep.Season, Episode: ep.Episode, Watched: ep.Watched})
	}
	return out
}

func mapFriend(f friendDTO) domain.Friend {
	return domain.Friend{ID: domain.FriendID(f.ID), Name: f.Name}
}

func mapFriends(in []friendDTO) []domain.Friend {
	out := make([]domain.Friend, 0, len(in))
	for _, f := range in {
		out = append(out, mapFriend(f))
	}
	return out
}

func mapTag(t tagDTO) domain.Tag {
	return domain.Tag{ID: domain.TagID(t.ID), Name: t.Name, Color: t.Color}
}

func mapTags(in []tagDTO) []domain.Tag {
	out := make([]domain.Tag, 0, len(in))
	for _, t := range in {
		out = append(out, mapTag(t))
	}
	return out
}

func mediaKind(s string) domain.MediaKind {
	if s == domain.MediaKindSeries.String() || s == "tv" {
		return domain.MediaKindSeries
	}
	return domain.MediaKindMovie
}

// mapSearchResults converts search hits
func mapSearchResults(in []searchResultDTO) []domain.SearchResult {
	out := make([]domain.SearchResult, 0, len(in))
	for _, r := range in {
		out = append(out, domain.SearchResult{
			ExternalID: r.ExternalID,
			Kind:       mediaKind(r.Kind),
			Title:      r.Title,
			Year:       r.Year,
			PosterPath: r.PosterPath,
			Overview:   r.Overview,
		})
	}
	return out
}

// toNewEntryDTO builds the add-entry request body
func toNewEntryDTO(e domain.NewEntry) newEntryDTO {
	return newEntryDTO{
		ExternalID: e.Selection.ExternalID,
		Kind:       e.Selection.Kind.String(),
		Note:       e.Note,
		Tags:       wireIDs(e.Tags),
		Friends:    wireIDs(e.Friends),
	}
}

// toPatchDTO builds the update-entry request body
func toPatchDTO(p domain.EntryPatch) patchDTO {
	out := patchDTO{
		IsFavorite:     p.IsFavorite,
		PersonalRating: p.PersonalRating,
		ClearRating:    p.ClearRating,
		Notes:          p.Notes,
	}
	if p.Tags != nil {
		ids := wireIDs(*p.Tags)
		out.Tags = &ids
	}
	if p.Friends != nil {
		ids := wireIDs(*p.Friends)
		out.Friends = &ids
	}
	return out
}
