package service

import (
	"context"
	"log/slog"

	"github.com/mmcdole/watchlog/internal/domain"
)

// EpisodeService handles per-episode progress for series entries
type EpisodeService struct {
	client domain.EpisodeClient
	logger *slog.Logger
}

// NewEpisodeService creates a new episode service
func NewEpisodeService(client domain.EpisodeClient, logger *slog.Logger) *EpisodeService {
	if logger == nil {
		logger = slog.Default()
	}
	return &EpisodeService{client: client, logger: logger}
}

// FetchEpisodeProgress returns all progress records for an entry
func (s *EpisodeService) FetchEpisodeProgress(ctx context.Context, id domain.EntryID) ([]domain.EpisodeProgress, error) {
	episodes, err := s.client.FetchEpisodeProgress(ctx, id)
	if err != nil {
		s.logger.Error("failed to fetch episode progress", "entry", id, "error", err)
		return nil, err
	}
	s.logger.Debug("fetched episode progress", "entry", id, "count", len(episodes))
	return episodes, nil
}

// ToggleEpisode sets one episode's watched flag
func (s *EpisodeService) ToggleEpisode(ctx context.Context, id domain.EntryID, season, episode int, watched bool) ([]domain.EpisodeProgress, error) {
	if season < 1 || episode < 1 {
		return nil, &domain.ValidationError{Field: "episode", Message: "Season and episode start at 1"}
	}
	episodes, err := s.client.ToggleEpisode(ctx, id, season, episode, watched)
	if err != nil {
		s.logger.Error("failed to toggle episode", "entry", id, "episode", domain.EpisodeKey{Season: season, Episode: episode}, "error", err)
		return nil, err
	}
	s.logger.Debug("toggled episode", "entry", id, "episode", domain.EpisodeKey{Season: season, Episode: episode}, "watched", watched)
	return episodes, nil
}

// MarkSeason marks every episode of a season watched
func (s *EpisodeService) MarkSeason(ctx context.Context, id domain.EntryID, season int) ([]domain.EpisodeProgress, error) {
	if season < 1 {
		return nil, &domain.ValidationError{Field: "season", Message: "Season starts at 1"}
	}
	episodes, err := s.client.MarkSeason(ctx, id, season)
	if err != nil {
		s.logger.Error("failed to mark season", "entry", id, "season", season, "error", err)
		return nil, err
	}
	s.logger.Debug("marked season", "entry", id, "season", season, "count", len(episodes))
	return episodes, nil
}
