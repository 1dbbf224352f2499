package service

import (
	"context"
	"log/slog"

	"github.com/mmcdole/watchlog/internal/domain"
)

// LibraryService handles library entries and their watch status
type LibraryService struct {
	client domain.LibraryClient
	logger *slog.Logger
}

// NewLibraryService creates a new library service
func NewLibraryService(client domain.LibraryClient, logger *slog.Logger) *LibraryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LibraryService{
		client: client,
		logger: logger,
	}
}

// FetchLibrary returns every entry in the library
func (s *LibraryService) FetchLibrary(ctx context.Context) ([]domain.LibraryEntry, error) {
	entries, err := s.client.FetchLibrary(ctx)
	if err != nil {
		s.logger.Error("failed to fetch library", "error", err)
		return nil, err
	}
	s.logger.Debug("fetched library", "count", len(entries))
	return entries, nil
}

// FetchEntryDetail returns the detail payload for one entry
func (s *LibraryService) FetchEntryDetail(ctx context.Context, id domain.EntryID) (domain.EntryDetail, error) {
	detail, err := s.client.FetchEntryDetail(ctx, id)
	if err != nil {
		s.logger.Error("failed to fetch entry detail", "entry", id, "error", err)
		return domain.EntryDetail{}, err
	}
	s.logger.Debug("fetched entry detail", "entry", id, "seasons", len(detail.Seasons))
	return detail, nil
}

// AddEntry creates an entry from a search selection
func (s *LibraryService) AddEntry(ctx context.Context, entry domain.NewEntry) (domain.LibraryEntry, error) {
	added, err := s.client.AddEntry(ctx, entry)
	if err != nil {
		s.logger.Error("failed to add entry", "title", entry.Selection.Title, "error", err)
		return domain.LibraryEntry{}, err
	}
	s.logger.Info("added entry", "entry", added.ID, "title", added.Title())
	return added, nil
}

// UpdateEntry applies an in-place edit
func (s *LibraryService) UpdateEntry(ctx context.Context, id domain.EntryID, patch domain.EntryPatch) (domain.LibraryEntry, error) {
	if patch.PersonalRating != nil && (*patch.PersonalRating < 1 || *patch.PersonalRating > 5) {
		return domain.LibraryEntry{}, &domain.ValidationError{Field: "rating", Message: "Rating must be between 1 and 5"}
	}
	updated, err := s.client.UpdateEntry(ctx, id, patch)
	if err != nil {
		s.logger.Error("failed to update entry", "entry", id, "error", err)
		return domain.LibraryEntry{}, err
	}
	s.logger.Debug("updated entry", "entry", id)
	return updated, nil
}

// SetWatchStatus persists a status transition
func (s *LibraryService) SetWatchStatus(ctx context.Context, id domain.EntryID, status domain.WatchStatus) (domain.LibraryEntry, error) {
	updated, err := s.client.SetWatchStatus(ctx, id, status)
	if err != nil {
		s.logger.Error("failed to set watch status", "entry", id, "status", domain.StatusKindOf(status), "error", err)
		return domain.LibraryEntry{}, err
	}
	s.logger.Info("set watch status", "entry", id, "status", domain.StatusKindOf(updated.Status))
	return updated, nil
}

// DeleteEntry removes an entry
func (s *LibraryService) DeleteEntry(ctx context.Context, id domain.EntryID) error {
	if err := s.client.DeleteEntry(ctx, id); err != nil {
		s.logger.Error("failed to delete entry", "entry", id, "error", err)
		return err
	}
	s.logger.Info("deleted entry", "entry", id)
	return nil
}
