package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mmcdole/watchlog/internal/domain"
)

// FriendService handles friend CRUD
type FriendService struct {
	client domain.FriendClient
	logger *slog.Logger
}

// NewFriendService creates a new friend service
func NewFriendService(client domain.FriendClient, logger *slog.Logger) *FriendService {
	if logger == nil {
		logger = slog.Default()
	}
	return &FriendService{client: client, logger: logger}
}

// FetchFriends returns all friends
func (s *FriendService) FetchFriends(ctx context.Context) ([]domain.Friend, error) {
	friends, err := s.client.FetchFriends(ctx)
	if err != nil {
		s.logger.Error("failed to fetch friends", "error", err)
		return nil, err
	}
	s.logger.Debug("fetched friends", "count", len(friends))
	return friends, nil
}

// AddFriend creates a friend
func (s *FriendService) AddFriend(ctx context.Context, input domain.FriendInput) (domain.Friend, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return domain.Friend{}, &domain.ValidationError{Field: "name", Message: "Name is required"}
	}
	friend, err := s.client.AddFriend(ctx, input)
	if err != nil {
		s.logger.Error("failed to add friend", "name", input.Name, "error", err)
		return domain.Friend{}, err
	}
	s.logger.Info("added friend", "friend", friend.ID)
	return friend, nil
}

// UpdateFriend renames a friend
func (s *FriendService) UpdateFriend(ctx context.Context, id domain.FriendID, input domain.FriendInput) (domain.Friend, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return domain.Friend{}, &domain.ValidationError{Field: "name", Message: "Name is required"}
	}
	friend, err := s.client.UpdateFriend(ctx, id, input)
	if err != nil {
		s.logger.Error("failed to update friend", "friend", id, "error", err)
		return domain.Friend{}, err
	}
	s.logger.Debug("updated friend", "friend", id)
	return friend, nil
}

// DeleteFriend removes a friend
func (s *FriendService) DeleteFriend(ctx context.Context, id domain.FriendID) error {
	if err := s.client.DeleteFriend(ctx, id); err != nil {
		s.logger.Error("failed to delete friend", "friend", id, "error", err)
		return err
	}
	s.logger.Info("deleted friend", "friend", id)
	return nil
}

// TagService handles tag CRUD
type TagService struct {
	client domain.TagClient
	logger *slog.Logger
}

// NewTagService creates a new tag service
func NewTagService(client domain.TagClient, logger *slog.Logger) *TagService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TagService{client: client, logger: logger}
}

// FetchTags returns all tags
func (s *TagService) FetchTags(ctx context.Context) ([]domain.Tag, error) {
	tags, err := s.client.FetchTags(ctx)
	if err != nil {
		s.logger.Error("failed to fetch tags", "error", err)
		return nil, err
	}
	s.logger.Debug("fetched tags", "count", len(tags))
	return tags, nil
}

// AddTag creates a tag
func (s *TagService) AddTag(ctx context.Context, input domain.TagInput) (domain.Tag, error) {
	input = normalizeTag(input)
	if input.Name == "" {
		return domain.Tag{}, &domain.ValidationError{Field: "name", Message: "Name is required"}
	}
	tag, err := s.client.AddTag(ctx, input)
	if err != nil {
		s.logger.Error("failed to add tag", "name", input.Name, "error", err)
		return domain.Tag{}, err
	}
	s.logger.Info("added tag", "tag", tag.ID)
	return tag, nil
}

// UpdateTag edits a tag
func (s *TagService) UpdateTag(ctx context.Context, id domain.TagID, input domain.TagInput) (domain.Tag, error) {
	input = normalizeTag(input)
	if input.Name == "" {
		return domain.Tag{}, &domain.ValidationError{Field: "name", Message: "Name is required"}
	}
	tag, err := s.client.UpdateTag(ctx, id, input)
	if err != nil {
		s.logger.Error("failed to update tag", "tag", id, "error", err)
		return domain.Tag{}, err
	}
	s.logger.Debug("updated tag", "tag", id)
	return tag, nil
}

// DeleteTag removes a tag
func (s *TagService) DeleteTag(ctx context.Context, id domain.TagID) error {
	if err := s.client.DeleteTag(ctx, id); err != nil {
		s.logger.Error("failed to delete tag", "tag", id, "error", err)
		return err
	}
	s.logger.Info("deleted tag", "tag", id)
	return nil
}

// normalizeTag trims input and lower-cases the color so "#ABC" and "#abc" match
func normalizeTag(input domain.TagInput) domain.TagInput {
	input.Name = strings.TrimSpace(input.Name)
	input.Color = strings.ToLower(strings.TrimSpace(input.Color))
	return input
}
