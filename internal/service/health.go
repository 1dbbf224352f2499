package service

import (
	"context"
	"log/slog"

	"github.com/mmcdole/watchlog/internal/domain"
)

// HealthService reports backend liveness
type HealthService struct {
	client domain.HealthClient
	logger *slog.Logger
}

// NewHealthService creates a new health service
func NewHealthService(client domain.HealthClient, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{client: client, logger: logger}
}

// Health returns the backend's self-reported status
func (s *HealthService) Health(ctx context.Context) (domain.Health, error) {
	h, err := s.client.Health(ctx)
	if err != nil {
		s.logger.Warn("backend health check failed", "error", err)
		return domain.Health{}, err
	}
	if !h.OK() {
		s.logger.Warn("backend reports degraded health", "status", h.Status)
	}
	s.logger.Debug("backend health", "status", h.Status, "version", h.Version)
	return h, nil
}
