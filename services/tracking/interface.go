package tracking

import (
	"context"
	"time"

	trackingRepo "pingparcel/database/repository/tracking"
	"pingparcel/models"

	"go.uber.org/zap"
)

// TrackingService is an append-only ledger of tracking events.
type TrackingService interface {
	AppendEvent(ctx context.Context, event *models.TrackingEvent) (string, error)
	ListEvents(ctx context.Context, trackingID string) ([]models.TrackingEvent, error)
}

// DefaultTrackingService is the production implementation. Cache is optional.
type DefaultTrackingService struct {
	Repo   trackingRepo.TrackingRepository
	Cache  EventCache
	Logger *zap.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

func NewDefaultTrackingService(repo trackingRepo.TrackingRepository, cache EventCache, logger *zap.Logger) *DefaultTrackingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultTrackingService{
		Repo:   repo,
		Cache:  cache,
		Logger: logger,
		Now:    time.Now,
	}
}

func (s *DefaultTrackingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
