package tracking

import (
	"context"
	"strings"

	"pingparcel/metrics"
	"pingparcel/models"
	"pingparcel/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// AppendEvent validates and stores event. The timestamp is always assigned
// here; whatever the client sent is discarded.
func (s *DefaultTrackingService) AppendEvent(ctx context.Context, event *models.TrackingEvent) (string, error) {
	if event == nil {
		return "", utils.NewInvalidArgument("tracking event body is required")
	}
	if strings.TrimSpace(event.TrackingID) == "" {
		return "", utils.NewInvalidArgument("tracking_id is required")
	}
	if strings.TrimSpace(event.Status) == "" {
		return "", utils.NewInvalidArgument("status is required")
	}

	event.ID = primitive.NilObjectID
	event.Timestamp = s.now().UTC()
	event.DropReservedExtra()

	id, err := s.Repo.Append(ctx, event)
	if err != nil {
		return "", utils.NewStoreError("append tracking event", err)
	}
	metrics.TrackingEventsTotal.WithLabelValues(s.Repo.Name()).Inc()

	if s.Cache != nil {
		if err := s.Cache.Invalidate(ctx, s.Repo.Name(), event.TrackingID); err != nil {
			s.Logger.Warn("tracking cache invalidation failed",
				zap.String("tracking_id", event.TrackingID), zap.Error(err))
		}
	}
	return id.Hex(), nil
}

// ListEvents returns the history for trackingID oldest first; an unknown id
// yields an empty slice.
func (s *DefaultTrackingService) ListEvents(ctx context.Context, trackingID string) ([]models.TrackingEvent, error) {
	if s.Cache != nil {
		events, ok, err := s.Cache.Get(ctx, s.Repo.Name(), trackingID)
		if err != nil {
			s.Logger.Warn("tracking cache read failed", zap.String("tracking_id", trackingID), zap.Error(err))
		} else if ok {
			metrics.TrackingCacheHitsTotal.Inc()
			return events, nil
		}
	}

	// The generation is taken before the store read so an append landing in
	// between keeps this result out of the cache.
	var (
		gen       int64
		cacheable = s.Cache != nil
	)
	if cacheable {
		var err error
		if gen, err = s.Cache.Generation(ctx, s.Repo.Name(), trackingID); err != nil {
			s.Logger.Warn("tracking cache generation read failed", zap.String("tracking_id", trackingID), zap.Error(err))
			cacheable = false
		}
	}

	events, err := s.Repo.ListByTrackingID(ctx, trackingID)
	if err != nil {
		return nil, utils.NewStoreError("list tracking events", err)
	}
	if events == nil {
		events = []models.TrackingEvent{}
	}

	if cacheable {
		if err := s.Cache.Set(ctx, s.Repo.Name(), trackingID, gen, events); err != nil {
			s.Logger.Warn("tracking cache write failed", zap.String("tracking_id", trackingID), zap.Error(err))
		}
	}
	return events, nil
}
