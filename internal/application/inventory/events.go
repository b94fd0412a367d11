package inventory

import (
	"context"

	"github.com/storefront/inventory/internal/domain/shared"
	"go.uber.org/zap"
)

// eventSink publishes domain events after a unit of work has committed.
// Publishing is best effort; failures are logged.
type eventSink struct {
	publisher shared.EventPublisher
	logger    *zap.Logger
}

func (s *eventSink) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish domain events",
			zap.Int("event_count", len(events)),
			zap.Error(err))
	}
}
