package events

import (
	"context"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/digital-station/platform/internal/shared/metrics"
)

// Publisher is what the engines depend on. Bus implements it; Nop is used
// when KurrentDB is disabled.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// PublishBestEffort publishes after the state change has been committed.
// Failures are logged and counted but never fail the request: the Case Store
// is the source of truth and the event stream is an audit trail. The request
// id, when present, becomes the correlation id.
func PublishBestEffort(ctx context.Context, pub Publisher, event Event) {
	if pub == nil {
		return
	}
	if event.CorrelationID == "" {
		event.CorrelationID = middleware.GetReqID(ctx)
	}
	err := pub.Publish(ctx, event)
	metrics.RecordEventPublished(event.Type, err)
	if err != nil {
		zap.S().Warnw("failed to publish domain event",
			"type", event.Type,
			"subject", event.Subject,
			"error", err,
		)
	}
}

var (
	_ Publisher = (*Bus)(nil)
	_ Publisher = Nop{}
)
