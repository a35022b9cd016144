package service

import (
	"context"

	"github.com/weiawesome/wes-chat/pkg/log"
	"github.com/weiawesome/wes-chat/pkg/pubsub"
)

// publish emits a lifecycle event. Failures are logged and never returned;
// the write has already been committed.
func publish(ctx context.Context, pub pubsub.Publisher, channel, eventType, resourceID, actorID string, payload interface{}) {
	if pub == nil {
		return
	}

	l := log.Ctx(ctx)
	evt, err := pubsub.NewEvent(eventType, resourceID, actorID, payload)
	if err != nil {
		l.Warn().Err(err).Str("event_type", eventType).Msg("failed to build event")
		return
	}
	if err := pub.Publish(ctx, channel, evt); err != nil {
		l.Warn().Err(err).Str("event_type", eventType).Str(log.FieldResourceID, resourceID).Msg("failed to publish event")
	}
}
