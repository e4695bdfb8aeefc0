package notify

import (
	"context"

	"github.com/nmadhukar/workforcenexus/internal/core/domain"
	"github.com/nmadhukar/workforcenexus/internal/log"
)

// LogPublisher writes each outbox event to the structured log. It is the
// default publisher when no webhook endpoint is configured.
type LogPublisher struct{}

func NewLogPublisher() *LogPublisher {
	return &LogPublisher{}
}

func (p *LogPublisher) Publish(_ context.Context, topic string, event domain.EventEnvelope) error {
	log.WithComponent("notify").Info().
		Str("topic", topic).
		Str("event_id", event.EventID).
		Str("event_type", event.EventType).
		Str("entity", event.Entity).
		Str("entity_id", event.EntityID).
		Str("actor", event.Actor).
		Msg("outbox publish")
	return nil
}
