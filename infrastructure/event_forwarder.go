package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"nscollab/events"
	"nscollab/observability"
)

// SubjectPrefix prefixes every forwarded event subject
const SubjectPrefix = "demoday"

// EventEnvelope wraps a forwarded event payload
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Timestamp     time.Time       `json:"timestamp"`
	SourceService string          `json:"source_service"`
	Payload       json.RawMessage `json:"payload"`
}

// SubjectFor returns the message bus subject of an event
func SubjectFor(eventType events.EventType) string {
	return fmt.Sprintf("%s.%s", SubjectPrefix, eventType)
}

// MessagePublisher delivers an encoded envelope to a bus subject. NATSClient implements it.
type MessagePublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// EventForwarder relays committed domain events to a message bus
type EventForwarder struct {
	publisher MessagePublisher
	now       func() time.Time
}

// NewEventForwarder creates a forwarder publishing through publisher
func NewEventForwarder(publisher MessagePublisher) *EventForwarder {
	return &EventForwarder{
		publisher: publisher,
		now:       time.Now,
	}
}

// Subscribe registers the forwarder for every domain event type
func (f *EventForwarder) Subscribe(bus *events.Bus) {
	for _, eventType := range events.AllEventTypes {
		bus.Subscribe(eventType, f.handle)
	}
}

func (f *EventForwarder) handle(ctx context.Context, event events.Event) {
	if err := f.Forward(ctx, event); err != nil {
		observability.EventsForwardedTotal.WithLabelValues("failed").Inc()
		log.WithFields(log.Fields{
			"eventType": event.Type(),
			"error":     err,
		}).Error("Failed to forward event")
		return
	}
	observability.EventsForwardedTotal.WithLabelValues("ok").Inc()
}

// Forward publishes one event wrapped in an envelope
func (f *EventForwarder) Forward(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	envelope := EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     string(event.Type()),
		Timestamp:     f.now().UTC(),
		SourceService: "demoday-service",
		Payload:       payload,
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	return f.publisher.Publish(ctx, SubjectFor(event.Type()), data)
}
