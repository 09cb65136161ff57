package events

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"nscollab/models"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeAngelRegistered    EventType = "angel_registered"
	EventTypePitchSubmitted     EventType = "pitch_submitted"
	EventTypePitchCancelled     EventType = "pitch_cancelled"
	EventTypeInvestmentMade     EventType = "investment_made"
	EventTypeEventStatusChanged EventType = "event_status_changed"
	EventTypeResultsCalculated  EventType = "results_calculated"
)

// AllEventTypes lists every event type published by the services
var AllEventTypes = []EventType{
	EventTypeAngelRegistered,
	EventTypePitchSubmitted,
	EventTypePitchCancelled,
	EventTypeInvestmentMade,
	EventTypeEventStatusChanged,
	EventTypeResultsCalculated,
}

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// AngelRegisteredEvent represents a member receiving a funding balance
type AngelRegisteredEvent struct {
	EventID        int64        `json:"event_id"`
	UserID         int64        `json:"user_id"`
	InitialBalance models.Cents `json:"initial_balance"`
}

func (e AngelRegisteredEvent) Type() EventType {
	return EventTypeAngelRegistered
}

// PitchSubmittedEvent represents a new pitch for an event
type PitchSubmittedEvent struct {
	EventID   int64 `json:"event_id"`
	PitchID   int64 `json:"pitch_id"`
	IdeaID    int64 `json:"idea_id"`
	PitcherID int64 `json:"pitcher_id"`
}

func (e PitchSubmittedEvent) Type() EventType {
	return EventTypePitchSubmitted
}

// PitchCancelledEvent represents a pitch withdrawn by its pitcher
type PitchCancelledEvent struct {
	EventID   int64 `json:"event_id"`
	PitchID   int64 `json:"pitch_id"`
	PitcherID int64 `json:"pitcher_id"`
}

func (e PitchCancelledEvent) Type() EventType {
	return EventTypePitchCancelled
}

// InvestmentMadeEvent represents funding moved from an angel balance into a pitch
type InvestmentMadeEvent struct {
	EventID          int64        `json:"event_id"`
	InvestmentID     int64        `json:"investment_id"`
	InvestorID       int64        `json:"investor_id"`
	PitchID          int64        `json:"pitch_id"`
	Amount           models.Cents `json:"amount"`
	RemainingBalance models.Cents `json:"remaining_balance"`
}

func (e InvestmentMadeEvent) Type() EventType {
	return EventTypeInvestmentMade
}

// EventStatusChangedEvent represents a Demoday lifecycle transition
type EventStatusChangedEvent struct {
	EventID   int64              `json:"event_id"`
	EventDate string             `json:"event_date"`
	OldStatus models.EventStatus `json:"old_status"`
	NewStatus models.EventStatus `json:"new_status"`
}

func (e EventStatusChangedEvent) Type() EventType {
	return EventTypeEventStatusChanged
}

// ResultsCalculatedEvent carries a freshly persisted results snapshot
type ResultsCalculatedEvent struct {
	EventID  int64                   `json:"event_id"`
	Forced   bool                    `json:"forced"`
	Snapshot *models.ResultsSnapshot `json:"snapshot"`
}

func (e ResultsCalculatedEvent) Type() EventType {
	return EventTypeResultsCalculated
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers")

	// Call handlers asynchronously to avoid blocking
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus holds pending events coupled to a unit of work.
// Flushes to the underlying event bus.
type TransactionalBus struct {
	real    *Bus
	pending []Event // stashed until Flush
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	log.WithFields(log.Fields{
		"eventType":    e.Type(),
		"pendingCount": len(b.pending),
	}).Debug("Adding event to transactional bus pending queue")
	b.pending = append(b.pending, e)
}

// Flush is called after a successful DB commit
func (b *TransactionalBus) Flush(ctx context.Context) {
	// Handlers outlive the request, so they must not inherit its cancellation
	eventCtx := context.WithoutCancel(ctx)

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
}

// Discard is called after a db rollback
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
