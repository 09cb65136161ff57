package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"nscollab/events"
	"nscollab/models"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	args := m.Called(ctx, subject, data)
	return args.Error(0)
}

func TestSubjectFor(t *testing.T) {
	tests := []struct {
		eventType events.EventType
		expected  string
	}{
		{events.EventTypeAngelRegistered, "demoday.angel_registered"},
		{events.EventTypeInvestmentMade, "demoday.investment_made"},
		{events.EventTypeResultsCalculated, "demoday.results_calculated"},
	}

	for _, tt := range tests {
		t.Run(string(tt.eventType), func(t *testing.T) {
			assert.Equal(t, tt.expected, SubjectFor(tt.eventType))
		})
	}
}

func TestEventForwarder_Forward(t *testing.T) {
	publisher := new(mockPublisher)
	forwarder := NewEventForwarder(publisher)
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	forwarder.now = func() time.Time { return fixed }

	var captured []byte
	publisher.On("Publish", mock.Anything, "demoday.investment_made", mock.Anything).
		Run(func(args mock.Arguments) { captured = args.Get(2).([]byte) }).
		Return(nil)

	event := events.InvestmentMadeEvent{EventID: 1, InvestmentID: 2, InvestorID: 3, PitchID: 4, Amount: 1250, RemainingBalance: 8750}
	require.NoError(t, forwarder.Forward(context.Background(), event))

	var envelope EventEnvelope
	require.NoError(t, json.Unmarshal(captured, &envelope))
	assert.Equal(t, "investment_made", envelope.EventType)
	assert.Equal(t, fixed, envelope.Timestamp)
	_, err := uuid.Parse(envelope.EventID)
	assert.NoError(t, err)

	var payload events.InvestmentMadeEvent
	require.NoError(t, json.Unmarshal(envelope.Payload, &payload))
	assert.Equal(t, event, payload)
	assert.Equal(t, models.Cents(1250), payload.Amount)
}

func TestEventForwarder_PublishError(t *testing.T) {
	publisher := new(mockPublisher)
	forwarder := NewEventForwarder(publisher)

	publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("nats down"))

	err := forwarder.Forward(context.Background(), events.PitchCancelledEvent{EventID: 1, PitchID: 2, PitcherID: 3})
	assert.Error(t, err)

	// handle swallows the error after logging
	assert.NotPanics(t, func() {
		forwarder.handle(context.Background(), events.PitchCancelledEvent{EventID: 1})
	})
}
