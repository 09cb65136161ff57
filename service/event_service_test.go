package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"nscollab/events"
	"nscollab/models"
)

func TestEventService_GetOrCreateEventForMonth(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	t.Run("returns existing event", func(t *testing.T) {
		factory, uow, repos := newMockUoW(t)
		svc := &eventService{uowFactory: factory, now: fixedClock(now)}

		existing := &models.Event{ID: 4, EventDate: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)}
		repos.Events.On("GetByDate", ctx, existing.EventDate).Return(existing, nil)

		event, err := svc.GetOrCreateEventForMonth(ctx, time.Date(2025, 2, 20, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Equal(t, existing, event)
		uow.AssertNotCalled(t, "Commit")
	})

	t.Run("creates current month with default host", func(t *testing.T) {
		factory, uow, repos := newMockUoW(t)
		svc := &eventService{uowFactory: factory, now: fixedClock(now)}

		month := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
		repos.Events.On("GetByDate", ctx, month).Return(nil, nil)
		repos.Events.On("CreateIfMissing", ctx, mock.MatchedBy(func(e *models.Event) bool {
			return e.EventDate.Equal(month) && e.Status == models.EventStatusUpcoming &&
				e.HostID != nil && *e.HostID == testHostID
		})).Return(&models.Event{ID: 9, EventDate: month, Status: models.EventStatusUpcoming}, nil)
		uow.On("Commit").Return(nil)

		event, err := svc.GetOrCreateEventForMonth(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, int64(9), event.ID)
		repos.AssertExpectations(t)
	})

	t.Run("past month is not created", func(t *testing.T) {
		factory, _, repos := newMockUoW(t)
		svc := &eventService{uowFactory: factory, now: fixedClock(now)}

		month := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
		repos.Events.On("GetByDate", ctx, month).Return(nil, nil)

		_, err := svc.GetOrCreateEventForMonth(ctx, month)
		assert.ErrorIs(t, err, ErrNotFound)
		repos.Events.AssertNotCalled(t, "CreateIfMissing", mock.Anything, mock.Anything)
	})
}

func TestEventService_StartPitching(t *testing.T) {
	t.Run("host moves upcoming to pitching", func(t *testing.T) {
		factory, uow, repos := newMockUoW(t)
		svc := NewEventService(factory)

		repos.Events.On("GetByIDForUpdate", ctx, int64(1)).Return(testEvent(models.EventStatusUpcoming), nil)
		repos.Events.On("UpdateStatus", ctx, int64(1), models.EventStatusPitching).Return(nil)
		repos.Publisher.On("Publish", mock.MatchedBy(func(e events.EventStatusChangedEvent) bool {
			return e.OldStatus == models.EventStatusUpcoming && e.NewStatus == models.EventStatusPitching
		})).Return()
		uow.On("Commit").Return(nil)

		event, err := svc.StartPitching(ctx, 1, testHostID)
		require.NoError(t, err)
		assert.Equal(t, models.EventStatusPitching, event.Status)
		repos.AssertExpectations(t)
	})

	t.Run("event host without global role", func(t *testing.T) {
		factory, uow, repos := newMockUoW(t)
		svc := NewEventService(factory)

		hostID := int64(55)
		event := testEvent(models.EventStatusUpcoming)
		event.HostID = &hostID
		repos.Events.On("GetByIDForUpdate", ctx, int64(1)).Return(event, nil)
		repos.Events.On("UpdateStatus", ctx, int64(1), models.EventStatusPitching).Return(nil)
		repos.Publisher.On("Publish", mock.Anything).Return()
		uow.On("Commit").Return(nil)

		_, err := svc.StartPitching(ctx, 1, hostID)
		require.NoError(t, err)
	})

	t.Run("non host", func(t *testing.T) {
		factory, _, repos := newMockUoW(t)
		svc := NewEventService(factory)

		repos.Events.On("GetByIDForUpdate", ctx, int64(1)).Return(testEvent(models.EventStatusUpcoming), nil)

		_, err := svc.StartPitching(ctx, 1, 42)
		assert.ErrorIs(t, err, ErrPermissionDenied)
		repos.Events.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("already pitching is a no-op", func(t *testing.T) {
		factory, uow, repos := newMockUoW(t)
		svc := NewEventService(factory)

		repos.Events.On("GetByIDForUpdate", ctx, int64(1)).Return(testEvent(models.EventStatusPitching), nil)

		event, err := svc.StartPitching(ctx, 1, testHostID)
		require.NoError(t, err)
		assert.Equal(t, models.EventStatusPitching, event.Status)
		uow.AssertNotCalled(t, "Commit")
	})

	t.Run("completed cannot go back", func(t *testing.T) {
		factory, _, repos := newMockUoW(t)
		svc := NewEventService(factory)

		repos.Events.On("GetByIDForUpdate", ctx, int64(1)).Return(testEvent(models.EventStatusCompleted), nil)

		_, err := svc.StartPitching(ctx, 1, testHostID)
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("missing event", func(t *testing.T) {
		factory, _, repos := newMockUoW(t)
		svc := NewEventService(factory)

		repos.Events.On("GetByIDForUpdate", ctx, int64(1)).Return(nil, nil)

		_, err := svc.StartPitching(ctx, 1, testHostID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestEventService_UpdateDetails(t *testing.T) {
	details := models.EventDetails{When: "Friday 6pm", Where: "Hall B", What: "Demos", URL: "https://example.com"}

	t.Run("host updates", func(t *testing.T) {
		factory, uow, repos := newMockUoW(t)
		svc := NewEventService(factory)

		repos.Events.On("GetByIDForUpdate", ctx, int64(1)).Return(testEvent(models.EventStatusPitching), nil)
		repos.Events.On("UpdateDetails", ctx, int64(1), details).Return(nil)
		uow.On("Commit").Return(nil)

		event, err := svc.UpdateDetails(ctx, 1, testHostID, details)
		require.NoError(t, err)
		assert.Equal(t, details, event.Details)
	})

	t.Run("completed event is frozen", func(t *testing.T) {
		factory, _, repos := newMockUoW(t)
		svc := NewEventService(factory)

		repos.Events.On("GetByIDForUpdate", ctx, int64(1)).Return(testEvent(models.EventStatusCompleted), nil)

		_, err := svc.UpdateDetails(ctx, 1, testHostID, details)
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})
}
