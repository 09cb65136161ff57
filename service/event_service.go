package service

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"nscollab/config"
	"nscollab/events"
	"nscollab/models"
)

type eventService struct {
	uowFactory UnitOfWorkFactory
	now        func() time.Time
}

// NewEventService creates a new event lifecycle service
func NewEventService(uowFactory UnitOfWorkFactory) EventService {
	return &eventService{
		uowFactory: uowFactory,
		now:        time.Now,
	}
}

func (s *eventService) GetOrCreateEventForMonth(ctx context.Context, month time.Time) (*models.Event, error) {
	monthStart := models.MonthStart(month)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, internalError(err, "failed to begin transaction")
	}
	defer uow.Rollback()

	event, err := uow.EventRepository().GetByDate(ctx, monthStart)
	if err != nil {
		return nil, internalError(err, "failed to get event")
	}
	if event != nil {
		return event, nil
	}

	if monthStart.Before(models.MonthStart(s.now())) {
		return nil, newError(CodeNotFound, "There is no Demoday for %s.", monthStart.Format("January 2006"))
	}

	event, err = uow.EventRepository().CreateIfMissing(ctx, &models.Event{
		EventDate: monthStart,
		Status:    models.EventStatusUpcoming,
		HostID:    config.Get().DefaultHostID(),
	})
	if err != nil {
		return nil, internalError(err, "failed to create event")
	}

	if err := uow.Commit(); err != nil {
		return nil, internalError(err, "failed to commit transaction")
	}

	log.WithFields(log.Fields{
		"event_id":   event.ID,
		"event_date": event.EventDate.Format("2006-01-02"),
	}).Info("Demoday event ready")

	return event, nil
}

func (s *eventService) GetEvent(ctx context.Context, eventID int64) (*models.Event, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, internalError(err, "failed to begin transaction")
	}
	defer uow.Rollback()

	return getEvent(ctx, uow.EventRepository().GetByID, eventID)
}

func (s *eventService) StartPitching(ctx context.Context, eventID, requesterID int64) (*models.Event, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, internalError(err, "failed to begin transaction")
	}
	defer uow.Rollback()

	event, err := getEvent(ctx, uow.EventRepository().GetByIDForUpdate, eventID)
	if err != nil {
		return nil, err
	}
	if !isHost(event, requesterID) {
		return nil, newError(CodePermissionDenied, "Only the host can start pitching.")
	}

	if event.Status == models.EventStatusPitching {
		return event, nil
	}
	if !event.Status.CanTransitionTo(models.EventStatusPitching) {
		return nil, newError(CodePermissionDenied, "This Demoday is already completed.")
	}

	if err := uow.EventRepository().UpdateStatus(ctx, eventID, models.EventStatusPitching); err != nil {
		return nil, internalError(err, "failed to update event status")
	}

	oldStatus := event.Status
	event.Status = models.EventStatusPitching
	uow.EventBus().Publish(events.EventStatusChangedEvent{
		EventID:   event.ID,
		EventDate: event.EventDate.Format("2006-01-02"),
		OldStatus: oldStatus,
		NewStatus: event.Status,
	})

	if err := uow.Commit(); err != nil {
		return nil, internalError(err, "failed to commit transaction")
	}

	log.WithFields(log.Fields{
		"event_id": eventID,
		"host_id":  requesterID,
	}).Info("Demoday pitching started")

	return event, nil
}

func (s *eventService) UpdateDetails(ctx context.Context, eventID, requesterID int64, details models.EventDetails) (*models.Event, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, internalError(err, "failed to begin transaction")
	}
	defer uow.Rollback()

	event, err := getEvent(ctx, uow.EventRepository().GetByIDForUpdate, eventID)
	if err != nil {
		return nil, err
	}
	if !isHost(event, requesterID) {
		return nil, newError(CodePermissionDenied, "Only the host can edit event details.")
	}
	if event.IsCompleted() {
		return nil, newError(CodePermissionDenied, "This Demoday is already completed.")
	}

	if err := uow.EventRepository().UpdateDetails(ctx, eventID, details); err != nil {
		return nil, internalError(err, "failed to update event details")
	}
	event.Details = details

	if err := uow.Commit(); err != nil {
		return nil, internalError(err, "failed to commit transaction")
	}

	return event, nil
}

// getEvent loads an event with the given lookup and maps a missing row to NotFound
func getEvent(ctx context.Context, lookup func(context.Context, int64) (*models.Event, error), eventID int64) (*models.Event, error) {
	event, err := lookup(ctx, eventID)
	if err != nil {
		return nil, internalError(err, "failed to get event")
	}
	if event == nil {
		return nil, newError(CodeNotFound, "Demoday event not found.")
	}
	return event, nil
}
