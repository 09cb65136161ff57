package service

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"nscollab/events"
	"nscollab/models"
)

type pitchService struct {
	uowFactory UnitOfWorkFactory
	now        func() time.Time
}

// NewPitchService creates a new pitch registry service
func NewPitchService(uowFactory UnitOfWorkFactory) PitchService {
	return &pitchService{
		uowFactory: uowFactory,
		now:        time.Now,
	}
}

func (s *pitchService) Submit(ctx context.Context, eventID, userID, ideaID int64) (*models.Pitch, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, internalError(err, "failed to begin transaction")
	}
	defer uow.Rollback()

	event, err := getEvent(ctx, uow.EventRepository().GetByIDForShare, eventID)
	if err != nil {
		return nil, err
	}
	if !event.AcceptsMembers() || event.IsPastMonth(s.now()) {
		return nil, newError(CodePermissionDenied, "Pitches are closed for this Demoday.")
	}

	idea, err := uow.IdeaRepository().GetByID(ctx, ideaID)
	if err != nil {
		return nil, internalError(err, "failed to get idea")
	}
	if idea == nil {
		return nil, newError(CodeNotFound, "Idea not found.")
	}
	if idea.OwnerID != userID {
		isMember, err := uow.IdeaRepository().IsMember(ctx, ideaID, userID)
		if err != nil {
			return nil, internalError(err, "failed to check idea membership")
		}
		if !isMember {
			return nil, newError(CodePermissionDenied, "You can only pitch ideas you own or work on.")
		}
	}

	existing, err := uow.PitchRepository().GetByEventAndPitcher(ctx, eventID, userID)
	if err != nil {
		return nil, internalError(err, "failed to check existing pitch")
	}
	if existing != nil {
		return nil, newError(CodeConflict, "You have already submitted a pitch for this Demoday.")
	}

	pitch := &models.Pitch{
		EventID:   eventID,
		IdeaID:    ideaID,
		PitcherID: userID,
	}
	if err := uow.PitchRepository().Create(ctx, pitch); err != nil {
		switch {
		case errors.Is(err, ErrUniqueViolation):
			return nil, newError(CodeConflict, "You have already submitted a pitch for this Demoday.")
		case errors.Is(err, ErrForeignKeyViolation):
			return nil, newError(CodeNotFound, "Idea not found.")
		}
		return nil, internalError(err, "failed to create pitch")
	}

	uow.EventBus().Publish(events.PitchSubmittedEvent{
		EventID:   eventID,
		PitchID:   pitch.ID,
		IdeaID:    ideaID,
		PitcherID: userID,
	})

	if err := uow.Commit(); err != nil {
		return nil, internalError(err, "failed to commit transaction")
	}

	log.WithFields(log.Fields{
		"event_id": eventID,
		"pitch_id": pitch.ID,
		"idea_id":  ideaID,
		"user_id":  userID,
	}).Info("Pitch submitted")

	return pitch, nil
}

func (s *pitchService) Cancel(ctx context.Context, pitchID, requesterID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return internalError(err, "failed to begin transaction")
	}
	defer uow.Rollback()

	pitch, err := uow.PitchRepository().GetByIDForUpdate(ctx, pitchID)
	if err != nil {
		return internalError(err, "failed to get pitch")
	}
	if pitch == nil {
		return newError(CodeNotFound, "Pitch not found.")
	}
	if pitch.PitcherID != requesterID {
		return newError(CodePermissionDenied, "Only the pitcher can cancel this pitch.")
	}

	event, err := getEvent(ctx, uow.EventRepository().GetByIDForShare, pitch.EventID)
	if err != nil {
		return err
	}
	if event.IsCompleted() {
		return newError(CodePermissionDenied, "This Demoday is already completed.")
	}

	count, err := uow.InvestmentRepository().CountByPitch(ctx, pitchID)
	if err != nil {
		return internalError(err, "failed to count investments")
	}
	if count > 0 {
		return newError(CodeConflict, "This pitch has already received investments and cannot be cancelled.")
	}

	if err := uow.PitchRepository().Delete(ctx, pitchID); err != nil {
		if errors.Is(err, ErrForeignKeyViolation) {
			return newError(CodeConflict, "This pitch has already received investments and cannot be cancelled.")
		}
		return internalError(err, "failed to delete pitch")
	}

	uow.EventBus().Publish(events.PitchCancelledEvent{
		EventID:   pitch.EventID,
		PitchID:   pitchID,
		PitcherID: requesterID,
	})

	if err := uow.Commit(); err != nil {
		return internalError(err, "failed to commit transaction")
	}

	log.WithFields(log.Fields{
		"event_id": pitch.EventID,
		"pitch_id": pitchID,
		"user_id":  requesterID,
	}).Info("Pitch cancelled")

	return nil
}

func (s *pitchService) ListPitches(ctx context.Context, eventID int64) ([]*models.PitchDetail, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, internalError(err, "failed to begin transaction")
	}
	defer uow.Rollback()

	if _, err := getEvent(ctx, uow.EventRepository().GetByID, eventID); err != nil {
		return nil, err
	}

	pitches, err := uow.PitchRepository().GetDetailsByEvent(ctx, eventID)
	if err != nil {
		return nil, internalError(err, "failed to list pitches")
	}
	return pitches, nil
}
