package service

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"

	"nscollab/events"
	"nscollab/models"
)

type resultsService struct {
	uowFactory UnitOfWorkFactory
}

// NewResultsService creates a new results calculator
func NewResultsService(uowFactory UnitOfWorkFactory) ResultsService {
	return &resultsService{
		uowFactory: uowFactory,
	}
}

func (s *resultsService) Calculate(ctx context.Context, eventID, requesterID int64, force bool) (*models.ResultsSnapshot, error) {
	logger := log.WithFields(log.Fields{
		"event_id": eventID,
		"user_id":  requesterID,
		"force":    force,
	})

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, internalError(err, "failed to begin transaction")
	}
	defer uow.Rollback()

	// Exclusive lock: waits for in-flight investments and blocks new ones
	event, err := getEvent(ctx, uow.EventRepository().GetByIDForUpdate, eventID)
	if err != nil {
		return nil, err
	}
	if !isHost(event, requesterID) {
		return nil, newError(CodePermissionDenied, "Only the host can calculate results.")
	}

	existing, err := uow.ResultsRepository().GetByEvent(ctx, eventID)
	if err != nil {
		return nil, internalError(err, "failed to check existing results")
	}
	if existing != nil {
		if !force {
			return nil, newError(CodeAlreadyCalculated, "Results have already been calculated for this Demoday.")
		}
		logger.WithField("previous_calculated_at", existing.CalculatedAt).Warn("Forcing results recalculation, replacing previous snapshot and final balances")
		if err := uow.ResultsRepository().DeleteByEvent(ctx, eventID); err != nil {
			return nil, internalError(err, "failed to delete previous results")
		}
	}

	pitches, err := uow.PitchRepository().GetDetailsByEvent(ctx, eventID)
	if err != nil {
		return nil, internalError(err, "failed to get pitches")
	}
	if len(pitches) == 0 {
		return nil, newError(CodeNoPitches, "There are no pitches to rank.")
	}

	investments, err := uow.InvestmentRepository().GetByEvent(ctx, eventID)
	if err != nil {
		return nil, internalError(err, "failed to get investments")
	}

	balances, err := uow.BalanceRepository().GetAngelsByEvent(ctx, eventID)
	if err != nil {
		return nil, internalError(err, "failed to get balances")
	}

	userIDs := make([]int64, 0, len(balances))
	for _, b := range balances {
		userIDs = append(userIDs, b.UserID)
	}
	profiles, err := uow.IdeaRepository().GetProfiles(ctx, userIDs)
	if err != nil {
		return nil, internalError(err, "failed to get profiles")
	}

	rankings := CalculateRankings(pitches, investments, balances, profiles)

	snapshot := &models.ResultsSnapshot{
		EventID:          eventID,
		CalculatedBy:     requesterID,
		PitchRankings:    rankings.Pitches,
		InvestorRankings: rankings.Investors,
	}
	if err := uow.ResultsRepository().Create(ctx, snapshot); err != nil {
		if errors.Is(err, ErrUniqueViolation) {
			return nil, newError(CodeAlreadyCalculated, "Results have already been calculated for this Demoday.")
		}
		return nil, internalError(err, "failed to save results")
	}

	remaining := make(map[int64]models.Cents, len(balances))
	for _, b := range balances {
		remaining[b.UserID] = b.RemainingBalance
	}

	for _, r := range rankings.Investors {
		if err := uow.BalanceRepository().SetFinalBalance(ctx, eventID, r.InvestorID, r.FinalBalance); err != nil {
			return nil, internalError(err, "failed to set final balance")
		}
		if r.Invested == 0 {
			continue
		}

		relatedID, relatedType := relatedTo(snapshot.ID, models.RelatedTypeResults)
		history := &models.BalanceHistory{
			EventID:         eventID,
			UserID:          r.InvestorID,
			BalanceBefore:   remaining[r.InvestorID],
			BalanceAfter:    r.FinalBalance,
			ChangeAmount:    r.FinalBalance - remaining[r.InvestorID],
			TransactionType: models.TransactionTypeResultsPayout,
			TransactionMetadata: map[string]any{
				"rank":     r.Rank,
				"invested": r.Invested.String(),
				"returns":  r.Returns.String(),
				"forced":   existing != nil,
			},
			RelatedID:   relatedID,
			RelatedType: relatedType,
		}
		if err := RecordBalanceChange(ctx, uow, history); err != nil {
			return nil, internalError(err, "failed to record payout")
		}
	}

	if event.Status.CanTransitionTo(models.EventStatusCompleted) {
		if err := uow.EventRepository().UpdateStatus(ctx, eventID, models.EventStatusCompleted); err != nil {
			return nil, internalError(err, "failed to complete event")
		}
		uow.EventBus().Publish(events.EventStatusChangedEvent{
			EventID:   eventID,
			EventDate: event.EventDate.Format("2006-01-02"),
			OldStatus: event.Status,
			NewStatus: models.EventStatusCompleted,
		})
	}

	uow.EventBus().Publish(events.ResultsCalculatedEvent{
		EventID:  eventID,
		Forced:   existing != nil,
		Snapshot: snapshot,
	})

	if err := uow.Commit(); err != nil {
		return nil, internalError(err, "failed to commit transaction")
	}

	logger.WithFields(log.Fields{
		"pitches":   len(rankings.Pitches),
		"investors": len(rankings.Investors),
	}).Info("Demoday results calculated")

	return snapshot, nil
}

func (s *resultsService) GetResults(ctx context.Context, eventID int64) (*models.ResultsSnapshot, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, internalError(err, "failed to begin transaction")
	}
	defer uow.Rollback()

	snapshot, err := uow.ResultsRepository().GetByEvent(ctx, eventID)
	if err != nil {
		return nil, internalError(err, "failed to get results")
	}
	if snapshot == nil {
		return nil, newError(CodeNotFound, "Results are not available yet.")
	}
	return snapshot, nil
}
