package service

import (
	"context"

	log "github.com/sirupsen/logrus"

	"nscollab/config"
	"nscollab/events"
	"nscollab/models"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

type angelService struct {
	uowFactory UnitOfWorkFactory
}

// NewAngelService creates a new angel registration service
func NewAngelService(uowFactory UnitOfWorkFactory) AngelService {
	return &angelService{
		uowFactory: uowFactory,
	}
}

func (s *angelService) Register(ctx context.Context, eventID, userID int64) (*models.Balance, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, internalError(err, "failed to begin transaction")
	}
	defer uow.Rollback()

	event, err := getEvent(ctx, uow.EventRepository().GetByIDForShare, eventID)
	if err != nil {
		return nil, err
	}
	if event.IsCompleted() {
		return nil, newError(CodePermissionDenied, "This Demoday is already completed.")
	}

	amount := config.Get().DefaultAngelBalance
	balance, granted, err := uow.BalanceRepository().GrantAngel(ctx, eventID, userID, amount)
	if err != nil {
		return nil, internalError(err, "failed to register angel")
	}

	if !granted {
		// Already an angel
		return balance, nil
	}

	history := &models.BalanceHistory{
		EventID:         eventID,
		UserID:          userID,
		BalanceBefore:   0,
		BalanceAfter:    balance.InitialBalance,
		ChangeAmount:    balance.InitialBalance,
		TransactionType: models.TransactionTypeAngelGrant,
	}
	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return nil, internalError(err, "failed to record angel grant")
	}

	uow.EventBus().Publish(events.AngelRegisteredEvent{
		EventID:        eventID,
		UserID:         userID,
		InitialBalance: balance.InitialBalance,
	})

	if err := uow.Commit(); err != nil {
		return nil, internalError(err, "failed to commit transaction")
	}

	log.WithFields(log.Fields{
		"event_id": eventID,
		"user_id":  userID,
		"balance":  balance.InitialBalance.String(),
	}).Info("Angel registered")

	return balance, nil
}

func (s *angelService) GetBalance(ctx context.Context, eventID, userID int64) (*models.Balance, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, internalError(err, "failed to begin transaction")
	}
	defer uow.Rollback()

	if _, err := getEvent(ctx, uow.EventRepository().GetByID, eventID); err != nil {
		return nil, err
	}

	balance, err := uow.BalanceRepository().GetByUser(ctx, eventID, userID)
	if err != nil {
		return nil, internalError(err, "failed to get balance")
	}
	return balance, nil
}

func (s *angelService) GetHistory(ctx context.Context, eventID, userID int64, limit int) ([]*models.BalanceHistory, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, internalError(err, "failed to begin transaction")
	}
	defer uow.Rollback()

	history, err := uow.BalanceHistoryRepository().GetByUser(ctx, eventID, userID, limit)
	if err != nil {
		return nil, internalError(err, "failed to get balance history")
	}
	return history, nil
}
