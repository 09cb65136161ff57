package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"nscollab/events"
	"nscollab/models"
)

type investmentService struct {
	uowFactory UnitOfWorkFactory
}

// NewInvestmentService creates a new investment engine
func NewInvestmentService(uowFactory UnitOfWorkFactory) InvestmentService {
	return &investmentService{
		uowFactory: uowFactory,
	}
}

func (s *investmentService) Invest(ctx context.Context, eventID, investorID, pitchID int64, amount decimal.Decimal) (*models.Balance, error) {
	cents, ok := models.CentsFromDecimal(amount)
	if !ok || cents <= 0 {
		return nil, newError(CodeInvalidAmount, "Amount must be positive with at most 2 decimal places.")
	}

	logger := log.WithFields(log.Fields{
		"event_id": eventID,
		"user_id":  investorID,
		"pitch_id": pitchID,
		"amount":   cents.String(),
	})

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
		return nil, newError(CodePermissionDenied, "Investments are closed for this Demoday.")
	}

	pitch, err := uow.PitchRepository().GetByID(ctx, pitchID)
	if err != nil {
		return nil, internalError(err, "failed to get pitch")
	}
	if pitch == nil || pitch.EventID != eventID {
		return nil, newError(CodeNotFound, "Pitch not found.")
	}

	balance, err := uow.BalanceRepository().DeductRemaining(ctx, eventID, investorID, cents)
	if err != nil {
		return nil, internalError(err, "failed to deduct balance")
	}
	if balance == nil {
		return nil, s.rejection(ctx, uow, eventID, investorID, cents)
	}

	// Past this point the balance is already decremented inside the transaction
	investment := &models.Investment{
		EventID:    eventID,
		InvestorID: investorID,
		PitchID:    pitchID,
		Amount:     cents,
	}
	if err := uow.InvestmentRepository().Create(ctx, investment); err != nil {
		logger.WithError(err).Error("Ledger failure: investment insert failed after balance deduction")
		if errors.Is(err, ErrForeignKeyViolation) {
			return nil, newError(CodeNotFound, "Pitch not found.")
		}
		return nil, internalError(err, "failed to record investment")
	}

	relatedID, relatedType := relatedTo(investment.ID, models.RelatedTypeInvestment)
	history := &models.BalanceHistory{
		EventID:         eventID,
		UserID:          investorID,
		BalanceBefore:   balance.RemainingBalance + cents,
		BalanceAfter:    balance.RemainingBalance,
		ChangeAmount:    -cents,
		TransactionType: models.TransactionTypeInvestment,
		TransactionMetadata: map[string]any{
			"pitch_id": pitchID,
		},
		RelatedID:   relatedID,
		RelatedType: relatedType,
	}
	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		logger.WithError(err).Error("Ledger failure: history insert failed after balance deduction")
		return nil, internalError(err, "failed to record investment history")
	}

	uow.EventBus().Publish(events.InvestmentMadeEvent{
		EventID:          eventID,
		InvestmentID:     investment.ID,
		InvestorID:       investorID,
		PitchID:          pitchID,
		Amount:           cents,
		RemainingBalance: balance.RemainingBalance,
	})

	if err := uow.Commit(); err != nil {
		logger.WithError(err).Error("Ledger failure: investment commit failed")
		return nil, internalError(err, "failed to commit transaction")
	}

	logger.WithField("remaining", balance.RemainingBalance.String()).Info("Investment made")

	return balance, nil
}

// rejection explains why a conditional deduction matched no row
func (s *investmentService) rejection(ctx context.Context, uow UnitOfWork, eventID, investorID int64, amount models.Cents) error {
	current, err := uow.BalanceRepository().GetByUser(ctx, eventID, investorID)
	if err != nil {
		return internalError(err, "failed to get balance")
	}
	if current == nil || !current.IsAngel {
		return newError(CodeNotAnAngel, "Register as an angel before investing.")
	}
	return newError(CodeInsufficientFunds, "Insufficient funds: %s remaining, %s requested.", current.RemainingBalance, amount)
}

func (s *investmentService) ListInvestments(ctx context.Context, eventID, investorID int64) ([]*models.Investment, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, internalError(err, "failed to begin transaction")
	}
	defer uow.Rollback()

	investments, err := uow.InvestmentRepository().GetByInvestor(ctx, eventID, investorID)
	if err != nil {
		return nil, internalError(err, "failed to list investments")
	}
	return investments, nil
}
