package service

import (
	"context"
	"fmt"

	"nscollab/config"
	"nscollab/models"
)

// RecordBalanceChange records a balance history entry.
// This is the single entry point for all ledger movements in the system.
func RecordBalanceChange(ctx context.Context, uow UnitOfWork, history *models.BalanceHistory) error {
	if history.BalanceAfter < 0 {
		return fmt.Errorf("balance of user %d would become negative", history.UserID)
	}
	if err := uow.BalanceHistoryRepository().Record(ctx, history); err != nil {
		return fmt.Errorf("failed to record balance history: %w", err)
	}
	return nil
}

// isHost returns true if the user hosts the event or is a global host
func isHost(event *models.Event, userID int64) bool {
	return event.IsHostedBy(userID) || config.Get().IsHost(userID)
}

// relatedTo returns the related id and type pointers for a history entry
func relatedTo(id int64, relatedType models.RelatedType) (*int64, *models.RelatedType) {
	return &id, &relatedType
}
