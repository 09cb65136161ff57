package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"nscollab/database"
	"nscollab/models"
)

const balanceColumns = `id, event_id, user_id, initial_balance, remaining_balance, final_balance, is_angel, created_at, updated_at`

// BalanceRepository implements the BalanceRepository interface
type BalanceRepository struct {
	q queryable
}

// NewBalanceRepository creates a new balance repository
func NewBalanceRepository(db *database.DB) *BalanceRepository {
	return &BalanceRepository{q: db.Pool}
}

// newBalanceRepositoryWithTx creates a new balance repository with a transaction
func newBalanceRepositoryWithTx(tx queryable) *BalanceRepository {
	return &BalanceRepository{q: tx}
}

// GetByUser retrieves a user's balance for an event
func (r *BalanceRepository) GetByUser(ctx context.Context, eventID, userID int64) (*models.Balance, error) {
	query := `
		SELECT ` + balanceColumns + `
		FROM demoday_balances
		WHERE event_id = $1 AND user_id = $2
	`

	balance, err := scanBalance(r.q.QueryRow(ctx, query, eventID, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to get balance of user %d for event %d: %w", userID, eventID, err)
	}
	return balance, nil
}

// GrantAngel creates an angel balance, or upgrades an existing non-angel row.
// An insert that conflicts with an existing angel row leaves it untouched.
func (r *BalanceRepository) GrantAngel(ctx context.Context, eventID, userID int64, amount models.Cents) (*models.Balance, bool, error) {
	if amount <= 0 {
		return nil, false, fmt.Errorf("angel balance must be positive")
	}

	query := `
		INSERT INTO demoday_balances (event_id, user_id, initial_balance, remaining_balance, is_angel)
		VALUES ($1, $2, $3, $3, TRUE)
		ON CONFLICT (event_id, user_id) DO UPDATE
		SET initial_balance = EXCLUDED.initial_balance,
		    remaining_balance = EXCLUDED.remaining_balance,
		    is_angel = TRUE,
		    updated_at = NOW()
		WHERE demoday_balances.is_angel = FALSE
		RETURNING ` + balanceColumns

	balance, err := scanBalance(r.q.QueryRow(ctx, query, eventID, userID, int64(amount)))
	if err != nil {
		return nil, false, fmt.Errorf("failed to grant angel balance to user %d for event %d: %w", userID, eventID, err)
	}
	if balance != nil {
		return balance, true, nil
	}

	// The row already was an angel balance
	existing, err := r.GetByUser(ctx, eventID, userID)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return nil, false, fmt.Errorf("balance of user %d for event %d vanished during registration", userID, eventID)
	}
	return existing, false, nil
}

// DeductRemaining decrements an angel's remaining balance in a single conditional statement.
// Concurrent callers serialize on the row lock; the guard is re-evaluated against the committed value.
func (r *BalanceRepository) DeductRemaining(ctx context.Context, eventID, userID int64, amount models.Cents) (*models.Balance, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE demoday_balances
		SET remaining_balance = remaining_balance - $1, updated_at = NOW()
		WHERE event_id = $2
		  AND user_id = $3
		  AND is_angel = TRUE
		  AND remaining_balance >= $1
		RETURNING ` + balanceColumns

	balance, err := scanBalance(r.q.QueryRow(ctx, query, int64(amount), eventID, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to deduct %s from balance of user %d for event %d: %w", amount, userID, eventID, err)
	}
	return balance, nil
}

// GetAngelsByEvent returns all angel balances for an event
func (r *BalanceRepository) GetAngelsByEvent(ctx context.Context, eventID int64) ([]*models.Balance, error) {
	query := `
		SELECT ` + balanceColumns + `
		FROM demoday_balances
		WHERE event_id = $1 AND is_angel = TRUE
		ORDER BY user_id
	`

	rows, err := r.q.Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get angels for event %d: %w", eventID, err)
	}
	defer rows.Close()

	var balances []*models.Balance
	for rows.Next() {
		balance, err := scanBalance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan balance: %w", err)
		}
		balances = append(balances, balance)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate balances: %w", err)
	}

	return balances, nil
}

// SetFinalBalance records the post-results balance of a user
func (r *BalanceRepository) SetFinalBalance(ctx context.Context, eventID, userID int64, finalBalance models.Cents) error {
	query := `
		UPDATE demoday_balances
		SET final_balance = $1, updated_at = NOW()
		WHERE event_id = $2 AND user_id = $3
	`

	result, err := r.q.Exec(ctx, query, int64(finalBalance), eventID, userID)
	if err != nil {
		return fmt.Errorf("failed to set final balance of user %d for event %d: %w", userID, eventID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("balance of user %d for event %d not found", userID, eventID)
	}
	return nil
}

// scanBalance scans one balance row, returning nil for no rows
func scanBalance(row pgx.Row) (*models.Balance, error) {
	var balance models.Balance
	err := row.Scan(
		&balance.ID,
		&balance.EventID,
		&balance.UserID,
		&balance.InitialBalance,
		&balance.RemainingBalance,
		&balance.FinalBalance,
		&balance.IsAngel,
		&balance.CreatedAt,
		&balance.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &balance, nil
}
