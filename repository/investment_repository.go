package repository

import (
	"context"
	"fmt"

	"nscollab/database"
	"nscollab/models"
)

// InvestmentRepository implements the InvestmentRepository interface
type InvestmentRepository struct {
	q queryable
}

// NewInvestmentRepository creates a new investment repository
func NewInvestmentRepository(db *database.DB) *InvestmentRepository {
	return &InvestmentRepository{q: db.Pool}
}

// newInvestmentRepositoryWithTx creates a new investment repository with a transaction
func newInvestmentRepositoryWithTx(tx queryable) *InvestmentRepository {
	return &InvestmentRepository{q: tx}
}

// Create records a new investment
func (r *InvestmentRepository) Create(ctx context.Context, investment *models.Investment) error {
	if investment.Amount <= 0 {
		return fmt.Errorf("investment amount must be positive")
	}

	query := `
		INSERT INTO demoday_investments (event_id, investor_id, pitch_id, amount)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		investment.EventID,
		investment.InvestorID,
		investment.PitchID,
		int64(investment.Amount),
	).Scan(&investment.ID, &investment.CreatedAt)
	if err != nil {
		return wrapConstraintError(err, fmt.Sprintf("failed to create investment of user %d into pitch %d", investment.InvestorID, investment.PitchID))
	}

	return nil
}

// GetByEvent returns all investments of an event
func (r *InvestmentRepository) GetByEvent(ctx context.Context, eventID int64) ([]*models.Investment, error) {
	query := `
		SELECT id, event_id, investor_id, pitch_id, amount, created_at
		FROM demoday_investments
		WHERE event_id = $1
		ORDER BY created_at, id
	`
	return r.list(ctx, query, eventID)
}

// GetByInvestor returns an investor's investments for an event
func (r *InvestmentRepository) GetByInvestor(ctx context.Context, eventID, investorID int64) ([]*models.Investment, error) {
	query := `
		SELECT id, event_id, investor_id, pitch_id, amount, created_at
		FROM demoday_investments
		WHERE event_id = $1 AND investor_id = $2
		ORDER BY created_at DESC, id DESC
	`
	return r.list(ctx, query, eventID, investorID)
}

// CountByPitch returns how many investments reference a pitch
func (r *InvestmentRepository) CountByPitch(ctx context.Context, pitchID int64) (int, error) {
	var count int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM demoday_investments WHERE pitch_id = $1`, pitchID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count investments for pitch %d: %w", pitchID, err)
	}
	return count, nil
}

func (r *InvestmentRepository) list(ctx context.Context, query string, args ...any) ([]*models.Investment, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get investments: %w", err)
	}
	defer rows.Close()

	var investments []*models.Investment
	for rows.Next() {
		var inv models.Investment
		err := rows.Scan(
			&inv.ID,
			&inv.EventID,
			&inv.InvestorID,
			&inv.PitchID,
			&inv.Amount,
			&inv.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan investment: %w", err)
		}
		investments = append(investments, &inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate investments: %w", err)
	}

	return investments, nil
}
