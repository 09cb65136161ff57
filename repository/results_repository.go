package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"nscollab/database"
	"nscollab/models"
)

// ResultsRepository implements the ResultsRepository interface
type ResultsRepository struct {
	q queryable
}

// NewResultsRepository creates a new results repository
func NewResultsRepository(db *database.DB) *ResultsRepository {
	return &ResultsRepository{q: db.Pool}
}

// newResultsRepositoryWithTx creates a new results repository with a transaction
func newResultsRepositoryWithTx(tx queryable) *ResultsRepository {
	return &ResultsRepository{q: tx}
}

// Create persists a results snapshot; one per event
func (r *ResultsRepository) Create(ctx context.Context, snapshot *models.ResultsSnapshot) error {
	pitchJSON, err := json.Marshal(snapshot.PitchRankings)
	if err != nil {
		return fmt.Errorf("failed to marshal pitch rankings: %w", err)
	}
	investorJSON, err := json.Marshal(snapshot.InvestorRankings)
	if err != nil {
		return fmt.Errorf("failed to marshal investor rankings: %w", err)
	}

	query := `
		INSERT INTO demoday_results (event_id, calculated_by, pitch_rankings, investor_rankings)
		VALUES ($1, $2, $3, $4)
		RETURNING id, calculated_at
	`

	err = r.q.QueryRow(ctx, query,
		snapshot.EventID,
		snapshot.CalculatedBy,
		pitchJSON,
		investorJSON,
	).Scan(&snapshot.ID, &snapshot.CalculatedAt)
	if err != nil {
		return wrapConstraintError(err, fmt.Sprintf("failed to create results for event %d", snapshot.EventID))
	}

	return nil
}

// GetByEvent retrieves the results snapshot of an event
func (r *ResultsRepository) GetByEvent(ctx context.Context, eventID int64) (*models.ResultsSnapshot, error) {
	query := `
		SELECT id, event_id, calculated_at, calculated_by, pitch_rankings, investor_rankings
		FROM demoday_results
		WHERE event_id = $1
	`

	var snapshot models.ResultsSnapshot
	var pitchJSON, investorJSON []byte
	err := r.q.QueryRow(ctx, query, eventID).Scan(
		&snapshot.ID,
		&snapshot.EventID,
		&snapshot.CalculatedAt,
		&snapshot.CalculatedBy,
		&pitchJSON,
		&investorJSON,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get results for event %d: %w", eventID, err)
	}

	if err := json.Unmarshal(pitchJSON, &snapshot.PitchRankings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pitch rankings: %w", err)
	}
	if err := json.Unmarshal(investorJSON, &snapshot.InvestorRankings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal investor rankings: %w", err)
	}

	return &snapshot, nil
}

// DeleteByEvent removes the results snapshot of an event
func (r *ResultsRepository) DeleteByEvent(ctx context.Context, eventID int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM demoday_results WHERE event_id = $1`, eventID); err != nil {
		return fmt.Errorf("failed to delete results for event %d: %w", eventID, err)
	}
	return nil
}
