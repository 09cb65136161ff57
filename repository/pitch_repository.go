package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"nscollab/database"
	"nscollab/models"
)

const pitchColumns = `id, event_id, idea_id, pitcher_id, submitted_at`

// PitchRepository implements the PitchRepository interface
type PitchRepository struct {
	q queryable
}

// NewPitchRepository creates a new pitch repository
func NewPitchRepository(db *database.DB) *PitchRepository {
	return &PitchRepository{q: db.Pool}
}

// newPitchRepositoryWithTx creates a new pitch repository with a transaction
func newPitchRepositoryWithTx(tx queryable) *PitchRepository {
	return &PitchRepository{q: tx}
}

// Create creates a new pitch
func (r *PitchRepository) Create(ctx context.Context, pitch *models.Pitch) error {
	query := `
		INSERT INTO demoday_pitches (event_id, idea_id, pitcher_id)
		VALUES ($1, $2, $3)
		RETURNING id, submitted_at
	`

	err := r.q.QueryRow(ctx, query, pitch.EventID, pitch.IdeaID, pitch.PitcherID).Scan(
		&pitch.ID,
		&pitch.SubmittedAt,
	)
	if err != nil {
		return wrapConstraintError(err, fmt.Sprintf("failed to create pitch for user %d in event %d", pitch.PitcherID, pitch.EventID))
	}

	return nil
}

// GetByID retrieves a pitch by its ID
func (r *PitchRepository) GetByID(ctx context.Context, id int64) (*models.Pitch, error) {
	query := `SELECT ` + pitchColumns + ` FROM demoday_pitches WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetByIDForUpdate retrieves a pitch and locks it
func (r *PitchRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Pitch, error) {
	query := `SELECT ` + pitchColumns + ` FROM demoday_pitches WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, query, id)
}

// GetByEventAndPitcher retrieves a member's pitch for an event
func (r *PitchRepository) GetByEventAndPitcher(ctx context.Context, eventID, pitcherID int64) (*models.Pitch, error) {
	query := `SELECT ` + pitchColumns + ` FROM demoday_pitches WHERE event_id = $1 AND pitcher_id = $2`
	return r.getOne(ctx, query, eventID, pitcherID)
}

// GetDetailsByEvent returns all pitches of an event with idea and profile data
func (r *PitchRepository) GetDetailsByEvent(ctx context.Context, eventID int64) ([]*models.PitchDetail, error) {
	query := `
		SELECT
			p.id, p.event_id, p.idea_id, p.pitcher_id, p.submitted_at,
			COALESCE(i.title, ''),
			COALESCE(i.description, ''),
			COALESCE(pr.display_name, ''),
			COALESCE(pr.avatar_url, '')
		FROM demoday_pitches p
		LEFT JOIN ideas i ON i.id = p.idea_id
		LEFT JOIN profiles pr ON pr.user_id = p.pitcher_id
		WHERE p.event_id = $1
		ORDER BY p.submitted_at, p.id
	`

	rows, err := r.q.Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pitches for event %d: %w", eventID, err)
	}
	defer rows.Close()

	var details []*models.PitchDetail
	for rows.Next() {
		var d models.PitchDetail
		err := rows.Scan(
			&d.ID,
			&d.EventID,
			&d.IdeaID,
			&d.PitcherID,
			&d.SubmittedAt,
			&d.IdeaTitle,
			&d.IdeaDescription,
			&d.PitcherName,
			&d.PitcherAvatarURL,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pitch: %w", err)
		}
		details = append(details, &d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pitches: %w", err)
	}

	return details, nil
}

// Delete removes a pitch
func (r *PitchRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.q.Exec(ctx, `DELETE FROM demoday_pitches WHERE id = $1`, id)
	if err != nil {
		return wrapConstraintError(err, fmt.Sprintf("failed to delete pitch %d", id))
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("pitch %d not found", id)
	}
	return nil
}

func (r *PitchRepository) getOne(ctx context.Context, query string, args ...any) (*models.Pitch, error) {
	var pitch models.Pitch
	err := r.q.QueryRow(ctx, query, args...).Scan(
		&pitch.ID,
		&pitch.EventID,
		&pitch.IdeaID,
		&pitch.PitcherID,
		&pitch.SubmittedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pitch: %w", err)
	}
	return &pitch, nil
}
