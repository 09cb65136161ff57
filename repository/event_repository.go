package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"nscollab/database"
	"nscollab/models"
)

const eventColumns = `id, event_date, status, details, host_id, created_at, updated_at`

// EventRepository implements the EventRepository interface
type EventRepository struct {
	q queryable
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *database.DB) *EventRepository {
	return &EventRepository{q: db.Pool}
}

// newEventRepositoryWithTx creates a new event repository with a transaction
func newEventRepositoryWithTx(tx queryable) *EventRepository {
	return &EventRepository{q: tx}
}

// GetByID retrieves an event by its ID
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM demoday_events WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetByIDForShare retrieves an event with a share lock
func (r *EventRepository) GetByIDForShare(ctx context.Context, id int64) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM demoday_events WHERE id = $1 FOR SHARE`
	return r.getOne(ctx, query, id)
}

// GetByIDForUpdate retrieves an event with an exclusive row lock
func (r *EventRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM demoday_events WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, query, id)
}

// GetByDate retrieves the event of a month
func (r *EventRepository) GetByDate(ctx context.Context, eventDate time.Time) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM demoday_events WHERE event_date = $1`
	return r.getOne(ctx, query, models.MonthStart(eventDate))
}

// CreateIfMissing inserts the event unless its month already has one
func (r *EventRepository) CreateIfMissing(ctx context.Context, event *models.Event) (*models.Event, error) {
	detailsJSON, err := json.Marshal(event.Details)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event details: %w", err)
	}

	eventDate := models.MonthStart(event.EventDate)
	query := `
		INSERT INTO demoday_events (event_date, status, details, host_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (event_date) DO NOTHING
		RETURNING ` + eventColumns

	created, err := r.getOne(ctx, query, eventDate, event.Status, detailsJSON, event.HostID)
	if err != nil {
		return nil, fmt.Errorf("failed to create event for %s: %w", eventDate.Format("2006-01"), err)
	}
	if created != nil {
		return created, nil
	}

	// Another request created the month first
	return r.GetByDate(ctx, eventDate)
}

// UpdateStatus sets the lifecycle status of an event
func (r *EventRepository) UpdateStatus(ctx context.Context, id int64, status models.EventStatus) error {
	query := `
		UPDATE demoday_events
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.q.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update status of event %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("event %d not found", id)
	}
	return nil
}

// UpdateDetails replaces the free-text details of an event
func (r *EventRepository) UpdateDetails(ctx context.Context, id int64, details models.EventDetails) error {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to marshal event details: %w", err)
	}

	query := `
		UPDATE demoday_events
		SET details = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.q.Exec(ctx, query, detailsJSON, id)
	if err != nil {
		return fmt.Errorf("failed to update details of event %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("event %d not found", id)
	}
	return nil
}

func (r *EventRepository) getOne(ctx context.Context, query string, args ...any) (*models.Event, error) {
	var event models.Event
	var detailsJSON []byte

	err := r.q.QueryRow(ctx, query, args...).Scan(
		&event.ID,
		&event.EventDate,
		&event.Status,
		&detailsJSON,
		&event.HostID,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	if len(detailsJSON) > 0 {
		if err := json.Unmarshal(detailsJSON, &event.Details); err != nil {
			return nil, fmt.Errorf("failed to unmarshal event details: %w", err)
		}
	}
	event.EventDate = event.EventDate.UTC()

	return &event, nil
}
