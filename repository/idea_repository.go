package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"nscollab/database"
	"nscollab/models"
)

// IdeaRepository reads the collaboration app's ideas and profiles
type IdeaRepository struct {
	q queryable
}

// NewIdeaRepository creates a new idea repository
func NewIdeaRepository(db *database.DB) *IdeaRepository {
	return &IdeaRepository{q: db.Pool}
}

// newIdeaRepositoryWithTx creates a new idea repository with a transaction
func newIdeaRepositoryWithTx(tx queryable) *IdeaRepository {
	return &IdeaRepository{q: tx}
}

// GetByID retrieves an idea by its ID
func (r *IdeaRepository) GetByID(ctx context.Context, id int64) (*models.Idea, error) {
	var idea models.Idea
	err := r.q.QueryRow(ctx,
		`SELECT id, owner_id, title, description FROM ideas WHERE id = $1`, id,
	).Scan(&idea.ID, &idea.OwnerID, &idea.Title, &idea.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get idea %d: %w", id, err)
	}
	return &idea, nil
}

// IsMember returns true if the user is on the idea's team
func (r *IdeaRepository) IsMember(ctx context.Context, ideaID, userID int64) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM idea_members WHERE idea_id = $1 AND user_id = $2)`,
		ideaID, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check membership of user %d in idea %d: %w", userID, ideaID, err)
	}
	return exists, nil
}

// GetProfiles returns the profiles of the given users keyed by user ID
func (r *IdeaRepository) GetProfiles(ctx context.Context, userIDs []int64) (map[int64]*models.Profile, error) {
	profiles := make(map[int64]*models.Profile, len(userIDs))
	if len(userIDs) == 0 {
		return profiles, nil
	}

	rows, err := r.q.Query(ctx,
		`SELECT user_id, display_name, avatar_url FROM profiles WHERE user_id = ANY($1)`,
		userIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get profiles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Profile
		if err := rows.Scan(&p.UserID, &p.DisplayName, &p.AvatarURL); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles[p.UserID] = &p
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate profiles: %w", err)
	}

	return profiles, nil
}
