package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"nscollab/database"
	"nscollab/models"
)

// CreateTestEvent returns an upcoming event for the month containing date
func CreateTestEvent(date time.Time) *models.Event {
	return &models.Event{
		EventDate: models.MonthStart(date),
		Status:    models.EventStatusUpcoming,
		Details: models.EventDetails{
			When:  "Last Friday, 6pm",
			Where: "Main hall",
			What:  "Monthly demo night",
		},
	}
}

// CreateTestBalanceHistory returns a ledger entry for a grant of amount
func CreateTestBalanceHistory(eventID, userID int64, amount models.Cents) *models.BalanceHistory {
	return &models.BalanceHistory{
		EventID:         eventID,
		UserID:          userID,
		BalanceBefore:   0,
		BalanceAfter:    amount,
		ChangeAmount:    amount,
		TransactionType: models.TransactionTypeAngelGrant,
		TransactionMetadata: map[string]any{
			"test": true,
		},
	}
}

// SeedProfile inserts a member profile
func SeedProfile(t *testing.T, db *database.DB, userID int64, name string) {
	t.Helper()
	err := db.WithTransaction(context.Background(), func(tx pgx.Tx) error {
		_, err := tx.Exec(context.Background(),
			`INSERT INTO profiles (user_id, display_name, avatar_url) VALUES ($1, $2, $3)
			 ON CONFLICT (user_id) DO UPDATE SET display_name = EXCLUDED.display_name`,
			userID, name, "https://cdn.example.com/"+name+".png")
		return err
	})
	require.NoError(t, err)
}

// SeedIdea inserts an idea owned by ownerID with the given team members and returns its ID
func SeedIdea(t *testing.T, db *database.DB, ownerID int64, title string, members ...int64) int64 {
	t.Helper()
	ctx := context.Background()
	var ideaID int64
	err := db.WithTransaction(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO ideas (owner_id, title, description) VALUES ($1, $2, $3) RETURNING id`,
			ownerID, title, title+" description").Scan(&ideaID)
		if err != nil {
			return err
		}
		for _, m := range members {
			if _, err := tx.Exec(ctx, `INSERT INTO idea_members (idea_id, user_id) VALUES ($1, $2)`, ideaID, m); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
	return ideaID
}
