package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nscollab/models"
	"nscollab/repository/testutil"
)

func TestEventRepository_CreateIfMissing(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewEventRepository(testDB.DB)
	ctx := context.Background()

	t.Run("normalizes to first of month", func(t *testing.T) {
		event, err := repo.CreateIfMissing(ctx, testutil.CreateTestEvent(time.Date(2025, 3, 17, 15, 4, 5, 0, time.UTC)))
		require.NoError(t, err)
		require.NotNil(t, event)

		assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), event.EventDate)
		assert.Equal(t, models.EventStatusUpcoming, event.Status)
		assert.Equal(t, "Main hall", event.Details.Where)
	})

	t.Run("second create returns existing event", func(t *testing.T) {
		first, err := repo.CreateIfMissing(ctx, testutil.CreateTestEvent(time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC)))
		require.NoError(t, err)

		other := testutil.CreateTestEvent(time.Date(2025, 4, 28, 0, 0, 0, 0, time.UTC))
		other.Details.Where = "Somewhere else"
		second, err := repo.CreateIfMissing(ctx, other)
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "Main hall", second.Details.Where)
	})

	t.Run("concurrent creates yield one event", func(t *testing.T) {
		month := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
		var wg sync.WaitGroup
		ids := make([]int64, 8)
		for i := range ids {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				event, err := repo.CreateIfMissing(ctx, testutil.CreateTestEvent(month))
				if assert.NoError(t, err) {
					ids[i] = event.ID
				}
			}(i)
		}
		wg.Wait()

		for _, id := range ids {
			assert.Equal(t, ids[0], id)
		}
	})
}

func TestEventRepository_Updates(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewEventRepository(testDB.DB)
	ctx := context.Background()

	event, err := repo.CreateIfMissing(ctx, testutil.CreateTestEvent(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	require.NoError(t, repo.UpdateStatus(ctx, event.ID, models.EventStatusPitching))
	details := models.EventDetails{When: "Friday", Where: "Roof", What: "Demos", URL: "https://example.com/demoday"}
	require.NoError(t, repo.UpdateDetails(ctx, event.ID, details))

	stored, err := repo.GetByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusPitching, stored.Status)
	assert.Equal(t, details, stored.Details)

	missing, err := repo.GetByID(ctx, event.ID+1000)
	require.NoError(t, err)
	assert.Nil(t, missing)

	assert.Error(t, repo.UpdateStatus(ctx, event.ID+1000, models.EventStatusCompleted))
}
