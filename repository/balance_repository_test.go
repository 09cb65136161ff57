package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nscollab/models"
	"nscollab/repository/testutil"
)

func createEvent(t *testing.T, repo *EventRepository, month time.Month) *models.Event {
	t.Helper()
	event, err := repo.CreateIfMissing(context.Background(), testutil.CreateTestEvent(time.Date(2025, month, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	return event
}

func TestBalanceRepository_GrantAngel(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewBalanceRepository(testDB.DB)
	event := createEvent(t, NewEventRepository(testDB.DB), time.January)
	ctx := context.Background()

	balance, granted, err := repo.GrantAngel(ctx, event.ID, 42, models.DefaultAngelBalance)
	require.NoError(t, err)
	assert.True(t, granted)
	assert.True(t, balance.IsAngel)
	assert.Equal(t, models.DefaultAngelBalance, balance.InitialBalance)
	assert.Equal(t, models.DefaultAngelBalance, balance.RemainingBalance)

	t.Run("second grant is a no-op", func(t *testing.T) {
		_, err := repo.DeductRemaining(ctx, event.ID, 42, 500)
		require.NoError(t, err)

		again, granted, err := repo.GrantAngel(ctx, event.ID, 42, models.DefaultAngelBalance)
		require.NoError(t, err)
		assert.False(t, granted)
		assert.Equal(t, balance.ID, again.ID)
		assert.Equal(t, models.DefaultAngelBalance-500, again.RemainingBalance)
	})

	t.Run("missing balance", func(t *testing.T) {
		b, err := repo.GetByUser(ctx, event.ID, 7)
		require.NoError(t, err)
		assert.Nil(t, b)
	})
}

func TestBalanceRepository_GrantAngel_Concurrent(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewBalanceRepository(testDB.DB)
	event := createEvent(t, NewEventRepository(testDB.DB), time.April)
	ctx := context.Background()

	const callers = 8
	var wg sync.WaitGroup
	var grants atomic.Int32
	balances := make([]*models.Balance, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b, granted, err := repo.GrantAngel(ctx, event.ID, 42, 10000)
			if assert.NoError(t, err) {
				balances[i] = b
				if granted {
					grants.Add(1)
				}
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), grants.Load())
	for _, b := range balances {
		require.NotNil(t, b)
		assert.Equal(t, balances[0].ID, b.ID)
		assert.Equal(t, models.Cents(10000), b.InitialBalance)
	}

	var rows int
	err := testDB.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM demoday_balances WHERE event_id = $1 AND user_id = $2`, event.ID, 42).Scan(&rows)
	require.NoError(t, err)
	assert.Equal(t, 1, rows)
}

func TestBalanceRepository_DeductRemaining(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewBalanceRepository(testDB.DB)
	event := createEvent(t, NewEventRepository(testDB.DB), time.February)
	ctx := context.Background()

	_, _, err := repo.GrantAngel(ctx, event.ID, 1, 10000)
	require.NoError(t, err)

	t.Run("exact balance", func(t *testing.T) {
		_, _, err := repo.GrantAngel(ctx, event.ID, 2, 10000)
		require.NoError(t, err)

		b, err := repo.DeductRemaining(ctx, event.ID, 2, 10000)
		require.NoError(t, err)
		require.NotNil(t, b)
		assert.Equal(t, models.Cents(0), b.RemainingBalance)
	})

	t.Run("one cent over", func(t *testing.T) {
		_, _, err := repo.GrantAngel(ctx, event.ID, 3, 10000)
		require.NoError(t, err)

		b, err := repo.DeductRemaining(ctx, event.ID, 3, 10001)
		require.NoError(t, err)
		assert.Nil(t, b)

		stored, err := repo.GetByUser(ctx, event.ID, 3)
		require.NoError(t, err)
		assert.Equal(t, models.Cents(10000), stored.RemainingBalance)
	})

	t.Run("no balance", func(t *testing.T) {
		b, err := repo.DeductRemaining(ctx, event.ID, 99, 1)
		require.NoError(t, err)
		assert.Nil(t, b)
	})

	t.Run("concurrent deductions never overdraw", func(t *testing.T) {
		var wg sync.WaitGroup
		var succeeded atomic.Int32
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				b, err := repo.DeductRemaining(ctx, event.ID, 1, 3000)
				if assert.NoError(t, err) && b != nil {
					succeeded.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(3), succeeded.Load())
		stored, err := repo.GetByUser(ctx, event.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, models.Cents(1000), stored.RemainingBalance)
	})
}

func TestBalanceRepository_SetFinalBalance(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewBalanceRepository(testDB.DB)
	event := createEvent(t, NewEventRepository(testDB.DB), time.March)
	ctx := context.Background()

	for _, userID := range []int64{30, 10, 20} {
		_, _, err := repo.GrantAngel(ctx, event.ID, userID, 5000)
		require.NoError(t, err)
	}

	angels, err := repo.GetAngelsByEvent(ctx, event.ID)
	require.NoError(t, err)
	require.Len(t, angels, 3)
	assert.Equal(t, int64(10), angels[0].UserID)
	assert.Equal(t, int64(30), angels[2].UserID)

	require.NoError(t, repo.SetFinalBalance(ctx, event.ID, 10, 12345))
	b, err := repo.GetByUser(ctx, event.ID, 10)
	require.NoError(t, err)
	require.NotNil(t, b.FinalBalance)
	assert.Equal(t, models.Cents(12345), *b.FinalBalance)
	assert.Equal(t, models.Cents(5000), b.RemainingBalance)
}
