package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nscollab/models"
	"nscollab/repository/testutil"
	"nscollab/service"
)

func TestPitchRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewPitchRepository(testDB.DB)
	event := createEvent(t, NewEventRepository(testDB.DB), time.April)
	ctx := context.Background()

	testutil.SeedProfile(t, testDB.DB, 100, "ada")
	ideaA := testutil.SeedIdea(t, testDB.DB, 100, "Solar kites")
	ideaB := testutil.SeedIdea(t, testDB.DB, 200, "Bike share", 100)

	pitch := &models.Pitch{EventID: event.ID, IdeaID: ideaA, PitcherID: 100}
	require.NoError(t, repo.Create(ctx, pitch))
	assert.NotZero(t, pitch.ID)
	assert.False(t, pitch.SubmittedAt.IsZero())

	t.Run("one pitch per member per event", func(t *testing.T) {
		err := repo.Create(ctx, &models.Pitch{EventID: event.ID, IdeaID: ideaB, PitcherID: 100})
		assert.ErrorIs(t, err, service.ErrUniqueViolation)
	})

	t.Run("unknown idea", func(t *testing.T) {
		err := repo.Create(ctx, &models.Pitch{EventID: event.ID, IdeaID: ideaB + 1000, PitcherID: 300})
		assert.ErrorIs(t, err, service.ErrForeignKeyViolation)
	})

	t.Run("details join idea and profile", func(t *testing.T) {
		second := &models.Pitch{EventID: event.ID, IdeaID: ideaB, PitcherID: 200}
		require.NoError(t, repo.Create(ctx, second))

		details, err := repo.GetDetailsByEvent(ctx, event.ID)
		require.NoError(t, err)
		require.Len(t, details, 2)

		assert.Equal(t, pitch.ID, details[0].ID)
		assert.Equal(t, "Solar kites", details[0].IdeaTitle)
		assert.Equal(t, "ada", details[0].PitcherName)
		assert.Equal(t, "", details[1].PitcherName)
	})

	t.Run("lookup and delete", func(t *testing.T) {
		found, err := repo.GetByEventAndPitcher(ctx, event.ID, 100)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, pitch.ID, found.ID)

		require.NoError(t, repo.Delete(ctx, pitch.ID))
		gone, err := repo.GetByID(ctx, pitch.ID)
		require.NoError(t, err)
		assert.Nil(t, gone)
	})
}

func TestInvestmentRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewInvestmentRepository(testDB.DB)
	balances := NewBalanceRepository(testDB.DB)
	pitches := NewPitchRepository(testDB.DB)
	event := createEvent(t, NewEventRepository(testDB.DB), time.May)
	ctx := context.Background()

	ideaID := testutil.SeedIdea(t, testDB.DB, 1, "Compost bots")
	pitch := &models.Pitch{EventID: event.ID, IdeaID: ideaID, PitcherID: 1}
	require.NoError(t, pitches.Create(ctx, pitch))

	_, _, err := balances.GrantAngel(ctx, event.ID, 2, 100000)
	require.NoError(t, err)

	first := &models.Investment{EventID: event.ID, InvestorID: 2, PitchID: pitch.ID, Amount: 2500}
	require.NoError(t, repo.Create(ctx, first))
	second := &models.Investment{EventID: event.ID, InvestorID: 2, PitchID: pitch.ID, Amount: 100}
	require.NoError(t, repo.Create(ctx, second))

	t.Run("investor without balance", func(t *testing.T) {
		err := repo.Create(ctx, &models.Investment{EventID: event.ID, InvestorID: 3, PitchID: pitch.ID, Amount: 1})
		assert.ErrorIs(t, err, service.ErrForeignKeyViolation)
	})

	t.Run("unknown pitch", func(t *testing.T) {
		err := repo.Create(ctx, &models.Investment{EventID: event.ID, InvestorID: 2, PitchID: pitch.ID + 1000, Amount: 1})
		assert.ErrorIs(t, err, service.ErrForeignKeyViolation)
	})

	t.Run("listing", func(t *testing.T) {
		all, err := repo.GetByEvent(ctx, event.ID)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, models.Cents(2500), all[0].Amount)

		mine, err := repo.GetByInvestor(ctx, event.ID, 2)
		require.NoError(t, err)
		require.Len(t, mine, 2)
		assert.Equal(t, second.ID, mine[0].ID)

		count, err := repo.CountByPitch(ctx, pitch.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})
}

func TestResultsRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewResultsRepository(testDB.DB)
	event := createEvent(t, NewEventRepository(testDB.DB), time.June)
	ctx := context.Background()

	snapshot := &models.ResultsSnapshot{
		EventID:      event.ID,
		CalculatedBy: 9,
		PitchRankings: []models.PitchRanking{
			{Rank: 1, PitchID: 5, TotalFunding: 15000, InvestorCount: 2, Multiplier: 20},
		},
		InvestorRankings: []models.InvestorRanking{
			{Rank: 1, InvestorID: 7, Initial: 100000, Invested: 10000, Returns: 190000, FinalBalance: 290000},
		},
	}
	require.NoError(t, repo.Create(ctx, snapshot))

	err := repo.Create(ctx, &models.ResultsSnapshot{EventID: event.ID, CalculatedBy: 9})
	assert.ErrorIs(t, err, service.ErrUniqueViolation)

	stored, err := repo.GetByEvent(ctx, event.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, snapshot.PitchRankings, stored.PitchRankings)
	assert.Equal(t, snapshot.InvestorRankings, stored.InvestorRankings)

	final, ok := stored.FinalBalanceFor(7)
	assert.True(t, ok)
	assert.Equal(t, models.Cents(290000), final)

	require.NoError(t, repo.DeleteByEvent(ctx, event.ID))
	gone, err := repo.GetByEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestBalanceHistoryRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewBalanceHistoryRepository(testDB.DB)
	event := createEvent(t, NewEventRepository(testDB.DB), time.July)
	ctx := context.Background()

	grant := testutil.CreateTestBalanceHistory(event.ID, 5, 100000)
	require.NoError(t, repo.Record(ctx, grant))

	relatedID := int64(77)
	relatedType := models.RelatedTypeInvestment
	spend := &models.BalanceHistory{
		EventID:         event.ID,
		UserID:          5,
		BalanceBefore:   100000,
		BalanceAfter:    90000,
		ChangeAmount:    -10000,
		TransactionType: models.TransactionTypeInvestment,
		RelatedID:       &relatedID,
		RelatedType:     &relatedType,
	}
	require.NoError(t, repo.Record(ctx, spend))

	history, err := repo.GetByUser(ctx, event.ID, 5, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)

	assert.Equal(t, models.TransactionTypeInvestment, history[0].TransactionType)
	require.NotNil(t, history[0].RelatedType)
	assert.Equal(t, models.RelatedTypeInvestment, *history[0].RelatedType)
	assert.Nil(t, history[0].TransactionMetadata)
	assert.Equal(t, true, history[1].TransactionMetadata["test"])

	limited, err := repo.GetByUser(ctx, event.ID, 5, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestIdeaRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewIdeaRepository(testDB.DB)
	ctx := context.Background()

	testutil.SeedProfile(t, testDB.DB, 1, "grace")
	ideaID := testutil.SeedIdea(t, testDB.DB, 1, "Rain maps", 2)

	idea, err := repo.GetByID(ctx, ideaID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), idea.OwnerID)

	isMember, err := repo.IsMember(ctx, ideaID, 2)
	require.NoError(t, err)
	assert.True(t, isMember)

	isMember, err = repo.IsMember(ctx, ideaID, 3)
	require.NoError(t, err)
	assert.False(t, isMember)

	profiles, err := repo.GetProfiles(ctx, []int64{1, 2})
	require.NoError(t, err)
	assert.Len(t, profiles, 1)
	assert.Equal(t, "grace", profiles[1].DisplayName)
}
