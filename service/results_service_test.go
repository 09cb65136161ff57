package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"nscollab/events"
	"nscollab/models"
)

func resultsFixtures() ([]*models.PitchDetail, []*models.Investment, []*models.Balance) {
	submitted := time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)
	pitches := []*models.PitchDetail{
		{Pitch: models.Pitch{ID: 1, EventID: 1, PitcherID: 10, SubmittedAt: submitted}, IdeaTitle: "A"},
		{Pitch: models.Pitch{ID: 2, EventID: 1, PitcherID: 20, SubmittedAt: submitted.Add(time.Minute)}, IdeaTitle: "B"},
	}
	investments := []*models.Investment{
		{EventID: 1, InvestorID: 7, PitchID: 1, Amount: 10000},
		{EventID: 1, InvestorID: 7, PitchID: 2, Amount: 5000},
	}
	balances := []*models.Balance{
		{EventID: 1, UserID: 7, InitialBalance: 100000, RemainingBalance: 85000, IsAngel: true},
		{EventID: 1, UserID: 8, InitialBalance: 100000, RemainingBalance: 100000, IsAngel: true},
	}
	return pitches, investments, balances
}

func expectCalculationInputs(repos *MockRepositories) {
	pitches, investments, balances := resultsFixtures()
	repos.Pitches.On("GetDetailsByEvent", ctx, int64(1)).Return(pitches, nil)
	repos.Investments.On("GetByEvent", ctx, int64(1)).Return(investments, nil)
	repos.Balances.On("GetAngelsByEvent", ctx, int64(1)).Return(balances, nil)
	repos.Ideas.On("GetProfiles", ctx, []int64{7, 8}).Return(map[int64]*models.Profile{}, nil)
}

func TestResultsService_Calculate(t *testing.T) {
	t.Run("settles balances and completes event", func(t *testing.T) {
		factory, uow, repos := newMockUoW(t)
		svc := NewResultsService(factory)

		repos.Events.On("GetByIDForUpdate", ctx, int64(1)).Return(testEvent(models.EventStatusPitching), nil)
		repos.Results.On("GetByEvent", ctx, int64(1)).Return(nil, nil)
		expectCalculationInputs(repos)
		repos.Results.On("Create", ctx, mock.AnythingOfType("*models.ResultsSnapshot")).Run(func(args mock.Arguments) {
			args.Get(1).(*models.ResultsSnapshot).ID = 50
		}).Return(nil)
		// 100 x 20 + 50 x 10 on top of 850 remaining
		repos.Balances.On("SetFinalBalance", ctx, int64(1), int64(7), models.Cents(85000+200000+50000)).Return(nil)
		repos.Balances.On("SetFinalBalance", ctx, int64(1), int64(8), models.Cents(100000)).Return(nil)
		repos.BalanceHistory.On("Record", ctx, mock.MatchedBy(func(h *models.BalanceHistory) bool {
			return h.UserID == 7 && h.TransactionType == models.TransactionTypeResultsPayout &&
				h.BalanceBefore == 85000 && h.ChangeAmount == 250000 && *h.RelatedID == 50
		})).Return(nil).Once()
		repos.Events.On("UpdateStatus", ctx, int64(1), models.EventStatusCompleted).Return(nil)
		repos.Publisher.On("Publish", mock.AnythingOfType("events.EventStatusChangedEvent")).Return()
		repos.Publisher.On("Publish", mock.MatchedBy(func(e events.ResultsCalculatedEvent) bool {
			return !e.Forced && e.Snapshot.ID == 50
		})).Return()
		uow.On("Commit").Return(nil)

		snapshot, err := svc.Calculate(ctx, 1, testHostID, false)
		require.NoError(t, err)

		require.Len(t, snapshot.PitchRankings, 2)
		assert.Equal(t, int64(1), snapshot.PitchRankings[0].PitchID)
		assert.Equal(t, int64(7), snapshot.InvestorRankings[0].InvestorID)
		assert.Equal(t, models.Cents(10000*19+5000*9), snapshot.InvestorRankings[0].Returns)
		assert.Equal(t, testHostID, snapshot.CalculatedBy)
		repos.AssertExpectations(t)
	})

	t.Run("already calculated", func(t *testing.T) {
		factory, _, repos := newMockUoW(t)
		svc := NewResultsService(factory)

		repos.Events.On("GetByIDForUpdate", ctx, int64(1)).Return(testEvent(models.EventStatusCompleted), nil)
		repos.Results.On("GetByEvent", ctx, int64(1)).Return(&models.ResultsSnapshot{ID: 50, EventID: 1}, nil)

		_, err := svc.Calculate(ctx, 1, testHostID, false)
		assert.ErrorIs(t, err, ErrAlreadyCalculated)
		repos.Pitches.AssertNotCalled(t, "GetDetailsByEvent", mock.Anything, mock.Anything)
	})

	t.Run("force replaces snapshot", func(t *testing.T) {
		factory, uow, repos := newMockUoW(t)
		svc := NewResultsService(factory)

		repos.Events.On("GetByIDForUpdate", ctx, int64(1)).Return(testEvent(models.EventStatusCompleted), nil)
		repos.Results.On("GetByEvent", ctx, int64(1)).Return(&models.ResultsSnapshot{ID: 50, EventID: 1}, nil)
		repos.Results.On("DeleteByEvent", ctx, int64(1)).Return(nil)
		expectCalculationInputs(repos)
		repos.Results.On("Create", ctx, mock.Anything).Return(nil)
		repos.Balances.On("SetFinalBalance", ctx, int64(1), mock.Anything, mock.Anything).Return(nil)
		repos.BalanceHistory.On("Record", ctx, mock.MatchedBy(func(h *models.BalanceHistory) bool {
			return h.TransactionMetadata["forced"] == true
		})).Return(nil)
		repos.Publisher.On("Publish", mock.MatchedBy(func(e events.ResultsCalculatedEvent) bool {
			return e.Forced
		})).Return()
		uow.On("Commit").Return(nil)

		_, err := svc.Calculate(ctx, 1, testHostID, true)
		require.NoError(t, err)
		// Already completed: no second status change
		repos.Events.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
		repos.AssertExpectations(t)
	})

	t.Run("non host", func(t *testing.T) {
		factory, _, repos := newMockUoW(t)
		svc := NewResultsService(factory)

		repos.Events.On("GetByIDForUpdate", ctx, int64(1)).Return(testEvent(models.EventStatusPitching), nil)

		_, err := svc.Calculate(ctx, 1, 42, true)
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("no pitches", func(t *testing.T) {
		factory, _, repos := newMockUoW(t)
		svc := NewResultsService(factory)

		repos.Events.On("GetByIDForUpdate", ctx, int64(1)).Return(testEvent(models.EventStatusPitching), nil)
		repos.Results.On("GetByEvent", ctx, int64(1)).Return(nil, nil)
		repos.Pitches.On("GetDetailsByEvent", ctx, int64(1)).Return([]*models.PitchDetail{}, nil)

		_, err := svc.Calculate(ctx, 1, testHostID, false)
		assert.ErrorIs(t, err, ErrNoPitches)
	})

	t.Run("concurrent insert maps to already calculated", func(t *testing.T) {
		factory, _, repos := newMockUoW(t)
		svc := NewResultsService(factory)

		repos.Events.On("GetByIDForUpdate", ctx, int64(1)).Return(testEvent(models.EventStatusPitching), nil)
		repos.Results.On("GetByEvent", ctx, int64(1)).Return(nil, nil)
		expectCalculationInputs(repos)
		repos.Results.On("Create", ctx, mock.Anything).Return(fmt.Errorf("insert: %w", ErrUniqueViolation))

		_, err := svc.Calculate(ctx, 1, testHostID, false)
		assert.ErrorIs(t, err, ErrAlreadyCalculated)
	})
}

func TestResultsService_GetResults(t *testing.T) {
	factory, _, repos := newMockUoW(t)
	svc := NewResultsService(factory)

	repos.Results.On("GetByEvent", ctx, int64(1)).Return(nil, nil).Once()
	_, err := svc.GetResults(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	snapshot := &models.ResultsSnapshot{ID: 3, EventID: 1}
	repos.Results.On("GetByEvent", ctx, int64(1)).Return(snapshot, nil).Once()
	got, err := svc.GetResults(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, snapshot, got)
}
