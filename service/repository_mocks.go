package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"nscollab/events"
	"nscollab/models"
)

// MockEventRepository is a mock implementation of EventRepository
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *MockEventRepository) GetByIDForShare(ctx context.Context, id int64) (*models.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *MockEventRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *MockEventRepository) GetByDate(ctx context.Context, eventDate time.Time) (*models.Event, error) {
	args := m.Called(ctx, eventDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *MockEventRepository) CreateIfMissing(ctx context.Context, event *models.Event) (*models.Event, error) {
	args := m.Called(ctx, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *MockEventRepository) UpdateStatus(ctx context.Context, id int64, status models.EventStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockEventRepository) UpdateDetails(ctx context.Context, id int64, details models.EventDetails) error {
	args := m.Called(ctx, id, details)
	return args.Error(0)
}

// MockBalanceRepository is a mock implementation of BalanceRepository
type MockBalanceRepository struct {
	mock.Mock
}

func (m *MockBalanceRepository) GetByUser(ctx context.Context, eventID, userID int64) (*models.Balance, error) {
	args := m.Called(ctx, eventID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Balance), args.Error(1)
}

func (m *MockBalanceRepository) GrantAngel(ctx context.Context, eventID, userID int64, amount models.Cents) (*models.Balance, bool, error) {
	args := m.Called(ctx, eventID, userID, amount)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Balance), args.Bool(1), args.Error(2)
}

func (m *MockBalanceRepository) DeductRemaining(ctx context.Context, eventID, userID int64, amount models.Cents) (*models.Balance, error) {
	args := m.Called(ctx, eventID, userID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Balance), args.Error(1)
}

func (m *MockBalanceRepository) GetAngelsByEvent(ctx context.Context, eventID int64) ([]*models.Balance, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Balance), args.Error(1)
}

func (m *MockBalanceRepository) SetFinalBalance(ctx context.Context, eventID, userID int64, finalBalance models.Cents) error {
	args := m.Called(ctx, eventID, userID, finalBalance)
	return args.Error(0)
}

// MockPitchRepository is a mock implementation of PitchRepository
type MockPitchRepository struct {
	mock.Mock
}

func (m *MockPitchRepository) Create(ctx context.Context, pitch *models.Pitch) error {
	args := m.Called(ctx, pitch)
	return args.Error(0)
}

func (m *MockPitchRepository) GetByID(ctx context.Context, id int64) (*models.Pitch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Pitch), args.Error(1)
}

func (m *MockPitchRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Pitch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Pitch), args.Error(1)
}

func (m *MockPitchRepository) GetByEventAndPitcher(ctx context.Context, eventID, pitcherID int64) (*models.Pitch, error) {
	args := m.Called(ctx, eventID, pitcherID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Pitch), args.Error(1)
}

func (m *MockPitchRepository) GetDetailsByEvent(ctx context.Context, eventID int64) ([]*models.PitchDetail, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PitchDetail), args.Error(1)
}

func (m *MockPitchRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockInvestmentRepository is a mock implementation of InvestmentRepository
type MockInvestmentRepository struct {
	mock.Mock
}

func (m *MockInvestmentRepository) Create(ctx context.Context, investment *models.Investment) error {
	args := m.Called(ctx, investment)
	return args.Error(0)
}

func (m *MockInvestmentRepository) GetByEvent(ctx context.Context, eventID int64) ([]*models.Investment, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Investment), args.Error(1)
}

func (m *MockInvestmentRepository) GetByInvestor(ctx context.Context, eventID, investorID int64) ([]*models.Investment, error) {
	args := m.Called(ctx, eventID, investorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Investment), args.Error(1)
}

func (m *MockInvestmentRepository) CountByPitch(ctx context.Context, pitchID int64) (int, error) {
	args := m.Called(ctx, pitchID)
	return args.Int(0), args.Error(1)
}

// MockResultsRepository is a mock implementation of ResultsRepository
type MockResultsRepository struct {
	mock.Mock
}

func (m *MockResultsRepository) Create(ctx context.Context, snapshot *models.ResultsSnapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

func (m *MockResultsRepository) GetByEvent(ctx context.Context, eventID int64) (*models.ResultsSnapshot, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ResultsSnapshot), args.Error(1)
}

func (m *MockResultsRepository) DeleteByEvent(ctx context.Context, eventID int64) error {
	args := m.Called(ctx, eventID)
	return args.Error(0)
}

// MockBalanceHistoryRepository is a mock implementation of BalanceHistoryRepository
type MockBalanceHistoryRepository struct {
	mock.Mock
}

func (m *MockBalanceHistoryRepository) Record(ctx context.Context, history *models.BalanceHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *MockBalanceHistoryRepository) GetByUser(ctx context.Context, eventID, userID int64, limit int) ([]*models.BalanceHistory, error) {
	args := m.Called(ctx, eventID, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BalanceHistory), args.Error(1)
}

// MockIdeaRepository is a mock implementation of IdeaRepository
type MockIdeaRepository struct {
	mock.Mock
}

func (m *MockIdeaRepository) GetByID(ctx context.Context, id int64) (*models.Idea, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Idea), args.Error(1)
}

func (m *MockIdeaRepository) IsMember(ctx context.Context, ideaID, userID int64) (bool, error) {
	args := m.Called(ctx, ideaID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdeaRepository) GetProfiles(ctx context.Context, userIDs []int64) (map[int64]*models.Profile, error) {
	args := m.Called(ctx, userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]*models.Profile), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork.
// Repository getters return the repositories wired with SetRepositories.
type MockUnitOfWork struct {
	mock.Mock
	eventRepo          EventRepository
	balanceRepo        BalanceRepository
	pitchRepo          PitchRepository
	investmentRepo     InvestmentRepository
	resultsRepo        ResultsRepository
	balanceHistoryRepo BalanceHistoryRepository
	ideaRepo           IdeaRepository
	eventPublisher     EventPublisher
}

// MockRepositories groups the repositories a MockUnitOfWork hands out
type MockRepositories struct {
	Events         *MockEventRepository
	Balances       *MockBalanceRepository
	Pitches        *MockPitchRepository
	Investments    *MockInvestmentRepository
	Results        *MockResultsRepository
	BalanceHistory *MockBalanceHistoryRepository
	Ideas          *MockIdeaRepository
	Publisher      *MockEventPublisher
}

// NewMockRepositories creates a fresh set of repository mocks
func NewMockRepositories() *MockRepositories {
	return &MockRepositories{
		Events:         new(MockEventRepository),
		Balances:       new(MockBalanceRepository),
		Pitches:        new(MockPitchRepository),
		Investments:    new(MockInvestmentRepository),
		Results:        new(MockResultsRepository),
		BalanceHistory: new(MockBalanceHistoryRepository),
		Ideas:          new(MockIdeaRepository),
		Publisher:      new(MockEventPublisher),
	}
}

// AssertExpectations asserts every repository mock
func (r *MockRepositories) AssertExpectations(t mock.TestingT) {
	r.Events.AssertExpectations(t)
	r.Balances.AssertExpectations(t)
	r.Pitches.AssertExpectations(t)
	r.Investments.AssertExpectations(t)
	r.Results.AssertExpectations(t)
	r.BalanceHistory.AssertExpectations(t)
	r.Ideas.AssertExpectations(t)
	r.Publisher.AssertExpectations(t)
}

// SetRepositories wires the repositories returned by the unit of work
func (m *MockUnitOfWork) SetRepositories(repos *MockRepositories) {
	m.eventRepo = repos.Events
	m.balanceRepo = repos.Balances
	m.pitchRepo = repos.Pitches
	m.investmentRepo = repos.Investments
	m.resultsRepo = repos.Results
	m.balanceHistoryRepo = repos.BalanceHistory
	m.ideaRepo = repos.Ideas
	m.eventPublisher = repos.Publisher
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) EventRepository() EventRepository {
	return m.eventRepo
}

func (m *MockUnitOfWork) BalanceRepository() BalanceRepository {
	return m.balanceRepo
}

func (m *MockUnitOfWork) PitchRepository() PitchRepository {
	return m.pitchRepo
}

func (m *MockUnitOfWork) InvestmentRepository() InvestmentRepository {
	return m.investmentRepo
}

func (m *MockUnitOfWork) ResultsRepository() ResultsRepository {
	return m.resultsRepo
}

func (m *MockUnitOfWork) BalanceHistoryRepository() BalanceHistoryRepository {
	return m.balanceHistoryRepo
}

func (m *MockUnitOfWork) IdeaRepository() IdeaRepository {
	return m.ideaRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.eventPublisher
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
