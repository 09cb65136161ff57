package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"nscollab/config"
	"nscollab/models"
)

const testHostID int64 = 999999

// newMockUoW wires a factory handing out one unit of work backed by fresh repository mocks
func newMockUoW(t *testing.T) (*MockUnitOfWorkFactory, *MockUnitOfWork, *MockRepositories) {
	t.Helper()
	config.SetTestConfig(config.NewTestConfig())
	t.Cleanup(config.ResetConfig)

	repos := NewMockRepositories()
	uow := new(MockUnitOfWork)
	uow.SetRepositories(repos)

	factory := new(MockUnitOfWorkFactory)
	factory.On("Create").Return(uow)
	uow.On("Begin", mock.Anything).Return(nil)
	uow.On("Rollback").Return(nil)

	return factory, uow, repos
}

func testEvent(status models.EventStatus) *models.Event {
	return &models.Event{
		ID:        1,
		EventDate: models.MonthStart(time.Now()),
		Status:    status,
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

var ctx = context.Background()
