package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"nscollab/database"
	"nscollab/events"
	"nscollab/service"
)

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db                 *database.DB
	tx                 pgx.Tx
	ctx                context.Context
	transactionalBus   *events.TransactionalBus
	eventRepo          service.EventRepository
	balanceRepo        service.BalanceRepository
	pitchRepo          service.PitchRepository
	investmentRepo     service.InvestmentRepository
	resultsRepo        service.ResultsRepository
	balanceHistoryRepo service.BalanceHistoryRepository
	ideaRepo           service.IdeaRepository
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB, eventBus *events.Bus) service.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:       db,
		eventBus: eventBus,
	}
}

type unitOfWorkFactory struct {
	db       *database.DB
	eventBus *events.Bus
}

func (f *unitOfWorkFactory) Create() service.UnitOfWork {
	return &unitOfWork{
		db:               f.db,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	u.eventRepo = newEventRepositoryWithTx(tx)
	u.balanceRepo = newBalanceRepositoryWithTx(tx)
	u.pitchRepo = newPitchRepositoryWithTx(tx)
	u.investmentRepo = newInvestmentRepositoryWithTx(tx)
	u.resultsRepo = newResultsRepositoryWithTx(tx)
	u.balanceHistoryRepo = newBalanceHistoryRepositoryWithTx(tx)
	u.ideaRepo = newIdeaRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction and flushes pending events
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	err := u.tx.Commit(u.ctx)
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil
	u.transactionalBus.Flush(u.ctx)

	return nil
}

// Rollback rolls back the transaction. Safe to call after Commit.
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil
	u.transactionalBus.Discard()

	return nil
}

func (u *unitOfWork) mustBegin() {
	if u.eventRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
}

// EventRepository returns the event repository for this unit of work
func (u *unitOfWork) EventRepository() service.EventRepository {
	u.mustBegin()
	return u.eventRepo
}

// BalanceRepository returns the balance repository for this unit of work
func (u *unitOfWork) BalanceRepository() service.BalanceRepository {
	u.mustBegin()
	return u.balanceRepo
}

// PitchRepository returns the pitch repository for this unit of work
func (u *unitOfWork) PitchRepository() service.PitchRepository {
	u.mustBegin()
	return u.pitchRepo
}

// InvestmentRepository returns the investment repository for this unit of work
func (u *unitOfWork) InvestmentRepository() service.InvestmentRepository {
	u.mustBegin()
	return u.investmentRepo
}

// ResultsRepository returns the results repository for this unit of work
func (u *unitOfWork) ResultsRepository() service.ResultsRepository {
	u.mustBegin()
	return u.resultsRepo
}

// BalanceHistoryRepository returns the balance history repository for this unit of work
func (u *unitOfWork) BalanceHistoryRepository() service.BalanceHistoryRepository {
	u.mustBegin()
	return u.balanceHistoryRepo
}

// IdeaRepository returns the idea repository for this unit of work
func (u *unitOfWork) IdeaRepository() service.IdeaRepository {
	u.mustBegin()
	return u.ideaRepo
}

// EventBus returns the transactional event bus for this unit of work
func (u *unitOfWork) EventBus() service.EventPublisher {
	return u.transactionalBus
}
