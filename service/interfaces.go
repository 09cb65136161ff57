package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"nscollab/events"
	"nscollab/models"
)

// Repositories wrap these errors when a write hits a database constraint
var (
	ErrUniqueViolation     = errors.New("unique constraint violation")
	ErrForeignKeyViolation = errors.New("foreign key constraint violation")
)

// EventRepository defines the interface for Demoday event data access
type EventRepository interface {
	// GetByID retrieves an event by its ID
	GetByID(ctx context.Context, id int64) (*models.Event, error)

	// GetByIDForShare retrieves an event and holds a share lock until the transaction ends
	GetByIDForShare(ctx context.Context, id int64) (*models.Event, error)

	// GetByIDForUpdate retrieves an event and holds an exclusive row lock until the transaction ends
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Event, error)

	// GetByDate retrieves the event of the month starting at eventDate
	GetByDate(ctx context.Context, eventDate time.Time) (*models.Event, error)

	// CreateIfMissing inserts the event unless one exists for its month, and returns the stored event
	CreateIfMissing(ctx context.Context, event *models.Event) (*models.Event, error)

	// UpdateStatus sets the lifecycle status of an event
	UpdateStatus(ctx context.Context, id int64, status models.EventStatus) error

	// UpdateDetails replaces the free-text details of an event
	UpdateDetails(ctx context.Context, id int64, details models.EventDetails) error
}

// BalanceRepository defines the interface for the Demoday ledger
type BalanceRepository interface {
	// GetByUser retrieves a user's balance for an event
	GetByUser(ctx context.Context, eventID, userID int64) (*models.Balance, error)

	// GrantAngel creates or upgrades the user's balance to an angel balance of amount.
	// It reports whether this call granted the balance; an existing angel balance is returned unchanged.
	GrantAngel(ctx context.Context, eventID, userID int64, amount models.Cents) (*models.Balance, bool, error)

	// DeductRemaining atomically decrements an angel's remaining balance if it covers amount.
	// It returns nil without error when no angel balance covers the amount.
	DeductRemaining(ctx context.Context, eventID, userID int64, amount models.Cents) (*models.Balance, error)

	// GetAngelsByEvent returns all angel balances for an event
	GetAngelsByEvent(ctx context.Context, eventID int64) ([]*models.Balance, error)

	// SetFinalBalance records the post-results balance of a user
	SetFinalBalance(ctx context.Context, eventID, userID int64, finalBalance models.Cents) error
}

// PitchRepository defines the interface for pitch data access
type PitchRepository interface {
	// Create creates a new pitch
	Create(ctx context.Context, pitch *models.Pitch) error

	// GetByID retrieves a pitch by its ID
	GetByID(ctx context.Context, id int64) (*models.Pitch, error)

	// GetByIDForUpdate retrieves a pitch and locks it until the transaction ends
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Pitch, error)

	// GetByEventAndPitcher retrieves a member's pitch for an event
	GetByEventAndPitcher(ctx context.Context, eventID, pitcherID int64) (*models.Pitch, error)

	// GetDetailsByEvent returns all pitches of an event with idea and profile data, oldest first
	GetDetailsByEvent(ctx context.Context, eventID int64) ([]*models.PitchDetail, error)

	// Delete removes a pitch
	Delete(ctx context.Context, id int64) error
}

// InvestmentRepository defines the interface for investment data access
type InvestmentRepository interface {
	// Create records a new investment
	Create(ctx context.Context, investment *models.Investment) error

	// GetByEvent returns all investments of an event
	GetByEvent(ctx context.Context, eventID int64) ([]*models.Investment, error)

	// GetByInvestor returns an investor's investments for an event
	GetByInvestor(ctx context.Context, eventID, investorID int64) ([]*models.Investment, error)

	// CountByPitch returns how many investments reference a pitch
	CountByPitch(ctx context.Context, pitchID int64) (int, error)
}

// ResultsRepository defines the interface for results snapshot data access
type ResultsRepository interface {
	// Create persists a results snapshot
	Create(ctx context.Context, snapshot *models.ResultsSnapshot) error

	// GetByEvent retrieves the results snapshot of an event
	GetByEvent(ctx context.Context, eventID int64) (*models.ResultsSnapshot, error)

	// DeleteByEvent removes the results snapshot of an event
	DeleteByEvent(ctx context.Context, eventID int64) error
}

// BalanceHistoryRepository defines the interface for ledger history tracking
type BalanceHistoryRepository interface {
	// Record creates a new balance history entry
	Record(ctx context.Context, history *models.BalanceHistory) error

	// GetByUser returns balance history for a user in an event, newest first
	GetByUser(ctx context.Context, eventID, userID int64, limit int) ([]*models.BalanceHistory, error)
}

// IdeaRepository provides read-only access to the collaboration app's ideas and profiles
type IdeaRepository interface {
	// GetByID retrieves an idea by its ID
	GetByID(ctx context.Context, id int64) (*models.Idea, error)

	// IsMember returns true if the user is on the idea's team
	IsMember(ctx context.Context, ideaID, userID int64) (bool, error)

	// GetProfiles returns the profiles of the given users keyed by user ID
	GetProfiles(ctx context.Context, userIDs []int64) (map[int64]*models.Profile, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	EventRepository() EventRepository
	BalanceRepository() BalanceRepository
	PitchRepository() PitchRepository
	InvestmentRepository() InvestmentRepository
	ResultsRepository() ResultsRepository
	BalanceHistoryRepository() BalanceHistoryRepository
	IdeaRepository() IdeaRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// EventService defines the interface for the Demoday event lifecycle
type EventService interface {
	// GetOrCreateEventForMonth returns the event of a month, creating it for current and future months
	GetOrCreateEventForMonth(ctx context.Context, month time.Time) (*models.Event, error)

	// GetEvent retrieves an event by ID
	GetEvent(ctx context.Context, eventID int64) (*models.Event, error)

	// StartPitching moves an upcoming event into the pitching phase
	StartPitching(ctx context.Context, eventID, requesterID int64) (*models.Event, error)

	// UpdateDetails replaces the event details
	UpdateDetails(ctx context.Context, eventID, requesterID int64, details models.EventDetails) (*models.Event, error)
}

// AngelService defines the interface for angel registration
type AngelService interface {
	// Register grants the user an angel balance for the event. Registering twice is a no-op.
	Register(ctx context.Context, eventID, userID int64) (*models.Balance, error)

	// GetBalance returns the user's balance for the event, or nil if there is none
	GetBalance(ctx context.Context, eventID, userID int64) (*models.Balance, error)

	// GetHistory returns the user's ledger movements for the event, newest first
	GetHistory(ctx context.Context, eventID, userID int64, limit int) ([]*models.BalanceHistory, error)
}

// PitchService defines the interface for the pitch registry
type PitchService interface {
	// Submit creates the user's pitch of an idea for the event
	Submit(ctx context.Context, eventID, userID, ideaID int64) (*models.Pitch, error)

	// Cancel withdraws a pitch on behalf of its pitcher
	Cancel(ctx context.Context, pitchID, requesterID int64) error

	// ListPitches returns the event's pitches with display data
	ListPitches(ctx context.Context, eventID int64) ([]*models.PitchDetail, error)
}

// InvestmentService defines the interface for the investment engine
type InvestmentService interface {
	// Invest moves amount from the investor's angel balance into a pitch and returns the updated balance
	Invest(ctx context.Context, eventID, investorID, pitchID int64, amount decimal.Decimal) (*models.Balance, error)

	// ListInvestments returns the investor's investments for the event
	ListInvestments(ctx context.Context, eventID, investorID int64) ([]*models.Investment, error)
}

// ResultsService defines the interface for the results calculator
type ResultsService interface {
	// Calculate ranks the event's pitches, settles every angel balance and persists the snapshot.
	// With force, an existing snapshot is replaced.
	Calculate(ctx context.Context, eventID, requesterID int64, force bool) (*models.ResultsSnapshot, error)

	// GetResults returns the persisted snapshot of an event
	GetResults(ctx context.Context, eventID int64) (*models.ResultsSnapshot, error)
}
