package models

import (
	"time"
)

// DefaultAngelBalance is the funding granted to every angel at registration (1,000,000 units)
const DefaultAngelBalance Cents = 1_000_000 * CentsPerUnit

// Balance is a user's virtual funding ledger entry for one event
type Balance struct {
	ID               int64     `db:"id" json:"id"`
	EventID          int64     `db:"event_id" json:"event_id"`
	UserID           int64     `db:"user_id" json:"user_id"`
	InitialBalance   Cents     `db:"initial_balance" json:"initial_balance"`
	RemainingBalance Cents     `db:"remaining_balance" json:"remaining_balance"`
	FinalBalance     *Cents    `db:"final_balance" json:"final_balance"` // NULL until results are calculated
	IsAngel          bool      `db:"is_angel" json:"is_angel"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// Invested returns how much of the initial balance has been invested
func (b *Balance) Invested() Cents {
	return b.InitialBalance - b.RemainingBalance
}
