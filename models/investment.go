package models

import (
	"time"
)

// Investment records funding moved from an angel balance into a pitch
type Investment struct {
	ID         int64     `db:"id" json:"id"`
	EventID    int64     `db:"event_id" json:"event_id"`
	InvestorID int64     `db:"investor_id" json:"investor_id"`
	PitchID    int64     `db:"pitch_id" json:"pitch_id"`
	Amount     Cents     `db:"amount" json:"amount"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
