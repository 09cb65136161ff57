package models

import (
	"time"
)

// TransactionType represents the type of ledger movement
type TransactionType string

const (
	TransactionTypeAngelGrant    TransactionType = "angel_grant"
	TransactionTypeInvestment    TransactionType = "investment"
	TransactionTypeResultsPayout TransactionType = "results_payout"
)

// RelatedType represents what type of entity the related_id refers to
type RelatedType string

const (
	RelatedTypePitch      RelatedType = "pitch"
	RelatedTypeInvestment RelatedType = "investment"
	RelatedTypeResults    RelatedType = "results"
)

// BalanceHistory represents a historical balance change
type BalanceHistory struct {
	ID                  int64           `db:"id" json:"id"`
	EventID             int64           `db:"event_id" json:"event_id"`
	UserID              int64           `db:"user_id" json:"user_id"`
	BalanceBefore       Cents           `db:"balance_before" json:"balance_before"`
	BalanceAfter        Cents           `db:"balance_after" json:"balance_after"`
	ChangeAmount        Cents           `db:"change_amount" json:"change_amount"`
	TransactionType     TransactionType `db:"transaction_type" json:"transaction_type"`
	TransactionMetadata map[string]any  `db:"transaction_metadata" json:"transaction_metadata,omitempty"`
	RelatedID           *int64          `db:"related_id" json:"related_id,omitempty"`
	RelatedType         *RelatedType    `db:"related_type" json:"related_type,omitempty"`
	CreatedAt           time.Time       `db:"created_at" json:"created_at"`
}
