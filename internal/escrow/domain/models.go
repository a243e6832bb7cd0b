// Package domain contains the escrow account model and its transition table.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// EscrowState is the closed set of lifecycle states for an escrow account.
type EscrowState string

const (
	StatePending  EscrowState = "PENDING"
	StateFunded   EscrowState = "FUNDED"
	StateReleased EscrowState = "RELEASED"
	StateDisputed EscrowState = "DISPUTED"
	StateRefunded EscrowState = "REFUNDED"
)

// transitions is the single source of truth for legal state changes.
// Released, Disputed and Refunded are terminal; nothing leaves them.
var transitions = map[EscrowState][]EscrowState{
	StatePending: {StateFunded},
	StateFunded:  {StateReleased, StateDisputed, StateRefunded},
}

// CanTransition reports whether from → to is a legal transition.
func CanTransition(from, to EscrowState) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether the state admits no further transitions.
func (s EscrowState) Terminal() bool {
	return len(transitions[s]) == 0
}

// Valid reports whether s is one of the five reachable states.
func (s EscrowState) Valid() bool {
	switch s {
	case StatePending, StateFunded, StateReleased, StateDisputed, StateRefunded:
		return true
	default:
		return false
	}
}

// EscrowAccount holds a buyer's funds in trust for exactly one order.
// Amounts are integer minor units (paise for INR). Accounts are never
// hard-deleted; terminal states are retained as the audit trail.
type EscrowAccount struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	OrderID    snowflake.ID `gorm:"not null;uniqueIndex" json:"order_id"`
	BuyerID    snowflake.ID `gorm:"not null;index" json:"buyer_id"`
	SupplierID snowflake.ID `gorm:"not null;index" json:"supplier_id"`
	Amount     int64        `gorm:"not null" json:"amount"`
	Currency   string       `gorm:"type:text;not null" json:"currency"`
	State      EscrowState  `gorm:"type:text;not null;index" json:"state"`

	PaymentMethod *string `gorm:"type:text" json:"payment_method,omitempty"`
	TransactionID *string `gorm:"type:text" json:"transaction_id,omitempty"`
	QCPassed      *bool   `gorm:"" json:"qc_passed,omitempty"`
	RefundReason  *string `gorm:"type:text" json:"refund_reason,omitempty"`

	CreatedAt        time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"not null" json:"updated_at"`
	ExpiresAt        time.Time  `gorm:"not null;index" json:"expires_at"`
	FundedAt         *time.Time `gorm:"" json:"funded_at,omitempty"`
	ReleasedAt       *time.Time `gorm:"" json:"released_at,omitempty"`
	RefundedAt       *time.Time `gorm:"" json:"refunded_at,omitempty"`
	ExpiryNotifiedAt *time.Time `gorm:"" json:"-"`

	Metadata datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
}

// TableName sets the database table name.
func (EscrowAccount) TableName() string { return "escrow_accounts" }

// Expired is a read-time observation. The machine never self-transitions on
// a timer; callers decide what to do with an expired pending account.
func (a *EscrowAccount) Expired(now time.Time) bool {
	return a.State == StatePending && now.After(a.ExpiresAt)
}
