package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// StateMutation carries the column updates applied together with a state
// change. The repository applies precondition check and mutation as one
// conditional write.
type StateMutation struct {
	To  EscrowState
	Set map[string]any
}

// Repository is the ledger store for escrow accounts.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, account *EscrowAccount) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*EscrowAccount, error)
	FindByOrderID(ctx context.Context, db *gorm.DB, orderID snowflake.ID) (*EscrowAccount, error)

	// TransitionState executes
	//   UPDATE escrow_accounts SET ... WHERE id = ? AND state = ?
	// and reports how many rows changed. Exactly one of two concurrent
	// callers observes rowsAffected == 1.
	TransitionState(ctx context.Context, db *gorm.DB, id snowflake.ID, from EscrowState, mutation StateMutation) (int64, error)

	// ListExpiredPending returns pending accounts whose expiry has passed
	// and which have not yet been flagged, oldest first.
	ListExpiredPending(ctx context.Context, db *gorm.DB, before time.Time, limit int) ([]*EscrowAccount, error)

	// MarkExpiryNotified records that the expiry observation was reported.
	// This is bookkeeping, not a state transition.
	MarkExpiryNotified(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error
}
