package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("supplier_not_found")
	ErrInvalidID = errors.New("invalid_supplier_id")
)

// SettlementOutcome is the counter movement triggered by a terminal escrow
// transition.
type SettlementOutcome string

const (
	OutcomeCompleted SettlementOutcome = "completed"
	OutcomeDisputed  SettlementOutcome = "disputed"
	OutcomeCancelled SettlementOutcome = "cancelled"
)

type RankEntry struct {
	SupplierID snowflake.ID
	Rank       int
}

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Supplier, error)

	// ApplyOutcome moves the affected counters with atomic SQL increments
	// so concurrent settlements never lose updates.
	ApplyOutcome(ctx context.Context, db *gorm.DB, id snowflake.ID, outcome SettlementOutcome, at time.Time) error

	// ListLeaderboardCandidates returns verified suppliers with at least one
	// order, ordered rating DESC, total_orders DESC, id ASC. The ordering is
	// fully determined by the data; repeated calls over an unchanged set
	// return an identical slice.
	ListLeaderboardCandidates(ctx context.Context, db *gorm.DB, limit int) ([]*Supplier, error)

	PreviousRanks(ctx context.Context, db *gorm.DB) (map[snowflake.ID]int, error)
	SaveRanks(ctx context.Context, db *gorm.DB, entries []RankEntry, at time.Time) error
}
