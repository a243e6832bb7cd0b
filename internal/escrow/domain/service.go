package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type CreateEscrowRequest struct {
	OrderID    snowflake.ID
	BuyerID    snowflake.ID
	SupplierID snowflake.ID
	Amount     int64
	Currency   string
}

type FundEscrowRequest struct {
	EscrowID      snowflake.ID
	PaymentMethod string
	TransactionID string
}

type ReleaseEscrowRequest struct {
	EscrowID snowflake.ID
	QCPassed bool
}

type RefundEscrowRequest struct {
	EscrowID snowflake.ID
	Reason   string
}

// TransitionResult is the durable fact produced by a successful transition,
// consumed by the settlement orchestrator for side effects.
type TransitionResult struct {
	Account *EscrowAccount
	From    EscrowState
	To      EscrowState
}

// Service is the escrow state machine. Methods mutate exactly one account
// through a conditional store write; they perform no side effects beyond
// persistence.
type Service interface {
	Create(ctx context.Context, req CreateEscrowRequest) (*EscrowAccount, error)
	Fund(ctx context.Context, req FundEscrowRequest) (*TransitionResult, error)
	Release(ctx context.Context, req ReleaseEscrowRequest) (*TransitionResult, error)
	Refund(ctx context.Context, req RefundEscrowRequest) (*TransitionResult, error)
	GetByID(ctx context.Context, id snowflake.ID) (*EscrowAccount, error)
}
