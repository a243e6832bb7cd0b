// Package domain defines the settlement orchestrator contract: one escrow
// transition plus its side effects, executed to completion per call.
package domain

import (
	"context"

	escrowdomain "github.com/udyogmart/udyogmart/internal/escrow/domain"
)

// Service sequences a state machine transition with persistence of derived
// supplier metrics, the audit trail and best-effort notifications. Side
// effect ordering is fixed: persist before notify; notification failures
// never roll anything back.
type Service interface {
	CreateEscrow(ctx context.Context, req escrowdomain.CreateEscrowRequest) (*escrowdomain.EscrowAccount, error)
	FundEscrow(ctx context.Context, req escrowdomain.FundEscrowRequest) (*escrowdomain.EscrowAccount, error)
	ReleaseEscrow(ctx context.Context, req escrowdomain.ReleaseEscrowRequest) (*escrowdomain.EscrowAccount, error)
	RefundEscrow(ctx context.Context, req escrowdomain.RefundEscrowRequest) (*escrowdomain.EscrowAccount, error)
}
