package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/udyogmart/udyogmart/internal/clock"
	"github.com/udyogmart/udyogmart/internal/config"
	escrowdomain "github.com/udyogmart/udyogmart/internal/escrow/domain"
	"github.com/udyogmart/udyogmart/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service implements the escrow state machine over the ledger store.
type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  escrowdomain.Repository

	policy *config.EscrowPolicyHolder
}

type ServiceParam struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
	Repo   escrowdomain.Repository
	Policy *config.EscrowPolicyHolder
}

func NewService(p ServiceParam) escrowdomain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("escrow.service"),
		genID:  p.GenID,
		clock:  p.Clock,
		repo:   p.Repo,
		policy: p.Policy,
	}
}

func (s *Service) Create(ctx context.Context, req escrowdomain.CreateEscrowRequest) (*escrowdomain.EscrowAccount, error) {
	if req.Amount <= 0 {
		return nil, escrowdomain.ErrInvalidAmount
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if len(currency) != 3 {
		return nil, escrowdomain.ErrInvalidCurrency
	}
	if req.OrderID == 0 || req.BuyerID == 0 || req.SupplierID == 0 {
		return nil, escrowdomain.ErrInvalidID
	}

	existing, err := s.repo.FindByOrderID(ctx, s.db, req.OrderID)
	if err != nil {
		return nil, storeErr(err)
	}
	if existing != nil {
		return nil, escrowdomain.ErrOrderAlreadyEscrowed
	}

	now := s.clock.Now()
	account := &escrowdomain.EscrowAccount{
		ID:         s.genID.Generate(),
		OrderID:    req.OrderID,
		BuyerID:    req.BuyerID,
		SupplierID: req.SupplierID,
		Amount:     req.Amount,
		Currency:   currency,
		State:      escrowdomain.StatePending,
		CreatedAt:  now,
		UpdatedAt:  now,
		ExpiresAt:  now.AddDate(0, 0, s.policy.Get().ExpiryDays),
	}

	if err := s.repo.Insert(ctx, s.db, account); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, escrowdomain.ErrOrderAlreadyEscrowed
		}
		return nil, storeErr(err)
	}

	s.log.Info("escrow account created",
		zap.String("escrow_id", account.ID.String()),
		zap.String("order_id", account.OrderID.String()),
		zap.Int64("amount", account.Amount),
		zap.String("currency", account.Currency),
	)
	return account, nil
}

func (s *Service) Fund(ctx context.Context, req escrowdomain.FundEscrowRequest) (*escrowdomain.TransitionResult, error) {
	method := strings.TrimSpace(req.PaymentMethod)
	txnID := strings.TrimSpace(req.TransactionID)
	if method == "" || txnID == "" {
		return nil, escrowdomain.ErrInvalidPaymentReference
	}

	now := s.clock.Now()
	return s.transition(ctx, req.EscrowID, escrowdomain.StatePending, escrowdomain.StateMutation{
		To: escrowdomain.StateFunded,
		Set: map[string]any{
			"payment_method": method,
			"transaction_id": txnID,
			"funded_at":      now,
		},
	})
}

// Release settles the single atomic QC decision point: a passing QC outcome
// releases funds to the supplier, a failing one opens a dispute. The QC
// verdict is trusted as supplied; this machine does not re-validate evidence.
func (s *Service) Release(ctx context.Context, req escrowdomain.ReleaseEscrowRequest) (*escrowdomain.TransitionResult, error) {
	to := escrowdomain.StateReleased
	if !req.QCPassed {
		to = escrowdomain.StateDisputed
	}

	now := s.clock.Now()
	return s.transition(ctx, req.EscrowID, escrowdomain.StateFunded, escrowdomain.StateMutation{
		To: to,
		Set: map[string]any{
			"qc_passed":   req.QCPassed,
			"released_at": now,
		},
	})
}

func (s *Service) Refund(ctx context.Context, req escrowdomain.RefundEscrowRequest) (*escrowdomain.TransitionResult, error) {
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, escrowdomain.ErrInvalidRefundReason
	}

	now := s.clock.Now()
	return s.transition(ctx, req.EscrowID, escrowdomain.StateFunded, escrowdomain.StateMutation{
		To: escrowdomain.StateRefunded,
		Set: map[string]any{
			"refund_reason": reason,
			"refunded_at":   now,
		},
	})
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*escrowdomain.EscrowAccount, error) {
	account, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, storeErr(err)
	}
	if account == nil {
		return nil, escrowdomain.ErrNotFound
	}
	return account, nil
}

// transition loads the account, checks legality against the transition table
// and applies the conditional write. Zero rows affected with the account
// still present means a concurrent caller won the race.
func (s *Service) transition(ctx context.Context, id snowflake.ID, from escrowdomain.EscrowState, mutation escrowdomain.StateMutation) (*escrowdomain.TransitionResult, error) {
	account, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, storeErr(err)
	}
	if account == nil {
		return nil, escrowdomain.ErrNotFound
	}
	if account.State != from || !escrowdomain.CanTransition(from, mutation.To) {
		return nil, escrowdomain.ErrInvalidStateTransition
	}

	affected, err := s.repo.TransitionState(ctx, s.db, id, from, mutation)
	if err != nil {
		return nil, storeErr(err)
	}
	if affected == 0 {
		return nil, escrowdomain.ErrInvalidStateTransition
	}

	updated, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, storeErr(err)
	}
	if updated == nil {
		return nil, escrowdomain.ErrNotFound
	}

	s.log.Info("escrow state transition",
		zap.String("escrow_id", id.String()),
		zap.String("from", string(from)),
		zap.String("to", string(mutation.To)),
	)
	return &escrowdomain.TransitionResult{
		Account: updated,
		From:    from,
		To:      mutation.To,
	}, nil
}

func storeErr(err error) error {
	return fmt.Errorf("%w: %v", escrowdomain.ErrDependencyUnavailable, err)
}
