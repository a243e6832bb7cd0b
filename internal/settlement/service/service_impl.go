package service

import (
	"context"

	auditdomain "github.com/udyogmart/udyogmart/internal/audit/domain"
	"github.com/udyogmart/udyogmart/internal/cache"
	"github.com/udyogmart/udyogmart/internal/clock"
	escrowdomain "github.com/udyogmart/udyogmart/internal/escrow/domain"
	"github.com/udyogmart/udyogmart/internal/metrics"
	notificationdomain "github.com/udyogmart/udyogmart/internal/notification/domain"
	settlementdomain "github.com/udyogmart/udyogmart/internal/settlement/domain"
	supplierdomain "github.com/udyogmart/udyogmart/internal/supplier/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service is the settlement orchestrator. It owns side-effect sequencing:
// the escrow service performs the conditional state write, then supplier
// counters, audit trail and notifications follow in that order.
type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	clock        clock.Clock
	escrowSvc    escrowdomain.Service
	supplierRepo supplierdomain.Repository
	auditSvc     auditdomain.Service
	notifier     notificationdomain.Dispatcher
	cache        cache.SnapshotCache
	recorder     *metrics.Recorder
}

type ServiceParam struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	Clock        clock.Clock
	EscrowSvc    escrowdomain.Service
	SupplierRepo supplierdomain.Repository
	AuditSvc     auditdomain.Service
	Notifier     notificationdomain.Dispatcher
	Cache        cache.SnapshotCache
	Recorder     *metrics.Recorder
}

func NewService(p ServiceParam) settlementdomain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("settlement.service"),
		clock:        p.Clock,
		escrowSvc:    p.EscrowSvc,
		supplierRepo: p.SupplierRepo,
		auditSvc:     p.AuditSvc,
		notifier:     p.Notifier,
		cache:        p.Cache,
		recorder:     p.Recorder,
	}
}

func (s *Service) CreateEscrow(ctx context.Context, req escrowdomain.CreateEscrowRequest) (*escrowdomain.EscrowAccount, error) {
	account, err := s.escrowSvc.Create(ctx, req)
	if err != nil {
		s.recorder.RecordTransition("create", "rejected")
		return nil, err
	}
	s.recorder.RecordTransition("create", "success")

	s.audit(ctx, account, "escrow.create", "", string(escrowdomain.StatePending), map[string]any{
		"amount":   account.Amount,
		"currency": account.Currency,
	})
	// The owning order flow notifies on creation; no event here.
	return account, nil
}

func (s *Service) FundEscrow(ctx context.Context, req escrowdomain.FundEscrowRequest) (*escrowdomain.EscrowAccount, error) {
	result, err := s.escrowSvc.Fund(ctx, req)
	if err != nil {
		s.recorder.RecordTransition("fund", "rejected")
		return nil, err
	}
	s.recorder.RecordTransition("fund", "success")

	account := result.Account
	s.audit(ctx, account, "escrow.fund", string(result.From), string(result.To), map[string]any{
		"payment_method": deref(account.PaymentMethod),
		"transaction_id": deref(account.TransactionID),
	})

	payload := map[string]any{
		"escrow_id": account.ID.String(),
		"order_id":  account.OrderID.String(),
		"amount":    account.Amount,
		"currency":  account.Currency,
	}
	s.notifier.Dispatch(account.BuyerID, notificationdomain.EventEscrowFunded, payload)
	s.notifier.Dispatch(account.SupplierID, notificationdomain.EventEscrowFunded, payload)
	return account, nil
}

func (s *Service) ReleaseEscrow(ctx context.Context, req escrowdomain.ReleaseEscrowRequest) (*escrowdomain.EscrowAccount, error) {
	result, err := s.escrowSvc.Release(ctx, req)
	if err != nil {
		s.recorder.RecordTransition("release", "rejected")
		return nil, err
	}

	account := result.Account
	event := notificationdomain.EventEscrowReleased
	outcome := supplierdomain.OutcomeCompleted
	if result.To == escrowdomain.StateDisputed {
		event = notificationdomain.EventEscrowDisputed
		outcome = supplierdomain.OutcomeDisputed
	}
	s.recorder.RecordTransition("release", string(outcome))

	s.applyOutcome(ctx, account, outcome)
	s.audit(ctx, account, "escrow.release", string(result.From), string(result.To), map[string]any{
		"qc_passed": deref(account.QCPassed),
	})

	payload := map[string]any{
		"escrow_id": account.ID.String(),
		"order_id":  account.OrderID.String(),
		"amount":    account.Amount,
		"currency":  account.Currency,
		"qc_passed": deref(account.QCPassed),
	}
	s.notifier.Dispatch(account.SupplierID, event, payload)
	s.notifier.Dispatch(account.BuyerID, event, payload)
	return account, nil
}

func (s *Service) RefundEscrow(ctx context.Context, req escrowdomain.RefundEscrowRequest) (*escrowdomain.EscrowAccount, error) {
	result, err := s.escrowSvc.Refund(ctx, req)
	if err != nil {
		s.recorder.RecordTransition("refund", "rejected")
		return nil, err
	}
	s.recorder.RecordTransition("refund", "success")

	account := result.Account
	s.applyOutcome(ctx, account, supplierdomain.OutcomeCancelled)
	s.audit(ctx, account, "escrow.refund", string(result.From), string(result.To), map[string]any{
		"refund_reason": deref(account.RefundReason),
	})

	payload := map[string]any{
		"escrow_id": account.ID.String(),
		"order_id":  account.OrderID.String(),
		"amount":    account.Amount,
		"currency":  account.Currency,
		"reason":    deref(account.RefundReason),
	}
	s.notifier.Dispatch(account.BuyerID, notificationdomain.EventEscrowRefunded, payload)
	s.notifier.Dispatch(account.SupplierID, notificationdomain.EventEscrowRefunded, payload)
	return account, nil
}

// applyOutcome moves supplier counters for a settled transition. The escrow
// state write has already durably succeeded; a counter failure is logged,
// not surfaced, so the caller never retries a terminal transition.
func (s *Service) applyOutcome(ctx context.Context, account *escrowdomain.EscrowAccount, outcome supplierdomain.SettlementOutcome) {
	if err := s.supplierRepo.ApplyOutcome(ctx, s.db, account.SupplierID, outcome, s.clock.Now()); err != nil {
		s.log.Error("supplier metrics update failed",
			zap.String("escrow_id", account.ID.String()),
			zap.String("supplier_id", account.SupplierID.String()),
			zap.String("outcome", string(outcome)),
			zap.Error(err),
		)
		return
	}
	s.cache.Invalidate(account.SupplierID)
}

func (s *Service) audit(ctx context.Context, account *escrowdomain.EscrowAccount, action, from, to string, metadata map[string]any) {
	err := s.auditSvc.Record(ctx, auditdomain.Entry{
		EscrowID:  account.ID,
		OrderID:   account.OrderID,
		Action:    action,
		FromState: from,
		ToState:   to,
		Metadata:  metadata,
	})
	if err != nil {
		s.log.Error("audit record failed",
			zap.String("escrow_id", account.ID.String()),
			zap.String("action", action),
			zap.Error(err),
		)
	}
}

func deref[T any](v *T) T {
	if v == nil {
		var zero T
		return zero
	}
	return *v
}
