// Package scheduler runs the periodic expiry sweep over pending escrow
// accounts. The sweep only observes and notifies; it never transitions
// state.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/udyogmart/udyogmart/internal/clock"
	"github.com/udyogmart/udyogmart/internal/config"
	escrowdomain "github.com/udyogmart/udyogmart/internal/escrow/domain"
	"github.com/udyogmart/udyogmart/internal/metrics"
	notificationdomain "github.com/udyogmart/udyogmart/internal/notification/domain"
	"github.com/udyogmart/udyogmart/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrInvalidConfig = errors.New("scheduler dependencies are incomplete")

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Clock      clock.Clock
	EscrowRepo escrowdomain.Repository
	Notifier   notificationdomain.Dispatcher
	Recorder   *metrics.Recorder
	Policy     *config.EscrowPolicyHolder
	Limiter    *ratelimit.FundLimiter `optional:"true"`
	AppConfig  config.Config
}

type Scheduler struct {
	db         *gorm.DB
	log        *zap.Logger
	clock      clock.Clock
	escrowRepo escrowdomain.Repository
	notifier   notificationdomain.Dispatcher
	recorder   *metrics.Recorder
	policy     *config.EscrowPolicyHolder
	limiter    *ratelimit.FundLimiter

	interval  time.Duration
	batchSize int
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.Clock == nil || p.EscrowRepo == nil || p.Notifier == nil || p.Policy == nil {
		return nil, ErrInvalidConfig
	}

	interval := time.Duration(p.AppConfig.Scheduler.SweepIntervalSecs) * time.Second
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	batchSize := p.AppConfig.Scheduler.ExpirySweepBatchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	return &Scheduler{
		db:         p.DB,
		log:        p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		clock:      p.Clock,
		escrowRepo: p.EscrowRepo,
		notifier:   p.Notifier,
		recorder:   p.Recorder,
		policy:     p.Policy,
		limiter:    p.Limiter,
		interval:   interval,
		batchSize:  batchSize,
	}, nil
}

func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.SweepExpired(ctx); err != nil {
				s.log.Error("expiry sweep failed", zap.Error(err))
			}
		}
	}
}

// SweepExpired reports pending accounts whose expiry has passed. Each
// account is flagged after notification so it is reported exactly once.
func (s *Scheduler) SweepExpired(ctx context.Context) error {
	token, acquired, err := s.limiter.TryLockExpirySweep(ctx)
	if err != nil {
		s.log.Warn("expiry sweep lock unavailable", zap.Error(err))
		return nil
	}
	if !acquired {
		return nil
	}
	defer func() {
		_ = s.limiter.ReleaseExpirySweep(ctx, token)
	}()

	now := s.clock.Now()
	accounts, err := s.escrowRepo.ListExpiredPending(ctx, s.db, now, s.batchSize)
	if err != nil {
		return err
	}
	s.recorder.RecordExpirySweep()

	notify := s.policy.Get().NotifyOnExpiry
	for _, account := range accounts {
		if notify {
			payload := map[string]any{
				"escrow_id":  account.ID.String(),
				"order_id":   account.OrderID.String(),
				"amount":     account.Amount,
				"currency":   account.Currency,
				"expired_at": account.ExpiresAt,
			}
			s.notifier.Dispatch(account.BuyerID, notificationdomain.EventEscrowExpired, payload)
			s.notifier.Dispatch(account.SupplierID, notificationdomain.EventEscrowExpired, payload)
		}

		if err := s.escrowRepo.MarkExpiryNotified(ctx, s.db, account.ID, now); err != nil {
			s.log.Error("mark expiry notified failed",
				zap.String("escrow_id", account.ID.String()),
				zap.Error(err),
			)
		}
	}

	if len(accounts) > 0 {
		s.log.Info("expiry sweep completed",
			zap.Int("expired_accounts", len(accounts)),
		)
	}
	return nil
}
