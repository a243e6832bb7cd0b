package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/udyogmart/udyogmart/internal/config"
)

const (
	keyFundBuyer     = "escrow:fund:buyer:%s"
	keyExpirySweep   = "escrow:sweep:expiry"
	sweepLockMinimum = 5 * time.Second
)

// FundLimiter throttles funding attempts per buyer so a misbehaving client
// cannot hammer the payment rail. Disabled unless redis is configured.
type FundLimiter struct {
	enabled bool

	bucket *TokenBucket
	locker *Locker

	fundRate  float64
	fundBurst int
	lockTTL   time.Duration
}

func NewFundLimiter(cfg config.Config) (*FundLimiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}

	addr := strings.TrimSpace(limitCfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}
	if limitCfg.FundRate <= 0 || limitCfg.FundBurst <= 0 {
		return nil, errors.New("fund rate limit must be positive")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(limitCfg.RedisPassword),
		DB:       limitCfg.RedisDB,
	})

	lockTTL := time.Duration(limitCfg.LockTTLSecs) * time.Second
	if lockTTL < sweepLockMinimum {
		lockTTL = sweepLockMinimum
	}

	return &FundLimiter{
		enabled:   true,
		bucket:    NewTokenBucket(client),
		locker:    NewLocker(client),
		fundRate:  limitCfg.FundRate,
		fundBurst: limitCfg.FundBurst,
		lockTTL:   lockTTL,
	}, nil
}

func (l *FundLimiter) Enabled() bool {
	return l != nil && l.enabled
}

func (l *FundLimiter) AllowBuyer(ctx context.Context, buyerID string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyFundBuyer, strings.TrimSpace(buyerID)), l.fundRate, l.fundBurst)
}

// TryLockExpirySweep guards the scheduler sweep across replicas.
func (l *FundLimiter) TryLockExpirySweep(ctx context.Context) (string, bool, error) {
	if !l.Enabled() {
		return "", true, nil
	}
	return l.locker.TryLock(ctx, keyExpirySweep, l.lockTTL)
}

func (l *FundLimiter) ReleaseExpirySweep(ctx context.Context, token string) error {
	if !l.Enabled() {
		return nil
	}
	return l.locker.Release(ctx, keyExpirySweep, token)
}
