package service

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/udyogmart/udyogmart/internal/cache"
	"github.com/udyogmart/udyogmart/internal/clock"
	"github.com/udyogmart/udyogmart/internal/config"
	gamificationdomain "github.com/udyogmart/udyogmart/internal/gamification/domain"
	"github.com/udyogmart/udyogmart/internal/metrics"
	supplierdomain "github.com/udyogmart/udyogmart/internal/supplier/domain"
	trustscoredomain "github.com/udyogmart/udyogmart/internal/trustscore/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	clock    clock.Clock
	repo     supplierdomain.Repository
	cache    cache.SnapshotCache
	recorder *metrics.Recorder
	policy   *config.EscrowPolicyHolder
}

type ServiceParam struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Clock    clock.Clock
	Repo     supplierdomain.Repository
	Cache    cache.SnapshotCache
	Recorder *metrics.Recorder
	Policy   *config.EscrowPolicyHolder
}

func NewService(p ServiceParam) gamificationdomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("gamification.service"),
		clock:    p.Clock,
		repo:     p.Repo,
		cache:    p.Cache,
		recorder: p.Recorder,
		policy:   p.Policy,
	}
}

func (s *Service) ComputeBadges(ctx context.Context, supplierID snowflake.ID) (gamificationdomain.BadgesResponse, error) {
	snap, err := s.loadSnapshot(ctx, supplierID)
	if err != nil {
		return gamificationdomain.BadgesResponse{}, err
	}

	now := s.clock.Now()
	catalog := gamificationdomain.Catalog()
	badges := make([]gamificationdomain.BadgeProgress, 0, len(catalog))
	for _, badge := range catalog {
		progress := gamificationdomain.Progress(badge, snap, now)
		badges = append(badges, gamificationdomain.BadgeProgress{
			Badge:    badge,
			Progress: progress,
			Unlocked: progress >= 100,
		})
	}

	points := gamificationdomain.Points(snap, now)
	return gamificationdomain.BadgesResponse{
		SupplierID: supplierID,
		Badges:     badges,
		Points:     points,
		Tier:       gamificationdomain.TierFor(points),
	}, nil
}

// ComputeLeaderboard ranks all eligible suppliers, persists the new ranks
// and reports each entry's movement against the previously persisted rank.
// Ordering is a deterministic function of the supplier set.
func (s *Service) ComputeLeaderboard(ctx context.Context, limit int) (gamificationdomain.LeaderboardResponse, error) {
	policy := s.policy.Get()
	if limit <= 0 {
		limit = policy.LeaderboardDefaultLimit
	}
	if limit > policy.LeaderboardMaxLimit {
		limit = policy.LeaderboardMaxLimit
	}

	// Rank over the full candidate set so deltas stay meaningful for
	// suppliers outside the requested page.
	candidates, err := s.repo.ListLeaderboardCandidates(ctx, s.db, 0)
	if err != nil {
		return gamificationdomain.LeaderboardResponse{}, fmt.Errorf("list leaderboard candidates: %w", err)
	}

	previous, err := s.repo.PreviousRanks(ctx, s.db)
	if err != nil {
		return gamificationdomain.LeaderboardResponse{}, fmt.Errorf("load previous ranks: %w", err)
	}

	now := s.clock.Now()
	entries := make([]gamificationdomain.LeaderboardEntry, 0, len(candidates))
	rankEntries := make([]supplierdomain.RankEntry, 0, len(candidates))
	for i, candidate := range candidates {
		rank := i + 1
		snap := candidate.Snapshot()
		points := gamificationdomain.Points(snap, now)

		delta := 0
		if prev, ok := previous[candidate.ID]; ok {
			delta = prev - rank
		}

		entries = append(entries, gamificationdomain.LeaderboardEntry{
			Rank:        rank,
			RankDelta:   delta,
			SupplierID:  candidate.ID,
			Name:        candidate.Name,
			Rating:      candidate.Rating,
			TotalOrders: candidate.TotalOrders,
			TrustScore:  trustscoredomain.Score(snap),
			Points:      points,
			Tier:        gamificationdomain.TierFor(points),
		})
		rankEntries = append(rankEntries, supplierdomain.RankEntry{
			SupplierID: candidate.ID,
			Rank:       rank,
		})
	}

	if err := s.repo.SaveRanks(ctx, s.db, rankEntries, now); err != nil {
		return gamificationdomain.LeaderboardResponse{}, fmt.Errorf("save ranks: %w", err)
	}

	s.recorder.RecordLeaderboardComputation()
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return gamificationdomain.LeaderboardResponse{Entries: entries}, nil
}

func (s *Service) loadSnapshot(ctx context.Context, supplierID snowflake.ID) (supplierdomain.MetricsSnapshot, error) {
	if snap, ok := s.cache.GetSnapshot(supplierID); ok {
		return snap, nil
	}

	supplier, err := s.repo.FindByID(ctx, s.db, supplierID)
	if err != nil {
		return supplierdomain.MetricsSnapshot{}, fmt.Errorf("load supplier: %w", err)
	}
	if supplier == nil {
		return supplierdomain.MetricsSnapshot{}, supplierdomain.ErrNotFound
	}

	snap := supplier.Snapshot()
	s.cache.SetSnapshot(supplierID, snap)
	return snap, nil
}
