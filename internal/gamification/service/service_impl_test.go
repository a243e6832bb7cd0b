package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/udyogmart/udyogmart/internal/cache"
	"github.com/udyogmart/udyogmart/internal/clock"
	"github.com/udyogmart/udyogmart/internal/config"
	gamificationdomain "github.com/udyogmart/udyogmart/internal/gamification/domain"
	"github.com/udyogmart/udyogmart/internal/metrics"
	supplierdomain "github.com/udyogmart/udyogmart/internal/supplier/domain"
	supplierrepository "github.com/udyogmart/udyogmart/internal/supplier/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupGamification(t *testing.T, clk clock.Clock) (gamificationdomain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&supplierdomain.Supplier{}, &supplierdomain.RankRecord{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(ServiceParam{
		DB:       db,
		Log:      zap.NewNop(),
		Clock:    clk,
		Repo:     supplierrepository.Provide(),
		Cache:    cache.NewSnapshotCache(),
		Recorder: metrics.NewNopRecorder(),
		Policy:   config.NewStaticEscrowPolicyHolder(config.DefaultEscrowPolicy()),
	})
	return svc, db, node
}

func seedRanked(t *testing.T, db *gorm.DB, node *snowflake.Node, name string, rating float64, orders int) *supplierdomain.Supplier {
	t.Helper()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := &supplierdomain.Supplier{
		ID:          node.Generate(),
		Name:        name,
		Verified:    true,
		JoinedAt:    now,
		Rating:      rating,
		TotalOrders: orders,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, db.Create(s).Error)
	return s
}

func TestComputeBadges(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	svc, db, node := setupGamification(t, clk)
	ctx := context.Background()

	now := clk.Now()
	supplier := &supplierdomain.Supplier{
		ID:                       node.Generate(),
		Name:                     "Sharma Textiles",
		Verified:                 true,
		JoinedAt:                 now.AddDate(-1, 0, 0),
		TotalOrders:              10,
		Rating:                   4.0,
		AverageResponseTimeHours: 1.5,
		CreatedAt:                now,
		UpdatedAt:                now,
	}
	require.NoError(t, db.Create(supplier).Error)

	resp, err := svc.ComputeBadges(ctx, supplier.ID)
	require.NoError(t, err)

	assert.Equal(t, supplier.ID, resp.SupplierID)
	assert.Len(t, resp.Badges, 9)

	unlocked := map[string]bool{}
	for _, b := range resp.Badges {
		if b.Unlocked {
			unlocked[b.Badge.ID] = true
		}
	}
	assert.Equal(t, map[string]bool{
		"first_order":       true,
		"verified_supplier": true,
		"quick_responder":   true,
	}, unlocked)

	// Volume 480 + badge points 800.
	assert.Equal(t, 1280, resp.Points)
	assert.Equal(t, gamificationdomain.TierBronze, resp.Tier)
}

func TestComputeBadgesUnknownSupplier(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	svc, _, node := setupGamification(t, clk)

	_, err := svc.ComputeBadges(context.Background(), node.Generate())
	assert.ErrorIs(t, err, supplierdomain.ErrNotFound)
}

func TestLeaderboardOrderingAndDeltas(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	svc, db, node := setupGamification(t, clk)
	ctx := context.Background()

	alpha := seedRanked(t, db, node, "Alpha", 4.8, 100)
	beta := seedRanked(t, db, node, "Beta", 4.5, 200)
	gamma := seedRanked(t, db, node, "Gamma", 4.0, 50)

	first, err := svc.ComputeLeaderboard(ctx, 10)
	require.NoError(t, err)
	require.Len(t, first.Entries, 3)

	assert.Equal(t, alpha.ID, first.Entries[0].SupplierID)
	assert.Equal(t, beta.ID, first.Entries[1].SupplierID)
	assert.Equal(t, gamma.ID, first.Entries[2].SupplierID)
	for i, entry := range first.Entries {
		assert.Equal(t, i+1, entry.Rank)
		assert.Equal(t, 0, entry.RankDelta, "first run has no history")
		assert.Greater(t, entry.TrustScore, 0.0)
	}

	// Gamma overtakes Beta.
	require.NoError(t, db.Model(&supplierdomain.Supplier{}).
		Where("id = ?", gamma.ID).
		Update("rating", 4.7).Error)

	second, err := svc.ComputeLeaderboard(ctx, 10)
	require.NoError(t, err)
	require.Len(t, second.Entries, 3)

	assert.Equal(t, alpha.ID, second.Entries[0].SupplierID)
	assert.Equal(t, 0, second.Entries[0].RankDelta)

	assert.Equal(t, gamma.ID, second.Entries[1].SupplierID)
	assert.Equal(t, 1, second.Entries[1].RankDelta, "moved up from 3 to 2")

	assert.Equal(t, beta.ID, second.Entries[2].SupplierID)
	assert.Equal(t, -1, second.Entries[2].RankDelta, "moved down from 2 to 3")
}

func TestLeaderboardDeterministicOutput(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	svc, db, node := setupGamification(t, clk)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		seedRanked(t, db, node, "Supplier", 4.0+float64(i%3)*0.1, 10*(i+1))
	}

	first, err := svc.ComputeLeaderboard(ctx, 10)
	require.NoError(t, err)

	second, err := svc.ComputeLeaderboard(ctx, 10)
	require.NoError(t, err)

	// Unchanged data produces bit-identical entries; by the second run all
	// deltas are zero because nothing moved.
	require.Equal(t, len(first.Entries), len(second.Entries))
	for i := range second.Entries {
		assert.Equal(t, first.Entries[i].SupplierID, second.Entries[i].SupplierID)
		assert.Equal(t, first.Entries[i].Rank, second.Entries[i].Rank)
		assert.Equal(t, first.Entries[i].TrustScore, second.Entries[i].TrustScore)
		assert.Equal(t, first.Entries[i].Points, second.Entries[i].Points)
		assert.Equal(t, 0, second.Entries[i].RankDelta)
	}
}

func TestLeaderboardLimits(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	svc, db, node := setupGamification(t, clk)
	ctx := context.Background()

	for i := 0; i < 30; i++ {
		seedRanked(t, db, node, "Supplier", 4.0, 10)
	}

	resp, err := svc.ComputeLeaderboard(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, resp.Entries, 5)

	// Zero falls back to the policy default.
	resp, err = svc.ComputeLeaderboard(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, resp.Entries, config.DefaultEscrowPolicy().LeaderboardDefaultLimit)

	// Oversized requests clamp to the policy maximum.
	resp, err = svc.ComputeLeaderboard(ctx, 100000)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(resp.Entries), config.DefaultEscrowPolicy().LeaderboardMaxLimit)
}
