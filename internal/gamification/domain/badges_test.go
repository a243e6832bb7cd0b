package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	supplierdomain "github.com/udyogmart/udyogmart/internal/supplier/domain"
)

func badgeByID(t *testing.T, id string) Badge {
	t.Helper()
	for _, b := range catalog {
		if b.ID == id {
			return b
		}
	}
	t.Fatalf("badge %s not in catalog", id)
	return Badge{}
}

func TestCatalogIsStable(t *testing.T) {
	first := Catalog()
	require.Len(t, first, 9)

	// Mutating the returned slice must not touch the catalog.
	first[0].Points = 999999
	assert.NotEqual(t, first[0].Points, Catalog()[0].Points)
}

func TestThresholdBadgeProgress(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	century := badgeByID(t, "century_club")

	snap := supplierdomain.MetricsSnapshot{JoinedAt: now.AddDate(-1, 0, 0)}

	snap.TotalOrders = 0
	assert.InDelta(t, 0.0, Progress(century, snap, now), 1e-9)

	snap.TotalOrders = 50
	assert.InDelta(t, 50.0, Progress(century, snap, now), 1e-9)
	assert.False(t, Unlocked(century, snap, now))

	snap.TotalOrders = 100
	assert.InDelta(t, 100.0, Progress(century, snap, now), 1e-9)
	assert.True(t, Unlocked(century, snap, now))

	// Saturates past the threshold.
	snap.TotalOrders = 5000
	assert.InDelta(t, 100.0, Progress(century, snap, now), 1e-9)
}

func TestProgressMonotonicInCounters(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	quote := badgeByID(t, "quote_master")

	prev := -1.0
	for quotes := 0; quotes <= 60; quotes += 5 {
		snap := supplierdomain.MetricsSnapshot{QuotesSubmitted: quotes}
		p := Progress(quote, snap, now)
		assert.GreaterOrEqual(t, p, prev)
		prev = p
	}
}

func TestBooleanBadges(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	snap := supplierdomain.MetricsSnapshot{
		JoinedAt:                 now.AddDate(-1, 0, 0),
		Rating:                   4.4,
		AverageResponseTimeHours: 7,
	}

	verified := badgeByID(t, "verified_supplier")
	assert.False(t, Unlocked(verified, snap, now))
	snap.Verified = true
	assert.True(t, Unlocked(verified, snap, now))

	topRated := badgeByID(t, "top_rated")
	assert.False(t, Unlocked(topRated, snap, now))
	snap.Rating = 4.5
	assert.True(t, Unlocked(topRated, snap, now))

	quick := badgeByID(t, "quick_responder")
	assert.False(t, Unlocked(quick, snap, now))
	snap.AverageResponseTimeHours = 5.5
	assert.True(t, Unlocked(quick, snap, now))

	// A supplier with no recorded responses earns nothing.
	snap.AverageResponseTimeHours = 0
	assert.False(t, Unlocked(quick, snap, now))
}

func TestEarlyAdopterWindow(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	early := badgeByID(t, "early_adopter")

	snap := supplierdomain.MetricsSnapshot{JoinedAt: now.Add(-29 * 24 * time.Hour)}
	assert.True(t, Unlocked(early, snap, now))

	snap.JoinedAt = now.Add(-31 * 24 * time.Hour)
	assert.False(t, Unlocked(early, snap, now))
}

func TestCounterBackedBadges(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	zeroDefects := badgeByID(t, "zero_defects")
	snap := supplierdomain.MetricsSnapshot{QCPassedCount: 24}
	assert.False(t, Unlocked(zeroDefects, snap, now))
	snap.QCPassedCount = 25
	assert.True(t, Unlocked(zeroDefects, snap, now))

	social := badgeByID(t, "social_butterfly")
	snap = supplierdomain.MetricsSnapshot{SocialShareCount: 9}
	assert.InDelta(t, 90.0, Progress(social, snap, now), 1e-9)
	snap.SocialShareCount = 10
	assert.True(t, Unlocked(social, snap, now))
}

func TestPointsAndTiers(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	snap := supplierdomain.MetricsSnapshot{
		JoinedAt:                 now.AddDate(-1, 0, 0),
		TotalOrders:              10,
		Verified:                 true,
		Rating:                   4.0,
		AverageResponseTimeHours: 1.5,
	}

	// Volume: 10*10 + 4*20 + 200 + 100 = 480.
	assert.Equal(t, 480, VolumePoints(snap))

	// Unlocked: first_order (100) + verified_supplier (300) + quick_responder (400).
	assert.Equal(t, 480+800, Points(snap, now))

	assert.Equal(t, TierBronze, TierFor(0))
	assert.Equal(t, TierBronze, TierFor(1999))
	assert.Equal(t, TierSilver, TierFor(2000))
	assert.Equal(t, TierGold, TierFor(5000))
	assert.Equal(t, TierPlatinum, TierFor(10000))
}

func TestPointsDeterministic(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	snap := supplierdomain.MetricsSnapshot{
		JoinedAt:                 now.AddDate(-1, 0, 0),
		TotalOrders:              120,
		QuotesSubmitted:          75,
		QCPassedCount:            30,
		SocialShareCount:         12,
		Verified:                 true,
		Rating:                   4.8,
		AverageResponseTimeHours: 1,
	}

	first := Points(snap, now)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, Points(snap, now))
	}
}
