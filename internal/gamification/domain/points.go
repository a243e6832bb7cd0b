package domain

import (
	"time"

	supplierdomain "github.com/udyogmart/udyogmart/internal/supplier/domain"
)

type Tier string

const (
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
)

const (
	tierSilverFloor   = 2000
	tierGoldFloor     = 5000
	tierPlatinumFloor = 10000
)

// VolumePoints are earned from raw activity independent of badges.
func VolumePoints(snap supplierdomain.MetricsSnapshot) int {
	points := snap.TotalOrders*10 + int(snap.Rating*20)
	if snap.Verified {
		points += 200
	}
	points += responseTimeBonus(snap.AverageResponseTimeHours)
	return points
}

// An average of zero means no responses recorded yet, not instant replies;
// a supplier has to earn the bonus with real history.
func responseTimeBonus(avgHours float64) int {
	switch {
	case avgHours <= 0:
		return 0
	case avgHours < 2:
		return 100
	case avgHours < 6:
		return 50
	default:
		return 0
	}
}

// Points is the sum of unlocked badge points and volume points.
func Points(snap supplierdomain.MetricsSnapshot, now time.Time) int {
	points := VolumePoints(snap)
	for _, badge := range catalog {
		if Unlocked(badge, snap, now) {
			points += badge.Points
		}
	}
	return points
}

// TierFor maps a point total to a tier.
func TierFor(points int) Tier {
	switch {
	case points >= tierPlatinumFloor:
		return TierPlatinum
	case points >= tierGoldFloor:
		return TierGold
	case points >= tierSilverFloor:
		return TierSilver
	default:
		return TierBronze
	}
}
