// Package domain contains the static badge catalog and the pure progress,
// points and tier functions. Every outcome is derived from real counters;
// nothing here consults a random source.
package domain

import (
	"time"

	supplierdomain "github.com/udyogmart/udyogmart/internal/supplier/domain"
)

type BadgeCategory string

const (
	CategoryAchievement BadgeCategory = "achievement"
	CategoryMilestone   BadgeCategory = "milestone"
	CategorySpecial     BadgeCategory = "special"
	CategorySocial      BadgeCategory = "social"
)

type BadgeRarity string

const (
	RarityCommon    BadgeRarity = "common"
	RarityRare      BadgeRarity = "rare"
	RarityEpic      BadgeRarity = "epic"
	RarityLegendary BadgeRarity = "legendary"
)

type RequirementKind string

const (
	KindOrders       RequirementKind = "orders"
	KindQuotes       RequirementKind = "quotes"
	KindVerification RequirementKind = "verification"
	KindRating       RequirementKind = "rating"
	KindResponseTime RequirementKind = "response_time"
	KindEarlyJoin    RequirementKind = "early_join"
	KindQCSuccess    RequirementKind = "qc_success"
	KindSocialShares RequirementKind = "social_shares"
)

type Requirement struct {
	Kind      RequirementKind `json:"kind"`
	Threshold float64         `json:"threshold"`
}

type Badge struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Category    BadgeCategory `json:"category"`
	Rarity      BadgeRarity   `json:"rarity"`
	Points      int           `json:"points"`
	Requirement Requirement   `json:"requirement"`
}

// earlyJoinWindow is how long after joining a supplier still counts as an
// early adopter.
const earlyJoinWindow = 30 * 24 * time.Hour

// catalog is the fixed, versioned badge list. Not mutable at runtime.
var catalog = []Badge{
	{ID: "first_order", Name: "First Order", Category: CategoryMilestone, Rarity: RarityCommon, Points: 100, Requirement: Requirement{Kind: KindOrders, Threshold: 1}},
	{ID: "century_club", Name: "Century Club", Category: CategoryMilestone, Rarity: RarityEpic, Points: 1000, Requirement: Requirement{Kind: KindOrders, Threshold: 100}},
	{ID: "quote_master", Name: "Quote Master", Category: CategoryAchievement, Rarity: RarityCommon, Points: 200, Requirement: Requirement{Kind: KindQuotes, Threshold: 50}},
	{ID: "verified_supplier", Name: "Verified Supplier", Category: CategorySpecial, Rarity: RarityRare, Points: 300, Requirement: Requirement{Kind: KindVerification, Threshold: 1}},
	{ID: "top_rated", Name: "Top Rated", Category: CategoryAchievement, Rarity: RarityRare, Points: 500, Requirement: Requirement{Kind: KindRating, Threshold: 4.5}},
	{ID: "quick_responder", Name: "Quick Responder", Category: CategoryAchievement, Rarity: RarityRare, Points: 400, Requirement: Requirement{Kind: KindResponseTime, Threshold: 6}},
	{ID: "early_adopter", Name: "Early Adopter", Category: CategorySpecial, Rarity: RarityLegendary, Points: 750, Requirement: Requirement{Kind: KindEarlyJoin, Threshold: 30}},
	{ID: "zero_defects", Name: "Zero Defects", Category: CategoryAchievement, Rarity: RarityEpic, Points: 800, Requirement: Requirement{Kind: KindQCSuccess, Threshold: 25}},
	{ID: "social_butterfly", Name: "Social Butterfly", Category: CategorySocial, Rarity: RarityCommon, Points: 150, Requirement: Requirement{Kind: KindSocialShares, Threshold: 10}},
}

// Catalog returns a copy of the badge catalog.
func Catalog() []Badge {
	out := make([]Badge, len(catalog))
	copy(out, catalog)
	return out
}

// Progress returns the badge completion percentage in [0,100].
// Threshold kinds earn partial credit; comparison and boolean kinds are
// all-or-nothing.
func Progress(b Badge, snap supplierdomain.MetricsSnapshot, now time.Time) float64 {
	switch b.Requirement.Kind {
	case KindOrders:
		return thresholdProgress(float64(snap.TotalOrders), b.Requirement.Threshold)
	case KindQuotes:
		return thresholdProgress(float64(snap.QuotesSubmitted), b.Requirement.Threshold)
	case KindQCSuccess:
		return thresholdProgress(float64(snap.QCPassedCount), b.Requirement.Threshold)
	case KindSocialShares:
		return thresholdProgress(float64(snap.SocialShareCount), b.Requirement.Threshold)
	case KindVerification:
		return boolProgress(snap.Verified)
	case KindRating:
		return boolProgress(snap.Rating >= b.Requirement.Threshold)
	case KindResponseTime:
		// Zero means no responses recorded yet, so the badge stays locked.
		return boolProgress(snap.AverageResponseTimeHours > 0 && snap.AverageResponseTimeHours <= b.Requirement.Threshold)
	case KindEarlyJoin:
		return boolProgress(now.Sub(snap.JoinedAt) <= earlyJoinWindow)
	default:
		return 0
	}
}

// Unlocked reports whether the badge requirement is fully met.
func Unlocked(b Badge, snap supplierdomain.MetricsSnapshot, now time.Time) bool {
	return Progress(b, snap, now) >= 100
}

func thresholdProgress(current, threshold float64) float64 {
	if threshold <= 0 {
		return 100
	}
	if current <= 0 {
		return 0
	}
	progress := current / threshold * 100
	if progress > 100 {
		return 100
	}
	return progress
}

func boolProgress(ok bool) float64 {
	if ok {
		return 100
	}
	return 0
}
