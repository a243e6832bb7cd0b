package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type BadgeProgress struct {
	Badge    Badge   `json:"badge"`
	Progress float64 `json:"progress"`
	Unlocked bool    `json:"unlocked"`
}

type BadgesResponse struct {
	SupplierID snowflake.ID    `json:"supplier_id"`
	Badges     []BadgeProgress `json:"badges"`
	Points     int             `json:"points"`
	Tier       Tier            `json:"tier"`
}

type LeaderboardEntry struct {
	Rank        int          `json:"rank"`
	RankDelta   int          `json:"rank_delta"`
	SupplierID  snowflake.ID `json:"supplier_id"`
	Name        string       `json:"name"`
	Rating      float64      `json:"rating"`
	TotalOrders int          `json:"total_orders"`
	TrustScore  float64      `json:"trust_score"`
	Points      int          `json:"points"`
	Tier        Tier         `json:"tier"`
}

type LeaderboardResponse struct {
	Entries []LeaderboardEntry `json:"entries"`
}

// Service computes badge progress and the leaderboard. Read-only for
// callers; leaderboard computation persists rank records as a side effect
// so the next run can report a real delta.
type Service interface {
	ComputeBadges(ctx context.Context, supplierID snowflake.ID) (BadgesResponse, error)
	ComputeLeaderboard(ctx context.Context, limit int) (LeaderboardResponse, error)
}
