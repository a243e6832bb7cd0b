// Package domain contains supplier performance metrics consumed by the
// trust score and gamification engines.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Supplier is the performance-counter view of a supplier. Identity and
// profile fields live in the surrounding CRUD system; this core owns only
// the counters that settlement outcomes move.
type Supplier struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	Name     string       `gorm:"type:text;not null" json:"name"`
	Verified bool         `gorm:"not null;default:false" json:"verified"`
	JoinedAt time.Time    `gorm:"not null" json:"joined_at"`

	TotalOrders     int `gorm:"not null;default:0" json:"total_orders"`
	CompletedOrders int `gorm:"not null;default:0" json:"completed_orders"`
	CancelledOrders int `gorm:"not null;default:0" json:"cancelled_orders"`
	DisputedOrders  int `gorm:"not null;default:0" json:"disputed_orders"`
	QuotesSubmitted int `gorm:"not null;default:0" json:"quotes_submitted"`

	// Real counters backing qc_success and social_shares badges.
	QCPassedCount    int `gorm:"not null;default:0" json:"qc_passed_count"`
	QCFailedCount    int `gorm:"not null;default:0" json:"qc_failed_count"`
	SocialShareCount int `gorm:"not null;default:0" json:"social_share_count"`

	OnTimeDeliveryRate       float64 `gorm:"not null;default:0" json:"on_time_delivery_rate"`
	AverageResponseTimeHours float64 `gorm:"not null;default:0" json:"average_response_time_hours"`
	Rating                   float64 `gorm:"not null;default:0" json:"rating"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (Supplier) TableName() string { return "suppliers" }

// RankRecord persists a supplier's last computed leaderboard rank so the
// next computation can report a real delta instead of a fabricated one.
type RankRecord struct {
	SupplierID snowflake.ID `gorm:"primaryKey" json:"supplier_id"`
	Rank       int          `gorm:"not null" json:"rank"`
	ComputedAt time.Time    `gorm:"not null" json:"computed_at"`
}

// TableName sets the database table name.
func (RankRecord) TableName() string { return "supplier_rank_records" }

// MetricsSnapshot is a computed view over a supplier row. It is recomputed
// on demand and never persisted as a source of truth.
type MetricsSnapshot struct {
	SupplierID snowflake.ID `json:"supplier_id"`
	Verified   bool         `json:"verified"`
	JoinedAt   time.Time    `json:"joined_at"`

	TotalOrders      int `json:"total_orders"`
	CompletedOrders  int `json:"completed_orders"`
	CancelledOrders  int `json:"cancelled_orders"`
	DisputedOrders   int `json:"disputed_orders"`
	QuotesSubmitted  int `json:"quotes_submitted"`
	QCPassedCount    int `json:"qc_passed_count"`
	SocialShareCount int `json:"social_share_count"`

	OnTimeDeliveryRate       float64 `json:"on_time_delivery_rate"`
	DisputeRate              float64 `json:"dispute_rate"`
	CompletionRate           float64 `json:"completion_rate"`
	AverageResponseTimeHours float64 `json:"average_response_time_hours"`
	Rating                   float64 `json:"rating"`
}

// Snapshot derives the percentage rates from raw counters. Rates are 0 when
// the supplier has no orders yet.
func (s *Supplier) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		SupplierID:               s.ID,
		Verified:                 s.Verified,
		JoinedAt:                 s.JoinedAt,
		TotalOrders:              s.TotalOrders,
		CompletedOrders:          s.CompletedOrders,
		CancelledOrders:          s.CancelledOrders,
		DisputedOrders:           s.DisputedOrders,
		QuotesSubmitted:          s.QuotesSubmitted,
		QCPassedCount:            s.QCPassedCount,
		SocialShareCount:         s.SocialShareCount,
		OnTimeDeliveryRate:       s.OnTimeDeliveryRate,
		AverageResponseTimeHours: s.AverageResponseTimeHours,
		Rating:                   s.Rating,
	}
	if s.TotalOrders > 0 {
		snap.DisputeRate = float64(s.DisputedOrders) / float64(s.TotalOrders) * 100
		snap.CompletionRate = float64(s.CompletedOrders) / float64(s.TotalOrders) * 100
	}
	return snap
}
