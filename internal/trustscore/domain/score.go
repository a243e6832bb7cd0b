// Package domain implements the trust score as a pure function of a
// supplier metrics snapshot. No randomness, no side effects: identical
// inputs always produce an identical score.
package domain

import (
	supplierdomain "github.com/udyogmart/udyogmart/internal/supplier/domain"
)

const (
	weightOnTimeDelivery = 0.30
	weightDisputeFree    = 0.25
	weightCompletion     = 0.20
	weightResponseTime   = 0.15
	weightRating         = 0.10

	// Response time contribution is 100 at 0h and floors at 0 from 72h.
	responseTimeCeilingHours = 72.0

	// Volume bonus: flat 0-5 points, saturating at 100 orders.
	volumeBonusMax         = 5.0
	volumeBonusOrderTarget = 100.0
)

// Breakdown exposes the weighted components so API consumers can explain a
// score. Components sum (plus the volume bonus, minus clamping) to Score.
type Breakdown struct {
	OnTimeDelivery float64 `json:"on_time_delivery"`
	DisputeFree    float64 `json:"dispute_free"`
	Completion     float64 `json:"completion"`
	ResponseTime   float64 `json:"response_time"`
	Rating         float64 `json:"rating"`
	VolumeBonus    float64 `json:"volume_bonus"`
	Score          float64 `json:"score"`
}

// Score computes the trust score in [0,100].
func Score(m supplierdomain.MetricsSnapshot) float64 {
	return Compute(m).Score
}

// Compute returns the score with its per-component breakdown.
func Compute(m supplierdomain.MetricsSnapshot) Breakdown {
	b := Breakdown{
		OnTimeDelivery: clamp(m.OnTimeDeliveryRate, 0, 100) * weightOnTimeDelivery,
		DisputeFree:    clamp(100-m.DisputeRate, 0, 100) * weightDisputeFree,
		Completion:     clamp(m.CompletionRate, 0, 100) * weightCompletion,
		ResponseTime:   responseTimeScore(m.AverageResponseTimeHours) * weightResponseTime,
		Rating:         clamp(m.Rating, 0, 5) / 5 * 100 * weightRating,
		VolumeBonus:    volumeBonus(m.TotalOrders),
	}

	total := b.OnTimeDelivery + b.DisputeFree + b.Completion + b.ResponseTime + b.Rating + b.VolumeBonus
	b.Score = clamp(total, 0, 100)
	return b
}

func responseTimeScore(avgHours float64) float64 {
	if avgHours < 0 {
		avgHours = 0
	}
	score := (responseTimeCeilingHours - avgHours) / responseTimeCeilingHours * 100
	return clamp(score, 0, 100)
}

func volumeBonus(totalOrders int) float64 {
	if totalOrders < 0 {
		totalOrders = 0
	}
	bonus := float64(totalOrders) / volumeBonusOrderTarget * volumeBonusMax
	if bonus > volumeBonusMax {
		return volumeBonusMax
	}
	return bonus
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
