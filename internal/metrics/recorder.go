// Package metrics exposes prometheus counters for the settlement core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Recorder struct {
	transitions       *prometheus.CounterVec
	notifyFailures    prometheus.Counter
	trustComputations prometheus.Counter
	leaderboardRuns   prometheus.Counter
	expirySweeps      prometheus.Counter
}

func NewRecorder(reg *prometheus.Registry) *Recorder {
	r := &Recorder{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "udyogmart_escrow_transitions_total",
			Help: "Escrow state transitions by operation and outcome.",
		}, []string{"operation", "outcome"}),
		notifyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "udyogmart_notification_failures_total",
			Help: "Notification dispatches that failed or were dropped.",
		}),
		trustComputations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "udyogmart_trust_score_computations_total",
			Help: "Trust score computations served.",
		}),
		leaderboardRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "udyogmart_leaderboard_computations_total",
			Help: "Leaderboard computations served.",
		}),
		expirySweeps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "udyogmart_escrow_expiry_sweeps_total",
			Help: "Scheduler passes over expired pending escrows.",
		}),
	}

	reg.MustRegister(
		r.transitions,
		r.notifyFailures,
		r.trustComputations,
		r.leaderboardRuns,
		r.expirySweeps,
	)
	return r
}

// NewNopRecorder returns a recorder on a private registry, for tests.
func NewNopRecorder() *Recorder {
	return NewRecorder(prometheus.NewRegistry())
}

func (r *Recorder) RecordTransition(operation, outcome string) {
	if r == nil {
		return
	}
	r.transitions.WithLabelValues(operation, outcome).Inc()
}

func (r *Recorder) RecordNotificationFailure() {
	if r == nil {
		return
	}
	r.notifyFailures.Inc()
}

func (r *Recorder) RecordTrustScoreComputation() {
	if r == nil {
		return
	}
	r.trustComputations.Inc()
}

func (r *Recorder) RecordLeaderboardComputation() {
	if r == nil {
		return
	}
	r.leaderboardRuns.Inc()
}

func (r *Recorder) RecordExpirySweep() {
	if r == nil {
		return
	}
	r.expirySweeps.Inc()
}
