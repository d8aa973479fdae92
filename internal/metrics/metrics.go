// Package metrics holds the Prometheus collectors for batch evaluations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the evaluation collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	CandidatesScored  prometheus.Counter
	CandidatesSkipped *prometheus.CounterVec
	ScorePercent      prometheus.Histogram
	Notifications     *prometheus.CounterVec
	Evaluations       *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CandidatesScored: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "mrstrict_candidates_scored_total",
				Help: "Total number of candidate documents scored",
			},
		),
		CandidatesSkipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mrstrict_candidates_skipped_total",
				Help: "Total number of candidate documents skipped by reason",
			},
			[]string{"reason"},
		),
		ScorePercent: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "mrstrict_score_percent",
				Help:    "Distribution of candidate similarity scores",
				Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
			},
		),
		Notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mrstrict_notifications_total",
				Help: "Total number of marks notifications by outcome",
			},
			[]string{"outcome"},
		),
		Evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mrstrict_evaluations_total",
				Help: "Total number of batch evaluations by status",
			},
			[]string{"status"},
		),
	}
	reg.MustRegister(m.CandidatesScored, m.CandidatesSkipped, m.ScorePercent, m.Notifications, m.Evaluations)
	return m
}

// ObserveScored records one scored candidate.
func (m *Metrics) ObserveScored(percent float64) {
	if m == nil {
		return
	}
	m.CandidatesScored.Inc()
	m.ScorePercent.Observe(percent)
}

// ObserveSkipped records one skipped candidate.
func (m *Metrics) ObserveSkipped(reason string) {
	if m == nil {
		return
	}
	m.CandidatesSkipped.WithLabelValues(reason).Inc()
}

// ObserveNotification records a delivery attempt.
func (m *Metrics) ObserveNotification(err error) {
	if m == nil {
		return
	}
	outcome := "sent"
	if err != nil {
		outcome = "failed"
	}
	m.Notifications.WithLabelValues(outcome).Inc()
}

// ObserveEvaluation records a finished run.
func (m *Metrics) ObserveEvaluation(status string) {
	if m == nil {
		return
	}
	m.Evaluations.WithLabelValues(status).Inc()
}
