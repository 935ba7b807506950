// Package metrics exposes Prometheus counters for spins, leads and result
// notifications.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const labelWheel, labelResult = "wheel", "result"

var (
	SpinsStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prizewheel_spins_started_total",
		Help: "Spins accepted, by wheel key.",
	}, []string{labelWheel})

	SpinsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prizewheel_spins_rejected_total",
		Help: "Spin requests refused before any state change.",
	}, []string{labelWheel, "reason"})

	SpinsRevealed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prizewheel_spins_revealed_total",
		Help: "Spins whose prize was revealed.",
	}, []string{labelWheel})

	StaleReveals = promauto.NewCounter(prometheus.CounterOpts{
		Name: "prizewheel_stale_reveals_total",
		Help: "Reveal callbacks dropped because their session was gone or superseded.",
	})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "prizewheel_spin_sessions",
		Help: "Spin sessions currently held in memory.",
	})

	LeadsRegistered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "prizewheel_leads_registered_total",
		Help: "Leads accepted by the public lead endpoint.",
	})

	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prizewheel_notifications_total",
		Help: "Result notifications, by outcome.",
	}, []string{labelResult})
)

// Notification outcomes.
const (
	ResultSent    = "sent"
	ResultFailed  = "failed"
	ResultDropped = "dropped"
	ResultSkipped = "skipped"
)
