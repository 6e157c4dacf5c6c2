package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DonationsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "goodworks_donations_created_total",
		Help: "Total number of donations created.",
	})

	TransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "goodworks_donation_transitions_total",
		Help: "Total number of donation status transitions, by target status.",
	},
		[]string{"status"},
	)

	TransitionsBlockedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "goodworks_donation_transitions_blocked_total",
		Help: "Transitions rejected because the donation was in a terminal state.",
	})

	PersistFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "goodworks_persist_failures_total",
		Help: "Write-through persistence failures. These are never surfaced to callers.",
	})

	StoreSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "goodworks_donations_in_store",
		Help: "Current number of donations held in the store.",
	})
)
