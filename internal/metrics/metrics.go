// Package metrics exposes Prometheus collectors for the planner.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// GenerationsTotal counts schedule generations by outcome.
var GenerationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "planner",
	Subsystem: "schedule",
	Name:      "generations_total",
	Help:      "Schedule generations by outcome (ok, invalid, failed).",
}, []string{"outcome"})

// ScheduledEntries tracks the size of generated schedules.
var ScheduledEntries = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "planner",
	Subsystem: "schedule",
	Name:      "entries",
	Help:      "Number of payment entries per generated schedule.",
	Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
})

// SavesTotal counts draft materializations by outcome.
var SavesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "planner",
	Subsystem: "schedule",
	Name:      "saves_total",
	Help:      "Draft saves to the backend by outcome (ok, failed).",
}, []string{"outcome"})

// PaymentsRecorded counts payments posted to the backend ledger.
var PaymentsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "planner",
	Subsystem: "payments",
	Name:      "recorded_total",
	Help:      "Payments recorded, by source (draft, schedule).",
}, []string{"source"})

// RemindersSent counts due-payment reminder emails.
var RemindersSent = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "planner",
	Subsystem: "reminders",
	Name:      "sent_total",
	Help:      "Due-payment reminder runs by outcome (sent, skipped, failed).",
}, []string{"outcome"})
