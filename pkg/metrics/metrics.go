// Package metrics exposes Prometheus collectors for the audit pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values for InvoicesProcessed.
const (
	OutcomeAccepted = "accepted"
	OutcomeReview   = "review"
	OutcomeError    = "error"
)

var (
	// InvoicesProcessed counts pipeline runs by terminal outcome.
	InvoicesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "invaudit",
			Name:      "invoices_processed_total",
			Help:      "Invoices processed by the pipeline, by outcome.",
		},
		[]string{"outcome"},
	)

	// FindingsTotal counts rule findings by status.
	FindingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "invaudit",
			Name:      "rule_findings_total",
			Help:      "Validation rule findings produced, by status.",
		},
		[]string{"status"},
	)

	// InFlightWorkers tracks invoices currently being processed.
	InFlightWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "invaudit",
			Name:      "in_flight_workers",
			Help:      "Number of invoices currently being processed.",
		},
	)

	// DuplicatesSkipped counts files skipped by content-hash dedup.
	DuplicatesSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "invaudit",
			Name:      "duplicates_skipped_total",
			Help:      "Files skipped because their content hash was already processed.",
		},
	)

	// ReviewsFinalized counts human review decisions applied.
	ReviewsFinalized = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "invaudit",
			Name:      "reviews_finalized_total",
			Help:      "Human review decisions applied, by decision.",
		},
		[]string{"decision"},
	)
)
