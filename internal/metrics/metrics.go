// Package metrics provides Prometheus metrics for cardfetcher.
// Scrape these at /metrics on the ops address.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Chat Metrics
	MessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardfetcher_messages_total",
			Help: "Inbound chat messages by handling result",
		},
		[]string{"result"}, // "command", "queries", "ignored"
	)

	SendErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardfetcher_send_errors_total",
			Help: "Failed outbound chat sends by payload kind",
		},
		[]string{"kind"}, // "image", "legalities", "text"
	)

	// Query Metrics
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardfetcher_queries_total",
			Help: "Card queries by target and outcome",
		},
		[]string{"target", "outcome"}, // outcome: "ok", "no_candidates", "no_match", "missing_field", "failed"
	)

	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cardfetcher_query_duration_seconds",
			Help:    "Time from token extraction to rendered payload",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"target"},
	)

	// Scryfall API Metrics
	SourceRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardfetcher_scryfall_requests_total",
			Help: "Scryfall search requests by HTTP status (or \"error\" for transport failures)",
		},
		[]string{"status"},
	)

	SourceRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cardfetcher_scryfall_request_duration_seconds",
			Help:    "Scryfall search latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Command Metrics
	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardfetcher_commands_total",
			Help: "Chat commands executed by name",
		},
		[]string{"command"},
	)

	KeywordLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardfetcher_keyword_lookups_total",
			Help: "Keyword lookups by outcome",
		},
		[]string{"outcome"}, // "resolved", "fallback", "not_found", "empty"
	)

	KeywordTableSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cardfetcher_keyword_table_size",
			Help: "Number of keywords loaded at startup",
		},
	)
)
