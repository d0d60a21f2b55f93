// Package metrics provides Prometheus metrics for the database connectivity
// core: rows mapped, driver registrations, and cleanup outcomes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RowsMapped counts rows converted into records, labeled by source name.
	RowsMapped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dbcore",
			Name:      "rows_mapped_total",
			Help:      "Total rows converted into records",
		},
		[]string{"source"},
	)

	// CellsMapped counts individual cell conversions by value kind.
	CellsMapped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dbcore",
			Name:      "cells_mapped_total",
			Help:      "Total cells converted by the type mapper, by value kind",
		},
		[]string{"kind"},
	)

	// DriverRegistrations counts shim registrations by driver identity.
	DriverRegistrations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dbcore",
			Name:      "driver_registrations_total",
			Help:      "Total driver shim registrations",
		},
		[]string{"driver"},
	)

	// CleanupResults counts best-effort cleanup outcomes by target and kind.
	CleanupResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dbcore",
			Name:      "cleanup_results_total",
			Help:      "Best-effort vendor cleanup outcomes",
		},
		[]string{"target", "kind"},
	)

	// QueryDuration observes statement execution latency by operation.
	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dbcore",
			Name:      "query_duration_seconds",
			Help:      "Statement execution latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)
