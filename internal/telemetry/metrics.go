/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Database metrics
var (
	DatabaseQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "smartlists_db_query_duration_seconds",
			Help:    "Library database operation duration in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"operation", "table"},
	)

	DatabaseErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smartlists_db_errors_total",
			Help: "Total number of failed library database operations",
		},
		[]string{"operation", "kind"},
	)
)

// Compile metrics
var (
	PlaylistResultsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smartlists_playlist_results_total",
			Help: "Playlist compile outcomes by status",
		},
		[]string{"status"},
	)

	TagResolutionMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "smartlists_tag_resolution_misses_total",
			Help: "Tag names that did not resolve and were dropped from a smart list",
		},
	)

	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "smartlists_run_duration_seconds",
			Help:    "Duration of a full playlist create run",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// Backup metrics
var (
	BackupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smartlists_backups_total",
			Help: "Backup attempts by outcome",
		},
		[]string{"status"},
	)

	BackupSizeBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "smartlists_backup_size_bytes",
			Help: "Size of the most recent backup archive",
		},
	)
)
