// Package metrics holds Prometheus instruments that are used across the
// panel.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	PublishTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "publish_total",
			Help: "Cumulative number of publish attempts started.",
		})

	PublishErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "publish_errors_total",
			Help: "Cumulative publish failures by pipeline stage.",
		},
		[]string{"stage"}, // config, render, repository, push, activate, persist
	)

	PublishDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "publish_duration_seconds",
			Help:    "Wall-clock duration of completed publish attempts.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10), // 1 s .. ~17 min
		})

	AssetDownloadsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "asset_downloads_total",
			Help: "Remote assets fetched into the local uploads directory.",
		})

	AssetDownloadErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "asset_download_errors_total",
			Help: "Remote asset fetches that failed and fell back to the original reference.",
		})

	VisitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "site_visits_total",
			Help: "Visit beacons received from published microsites.",
		})
)

func init() {
	prometheus.MustRegister(
		PublishTotal,
		PublishErrorsTotal,
		PublishDuration,
		AssetDownloadsTotal,
		AssetDownloadErrorsTotal,
		VisitsTotal,
	)
}
