package services

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	buildInfo     *prometheus.GaugeVec
	eventsTotal   *prometheus.CounterVec
	outcomesTotal *prometheus.CounterVec

	handleLatency *prometheus.HistogramVec
}

var metricsSingleton = sync.OnceValue(func() *metrics {
	return &metrics{
		buildInfo: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "engagement_updater",
			Name:      "build_information",
			Help:      "Build information (constant 1, labelled with version and hash).",
		}, []string{"version", "hash"}),
		eventsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "engagement_updater",
			Name:      "events_total",
			Help:      "Total number of engagement events received.",
		}, []string{"request_type"}),
		outcomesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "engagement_updater",
			Name:      "outcomes_total",
			Help:      "Total number of handled events by terminal outcome.",
		}, []string{"action"}),
		handleLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "engagement_updater",
			Name:      "handle_latency_seconds",
			Help:      "Latency distribution for handling one engagement event.",
			Buckets: []float64{
				0.01, 0.02, 0.05,
				0.1, 0.2, 0.5,
				1, 2, 5, 10,
			},
		}, []string{"action"}),
	}
})

func getMetrics() *metrics {
	return metricsSingleton()
}

// SetBuildInformation publishes the build metadata metric.
func SetBuildInformation(version, hash string) {
	getMetrics().buildInfo.WithLabelValues(version, hash).Set(1)
}
