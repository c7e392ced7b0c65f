// Package observability holds the process-wide Prometheus collectors.
package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 14), // 5ms to ~40s
		},
		[]string{"method", "route", "status"},
	)

	upstreamLatencySeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_latency_seconds",
			Help:    "Latency of upstream catalog calls in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 14),
		},
		[]string{"upstream", "outcome"},
	)

	previewResolution = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "preview_resolution_total",
			Help: "Normalized items by the rule that resolved their preview href.",
		},
		[]string{"rule"},
	)

	aoiFallback = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aoi_bbox_fallback_total",
			Help: "Searches that fell back to the default bbox because the AOI yielded none.",
		},
		[]string{"reason"},
	)

	buildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_build_info",
			Help: "Build information for the binary.",
		},
		[]string{"version"},
	)
)

func ObserveHTTP(method, route string, status int, durationSeconds float64) {
	st := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(method, route, st).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route, st).Observe(durationSeconds)
}

// ObserveUpstreamLatency records one upstream call; outcome is "ok" or "error".
func ObserveUpstreamLatency(upstream, outcome string, durationSeconds float64) {
	upstreamLatencySeconds.WithLabelValues(upstream, outcome).Observe(durationSeconds)
}

func IncPreviewResolution(rule string) {
	if rule == "" {
		rule = "none"
	}
	previewResolution.WithLabelValues(rule).Inc()
}

func IncAOIFallback(reason string) {
	aoiFallback.WithLabelValues(reason).Inc()
}

func ExposeBuildInfo(version string) {
	if version == "" {
		version = "dev"
	}
	buildInfo.WithLabelValues(version).Set(1)
}
