package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rangephy",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rangephy",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
	linkFrames = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rangephy",
			Subsystem: "link",
			Name:      "frames_total",
			Help:      "Transport block frames sent or received.",
		},
		[]string{"direction", "success"},
	)
	linkFrameBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rangephy",
			Subsystem: "link",
			Name:      "frame_bytes",
			Help:      "Encoded transport block size in bytes.",
			Buckets:   prometheus.ExponentialBuckets(128, 4, 8),
		},
		[]string{"direction"},
	)
	capacityQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rangephy",
			Subsystem: "capacity",
			Name:      "queries_total",
			Help:      "Capacity and sizing computations served.",
		},
		[]string{"operation", "success"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, linkFrames, linkFrameBytes, capacityQueries)
	})
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}

// RecordLinkFrame counts one frame; direction is "send" or "receive".
func RecordLinkFrame(direction string, size int, success bool) {
	RegisterMetrics()
	linkFrames.WithLabelValues(direction, strconv.FormatBool(success)).Inc()
	if success {
		linkFrameBytes.WithLabelValues(direction).Observe(float64(size))
	}
}

func RecordCapacityQuery(operation string, success bool) {
	RegisterMetrics()
	capacityQueries.WithLabelValues(operation, strconv.FormatBool(success)).Inc()
}
