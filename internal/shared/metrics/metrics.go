package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "docsum"

// Registry holds every collector exported by the service.
var Registry = prometheus.NewRegistry()

var (
	httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed.",
	}, []string{"method", "path", "status"})

	httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})

	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "in_flight_requests",
		Help:      "Number of in-flight HTTP requests.",
	})

	uploadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "documents",
		Name:      "uploads_total",
		Help:      "Document uploads by result.",
	}, []string{"result"})

	deletesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "documents",
		Name:      "deletes_total",
		Help:      "Document deletes by result.",
	}, []string{"result"})

	compensationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "documents",
		Name:      "compensations_total",
		Help:      "Blob removals issued after a failed metadata insert, by result.",
	}, []string{"result"})

	orphansRemovedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "documents",
		Name:      "reconcile_orphans_removed_total",
		Help:      "Orphan blobs removed by reconciliation.",
	})

	summariesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "summaries",
		Name:      "total",
		Help:      "Summaries produced by outcome.",
	}, []string{"outcome"})

	summaryDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "summaries",
		Name:      "llm_duration_seconds",
		Help:      "Summarizer call duration in seconds.",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
	})

	summaryPersistFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "summaries",
		Name:      "persist_failures_total",
		Help:      "Summaries that could not be written back to the document record.",
	})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		httpRequestsTotal,
		httpRequestDuration,
		httpInFlight,
		uploadsTotal,
		deletesTotal,
		compensationsTotal,
		orphansRemovedTotal,
		summariesTotal,
		summaryDuration,
		summaryPersistFailures,
	)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}

// HTTPStart marks a request as in flight and returns a func recording its completion.
func HTTPStart() func(method, path string, status int) {
	start := time.Now()
	httpInFlight.Inc()
	return func(method, path string, status int) {
		httpInFlight.Dec()
		if path == "" {
			path = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// IncUpload counts an upload by result ("ok", "storage_error", "persistence_error", "invalid").
func IncUpload(result string) {
	uploadsTotal.WithLabelValues(result).Inc()
}

// IncDelete counts a delete by result.
func IncDelete(result string) {
	deletesTotal.WithLabelValues(result).Inc()
}

// IncCompensation counts a compensating blob removal by result ("removed", "absent", "failed").
func IncCompensation(result string) {
	compensationsTotal.WithLabelValues(result).Inc()
}

// AddOrphansRemoved adds n to the reconciliation orphan counter.
func AddOrphansRemoved(n int) {
	if n > 0 {
		orphansRemovedTotal.Add(float64(n))
	}
}

// IncSummary counts a summary by outcome.
func IncSummary(outcome string) {
	summariesTotal.WithLabelValues(outcome).Inc()
}

// ObserveSummaryDuration records the duration of a summarizer call.
func ObserveSummaryDuration(d time.Duration) {
	summaryDuration.Observe(d.Seconds())
}

// IncSummaryPersistFailure counts a failed summary write-back.
func IncSummaryPersistFailure() {
	summaryPersistFailures.Inc()
}
