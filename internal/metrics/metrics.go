package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	RequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_requests_latency_seconds",
			Help:    "Latency of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// Ingestion
	MessagesClassified = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sms_classified_total",
			Help: "Messages recognized as a transaction",
		},
		[]string{"type"},
	)
	MessagesUnrecognized = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sms_unrecognized_total",
			Help: "Messages no catalog entry recognized",
		},
	)
	ExtractionFaults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sms_extraction_faults_total",
			Help: "Catalog entries that matched but failed to extract",
		},
		[]string{"entry"},
	)
	IngestBatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_batches_total",
			Help: "Insert batches by result",
		},
		[]string{"result"}, // committed|rolled_back
	)

	// Queries
	QueryTableFaults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "query_table_faults_total",
			Help: "Per-table failures during cross-table reads",
		},
		[]string{"table", "op"},
	)
	StatsCacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stats_cache_requests_total",
			Help: "Stats cache lookups by result",
		},
		[]string{"result"}, // hit|miss|error
	)

	// Worker queue
	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current worker queue depth",
		},
	)

	initOnce sync.Once
)

// Handler serves /metrics.
var Handler = promhttp.Handler

// Init registers every collector with the default registry. Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			RequestsTotal,
			RequestLatency,
			MessagesClassified,
			MessagesUnrecognized,
			ExtractionFaults,
			IngestBatches,
			QueryTableFaults,
			StatsCacheHits,
			WorkerQueueDepth,
		)
	})
}
