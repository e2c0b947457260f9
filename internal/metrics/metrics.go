package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WalletQueueLength tracks the number of wallets in the queue
	WalletQueueLength = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "swaplens_wallet_queue_length",
		Help: "The number of wallets currently in the queue",
	})

	// WorkersActive tracks the number of active workers
	WorkersActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "swaplens_workers_active",
		Help: "The number of workers currently active",
	})

	// IndexerRequestsTotal tracks indexer API requests by operation and status
	IndexerRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swaplens_indexer_requests_total",
			Help: "The total number of indexer API requests",
		},
		[]string{"operation", "status"},
	)

	// IndexerEndpointHealth tracks indexer endpoint health
	IndexerEndpointHealth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "swaplens_indexer_endpoint_health",
			Help: "Health status of indexer endpoints (1 = healthy, 0 = unhealthy)",
		},
		[]string{"endpoint"},
	)

	// SwapsClassified tracks classified swap legs by direction and confidence
	SwapsClassified = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swaplens_swaps_classified_total",
			Help: "The total number of swap legs classified",
		},
		[]string{"direction", "confidence"},
	)

	// TransactionsErased tracks erased transactions by reason
	TransactionsErased = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swaplens_transactions_erased_total",
			Help: "The total number of transactions erased during classification",
		},
		[]string{"reason"},
	)

	// SplitSwaps tracks transactions that produced a split swap pair
	SplitSwaps = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swaplens_split_swaps_total",
		Help: "The total number of transactions classified as split swaps",
	})

	// InvariantViolations tracks classification invariant failures by stage
	InvariantViolations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swaplens_invariant_violations_total",
			Help: "The total number of classification invariant violations",
		},
		[]string{"stage"},
	)

	// ClassificationSeconds tracks per-transaction classification time
	ClassificationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "swaplens_classification_seconds",
		Help:    "Time taken to classify a single transaction in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8), // 100µs to ~1.6s
	})

	// WalletClassifySeconds tracks time taken to classify whole wallets
	WalletClassifySeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "swaplens_wallet_classify_seconds",
		Help:    "Time taken to classify a wallet's history in seconds",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10), // 1s to ~17min
	})

	// DatabaseOperations tracks database operations
	DatabaseOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swaplens_database_operations_total",
			Help: "The total number of database operations",
		},
		[]string{"operation", "status"}, // insert/update, success/failed
	)

	// WorkerTaskDuration tracks how long workers spend on tasks
	WorkerTaskDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "swaplens_worker_task_duration_seconds",
			Help:    "Time taken by workers to complete tasks",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"task_type", "worker_id"},
	)
)

// RecordIndexerRequest records an indexer API request outcome
func RecordIndexerRequest(operation, status string) {
	IndexerRequestsTotal.WithLabelValues(operation, status).Inc()
}

// SetIndexerEndpointHealth sets the health status of an indexer endpoint
func SetIndexerEndpointHealth(endpoint string, healthy bool) {
	value := 0.0
	if healthy {
		value = 1.0
	}
	IndexerEndpointHealth.WithLabelValues(endpoint).Set(value)
}

// RecordSwapClassified records one classified swap leg
func RecordSwapClassified(direction, confidence string) {
	SwapsClassified.WithLabelValues(direction, confidence).Inc()
}

// RecordErase records an erased transaction
func RecordErase(reason string) {
	TransactionsErased.WithLabelValues(reason).Inc()
}

// RecordInvariantViolation records a classification invariant failure
func RecordInvariantViolation(stage string) {
	InvariantViolations.WithLabelValues(stage).Inc()
}

// RecordClassification records the time taken to classify a transaction
func RecordClassification(duration float64) {
	ClassificationSeconds.Observe(duration)
}

// RecordWalletClassify records the time taken to classify a wallet
func RecordWalletClassify(duration float64) {
	WalletClassifySeconds.Observe(duration)
}

// RecordDatabaseOperation records a database operation
func RecordDatabaseOperation(operation, status string) {
	DatabaseOperations.WithLabelValues(operation, status).Inc()
}

// RecordWorkerTaskDuration records the time taken by a worker to complete a task
func RecordWorkerTaskDuration(taskType, workerID string, duration float64) {
	WorkerTaskDuration.WithLabelValues(taskType, workerID).Observe(duration)
}
