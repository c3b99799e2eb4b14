package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OperationsTotal counts preprocessor operations by operation and outcome.
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trackfeat_pipeline_operations_total",
			Help: "Total number of preprocessor fit/transform operations",
		},
		[]string{"operation", "outcome"},
	)

	// OperationDuration tracks how long fit and transform take.
	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trackfeat_pipeline_operation_duration_seconds",
			Help:    "Duration of preprocessor operations in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"operation"},
	)

	// RowsProcessedTotal counts input rows handled by successful operations.
	RowsProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trackfeat_pipeline_rows_processed_total",
			Help: "Total number of table rows processed by the preprocessor",
		},
		[]string{"operation"},
	)

	// FeaturesOutput is the number of output columns of the last fit.
	FeaturesOutput = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "trackfeat_pipeline_output_features",
			Help: "Number of feature columns produced by the most recently fitted preprocessor",
		},
	)
)

// recordOperation updates the operation metrics.
func recordOperation(operation string, rows int, duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	OperationsTotal.WithLabelValues(operation, outcome).Inc()
	OperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err == nil {
		RowsProcessedTotal.WithLabelValues(operation).Add(float64(rows))
	}
}
