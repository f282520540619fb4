package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	rvtoolsSummary = "rvtools_summary"

	// Ingestion metrics
	tablesTotal       = "tables_total"
	ingestionsTotal   = "ingestions_total"
	ingestionDuration = "ingestion_duration_seconds"

	// Labels
	entityLabel          = "entity"
	ingestionStatusLabel = "status"

	IngestionSucceeded = "succeeded"
	IngestionFailed    = "failed"
)

var tablesTotalLabels = []string{
	entityLabel,
}

var ingestionsTotalLabels = []string{
	ingestionStatusLabel,
}

/**
* Metrics definition
**/
var tablesTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: rvtoolsSummary,
		Name:      tablesTotal,
		Help:      "number of input tables routed per entity type, unrecognized tables included",
	},
	tablesTotalLabels,
)

var ingestionsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: rvtoolsSummary,
		Name:      ingestionsTotal,
		Help:      "number of ingestion cycles by outcome",
	},
	ingestionsTotalLabels,
)

var ingestionDurationMetric = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Subsystem: rvtoolsSummary,
		Name:      ingestionDuration,
		Help:      "time spent reading and routing the input files of one ingestion cycle",
		Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30},
	},
)

func IncreaseTablesTotalMetric(entity string) {
	labels := prometheus.Labels{
		entityLabel: entity,
	}
	tablesTotalMetric.With(labels).Inc()
}

func IncreaseIngestionsTotalMetric(status string) {
	labels := prometheus.Labels{
		ingestionStatusLabel: status,
	}
	ingestionsTotalMetric.With(labels).Inc()
}

func ObserveIngestionDuration(d time.Duration) {
	ingestionDurationMetric.Observe(d.Seconds())
}

func init() {
	registerMetrics()
}

func registerMetrics() {
	prometheus.MustRegister(tablesTotalMetric)
	prometheus.MustRegister(ingestionsTotalMetric)
	prometheus.MustRegister(ingestionDurationMetric)
}
