// Package metrics holds the prometheus collectors for ingestion and
// prediction. Collectors work unregistered; Register exposes them.
package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "retail_inventory"

var (
	RowsAccepted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ingest",
		Name:      "rows_accepted_total",
		Help:      "CSV rows turned into inventory records.",
	})

	RowsSkipped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ingest",
		Name:      "rows_skipped_total",
		Help:      "CSV rows skipped, by reason.",
	}, []string{"reason"})

	BatchesWritten = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ingest",
		Name:      "batches_written_total",
		Help:      "Bulk inserts issued to storage.",
	})

	IngestRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ingest",
		Name:      "runs_total",
		Help:      "Ingest runs, by final status.",
	}, []string{"status"})

	Predictions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ai",
		Name:      "predictions_total",
		Help:      "Per-record predictions served, by source.",
	}, []string{"source"})

	PredictorFallbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ai",
		Name:      "predictor_fallbacks_total",
		Help:      "Prediction requests answered by the local heuristic after a remote failure.",
	})
)

func collectors() []prometheus.Collector {
	return []prometheus.Collector{
		RowsAccepted, RowsSkipped, BatchesWritten, IngestRuns, Predictions, PredictorFallbacks,
	}
}

// Register adds every collector to reg. Collectors that are already
// registered are left alone.
func Register(reg prometheus.Registerer) error {
	for _, c := range collectors() {
		if err := reg.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				continue
			}
			return err
		}
	}
	return nil
}

// Handler serves the default gatherer in the prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
