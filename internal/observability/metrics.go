// Package observability exposes prometheus instrumentation for sync
// and refresh runs.
package observability

import (
	"time"

	"github.com/alexjbarnes/fitsync/internal/models"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	syncRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fitsync",
		Subsystem: "engine",
		Name:      "runs_total",
		Help:      "Completed sync runs by entity kind and outcome.",
	}, []string{"kind", "outcome"})

	syncRecordsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fitsync",
		Subsystem: "engine",
		Name:      "records_total",
		Help:      "Records created, updated, or deleted by sync runs.",
	}, []string{"kind", "op"})

	syncErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fitsync",
		Subsystem: "engine",
		Name:      "errors_total",
		Help:      "Per-record and fetch errors reported by sync runs.",
	}, []string{"kind"})

	lastSuccessGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "fitsync",
		Subsystem: "engine",
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix timestamp of the most recent fully successful sync run.",
	}, []string{"kind"})

	refreshRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fitsync",
		Subsystem: "refdata",
		Name:      "refresh_runs_total",
		Help:      "Reference data refresh attempts by result.",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(
		syncRunsTotal,
		syncRecordsTotal,
		syncErrorsTotal,
		lastSuccessGauge,
		refreshRunsTotal,
	)
}

// RecordSyncRun counts a finished sync run and its record totals.
// Wire it to the engine's OnResult hook.
func RecordSyncRun(kind string, result models.SyncResult) {
	syncRunsTotal.WithLabelValues(kind, string(result.Outcome)).Inc()

	if result.Counts.Created > 0 {
		syncRecordsTotal.WithLabelValues(kind, "created").Add(float64(result.Counts.Created))
	}

	if result.Counts.Updated > 0 {
		syncRecordsTotal.WithLabelValues(kind, "updated").Add(float64(result.Counts.Updated))
	}

	if result.Counts.Deleted > 0 {
		syncRecordsTotal.WithLabelValues(kind, "deleted").Add(float64(result.Counts.Deleted))
	}

	if len(result.Errors) > 0 {
		syncErrorsTotal.WithLabelValues(kind).Add(float64(len(result.Errors)))
	}

	if result.Outcome == models.OutcomeSuccess {
		lastSuccessGauge.WithLabelValues(kind).Set(float64(time.Now().Unix()))
	}
}

// RecordRefresh counts a reference data refresh attempt.
func RecordRefresh(err error) {
	if err != nil {
		refreshRunsTotal.WithLabelValues("error").Inc()
		return
	}

	refreshRunsTotal.WithLabelValues("ok").Inc()
}
