// Package diagnostics exposes the engine's Prometheus metrics and health
// endpoints for long-running `simulate` invocations, bound to an opt-in
// -metrics-addr instead of always listening.
package diagnostics

import (
	"net/http"
	"time"

	dto "github.com/prometheus/client_model/go"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	tasksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "astrograph_tasks_total",
			Help: "Total number of (observatory, tick) render tasks completed.",
		},
		[]string{"outcome"},
	)

	taskDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "astrograph_task_duration_seconds",
			Help:    "Duration of one (observatory, tick) observe-project-write task.",
			Buckets: prometheus.DefBuckets,
		},
	)

	generationDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "astrograph_generation_duration_seconds",
			Help:    "Duration of procedural universe generation.",
			Buckets: prometheus.DefBuckets,
		},
	)

	keplerNonConvergenceTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "astrograph_kepler_non_convergence_total",
			Help: "Total number of Kepler solves that hit the iteration cap without converging.",
		},
	)
)

func init() {
	prometheus.MustRegister(tasksTotal, taskDurationSeconds, generationDurationSeconds, keplerNonConvergenceTotal)
}

// ObserveTaskDuration records one completed render task's wall time and
// outcome ("ok" or "error").
func ObserveTaskDuration(d time.Duration, outcome string) {
	tasksTotal.WithLabelValues(outcome).Inc()
	taskDurationSeconds.Observe(d.Seconds())
}

// ObserveGenerationDuration records one procedural-generation run's wall time.
func ObserveGenerationDuration(d time.Duration) {
	generationDurationSeconds.Observe(d.Seconds())
}

// IncKeplerNonConvergence records one Kepler solve hitting its iteration cap.
func IncKeplerNonConvergence() {
	keplerNonConvergenceTotal.Inc()
}

// KeplerNonConvergenceTotal reports the current value of the
// astrograph_kepler_non_convergence_total counter, for tests that need to
// observe it without scraping /metrics.
func KeplerNonConvergenceTotal() float64 {
	var m dto.Metric
	if err := keplerNonConvergenceTotal.Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
