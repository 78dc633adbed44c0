// Package metrics exposes Prometheus collectors for maze solves.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every maze collector plus the Go and process collectors.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	solvesTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "maze_solves_total",
		Help: "Completed solves by algorithm and status",
	}, []string{"algorithm", "status"})

	solveDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "maze_solve_duration_seconds",
		Help:    "Wall clock duration of a solve, pacing delay included",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 12), // 0.1ms to ~7min
	}, []string{"algorithm"})

	solveSteps = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "maze_solve_steps",
		Help:    "Step callbacks per solve",
		Buckets: prometheus.ExponentialBuckets(1, 2, 16),
	}, []string{"algorithm"})

	pathLength = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "maze_path_length",
		Help:    "Edges on the path returned by successful solves",
		Buckets: prometheus.ExponentialBuckets(1, 2, 14),
	}, []string{"algorithm"})

	stepsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "maze_steps_total",
		Help: "Step callbacks observed across all solves",
	}, []string{"algorithm"})

	activeSolves = factory.NewGauge(prometheus.GaugeOpts{
		Name: "maze_active_solves",
		Help: "Solves currently running",
	})

	sessionsGauge = factory.NewGauge(prometheus.GaugeOpts{
		Name: "maze_sessions",
		Help: "Sessions held in memory",
	})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// SolveStarted marks a solve as running. Call the returned func when it ends.
func SolveStarted() func() {
	activeSolves.Inc()
	return activeSolves.Dec
}

// ObserveStep counts one step callback.
func ObserveStep(algorithm string) {
	stepsTotal.WithLabelValues(algorithm).Inc()
}

// ObserveSolve records the outcome of a finished solve.
func ObserveSolve(algorithm, status string, elapsed time.Duration, steps, path int) {
	solvesTotal.WithLabelValues(algorithm, status).Inc()
	solveDuration.WithLabelValues(algorithm).Observe(elapsed.Seconds())
	solveSteps.WithLabelValues(algorithm).Observe(float64(steps))
	if path >= 0 {
		pathLength.WithLabelValues(algorithm).Observe(float64(path))
	}
}

// SetSessions reports the number of live sessions.
func SetSessions(n int) {
	sessionsGauge.Set(float64(n))
}

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
