package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce         sync.Once
	requestsTotal        *prometheus.CounterVec
	latencySeconds       *prometheus.HistogramVec
	errorsTotal          *prometheus.CounterVec
	distributionEntries  *prometheus.CounterVec
	submissionsTotal     *prometheus.CounterVec
	gradesTotal          *prometheus.CounterVec
	cascadeRemovalsTotal prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors for the coursework API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coursework_requests_total",
			Help: "Total number of assignment API requests served.",
		}, []string{"method", "route", "status"})

		latencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "coursework_latency_seconds",
			Help:    "Latency distribution for assignment API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		errorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coursework_errors_total",
			Help: "Total number of error responses returned by assignment endpoints.",
		}, []string{"method", "route", "status"})

		distributionEntries = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coursework_distribution_entries_total",
			Help: "Per-student outcomes of assignment distribution.",
		}, []string{"status"})

		submissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coursework_submissions_total",
			Help: "Student submission attempts by outcome.",
		}, []string{"outcome"})

		gradesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coursework_grades_total",
			Help: "Grading attempts by outcome.",
		}, []string{"outcome"})

		cascadeRemovalsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coursework_cascade_removals_total",
			Help: "Tracking entries removed because their assignment was deleted.",
		})

		prometheus.MustRegister(
			requestsTotal,
			latencySeconds,
			errorsTotal,
			distributionEntries,
			submissionsTotal,
			gradesTotal,
			cascadeRemovalsTotal,
		)
	})
}

// Requests exposes the request counter.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return requestsTotal
}

// Latency exposes the request latency histogram.
func Latency() *prometheus.HistogramVec {
	RegisterMetrics()
	return latencySeconds
}

// Errors exposes the error response counter.
func Errors() *prometheus.CounterVec {
	RegisterMetrics()
	return errorsTotal
}

// DistributionEntries counts distribution results by status.
func DistributionEntries() *prometheus.CounterVec {
	RegisterMetrics()
	return distributionEntries
}

// Submissions counts submission attempts by outcome.
func Submissions() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionsTotal
}

// Grades counts grading attempts by outcome.
func Grades() *prometheus.CounterVec {
	RegisterMetrics()
	return gradesTotal
}

// CascadeRemovals counts tracking entries stripped on assignment deletion.
func CascadeRemovals() prometheus.Counter {
	RegisterMetrics()
	return cascadeRemovalsTotal
}
