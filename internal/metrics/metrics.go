// README: Prometheus counters for model calls, degraded outputs, and notification delivery.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every collector exposed on /metrics.
var Registry = prometheus.NewRegistry()

var (
	// DegradedOutputs counts model outputs replaced by a fallback, by pipeline ("booking", "intel_brief").
	DegradedOutputs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "roamgenie",
		Name:      "degraded_outputs_total",
		Help:      "Model outputs that failed to parse or validate and were replaced by a fallback.",
	}, []string{"pipeline"})

	// PipelineRuns counts pipeline invocations by pipeline and outcome ("ok", "degraded", "error"; alert level for warroom).
	PipelineRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "roamgenie",
		Name:      "pipeline_runs_total",
		Help:      "Pipeline invocations by outcome.",
	}, []string{"pipeline", "outcome"})

	// Notifications counts outbound notification attempts by channel and result.
	Notifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "roamgenie",
		Name:      "notifications_total",
		Help:      "Outbound notification attempts.",
	}, []string{"channel", "result"})

	// MockFlightStatus counts flight-status responses served from the mock record.
	MockFlightStatus = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "roamgenie",
		Name:      "mock_flight_status_total",
		Help:      "Flight status lookups answered with the mock record.",
	})

	// RateLimited counts requests rejected by the rate limiter.
	RateLimited = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "roamgenie",
		Name:      "rate_limited_total",
		Help:      "Requests rejected by the rate limiter.",
	})
)

func init() {
	Registry.MustRegister(
		DegradedOutputs,
		PipelineRuns,
		Notifications,
		MockFlightStatus,
		RateLimited,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
