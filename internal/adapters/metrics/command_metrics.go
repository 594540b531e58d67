package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/andrescamacho/craftplan-go/internal/domain/crafting"
	"github.com/andrescamacho/craftplan-go/internal/domain/shared"
)

// CommandMetricsCollector handles mediator request metrics
type CommandMetricsCollector struct {
	requestDuration *prometheus.HistogramVec
	requestsTotal   *prometheus.CounterVec
}

// NewCommandMetricsCollector creates a new request metrics collector
func NewCommandMetricsCollector() *CommandMetricsCollector {
	return &CommandMetricsCollector{
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "request_duration_seconds",
				Help:      "Command and query handling duration distribution",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
			},
			[]string{"request", "status"},
		),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "requests_total",
				Help:      "Total number of commands and queries handled by type and status",
			},
			[]string{"request", "status"},
		),
	}
}

// Register registers all request metrics with the Prometheus registry
func (c *CommandMetricsCollector) Register() error {
	if Registry == nil {
		return nil // Metrics not enabled
	}

	for _, metric := range []prometheus.Collector{c.requestDuration, c.requestsTotal} {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}
	return nil
}

// RecordRequest records one handled request under the status its error maps to
func (c *CommandMetricsCollector) RecordRequest(requestName string, duration float64, err error) {
	status := requestStatus(err)
	c.requestDuration.WithLabelValues(requestName, status).Observe(duration)
	c.requestsTotal.WithLabelValues(requestName, status).Inc()
}

// requestStatus separates caller mistakes and planner limits from real failures
func requestStatus(err error) string {
	var (
		invalid    *crafting.ErrInvalidRequest
		malformed  *shared.ValidationError
		tooComplex *crafting.PlanTooComplexError
		notFound   *crafting.ErrPlanNotFound
	)
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &invalid), errors.As(err, &malformed):
		return "rejected"
	case errors.As(err, &tooComplex):
		return "too_complex"
	case errors.As(err, &notFound):
		return "not_found"
	default:
		return "error"
	}
}
