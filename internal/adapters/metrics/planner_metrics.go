package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// PlannerMetricsCollector handles crafting planner metrics
type PlannerMetricsCollector struct {
	plansTotal        *prometheus.CounterVec
	planFailuresTotal *prometheus.CounterVec
	planBytes         *prometheus.HistogramVec
	planInvocations   *prometheus.HistogramVec
	planDuration      *prometheus.HistogramVec
	missingUnitsTotal *prometheus.CounterVec
	pushesTotal       *prometheus.CounterVec
}

// NewPlannerMetricsCollector creates a new planner metrics collector
func NewPlannerMetricsCollector() *PlannerMetricsCollector {
	return &PlannerMetricsCollector{
		plansTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "plans_total",
				Help:      "Total number of plans produced by mode, outcome and commit state",
			},
			[]string{"mode", "outcome", "committed", "multiple_paths"},
		),
		planFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "plan_failures_total",
				Help:      "Planning runs that returned no plan, by reason",
			},
			[]string{"mode", "reason"},
		),
		planBytes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "plan_bytes",
				Help:      "Byte cost distribution of produced plans",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
			},
			[]string{"mode"},
		),
		planInvocations: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "plan_invocations",
				Help:      "Total pattern invocations per plan",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
			},
			[]string{"mode"},
		),
		planDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "plan_duration_seconds",
				Help:      "Wall time spent planning",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
			},
			[]string{"mode"},
		),
		missingUnitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "missing_units_total",
				Help:      "Units reported missing across all plans",
			},
			[]string{"mode"},
		),
		pushesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "pattern_pushes_total",
				Help:      "Pattern provider push attempts by pattern and status",
			},
			[]string{"pattern", "status"},
		),
	}
}

// Register registers all planner metrics with the Prometheus registry
func (c *PlannerMetricsCollector) Register() error {
	if Registry == nil {
		return nil // Metrics not enabled
	}

	metrics := []prometheus.Collector{
		c.plansTotal,
		c.planFailuresTotal,
		c.planBytes,
		c.planInvocations,
		c.planDuration,
		c.missingUnitsTotal,
		c.pushesTotal,
	}

	for _, metric := range metrics {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}

	return nil
}

// RecordPlan implements PlannerMetricsRecorder
func (c *PlannerMetricsCollector) RecordPlan(summary PlanSummary) {
	c.plansTotal.WithLabelValues(
		summary.Mode,
		summary.Outcome,
		strconv.FormatBool(summary.Committed),
		strconv.FormatBool(summary.MultiplePaths),
	).Inc()
	c.planBytes.WithLabelValues(summary.Mode).Observe(float64(summary.Bytes))
	c.planInvocations.WithLabelValues(summary.Mode).Observe(float64(summary.Invocations))
	c.planDuration.WithLabelValues(summary.Mode).Observe(summary.Duration)
	if summary.MissingUnits > 0 {
		c.missingUnitsTotal.WithLabelValues(summary.Mode).Add(float64(summary.MissingUnits))
	}
}

// RecordPlanFailure implements PlannerMetricsRecorder
func (c *PlannerMetricsCollector) RecordPlanFailure(mode string, reason string) {
	c.planFailuresTotal.WithLabelValues(mode, reason).Inc()
}

// RecordPatternPush implements PlannerMetricsRecorder
func (c *PlannerMetricsCollector) RecordPatternPush(pattern string, success bool) {
	status := "success"
	if !success {
		status = "rejected"
	}
	c.pushesTotal.WithLabelValues(pattern, status).Inc()
}
