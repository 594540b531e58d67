package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// Namespace for all metrics
	namespace = "craftplan"
	// Subsystem for planner metrics
	subsystem = "planner"
)

var (
	// Registry is the global Prometheus registry for all metrics
	Registry *prometheus.Registry

	// globalPlannerCollector is the singleton planner metrics collector
	// Set by SetGlobalPlannerCollector() when metrics are enabled
	globalPlannerCollector PlannerMetricsRecorder
)

// PlannerMetricsRecorder defines the interface for recording planning events
// This interface is used by application code to record metrics
type PlannerMetricsRecorder interface {
	RecordPlan(summary PlanSummary)
	RecordPlanFailure(mode string, reason string)
	RecordPatternPush(pattern string, success bool)
}

// PlanSummary carries the figures recorded for one finished plan
type PlanSummary struct {
	Mode          string
	Outcome       string
	Bytes         int64
	Invocations   int64
	MissingUnits  int64
	MultiplePaths bool
	Committed     bool
	Duration      float64
}

// InitRegistry initializes the Prometheus registry
// Should be called once at application startup if metrics are enabled
func InitRegistry() {
	Registry = prometheus.NewRegistry()
}

// GetRegistry returns the global Prometheus registry
// Returns nil if metrics are not initialized
func GetRegistry() *prometheus.Registry {
	return Registry
}

// IsEnabled returns true if metrics collection is enabled
func IsEnabled() bool {
	return Registry != nil
}

// SetGlobalPlannerCollector sets the global planner metrics collector
func SetGlobalPlannerCollector(collector PlannerMetricsRecorder) {
	globalPlannerCollector = collector
}

// RecordPlan records a completed plan globally
func RecordPlan(summary PlanSummary) {
	if globalPlannerCollector != nil {
		globalPlannerCollector.RecordPlan(summary)
	}
}

// RecordPlanFailure records a planning run that returned no plan
func RecordPlanFailure(mode string, reason string) {
	if globalPlannerCollector != nil {
		globalPlannerCollector.RecordPlanFailure(mode, reason)
	}
}

// RecordPatternPush records a pattern provider push attempt
func RecordPatternPush(pattern string, success bool) {
	if globalPlannerCollector != nil {
		globalPlannerCollector.RecordPatternPush(pattern, success)
	}
}
