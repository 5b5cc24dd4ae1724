package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// Namespace for all metrics
	namespace = "yafc"
	// Subsystem for solver and analysis metrics
	subsystem = "engine"
)

var (
	// Registry is the global Prometheus registry for all metrics
	Registry *prometheus.Registry

	// globalSolverCollector is the singleton solver metrics collector
	// Set by SetGlobalSolverCollector() when metrics are enabled
	globalSolverCollector SolverMetricsRecorder
)

// SolverMetricsRecorder defines the interface for recording LP and analysis events
// This interface is used by application code to record metrics
type SolverMetricsRecorder interface {
	RecordLPSolve(model string, status string, durationSeconds float64)
	RecordSeedRetry(model string)
	RecordDiagnosis(outcome string)
	RecordAnalysis(analysis string, durationSeconds float64)
}

// InitRegistry initializes the Prometheus registry
// Should be called once at application startup if metrics are enabled
func InitRegistry() {
	Registry = prometheus.NewRegistry()
}

// IsEnabled returns true if metrics collection is enabled
func IsEnabled() bool {
	return Registry != nil
}

// SetGlobalSolverCollector sets the global solver metrics collector
func SetGlobalSolverCollector(collector SolverMetricsRecorder) {
	globalSolverCollector = collector
}

// RecordLPSolve records one LP solve attempt globally
func RecordLPSolve(model string, status string, durationSeconds float64) {
	if globalSolverCollector != nil {
		globalSolverCollector.RecordLPSolve(model, status, durationSeconds)
	}
}

// RecordSeedRetry records a reseeded retry after an abnormal result globally
func RecordSeedRetry(model string) {
	if globalSolverCollector != nil {
		globalSolverCollector.RecordSeedRetry(model)
	}
}

// RecordDiagnosis records the outcome of an infeasibility diagnosis pass globally
func RecordDiagnosis(outcome string) {
	if globalSolverCollector != nil {
		globalSolverCollector.RecordDiagnosis(outcome)
	}
}

// RecordAnalysis records how long a catalog analysis took globally
func RecordAnalysis(analysis string, durationSeconds float64) {
	if globalSolverCollector != nil {
		globalSolverCollector.RecordAnalysis(analysis, durationSeconds)
	}
}
