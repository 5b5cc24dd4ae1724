package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// SolverMetricsCollector handles linear program and analysis metrics
type SolverMetricsCollector struct {
	lpSolvesTotal           *prometheus.CounterVec
	lpSolveDurationSeconds  *prometheus.HistogramVec
	lpSeedRetriesTotal      *prometheus.CounterVec
	diagnosisTotal          *prometheus.CounterVec
	analysisDurationSeconds *prometheus.HistogramVec
}

// NewSolverMetricsCollector creates a new solver metrics collector
func NewSolverMetricsCollector() *SolverMetricsCollector {
	return &SolverMetricsCollector{
		lpSolvesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "lp_solves_total",
				Help:      "Linear program solve attempts by model and result status",
			},
			[]string{"model", "status"},
		),

		lpSolveDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "lp_solve_duration_seconds",
				Help:      "Linear program solve duration distribution",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
			},
			[]string{"model"},
		),

		lpSeedRetriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "lp_seed_retries_total",
				Help:      "Solves repeated with a new seed after an abnormal result",
			},
			[]string{"model"},
		),

		diagnosisTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "flow_diagnosis_total",
				Help:      "Infeasibility diagnosis passes by outcome",
			},
			[]string{"outcome"},
		),

		analysisDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "analysis_duration_seconds",
				Help:      "Catalog analysis duration distribution",
				Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 15, 60},
			},
			[]string{"analysis"},
		),
	}
}

// Register registers all solver metrics with the Prometheus registry
func (c *SolverMetricsCollector) Register() error {
	if Registry == nil {
		return nil // Metrics not enabled
	}

	metrics := []prometheus.Collector{
		c.lpSolvesTotal,
		c.lpSolveDurationSeconds,
		c.lpSeedRetriesTotal,
		c.diagnosisTotal,
		c.analysisDurationSeconds,
	}

	for _, metric := range metrics {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}

	return nil
}

// RecordLPSolve records one solve attempt
func (c *SolverMetricsCollector) RecordLPSolve(model string, status string, durationSeconds float64) {
	c.lpSolvesTotal.WithLabelValues(model, status).Inc()
	c.lpSolveDurationSeconds.WithLabelValues(model).Observe(durationSeconds)
}

// RecordSeedRetry records a reseeded retry
func (c *SolverMetricsCollector) RecordSeedRetry(model string) {
	c.lpSeedRetriesTotal.WithLabelValues(model).Inc()
}

// RecordDiagnosis records a diagnosis pass outcome
func (c *SolverMetricsCollector) RecordDiagnosis(outcome string) {
	c.diagnosisTotal.WithLabelValues(outcome).Inc()
}

// RecordAnalysis records an analysis duration
func (c *SolverMetricsCollector) RecordAnalysis(analysis string, durationSeconds float64) {
	c.analysisDurationSeconds.WithLabelValues(analysis).Observe(durationSeconds)
}
