package metrics

import (
	"errors"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/have-fun-was-taken/yafc-ce/internal/domain/catalog"
	"github.com/have-fun-was-taken/yafc-ce/internal/domain/production"
)

// CommandMetricsCollector tracks mediator requests by name and outcome
type CommandMetricsCollector struct {
	commandDuration *prometheus.HistogramVec
	commandsTotal   *prometheus.CounterVec
}

// NewCommandMetricsCollector creates a new command metrics collector
func NewCommandMetricsCollector() *CommandMetricsCollector {
	labels := []string{"command", "outcome"}
	return &CommandMetricsCollector{
		commandDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "command_duration_seconds",
				Help:      "Analysis and solve command duration distribution",
				// catalog analyses of a full game take tens of seconds
				Buckets: []float64{0.005, 0.025, 0.1, 0.5, 1.0, 5.0, 30.0, 120.0},
			},
			labels,
		),
		commandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "commands_total",
				Help:      "Commands and queries handled, by outcome",
			},
			labels,
		),
	}
}

// Register adds the collectors to Registry; a nil Registry disables metrics
func (c *CommandMetricsCollector) Register() error {
	if Registry == nil {
		return nil
	}
	for _, collector := range []prometheus.Collector{c.commandDuration, c.commandsTotal} {
		if err := Registry.Register(collector); err != nil {
			return err
		}
	}
	return nil
}

// RecordCommandExecution records one handled request
func (c *CommandMetricsCollector) RecordCommandExecution(commandName string, duration float64, err error) {
	outcome := classifyOutcome(err)
	c.commandDuration.WithLabelValues(commandName, outcome).Observe(duration)
	c.commandsTotal.WithLabelValues(commandName, outcome).Inc()
}

// classifyOutcome keeps label cardinality bounded: user mistakes and solver
// failures are told apart, everything else is "error".
func classifyOutcome(err error) string {
	if err == nil {
		return "success"
	}

	var solveErr *production.SolveError
	var unknown *catalog.ErrUnknownObject
	switch {
	case errors.As(err, &solveErr):
		return "solve_" + strings.ToLower(solveErr.Kind.String())
	case errors.Is(err, production.ErrPageNotFound), errors.As(err, &unknown):
		return "not_found"
	default:
		return "error"
	}
}
