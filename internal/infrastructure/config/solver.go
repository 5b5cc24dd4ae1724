package config

// SolverConfig tunes the linear programming backend
type SolverConfig struct {
	// Tolerance below which values count as zero
	Tolerance float64 `mapstructure:"tolerance" validate:"gt=0,lt=1"`

	// MaxAttempts bounds the reseeded retries after an ABNORMAL status
	MaxAttempts int `mapstructure:"max_attempts" validate:"min=1,max=50"`

	// Background runs page solves on a worker goroutine
	Background bool `mapstructure:"background"`
}

// AnalysisConfig controls the catalog-wide analyses
type AnalysisConfig struct {
	// IncludeMilestones also computes costs restricted to the current milestones
	IncludeMilestones bool `mapstructure:"include_milestones"`
}
