package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/have-fun-was-taken/yafc-ce/internal/application/common"
	"github.com/have-fun-was-taken/yafc-ce/internal/domain/catalog"
	"github.com/have-fun-was-taken/yafc-ce/internal/domain/optimization"
)

// Session holds every analysis computed for one catalog. It is read-only
// once built and may be shared between goroutines.
type Session struct {
	Catalog      *catalog.Catalog
	Dependencies *DependencyGraph
	Reachability *Reachability
	Cost         *CostAnalysis
	// CostMilestones is restricted to what the reached milestones allow; nil when not requested
	CostMilestones *CostAnalysis
	Loops          []TechnologyLoop
	Duration       time.Duration
}

// SessionOptions tune a session build
type SessionOptions struct {
	Attempts          int
	IncludeMilestones bool
}

// NewSession runs the dependency graph, reachability, both cost variants in
// parallel and the technology loop report.
func NewSession(ctx context.Context, c *catalog.Catalog, solvers optimization.SolverFactory, opts SessionOptions) (*Session, error) {
	start := time.Now()
	logger := common.LoggerFromContext(ctx)

	s := &Session{Catalog: c}
	s.Dependencies = NewDependencyGraphBuilder().Build(c)
	s.Reachability = NewReachabilityAnalyzer().Analyze(ctx, c, s.Dependencies)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cost, err := NewCostAnalyzer(solvers, opts.Attempts, false).Analyze(gctx, c, s.Reachability)
		if err != nil {
			return err
		}
		s.Cost = cost
		return nil
	})
	if opts.IncludeMilestones {
		g.Go(func() error {
			cost, err := NewCostAnalyzer(solvers, opts.Attempts, true).Analyze(gctx, c, s.Reachability)
			if err != nil {
				return err
			}
			s.CostMilestones = cost
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("cost analysis failed: %w", err)
	}

	s.Loops = NewTechnologyLoopFinder().FindLoops(ctx, c)
	s.Duration = time.Since(start)

	logger.Log(common.LevelInfo, "Analysis session ready", map[string]interface{}{
		"objects":     c.Size() - 1,
		"loops":       len(s.Loops),
		"milestones":  opts.IncludeMilestones,
		"duration_ms": s.Duration.Milliseconds(),
	})
	return s, nil
}

// Warnings collects the non-fatal messages of the session's analyses
func (s *Session) Warnings() []string {
	var warnings []string
	for _, cost := range []*CostAnalysis{s.Cost, s.CostMilestones} {
		if cost != nil && cost.Warning != "" {
			warnings = append(warnings, cost.Warning)
		}
	}
	return warnings
}

// SessionCache builds a session on first use and keeps it until invalidated
type SessionCache struct {
	mu      sync.Mutex
	catalog catalog.Repository
	solvers optimization.SolverFactory
	opts    SessionOptions
	session *Session
}

// NewSessionCache creates a cache loading its catalog from repo
func NewSessionCache(repo catalog.Repository, solvers optimization.SolverFactory, opts SessionOptions) *SessionCache {
	return &SessionCache{catalog: repo, solvers: solvers, opts: opts}
}

// Get returns the cached session, building it when needed
func (c *SessionCache) Get(ctx context.Context) (*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		return c.session, nil
	}

	cat, err := c.catalog.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	session, err := NewSession(ctx, cat, c.solvers, c.opts)
	if err != nil {
		return nil, err
	}
	c.session = session
	return session, nil
}

// Invalidate drops the cached session, typically after a catalog import
func (c *SessionCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = nil
}
