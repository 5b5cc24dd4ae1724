package services

import (
	"context"
	"time"

	"github.com/have-fun-was-taken/yafc-ce/internal/adapters/metrics"
	"github.com/have-fun-was-taken/yafc-ce/internal/application/common"
	"github.com/have-fun-was-taken/yafc-ce/internal/domain/catalog"
)

// AutomationStatus classifies how soon an object can be produced without manual work.
// Values are ordered: a larger value is strictly better.
type AutomationStatus int

const (
	NotAutomatable AutomationStatus = iota
	AutomatableLater
	AutomatableNow
)

func (s AutomationStatus) String() string {
	switch s {
	case AutomatableNow:
		return "NOW"
	case AutomatableLater:
		return "LATER"
	default:
		return "NOT_AUTOMATABLE"
	}
}

type processingState uint8

const (
	stateUnknown processingState = iota
	stateInQueue
	stateSettled
	// stateExcluded objects are NotAutomatable for good and never re-enqueued
	stateExcluded
)

// Reachability is the per-object automation classification of one catalog
type Reachability struct {
	status []AutomationStatus
}

// Status returns the classification of an object; unknown ids are NotAutomatable
func (r *Reachability) Status(id catalog.ID) AutomationStatus {
	if id <= catalog.NoID || int(id) >= len(r.status) {
		return NotAutomatable
	}
	return r.status[id]
}

// IsAutomatable reports AutomatableLater or better
func (r *Reachability) IsAutomatable(id catalog.ID) bool {
	return r.Status(id) >= AutomatableLater
}

// IsAutomatableNow reports AutomatableNow
func (r *Reachability) IsAutomatableNow(id catalog.ID) bool {
	return r.Status(id) == AutomatableNow
}

// Count returns how many objects have the given status
func (r *Reachability) Count(status AutomationStatus) int {
	n := 0
	for id := 1; id < len(r.status); id++ {
		if r.status[id] == status {
			n++
		}
	}
	return n
}

// ReachabilityAnalyzer runs the automation fixed point over a dependency graph
type ReachabilityAnalyzer struct{}

// NewReachabilityAnalyzer creates a new reachability analyzer
func NewReachabilityAnalyzer() *ReachabilityAnalyzer {
	return &ReachabilityAnalyzer{}
}

// Analyze classifies every catalog object.
//
// Recurring dependency groups are evaluated with AND = min and OR = max over
// the current member statuses; one-time investments (buildings, research) are
// ignored. The result is capped by the milestone ceiling of the object. A
// status only ever improves, so every object is re-enqueued at most twice
// (Unknown -> Later -> Now) and the loop terminates.
func (a *ReachabilityAnalyzer) Analyze(ctx context.Context, c *catalog.Catalog, g *DependencyGraph) *Reachability {
	start := time.Now()
	logger := common.LoggerFromContext(ctx)

	size := c.Size()
	status := make([]AutomationStatus, size)
	state := make([]processingState, size)
	queue := make([]catalog.ID, 0, size)

	enqueue := func(id catalog.ID) {
		state[id] = stateInQueue
		queue = append(queue, id)
	}

	for _, o := range c.Objects() {
		h := o.Meta()
		if !h.Accessible {
			state[h.ID] = stateExcluded
			continue
		}
		if p, ok := catalog.AsProcess(o); ok {
			if a.hasAutomatableCrafter(c, p, false) {
				enqueue(h.ID)
			} else {
				state[h.ID] = stateExcluded
			}
			continue
		}
		if h.Root || !hasRecurringGroups(g.Dependencies(h.ID)) {
			enqueue(h.ID)
		}
	}

	for head := 0; head < len(queue); head++ {
		id := queue[head]
		state[id] = stateUnknown
		o := c.Object(id)

		value := a.evaluate(g.Dependencies(id), status)
		ceiling := AutomatableLater
		if o.Meta().AccessibleNow {
			ceiling = AutomatableNow
		}
		if value > ceiling {
			value = ceiling
		}
		if value == AutomatableNow {
			if p, ok := catalog.AsProcess(o); ok && !a.hasAutomatableCrafter(c, p, true) {
				value = AutomatableLater
			}
		}

		if value <= status[id] {
			if status[id] != NotAutomatable {
				state[id] = stateSettled
			}
			continue
		}
		status[id] = value
		state[id] = stateSettled

		for _, dependent := range g.ReverseDependencies(id) {
			switch state[dependent] {
			case stateInQueue, stateExcluded:
				continue
			}
			if status[dependent] == NotAutomatable || (status[dependent] == AutomatableLater && value == AutomatableNow) {
				enqueue(dependent)
			}
		}
	}

	// Objects still Unknown here were never proven automatable
	result := &Reachability{status: status}

	metrics.RecordAnalysis("reachability", time.Since(start).Seconds())
	logger.Log(common.LevelInfo, "Automation analysis finished", map[string]interface{}{
		"duration_ms":     time.Since(start).Milliseconds(),
		"automatable_now": result.Count(AutomatableNow),
		"automatable":     result.Count(AutomatableLater),
		"not_automatable": size - 1 - result.Count(AutomatableNow) - result.Count(AutomatableLater),
	})

	return result
}

// evaluate folds the recurring groups; no recurring group means nothing blocks the object
func (a *ReachabilityAnalyzer) evaluate(groups []catalog.DependencyList, status []AutomationStatus) AutomationStatus {
	value := AutomatableNow
	for _, group := range groups {
		if group.IsOneTimeInvestment() {
			continue
		}
		var groupValue AutomationStatus
		if group.RequiresAll() {
			groupValue = AutomatableNow
			for _, element := range group.Elements {
				if status[element] < groupValue {
					groupValue = status[element]
				}
			}
		} else {
			groupValue = NotAutomatable
			for _, element := range group.Elements {
				if status[element] > groupValue {
					groupValue = status[element]
				}
			}
		}
		if groupValue < value {
			value = groupValue
		}
		if value == NotAutomatable {
			break
		}
	}
	return value
}

// hasAutomatableCrafter looks for a non-manual crafter that is accessible (or accessible now)
func (a *ReachabilityAnalyzer) hasAutomatableCrafter(c *catalog.Catalog, p *catalog.Process, now bool) bool {
	for _, crafter := range p.Crafters {
		e, ok := c.Entity(crafter)
		if !ok || e.Character {
			continue
		}
		if now && e.AccessibleNow || !now && e.Accessible {
			return true
		}
	}
	return false
}

func hasRecurringGroups(groups []catalog.DependencyList) bool {
	for _, group := range groups {
		if !group.IsOneTimeInvestment() {
			return true
		}
	}
	return false
}
