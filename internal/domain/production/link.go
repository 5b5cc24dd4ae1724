package production

import (
	"fmt"

	"github.com/have-fun-was-taken/yafc-ce/internal/domain/catalog"
	"github.com/have-fun-was-taken/yafc-ce/internal/domain/shared"
)

// LinkAlgorithm decides how strictly a link's target is enforced
type LinkAlgorithm int

const (
	// LinkMatch requires production minus consumption to equal the target
	LinkMatch LinkAlgorithm = iota
	// LinkAllowOverConsumption lets consumption exceed production
	LinkAllowOverConsumption
	// LinkAllowOverProduction lets production exceed consumption
	LinkAllowOverProduction
)

func (a LinkAlgorithm) String() string {
	switch a {
	case LinkAllowOverConsumption:
		return "ALLOW_OVER_CONSUMPTION"
	case LinkAllowOverProduction:
		return "ALLOW_OVER_PRODUCTION"
	default:
		return "MATCH"
	}
}

// ParseLinkAlgorithm converts a name produced by String back into an algorithm
func ParseLinkAlgorithm(s string) (LinkAlgorithm, error) {
	switch s {
	case "MATCH", "":
		return LinkMatch, nil
	case "ALLOW_OVER_CONSUMPTION":
		return LinkAllowOverConsumption, nil
	case "ALLOW_OVER_PRODUCTION":
		return LinkAllowOverProduction, nil
	default:
		return 0, fmt.Errorf("unknown link algorithm: %s", s)
	}
}

// Bounds returns the constraint range for a target amount
func (a LinkAlgorithm) Bounds(amount float64) (lo, hi float64) {
	lo, hi = amount, amount
	switch a {
	case LinkAllowOverConsumption:
		lo = negativeInfinity
	case LinkAllowOverProduction:
		hi = positiveInfinity
	}
	return lo, hi
}

// LinkState is the per-solve state of a link
type LinkState int

const (
	LinkUnsolved LinkState = iota
	// LinkPruned links lack production or consumption and constrain nothing
	LinkPruned
	LinkMatched
	LinkNotMatched
	// LinkRecursiveNotMatched links were relaxed by the infeasibility diagnosis
	LinkRecursiveNotMatched
)

func (s LinkState) String() string {
	switch s {
	case LinkPruned:
		return "PRUNED"
	case LinkMatched:
		return "MATCHED"
	case LinkNotMatched:
		return "NOT_MATCHED"
	case LinkRecursiveNotMatched:
		return "RECURSIVE_NOT_MATCHED"
	default:
		return "UNSOLVED"
	}
}

var linkTransitions = map[LinkState][]LinkState{
	LinkUnsolved:   {LinkPruned, LinkMatched},
	LinkMatched:    {LinkNotMatched},
	LinkNotMatched: {LinkRecursiveNotMatched},
}

// FlowLink binds one resource to a desired net rate inside one network.
// Amount is production minus consumption: positive asks the network to
// export the resource, negative lets it import.
type FlowLink struct {
	Resource  catalog.ID
	Amount    float64
	Algorithm LinkAlgorithm

	owner *FlowNetwork

	state           LinkState
	childNotMatched bool
	dualValue       float64
	notMatchedFlow  float64
	linkFlow        float64
}

// Owner returns the network the link belongs to
func (l *FlowLink) Owner() *FlowNetwork { return l.owner }

// State returns the result of the last solve
func (l *FlowLink) State() LinkState { return l.state }

// IsMatched reports whether the last solve balanced the resource exactly
func (l *FlowLink) IsMatched() bool { return l.state == LinkMatched }

// IsNotMatched reports any unbalanced outcome, pruned links included
func (l *FlowLink) IsNotMatched() bool {
	return l.state == LinkPruned || l.state == LinkNotMatched || l.state == LinkRecursiveNotMatched
}

// ChildNotMatched reports that an unmatched link in a nested network leaks into this one
func (l *FlowLink) ChildNotMatched() bool { return l.childNotMatched }

// DualValue is the marginal cost of one more unit of the target
func (l *FlowLink) DualValue() float64 { return l.dualValue }

// NotMatchedFlow is the imbalance found by diagnosis; positive means overproduction
func (l *FlowLink) NotMatchedFlow() float64 { return l.notMatchedFlow }

// LinkFlow is the total production captured by the link
func (l *FlowLink) LinkFlow() float64 { return l.linkFlow }

func (l *FlowLink) transition(to LinkState) error {
	if l.state == to {
		return nil
	}
	for _, allowed := range linkTransitions[l.state] {
		if allowed == to {
			l.state = to
			return nil
		}
	}
	return fmt.Errorf("%w: %w", ErrInvalidLinkTransition, shared.NewInvalidTransitionError("flow link", l.state.String(), to.String()))
}

// reset returns the link to Unsolved and clears every computed value
func (l *FlowLink) reset() {
	l.state = LinkUnsolved
	l.childNotMatched = false
	l.dualValue = 0
	l.notMatchedFlow = 0
	l.linkFlow = 0
}

// markChildNotMatched records a leaking nested link; a matched link becomes unmatched
func (l *FlowLink) markChildNotMatched() {
	l.childNotMatched = true
	if l.state == LinkMatched {
		_ = l.transition(LinkNotMatched)
	}
}

// LinkOutcome is what one solve decided for a link
type LinkOutcome struct {
	Pruned         bool
	NotMatched     bool
	Recursive      bool
	DualValue      float64
	NotMatchedFlow float64
}

// Apply resets the link and replays the transitions leading to the outcome
func (l *FlowLink) Apply(o LinkOutcome) error {
	l.reset()
	l.dualValue = o.DualValue
	l.notMatchedFlow = o.NotMatchedFlow
	if o.Pruned {
		return l.transition(LinkPruned)
	}
	if err := l.transition(LinkMatched); err != nil {
		return err
	}
	if !o.NotMatched && !o.Recursive {
		return nil
	}
	if err := l.transition(LinkNotMatched); err != nil {
		return err
	}
	if o.Recursive {
		return l.transition(LinkRecursiveNotMatched)
	}
	return nil
}
