// Package crossing implements a 1-D crossing scenario: an ego agent and
// one other agent each choose to wait, advance, or retreat along a line;
// the episode ends when the ego reaches its goal position or both agents
// occupy the crossing point at once. It is a concrete HypothesisState the
// search engine in package searcher can plan against.
package crossing

import (
	"golang.org/x/exp/rand"

	"crossingmcts/searcher"
)

// AgentPolicyCrossingState is one candidate hypothesis for the other
// agent's behavior: it wants to keep a "desired gap" to the ego that it
// draws uniformly from a configured range, then moves forward, waits, or
// retreats depending on whether the current distance to the ego exceeds,
// equals, or falls short of that desired gap.
type AgentPolicyCrossingState struct {
	gapLow, gapHigh uint
}

// NewAgentPolicyCrossingState builds a hypothesis whose desired gap is
// drawn uniformly from [gapLow, gapHigh].
func NewAgentPolicyCrossingState(gapLow, gapHigh uint) AgentPolicyCrossingState {
	return AgentPolicyCrossingState{gapLow: gapLow, gapHigh: gapHigh}
}

// Act returns the action this hypothesis takes at the given distance to
// the ego.
//
// Ambiguous-behavior note (carried forward, not "fixed"): this reseeds
// its own generator with the constant 1000 on every call, so the
// "sampled" desired gap is the same draw every time rather than varying
// call to call. That mirrors the original behavior exactly; see
// TestAgentPolicyActIsReproducible in policy_test.go, and DESIGN.md's
// Open Questions.
func (p AgentPolicyCrossingState) Act(egoDistance int) searcher.ActionIdx {
	gen := rand.New(rand.NewSource(1000))
	span := p.gapHigh - p.gapLow + 1
	desiredGap := p.gapLow + uint(gen.Intn(int(span)))
	return p.calculateAction(egoDistance, desiredGap)
}

func (p AgentPolicyCrossingState) calculateAction(egoDistance int, desiredGap uint) searcher.ActionIdx {
	diff := egoDistance - int(desiredGap)
	switch {
	case diff > 0:
		return ActionForward
	case diff == 0:
		return ActionWait
	default:
		return ActionBackward
	}
}

// Probability returns the fraction of this hypothesis's desired-gap range
// that would produce action at the given distance to the ego, i.e. the
// likelihood the belief tracker folds into its posterior.
func (p AgentPolicyCrossingState) Probability(egoDistance int, action searcher.ActionIdx) searcher.Probability {
	span := p.gapHigh - p.gapLow + 1
	var matches uint
	for gap := p.gapLow; gap <= p.gapHigh; gap++ {
		if p.calculateAction(egoDistance, gap) == action {
			matches++
		}
	}
	return searcher.Probability(float64(matches) / float64(span))
}
