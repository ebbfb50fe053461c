// Package searcher implements a cost-constrained, hypothesis-aware Monte
// Carlo Tree Search planner for multi-agent sequential decision problems.
package searcher

import "strconv"

// ActionIdx identifies a single-agent action, bounded by that agent's
// action count in the current state.
type ActionIdx int

// AgentIdx identifies an agent taking part in the joint decision. Index 0
// is always the ego agent, whose action the planner ultimately returns.
type AgentIdx int

// HypothesisId identifies one candidate policy attributed to an other
// agent.
type HypothesisId int

// Reward is a scalar, possibly negative, return.
type Reward float64

// Cost is a scalar, non-negative step or accumulated cost.
type Cost float64

// Probability is a real number expected to lie in [0, 1].
type Probability float64

// EgoAgentIdx is the fixed index of the planner's own agent.
const EgoAgentIdx AgentIdx = 0

// JointAction is one action per agent, ordered by AgentIdx, index 0 being
// the ego agent's action.
type JointAction []ActionIdx

// Policy maps an action to the probability of selecting it. A well-formed
// Policy sums to 1 within numerical tolerance over its keys.
type Policy map[ActionIdx]Probability

// Sum returns the total probability mass assigned by the policy.
func (p Policy) Sum() Probability {
	var total Probability
	for _, prob := range p {
		total += prob
	}
	return total
}

// State is the capability set the search engine requires from the
// environment. Execute must be pure with respect to any sampling it
// performs internally: stochastic transitions should draw from a
// RandomSource the caller controls, not from a private generator.
type State interface {
	// AgentIndices returns the agents participating in this state, ego
	// (0) first.
	AgentIndices() []AgentIdx
	// NumActions returns the number of legal actions for agent, a
	// positive integer.
	NumActions(agent AgentIdx) int
	// Execute applies a joint action and returns the resulting state,
	// the per-agent reward vector (one entry per agent returned by
	// AgentIndices, in the same order), and the ego agent's
	// single-step cost.
	Execute(joint JointAction) (next State, rewards []Reward, egoCost Cost)
	// IsTerminal reports whether no further action can be taken from
	// this state.
	IsTerminal() bool
}

// HypothesisState extends State with the queries the hypothesis variant
// needs to reason about other agents' unknown policies.
type HypothesisState interface {
	State
	// PlanActionCurrentHypothesis returns the action that agent's
	// currently sampled hypothesis would take from this state.
	PlanActionCurrentHypothesis(agent AgentIdx) ActionIdx
	// Probability returns the likelihood hypothesis hyp assigns to
	// agent taking action from this state.
	Probability(hyp HypothesisId, agent AgentIdx, action ActionIdx) Probability
	// Prior returns the prior weight of hypothesis hyp for agent,
	// consulted when no evidence exists yet.
	Prior(hyp HypothesisId, agent AgentIdx) Probability
	// NumHypotheses returns the number of candidate hypotheses tracked
	// for agent.
	NumHypotheses(agent AgentIdx) int
	// LastAction returns the most recently recorded action for agent.
	LastAction(agent AgentIdx) ActionIdx
	// WithHypotheses returns a copy of this state bound to assignment,
	// the sampled hypothesis held fixed for one MCTS iteration.
	WithHypotheses(assignment map[AgentIdx]HypothesisId) HypothesisState
	// AddHypothesis returns a copy of this state with hypothesis appended
	// to the candidate hypothesis set it exposes. hypothesis is a
	// domain-specific policy value; concrete implementations type-assert
	// it to their own policy type.
	AddHypothesis(hypothesis any) HypothesisState
}

// jointActionKey turns a JointAction into a comparable map key so tree
// nodes can index children without a custom hash map.
func jointActionKey(joint JointAction) string {
	// one int fits well under the small-string optimization most
	// allocators apply; actions are small so this never grows large.
	key := make([]byte, 0, len(joint)*5)
	for i, a := range joint {
		if i > 0 {
			key = append(key, ',')
		}
		key = append(key, []byte(strconv.Itoa(int(a)))...)
	}
	return string(key)
}
