package searcher

// HypothesisStatistic tracks, for one node and one other agent, how many
// times each hypothesis has been observed to choose each action from
// this node's state. The counts are read back through ActionCounts;
// BeliefTracker's posterior update does not use them.
type HypothesisStatistic struct {
	agent AgentIdx
	// counts[hypothesis][action] = number of times hypothesis was
	// observed choosing action from this node.
	counts map[HypothesisId]map[ActionIdx]uint
}

// NewHypothesisStatistic builds an empty HypothesisStatistic for agent.
func NewHypothesisStatistic(agent AgentIdx) *HypothesisStatistic {
	return &HypothesisStatistic{
		agent:  agent,
		counts: make(map[HypothesisId]map[ActionIdx]uint),
	}
}

// ChooseNextAction consults state's currently sampled hypothesis for
// this agent and returns the action that hypothesis's act function would
// take.
func (h *HypothesisStatistic) ChooseNextAction(state HypothesisState) ActionIdx {
	return state.PlanActionCurrentHypothesis(h.agent)
}

// PolicyIsReady is always true for a hypothesis statistic: other agents
// are never progressively expanded, they act according to a fixed
// sampled hypothesis for the whole iteration.
func (h *HypothesisStatistic) PolicyIsReady() bool { return true }

// RecordAction increments the observation count for (hypothesis, action).
func (h *HypothesisStatistic) RecordAction(hypothesis HypothesisId, action ActionIdx) {
	byAction, ok := h.counts[hypothesis]
	if !ok {
		byAction = make(map[ActionIdx]uint)
		h.counts[hypothesis] = byAction
	}
	byAction[action]++
}

// ActionCounts returns a defensive snapshot of the observation counts
// for hypothesis, for diagnostic consumption.
func (h *HypothesisStatistic) ActionCounts(hypothesis HypothesisId) map[ActionIdx]uint {
	out := make(map[ActionIdx]uint, len(h.counts[hypothesis]))
	for action, count := range h.counts[hypothesis] {
		out[action] = count
	}
	return out
}
