package searcher

import "sort"

// BeliefTracker maintains, per other agent, a posterior distribution
// over hypothesis policies, updated from observed action sequences. It
// is owned by the episode runner (an external collaborator) and is
// borrowed read-only by the search engine for sampling; within one
// Search call nothing mutates it except BeliefUpdate, which the caller
// invokes between decisions, never mid-search.
type BeliefTracker struct {
	weights        map[AgentIdx]map[HypothesisId]Probability
	priorSmoothing Probability
}

// NewBeliefTracker builds a tracker with a uniform prior over
// numHypotheses(agent) for every agent in agents except the ego.
func NewBeliefTracker(agents []AgentIdx, numHypotheses func(AgentIdx) int, smoothing Probability) *BeliefTracker {
	weights := make(map[AgentIdx]map[HypothesisId]Probability, len(agents))
	for _, agent := range agents {
		if agent == EgoAgentIdx {
			continue
		}
		n := numHypotheses(agent)
		if n <= 0 {
			panic(ErrEmptyHypothesisSet)
		}
		byHyp := make(map[HypothesisId]Probability, n)
		uniform := Probability(1.0 / float64(n))
		for h := 0; h < n; h++ {
			byHyp[HypothesisId(h)] = uniform
		}
		weights[agent] = byHyp
	}
	return &BeliefTracker{weights: weights, priorSmoothing: smoothing}
}

// BeliefUpdate folds one observed transition into every other agent's
// posterior: for each hypothesis, multiply the running weight by the
// likelihood that hypothesis assigns to the action actually taken, blend
// in the configured prior smoothing, then renormalize.
func (b *BeliefTracker) BeliefUpdate(last HypothesisState, current HypothesisState) {
	for agent, byHyp := range b.weights {
		action := current.LastAction(agent)
		var total Probability
		for hyp := range byHyp {
			likelihood := last.Probability(hyp, agent, action)
			prior := last.Prior(hyp, agent)
			blended := (1-b.priorSmoothing)*likelihood + b.priorSmoothing*prior
			byHyp[hyp] *= blended
			total += byHyp[hyp]
		}
		if total == 0 {
			// every hypothesis assigned zero likelihood: fall back to
			// a fresh uniform posterior rather than dividing by zero.
			uniform := Probability(1.0 / float64(len(byHyp)))
			for hyp := range byHyp {
				byHyp[hyp] = uniform
			}
			continue
		}
		for hyp := range byHyp {
			byHyp[hyp] /= total
		}
	}
}

// SampleCurrentHypothesis independently samples one hypothesis per other
// agent from the normalized posterior, producing the assignment held
// fixed for one MCTS iteration.
func (b *BeliefTracker) SampleCurrentHypothesis(rng *RandomSource) map[AgentIdx]HypothesisId {
	assignment := make(map[AgentIdx]HypothesisId, len(b.weights))
	for agent, byHyp := range b.weights {
		assignment[agent] = sampleFromDistribution(byHyp, rng)
	}
	return assignment
}

func sampleFromDistribution(byHyp map[HypothesisId]Probability, rng *RandomSource) HypothesisId {
	hyps := make([]HypothesisId, 0, len(byHyp))
	for h := range byHyp {
		hyps = append(hyps, h)
	}
	sortHypotheses(hyps)

	draw := Probability(rng.Float64())
	var cumulative Probability
	for _, h := range hyps {
		cumulative += byHyp[h]
		if draw <= cumulative {
			return h
		}
	}
	return hyps[len(hyps)-1]
}

func sortHypotheses(hyps []HypothesisId) {
	sort.Slice(hyps, func(i, j int) bool { return hyps[i] < hyps[j] })
}

// Beliefs returns a defensive snapshot of the normalized distributions,
// used for logging/diagnostics.
func (b *BeliefTracker) Beliefs() map[AgentIdx]map[HypothesisId]Probability {
	snapshot := make(map[AgentIdx]map[HypothesisId]Probability, len(b.weights))
	for agent, byHyp := range b.weights {
		copied := make(map[HypothesisId]Probability, len(byHyp))
		for h, p := range byHyp {
			copied[h] = p
		}
		snapshot[agent] = copied
	}
	return snapshot
}
