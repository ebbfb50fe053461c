package searcher

// HeuristicEstimate is the leaf-value estimate a Heuristic produces:
// a discounted reward per agent and the ego's accumulated, undiscounted
// cost.
type HeuristicEstimate struct {
	Rewards map[AgentIdx]Reward
	EgoCost Cost
}

// Heuristic estimates the value of a leaf state without expanding the
// tree any further. It returns ErrMalformedExecuteResult if the state it
// rolls out through ever violates the Execute reward-arity contract.
type Heuristic interface {
	Estimate(state State, gamma float64, depthCap int, rng *RandomSource) (HeuristicEstimate, error)
}

// RandomRolloutHeuristic is the default heuristic: from the leaf state,
// repeatedly play uniform-random joint actions until terminal or a depth
// cap, accumulating discounted reward per agent and undiscounted ego
// cost.
type RandomRolloutHeuristic struct{}

// Estimate implements Heuristic.
func (RandomRolloutHeuristic) Estimate(state State, gamma float64, depthCap int, rng *RandomSource) (HeuristicEstimate, error) {
	agents := state.AgentIndices()
	rewards := make(map[AgentIdx]Reward, len(agents))
	var egoCost Cost
	discount := 1.0

	for depth := 0; depth < depthCap && !state.IsTerminal(); depth++ {
		joint := make(JointAction, len(agents))
		for i, agent := range agents {
			joint[i] = ActionIdx(rng.Intn(state.NumActions(agent)))
		}
		next, stepRewards, stepCost := state.Execute(joint)
		if len(stepRewards) != len(agents) {
			return HeuristicEstimate{}, ErrMalformedExecuteResult
		}
		for i, agent := range agents {
			rewards[agent] += Reward(discount) * stepRewards[i]
		}
		egoCost += stepCost
		discount *= gamma
		state = next
	}
	return HeuristicEstimate{Rewards: rewards, EgoCost: egoCost}, nil
}
