package searcher

// stubState is a minimal deterministic two-agent State (and
// HypothesisState, via stub answers) used across the package's tests.
// Reward for the ego is the ego action's index, cost is 1 whenever the
// ego chooses action 1 at the terminal transition, and the state
// terminates once depth reaches maxDepth.
type stubState struct {
	depth      int
	maxDepth   int
	numActions int
	agents     []AgentIdx
}

func newStubState(maxDepth, numActions int) stubState {
	return stubState{maxDepth: maxDepth, numActions: numActions, agents: []AgentIdx{0, 1}}
}

func (s stubState) AgentIndices() []AgentIdx { return s.agents }

func (s stubState) NumActions(AgentIdx) int { return s.numActions }

func (s stubState) IsTerminal() bool { return s.depth >= s.maxDepth }

func (s stubState) Execute(joint JointAction) (State, []Reward, Cost) {
	next := s
	next.depth++
	rewards := make([]Reward, len(s.agents))
	for i, a := range joint {
		rewards[i] = Reward(a)
	}
	var cost Cost
	if joint[0] == 1 {
		cost = 1
	}
	return next, rewards, cost
}

func (s stubState) PlanActionCurrentHypothesis(AgentIdx) ActionIdx { return 0 }

func (s stubState) Probability(HypothesisId, AgentIdx, ActionIdx) Probability { return 1 }

func (s stubState) Prior(HypothesisId, AgentIdx) Probability { return 0.5 }

func (s stubState) NumHypotheses(AgentIdx) int { return 1 }

func (s stubState) LastAction(AgentIdx) ActionIdx { return 0 }

func (s stubState) WithHypotheses(map[AgentIdx]HypothesisId) HypothesisState { return s }

func (s stubState) AddHypothesis(any) HypothesisState { return s }

// minimalState implements State only, deliberately omitting the
// HypothesisState methods, to exercise NewHypothesisMCTS's precondition
// check against a root that isn't a HypothesisState.
type minimalState struct {
	stub stubState
}

func (m minimalState) AgentIndices() []AgentIdx       { return m.stub.AgentIndices() }
func (m minimalState) NumActions(a AgentIdx) int      { return m.stub.NumActions(a) }
func (m minimalState) IsTerminal() bool               { return m.stub.IsTerminal() }
func (m minimalState) Execute(joint JointAction) (State, []Reward, Cost) {
	next, rewards, cost := m.stub.Execute(joint)
	return minimalState{stub: next.(stubState)}, rewards, cost
}

// testParams returns a small, fast Parameters suitable for exercising the
// full MCTS loop in a test without real-world wall-clock budgets.
func testParams(numActions int) Parameters {
	return NewParameters(
		WithMaxIterations(200),
		WithRandomSeed(7),
		WithBounds(0, Reward(numActions)),
		WithRewardBounds(0, Reward(numActions)),
		WithCostBounds(0, 1),
		WithCostConstraint(0.5),
		WithRolloutDepthCap(5),
	)
}
