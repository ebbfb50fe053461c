package searcher

import (
	"time"

	"github.com/rs/zerolog/log"

	"crossingmcts/utils"
)

// EngineOption configures an MCTS engine beyond its numeric Parameters.
type EngineOption func(*MCTS)

// WithHeuristic overrides the leaf-value estimator (component H),
// default RandomRolloutHeuristic.
func WithHeuristic(h Heuristic) EngineOption {
	return func(m *MCTS) { m.heuristic = h }
}

// WithRandomSource overrides the engine's RandomSource, built by default
// from Parameters.RandomSeed. Callers that need several independent,
// reproducible engines from one root seed (SearchMany) derive one
// RandomSource per engine via RandomSource.Derive and inject it here,
// rather than threading a new seed back through Parameters.
func WithRandomSource(rng *RandomSource) EngineOption {
	return func(m *MCTS) { m.rng = rng }
}

// MCTS is the search engine (component G): one Search call descends
// from the root through the per-agent statistics to a leaf, expands a
// child, invokes the heuristic, backpropagates reward and cost, and
// updates the ego's Lagrangian multiplier, iterating until the
// configured budget is exhausted.
type MCTS struct {
	params         Parameters
	heuristic      Heuristic
	rng            *RandomSource
	hypothesisMode bool
	belief         *BeliefTracker

	root    *node
	metrics SearchMetrics
}

// NewMCTS builds a plain (non-hypothesis) search engine: other agents'
// per-node statistics are UcbStatistic instances, descended the same way
// the ego's are, with no belief tracker involved.
func NewMCTS(params Parameters, opts ...EngineOption) *MCTS {
	m := &MCTS{
		params:    params,
		heuristic: RandomRolloutHeuristic{},
		rng:       NewRandomSource(params.RandomSeed),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewHypothesisMCTS builds a hypothesis-aware search engine: other
// agents' per-node statistics are HypothesisStatistic instances, and the
// root state must implement HypothesisState. belief is borrowed
// read-only for sampling; the caller retains ownership and updates it
// between decisions via BeliefTracker.BeliefUpdate.
func NewHypothesisMCTS(params Parameters, belief *BeliefTracker, opts ...EngineOption) *MCTS {
	m := NewMCTS(params, opts...)
	m.hypothesisMode = true
	m.belief = belief
	return m
}

// Search runs the iteration loop against root until the iteration or
// time budget is exhausted, then returns the root's recommended ego
// action. It returns ErrNotReady if the budget was exhausted before a
// single iteration completed.
func (m *MCTS) Search(root State) (ActionIdx, error) {
	if m.hypothesisMode {
		if _, ok := root.(HypothesisState); !ok {
			panic("searcher: hypothesis-mode MCTS requires a HypothesisState root")
		}
	}

	agents := root.AgentIndices()
	if utils.FindIndex(agents, EgoAgentIdx) != 0 {
		panic("searcher: root.AgentIndices() must list the ego agent first")
	}
	m.root = newNode(root, 0, agents, m.params, m.hypothesisMode)
	m.metrics = SearchMetrics{}
	start := time.Now()

	iteration := 0
	for m.withinBudget(iteration, start) {
		if err := m.runIteration(root, agents, iteration); err != nil {
			return 0, err
		}
		iteration++
		m.metrics.Iterations = iteration
	}
	m.metrics.Duration = time.Since(start)

	if iteration == 0 {
		log.Warn().Msg("searcher: search budget exhausted before any iteration completed")
		return 0, ErrNotReady
	}
	m.metrics.FinalLambda = m.root.egoStatistic.Lambda()
	return m.root.egoStatistic.GetBestAction(m.rng), nil
}

// Metrics returns the diagnostics collected by the most recent Search
// call.
func (m *MCTS) Metrics() SearchMetrics { return m.metrics }

// Root exposes the root node's statistics for diagnostic consumption
// (spec.md §6 "Outputs").
func (m *MCTS) Root() *node { return m.root }

func (m *MCTS) withinBudget(iteration int, start time.Time) bool {
	if m.params.MaxIterations <= 0 && m.params.MaxSearchTime <= 0 {
		return false
	}
	if m.params.MaxIterations > 0 && iteration >= m.params.MaxIterations {
		return false
	}
	if m.params.MaxSearchTime > 0 && time.Since(start) >= m.params.MaxSearchTime {
		return false
	}
	return true
}

// runIteration performs one selection/expansion -> simulation ->
// backpropagation -> lambda-update cycle. It returns
// ErrMalformedExecuteResult if the state contract is violated anywhere
// along the walk, surfacing as a returned error from Search rather than
// a panic across the engine's boundary.
func (m *MCTS) runIteration(root State, agents []AgentIdx, iteration int) error {
	state := root
	var assignment map[AgentIdx]HypothesisId
	if m.hypothesisMode {
		assignment = m.belief.SampleCurrentHypothesis(m.rng)
		state = root.(HypothesisState).WithHypotheses(assignment)
	}

	path, leafState, err := m.selectAndExpand(m.root, state, agents)
	if err != nil {
		return err
	}
	leaf := path[len(path)-1].child
	estimate, err := m.heuristic.Estimate(leafState, m.params.DiscountFactor, m.params.RolloutDepthCap, m.rng)
	if err != nil {
		return err
	}
	m.seedLeaf(leaf, estimate)
	m.backpropagate(path, agents, assignment)

	if m.root.egoStatistic.PolicyIsReady() {
		newLambda := UpdateLambda(m.root.egoStatistic, iteration, m.params.CostConstrained.TauGradientClip, m.params.DiscountFactor, m.rng)
		log.Debug().Int("iteration", iteration).Float64("lambda", newLambda).Msg("searcher: updated lambda")
	}
	return nil
}

// edge is one step of the selection/expansion walk: the parent node, the
// joint action taken out of it, the per-agent step rewards and ego step
// cost recorded for that action, and the child reached.
type edge struct {
	parent     *node
	joint      JointAction
	stepReward []Reward
	stepCost   Cost
	child      *node
}

// selectAndExpand descends from root, following existing children while
// the current node reports every agent's policy ready, and stops the
// moment it finds a node that is not yet fully expanded (attaching the
// new child lazily and breaking to simulation), per spec.md §4.G step 2.
// It returns ErrMalformedExecuteResult if state.Execute ever returns a
// reward vector of the wrong arity.
func (m *MCTS) selectAndExpand(root *node, state State, agents []AgentIdx) ([]edge, State, error) {
	path := make([]edge, 0, 8)
	current := root

	for {
		if current.terminal {
			return path, state, nil
		}

		ready := current.policyIsReady()
		joint := m.chooseJointAction(current, state, agents)
		nextState, rewards, egoCost := state.Execute(joint)
		if len(rewards) != len(agents) {
			return nil, nil, ErrMalformedExecuteResult
		}

		child := current.attachChild(joint, nextState, agents, m.params)
		path = append(path, edge{parent: current, joint: joint, stepReward: rewards, stepCost: egoCost, child: child})

		if !ready || child.terminal {
			return path, nextState, nil
		}
		current = child
		state = nextState
	}
}

func (m *MCTS) chooseJointAction(n *node, state State, agents []AgentIdx) JointAction {
	joint := make(JointAction, len(agents))
	for i, agent := range agents {
		if agent == EgoAgentIdx {
			joint[i] = n.egoStatistic.ChooseNextAction(m.rng)
			continue
		}
		if m.hypothesisMode {
			joint[i] = n.otherHyp[agent].ChooseNextAction(state.(HypothesisState))
		} else {
			joint[i] = n.otherUct[agent].ChooseNextAction(m.rng)
		}
	}
	return joint
}

// seedLeaf initializes the newly expanded (or terminal) leaf's
// statistics from the heuristic's estimate.
func (m *MCTS) seedLeaf(leaf *node, estimate HeuristicEstimate) {
	if leaf.terminal {
		return
	}
	leaf.egoStatistic.UpdateFromHeuristic(estimate.Rewards[EgoAgentIdx], estimate.EgoCost)
	if m.hypothesisMode {
		return // hypothesis statistics track counts only, nothing to seed
	}
	for agent, uct := range leaf.otherUct {
		uct.UpdateFromHeuristic(estimate.Rewards[agent])
	}
}

// backpropagate walks the visited path from leaf to root, folding each
// edge's recorded step reward/cost and the child's latest return into
// the parent's statistics.
func (m *MCTS) backpropagate(path []edge, agents []AgentIdx, assignment map[AgentIdx]HypothesisId) {
	for i := len(path) - 1; i >= 0; i-- {
		m.backpropagateEdge(path[i], agents, assignment)
	}
}

func (m *MCTS) backpropagateEdge(e edge, agents []AgentIdx, assignment map[AgentIdx]HypothesisId) {
	var childReward, childCost Reward
	if !e.child.terminal {
		childReward = e.child.egoStatistic.RewardLatestReturn()
		childCost = e.child.egoStatistic.CostLatestReturn()
	}
	e.parent.egoStatistic.UpdateStatistics(e.joint[0], e.stepReward[0], childReward, e.stepCost, childCost)

	for i, agent := range agents {
		if agent == EgoAgentIdx {
			continue
		}
		if e.parent.hypothesisMode {
			e.parent.otherHyp[agent].RecordAction(assignment[agent], e.joint[i])
			continue
		}
		var childReturn Reward
		if !e.child.terminal {
			childReturn = e.child.otherUct[agent].LatestReturn()
		}
		e.parent.otherUct[agent].UpdateStatistics(e.joint[i], e.stepReward[i], childReturn)
	}
}
