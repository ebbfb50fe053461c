package crossing

import (
	"crossingmcts/searcher"
)

// Actions enumerates the three moves available to every agent. ActionIdx
// must stay nonnegative (searcher's data model), so unlike the original
// source's signed enum these are plain ordinals; displacement maps them
// to the signed position delta.
const (
	ActionWait     searcher.ActionIdx = 0
	ActionForward  searcher.ActionIdx = 1
	ActionBackward searcher.ActionIdx = 2
)

func displacement(action searcher.ActionIdx) int {
	switch action {
	case ActionForward:
		return 1
	case ActionBackward:
		return -1
	default:
		return 0
	}
}

const (
	// stateXLength is the nominal length of the line; crossingPoint sits
	// at its midpoint.
	stateXLength           = 41
	egoGoalReachedPosition = 35
	crossingPoint          = (stateXLength-1)/2 + 1 // 21
)

// agentState is one agent's position and the action that produced it.
type agentState struct {
	position   int
	lastAction searcher.ActionIdx
}

// otherAgentIdx is the single other agent's index in this scenario.
const otherAgentIdx searcher.AgentIdx = 1

// HypothesisCrossingState is the 1-D crossing scenario: the ego and one
// other agent each advance, wait, or retreat along a line, terminating
// when the ego reaches its goal or both agents collide at the crossing
// point.
type HypothesisCrossingState struct {
	hypotheses        []AgentPolicyCrossingState
	currentHypothesis map[searcher.AgentIdx]searcher.HypothesisId
	ego               agentState
	other             agentState
	terminal          bool
}

// NewHypothesisCrossingState builds the initial (non-terminal) state with
// ego and other starting at the given positions, and hypotheses as the
// candidate policies tracked for the other agent.
func NewHypothesisCrossingState(egoStart, otherStart int, hypotheses []AgentPolicyCrossingState) *HypothesisCrossingState {
	return &HypothesisCrossingState{
		hypotheses: hypotheses,
		ego:        agentState{position: egoStart, lastAction: ActionWait},
		other:      agentState{position: otherStart, lastAction: ActionWait},
	}
}

// AgentIndices implements searcher.State: ego (0) then the one other
// agent (1).
func (s *HypothesisCrossingState) AgentIndices() []searcher.AgentIdx {
	return []searcher.AgentIdx{searcher.EgoAgentIdx, otherAgentIdx}
}

// NumActions implements searcher.State: every agent has the same three
// actions available.
func (s *HypothesisCrossingState) NumActions(searcher.AgentIdx) int { return 3 }

// IsTerminal implements searcher.State.
func (s *HypothesisCrossingState) IsTerminal() bool { return s.terminal }

// Execute implements searcher.State: reward is +100 for reaching the
// goal, -1000 for a collision at the crossing point (mutually
// exclusive in practice since reaching the goal moves the ego off the
// crossing point); ego cost is 1 on collision, 0 otherwise.
func (s *HypothesisCrossingState) Execute(joint searcher.JointAction) (searcher.State, []searcher.Reward, searcher.Cost) {
	if len(joint) != 2 {
		panic("crossing: Execute requires a two-agent joint action")
	}

	nextEgo := agentState{position: s.ego.position + displacement(joint[0]), lastAction: joint[0]}
	nextOther := agentState{position: s.other.position + displacement(joint[1]), lastAction: joint[1]}

	goalReached := nextEgo.position >= egoGoalReachedPosition
	collision := nextEgo.position == crossingPoint && nextOther.position == crossingPoint

	var reward searcher.Reward
	var egoCost searcher.Cost
	if goalReached {
		reward += 100
	}
	if collision {
		reward -= 1000
		egoCost = 1
	}

	next := &HypothesisCrossingState{
		hypotheses:        s.hypotheses,
		currentHypothesis: s.currentHypothesis,
		ego:               nextEgo,
		other:             nextOther,
		terminal:          goalReached || collision,
	}
	return next, []searcher.Reward{reward, 0}, egoCost
}

// PlanActionCurrentHypothesis implements searcher.HypothesisState:
// consults the other agent's currently sampled hypothesis for its action
// at the current distance to the ego.
func (s *HypothesisCrossingState) PlanActionCurrentHypothesis(agent searcher.AgentIdx) searcher.ActionIdx {
	hyp := s.hypotheses[s.currentHypothesis[agent]]
	return hyp.Act(s.distanceToEgo())
}

// Probability implements searcher.HypothesisState.
func (s *HypothesisCrossingState) Probability(hyp searcher.HypothesisId, agent searcher.AgentIdx, action searcher.ActionIdx) searcher.Probability {
	return s.hypotheses[hyp].Probability(s.distanceToEgo(), action)
}

// Prior implements searcher.HypothesisState: uniform prior over the two
// halves of the hypothesis set, matching the original scenario.
func (s *HypothesisCrossingState) Prior(searcher.HypothesisId, searcher.AgentIdx) searcher.Probability {
	return 0.5
}

// NumHypotheses implements searcher.HypothesisState.
func (s *HypothesisCrossingState) NumHypotheses(searcher.AgentIdx) int { return len(s.hypotheses) }

// LastAction implements searcher.HypothesisState.
func (s *HypothesisCrossingState) LastAction(agent searcher.AgentIdx) searcher.ActionIdx {
	if agent == searcher.EgoAgentIdx {
		return s.ego.lastAction
	}
	return s.other.lastAction
}

// WithHypotheses implements searcher.HypothesisState: returns a shallow
// copy bound to assignment, held fixed for one MCTS iteration.
func (s *HypothesisCrossingState) WithHypotheses(assignment map[searcher.AgentIdx]searcher.HypothesisId) searcher.HypothesisState {
	copied := *s
	copied.currentHypothesis = assignment
	return &copied
}

// AddHypothesis implements searcher.HypothesisState: returns a copy of
// this state with hypothesis appended to the candidate hypothesis set,
// per the immutable-state convention WithHypotheses already uses.
// hypothesis must be an AgentPolicyCrossingState.
func (s *HypothesisCrossingState) AddHypothesis(hypothesis any) searcher.HypothesisState {
	policy := hypothesis.(AgentPolicyCrossingState)
	copied := *s
	copied.hypotheses = append(append([]AgentPolicyCrossingState{}, s.hypotheses...), policy)
	return &copied
}

func (s *HypothesisCrossingState) distanceToEgo() int {
	return s.ego.position - s.other.position
}

// EgoPosition and OtherPosition expose the raw positions for tests and
// diagnostics.
func (s *HypothesisCrossingState) EgoPosition() int   { return s.ego.position }
func (s *HypothesisCrossingState) OtherPosition() int { return s.other.position }
