package searcher

import "math"

// UcbPair is the running mean-return/visit-count pair tracked for one
// action.
type UcbPair struct {
	ActionCount uint
	ActionValue Reward
}

// UcbStatistic tracks, for one node and one agent, the per-action UCB
// pairs plus everything progressive widening needs to decide whether to
// keep expanding. It exposes a stable method surface in place of the
// cyclic friend relationship the original design used between the cost
// and reward statistics. Within the package, CostConstrainedStatistic
// still reads two private fields directly: values (in calculateUcbValues)
// and gamma (in ConstraintGivenPolicy).
type UcbStatistic struct {
	numActions int
	lowerBound Reward
	upperBound Reward
	gamma      float64
	c          float64
	pwK        float64
	pwAlpha    float64

	values          map[ActionIdx]UcbPair
	unexpanded      []ActionIdx
	totalNodeVisits uint
	value           Reward
	latestReturn    Reward
}

// NewUcbStatistic builds a UcbStatistic for a node with numActions legal
// actions, using params for bounds, exploration, and widening.
func NewUcbStatistic(numActions int, gamma float64, params UctParameters) *UcbStatistic {
	if numActions <= 0 {
		panic("searcher: UcbStatistic requires a positive action count")
	}
	if params.UpperBound <= params.LowerBound {
		panic("searcher: UcbStatistic requires UpperBound > LowerBound")
	}
	unexpanded := make([]ActionIdx, numActions)
	for a := range unexpanded {
		unexpanded[a] = ActionIdx(a)
	}
	return &UcbStatistic{
		numActions: numActions,
		lowerBound: params.LowerBound,
		upperBound: params.UpperBound,
		gamma:      gamma,
		c:          params.ExplorationConstant,
		pwK:        params.ProgressiveWideningK,
		pwAlpha:    params.ProgressiveWideningAlpha,
		values:     make(map[ActionIdx]UcbPair, numActions),
		unexpanded: unexpanded,
	}
}

// PolicyIsReady reports whether every action has been expanded at least
// once, i.e. progressive widening no longer withholds any action.
func (u *UcbStatistic) PolicyIsReady() bool {
	return len(u.unexpanded) == 0
}

// register marks action as expanded with a zero-value UcbPair, without
// touching the unexpanded list. Callers that manage their own expansion
// order (e.g. CostConstrainedStatistic, which widens reward and cost
// together) use this instead of reaching into values directly.
func (u *UcbStatistic) register(action ActionIdx) {
	u.values[action] = UcbPair{}
}

func (u *UcbStatistic) requiresWidening() bool {
	widening := u.pwK * math.Pow(float64(u.totalNodeVisits), u.pwAlpha)
	return float64(len(u.values)) <= widening && len(u.values) < u.numActions
}

// ChooseNextAction selects the next action to descend to: a uniformly
// random unexpanded action while progressive widening allows it,
// otherwise the action maximizing the normalized-UCB score.
func (u *UcbStatistic) ChooseNextAction(rng *RandomSource) ActionIdx {
	if u.requiresWidening() {
		idx := rng.Intn(len(u.unexpanded))
		action := u.unexpanded[idx]
		u.unexpanded = append(u.unexpanded[:idx], u.unexpanded[idx+1:]...)
		u.values[action] = UcbPair{}
		return action
	}
	return u.argmaxUcb()
}

func (u *UcbStatistic) argmaxUcb() ActionIdx {
	var best ActionIdx
	bestValue := math.Inf(-1)
	first := true
	for _, action := range sortedActionKeys(u.values) {
		score := u.ucbScore(u.values[action])
		if first || score > bestValue {
			bestValue = score
			best = action
			first = false
		}
	}
	return best
}

func (u *UcbStatistic) ucbScore(pair UcbPair) float64 {
	normalized := u.normalize(pair.ActionValue)
	if pair.ActionCount == 0 {
		return math.Inf(1)
	}
	exploration := 2 * u.c * math.Sqrt(2*math.Log(float64(u.totalNodeVisits))/float64(pair.ActionCount))
	return float64(normalized) + exploration
}

func (u *UcbStatistic) normalize(value Reward) Probability {
	return Probability((value - u.lowerBound) / (u.upperBound - u.lowerBound))
}

// GetNormalizedUcbValue returns the normalized action value in [0, 1];
// callers treat a value outside that range as an invariant failure.
func (u *UcbStatistic) GetNormalizedUcbValue(action ActionIdx) Probability {
	pair, ok := u.values[action]
	if !ok {
		panic("searcher: GetNormalizedUcbValue on an unexpanded action")
	}
	normalized := u.normalize(pair.ActionValue)
	if normalized < 0 || normalized > 1 {
		panic("searcher: normalized UCB value escaped [0, 1], check configured bounds")
	}
	return normalized
}

// UpdateStatistics folds one backpropagated child return into the
// running mean for action, and into the node's own running mean.
func (u *UcbStatistic) UpdateStatistics(action ActionIdx, stepReward Reward, childReturn Reward) {
	pair := u.values[action]
	u.latestReturn = stepReward + Reward(u.gamma)*childReturn
	pair.ActionCount++
	pair.ActionValue += (u.latestReturn - pair.ActionValue) / Reward(pair.ActionCount)
	u.values[action] = pair

	u.totalNodeVisits++
	u.value += (u.latestReturn - u.value) / Reward(u.totalNodeVisits)
}

// UpdateFromHeuristic seeds this node's value from a leaf estimate
// (e.g. a random rollout), counting as the node's first visit.
func (u *UcbStatistic) UpdateFromHeuristic(leafValue Reward) {
	u.value = leafValue
	u.latestReturn = leafValue
	u.totalNodeVisits++
}

// LatestReturn is the return most recently folded in by UpdateStatistics
// or UpdateFromHeuristic, used by the parent node during backpropagation.
func (u *UcbStatistic) LatestReturn() Reward { return u.latestReturn }

// Value is this node's running-mean estimate.
func (u *UcbStatistic) Value() Reward { return u.value }

// TotalVisits is the number of times this statistic has been updated
// (including the single heuristic seed).
func (u *UcbStatistic) TotalVisits() uint { return u.totalNodeVisits }

// ActionCount returns the visit count recorded for action, or 0 if it
// has never been expanded.
func (u *UcbStatistic) ActionCount(action ActionIdx) uint {
	return u.values[action].ActionCount
}

// ActionValue returns the raw running-mean return for action.
func (u *UcbStatistic) ActionValue(action ActionIdx) Reward {
	return u.values[action].ActionValue
}

// GetBestAction returns the action with the highest raw action value.
func (u *UcbStatistic) GetBestAction() ActionIdx {
	var best ActionIdx
	bestValue := Reward(math.Inf(-1))
	first := true
	for action, pair := range u.values {
		if first || pair.ActionValue > bestValue {
			bestValue = pair.ActionValue
			best = action
			first = false
		}
	}
	return best
}

// GetPolicy returns the raw action values, keyed by action, for every
// expanded action.
func (u *UcbStatistic) GetPolicy() Policy {
	policy := make(Policy, len(u.values))
	for action, pair := range u.values {
		policy[action] = Probability(pair.ActionValue)
	}
	return policy
}

// Pairs exposes a defensive snapshot of the full action -> UcbPair map,
// for diagnostic consumption (spec.md §6 "Outputs").
func (u *UcbStatistic) Pairs() map[ActionIdx]UcbPair {
	out := make(map[ActionIdx]UcbPair, len(u.values))
	for a, p := range u.values {
		out[a] = p
	}
	return out
}

// LowerBound and UpperBound expose the configured normalization bounds,
// needed by the cost-constrained statistic's lambda-clip computation.
func (u *UcbStatistic) LowerBound() Reward { return u.lowerBound }
func (u *UcbStatistic) UpperBound() Reward { return u.upperBound }
