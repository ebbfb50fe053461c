package searcher

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Sampled pairs a chosen action with the full stochastic policy it was
// drawn from, matching the original design's PolicySampled.
type Sampled struct {
	Action ActionIdx
	Policy Policy
}

// CostConstrainedStatistic is the ego agent's per-node statistic: two
// independent UcbStatistic instances (reward, cost), a running mean of
// single-step costs per action, and the Lagrangian multiplier machinery
// that turns the two into a single filtered, LP-sampled policy.
//
// Cost uses discount 1 (risk is summed undiscounted); reward uses the
// node's configured discount factor. See SPEC_FULL.md's Open Questions:
// this is intentionally not configurable.
type CostConstrainedStatistic struct {
	reward *UcbStatistic
	cost   *UcbStatistic

	unexpanded     []ActionIdx
	meanStepCosts  map[ActionIdx]Cost
	costCounts     map[ActionIdx]uint

	lambda             float64
	kappa              float64
	actionFilterFactor float64
	costConstraint     Cost
	gradientUpdateStep float64
}

// NewCostConstrainedStatistic builds the ego statistic for a node with
// numActions legal actions.
func NewCostConstrainedStatistic(numActions int, gamma float64, params CostConstrainedParameters) *CostConstrainedStatistic {
	if numActions <= 0 {
		panic("searcher: CostConstrainedStatistic requires a positive action count")
	}
	unexpanded := make([]ActionIdx, numActions)
	for a := range unexpanded {
		unexpanded[a] = ActionIdx(a)
	}
	rewardParams := UctParameters{LowerBound: params.RewardLowerBound, UpperBound: params.RewardUpperBound}
	costParams := UctParameters{LowerBound: Reward(params.CostLowerBound), UpperBound: Reward(params.CostUpperBound)}
	return &CostConstrainedStatistic{
		reward:             NewUcbStatistic(numActions, gamma, rewardParams),
		cost:               NewUcbStatistic(numActions, 1.0, costParams), // cost discount is hard-coded to 1
		unexpanded:         unexpanded,
		meanStepCosts:      make(map[ActionIdx]Cost, numActions),
		costCounts:         make(map[ActionIdx]uint, numActions),
		lambda:             params.Lambda,
		kappa:              params.Kappa,
		actionFilterFactor: params.ActionFilterFactor,
		costConstraint:     params.CostConstraint,
		gradientUpdateStep: params.GradientUpdateStep,
	}
}

// PolicyIsReady reports whether every action has been expanded.
func (c *CostConstrainedStatistic) PolicyIsReady() bool {
	return len(c.unexpanded) == 0
}

// ChooseNextAction expands a uniformly random unexpanded action on every
// call until none remain (there is no progressive-widening gate, unlike
// UcbStatistic), then switches to the greedy LP policy.
func (c *CostConstrainedStatistic) ChooseNextAction(rng *RandomSource) ActionIdx {
	if len(c.unexpanded) == 0 {
		return c.GreedyPolicy(c.kappa, c.actionFilterFactor, rng).Action
	}
	idx := rng.Intn(len(c.unexpanded))
	action := c.unexpanded[idx]
	c.unexpanded = append(c.unexpanded[:idx], c.unexpanded[idx+1:]...)
	c.reward.register(action)
	c.cost.register(action)
	return action
}

// GreedyPolicy computes the Lagrangian-combined UCB values, filters to
// the feasible set, and solves the one-constraint LP over it, sampling
// an action from the resulting stochastic policy.
func (c *CostConstrainedStatistic) GreedyPolicy(kappaLocal, filterFactorLocal float64, rng *RandomSource) Sampled {
	values := c.calculateUcbValues(kappaLocal)
	feasible := c.filterFeasibleActions(values, filterFactorLocal)
	return c.solveLPAndSample(feasible, rng)
}

// calculateUcbValues computes, for every expanded action,
// reward_norm(a) - lambda*cost_norm(a) + kappa*sqrt(ln(N)/n(a)).
func (c *CostConstrainedStatistic) calculateUcbValues(kappaLocal float64) map[ActionIdx]float64 {
	values := make(map[ActionIdx]float64, len(c.reward.values))
	totalVisits := float64(c.reward.TotalVisits())
	for action := range c.reward.values {
		rewardNorm := c.reward.GetNormalizedUcbValue(action)
		costNorm := c.cost.GetNormalizedUcbValue(action)
		count := c.reward.ActionCount(action)

		var exploration float64
		if count == 0 {
			exploration = math.Inf(1)
		} else {
			exploration = kappaLocal * math.Sqrt(math.Log(totalVisits)/float64(count))
			if math.IsNaN(exploration) {
				exploration = math.MaxFloat64
			}
		}
		values[action] = float64(rewardNorm) - c.lambda*float64(costNorm) + exploration
	}
	return values
}

func banditBound(count uint) float64 {
	if count == 0 {
		return math.Inf(1)
	}
	return math.Sqrt(math.Log(float64(count)) / float64(count))
}

// filterFeasibleActions keeps every action within filterFactorLocal *
// (banditBound(a) + banditBound(a*)) of the maximizing action's value.
func (c *CostConstrainedStatistic) filterFeasibleActions(values map[ActionIdx]float64, filterFactorLocal float64) []ActionIdx {
	maximizing, maxVal := argmaxFloat(values)
	boundMax := banditBound(c.reward.ActionCount(maximizing))

	actions := sortedKeys(values)
	feasible := make([]ActionIdx, 0, len(actions))
	for _, action := range actions {
		bound := banditBound(c.reward.ActionCount(action)) + boundMax
		if math.IsInf(bound, 1) {
			// an unvisited action on either side makes the band unbounded
			feasible = append(feasible, action)
			continue
		}
		diff := math.Abs(values[action] - maxVal)
		if diff <= filterFactorLocal*bound {
			feasible = append(feasible, action)
		}
	}
	return feasible
}

// solveLPAndSample implements the single-constraint LP of spec.md §4.C
// step 5 and samples from its solution.
func (c *CostConstrainedStatistic) solveLPAndSample(feasible []ActionIdx, rng *RandomSource) Sampled {
	if len(feasible) == 0 {
		panic("searcher: feasible action set is empty")
	}

	hi, lo := feasible[0], feasible[0]
	for _, action := range feasible {
		if c.cost.ActionValue(action) > c.cost.ActionValue(hi) {
			hi = action
		}
		if c.cost.ActionValue(action) < c.cost.ActionValue(lo) {
			lo = action
		}
	}

	policy := make(Policy, len(feasible))
	for _, action := range feasible {
		policy[action] = 0
	}

	if hi == lo {
		policy[lo] = 1
		return Sampled{Action: lo, Policy: policy}
	}

	vHi, vLo := c.cost.ActionValue(hi), c.cost.ActionValue(lo)
	costConstraint := Reward(c.costConstraint)
	switch {
	case vLo >= costConstraint:
		policy[lo] = 1
		return Sampled{Action: lo, Policy: policy}
	case vHi <= costConstraint:
		policy[hi] = 1
		return Sampled{Action: hi, Policy: policy}
	default:
		pHi := Probability((costConstraint - vLo) / (vHi - vLo))
		policy[hi] = pHi
		policy[lo] = 1 - pHi
		if rng.Float64() <= float64(pHi) {
			return Sampled{Action: hi, Policy: policy}
		}
		return Sampled{Action: lo, Policy: policy}
	}
}

// GetBestAction returns an action sampled from the greedy policy with no
// exploration bonus, for returning the final recommendation. When that
// policy mixes two actions, which one is returned depends on rng.
func (c *CostConstrainedStatistic) GetBestAction(rng *RandomSource) ActionIdx {
	return c.GreedyPolicy(0, c.actionFilterFactor, rng).Action
}

// GetPolicy returns the exploration-free stochastic policy.
func (c *CostConstrainedStatistic) GetPolicy(rng *RandomSource) Policy {
	return c.GreedyPolicy(0, c.actionFilterFactor, rng).Policy
}

// UpdateStatistics backpropagates one step's reward and cost into both
// internal UCB statistics and refreshes the action's mean step cost.
func (c *CostConstrainedStatistic) UpdateStatistics(action ActionIdx, stepReward Reward, childRewardReturn Reward, stepCost Cost, childCostReturn Reward) {
	c.reward.UpdateStatistics(action, stepReward, childRewardReturn)
	c.cost.UpdateStatistics(action, Reward(stepCost), childCostReturn)

	c.costCounts[action]++
	mean := c.meanStepCosts[action]
	mean += (stepCost - mean) / Cost(c.costCounts[action])
	c.meanStepCosts[action] = mean
}

// UpdateFromHeuristic seeds the reward and cost statistics from a leaf
// estimate.
func (c *CostConstrainedStatistic) UpdateFromHeuristic(accumReward Reward, accumEgoCost Cost) {
	c.reward.UpdateFromHeuristic(accumReward)
	c.cost.UpdateFromHeuristic(Reward(accumEgoCost))
}

// RewardLatestReturn / CostLatestReturn expose the latest backpropagated
// returns for the parent node to continue the walk upward.
func (c *CostConstrainedStatistic) RewardLatestReturn() Reward { return c.reward.LatestReturn() }
func (c *CostConstrainedStatistic) CostLatestReturn() Reward   { return c.cost.LatestReturn() }

// RewardStatistics and CostStatistics expose the root's per-action UCB
// pairs for diagnostic consumption (spec.md §6 "Outputs").
func (c *CostConstrainedStatistic) RewardStatistics() map[ActionIdx]UcbPair { return c.reward.Pairs() }
func (c *CostConstrainedStatistic) CostStatistics() map[ActionIdx]UcbPair   { return c.cost.Pairs() }

// Lambda returns the current Lagrangian multiplier.
func (c *CostConstrainedStatistic) Lambda() float64 { return c.lambda }

// String implements fmt.Stringer: one line per expanded action's
// reward/cost pair plus the current lambda, for diagnostic logging.
func (c *CostConstrainedStatistic) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "lambda=%.4f", c.lambda)
	rewardPairs, costPairs := c.reward.Pairs(), c.cost.Pairs()
	actions := sortedActionKeys(rewardPairs)
	for _, action := range actions {
		fmt.Fprintf(&b, " a%d{reward=%+v, cost=%+v}", action, rewardPairs[action], costPairs[action])
	}
	return b.String()
}

func sortedActionKeys(pairs map[ActionIdx]UcbPair) []ActionIdx {
	keys := make([]ActionIdx, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// GetNormalizedCostActionValue exposes the cost statistic's normalized
// value, used by the lambda gradient update.
func (c *CostConstrainedStatistic) GetNormalizedCostActionValue(action ActionIdx) Probability {
	return c.cost.GetNormalizedUcbValue(action)
}

// ConstraintGivenPolicy back-solves a tightened per-action cost budget
// from a sampled policy and the remaining global constraint, recovered
// from the original source's calc_updated_constraint_based_on_policy
// (see SPEC_FULL.md Supplemented Features).
func (c *CostConstrainedStatistic) ConstraintGivenPolicy(sampled Sampled, currentConstraint Cost) Cost {
	othersCost := 0.0
	for action, prob := range sampled.Policy {
		if action == sampled.Action {
			continue
		}
		othersCost += float64(prob) * float64(c.cost.ActionValue(action))
	}
	chosenProb := float64(sampled.Policy[sampled.Action])
	chosenStepCost := float64(c.meanStepCosts[sampled.Action])
	numerator := float64(currentConstraint) - chosenProb*chosenStepCost - othersCost
	denominator := c.cost.gamma * chosenProb
	return Cost(numerator / denominator)
}

// UpdateLambda applies the diminishing-step gradient update of spec.md
// §4.C, clipped to [0, (R_upper-R_lower)/(tau*(1-gamma))].
func UpdateLambda(root *CostConstrainedStatistic, iteration int, tauGradientClip float64, discountFactor float64, rng *RandomSource) float64 {
	sampled := root.GreedyPolicy(0, 0, rng)
	normalizedCost := root.GetNormalizedCostActionValue(sampled.Action)
	gradient := float64(normalizedCost) - float64(root.costConstraint)
	step := root.costConstrainedGradientStep(iteration)

	next := root.lambda + step*gradient
	clipUpper := float64(root.reward.UpperBound()-root.reward.LowerBound()) / (tauGradientClip * (1 - discountFactor))
	next = math.Max(0, math.Min(next, clipUpper))
	root.lambda = next
	return next
}

func (c *CostConstrainedStatistic) costConstrainedGradientStep(iteration int) float64 {
	g0 := c.gradientUpdateStep
	return g0 / (0.1*float64(iteration) + 1)
}

func argmaxFloat(values map[ActionIdx]float64) (ActionIdx, float64) {
	var best ActionIdx
	bestValue := math.Inf(-1)
	first := true
	for _, action := range sortedKeys(values) {
		v := values[action]
		if first || v > bestValue {
			bestValue = v
			best = action
			first = false
		}
	}
	return best, bestValue
}

func sortedKeys(values map[ActionIdx]float64) []ActionIdx {
	keys := make([]ActionIdx, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
