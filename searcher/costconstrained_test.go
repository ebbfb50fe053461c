package searcher

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

/* spec:
- ChooseNextAction: expands one unexpanded action per call (no
  progressive-widening gate), then switches to GreedyPolicy
- GreedyPolicy / solveLPAndSample:
  - happy path: deterministic a_lo when v_lo >= C
  - happy path: deterministic a_hi when v_hi <= C
  - happy path: mixed policy when v_lo < C < v_hi, p(a_hi) = (C-v_lo)/(v_hi-v_lo)
  - edge case: single feasible action -> deterministic on it regardless of reward
- UpdateLambda:
  - happy path: diminishing step size, monotonic on overrun, clipped
*/

func feasibleParams() CostConstrainedParameters {
	return CostConstrainedParameters{
		CostConstraint:     0.5,
		RewardLowerBound:   0,
		RewardUpperBound:   2,
		CostLowerBound:     0,
		CostUpperBound:     1,
		Kappa:              0,
		Lambda:             0,
		GradientUpdateStep: 0.1,
		TauGradientClip:    1.0,
		ActionFilterFactor: 1.0,
	}
}

func TestCostConstrainedStatisticSolveLPAndSample(t *testing.T) {
	t.Run("single feasible action is deterministic regardless of reward", func(t *testing.T) {
		c := NewCostConstrainedStatistic(1, 1.0, feasibleParams())
		rng := NewRandomSource(1)
		a := c.ChooseNextAction(rng)
		c.UpdateStatistics(a, 10, 0, 0.9, 0)

		sampled := c.GreedyPolicy(0, 1.0, rng)
		require.Equal(t, a, sampled.Action)
		require.InDelta(t, 1.0, float64(sampled.Policy[a]), 1e-9)
	})

	t.Run("deterministic on the low-cost action when even its cost reaches the constraint", func(t *testing.T) {
		c := NewCostConstrainedStatistic(2, 1.0, feasibleParams())
		rng := NewRandomSource(1)
		hi, lo := c.ChooseNextAction(rng), c.ChooseNextAction(rng)
		// two visits each: with a single visit the bandit band is zero and
		// only the maximizing action would stay feasible
		for i := 0; i < 2; i++ {
			c.UpdateStatistics(hi, 2.0, 0, 0.8, 0)
			c.UpdateStatistics(lo, 0.5, 0, 0.6, 0)
		}

		sampled := c.GreedyPolicy(0, 100, rng) // huge filter factor keeps both feasible
		require.Equal(t, lo, sampled.Action, "cost 0.6 already exceeds the 0.5 constraint, so all mass goes to the cheapest action")
	})

	t.Run("mixes between hi and lo when the constraint falls strictly between their costs", func(t *testing.T) {
		c := NewCostConstrainedStatistic(2, 1.0, feasibleParams())
		rng := NewRandomSource(1)
		hi, lo := c.ChooseNextAction(rng), c.ChooseNextAction(rng)
		// two visits each so the bandit band keeps both actions feasible
		for i := 0; i < 2; i++ {
			c.UpdateStatistics(hi, 2.0, 0, 0.8, 0)
			c.UpdateStatistics(lo, 0.5, 0, 0.2, 0)
		}

		sampled := c.GreedyPolicy(0, 100, rng)
		expectedPHi := (0.5 - 0.2) / (0.8 - 0.2)
		require.InDelta(t, expectedPHi, float64(sampled.Policy[hi]), 1e-9)
		require.InDelta(t, 1-expectedPHi, float64(sampled.Policy[lo]), 1e-9)
	})
}

func TestCostConstrainedStatisticScenarioRiskyActionsConstraintMatched(t *testing.T) {
	// scenario 1: two actions (reward, risk) = (2.0, 0.8) and (0.5, 0.3);
	// C=0.3, gamma=0.9. After many iterations the lower-risk action wins
	// and lambda stays within its clip.
	params := CostConstrainedParameters{
		CostConstraint:     0.3,
		RewardLowerBound:   0,
		RewardUpperBound:   2,
		CostLowerBound:     0,
		CostUpperBound:     1,
		Kappa:              0.7,
		Lambda:             0,
		GradientUpdateStep: 0.1,
		TauGradientClip:    1.0,
		ActionFilterFactor: 1.0,
	}
	c := NewCostConstrainedStatistic(2, 0.9, params)
	rng := NewRandomSource(1000)

	a0 := c.ChooseNextAction(rng)
	a1 := c.ChooseNextAction(rng)
	risky, safe := a0, a1
	riskyReward, riskyRisk := Reward(2.0), Reward(0.8)
	safeReward, safeRisk := Reward(0.5), Reward(0.3)

	for i := 0; i < 1000; i++ {
		action := c.GreedyPolicy(c.kappa, c.actionFilterFactor, rng).Action
		if action == risky {
			c.UpdateStatistics(action, riskyReward, 0, Cost(riskyRisk), 0)
		} else {
			c.UpdateStatistics(action, safeReward, 0, Cost(safeRisk), 0)
		}
		if c.PolicyIsReady() {
			UpdateLambda(c, i, params.TauGradientClip, 0.9, rng)
		}
	}

	require.InDelta(t, float64(riskyRisk), float64(c.cost.ActionValue(risky)), 0.05)
	require.InDelta(t, float64(safeRisk), float64(c.cost.ActionValue(safe)), 0.05)
	require.LessOrEqual(t, c.Lambda(), 0.3/(params.TauGradientClip*(1-0.9))+1e-9)
	require.GreaterOrEqual(t, c.Lambda(), 0.0)
}

func TestUpdateLambdaClip(t *testing.T) {
	t.Run("never exceeds the configured clip", func(t *testing.T) {
		params := feasibleParams()
		params.GradientUpdateStep = 10 // force large steps
		c := NewCostConstrainedStatistic(1, 1.0, params)
		rng := NewRandomSource(1)
		a := c.ChooseNextAction(rng)
		c.UpdateStatistics(a, 1, 0, 1, 0) // cost_norm = 1, always overruns

		var last float64
		for i := 0; i < 50; i++ {
			last = UpdateLambda(c, i, params.TauGradientClip, 0.5, rng)
		}
		clip := float64(params.RewardUpperBound-params.RewardLowerBound) / (params.TauGradientClip * (1 - 0.5))
		require.LessOrEqual(t, last, clip+1e-9)
	})

	t.Run("is monotonically non-decreasing while every sampled action overruns the constraint", func(t *testing.T) {
		params := feasibleParams()
		c := NewCostConstrainedStatistic(1, 1.0, params)
		rng := NewRandomSource(1)
		a := c.ChooseNextAction(rng)
		c.UpdateStatistics(a, 1, 0, 1, 0)

		prev := c.Lambda()
		for i := 0; i < 20; i++ {
			next := UpdateLambda(c, i, params.TauGradientClip, 0.5, rng)
			require.GreaterOrEqual(t, next, prev-1e-12)
			prev = next
		}
	})
}

func TestConstraintGivenPolicy(t *testing.T) {
	c := NewCostConstrainedStatistic(2, 1.0, feasibleParams())
	rng := NewRandomSource(1)
	hi, lo := c.ChooseNextAction(rng), c.ChooseNextAction(rng)
	c.UpdateStatistics(hi, 2.0, 0, 0.8, 0)
	c.UpdateStatistics(lo, 0.5, 0, 0.2, 0)

	sampled := c.GreedyPolicy(0, 100, rng)
	got := c.ConstraintGivenPolicy(sampled, c.costConstraint)

	var othersCost float64
	for action, prob := range sampled.Policy {
		if action == sampled.Action {
			continue
		}
		othersCost += float64(prob) * float64(c.cost.ActionValue(action))
	}
	chosenProb := float64(sampled.Policy[sampled.Action])
	chosenStepCost := float64(c.meanStepCosts[sampled.Action])
	want := (float64(c.costConstraint) - chosenProb*chosenStepCost - othersCost) / chosenProb

	require.InDelta(t, want, float64(got), 1e-9)
}

func TestCostConstrainedStatisticString(t *testing.T) {
	c := NewCostConstrainedStatistic(2, 1.0, feasibleParams())
	rng := NewRandomSource(1)
	a, b := c.ChooseNextAction(rng), c.ChooseNextAction(rng)
	c.UpdateStatistics(a, 1.0, 0, 0.4, 0)
	c.UpdateStatistics(b, 0.5, 0, 0.1, 0)

	s := c.String()

	require.Contains(t, s, "lambda=")
	require.Contains(t, s, fmt.Sprintf("a%d{", a))
	require.Contains(t, s, fmt.Sprintf("a%d{", b))
}
