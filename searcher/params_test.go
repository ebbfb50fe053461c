package searcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

/* spec:
- NewParameters: applies options over defaults, validates the result
- validate: panics on missing budget, inverted bounds, bad discount factor
*/

func TestNewParametersAppliesOptions(t *testing.T) {
	p := NewParameters(WithDiscountFactor(0.5), WithMaxIterations(10), WithRandomSeed(99))

	require.Equal(t, 0.5, p.DiscountFactor)
	require.Equal(t, 10, p.MaxIterations)
	require.Equal(t, uint64(99), p.RandomSeed)
}

func TestNewParametersPanicsOnMissingBudget(t *testing.T) {
	require.PanicsWithValue(t, ErrNoBudget, func() {
		NewParameters(func(p *Parameters) {
			p.MaxIterations = 0
			p.MaxSearchTime = 0
		})
	})
}

func TestNewParametersPanicsOnInvertedBounds(t *testing.T) {
	require.Panics(t, func() {
		NewParameters(WithBounds(1, 0))
	})
	require.Panics(t, func() {
		NewParameters(WithRewardBounds(1, 0))
	})
	require.Panics(t, func() {
		NewParameters(WithCostBounds(1, 0))
	})
}

func TestNewParametersPanicsOnBadDiscountFactor(t *testing.T) {
	require.Panics(t, func() {
		NewParameters(WithDiscountFactor(0))
	})
	require.Panics(t, func() {
		NewParameters(WithDiscountFactor(1.1))
	})
}

func TestWithMaxSearchTime(t *testing.T) {
	p := NewParameters(WithMaxSearchTime(500 * time.Millisecond))
	require.Equal(t, 500*time.Millisecond, p.MaxSearchTime)
}
