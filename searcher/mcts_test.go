package searcher

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

/* spec:
- Search:
  - happy path: budget exhausted normally -> best action from root statistics
  - edge case: zero iterations completed -> ErrNotReady
  - law: determinism with fixed seed, fixed params, deterministic state
- SearchMany: runs many independent searches concurrently, one result per task
*/

func TestMCTSSearchHappyPath(t *testing.T) {
	state := newStubState(4, 3)
	m := NewMCTS(testParams(3))

	action, err := m.Search(state)

	require.NoError(t, err)
	require.GreaterOrEqual(t, int(action), 0)
	require.Less(t, int(action), 3)
	require.Equal(t, 200, m.Metrics().Iterations)
}

func TestMCTSSearchErrNotReady(t *testing.T) {
	state := newStubState(4, 3)
	params := testParams(3)
	params.MaxIterations = 0
	params.MaxSearchTime = 0
	// bypass NewParameters validation to exercise the runtime guard directly
	m := &MCTS{params: params, heuristic: RandomRolloutHeuristic{}, rng: NewRandomSource(1)}

	_, err := m.Search(state)

	require.ErrorIs(t, err, ErrNotReady)
}

func TestMCTSSearchIsDeterministic(t *testing.T) {
	params := testParams(3)

	run := func() ActionIdx {
		m := NewMCTS(params)
		action, err := m.Search(newStubState(4, 3))
		require.NoError(t, err)
		return action
	}

	first := run()
	second := run()
	require.Equal(t, first, second, "identical seed and parameters must yield identical best action")
}

func TestMCTSHypothesisSearch(t *testing.T) {
	state := newStubState(4, 3)
	belief := NewBeliefTracker(state.AgentIndices(), func(AgentIdx) int { return state.NumHypotheses(0) }, 0)
	m := NewHypothesisMCTS(testParams(3), belief)

	action, err := m.Search(state)

	require.NoError(t, err)
	require.GreaterOrEqual(t, int(action), 0)
}

func TestMCTSHypothesisSearchRequiresHypothesisState(t *testing.T) {
	m := NewHypothesisMCTS(testParams(3), NewBeliefTracker([]AgentIdx{0, 1}, func(AgentIdx) int { return 1 }, 0))

	require.Panics(t, func() {
		m.Search(minimalState{stub: newStubState(4, 3)})
	})
}

func TestSearchManyRunsAllTasksConcurrently(t *testing.T) {
	const n = 12
	tasks := make([]BatchTask, n)
	for i := range tasks {
		tasks[i] = BatchTask{Root: newStubState(4, 3)}
	}
	collector := &SearchMetricsCollector{}

	results := SearchMany(tasks, testParams(3), 4, collector)

	require.Len(t, results, n)
	for i, r := range results {
		require.Equal(t, i, r.Index)
		require.NoError(t, r.Err)
	}
	require.EqualValues(t, n, collector.TotalSearches())
}

func TestSearchManyRaceAcrossConcurrentCollectorWrites(t *testing.T) {
	collector := &SearchMetricsCollector{}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tasks := []BatchTask{{Root: newStubState(4, 3)}}
			SearchMany(tasks, testParams(3), 2, collector)
		}()
	}
	wg.Wait()

	require.EqualValues(t, 8, collector.TotalSearches())
}
