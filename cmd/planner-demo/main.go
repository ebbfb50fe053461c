package main

import (
	"fmt"
	"time"

	"crossingmcts/crossing"
	"crossingmcts/meta"
	"crossingmcts/searcher"
)

type config struct {
	goroutines int
	episodes   int
	duration   time.Duration
}

func main() {
	runSpeedupExperiment()
}

// runSpeedupExperiment plans the crossing scenario's opening decision
// across an increasing goroutine count, reporting mean iterations and
// wall time per search at each level.
func runSpeedupExperiment() {
	episodesPerConfig := meta.DefaultEpisodes
	configs := []config{
		{goroutines: 1, episodes: episodesPerConfig},
		{goroutines: 4, episodes: episodesPerConfig},
		{goroutines: meta.DefaultGoroutines * 2, episodes: episodesPerConfig},
	}

	fmt.Println("Running crossing-scenario speedup experiment...")
	for _, cfg := range configs {
		collector := &searcher.SearchMetricsCollector{}
		tasks := make([]searcher.BatchTask, cfg.episodes)
		for i := range tasks {
			tasks[i] = newEpisodeTask()
		}

		start := time.Now()
		results := searcher.SearchMany(tasks, plannerParams(), cfg.goroutines, collector)
		elapsed := time.Since(start)

		failures := 0
		for _, r := range results {
			if r.Err != nil {
				failures++
			}
		}

		fmt.Printf("goroutines=%2d  episodes=%2d  wall=%v  mean_iterations=%.1f  mean_search_time=%v  failures=%d\n",
			cfg.goroutines, cfg.episodes, elapsed, collector.MeanIterations(), collector.MeanDuration(), failures)
	}
	fmt.Println("Finished speedup experiment.")
}

func newEpisodeTask() searcher.BatchTask {
	root := crossing.NewHypothesisCrossingState(0, 20, []crossing.AgentPolicyCrossingState{
		crossing.NewAgentPolicyCrossingState(0, 5),
		crossing.NewAgentPolicyCrossingState(6, 12),
	})
	belief := searcher.NewBeliefTracker(root.AgentIndices(), func(searcher.AgentIdx) int {
		return root.NumHypotheses(0)
	}, 0.01)
	return searcher.BatchTask{Root: root, Belief: belief}
}

func plannerParams() searcher.Parameters {
	return searcher.NewParameters(
		searcher.WithDiscountFactor(0.95),
		searcher.WithMaxIterations(meta.DefaultMaxIterations),
		searcher.WithRandomSeed(1000),
		searcher.WithRewardBounds(-1000, 100),
		searcher.WithCostBounds(0, 1),
		searcher.WithCostConstraint(0.1),
		searcher.WithKappa(0.7),
		searcher.WithRolloutDepthCap(meta.DefaultRolloutDepthCap),
	)
}
