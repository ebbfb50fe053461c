package searcher

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// BatchTask is one independent Search call to run as part of a
// SearchMany batch: its own root state and, for the hypothesis variant,
// its own belief tracker.
type BatchTask struct {
	Root   State
	Belief *BeliefTracker
}

// BatchResult pairs one task's outcome with its originating index, since
// SearchMany's worker pool completes tasks out of order.
type BatchResult struct {
	Index  int
	Action ActionIdx
	Err    error
}

// SearchMany runs independent searches concurrently across goroutines
// worker goroutines, one MCTS engine per task so each gets its own
// RandomSource derived from seed. This is the one exception to the
// single search call's sequential model: callers batching unrelated
// decisions (e.g. self-play across many episodes) may parallelize
// across the batch, never within one tree.
func SearchMany(tasks []BatchTask, params Parameters, goroutines int, collector *SearchMetricsCollector) []BatchResult {
	if goroutines <= 0 {
		goroutines = 1
	}
	if collector == nil {
		collector = &SearchMetricsCollector{}
	}

	// Per-task RandomSources are derived up front from a single root
	// generator, sequentially, so each task gets an independent,
	// reproducible stream without sharing a RandomSource across
	// goroutines (RandomSource.Derive is itself not safe for concurrent
	// use).
	root := NewRandomSource(params.RandomSeed)
	rngs := make([]*RandomSource, len(tasks))
	for i := range tasks {
		rngs[i] = root.Derive()
	}

	results := make([]BatchResult, len(tasks))
	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < goroutines; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				task := tasks[i]

				var engine *MCTS
				if task.Belief != nil {
					engine = NewHypothesisMCTS(params, task.Belief, WithRandomSource(rngs[i]))
				} else {
					engine = NewMCTS(params, WithRandomSource(rngs[i]))
				}

				action, err := engine.Search(task.Root)
				collector.Record(engine.Metrics())
				results[i] = BatchResult{Index: i, Action: action, Err: err}
			}
		}()
	}

	for i := range tasks {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	log.Debug().Int("tasks", len(tasks)).Int("goroutines", goroutines).Msg("searcher: batch search complete")
	return results
}
