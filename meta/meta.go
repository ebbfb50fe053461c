// Package meta holds the demo CLI's default experiment configuration,
// separated from cmd/planner-demo so other entrypoints (benchmarks, ad
// hoc scripts) can share the same defaults.
package meta

// DefaultGoroutines is the default worker pool size for SearchMany.
const DefaultGoroutines = 8

// DefaultEpisodes is the default number of crossing episodes planned per
// speedup-experiment configuration.
const DefaultEpisodes = 150

// DefaultMaxIterations is the default per-search iteration budget.
const DefaultMaxIterations = 500

// DefaultRolloutDepthCap bounds the random-rollout heuristic's lookahead.
const DefaultRolloutDepthCap = 40
