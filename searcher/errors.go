package searcher

import "errors"

// ErrNotReady is returned by Search when the iteration/time budget was
// exhausted before a single iteration completed, so the root statistics
// hold no information to recommend an action from.
var ErrNotReady = errors.New("searcher: no iterations completed before budget exhaustion")

// ErrEmptyHypothesisSet is panicked by NewBeliefTracker when it encounters
// an other agent with zero hypotheses registered: a construction-time
// precondition, not a condition Search can hit mid-run.
var ErrEmptyHypothesisSet = errors.New("searcher: other agent has an empty hypothesis set")

// ErrMalformedExecuteResult is returned by Search when a State's Execute
// call returns a reward vector whose length does not match the number of
// agents the state reports via AgentIndices: a state contract violation
// surfaced to the caller rather than panicked.
var ErrMalformedExecuteResult = errors.New("searcher: execute returned a reward vector of the wrong arity")

// ErrNoBudget is panicked by NewParameters's validation when neither an
// iteration budget nor a time budget was configured: a construction-time
// precondition, not a condition Search can hit mid-run.
var ErrNoBudget = errors.New("searcher: must specify a positive MaxIterations or MaxSearchTime")
