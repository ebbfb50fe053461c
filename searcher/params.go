package searcher

import "time"

// UctParameters configures a plain UCB statistic (component B).
type UctParameters struct {
	LowerBound               Reward
	UpperBound               Reward
	ExplorationConstant      float64
	ProgressiveWideningK     float64
	ProgressiveWideningAlpha float64
}

// CostConstrainedParameters configures the ego agent's cost-constrained
// statistic (component C).
type CostConstrainedParameters struct {
	CostConstraint     Cost
	RewardLowerBound   Reward
	RewardUpperBound   Reward
	CostLowerBound     Cost
	CostUpperBound     Cost
	Kappa              float64 // exploration constant for the combined objective
	Lambda             float64 // initial Lagrangian multiplier
	GradientUpdateStep float64
	TauGradientClip    float64
	ActionFilterFactor float64
}

// BeliefParameters configures the per-agent hypothesis posterior
// (component E).
type BeliefParameters struct {
	// PriorSmoothing is blended into each observation likelihood before
	// renormalizing, preventing a single contradicting observation from
	// driving a hypothesis's weight to exactly zero. Zero disables
	// smoothing. BeliefTracker does not read this field: its smoothing is
	// the value passed to NewBeliefTracker.
	PriorSmoothing Probability
}

// Parameters is the full recognized configuration surface (component I),
// enumerated in spec.md §6.
type Parameters struct {
	DiscountFactor      float64 // gamma, 0 < gamma <= 1
	MaxIterations       int
	MaxSearchTime       time.Duration
	RandomSeed          uint64
	RolloutDepthCap     int

	Uct             UctParameters
	CostConstrained CostConstrainedParameters
	Belief          BeliefParameters
}

// Option mutates a Parameters value under construction.
type Option func(*Parameters)

// DefaultParameters returns a Parameters value with the teacher's usual
// defaults: an undiscounted-cost, moderately explorative UCT setup with
// progressive widening saturated for small action spaces.
func DefaultParameters() Parameters {
	return Parameters{
		DiscountFactor:  0.9,
		MaxIterations:   1000,
		MaxSearchTime:   0,
		RandomSeed:      1000,
		RolloutDepthCap: 100,
		Uct: UctParameters{
			LowerBound:               0,
			UpperBound:               1,
			ExplorationConstant:      0.7,
			ProgressiveWideningK:     1,
			ProgressiveWideningAlpha: 0.25,
		},
		CostConstrained: CostConstrainedParameters{
			CostConstraint:     0.0,
			RewardLowerBound:   0,
			RewardUpperBound:   1,
			CostLowerBound:     0,
			CostUpperBound:     1,
			Kappa:              0.7,
			Lambda:             0,
			GradientUpdateStep: 0.1,
			TauGradientClip:    1.0,
			ActionFilterFactor: 1.0,
		},
		Belief: BeliefParameters{PriorSmoothing: 0},
	}
}

func WithDiscountFactor(gamma float64) Option {
	return func(p *Parameters) { p.DiscountFactor = gamma }
}

func WithMaxIterations(n int) Option {
	return func(p *Parameters) { p.MaxIterations = n }
}

func WithMaxSearchTime(d time.Duration) Option {
	return func(p *Parameters) { p.MaxSearchTime = d }
}

func WithRandomSeed(seed uint64) Option {
	return func(p *Parameters) { p.RandomSeed = seed }
}

func WithRolloutDepthCap(depth int) Option {
	return func(p *Parameters) { p.RolloutDepthCap = depth }
}

func WithExplorationConstant(c float64) Option {
	return func(p *Parameters) { p.Uct.ExplorationConstant = c }
}

func WithBounds(lower, upper Reward) Option {
	return func(p *Parameters) {
		p.Uct.LowerBound = lower
		p.Uct.UpperBound = upper
	}
}

func WithProgressiveWidening(k, alpha float64) Option {
	return func(p *Parameters) {
		p.Uct.ProgressiveWideningK = k
		p.Uct.ProgressiveWideningAlpha = alpha
	}
}

func WithCostConstraint(c Cost) Option {
	return func(p *Parameters) { p.CostConstrained.CostConstraint = c }
}

func WithRewardBounds(lower, upper Reward) Option {
	return func(p *Parameters) {
		p.CostConstrained.RewardLowerBound = lower
		p.CostConstrained.RewardUpperBound = upper
	}
}

func WithCostBounds(lower, upper Cost) Option {
	return func(p *Parameters) {
		p.CostConstrained.CostLowerBound = lower
		p.CostConstrained.CostUpperBound = upper
	}
}

func WithKappa(kappa float64) Option {
	return func(p *Parameters) { p.CostConstrained.Kappa = kappa }
}

func WithLambda(lambda float64) Option {
	return func(p *Parameters) { p.CostConstrained.Lambda = lambda }
}

func WithGradientStep(g0 float64) Option {
	return func(p *Parameters) { p.CostConstrained.GradientUpdateStep = g0 }
}

func WithTauGradientClip(tau float64) Option {
	return func(p *Parameters) { p.CostConstrained.TauGradientClip = tau }
}

func WithActionFilterFactor(factor float64) Option {
	return func(p *Parameters) { p.CostConstrained.ActionFilterFactor = factor }
}

func WithBeliefPrior(smoothing Probability) Option {
	return func(p *Parameters) { p.Belief.PriorSmoothing = smoothing }
}

// NewParameters applies options over DefaultParameters and validates the
// result, panicking on precondition violations the way the teacher's
// NewMCTS panics on missing search budgets.
func NewParameters(options ...Option) Parameters {
	p := DefaultParameters()
	for _, option := range options {
		option(&p)
	}
	p.validate()
	return p
}

func (p Parameters) validate() {
	if p.DiscountFactor <= 0 || p.DiscountFactor > 1 {
		panic("searcher: DiscountFactor must be in (0, 1]")
	}
	if p.MaxIterations <= 0 && p.MaxSearchTime <= 0 {
		panic(ErrNoBudget)
	}
	if p.Uct.UpperBound <= p.Uct.LowerBound {
		panic("searcher: Uct.UpperBound must exceed Uct.LowerBound")
	}
	if p.CostConstrained.RewardUpperBound <= p.CostConstrained.RewardLowerBound {
		panic("searcher: CostConstrained reward bounds are inverted")
	}
	if p.CostConstrained.CostUpperBound <= p.CostConstrained.CostLowerBound {
		panic("searcher: CostConstrained cost bounds are inverted")
	}
}
