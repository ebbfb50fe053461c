package searcher

// node is one tree node: the ego's cost-constrained statistic, one
// statistic per other agent, a terminal flag, a depth, and children
// indexed by the joint action that produced them. The tree owns its
// nodes exclusively; a node's statistics are owned by that node.
type node struct {
	depth    int
	terminal bool

	egoStatistic   *CostConstrainedStatistic
	otherUct       map[AgentIdx]*UcbStatistic
	otherHyp       map[AgentIdx]*HypothesisStatistic
	hypothesisMode bool

	children map[string]*node
}

// newNode builds a node for state at depth, lazily sizing its
// statistics from state's action counts.
func newNode(state State, depth int, agents []AgentIdx, params Parameters, hypothesisMode bool) *node {
	n := &node{
		depth:          depth,
		terminal:       state.IsTerminal(),
		children:       make(map[string]*node),
		hypothesisMode: hypothesisMode,
	}
	if n.terminal {
		return n
	}

	egoActions := state.NumActions(EgoAgentIdx)
	n.egoStatistic = NewCostConstrainedStatistic(egoActions, params.DiscountFactor, params.CostConstrained)

	if hypothesisMode {
		n.otherHyp = make(map[AgentIdx]*HypothesisStatistic, len(agents)-1)
	} else {
		n.otherUct = make(map[AgentIdx]*UcbStatistic, len(agents)-1)
	}
	for _, agent := range agents {
		if agent == EgoAgentIdx {
			continue
		}
		if hypothesisMode {
			n.otherHyp[agent] = NewHypothesisStatistic(agent)
		} else {
			numActions := state.NumActions(agent)
			n.otherUct[agent] = NewUcbStatistic(numActions, params.DiscountFactor, params.Uct)
		}
	}
	return n
}

// policyIsReady reports whether every agent's statistic at this node has
// finished progressive widening, i.e. the joint action space is fully
// expanded and descent may follow an existing child rather than expand a
// new one.
func (n *node) policyIsReady() bool {
	if !n.egoStatistic.PolicyIsReady() {
		return false
	}
	if n.hypothesisMode {
		for _, h := range n.otherHyp {
			if !h.PolicyIsReady() {
				return false
			}
		}
		return true
	}
	for _, u := range n.otherUct {
		if !u.PolicyIsReady() {
			return false
		}
	}
	return true
}

// child looks up (amortized O(1)) the child reached by joint, or nil.
func (n *node) child(joint JointAction) *node {
	return n.children[jointActionKey(joint)]
}

// attachChild creates (if absent) and returns the child reached by
// joint, lazily built from state (the state joint leads to) and params
// the first time it is visited.
func (n *node) attachChild(joint JointAction, state State, agents []AgentIdx, params Parameters) *node {
	key := jointActionKey(joint)
	if existing, ok := n.children[key]; ok {
		return existing
	}
	child := newNode(state, n.depth+1, agents, params, n.hypothesisMode)
	n.children[key] = child
	return child
}
