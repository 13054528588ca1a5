package graph

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	contractx "github.com/techflow/careflow/agent/contract"
	statex "github.com/techflow/careflow/agent/state"
)

// DefaultStepBudget bounds one run at a small multiple of the longest legal
// path (orchestrator -> retention -> processor). The budget is a backstop
// against a routing defect, not a termination mechanism: the policy table
// itself is acyclic.
const DefaultStepBudget = 10

// Runner drives execution from the entry node until the routing policy
// returns a terminal decision. It performs no I/O of its own.
type Runner struct {
	nodes  map[NodeID]Node
	entry  NodeID
	budget int
	logger zerolog.Logger
}

type RunnerOption func(*Runner)

func WithStepBudget(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.budget = n
		}
	}
}

func WithLogger(logger zerolog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner registers the given nodes and fixes the entry at the
// orchestrator. All five node IDs must be present.
func NewRunner(nodes []Node, opts ...RunnerOption) (*Runner, error) {
	registry := make(map[NodeID]Node, len(nodes))
	for _, n := range nodes {
		if n == nil {
			return nil, fmt.Errorf("%w: nil node", contractx.ErrValidation)
		}
		if _, dup := registry[n.ID()]; dup {
			return nil, fmt.Errorf("%w: duplicate node %q", contractx.ErrValidation, n.ID())
		}
		registry[n.ID()] = n
	}
	for _, id := range []NodeID{NodeOrchestrator, NodeRetention, NodeTechSupport, NodeBilling, NodeProcessor} {
		if _, ok := registry[id]; !ok {
			return nil, fmt.Errorf("%w: missing node %q", contractx.ErrValidation, id)
		}
	}

	r := &Runner{
		nodes:  registry,
		entry:  NodeOrchestrator,
		budget: DefaultStepBudget,
		logger: log.Logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run executes one conversation from entry to terminal. The caller always
// receives either a final state (possibly with degraded optional fields) or
// a hard graph error.
func (r *Runner) Run(ctx context.Context, initial *statex.ConversationState) (*statex.ConversationState, error) {
	if err := initial.Validate(); err != nil {
		return nil, err
	}

	st := initial.Clone()
	current := r.entry
	for step := 1; ; step++ {
		if step > r.budget {
			return nil, fmt.Errorf("%w: %d steps at node %q", contractx.ErrExceededStepBudget, step-1, current)
		}

		node := r.nodes[current]
		next, err := node.Execute(ctx, st)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", current, err)
		}
		st = next

		decision := Next(st, current)
		r.logger.Debug().
			Str("node", string(current)).
			Int("step", step).
			Bool("terminal", decision.Terminal).
			Str("next", string(decision.Next)).
			Msg("graph step")

		if decision.Terminal {
			return st, nil
		}
		current = decision.Next
		if _, ok := r.nodes[current]; !ok {
			return nil, fmt.Errorf("%w: policy routed to unregistered node %q", contractx.ErrPreconditionViolated, current)
		}
	}
}
