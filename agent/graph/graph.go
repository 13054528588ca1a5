// Package graph owns the node registry, the routing policy, and the
// execution loop that drives one conversation from the entry node to a
// terminal decision.
package graph

import (
	"context"

	statex "github.com/techflow/careflow/agent/state"
)

type NodeID string

const (
	NodeOrchestrator NodeID = "orchestrator"
	NodeRetention    NodeID = "retention"
	NodeTechSupport  NodeID = "tech_support"
	NodeBilling      NodeID = "billing"
	NodeProcessor    NodeID = "processor"
)

// Node is one handler stage. Execute consumes the current state and returns
// the updated state; side effects happen only through the collaborator
// boundaries a node was constructed with.
type Node interface {
	ID() NodeID
	Execute(ctx context.Context, st *statex.ConversationState) (*statex.ConversationState, error)
}

// Decision is the routing policy output: either the next node or terminal.
// It is recomputed each step from state and never stored in it.
type Decision struct {
	Next     NodeID
	Terminal bool
}

func toNode(id NodeID) Decision { return Decision{Next: id} }

func terminal() Decision { return Decision{Terminal: true} }
