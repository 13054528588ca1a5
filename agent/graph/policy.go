package graph

import (
	contractx "github.com/techflow/careflow/agent/contract"
	statex "github.com/techflow/careflow/agent/state"
)

// Next is the routing policy: a pure function from (state, last executed
// node) to a decision. It is total over every reachable pair, and the only
// non-terminal edges it ever emits are orchestrator->specialist and
// retention->processor, so the graph is acyclic by construction.
//
//	orchestrator  cancel_insurance            -> retention
//	orchestrator  technical_issue             -> tech_support
//	orchestrator  billing_question            -> billing
//	orchestrator  general_question or absent  -> terminal
//	retention     final_action = cancelled    -> processor
//	retention     otherwise                   -> terminal
//	tech_support  any                         -> terminal
//	billing       any                         -> terminal
//	processor     any                         -> terminal
func Next(st *statex.ConversationState, last NodeID) Decision {
	switch last {
	case NodeOrchestrator:
		return afterOrchestrator(st)
	case NodeRetention:
		if st != nil && st.FinalAction == contractx.ActionCancelled {
			return toNode(NodeProcessor)
		}
		return terminal()
	default:
		// tech_support, billing, processor, and anything unknown: routing
		// must never deadlock, so the conservative answer is terminal.
		return terminal()
	}
}

func afterOrchestrator(st *statex.ConversationState) Decision {
	if st == nil {
		return terminal()
	}
	switch st.Intent {
	case contractx.IntentCancelInsurance:
		return toNode(NodeRetention)
	case contractx.IntentTechnicalIssue:
		return toNode(NodeTechSupport)
	case contractx.IntentBillingQuestion:
		return toNode(NodeBilling)
	default:
		// general_question, absent, or unrecognized: end the run rather
		// than fail on an unclassified message.
		return terminal()
	}
}
