package agents

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	contractx "github.com/techflow/careflow/agent/contract"
	graphx "github.com/techflow/careflow/agent/graph"
	statex "github.com/techflow/careflow/agent/state"
)

const processorRetrievalK = 2

const processorPolicyQuery = "refund policy return policy cancellation refund processing time"

const processorFallbackReply = "Your Care+ cancellation has been processed. " +
	"Any applicable refund will follow our standard processing timeline. Thank you for being a customer."

// Processor finalizes a confirmed cancellation: records the status change
// and confirms procedurally. It must never run before retention has set the
// cancelled action, so an unmet precondition is a hard graph error, not a
// recoverable one.
type Processor struct {
	nodeBase
}

func NewProcessor(tools contractx.ToolInvoker, retriever contractx.Retriever, responder contractx.Responder, logger zerolog.Logger) *Processor {
	return &Processor{nodeBase{tools: tools, retriever: retriever, responder: responder, logger: logger}}
}

func (n *Processor) ID() graphx.NodeID { return graphx.NodeProcessor }

func (n *Processor) Execute(ctx context.Context, st *statex.ConversationState) (*statex.ConversationState, error) {
	if st.FinalAction != contractx.ActionCancelled {
		return nil, fmt.Errorf("%w: processor requires final action %q, got %q",
			contractx.ErrPreconditionViolated, contractx.ActionCancelled, st.FinalAction)
	}

	var update *contractx.StatusUpdate
	if st.CustomerData == nil || st.CustomerData.CustomerID == "" {
		st.RecordToolFailure(string(graphx.NodeProcessor), "update_customer_status",
			contractx.ErrorKindInvalidInput, "no customer data available for status update")
	} else {
		res := n.tools.Invoke(ctx, "update_customer_status", map[string]any{
			"customer_id": st.CustomerData.CustomerID,
			"action":      "cancelled",
		})
		if res.Failed() {
			st.RecordToolFailure(string(graphx.NodeProcessor), res.Tool, res.Kind, res.Error)
		} else if u, ok := res.Result.(*contractx.StatusUpdate); ok {
			update = u
		}
	}

	chunks := n.retrieve(ctx, st, graphx.NodeProcessor, processorPolicyQuery, processorRetrievalK)

	n.reply(ctx, st, contractx.ReplyRequest{
		Node:         string(graphx.NodeProcessor),
		UserMessage:  st.UserMessage,
		Intent:       st.Intent,
		Customer:     st.CustomerData,
		Context:      chunks,
		StatusUpdate: update,
	}, processorFallbackReply)

	return st, nil
}

var _ graphx.Node = (*Processor)(nil)
