package agents

import (
	"context"

	"github.com/rs/zerolog"

	contractx "github.com/techflow/careflow/agent/contract"
	graphx "github.com/techflow/careflow/agent/graph"
	statex "github.com/techflow/careflow/agent/state"
)

const billingRetrievalK = 4

const billingFallbackReply = "Happy to help with your billing question. " +
	"Our billing department can walk through the charges on your account in detail."

// Billing answers charge and payment questions. Account lookup is best
// effort; a missing email just means the answer stays generic.
type Billing struct {
	nodeBase
}

func NewBilling(tools contractx.ToolInvoker, retriever contractx.Retriever, responder contractx.Responder, logger zerolog.Logger) *Billing {
	return &Billing{nodeBase{tools: tools, retriever: retriever, responder: responder, logger: logger}}
}

func (n *Billing) ID() graphx.NodeID { return graphx.NodeBilling }

func (n *Billing) Execute(ctx context.Context, st *statex.ConversationState) (*statex.ConversationState, error) {
	if st.Intent != contractx.IntentBillingQuestion {
		return st, nil
	}

	n.lookupCustomer(ctx, st, graphx.NodeBilling)

	chunks := n.retrieve(ctx, st, graphx.NodeBilling, "billing charges payment plan cost: "+st.UserMessage, billingRetrievalK)

	n.reply(ctx, st, contractx.ReplyRequest{
		Node:        string(graphx.NodeBilling),
		UserMessage: st.UserMessage,
		Intent:      st.Intent,
		Customer:    st.CustomerData,
		Context:     chunks,
	}, billingFallbackReply)

	if st.FinalAction == "" {
		if err := st.SetFinalAction(contractx.ActionRoutedToBilling); err != nil {
			return nil, err
		}
	}
	return st, nil
}

var _ graphx.Node = (*Billing)(nil)
