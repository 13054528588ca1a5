package agents

import (
	"context"

	"github.com/rs/zerolog"

	contractx "github.com/techflow/careflow/agent/contract"
	graphx "github.com/techflow/careflow/agent/graph"
	statex "github.com/techflow/careflow/agent/state"
)

const techSupportRetrievalK = 4

const techSupportFallbackReply = "Sorry you're running into trouble with your device. " +
	"Please try restarting it and installing any pending updates, then let us know if the issue persists."

// TechSupport walks the customer through troubleshooting steps grounded in
// the embedded guide. It never looks up accounts and never offers retention.
type TechSupport struct {
	nodeBase
}

func NewTechSupport(retriever contractx.Retriever, responder contractx.Responder, logger zerolog.Logger) *TechSupport {
	return &TechSupport{nodeBase{retriever: retriever, responder: responder, logger: logger}}
}

func (n *TechSupport) ID() graphx.NodeID { return graphx.NodeTechSupport }

func (n *TechSupport) Execute(ctx context.Context, st *statex.ConversationState) (*statex.ConversationState, error) {
	if st.Intent != contractx.IntentTechnicalIssue {
		return st, nil
	}

	chunks := n.retrieve(ctx, st, graphx.NodeTechSupport, "technical issue troubleshooting: "+st.UserMessage, techSupportRetrievalK)

	n.reply(ctx, st, contractx.ReplyRequest{
		Node:        string(graphx.NodeTechSupport),
		UserMessage: st.UserMessage,
		Intent:      st.Intent,
		Context:     chunks,
	}, techSupportFallbackReply)

	if st.FinalAction == "" {
		if err := st.SetFinalAction(contractx.ActionRoutedToSupport); err != nil {
			return nil, err
		}
	}
	return st, nil
}

var _ graphx.Node = (*TechSupport)(nil)
