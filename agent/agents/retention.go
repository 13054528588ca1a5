package agents

import (
	"context"

	"github.com/rs/zerolog"

	contractx "github.com/techflow/careflow/agent/contract"
	graphx "github.com/techflow/careflow/agent/graph"
	statex "github.com/techflow/careflow/agent/state"
)

const retentionRetrievalK = 3

const retentionFallbackReply = "I understand you're considering canceling your Care+ plan. " +
	"Let me help you explore options that might work better for your situation."

// Retention handles cancellation requests: look the customer up, pull policy
// context, compute an offer when the business rules allow one, and attempt to
// keep the customer. It hands off to the processor only when the cancellation
// was explicitly confirmed at entry.
type Retention struct {
	nodeBase
}

func NewRetention(tools contractx.ToolInvoker, retriever contractx.Retriever, responder contractx.Responder, logger zerolog.Logger) *Retention {
	return &Retention{nodeBase{tools: tools, retriever: retriever, responder: responder, logger: logger}}
}

func (n *Retention) ID() graphx.NodeID { return graphx.NodeRetention }

func (n *Retention) Execute(ctx context.Context, st *statex.ConversationState) (*statex.ConversationState, error) {
	if st.Intent != contractx.IntentCancelInsurance {
		return st, nil
	}

	n.lookupCustomer(ctx, st, graphx.NodeRetention)

	query := st.UserMessage
	if st.CancellationReason != "" {
		query += " Reason: " + string(st.CancellationReason)
	}
	chunks := n.retrieve(ctx, st, graphx.NodeRetention, query, retentionRetrievalK)

	// An offer needs both a tier and a reason. Without either, retention is
	// a value conversation, not a discount.
	if st.CustomerData != nil && st.CustomerData.Tier != "" && st.CancellationReason != "" && st.RetentionOffer == nil {
		res := n.tools.Invoke(ctx, "calculate_retention_offer", map[string]any{
			"customer_tier": st.CustomerData.Tier,
			"reason":        string(st.CancellationReason),
		})
		if res.Failed() {
			st.RecordToolFailure(string(graphx.NodeRetention), res.Tool, res.Kind, res.Error)
		} else if offer, ok := res.Result.(*contractx.RetentionOffer); ok {
			if err := st.SetRetentionOffer(offer); err != nil {
				n.logger.Warn().Err(err).Msg("discarding duplicate retention offer")
			}
		}
	}

	n.reply(ctx, st, contractx.ReplyRequest{
		Node:               string(graphx.NodeRetention),
		UserMessage:        st.UserMessage,
		Intent:             st.Intent,
		CancellationReason: st.CancellationReason,
		Customer:           st.CustomerData,
		Offer:              st.RetentionOffer,
		Context:            chunks,
	}, retentionFallbackReply)

	// Escalation to the processor happens only on the external confirmation
	// input, never on anything inferred here.
	if st.Confirmed && st.FinalAction == "" {
		if err := st.SetFinalAction(contractx.ActionCancelled); err != nil {
			return nil, err
		}
	}

	return st, nil
}

var _ graphx.Node = (*Retention)(nil)
