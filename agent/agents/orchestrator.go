package agents

import (
	"context"

	"github.com/rs/zerolog"

	contractx "github.com/techflow/careflow/agent/contract"
	graphx "github.com/techflow/careflow/agent/graph"
	statex "github.com/techflow/careflow/agent/state"
)

// Orchestrator is the entry node. It classifies the message and records
// intent, email, and cancellation reason for routing. It never calls tools,
// never retrieves, and never attempts retention.
type Orchestrator struct {
	classifier contractx.Classifier
	responder  contractx.Responder
	logger     zerolog.Logger
}

func NewOrchestrator(classifier contractx.Classifier, responder contractx.Responder, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{classifier: classifier, responder: responder, logger: logger}
}

func (n *Orchestrator) ID() graphx.NodeID { return graphx.NodeOrchestrator }

func (n *Orchestrator) Execute(ctx context.Context, st *statex.ConversationState) (*statex.ConversationState, error) {
	cls, err := n.classifier.Classify(ctx, st.UserMessage)
	if err != nil {
		// A broken classifier must not break intake. The message becomes a
		// general question with no extracted fields.
		n.logger.Warn().Err(err).Msg("classification failed, treating as general question")
		cls = contractx.Classification{Intent: contractx.IntentGeneralQuestion}
	}

	if err := st.SetCustomerEmail(cls.CustomerEmail); err != nil {
		n.logger.Warn().Err(err).Msg("keeping email provided at entry")
	}
	if err := st.SetIntent(cls.Intent); err != nil {
		return nil, err
	}
	if st.Intent == contractx.IntentCancelInsurance {
		if err := st.SetCancellationReason(cls.CancellationReason); err != nil {
			n.logger.Warn().Err(err).Msg("discarding cancellation reason")
		}
	}

	n.logger.Info().
		Str("intent", string(st.Intent)).
		Str("email", st.CustomerEmail).
		Str("reason", string(st.CancellationReason)).
		Msg("message classified")

	// Specialist intents get their reply from the routed node. A general
	// question terminates here, so the greeting is this node's to give.
	if st.Intent == contractx.IntentGeneralQuestion {
		message, err := n.responder.Respond(ctx, contractx.ReplyRequest{
			Node:        string(graphx.NodeOrchestrator),
			UserMessage: st.UserMessage,
			Intent:      st.Intent,
		})
		if err != nil {
			n.logger.Warn().Err(err).Msg("responder failed, using fallback greeting")
			message = "Hello! How can I help you today?"
		}
		st.AppendReply(string(graphx.NodeOrchestrator), message)
	}

	return st, nil
}

var _ graphx.Node = (*Orchestrator)(nil)
