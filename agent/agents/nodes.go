// Package agents implements the five handler nodes of the support graph and
// the service that assembles them behind one HandleMessage surface.
package agents

import (
	"context"

	"github.com/rs/zerolog"

	contractx "github.com/techflow/careflow/agent/contract"
	graphx "github.com/techflow/careflow/agent/graph"
	statex "github.com/techflow/careflow/agent/state"
)

// nodeBase carries the collaborators every specialist node shares.
type nodeBase struct {
	tools     contractx.ToolInvoker
	retriever contractx.Retriever
	responder contractx.Responder
	logger    zerolog.Logger
}

// reply asks the Responder for the node's user-facing message and degrades to
// fallback text on failure. A reply problem never fails the run.
func (b *nodeBase) reply(ctx context.Context, st *statex.ConversationState, req contractx.ReplyRequest, fallback string) {
	message, err := b.responder.Respond(ctx, req)
	if err != nil {
		b.logger.Warn().Str("node", req.Node).Err(err).Msg("responder failed, using fallback reply")
		message = fallback
	}
	st.AppendReply(req.Node, message)
}

// retrieve queries the index and folds failures into ToolFailures so the
// node can continue without context.
func (b *nodeBase) retrieve(ctx context.Context, st *statex.ConversationState, node graphx.NodeID, query string, k int) []contractx.RetrievedChunk {
	chunks, err := b.retriever.Query(ctx, query, k)
	if err != nil {
		b.logger.Warn().Str("node", string(node)).Err(err).Msg("retrieval failed")
		st.RecordToolFailure(string(node), "retrieval", contractx.ErrorKindIndexUnavailable, err.Error())
		return nil
	}
	st.AppendContext(chunks...)
	return chunks
}

// lookupCustomer invokes get_customer_data and folds failures into
// ToolFailures. Missing customers degrade the run, they do not stop it.
func (b *nodeBase) lookupCustomer(ctx context.Context, st *statex.ConversationState, node graphx.NodeID) {
	if st.CustomerEmail == "" || st.CustomerData != nil {
		return
	}
	res := b.tools.Invoke(ctx, "get_customer_data", map[string]any{"email": st.CustomerEmail})
	if res.Failed() {
		st.RecordToolFailure(string(node), res.Tool, res.Kind, res.Error)
		return
	}
	profile, ok := res.Result.(*contractx.CustomerProfile)
	if !ok {
		st.RecordToolFailure(string(node), res.Tool, contractx.ErrorKindInvalidInput, "unexpected customer payload shape")
		return
	}
	if err := st.SetCustomerData(profile); err != nil {
		b.logger.Warn().Str("node", string(node)).Err(err).Msg("discarding duplicate customer data")
	}
}
