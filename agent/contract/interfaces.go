package contract

import "context"

// Classifier is the opaque natural-language classification boundary.
// Implementations may be non-deterministic; malformed model output comes
// back as an error, and the caller degrades to general_question rather
// than failing the run.
type Classifier interface {
	Classify(ctx context.Context, userMessage string) (Classification, error)
}

// ToolInvoker executes a named side-effecting operation against external
// data and reports the outcome in the ToolResult union.
type ToolInvoker interface {
	Invoke(ctx context.Context, tool string, args map[string]any) ToolResult
}

// Retriever is the similarity-search boundary over the precomputed policy
// index. Stable and side-effect-free: identical (text, k) against an
// unchanged index returns identical ordered results.
type Retriever interface {
	Query(ctx context.Context, text string, k int) (RetrievalResult, error)
}

// Responder phrases a node's user-facing reply. Nodes degrade to canned
// text when it fails; a Responder error never fails a run.
type Responder interface {
	Respond(ctx context.Context, req ReplyRequest) (string, error)
}
