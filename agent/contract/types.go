package contract

import "time"

type Intent string

const (
	IntentCancelInsurance Intent = "cancel_insurance"
	IntentTechnicalIssue  Intent = "technical_issue"
	IntentBillingQuestion Intent = "billing_question"
	IntentGeneralQuestion Intent = "general_question"
)

// KnownIntent reports whether the classifier produced one of the four
// routable intents. Anything else is normalized to general_question before
// it reaches conversation state.
func KnownIntent(i Intent) bool {
	switch i {
	case IntentCancelInsurance, IntentTechnicalIssue, IntentBillingQuestion, IntentGeneralQuestion:
		return true
	}
	return false
}

type CancellationReason string

const (
	ReasonFinancialHardship CancellationReason = "financial_hardship"
	ReasonProductIssues     CancellationReason = "product_issues"
	ReasonServiceValue      CancellationReason = "service_value"
)

func KnownReason(r CancellationReason) bool {
	switch r {
	case ReasonFinancialHardship, ReasonProductIssues, ReasonServiceValue:
		return true
	}
	return false
}

type FinalAction string

const (
	ActionCancelled       FinalAction = "cancelled"
	ActionRetained        FinalAction = "retained"
	ActionRoutedToSupport FinalAction = "routed_to_support"
	ActionRoutedToBilling FinalAction = "routed_to_billing"
)

// Classification is the already-validated output of the Classifier
// boundary. Optional fields are empty when the classifier could not
// extract them.
type Classification struct {
	Intent             Intent             `json:"intent"`
	CustomerEmail      string             `json:"customer_email,omitempty"`
	CancellationReason CancellationReason `json:"cancellation_reason,omitempty"`

	// ExplicitConfirmation is surfaced for the process-level caller, which
	// maps it onto the run's external Confirmed input. The engine never
	// reads it directly.
	ExplicitConfirmation bool `json:"explicit_confirmation,omitempty"`
}

// CustomerProfile mirrors one row of the customer table.
type CustomerProfile struct {
	CustomerID         string  `json:"customer_id" bun:"customer_id,pk"`
	Email              string  `json:"email" bun:"email"`
	Name               string  `json:"name" bun:"name"`
	Phone              string  `json:"phone,omitempty" bun:"phone"`
	PlanType           string  `json:"plan_type" bun:"plan_type"`
	MonthlyCharge      float64 `json:"monthly_charge" bun:"monthly_charge"`
	Status             string  `json:"status" bun:"status"`
	TotalSpent         float64 `json:"total_spent" bun:"total_spent"`
	SupportTickets     int     `json:"support_tickets_count" bun:"support_tickets_count"`
	AccountHealthScore int     `json:"account_health_score" bun:"account_health_score"`
	TenureMonths       int     `json:"tenure_months" bun:"tenure_months"`
	Tier               string  `json:"tier" bun:"tier"`
	Device             string  `json:"device,omitempty" bun:"device"`
}

// RetentionOffer is the business-rule output of calculate_retention_offer.
type RetentionOffer struct {
	Kind           string  `json:"kind"`
	Description    string  `json:"description"`
	NewCost        float64 `json:"new_cost,omitempty"`
	DurationMonths int     `json:"duration_months,omitempty"`
	Authorization  string  `json:"authorization,omitempty"`
}

// StatusUpdate is the receipt returned by update_customer_status.
type StatusUpdate struct {
	CustomerID string    `json:"customer_id"`
	Action     string    `json:"action"`
	Timestamp  time.Time `json:"timestamp"`
}

// RetrievedChunk is one ranked fragment with provenance.
type RetrievedChunk struct {
	Source string  `json:"source"`
	Text   string  `json:"text"`
	Score  float64 `json:"score"`
}

// RetrievalResult is ordered best-first, length <= requested k,
// deduplicated by (source, text).
type RetrievalResult []RetrievedChunk

// ErrorKind classifies recoverable tool and retrieval failures.
type ErrorKind string

const (
	ErrorKindNotFound         ErrorKind = "not_found"
	ErrorKindInvalidInput     ErrorKind = "invalid_input"
	ErrorKindUnknownTool      ErrorKind = "unknown_tool"
	ErrorKindTimeout          ErrorKind = "timeout"
	ErrorKindIndexUnavailable ErrorKind = "index_unavailable"

	// ErrorKindInternal marks collaborator failures that are neither a
	// lookup miss nor a caller mistake, such as a lost database connection.
	ErrorKindInternal ErrorKind = "internal"
)

// ToolResult is the tagged union returned by every Invoke call. Failures
// travel in Kind/Error, never as a thrown error.
type ToolResult struct {
	Tool   string    `json:"tool"`
	Result any       `json:"result,omitempty"`
	Kind   ErrorKind `json:"kind,omitempty"`
	Error  string    `json:"error,omitempty"`
}

func (r ToolResult) Failed() bool {
	return r.Kind != "" || r.Error != ""
}

// AgentReply records the user-facing reply produced by one node.
type AgentReply struct {
	Node    string `json:"node"`
	Message string `json:"message"`
}

// ToolFailure is the observable diagnostic record for a recovered tool or
// retrieval failure.
type ToolFailure struct {
	Node  string    `json:"node"`
	Tool  string    `json:"tool"`
	Kind  ErrorKind `json:"kind"`
	Error string    `json:"error"`
}

// ReplyRequest carries everything the Responder boundary may use to phrase
// a node's reply.
type ReplyRequest struct {
	Node               string             `json:"node"`
	UserMessage        string             `json:"user_message"`
	Intent             Intent             `json:"intent,omitempty"`
	CancellationReason CancellationReason `json:"cancellation_reason,omitempty"`
	Customer           *CustomerProfile   `json:"customer,omitempty"`
	Offer              *RetentionOffer    `json:"offer,omitempty"`
	Context            []RetrievedChunk   `json:"context,omitempty"`
	StatusUpdate       *StatusUpdate      `json:"status_update,omitempty"`
}
