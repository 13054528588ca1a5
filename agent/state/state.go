package state

import (
	"fmt"
	"strings"

	contractx "github.com/techflow/careflow/agent/contract"
)

// ConversationState is the single record threaded through one graph run.
// Every field transition is monotonic (absent -> present): setters refuse to
// overwrite or clear, which is what makes replays and the property tests
// safe. Within a run there is exactly one writer at a time; concurrent runs
// each own their own value.
type ConversationState struct {
	UserMessage string `json:"user_message"`

	// Confirmed is the external cancellation-confirmation input, fixed at
	// entry. The engine never infers it from message text.
	Confirmed bool `json:"confirmed,omitempty"`

	CustomerEmail      string                       `json:"customer_email,omitempty"`
	CustomerData       *contractx.CustomerProfile   `json:"customer_data,omitempty"`
	Intent             contractx.Intent             `json:"intent,omitempty"`
	CancellationReason contractx.CancellationReason `json:"cancellation_reason,omitempty"`
	RetrievedContext   []contractx.RetrievedChunk   `json:"retrieved_context,omitempty"`
	RetentionOffer     *contractx.RetentionOffer    `json:"retention_offer,omitempty"`
	FinalAction        contractx.FinalAction        `json:"final_action,omitempty"`

	Replies      []contractx.AgentReply  `json:"replies,omitempty"`
	ToolFailures []contractx.ToolFailure `json:"tool_failures,omitempty"`
}

// New creates the entry state for one incoming message.
func New(userMessage, customerEmail string, confirmed bool) *ConversationState {
	return &ConversationState{
		UserMessage:   strings.TrimSpace(userMessage),
		CustomerEmail: strings.TrimSpace(strings.ToLower(customerEmail)),
		Confirmed:     confirmed,
	}
}

// Clone returns a deep copy so a node can work copy-on-write.
func (s *ConversationState) Clone() *ConversationState {
	if s == nil {
		return nil
	}
	out := *s
	if s.CustomerData != nil {
		cd := *s.CustomerData
		out.CustomerData = &cd
	}
	if s.RetentionOffer != nil {
		ro := *s.RetentionOffer
		out.RetentionOffer = &ro
	}
	out.RetrievedContext = append([]contractx.RetrievedChunk(nil), s.RetrievedContext...)
	out.Replies = append([]contractx.AgentReply(nil), s.Replies...)
	out.ToolFailures = append([]contractx.ToolFailure(nil), s.ToolFailures...)
	return &out
}

func (s *ConversationState) SetIntent(intent contractx.Intent) error {
	if s.Intent != "" {
		return fmt.Errorf("%w: intent already set to %q", contractx.ErrValidation, s.Intent)
	}
	if !contractx.KnownIntent(intent) {
		intent = contractx.IntentGeneralQuestion
	}
	s.Intent = intent
	return nil
}

func (s *ConversationState) SetCustomerEmail(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil
	}
	if s.CustomerEmail != "" && s.CustomerEmail != email {
		return fmt.Errorf("%w: customer email already set", contractx.ErrValidation)
	}
	s.CustomerEmail = email
	return nil
}

func (s *ConversationState) SetCancellationReason(reason contractx.CancellationReason) error {
	if reason == "" {
		return nil
	}
	if s.Intent != contractx.IntentCancelInsurance {
		return fmt.Errorf("%w: cancellation reason requires cancel_insurance intent", contractx.ErrValidation)
	}
	if s.CancellationReason != "" {
		return fmt.Errorf("%w: cancellation reason already set", contractx.ErrValidation)
	}
	if !contractx.KnownReason(reason) {
		return fmt.Errorf("%w: unknown cancellation reason %q", contractx.ErrValidation, reason)
	}
	s.CancellationReason = reason
	return nil
}

func (s *ConversationState) SetCustomerData(profile *contractx.CustomerProfile) error {
	if profile == nil {
		return fmt.Errorf("%w: nil customer profile", contractx.ErrValidation)
	}
	if s.CustomerData != nil {
		return fmt.Errorf("%w: customer data already set", contractx.ErrValidation)
	}
	cd := *profile
	s.CustomerData = &cd
	return nil
}

func (s *ConversationState) SetRetentionOffer(offer *contractx.RetentionOffer) error {
	if offer == nil {
		return fmt.Errorf("%w: nil retention offer", contractx.ErrValidation)
	}
	if s.RetentionOffer != nil {
		return fmt.Errorf("%w: retention offer already set", contractx.ErrValidation)
	}
	ro := *offer
	s.RetentionOffer = &ro
	return nil
}

func (s *ConversationState) SetFinalAction(action contractx.FinalAction) error {
	if s.FinalAction != "" {
		return fmt.Errorf("%w: final action already set to %q", contractx.ErrValidation, s.FinalAction)
	}
	switch action {
	case contractx.ActionCancelled, contractx.ActionRetained,
		contractx.ActionRoutedToSupport, contractx.ActionRoutedToBilling:
	default:
		return fmt.Errorf("%w: unknown final action %q", contractx.ErrValidation, action)
	}
	s.FinalAction = action
	return nil
}

// AppendContext appends retrieved fragments, preserving provenance of
// earlier retrievals in the same run. Never replaces.
func (s *ConversationState) AppendContext(chunks ...contractx.RetrievedChunk) {
	s.RetrievedContext = append(s.RetrievedContext, chunks...)
}

func (s *ConversationState) AppendReply(node, message string) {
	message = strings.TrimSpace(message)
	if message == "" {
		return
	}
	s.Replies = append(s.Replies, contractx.AgentReply{Node: node, Message: message})
}

func (s *ConversationState) RecordToolFailure(node, tool string, kind contractx.ErrorKind, msg string) {
	s.ToolFailures = append(s.ToolFailures, contractx.ToolFailure{
		Node:  node,
		Tool:  tool,
		Kind:  kind,
		Error: msg,
	})
}

// Validate checks the cross-field invariants that monotonic setters cannot
// enforce on their own.
func (s *ConversationState) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: nil conversation state", contractx.ErrValidation)
	}
	if strings.TrimSpace(s.UserMessage) == "" {
		return fmt.Errorf("%w: user message is empty", contractx.ErrValidation)
	}
	if s.Intent != "" && !contractx.KnownIntent(s.Intent) {
		return fmt.Errorf("%w: unknown intent %q", contractx.ErrValidation, s.Intent)
	}
	if s.CancellationReason != "" && s.Intent != contractx.IntentCancelInsurance {
		return fmt.Errorf("%w: cancellation reason set without cancel_insurance intent", contractx.ErrValidation)
	}
	if s.RetentionOffer != nil && s.Intent != contractx.IntentCancelInsurance {
		return fmt.Errorf("%w: retention offer set without cancel_insurance intent", contractx.ErrValidation)
	}
	return nil
}
