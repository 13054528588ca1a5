package state

import (
	"errors"
	"testing"

	contractx "github.com/techflow/careflow/agent/contract"
)

func TestNewNormalizesInput(t *testing.T) {
	t.Parallel()

	st := New("  help me  ", "  Sarah.Chen@Email.com ", true)
	if st.UserMessage != "help me" {
		t.Fatalf("unexpected user message: %q", st.UserMessage)
	}
	if st.CustomerEmail != "sarah.chen@email.com" {
		t.Fatalf("unexpected email: %q", st.CustomerEmail)
	}
	if !st.Confirmed {
		t.Fatal("expected confirmed state")
	}
}

func TestSetIntentMonotonic(t *testing.T) {
	t.Parallel()

	st := New("hello", "", false)
	if err := st.SetIntent(contractx.IntentCancelInsurance); err != nil {
		t.Fatalf("SetIntent() error = %v", err)
	}
	err := st.SetIntent(contractx.IntentBillingQuestion)
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation on overwrite, got %v", err)
	}
	if st.Intent != contractx.IntentCancelInsurance {
		t.Fatalf("intent changed on rejected overwrite: %q", st.Intent)
	}
}

func TestSetIntentNormalizesUnknown(t *testing.T) {
	t.Parallel()

	st := New("hello", "", false)
	if err := st.SetIntent("complaint"); err != nil {
		t.Fatalf("SetIntent() error = %v", err)
	}
	if st.Intent != contractx.IntentGeneralQuestion {
		t.Fatalf("expected general_question, got %q", st.Intent)
	}
}

func TestSetCustomerEmail(t *testing.T) {
	t.Parallel()

	st := New("hello", "", false)
	if err := st.SetCustomerEmail("Sarah.Chen@Email.com"); err != nil {
		t.Fatalf("SetCustomerEmail() error = %v", err)
	}
	// Same address again is idempotent.
	if err := st.SetCustomerEmail("sarah.chen@email.com"); err != nil {
		t.Fatalf("idempotent set error = %v", err)
	}
	// A different address is an overwrite.
	if err := st.SetCustomerEmail("mike.rodriguez@email.com"); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	// Empty is a no-op, never a clear.
	if err := st.SetCustomerEmail(""); err != nil {
		t.Fatalf("empty set error = %v", err)
	}
	if st.CustomerEmail != "sarah.chen@email.com" {
		t.Fatalf("unexpected email: %q", st.CustomerEmail)
	}
}

func TestSetCancellationReasonRequiresCancelIntent(t *testing.T) {
	t.Parallel()

	st := New("hello", "", false)
	if err := st.SetIntent(contractx.IntentBillingQuestion); err != nil {
		t.Fatalf("SetIntent() error = %v", err)
	}
	err := st.SetCancellationReason(contractx.ReasonFinancialHardship)
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestSetCancellationReasonMonotonic(t *testing.T) {
	t.Parallel()

	st := New("hello", "", false)
	if err := st.SetIntent(contractx.IntentCancelInsurance); err != nil {
		t.Fatalf("SetIntent() error = %v", err)
	}
	if err := st.SetCancellationReason(contractx.ReasonFinancialHardship); err != nil {
		t.Fatalf("SetCancellationReason() error = %v", err)
	}
	if err := st.SetCancellationReason(contractx.ReasonServiceValue); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation on overwrite, got %v", err)
	}
	if err := st.SetCancellationReason("boredom"); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation on unknown reason, got %v", err)
	}
}

func TestSetCustomerDataAndOfferMonotonic(t *testing.T) {
	t.Parallel()

	st := New("hello", "", false)
	if err := st.SetIntent(contractx.IntentCancelInsurance); err != nil {
		t.Fatalf("SetIntent() error = %v", err)
	}

	profile := &contractx.CustomerProfile{CustomerID: "CUST_001", Email: "sarah.chen@email.com", Tier: "premium"}
	if err := st.SetCustomerData(profile); err != nil {
		t.Fatalf("SetCustomerData() error = %v", err)
	}
	if err := st.SetCustomerData(profile); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation on second set, got %v", err)
	}

	offer := &contractx.RetentionOffer{Kind: "pause", Description: "pause billing"}
	if err := st.SetRetentionOffer(offer); err != nil {
		t.Fatalf("SetRetentionOffer() error = %v", err)
	}
	if err := st.SetRetentionOffer(offer); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation on second offer, got %v", err)
	}
}

func TestSetFinalActionMonotonic(t *testing.T) {
	t.Parallel()

	st := New("hello", "", false)
	if err := st.SetFinalAction(contractx.ActionRoutedToSupport); err != nil {
		t.Fatalf("SetFinalAction() error = %v", err)
	}
	if err := st.SetFinalAction(contractx.ActionCancelled); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation on overwrite, got %v", err)
	}
	if st.FinalAction != contractx.ActionRoutedToSupport {
		t.Fatalf("final action changed on rejected overwrite: %q", st.FinalAction)
	}
}

func TestCloneIsDeep(t *testing.T) {
	t.Parallel()

	st := New("hello", "sarah.chen@email.com", false)
	if err := st.SetIntent(contractx.IntentCancelInsurance); err != nil {
		t.Fatalf("SetIntent() error = %v", err)
	}
	if err := st.SetCustomerData(&contractx.CustomerProfile{CustomerID: "CUST_001"}); err != nil {
		t.Fatalf("SetCustomerData() error = %v", err)
	}
	st.AppendContext(contractx.RetrievedChunk{Source: "return_policy.md", Text: "refunds", Score: 0.9})

	clone := st.Clone()
	clone.CustomerData.CustomerID = "CUST_999"
	clone.RetrievedContext[0].Text = "mutated"
	clone.AppendReply("retention", "hi")

	if st.CustomerData.CustomerID != "CUST_001" {
		t.Fatal("clone shares customer data with original")
	}
	if st.RetrievedContext[0].Text != "refunds" {
		t.Fatal("clone shares context slice with original")
	}
	if len(st.Replies) != 0 {
		t.Fatal("clone shares replies with original")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	if err := New("   ", "", false).Validate(); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty message, got %v", err)
	}

	st := New("hello", "", false)
	st.Intent = contractx.IntentBillingQuestion
	st.CancellationReason = contractx.ReasonServiceValue
	if err := st.Validate(); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation for reason without cancel intent, got %v", err)
	}

	ok := New("hello", "", false)
	if err := ok.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}
