package respond

import (
	"context"
	"strings"
	"testing"
	"time"

	contractx "github.com/techflow/careflow/agent/contract"
)

func TestTemplateResponderRetentionPresentsOffer(t *testing.T) {
	t.Parallel()

	r := NewTemplateResponder()
	reply, err := r.Respond(context.Background(), contractx.ReplyRequest{
		Node:        "retention",
		UserMessage: "cancel my plan",
		Customer:    &contractx.CustomerProfile{Name: "Sarah Chen"},
		Offer:       &contractx.RetentionOffer{Kind: "pause", Description: "Pause Care+ billing for up to 3 months"},
	})
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if !strings.Contains(reply, "Sarah Chen") {
		t.Fatalf("reply should greet the customer: %q", reply)
	}
	if !strings.Contains(reply, "Pause Care+ billing") {
		t.Fatalf("reply should present the offer: %q", reply)
	}
	if !strings.Contains(reply, "still want to cancel") {
		t.Fatalf("reply should ask for a decision: %q", reply)
	}
}

func TestTemplateResponderProcessorIncludesReference(t *testing.T) {
	t.Parallel()

	r := NewTemplateResponder()
	reply, err := r.Respond(context.Background(), contractx.ReplyRequest{
		Node:        "processor",
		UserMessage: "yes cancel",
		StatusUpdate: &contractx.StatusUpdate{
			CustomerID: "CUST_001",
			Action:     "cancelled",
			Timestamp:  time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		},
	})
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if !strings.Contains(reply, "CUST_001") {
		t.Fatalf("reply should include the reference: %q", reply)
	}
}

func TestTemplateResponderIncludesContext(t *testing.T) {
	t.Parallel()

	r := NewTemplateResponder()
	reply, err := r.Respond(context.Background(), contractx.ReplyRequest{
		Node:        "tech_support",
		UserMessage: "battery drains fast",
		Context: []contractx.RetrievedChunk{
			{Source: "troubleshooting_guide.md", Text: "Check background apps."},
		},
	})
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if !strings.Contains(reply, "troubleshooting_guide.md") || !strings.Contains(reply, "Check background apps.") {
		t.Fatalf("reply should include the retrieved context: %q", reply)
	}
}

func TestTemplateResponderUnknownNodeGreets(t *testing.T) {
	t.Parallel()

	r := NewTemplateResponder()
	reply, err := r.Respond(context.Background(), contractx.ReplyRequest{Node: "orchestrator", UserMessage: "hi"})
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if reply == "" {
		t.Fatal("expected a greeting")
	}
}
