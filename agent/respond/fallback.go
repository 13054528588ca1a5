package respond

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/techflow/careflow/agent/contract"
)

// TemplateResponder produces deterministic canned replies. It keeps the
// engine fully runnable without model credentials.
type TemplateResponder struct{}

func NewTemplateResponder() *TemplateResponder {
	return &TemplateResponder{}
}

func (r *TemplateResponder) Respond(_ context.Context, req contractx.ReplyRequest) (string, error) {
	var b strings.Builder

	switch req.Node {
	case "retention":
		b.WriteString("I understand you're considering canceling your Care+ plan.")
		if req.Customer != nil {
			fmt.Fprintf(&b, " Thanks for being with us, %s.", req.Customer.Name)
		}
		if o := req.Offer; o != nil {
			fmt.Fprintf(&b, " Before anything is final, here is an option: %s.", o.Description)
			b.WriteString(" Would you like to accept this offer, or do you still want to cancel?")
		} else {
			b.WriteString(" Let me help you explore options that might work better for your situation.")
		}
	case "tech_support":
		b.WriteString("Sorry you're running into trouble with your device. Let's work through it step by step.")
		if len(req.Context) > 0 {
			b.WriteString("\n\nFrom our troubleshooting guide:\n")
			writeContext(&b, req.Context)
		}
		b.WriteString("\nTry these steps and let us know how it goes. If the issue persists, we can escalate to advanced diagnostics.")
	case "billing":
		b.WriteString("Happy to help with your billing question.")
		if c := req.Customer; c != nil {
			fmt.Fprintf(&b, " Your %s plan is billed at $%.2f per month.", c.PlanType, c.MonthlyCharge)
		}
		if len(req.Context) > 0 {
			b.WriteString("\n\nRelevant billing policy:\n")
			writeContext(&b, req.Context)
		}
		b.WriteString("\nIf anything still looks off, our billing department can investigate your account in detail.")
	case "processor":
		b.WriteString("Your Care+ cancellation has been processed.")
		if u := req.StatusUpdate; u != nil {
			fmt.Fprintf(&b, " Reference: %s.", u.CustomerID)
		}
		if len(req.Context) > 0 {
			b.WriteString("\n\nRefund and return details:\n")
			writeContext(&b, req.Context)
		}
		b.WriteString("\nThank you for being a customer.")
	default:
		b.WriteString("Hello! How can I help you today?")
	}

	return b.String(), nil
}

func writeContext(b *strings.Builder, chunks []contractx.RetrievedChunk) {
	for _, chunk := range chunks {
		fmt.Fprintf(b, "[%s] %s\n", chunk.Source, chunk.Text)
	}
}

var _ contractx.Responder = (*TemplateResponder)(nil)
