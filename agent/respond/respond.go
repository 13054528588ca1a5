package respond

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/techflow/careflow/agent/contract"
)

// LLMResponder phrases node replies with a chat model. Each node supplies its
// own system prompt; the structured request is rendered into the user turn so
// the model sees the full situation without access to any tools.
type LLMResponder struct {
	chatModel einomodel.BaseChatModel
	prompts   map[string]string
}

func NewLLMResponder(chatModel einomodel.BaseChatModel, prompts map[string]string) (*LLMResponder, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("%w: chat model is required", contractx.ErrValidation)
	}
	if len(prompts) == 0 {
		return nil, fmt.Errorf("%w: at least one node prompt is required", contractx.ErrValidation)
	}
	return &LLMResponder{chatModel: chatModel, prompts: prompts}, nil
}

func (r *LLMResponder) Respond(ctx context.Context, req contractx.ReplyRequest) (string, error) {
	systemPrompt, ok := r.prompts[req.Node]
	if !ok {
		return "", fmt.Errorf("%w: no prompt registered for node %q", contractx.ErrValidation, req.Node)
	}

	out, err := r.chatModel.Generate(ctx, []*schema.Message{
		schema.SystemMessage(systemPrompt + "\n\n" + renderSituation(req)),
		schema.UserMessage(req.UserMessage),
	})
	if err != nil {
		return "", fmt.Errorf("%w: respond for node %s: %v", contractx.ErrModelInvoke, req.Node, err)
	}

	reply := strings.TrimSpace(out.Content)
	if reply == "" {
		return "", fmt.Errorf("%w: empty reply for node %s", contractx.ErrSchemaViolation, req.Node)
	}
	return reply, nil
}

func renderSituation(req contractx.ReplyRequest) string {
	var b strings.Builder

	if req.Intent != "" {
		fmt.Fprintf(&b, "Intent: %s\n", req.Intent)
	}
	if req.CancellationReason != "" {
		fmt.Fprintf(&b, "Cancellation reason: %s\n", req.CancellationReason)
	}

	if c := req.Customer; c != nil {
		b.WriteString("\nCustomer information:\n")
		fmt.Fprintf(&b, "- Name: %s\n", c.Name)
		fmt.Fprintf(&b, "- Customer ID: %s\n", c.CustomerID)
		fmt.Fprintf(&b, "- Plan: %s\n", c.PlanType)
		fmt.Fprintf(&b, "- Monthly charge: $%.2f\n", c.MonthlyCharge)
		fmt.Fprintf(&b, "- Account health score: %d\n", c.AccountHealthScore)
		fmt.Fprintf(&b, "- Tenure: %d months\n", c.TenureMonths)
		fmt.Fprintf(&b, "- Tier: %s\n", c.Tier)
	}

	if o := req.Offer; o != nil {
		b.WriteString("\nAvailable retention offer:\n")
		fmt.Fprintf(&b, "- Type: %s\n", o.Kind)
		fmt.Fprintf(&b, "- Description: %s\n", o.Description)
		if o.NewCost > 0 {
			fmt.Fprintf(&b, "- New cost: $%.2f\n", o.NewCost)
		}
		if o.DurationMonths > 0 {
			fmt.Fprintf(&b, "- Duration: %d months\n", o.DurationMonths)
		}
		if o.Authorization != "" {
			fmt.Fprintf(&b, "- Authorization: %s\n", o.Authorization)
		}
	}

	if u := req.StatusUpdate; u != nil {
		b.WriteString("\nProcessed status update:\n")
		fmt.Fprintf(&b, "- Customer ID: %s\n", u.CustomerID)
		fmt.Fprintf(&b, "- Action: %s\n", u.Action)
		fmt.Fprintf(&b, "- At: %s\n", u.Timestamp.Format("2006-01-02 15:04:05"))
	}

	if len(req.Context) > 0 {
		b.WriteString("\nRelevant policy information:\n")
		for _, chunk := range req.Context {
			fmt.Fprintf(&b, "[%s] %s\n", chunk.Source, chunk.Text)
		}
	} else {
		b.WriteString("\nNo specific policy context retrieved.\n")
	}

	return b.String()
}

var _ contractx.Responder = (*LLMResponder)(nil)
