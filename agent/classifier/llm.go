package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/techflow/careflow/agent/contract"
)

// LLMClassifier classifies intake messages with a chat model constrained to a
// JSON contract. Output that violates the contract is rejected rather than
// guessed at; callers can fall back to KeywordClassifier.
type LLMClassifier struct {
	chatModel    einomodel.BaseChatModel
	systemPrompt string
}

type llmClassification struct {
	Intent               string `json:"intent"`
	CustomerEmail        string `json:"customer_email"`
	CancellationReason   string `json:"cancellation_reason"`
	ExplicitConfirmation bool   `json:"explicit_confirmation"`
}

func NewLLMClassifier(chatModel einomodel.BaseChatModel, systemPrompt string) (*LLMClassifier, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("%w: chat model is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: system prompt is required", contractx.ErrValidation)
	}
	return &LLMClassifier{chatModel: chatModel, systemPrompt: systemPrompt}, nil
}

func (c *LLMClassifier) Classify(ctx context.Context, userMessage string) (contractx.Classification, error) {
	if strings.TrimSpace(userMessage) == "" {
		return contractx.Classification{}, fmt.Errorf("%w: user message is required", contractx.ErrValidation)
	}

	out, err := c.chatModel.Generate(ctx, []*schema.Message{
		schema.SystemMessage(c.systemPrompt),
		schema.UserMessage(userMessage),
	})
	if err != nil {
		return contractx.Classification{}, fmt.Errorf("%w: classify: %v", contractx.ErrModelInvoke, err)
	}

	var parsed llmClassification
	if err := json.Unmarshal([]byte(stripCodeFence(out.Content)), &parsed); err != nil {
		return contractx.Classification{}, fmt.Errorf("%w: parse classification: %v", contractx.ErrSchemaViolation, err)
	}

	intent := contractx.Intent(strings.TrimSpace(strings.ToLower(parsed.Intent)))
	if !contractx.KnownIntent(intent) {
		intent = contractx.IntentGeneralQuestion
	}

	cls := contractx.Classification{
		Intent:               intent,
		CustomerEmail:        strings.ToLower(strings.TrimSpace(parsed.CustomerEmail)),
		ExplicitConfirmation: parsed.ExplicitConfirmation,
	}
	if cls.CustomerEmail == "" {
		cls.CustomerEmail = ExtractEmail(userMessage)
	}
	if intent == contractx.IntentCancelInsurance {
		cls.CancellationReason = NormalizeReason(parsed.CancellationReason)
	}
	return cls, nil
}

// stripCodeFence removes a markdown code fence wrapper if the model added one.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

var _ contractx.Classifier = (*LLMClassifier)(nil)
