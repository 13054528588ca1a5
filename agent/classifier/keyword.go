package classifier

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	contractx "github.com/techflow/careflow/agent/contract"
)

var emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

// confirmationPhrases mark an explicit cancellation confirmation. A bare
// cancellation request does not count.
var confirmationPhrases = []string{
	"yes, cancel",
	"yes cancel",
	"proceed with cancellation",
	"confirm cancellation",
	"still want to cancel",
	"yes i want to cancel",
	"go ahead and cancel",
}

var cancelPhrases = []string{
	"cancel",
	"cancellation",
	"terminate my plan",
	"end my subscription",
	"stop my care+",
}

var technicalPhrases = []string{
	"not working",
	"won't turn on",
	"wont turn on",
	"broken",
	"malfunction",
	"crash",
	"crashes",
	"overheat",
	"battery drain",
	"screen flicker",
	"error message",
	"defect",
}

var billingPhrases = []string{
	"charge",
	"charged",
	"bill",
	"billing",
	"invoice",
	"payment",
	"double charged",
	"overcharged",
}

// KeywordClassifier is the offline fallback. It covers the messages the demo
// scenarios exercise; anything it cannot place becomes a general question.
type KeywordClassifier struct{}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

func (c *KeywordClassifier) Classify(_ context.Context, userMessage string) (contractx.Classification, error) {
	if strings.TrimSpace(userMessage) == "" {
		return contractx.Classification{}, fmt.Errorf("%w: user message is required", contractx.ErrValidation)
	}

	lower := strings.ToLower(userMessage)

	cls := contractx.Classification{
		Intent:               contractx.IntentGeneralQuestion,
		CustomerEmail:        ExtractEmail(userMessage),
		ExplicitConfirmation: containsAny(lower, confirmationPhrases),
	}

	switch {
	case containsAny(lower, cancelPhrases):
		cls.Intent = contractx.IntentCancelInsurance
		cls.CancellationReason = reasonFromMessage(lower)
	case containsAny(lower, technicalPhrases):
		cls.Intent = contractx.IntentTechnicalIssue
	case containsAny(lower, billingPhrases):
		cls.Intent = contractx.IntentBillingQuestion
	}

	return cls, nil
}

// ExtractEmail returns the first email address in the message, lowercased,
// or an empty string.
func ExtractEmail(message string) string {
	match := emailPattern.FindString(message)
	return strings.ToLower(match)
}

// NormalizeReason maps free-form reason text onto the three known reasons.
// Unclear but non-empty text defaults to service_value; empty stays empty.
func NormalizeReason(raw string) contractx.CancellationReason {
	text := strings.ToLower(strings.TrimSpace(raw))
	if text == "" {
		return ""
	}
	switch {
	case strings.Contains(text, "financial"), strings.Contains(text, "cost"), strings.Contains(text, "afford"):
		return contractx.ReasonFinancialHardship
	case strings.Contains(text, "product"), strings.Contains(text, "device"), strings.Contains(text, "malfunction"):
		return contractx.ReasonProductIssues
	case strings.Contains(text, "value"), strings.Contains(text, "benefit"), strings.Contains(text, "point"):
		return contractx.ReasonServiceValue
	default:
		return contractx.ReasonServiceValue
	}
}

// reasonFromMessage infers a cancellation reason from the whole message. No
// signal means no reason; the retention flow tolerates its absence.
func reasonFromMessage(lower string) contractx.CancellationReason {
	switch {
	case containsAny(lower, []string{"expensive", "afford", "cost", "money", "financial", "tight"}):
		return contractx.ReasonFinancialHardship
	case containsAny(lower, []string{"broken", "defect", "malfunction", "keeps failing", "doesn't work", "doesnt work"}):
		return contractx.ReasonProductIssues
	case containsAny(lower, []string{"value", "never used", "haven't used", "havent used", "benefit", "no point", "don't see the point"}):
		return contractx.ReasonServiceValue
	default:
		return ""
	}
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

var _ contractx.Classifier = (*KeywordClassifier)(nil)
