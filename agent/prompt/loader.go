package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/classifier.txt
	classifierRaw string

	//go:embed template/retention.txt
	retentionRaw string

	//go:embed template/tech_support.txt
	techSupportRaw string

	//go:embed template/billing.txt
	billingRaw string

	//go:embed template/processor.txt
	processorRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Classifier  string
	Retention   string
	TechSupport string
	Billing     string
	Processor   string
}

// LoadPromptSet returns the embedded prompts with surrounding whitespace
// removed.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Classifier:  strings.TrimSpace(classifierRaw),
		Retention:   strings.TrimSpace(retentionRaw),
		TechSupport: strings.TrimSpace(techSupportRaw),
		Billing:     strings.TrimSpace(billingRaw),
		Processor:   strings.TrimSpace(processorRaw),
	}
}
