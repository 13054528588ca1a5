package tool

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	contractx "github.com/techflow/careflow/agent/contract"
)

//go:embed data/retention_rules.json
var defaultRulesRaw []byte

// OfferRules is the retention business-rule table: cancellation reason ->
// rule key -> ranked offers. For financial hardship the rule key is the
// customer tier; for product and value concerns the first available offer
// wins regardless of tier.
type OfferRules struct {
	byReason map[contractx.CancellationReason]map[string][]contractx.RetentionOffer
}

// LoadDefaultOfferRules parses the embedded rule table.
func LoadDefaultOfferRules() (*OfferRules, error) {
	return ParseOfferRules(defaultRulesRaw)
}

func ParseOfferRules(raw []byte) (*OfferRules, error) {
	var doc map[contractx.CancellationReason]map[string][]contractx.RetentionOffer
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse retention rules: %w", err)
	}
	if len(doc) == 0 {
		return nil, fmt.Errorf("retention rules are empty")
	}
	return &OfferRules{byReason: doc}, nil
}

// Calculate picks the offer for a (tier, reason) pair. ErrNoOffer means the
// table has no entry, which callers treat as a recoverable not-found.
func (r *OfferRules) Calculate(tier string, reason contractx.CancellationReason) (*contractx.RetentionOffer, error) {
	if !contractx.KnownReason(reason) {
		return nil, fmt.Errorf("unknown cancellation reason %q", reason)
	}
	rules, ok := r.byReason[reason]
	if !ok || len(rules) == 0 {
		return nil, fmt.Errorf("%w: reason %s", ErrNoOffer, reason)
	}

	if reason == contractx.ReasonFinancialHardship {
		key := strings.ToLower(strings.TrimSpace(tier)) + "_customers"
		offers := rules[key]
		if len(offers) == 0 {
			return nil, fmt.Errorf("%w: tier %q, reason %s", ErrNoOffer, tier, reason)
		}
		offer := offers[0]
		return &offer, nil
	}

	// Deterministic first-available across categories.
	keys := make([]string, 0, len(rules))
	for k := range rules {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if offers := rules[k]; len(offers) > 0 {
			offer := offers[0]
			return &offer, nil
		}
	}
	return nil, fmt.Errorf("%w: reason %s", ErrNoOffer, reason)
}
