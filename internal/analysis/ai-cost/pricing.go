package aicost

import (
	"strings"

	"cost-analysis-engine/internal/models"
	"cost-analysis-engine/pkg/pricing"
)

const DefaultModel = "meta-llama/llama-3.1-8b-instruct:free"

// Built-in prices in USD per token.
var builtinPricing = []pricing.Model{
	{ID: "gpt-4o", Provider: "openai", PromptCostPerToken: 2.5e-6, CompletionCostPerToken: 10e-6, Aliases: []string{"openai/gpt-4o", "gpt4o"}},
	{ID: "gpt-4o-mini", Provider: "openai", PromptCostPerToken: 0.15e-6, CompletionCostPerToken: 0.6e-6, Aliases: []string{"openai/gpt-4o-mini"}},
	{ID: "claude-3-5-sonnet", Provider: "anthropic", PromptCostPerToken: 3e-6, CompletionCostPerToken: 15e-6, Aliases: []string{"anthropic/claude-3.5-sonnet", "claude-3.5-sonnet"}},
	{ID: "claude-3-haiku", Provider: "anthropic", PromptCostPerToken: 0.25e-6, CompletionCostPerToken: 1.25e-6, Aliases: []string{"anthropic/claude-3-haiku"}},
	{ID: "gemini-flash-1.5", Provider: "google", PromptCostPerToken: 0.075e-6, CompletionCostPerToken: 0.3e-6, Aliases: []string{"google/gemini-flash-1.5"}},
	{ID: DefaultModel, Provider: "meta", FreeTier: true, Aliases: []string{"llama-3.1-8b"}},
	{ID: "mistralai/mistral-7b-instruct:free", Provider: "mistral", FreeTier: true, Aliases: []string{"mistral-7b"}},
}

// PricingTable resolves model ids and aliases to per-token prices.
type PricingTable struct {
	registry pricing.Registry
}

func NewPricingTable() *PricingTable {
	t := &PricingTable{}
	for _, m := range builtinPricing {
		t.registry.Upsert(m)
	}
	return t
}

// Apply overlays every model of reg onto the table.
func (t *PricingTable) Apply(reg *pricing.Registry) int {
	if reg == nil {
		return 0
	}
	for _, m := range reg.Models {
		t.registry.Upsert(m)
	}
	return len(reg.Models)
}

func (t *PricingTable) Lookup(modelID string) (models.ModelPricing, bool) {
	m, ok := t.registry.Find(modelID)
	if !ok {
		return models.ModelPricing{}, false
	}
	return models.ModelPricing{
		ModelID:                m.ID,
		PromptCostPerToken:     m.PromptCostPerToken,
		CompletionCostPerToken: m.CompletionCostPerToken,
		FreeTier:               m.FreeTier,
	}, true
}

// ResolveModel picks the model for a profile: an explicit override, then the
// first skill that names a known model, then fallback.
func (t *PricingTable) ResolveModel(profile models.UserProfile, override, fallback string) string {
	if override = strings.TrimSpace(override); override != "" {
		return override
	}
	for _, s := range profile.Skills {
		if m, ok := t.registry.Find(s); ok {
			return m.ID
		}
	}
	if fallback == "" {
		return DefaultModel
	}
	return fallback
}
