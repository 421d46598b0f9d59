// pkg/pricing/schema.go
package pricing

type Registry struct {
	Version     string  `json:"version"`
	LastUpdated string  `json:"lastUpdated"`
	Currency    string  `json:"currency"`
	Models      []Model `json:"models"`
}

// Model prices are per token, in the registry currency.
type Model struct {
	ID                     string   `json:"id"`
	DisplayName            string   `json:"displayName"`
	Provider               string   `json:"provider"`
	PromptCostPerToken     float64  `json:"promptCostPerToken"`
	CompletionCostPerToken float64  `json:"completionCostPerToken"`
	FreeTier               bool     `json:"freeTier"`
	Aliases                []string `json:"aliases"`
}
