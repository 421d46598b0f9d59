// internal/models/ai_cost.go
package models

// ModelPricing is the per-token price of a language model.
type ModelPricing struct {
	ModelID                string  `json:"modelId"`
	PromptCostPerToken     float64 `json:"promptCostPerToken"`
	CompletionCostPerToken float64 `json:"completionCostPerToken"`
	FreeTier               bool    `json:"freeTier"`
}

// TaskEstimate is the workload an AI deployment is expected to absorb.
type TaskEstimate struct {
	TokensPerTask      int     `json:"tokensPerTask"`
	TasksPerDay        float64 `json:"tasksPerDay"`
	WorkingDaysPerYear int     `json:"workingDaysPerYear"`
	AnnualTokens       float64 `json:"annualTokens"`
	PromptTokens       float64 `json:"promptTokens"`
	CompletionTokens   float64 `json:"completionTokens"`
}

// AnnualCosts is the yearly AI cost breakdown.
// Total always equals TokenCosts + InfrastructureCosts + MaintenanceCosts.
type AnnualCosts struct {
	TokenCosts          float64 `json:"tokenCosts"`
	InfrastructureCosts float64 `json:"infrastructureCosts"`
	MaintenanceCosts    float64 `json:"maintenanceCosts"`
	Total               float64 `json:"total"`
}

type AICostData struct {
	Model        ModelPricing `json:"model"`
	TaskEstimate TaskEstimate `json:"taskEstimate"`
	AnnualCosts  AnnualCosts  `json:"annualCosts"`
	ScaleFactor  float64      `json:"scaleFactor"`
	Confidence   float64      `json:"confidence"`
}
