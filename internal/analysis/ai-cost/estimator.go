// Package aicost estimates the annual cost of automating a role with an LLM.
package aicost

import (
	"math"

	"cost-analysis-engine/internal/analysis/calculator"
	datavalidator "cost-analysis-engine/internal/analysis/data-validator"
	referencedata "cost-analysis-engine/internal/analysis/reference-data"
	"cost-analysis-engine/internal/common/logger"
	"cost-analysis-engine/internal/models"
)

const (
	WorkingDaysPerYear = 250
	PromptShare        = 0.7
	CompletionShare    = 0.3

	InfrastructureCost = 1200.0
	MaintenanceCost    = 2400.0

	ConservativeFactor = 0.7
	AggressiveFactor   = 1.5

	baseConfidence = 0.8
	minConfidence  = 0.5
	maxConfidence  = 0.95
	// scaleConfidencePenalty is lost per unit of distance from factor 1.
	scaleConfidencePenalty = 0.3
)

type Estimator struct {
	pricing   *PricingTable
	validator *datavalidator.Validator
	logger    logger.Logger
}

func New(table *PricingTable, v *datavalidator.Validator, log logger.Logger) *Estimator {
	if table == nil {
		table = NewPricingTable()
	}
	if v == nil {
		v = datavalidator.New(log)
	}
	return &Estimator{
		pricing:   table,
		validator: v,
		logger:    logger.ForComponent(log, "ai-cost"),
	}
}

func (e *Estimator) Pricing() *PricingTable { return e.pricing }

// Estimate returns the annual AI cost of the profile's workload on modelID,
// or nil when the model is unknown.
func (e *Estimator) Estimate(profile models.UserProfile, modelID string) *models.AICostData {
	price, ok := e.pricing.Lookup(modelID)
	if !ok {
		e.logger.Warn("Unknown model", map[string]interface{}{"model": modelID})
		return nil
	}

	tasksPerDay, tokensPerTask, automation, predictable := referencedata.TaskLoad(profile.Occupation)
	tasksPerDay *= referencedata.TaskVolumeMultiplier(profile.Experience)

	est := taskEstimate(tokensPerTask, tasksPerDay)
	costs, err := calculator.AICost(tokenCost(price, est), InfrastructureCost, MaintenanceCost)
	if err != nil {
		e.logger.Warn("AI cost calculation failed", map[string]interface{}{
			"model": modelID,
			"error": err.Error(),
		})
		return nil
	}

	data := &models.AICostData{
		Model:        price,
		TaskEstimate: est,
		AnnualCosts:  costs,
		ScaleFactor:  1.0,
		Confidence:   Confidence(referencedata.NormalizeExperience(profile.Experience), automation, predictable),
	}
	return e.validator.AICostData(data)
}

// Confidence scores an estimate by how predictable and automatable the work
// is, clamped to [0.5, 0.95].
func Confidence(level referencedata.ExperienceLevel, automation float64, predictable bool) float64 {
	c := baseConfidence
	if predictable {
		c += 0.1
	}
	switch {
	case automation >= 0.8:
		c += 0.05
	case automation <= 0.3:
		c -= 0.1
	}
	switch {
	case referencedata.IsSenior(level):
		c -= 0.05
	case referencedata.IsJunior(level):
		c += 0.05
	}
	return calculator.Round(calculator.Clamp(c, minConfidence, maxConfidence), 2)
}

// Scale recomputes data at factor times the task volume. Token cost scales
// exactly by factor; infrastructure and maintenance stay fixed.
func Scale(data *models.AICostData, factor float64) *models.AICostData {
	if data == nil || !(factor > 0) || math.IsInf(factor, 0) {
		return nil
	}
	out := *data
	out.TaskEstimate = taskEstimate(data.TaskEstimate.TokensPerTask, data.TaskEstimate.TasksPerDay*factor)

	c := data.AnnualCosts
	token := c.TokenCosts * factor
	out.AnnualCosts = models.AnnualCosts{
		TokenCosts:          token,
		InfrastructureCosts: c.InfrastructureCosts,
		MaintenanceCosts:    c.MaintenanceCosts,
		Total:               token + c.InfrastructureCosts + c.MaintenanceCosts,
	}
	out.ScaleFactor = data.ScaleFactor * factor
	out.Confidence = calculator.Round(calculator.Clamp01(data.Confidence*(1-scaleConfidencePenalty*math.Abs(factor-1))), 2)
	return &out
}

func taskEstimate(tokensPerTask int, tasksPerDay float64) models.TaskEstimate {
	annual := float64(tokensPerTask) * tasksPerDay * WorkingDaysPerYear
	return models.TaskEstimate{
		TokensPerTask:      tokensPerTask,
		TasksPerDay:        tasksPerDay,
		WorkingDaysPerYear: WorkingDaysPerYear,
		AnnualTokens:       annual,
		PromptTokens:       annual * PromptShare,
		CompletionTokens:   annual * CompletionShare,
	}
}

func tokenCost(p models.ModelPricing, est models.TaskEstimate) float64 {
	if p.FreeTier {
		return 0
	}
	return est.PromptTokens*p.PromptCostPerToken + est.CompletionTokens*p.CompletionCostPerToken
}
