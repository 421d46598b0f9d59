package costanalysis

import (
	"context"

	aicost "cost-analysis-engine/internal/analysis/ai-cost"
	"cost-analysis-engine/internal/analysis/calculator"
	llminsights "cost-analysis-engine/internal/analysis/llm-insights"
	referencedata "cost-analysis-engine/internal/analysis/reference-data"
	"cost-analysis-engine/internal/models"
)

// Baseline figures for a fully estimated analysis.
const (
	FallbackSalary           = 65000.0
	FallbackSalaryConfidence = 0.3
	FallbackAIConfidence     = 0.5
)

// fallbackAnalysis builds an analysis from baseline figures only. It cannot
// fail and never touches a provider.
func (s *Service) fallbackAnalysis(ctx context.Context, profile models.UserProfile, opts models.AnalysisOptions) *models.CostAnalysis {
	start := s.now()

	salary := &models.SalaryData{
		Median:      FallbackSalary,
		Currency:    "USD",
		Source:      models.SalarySourceEstimated,
		Confidence:  FallbackSalaryConfidence,
		LastUpdated: start.UTC(),
		Adjustments: models.SalaryAdjustment{
			LocationMultiplier:   1.0,
			ExperienceMultiplier: 1.0,
		},
	}

	tasksPerDay, tokensPerTask, _, _ := referencedata.TaskLoad(profile.Occupation)
	annualTokens := tasksPerDay * float64(tokensPerTask) * aicost.WorkingDaysPerYear
	pricing := models.ModelPricing{ModelID: s.config.DefaultModel, FreeTier: true}
	if p, ok := s.deps.AICost.Pricing().Lookup(s.config.DefaultModel); ok {
		pricing = p
	}
	ai := &models.AICostData{
		Model: pricing,
		TaskEstimate: models.TaskEstimate{
			TokensPerTask:      tokensPerTask,
			TasksPerDay:        tasksPerDay,
			WorkingDaysPerYear: aicost.WorkingDaysPerYear,
			AnnualTokens:       annualTokens,
			PromptTokens:       annualTokens * aicost.PromptShare,
			CompletionTokens:   annualTokens * aicost.CompletionShare,
		},
		AnnualCosts: models.AnnualCosts{
			InfrastructureCosts: aicost.InfrastructureCost,
			MaintenanceCosts:    aicost.MaintenanceCost,
			Total:               aicost.InfrastructureCost + aicost.MaintenanceCost,
		},
		ScaleFactor: 1.0,
		Confidence:  FallbackAIConfidence,
	}

	// Baseline inputs are positive constants, so HumanCost cannot fail here.
	human, _ := calculator.HumanCost(salary.Median, 1, 1)
	cmp := calculator.Compare(human, ai.AnnualCosts, salary.Confidence, ai.Confidence)
	insights := llminsights.TemplateInsights(profile, salary, ai, cmp)

	analysis := &models.CostAnalysis{
		Profile:    profile,
		SalaryData: *salary,
		AICostData: *ai,
		Comparison: cmp,
		Insights:   *insights,
		Confidence: cmp.Confidence,
		Metadata: models.AnalysisMetadata{
			AnalysisID:       s.newID(),
			AnalyzedAt:       start.UTC(),
			EngineVersion:    s.config.EngineVersion,
			FallbackAnalysis: true,
			BelowThreshold:   cmp.Confidence < opts.ConfidenceThreshold,
		},
	}
	analysis.Metadata.ProcessingTime = s.now().Sub(start)
	return analysis
}
