package costanalysis

import (
	"context"
	"time"

	aicost "cost-analysis-engine/internal/analysis/ai-cost"
	"cost-analysis-engine/internal/analysis/calculator"
	llminsights "cost-analysis-engine/internal/analysis/llm-insights"
	"cost-analysis-engine/internal/common/metrics"
	"cost-analysis-engine/internal/models"
)

// ScenarioAnalysis runs Analyze with default options and derives the
// conservative and aggressive cases from it.
func (s *Service) ScenarioAnalysis(ctx context.Context, profile models.UserProfile) (*models.ScenarioAnalysis, error) {
	return s.ScenarioAnalysisWithOptions(ctx, profile, models.DefaultAnalysisOptions())
}

// ScenarioAnalysisWithOptions derives the other scenarios by rescaling the
// moderate AI workload. Providers are queried once.
func (s *Service) ScenarioAnalysisWithOptions(ctx context.Context, profile models.UserProfile, opts models.AnalysisOptions) (*models.ScenarioAnalysis, error) {
	start := time.Now()
	defer func() {
		metrics.AnalysisDuration.WithLabelValues("scenarios").Observe(time.Since(start).Seconds())
	}()

	moderate, err := s.Analyze(ctx, profile, opts)
	if err != nil {
		return nil, err
	}
	return &models.ScenarioAnalysis{
		Conservative: deriveScenario(moderate, aicost.ConservativeFactor, "conservative"),
		Moderate:     moderate,
		Aggressive:   deriveScenario(moderate, aicost.AggressiveFactor, "aggressive"),
	}, nil
}

func deriveScenario(base *models.CostAnalysis, factor float64, name string) *models.CostAnalysis {
	ai := aicost.Scale(&base.AICostData, factor)
	cmp := calculator.Compare(base.Comparison.Human, ai.AnnualCosts, base.SalaryData.Confidence, ai.Confidence)
	salary := base.SalaryData
	insights := llminsights.TemplateInsights(base.Profile, &salary, ai, cmp)

	out := *base
	out.AICostData = *ai
	out.Comparison = cmp
	out.Insights = *insights
	out.Confidence = cmp.Confidence
	out.Metadata.AnalysisID = base.Metadata.AnalysisID + "-" + name
	return &out
}
