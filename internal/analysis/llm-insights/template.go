package llminsights

import (
	"fmt"
	"math"

	"cost-analysis-engine/internal/analysis/calculator"
	referencedata "cost-analysis-engine/internal/analysis/reference-data"
	"cost-analysis-engine/internal/models"

	"github.com/dustin/go-humanize"
)

// strongSavingsPercent is the savings share above which the template
// recommends automation without reservation.
const strongSavingsPercent = 50.0

var templateRecommendations = []string{
	"Pilot AI assistance on the most repetitive tasks before any wider rollout",
	"Keep a human reviewer in the loop for quality-critical output",
	"Track actual token usage against this estimate during the first quarter",
	"Re-run the analysis when salary or model pricing data changes",
}

var templateRiskFactors = []string{
	"AI output quality varies and needs ongoing review",
	"Model pricing and availability can change at short notice",
	"Integration and change-management effort is not included in the estimate",
}

// TemplateInsights builds deterministic insights from the numbers alone.
func TemplateInsights(profile models.UserProfile, salary *models.SalaryData, ai *models.AICostData, cmp models.CostComparison) *models.CostAnalysisInsights {
	occupation := referencedata.NormalizeOccupation(profile.Occupation)
	if occupation == "" {
		occupation = "this role"
	}
	currency := "USD"
	salaryConf, aiConf := 0.0, 0.0
	source := "unknown"
	model := "unknown"
	if salary != nil {
		currency = salary.Currency
		salaryConf = salary.Confidence
		source = string(salary.Source)
	}
	if ai != nil {
		aiConf = ai.Confidence
		model = ai.Model.ModelID
	}

	saving := calculator.FormatCurrency(math.Abs(cmp.Savings.Absolute), currency)
	pct := calculator.Round(cmp.Savings.Percentage, 1)

	var summary string
	switch {
	case cmp.Savings.Absolute > 0 && cmp.Savings.Percentage >= strongSavingsPercent:
		summary = fmt.Sprintf("Automating much of the %s workload could save about %s a year (%.1f%% of the fully loaded cost), a strong case for AI assistance.", occupation, saving, pct)
	case cmp.Savings.Absolute > 0:
		summary = fmt.Sprintf("AI assistance for a %s could save about %s a year (%.1f%%), a moderate case that depends on execution.", occupation, saving, pct)
	default:
		summary = fmt.Sprintf("AI automation for a %s would cost about %s a year more than the current role, so the case for automation is weak.", occupation, saving)
	}

	findings := []string{
		fmt.Sprintf("Fully loaded human cost: %s per year", calculator.FormatCurrency(cmp.Human.Total, currency)),
		fmt.Sprintf("Estimated AI cost: %s per year", calculator.FormatCurrency(cmp.AI.Total, currency)),
		fmt.Sprintf("Payback period: %s", calculator.FormatMonths(cmp.PaybackPeriod)),
	}
	if ai != nil {
		findings = append(findings, fmt.Sprintf("Estimated workload: %.0f tasks per day, %s tokens per year",
			ai.TaskEstimate.TasksPerDay, humanize.Comma(int64(ai.TaskEstimate.AnnualTokens))))
	}

	risks := append([]string(nil), templateRiskFactors...)
	if salaryConf < 0.5 {
		risks = append(risks, "Salary figures are estimated and may differ from the local market")
	}
	if cmp.PaybackPeriod.IsInfinite() {
		risks = append(risks, "The infrastructure investment is never recovered at current figures")
	}

	return &models.CostAnalysisInsights{
		Summary:         summary,
		Findings:        findings,
		Recommendations: append([]string(nil), templateRecommendations...),
		RiskFactors:     risks,
		Assumptions:     templateAssumptions(),
		Confidence:      calculator.Round(math.Min(salaryConf, aiConf), 2),
		Sources:         []string{"salary:" + source, "model:" + model},
		GeneratedBy:     models.InsightSourceTemplate,
	}
}

func templateAssumptions() []string {
	return []string{
		"250 working days per year",
		fmt.Sprintf("Benefits at %.0f%% of salary and overhead at %.0f%% of salary plus benefits", calculator.BenefitsRate*100, calculator.OverheadRate*100),
		"Tokens split 70% prompt and 30% completion",
		"Fixed AI infrastructure of $1,200 and maintenance of $2,400 per year",
	}
}
