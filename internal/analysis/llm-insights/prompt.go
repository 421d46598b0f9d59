package llminsights

import (
	"fmt"
	"strings"

	"cost-analysis-engine/internal/analysis/calculator"
	referencedata "cost-analysis-engine/internal/analysis/reference-data"
	"cost-analysis-engine/internal/models"
)

const systemPrompt = `You are a workforce cost analyst. You compare the cost of human labor with the cost of AI automation and give practical, balanced advice.
Respond with a single JSON object and nothing else, using exactly these keys:
{"summary": string, "findings": [string], "recommendations": [string], "riskFactors": [string], "assumptions": [string], "confidence": number between 0 and 1}`

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// buildUserPrompt lays out the profile, the numeric comparison, the typical
// tasks and the market context for the model.
func buildUserPrompt(profile models.UserProfile, salary *models.SalaryData, ai *models.AICostData, cmp models.CostComparison) string {
	currency := salary.Currency
	signals := referencedata.Signals(profile.Occupation, profile.Industry)

	var b strings.Builder
	b.WriteString("Analyze the cost of automating this role with AI.\n\n")

	b.WriteString("Role:\n")
	fmt.Fprintf(&b, "- Occupation: %s\n", profile.Occupation)
	fmt.Fprintf(&b, "- Experience: %s\n", referencedata.NormalizeExperience(profile.Experience))
	if profile.Location != "" {
		fmt.Fprintf(&b, "- Location: %s\n", profile.Location)
	}
	if len(profile.Skills) > 0 {
		fmt.Fprintf(&b, "- Skills: %s\n", strings.Join(profile.TopSkills(10), ", "))
	}

	b.WriteString("\nCost comparison (annual):\n")
	fmt.Fprintf(&b, "- Median salary: %s (source: %s, confidence %.2f)\n",
		calculator.FormatCurrency(salary.Median, currency), salary.Source, salary.Confidence)
	fmt.Fprintf(&b, "- Fully loaded human cost: %s\n", calculator.FormatCurrency(cmp.Human.Total, currency))
	fmt.Fprintf(&b, "- AI cost with %s: %s (tokens %s, infrastructure %s, maintenance %s)\n",
		ai.Model.ModelID,
		calculator.FormatCurrency(cmp.AI.Total, currency),
		calculator.FormatCurrency(cmp.AI.TokenCosts, currency),
		calculator.FormatCurrency(cmp.AI.InfrastructureCosts, currency),
		calculator.FormatCurrency(cmp.AI.MaintenanceCosts, currency))
	fmt.Fprintf(&b, "- Savings: %s (%.1f%%)\n", calculator.FormatCurrency(cmp.Savings.Absolute, currency), cmp.Savings.Percentage)
	fmt.Fprintf(&b, "- Payback period: %s\n", calculator.FormatMonths(cmp.PaybackPeriod))
	fmt.Fprintf(&b, "- Workload: %.1f tasks per day, %d tokens per task\n", ai.TaskEstimate.TasksPerDay, ai.TaskEstimate.TokensPerTask)

	b.WriteString("\nTypical tasks:\n")
	for _, task := range referencedata.TypicalTasks(profile.Occupation) {
		fmt.Fprintf(&b, "- %s\n", task)
	}

	b.WriteString("\nMarket context:\n")
	fmt.Fprintf(&b, "- Industry: %s (average salary %s)\n", signals.Industry, calculator.FormatCurrency(signals.AverageSalary, "USD"))
	fmt.Fprintf(&b, "- Employment growth: %.1f%%, demand trend %s\n", signals.GrowthRate, signals.DemandTrend)
	fmt.Fprintf(&b, "- Industry automation risk: %.0f%%\n", signals.AutomationRisk*100)
	fmt.Fprintf(&b, "- Competition level: %s\n", signals.CompetitionLevel)

	return b.String()
}
