package analyzecost

import "cost-analysis-engine/internal/models"

type Mode string

const (
	ModeFull      Mode = "full"
	ModeQuick     Mode = "quick"
	ModeScenarios Mode = "scenarios"
)

type Input struct {
	Profile models.UserProfile       `json:"profile"`
	Options *models.OptionsOverrides `json:"options,omitempty"`
	Mode    Mode                     `json:"mode,omitempty"`
}

// Output carries exactly one of its fields, chosen by the input mode.
type Output struct {
	Analysis   *models.CostAnalysis     `json:"analysis,omitempty"`
	Comparison *models.QuickComparison  `json:"comparison,omitempty"`
	Scenarios  *models.ScenarioAnalysis `json:"scenarios,omitempty"`
}
