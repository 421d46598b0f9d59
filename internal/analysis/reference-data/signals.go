package referencedata

import "strings"

// MarketSignal describes labor demand for an occupation.
type MarketSignal struct {
	// GrowthRate is projected ten-year employment growth in percent.
	GrowthRate  float64
	DemandTrend string
}

// IndustrySignal describes the employer's industry.
type IndustrySignal struct {
	AverageSalary    float64
	AutomationRisk   float64
	CompetitionLevel string
}

// ContextSignals combines both signal tables for one profile.
type ContextSignals struct {
	Industry         string  `json:"industry"`
	AverageSalary    float64 `json:"industryAverageSalary"`
	GrowthRate       float64 `json:"growthRate"`
	AutomationRisk   float64 `json:"automationRisk"`
	DemandTrend      string  `json:"demandTrend"`
	CompetitionLevel string  `json:"competitionLevel"`
}

var (
	defaultMarketSignal   = MarketSignal{GrowthRate: 3.0, DemandTrend: "stable"}
	defaultIndustrySignal = IndustrySignal{AverageSalary: 70000, AutomationRisk: 0.5, CompetitionLevel: "moderate"}
)

var marketSignals = map[string]MarketSignal{
	"software developer":              {17.0, "rising"},
	"web developer":                   {8.0, "rising"},
	"data scientist":                  {35.0, "rising"},
	"database administrator":          {8.0, "stable"},
	"systems administrator":           {-3.0, "declining"},
	"it manager":                      {15.0, "rising"},
	"project manager":                 {6.0, "stable"},
	"graphic designer":                {3.0, "stable"},
	"technical writer":                {4.0, "stable"},
	"accountant":                      {4.0, "stable"},
	"financial analyst":               {8.0, "stable"},
	"marketing specialist":            {13.0, "rising"},
	"sales representative":            {1.0, "stable"},
	"customer service representative": {-5.0, "declining"},
	"administrative assistant":        {-10.0, "declining"},
	"bookkeeper":                      {-6.0, "declining"},
	"human resources specialist":      {6.0, "stable"},
	"paralegal":                       {4.0, "stable"},
	"lawyer":                          {8.0, "stable"},
	"registered nurse":                {6.0, "rising"},
	"content writer":                  {4.0, "stable"},
	"data entry clerk":                {-26.0, "declining"},
}

var industrySignals = map[string]IndustrySignal{
	"technology":    {105000, 0.45, "high"},
	"finance":       {95000, 0.6, "high"},
	"healthcare":    {80000, 0.3, "moderate"},
	"education":     {60000, 0.35, "low"},
	"retail":        {45000, 0.65, "high"},
	"manufacturing": {65000, 0.7, "moderate"},
	"legal":         {90000, 0.5, "moderate"},
	"marketing":     {72000, 0.55, "high"},
	"government":    {70000, 0.35, "low"},
	"consulting":    {98000, 0.45, "high"},
}

var industryAliases = map[string]string{
	"tech":          "technology",
	"software":      "technology",
	"it":            "technology",
	"banking":       "finance",
	"financial":     "finance",
	"health":        "healthcare",
	"medical":       "healthcare",
	"e-commerce":    "retail",
	"ecommerce":     "retail",
	"law":           "legal",
	"public":        "government",
	"public sector": "government",
}

func normalizeIndustry(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if canonical, ok := industryAliases[s]; ok {
		return canonical
	}
	return s
}

// Signals returns the market and industry signals for an occupation and
// industry, using documented defaults for anything unmapped.
func Signals(occupation, industry string) ContextSignals {
	market := defaultMarketSignal
	if o, ok := resolve(occupation); ok {
		if m, ok := marketSignals[o.Key]; ok {
			market = m
		}
	}
	ind := defaultIndustrySignal
	key := normalizeIndustry(industry)
	if s, ok := industrySignals[key]; ok {
		ind = s
	}
	if key == "" {
		key = "general"
	}
	return ContextSignals{
		Industry:         key,
		AverageSalary:    ind.AverageSalary,
		GrowthRate:       market.GrowthRate,
		AutomationRisk:   ind.AutomationRisk,
		DemandTrend:      market.DemandTrend,
		CompetitionLevel: ind.CompetitionLevel,
	}
}
