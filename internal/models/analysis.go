// internal/models/analysis.go
package models

import "time"

// InsightSource records how a CostAnalysisInsights value was produced.
type InsightSource string

const (
	InsightSourceLLM          InsightSource = "llm"
	InsightSourceLLMHeuristic InsightSource = "llm-heuristic"
	InsightSourceTemplate     InsightSource = "template"
)

type CostAnalysisInsights struct {
	Summary         string        `json:"summary"`
	Findings        []string      `json:"findings"`
	Recommendations []string      `json:"recommendations"`
	RiskFactors     []string      `json:"riskFactors"`
	Assumptions     []string      `json:"assumptions"`
	Confidence      float64       `json:"confidence"`
	Sources         []string      `json:"sources"`
	GeneratedBy     InsightSource `json:"generatedBy"`
}

type AnalysisMetadata struct {
	AnalysisID       string        `json:"analysisId"`
	AnalyzedAt       time.Time     `json:"analyzedAt"`
	EngineVersion    string        `json:"engineVersion"`
	ProcessingTime   time.Duration `json:"processingTime"`
	CacheHit         bool          `json:"cacheHit"`
	BelowThreshold   bool          `json:"belowThreshold"`
	FallbackAnalysis bool          `json:"fallbackAnalysis"`
}

// CostAnalysis is the unit returned to callers and stored in the cache.
// It is never mutated after construction.
type CostAnalysis struct {
	Profile    UserProfile          `json:"profile"`
	SalaryData SalaryData           `json:"salaryData"`
	AICostData AICostData           `json:"aiCostData"`
	Comparison CostComparison       `json:"comparison"`
	Insights   CostAnalysisInsights `json:"insights"`
	Confidence float64              `json:"confidence"`
	Metadata   AnalysisMetadata     `json:"metadata"`
}

// Clone returns a deep copy that shares no slices or pointers with a.
func (a CostAnalysis) Clone() CostAnalysis {
	out := a
	out.Profile.Skills = cloneStrings(a.Profile.Skills)
	out.SalaryData.Mean = cloneFloat(a.SalaryData.Mean)
	out.SalaryData.Percentile25 = cloneFloat(a.SalaryData.Percentile25)
	out.SalaryData.Percentile75 = cloneFloat(a.SalaryData.Percentile75)
	out.Insights.Findings = cloneStrings(a.Insights.Findings)
	out.Insights.Recommendations = cloneStrings(a.Insights.Recommendations)
	out.Insights.RiskFactors = cloneStrings(a.Insights.RiskFactors)
	out.Insights.Assumptions = cloneStrings(a.Insights.Assumptions)
	out.Insights.Sources = cloneStrings(a.Insights.Sources)
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

func cloneFloat(in *float64) *float64 {
	if in == nil {
		return nil
	}
	v := *in
	return &v
}

type ScenarioAnalysis struct {
	Conservative *CostAnalysis `json:"conservative"`
	Moderate     *CostAnalysis `json:"moderate"`
	Aggressive   *CostAnalysis `json:"aggressive"`
}

// AnalysisOptions controls a single Analyze call. The zero value is not
// useful; start from DefaultAnalysisOptions.
type AnalysisOptions struct {
	UseCache            bool          `json:"useCache"`
	CacheTTL            time.Duration `json:"cacheTtl"`
	FallbackToEstimates bool          `json:"fallbackToEstimates"`
	IncludeInsights     bool          `json:"includeInsights"`
	ConfidenceThreshold float64       `json:"confidenceThreshold"`
	Model               string        `json:"model,omitempty"`
}

func DefaultAnalysisOptions() AnalysisOptions {
	return AnalysisOptions{
		UseCache:            true,
		CacheTTL:            24 * time.Hour,
		FallbackToEstimates: true,
		IncludeInsights:     true,
		ConfidenceThreshold: 0.3,
	}
}

// OptionsOverrides is the partial form of AnalysisOptions accepted from
// outer surfaces. Unset fields keep their defaults.
type OptionsOverrides struct {
	UseCache            *bool    `json:"useCache,omitempty"`
	CacheTTLMillis      *int64   `json:"cacheTtlMs,omitempty"`
	FallbackToEstimates *bool    `json:"fallbackToEstimates,omitempty"`
	IncludeInsights     *bool    `json:"includeInsights,omitempty"`
	ConfidenceThreshold *float64 `json:"confidenceThreshold,omitempty"`
	Model               string   `json:"model,omitempty"`
}

// Apply returns base with every set override applied.
func (o *OptionsOverrides) Apply(base AnalysisOptions) AnalysisOptions {
	if o == nil {
		return base
	}
	if o.UseCache != nil {
		base.UseCache = *o.UseCache
	}
	if o.CacheTTLMillis != nil && *o.CacheTTLMillis > 0 {
		base.CacheTTL = time.Duration(*o.CacheTTLMillis) * time.Millisecond
	}
	if o.FallbackToEstimates != nil {
		base.FallbackToEstimates = *o.FallbackToEstimates
	}
	if o.IncludeInsights != nil {
		base.IncludeInsights = *o.IncludeInsights
	}
	if o.ConfidenceThreshold != nil {
		base.ConfidenceThreshold = *o.ConfidenceThreshold
	}
	if o.Model != "" {
		base.Model = o.Model
	}
	return base
}
