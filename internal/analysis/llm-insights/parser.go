package llminsights

import (
	"regexp"
	"strings"

	datavalidator "cost-analysis-engine/internal/analysis/data-validator"
	"cost-analysis-engine/internal/models"
)

// HeuristicConfidence is the provider confidence of insights recovered by
// the line scanner rather than from a valid JSON object.
const HeuristicConfidence = 0.5

// DefaultStructuredConfidence applies when a valid object omits confidence.
const DefaultStructuredConfidence = 0.8

type insightsPayload struct {
	Summary         string   `json:"summary"`
	Findings        []string `json:"findings"`
	Recommendations []string `json:"recommendations"`
	RiskFactors     []string `json:"riskFactors"`
	Assumptions     []string `json:"assumptions"`
	Confidence      *float64 `json:"confidence"`
}

// ExtractJSONObject returns the first balanced {...} object in s. Braces
// inside JSON strings, including escaped quotes, are ignored.
func ExtractJSONObject(s string) (string, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// parseStructured runs both stages: brace scan, then schema validation and
// decoding. It returns nil when either stage fails.
func parseStructured(v *datavalidator.Validator, content string) *models.CostAnalysisInsights {
	obj, ok := ExtractJSONObject(content)
	if !ok {
		return nil
	}
	p := datavalidator.Decode[insightsPayload](v, datavalidator.InsightsSchema, "llm", []byte(obj))
	if p == nil {
		return nil
	}
	conf := DefaultStructuredConfidence
	if p.Confidence != nil {
		conf = *p.Confidence
	}
	return &models.CostAnalysisInsights{
		Summary:         strings.TrimSpace(p.Summary),
		Findings:        p.Findings,
		Recommendations: p.Recommendations,
		RiskFactors:     p.RiskFactors,
		Assumptions:     p.Assumptions,
		Confidence:      conf,
		GeneratedBy:     models.InsightSourceLLM,
	}
}

var (
	bulletPrefix   = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s+`)
	recommendWords = []string{"recommend", "should", "consider", "implement", "start", "adopt", "pilot", "invest"}
	riskWords      = []string{"risk", "concern", "challenge", "limitation", "caution", "downside", "may not"}
)

// parseHeuristic collects bullet lines from free text and sorts them into
// recommendations, risks and findings by keyword. The first plain line
// becomes the summary. It returns nil when no bullets are present.
func parseHeuristic(content string) *models.CostAnalysisInsights {
	var summary string
	out := &models.CostAnalysisInsights{
		Confidence:  HeuristicConfidence,
		GeneratedBy: models.InsightSourceLLMHeuristic,
	}
	bullets := 0
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		loc := bulletPrefix.FindStringIndex(line)
		if loc == nil {
			if summary == "" && !strings.HasPrefix(trimmed, "#") && !strings.HasSuffix(trimmed, ":") {
				summary = trimmed
			}
			continue
		}
		item := strings.TrimSpace(line[loc[1]:])
		if item == "" {
			continue
		}
		bullets++
		lower := strings.ToLower(item)
		switch {
		case containsAny(lower, riskWords):
			out.RiskFactors = append(out.RiskFactors, item)
		case containsAny(lower, recommendWords):
			out.Recommendations = append(out.Recommendations, item)
		default:
			out.Findings = append(out.Findings, item)
		}
	}
	if bullets == 0 {
		return nil
	}
	if summary == "" {
		switch {
		case len(out.Findings) > 0:
			summary = out.Findings[0]
		case len(out.Recommendations) > 0:
			summary = out.Recommendations[0]
		default:
			summary = out.RiskFactors[0]
		}
	}
	out.Summary = summary
	return out
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
