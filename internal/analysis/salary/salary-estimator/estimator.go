// Package salaryestimator produces table-based salary estimates. It is the
// last tier of the salary chain and always returns data.
package salaryestimator

import (
	"context"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	referencedata "cost-analysis-engine/internal/analysis/reference-data"
	"cost-analysis-engine/internal/common/logger"
	"cost-analysis-engine/internal/models"
)

const (
	ProviderName = "estimated"

	BaseConfidence    = 0.6
	BlendedConfidence = 0.65
	// MaxHintDeviation bounds how far a salary hint may sit from the
	// estimate, relative to the estimate, and still be blended in.
	MaxHintDeviation = 0.5
)

var hintNumber = regexp.MustCompile(`(\d[\d,]*(?:\.\d+)?)\s*([kKmM]\b)?`)

type Estimator struct {
	logger logger.Logger
	now    func() time.Time
}

func New(log logger.Logger) *Estimator {
	return &Estimator{
		logger: logger.ForComponent(log, "salary-estimator"),
		now:    time.Now,
	}
}

func (e *Estimator) Name() string { return ProviderName }

func (e *Estimator) Configured() bool { return true }

// FetchSalary satisfies the provider contract. It never returns nil.
func (e *Estimator) FetchSalary(_ context.Context, profile models.UserProfile) *models.SalaryData {
	return e.Estimate(profile)
}

// Estimate multiplies the occupation's base salary by the experience and
// location multipliers, then blends in the profile's salary hint when it is
// close enough to be plausible.
func (e *Estimator) Estimate(profile models.UserProfile) *models.SalaryData {
	base := referencedata.BaseSalary(profile.Occupation)
	expMult := referencedata.ExperienceMultiplier(profile.Experience)
	locMult := referencedata.LocationMultiplier(profile.Location)
	estimate := base * expMult * locMult

	adj := models.SalaryAdjustment{
		LocationMultiplier:   locMult,
		ExperienceMultiplier: expMult,
		MatchScore:           1.0,
	}
	if m, ok := referencedata.BestMatch(profile.Occupation); ok {
		adj.ClassificationCode = m.Code
		adj.MatchScore = m.Score
	}
	if code, ok := referencedata.AreaCode(profile.Location); ok {
		adj.AreaCode = code
	}

	median := estimate
	confidence := BaseConfidence
	if hint, ok := ParseSalaryHint(profile.SalaryRange); ok {
		adj.HintValue = hint
		if math.Abs(hint-estimate)/estimate <= MaxHintDeviation {
			median = (estimate + hint) / 2
			confidence = BlendedConfidence
			adj.BlendedWithHint = true
		} else {
			e.logger.Debug("Salary hint ignored, too far from estimate", map[string]interface{}{
				"hint":     hint,
				"estimate": estimate,
			})
		}
	}

	return &models.SalaryData{
		Median:      median,
		Currency:    "USD",
		Source:      models.SalarySourceEstimated,
		Confidence:  confidence,
		LastUpdated: e.now().UTC(),
		Adjustments: adj,
	}
}

// ParseSalaryHint reads a free-form salary hint such as "$95k",
// "80,000 - 100,000", "$80-100k" or "1.2M". Ranges resolve to their midpoint.
// A suffix on one end of a range applies to a bare short number on the other.
func ParseSalaryHint(hint string) (float64, bool) {
	hint = strings.TrimSpace(hint)
	if hint == "" {
		return 0, false
	}
	matches := hintNumber.FindAllStringSubmatch(hint, 2)
	if len(matches) == 0 {
		return 0, false
	}

	type part struct {
		value float64
		scale float64
	}
	parts := make([]part, 0, len(matches))
	for _, m := range matches {
		v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err != nil {
			continue
		}
		p := part{value: v, scale: 1}
		switch strings.ToLower(m[2]) {
		case "k":
			p.scale = 1_000
		case "m":
			p.scale = 1_000_000
		}
		parts = append(parts, p)
	}

	if len(parts) == 2 {
		a, b := &parts[0], &parts[1]
		switch {
		case a.scale == 1 && b.scale > 1 && a.value < 1_000:
			a.scale = b.scale
		case b.scale == 1 && a.scale > 1 && b.value < 1_000:
			b.scale = a.scale
		}
	}

	values := make([]float64, 0, len(parts))
	for _, p := range parts {
		if v := p.value * p.scale; v > 0 {
			values = append(values, v)
		}
	}

	switch len(values) {
	case 0:
		return 0, false
	case 1:
		return values[0], true
	default:
		return (values[0] + values[1]) / 2, true
	}
}
