// Package calculator holds the pure cost formulas. Nothing here performs I/O
// or keeps state.
package calculator

import (
	"errors"
	"fmt"
	"math"

	"cost-analysis-engine/internal/models"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

const (
	BenefitsRate = 0.3
	// OverheadRate applies to salary plus benefits.
	OverheadRate = 0.2
	// DataSourceQuality is the fixed third input of the confidence blend.
	DataSourceQuality = 0.8

	salaryWeight  = 0.4
	aiWeight      = 0.3
	qualityWeight = 0.3
)

var (
	ErrInvalidSalary = errors.New("INVALID_SALARY")
	ErrInvalidAICost = errors.New("INVALID_AI_COST")
)

// HumanCost computes the fully loaded annual cost of an employee:
// base = median × location × experience, benefits = 30% of base,
// overhead = 20% of base plus benefits, total = base × 1.3 × 1.2.
func HumanCost(median, locationAdj, experienceAdj float64) (models.HumanCost, error) {
	if !(median > 0) || math.IsInf(median, 0) {
		return models.HumanCost{}, fmt.Errorf("%w: median %v", ErrInvalidSalary, median)
	}
	if !(locationAdj > 0) || !(experienceAdj > 0) {
		return models.HumanCost{}, fmt.Errorf("%w: multipliers %v, %v", ErrInvalidSalary, locationAdj, experienceAdj)
	}

	base := median * locationAdj * experienceAdj
	loaded := base * (1 + BenefitsRate)
	return models.HumanCost{
		Salary:   base,
		Benefits: base * BenefitsRate,
		Overhead: loaded * OverheadRate,
		Total:    loaded * (1 + OverheadRate),
	}, nil
}

// AICost sums the annual AI components.
func AICost(tokenCosts, infrastructure, maintenance float64) (models.AnnualCosts, error) {
	for _, v := range []float64{tokenCosts, infrastructure, maintenance} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return models.AnnualCosts{}, fmt.Errorf("%w: component %v", ErrInvalidAICost, v)
		}
	}
	return models.AnnualCosts{
		TokenCosts:          tokenCosts,
		InfrastructureCosts: infrastructure,
		MaintenanceCosts:    maintenance,
		Total:               tokenCosts + infrastructure + maintenance,
	}, nil
}

// Compare derives savings and payback. The payback period is the
// infrastructure cost divided by monthly savings, +Inf when there are none.
func Compare(human models.HumanCost, ai models.AnnualCosts, salaryConfidence, aiConfidence float64) models.CostComparison {
	absolute := human.Total - ai.Total
	percentage := 0.0
	if human.Total != 0 {
		percentage = absolute / human.Total * 100
	}

	return models.CostComparison{
		Human: human,
		AI:    ai,
		Savings: models.Savings{
			Absolute:   absolute,
			Percentage: percentage,
		},
		PaybackPeriod: PaybackMonths(ai.InfrastructureCosts, absolute),
		Confidence:    BlendConfidence(salaryConfidence, aiConfidence),
	}
}

func PaybackMonths(infrastructure, annualSavings float64) models.PaybackPeriod {
	monthly := annualSavings / 12
	if monthly <= 0 {
		return models.PaybackPeriod(math.Inf(1))
	}
	return models.PaybackPeriod(infrastructure / monthly)
}

// BlendConfidence weights salary 0.4, AI 0.3 and data-source quality 0.3,
// rounded to two decimals.
func BlendConfidence(salaryConfidence, aiConfidence float64) float64 {
	blended := salaryWeight*Clamp01(salaryConfidence) +
		aiWeight*Clamp01(aiConfidence) +
		qualityWeight*DataSourceQuality
	return Round(Clamp01(blended), 2)
}

// Round rounds half away from zero to the given number of decimal places.
func Round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}

func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"INR": "₹",
}

// FormatCurrency renders a whole-unit amount with thousands separators,
// e.g. FormatCurrency(1234.4, "USD") == "$1,234".
func FormatCurrency(amount float64, currency string) string {
	if math.IsInf(amount, 0) || math.IsNaN(amount) {
		return "n/a"
	}
	rounded := int64(math.Round(math.Abs(amount)))
	sign := ""
	if amount < 0 && rounded != 0 {
		sign = "-"
	}
	if currency == "" {
		currency = "USD"
	}
	if sym, ok := currencySymbols[currency]; ok {
		return sign + sym + humanize.Comma(rounded)
	}
	return sign + humanize.Comma(rounded) + " " + currency
}

// FormatMonths renders a payback period for prose.
func FormatMonths(p models.PaybackPeriod) string {
	if p.IsInfinite() {
		return "never"
	}
	return fmt.Sprintf("%s months", humanize.FormatFloat("#,###.#", float64(p)))
}
