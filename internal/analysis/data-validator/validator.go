// Package datavalidator guards the engine against malformed provider data.
// Raw payloads are checked against JSON schemas; internally built records get
// structural checks. Invalid input comes back as nil, never as an error.
package datavalidator

import (
	"encoding/json"
	"math"
	"strings"

	"cost-analysis-engine/internal/common/errors"
	"cost-analysis-engine/internal/common/logger"
	"cost-analysis-engine/internal/common/validation"
	"cost-analysis-engine/internal/models"
)

const sumTolerance = 1e-6

type Validator struct {
	logger logger.Logger
}

func New(log logger.Logger) *Validator {
	return &Validator{logger: logger.ForComponent(log, "data-validator")}
}

// Decode validates raw against schema and unmarshals it into a new T.
// It returns nil when either step fails.
func Decode[T any](v *Validator, schema *validation.Schema, source string, raw []byte) *T {
	if res := schema.ValidateBytes(raw); !res.Valid {
		v.logger.Warn("Provider payload failed schema validation", map[string]interface{}{
			"source": source,
			"errors": res.GetErrorMessages(),
		})
		return nil
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		v.logger.Warn("Provider payload could not be decoded", map[string]interface{}{
			"source": source,
			"error":  err.Error(),
		})
		return nil
	}
	return &out
}

// ValidateProfile rejects profiles without an occupation or with oversized fields.
func (v *Validator) ValidateProfile(p models.UserProfile) error {
	res := ProfileSchema.Validate(p)
	if !res.Valid {
		return errors.NewInvalidProfileError(res.Error())
	}
	if strings.TrimSpace(p.Occupation) == "" {
		return errors.NewInvalidProfileError("occupation: must not be blank")
	}
	return nil
}

// SalaryData returns d when it is internally consistent, otherwise nil.
func (v *Validator) SalaryData(d *models.SalaryData) *models.SalaryData {
	if d == nil {
		return nil
	}
	reject := func(reason string) *models.SalaryData {
		v.logger.Warn("Rejected salary data", map[string]interface{}{
			"source": string(d.Source),
			"reason": reason,
		})
		return nil
	}

	if !finitePositive(d.Median) {
		return reject("median must be a positive number")
	}
	if !unitInterval(d.Confidence) {
		return reject("confidence outside [0,1]")
	}
	switch d.Source {
	case models.SalarySourceGovernment, models.SalarySourceCommercial, models.SalarySourceEstimated:
	default:
		return reject("unknown source")
	}
	for _, p := range []*float64{d.Mean, d.Percentile25, d.Percentile75} {
		if p != nil && !finitePositive(*p) {
			return reject("optional statistic must be positive")
		}
	}
	if d.Percentile25 != nil && d.Percentile75 != nil && *d.Percentile25 > *d.Percentile75 {
		return reject("percentile25 exceeds percentile75")
	}
	if d.Currency == "" {
		d.Currency = "USD"
	}
	return d
}

// AICostData returns d when its breakdown adds up, otherwise nil.
func (v *Validator) AICostData(d *models.AICostData) *models.AICostData {
	if d == nil {
		return nil
	}
	reject := func(reason string) *models.AICostData {
		v.logger.Warn("Rejected AI cost data", map[string]interface{}{
			"model":  d.Model.ModelID,
			"reason": reason,
		})
		return nil
	}

	if d.Model.ModelID == "" {
		return reject("model id is empty")
	}
	c := d.AnnualCosts
	for _, x := range []float64{c.TokenCosts, c.InfrastructureCosts, c.MaintenanceCosts, c.Total} {
		if x < 0 || math.IsNaN(x) || math.IsInf(x, 0) {
			return reject("cost component must be a non-negative number")
		}
	}
	if math.Abs(c.Total-(c.TokenCosts+c.InfrastructureCosts+c.MaintenanceCosts)) > sumTolerance {
		return reject("total does not equal the sum of its components")
	}
	if !unitInterval(d.Confidence) {
		return reject("confidence outside [0,1]")
	}
	return d
}

// Insights returns i with nil slices replaced by empty ones, or nil when the
// summary is missing or the confidence is out of range.
func (v *Validator) Insights(i *models.CostAnalysisInsights) *models.CostAnalysisInsights {
	if i == nil {
		return nil
	}
	if strings.TrimSpace(i.Summary) == "" || !unitInterval(i.Confidence) {
		v.logger.Warn("Rejected insights", map[string]interface{}{
			"generatedBy": string(i.GeneratedBy),
		})
		return nil
	}
	for _, s := range []*[]string{&i.Findings, &i.Recommendations, &i.RiskFactors, &i.Assumptions, &i.Sources} {
		if *s == nil {
			*s = []string{}
		}
	}
	return i
}

func finitePositive(x float64) bool {
	return x > 0 && !math.IsInf(x, 0)
}

func unitInterval(x float64) bool {
	return x >= 0 && x <= 1
}
