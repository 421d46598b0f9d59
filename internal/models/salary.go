// internal/models/salary.go
package models

import "time"

// SalarySource tags which fallback tier produced a SalaryData record.
type SalarySource string

const (
	SalarySourceGovernment SalarySource = "government"
	SalarySourceCommercial SalarySource = "commercial"
	SalarySourceEstimated  SalarySource = "estimated"
)

// SalaryData is the normalized salary record produced once per query.
// Median already includes every multiplier listed in Adjustments.
type SalaryData struct {
	Median       float64          `json:"median"`
	Mean         *float64         `json:"mean,omitempty"`
	Percentile25 *float64         `json:"percentile25,omitempty"`
	Percentile75 *float64         `json:"percentile75,omitempty"`
	Currency     string           `json:"currency"`
	Source       SalarySource     `json:"source"`
	Confidence   float64          `json:"confidence"`
	LastUpdated  time.Time        `json:"lastUpdated"`
	Adjustments  SalaryAdjustment `json:"adjustments"`
}

// SalaryAdjustment records the multipliers applied to the source figure.
type SalaryAdjustment struct {
	LocationMultiplier   float64 `json:"locationMultiplier"`
	ExperienceMultiplier float64 `json:"experienceMultiplier"`
	MatchScore           float64 `json:"matchScore,omitempty"`
	ClassificationCode   string  `json:"classificationCode,omitempty"`
	AreaCode             string  `json:"areaCode,omitempty"`
	BlendedWithHint      bool    `json:"blendedWithHint,omitempty"`
	HintValue            float64 `json:"hintValue,omitempty"`
}

// Float64Ptr is a small helper for the optional percentile fields.
func Float64Ptr(v float64) *float64 {
	return &v
}
