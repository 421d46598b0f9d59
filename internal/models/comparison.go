// internal/models/comparison.go
package models

import (
	"encoding/json"
	"math"
)

type HumanCost struct {
	Salary   float64 `json:"salary"`
	Benefits float64 `json:"benefits"`
	Overhead float64 `json:"overhead"`
	Total    float64 `json:"total"`
}

type Savings struct {
	Absolute   float64 `json:"absolute"`
	Percentage float64 `json:"percentage"`
}

// PaybackPeriod is measured in months. It is +Inf when automation never pays
// back, which JSON cannot carry, so it is encoded as null.
type PaybackPeriod float64

func (p PaybackPeriod) IsInfinite() bool {
	return math.IsInf(float64(p), 1)
}

func (p PaybackPeriod) MarshalJSON() ([]byte, error) {
	if math.IsInf(float64(p), 0) || math.IsNaN(float64(p)) {
		return []byte("null"), nil
	}
	return json.Marshal(float64(p))
}

func (p *PaybackPeriod) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = PaybackPeriod(math.Inf(1))
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = PaybackPeriod(v)
	return nil
}

// CostComparison is derived from SalaryData and AICostData and recomputed
// whenever either changes.
type CostComparison struct {
	Human         HumanCost     `json:"human"`
	AI            AnnualCosts   `json:"ai"`
	Savings       Savings       `json:"savings"`
	PaybackPeriod PaybackPeriod `json:"paybackPeriod"`
	Confidence    float64       `json:"confidence"`
}

// QuickComparison is the reduced tuple returned by the quick entry point.
type QuickComparison struct {
	HumanCost  float64 `json:"humanCost"`
	AICost     float64 `json:"aiCost"`
	Savings    float64 `json:"savings"`
	Confidence float64 `json:"confidence"`
}
