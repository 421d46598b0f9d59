package calculator

import (
	"encoding/json"
	"math"
	"testing"

	"cost-analysis-engine/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHumanCost(t *testing.T) {
	h, err := HumanCost(100000, 1, 1)
	require.NoError(t, err)

	assert.InDelta(t, 100000, h.Salary, 1e-6)
	assert.InDelta(t, 30000, h.Benefits, 1e-6)
	assert.InDelta(t, 26000, h.Overhead, 1e-6)
	assert.InDelta(t, 156000, h.Total, 1e-6)
	assert.InDelta(t, h.Salary+h.Benefits+h.Overhead, h.Total, 1e-6)
}

func TestHumanCost_AppliesMultipliers(t *testing.T) {
	h, err := HumanCost(100000, 1.45, 1.25)
	require.NoError(t, err)
	assert.InDelta(t, 181250, h.Salary, 1e-6)
	assert.InDelta(t, 181250*1.3*1.2, h.Total, 1e-6)
}

func TestHumanCost_Invalid(t *testing.T) {
	tests := []struct {
		name            string
		median, loc, ex float64
	}{
		{"zero median", 0, 1, 1},
		{"negative median", -5, 1, 1},
		{"nan median", math.NaN(), 1, 1},
		{"inf median", math.Inf(1), 1, 1},
		{"zero multiplier", 1000, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := HumanCost(tt.median, tt.loc, tt.ex)
			assert.ErrorIs(t, err, ErrInvalidSalary)
		})
	}
}

func TestAICost(t *testing.T) {
	a, err := AICost(500, 1200, 2400)
	require.NoError(t, err)
	assert.Equal(t, 4100.0, a.Total)
	assert.Equal(t, a.TokenCosts+a.InfrastructureCosts+a.MaintenanceCosts, a.Total)

	_, err = AICost(-1, 1200, 2400)
	assert.ErrorIs(t, err, ErrInvalidAICost)
	_, err = AICost(0, math.NaN(), 0)
	assert.ErrorIs(t, err, ErrInvalidAICost)
}

func TestCompare(t *testing.T) {
	human, err := HumanCost(100000, 1, 1)
	require.NoError(t, err)
	ai, err := AICost(400, 1200, 2400)
	require.NoError(t, err)

	c := Compare(human, ai, 0.9, 0.8)

	assert.Equal(t, human.Total-ai.Total, c.Savings.Absolute)
	assert.InDelta(t, (156000.0-4000.0)/156000.0*100, c.Savings.Percentage, 1e-9)
	assert.InDelta(t, 1200/(152000.0/12), float64(c.PaybackPeriod), 1e-9)
	assert.Equal(t, 0.84, c.Confidence)
}

func TestCompare_NoSavingsNeverPaysBack(t *testing.T) {
	human := models.HumanCost{Total: 3000}
	ai, err := AICost(0, 1200, 2400)
	require.NoError(t, err)

	c := Compare(human, ai, 0.5, 0.5)
	assert.Less(t, c.Savings.Absolute, 0.0)
	assert.True(t, c.PaybackPeriod.IsInfinite())

	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"paybackPeriod":null`)
}

func TestPaybackMonths(t *testing.T) {
	assert.Equal(t, models.PaybackPeriod(1), PaybackMonths(1200, 14400))
	assert.True(t, PaybackMonths(1200, 0).IsInfinite())
	assert.True(t, PaybackMonths(1200, -100).IsInfinite())
	assert.Equal(t, models.PaybackPeriod(0), PaybackMonths(0, 12000))
}

func TestBlendConfidence(t *testing.T) {
	tests := []struct {
		salary, ai, want float64
	}{
		{1, 1, 0.94},
		{0, 0, 0.24},
		{0.6, 0.8, 0.72},
		{0.3, 0.5, 0.51},
		{2, -1, 0.64},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BlendConfidence(tt.salary, tt.ai))
	}
}

func TestRound(t *testing.T) {
	assert.Equal(t, 0.13, Round(0.125, 2))
	assert.Equal(t, 0.72, Round(0.7249999, 2))
	assert.Equal(t, 1235.0, Round(1234.5, 0))
	assert.True(t, math.IsInf(Round(math.Inf(1), 2), 1))
}

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		amount   float64
		currency string
		want     string
	}{
		{1234.4, "USD", "$1,234"},
		{159500, "", "$159,500"},
		{-2500, "USD", "-$2,500"},
		{0.2, "USD", "$0"},
		{1000000, "EUR", "€1,000,000"},
		{4200, "CHF", "4,200 CHF"},
		{math.Inf(1), "USD", "n/a"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCurrency(tt.amount, tt.currency))
		})
	}
}

func TestFormatMonths(t *testing.T) {
	assert.Equal(t, "never", FormatMonths(models.PaybackPeriod(math.Inf(1))))
	assert.Equal(t, "1.5 months", FormatMonths(1.5))
}
