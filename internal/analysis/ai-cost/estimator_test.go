package aicost

import (
	"testing"

	datavalidator "cost-analysis-engine/internal/analysis/data-validator"
	referencedata "cost-analysis-engine/internal/analysis/reference-data"
	"cost-analysis-engine/internal/common/logger"
	"cost-analysis-engine/internal/models"
	"cost-analysis-engine/pkg/pricing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func newTestEstimator(t *testing.T) *Estimator {
	log := logger.NewTestLogger(t)
	return New(NewPricingTable(), datavalidator.New(log), log)
}

// ==========================
// Tests
// ==========================

func TestEstimate_FreeTierModel(t *testing.T) {
	e := newTestEstimator(t)

	got := e.Estimate(models.UserProfile{Occupation: "Software Developer", Experience: "mid"}, DefaultModel)

	require.NotNil(t, got)
	assert.True(t, got.Model.FreeTier)
	assert.Equal(t, 12.0, got.TaskEstimate.TasksPerDay)
	assert.Equal(t, 4_500_000.0, got.TaskEstimate.AnnualTokens)
	assert.InDelta(t, 3_150_000.0, got.TaskEstimate.PromptTokens, 1e-6)
	assert.InDelta(t, 1_350_000.0, got.TaskEstimate.CompletionTokens, 1e-6)
	assert.Equal(t, 0.0, got.AnnualCosts.TokenCosts)
	assert.Equal(t, 3600.0, got.AnnualCosts.Total)
	assert.Equal(t, 0.8, got.Confidence)
	assert.Equal(t, 1.0, got.ScaleFactor)
}

func TestEstimate_PaidModel(t *testing.T) {
	e := newTestEstimator(t)

	got := e.Estimate(models.UserProfile{Occupation: "software developer"}, "gpt-4o")

	require.NotNil(t, got)
	// 3.15M prompt × 2.5e-6 + 1.35M completion × 1e-5
	assert.InDelta(t, 21.375, got.AnnualCosts.TokenCosts, 1e-9)
	assert.InDelta(t, 3621.375, got.AnnualCosts.Total, 1e-9)
	assert.Equal(t, InfrastructureCost, got.AnnualCosts.InfrastructureCosts)
	assert.Equal(t, MaintenanceCost, got.AnnualCosts.MaintenanceCosts)
}

func TestEstimate_ExperienceScalesTaskVolume(t *testing.T) {
	e := newTestEstimator(t)

	got := e.Estimate(models.UserProfile{Occupation: "software developer", Experience: "senior"}, DefaultModel)

	require.NotNil(t, got)
	assert.InDelta(t, 13.8, got.TaskEstimate.TasksPerDay, 1e-9)
	assert.Equal(t, 0.75, got.Confidence)
}

func TestEstimate_UnknownOccupationDefaults(t *testing.T) {
	e := newTestEstimator(t)

	got := e.Estimate(models.UserProfile{Occupation: "xylophone tuner"}, DefaultModel)

	require.NotNil(t, got)
	assert.Equal(t, referencedata.DefaultTasksPerDay, got.TaskEstimate.TasksPerDay)
	assert.Equal(t, referencedata.DefaultTokensPerTask, got.TaskEstimate.TokensPerTask)
}

func TestEstimate_UnknownModel(t *testing.T) {
	e := newTestEstimator(t)
	assert.Nil(t, e.Estimate(models.UserProfile{Occupation: "lawyer"}, "no-such-model"))
}

func TestConfidence(t *testing.T) {
	tests := []struct {
		name        string
		level       referencedata.ExperienceLevel
		automation  float64
		predictable bool
		want        float64
	}{
		{"baseline", referencedata.ExperienceMid, 0.5, false, 0.8},
		{"predictable", referencedata.ExperienceMid, 0.5, true, 0.9},
		{"high automation", referencedata.ExperienceMid, 0.8, false, 0.85},
		{"low automation", referencedata.ExperienceMid, 0.3, false, 0.7},
		{"senior", referencedata.ExperienceSenior, 0.5, false, 0.75},
		{"executive low automation", referencedata.ExperienceExecutive, 0.2, false, 0.65},
		{"junior", referencedata.ExperienceJunior, 0.5, false, 0.85},
		{"capped", referencedata.ExperienceEntry, 0.9, true, 0.95},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Confidence(tt.level, tt.automation, tt.predictable))
		})
	}
}

func TestScale(t *testing.T) {
	e := newTestEstimator(t)
	moderate := e.Estimate(models.UserProfile{Occupation: "software developer"}, "gpt-4o")
	require.NotNil(t, moderate)

	aggressive := Scale(moderate, AggressiveFactor)
	require.NotNil(t, aggressive)
	assert.InDelta(t, moderate.AnnualCosts.TokenCosts*1.5, aggressive.AnnualCosts.TokenCosts, 1e-9)
	assert.Equal(t, moderate.AnnualCosts.InfrastructureCosts, aggressive.AnnualCosts.InfrastructureCosts)
	assert.Equal(t, moderate.AnnualCosts.MaintenanceCosts, aggressive.AnnualCosts.MaintenanceCosts)
	assert.InDelta(t, aggressive.AnnualCosts.TokenCosts+InfrastructureCost+MaintenanceCost, aggressive.AnnualCosts.Total, 1e-9)
	assert.InDelta(t, 18.0, aggressive.TaskEstimate.TasksPerDay, 1e-9)
	assert.Equal(t, 1.5, aggressive.ScaleFactor)
	assert.Equal(t, 0.68, aggressive.Confidence)

	conservative := Scale(moderate, ConservativeFactor)
	require.NotNil(t, conservative)
	assert.InDelta(t, moderate.AnnualCosts.TokenCosts*0.7, conservative.AnnualCosts.TokenCosts, 1e-9)
	assert.Equal(t, 0.73, conservative.Confidence)

	assert.Equal(t, 1.0, moderate.ScaleFactor, "input must not be mutated")
	assert.Nil(t, Scale(moderate, 0))
	assert.Nil(t, Scale(nil, 1.5))
}

func TestPricingTable_ResolveModel(t *testing.T) {
	table := NewPricingTable()

	assert.Equal(t, "gpt-4o-mini", table.ResolveModel(models.UserProfile{}, " gpt-4o-mini ", ""))
	assert.Equal(t, "claude-3-haiku", table.ResolveModel(models.UserProfile{
		Skills: []string{"python", "Claude-3-Haiku", "gpt-4o"},
	}, "", ""))
	assert.Equal(t, DefaultModel, table.ResolveModel(models.UserProfile{Skills: []string{"excel"}}, "", ""))
	assert.Equal(t, "gpt-4o", table.ResolveModel(models.UserProfile{}, "", "gpt-4o"))
}

func TestPricingTable_Apply(t *testing.T) {
	table := NewPricingTable()

	n := table.Apply(&pricing.Registry{Models: []pricing.Model{
		{ID: "gpt-4o", PromptCostPerToken: 1e-6, CompletionCostPerToken: 4e-6},
		{ID: "internal-finetune", PromptCostPerToken: 5e-7, CompletionCostPerToken: 5e-7},
	}})
	assert.Equal(t, 2, n)

	p, ok := table.Lookup("GPT-4O")
	require.True(t, ok)
	assert.Equal(t, 4e-6, p.CompletionCostPerToken)

	_, ok = table.Lookup("internal-finetune")
	assert.True(t, ok)

	_, ok = table.Lookup("openai/gpt-4o")
	assert.False(t, ok, "replacing an entry drops its built-in aliases")

	assert.Equal(t, 0, table.Apply(nil))
}
