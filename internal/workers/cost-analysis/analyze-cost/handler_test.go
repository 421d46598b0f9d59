package analyzecost

import (
	"context"
	"testing"
	"time"

	"cost-analysis-engine/internal/common/config"
	"cost-analysis-engine/internal/common/errors"
	"cost-analysis-engine/internal/common/logger"
	"cost-analysis-engine/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeAnalyzer struct {
	err      error
	lastOpts models.AnalysisOptions
	calls    []Mode
}

func (f *fakeAnalyzer) Analyze(_ context.Context, p models.UserProfile, opts models.AnalysisOptions) (*models.CostAnalysis, error) {
	f.calls = append(f.calls, ModeFull)
	f.lastOpts = opts
	if f.err != nil {
		return nil, f.err
	}
	return &models.CostAnalysis{Profile: p, Confidence: 0.7}, nil
}

func (f *fakeAnalyzer) QuickComparison(_ context.Context, _ models.UserProfile) (*models.QuickComparison, error) {
	f.calls = append(f.calls, ModeQuick)
	if f.err != nil {
		return nil, f.err
	}
	return &models.QuickComparison{HumanCost: 100, AICost: 10, Savings: 90, Confidence: 0.7}, nil
}

func (f *fakeAnalyzer) ScenarioAnalysisWithOptions(_ context.Context, p models.UserProfile, opts models.AnalysisOptions) (*models.ScenarioAnalysis, error) {
	f.calls = append(f.calls, ModeScenarios)
	f.lastOpts = opts
	if f.err != nil {
		return nil, f.err
	}
	a := &models.CostAnalysis{Profile: p}
	return &models.ScenarioAnalysis{Conservative: a, Moderate: a, Aggressive: a}, nil
}

func createTestHandler(t *testing.T, a Analyzer) *Handler {
	h, err := NewHandler(HandlerOptions{
		CustomConfig: &Config{
			Enabled:       true,
			MaxJobsActive: 2,
			Timeout:       10 * time.Second,
			Defaults:      models.DefaultAnalysisOptions(),
		},
		Analyzer: a,
		Logger:   logger.NewTestLogger(t),
	})
	require.NoError(t, err)
	return h
}

// ==========================
// Tests
// ==========================

func TestParseInput(t *testing.T) {
	tests := []struct {
		name      string
		variables string
		wantMode  Mode
		wantErr   bool
	}{
		{"defaults to full", `{"profile":{"occupation":"lawyer"}}`, ModeFull, false},
		{"quick", `{"profile":{"occupation":"lawyer"},"mode":"quick"}`, ModeQuick, false},
		{"scenarios with options", `{"profile":{"occupation":"lawyer"},"mode":"scenarios","options":{"useCache":false}}`, ModeScenarios, false},
		{"unknown mode", `{"profile":{"occupation":"lawyer"},"mode":"deep"}`, "", true},
		{"not json", `profile=lawyer`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, err := ParseInput(tt.variables)
			if tt.wantErr {
				require.Error(t, err)
				code, ok := errors.CodeOf(err)
				require.True(t, ok)
				assert.Equal(t, errors.ErrCodeValidationFailed, code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMode, input.Mode)
			assert.Equal(t, "lawyer", input.Profile.Occupation)
		})
	}
}

func TestHandler_Execute_Modes(t *testing.T) {
	fake := &fakeAnalyzer{}
	h := createTestHandler(t, fake)
	profile := models.UserProfile{Occupation: "bookkeeper"}

	out, err := h.Execute(context.Background(), &Input{Profile: profile, Mode: ModeFull})
	require.NoError(t, err)
	require.NotNil(t, out.Analysis)
	assert.Nil(t, out.Comparison)
	assert.Nil(t, out.Scenarios)

	out, err = h.Execute(context.Background(), &Input{Profile: profile, Mode: ModeQuick})
	require.NoError(t, err)
	require.NotNil(t, out.Comparison)
	assert.Equal(t, 90.0, out.Comparison.Savings)

	out, err = h.Execute(context.Background(), &Input{Profile: profile, Mode: ModeScenarios})
	require.NoError(t, err)
	require.NotNil(t, out.Scenarios)

	assert.Equal(t, []Mode{ModeFull, ModeQuick, ModeScenarios}, fake.calls)
}

func TestHandler_Execute_AppliesOptionOverrides(t *testing.T) {
	fake := &fakeAnalyzer{}
	h := createTestHandler(t, fake)
	noFallback := false
	threshold := 0.6

	_, err := h.Execute(context.Background(), &Input{
		Profile: models.UserProfile{Occupation: "bookkeeper"},
		Options: &models.OptionsOverrides{FallbackToEstimates: &noFallback, ConfidenceThreshold: &threshold},
	})
	require.NoError(t, err)

	assert.False(t, fake.lastOpts.FallbackToEstimates)
	assert.Equal(t, 0.6, fake.lastOpts.ConfidenceThreshold)
	assert.True(t, fake.lastOpts.UseCache)
	assert.Equal(t, 24*time.Hour, fake.lastOpts.CacheTTL)
}

func TestHandler_Execute_PropagatesErrors(t *testing.T) {
	want := errors.NewSalaryResolutionFailedError("bookkeeper")
	h := createTestHandler(t, &fakeAnalyzer{err: want})

	_, err := h.Execute(context.Background(), &Input{Profile: models.UserProfile{Occupation: "bookkeeper"}, Mode: ModeFull})
	assert.ErrorIs(t, err, want)
}

func TestNewHandler_Validation(t *testing.T) {
	_, err := NewHandler(HandlerOptions{CustomConfig: DefaultConfig()})
	assert.ErrorContains(t, err, "analyzer is required")

	_, err = NewHandler(HandlerOptions{
		CustomConfig: &Config{MaxJobsActive: 1},
		Analyzer:     &fakeAnalyzer{},
	})
	assert.ErrorContains(t, err, "timeout must be positive")
}

func TestCreateConfigFromAppConfig(t *testing.T) {
	appCfg := &config.Config{
		Workers: map[string]config.WorkerConfig{
			TaskType: {Enabled: false, MaxJobsActive: 9, Timeout: 30000},
		},
	}
	appCfg.Analysis.ConfidenceThreshold = 0.4
	appCfg.Cache.DefaultTTL = 3600000

	cfg := createConfigFromAppConfig(appCfg)
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 9, cfg.MaxJobsActive)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 0.4, cfg.Defaults.ConfidenceThreshold)
	assert.Equal(t, time.Hour, cfg.Defaults.CacheTTL)

	assert.Equal(t, DefaultConfig(), createConfigFromAppConfig(nil))
}
