package costanalysis

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	aicost "cost-analysis-engine/internal/analysis/ai-cost"
	cachemanager "cost-analysis-engine/internal/analysis/cache-manager"
	salaryestimator "cost-analysis-engine/internal/analysis/salary/salary-estimator"
	stderrors "cost-analysis-engine/internal/common/errors"
	"cost-analysis-engine/internal/common/logger"
	"cost-analysis-engine/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeProvider struct {
	name    string
	data    *models.SalaryData
	calls   int32
	release chan struct{}
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) FetchSalary(ctx context.Context, _ models.UserProfile) *models.SalaryData {
	atomic.AddInt32(&f.calls, 1)
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil
		}
	}
	if f.data == nil {
		return nil
	}
	d := *f.data
	return &d
}

func (f *fakeProvider) Calls() int { return int(atomic.LoadInt32(&f.calls)) }

func salaryFrom(source models.SalarySource, median, confidence float64) *models.SalaryData {
	return &models.SalaryData{Median: median, Currency: "USD", Source: source, Confidence: confidence}
}

type fakeInsights struct{}

func (fakeInsights) Configured() bool { return true }

func (fakeInsights) Generate(_ context.Context, _ models.UserProfile, _ *models.SalaryData, _ *models.AICostData, _ models.CostComparison) *models.CostAnalysisInsights {
	return &models.CostAnalysisInsights{Summary: "from the model", Confidence: 0.7, GeneratedBy: models.InsightSourceLLM}
}

type testDeps struct {
	commercial *fakeProvider
	government *fakeProvider
	insights   InsightGenerator
	noCache    bool
	config     Config
}

func newTestService(t *testing.T, d testDeps) *Service {
	log := logger.NewTestLogger(t)
	deps := Dependencies{
		Estimator: salaryestimator.New(log),
		Insights:  d.insights,
	}
	if d.commercial != nil {
		deps.Commercial = d.commercial
	}
	if d.government != nil {
		deps.Government = d.government
	}
	if !d.noCache {
		deps.Cache = cachemanager.New[models.CostAnalysis](context.Background(), nil, cachemanager.Options{}, log)
	}
	return NewService(d.config, deps, log)
}

func sfDeveloper() models.UserProfile {
	return models.UserProfile{
		Occupation: "Software Developer",
		Experience: "mid",
		Location:   "San Francisco, CA",
		Industry:   "technology",
		Skills:     []string{"go", "kubernetes"},
	}
}

func requireCode(t *testing.T, err error, want stderrors.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	code, ok := stderrors.CodeOf(err)
	require.True(t, ok, "expected a StandardError, got %v", err)
	assert.Equal(t, want, code)
}

// ==========================
// Tests
// ==========================

func TestAnalyze_SanFranciscoDeveloperFromEstimates(t *testing.T) {
	svc := newTestService(t, testDeps{})

	got, err := svc.Analyze(context.Background(), sfDeveloper(), models.DefaultAnalysisOptions())
	require.NoError(t, err)

	assert.Equal(t, models.SalarySourceEstimated, got.SalaryData.Source)
	assert.InDelta(t, 159500.0, got.SalaryData.Median, 1e-6)
	assert.Equal(t, 0.6, got.SalaryData.Confidence)
	assert.Equal(t, aicost.DefaultModel, got.AICostData.Model.ModelID)
	assert.Equal(t, 3600.0, got.AICostData.AnnualCosts.Total)

	assert.InDelta(t, 248820.0, got.Comparison.Human.Total, 1e-6)
	assert.Greater(t, got.Comparison.Savings.Absolute, 0.0)
	assert.Equal(t, got.Comparison.Human.Total-got.Comparison.AI.Total, got.Comparison.Savings.Absolute)
	assert.Equal(t, 0.72, got.Confidence)

	assert.Equal(t, models.InsightSourceTemplate, got.Insights.GeneratedBy)
	assert.NotEmpty(t, got.Metadata.AnalysisID)
	assert.Equal(t, "1.0.0", got.Metadata.EngineVersion)
	assert.False(t, got.Metadata.CacheHit)
	assert.False(t, got.Metadata.FallbackAnalysis)
	assert.False(t, got.Metadata.BelowThreshold)
}

func TestAnalyze_SoftwareDeveloperWithSalaryHint(t *testing.T) {
	svc := newTestService(t, testDeps{})
	profile := models.UserProfile{
		Occupation:  "software-developer",
		Experience:  "mid-level",
		Location:    "san francisco",
		SalaryRange: "$80k–$100k",
		Skills:      []string{"JavaScript"},
	}
	opts := models.DefaultAnalysisOptions()
	opts.IncludeInsights = false

	got, err := svc.Analyze(context.Background(), profile, opts)
	require.NoError(t, err)

	assert.Equal(t, models.SalarySourceEstimated, got.SalaryData.Source)
	assert.InDelta(t, 124750.0, got.SalaryData.Median, 1e-6)
	assert.Greater(t, got.Comparison.Savings.Absolute, 0.0)
	assert.Equal(t, got.Comparison.Human.Total-got.Comparison.AI.Total, got.Comparison.Savings.Absolute)
	assert.Equal(t, aicost.DefaultModel, got.AICostData.Model.ModelID)
	assert.Equal(t, models.InsightSourceTemplate, got.Insights.GeneratedBy)
	assert.False(t, got.Metadata.FallbackAnalysis)
}

func TestAnalyze_SalaryTiers(t *testing.T) {
	tests := []struct {
		name          string
		commercial    *models.SalaryData
		government    *models.SalaryData
		fallback      bool
		wantSource    models.SalarySource
		wantMedian    float64
		wantGovCalled bool
	}{
		{
			name:       "strong commercial result short-circuits",
			commercial: salaryFrom(models.SalarySourceCommercial, 120000, 0.9),
			government: salaryFrom(models.SalarySourceGovernment, 100000, 0.9),
			fallback:   true,
			wantSource: models.SalarySourceCommercial,
			wantMedian: 120000,
		},
		{
			name:          "weak commercial defers to government",
			commercial:    salaryFrom(models.SalarySourceCommercial, 120000, 0.6),
			government:    salaryFrom(models.SalarySourceGovernment, 100000, 0.85),
			fallback:      true,
			wantSource:    models.SalarySourceGovernment,
			wantMedian:    100000,
			wantGovCalled: true,
		},
		{
			name:          "commercial missing, government usable",
			government:    salaryFrom(models.SalarySourceGovernment, 100000, 0.55),
			fallback:      true,
			wantSource:    models.SalarySourceGovernment,
			wantMedian:    100000,
			wantGovCalled: true,
		},
		{
			name:          "both weak falls through to the estimator",
			commercial:    salaryFrom(models.SalarySourceCommercial, 120000, 0.45),
			government:    salaryFrom(models.SalarySourceGovernment, 100000, 0.4),
			fallback:      true,
			wantSource:    models.SalarySourceEstimated,
			wantMedian:    110000,
			wantGovCalled: true,
		},
		{
			name:          "both weak without estimates keeps the best candidate",
			commercial:    salaryFrom(models.SalarySourceCommercial, 120000, 0.45),
			government:    salaryFrom(models.SalarySourceGovernment, 100000, 0.4),
			fallback:      false,
			wantSource:    models.SalarySourceCommercial,
			wantMedian:    120000,
			wantGovCalled: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			commercial := &fakeProvider{name: "commercial", data: tt.commercial}
			government := &fakeProvider{name: "government", data: tt.government}
			svc := newTestService(t, testDeps{commercial: commercial, government: government})

			opts := models.DefaultAnalysisOptions()
			opts.FallbackToEstimates = tt.fallback
			got, err := svc.Analyze(context.Background(), models.UserProfile{Occupation: "software developer"}, opts)
			require.NoError(t, err)

			assert.Equal(t, tt.wantSource, got.SalaryData.Source)
			assert.InDelta(t, tt.wantMedian, got.SalaryData.Median, 1e-6)
			assert.Equal(t, 1, commercial.Calls())
			assert.Equal(t, tt.wantGovCalled, government.Calls() == 1)
		})
	}
}

func TestAnalyze_NoSalaryWithoutFallback(t *testing.T) {
	svc := newTestService(t, testDeps{
		commercial: &fakeProvider{name: "commercial"},
		government: &fakeProvider{name: "government"},
	})
	opts := models.DefaultAnalysisOptions()
	opts.FallbackToEstimates = false

	_, err := svc.Analyze(context.Background(), sfDeveloper(), opts)
	requireCode(t, err, stderrors.ErrCodeSalaryResolutionFailed)
}

func TestAnalyze_UnknownModel(t *testing.T) {
	commercial := &fakeProvider{name: "commercial", data: salaryFrom(models.SalarySourceCommercial, 120000, 0.9)}
	svc := newTestService(t, testDeps{commercial: commercial})
	opts := models.DefaultAnalysisOptions()
	opts.Model = "no-such-model"

	got, err := svc.Analyze(context.Background(), sfDeveloper(), opts)
	require.NoError(t, err)
	assert.True(t, got.Metadata.FallbackAnalysis)
	assert.Equal(t, FallbackSalary, got.SalaryData.Median)
	assert.Equal(t, FallbackSalaryConfidence, got.SalaryData.Confidence)
	assert.Equal(t, 0.0, got.AICostData.AnnualCosts.TokenCosts)
	assert.Equal(t, FallbackAIConfidence, got.AICostData.Confidence)
	assert.Equal(t, 0.51, got.Confidence)
	assert.Equal(t, 0, svc.CacheStats().Size, "fallback analyses are not cached")

	opts.FallbackToEstimates = false
	_, err = svc.Analyze(context.Background(), sfDeveloper(), opts)
	requireCode(t, err, stderrors.ErrCodeAICostResolutionFailed)
}

func TestAnalyze_ConfidenceThreshold(t *testing.T) {
	commercial := &fakeProvider{name: "commercial", data: salaryFrom(models.SalarySourceCommercial, 90000, 0.9)}
	svc := newTestService(t, testDeps{commercial: commercial})

	opts := models.DefaultAnalysisOptions()
	opts.UseCache = false
	opts.ConfidenceThreshold = 0.95

	got, err := svc.Analyze(context.Background(), sfDeveloper(), opts)
	require.NoError(t, err)
	assert.True(t, got.Metadata.BelowThreshold)
	assert.False(t, got.Metadata.FallbackAnalysis)

	opts.FallbackToEstimates = false
	_, err = svc.Analyze(context.Background(), sfDeveloper(), opts)
	requireCode(t, err, stderrors.ErrCodeConfidenceBelowThreshold)
}

func TestAnalyze_InvalidProfile(t *testing.T) {
	svc := newTestService(t, testDeps{})

	_, err := svc.Analyze(context.Background(), models.UserProfile{Occupation: "   "}, models.DefaultAnalysisOptions())
	requireCode(t, err, stderrors.ErrCodeInvalidProfile)

	_, err = svc.QuickComparison(context.Background(), models.UserProfile{})
	requireCode(t, err, stderrors.ErrCodeInvalidProfile)
}

func TestAnalyze_CachesResults(t *testing.T) {
	commercial := &fakeProvider{name: "commercial", data: salaryFrom(models.SalarySourceCommercial, 120000, 0.9)}
	svc := newTestService(t, testDeps{commercial: commercial})
	opts := models.DefaultAnalysisOptions()

	first, err := svc.Analyze(context.Background(), sfDeveloper(), opts)
	require.NoError(t, err)
	assert.False(t, first.Metadata.CacheHit)

	reordered := sfDeveloper()
	reordered.Occupation = "  SOFTWARE developer "
	reordered.Skills = []string{"Kubernetes", "Go"}
	second, err := svc.Analyze(context.Background(), reordered, opts)
	require.NoError(t, err)

	assert.True(t, second.Metadata.CacheHit)
	assert.Equal(t, first.Metadata.AnalysisID, second.Metadata.AnalysisID)
	assert.Equal(t, first.Comparison, second.Comparison)
	assert.Equal(t, 1, commercial.Calls())

	stats := svc.CacheStats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, stats.Size)

	svc.ClearCache(context.Background())
	assert.Equal(t, models.CacheStats{}, svc.CacheStats())

	third, err := svc.Analyze(context.Background(), sfDeveloper(), opts)
	require.NoError(t, err)
	assert.False(t, third.Metadata.CacheHit)
	assert.Equal(t, 2, commercial.Calls())
}

func TestAnalyze_CacheKeyFollowsResolvedModel(t *testing.T) {
	svc := newTestService(t, testDeps{})
	opts := models.DefaultAnalysisOptions()

	first := sfDeveloper()
	first.Skills = []string{"gpt-4o", "claude-3-haiku"}
	got, err := svc.Analyze(context.Background(), first, opts)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", got.AICostData.Model.ModelID)

	second := sfDeveloper()
	second.Skills = []string{"claude-3-haiku", "gpt-4o"}
	got, err = svc.Analyze(context.Background(), second, opts)
	require.NoError(t, err)
	assert.False(t, got.Metadata.CacheHit)
	assert.Equal(t, "claude-3-haiku", got.AICostData.Model.ModelID)

	got, err = svc.Analyze(context.Background(), first, opts)
	require.NoError(t, err)
	assert.True(t, got.Metadata.CacheHit)
	assert.Equal(t, "gpt-4o", got.AICostData.Model.ModelID)
	assert.Equal(t, 2, svc.CacheStats().Size)
}

func TestAnalyze_CacheHitIsIsolated(t *testing.T) {
	svc := newTestService(t, testDeps{})
	opts := models.DefaultAnalysisOptions()

	_, err := svc.Analyze(context.Background(), sfDeveloper(), opts)
	require.NoError(t, err)

	hit, err := svc.Analyze(context.Background(), sfDeveloper(), opts)
	require.NoError(t, err)
	require.True(t, hit.Metadata.CacheHit)
	require.NotEmpty(t, hit.Insights.Findings)
	wantFinding := hit.Insights.Findings[0]
	wantSkill := hit.Profile.Skills[0]

	hit.Profile.Skills[0] = "changed"
	hit.Insights.Findings[0] = "changed"

	again, err := svc.Analyze(context.Background(), sfDeveloper(), opts)
	require.NoError(t, err)
	assert.True(t, again.Metadata.CacheHit)
	assert.Equal(t, wantSkill, again.Profile.Skills[0])
	assert.Equal(t, wantFinding, again.Insights.Findings[0])
}

func TestAnalyze_TimedOutRunIsNotCached(t *testing.T) {
	government := &fakeProvider{
		name:    "government",
		data:    salaryFrom(models.SalarySourceGovernment, 100000, 0.85),
		release: make(chan struct{}),
	}
	svc := newTestService(t, testDeps{government: government, config: Config{Timeout: 50 * time.Millisecond}})
	opts := models.DefaultAnalysisOptions()

	got, err := svc.Analyze(context.Background(), sfDeveloper(), opts)
	require.NoError(t, err)
	assert.Equal(t, models.SalarySourceEstimated, got.SalaryData.Source)
	assert.Equal(t, 0, svc.CacheStats().Size)

	close(government.release)
	got, err = svc.Analyze(context.Background(), sfDeveloper(), opts)
	require.NoError(t, err)
	assert.False(t, got.Metadata.CacheHit)
	assert.Equal(t, models.SalarySourceGovernment, got.SalaryData.Source)
	assert.Equal(t, 2, government.Calls())
	assert.Equal(t, 1, svc.CacheStats().Size)
}

func TestAnalyze_CancelledCaller(t *testing.T) {
	svc := newTestService(t, testDeps{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Analyze(ctx, sfDeveloper(), models.DefaultAnalysisOptions())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, svc.CacheStats().Size)
}

func TestAnalyze_CoalescedCallersSurviveLeaderCancel(t *testing.T) {
	commercial := &fakeProvider{
		name:    "commercial",
		data:    salaryFrom(models.SalarySourceCommercial, 120000, 0.9),
		release: make(chan struct{}),
	}
	svc := newTestService(t, testDeps{commercial: commercial})
	opts := models.DefaultAnalysisOptions()

	leaderCtx, cancelLeader := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, err := svc.Analyze(leaderCtx, sfDeveloper(), opts)
		leaderErr <- err
	}()
	require.Eventually(t, func() bool { return commercial.Calls() == 1 }, time.Second, 5*time.Millisecond)

	type result struct {
		analysis *models.CostAnalysis
		err      error
	}
	follower := make(chan result, 1)
	go func() {
		got, err := svc.Analyze(context.Background(), sfDeveloper(), opts)
		follower <- result{got, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancelLeader()
	assert.ErrorIs(t, <-leaderErr, context.Canceled)

	close(commercial.release)
	res := <-follower
	require.NoError(t, res.err)
	assert.Equal(t, models.SalarySourceCommercial, res.analysis.SalaryData.Source)
	assert.InDelta(t, 120000.0, res.analysis.SalaryData.Median, 1e-6)
	assert.Equal(t, 1, commercial.Calls())
	assert.Equal(t, 1, svc.CacheStats().Size)
}

func TestAnalyze_CacheDisabled(t *testing.T) {
	commercial := &fakeProvider{name: "commercial", data: salaryFrom(models.SalarySourceCommercial, 120000, 0.9)}
	svc := newTestService(t, testDeps{commercial: commercial})
	opts := models.DefaultAnalysisOptions()
	opts.UseCache = false

	for i := 0; i < 2; i++ {
		got, err := svc.Analyze(context.Background(), sfDeveloper(), opts)
		require.NoError(t, err)
		assert.False(t, got.Metadata.CacheHit)
	}
	assert.Equal(t, 2, commercial.Calls())
	assert.Equal(t, 0, svc.CacheStats().Size)
}

func TestAnalyze_CoalescesConcurrentCalls(t *testing.T) {
	commercial := &fakeProvider{
		name:    "commercial",
		data:    salaryFrom(models.SalarySourceCommercial, 120000, 0.9),
		release: make(chan struct{}),
	}
	svc := newTestService(t, testDeps{commercial: commercial})

	const callers = 8
	var wg sync.WaitGroup
	results := make([]*models.CostAnalysis, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := svc.Analyze(context.Background(), sfDeveloper(), models.DefaultAnalysisOptions())
			assert.NoError(t, err)
			results[i] = got
		}(i)
	}
	time.Sleep(100 * time.Millisecond)
	close(commercial.release)
	wg.Wait()

	assert.Equal(t, 1, commercial.Calls())
	for _, r := range results {
		require.NotNil(t, r)
		assert.Equal(t, results[0].Metadata.AnalysisID, r.Metadata.AnalysisID)
	}
}

func TestAnalyze_Insights(t *testing.T) {
	svc := newTestService(t, testDeps{insights: fakeInsights{}, noCache: true})

	got, err := svc.Analyze(context.Background(), sfDeveloper(), models.DefaultAnalysisOptions())
	require.NoError(t, err)
	assert.Equal(t, models.InsightSourceLLM, got.Insights.GeneratedBy)

	opts := models.DefaultAnalysisOptions()
	opts.IncludeInsights = false
	got, err = svc.Analyze(context.Background(), sfDeveloper(), opts)
	require.NoError(t, err)
	assert.Equal(t, models.InsightSourceTemplate, got.Insights.GeneratedBy)
}

func TestAnalyze_ModelFromSkills(t *testing.T) {
	svc := newTestService(t, testDeps{noCache: true})
	profile := sfDeveloper()
	profile.Skills = []string{"python", "gpt-4o"}

	got, err := svc.Analyze(context.Background(), profile, models.DefaultAnalysisOptions())
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", got.AICostData.Model.ModelID)
	assert.Greater(t, got.AICostData.AnnualCosts.TokenCosts, 0.0)
}

func TestQuickComparison(t *testing.T) {
	svc := newTestService(t, testDeps{})

	quick, err := svc.QuickComparison(context.Background(), sfDeveloper())
	require.NoError(t, err)
	full, err := svc.Analyze(context.Background(), sfDeveloper(), models.DefaultAnalysisOptions())
	require.NoError(t, err)

	assert.Equal(t, full.Comparison.Human.Total, quick.HumanCost)
	assert.Equal(t, full.Comparison.AI.Total, quick.AICost)
	assert.Equal(t, full.Comparison.Savings.Absolute, quick.Savings)
	assert.Equal(t, full.Confidence, quick.Confidence)
	assert.Equal(t, int64(0), svc.CacheStats().Hits, "quick comparisons bypass the cache")
}

func TestScenarioAnalysis(t *testing.T) {
	commercial := &fakeProvider{name: "commercial", data: salaryFrom(models.SalarySourceCommercial, 120000, 0.9)}
	svc := newTestService(t, testDeps{commercial: commercial})
	opts := models.DefaultAnalysisOptions()
	opts.Model = "gpt-4o"

	got, err := svc.ScenarioAnalysisWithOptions(context.Background(), sfDeveloper(), opts)
	require.NoError(t, err)
	require.NotNil(t, got.Conservative)
	require.NotNil(t, got.Moderate)
	require.NotNil(t, got.Aggressive)
	assert.Equal(t, 1, commercial.Calls())

	mod := got.Moderate.AICostData.AnnualCosts
	agg := got.Aggressive.AICostData.AnnualCosts
	con := got.Conservative.AICostData.AnnualCosts
	assert.InDelta(t, mod.TokenCosts*1.5, agg.TokenCosts, 1e-9)
	assert.InDelta(t, mod.TokenCosts*0.7, con.TokenCosts, 1e-9)
	assert.Equal(t, mod.InfrastructureCosts, agg.InfrastructureCosts)
	assert.Equal(t, mod.MaintenanceCosts, agg.MaintenanceCosts)

	assert.Equal(t, got.Moderate.Comparison.Human, got.Aggressive.Comparison.Human)
	assert.Less(t, got.Aggressive.Comparison.Savings.Absolute, got.Moderate.Comparison.Savings.Absolute)
	assert.Greater(t, got.Conservative.Comparison.Savings.Absolute, got.Moderate.Comparison.Savings.Absolute)
	for _, a := range []*models.CostAnalysis{got.Conservative, got.Moderate, got.Aggressive} {
		assert.GreaterOrEqual(t, a.Confidence, 0.0)
		assert.LessOrEqual(t, a.Confidence, 1.0)
		assert.Equal(t, a.Comparison.Human.Total-a.Comparison.AI.Total, a.Comparison.Savings.Absolute)
	}
	assert.Equal(t, got.Moderate.Metadata.AnalysisID+"-aggressive", got.Aggressive.Metadata.AnalysisID)
}

func TestCacheKey(t *testing.T) {
	a := CacheKey(sfDeveloper(), "")
	b := CacheKey(models.UserProfile{
		Occupation: "SOFTWARE DEVELOPER",
		Experience: "Mid",
		Location:   "san francisco, ca",
		Industry:   "Technology",
		Skills:     []string{"Kubernetes", "go"},
	}, "")

	assert.Equal(t, a, b)
	assert.Regexp(t, `^cost_analysis_[0-9a-f]+$`, a)
	assert.NotEqual(t, a, CacheKey(sfDeveloper(), "gpt-4o"))
}
