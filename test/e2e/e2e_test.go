// test/e2e/e2e_test.go
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cost-analysis-engine/internal/api"
	"cost-analysis-engine/internal/bootstrap"
	"cost-analysis-engine/internal/common/config"
	"cost-analysis-engine/internal/common/logger"
	"cost-analysis-engine/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

type stack struct {
	server          *httptest.Server
	redis           *miniredis.Miniredis
	commercialCalls *int32
	llmCalls        *int32
}

func newCommercialServer(t testing.TB, calls *int32) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		assert.Equal(t, "/v1/salaries/estimate", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"matchedTitle":"Software Developer","median":150000,"percentile25":120000,"percentile75":185000,"sampleSize":1200}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newLLMServer(t testing.TB, calls *int32) *httptest.Server {
	content := `Here is the analysis:
{"summary":"Automation is strongly favoured for this role.","findings":["Human cost far exceeds AI cost"],"recommendations":["Pilot on code review"],"riskFactors":["Model quality drift"],"assumptions":["Full-time workload"],"confidence":0.85}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newStack(t testing.TB) *stack {
	s := &stack{commercialCalls: new(int32), llmCalls: new(int32)}
	s.redis = miniredis.RunT(t)

	cfg := &config.Config{}
	cfg.Cache.Store = bootstrap.StoreRedis
	cfg.Cache.DefaultTTL = 3600000
	cfg.Database.Redis.Address = s.redis.Addr()
	cfg.Analysis.ConfidenceThreshold = 0.3

	cfg.Providers.Compensation.Enabled = true
	cfg.Providers.Compensation.BaseURL = newCommercialServer(t, s.commercialCalls).URL
	cfg.Providers.Compensation.Timeout = 5000

	cfg.Providers.LLM.Enabled = true
	cfg.Providers.LLM.BaseURL = newLLMServer(t, s.llmCalls).URL
	cfg.Providers.LLM.Model = "test-model"
	cfg.Providers.LLM.MaxTokens = 800
	cfg.Providers.LLM.Timeout = 5000

	log := logger.NewTestLogger(t)
	engine, err := bootstrap.NewEngine(context.Background(), cfg, nil, log)
	require.NoError(t, err)
	t.Cleanup(engine.Close)

	h := api.NewHandler(engine.Service, bootstrap.DefaultOptions(cfg), log)
	s.server = httptest.NewServer(api.NewRouter(h, 10*time.Second))
	t.Cleanup(s.server.Close)
	return s
}

func (s *stack) post(t testing.TB, path string, body interface{}, out interface{}) int {
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(s.server.URL+path, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

var developer = map[string]interface{}{
	"profile": map[string]interface{}{
		"occupation": "Software Developer",
		"experience": "mid",
		"location":   "Austin, TX",
		"industry":   "technology",
		"skills":     []string{"Go", "SQL"},
	},
}

// ==========================
// Tests
// ==========================

func TestFullE2E(t *testing.T) {
	s := newStack(t)

	var first models.CostAnalysis
	require.Equal(t, http.StatusOK, s.post(t, "/api/v1/cost-analysis/", developer, &first))

	assert.Equal(t, models.SalarySourceCommercial, first.SalaryData.Source)
	assert.Equal(t, 150000.0, first.SalaryData.Median)
	assert.InDelta(t, 150000*1.3*1.2, first.Comparison.Human.Total, 1e-6)
	assert.Equal(t, models.InsightSourceLLM, first.Insights.GeneratedBy)
	assert.Equal(t, "Automation is strongly favoured for this role.", first.Insights.Summary)
	assert.False(t, first.Metadata.CacheHit)
	assert.NotEmpty(t, first.Metadata.AnalysisID)

	var second models.CostAnalysis
	require.Equal(t, http.StatusOK, s.post(t, "/api/v1/cost-analysis/", developer, &second))
	assert.True(t, second.Metadata.CacheHit)
	assert.Equal(t, first.Metadata.AnalysisID, second.Metadata.AnalysisID)
	assert.Equal(t, int32(1), atomic.LoadInt32(s.commercialCalls))
	assert.Equal(t, int32(1), atomic.LoadInt32(s.llmCalls))

	assert.True(t, s.redis.Exists("cost_analysis_cache"), "persistent tier written to redis")

	resp, err := http.Get(s.server.URL + "/api/v1/cost-analysis/cache/stats")
	require.NoError(t, err)
	var stats models.CacheStats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	resp.Body.Close()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, 1, stats.Size)

	req, err := http.NewRequest(http.MethodDelete, s.server.URL+"/api/v1/cost-analysis/cache", nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.False(t, s.redis.Exists("cost_analysis_cache"))
}

func TestScenariosAndQuickE2E(t *testing.T) {
	s := newStack(t)

	var scenarios models.ScenarioAnalysis
	require.Equal(t, http.StatusOK, s.post(t, "/api/v1/cost-analysis/scenarios", developer, &scenarios))
	require.NotNil(t, scenarios.Conservative)
	require.NotNil(t, scenarios.Aggressive)
	assert.Less(t, scenarios.Conservative.AICostData.AnnualCosts.TokenCosts, scenarios.Aggressive.AICostData.AnnualCosts.TokenCosts+1e-9)
	assert.Equal(t, scenarios.Moderate.Comparison.Human.Total, scenarios.Aggressive.Comparison.Human.Total)

	var quick models.QuickComparison
	require.Equal(t, http.StatusOK, s.post(t, "/api/v1/cost-analysis/quick", developer, &quick))
	assert.InDelta(t, 150000*1.3*1.2, quick.HumanCost, 1e-6)
	assert.InDelta(t, quick.HumanCost-quick.AICost, quick.Savings, 1e-6)
}

func TestInvalidProfileE2E(t *testing.T) {
	s := newStack(t)

	var body map[string]map[string]interface{}
	status := s.post(t, "/api/v1/cost-analysis/", map[string]interface{}{"profile": map[string]string{"occupation": "  "}}, &body)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_PROFILE", body["error"]["code"])
	assert.Equal(t, int32(0), atomic.LoadInt32(s.commercialCalls))
}

func BenchmarkAnalyze_CacheHit(b *testing.B) {
	s := newStack(b)
	s.post(b, "/api/v1/cost-analysis/", developer, nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.post(b, "/api/v1/cost-analysis/", developer, nil)
	}
}
