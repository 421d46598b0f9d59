// Package costanalysis orchestrates salary resolution, AI cost estimation,
// comparison and insight generation behind a cached, coalesced entry point.
package costanalysis

import (
	"context"
	"time"

	aicost "cost-analysis-engine/internal/analysis/ai-cost"
	cachemanager "cost-analysis-engine/internal/analysis/cache-manager"
	"cost-analysis-engine/internal/analysis/calculator"
	datavalidator "cost-analysis-engine/internal/analysis/data-validator"
	llminsights "cost-analysis-engine/internal/analysis/llm-insights"
	stderrors "cost-analysis-engine/internal/common/errors"
	"cost-analysis-engine/internal/common/logger"
	"cost-analysis-engine/internal/common/metrics"
	"cost-analysis-engine/internal/common/observability"
	"cost-analysis-engine/internal/models"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"
)

const CacheKeyPrefix = "cost_analysis_"

// SalaryProvider is one tier of the salary chain. Implementations log their
// own failures and return nil.
type SalaryProvider interface {
	Name() string
	FetchSalary(ctx context.Context, profile models.UserProfile) *models.SalaryData
}

type InsightGenerator interface {
	Configured() bool
	Generate(ctx context.Context, profile models.UserProfile, salary *models.SalaryData, ai *models.AICostData, cmp models.CostComparison) *models.CostAnalysisInsights
}

type Config struct {
	CommercialMinConfidence float64
	EstimateMinConfidence   float64
	DefaultModel            string
	EngineVersion           string
	// Timeout bounds one analysis run independently of the callers waiting on it.
	Timeout time.Duration
}

func (c *Config) applyDefaults() {
	if c.CommercialMinConfidence == 0 {
		c.CommercialMinConfidence = 0.7
	}
	if c.EstimateMinConfidence == 0 {
		c.EstimateMinConfidence = 0.5
	}
	if c.DefaultModel == "" {
		c.DefaultModel = aicost.DefaultModel
	}
	if c.EngineVersion == "" {
		c.EngineVersion = "1.0.0"
	}
	if c.Timeout == 0 {
		c.Timeout = time.Minute
	}
}

// Dependencies are the collaborators a Service is assembled from. Nil salary
// tiers, insights or cache are skipped.
type Dependencies struct {
	Commercial    SalaryProvider
	Government    SalaryProvider
	Estimator     SalaryProvider
	AICost        *aicost.Estimator
	Insights      InsightGenerator
	Cache         *cachemanager.Manager[models.CostAnalysis]
	Validator     *datavalidator.Validator
	Observability *observability.Observability
}

type Service struct {
	config Config
	deps   Dependencies
	group  singleflight.Group
	logger logger.Logger
	now    func() time.Time
	newID  func() string
}

func NewService(cfg Config, deps Dependencies, log logger.Logger) *Service {
	cfg.applyDefaults()
	if deps.Validator == nil {
		deps.Validator = datavalidator.New(log)
	}
	if deps.AICost == nil {
		deps.AICost = aicost.New(nil, deps.Validator, log)
	}
	if deps.Observability == nil {
		deps.Observability = &observability.Observability{}
	}
	return &Service{
		config: cfg,
		deps:   deps,
		logger: logger.ForComponent(log, "cost-analysis"),
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
	}
}

type cacheKeyParams struct {
	Profile models.UserProfile `json:"profile"`
	Model   string             `json:"model,omitempty"`
}

// CacheKey is stable across casing, whitespace and skill order. modelID is
// the resolved model, since skill order can change which model is picked.
func CacheKey(profile models.UserProfile, modelID string) string {
	return cachemanager.GenerateKey(CacheKeyPrefix, cacheKeyParams{
		Profile: profile.Normalized(),
		Model:   modelID,
	})
}

// Analyze runs the full pipeline. With FallbackToEstimates it always returns
// an analysis for a valid profile; otherwise it fails when a stage cannot
// produce data or the confidence is below the threshold.
func (s *Service) Analyze(ctx context.Context, profile models.UserProfile, opts models.AnalysisOptions) (*models.CostAnalysis, error) {
	start := time.Now()
	defer func() {
		metrics.AnalysisDuration.WithLabelValues("analyze").Observe(time.Since(start).Seconds())
	}()

	if err := s.deps.Validator.ValidateProfile(profile); err != nil {
		return nil, err
	}

	modelID := s.deps.AICost.Pricing().ResolveModel(profile, opts.Model, s.config.DefaultModel)
	key := CacheKey(profile, modelID)
	useCache := opts.UseCache && s.deps.Cache != nil
	if useCache {
		if cached, ok := s.deps.Cache.Get(key); ok {
			out := cached.Clone()
			out.Metadata.CacheHit = true
			s.logger.Debug("Serving cached analysis", map[string]interface{}{
				"cacheKey":   key,
				"analysisId": out.Metadata.AnalysisID,
			})
			return &out, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// The shared run is detached from any one caller so that a cancelled
	// caller does not degrade the result handed to the others.
	flightKey := cachemanager.GenerateKey(key+"_", opts)
	ch := s.group.DoChan(flightKey, func() (interface{}, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.Timeout)
		defer cancel()
		return s.analyze(runCtx, profile, opts, modelID, key, useCache)
	})

	select {
	case <-ctx.Done():
		s.logger.Debug("Caller left before analysis completed", map[string]interface{}{"cacheKey": key})
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			s.logger.Debug("Coalesced concurrent analysis", map[string]interface{}{"cacheKey": key})
		}
		out := res.Val.(*models.CostAnalysis).Clone()
		return &out, nil
	}
}

func (s *Service) analyze(ctx context.Context, profile models.UserProfile, opts models.AnalysisOptions, modelID, key string, useCache bool) (*models.CostAnalysis, error) {
	start := s.now()
	ctx, end := s.deps.Observability.StartSpan(ctx, "cost_analysis.analyze",
		attribute.String("occupation", profile.Occupation))
	var spanErr error
	defer func() { end(spanErr) }()

	log := s.logger.WithFields(map[string]interface{}{"occupation": profile.Occupation})

	salary := s.resolveSalary(ctx, profile, opts)
	if salary == nil {
		spanErr = stderrors.NewSalaryResolutionFailedError(profile.Occupation)
		return s.fail(ctx, profile, opts, spanErr)
	}

	aiCost := s.resolveAICost(ctx, profile, modelID)
	if aiCost == nil {
		spanErr = stderrors.NewAICostResolutionFailedError(modelID)
		return s.fail(ctx, profile, opts, spanErr)
	}

	human, err := calculator.HumanCost(salary.Median, 1, 1)
	if err != nil {
		spanErr = stderrors.NewCalculationFailedError(err)
		return s.fail(ctx, profile, opts, spanErr)
	}
	cmp := calculator.Compare(human, aiCost.AnnualCosts, salary.Confidence, aiCost.Confidence)

	insights := s.insights(ctx, profile, salary, aiCost, cmp, opts)

	analysis := &models.CostAnalysis{
		Profile:    profile,
		SalaryData: *salary,
		AICostData: *aiCost,
		Comparison: cmp,
		Insights:   *insights,
		Confidence: cmp.Confidence,
		Metadata: models.AnalysisMetadata{
			AnalysisID:    s.newID(),
			AnalyzedAt:    start.UTC(),
			EngineVersion: s.config.EngineVersion,
		},
	}

	if analysis.Confidence < opts.ConfidenceThreshold {
		if !opts.FallbackToEstimates {
			spanErr = stderrors.NewConfidenceBelowThresholdError(analysis.Confidence, opts.ConfidenceThreshold)
			return nil, spanErr
		}
		analysis.Metadata.BelowThreshold = true
		log.Warn("Analysis confidence below threshold", map[string]interface{}{
			"confidence": analysis.Confidence,
			"threshold":  opts.ConfidenceThreshold,
		})
	}
	analysis.Metadata.ProcessingTime = s.now().Sub(start)

	// Tiers skipped on a dead context leave a lower-grade result.
	if useCache {
		if err := ctx.Err(); err != nil {
			log.Debug("Skipping cache write for interrupted analysis", map[string]interface{}{
				"analysisId": analysis.Metadata.AnalysisID,
				"error":      err.Error(),
			})
		} else {
			s.deps.Cache.Set(ctx, key, *analysis, opts.CacheTTL)
		}
	}

	log.Info("Cost analysis completed", map[string]interface{}{
		"analysisId":   analysis.Metadata.AnalysisID,
		"salarySource": string(salary.Source),
		"model":        aiCost.Model.ModelID,
		"savings":      cmp.Savings.Absolute,
		"confidence":   analysis.Confidence,
	})
	return analysis, nil
}

// fail either returns err or, when estimates are allowed, a fully estimated
// analysis. Fallback analyses are not cached.
func (s *Service) fail(ctx context.Context, profile models.UserProfile, opts models.AnalysisOptions, err error) (*models.CostAnalysis, error) {
	code, _ := stderrors.CodeOf(err)
	if !opts.FallbackToEstimates {
		s.logger.Warn("Cost analysis failed", map[string]interface{}{
			"occupation": profile.Occupation,
			"errorCode":  string(code),
		})
		return nil, err
	}
	s.logger.Warn("Cost analysis degraded to fallback estimate", map[string]interface{}{
		"occupation": profile.Occupation,
		"errorCode":  string(code),
	})
	metrics.FallbackAnalyses.WithLabelValues(string(code)).Inc()
	return s.fallbackAnalysis(ctx, profile, opts), nil
}

func (s *Service) resolveAICost(ctx context.Context, profile models.UserProfile, modelID string) *models.AICostData {
	_, end := s.deps.Observability.StartSpan(ctx, "cost_analysis.ai_cost", attribute.String("model", modelID))
	data := s.deps.AICost.Estimate(profile, modelID)
	end(nil)
	return data
}

func (s *Service) insights(ctx context.Context, profile models.UserProfile, salary *models.SalaryData, ai *models.AICostData, cmp models.CostComparison, opts models.AnalysisOptions) *models.CostAnalysisInsights {
	if opts.IncludeInsights && s.deps.Insights != nil && s.deps.Insights.Configured() {
		ctx, end := s.deps.Observability.StartSpan(ctx, "cost_analysis.insights")
		defer end(nil)
		return s.deps.Insights.Generate(ctx, profile, salary, ai, cmp)
	}
	insights := llminsights.TemplateInsights(profile, salary, ai, cmp)
	metrics.InsightsGenerated.WithLabelValues(string(insights.GeneratedBy)).Inc()
	return insights
}

// QuickComparison resolves salary and AI cost and compares them, with no
// insights and no caching.
func (s *Service) QuickComparison(ctx context.Context, profile models.UserProfile) (*models.QuickComparison, error) {
	start := time.Now()
	defer func() {
		metrics.AnalysisDuration.WithLabelValues("quick").Observe(time.Since(start).Seconds())
	}()

	if err := s.deps.Validator.ValidateProfile(profile); err != nil {
		return nil, err
	}
	ctx, end := s.deps.Observability.StartSpan(ctx, "cost_analysis.quick")
	var spanErr error
	defer func() { end(spanErr) }()

	salary := s.resolveSalary(ctx, profile, models.DefaultAnalysisOptions())
	if salary == nil {
		spanErr = stderrors.NewSalaryResolutionFailedError(profile.Occupation)
		return nil, spanErr
	}
	modelID := s.deps.AICost.Pricing().ResolveModel(profile, "", s.config.DefaultModel)
	aiCost := s.resolveAICost(ctx, profile, modelID)
	if aiCost == nil {
		spanErr = stderrors.NewAICostResolutionFailedError(modelID)
		return nil, spanErr
	}
	human, err := calculator.HumanCost(salary.Median, 1, 1)
	if err != nil {
		spanErr = stderrors.NewCalculationFailedError(err)
		return nil, spanErr
	}
	cmp := calculator.Compare(human, aiCost.AnnualCosts, salary.Confidence, aiCost.Confidence)

	return &models.QuickComparison{
		HumanCost:  cmp.Human.Total,
		AICost:     cmp.AI.Total,
		Savings:    cmp.Savings.Absolute,
		Confidence: cmp.Confidence,
	}, nil
}

func (s *Service) ClearCache(ctx context.Context) {
	if s.deps.Cache == nil {
		return
	}
	s.deps.Cache.Clear(ctx)
	s.logger.Info("Analysis cache cleared", nil)
}

func (s *Service) CacheStats() models.CacheStats {
	if s.deps.Cache == nil {
		return models.CacheStats{}
	}
	return s.deps.Cache.Stats()
}
