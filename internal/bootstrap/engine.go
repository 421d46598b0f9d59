// Package bootstrap assembles the cost analysis engine from application
// configuration. Both the worker manager and the command line tools use it.
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"time"

	aicost "cost-analysis-engine/internal/analysis/ai-cost"
	cachemanager "cost-analysis-engine/internal/analysis/cache-manager"
	costanalysis "cost-analysis-engine/internal/analysis/cost-analysis"
	datavalidator "cost-analysis-engine/internal/analysis/data-validator"
	llminsights "cost-analysis-engine/internal/analysis/llm-insights"
	compensationsurvey "cost-analysis-engine/internal/analysis/salary/compensation-survey"
	governmentstats "cost-analysis-engine/internal/analysis/salary/government-stats"
	salaryestimator "cost-analysis-engine/internal/analysis/salary/salary-estimator"
	"cost-analysis-engine/internal/common/config"
	"cost-analysis-engine/internal/common/database"
	"cost-analysis-engine/internal/common/logger"
	"cost-analysis-engine/internal/common/observability"
	"cost-analysis-engine/internal/models"
	"cost-analysis-engine/pkg/pricing"
)

const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Engine is a fully wired analysis service plus the resources it owns.
type Engine struct {
	Service *costanalysis.Service
	Cache   *cachemanager.Manager[models.CostAnalysis]
	Pricing *aicost.PricingTable

	closers []func() error
	logger  logger.Logger
}

// NewEngine connects the configured cache store, loads the pricing registry
// and builds every provider. Store connection failures are fatal; a missing
// registry file is not.
func NewEngine(ctx context.Context, cfg *config.Config, obs *observability.Observability, log logger.Logger) (*Engine, error) {
	e := &Engine{logger: logger.ForComponent(log, "bootstrap")}

	store, err := e.openStore(ctx, cfg)
	if err != nil {
		e.Close()
		return nil, err
	}

	cache := cachemanager.New[models.CostAnalysis](ctx, store, cachemanager.Options{
		Namespace:     cfg.Cache.Namespace,
		MemoryMaxSize: cfg.Cache.MemoryMaxSize,
		StoreMaxSize:  cfg.Cache.StoreMaxSize,
		DefaultTTL:    config.GetDuration(cfg.Cache.DefaultTTL),
	}, log)

	validator := datavalidator.New(log)
	table := aicost.NewPricingTable()
	e.applyRegistry(table, cfg.Pricing.RegistryPath)

	gov := cfg.Providers.Government
	comp := cfg.Providers.Compensation
	llm := cfg.Providers.LLM

	e.Cache = cache
	e.Pricing = table
	e.Service = costanalysis.NewService(costanalysis.Config{
		CommercialMinConfidence: cfg.Analysis.CommercialMinConfidence,
		EstimateMinConfidence:   cfg.Analysis.EstimateMinConfidence,
		DefaultModel:            cfg.Analysis.DefaultModel,
		EngineVersion:           cfg.Analysis.EngineVersion,
		Timeout:                 config.GetDuration(cfg.Analysis.Timeout),
	}, costanalysis.Dependencies{
		Commercial: compensationsurvey.New(compensationsurvey.Config{
			Enabled:    comp.Enabled,
			BaseURL:    comp.BaseURL,
			APIKey:     comp.APIKey,
			Timeout:    config.GetDuration(comp.Timeout),
			MaxRetries: comp.MaxRetries,
			RateLimit:  comp.RateLimit,
		}, validator, log),
		Government: governmentstats.New(governmentstats.Config{
			Enabled:    gov.Enabled,
			BaseURL:    gov.BaseURL,
			APIKey:     gov.APIKey,
			Timeout:    config.GetDuration(gov.Timeout),
			MaxRetries: gov.MaxRetries,
			RateLimit:  gov.RateLimit,
			DataYear:   gov.DataYear,
		}, validator, log),
		Estimator: salaryestimator.New(log),
		AICost:    aicost.New(table, validator, log),
		Insights: llminsights.New(llminsights.Config{
			Enabled:     llm.Enabled,
			BaseURL:     llm.BaseURL,
			APIKey:      llm.APIKey,
			Model:       llm.Model,
			Temperature: llm.Temperature,
			MaxTokens:   llm.MaxTokens,
			Timeout:     config.GetDuration(llm.Timeout),
			MaxRetries:  llm.MaxRetries,
			RateLimit:   llm.RateLimit,
		}, validator, log),
		Cache:         cache,
		Validator:     validator,
		Observability: obs,
	}, log)

	return e, nil
}

// DefaultOptions derives request defaults from the analysis and cache blocks.
func DefaultOptions(cfg *config.Config) models.AnalysisOptions {
	opts := models.DefaultAnalysisOptions()
	if cfg == nil {
		return opts
	}
	opts.ConfidenceThreshold = cfg.Analysis.ConfidenceThreshold
	if cfg.Cache.DefaultTTL > 0 {
		opts.CacheTTL = config.GetDuration(cfg.Cache.DefaultTTL)
	}
	return opts
}

func (e *Engine) openStore(ctx context.Context, cfg *config.Config) (cachemanager.Store, error) {
	switch cfg.Cache.Store {
	case "", StoreMemory:
		return nil, nil
	case StoreRedis:
		var client *database.RedisClient
		err := RetryWithBackoff(ctx, func() error {
			var err error
			client, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return client.Ping(ctx)
		}, 5, time.Second, e.logger, "Redis connection")
		if err != nil {
			return nil, err
		}
		e.closers = append(e.closers, client.Close)
		e.logger.Info("Redis cache store connected", map[string]interface{}{
			"address": cfg.Database.Redis.Address,
		})
		return client, nil
	case StorePostgres:
		var client *database.PostgresClient
		err := RetryWithBackoff(ctx, func() error {
			var err error
			client, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return client.Ping(ctx)
		}, 5, time.Second, e.logger, "PostgreSQL connection")
		if err != nil {
			return nil, err
		}
		e.closers = append(e.closers, client.Close)
		if err := client.EnsureCacheTable(ctx); err != nil {
			return nil, fmt.Errorf("prepare cache table: %w", err)
		}
		e.logger.Info("PostgreSQL cache store connected", map[string]interface{}{
			"host":     cfg.Database.Postgres.Host,
			"database": cfg.Database.Postgres.Database,
		})
		return client, nil
	default:
		return nil, fmt.Errorf("unknown cache store %q", cfg.Cache.Store)
	}
}

func (e *Engine) applyRegistry(table *aicost.PricingTable, path string) {
	if path == "" {
		return
	}
	reg, err := pricing.LoadRegistry(path)
	if err != nil {
		level := e.logger.Warn
		if os.IsNotExist(err) {
			level = e.logger.Info
		}
		level("Pricing registry not loaded, using built-in prices", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
		return
	}
	if err := reg.Validate(); err != nil {
		e.logger.Warn("Pricing registry is invalid, using built-in prices", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
		return
	}
	n := table.Apply(reg)
	e.logger.Info("Pricing registry applied", map[string]interface{}{
		"path":    path,
		"models":  n,
		"version": reg.Version,
	})
}

// Close releases store connections in reverse order of opening.
func (e *Engine) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			e.logger.Warn("Failed to close resource", map[string]interface{}{"error": err.Error()})
		}
	}
	e.closers = nil
}
