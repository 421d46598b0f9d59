package analyzecost

import (
	"fmt"
	"time"

	"cost-analysis-engine/internal/common/config"
	"cost-analysis-engine/internal/models"
)

type Config struct {
	Enabled       bool
	MaxJobsActive int
	Timeout       time.Duration
	Defaults      models.AnalysisOptions
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       2 * time.Minute,
		Defaults:      models.DefaultAnalysisOptions(),
	}
}

// createConfigFromAppConfig overlays the workers.analyze-cost block and the
// analysis threshold onto the defaults.
func createConfigFromAppConfig(appCfg *config.Config) *Config {
	cfg := DefaultConfig()
	if appCfg == nil {
		return cfg
	}
	wc := config.GetWorkerConfig(appCfg, TaskType)
	cfg.Enabled = wc.Enabled
	if wc.MaxJobsActive > 0 {
		cfg.MaxJobsActive = wc.MaxJobsActive
	}
	if wc.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wc.Timeout)
	}
	cfg.Defaults.ConfidenceThreshold = appCfg.Analysis.ConfidenceThreshold
	if appCfg.Cache.DefaultTTL > 0 {
		cfg.Defaults.CacheTTL = config.GetDuration(appCfg.Cache.DefaultTTL)
	}
	return cfg
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	if c.Defaults.ConfidenceThreshold < 0 || c.Defaults.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence threshold must be within [0, 1]")
	}
	return nil
}
