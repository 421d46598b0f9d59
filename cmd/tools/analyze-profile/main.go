// cmd/tools/analyze-profile/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"cost-analysis-engine/internal/analysis/calculator"
	"cost-analysis-engine/internal/bootstrap"
	"cost-analysis-engine/internal/common/config"
	"cost-analysis-engine/internal/common/logger"
	"cost-analysis-engine/internal/models"
)

type cliOptions struct {
	configPath  string
	profilePath string
	profile     models.UserProfile
	skills      string
	mode        string
	model       string
	store       string
	noCache     bool
	noInsights  bool
	noFallback  bool
	threshold   float64
	summary     bool
	timeout     time.Duration
}

func main() {
	var o cliOptions
	flag.StringVar(&o.configPath, "config", "", "Path to config file (default: configs/config.yaml lookup)")
	flag.StringVar(&o.profilePath, "profile", "", "Path to a JSON profile, or - for stdin")
	flag.StringVar(&o.profile.Occupation, "occupation", "", "Occupation, e.g. \"software developer\"")
	flag.StringVar(&o.profile.Experience, "experience", "", "Experience level: entry, mid, senior, lead")
	flag.StringVar(&o.profile.Location, "location", "", "Location, e.g. \"San Francisco, CA\"")
	flag.StringVar(&o.profile.Industry, "industry", "", "Industry, e.g. technology")
	flag.StringVar(&o.profile.SalaryRange, "salary", "", "Salary hint, e.g. \"90k-110k\"")
	flag.StringVar(&o.skills, "skills", "", "Comma-separated skills")
	flag.StringVar(&o.mode, "mode", "full", "Analysis mode: full, quick, scenarios")
	flag.StringVar(&o.model, "model", "", "AI model override")
	flag.StringVar(&o.store, "store", bootstrap.StoreMemory, "Cache store override: memory, redis, postgres, or empty for the configured one")
	flag.BoolVar(&o.noCache, "no-cache", false, "Bypass the analysis cache")
	flag.BoolVar(&o.noInsights, "no-insights", false, "Skip insight generation")
	flag.BoolVar(&o.noFallback, "no-fallback", false, "Fail instead of falling back to estimates")
	flag.Float64Var(&o.threshold, "threshold", -1, "Minimum confidence; negative keeps the configured value")
	flag.BoolVar(&o.summary, "summary", false, "Print a short text summary instead of JSON")
	flag.DurationVar(&o.timeout, "timeout", time.Minute, "Overall timeout")
	flag.Parse()

	if err := run(o, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(o cliOptions, stdin io.Reader, stdout io.Writer) error {
	cfg, err := loadConfig(o.configPath)
	if err != nil {
		return err
	}
	if o.store != "" {
		cfg.Cache.Store = o.store
	}

	profile, err := resolveProfile(o, stdin)
	if err != nil {
		return err
	}

	log := logger.NewStructured("warn", "console")
	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()

	engine, err := bootstrap.NewEngine(ctx, cfg, nil, log)
	if err != nil {
		return err
	}
	defer engine.Close()

	opts := bootstrap.DefaultOptions(cfg)
	opts.UseCache = !o.noCache
	opts.IncludeInsights = !o.noInsights
	opts.FallbackToEstimates = !o.noFallback
	opts.Model = o.model
	if o.threshold >= 0 {
		opts.ConfidenceThreshold = o.threshold
	}

	var result interface{}
	switch o.mode {
	case "full":
		a, err := engine.Service.Analyze(ctx, profile, opts)
		if err != nil {
			return err
		}
		if o.summary {
			return printSummary(stdout, a)
		}
		result = a
	case "quick":
		if result, err = engine.Service.QuickComparison(ctx, profile); err != nil {
			return err
		}
	case "scenarios":
		if result, err = engine.Service.ScenarioAnalysisWithOptions(ctx, profile, opts); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown mode %q", o.mode)
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

// resolveProfile reads the JSON profile when given and lets individual flags
// override its fields.
func resolveProfile(o cliOptions, stdin io.Reader) (models.UserProfile, error) {
	var p models.UserProfile
	if o.profilePath != "" {
		var data []byte
		var err error
		if o.profilePath == "-" {
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(o.profilePath)
		}
		if err != nil {
			return p, fmt.Errorf("read profile: %w", err)
		}
		if err := json.Unmarshal(data, &p); err != nil {
			return p, fmt.Errorf("parse profile: %w", err)
		}
	}

	overlay := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	overlay(&p.Occupation, o.profile.Occupation)
	overlay(&p.Experience, o.profile.Experience)
	overlay(&p.Location, o.profile.Location)
	overlay(&p.Industry, o.profile.Industry)
	overlay(&p.SalaryRange, o.profile.SalaryRange)
	if o.skills != "" {
		p.Skills = nil
		for _, s := range strings.Split(o.skills, ",") {
			if s = strings.TrimSpace(s); s != "" {
				p.Skills = append(p.Skills, s)
			}
		}
	}

	if strings.TrimSpace(p.Occupation) == "" {
		return p, fmt.Errorf("an occupation is required (use -occupation or -profile)")
	}
	return p, nil
}

func printSummary(w io.Writer, a *models.CostAnalysis) error {
	cur := a.SalaryData.Currency
	lines := []string{
		fmt.Sprintf("Occupation:   %s", a.Profile.Occupation),
		fmt.Sprintf("Salary:       %s (%s, confidence %.2f)", calculator.FormatCurrency(a.SalaryData.Median, cur), a.SalaryData.Source, a.SalaryData.Confidence),
		fmt.Sprintf("Human cost:   %s / year", calculator.FormatCurrency(a.Comparison.Human.Total, cur)),
		fmt.Sprintf("AI cost:      %s / year (%s)", calculator.FormatCurrency(a.Comparison.AI.Total, cur), a.AICostData.Model.ModelID),
		fmt.Sprintf("Savings:      %s (%.1f%%)", calculator.FormatCurrency(a.Comparison.Savings.Absolute, cur), a.Comparison.Savings.Percentage),
		fmt.Sprintf("Payback:      %s", calculator.FormatMonths(a.Comparison.PaybackPeriod)),
		fmt.Sprintf("Confidence:   %.2f", a.Confidence),
	}
	if a.Insights.Summary != "" {
		lines = append(lines, "", a.Insights.Summary)
	}
	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}
