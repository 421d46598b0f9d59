package costanalysis

import (
	"context"

	"cost-analysis-engine/internal/common/metrics"
	"cost-analysis-engine/internal/models"

	"go.opentelemetry.io/otel/attribute"
)

// resolveSalary walks the tiers: commercial, then government when the
// commercial result is missing or weak, then the static estimator when the
// best result is still weak and estimates are allowed. When no tier clears
// its threshold the highest-confidence candidate wins.
func (s *Service) resolveSalary(ctx context.Context, profile models.UserProfile, opts models.AnalysisOptions) *models.SalaryData {
	ctx, end := s.deps.Observability.StartSpan(ctx, "cost_analysis.salary")
	defer end(nil)

	var best *models.SalaryData
	consider := func(d *models.SalaryData) {
		if d != nil && (best == nil || d.Confidence > best.Confidence) {
			best = d
		}
	}

	if d := s.fetch(ctx, s.deps.Commercial, profile); d != nil {
		if d.Confidence >= s.config.CommercialMinConfidence {
			return s.selected(d)
		}
		consider(d)
	}

	consider(s.fetch(ctx, s.deps.Government, profile))
	if best != nil && best.Confidence >= s.config.EstimateMinConfidence {
		return s.selected(best)
	}

	if opts.FallbackToEstimates {
		consider(s.fetch(ctx, s.deps.Estimator, profile))
	}
	if best == nil {
		return nil
	}
	return s.selected(best)
}

func (s *Service) fetch(ctx context.Context, p SalaryProvider, profile models.UserProfile) *models.SalaryData {
	if p == nil {
		return nil
	}
	ctx, end := s.deps.Observability.StartSpan(ctx, "cost_analysis.salary."+p.Name(),
		attribute.String("provider", p.Name()))
	d := p.FetchSalary(ctx, profile)
	end(nil)

	if d != nil {
		s.logger.Debug("Salary candidate", map[string]interface{}{
			"provider":   p.Name(),
			"median":     d.Median,
			"confidence": d.Confidence,
		})
	}
	return d
}

func (s *Service) selected(d *models.SalaryData) *models.SalaryData {
	metrics.SalaryTierSelected.WithLabelValues(string(d.Source)).Inc()
	return d
}
