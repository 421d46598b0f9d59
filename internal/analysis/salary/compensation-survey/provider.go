// Package compensationsurvey adapts a commercial salary-estimate API.
package compensationsurvey

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"cost-analysis-engine/internal/analysis/calculator"
	datavalidator "cost-analysis-engine/internal/analysis/data-validator"
	referencedata "cost-analysis-engine/internal/analysis/reference-data"
	stderrors "cost-analysis-engine/internal/common/errors"
	httpclient "cost-analysis-engine/internal/common/http"
	"cost-analysis-engine/internal/common/logger"
	"cost-analysis-engine/internal/common/metrics"
	"cost-analysis-engine/internal/models"
)

const (
	ProviderName = "commercial"
	maxSkills    = 5
)

var ErrMalformedEstimate = errors.New("MALFORMED_ESTIMATE")

type Provider struct {
	config    Config
	client    *httpclient.Client
	validator *datavalidator.Validator
	logger    logger.Logger
	now       func() time.Time
}

func New(cfg Config, v *datavalidator.Validator, log logger.Logger) *Provider {
	return &Provider{
		config: cfg,
		client: httpclient.NewClientWithOptions(httpclient.Options{
			Timeout:    cfg.Timeout,
			MaxRetries: cfg.MaxRetries,
			RateLimit:  cfg.RateLimit,
		}),
		validator: v,
		logger:    logger.ForComponent(log, "compensation-survey"),
		now:       time.Now,
	}
}

func (p *Provider) Name() string { return ProviderName }

func (p *Provider) Configured() bool {
	return p.config.Enabled && p.config.BaseURL != ""
}

// FetchSalary asks the survey API for an estimate. The provider's own
// location and experience adjustments are applied to the median; confidence
// comes from the sample size scaled by how well the matched title fits.
func (p *Provider) FetchSalary(ctx context.Context, profile models.UserProfile) *models.SalaryData {
	if !p.Configured() {
		return nil
	}

	req := estimateRequest{
		JobTitle:        referencedata.NormalizeOccupation(profile.Occupation),
		Location:        referencedata.NormalizeLocation(profile.Location),
		ExperienceLevel: string(referencedata.NormalizeExperience(profile.Experience)),
		Skills:          profile.TopSkills(maxSkills),
	}
	headers := map[string]string{}
	if p.config.APIKey != "" {
		headers["Authorization"] = "Bearer " + p.config.APIKey
	}

	start := time.Now()
	var raw json.RawMessage
	url := strings.TrimRight(p.config.BaseURL, "/") + "/v1/salaries/estimate"
	err := p.client.PostJSON(ctx, url, headers, req, &raw)
	metrics.ProviderLatency.WithLabelValues(ProviderName).Observe(time.Since(start).Seconds())
	if err != nil {
		stdErr := stderrors.NewProviderUnavailableError(ProviderName, err)
		outcome := "error"
		if httpclient.IsTimeout(err) {
			stdErr = stderrors.NewProviderTimeoutError(ProviderName, err)
			outcome = "timeout"
		}
		metrics.ProviderRequests.WithLabelValues(ProviderName, outcome).Inc()
		p.logger.Warn("Compensation survey request failed", map[string]interface{}{
			"jobTitle":  req.JobTitle,
			"errorCode": string(stdErr.Code),
			"error":     stdErr.Details,
		})
		return nil
	}

	resp := datavalidator.Decode[estimateResponse](p.validator, datavalidator.CommercialSchema, ProviderName, raw)
	if resp == nil {
		metrics.ProviderRequests.WithLabelValues(ProviderName, "invalid").Inc()
		return nil
	}
	metrics.ProviderRequests.WithLabelValues(ProviderName, "success").Inc()

	return p.validator.SalaryData(p.toSalaryData(req.JobTitle, resp))
}

func (p *Provider) toSalaryData(jobTitle string, resp *estimateResponse) *models.SalaryData {
	locAdj := orOne(resp.LocationAdjustment)
	expAdj := orOne(resp.ExperienceAdjustment)
	factor := locAdj * expAdj

	match := 0.0
	if resp.MatchedTitle != "" {
		match = referencedata.WordOverlap(jobTitle, resp.MatchedTitle)
	}
	currency := strings.ToUpper(resp.Currency)
	if currency == "" {
		currency = "USD"
	}

	return &models.SalaryData{
		Median:       resp.Median * factor,
		Mean:         scaled(resp.Mean, factor),
		Percentile25: scaled(resp.Percentile25, factor),
		Percentile75: scaled(resp.Percentile75, factor),
		Currency:     currency,
		Source:       models.SalarySourceCommercial,
		Confidence:   calculator.Round(SampleConfidence(resp.SampleSize)*match, 2),
		LastUpdated:  p.now().UTC(),
		Adjustments: models.SalaryAdjustment{
			LocationMultiplier:   locAdj,
			ExperienceMultiplier: expAdj,
			MatchScore:           match,
		},
	}
}

// SampleConfidence maps survey sample size to a base confidence.
func SampleConfidence(sampleSize int) float64 {
	switch {
	case sampleSize >= 1000:
		return 0.95
	case sampleSize >= 500:
		return 0.9
	case sampleSize >= 100:
		return 0.8
	case sampleSize >= 30:
		return 0.7
	case sampleSize >= 10:
		return 0.55
	default:
		return 0.4
	}
}

func orOne(v float64) float64 {
	if v <= 0 {
		return 1.0
	}
	return v
}

func scaled(v *float64, factor float64) *float64 {
	if v == nil {
		return nil
	}
	return models.Float64Ptr(*v * factor)
}
