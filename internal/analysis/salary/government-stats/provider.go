// Package governmentstats adapts a BLS OEWS style wage time-series API.
package governmentstats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
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
	ProviderName = "government"

	baseConfidence    = 0.9
	nationalPenalty   = 0.1
	seriesPrefix      = "OEU"
	allIndustriesCode = "000000"
)

var (
	ErrNoClassification = errors.New("NO_CLASSIFICATION_MATCH")
	ErrNoWageData       = errors.New("NO_WAGE_DATA")
	ErrRequestFailed    = errors.New("SERIES_REQUEST_FAILED")
)

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
		logger:    logger.ForComponent(log, "government-stats"),
		now:       time.Now,
	}
}

func (p *Provider) Name() string { return ProviderName }

func (p *Provider) Configured() bool {
	return p.config.Enabled && p.config.BaseURL != ""
}

// FetchSalary resolves the occupation to a classification code and returns
// experience-adjusted wage statistics, or nil when nothing usable came back.
func (p *Provider) FetchSalary(ctx context.Context, profile models.UserProfile) *models.SalaryData {
	if !p.Configured() {
		return nil
	}
	start := time.Now()
	data, err := p.fetch(ctx, profile)
	metrics.ProviderLatency.WithLabelValues(ProviderName).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.ProviderRequests.WithLabelValues(ProviderName, outcome(err)).Inc()
		p.logger.Warn("Government wage lookup failed", map[string]interface{}{
			"occupation": profile.Occupation,
			"location":   profile.Location,
			"error":      err.Error(),
		})
		return nil
	}
	metrics.ProviderRequests.WithLabelValues(ProviderName, "success").Inc()
	return p.validator.SalaryData(data)
}

func (p *Provider) fetch(ctx context.Context, profile models.UserProfile) (*models.SalaryData, error) {
	match, ok := referencedata.BestMatch(profile.Occupation)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoClassification, profile.Occupation)
	}

	area, metro := referencedata.AreaCode(profile.Location)
	stats, err := p.querySeries(ctx, match.Code, area, metro)
	if err != nil {
		return nil, err
	}
	if stats.Median == nil && metro {
		p.logger.Debug("No metro median, retrying national", map[string]interface{}{
			"code": match.Code,
			"area": area,
		})
		metro = false
		area = referencedata.NationalAreaCode
		if stats, err = p.querySeries(ctx, match.Code, area, metro); err != nil {
			return nil, err
		}
	}
	if stats.Median == nil {
		return nil, fmt.Errorf("%w: code %s area %s", ErrNoWageData, match.Code, area)
	}

	expMult := referencedata.ExperienceMultiplier(profile.Experience)
	locMult := 1.0
	confidence := baseConfidence * match.Score
	if !metro {
		locMult = referencedata.LocationMultiplier(profile.Location)
		if locationSpecified(profile.Location) {
			confidence -= nationalPenalty
		}
	}
	factor := expMult * locMult

	return &models.SalaryData{
		Median:       *stats.Median * factor,
		Mean:         scaled(stats.Mean, factor),
		Percentile25: scaled(stats.P25, factor),
		Percentile75: scaled(stats.P75, factor),
		Currency:     "USD",
		Source:       models.SalarySourceGovernment,
		Confidence:   calculator.Round(calculator.Clamp01(confidence), 2),
		LastUpdated:  time.Date(stats.Year, time.May, 1, 0, 0, 0, 0, time.UTC),
		Adjustments: models.SalaryAdjustment{
			LocationMultiplier:   locMult,
			ExperienceMultiplier: expMult,
			MatchScore:           match.Score,
			ClassificationCode:   match.Code,
			AreaCode:             area,
		},
	}, nil
}

func (p *Provider) querySeries(ctx context.Context, code, area string, metro bool) (*wageStats, error) {
	year := p.config.DataYear
	if year == 0 {
		year = p.now().Year() - 1
	}

	ids := map[string]string{}
	for _, dt := range []string{datatypeMean, datatypeP25, datatypeMedian, datatypeP75} {
		ids[SeriesID(code, area, metro, dt)] = dt
	}
	req := seriesRequest{
		StartYear:       strconv.Itoa(year - 1),
		EndYear:         strconv.Itoa(year),
		RegistrationKey: p.config.APIKey,
	}
	for id := range ids {
		req.SeriesID = append(req.SeriesID, id)
	}
	sort.Strings(req.SeriesID)

	var raw json.RawMessage
	url := strings.TrimRight(p.config.BaseURL, "/") + "/timeseries/data/"
	if err := p.client.PostJSON(ctx, url, nil, req, &raw); err != nil {
		return nil, classify(err)
	}

	resp := datavalidator.Decode[seriesResponse](p.validator, datavalidator.GovernmentSchema, ProviderName, raw)
	if resp == nil {
		return nil, fmt.Errorf("%w: malformed response", ErrRequestFailed)
	}
	if resp.Status != statusSucceeded {
		return nil, fmt.Errorf("%w: status %s: %s", ErrRequestFailed, resp.Status, strings.Join(resp.Message, "; "))
	}

	stats := &wageStats{}
	for _, s := range resp.Results.Series {
		dt, ok := ids[s.SeriesID]
		if !ok {
			continue
		}
		value, y, ok := latestValue(s.Data)
		if !ok {
			continue
		}
		if y > stats.Year {
			stats.Year = y
		}
		switch dt {
		case datatypeMean:
			stats.Mean = &value
		case datatypeP25:
			stats.P25 = &value
		case datatypeMedian:
			stats.Median = &value
		case datatypeP75:
			stats.P75 = &value
		}
	}
	if stats.Year == 0 {
		stats.Year = year
	}
	return stats, nil
}

// SeriesID builds an OEWS series id: prefix, area type, 7-digit area, the
// all-industries code, the 6-digit occupation code and a 2-digit datatype.
func SeriesID(code, area string, metro bool, datatype string) string {
	areaType := "N"
	if metro {
		areaType = "M"
	}
	return seriesPrefix + areaType + area + allIndustriesCode + strings.ReplaceAll(code, "-", "") + datatype
}

// latestValue returns the newest parseable value; "-" marks a missing estimate.
func latestValue(points []dataPoint) (float64, int, bool) {
	bestYear := -1
	var best float64
	for _, d := range points {
		if d.Value == missingValue {
			continue
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(d.Value, ",", ""), 64)
		if err != nil || v <= 0 {
			continue
		}
		y, err := strconv.Atoi(d.Year)
		if err != nil {
			continue
		}
		if y > bestYear {
			bestYear, best = y, v
		}
	}
	return best, bestYear, bestYear >= 0
}

func scaled(v *float64, factor float64) *float64 {
	if v == nil {
		return nil
	}
	return models.Float64Ptr(*v * factor)
}

func locationSpecified(location string) bool {
	loc := referencedata.NormalizeLocation(location)
	return loc != "" && loc != "remote"
}

func classify(err error) error {
	if httpclient.IsTimeout(err) {
		return stderrors.NewProviderTimeoutError(ProviderName, err)
	}
	return stderrors.NewProviderUnavailableError(ProviderName, err)
}

func outcome(err error) string {
	if code, ok := stderrors.CodeOf(err); ok {
		if code == stderrors.ErrCodeProviderTimeout {
			return "timeout"
		}
		return "error"
	}
	return "empty"
}
