// Package llminsights turns a cost comparison into narrative insights using
// an OpenAI-compatible chat API, with heuristic and template fallbacks.
package llminsights

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"time"

	"cost-analysis-engine/internal/analysis/calculator"
	datavalidator "cost-analysis-engine/internal/analysis/data-validator"
	stderrors "cost-analysis-engine/internal/common/errors"
	httpclient "cost-analysis-engine/internal/common/http"
	"cost-analysis-engine/internal/common/logger"
	"cost-analysis-engine/internal/common/metrics"
	"cost-analysis-engine/internal/models"
)

const ProviderName = "llm"

var errInvalidCompletion = errors.New("INVALID_COMPLETION")

type Provider struct {
	config    Config
	client    *httpclient.Client
	validator *datavalidator.Validator
	logger    logger.Logger
}

func New(cfg Config, v *datavalidator.Validator, log logger.Logger) *Provider {
	if v == nil {
		v = datavalidator.New(log)
	}
	return &Provider{
		config: cfg,
		client: httpclient.NewClientWithOptions(httpclient.Options{
			Timeout:    cfg.Timeout,
			MaxRetries: cfg.MaxRetries,
			RateLimit:  cfg.RateLimit,
		}),
		validator: v,
		logger:    logger.ForComponent(log, "llm-insights"),
	}
}

func (p *Provider) Configured() bool {
	return p.config.Enabled && p.config.BaseURL != "" && p.config.Model != ""
}

// Generate returns insights for the comparison. It never fails: transport or
// parse problems degrade to heuristic and then template insights.
func (p *Provider) Generate(ctx context.Context, profile models.UserProfile, salary *models.SalaryData, ai *models.AICostData, cmp models.CostComparison) *models.CostAnalysisInsights {
	insights := p.generate(ctx, profile, salary, ai, cmp)
	if insights == nil {
		insights = TemplateInsights(profile, salary, ai, cmp)
	} else {
		insights.Confidence = calculator.Round(math.Min(insights.Confidence, math.Min(salary.Confidence, ai.Confidence)), 2)
		insights.Sources = []string{"llm:" + p.config.Model, "salary:" + string(salary.Source)}
		if validated := p.validator.Insights(insights); validated != nil {
			insights = validated
		} else {
			insights = TemplateInsights(profile, salary, ai, cmp)
		}
	}
	metrics.InsightsGenerated.WithLabelValues(string(insights.GeneratedBy)).Inc()
	return insights
}

func (p *Provider) generate(ctx context.Context, profile models.UserProfile, salary *models.SalaryData, ai *models.AICostData, cmp models.CostComparison) *models.CostAnalysisInsights {
	if !p.Configured() || salary == nil || ai == nil {
		return nil
	}

	content, err := p.complete(ctx, buildUserPrompt(profile, salary, ai, cmp))
	if err != nil {
		stdErr := stderrors.NewLLMInsightsFailedError(err)
		p.logger.Warn("LLM insight request failed, using template", map[string]interface{}{
			"model":     p.config.Model,
			"errorCode": string(stdErr.Code),
			"error":     err,
		})
		return nil
	}

	if insights := parseStructured(p.validator, content); insights != nil {
		return insights
	}
	if insights := parseHeuristic(content); insights != nil {
		p.logger.Info("LLM response was not valid JSON, recovered insights heuristically", map[string]interface{}{
			"model": p.config.Model,
		})
		return insights
	}
	p.logger.Warn("LLM response could not be parsed, using template", map[string]interface{}{
		"model": p.config.Model,
	})
	return nil
}

func (p *Provider) complete(ctx context.Context, userPrompt string) (string, error) {
	req := chatRequest{
		Model: p.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: p.config.Temperature,
		MaxTokens:   p.config.MaxTokens,
	}
	headers := map[string]string{}
	if p.config.APIKey != "" {
		headers["Authorization"] = "Bearer " + p.config.APIKey
	}

	start := time.Now()
	var raw json.RawMessage
	url := strings.TrimRight(p.config.BaseURL, "/") + "/chat/completions"
	err := p.client.PostJSON(ctx, url, headers, req, &raw)
	metrics.ProviderLatency.WithLabelValues(ProviderName).Observe(time.Since(start).Seconds())
	if err != nil {
		outcome := "error"
		if httpclient.IsTimeout(err) {
			outcome = "timeout"
		}
		metrics.ProviderRequests.WithLabelValues(ProviderName, outcome).Inc()
		return "", err
	}

	resp := datavalidator.Decode[chatResponse](p.validator, datavalidator.ChatCompletionSchema, ProviderName, raw)
	if resp == nil {
		metrics.ProviderRequests.WithLabelValues(ProviderName, "invalid").Inc()
		return "", errInvalidCompletion
	}
	metrics.ProviderRequests.WithLabelValues(ProviderName, "success").Inc()
	return resp.Choices[0].Message.Content, nil
}
