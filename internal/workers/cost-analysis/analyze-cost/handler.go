package analyzecost

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cost-analysis-engine/internal/common/config"
	"cost-analysis-engine/internal/common/errors"
	"cost-analysis-engine/internal/common/logger"
	"cost-analysis-engine/internal/common/metrics"
	"cost-analysis-engine/internal/common/observability"
	"cost-analysis-engine/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "analyze-cost"

// Analyzer is the engine surface the worker drives.
type Analyzer interface {
	Analyze(ctx context.Context, profile models.UserProfile, opts models.AnalysisOptions) (*models.CostAnalysis, error)
	QuickComparison(ctx context.Context, profile models.UserProfile) (*models.QuickComparison, error)
	ScenarioAnalysisWithOptions(ctx context.Context, profile models.UserProfile, opts models.AnalysisOptions) (*models.ScenarioAnalysis, error)
}

type Handler struct {
	config       *Config
	analyzer     Analyzer
	errorHandler *errors.ErrorHandler
	obs          *observability.Observability
	logger       logger.Logger
}

type HandlerOptions struct {
	AppConfig     *config.Config
	CustomConfig  *Config
	Analyzer      Analyzer
	Observability *observability.Observability
	Logger        logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	cfg := opts.CustomConfig
	if cfg == nil {
		cfg = createConfigFromAppConfig(opts.AppConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if opts.Analyzer == nil {
		return nil, fmt.Errorf("analyzer is required for %s", TaskType)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}
	obs := opts.Observability
	if obs == nil {
		obs = &observability.Observability{}
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})

	return &Handler{
		config:       cfg,
		analyzer:     opts.Analyzer,
		errorHandler: errors.NewErrorHandler(log),
		obs:          obs,
		logger:       log,
	}, nil
}

func (h *Handler) Config() *Config { return h.config }

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.logger.Info("Processing cost analysis job", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

	input, err := ParseInput(job.GetVariables())
	if err != nil {
		h.fail(ctx, client, job, err, start)
		return
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		h.fail(ctx, client, job, err, start)
		return
	}

	cmd, err := client.NewCompleteJobCommand().JobKey(job.GetKey()).VariablesFromObject(output)
	if err != nil {
		h.fail(ctx, client, job, errors.NewValidationFailedError(fmt.Sprintf("encode output: %v", err)), start)
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("Failed to complete job", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err,
		})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	h.obs.RecordJobProcessed(ctx, "completed")
	h.obs.RecordJobDuration(ctx, time.Since(start), "completed")
	h.logger.Info("Cost analysis job completed", map[string]interface{}{
		"jobKey":   job.GetKey(),
		"mode":     string(input.Mode),
		"duration": time.Since(start).String(),
	})
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error, start time.Time) {
	code := errors.Normalize(err).Code
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(code)).Inc()
	h.obs.RecordJobProcessed(ctx, "failed")
	h.obs.RecordJobDuration(ctx, time.Since(start), "failed")
	h.errorHandler.HandleJobError(ctx, client, job, err)
}

// ParseInput decodes job variables, defaulting the mode to full.
func ParseInput(variables string) (*Input, error) {
	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, errors.NewValidationFailedError(fmt.Sprintf("parse job variables: %v", err))
	}
	switch input.Mode {
	case "":
		input.Mode = ModeFull
	case ModeFull, ModeQuick, ModeScenarios:
	default:
		return nil, errors.NewValidationFailedError(fmt.Sprintf("unknown mode %q", input.Mode))
	}
	return &input, nil
}

// Execute runs the requested mode against the engine.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	opts := input.Options.Apply(h.config.Defaults)
	switch input.Mode {
	case ModeQuick:
		cmp, err := h.analyzer.QuickComparison(ctx, input.Profile)
		if err != nil {
			return nil, err
		}
		return &Output{Comparison: cmp}, nil
	case ModeScenarios:
		s, err := h.analyzer.ScenarioAnalysisWithOptions(ctx, input.Profile, opts)
		if err != nil {
			return nil, err
		}
		return &Output{Scenarios: s}, nil
	default:
		a, err := h.analyzer.Analyze(ctx, input.Profile, opts)
		if err != nil {
			return nil, err
		}
		return &Output{Analysis: a}, nil
	}
}
