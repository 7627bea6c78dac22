package exportcsv

import (
	"context"
	"fmt"
	"time"

	"business-finder/internal/common/config"
	"business-finder/internal/common/errors"
	"business-finder/internal/common/logger"
	"business-finder/internal/common/metrics"
	"business-finder/internal/common/validation"
	"business-finder/internal/models"
	filterresults "business-finder/internal/workers/business-search/filter-results"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType   = "business.results.export"
	WorkerName = "export-csv"
)

type Handler struct {
	config       *Config
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
	now          func() time.Time
}

type HandlerOptions struct {
	AppConfig    *config.Config
	CustomConfig *Config
	Logger       logger.Logger
	Clock        func() time.Time
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	workerConfig := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)

	if err := workerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", WorkerName, err)
	}

	loggerInstance := opts.Logger
	if loggerInstance == nil {
		loggerInstance = logger.NewStructured("info", "json")
	}
	loggerInstance = loggerInstance.With(map[string]interface{}{"worker": TaskType})

	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Handler{
		config:       workerConfig,
		logger:       loggerInstance,
		errorHandler: errors.NewErrorHandler(loggerInstance),
		now:          clock,
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := h.parseInput(job)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	request, err := client.NewCompleteJobCommand().JobKey(job.GetKey()).VariablesFromObject(output)
	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return
	}
	if _, err := request.Send(ctx); err != nil {
		h.logger.Error("Failed to complete job", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	variables, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("failed to parse job variables: %v", err))
	}

	result := validation.ValidateInput(variables, GetInputSchema())
	if !result.Valid {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("validation errors: %v", result.GetErrorMessages()))
	}

	var input Input
	if err := job.GetVariablesAs(&input); err != nil {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("failed to decode job variables: %v", err))
	}
	return &input, nil
}

// Export renders businesses, after applying filters, as a CSV document.
func (h *Handler) Export(businesses []models.Business, filters models.Filters, locale Locale) *Output {
	rows := filterresults.Filter(businesses, filters)
	return &Output{
		CSV:      Encode(rows, locale),
		FileName: FileName(h.now(), locale),
		Rows:     len(rows),
	}
}

func (h *Handler) Execute(_ context.Context, input *Input) (*Output, error) {
	locale := h.config.Locale
	if input.Locale != "" {
		l, err := ParseLocale(input.Locale)
		if err != nil {
			return nil, errors.NewInvalidInputError(err.Error())
		}
		locale = l
	}

	var filters models.Filters
	if input.Filters != nil {
		threshold, err := models.ParseRatingThreshold(string(input.Filters.Rating))
		if err != nil {
			return nil, errors.NewInvalidInputError(err.Error())
		}
		filters = models.Filters{Name: input.Filters.Name, Rating: threshold}
	}

	out := h.Export(input.Businesses, filters, locale)
	h.logger.Info("results exported", map[string]interface{}{
		"rows":     out.Rows,
		"fileName": out.FileName,
		"locale":   string(locale),
	})
	return out, nil
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.Normalize(err).Code)).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, err)
}

func (h *Handler) GetTaskType() string {
	return TaskType
}

func (h *Handler) IsEnabled() bool {
	return h.config.Enabled
}

func (h *Handler) Locale() Locale {
	return h.config.Locale
}

func createConfigFromAppConfig(appConfig *config.Config, customConfig *Config) *Config {
	if customConfig != nil {
		return customConfig
	}

	cfg := DefaultConfig()

	if appConfig != nil {
		if workerCfg, exists := appConfig.Workers[WorkerName]; exists {
			cfg.Enabled = workerCfg.Enabled
			if workerCfg.MaxJobsActive > 0 {
				cfg.MaxJobsActive = workerCfg.MaxJobsActive
			}
			if workerCfg.Timeout > 0 {
				cfg.Timeout = config.GetDuration(workerCfg.Timeout)
			}
		}
		if appConfig.Export.Locale != "" {
			cfg.Locale = Locale(appConfig.Export.Locale)
		}
	}

	return cfg
}
