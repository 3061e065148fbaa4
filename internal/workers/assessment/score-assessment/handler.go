// internal/workers/assessment/score-assessment/handler.go
package scoreassessment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"edpsych-connect/internal/assessment"
	"edpsych-connect/internal/common/errors"
	"edpsych-connect/internal/common/logger"
	"edpsych-connect/internal/common/metrics"
)

const TaskType = "score-assessment"

type Handler struct {
	config       *Config
	service      *assessment.Service
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(config *Config, service *assessment.Service, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		service:      service,
		logger:       log,
		errorHandler: errors.NewErrorHandler(log),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	defer func() {
		metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	}()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":             job.Key,
		"processInstanceKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.fail(ctx, client, job, errors.NewValidationError("invalid job variables", err.Error()))
		return
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.fail(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
}

// Execute scores the submission named by input.Assessment, which may be a
// catalog id ("anxiety") or a tool name ("anxiety-assessment").
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	id := strings.TrimSpace(input.Assessment)
	if id == "" {
		return nil, errors.NewValidationError("assessment is required", "")
	}
	if c, ok := h.service.Engine().CatalogForTool(id); ok {
		id = c.ID
	}

	result, err := h.service.Assess(ctx, id, assessment.Submission{
		Age:       input.Age,
		Gender:    input.Gender,
		Responses: input.Responses,
	})
	if err != nil {
		return nil, err
	}

	h.logger.Info("assessment scored", map[string]interface{}{
		"assessment": id,
		"severity":   result.OverallSeverity,
	})
	return &Output{AssessmentResult: result}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{"error": err})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{"error": err})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.Normalize(err).Code)).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, fmt.Errorf("%s: %w", TaskType, err))
}
