// internal/workers/advisor/generate-advice/handler.go
package generateadvice

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"university-matcher/internal/advisor"
	apperrors "university-matcher/internal/common/errors"
	"university-matcher/internal/common/logger"
	"university-matcher/internal/common/metrics"
	"university-matcher/internal/common/validation"
)

const (
	TaskType = "generate-advice"
)

// Advisor is the part of advisor.Advisor the worker drives.
type Advisor interface {
	MatchCampusCulture(ctx context.Context, p advisor.CampusCulturePreferences) (string, error)
	Advise(ctx context.Context, feature advisor.Feature, input json.RawMessage) (string, error)
}

type Handler struct {
	config     *Config
	advisor    Advisor
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, adv Advisor, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		advisor:    adv,
		errHandler: apperrors.NewErrorHandler(log),
		logger:     log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	defer func() {
		metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	}()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	variables := []byte(job.Variables)
	if err := validation.Validate(validation.AdviceJobInput, variables); err != nil {
		h.failJob(client, job, err)
		return
	}
	var input Input
	if err := json.Unmarshal(variables, &input); err != nil {
		h.failJob(client, job, apperrors.NewInvalidRequestError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.Feature == CampusCultureMatch {
		if input.Preferences == nil {
			return nil, apperrors.NewInvalidRequestError("preferences are required for " + CampusCultureMatch)
		}
		content, err := h.advisor.MatchCampusCulture(ctx, *input.Preferences)
		if err != nil {
			return nil, err
		}
		return &Output{Feature: input.Feature, Content: content}, nil
	}

	feature, ok := advisor.ParseFeature(input.Feature)
	if !ok {
		return nil, apperrors.NewInvalidRequestError("unknown advisor feature: " + input.Feature)
	}
	content, err := h.advisor.Advise(ctx, feature, input.Input)
	if err != nil {
		return nil, err
	}
	return &Output{Feature: string(feature), Content: content}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	code := string(apperrors.ErrCodeInternal)
	if stdErr, ok := apperrors.AsStandardError(err); ok {
		code = string(stdErr.Code)
	}
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, code).Inc()
	h.errHandler.HandleJobError(context.Background(), client, job, err)
}
