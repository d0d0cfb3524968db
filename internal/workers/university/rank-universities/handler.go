// internal/workers/university/rank-universities/handler.go
package rankuniversities

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "university-matcher/internal/common/errors"
	"university-matcher/internal/common/logger"
	"university-matcher/internal/common/metrics"
	"university-matcher/internal/common/validation"
	"university-matcher/internal/models"
)

const (
	TaskType = "rank-universities"
)

// Ranker is the part of ranking.Service the worker drives.
type Ranker interface {
	RankByProfile(ctx context.Context, p *models.UserProfile) (*models.RankedResultSet, error)
	RankByFilters(ctx context.Context, f models.Filters, majors []models.CareerTag) (*models.RankedResultSet, error)
	FindSimilar(ctx context.Context, id string, size int) (*models.RankedResultSet, error)
	MatchWithScores(ctx context.Context, p *models.UserProfile) (*models.RankedResultSet, error)
}

type Handler struct {
	config     *Config
	ranker     Ranker
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, ranker Ranker, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		ranker:     ranker,
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

	input, err := ParseInput([]byte(job.Variables))
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.Execute(ctx, input)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

// ParseInput validates the job variables and decodes them.
func ParseInput(variables []byte) (*Input, error) {
	if err := validation.Validate(validation.RankingJobInput, variables); err != nil {
		return nil, err
	}
	var input Input
	if err := json.Unmarshal(variables, &input); err != nil {
		return nil, apperrors.NewInvalidRequestError(fmt.Sprintf("parse input: %v", err)).WithCause(err)
	}
	return &input, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, apperrors.NewInvalidRequestError("input cannot be nil")
	}

	var (
		result *models.RankedResultSet
		err    error
	)
	switch input.Mode {
	case ModeProfile:
		result, err = h.ranker.RankByProfile(ctx, input.Profile.Profile())
	case ModeFilters:
		result, err = h.ranker.RankByFilters(ctx, input.Filters.Filters, input.Filters.Majors())
	case ModeSimilar:
		result, err = h.ranker.FindSimilar(ctx, input.UniversityID, input.Size)
	case ModeMatch:
		result, err = h.ranker.MatchWithScores(ctx, input.Profile.Profile())
	default:
		return nil, apperrors.NewInvalidRequestError(fmt.Sprintf("unknown ranking mode %q", input.Mode))
	}
	if err != nil {
		return nil, err
	}

	return &Output{
		Mode:            input.Mode,
		Recommendations: result.Results,
		TotalMatches:    result.Total,
	}, nil
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
	h.logger.Info("job completed", map[string]interface{}{
		"jobKey":  job.Key,
		"mode":    output.Mode,
		"results": len(output.Recommendations),
	})
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	code := string(apperrors.ErrCodeInternal)
	if stdErr, ok := apperrors.AsStandardError(err); ok {
		code = string(stdErr.Code)
	}
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, code).Inc()
	h.errHandler.HandleJobError(context.Background(), client, job, err)
}
