// internal/workers/jobs/parse-job-filters/handler.go
package parsejobfilters

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "fractional-quest/internal/common/errors"
	"fractional-quest/internal/common/logger"
	"fractional-quest/internal/common/metrics"
	"fractional-quest/internal/common/validation"
	"fractional-quest/internal/jobfilter"
)

const TaskType = "parse-job-filters"

type Handler struct {
	config       *Config
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		logger:       log,
		errorHandler: apperrors.NewErrorHandler(log),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	started := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		stdErr := apperrors.NewInvalidRequestError(fmt.Sprintf("parse input: %v", err))
		metrics.ObserveJob(TaskType, started, string(stdErr.Code))
		h.errorHandler.HandleJobError(ctx, client, job, stdErr)
		return
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		metrics.ObserveJob(TaskType, started, string(apperrors.AsStandardError(err).Code))
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	metrics.ObserveJob(TaskType, started, "")
	h.completeJob(ctx, client, job, output)
}

// Execute parses the filter source into canonical form. A malformed rate in
// a URL query falls back silently; the structured forms reject it.
func (h *Handler) Execute(_ context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, apperrors.NewInvalidRequestError("input cannot be nil")
	}
	codec := h.config.Codec

	var state jobfilter.State
	switch {
	case input.State != nil:
		s, err := h.decodeState(input.State)
		if err != nil {
			return nil, err
		}
		state = s
	case input.Filters != nil:
		if rate, ok := input.Filters[jobfilter.KeyRate]; ok && rate != "" && !codec.ValidRate(rate) {
			return nil, apperrors.NewInvalidFilterFormatError(fmt.Sprintf("rate %q is not <min>-<max> within %d-%d",
				rate, codec.DefaultMin, codec.DefaultMax))
		}
		state = codec.ParseMap(input.Filters)
	default:
		state = codec.ParseQuery(input.RawQuery)
	}

	h.logger.Debug("filters parsed", map[string]interface{}{
		"activeFilters": codec.ActiveFilterCount(state),
	})

	return &Output{
		Filter:            state,
		CanonicalQuery:    codec.Serialize(state),
		IsRateFiltered:    codec.IsRateFiltered(state),
		ActiveFilterCount: codec.ActiveFilterCount(state),
		SearchURL:         codec.URL(state),
		Chips:             codec.Chips(state),
	}, nil
}

func (h *Handler) decodeState(raw map[string]interface{}) (jobfilter.State, error) {
	if res := validation.JobFilterState.ValidateValue(raw); !res.Valid {
		return jobfilter.State{}, apperrors.NewInvalidFilterFormatError(res.Summary())
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return jobfilter.State{}, apperrors.NewInvalidFilterFormatError(err.Error())
	}
	state := h.config.Codec.Default()
	if err := json.Unmarshal(data, &state); err != nil {
		return jobfilter.State{}, apperrors.NewInvalidFilterFormatError(err.Error())
	}

	if !h.config.Codec.ValidRate(jobfilter.FormatRate(state.MinRate, state.MaxRate)) {
		return jobfilter.State{}, apperrors.NewInvalidFilterFormatError(fmt.Sprintf("rate %d-%d out of range",
			state.MinRate, state.MaxRate))
	}
	return state, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}
