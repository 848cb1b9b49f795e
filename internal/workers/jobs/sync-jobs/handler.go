// internal/workers/jobs/sync-jobs/handler.go
package syncjobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"fractional-quest/internal/common/apify"
	apperrors "fractional-quest/internal/common/errors"
	"fractional-quest/internal/common/logger"
	"fractional-quest/internal/common/metrics"
	"fractional-quest/internal/jobs"
)

const TaskType = "sync-jobs"

// Syncer is implemented by *jobs.Ingester.
type Syncer interface {
	SyncDataset(ctx context.Context, datasetID string) (jobs.IngestStats, error)
	SyncActors(ctx context.Context, searches []apify.Search) (jobs.IngestStats, error)
}

type Handler struct {
	config       *Config
	syncer       Syncer
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, syncer Syncer, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		syncer:       syncer,
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

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, apperrors.NewInvalidRequestError("input cannot be nil")
	}
	started := time.Now()

	if input.DatasetID != "" {
		stats, err := h.syncer.SyncDataset(ctx, input.DatasetID)
		if err != nil {
			return nil, err
		}
		return &Output{IngestStats: stats, Mode: ModeDataset, DurationMs: time.Since(started).Milliseconds()}, nil
	}

	searches, err := toSearches(input.Searches)
	if err != nil {
		return nil, err
	}
	stats, err := h.syncer.SyncActors(ctx, searches)
	if err != nil {
		return nil, err
	}
	return &Output{
		IngestStats: stats,
		Mode:        ModeActors,
		Searches:    len(searches),
		DurationMs:  time.Since(started).Milliseconds(),
	}, nil
}

func toSearches(in []SearchInput) ([]apify.Search, error) {
	if len(in) == 0 {
		return apify.DefaultSearches(), nil
	}

	out := make([]apify.Search, 0, len(in))
	for i, s := range in {
		if s.Actor != apify.ActorLinkedIn && s.Actor != apify.ActorCareerSite {
			return nil, apperrors.NewInvalidRequestError(fmt.Sprintf("searches[%d]: unknown actor %q", i, s.Actor))
		}
		if len(s.Titles) == 0 {
			return nil, apperrors.NewInvalidRequestError(fmt.Sprintf("searches[%d]: titles required", i))
		}
		input := apify.ActorInput{
			TitleSearch:    s.Titles,
			LocationSearch: s.Locations,
			TimeRange:      s.TimeRange,
			Limit:          s.Limit,
			IncludeAI:      true,
		}
		if len(input.LocationSearch) == 0 {
			input.LocationSearch = []string{"United Kingdom"}
		}
		if input.TimeRange == "" {
			input.TimeRange = "7d"
		}
		if input.Limit <= 0 {
			input.Limit = 20
		}
		out = append(out, apify.Search{Actor: s.Actor, Input: input})
	}
	return out, nil
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
