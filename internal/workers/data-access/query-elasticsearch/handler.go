package queryelasticsearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/elastic/go-elasticsearch/v8"

	apperrors "fractional-quest/internal/common/errors"
	"fractional-quest/internal/common/logger"
	"fractional-quest/internal/common/metrics"
	"fractional-quest/internal/jobs"
	"fractional-quest/internal/models"
	"fractional-quest/internal/workers/data-access/query-elasticsearch/queries"
)

const (
	TaskType = "query-elasticsearch"
)

type Handler struct {
	config       *Config
	client       *elasticsearch.Client
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, client *elasticsearch.Client, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		client:       client,
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

	output, err := h.execute(ctx, &input)
	if err != nil {
		metrics.ObserveJob(TaskType, started, string(apperrors.AsStandardError(err).Code))
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	metrics.ObserveJob(TaskType, started, "")
	h.completeJob(ctx, client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, apperrors.NewInvalidRequestError("input cannot be nil")
	}

	indexName := input.IndexName
	if indexName == "" {
		indexName = h.config.IndexName
	}

	eq := queries.ElasticsearchQuery{
		Index:          indexName,
		QueryType:      models.QueryType(input.QueryType),
		Filter:         h.config.Codec.ParseMap(input.Filters),
		Codec:          h.config.Codec,
		Slug:           input.Slug,
		FractionalOnly: !input.AllJobs,
		RemoteOnly:     input.RemoteOnly,
	}
	eq.Pagination.From = input.Pagination.From
	eq.Pagination.Size = input.Pagination.Size

	ix := jobs.NewIndex(h.client, indexName, h.logger)
	result, err := queries.Execute(ctx, ix, eq)
	if err != nil {
		switch {
		case errors.Is(err, queries.ErrUnknownQueryType):
			return nil, apperrors.NewInvalidQueryTypeError(input.QueryType)
		case errors.Is(err, queries.ErrMissingIndex):
			return nil, apperrors.NewIndexNotFoundError(indexName)
		case errors.Is(err, queries.ErrMissingSlug):
			return nil, apperrors.NewInvalidRequestError(err.Error())
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			return nil, apperrors.NewSearchTimeoutError(input.QueryType)
		}
		var stdErr *apperrors.StandardError
		if errors.As(err, &stdErr) {
			return nil, stdErr
		}
		return nil, apperrors.NewSearchQueryFailedError(input.QueryType, err)
	}

	h.logger.Debug("search completed", map[string]interface{}{
		"queryType": input.QueryType,
		"totalHits": result.TotalHits,
		"took":      result.Took,
	})

	return &Output{
		Data:      result.Data,
		TotalHits: result.TotalHits,
		MaxScore:  result.MaxScore,
		Took:      result.Took,
	}, nil
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
	_, err = cmd.Send(ctx)
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
