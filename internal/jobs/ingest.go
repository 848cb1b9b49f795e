package jobs

import (
	"context"
	"fmt"
	"time"

	"fractional-quest/internal/common/apify"
	apperrors "fractional-quest/internal/common/errors"
	"fractional-quest/internal/common/logger"
	"fractional-quest/internal/common/metrics"
)

const DefaultDatasetLimit = 500

// DatasetSource yields raw listings from Apify.
type DatasetSource interface {
	DatasetItems(ctx context.Context, datasetID string, limit, offset int) ([]apify.DatasetItem, error)
	RunActorSync(ctx context.Context, actorID string, input apify.ActorInput, timeout time.Duration) ([]apify.DatasetItem, error)
}

// JobWriter persists a job. On update it replaces job.Slug with the stored
// slug so the search index stays keyed like the database.
type JobWriter interface {
	Upsert(ctx context.Context, job *Job) (inserted bool, err error)
}

type JobIndexer interface {
	IndexJob(ctx context.Context, job Job) error
}

type SearchInvalidator interface {
	InvalidateSearches(ctx context.Context) (int, error)
}

type IngestStats struct {
	DatasetID          string `json:"datasetId,omitempty"`
	Fetched            int    `json:"fetched"`
	FractionalFiltered int    `json:"fractionalFiltered"`
	Inserted           int    `json:"inserted"`
	Updated            int    `json:"updated"`
	Skipped            int    `json:"skipped"`
}

type Ingester struct {
	source       DatasetSource
	store        JobWriter
	index        JobIndexer
	cache        SearchInvalidator
	limit        int
	actorTimeout time.Duration
	logger       logger.Logger
	now          func() time.Time
}

type IngesterOption func(*Ingester)

func WithIndexer(ix JobIndexer) IngesterOption {
	return func(in *Ingester) { in.index = ix }
}

func WithInvalidator(c SearchInvalidator) IngesterOption {
	return func(in *Ingester) { in.cache = c }
}

func WithDatasetLimit(n int) IngesterOption {
	return func(in *Ingester) {
		if n > 0 {
			in.limit = n
		}
	}
}

func WithClock(now func() time.Time) IngesterOption {
	return func(in *Ingester) { in.now = now }
}

func NewIngester(source DatasetSource, store JobWriter, log logger.Logger, opts ...IngesterOption) *Ingester {
	in := &Ingester{
		source:       source,
		store:        store,
		limit:        DefaultDatasetLimit,
		actorTimeout: 2 * time.Minute,
		logger:       log.WithFields(map[string]interface{}{"component": "ingester"}),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// SyncDataset ingests the fractional roles of a finished actor run's dataset.
func (in *Ingester) SyncDataset(ctx context.Context, datasetID string) (IngestStats, error) {
	stats := IngestStats{DatasetID: datasetID}

	items, err := in.source.DatasetItems(ctx, datasetID, in.limit, 0)
	if err != nil {
		return stats, apperrors.NewDatasetFetchFailedError(datasetID, err)
	}

	jobs := make([]Job, 0, len(items))
	for _, item := range items {
		jobs = append(jobs, Normalize(item, SourceLinkedIn, in.now()))
	}
	in.ingest(ctx, jobs, &stats)
	return stats, nil
}

// SyncActors runs each search synchronously and ingests the combined results,
// deduplicated by listing URL. A failing search is logged and skipped.
func (in *Ingester) SyncActors(ctx context.Context, searches []apify.Search) (IngestStats, error) {
	var stats IngestStats
	seen := make(map[string]bool)
	var jobs []Job
	failures := 0

	for _, s := range searches {
		items, err := in.source.RunActorSync(ctx, s.Actor, s.Input, in.actorTimeout)
		if err != nil {
			failures++
			in.logger.Warn("actor run failed", map[string]interface{}{
				"actor": s.Actor, "titles": s.Input.TitleSearch, "error": err,
			})
			continue
		}

		source := SourceLinkedIn
		if s.Actor == apify.ActorCareerSite {
			source = SourceCareerSite
		}
		for _, item := range items {
			if item.URL == "" || seen[item.URL] {
				continue
			}
			seen[item.URL] = true
			jobs = append(jobs, Normalize(item, source, in.now()))
		}
	}

	if failures == len(searches) && len(searches) > 0 {
		return stats, apperrors.NewIngestFailedError(fmt.Errorf("all %d actor runs failed", failures))
	}
	in.ingest(ctx, jobs, &stats)
	return stats, nil
}

func (in *Ingester) ingest(ctx context.Context, jobs []Job, stats *IngestStats) {
	stats.Fetched = len(jobs)

	for _, job := range jobs {
		if !IsFractionalRole(job.Title) {
			continue
		}
		stats.FractionalFiltered++
		job.IsFractional = true
		job.Slug = GenerateSlug(job.Title, job.CompanyName)

		inserted, err := in.store.Upsert(ctx, &job)
		if err != nil {
			stats.Skipped++
			metrics.JobsIngested.WithLabelValues("skipped").Inc()
			in.logger.Error("job upsert failed", map[string]interface{}{"title": job.Title, "error": err})
			continue
		}
		if inserted {
			stats.Inserted++
			metrics.JobsIngested.WithLabelValues("inserted").Inc()
		} else {
			stats.Updated++
			metrics.JobsIngested.WithLabelValues("updated").Inc()
		}

		if in.index != nil {
			if err := in.index.IndexJob(ctx, job); err != nil {
				in.logger.Warn("job indexing failed", map[string]interface{}{"slug": job.Slug, "error": err})
			}
		}
	}

	if in.cache != nil && stats.Inserted+stats.Updated > 0 {
		if _, err := in.cache.InvalidateSearches(ctx); err != nil {
			in.logger.Warn("search cache invalidation failed", map[string]interface{}{"error": err})
		}
	}

	in.logger.Info("sync complete", map[string]interface{}{
		"datasetId":          stats.DatasetID,
		"fetched":            stats.Fetched,
		"fractionalFiltered": stats.FractionalFiltered,
		"inserted":           stats.Inserted,
		"updated":            stats.Updated,
		"skipped":            stats.Skipped,
	})
}
