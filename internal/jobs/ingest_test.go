package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fractional-quest/internal/common/apify"
	apperrors "fractional-quest/internal/common/errors"
	"fractional-quest/internal/common/logger"
)

type fakeSource struct {
	items    []apify.DatasetItem
	err      error
	byActor  map[string][]apify.DatasetItem
	failing  map[string]bool
	gotLimit int
}

func (f *fakeSource) DatasetItems(_ context.Context, _ string, limit, _ int) ([]apify.DatasetItem, error) {
	f.gotLimit = limit
	return f.items, f.err
}

func (f *fakeSource) RunActorSync(_ context.Context, actorID string, input apify.ActorInput, _ time.Duration) ([]apify.DatasetItem, error) {
	key := actorID + ":" + input.TitleSearch[0]
	if f.failing[key] {
		return nil, errors.New("actor timed out")
	}
	return f.byActor[key], nil
}

type fakeWriter struct {
	existing map[string]bool
	failOn   string
	written  []Job
}

func (f *fakeWriter) Upsert(_ context.Context, job *Job) (bool, error) {
	if job.Title == f.failOn {
		return false, errors.New("constraint violation")
	}
	f.written = append(f.written, *job)
	return !f.existing[job.SourceURL], nil
}

type fakeIndexer struct{ slugs []string }

func (f *fakeIndexer) IndexJob(_ context.Context, job Job) error {
	f.slugs = append(f.slugs, job.Slug)
	return nil
}

type fakeInvalidator struct{ calls int }

func (f *fakeInvalidator) InvalidateSearches(context.Context) (int, error) {
	f.calls++
	return 0, nil
}

func TestIngester_SyncDataset(t *testing.T) {
	source := &fakeSource{items: []apify.DatasetItem{
		{Title: "Fractional CFO", Organization: "Acme", URL: "https://jobs/1"},
		{Title: "Interim CTO", Organization: "Beta", URL: "https://jobs/2"},
		{Title: "Software Engineer", Organization: "Gamma", URL: "https://jobs/3"},
		{Title: "Part-time CMO", Organization: "Delta", URL: "https://jobs/4"},
	}}
	writer := &fakeWriter{existing: map[string]bool{"https://jobs/2": true}, failOn: "Part-time CMO"}
	indexer := &fakeIndexer{}
	cache := &fakeInvalidator{}

	in := NewIngester(source, writer, logger.NewTestLogger(t),
		WithIndexer(indexer), WithInvalidator(cache), WithDatasetLimit(250))

	stats, err := in.SyncDataset(context.Background(), "ds-1")

	require.NoError(t, err)
	assert.Equal(t, IngestStats{DatasetID: "ds-1", Fetched: 4, FractionalFiltered: 3, Inserted: 1, Updated: 1, Skipped: 1}, stats)
	assert.Equal(t, 250, source.gotLimit)
	require.Len(t, writer.written, 2)
	for _, job := range writer.written {
		assert.True(t, job.IsFractional)
		assert.NotEmpty(t, job.Slug)
	}
	assert.Len(t, indexer.slugs, 2)
	assert.Equal(t, 1, cache.calls)
}

func TestIngester_SyncDatasetFetchFailure(t *testing.T) {
	in := NewIngester(&fakeSource{err: apify.ErrMissingToken}, &fakeWriter{}, logger.NewTestLogger(t))

	_, err := in.SyncDataset(context.Background(), "ds-9")

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeDatasetFetchFailed))
	assert.ErrorIs(t, err, apify.ErrMissingToken)
}

func TestIngester_EmptyDatasetSkipsInvalidation(t *testing.T) {
	cache := &fakeInvalidator{}
	in := NewIngester(&fakeSource{}, &fakeWriter{}, logger.NewTestLogger(t), WithInvalidator(cache))

	stats, err := in.SyncDataset(context.Background(), "ds-empty")

	require.NoError(t, err)
	assert.Equal(t, IngestStats{DatasetID: "ds-empty"}, stats)
	assert.Zero(t, cache.calls)
}

func TestIngester_SyncActorsDedupesByURL(t *testing.T) {
	source := &fakeSource{
		byActor: map[string][]apify.DatasetItem{
			apify.ActorLinkedIn + ":Fractional": {
				{Title: "Fractional CFO", Organization: "Acme", URL: "https://jobs/1"},
				{Title: "Fractional COO", Organization: "Acme", URL: "https://jobs/5"},
			},
			apify.ActorCareerSite + ":CFO": {
				{Title: "Fractional CFO", Organization: "Acme", URL: "https://jobs/1"},
				{Title: "Interim Finance Director", Organization: "Zeta", URL: "https://jobs/6"},
			},
		},
		failing: map[string]bool{apify.ActorLinkedIn + ":Interim CFO": true},
	}
	writer := &fakeWriter{}
	in := NewIngester(source, writer, logger.NewTestLogger(t))

	stats, err := in.SyncActors(context.Background(), apify.DefaultSearches())

	require.NoError(t, err)
	assert.Equal(t, 3, stats.Fetched)
	assert.Equal(t, 3, stats.Inserted)
	require.Len(t, writer.written, 3)
	assert.Equal(t, SourceCareerSite, writer.written[2].JobSource)
	assert.Equal(t, SourceLinkedIn, writer.written[0].JobSource)
}

func TestIngester_SyncActorsAllFailing(t *testing.T) {
	searches := apify.DefaultSearches()[:1]
	source := &fakeSource{failing: map[string]bool{apify.ActorLinkedIn + ":Fractional": true}}
	in := NewIngester(source, &fakeWriter{}, logger.NewTestLogger(t))

	_, err := in.SyncActors(context.Background(), searches)

	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeIngestFailed))
}
