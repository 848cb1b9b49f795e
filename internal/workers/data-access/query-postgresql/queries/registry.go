// internal/workers/data-access/query-postgresql/queries/registry.go
package queries

import (
	"context"
	"errors"
	"fmt"

	"fractional-quest/internal/jobfilter"
	"fractional-quest/internal/jobs"
	"fractional-quest/internal/models"
)

var (
	ErrMissingParam     = errors.New("missing required parameter")
	ErrUnknownQueryType = errors.New("unknown query type")
)

// Params are the decoded job variables a query may read.
type Params struct {
	Filter         jobfilter.State
	Page           int
	Size           int
	Slug           string
	UserID         string
	FractionalOnly bool
	RemoteOnly     bool
	Codec          jobfilter.Codec
}

func (p Params) query() jobs.Query {
	q := jobs.NewQuery(p.Codec, p.Filter)
	q.FractionalOnly = p.FractionalOnly
	q.RemoteOnly = p.RemoteOnly
	q.Page = p.Page
	q.Size = p.Size
	return q.Normalized()
}

// QueryFunc returns the result data and its row count.
type QueryFunc func(ctx context.Context, store *jobs.Store, p Params) (interface{}, int, error)

var Registry = map[models.QueryType]QueryFunc{
	models.QueryTypeJobSearch:     JobSearch,
	models.QueryTypeJobCount:      JobCount,
	models.QueryTypeJobBySlug:     JobBySlug,
	models.QueryTypeSavedJobCount: SavedJobCount,
	models.QueryTypeMarketStats:   MarketStats,
}

func Execute(ctx context.Context, store *jobs.Store, queryType models.QueryType, p Params) (interface{}, int, error) {
	fn, exists := Registry[queryType]
	if !exists {
		return nil, 0, fmt.Errorf("%w: %s", ErrUnknownQueryType, queryType)
	}
	return fn(ctx, store, p)
}

func JobSearch(ctx context.Context, store *jobs.Store, p Params) (interface{}, int, error) {
	page, err := store.Search(ctx, p.query())
	if err != nil {
		return nil, 0, err
	}
	results := make([]jobs.SearchResult, 0, len(page.Jobs))
	for _, j := range page.Jobs {
		results = append(results, j.ToSearchResult())
	}
	return map[string]interface{}{
		"jobs":  results,
		"total": page.Total,
		"page":  page.Page,
		"size":  page.Size,
	}, len(results), nil
}

func JobCount(ctx context.Context, store *jobs.Store, p Params) (interface{}, int, error) {
	total, err := store.Count(ctx, p.query())
	if err != nil {
		return nil, 0, err
	}
	return map[string]interface{}{"total": total}, 1, nil
}

func JobBySlug(ctx context.Context, store *jobs.Store, p Params) (interface{}, int, error) {
	if p.Slug == "" {
		return nil, 0, fmt.Errorf("%w: slug", ErrMissingParam)
	}
	job, err := store.BySlug(ctx, p.Slug)
	if err != nil {
		return nil, 0, err
	}
	return job, 1, nil
}

// SavedJobCount never fails; anonymous users count zero.
func SavedJobCount(ctx context.Context, store *jobs.Store, p Params) (interface{}, int, error) {
	return map[string]interface{}{"count": store.SavedJobCount(ctx, p.UserID)}, 1, nil
}

func MarketStats(ctx context.Context, store *jobs.Store, _ Params) (interface{}, int, error) {
	stats := store.MarketStats(ctx)
	return stats, 1, nil
}
