// internal/workers/data-access/query-elasticsearch/queries/registry.go
package queries

import (
	"context"
	"time"

	"fractional-quest/internal/jobs"
)

type QueryResult struct {
	Data      []jobs.Job
	TotalHits int64
	MaxScore  float64
	Took      int64
}

// Execute builds and runs eq against ix. Errors from the index are
// StandardErrors; request errors are the package sentinels.
func Execute(ctx context.Context, ix *jobs.Index, eq ElasticsearchQuery) (*QueryResult, error) {
	body, err := BuildQuery(eq)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := ix.Query(ctx, eq.QueryType.String(), body)
	if err != nil {
		return nil, err
	}

	took := res.Took
	if took == 0 {
		took = time.Since(start).Milliseconds()
	}
	return &QueryResult{
		Data:      res.Jobs(),
		TotalHits: res.Hits.Total.Value,
		MaxScore:  res.Score(),
		Took:      took,
	}, nil
}
