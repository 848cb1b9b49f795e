package queries

import (
	"errors"
	"fmt"

	"fractional-quest/internal/jobfilter"
	"fractional-quest/internal/jobs"
	"fractional-quest/internal/models"
)

var (
	ErrUnknownQueryType = errors.New("unknown query type")
	ErrMissingIndex     = errors.New("index name is required")
	ErrMissingSlug      = errors.New("slug is required for related_jobs")
)

// ElasticsearchQuery defines the structure of a query request
type ElasticsearchQuery struct {
	Index          string
	QueryType      models.QueryType
	Filter         jobfilter.State
	Codec          jobfilter.Codec
	Slug           string
	FractionalOnly bool
	RemoteOnly     bool
	Pagination     struct {
		From int
		Size int
	}
}

// Query converts the request into a page-based job query. From is rounded
// down to the start of its page.
func (eq ElasticsearchQuery) Query() jobs.Query {
	q := jobs.NewQuery(eq.Codec, eq.Filter)
	q.FractionalOnly = eq.FractionalOnly
	q.RemoteOnly = eq.RemoteOnly
	q.Size = eq.Pagination.Size
	q = q.Normalized()
	q.Page = eq.Pagination.From/q.Size + 1
	return q
}

// BuildQuery builds the search body for the query type.
func BuildQuery(eq ElasticsearchQuery) (map[string]interface{}, error) {
	if eq.Index == "" {
		return nil, ErrMissingIndex
	}

	switch eq.QueryType {
	case models.QueryTypeJobIndex:
		return jobs.BuildSearchBody(eq.Query()), nil
	case models.QueryTypeRelatedJobs:
		if eq.Slug == "" {
			return nil, ErrMissingSlug
		}
		size := eq.Pagination.Size
		if size < 1 || size > jobs.MaxPageSize {
			size = 5
		}
		return jobs.BuildRelatedBody(eq.Index, eq.Slug, size), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownQueryType, eq.QueryType)
	}
}
