// internal/models/query_types.go
package models

type QueryType string

// Postgres query types served by the query-postgresql worker.
const (
	QueryTypeJobSearch     QueryType = "job_search"
	QueryTypeJobCount      QueryType = "job_count"
	QueryTypeJobBySlug     QueryType = "job_by_slug"
	QueryTypeSavedJobCount QueryType = "saved_job_count"
	QueryTypeMarketStats   QueryType = "market_stats"
)

// Elasticsearch query types served by the query-elasticsearch worker.
const (
	QueryTypeJobIndex    QueryType = "job_index"
	QueryTypeRelatedJobs QueryType = "related_jobs"
)

func (q QueryType) String() string { return string(q) }
