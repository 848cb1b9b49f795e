// internal/workers/data-access/query-postgresql/models.go
package querypostgresql

import "fractional-quest/internal/models"

type Input struct {
	QueryType string `json:"queryType"`
	// Filters uses the search page URL keys: q, location, rate, role, type.
	Filters map[string]string `json:"filters,omitempty"`
	// AllJobs lifts the fractional-only restriction.
	AllJobs    bool   `json:"allJobs,omitempty"`
	RemoteOnly bool   `json:"remoteOnly,omitempty"`
	Page       int    `json:"page,omitempty"`
	Size       int    `json:"size,omitempty"`
	Slug       string `json:"slug,omitempty"`
	UserID     string `json:"userId,omitempty"`
}

type Output struct {
	Data               interface{} `json:"data"`
	RowCount           int         `json:"rowCount"`
	QueryExecutionTime int64       `json:"queryExecutionTime"` // milliseconds
}

type QueryType = models.QueryType

var (
	QueryTypeJobSearch     = models.QueryTypeJobSearch
	QueryTypeJobCount      = models.QueryTypeJobCount
	QueryTypeJobBySlug     = models.QueryTypeJobBySlug
	QueryTypeSavedJobCount = models.QueryTypeSavedJobCount
	QueryTypeMarketStats   = models.QueryTypeMarketStats
)
