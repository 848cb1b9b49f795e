// internal/workers/data-access/query-elasticsearch/models.go
package queryelasticsearch

import "fractional-quest/internal/jobs"

type Input struct {
	// IndexName overrides the configured job index.
	IndexName  string            `json:"indexName,omitempty"`
	QueryType  string            `json:"queryType"`
	Filters    map[string]string `json:"filters,omitempty"`
	Slug       string            `json:"slug,omitempty"`
	AllJobs    bool              `json:"allJobs,omitempty"`
	RemoteOnly bool              `json:"remoteOnly,omitempty"`
	Pagination Pagination        `json:"pagination"`
}

type Pagination struct {
	From int `json:"from"`
	Size int `json:"size"`
}

type Output struct {
	Data      []jobs.Job `json:"data"`
	TotalHits int64      `json:"totalHits"`
	MaxScore  float64    `json:"maxScore"`
	Took      int64      `json:"took"` // milliseconds
}
