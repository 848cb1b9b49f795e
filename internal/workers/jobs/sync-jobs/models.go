// internal/workers/jobs/sync-jobs/models.go
package syncjobs

import "fractional-quest/internal/jobs"

// Input selects the sync mode. A dataset id ingests one finished actor run;
// otherwise the listed searches run, or the default set when none are given.
type Input struct {
	DatasetID string        `json:"datasetId,omitempty"`
	Searches  []SearchInput `json:"searches,omitempty"`
}

type SearchInput struct {
	Actor     string   `json:"actor"`
	Titles    []string `json:"titles"`
	Locations []string `json:"locations,omitempty"`
	TimeRange string   `json:"timeRange,omitempty"`
	Limit     int      `json:"limit,omitempty"`
}

const (
	ModeDataset = "dataset"
	ModeActors  = "actors"
)

type Output struct {
	jobs.IngestStats
	Mode       string `json:"mode"`
	Searches   int    `json:"searches,omitempty"`
	DurationMs int64  `json:"durationMs"`
}
