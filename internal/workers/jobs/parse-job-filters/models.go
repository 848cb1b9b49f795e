// internal/workers/jobs/parse-job-filters/models.go
package parsejobfilters

import "fractional-quest/internal/jobfilter"

// Input carries exactly one filter source. RawQuery is a URL query string as
// found in a shared link, Filters uses the same keys as the URL, and State is
// a filter state posted by a form.
type Input struct {
	RawQuery string                 `json:"rawQuery,omitempty"`
	Filters  map[string]string      `json:"filters,omitempty"`
	State    map[string]interface{} `json:"state,omitempty"`
}

type Output struct {
	Filter            jobfilter.State  `json:"filter"`
	CanonicalQuery    string           `json:"canonicalQuery"`
	IsRateFiltered    bool             `json:"isRateFiltered"`
	ActiveFilterCount int              `json:"activeFilterCount"`
	SearchURL         string           `json:"searchUrl"`
	Chips             []jobfilter.Chip `json:"chips"`
}
