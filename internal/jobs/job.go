// Package jobs is the job-board data layer: it normalizes listings from
// Apify, stores them in Postgres, mirrors them into Elasticsearch and answers
// filtered searches for the job filter form.
package jobs

import (
	"strings"
	"time"

	"fractional-quest/internal/jobfilter"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

const (
	WorkplaceRemote = "Remote"
	WorkplaceHybrid = "Hybrid"
	WorkplaceOnsite = "On-site"
)

// Job is a row of the jobs table.
type Job struct {
	ID                 string     `json:"id"`
	Slug               string     `json:"slug"`
	Title              string     `json:"title"`
	CompanyName        string     `json:"companyName"`
	CompanyLogo        string     `json:"companyLogo,omitempty"`
	Location           string     `json:"location"`
	IsRemote           bool       `json:"isRemote"`
	WorkplaceType      string     `json:"workplaceType"`
	Compensation       string     `json:"compensation,omitempty"`
	RoleCategory       string     `json:"roleCategory"`
	DayRateMin         int        `json:"dayRateMin,omitempty"`
	DayRateMax         int        `json:"dayRateMax,omitempty"`
	SalaryMin          int        `json:"salaryMin,omitempty"`
	SalaryMax          int        `json:"salaryMax,omitempty"`
	SalaryCurrency     string     `json:"salaryCurrency,omitempty"`
	PostedDate         *time.Time `json:"postedDate,omitempty"`
	ValidThrough       *time.Time `json:"validThrough,omitempty"`
	SourceURL          string     `json:"sourceUrl"`
	JobSource          string     `json:"jobSource"`
	IsActive           bool       `json:"isActive"`
	IsFractional       bool       `json:"isFractional"`
	DescriptionSnippet string     `json:"descriptionSnippet,omitempty"`
}

// SearchResult is the compact job shape returned by voice search.
type SearchResult struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Company      string `json:"company"`
	Location     string `json:"location"`
	IsRemote     bool   `json:"isRemote"`
	IsFractional bool   `json:"isFractional"`
	SalaryRange  string `json:"salaryRange,omitempty"`
	PostedDate   string `json:"postedDate,omitempty"`
	URL          string `json:"url"`
	Snippet      string `json:"snippet,omitempty"`
	RoleCategory string `json:"roleCategory,omitempty"`
}

// ToSearchResult formats a job the way voice search reports it.
func (j Job) ToSearchResult() SearchResult {
	r := SearchResult{
		ID:           j.ID,
		Title:        j.Title,
		Company:      j.CompanyName,
		Location:     j.Location,
		IsRemote:     j.IsRemote,
		IsFractional: j.IsFractional,
		SalaryRange:  FormatSalaryRange(j.SalaryMin, j.SalaryMax, j.SalaryCurrency),
		URL:          j.SourceURL,
		Snippet:      truncateRunes(j.DescriptionSnippet, 200),
		RoleCategory: j.RoleCategory,
	}
	if r.Location == "" {
		r.Location = "Location not specified"
	}
	if j.PostedDate != nil {
		r.PostedDate = j.PostedDate.Format("02/01/2006")
	}
	return r
}

// Query is a filtered, paginated job search.
type Query struct {
	Filter         jobfilter.State `json:"filter"`
	FractionalOnly bool            `json:"fractionalOnly"`
	RemoteOnly     bool            `json:"remoteOnly,omitempty"`
	Page           int             `json:"page"`
	Size           int             `json:"size"`

	// RateFiltered applies the day-rate overlap predicate. NewQuery sets it
	// from the filter state.
	RateFiltered bool `json:"rateFiltered,omitempty"`
}

// NewQuery builds a first-page fractional-only query for a filter state.
func NewQuery(codec jobfilter.Codec, s jobfilter.State) Query {
	return Query{
		Filter:         s,
		FractionalOnly: true,
		Page:           1,
		Size:           DefaultPageSize,
		RateFiltered:   codec.IsRateFiltered(s),
	}
}

// Normalized clamps page and size into range.
func (q Query) Normalized() Query {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Size < 1 {
		q.Size = DefaultPageSize
	}
	if q.Size > MaxPageSize {
		q.Size = MaxPageSize
	}
	return q
}

func (q Query) Offset() int {
	q = q.Normalized()
	return (q.Page - 1) * q.Size
}

// MarketStats summarizes the active job market for landing pages.
type MarketStats struct {
	TotalJobs    int         `json:"totalJobs"`
	LondonJobs   int         `json:"londonJobs"`
	RoleCounts   []RoleCount `json:"roleCounts"`
	AvgDayRate   int         `json:"avgDayRate"`
	FromFallback bool        `json:"fromFallback,omitempty"`
}

type RoleCount struct {
	Role  string `json:"role"`
	Count int    `json:"count"`
}

// FallbackMarketStats is served when the stats queries fail.
func FallbackMarketStats() MarketStats {
	return MarketStats{
		TotalJobs:    22,
		LondonJobs:   12,
		RoleCounts:   []RoleCount{},
		AvgDayRate:   950,
		FromFallback: true,
	}
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
