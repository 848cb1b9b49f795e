// Package apify reads job listings from Apify actor runs and datasets.
package apify

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"fractional-quest/internal/common/config"
	httpclient "fractional-quest/internal/common/http"
)

// Actors producing job listings.
const (
	ActorLinkedIn   = "fantastic-jobs/advanced-linkedin-job-search-api"
	ActorCareerSite = "fantastic-jobs/career-site-job-listing-api"
)

var ErrMissingToken = errors.New("apify token not configured")

// DatasetItem is one job listing as produced by the job-search actors.
type DatasetItem struct {
	ID                     string   `json:"id"`
	Title                  string   `json:"title"`
	Organization           string   `json:"organization"`
	OrganizationURL        string   `json:"organization_url,omitempty"`
	OrganizationLogo       string   `json:"organization_logo,omitempty"`
	URL                    string   `json:"url"`
	DatePosted             string   `json:"date_posted"`
	DateCreated            string   `json:"date_created,omitempty"`
	DateValidThrough       *string  `json:"date_validthrough,omitempty"`
	SalaryRaw              *string  `json:"salary_raw,omitempty"`
	EmploymentType         []string `json:"employment_type,omitempty"`
	LocationsDerived       []string `json:"locations_derived,omitempty"`
	CitiesDerived          []string `json:"cities_derived,omitempty"`
	CountriesDerived       []string `json:"countries_derived,omitempty"`
	RemoteDerived          bool     `json:"remote_derived,omitempty"`
	Source                 string   `json:"source,omitempty"`
	SourceType             string   `json:"source_type,omitempty"`
	DescriptionText        string   `json:"description_text,omitempty"`
	DescriptionHTML        string   `json:"description_html,omitempty"`
	AISalaryValue          float64  `json:"ai_salary_value,omitempty"`
	AISalaryMinValue       float64  `json:"ai_salary_minvalue,omitempty"`
	AISalaryMaxValue       float64  `json:"ai_salary_maxvalue,omitempty"`
	AISalaryCurrency       string   `json:"ai_salary_currency,omitempty"`
	AISalaryUnitText       string   `json:"ai_salary_unittext,omitempty"`
	AIKeySkills            []string `json:"ai_key_skills,omitempty"`
	AIBenefits             []string `json:"ai_benefits,omitempty"`
	AIExperienceLevel      string   `json:"ai_experience_level,omitempty"`
	AIWorkArrangement      string   `json:"ai_work_arrangement,omitempty"`
	AICoreResponsibilities string   `json:"ai_core_responsibilities,omitempty"`
	AIRequirementsSummary  string   `json:"ai_requirements_summary,omitempty"`
}

// ActorInput is the search input accepted by both job-search actors.
type ActorInput struct {
	TitleSearch    []string `json:"titleSearch"`
	LocationSearch []string `json:"locationSearch"`
	TimeRange      string   `json:"timeRange"`
	Limit          int      `json:"limit"`
	IncludeAI      bool     `json:"includeAi"`
}

type Client struct {
	baseURL string
	token   string
	http    *httpclient.Client
}

func NewClient(cfg config.ApifyConfig, opts ...httpclient.Option) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http:    httpclient.NewClient(config.GetDuration(cfg.Timeout), opts...),
	}
}

// DatasetItems reads up to limit items of a dataset starting at offset.
func (c *Client) DatasetItems(ctx context.Context, datasetID string, limit, offset int) ([]DatasetItem, error) {
	if c.token == "" {
		return nil, ErrMissingToken
	}

	q := url.Values{}
	q.Set("token", c.token)
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	endpoint := fmt.Sprintf("%s/datasets/%s/items?%s", c.baseURL, url.PathEscape(datasetID), q.Encode())

	var items []DatasetItem
	if err := c.http.GetJSON(ctx, endpoint, &items); err != nil {
		return nil, fmt.Errorf("fetch dataset %s: %w", datasetID, err)
	}
	return items, nil
}

// RunActorSync runs an actor and returns its dataset items once it finishes.
func (c *Client) RunActorSync(ctx context.Context, actorID string, input ActorInput, timeout time.Duration) ([]DatasetItem, error) {
	if c.token == "" {
		return nil, ErrMissingToken
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	// Actor ids are addressed as "user~name" in the URL path.
	endpoint := fmt.Sprintf("%s/acts/%s/run-sync-get-dataset-items?token=%s",
		c.baseURL, strings.Replace(actorID, "/", "~", 1), url.QueryEscape(c.token))

	var items []DatasetItem
	if err := c.http.PostJSON(ctx, endpoint, input, &items); err != nil {
		return nil, fmt.Errorf("run actor %s: %w", actorID, err)
	}
	return items, nil
}

// Search is one actor query of a scheduled sync.
type Search struct {
	Actor string
	Input ActorInput
}

// DefaultSearches are the queries of a full sync: fractional and interim
// titles on LinkedIn, then C-suite titles on career sites.
func DefaultSearches() []Search {
	linkedIn := [][]string{
		{"Fractional"},
		{"Interim CFO", "Interim CTO", "Interim CMO"},
		{"Part-time CFO", "Part-time CMO", "Part-time CTO"},
		{"Fractional CFO", "Fractional CTO", "Fractional CMO"},
		{"Portfolio Executive", "Portfolio CFO"},
	}
	careerSite := [][]string{
		{"CFO", "Chief Financial Officer"},
		{"CTO", "Chief Technology Officer"},
		{"CMO", "Chief Marketing Officer"},
		{"COO", "Chief Operating Officer"},
	}

	searches := make([]Search, 0, len(linkedIn)+len(careerSite))
	for _, titles := range linkedIn {
		searches = append(searches, Search{Actor: ActorLinkedIn, Input: ActorInput{
			TitleSearch: titles, LocationSearch: []string{"United Kingdom"}, TimeRange: "7d", Limit: 20, IncludeAI: true,
		}})
	}
	for _, titles := range careerSite {
		searches = append(searches, Search{Actor: ActorCareerSite, Input: ActorInput{
			TitleSearch: titles, LocationSearch: []string{"United Kingdom"}, TimeRange: "6m", Limit: 15, IncludeAI: true,
		}})
	}
	return searches
}
