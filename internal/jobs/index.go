package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	apperrors "fractional-quest/internal/common/errors"
	"fractional-quest/internal/common/logger"
	"fractional-quest/internal/jobfilter"
)

const indexMapping = `{
  "mappings": {
    "properties": {
      "slug":               {"type": "keyword"},
      "title":              {"type": "text"},
      "companyName":        {"type": "text"},
      "location":           {"type": "text"},
      "isRemote":           {"type": "boolean"},
      "workplaceType":      {"type": "keyword"},
      "roleCategory":       {"type": "keyword"},
      "dayRateMin":         {"type": "integer"},
      "dayRateMax":         {"type": "integer"},
      "postedDate":         {"type": "date"},
      "isActive":           {"type": "boolean"},
      "isFractional":       {"type": "boolean"},
      "descriptionSnippet": {"type": "text"}
    }
  }
}`

// Index mirrors active jobs into Elasticsearch for full-text search.
type Index struct {
	client *elasticsearch.Client
	name   string
	logger logger.Logger
}

func NewIndex(client *elasticsearch.Client, name string, log logger.Logger) *Index {
	return &Index{client: client, name: name, logger: log.WithFields(map[string]interface{}{"index": name})}
}

func (ix *Index) Name() string { return ix.name }

// EnsureIndex creates the index with its mapping when it does not exist.
func (ix *Index) EnsureIndex(ctx context.Context) error {
	res, err := ix.client.Indices.Exists([]string{ix.name}, ix.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return apperrors.NewElasticsearchConnectionFailedError(err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = ix.client.Indices.Create(ix.name,
		ix.client.Indices.Create.WithContext(ctx),
		ix.client.Indices.Create.WithBody(strings.NewReader(indexMapping)))
	if err != nil {
		return apperrors.NewElasticsearchConnectionFailedError(err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return apperrors.NewSearchQueryFailedError("create_index", responseError(res))
	}
	return nil
}

// IndexJob writes a job document keyed by its slug.
func (ix *Index) IndexJob(ctx context.Context, job Job) error {
	body, err := json.Marshal(job)
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{
		Index:      ix.name,
		DocumentID: job.Slug,
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, ix.client)
	if err != nil {
		return apperrors.NewElasticsearchConnectionFailedError(err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return apperrors.NewSearchQueryFailedError("index_job", responseError(res))
	}
	return nil
}

// SearchResponse is the subset of an Elasticsearch search response used here.
type SearchResponse struct {
	Took int64 `json:"took"`
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		MaxScore *float64 `json:"max_score"`
		Hits     []struct {
			ID     string  `json:"_id"`
			Score  float64 `json:"_score"`
			Source Job     `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (r *SearchResponse) Jobs() []Job {
	jobs := make([]Job, 0, len(r.Hits.Hits))
	for _, h := range r.Hits.Hits {
		jobs = append(jobs, h.Source)
	}
	return jobs
}

func (r *SearchResponse) Score() float64 {
	if r.Hits.MaxScore == nil {
		return 0
	}
	return *r.Hits.MaxScore
}

func (ix *Index) Search(ctx context.Context, q Query) (*Page, error) {
	q = q.Normalized()
	res, err := ix.Query(ctx, "job_index", BuildSearchBody(q))
	if err != nil {
		return nil, err
	}
	return &Page{Jobs: res.Jobs(), Total: int(res.Hits.Total.Value), Page: q.Page, Size: q.Size}, nil
}

// RelatedJobs finds jobs similar to the indexed job with the given slug.
func (ix *Index) RelatedJobs(ctx context.Context, slug string, size int) (*SearchResponse, error) {
	if size < 1 || size > MaxPageSize {
		size = 5
	}
	return ix.Query(ctx, "related_jobs", BuildRelatedBody(ix.name, slug, size))
}

// Query runs a raw search body against the index.
func (ix *Index) Query(ctx context.Context, queryType string, body map[string]interface{}) (*SearchResponse, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req := esapi.SearchRequest{
		Index: []string{ix.name},
		Body:  bytes.NewReader(data),
	}
	res, err := req.Do(ctx, ix.client)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.NewSearchTimeoutError(queryType)
		}
		return nil, apperrors.NewElasticsearchConnectionFailedError(err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, apperrors.NewIndexNotFoundError(ix.name)
	}
	if res.IsError() {
		return nil, apperrors.NewSearchQueryFailedError(queryType, responseError(res))
	}

	var out SearchResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, apperrors.NewSearchQueryFailedError(queryType, err)
	}
	return &out, nil
}

// BuildSearchBody translates a query into an Elasticsearch bool query with
// the same semantics as BuildSearchSQL.
func BuildSearchBody(q Query) map[string]interface{} {
	q = q.Normalized()
	f := q.Filter
	must := []interface{}{}
	filter := []interface{}{
		map[string]interface{}{"term": map[string]interface{}{"isActive": true}},
	}

	if f.SearchQuery != "" {
		must = append(must, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  f.SearchQuery,
				"fields": []string{"title^3", "companyName^2", "roleCategory"},
				"type":   "best_fields",
			},
		})
	}

	if q.FractionalOnly {
		filter = append(filter, map[string]interface{}{
			"bool": map[string]interface{}{
				"should": []interface{}{
					map[string]interface{}{"term": map[string]interface{}{"isFractional": true}},
					map[string]interface{}{"match": map[string]interface{}{"title": "fractional"}},
				},
				"minimum_should_match": 1,
			},
		})
	}

	if f.Location != "" {
		if strings.EqualFold(f.Location, "Remote") {
			filter = append(filter, map[string]interface{}{"term": map[string]interface{}{"isRemote": true}})
		} else {
			filter = append(filter, map[string]interface{}{"match_phrase": map[string]interface{}{"location": f.Location}})
		}
	}

	if f.Role != "" {
		filter = append(filter, map[string]interface{}{
			"bool": map[string]interface{}{
				"should": []interface{}{
					map[string]interface{}{"term": map[string]interface{}{"roleCategory": RoleCategoryFor(f.Role)}},
					map[string]interface{}{"match_phrase": map[string]interface{}{"title": f.Role}},
				},
				"minimum_should_match": 1,
			},
		})
	}

	switch f.WorkType {
	case jobfilter.WorkTypeRemote:
		filter = append(filter, map[string]interface{}{"term": map[string]interface{}{"isRemote": true}})
	case jobfilter.WorkTypeHybrid:
		filter = append(filter, map[string]interface{}{"term": map[string]interface{}{"workplaceType": WorkplaceHybrid}})
	case jobfilter.WorkTypeOnsite:
		filter = append(filter, map[string]interface{}{"term": map[string]interface{}{"workplaceType": WorkplaceOnsite}})
	}

	if q.RemoteOnly && f.WorkType != jobfilter.WorkTypeRemote {
		filter = append(filter, map[string]interface{}{
			"bool": map[string]interface{}{
				"should": []interface{}{
					map[string]interface{}{"term": map[string]interface{}{"isRemote": true}},
					map[string]interface{}{"match": map[string]interface{}{"location": "remote"}},
				},
				"minimum_should_match": 1,
			},
		})
	}

	if q.RateFiltered {
		filter = append(filter,
			map[string]interface{}{"range": map[string]interface{}{"dayRateMax": map[string]interface{}{"gte": f.MinRate}}},
			map[string]interface{}{"range": map[string]interface{}{"dayRateMin": map[string]interface{}{"lte": f.MaxRate}}},
		)
	}

	boolQuery := map[string]interface{}{"filter": filter}
	if len(must) > 0 {
		boolQuery["must"] = must
	}

	return map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"sort": []interface{}{
			map[string]interface{}{"isFractional": "desc"},
			map[string]interface{}{"postedDate": map[string]interface{}{"order": "desc", "missing": "_last"}},
		},
		"from":             q.Offset(),
		"size":             q.Size,
		"track_total_hits": true,
	}
}

// BuildRelatedBody builds a more_like_this query around one indexed job.
func BuildRelatedBody(index, slug string, size int) map[string]interface{} {
	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": []interface{}{
					map[string]interface{}{
						"more_like_this": map[string]interface{}{
							"fields":          []string{"title", "roleCategory", "descriptionSnippet"},
							"like":            []interface{}{map[string]interface{}{"_index": index, "_id": slug}},
							"min_term_freq":   1,
							"max_query_terms": 12,
						},
					},
				},
				"filter": []interface{}{
					map[string]interface{}{"term": map[string]interface{}{"isActive": true}},
				},
			},
		},
		"size": size,
	}
}

func responseError(res *esapi.Response) error {
	body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	return fmt.Errorf("%s: %s", res.Status(), strings.TrimSpace(string(body)))
}
