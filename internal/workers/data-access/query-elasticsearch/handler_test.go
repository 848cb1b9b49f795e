package queryelasticsearch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	apperrors "fractional-quest/internal/common/errors"
	"fractional-quest/internal/common/logger"
	"fractional-quest/internal/jobfilter"
	"fractional-quest/internal/jobs"
	"fractional-quest/internal/models"
	"fractional-quest/internal/workers/data-access/query-elasticsearch/queries"
)

func createTestConfig() *Config {
	return &Config{
		Timeout:   30 * time.Second,
		IndexName: "jobs",
		Codec:     jobfilter.DefaultCodec,
	}
}

func createTestLogger(t *testing.T) logger.Logger {
	return logger.NewZapAdapter(zaptest.NewLogger(t))
}

// createMockElasticsearchClient points a client at an httptest server that
// answers like Elasticsearch 8.
func createMockElasticsearchClient(t *testing.T, handler http.HandlerFunc) *elasticsearch.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return client
}

const twoHits = `{"took":4,"hits":{"total":{"value":2},"max_score":2.5,"hits":[
	{"_id":"fractional-cfo-acme-ab12","_score":2.5,"_source":{"id":"1","slug":"fractional-cfo-acme-ab12","title":"Fractional CFO","companyName":"Acme","isFractional":true}},
	{"_id":"part-time-cfo-beta-cd34","_score":1.2,"_source":{"id":"2","slug":"part-time-cfo-beta-cd34","title":"Part-time CFO","companyName":"Beta"}}]}}`

func TestHandler_Execute_JobIndex(t *testing.T) {
	var captured map[string]interface{}
	client := createMockElasticsearchClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/jobs/_search", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &captured))
		_, _ = io.WriteString(w, twoHits)
	})
	handler := NewHandler(createTestConfig(), client, createTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		QueryType:  string(models.QueryTypeJobIndex),
		Filters:    map[string]string{"q": "fintech", "role": "CFO", "rate": "600-1200"},
		Pagination: Pagination{From: 20, Size: 10},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(2), output.TotalHits)
	assert.Equal(t, 2.5, output.MaxScore)
	assert.Equal(t, int64(4), output.Took)
	require.Len(t, output.Data, 2)
	assert.Equal(t, "Fractional CFO", output.Data[0].Title)

	assert.Equal(t, float64(20), captured["from"])
	assert.Equal(t, float64(10), captured["size"])
	raw, _ := json.Marshal(captured)
	assert.Contains(t, string(raw), `{"range":{"dayRateMax":{"gte":600}}}`)
	assert.Contains(t, string(raw), `{"term":{"isFractional":true}}`)
}

func TestHandler_Execute_RelatedJobs(t *testing.T) {
	var captured string
	client := createMockElasticsearchClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		captured = string(body)
		_, _ = io.WriteString(w, twoHits)
	})
	handler := NewHandler(createTestConfig(), client, createTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		QueryType: string(models.QueryTypeRelatedJobs),
		Slug:      "fractional-cfo-acme-ab12",
	})

	require.NoError(t, err)
	assert.Len(t, output.Data, 2)
	assert.Contains(t, captured, `"more_like_this"`)
	assert.Contains(t, captured, `"_id":"fractional-cfo-acme-ab12"`)
	assert.Contains(t, captured, `"size":5`)
}

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		input    *Input
		wantCode apperrors.ErrorCode
	}{
		{
			name:     "nil input",
			wantCode: apperrors.ErrCodeInvalidRequest,
		},
		{
			name:     "unknown query type",
			input:    &Input{QueryType: "job_archive_index"},
			wantCode: apperrors.ErrCodeInvalidQueryType,
		},
		{
			name:     "related jobs without slug",
			input:    &Input{QueryType: string(models.QueryTypeRelatedJobs)},
			wantCode: apperrors.ErrCodeInvalidRequest,
		},
		{
			name:     "missing index",
			status:   http.StatusNotFound,
			body:     `{"error":{"type":"index_not_found_exception"},"status":404}`,
			input:    &Input{QueryType: string(models.QueryTypeJobIndex)},
			wantCode: apperrors.ErrCodeIndexNotFound,
		},
		{
			name:     "bad query",
			status:   http.StatusBadRequest,
			body:     `{"error":{"type":"parsing_exception"},"status":400}`,
			input:    &Input{QueryType: string(models.QueryTypeJobIndex)},
			wantCode: apperrors.ErrCodeSearchQueryFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := createMockElasticsearchClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			handler := NewHandler(createTestConfig(), client, createTestLogger(t))

			_, err := handler.Execute(context.Background(), tt.input)

			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, tt.wantCode), err.Error())
		})
	}
}

func TestElasticsearchQuery_Query(t *testing.T) {
	eq := queries.ElasticsearchQuery{Codec: jobfilter.DefaultCodec, FractionalOnly: true}
	eq.Filter = jobfilter.Default()
	eq.Pagination.From = 45
	eq.Pagination.Size = 20

	q := eq.Query()

	assert.Equal(t, 3, q.Page)
	assert.Equal(t, 20, q.Size)
	assert.True(t, q.FractionalOnly)
	assert.False(t, q.RateFiltered)

	eq.Pagination.Size = 500
	assert.Equal(t, jobs.MaxPageSize, eq.Query().Size)
}

func TestBuildQuery_RequiresIndex(t *testing.T) {
	_, err := queries.BuildQuery(queries.ElasticsearchQuery{QueryType: models.QueryTypeJobIndex})
	assert.ErrorIs(t, err, queries.ErrMissingIndex)
}

// TestHandler_Execute_RealElasticsearch runs against a local node when
// ELASTICSEARCH_URL is set and the job index has been seeded.
func TestHandler_Execute_RealElasticsearch(t *testing.T) {
	addr := os.Getenv("ELASTICSEARCH_URL")
	if addr == "" {
		t.Skip("ELASTICSEARCH_URL not set")
	}
	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{addr}})
	require.NoError(t, err)
	res, err := client.Info()
	if err != nil {
		t.Skipf("elasticsearch not responding: %v", err)
	}
	res.Body.Close()

	handler := NewHandler(createTestConfig(), client, createTestLogger(t))
	output, err := handler.Execute(context.Background(), &Input{
		QueryType:  string(models.QueryTypeJobIndex),
		Pagination: Pagination{Size: 5},
	})
	if apperrors.HasCode(err, apperrors.ErrCodeIndexNotFound) {
		t.Skip("job index not seeded")
	}
	require.NoError(t, err)
	assert.LessOrEqual(t, len(output.Data), 5)
}
