package apify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fractional-quest/internal/common/config"
	httpclient "fractional-quest/internal/common/http"
)

func TestDatasetItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/datasets/ds-1/items", r.URL.Path)
		assert.Equal(t, "tok", r.URL.Query().Get("token"))
		assert.Equal(t, "500", r.URL.Query().Get("limit"))
		assert.Equal(t, "0", r.URL.Query().Get("offset"))
		_, _ = w.Write([]byte(`[{"title":"Fractional CFO","organization":"Acme","url":"https://x/1",
			"locations_derived":["London, UK"],"remote_derived":true,"ai_salary_value":1000,"ai_salary_unittext":"DAY"}]`))
	}))
	defer srv.Close()

	c := NewClient(config.ApifyConfig{BaseURL: srv.URL + "/", Token: "tok", Timeout: 1000})
	items, err := c.DatasetItems(context.Background(), "ds-1", 500, 0)

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Fractional CFO", items[0].Title)
	assert.Equal(t, []string{"London, UK"}, items[0].LocationsDerived)
	assert.True(t, items[0].RemoteDerived)
	assert.Equal(t, 1000.0, items[0].AISalaryValue)
}

func TestDatasetItems_MissingToken(t *testing.T) {
	c := NewClient(config.ApifyConfig{BaseURL: "http://unused"})
	_, err := c.DatasetItems(context.Background(), "ds-1", 10, 0)
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestDatasetItems_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(config.ApifyConfig{BaseURL: srv.URL, Token: "tok", Timeout: 1000},
		httpclient.WithRetries(1, time.Millisecond))
	_, err := c.DatasetItems(context.Background(), "ds-1", 10, 0)

	var statusErr *httpclient.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
}

func TestRunActorSync(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/acts/fantastic-jobs~advanced-linkedin-job-search-api/run-sync-get-dataset-items", r.URL.Path)

		var in ActorInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, []string{"Fractional"}, in.TitleSearch)
		assert.True(t, in.IncludeAI)

		_, _ = w.Write([]byte(`[{"title":"Interim CTO","url":"https://x/2"}]`))
	}))
	defer srv.Close()

	c := NewClient(config.ApifyConfig{BaseURL: srv.URL, Token: "tok", Timeout: 1000})
	items, err := c.RunActorSync(context.Background(), ActorLinkedIn, DefaultSearches()[0].Input, time.Second)

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Interim CTO", items[0].Title)
}

func TestDefaultSearches(t *testing.T) {
	searches := DefaultSearches()

	require.Len(t, searches, 9)
	assert.Equal(t, ActorLinkedIn, searches[0].Actor)
	assert.Equal(t, "7d", searches[0].Input.TimeRange)
	assert.Equal(t, ActorCareerSite, searches[8].Actor)
	assert.Equal(t, 15, searches[8].Input.Limit)
}
