package api

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "fractional-quest/internal/common/errors"
	"fractional-quest/internal/jobs"
)

var authHeader = map[string]string{"Authorization": "Bearer s3cret"}

const succeededPayload = `{
  "eventType": "ACTOR.RUN.SUCCEEDED",
  "resource": {"id": "run-1", "actId": "actor-1", "status": "SUCCEEDED", "defaultDatasetId": "ds-42"}
}`

func TestApifyWebhook_SyncsDataset(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.syncer.SyncDatasetFunc = func(_ context.Context, id string) (jobs.IngestStats, error) {
		return jobs.IngestStats{DatasetID: id, Fetched: 12, FractionalFiltered: 9, Inserted: 5, Updated: 3, Skipped: 1}, nil
	}

	rec := ts.do(http.MethodPost, "/api/webhooks/apify", succeededPayload, authHeader)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, []string{"ds-42"}, ts.syncer.DatasetIDs)
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Synced 5 new jobs, updated 3", body["message"])

	stats := body["stats"].(map[string]interface{})
	assert.Equal(t, "ds-42", stats["datasetId"])
	assert.Equal(t, float64(12), stats["fetched"])
	assert.Equal(t, float64(1), stats["skipped"])
}

func TestApifyWebhook_EmptyDataset(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(http.MethodPost, "/api/webhooks/apify", succeededPayload, authHeader)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "No jobs in dataset", decode(t, rec)["message"])
}

func TestApifyWebhook_IgnoresOtherEvents(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(http.MethodPost, "/api/webhooks/apify",
		`{"eventType":"ACTOR.RUN.FAILED","resource":{"defaultDatasetId":"ds-1"}}`, authHeader)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Ignoring event type: ACTOR.RUN.FAILED", body["message"])
	assert.Empty(t, ts.syncer.DatasetIDs)
}

func TestApifyWebhook_MissingDataset(t *testing.T) {
	payloads := map[string]string{
		"no resource":      `{"eventType":"ACTOR.RUN.SUCCEEDED"}`,
		"null dataset id":  `{"eventType":"ACTOR.RUN.SUCCEEDED","resource":{"id":"run-1","defaultDatasetId":null}}`,
		"empty dataset id": `{"eventType":"ACTOR.RUN.SUCCEEDED","resource":{"defaultDatasetId":""}}`,
	}

	for name, payload := range payloads {
		t.Run(name, func(t *testing.T) {
			ts := newTestServer(t, nil)
			rec := ts.do(http.MethodPost, "/api/webhooks/apify", payload, authHeader)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, "No datasetId in webhook payload", body["error"])
			assert.Empty(t, ts.syncer.DatasetIDs)
		})
	}
}

func TestApifyWebhook_Authorization(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
	}{
		{"missing header", nil},
		{"wrong secret", map[string]string{"Authorization": "Bearer nope"}},
		{"not a bearer token", map[string]string{"Authorization": "s3cret"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, nil)
			rec := ts.do(http.MethodPost, "/api/webhooks/apify", succeededPayload, tt.headers)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, "Unauthorized", body["error"])
			assert.Equal(t, string(apperrors.ErrCodeWebhookUnauthorized), body["code"])
			assert.Empty(t, ts.syncer.DatasetIDs)
		})
	}
}

func TestApifyWebhook_NoSecretConfigured(t *testing.T) {
	ts := newTestServer(t, func(d *Deps) { d.Config.Apify.WebhookSecret = "" })

	rec := ts.do(http.MethodPost, "/api/webhooks/apify", succeededPayload, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"ds-42"}, ts.syncer.DatasetIDs)
}

func TestApifyWebhook_InvalidPayload(t *testing.T) {
	payloads := map[string]string{
		"missing event type": `{"resource":{"defaultDatasetId":"ds-1"}}`,
		"empty event type":   `{"eventType":""}`,
		"wrong type":         `{"eventType":42}`,
		"not json":           `eventType=ACTOR.RUN.SUCCEEDED`,
	}

	for name, payload := range payloads {
		t.Run(name, func(t *testing.T) {
			ts := newTestServer(t, nil)
			rec := ts.do(http.MethodPost, "/api/webhooks/apify", payload, authHeader)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, string(apperrors.ErrCodeWebhookPayloadInvalid), decode(t, rec)["code"])
		})
	}
}

func TestApifyWebhook_SyncFailure(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.syncer.SyncDatasetFunc = func(_ context.Context, id string) (jobs.IngestStats, error) {
		return jobs.IngestStats{DatasetID: id}, apperrors.NewDatasetFetchFailedError(id, errors.New("status 502"))
	}

	rec := ts.do(http.MethodPost, "/api/webhooks/apify", succeededPayload, authHeader)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "Webhook processing failed", body["error"])
	assert.Contains(t, body["details"], "DATASET_FETCH_FAILED")
}

func TestApifyWebhook_SyncNotConfigured(t *testing.T) {
	ts := newTestServer(t, func(d *Deps) { d.Syncer = nil })

	rec := ts.do(http.MethodPost, "/api/webhooks/apify", succeededPayload, authHeader)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

type MockPublisher struct {
	PublishFunc func(ctx context.Context, name, key string, vars interface{}) error
	Names       []string
	Keys        []string
}

func (m *MockPublisher) PublishMessage(ctx context.Context, name, key string, vars interface{}) error {
	m.Names = append(m.Names, name)
	m.Keys = append(m.Keys, key)
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, name, key, vars)
	}
	return nil
}

func TestApifyWebhook_PublishesJobsSynced(t *testing.T) {
	pub := &MockPublisher{}
	ts := newTestServer(t, func(d *Deps) { d.Events = pub })

	rec := ts.do(http.MethodPost, "/api/webhooks/apify", succeededPayload, authHeader)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{MessageJobsSynced}, pub.Names)
	assert.Equal(t, []string{"ds-42"}, pub.Keys)
}

func TestApifyWebhook_PublishFailureDoesNotFailSync(t *testing.T) {
	pub := &MockPublisher{PublishFunc: func(context.Context, string, string, interface{}) error {
		return errors.New("gateway unavailable")
	}}
	ts := newTestServer(t, func(d *Deps) { d.Events = pub })

	rec := ts.do(http.MethodPost, "/api/webhooks/apify", succeededPayload, authHeader)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["success"])
}

func TestApifyWebhook_IgnoredEventsNotPublished(t *testing.T) {
	pub := &MockPublisher{}
	ts := newTestServer(t, func(d *Deps) { d.Events = pub })

	ts.do(http.MethodPost, "/api/webhooks/apify", `{"eventType":"ACTOR.RUN.ABORTED"}`, authHeader)
	assert.Empty(t, pub.Names)
}
