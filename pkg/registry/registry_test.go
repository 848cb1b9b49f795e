package registry

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixed = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func activity(id string) Activity {
	return Activity{ID: id, DisplayName: id, Category: "jobs", TaskType: id, ImplementationStatus: StatusCompleted, Timeout: "5s"}
}

func TestLoadRegistry_Repository(t *testing.T) {
	reg, err := LoadRegistry(filepath.Join("..", "..", DefaultPath))
	require.NoError(t, err)

	require.NoError(t, reg.Validate())
	assert.Empty(t, reg.Missing([]string{"parse-job-filters", "query-postgresql", "query-elasticsearch", "sync-jobs", "send-job-alert"}))

	sync, ok := reg.Find("sync-jobs")
	require.True(t, ok)
	assert.Equal(t, "20m", sync.Timeout)
	assert.Contains(t, sync.ErrorCodes, "DATASET_FETCH_FAILED")
}

func TestLoadRegistry_Errors(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "registry.json")
	reg := New(fixed)
	require.NoError(t, reg.Add(activity("sync-jobs"), fixed))
	require.NoError(t, reg.Save(path))

	loaded, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-14T09:30:00Z", loaded.LastUpdated)
	assert.Equal(t, []string{"sync-jobs"}, loaded.TaskTypes())
}

func TestAdd(t *testing.T) {
	reg := New(fixed)
	a := activity("send-job-alert")
	a.ImplementationStatus = ""
	require.NoError(t, reg.Add(a, fixed))

	got, ok := reg.Find("send-job-alert")
	require.True(t, ok)
	assert.Equal(t, StatusPlanned, got.ImplementationStatus)

	err := reg.Add(activity("send-job-alert"), fixed)
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestUpdate(t *testing.T) {
	later := fixed.Add(time.Hour)

	tests := []struct {
		name    string
		field   string
		value   string
		check   func(t *testing.T, a Activity)
		wantErr bool
	}{
		{name: "status", field: "status", value: StatusVerified, check: func(t *testing.T, a Activity) {
			assert.Equal(t, StatusVerified, a.ImplementationStatus)
		}},
		{name: "retries", field: "retries", value: "5", check: func(t *testing.T, a Activity) {
			assert.Equal(t, 5, a.Retries)
		}},
		{name: "timeout", field: "timeout", value: "30s", check: func(t *testing.T, a Activity) {
			assert.Equal(t, "30s", a.Timeout)
		}},
		{name: "bad status", field: "status", value: "done", wantErr: true},
		{name: "bad retries", field: "retries", value: "many", wantErr: true},
		{name: "bad timeout", field: "timeout", value: "soon", wantErr: true},
		{name: "unknown field", field: "owner", value: "x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := New(fixed)
			require.NoError(t, reg.Add(activity("sync-jobs"), fixed))

			err := reg.Update("sync-jobs", tt.field, tt.value, later)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, fixed.Format(time.RFC3339), reg.LastUpdated)
				return
			}
			require.NoError(t, err)
			tt.check(t, reg.Activities[0])
			assert.Equal(t, later.Format(time.RFC3339), reg.LastUpdated)
		})
	}
}

func TestUpdate_NotFound(t *testing.T) {
	reg := New(fixed)
	assert.ErrorIs(t, reg.Update("nope", "status", StatusVerified, fixed), ErrNotFound)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *ActivityRegistry)
	}{
		{"empty", func(r *ActivityRegistry) { r.Activities = nil }},
		{"missing id", func(r *ActivityRegistry) { r.Activities[0].ID = "" }},
		{"missing display name", func(r *ActivityRegistry) { r.Activities[0].DisplayName = "" }},
		{"missing task type", func(r *ActivityRegistry) { r.Activities[0].TaskType = "" }},
		{"missing category", func(r *ActivityRegistry) { r.Activities[0].Category = "" }},
		{"duplicate id", func(r *ActivityRegistry) { r.Activities[1].ID = r.Activities[0].ID }},
		{"duplicate task type", func(r *ActivityRegistry) { r.Activities[1].TaskType = r.Activities[0].TaskType }},
		{"invalid status", func(r *ActivityRegistry) { r.Activities[0].ImplementationStatus = "shipped" }},
		{"invalid timeout", func(r *ActivityRegistry) { r.Activities[0].Timeout = "ten seconds" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := &ActivityRegistry{Activities: []Activity{activity("a"), activity("b")}}
			require.NoError(t, reg.Validate())

			tt.mutate(reg)
			assert.Error(t, reg.Validate())
		})
	}
}

func TestMissing(t *testing.T) {
	reg := &ActivityRegistry{Activities: []Activity{activity("sync-jobs")}}
	assert.Equal(t, []string{"send-job-alert"}, reg.Missing([]string{"sync-jobs", "send-job-alert"}))
	assert.Nil(t, reg.Missing([]string{"sync-jobs"}))
}
