package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fractional-quest/internal/jobfilter"
	"fractional-quest/internal/jobs"
	"fractional-quest/pkg/registry"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func runJSON(t *testing.T, v interface{}, args ...string) {
	t.Helper()
	out, err := run(t, append(args, "--json")...)
	require.NoError(t, err, out)
	require.NoError(t, json.Unmarshal([]byte(out), v), out)
}

func TestFilterParse(t *testing.T) {
	var got parsedFilter
	runJSON(t, &got, "filter", "parse", "?type=office&role=CFO&rate=600-1200")

	assert.Equal(t, jobfilter.State{Role: "CFO", MinRate: 600, MaxRate: 1200}, got.State)
	assert.Equal(t, "rate=600-1200&role=CFO", got.CanonicalQuery)
	assert.Equal(t, "/fractional-jobs-uk?rate=600-1200&role=CFO", got.URL)
	assert.Equal(t, 2, got.ActiveFilterCount)
	assert.True(t, got.IsRateFiltered)
}

func TestFilterParse_InvalidRateFallsBack(t *testing.T) {
	var got parsedFilter
	runJSON(t, &got, "filter", "parse", "rate=1500-900")

	assert.Equal(t, jobfilter.Default(), got.State)
	assert.Equal(t, "", got.CanonicalQuery)
	assert.Equal(t, jobfilter.SearchPath, got.URL)
}

func TestFilterParse_CustomBounds(t *testing.T) {
	var got parsedFilter
	runJSON(t, &got, "filter", "parse", "rate=300-900", "--default-min-rate", "200", "--default-max-rate", "1000")

	assert.Equal(t, 300, got.State.MinRate)
	assert.Equal(t, 900, got.State.MaxRate)
}

func TestFilterParse_CustomSearchPath(t *testing.T) {
	var got parsedFilter
	runJSON(t, &got, "filter", "parse", "role=CTO", "--search-path", "/interim-jobs")

	assert.Equal(t, "/interim-jobs?role=CTO", got.URL)
}

func TestFilterSerialize(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"defaults", nil, ""},
		{
			"canonical order",
			[]string{"--type", "remote", "--role", "CTO", "--max-rate", "1500", "--min-rate", "800"},
			"rate=800-1500&role=CTO&type=remote",
		},
		{"escaped text", []string{"--q", "board & advisory", "--location", "London"}, "q=board+%26+advisory&location=London"},
		{"only min rate", []string{"--min-rate", "600"}, "rate=600-2000"},
		{"default rate omitted", []string{"--min-rate", "400", "--max-rate", "2000", "--role", "CFO"}, "role=CFO"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, append([]string{"filter", "serialize"}, tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.want+"\n", out)
		})
	}
}

func TestFilterSerialize_JSON(t *testing.T) {
	var got parsedFilter
	runJSON(t, &got, "filter", "serialize", "--role", "CMO", "--type", "hybrid")

	assert.Equal(t, "role=CMO&type=hybrid", got.CanonicalQuery)
	assert.Equal(t, "/fractional-jobs-uk?role=CMO&type=hybrid", got.URL)
	assert.False(t, got.IsRateFiltered)
}

func TestFilterSerialize_Rejects(t *testing.T) {
	tests := map[string][]string{
		"unknown work type": {"--type", "office"},
		"inverted rate":     {"--min-rate", "1500", "--max-rate", "1000"},
		"rate out of range": {"--min-rate", "100"},
	}

	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := run(t, append([]string{"filter", "serialize"}, args...)...)
			assert.Error(t, err)
		})
	}
}

func TestFilterChips(t *testing.T) {
	var got []jobfilter.Chip
	runJSON(t, &got, "filter", "chips", "type=hybrid&rate=600-1200&location=London&role=CFO&q=board")

	assert.Equal(t, []jobfilter.Chip{
		{Key: "q", Label: `"board"`},
		{Key: "role", Label: "CFO / Finance"},
		{Key: "location", Label: "London"},
		{Key: "rate", Label: "£600 - £1,200/day"},
		{Key: "type", Label: "Hybrid"},
	}, got)
}

func TestFilterChips_Text(t *testing.T) {
	out, err := run(t, "filter", "chips", "role=CTO")
	require.NoError(t, err)
	assert.Equal(t, "role     CTO / Technology\n", out)

	out, err = run(t, "filter", "chips", "")
	require.NoError(t, err)
	assert.Equal(t, "no active filters\n", out)
}

func TestFilterParse_RequiresQuery(t *testing.T) {
	_, err := run(t, "filter", "parse")
	assert.Error(t, err)
}

func TestSliderDrag(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		wantChanges []rateChange
		wantQuery   string
	}{
		{
			name:        "min handle snaps to step",
			args:        []string{"--handle", "min", "--to", "437"},
			wantChanges: []rateChange{{850, 2000}},
			wantQuery:   "rate=850-2000",
		},
		{
			name:        "max handle through several moves",
			args:        []string{"--handle", "max", "--to", "1400,1200", "--min-value", "600"},
			wantChanges: []rateChange{{600, 1800}, {600, 1600}},
			wantQuery:   "rate=600-1600",
		},
		{
			name:        "touch events",
			args:        []string{"--handle", "min", "--to", "100", "--touch"},
			wantChanges: []rateChange{{500, 2000}},
			wantQuery:   "rate=500-2000",
		},
		{
			name:        "max cannot pass min",
			args:        []string{"--handle", "max", "--to", "0", "--min-value", "1000"},
			wantChanges: []rateChange{{1000, 1050}},
			wantQuery:   "rate=1000-1050",
		},
		{
			name:        "offset track",
			args:        []string{"--handle", "min", "--to", "900", "--left", "100", "--width", "800"},
			wantChanges: []rateChange{{2000 - 50, 2000}},
			wantQuery:   "rate=1950-2000",
		},
		{
			name:        "unchanged value emits nothing",
			args:        []string{"--handle", "min", "--to=-50"},
			wantChanges: []rateChange{},
			wantQuery:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got dragResult
			runJSON(t, &got, append([]string{"slider", "drag"}, tt.args...)...)

			assert.Equal(t, tt.wantChanges, got.Changes)
			assert.Equal(t, tt.wantQuery, got.Query)
			assert.Equal(t, "none", got.View.Dragging)
		})
	}
}

func TestSliderDrag_View(t *testing.T) {
	var got dragResult
	runJSON(t, &got, "slider", "drag", "--handle", "min", "--to", "437")

	assert.Equal(t, "min", got.Handle)
	assert.Equal(t, rateChange{850, 2000}, got.Values)
	assert.Equal(t, "£850", got.View.MinLabel)
	assert.Equal(t, "£2,000", got.View.MaxLabel)
	assert.InDelta(t, 28.125, got.View.MinPercent, 1e-9)
	assert.InDelta(t, 100, got.View.MaxPercent, 1e-9)
	assert.Equal(t, "Day Rate", got.View.Label)
}

func TestSliderDrag_Text(t *testing.T) {
	out, err := run(t, "slider", "drag", "--handle", "max", "--to", "1200")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "change  £400 - £1,600", lines[0])
	assert.Equal(t, "values  £400 - £1,600 (0% - 75%)", lines[1])
	assert.Equal(t, "query   rate=400-1600", lines[2])

	out, err = run(t, "slider", "drag", "--to=-10")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "no change\n"), out)
}

func TestSliderDrag_Rejects(t *testing.T) {
	tests := map[string][]string{
		"unknown handle":  {"--handle", "middle", "--to", "10"},
		"no moves":        {"--handle", "min"},
		"zero width":      {"--to", "10", "--width", "0"},
		"invalid initial": {"--to", "10", "--min-value", "1500", "--max-value", "900"},
	}

	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := run(t, append([]string{"slider", "drag"}, args...)...)
			assert.Error(t, err)
		})
	}
}

func TestJobsNormalize(t *testing.T) {
	var got normalizedTitle
	runJSON(t, &got, "jobs", "normalize", "Fractional CFO - Series A")

	assert.Equal(t, "Fractional CFO - Series A", got.Title)
	assert.Equal(t, jobs.CategoryFinance, got.Category)
	assert.True(t, got.Fractional)
	assert.Equal(t, jobs.DayRate{Min: 900, Max: 1500}, got.DayRate)
	assert.Equal(t, "£900-£1500/day", got.DayRateText)
	assert.Equal(t, "fractional-cfo-series-a", got.SlugBase)
}

func TestJobsNormalize_Text(t *testing.T) {
	out, err := run(t, "jobs", "normalize", "Senior", "Software", "Engineer", "--company", "Acme")
	require.NoError(t, err)

	assert.Contains(t, out, "Title:       Senior Software Engineer\n")
	assert.Contains(t, out, "Fractional:  false\n")
	assert.Contains(t, out, "Slug base:   senior-software-engineer-acme\n")
}

func TestJobsNormalize_RequiresTitle(t *testing.T) {
	_, err := run(t, "jobs", "normalize")
	assert.Error(t, err)

	_, err = run(t, "jobs", "normalize", "   ")
	assert.Error(t, err)
}

func writeRegistry(t *testing.T, activities ...registry.Activity) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "activity-registry.json")
	reg := registry.New(time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC))
	reg.Activities = activities
	require.NoError(t, reg.Save(path))
	return path
}

func workerActivities() []registry.Activity {
	out := make([]registry.Activity, 0, len(WorkerTaskTypes))
	for _, tt := range WorkerTaskTypes {
		out = append(out, registry.Activity{
			ID: tt, DisplayName: tt, Category: "jobs", TaskType: tt,
			ImplementationStatus: registry.StatusCompleted, Timeout: "10s", Retries: 3,
		})
	}
	return out
}

func TestRegistryValidate_RepositoryFile(t *testing.T) {
	out, err := run(t, "registry", "validate", "--path", filepath.Join("..", "..", registry.DefaultPath))
	require.NoError(t, err, out)
	assert.Equal(t, "Registry validation passed. Found 5 activities.\n", out)
}

func TestRegistryValidate_MissingWorker(t *testing.T) {
	path := writeRegistry(t, workerActivities()[:4]...)

	_, err := run(t, "registry", "validate", "--path", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "send-job-alert")
}

func TestRegistryList(t *testing.T) {
	path := writeRegistry(t, workerActivities()...)

	var got []registry.Activity
	runJSON(t, &got, "registry", "list", "--path", path)
	assert.Len(t, got, 5)

	out, err := run(t, "registry", "list", "--path", path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "TASK TYPE"), out)
	assert.Contains(t, out, "parse-job-filters")
}

func TestRegistryAddAndUpdate(t *testing.T) {
	now = func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = time.Now })

	path := filepath.Join(t.TempDir(), "registry.json")

	out, err := run(t, "registry", "add", "--path", path,
		"--id", "rank-jobs", "--display-name", "Rank Jobs", "--category", "jobs")
	require.NoError(t, err, out)
	assert.Equal(t, "Added activity: rank-jobs\n", out)

	_, err = run(t, "registry", "add", "--path", path,
		"--id", "rank-jobs", "--display-name", "Rank Jobs", "--category", "jobs")
	assert.ErrorIs(t, err, registry.ErrDuplicate)

	out, err = run(t, "registry", "update", "rank-jobs", "status", "in-progress", "--path", path)
	require.NoError(t, err, out)

	reg, err := registry.LoadRegistry(path)
	require.NoError(t, err)
	a, ok := reg.Find("rank-jobs")
	require.True(t, ok)
	assert.Equal(t, registry.StatusInProgress, a.ImplementationStatus)
	assert.Equal(t, "2026-05-01T12:00:00Z", reg.LastUpdated)

	_, err = run(t, "registry", "add", "--path", path, "--id", "incomplete")
	assert.Error(t, err)
}
