package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApifyWebhook(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		valid bool
	}{
		{name: "succeeded run", doc: `{"eventType":"ACTOR.RUN.SUCCEEDED","resource":{"defaultDatasetId":"ds1"}}`, valid: true},
		{name: "no resource", doc: `{"eventType":"ACTOR.RUN.FAILED"}`, valid: true},
		{name: "missing event type", doc: `{"resource":{"defaultDatasetId":"ds1"}}`},
		{name: "numeric dataset id", doc: `{"eventType":"ACTOR.RUN.SUCCEEDED","resource":{"defaultDatasetId":42}}`},
		{name: "not an object", doc: `[1,2]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ApifyWebhook.ValidateBytes([]byte(tt.doc))
			assert.Equal(t, tt.valid, result.Valid, result.Summary())
		})
	}
}

func TestValidateBytes_MalformedJSON(t *testing.T) {
	result := ApifyWebhook.ValidateBytes([]byte(`{"eventType":`))

	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "INVALID_JSON", result.Errors[0].Code)
}

func TestJobFilterState(t *testing.T) {
	ok := JobFilterState.ValidateValue(map[string]interface{}{"location": "London", "workType": "remote", "minRate": 600})
	assert.True(t, ok.Valid, ok.Summary())

	bad := JobFilterState.ValidateValue(map[string]interface{}{"workType": "freelance", "colour": "blue"})
	assert.False(t, bad.Valid)
	assert.Len(t, bad.Errors, 2)
}

func TestJobAlertInput(t *testing.T) {
	assert.True(t, JobAlertInput.ValidateValue(map[string]interface{}{
		"email": "cfo@example.com", "filterQuery": "role=CFO", "priority": "high",
	}).Valid)
	assert.True(t, JobAlertInput.ValidateValue(map[string]interface{}{
		"phone": "+447700900123", "filterQuery": "",
	}).Valid)
	assert.False(t, JobAlertInput.ValidateValue(map[string]interface{}{"filterQuery": "role=CFO"}).Valid)
	assert.False(t, JobAlertInput.ValidateValue(map[string]interface{}{
		"phone": "07700900123", "filterQuery": "",
	}).Valid)
}

func TestCompile_InvalidSchema(t *testing.T) {
	_, err := Compile("broken", `{"type": 12}`)
	assert.Error(t, err)
}
