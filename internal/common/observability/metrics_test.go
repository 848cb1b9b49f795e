package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestZeroValueRecordsNothing(t *testing.T) {
	var o *Observability
	assert.NotPanics(t, func() {
		o.RecordJob(context.Background(), "sync-jobs", "completed", time.Second)
		o.RecordSearch(context.Background(), "postgres", false, time.Millisecond)
	})
	assert.NoError(t, o.Shutdown(context.Background()))

	assert.NotPanics(t, func() {
		(&Observability{}).RecordSearch(context.Background(), "postgres", true, time.Millisecond)
	})
}
