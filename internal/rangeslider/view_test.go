package rangeslider

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescribe(t *testing.T) {
	v := Describe(Config{Min: 400, Max: 2000, Label: "Day rate"}, 600, 1200)

	assert.Equal(t, "Day rate", v.Label)
	assert.InDelta(t, 12.5, v.MinPercent, 1e-9)
	assert.InDelta(t, 50.0, v.MaxPercent, 1e-9)
	assert.Equal(t, "£600", v.MinLabel)
	assert.Equal(t, "£1,200", v.MaxLabel)
	assert.Equal(t, "£400", v.ScaleMin)
	assert.Equal(t, "£2,000", v.ScaleMax)
	assert.Equal(t, 50.0, v.Step)
	assert.Equal(t, "none", v.Dragging)
}

func TestDescribe_PercentClampedToTrack(t *testing.T) {
	v := Describe(Config{Min: 400, Max: 2000, Step: 50}, 100, 5000)

	assert.Equal(t, 0.0, v.MinPercent)
	assert.Equal(t, 100.0, v.MaxPercent)
}

func TestDescribe_CustomFormatter(t *testing.T) {
	cfg := Config{
		Min: 0, Max: 10, Step: 1,
		FormatValue: func(v float64) string { return fmt.Sprintf("%.0f days", v) },
	}
	v := Describe(cfg, 2, 5)

	assert.Equal(t, "2 days", v.MinLabel)
	assert.Equal(t, "5 days", v.MaxLabel)
}

func TestSlider_ViewReportsDraggingHandle(t *testing.T) {
	h := newHarness(t, 400, 2000)
	assert.Equal(t, "none", h.slider.View().Dragging)

	h.slider.PointerDown(HandleMax, Event{Type: MouseDown})
	assert.Equal(t, "max", h.slider.View().Dragging)

	h.doc.Dispatch(Event{Type: MouseUp})
	assert.Equal(t, "none", h.slider.View().Dragging)
}
