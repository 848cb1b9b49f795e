package rangeslider

import (
	"math"

	"github.com/dustin/go-humanize"
)

type View struct {
	Label      string  `json:"label,omitempty"`
	MinValue   float64 `json:"minValue"`
	MaxValue   float64 `json:"maxValue"`
	MinPercent float64 `json:"minPercent"`
	MaxPercent float64 `json:"maxPercent"`
	MinLabel   string  `json:"minLabel"`
	MaxLabel   string  `json:"maxLabel"`
	ScaleMin   string  `json:"scaleMin"`
	ScaleMax   string  `json:"scaleMax"`
	Step       float64 `json:"step"`
	Dragging   string  `json:"dragging"`
}

// FormatPounds renders a value as a whole-pound amount, e.g. £1,200.
func FormatPounds(v float64) string {
	return "£" + humanize.Comma(int64(math.Round(v)))
}

func (s *Slider) View() View {
	v := Describe(s.cfg, s.minValue, s.maxValue)
	v.Dragging = s.state.Handle().String()
	return v
}

// Describe computes the render model for a slider without instantiating one.
func Describe(cfg Config, minValue, maxValue float64) View {
	cfg = cfg.withDefaults()
	return View{
		Label:      cfg.Label,
		MinValue:   minValue,
		MaxValue:   maxValue,
		MinPercent: percent(minValue, cfg.Min, cfg.Max),
		MaxPercent: percent(maxValue, cfg.Min, cfg.Max),
		MinLabel:   cfg.FormatValue(minValue),
		MaxLabel:   cfg.FormatValue(maxValue),
		ScaleMin:   cfg.FormatValue(cfg.Min),
		ScaleMax:   cfg.FormatValue(cfg.Max),
		Step:       cfg.Step,
		Dragging:   HandleNone.String(),
	}
}

func percent(v, min, max float64) float64 {
	if max <= min {
		return 0
	}
	return clamp((v-min)/(max-min), 0, 1) * 100
}
