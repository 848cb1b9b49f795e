// Package rangeslider implements a headless dual-handle range slider.
//
// The slider is a controlled component: it never changes its own values.
// Every drag that lands on a new quantized value is reported through the
// ChangeFunc and the owner is expected to feed the accepted pair back with
// SetValues. While a handle is being dragged the slider listens for move and
// release events on a document-scope EventTarget so the drag keeps tracking
// when the pointer leaves the track; those listeners exist only for the
// duration of the drag.
//
// A Slider is not safe for concurrent use.
package rangeslider

import (
	"math"
)

const DefaultStep = 50

type Handle int

const (
	HandleNone Handle = iota
	HandleMin
	HandleMax
)

func (h Handle) String() string {
	switch h {
	case HandleMin:
		return "min"
	case HandleMax:
		return "max"
	default:
		return "none"
	}
}

type State int

const (
	Idle State = iota
	DraggingMin
	DraggingMax
)

func (s State) String() string {
	switch s {
	case DraggingMin:
		return "dragging-min"
	case DraggingMax:
		return "dragging-max"
	default:
		return "idle"
	}
}

func (s State) Handle() Handle {
	switch s {
	case DraggingMin:
		return HandleMin
	case DraggingMax:
		return HandleMax
	default:
		return HandleNone
	}
}

// Rect is the horizontal extent of the track in pointer coordinates.
type Rect struct {
	Left  float64
	Width float64
}

type Track interface {
	BoundingRect() Rect
}

// TrackFunc adapts a function to Track.
type TrackFunc func() Rect

func (f TrackFunc) BoundingRect() Rect { return f() }

type ChangeFunc func(minValue, maxValue float64)

type Config struct {
	Min         float64
	Max         float64
	Step        float64
	Label       string
	FormatValue func(float64) string
}

func (c Config) withDefaults() Config {
	if c.Step <= 0 {
		c.Step = DefaultStep
	}
	if c.FormatValue == nil {
		c.FormatValue = FormatPounds
	}
	return c
}

type Slider struct {
	cfg      Config
	track    Track
	doc      EventTarget
	onChange ChangeFunc

	minValue float64
	maxValue float64
	state    State
	detach   []func()
}

func New(cfg Config, track Track, doc EventTarget, minValue, maxValue float64, onChange ChangeFunc) *Slider {
	return &Slider{
		cfg:      cfg.withDefaults(),
		track:    track,
		doc:      doc,
		onChange: onChange,
		minValue: minValue,
		maxValue: maxValue,
		state:    Idle,
	}
}

func (s *Slider) Config() Config { return s.cfg }

func (s *Slider) State() State { return s.state }

func (s *Slider) Values() (minValue, maxValue float64) {
	return s.minValue, s.maxValue
}

// SetValues replaces the controlled values. It does not invoke the ChangeFunc.
func (s *Slider) SetValues(minValue, maxValue float64) {
	s.minValue = minValue
	s.maxValue = maxValue
}

// PointerDown starts a drag of h from a mousedown or touchstart on that
// handle. It is ignored while another drag is in progress.
func (s *Slider) PointerDown(h Handle, _ Event) {
	if s.state != Idle {
		return
	}
	switch h {
	case HandleMin:
		s.state = DraggingMin
	case HandleMax:
		s.state = DraggingMax
	default:
		return
	}
	s.capture()
}

// Unmount tears down any document listeners and returns to Idle.
func (s *Slider) Unmount() {
	s.release()
}

func (s *Slider) capture() {
	if s.doc == nil {
		return
	}
	s.detach = append(s.detach,
		s.doc.AddEventListener(MouseMove, s.handleMove),
		s.doc.AddEventListener(TouchMove, s.handleMove),
		s.doc.AddEventListener(MouseUp, s.handleRelease),
		s.doc.AddEventListener(TouchEnd, s.handleRelease),
	)
}

func (s *Slider) release() {
	for _, remove := range s.detach {
		remove()
	}
	s.detach = nil
	s.state = Idle
}

func (s *Slider) handleMove(ev Event) {
	if s.state == Idle {
		return
	}
	x, ok := ev.PointerX()
	if !ok {
		return
	}
	s.moveTo(x)
}

func (s *Slider) handleRelease(Event) {
	s.release()
}

func (s *Slider) moveTo(x float64) {
	rect := s.track.BoundingRect()
	if rect.Width <= 0 {
		return
	}
	value := ValueAt(x, rect, s.cfg.Min, s.cfg.Max, s.cfg.Step)

	switch s.state {
	case DraggingMin:
		next := clamp(value, s.cfg.Min, s.maxValue-s.cfg.Step)
		if next != s.minValue {
			s.emit(next, s.maxValue)
		}
	case DraggingMax:
		next := clamp(value, s.minValue+s.cfg.Step, s.cfg.Max)
		if next != s.maxValue {
			s.emit(s.minValue, next)
		}
	}
}

func (s *Slider) emit(minValue, maxValue float64) {
	if s.onChange != nil {
		s.onChange(minValue, maxValue)
	}
}

// Fraction converts a pointer x coordinate to a position along the track in [0, 1].
func Fraction(x float64, rect Rect) float64 {
	if rect.Width <= 0 {
		return 0
	}
	return clamp((x-rect.Left)/rect.Width, 0, 1)
}

// Quantize snaps raw to the nearest multiple of step counted from min.
func Quantize(raw, min, step float64) float64 {
	return min + math.Round((raw-min)/step)*step
}

// ValueAt maps a pointer x coordinate to a quantized slider value.
func ValueAt(x float64, rect Rect, min, max, step float64) float64 {
	raw := min + Fraction(x, rect)*(max-min)
	return Quantize(raw, min, step)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
