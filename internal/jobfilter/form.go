package jobfilter

import (
	"math"
	"net/url"

	"fractional-quest/internal/rangeslider"
)

// Navigator pushes a new history entry.
type Navigator interface {
	Push(url string)
}

type NavigatorFunc func(url string)

func (f NavigatorFunc) Push(url string) { f(url) }

// Form owns the filter state of a search form. Field setters only change
// local state; navigation happens on Submit and ClearAll.
type Form struct {
	codec   Codec
	nav     Navigator
	state   State
	current string
	slider  *rangeslider.Slider
}

// NewForm builds a form whose state is parsed from currentURL, the URL of
// the page the form is rendered on. The current URL is kept as its path plus
// the canonical query, so an absolute or unordered URL that names the same
// filters does not count as a change on Submit.
func NewForm(codec Codec, currentURL string, nav Navigator) *Form {
	state := codec.Default()
	current := currentURL
	if u, err := url.Parse(currentURL); err == nil {
		state = codec.ParseQuery(u.RawQuery)
		current = u.Path
		if current == "" {
			current = codec.SearchPath()
		}
		if q := codec.Serialize(state); q != "" {
			current += "?" + q
		}
	}
	return &Form{codec: codec, nav: nav, state: state, current: current}
}

func (f *Form) State() State { return f.state }

func (f *Form) CurrentURL() string { return f.current }

func (f *Form) SetSearchQuery(q string) { f.state.SearchQuery = q }

func (f *Form) SetLocation(location string) { f.state.Location = location }

func (f *Form) SetRole(role string) { f.state.Role = role }

func (f *Form) SetWorkType(workType string) { f.state.WorkType = NormalizeWorkType(workType) }

// HandleRateChange accepts a new rate pair from the slider.
func (f *Form) HandleRateChange(minValue, maxValue float64) {
	f.state.MinRate = int(math.Round(minValue))
	f.state.MaxRate = int(math.Round(maxValue))
	f.syncSlider()
}

func (f *Form) IsRateFiltered() bool { return f.codec.IsRateFiltered(f.state) }

func (f *Form) ActiveFilterCount() int { return f.codec.ActiveFilterCount(f.state) }

func (f *Form) Chips() []Chip { return f.codec.Chips(f.state) }

func (f *Form) Query() string { return f.codec.Serialize(f.state) }

// Submit navigates to the URL for the current state. Nothing is pushed when
// that URL is the one already shown; the returned bool reports a push.
func (f *Form) Submit() (string, bool) {
	target := f.codec.URL(f.state)
	if target == f.current {
		return target, false
	}
	f.push(target)
	return target, true
}

// ClearAll resets every filter and navigates to the bare search path.
func (f *Form) ClearAll() string {
	f.state = f.codec.Default()
	f.syncSlider()
	path := f.codec.SearchPath()
	f.push(path)
	return path
}

// RemoveChip clears the filter behind a chip without navigating.
func (f *Form) RemoveChip(key string) {
	f.state = f.codec.Without(f.state, key)
	f.syncSlider()
}

// Slider creates the day-rate slider bound to this form. The form is the
// slider's owner: accepted changes are fed back into it.
func (f *Form) Slider(track rangeslider.Track, doc rangeslider.EventTarget) *rangeslider.Slider {
	f.slider = rangeslider.New(rateSliderConfig(f.codec), track, doc,
		float64(f.state.MinRate), float64(f.state.MaxRate), f.HandleRateChange)
	return f.slider
}

// RateView is the render model of the rate slider for the current state.
func (f *Form) RateView() rangeslider.View {
	if f.slider != nil {
		return f.slider.View()
	}
	return RateView(f.codec, f.state)
}

func (f *Form) syncSlider() {
	if f.slider != nil {
		f.slider.SetValues(float64(f.state.MinRate), float64(f.state.MaxRate))
	}
}

func (f *Form) push(target string) {
	if f.nav != nil {
		f.nav.Push(target)
	}
	f.current = target
}

// RateView describes the day-rate slider for s without a live slider.
func RateView(c Codec, s State) rangeslider.View {
	return rangeslider.Describe(rateSliderConfig(c), float64(s.MinRate), float64(s.MaxRate))
}

func rateSliderConfig(c Codec) rangeslider.Config {
	return rangeslider.Config{
		Min:   float64(c.DefaultMin),
		Max:   float64(c.DefaultMax),
		Step:  float64(c.RateStep()),
		Label: "Day Rate",
	}
}
