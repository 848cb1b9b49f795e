// Package jobfilter maps job-board filter selections to a canonical URL
// query string and back.
//
// Query strings are produced in a fixed key order (q, location, rate, role,
// type) with every default or empty field omitted, so two equal filter sets
// always serialize to byte-identical strings. Parsing never fails: malformed
// or unknown values fall back to their defaults.
package jobfilter

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	MinRate        = 400
	MaxRate        = 2000
	DefaultMinRate = MinRate
	DefaultMaxRate = MaxRate
	RateStep       = 50

	SearchPath = "/fractional-jobs-uk"
)

// Query string keys.
const (
	KeyQuery    = "q"
	KeyLocation = "location"
	KeyRate     = "rate"
	KeyRole     = "role"
	KeyType     = "type"
)

// Work types accepted in the type parameter.
const (
	WorkTypeRemote = "remote"
	WorkTypeHybrid = "hybrid"
	WorkTypeOnsite = "onsite"
)

type State struct {
	SearchQuery string `json:"searchQuery"`
	Location    string `json:"location"`
	Role        string `json:"role"`
	WorkType    string `json:"workType"`
	MinRate     int    `json:"minRate"`
	MaxRate     int    `json:"maxRate"`
}

func (s State) Equal(other State) bool {
	return s == other
}

// Codec carries the default rate bounds used to decide whether a rate is a
// filter at all, the slider step and the search page path. The zero Codec is
// not useful; use NewCodec or DefaultCodec.
type Codec struct {
	DefaultMin int
	DefaultMax int
	Step       int
	Path       string
}

var DefaultCodec = Codec{DefaultMin: DefaultMinRate, DefaultMax: DefaultMaxRate, Step: RateStep, Path: SearchPath}

type CodecOption func(*Codec)

// WithRateStep sets the slider step. Non-positive steps are ignored.
func WithRateStep(step int) CodecOption {
	return func(c *Codec) {
		if step > 0 {
			c.Step = step
		}
	}
}

// WithSearchPath sets the path of the search page. An empty path is ignored.
func WithSearchPath(path string) CodecOption {
	return func(c *Codec) {
		if path == "" {
			return
		}
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		c.Path = path
	}
}

// NewCodec falls back to the package rate bounds when defaultMin is not
// below defaultMax.
func NewCodec(defaultMin, defaultMax int, opts ...CodecOption) Codec {
	c := DefaultCodec
	if defaultMin < defaultMax {
		c.DefaultMin, c.DefaultMax = defaultMin, defaultMax
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// SearchPath is the search page path, SearchPath for a zero Path.
func (c Codec) SearchPath() string {
	if c.Path == "" {
		return SearchPath
	}
	return c.Path
}

func (c Codec) RateStep() int {
	if c.Step <= 0 {
		return RateStep
	}
	return c.Step
}

// Default is the empty filter: no text, any location, role and work type,
// full rate range.
func (c Codec) Default() State {
	return State{MinRate: c.DefaultMin, MaxRate: c.DefaultMax}
}

func (c Codec) IsRateFiltered(s State) bool {
	return s.MinRate != c.DefaultMin || s.MaxRate != c.DefaultMax
}

// Parse reads the recognized keys from values. A rate that is not two
// integers "<min>-<max>" inside the default bounds with min < max leaves
// both rate fields at their defaults.
func (c Codec) Parse(values url.Values) State {
	s := c.Default()
	s.SearchQuery = values.Get(KeyQuery)
	s.Location = values.Get(KeyLocation)
	s.Role = values.Get(KeyRole)
	s.WorkType = NormalizeWorkType(values.Get(KeyType))

	if lo, hi, ok := c.parseRate(values.Get(KeyRate)); ok {
		s.MinRate, s.MaxRate = lo, hi
	}
	return s
}

// ParseQuery parses a raw query string, with or without a leading '?'.
// Undecodable pairs are skipped.
func (c Codec) ParseQuery(raw string) State {
	values, _ := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	return c.Parse(values)
}

// ParseMap is Parse for a plain key/value map, as found in JSON payloads.
func (c Codec) ParseMap(m map[string]string) State {
	values := make(url.Values, len(m))
	for k, v := range m {
		values.Set(k, v)
	}
	return c.Parse(values)
}

func (c Codec) parseRate(raw string) (int, int, bool) {
	if raw == "" {
		return 0, 0, false
	}
	loText, hiText, found := strings.Cut(raw, "-")
	if !found {
		return 0, 0, false
	}
	lo, err := strconv.Atoi(strings.TrimSpace(loText))
	if err != nil {
		return 0, 0, false
	}
	hi, err := strconv.Atoi(strings.TrimSpace(hiText))
	if err != nil {
		return 0, 0, false
	}
	if lo < c.DefaultMin || hi > c.DefaultMax || lo >= hi {
		return 0, 0, false
	}
	return lo, hi, true
}

// ValidRate reports whether raw would be accepted by Parse as a rate filter.
func (c Codec) ValidRate(raw string) bool {
	_, _, ok := c.parseRate(raw)
	return ok
}

// FormatRate renders a rate parameter value, e.g. "600-1200".
func FormatRate(minRate, maxRate int) string {
	return fmt.Sprintf("%d-%d", minRate, maxRate)
}

// Serialize renders s as a minimal query string without a leading '?'.
// The default state serializes to "".
func (c Codec) Serialize(s State) string {
	var b strings.Builder
	add := func(key, value string) {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(value))
	}

	if s.SearchQuery != "" {
		add(KeyQuery, s.SearchQuery)
	}
	if s.Location != "" {
		add(KeyLocation, s.Location)
	}
	if c.IsRateFiltered(s) {
		add(KeyRate, FormatRate(s.MinRate, s.MaxRate))
	}
	if s.Role != "" {
		add(KeyRole, s.Role)
	}
	if s.WorkType != "" {
		add(KeyType, s.WorkType)
	}
	return b.String()
}

// URL is the search page path for s, with a query string only when s has
// any filter set.
func (c Codec) URL(s State) string {
	if q := c.Serialize(s); q != "" {
		return c.SearchPath() + "?" + q
	}
	return c.SearchPath()
}

// ActiveFilterCount counts the set text, location, role and work type
// fields, plus one for a rate filter.
func (c Codec) ActiveFilterCount(s State) int {
	n := 0
	for _, v := range []string{s.SearchQuery, s.Location, s.Role, s.WorkType} {
		if v != "" {
			n++
		}
	}
	if c.IsRateFiltered(s) {
		n++
	}
	return n
}

// NormalizeWorkType returns v if it is a known work type, otherwise "".
func NormalizeWorkType(v string) string {
	switch v {
	case WorkTypeRemote, WorkTypeHybrid, WorkTypeOnsite:
		return v
	default:
		return ""
	}
}

func Default() State { return DefaultCodec.Default() }
func Parse(values url.Values) State { return DefaultCodec.Parse(values) }
func ParseQuery(raw string) State { return DefaultCodec.ParseQuery(raw) }
func Serialize(s State) string { return DefaultCodec.Serialize(s) }
func IsRateFiltered(s State) bool { return DefaultCodec.IsRateFiltered(s) }
func ActiveFilterCount(s State) int { return DefaultCodec.ActiveFilterCount(s) }
func SearchURL(s State) string { return DefaultCodec.URL(s) }
