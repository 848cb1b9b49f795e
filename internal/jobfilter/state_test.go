package jobfilter

import (
	"math/rand"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fractional-quest/internal/common/config"
)

func TestParse_TextAndRate(t *testing.T) {
	got := Parse(url.Values{"q": {"CFO"}, "rate": {"600-1200"}})

	assert.Equal(t, State{SearchQuery: "CFO", MinRate: 600, MaxRate: 1200}, got)
}

func TestParse_MalformedRateFallsBack(t *testing.T) {
	tests := []struct {
		name string
		rate string
	}{
		{name: "non-numeric min", rate: "abc-1200"},
		{name: "non-numeric max", rate: "600-abc"},
		{name: "missing separator", rate: "600"},
		{name: "empty segments", rate: "-"},
		{name: "extra segment", rate: "600-800-1200"},
		{name: "below bounds", rate: "100-1200"},
		{name: "above bounds", rate: "600-5000"},
		{name: "inverted", rate: "1200-600"},
		{name: "equal", rate: "800-800"},
		{name: "decimal", rate: "600.5-1200"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(url.Values{"rate": {tt.rate}})
			assert.Equal(t, DefaultMinRate, got.MinRate)
			assert.Equal(t, DefaultMaxRate, got.MaxRate)
			assert.False(t, IsRateFiltered(got))
		})
	}
}

func TestParse_UnknownWorkTypeDropped(t *testing.T) {
	got := ParseQuery("type=freelance&location=Atlantis&role=CEO")

	assert.Empty(t, got.WorkType)
	assert.Equal(t, "Atlantis", got.Location)
	assert.Equal(t, "CEO", got.Role)
}

func TestParseQuery_LeadingQuestionMarkAndEncoding(t *testing.T) {
	got := ParseQuery("?q=head+of+finance&location=London&type=hybrid")

	assert.Equal(t, "head of finance", got.SearchQuery)
	assert.Equal(t, "London", got.Location)
	assert.Equal(t, WorkTypeHybrid, got.WorkType)
}

func TestParseQuery_BadEscapeKeepsOtherKeys(t *testing.T) {
	got := ParseQuery("q=%zz&role=CTO")

	assert.Empty(t, got.SearchQuery)
	assert.Equal(t, "CTO", got.Role)
}

func TestSerialize_OmitsDefaults(t *testing.T) {
	s := State{Location: "London", MinRate: 400, MaxRate: 2000, WorkType: "remote"}

	assert.Equal(t, "location=London&type=remote", Serialize(s))
}

func TestSerialize_DefaultIsEmpty(t *testing.T) {
	assert.Equal(t, "", Serialize(Default()))
	assert.Equal(t, SearchPath, SearchURL(Default()))
}

func TestSerialize_FixedKeyOrder(t *testing.T) {
	s := State{
		SearchQuery: "fractional cfo",
		Location:    "Manchester",
		Role:        "CFO",
		WorkType:    "onsite",
		MinRate:     600,
		MaxRate:     1200,
	}

	assert.Equal(t, "q=fractional+cfo&location=Manchester&rate=600-1200&role=CFO&type=onsite", Serialize(s))
	assert.Equal(t, SearchPath+"?q=fractional+cfo&location=Manchester&rate=600-1200&role=CFO&type=onsite", SearchURL(s))
}

func TestSerialize_EscapesValues(t *testing.T) {
	s := Default()
	s.SearchQuery = "R&D £1k/day"

	assert.Equal(t, "q=R%26D+%C2%A31k%2Fday", Serialize(s))
}

func TestSerialize_RateFilteredWhenOnlyOneBoundMoves(t *testing.T) {
	s := Default()
	s.MaxRate = 1500

	assert.True(t, IsRateFiltered(s))
	assert.Equal(t, "rate=400-1500", Serialize(s))
}

func TestRoundTrip_ReachableStates(t *testing.T) {
	queries := []string{"", "CFO", "head of growth", "R&D", "a=b", "£900/day", "  padded  "}
	rng := rand.New(rand.NewSource(7))
	pick := func(options []Option) string { return options[rng.Intn(len(options))].Value }

	for i := 0; i < 500; i++ {
		lo := MinRate + RateStep*rng.Intn((MaxRate-MinRate)/RateStep)
		hi := lo + RateStep*(1+rng.Intn((MaxRate-lo)/RateStep))
		s := State{
			SearchQuery: queries[rng.Intn(len(queries))],
			Location:    pick(Locations),
			Role:        pick(Roles),
			WorkType:    pick(WorkTypes),
			MinRate:     lo,
			MaxRate:     hi,
		}

		encoded := Serialize(s)
		require.Equal(t, s, ParseQuery(encoded), "query %q", encoded)
		require.Equal(t, encoded, Serialize(ParseQuery(encoded)))
	}
}

func TestActiveFilterCount(t *testing.T) {
	assert.Equal(t, 0, ActiveFilterCount(Default()))

	s := State{SearchQuery: "cto", Location: "Leeds", Role: "CTO", WorkType: "remote", MinRate: 400, MaxRate: 2000}
	assert.Equal(t, 4, ActiveFilterCount(s))

	s.MinRate = 800
	assert.Equal(t, 5, ActiveFilterCount(s))
}

func TestCodec_CustomDefaults(t *testing.T) {
	c := NewCodec(500, 1500)

	assert.Equal(t, State{MinRate: 500, MaxRate: 1500}, c.Default())
	assert.Equal(t, "", c.Serialize(c.Default()))
	assert.Equal(t, State{MinRate: 500, MaxRate: 1500}, c.ParseQuery("rate=400-1200"))
	assert.Equal(t, State{MinRate: 600, MaxRate: 1200}, c.ParseQuery("rate=600-1200"))
}

func TestNewCodec_InvalidBoundsUseDefaults(t *testing.T) {
	assert.Equal(t, DefaultCodec, NewCodec(2000, 400))
}

func TestCodec_ParseMap(t *testing.T) {
	got := DefaultCodec.ParseMap(map[string]string{"role": "CMO", "rate": "700-1100"})

	assert.Equal(t, State{Role: "CMO", MinRate: 700, MaxRate: 1100}, got)
	assert.True(t, DefaultCodec.ValidRate("700-1100"))
	assert.False(t, DefaultCodec.ValidRate("700"))
}

func TestCodecFor(t *testing.T) {
	c := CodecFor(config.FiltersConfig{DefaultMinRate: 500, DefaultMaxRate: 1500, RateStep: 25, SearchPath: "/interim-jobs"})

	assert.Equal(t, 25, c.RateStep())
	assert.Equal(t, "/interim-jobs", c.SearchPath())
	assert.Equal(t, "/interim-jobs?rate=500-1000", c.URL(State{MinRate: 500, MaxRate: 1000}))

	zero := CodecFor(config.FiltersConfig{})
	assert.Equal(t, DefaultCodec, zero)
}
