package jobfilter

import (
	"github.com/dustin/go-humanize"
)

type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var Locations = []Option{
	{Value: "", Label: "All Locations"},
	{Value: "London", Label: "London"},
	{Value: "Manchester", Label: "Manchester"},
	{Value: "Birmingham", Label: "Birmingham"},
	{Value: "Edinburgh", Label: "Edinburgh"},
	{Value: "Leeds", Label: "Leeds"},
	{Value: "Bristol", Label: "Bristol"},
	{Value: "Remote", Label: "Remote Only"},
}

var Roles = []Option{
	{Value: "", Label: "All Roles"},
	{Value: "CFO", Label: "CFO / Finance"},
	{Value: "CTO", Label: "CTO / Technology"},
	{Value: "CMO", Label: "CMO / Marketing"},
	{Value: "COO", Label: "COO / Operations"},
	{Value: "HR", Label: "HR / CHRO"},
	{Value: "CPO", Label: "CPO / Product"},
	{Value: "CISO", Label: "CISO / Security"},
}

var WorkTypes = []Option{
	{Value: "", Label: "Any Work Type"},
	{Value: WorkTypeRemote, Label: "Remote"},
	{Value: WorkTypeHybrid, Label: "Hybrid"},
	{Value: WorkTypeOnsite, Label: "On-site"},
}

// LabelFor returns the label of value in options, or value itself when it
// is not one of the listed options.
func LabelFor(options []Option, value string) string {
	for _, o := range options {
		if o.Value == value {
			return o.Label
		}
	}
	return value
}

type Chip struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// FormatRateValue renders a day rate as whole pounds, e.g. £1,200.
func FormatRateValue(v int) string {
	return "£" + humanize.Comma(int64(v))
}

// Chips lists the active filters of s in display order.
func (c Codec) Chips(s State) []Chip {
	chips := make([]Chip, 0, 5)
	if s.SearchQuery != "" {
		chips = append(chips, Chip{Key: KeyQuery, Label: `"` + s.SearchQuery + `"`})
	}
	if s.Role != "" {
		chips = append(chips, Chip{Key: KeyRole, Label: LabelFor(Roles, s.Role)})
	}
	if s.Location != "" {
		chips = append(chips, Chip{Key: KeyLocation, Label: LabelFor(Locations, s.Location)})
	}
	if c.IsRateFiltered(s) {
		chips = append(chips, Chip{
			Key:   KeyRate,
			Label: FormatRateValue(s.MinRate) + " - " + FormatRateValue(s.MaxRate) + "/day",
		})
	}
	if s.WorkType != "" {
		chips = append(chips, Chip{Key: KeyType, Label: LabelFor(WorkTypes, s.WorkType)})
	}
	return chips
}

// Without returns s with the filter named by key reset. Unknown keys leave
// s unchanged.
func (c Codec) Without(s State, key string) State {
	switch key {
	case KeyQuery:
		s.SearchQuery = ""
	case KeyLocation:
		s.Location = ""
	case KeyRole:
		s.Role = ""
	case KeyType:
		s.WorkType = ""
	case KeyRate:
		s.MinRate, s.MaxRate = c.DefaultMin, c.DefaultMax
	}
	return s
}

func Chips(s State) []Chip { return DefaultCodec.Chips(s) }
