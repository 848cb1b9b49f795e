package jobs

import (
	"fmt"
	"strings"
)

type SummaryFilters struct {
	RoleType   string `json:"roleType,omitempty"`
	Location   string `json:"location,omitempty"`
	Remote     bool   `json:"remote"`
	Fractional bool   `json:"fractional"`
}

// VoiceSummary describes search results in a sentence or two suitable for
// reading aloud.
func VoiceSummary(results []SearchResult, f SummaryFilters) string {
	if len(results) == 0 {
		role := ""
		if f.RoleType != "" {
			role = f.RoleType + " "
		}
		loc := ""
		if f.Location != "" {
			loc = " in " + f.Location
		}
		return fmt.Sprintf("I couldn't find any %sroles%s right now. Try broadening your search or check back soon.", role, loc)
	}

	var fractional, remote int
	for _, r := range results {
		if r.IsFractional {
			fractional++
		}
		if r.IsRemote {
			remote++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I found %d role", len(results))
	if len(results) > 1 {
		b.WriteString("s")
	}
	if f.RoleType != "" {
		b.WriteString(" matching " + f.RoleType)
	}
	if f.Location != "" {
		b.WriteString(" in " + f.Location)
	}
	b.WriteString(".")

	if fractional > 0 {
		verb := "is"
		if fractional > 1 {
			verb = "are"
		}
		fmt.Fprintf(&b, " %d %s fractional.", fractional, verb)
	}
	if remote > 0 && !f.Remote {
		fmt.Fprintf(&b, " %d offer remote work.", remote)
	}

	top := results[0]
	fmt.Fprintf(&b, " The top result is a %s at %s.", top.Title, top.Company)
	return b.String()
}

// FilterRemote keeps results that are remote or mention remote in their location.
func FilterRemote(results []SearchResult) []SearchResult {
	out := results[:0:0]
	for _, r := range results {
		if r.IsRemote || strings.Contains(strings.ToLower(r.Location), "remote") {
			out = append(out, r)
		}
	}
	return out
}
