// internal/workers/communication/send-job-alert/message.go
package sendjobalert

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"fractional-quest/internal/jobfilter"
	"fractional-quest/internal/jobs"
)

type alertMessage struct {
	Subject   string
	Summary   string
	SearchURL string
	Results   []jobs.SearchResult
	More      int
}

var htmlBody = template.Must(template.New("alert").Parse(`<p>{{.Summary}}</p>
<ul>
{{- range .Results}}
  <li><a href="{{.URL}}">{{.Title}}</a> at {{.Company}}, {{.Location}}{{if .SalaryRange}} ({{.SalaryRange}}){{end}}</li>
{{- end}}
</ul>
{{- if .More}}
<p>And {{.More}} more.</p>
{{- end}}
<p><a href="{{.SearchURL}}">See all matching roles</a></p>
`))

func (h *Handler) buildMessage(state jobfilter.State, page *jobs.Page) alertMessage {
	results := make([]jobs.SearchResult, 0, len(page.Jobs))
	for _, j := range page.Jobs {
		results = append(results, j.ToSearchResult())
	}

	summary := jobs.VoiceSummary(results, jobs.SummaryFilters{
		RoleType:   state.Role,
		Location:   state.Location,
		Remote:     state.WorkType == jobfilter.WorkTypeRemote || strings.EqualFold(state.Location, "Remote"),
		Fractional: true,
	})

	listed := results
	if h.config.MaxListed > 0 && len(listed) > h.config.MaxListed {
		listed = listed[:h.config.MaxListed]
	}

	subject := fmt.Sprintf("%d new fractional role", page.Total)
	if page.Total != 1 {
		subject += "s"
	}
	if state.Role != "" {
		subject += " for " + state.Role
	}

	return alertMessage{
		Subject:   subject,
		Summary:   summary,
		SearchURL: h.config.SiteURL + h.config.Codec.URL(state),
		Results:   listed,
		More:      page.Total - len(listed),
	}
}

func (m alertMessage) Text() string {
	var b strings.Builder
	b.WriteString(m.Summary)
	b.WriteString("\n\n")
	for _, r := range m.Results {
		fmt.Fprintf(&b, "- %s at %s, %s", r.Title, r.Company, r.Location)
		if r.SalaryRange != "" {
			fmt.Fprintf(&b, " (%s)", r.SalaryRange)
		}
		fmt.Fprintf(&b, "\n  %s\n", r.URL)
	}
	if m.More > 0 {
		fmt.Fprintf(&b, "\nAnd %d more.\n", m.More)
	}
	fmt.Fprintf(&b, "\nSee all matching roles: %s\n", m.SearchURL)
	return b.String()
}

func (m alertMessage) HTML() (string, error) {
	var buf bytes.Buffer
	if err := htmlBody.Execute(&buf, m); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// SMS is the short form sent to high priority subscribers.
func (m alertMessage) SMS() string {
	return fmt.Sprintf("Fractional Quest: %s. %s", m.Subject, m.SearchURL)
}
