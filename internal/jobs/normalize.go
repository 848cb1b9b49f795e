package jobs

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"fractional-quest/internal/common/apify"
)

// Role categories assigned at ingest.
const (
	CategoryExecutive   = "Executive"
	CategoryFinance     = "Finance"
	CategoryEngineering = "Engineering"
	CategoryMarketing   = "Marketing"
	CategoryOperations  = "Operations"
	CategoryHR          = "HR"
	CategoryProduct     = "Product"
	CategorySales       = "Sales"
	CategoryCISO        = "CISO"
)

const (
	SourceLinkedIn   = "LinkedIn (Apify)"
	SourceCareerSite = "Career Site (Apify)"

	workingDaysPerYear = 220
	snippetLength      = 200
	slugBaseLength     = 80
	defaultValidity    = 30 * 24 * time.Hour
)

type DayRate struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

var dayRateEstimates = map[string]DayRate{
	CategoryExecutive:   {Min: 1000, Max: 2000},
	CategoryFinance:     {Min: 900, Max: 1500},
	CategoryEngineering: {Min: 850, Max: 1600},
	CategoryMarketing:   {Min: 800, Max: 1400},
	CategoryOperations:  {Min: 850, Max: 1400},
	CategoryHR:          {Min: 700, Max: 1200},
	CategoryProduct:     {Min: 800, Max: 1300},
	CategorySales:       {Min: 750, Max: 1300},
	CategoryCISO:        {Min: 900, Max: 1500},
}

var defaultDayRate = DayRate{Min: 700, Max: 1200}

type categoryRule struct {
	category string
	acronyms []string
	phrases  []string
}

// Rules are checked in order; the first match wins. Acronyms must appear as
// whole words so that "director" does not match "cto".
var categoryRules = []categoryRule{
	{CategoryExecutive, []string{"ceo"}, []string{"chief executive", "managing director"}},
	{CategoryFinance, []string{"cfo"}, []string{"chief financial", "finance director", "accountant"}},
	{CategoryEngineering, []string{"cto"}, []string{"chief technology", "tech director", "engineering"}},
	{CategoryMarketing, []string{"cmo"}, []string{"chief marketing", "marketing director", "growth"}},
	{CategoryOperations, []string{"coo"}, []string{"chief operating", "operations director"}},
	{CategoryHR, []string{"chro"}, []string{"chief people", "hr director", "people"}},
	{CategoryProduct, []string{"cpo"}, []string{"chief product", "product director", "head of product"}},
	{CategorySales, []string{"cro"}, []string{"chief revenue", "sales director", "sales"}},
	{CategoryCISO, []string{"ciso"}, []string{"security"}},
	{CategoryOperations, nil, []string{"quality"}},
}

var (
	nonAlnum   = regexp.MustCompile(`[^a-z0-9]+`)
	whitespace = regexp.MustCompile(`\s+`)
)

// CategorizeRole maps a job title to a role category, defaulting to Executive.
func CategorizeRole(title string) string {
	t := strings.ToLower(title)
	words := make(map[string]bool)
	for _, w := range nonAlnum.Split(t, -1) {
		if w != "" {
			words[w] = true
		}
	}

	for _, rule := range categoryRules {
		for _, a := range rule.acronyms {
			if words[a] {
				return rule.category
			}
		}
		if containsAny(t, rule.phrases...) {
			return rule.category
		}
	}
	return CategoryExecutive
}

// IsFractionalRole reports whether a title describes fractional, interim or
// otherwise part-time executive work.
func IsFractionalRole(title string) bool {
	t := strings.ToLower(title)
	switch {
	case containsAny(t, "fractional", "interim", "part-time", "part time", "portfolio"):
		return true
	case strings.Contains(t, "contract") && containsAny(t, "director", "chief"):
		return true
	case strings.Contains(t, "consultant") && containsAny(t, "cfo", "cmo", "cto"):
		return true
	}
	return false
}

// DeriveWorkplaceType prefers the remote flag, then a hybrid mention in the
// work arrangement or the title.
func DeriveWorkplaceType(remote bool, workArrangement, title string) string {
	if remote {
		return WorkplaceRemote
	}
	if strings.Contains(strings.ToLower(workArrangement), "hybrid") ||
		strings.Contains(strings.ToLower(title), "hybrid") {
		return WorkplaceHybrid
	}
	return WorkplaceOnsite
}

func EstimateDayRate(category string) DayRate {
	if r, ok := dayRateEstimates[category]; ok {
		return r
	}
	return defaultDayRate
}

func FormatDayRate(r DayRate) string {
	return fmt.Sprintf("£%d-£%d/day", r.Min, r.Max)
}

func currencySymbol(code string) string {
	switch code {
	case "", "GBP":
		return "£"
	default:
		return code
	}
}

// FormatAISalary renders the extracted salary as a day rate, converting
// annual figures over 220 working days. Without an extracted value it falls
// back to the raw salary text, which may be empty.
func FormatAISalary(item apify.DatasetItem) string {
	raw := ""
	if item.SalaryRaw != nil {
		raw = *item.SalaryRaw
	}
	if item.AISalaryValue == 0 {
		return raw
	}

	sym := currencySymbol(item.AISalaryCurrency)
	switch strings.ToLower(item.AISalaryUnitText) {
	case "day":
		return fmt.Sprintf("%s%s/day", sym, strconv.FormatFloat(item.AISalaryValue, 'f', -1, 64))
	case "year":
		day := math.Round(item.AISalaryValue / workingDaysPerYear)
		return fmt.Sprintf("~%s%.0f/day (%s%.0fk/yr)", sym, day, sym, math.Round(item.AISalaryValue/1000))
	}
	return raw
}

// FormatSalaryRange renders annual salary bounds in thousands, e.g. £80k-120k.
func FormatSalaryRange(min, max int, currency string) string {
	sym := "£"
	switch currency {
	case "USD":
		sym = "$"
	case "EUR":
		sym = "€"
	}
	k := func(v int) string { return fmt.Sprintf("%.0fk", math.Round(float64(v)/1000)) }

	switch {
	case min > 0 && max > 0:
		return sym + k(min) + "-" + k(max)
	case min > 0:
		return "From " + sym + k(min)
	case max > 0:
		return "Up to " + sym + k(max)
	}
	return ""
}

// SlugBase is the deterministic part of a job slug.
func SlugBase(title, company string) string {
	s := nonAlnum.ReplaceAllString(strings.ToLower(title+" "+company), "-")
	s = strings.Trim(s, "-")
	if len(s) > slugBaseLength {
		s = s[:slugBaseLength]
	}
	return s
}

// GenerateSlug appends a short random suffix to SlugBase so re-posted roles
// at the same company get distinct URLs.
func GenerateSlug(title, company string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:4]
	return SlugBase(title, company) + "-" + suffix
}

// Snippet builds a short plain-text description. HTML is only used when no
// plain text is available.
func Snippet(text, html, fallback string) string {
	if text == "" && html != "" {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
			text = doc.Text()
		}
	}
	if strings.TrimSpace(text) == "" {
		return fallback
	}
	text = truncateRunes(text, snippetLength)
	return strings.TrimSpace(whitespace.ReplaceAllString(text, " ")) + "..."
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Normalize converts a dataset item into a job row. defaultSource names the
// feed when the item does not carry its own source.
func Normalize(item apify.DatasetItem, defaultSource string, now time.Time) Job {
	category := CategorizeRole(item.Title)
	estimate := EstimateDayRate(category)

	location := "UK"
	if len(item.LocationsDerived) > 0 && item.LocationsDerived[0] != "" {
		location = item.LocationsDerived[0]
	} else if len(item.CitiesDerived) > 0 && item.CitiesDerived[0] != "" {
		location = item.CitiesDerived[0]
	}

	posted := now
	for _, candidate := range []string{item.DatePosted, item.DateCreated} {
		if t, ok := parseDate(candidate); ok {
			posted = t
			break
		}
	}
	validThrough := posted.Add(defaultValidity)
	if item.DateValidThrough != nil {
		if t, ok := parseDate(*item.DateValidThrough); ok {
			validThrough = t
		}
	}

	source := defaultSource
	if item.Source != "" {
		source = item.Source + " (Apify)"
	}

	job := Job{
		Title:              item.Title,
		CompanyName:        item.Organization,
		CompanyLogo:        item.OrganizationLogo,
		Location:           location,
		IsRemote:           item.RemoteDerived,
		WorkplaceType:      DeriveWorkplaceType(item.RemoteDerived, item.AIWorkArrangement, item.Title),
		Compensation:       FormatAISalary(item),
		RoleCategory:       category,
		PostedDate:         &posted,
		ValidThrough:       &validThrough,
		SourceURL:          item.URL,
		JobSource:          source,
		IsActive:           true,
		IsFractional:       IsFractionalRole(item.Title),
		DescriptionSnippet: Snippet(item.DescriptionText, item.DescriptionHTML, item.AICoreResponsibilities),
		DayRateMin:         estimate.Min,
		DayRateMax:         estimate.Max,
	}
	if job.Compensation == "" {
		job.Compensation = FormatDayRate(estimate)
	}
	applyAISalary(&job, item)
	return job
}

func applyAISalary(job *Job, item apify.DatasetItem) {
	if item.AISalaryValue == 0 && item.AISalaryMinValue == 0 && item.AISalaryMaxValue == 0 {
		return
	}
	lo, hi := item.AISalaryMinValue, item.AISalaryMaxValue
	if lo == 0 {
		lo = item.AISalaryValue
	}
	if hi == 0 {
		hi = item.AISalaryValue
	}
	if lo == 0 {
		lo = hi
	}

	switch strings.ToLower(item.AISalaryUnitText) {
	case "day":
		job.DayRateMin, job.DayRateMax = int(math.Round(lo)), int(math.Round(hi))
	case "year":
		job.SalaryMin, job.SalaryMax = int(math.Round(lo)), int(math.Round(hi))
		job.SalaryCurrency = item.AISalaryCurrency
		job.DayRateMin = int(math.Round(lo / workingDaysPerYear))
		job.DayRateMax = int(math.Round(hi / workingDaysPerYear))
	}
}
