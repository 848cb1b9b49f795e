package jobs

import (
	"fmt"
	"strings"

	"fractional-quest/internal/jobfilter"
)

const jobColumns = `id, slug, title, company_name, company_logo, location, is_remote, workplace_type,
		compensation, role_category, day_rate_min, day_rate_max, salary_min, salary_max, salary_currency,
		posted_date, valid_through, source_url, job_source, is_active, is_fractional, description_snippet`

// roleCategories maps role filter values to the category stored at ingest.
var roleCategories = map[string]string{
	"CFO":  CategoryFinance,
	"CTO":  CategoryEngineering,
	"CMO":  CategoryMarketing,
	"COO":  CategoryOperations,
	"HR":   CategoryHR,
	"CPO":  CategoryProduct,
	"CISO": CategoryCISO,
}

// RoleCategoryFor returns the ingest category for a role filter value, or
// the value itself when it has none.
func RoleCategoryFor(role string) string {
	if c, ok := roleCategories[strings.ToUpper(role)]; ok {
		return c
	}
	return role
}

type whereBuilder struct {
	clauses []string
	args    []interface{}
}

func (w *whereBuilder) arg(v interface{}) string {
	w.args = append(w.args, v)
	return fmt.Sprintf("$%d", len(w.args))
}

func (w *whereBuilder) add(clause string) {
	w.clauses = append(w.clauses, clause)
}

func like(s string) string {
	return "%" + s + "%"
}

func buildWhere(q Query) *whereBuilder {
	w := &whereBuilder{}
	w.add("is_active = true")

	if q.FractionalOnly {
		w.add("(is_fractional = true OR LOWER(title) LIKE '%fractional%')")
	}

	f := q.Filter
	if f.SearchQuery != "" {
		p := w.arg(like(f.SearchQuery))
		w.add(fmt.Sprintf("(title ILIKE %s OR company_name ILIKE %s)", p, p))
	}

	if f.Location != "" {
		if strings.EqualFold(f.Location, "Remote") {
			w.add("is_remote = true")
		} else {
			w.add(fmt.Sprintf("COALESCE(location, '') ILIKE %s", w.arg(like(f.Location))))
		}
	}

	if f.Role != "" {
		title := w.arg(like(f.Role))
		category := w.arg(like(RoleCategoryFor(f.Role)))
		w.add(fmt.Sprintf("(title ILIKE %s OR role_category ILIKE %s)", title, category))
	}

	switch f.WorkType {
	case jobfilter.WorkTypeRemote:
		w.add("is_remote = true")
	case jobfilter.WorkTypeHybrid:
		w.add(fmt.Sprintf("workplace_type ILIKE %s", w.arg(WorkplaceHybrid)))
	case jobfilter.WorkTypeOnsite:
		w.add(fmt.Sprintf("workplace_type ILIKE %s", w.arg(WorkplaceOnsite)))
	}

	if q.RemoteOnly && f.WorkType != jobfilter.WorkTypeRemote {
		w.add("(is_remote = true OR COALESCE(location, '') ILIKE '%remote%')")
	}

	if q.RateFiltered {
		lo := w.arg(f.MinRate)
		hi := w.arg(f.MaxRate)
		w.add(fmt.Sprintf("COALESCE(day_rate_max, day_rate_min) >= %s AND COALESCE(day_rate_min, day_rate_max) <= %s", lo, hi))
	}
	return w
}

// BuildSearchSQL translates a query into a parameterized SELECT over the
// jobs table.
func BuildSearchSQL(q Query) (string, []interface{}) {
	q = q.Normalized()
	w := buildWhere(q)

	limit := w.arg(q.Size)
	offset := w.arg(q.Offset())
	stmt := fmt.Sprintf("SELECT %s FROM jobs WHERE %s ORDER BY is_fractional DESC, posted_date DESC NULLS LAST LIMIT %s OFFSET %s",
		jobColumns, strings.Join(w.clauses, " AND "), limit, offset)
	return stmt, w.args
}

// BuildCountSQL counts the rows BuildSearchSQL pages through.
func BuildCountSQL(q Query) (string, []interface{}) {
	w := buildWhere(q)
	return "SELECT COUNT(*) FROM jobs WHERE " + strings.Join(w.clauses, " AND "), w.args
}
