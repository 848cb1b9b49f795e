package jobs

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "fractional-quest/internal/common/errors"
	"fractional-quest/internal/common/logger"
)

// Page is one page of search results plus the total match count.
type Page struct {
	Jobs  []Job `json:"jobs"`
	Total int   `json:"total"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
}

// Searcher runs filtered job searches. Store, Index and CachedSearcher
// implement it.
type Searcher interface {
	Search(ctx context.Context, q Query) (*Page, error)
}

type Store struct {
	db     *sql.DB
	logger logger.Logger
}

func NewStore(db *sql.DB, log logger.Logger) *Store {
	return &Store{db: db, logger: log.WithFields(map[string]interface{}{"component": "job-store"})}
}

func (s *Store) Search(ctx context.Context, q Query) (*Page, error) {
	q = q.Normalized()

	jobs, err := s.List(ctx, q)
	if err != nil {
		return nil, err
	}
	total, err := s.Count(ctx, q)
	if err != nil {
		return nil, err
	}
	return &Page{Jobs: jobs, Total: total, Page: q.Page, Size: q.Size}, nil
}

// List returns the jobs on the query's page.
func (s *Store) List(ctx context.Context, q Query) ([]Job, error) {
	stmt, args := BuildSearchSQL(q)
	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, queryError(ctx, "job_search", err)
	}
	defer rows.Close()

	jobs := make([]Job, 0, q.Normalized().Size)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("job_search", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError(ctx, "job_search", err)
	}
	return jobs, nil
}

func (s *Store) Count(ctx context.Context, q Query) (int, error) {
	stmt, args := BuildCountSQL(q)
	var total int
	if err := s.db.QueryRowContext(ctx, stmt, args...).Scan(&total); err != nil {
		return 0, queryError(ctx, "job_count", err)
	}
	return total, nil
}

func (s *Store) BySlug(ctx context.Context, slug string) (*Job, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+jobColumns+" FROM jobs WHERE slug = $1 AND is_active = true", slug)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewJobNotFoundError(slug)
	}
	if err != nil {
		return nil, queryError(ctx, "job_by_slug", err)
	}
	return &job, nil
}

// SavedJobCount returns how many jobs a user has saved. Anonymous users and
// lookup failures count as zero.
func (s *Store) SavedJobCount(ctx context.Context, userID string) int {
	if userID == "" {
		return 0
	}
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM saved_jobs WHERE user_id = $1", userID).Scan(&count)
	if err != nil {
		s.logger.Warn("saved job count failed", map[string]interface{}{"userId": userID, "error": err})
		return 0
	}
	return count
}

const (
	statsTotalSQL  = "SELECT COUNT(*) FROM jobs WHERE is_active = true"
	statsLondonSQL = "SELECT COUNT(*) FROM jobs WHERE is_active = true AND location ILIKE '%london%'"
	statsRolesSQL  = `SELECT role_category, COUNT(*) FROM jobs
		WHERE is_active = true AND role_category IS NOT NULL
		GROUP BY role_category ORDER BY COUNT(*) DESC`
	statsRateSQL = `SELECT COALESCE(ROUND(AVG((day_rate_min + day_rate_max) / 2.0)), 0) FROM jobs
		WHERE is_active = true AND day_rate_min IS NOT NULL AND day_rate_max IS NOT NULL`
)

// MarketStats runs the market summary queries in parallel. Any failure
// yields FallbackMarketStats rather than an error.
func (s *Store) MarketStats(ctx context.Context) MarketStats {
	var stats MarketStats
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.db.QueryRowContext(gctx, statsTotalSQL).Scan(&stats.TotalJobs)
	})
	g.Go(func() error {
		return s.db.QueryRowContext(gctx, statsLondonSQL).Scan(&stats.LondonJobs)
	})
	g.Go(func() error {
		var avg float64
		if err := s.db.QueryRowContext(gctx, statsRateSQL).Scan(&avg); err != nil {
			return err
		}
		stats.AvgDayRate = int(avg)
		return nil
	})
	g.Go(func() error {
		rows, err := s.db.QueryContext(gctx, statsRolesSQL)
		if err != nil {
			return err
		}
		defer rows.Close()
		counts := []RoleCount{}
		for rows.Next() {
			var rc RoleCount
			if err := rows.Scan(&rc.Role, &rc.Count); err != nil {
				return err
			}
			counts = append(counts, rc)
		}
		stats.RoleCounts = counts
		return rows.Err()
	})

	if err := g.Wait(); err != nil {
		s.logger.Warn("market stats query failed, serving fallback", map[string]interface{}{"error": err})
		return FallbackMarketStats()
	}
	return stats
}

// Upsert inserts a job or refreshes the row with the same source URL or
// slug. It reports whether a new row was inserted. An updated row keeps its
// slug, which is copied back into job.
func (s *Store) Upsert(ctx context.Context, job *Job) (bool, error) {
	if job.Slug == "" {
		job.Slug = GenerateSlug(job.Title, job.CompanyName)
	}

	var existingID, existingSlug string
	err := s.db.QueryRowContext(ctx, "SELECT id, slug FROM jobs WHERE source_url = $1 OR slug = $2 LIMIT 1",
		job.SourceURL, job.Slug).Scan(&existingID, &existingSlug)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return true, s.insert(ctx, *job)
	case err != nil:
		return false, queryError(ctx, "job_upsert", err)
	}

	_, err = s.db.ExecContext(ctx, `UPDATE jobs SET
			title = $1, company_name = $2, company_logo = $3, location = $4, is_remote = $5,
			workplace_type = $6, compensation = $7, role_category = $8, day_rate_min = $9,
			day_rate_max = $10, salary_min = $11, salary_max = $12, salary_currency = $13,
			posted_date = $14, valid_through = $15, source_url = $16, job_source = $17,
			is_active = true, description_snippet = $18, updated_at = NOW()
		WHERE id = $19`,
		job.Title, job.CompanyName, nullString(job.CompanyLogo), job.Location, job.IsRemote,
		job.WorkplaceType, nullString(job.Compensation), job.RoleCategory, nullInt(job.DayRateMin),
		nullInt(job.DayRateMax), nullInt(job.SalaryMin), nullInt(job.SalaryMax), nullString(job.SalaryCurrency),
		nullTime(job.PostedDate), nullTime(job.ValidThrough), job.SourceURL, job.JobSource,
		nullString(job.DescriptionSnippet), existingID)
	if err != nil {
		return false, queryError(ctx, "job_upsert", err)
	}
	job.Slug = existingSlug
	return false, nil
}

func (s *Store) insert(ctx context.Context, job Job) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO jobs (
			slug, title, company_name, company_logo, location, is_remote, workplace_type,
			compensation, role_category, day_rate_min, day_rate_max, salary_min, salary_max,
			salary_currency, posted_date, valid_through, source_url, job_source, is_active,
			is_fractional, description_snippet, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18,
			true, $19, $20, NOW(), NOW())
		ON CONFLICT (slug) DO UPDATE SET
			title = EXCLUDED.title, company_name = EXCLUDED.company_name,
			is_active = true, updated_at = NOW()`,
		job.Slug, job.Title, job.CompanyName, nullString(job.CompanyLogo), job.Location, job.IsRemote,
		job.WorkplaceType, nullString(job.Compensation), job.RoleCategory, nullInt(job.DayRateMin),
		nullInt(job.DayRateMax), nullInt(job.SalaryMin), nullInt(job.SalaryMax), nullString(job.SalaryCurrency),
		nullTime(job.PostedDate), nullTime(job.ValidThrough), job.SourceURL, job.JobSource,
		job.IsFractional, nullString(job.DescriptionSnippet))
	if err != nil {
		return queryError(ctx, "job_upsert", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row scanner) (Job, error) {
	var (
		j                                        Job
		logo, compensation, currency, snippet    sql.NullString
		location, workplace, category, jobSource sql.NullString
		rateMin, rateMax, salaryMin, salaryMax   sql.NullInt64
		posted, validThrough                     sql.NullTime
	)
	err := row.Scan(&j.ID, &j.Slug, &j.Title, &j.CompanyName, &logo, &location, &j.IsRemote, &workplace,
		&compensation, &category, &rateMin, &rateMax, &salaryMin, &salaryMax, &currency,
		&posted, &validThrough, &j.SourceURL, &jobSource, &j.IsActive, &j.IsFractional, &snippet)
	if err != nil {
		return Job{}, err
	}

	j.CompanyLogo = logo.String
	j.Location = location.String
	j.WorkplaceType = workplace.String
	j.Compensation = compensation.String
	j.RoleCategory = category.String
	j.JobSource = jobSource.String
	j.SalaryCurrency = currency.String
	j.DescriptionSnippet = snippet.String
	j.DayRateMin = int(rateMin.Int64)
	j.DayRateMax = int(rateMax.Int64)
	j.SalaryMin = int(salaryMin.Int64)
	j.SalaryMax = int(salaryMax.Int64)
	if posted.Valid {
		j.PostedDate = &posted.Time
	}
	if validThrough.Valid {
		j.ValidThrough = &validThrough.Time
	}
	return j, nil
}

func queryError(ctx context.Context, queryType string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperrors.NewQueryTimeoutError(queryType)
	}
	return apperrors.NewQueryExecutionFailedError(queryType, err)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(v int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(v), Valid: v != 0}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
