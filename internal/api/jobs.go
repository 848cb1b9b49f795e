package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "fractional-quest/internal/common/errors"
	"fractional-quest/internal/jobfilter"
	"fractional-quest/internal/jobs"
)

const voiceSearchLimit = 20

// ListJobs answers the job board page: the filter state is read from the
// same query string the search page URL carries.
func (h *Handler) ListJobs(c *gin.Context) {
	state := h.codec.Parse(c.Request.URL.Query())

	q := jobs.NewQuery(h.codec, state)
	q.FractionalOnly = c.Query("fractional") != "false"
	q.RemoteOnly = c.Query("remote") == "true"
	q.Page = intQuery(c, "page", 1)
	q.Size = intQuery(c, "size", h.cfg.Search.PageSize)
	q = q.Normalized()

	started := time.Now()
	page, err := h.searcher.Search(c.Request.Context(), q)
	h.obs.RecordSearch(c.Request.Context(), h.cfg.Search.Backend, h.cache != nil, time.Since(started))
	if err != nil {
		writeError(c, err)
		return
	}

	canonical := h.codec.URL(state)
	c.Header("Link", "<"+canonical+`>; rel="canonical"`)
	c.JSON(http.StatusOK, gin.H{
		"jobs":              nonNilJobs(page.Jobs),
		"total":             page.Total,
		"page":              page.Page,
		"size":              page.Size,
		"filter":            state,
		"canonicalQuery":    h.codec.Serialize(state),
		"chips":             h.codec.Chips(state),
		"activeFilterCount": h.codec.ActiveFilterCount(state),
		"isRateFiltered":    h.codec.IsRateFiltered(state),
	})
}

// VoiceSearch is the compact search used by the voice assistant. Remote is
// applied after the query so listings that only say "remote" in their
// location still count.
func (h *Handler) VoiceSearch(c *gin.Context) {
	role := c.Query("role")
	if role == "" {
		role = c.Query("roleType")
	}
	filters := jobs.SummaryFilters{
		RoleType:   role,
		Location:   c.Query("location"),
		Remote:     c.Query("remote") == "true",
		Fractional: c.Query("fractional") != "false",
	}

	state := h.codec.Default()
	state.Role = filters.RoleType
	state.Location = filters.Location
	state.SearchQuery = c.Query("q")

	q := jobs.NewQuery(h.codec, state)
	q.FractionalOnly = filters.Fractional
	q.Size = voiceSearchLimit

	page, err := h.searcher.Search(c.Request.Context(), q)
	if err != nil {
		h.logger.Error("voice search failed", map[string]interface{}{"error": err.Error()})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed", "details": err.Error()})
		return
	}

	results := make([]jobs.SearchResult, 0, len(page.Jobs))
	for _, j := range page.Jobs {
		results = append(results, j.ToSearchResult())
	}
	if filters.Remote {
		results = jobs.FilterRemote(results)
	}

	c.JSON(http.StatusOK, gin.H{
		"jobs":    results,
		"total":   len(results),
		"query":   filters,
		"summary": jobs.VoiceSummary(results, filters),
	})
}

func (h *Handler) GetJob(c *gin.Context) {
	job, err := h.store.BySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *Handler) SavedJobCount(c *gin.Context) {
	count := h.store.SavedJobCount(c.Request.Context(), c.GetHeader(HeaderUserID))
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (h *Handler) MarketStats(c *gin.Context) {
	c.JSON(http.StatusOK, jobs.CachedStats(c.Request.Context(), h.cache, h.store, h.logger))
}

// FilterOptions returns the select options of the filter form and the rate
// slider render model for the state in the query string.
func (h *Handler) FilterOptions(c *gin.Context) {
	state := h.codec.Parse(c.Request.URL.Query())
	c.JSON(http.StatusOK, gin.H{
		"locations": jobfilter.Locations,
		"roles":     jobfilter.Roles,
		"workTypes": jobfilter.WorkTypes,
		"state":     state,
		"rate":      jobfilter.RateView(h.codec, state),
	})
}

// ApplyFilters turns a posted filter state into the search page URL, the
// same way submitting the form does.
func (h *Handler) ApplyFilters(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		writeError(c, apperrors.NewInvalidRequestError(err.Error()))
		return
	}
	if result := validateFilterState(body); !result.Valid {
		writeError(c, apperrors.NewInvalidFilterFormatError(result.Summary()))
		return
	}

	var state jobfilter.State
	if err := bindJSON(body, &state); err != nil {
		writeError(c, apperrors.NewInvalidRequestError(err.Error()))
		return
	}

	form := jobfilter.NewForm(h.codec, h.codec.SearchPath(), nil)
	form.SetSearchQuery(state.SearchQuery)
	form.SetLocation(state.Location)
	form.SetRole(state.Role)
	form.SetWorkType(state.WorkType)
	if state.MinRate != 0 || state.MaxRate != 0 {
		if !h.codec.ValidRate(jobfilter.FormatRate(state.MinRate, state.MaxRate)) {
			writeError(c, apperrors.NewInvalidFilterFormatError("rate must be an ascending pair within the slider range"))
			return
		}
		form.HandleRateChange(float64(state.MinRate), float64(state.MaxRate))
	}

	target, _ := form.Submit()
	c.JSON(http.StatusOK, gin.H{
		"url":   target,
		"query": form.Query(),
	})
}

func intQuery(c *gin.Context, key string, fallback int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v < 1 {
		return fallback
	}
	return v
}

func nonNilJobs(js []jobs.Job) []jobs.Job {
	if js == nil {
		return []jobs.Job{}
	}
	return js
}
