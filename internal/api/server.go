// Package api serves the job board over HTTP: filtered job search, voice
// search, filter form helpers, market stats and the Apify webhook.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fractional-quest/internal/common/config"
	"fractional-quest/internal/common/database"
	"fractional-quest/internal/common/logger"
	"fractional-quest/internal/common/observability"
	"fractional-quest/internal/jobfilter"
	"fractional-quest/internal/jobs"
)

// JobStore is the subset of jobs.Store the handlers read from.
type JobStore interface {
	BySlug(ctx context.Context, slug string) (*jobs.Job, error)
	SavedJobCount(ctx context.Context, userID string) int
	MarketStats(ctx context.Context) jobs.MarketStats
}

type DatasetSyncer interface {
	SyncDataset(ctx context.Context, datasetID string) (jobs.IngestStats, error)
}

// EventPublisher correlates workflow messages, e.g. camunda.Client.
type EventPublisher interface {
	PublishMessage(ctx context.Context, name, correlationKey string, variables interface{}) error
}

// Deps wires the router. Cache, Syncer, Events and Observability may be nil.
type Deps struct {
	Config        *config.Config
	Searcher      jobs.Searcher
	Store         JobStore
	Cache         *jobs.Cache
	Syncer        DatasetSyncer
	Events        EventPublisher
	Readiness     []database.Pinger
	Observability *observability.Observability
	Logger        logger.Logger
}

type Handler struct {
	cfg      *config.Config
	codec    jobfilter.Codec
	searcher jobs.Searcher
	store    JobStore
	cache    *jobs.Cache
	syncer   DatasetSyncer
	events   EventPublisher
	ready    []database.Pinger
	obs      *observability.Observability
	logger   logger.Logger
}

func NewHandler(deps Deps) *Handler {
	return &Handler{
		cfg:      deps.Config,
		codec:    jobfilter.CodecFor(deps.Config.Filters),
		searcher: deps.Searcher,
		store:    deps.Store,
		cache:    deps.Cache,
		syncer:   deps.Syncer,
		events:   deps.Events,
		ready:    deps.Readiness,
		obs:      deps.Observability,
		logger:   deps.Logger.WithFields(map[string]interface{}{"component": "api"}),
	}
}

// NewRouter builds the gin engine with middleware and every route mounted.
func NewRouter(deps Deps) *gin.Engine {
	h := NewHandler(deps)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID(h.logger))
	r.Use(AccessLog(h.logger))
	r.Use(Instrument())
	r.Use(CORS(deps.Config.HTTP.AllowedOrigins))

	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/jobs", h.ListJobs)
		api.GET("/jobs/search", h.VoiceSearch)
		api.GET("/jobs/:slug", h.GetJob)

		api.GET("/filters", h.FilterOptions)
		api.POST("/filters/apply", h.ApplyFilters)

		api.GET("/saved-jobs/count", h.SavedJobCount)
		api.GET("/market-stats", h.MarketStats)

		api.POST("/webhooks/apify", h.ApifyWebhook)
	}
	return r
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// Ready pings every backing service; any failure makes the instance unready.
func (h *Handler) Ready(c *gin.Context) {
	failures := database.CheckAll(c.Request.Context(), 2*time.Second, h.ready...)
	if len(failures) > 0 {
		details := make(map[string]string, len(failures))
		for name, err := range failures {
			details[name] = err.Error()
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unready", "failures": details})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// Server runs the router until its context is cancelled.
type Server struct {
	srv    *http.Server
	logger logger.Logger
}

func NewServer(cfg config.HTTPConfig, handler http.Handler, log logger.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:         cfg.Address,
			Handler:      handler,
			ReadTimeout:  config.GetDuration(cfg.ReadTimeout),
			WriteTimeout: config.GetDuration(cfg.WriteTimeout),
		},
		logger: log,
	}
}

// Run serves until ctx is done, then drains in-flight requests for up to
// shutdownTimeout.
func (s *Server) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", map[string]interface{}{"address": s.srv.Addr})
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("http server shutting down", nil)
	return s.srv.Shutdown(shutdownCtx)
}
