package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fractional-quest/internal/api"
	"fractional-quest/internal/common/apify"
	"fractional-quest/internal/common/camunda"
	"fractional-quest/internal/common/config"
	"fractional-quest/internal/common/database"
	httpclient "fractional-quest/internal/common/http"
	"fractional-quest/internal/common/logger"
	"fractional-quest/internal/common/observability"
	"fractional-quest/internal/jobfilter"
	"fractional-quest/internal/jobs"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	obs, err := observability.New("jobboard-api")
	if err != nil {
		zapLog.Warn("observability disabled", zap.Error(err))
	}
	defer obs.Shutdown(context.Background())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		zapLog.Fatal("postgres setup failed", zap.Error(err))
	}
	defer pg.Close()
	readiness := []database.Pinger{pg}

	store := jobs.NewStore(pg.DB, log)
	codec := jobfilter.CodecFor(cfg.Filters)

	var (
		searcher jobs.Searcher = store
		index    *jobs.Index
	)
	if cfg.Database.Elasticsearch.GetURL() != "" {
		esClient, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			zapLog.Fatal("elasticsearch setup failed", zap.Error(err))
		}
		readiness = append(readiness, esClient)
		index = jobs.NewIndex(esClient.Client, cfg.Search.Index, log)
		if cfg.Search.Backend == config.SearchBackendElasticsearch {
			searcher = index
		}
	}

	var cache *jobs.Cache
	if cfg.Cache.Enabled {
		rdb, err := database.NewRedis(cfg.Database.Redis)
		if err != nil {
			zapLog.Fatal("redis setup failed", zap.Error(err))
		}
		defer rdb.Close()
		readiness = append(readiness, rdb)
		cache = jobs.NewCache(rdb.Client, codec, cfg.Cache)
		searcher = jobs.NewCachedSearcher(searcher, cache, log)
	}

	ingestOpts := []jobs.IngesterOption{jobs.WithDatasetLimit(cfg.Apify.DatasetLimit)}
	if index != nil {
		ingestOpts = append(ingestOpts, jobs.WithIndexer(index))
	}
	if cache != nil {
		ingestOpts = append(ingestOpts, jobs.WithInvalidator(cache))
	}
	apifyClient := apify.NewClient(cfg.Apify, httpclient.WithRetries(2, time.Second))
	ingester := jobs.NewIngester(apifyClient, store, log, ingestOpts...)

	deps := api.Deps{
		Config:        cfg,
		Searcher:      searcher,
		Store:         store,
		Cache:         cache,
		Syncer:        ingester,
		Readiness:     readiness,
		Observability: obs,
		Logger:        log,
	}

	if cfg.Camunda.BrokerAddress != "" {
		zeebe, err := camunda.NewClientWithConfig(camunda.ConfigFrom(cfg.Camunda))
		if err != nil {
			zapLog.Warn("zeebe unavailable, jobs-synced messages disabled", zap.Error(err))
		} else {
			defer zeebe.Close()
			deps.Events = zeebe
		}
	}

	for _, p := range readiness {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := p.Ping(pingCtx); err != nil {
			zapLog.Warn("backing service not reachable at startup", zap.String("service", p.Name()), zap.Error(err))
		}
		cancel()
	}

	server := api.NewServer(cfg.HTTP, api.NewRouter(deps), log)
	if err := server.Run(ctx, 15*time.Second); err != nil {
		zapLog.Fatal("http server failed", zap.Error(err))
	}
	zapLog.Info("jobboard api stopped")
}
