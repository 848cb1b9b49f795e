// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"fractional-quest/internal/common/apify"
	awsclients "fractional-quest/internal/common/aws"
	"fractional-quest/internal/common/camunda"
	"fractional-quest/internal/common/config"
	"fractional-quest/internal/common/database"
	httpclient "fractional-quest/internal/common/http"
	"fractional-quest/internal/common/logger"
	"fractional-quest/internal/common/observability"
	"fractional-quest/internal/jobfilter"
	"fractional-quest/internal/jobs"

	sja "fractional-quest/internal/workers/communication/send-job-alert"
	qe "fractional-quest/internal/workers/data-access/query-elasticsearch"
	qp "fractional-quest/internal/workers/data-access/query-postgresql"
	pjf "fractional-quest/internal/workers/jobs/parse-job-filters"
	sj "fractional-quest/internal/workers/jobs/sync-jobs"
	"fractional-quest/pkg/registry"
)

const healthAddress = ":8081"

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// observed reports every handled job to the OpenTelemetry meter. Outcome
// counters by error code live in the prometheus worker metrics.
type observed struct {
	taskType string
	next     camunda.JobHandler
	obs      *observability.Observability
}

func (o observed) Handle(client worker.JobClient, job entities.Job) {
	started := time.Now()
	o.next.Handle(client, job)
	o.obs.RecordJob(context.Background(), o.taskType, "handled", time.Since(started))
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs, err := observability.New("worker-manager")
	if err != nil {
		zapLog.Warn("observability disabled", zap.Error(err))
	}
	defer obs.Shutdown(context.Background())

	ctx := context.Background()

	// --- Zeebe ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(camunda.ConfigFrom(cfg.Camunda))
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Elasticsearch ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Redis ---
	rdb, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		zapLog.Fatal("redis setup failed", zap.Error(err))
	}
	err = retryWithBackoff(func() error {
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Job data layer ---
	codec := jobfilter.CodecFor(cfg.Filters)
	store := jobs.NewStore(pg.DB, log)
	index := jobs.NewIndex(esClient.Client, cfg.Search.Index, log)
	if err := index.EnsureIndex(ctx); err != nil {
		zapLog.Warn("elasticsearch index not ensured", zap.String("index", index.Name()), zap.Error(err))
	}
	cache := jobs.NewCache(rdb.Client, codec, cfg.Cache)

	var searcher jobs.Searcher = store
	if cfg.Search.Backend == config.SearchBackendElasticsearch {
		searcher = index
	}
	if cfg.Cache.Enabled {
		searcher = jobs.NewCachedSearcher(searcher, cache, log)
	}

	apifyClient := apify.NewClient(cfg.Apify, httpclient.WithRetries(2, time.Second))
	ingester := jobs.NewIngester(apifyClient, store, log,
		jobs.WithIndexer(index),
		jobs.WithInvalidator(cache),
		jobs.WithDatasetLimit(cfg.Apify.DatasetLimit),
	)

	// --- AWS messaging ---
	awsCfg := cfg.Integrations.AWS
	aws, err := awsclients.NewClients(ctx, awsCfg.Region, awsCfg.SES.Enabled, awsCfg.SNS.Enabled)
	if err != nil {
		zapLog.Fatal("aws clients failed", zap.Error(err))
	}
	var alertOpts []sja.Option
	if aws.SES != nil {
		alertOpts = append(alertOpts, sja.WithSES(aws.SES))
	}
	if aws.SNS != nil {
		alertOpts = append(alertOpts, sja.WithSNS(aws.SNS))
	}

	// --- Workers ---
	registrations := []camunda.Registration{
		{TaskType: pjf.TaskType, Handler: pjf.NewHandler(pjf.LoadConfig(cfg), log)},
		{TaskType: qp.TaskType, Handler: qp.NewHandler(qp.LoadConfig(cfg), pg.DB, log)},
		{TaskType: qe.TaskType, Handler: qe.NewHandler(qe.LoadConfig(cfg), esClient.Client, log)},
		{TaskType: sj.TaskType, Handler: sj.NewHandler(sj.LoadConfig(cfg), ingester, log)},
		{TaskType: sja.TaskType, Handler: sja.NewHandler(sja.LoadConfig(cfg), searcher, log, alertOpts...)},
	}
	taskTypes := make([]string, 0, len(registrations))
	for i, reg := range registrations {
		registrations[i].Handler = observed{taskType: reg.TaskType, next: reg.Handler, obs: obs}
		taskTypes = append(taskTypes, reg.TaskType)
	}

	if activities, err := registry.LoadRegistry(registry.DefaultPath); err != nil {
		zapLog.Warn("activity registry not loaded", zap.String("path", registry.DefaultPath), zap.Error(err))
	} else if missing := activities.Missing(taskTypes); len(missing) > 0 {
		zapLog.Warn("workers missing from activity registry", zap.Strings("taskTypes", missing))
	}

	workers := camunda.StartAll(zeebe.GetClient(), cfg, registrations, log)
	zapLog.Info("Workers registered", zap.Int("started", len(workers)), zap.Int("registered", len(registrations)))

	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			failures := database.CheckAll(r.Context(), 2*time.Second, zeebe, pg, esClient, rdb)
			if len(failures) > 0 {
				details := make(map[string]string, len(failures))
				for name, err := range failures {
					details[name] = err.Error()
				}
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]interface{}{"status": "unready", "failures": details})
				return
			}
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening", zap.String("address", healthAddress))
		if err := http.ListenAndServe(healthAddress, nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	for _, w := range workers {
		w.Stop()
	}

	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}
