package camunda

import (
	"fractional-quest/internal/common/config"
	"fractional-quest/internal/common/logger"
	"fractional-quest/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// JobHandler is implemented by every worker package's Handler.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
}

// Registration binds a task type to its handler.
type Registration struct {
	TaskType string
	Handler  JobHandler
}

type Worker struct {
	taskType string
	worker   worker.JobWorker
	logger   logger.Logger
}

// NewWorker opens a job worker for taskType. Every activation is counted in
// the worker metrics; completion and failure are the handler's job.
func NewWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handler JobHandler, log logger.Logger) *Worker {
	log = log.WithFields(map[string]interface{}{"taskType": taskType})

	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(func(jc worker.JobClient, job entities.Job) {
			metrics.WorkerJobsActive.WithLabelValues(taskType).Inc()
			defer metrics.WorkerJobsActive.WithLabelValues(taskType).Dec()
			handler.Handle(jc, job)
		}).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(config.GetDuration(wcfg.Timeout)).
		Open()

	log.Info("worker started", map[string]interface{}{
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeoutMs":     wcfg.Timeout,
	})
	return &Worker{taskType: taskType, worker: jobWorker, logger: log}
}

func (w *Worker) TaskType() string { return w.taskType }

// Stop closes the job worker and waits for in-flight jobs. The shared Zeebe
// client is left open.
func (w *Worker) Stop() {
	w.worker.Close()
	w.worker.AwaitClose()
	w.logger.Info("worker stopped", nil)
}

// StartAll opens a worker for every enabled registration.
func StartAll(client zbc.Client, cfg *config.Config, regs []Registration, log logger.Logger) []*Worker {
	workers := make([]*Worker, 0, len(regs))
	for _, reg := range regs {
		wcfg := config.GetWorkerConfig(cfg, reg.TaskType)
		if !wcfg.Enabled {
			log.Info("worker disabled", map[string]interface{}{"taskType": reg.TaskType})
			continue
		}
		workers = append(workers, NewWorker(client, reg.TaskType, wcfg, reg.Handler, log))
	}
	return workers
}
