// internal/common/camunda/worker.go
package camunda

import (
	"sync"
	"time"

	"business-finder/internal/common/config"
	"business-finder/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// JobHandler is implemented by every worker package's Handler.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
	GetTaskType() string
	IsEnabled() bool
}

// WorkerOpener opens a job worker. zbc.Client satisfies it.
type WorkerOpener interface {
	NewJobWorker() worker.JobWorkerBuilderStep1
}

// Registrar opens one job worker per enabled handler and closes them together.
type Registrar struct {
	opener   WorkerOpener
	defaults config.WorkerConfig
	logger   logger.Logger

	mu      sync.Mutex
	workers map[string]worker.JobWorker
}

func NewRegistrar(opener WorkerOpener, defaults config.WorkerConfig, log logger.Logger) *Registrar {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Registrar{
		opener:   opener,
		defaults: defaults,
		logger:   log,
		workers:  make(map[string]worker.JobWorker),
	}
}

// Register opens a worker for handler unless the handler or its config
// disables it. It reports whether a worker was opened.
func (r *Registrar) Register(handler JobHandler, wcfg config.WorkerConfig) bool {
	taskType := handler.GetTaskType()
	if !handler.IsEnabled() || !wcfg.Enabled {
		r.logger.Info("worker disabled", map[string]interface{}{"taskType": taskType})
		return false
	}

	maxJobs := wcfg.MaxJobsActive
	if maxJobs <= 0 {
		maxJobs = r.defaults.MaxJobsActive
	}
	timeout := wcfg.Timeout
	if timeout <= 0 {
		timeout = r.defaults.Timeout
	}

	jobWorker := r.opener.NewJobWorker().
		JobType(taskType).
		Handler(handler.Handle).
		MaxJobsActive(maxJobs).
		Timeout(time.Duration(timeout) * time.Millisecond).
		Name(taskType).
		Open()

	r.mu.Lock()
	r.workers[taskType] = jobWorker
	r.mu.Unlock()

	r.logger.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": maxJobs,
		"timeout_ms":    timeout,
	})
	return true
}

func (r *Registrar) TaskTypes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.workers))
	for t := range r.workers {
		out = append(out, t)
	}
	return out
}

// Close stops every opened worker and waits for in-flight jobs.
func (r *Registrar) Close() {
	r.mu.Lock()
	workers := r.workers
	r.workers = make(map[string]worker.JobWorker)
	r.mu.Unlock()

	for taskType, w := range workers {
		r.logger.Info("stopping worker", map[string]interface{}{"taskType": taskType})
		w.Close()
		w.AwaitClose()
	}
}
