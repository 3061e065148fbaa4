// internal/common/camunda/worker.go
package camunda

import (
	"sync"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"edpsych-connect/internal/common/config"
	"edpsych-connect/internal/common/logger"
)

// Workers owns the job workers opened against one Zeebe client.
type Workers struct {
	client  zbc.Client
	log     logger.Logger
	mu      sync.Mutex
	workers map[string]worker.JobWorker
}

func NewWorkers(client zbc.Client, log logger.Logger) *Workers {
	return &Workers{
		client:  client,
		log:     log.WithFields(map[string]interface{}{"component": "zeebe-workers"}),
		workers: make(map[string]worker.JobWorker),
	}
}

// Start opens a job worker for taskType unless it is disabled in wcfg.
func (w *Workers) Start(taskType string, wcfg config.WorkerConfig, handler worker.JobHandler) {
	if !wcfg.Enabled {
		w.log.Info("worker disabled", map[string]interface{}{"taskType": taskType})
		return
	}

	jobWorker := w.client.NewJobWorker().
		JobType(taskType).
		Handler(handler).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	w.mu.Lock()
	w.workers[taskType] = jobWorker
	w.mu.Unlock()

	w.log.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeout_ms":    wcfg.Timeout,
	})
}

// Running lists the task types with an open worker.
func (w *Workers) Running() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.workers))
	for taskType := range w.workers {
		out = append(out, taskType)
	}
	return out
}

// Close stops every worker, waits for in-flight jobs, then closes the client.
func (w *Workers) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for taskType, jobWorker := range w.workers {
		jobWorker.Close()
		jobWorker.AwaitClose()
		w.log.Info("worker stopped", map[string]interface{}{"taskType": taskType})
	}
	w.workers = map[string]worker.JobWorker{}
	if err := w.client.Close(); err != nil {
		w.log.Warn("failed to close zeebe client", map[string]interface{}{"error": err})
	}
}
