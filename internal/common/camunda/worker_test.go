package camunda

import (
	"testing"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/stretchr/testify/assert"

	"edpsych-connect/internal/common/config"
	"edpsych-connect/internal/common/logger"
)

func TestStartSkipsDisabledWorker(t *testing.T) {
	w := NewWorkers(nil, logger.NewTestLogger(t))

	w.Start("score-assessment", config.WorkerConfig{Enabled: false}, func(worker.JobClient, entities.Job) {})

	assert.Empty(t, w.Running())
}
