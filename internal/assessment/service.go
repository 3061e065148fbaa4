package assessment

import (
	"context"

	"edpsych-connect/internal/common/errors"
	"edpsych-connect/internal/common/logger"
	"edpsych-connect/internal/common/metrics"
)

// ResultRecorder stores scored submissions.
type ResultRecorder interface {
	SaveResult(ctx context.Context, sub Submission, result *Result) (string, error)
}

// Service is the entry point used by the HTTP API, the MCP tools and the job
// worker. It scores through the Engine, counts outcomes and stores results
// when a recorder is configured. Storage failures are logged only.
type Service struct {
	engine   *Engine
	recorder ResultRecorder
	log      logger.Logger
}

func NewService(engine *Engine, recorder ResultRecorder, log logger.Logger) *Service {
	return &Service{
		engine:   engine,
		recorder: recorder,
		log:      log.WithFields(map[string]interface{}{"component": "assessment-service"}),
	}
}

func (s *Service) Engine() *Engine { return s.engine }

func (s *Service) Assess(ctx context.Context, id string, sub Submission) (*Result, error) {
	result, err := s.engine.Assess(id, sub)
	if err != nil {
		code := errors.Normalize(err).Code
		metrics.AssessmentsRejected.WithLabelValues(id, string(code)).Inc()
		s.log.Debug("assessment rejected", map[string]interface{}{
			"assessment": id,
			"errorCode":  code,
		})
		return nil, err
	}
	metrics.AssessmentsScored.WithLabelValues(id, string(result.OverallSeverity)).Inc()

	if s.recorder != nil {
		if recordID, err := s.recorder.SaveResult(ctx, sub, result); err != nil {
			s.log.Warn("failed to store assessment result", map[string]interface{}{
				"assessment": id,
				"error":      err,
			})
		} else {
			s.log.Debug("assessment result stored", map[string]interface{}{"recordId": recordID})
		}
	}
	return result, nil
}
