package api

import (
	"context"
	"net/http"
	"time"

	"edpsych-connect/internal/models"
)

const readinessTimeout = 3 * time.Second

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, models.HealthResponse{
		Status:    "healthy",
		Service:   s.cfg.App.Name,
		Version:   s.cfg.App.Version,
		Timestamp: s.now().UTC(),
	})
}

// handleReady runs every readiness check; one failure answers 503.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	resp := models.HealthResponse{
		Status:    "ready",
		Service:   s.cfg.App.Name,
		Version:   s.cfg.App.Version,
		Timestamp: s.now().UTC(),
		Checks:    make(map[string]string, len(s.deps.Readiness)),
	}
	status := http.StatusOK
	for _, check := range s.deps.Readiness {
		if err := check.Check(ctx); err != nil {
			resp.Checks[check.Name] = err.Error()
			resp.Status = "not ready"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[check.Name] = "ok"
	}
	s.writeJSON(w, status, resp)
}
