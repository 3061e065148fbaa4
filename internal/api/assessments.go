package api

import (
	"net/http"
	"strconv"

	"edpsych-connect/internal/assessment"
	"edpsych-connect/internal/common/errors"
	"edpsych-connect/internal/common/validation"
	"edpsych-connect/internal/mcptools"
	"edpsych-connect/pkg/registry"
)

const defaultRecentLimit = 50

func (s *Server) handleAssess(w http.ResponseWriter, r *http.Request) {
	tool := r.PathValue("tool")
	c, ok := s.deps.Assessments.Engine().CatalogForTool(tool)
	if !ok {
		s.writeError(w, r, errors.NewAssessmentNotFoundError(tool))
		return
	}

	var sub assessment.Submission
	if err := decodeBody(r, validation.SubmissionSchema, &sub); err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.deps.Assessments.Assess(r.Context(), c.ID, sub)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// handleServers serves the tool registry file. When the file is missing or
// unreadable the registry is built from the loaded catalogs.
func (s *Server) handleServers(w http.ResponseWriter, r *http.Request) {
	reg, err := registry.LoadRegistry(s.cfg.MCP.RegistryPath)
	if err != nil {
		s.log.Debug("tool registry unavailable, using catalogs", map[string]interface{}{
			"path":  s.cfg.MCP.RegistryPath,
			"error": err,
		})
		reg = mcptools.SyncRegistry(nil, s.deps.Assessments.Engine().Catalogs(), s.now())
	}
	s.writeJSON(w, http.StatusOK, reg)
}

func (s *Server) handleQuestions(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	engine := s.deps.Assessments.Engine()
	c, ok := engine.Catalog(id)
	if !ok {
		c, ok = engine.CatalogForTool(id)
	}
	if !ok {
		s.writeError(w, r, errors.NewAssessmentNotFoundError(id))
		return
	}
	s.writeJSON(w, http.StatusOK, c.Questionnaire())
}

func (s *Server) handleRecentAssessments(w http.ResponseWriter, r *http.Request) {
	if s.deps.Records == nil {
		s.writeError(w, r, errors.NewServiceUnavailableError("assessment records"))
		return
	}

	limit := defaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.writeError(w, r, errors.NewValidationError("limit must be a positive integer", "limit: "+raw))
			return
		}
		limit = n
	}

	recs, err := s.deps.Records.Recent(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, recs)
}
