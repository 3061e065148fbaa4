package api

import (
	"encoding/json"
	"io"
	"net/http"

	"edpsych-connect/internal/common/errors"
	"edpsych-connect/internal/common/validation"
	"edpsych-connect/internal/models"
)

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("failed to encode response", map[string]interface{}{"error": err})
	}
}

// writeError maps err to its HTTP status and the {error, code, details} body.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	stdErr := errors.Normalize(err)
	status := errors.HTTPStatus(stdErr.Code)

	fields := map[string]interface{}{
		"method":    r.Method,
		"path":      r.URL.Path,
		"errorCode": stdErr.Code,
		"status":    status,
	}
	if status >= http.StatusInternalServerError {
		fields["error"] = err
		s.log.Error("request failed", fields)
	} else {
		s.log.Debug("request rejected", fields)
	}

	s.writeJSON(w, status, models.ErrorResponse{
		Error:   stdErr.Message,
		Code:    string(stdErr.Code),
		Details: stdErr.Details,
	})
}

// decodeBody reads the request body, validates it against schema and decodes
// it into dst. An empty body is a validation error.
func decodeBody(r *http.Request, schema string, dst interface{}) error {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return errors.NewValidationError("Failed to read request body", err.Error())
	}
	if len(raw) == 0 {
		return errors.NewValidationError("Request body is required", "")
	}

	result, err := validation.ValidateDocument(schema, raw)
	if err != nil {
		return errors.NewValidationError("Request body is not valid JSON", err.Error())
	}
	if !result.Valid {
		return errors.NewValidationError("Request body failed validation", result.String())
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return errors.NewValidationError("Request body is not valid JSON", err.Error())
	}
	return nil
}
