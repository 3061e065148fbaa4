package models

import "time"

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

// MessageResponse carries a human-readable outcome.
type MessageResponse struct {
	Success bool   `json:"success,omitempty"`
	Message string `json:"message"`
}

type ApproveDraftRequest struct {
	Filename string `json:"filename"`
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Service   string            `json:"service,omitempty"`
	Version   string            `json:"version,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}
