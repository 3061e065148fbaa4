// Package errors provides standardized error handling for the HTTP API and BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Assessment / content errors
const (
	ErrCodeValidationFailed      ErrorCode = "VALIDATION_FAILED"
	ErrCodeIncompleteSubmission  ErrorCode = "INCOMPLETE_SUBMISSION"
	ErrCodeInvalidRating         ErrorCode = "INVALID_RATING"
	ErrCodeAssessmentNotFound    ErrorCode = "ASSESSMENT_NOT_FOUND"
	ErrCodeCatalogInvalid        ErrorCode = "CATALOG_INVALID"
	ErrCodeInvalidFilename       ErrorCode = "INVALID_FILENAME"
	ErrCodeDraftNotFound         ErrorCode = "DRAFT_NOT_FOUND"
	ErrCodePostNotFound          ErrorCode = "POST_NOT_FOUND"
	ErrCodeFileOperationFailed   ErrorCode = "FILE_OPERATION_FAILED"
	ErrCodeAuthenticationFailed  ErrorCode = "AUTHENTICATION_ERROR"
	ErrCodeForbidden             ErrorCode = "FORBIDDEN"
	ErrCodeServiceUnavailable    ErrorCode = "SERVICE_UNAVAILABLE"
	ErrCodeMethodNotAllowed      ErrorCode = "METHOD_NOT_ALLOWED"
	ErrCodeExternalServiceFailed ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout               ErrorCode = "TIMEOUT_ERROR"
	ErrCodeInternal              ErrorCode = "INTERNAL_ERROR"
)

// Infrastructure errors
const (
	ErrCodeDatabaseConnectionFailed      ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed          ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeDatabaseInsertFailed          ErrorCode = "DATABASE_INSERT_FAILED"
	ErrCodeElasticsearchConnectionFailed ErrorCode = "ELASTICSEARCH_CONNECTION_FAILED"
	ErrCodeSearchQueryFailed             ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeNotificationSendFailed        ErrorCode = "NOTIFICATION_SEND_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithMetadata attaches a key/value pair and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationError creates a non-retryable input validation error.
func NewValidationError(message, details string) *StandardError {
	return newError(ErrCodeValidationFailed, message, details, false)
}

// NewIncompleteSubmissionError lists the question ids that were not answered.
func NewIncompleteSubmissionError(assessment string, missing []string) *StandardError {
	return newError(ErrCodeIncompleteSubmission,
		"Please answer all questions to see your results",
		fmt.Sprintf("assessment: %s, missing: %s", assessment, strings.Join(missing, ",")),
		false).WithMetadata("missing", missing)
}

// NewInvalidRatingError reports a rating outside the accepted scale.
func NewInvalidRatingError(questionID string, rating, min, max int) *StandardError {
	return newError(ErrCodeInvalidRating,
		"Response rating is out of range",
		fmt.Sprintf("question %s: rating %d not in [%d,%d]", questionID, rating, min, max),
		false)
}

// NewAssessmentNotFoundError is returned for an unknown assessment or tool id.
func NewAssessmentNotFoundError(id string) *StandardError {
	return newError(ErrCodeAssessmentNotFound, "Assessment not found", fmt.Sprintf("assessment: %s", id), false)
}

// NewCatalogInvalidError reports a misconfigured question catalog.
func NewCatalogInvalidError(catalog, details string) *StandardError {
	return newError(ErrCodeCatalogInvalid, fmt.Sprintf("Question catalog %q is invalid", catalog), details, false)
}

// NewInvalidFilenameError rejects filenames that are not plain markdown base names.
func NewInvalidFilenameError(filename string) *StandardError {
	return newError(ErrCodeInvalidFilename, "Invalid filename", fmt.Sprintf("filename: %q", filename), false)
}

func NewDraftNotFoundError(filename string) *StandardError {
	return newError(ErrCodeDraftNotFound, "Draft post not found.", fmt.Sprintf("filename: %s", filename), false)
}

func NewPostNotFoundError(slug string) *StandardError {
	return newError(ErrCodePostNotFound, "Post not found.", fmt.Sprintf("slug: %s", slug), false)
}

// NewFileOperationError creates a retryable filesystem error.
func NewFileOperationError(op string, err error) *StandardError {
	return newError(ErrCodeFileOperationFailed, fmt.Sprintf("File operation '%s' failed", op), err.Error(), true)
}

func NewAuthenticationError(details string) *StandardError {
	return newError(ErrCodeAuthenticationFailed, "Authentication failed", details, false)
}

func NewForbiddenError(details string) *StandardError {
	return newError(ErrCodeForbidden, "Forbidden", details, false)
}

// NewServiceUnavailableError is returned when an optional dependency is not configured.
func NewServiceUnavailableError(service string) *StandardError {
	return newError(ErrCodeServiceUnavailable, fmt.Sprintf("Service '%s' is not available", service), "", true)
}

func NewMethodNotAllowedError(method string) *StandardError {
	return newError(ErrCodeMethodNotAllowed, "Method not allowed", fmt.Sprintf("method: %s", method), false)
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", err.Error(), true)
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return newError(ErrCodeQueryExecutionFailed, "Database query execution error",
		fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()), true)
}

// NewDatabaseInsertFailedError creates a retryable database insert error.
func NewDatabaseInsertFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseInsertFailed, "Database insert operation failed", err.Error(), true)
}

// NewElasticsearchConnectionFailedError creates a retryable Elasticsearch connection error.
func NewElasticsearchConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeElasticsearchConnectionFailed, "Elasticsearch connection error", err.Error(), true)
}

// NewSearchQueryFailedError creates a retryable search query error.
func NewSearchQueryFailedError(queryType string, err error) *StandardError {
	return newError(ErrCodeSearchQueryFailed, "Elasticsearch query error",
		fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()), true)
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, "Notification delivery failed",
		fmt.Sprintf("type: %s, error: %s", notificationType, err.Error()), true)
}

func NewExternalServiceError(service string, err error) *StandardError {
	return newError(ErrCodeExternalServiceFailed, fmt.Sprintf("External service '%s' error", service), err.Error(), true)
}

func NewTimeoutError(service string, err error) *StandardError {
	return newError(ErrCodeTimeout, fmt.Sprintf("Service '%s' timeout", service), err.Error(), true)
}

// NewInternalError wraps an unexpected error. The underlying message is kept in Details.
func NewInternalError(message string, err error) *StandardError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return newError(ErrCodeInternal, message, details, false)
}

// ==========================
// 4. Classification
// ==========================

// As extracts a StandardError from an error chain.
func As(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// Normalize always returns a StandardError, wrapping unknown errors as INTERNAL_ERROR.
func Normalize(err error) *StandardError {
	if stdErr, ok := As(err); ok {
		return stdErr
	}
	return NewInternalError("Unexpected error", err)
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	stdErr, ok := As(err)
	return ok && stdErr.Code == code
}

// HTTPStatus maps an error code to the status returned by the API.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeValidationFailed, ErrCodeIncompleteSubmission, ErrCodeInvalidRating, ErrCodeInvalidFilename:
		return http.StatusBadRequest
	case ErrCodeAssessmentNotFound, ErrCodeDraftNotFound, ErrCodePostNotFound:
		return http.StatusNotFound
	case ErrCodeAuthenticationFailed:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case ErrCodeServiceUnavailable:
		return http.StatusServiceUnavailable
	case ErrCodeExternalServiceFailed, ErrCodeNotificationSendFailed:
		return http.StatusBadGateway
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// ==========================
// 5. Error Conversion to BPMN
// ==========================

// GetRetryCount returns the recommended retry count for a job failing with code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeDatabaseInsertFailed,
		ErrCodeElasticsearchConnectionFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeFileOperationFailed,
		ErrCodeExternalServiceFailed:
		return 3

	case ErrCodeTimeout, ErrCodeServiceUnavailable:
		return 2

	default:
		return 0 // Business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
// BPMN error codes are identical to the internal codes.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      string(stdErr.Code),
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "AUTH") || code == ErrCodeForbidden:
		return "AUTH"
	case strings.Contains(codeStr, "ELASTICSEARCH") || strings.Contains(codeStr, "SEARCH"):
		return "SEARCH"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "FILE") || strings.Contains(codeStr, "DRAFT") || strings.Contains(codeStr, "POST"):
		return "CONTENT"
	case strings.Contains(codeStr, "ASSESSMENT") || strings.Contains(codeStr, "SUBMISSION") ||
		strings.Contains(codeStr, "RATING") || strings.Contains(codeStr, "CATALOG"):
		return "ASSESSMENT"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
