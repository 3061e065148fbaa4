package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  *StandardError
		want int
	}{
		{"validation", NewValidationError("bad", ""), http.StatusBadRequest},
		{"incomplete", NewIncompleteSubmissionError("anxiety", []string{"q3"}), http.StatusBadRequest},
		{"rating", NewInvalidRatingError("q1", 9, 1, 5), http.StatusBadRequest},
		{"filename", NewInvalidFilenameError("../x.md"), http.StatusBadRequest},
		{"draft", NewDraftNotFoundError("x.md"), http.StatusNotFound},
		{"post", NewPostNotFoundError("x"), http.StatusNotFound},
		{"assessment", NewAssessmentNotFoundError("nope"), http.StatusNotFound},
		{"auth", NewAuthenticationError("bad token"), http.StatusUnauthorized},
		{"forbidden", NewForbiddenError("not admin"), http.StatusForbidden},
		{"unavailable", NewServiceUnavailableError("postgres"), http.StatusServiceUnavailable},
		{"internal", NewInternalError("boom", fmt.Errorf("disk")), http.StatusInternalServerError},
		{"file", NewFileOperationError("rename", fmt.Errorf("EXDEV")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err.Code))
		})
	}
}

func TestAsAndNormalize(t *testing.T) {
	wrapped := fmt.Errorf("approve: %w", NewDraftNotFoundError("a.md"))

	stdErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrCodeDraftNotFound, stdErr.Code)
	assert.True(t, HasCode(wrapped, ErrCodeDraftNotFound))

	plain := Normalize(fmt.Errorf("permission denied"))
	assert.Equal(t, ErrCodeInternal, plain.Code)
	assert.Equal(t, "permission denied", plain.Details)
}

func TestIncompleteSubmissionCarriesMissingIDs(t *testing.T) {
	err := NewIncompleteSubmissionError("anxiety", []string{"q11", "q12"})

	assert.Equal(t, []string{"q11", "q12"}, err.Metadata["missing"])
	assert.Contains(t, err.Details, "q11,q12")
	assert.Contains(t, err.Error(), "INCOMPLETE_SUBMISSION")
}

func TestConvertToBPMNError(t *testing.T) {
	t.Run("retryable technical error keeps retries", func(t *testing.T) {
		bpmn := ConvertToBPMNError(NewFileOperationError("rename", fmt.Errorf("busy")))
		assert.Equal(t, "FILE_OPERATION_FAILED", bpmn.Code)
		assert.Equal(t, 3, bpmn.Retries)
		assert.True(t, bpmn.Retryable)
	})

	t.Run("business error has no retries", func(t *testing.T) {
		bpmn := ConvertToBPMNError(NewDraftNotFoundError("x.md"))
		assert.Equal(t, 0, bpmn.Retries)

		vars := bpmn.ToErrorVariables()
		assert.Equal(t, "DRAFT_NOT_FOUND", vars["errorCode"])
		assert.Equal(t, "DRAFT_NOT_FOUND", vars["originalErrorCode"])
	})
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "ASSESSMENT", GetErrorCategory(ErrCodeIncompleteSubmission))
	assert.Equal(t, "CONTENT", GetErrorCategory(ErrCodeDraftNotFound))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeQueryExecutionFailed))
	assert.Equal(t, "SEARCH", GetErrorCategory(ErrCodeSearchQueryFailed))
	assert.Equal(t, "AUTH", GetErrorCategory(ErrCodeAuthenticationFailed))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeValidationFailed))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}
