package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardError_Unwrap(t *testing.T) {
	err := NewSearchTimeoutError("").WithCause(context.DeadlineExceeded)

	assert.True(t, stderrors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, context.DeadlineExceeded.Error(), err.Details)
	assert.Equal(t, "StandardError[SEARCH_TIMEOUT]: University search timed out", err.Error())
}

func TestAsStandardError(t *testing.T) {
	wrapped := fmt.Errorf("rank by profile: %w", NewUniversityNotFoundError("abc"))

	stdErr, ok := AsStandardError(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrCodeUniversityNotFound, stdErr.Code)
	assert.Equal(t, "abc", stdErr.Metadata["universityId"])

	_, ok = AsStandardError(stderrors.New("plain"))
	assert.False(t, ok)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		expected int
	}{
		{ErrCodeUniversityNotFound, http.StatusNotFound},
		{ErrCodeInvalidRequest, http.StatusBadRequest},
		{ErrCodeSearchTimeout, http.StatusGatewayTimeout},
		{ErrCodeSearchQueryFailed, http.StatusInternalServerError},
		{ErrCodeLLMRequestFailed, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, HTTPStatus(tt.code), string(tt.code))
	}
}

func TestConvertToBPMNError(t *testing.T) {
	bpmn := ConvertToBPMNError(NewSearchQueryFailedError("boom"))
	assert.Equal(t, "SEARCH_QUERY_FAILED", bpmn.Code)
	assert.Equal(t, 3, bpmn.Retries)
	assert.True(t, bpmn.Retryable)

	notFound := ConvertToBPMNError(NewUniversityNotFoundError("x"))
	assert.Equal(t, 0, notFound.Retries)

	vars := notFound.ToErrorVariables()
	assert.Equal(t, "UNIVERSITY_NOT_FOUND", vars["originalErrorCode"])
	assert.Equal(t, "x", vars["errorDetails"])
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "NOT_FOUND", GetErrorCategory(ErrCodeUniversityNotFound))
	assert.Equal(t, "NOT_FOUND", GetErrorCategory(ErrCodeIndexNotFound))
	assert.Equal(t, "SEARCH", GetErrorCategory(ErrCodeSearchQueryFailed))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeQueryExecutionFailed))
	assert.Equal(t, "AI", GetErrorCategory(ErrCodeLLMTimeout))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInvalidRequest))
	assert.True(t, IsRetryableErrorCode(ErrCodeSearchTimeout))
	assert.False(t, IsRetryableErrorCode(ErrCodeInvalidRequest))
}
