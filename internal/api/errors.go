package api

import (
	"encoding/json"
	"net/http"

	apperrors "university-matcher/internal/common/errors"
)

// ErrorResponse is the JSON body of every non-advisor error.
type ErrorResponse struct {
	Error   ErrorDetail `json:"error"`
	Details string      `json:"details,omitempty"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// advisorErrorResponse is returned when the language model relay fails.
type advisorErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders err with the status of its code. Untyped errors
// become INTERNAL_ERROR.
func writeError(w http.ResponseWriter, err error) *apperrors.StandardError {
	stdErr, ok := apperrors.AsStandardError(err)
	if !ok {
		stdErr = apperrors.NewInternalError(err)
	}
	writeJSON(w, apperrors.HTTPStatus(stdErr.Code), ErrorResponse{
		Error: ErrorDetail{
			Code:    string(stdErr.Code),
			Message: stdErr.Message,
		},
		Details: stdErr.Details,
	})
	return stdErr
}

// writeAdvisorError keeps request validation errors in the standard
// envelope; every upstream failure is a 500.
func writeAdvisorError(w http.ResponseWriter, err error) {
	if stdErr, ok := apperrors.AsStandardError(err); ok && stdErr.Code == apperrors.ErrCodeInvalidRequest {
		writeError(w, err)
		return
	}

	details := err.Error()
	if stdErr, ok := apperrors.AsStandardError(err); ok && stdErr.Details != "" {
		details = stdErr.Details
	}
	writeJSON(w, http.StatusInternalServerError, advisorErrorResponse{
		Error:   "Internal Server Error",
		Details: details,
	})
}
