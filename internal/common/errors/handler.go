// internal/common/errors/handler.go
package errors

import (
	"encoding/json"
	"errors"
	"net/http"
)

// statusFor maps internal error codes onto HTTP status codes. Codes not
// listed here are treated as internal errors.
func statusFor(code ErrorCode) int {
	switch code {
	case ErrCodeModelNotLoaded:
		return http.StatusServiceUnavailable
	case ErrCodeInvalidInput:
		return http.StatusUnprocessableEntity
	case ErrCodeInvalidCredentials, ErrCodeTokenInvalid:
		return http.StatusUnauthorized
	case ErrCodeDatabaseConnectionFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorResponse is the JSON body returned for every rejected request.
type errorResponse struct {
	Error   ErrorCode `json:"error"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

// WriteHTTP renders err as a JSON error response. StandardError values map to
// their code-specific status; anything else becomes a 500 with a generic body.
func WriteHTTP(w http.ResponseWriter, err error) {
	var stdErr *StandardError
	if !errors.As(err, &stdErr) {
		stdErr = &StandardError{
			Code:    ErrCodePredictionFailed,
			Message: "Internal server error",
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusFor(stdErr.Code))
	_ = json.NewEncoder(w).Encode(errorResponse{
		Error:   stdErr.Code,
		Message: stdErr.Message,
		Details: stdErr.Details,
	})
}
