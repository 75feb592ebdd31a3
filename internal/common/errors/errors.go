// Package errors provides standardized error handling for the churn service.
package errors

import (
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Startup / configuration errors (fatal).
	ErrCodeModelNotFound     ErrorCode = "MODEL_NOT_FOUND"
	ErrCodeModelIncompatible ErrorCode = "MODEL_INCOMPATIBLE"

	// Per-request errors (recoverable).
	ErrCodeModelNotLoaded   ErrorCode = "MODEL_NOT_LOADED"
	ErrCodeInvalidInput     ErrorCode = "INVALID_INPUT"
	ErrCodePredictionFailed ErrorCode = "PREDICTION_FAILED"

	// Authentication errors.
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeTokenInvalid       ErrorCode = "TOKEN_INVALID"

	// Persistence errors.
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeLogWriteFailed           ErrorCode = "LOG_WRITE_FAILED"

	// Training errors (fatal for the training run).
	ErrCodeDatasetNotFound ErrorCode = "DATASET_NOT_FOUND"
	ErrCodeLabelUnmappable ErrorCode = "LABEL_UNMAPPABLE"
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
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewModelNotFoundError signals a missing model artifact. The server keeps
// running in degraded mode, so this is informational rather than fatal.
func NewModelNotFoundError(path string) *StandardError {
	return &StandardError{
		Code:      ErrCodeModelNotFound,
		Message:   "Model artifact not found",
		Details:   fmt.Sprintf("path: %s", path),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewModelIncompatibleError signals a structurally broken artifact. Serving
// readiness must be aborted, never silently degraded.
func NewModelIncompatibleError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeModelIncompatible,
		Message:   "Model artifact is structurally incompatible",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewModelNotLoadedError rejects a single request while the pipeline is absent.
func NewModelNotLoadedError() *StandardError {
	return &StandardError{
		Code:      ErrCodeModelNotLoaded,
		Message:   "Prediction pipeline not loaded",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidInputError rejects a single malformed request.
func NewInvalidInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Request input failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPredictionFailedError wraps an unexpected failure inside the pipeline.
func NewPredictionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePredictionFailed,
		Message:   "Prediction failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidCredentialsError rejects a login attempt.
func NewInvalidCredentialsError() *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidCredentials,
		Message:   "Invalid credentials",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTokenInvalidError rejects a request with a missing or bad bearer token.
func NewTokenInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTokenInvalid,
		Message:   "Invalid or expired token",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query error.
func NewQueryExecutionFailedError(op string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("op: %s, error: %s", op, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLogWriteFailedError wraps a prediction log persistence failure. Callers
// log and continue; this never fails the prediction response.
func NewLogWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLogWriteFailed,
		Message:   "Failed to persist prediction log entry",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatasetNotFoundError aborts a training run.
func NewDatasetNotFoundError(path string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatasetNotFound,
		Message:   "Training dataset not found",
		Details:   fmt.Sprintf("path: %s", path),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewLabelUnmappableError aborts a training run when the label column cannot
// be mapped to a binary outcome.
func NewLabelUnmappableError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeLabelUnmappable,
		Message:   "Label column cannot be mapped to binary",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
