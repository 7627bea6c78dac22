package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ============================================================================
// Error codes
// ============================================================================

type ErrorCode string

const (
	// Credential and provider availability
	ErrCodeMissingCredential   ErrorCode = "MISSING_CREDENTIAL"
	ErrCodeProviderUnavailable ErrorCode = "PROVIDER_UNAVAILABLE"

	// Location resolution
	ErrCodeLocationNotFound ErrorCode = "LOCATION_NOT_FOUND"

	// Result aggregation
	ErrCodeSearchFailed ErrorCode = "SEARCH_FAILED"

	// Input
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"

	// Stored result sets
	ErrCodeResultsNotFound   ErrorCode = "RESULTS_NOT_FOUND"
	ErrCodeResultStoreFailed ErrorCode = "RESULT_STORE_FAILED"

	// Export
	ErrCodeExportFailed ErrorCode = "EXPORT_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// ============================================================================
// StandardError
// ============================================================================

type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// AsStandardError extracts a StandardError from an error chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	stdErr, ok := AsStandardError(err)
	return ok && stdErr.Code == code
}

// ============================================================================
// BPMN errors
// ============================================================================

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

// ============================================================================
// Constructors
// ============================================================================

func NewMissingCredentialError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingCredential,
		Message:   "Places API key is not configured",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewProviderUnavailableError(operation string, err error) *StandardError {
	details := fmt.Sprintf("operation: %s", operation)
	if err != nil {
		details = fmt.Sprintf("operation: %s, error: %s", operation, err.Error())
	}
	return &StandardError{
		Code:      ErrCodeProviderUnavailable,
		Message:   "Places provider is not available",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewLocationNotFoundError(location, locationType string, attempts int) *StandardError {
	return &StandardError{
		Code:      ErrCodeLocationNotFound,
		Message:   fmt.Sprintf("Could not find location %q (%s)", location, locationType),
		Details:   fmt.Sprintf("attempts: %d", attempts),
		Retryable: false,
		Metadata: map[string]interface{}{
			"location":     location,
			"locationType": locationType,
			"attempts":     attempts,
		},
		Timestamp: time.Now().UTC(),
	}
}

func NewSearchFailedError(status, providerMessage string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchFailed,
		Message:   fmt.Sprintf("Business search failed: %s", status),
		Details:   providerMessage,
		Retryable: false,
		Metadata:  map[string]interface{}{"status": status},
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Invalid input",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewResultsNotFoundError(sessionID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeResultsNotFound,
		Message:   "No stored results for session",
		Details:   fmt.Sprintf("sessionId: %s", sessionID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewResultStoreFailedError(op string, err error) *StandardError {
	details := fmt.Sprintf("op: %s", op)
	if err != nil {
		details = fmt.Sprintf("op: %s, error: %s", op, err.Error())
	}
	return &StandardError{
		Code:      ErrCodeResultStoreFailed,
		Message:   "Result store operation failed",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewExportFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeExportFailed,
		Message:   "CSV export failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ============================================================================
// BPMN mapping and retry policy
// ============================================================================

var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeMissingCredential:   "MISSING_CREDENTIAL",
	ErrCodeProviderUnavailable: "PROVIDER_UNAVAILABLE",
	ErrCodeLocationNotFound:    "LOCATION_NOT_FOUND",
	ErrCodeSearchFailed:        "SEARCH_FAILED",
	ErrCodeInvalidInput:        "INVALID_INPUT",
	ErrCodeResultsNotFound:     "RESULTS_NOT_FOUND",
	ErrCodeResultStoreFailed:   "RESULT_STORE_FAILED",
	ErrCodeExportFailed:        "EXPORT_FAILED",
}

func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeProviderUnavailable,
		ErrCodeResultStoreFailed:
		return 3

	default:
		return 0 // Business errors: no retry
	}
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
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

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "CREDENTIAL"):
		return "AUTH"
	case strings.Contains(codeStr, "PROVIDER"):
		return "PROVIDER"
	case strings.Contains(codeStr, "LOCATION"):
		return "GEOCODING"
	case strings.Contains(codeStr, "SEARCH"):
		return "SEARCH"
	case strings.Contains(codeStr, "RESULT"):
		return "STORE"
	case strings.Contains(codeStr, "EXPORT"):
		return "EXPORT"
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
