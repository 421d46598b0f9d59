// Package errors provides the standardized error taxonomy of the cost analysis engine.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeProviderUnavailable ErrorCode = "PROVIDER_UNAVAILABLE"
	ErrCodeProviderTimeout     ErrorCode = "PROVIDER_TIMEOUT"

	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidProfile   ErrorCode = "INVALID_PROFILE"

	ErrCodeCalculationFailed ErrorCode = "CALCULATION_FAILED"

	ErrCodeConfidenceBelowThreshold ErrorCode = "CONFIDENCE_BELOW_THRESHOLD"
	ErrCodeSalaryResolutionFailed   ErrorCode = "SALARY_RESOLUTION_FAILED"
	ErrCodeAICostResolutionFailed   ErrorCode = "AI_COST_RESOLUTION_FAILED"

	ErrCodeLLMInsightsFailed ErrorCode = "LLM_INSIGHTS_FAILED"
	ErrCodeCacheStoreFailed  ErrorCode = "CACHE_STORE_FAILED"
)

// StandardError represents a structured engine error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

func NewProviderUnavailableError(provider string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeProviderUnavailable,
		Message:   fmt.Sprintf("Provider '%s' unavailable", provider),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewProviderTimeoutError(provider string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeProviderTimeout,
		Message:   fmt.Sprintf("Provider '%s' timeout", provider),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Payload validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidProfileError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidProfile,
		Message:   "Invalid user profile",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewCalculationFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCalculationFailed,
		Message:   "Cost calculation failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewConfidenceBelowThresholdError(confidence, threshold float64) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfidenceBelowThreshold,
		Message:   "Analysis confidence below requested threshold",
		Details:   fmt.Sprintf("confidence: %.2f, threshold: %.2f", confidence, threshold),
		Retryable: false,
		Metadata: map[string]interface{}{
			"confidence": confidence,
			"threshold":  threshold,
		},
		Timestamp: time.Now().UTC(),
	}
}

func NewSalaryResolutionFailedError(occupation string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSalaryResolutionFailed,
		Message:   "No salary data available from any source",
		Details:   fmt.Sprintf("occupation: %s", occupation),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewAICostResolutionFailedError(model string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAICostResolutionFailed,
		Message:   "AI cost could not be computed",
		Details:   fmt.Sprintf("model: %s", model),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewLLMInsightsFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMInsightsFailed,
		Message:   "LLM insight generation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewCacheStoreFailedError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheStoreFailed,
		Message:   "Persistent cache store error",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeProviderUnavailable,
		ErrCodeSalaryResolutionFailed,
		ErrCodeCacheStoreFailed:
		return 3

	case ErrCodeProviderTimeout,
		ErrCodeLLMInsightsFailed:
		return 1

	default:
		return 0
	}
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory groups codes for metrics labels and transport mapping.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "PROVIDER") || strings.Contains(codeStr, "LLM"):
		return "PROVIDER"
	case strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	case strings.Contains(codeStr, "CALCULATION"):
		return "CALCULATION"
	case strings.Contains(codeStr, "CONFIDENCE"):
		return "CONFIDENCE"
	case strings.Contains(codeStr, "RESOLUTION"):
		return "RESOLUTION"
	case strings.Contains(codeStr, "CACHE"):
		return "CACHE"
	default:
		return "OTHER"
	}
}

// CodeOf extracts the ErrorCode from anything wrapping a StandardError.
func CodeOf(err error) (ErrorCode, bool) {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Code, true
	}
	return "", false
}

// BPMNError is the shape thrown to the workflow engine from job workers.
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

// ToErrorVariables returns the process variables set alongside a failed job.
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

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	return &BPMNError{
		Code:           string(stdErr.Code),
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        GetRetryCount(stdErr.Code),
		ErrorVariables: stdErr.Metadata,
	}
}
