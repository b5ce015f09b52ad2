package types

import "fmt"

// ErrorCode is a typed string for categorizing application errors.
type ErrorCode string

// Error code constants. All components use these constants instead of
// hardcoded strings so logs can be filtered by failure class.
const (
	// Configuration: channel disabled or required connection fields missing.
	// These are silent-skip conditions, never delivery errors.
	ErrCodeConfigChannelDisabled ErrorCode = "config_channel_disabled"
	ErrCodeConfigInvalidSettings ErrorCode = "config_invalid_settings"

	// Template: missing or disabled template for a (channel, kind) pair.
	ErrCodeTemplateNotConfigured ErrorCode = "template_not_configured"

	// Delivery: failures while building or sending a payload. Caught and
	// logged at the agent boundary, never propagated.
	ErrCodeDeliveryFailed      ErrorCode = "delivery_failed"
	ErrCodeUpstreamUnavailable ErrorCode = "upstream_unavailable"
	ErrCodeUpstreamRateLimited ErrorCode = "upstream_rate_limited"

	// Internal
	ErrCodeInternalDB         ErrorCode = "internal_database_error"
	ErrCodeInternalUnexpected ErrorCode = "internal_unexpected_error"
)

// AppError is the standard application error type used throughout the
// dispatch core. Expressing failures as AppError gives consistent log
// formatting and error-chain support via errors.Is/As.
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError with the given code, message, and
// optional underlying error.
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}
