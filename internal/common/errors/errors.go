// Package errors provides standardized error handling for the
// storefront client and its notification pipeline.
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
	// Transport layer
	ErrCodeTransportDialFailed ErrorCode = "TRANSPORT_DIAL_FAILED"
	ErrCodeTransportClosed     ErrorCode = "TRANSPORT_CLOSED"
	ErrCodeTransportFailure    ErrorCode = "TRANSPORT_FAILURE"

	// STOMP protocol layer
	ErrCodeProtocolError      ErrorCode = "PROTOCOL_ERROR"
	ErrCodeBrokerRejected     ErrorCode = "BROKER_REJECTED"
	ErrCodeHeartbeatTimeout   ErrorCode = "HEARTBEAT_TIMEOUT"
	ErrCodeNotConnected       ErrorCode = "NOT_CONNECTED"
	ErrCodeDuplicateSubscribe ErrorCode = "DUPLICATE_SUBSCRIBE"

	// Normalizer layer
	ErrCodePayloadParseFailed ErrorCode = "PAYLOAD_PARSE_FAILED"

	// Alert dispatch
	ErrCodeAlertFailed ErrorCode = "ALERT_FAILED"

	// REST collaborators
	ErrCodeRequestFailed      ErrorCode = "REQUEST_FAILED"
	ErrCodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	ErrCodeValidationFailed   ErrorCode = "VALIDATION_FAILED"
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"

	// Local state
	ErrCodeLocalStateFailed  ErrorCode = "LOCAL_STATE_FAILED"
	ErrCodeHistorySinkFailed ErrorCode = "HISTORY_SINK_FAILED"
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

// NewTransportDialError creates a retryable transport dial error.
func NewTransportDialError(endpoint string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTransportDialFailed,
		Message:   "Failed to dial broker endpoint",
		Details:   fmt.Sprintf("endpoint: %s, error: %s", endpoint, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewTransportClosedError creates a retryable closed-channel error.
func NewTransportClosedError(reason string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTransportClosed,
		Message:   "Transport channel closed",
		Details:   reason,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewTransportFailureError creates a retryable low-level transport error.
func NewTransportFailureError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTransportFailure,
		Message:   "Transport failure",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewProtocolError creates a retryable STOMP protocol error.
func NewProtocolError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeProtocolError,
		Message:   "STOMP protocol error",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewBrokerRejectedError creates a retryable broker rejection error.
func NewBrokerRejectedError(message string) *StandardError {
	return &StandardError{
		Code:      ErrCodeBrokerRejected,
		Message:   "Broker rejected the frame",
		Details:   message,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewHeartbeatTimeoutError creates a retryable heartbeat timeout error.
func NewHeartbeatTimeoutError(elapsed time.Duration) *StandardError {
	return &StandardError{
		Code:      ErrCodeHeartbeatTimeout,
		Message:   "No heartbeat received from peer",
		Details:   fmt.Sprintf("elapsed: %s", elapsed),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotConnectedError creates a non-retryable usage error.
func NewNotConnectedError(op string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotConnected,
		Message:   "Client is not connected",
		Details:   fmt.Sprintf("operation: %s", op),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDuplicateSubscribeError creates a non-retryable duplicate subscription error.
func NewDuplicateSubscribeError(topic string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicateSubscribe,
		Message:   "Topic already has an active subscription",
		Details:   fmt.Sprintf("topic: %s", topic),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPayloadParseError creates a non-retryable payload parse error. The
// pipeline degrades to a fallback notification instead of surfacing it.
func NewPayloadParseError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePayloadParseFailed,
		Message:   "Failed to parse event payload",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAlertFailedError creates a non-retryable alert dispatch error.
// Alert failures are logged and swallowed, never propagated.
func NewAlertFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAlertFailed,
		Message:   "Failed to dispatch alert",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRequestFailedError creates an error for a failed REST call.
func NewRequestFailedError(service string, status int, body string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRequestFailed,
		Message:   fmt.Sprintf("%s request failed", service),
		Details:   fmt.Sprintf("status: %d, body: %s", status, body),
		Retryable: status >= 500,
		Metadata:  map[string]interface{}{"status": status},
		Timestamp: time.Now().UTC(),
	}
}

// NewUnauthorizedError creates a non-retryable auth error.
func NewUnauthorizedError(service string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnauthorized,
		Message:   "Request not authorized",
		Details:   fmt.Sprintf("service: %s", service),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationFailedError creates a non-retryable payload validation error.
func NewValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Request payload failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewLocalStateError creates a non-retryable local persistence error.
func NewLocalStateError(op string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLocalStateFailed,
		Message:   "Local state operation failed",
		Details:   fmt.Sprintf("op: %s, error: %s", op, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewHistorySinkError creates a retryable history sink error.
func NewHistorySinkError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeHistorySinkFailed,
		Message:   "Notification history sink operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Classification helpers
// ==========================

// GetErrorCategory groups codes by failure surface: transport,
// protocol, payload, alert, rest, local.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeTransportDialFailed, ErrCodeTransportClosed, ErrCodeTransportFailure:
		return "transport"
	case ErrCodeProtocolError, ErrCodeBrokerRejected, ErrCodeHeartbeatTimeout,
		ErrCodeNotConnected, ErrCodeDuplicateSubscribe:
		return "protocol"
	case ErrCodePayloadParseFailed:
		return "payload"
	case ErrCodeAlertFailed:
		return "alert"
	case ErrCodeRequestFailed, ErrCodeUnauthorized, ErrCodeValidationFailed,
		ErrCodeServiceUnavailable:
		return "rest"
	case ErrCodeLocalStateFailed, ErrCodeHistorySinkFailed:
		return "local"
	default:
		return "unknown"
	}
}

// IsRecoverable reports whether the connection lifecycle should keep
// cycling through its backoff-and-retry loop after this error.
func IsRecoverable(err error) bool {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr.Retryable
	}
	return false
}
