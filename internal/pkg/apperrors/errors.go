package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrRiskReject      ErrorType = "RISK_REJECT"
	ErrAuthFailed      ErrorType = "AUTH_FAILED"
	ErrRateLimited     ErrorType = "RATE_LIMITED"
	ErrInvalidRequest  ErrorType = "INVALID_REQUEST"
	ErrInternal        ErrorType = "INTERNAL_ERROR"
	ErrNotFound        ErrorType = "NOT_FOUND"
	ErrConflict        ErrorType = "CONFLICT"
	ErrUpstream        ErrorType = "UPSTREAM_ERROR"
	ErrUpstreamInvalid ErrorType = "UPSTREAM_INVALID_RESPONSE"
	ErrUnavailable     ErrorType = "GATEWAY_UNAVAILABLE"
	ErrGatewayDisabled ErrorType = "GATEWAY_DISABLED"
	ErrReadOnly        ErrorType = "READ_ONLY"
)

// AppError is the standard error struct for the application
type AppError struct {
	Type       ErrorType      `json:"code"`
	Message    string         `json:"message"`
	Suggestion string         `json:"suggestion,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	HTTPStatus int            `json:"-"`
	Cause      error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails returns a copy carrying extra fields for the response body.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	next := *e
	next.Details = details
	return &next
}

func New(errType ErrorType, msg string, cause error) *AppError {
	return &AppError{
		Type:       errType,
		Message:    msg,
		Cause:      cause,
		HTTPStatus: mapTypeToStatus(errType),
		Suggestion: mapTypeToSuggestion(errType),
	}
}

func NewRiskReject(msg string) *AppError {
	return New(ErrRiskReject, msg, nil)
}

func NewInvalidRequest(msg string) *AppError {
	return New(ErrInvalidRequest, msg, nil)
}

func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return New(ErrInternal, err.Error(), err)
}

func mapTypeToStatus(t ErrorType) int {
	switch t {
	case ErrRiskReject, ErrInvalidRequest:
		return http.StatusBadRequest
	case ErrAuthFailed:
		return http.StatusUnauthorized
	case ErrRateLimited:
		return http.StatusTooManyRequests
	case ErrConflict:
		return http.StatusConflict
	case ErrReadOnly:
		return http.StatusForbidden
	case ErrNotFound:
		return http.StatusNotFound
	case ErrUpstream, ErrUpstreamInvalid:
		return http.StatusBadGateway
	case ErrUnavailable, ErrGatewayDisabled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func mapTypeToSuggestion(t ErrorType) string {
	switch t {
	case ErrRiskReject:
		return "Check order parameters against risk limits."
	case ErrRateLimited:
		return "Slow down and retry later."
	case ErrConflict:
		return "Use a new Idempotency-Key for a different request."
	case ErrAuthFailed:
		return "Check API keys."
	case ErrUpstream, ErrUnavailable:
		return "The pricing gateway is unavailable. Retry the request."
	case ErrReadOnly:
		return "Execution is halted; quotes and risk plans remain available."
	case ErrGatewayDisabled:
		return "Set GATEWAY_ENABLED=true to route requests to the pricing gateway."
	default:
		return ""
	}
}
