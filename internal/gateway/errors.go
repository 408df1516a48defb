package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/fxhedge/hedgegate/internal/model"
	"github.com/fxhedge/hedgegate/internal/schema"
)

// Telemetry error codes that are not HTTP statuses.
const (
	ErrorCodeNetwork    = "network_error"
	ErrorCodeValidation = "validation_error"
)

var ErrNoTransport = errors.New("gateway: no HTTP transport available")

// GatewayError is a non-2xx response from the gateway.
type GatewayError struct {
	Endpoint model.Endpoint
	Status   int
	Body     []byte // nil when the body could not be read
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway %s request failed with status %d", e.Endpoint, e.Status)
}

// BodyText returns the raw response body, or "" when it was unreadable.
func (e *GatewayError) BodyText() string {
	return string(e.Body)
}

func (e *GatewayError) Retryable() bool {
	return IsRetryableStatus(e.Status)
}

// IsRetryableStatus reports whether a response status is worth another attempt:
// any 5xx and 429 Too Many Requests.
func IsRetryableStatus(status int) bool {
	return status >= http.StatusInternalServerError || status == http.StatusTooManyRequests
}

// NetworkError is a failure below HTTP status classification: connection errors,
// timeouts and 2xx bodies that are not JSON.
type NetworkError struct {
	Endpoint model.Endpoint
	Attempt  int
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("gateway %s attempt %d: %v", e.Endpoint, e.Attempt, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ResponseError is a 2xx response whose body does not match the endpoint contract.
// It is never retried.
type ResponseError struct {
	Endpoint model.Endpoint
	Err      *schema.Error
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("gateway %s returned an invalid response: %v", e.Endpoint, e.Err)
}

func (e *ResponseError) Unwrap() error {
	return e.Err
}

// ErrorCode maps an error returned by the client to its telemetry error code.
func ErrorCode(err error) string {
	var gerr *GatewayError
	var rerr *ResponseError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &gerr):
		return strconv.Itoa(gerr.Status)
	case errors.As(err, &rerr):
		return ErrorCodeValidation
	default:
		return ErrorCodeNetwork
	}
}
