package middleware

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/fxhedge/hedgegate/internal/gateway"
	"github.com/fxhedge/hedgegate/internal/pkg/apperrors"
	"github.com/fxhedge/hedgegate/internal/pkg/logger"
	"github.com/fxhedge/hedgegate/internal/schema"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		appErr := toAppError(c.Errors.Last().Err)

		logFields := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"code", appErr.Type,
			"client_ip", c.ClientIP(),
		}

		if appErr.HTTPStatus >= 500 {
			logger.LogError(c.Request.Context(), appErr, "request failed", logFields...)
		} else {
			logger.FromContext(c.Request.Context()).Warn(appErr.Message, logFields...)
		}

		if c.Writer.Written() {
			return
		}
		c.JSON(appErr.HTTPStatus, appErr)
	}
}

// toAppError maps gateway client failures onto API error codes. The order
// matters: ResponseError wraps a *schema.Error.
func toAppError(err error) *apperrors.AppError {
	var (
		appErr  *apperrors.AppError
		respErr *gateway.ResponseError
		gwErr   *gateway.GatewayError
		netErr  *gateway.NetworkError
		verr    *schema.Error
	)
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.As(err, &respErr):
		return apperrors.New(apperrors.ErrUpstreamInvalid, "pricing gateway returned an invalid response", err).
			WithDetails(map[string]any{"endpoint": respErr.Endpoint, "issues": respErr.Err.Issues})
	case errors.As(err, &gwErr):
		details := map[string]any{"endpoint": gwErr.Endpoint, "upstream_status": gwErr.Status}
		if body := gwErr.BodyText(); body != "" {
			details["upstream_body"] = body
		}
		return apperrors.New(apperrors.ErrUpstream, gwErr.Error(), err).WithDetails(details)
	case errors.As(err, &verr):
		return apperrors.New(apperrors.ErrInvalidRequest, "request validation failed", err).
			WithDetails(map[string]any{"issues": verr.Issues})
	case errors.As(err, &netErr):
		return apperrors.New(apperrors.ErrUnavailable, "pricing gateway unreachable", err).
			WithDetails(map[string]any{"endpoint": netErr.Endpoint, "attempts": netErr.Attempt})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return apperrors.New(apperrors.ErrUnavailable, "request cancelled before the gateway answered", err)
	default:
		return apperrors.New(apperrors.ErrInternal, err.Error(), err)
	}
}
