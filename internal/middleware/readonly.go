package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fxhedge/hedgegate/internal/pkg/apperrors"
)

// ReadOnlyMiddleware halts order submission. Mount it on the execution routes
// only; quoting and risk planning keep working.
func ReadOnlyMiddleware(enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled {
			c.Next()
			return
		}

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
		default:
			_ = c.Error(apperrors.New(apperrors.ErrReadOnly, "read-only mode enabled", nil))
			c.Abort()
		}
	}
}
