package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	"github.com/fxhedge/hedgegate/internal/config"
	"github.com/fxhedge/hedgegate/internal/pkg/apperrors"
)

const HeaderAdminKey = "X-Admin-Key"

// AdminMiddleware guards the /admin/v1 control-room API.
func AdminMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg == nil || cfg.Auth.AdminKey == "" {
			_ = c.Error(apperrors.New(apperrors.ErrAuthFailed, "admin key not configured", nil).
				WithDetails(map[string]any{"reason": "admin_disabled"}))
			c.Abort()
			return
		}
		got := c.GetHeader(HeaderAdminKey)
		if subtle.ConstantTimeCompare([]byte(got), []byte(cfg.Auth.AdminKey)) != 1 {
			_ = c.Error(apperrors.New(apperrors.ErrAuthFailed, "invalid admin key", nil))
			c.Abort()
			return
		}
		c.Next()
	}
}
