package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/fxhedge/hedgegate/internal/gateway"
	"github.com/fxhedge/hedgegate/internal/pkg/logger"
)

const HeaderUserID = "X-User-ID"

// UserContextMiddleware 将门户用户 ID 写入请求 context，网关遥测据此归属用户
func UserContextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(HeaderUserID)
		if userID == "" {
			c.Next()
			return
		}
		ctx := gateway.WithUserID(c.Request.Context(), userID)
		ctx = logger.WithContext(ctx, logger.FromContext(ctx).With("user_id", userID))
		c.Request = c.Request.WithContext(ctx)
		AddAuditContext(c, "user_id", userID)
		c.Next()
	}
}
