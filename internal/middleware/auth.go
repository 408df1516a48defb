package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/fxhedge/hedgegate/internal/config"
	"github.com/fxhedge/hedgegate/internal/model"
	"github.com/fxhedge/hedgegate/internal/pkg/apperrors"
	"github.com/fxhedge/hedgegate/internal/service"
)

const (
	HeaderGatewayKey = "X-Gateway-Key"
	ContextTenantKey = "tenant"
)

func AuthMiddleware(cfg *config.Config, tm *service.TenantManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader(HeaderGatewayKey)
		if apiKey == "" {
			if cfg != nil && !cfg.Auth.RequireAPIKey {
				if tenant := tm.DefaultTenant(); tenant != nil {
					c.Set(ContextTenantKey, tenant)
					c.Next()
					return
				}
			}
			_ = c.Error(apperrors.New(apperrors.ErrAuthFailed, "missing API key", nil))
			c.Abort()
			return
		}

		tenant, ok := tm.GetTenantByApiKeyWithFallback(c.Request.Context(), apiKey)
		if !ok {
			_ = c.Error(apperrors.New(apperrors.ErrAuthFailed, "invalid API key", nil))
			c.Abort()
			return
		}

		// 将租户信息存入上下文
		c.Set(ContextTenantKey, tenant)
		c.Next()
	}
}

// TenantFromContext returns the tenant set by AuthMiddleware, or nil.
func TenantFromContext(c *gin.Context) *model.Tenant {
	v, ok := c.Get(ContextTenantKey)
	if !ok {
		return nil
	}
	tenant, _ := v.(*model.Tenant)
	return tenant
}
