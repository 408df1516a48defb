package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fxhedge/hedgegate/internal/middleware"
	"github.com/fxhedge/hedgegate/internal/pkg/apperrors"
	"github.com/fxhedge/hedgegate/internal/schema"
	"github.com/fxhedge/hedgegate/internal/service"
)

type AuditHandler struct {
	svc *service.AuditService
}

func NewAuditHandler(svc *service.AuditService) *AuditHandler {
	return &AuditHandler{svc: svc}
}

// List returns audit records. Tenant callers are scoped to themselves; the
// admin API may filter with ?tenant_id=.
func (h *AuditHandler) List(c *gin.Context) {
	tenantID := c.Query("tenant_id")
	if tenant := middleware.TenantFromContext(c); tenant != nil {
		tenantID = tenant.ID
	}

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}
	from, err := queryTime(c, "from")
	if err != nil {
		_ = c.Error(err)
		return
	}
	to, err := queryTime(c, "to")
	if err != nil {
		_ = c.Error(err)
		return
	}

	records, err := h.svc.List(c.Request.Context(), tenantID, limit, from, to)
	if err != nil {
		_ = c.Error(apperrors.New(apperrors.ErrInternal, err.Error(), err))
		return
	}
	c.JSON(http.StatusOK, records)
}

// parseTime accepts RFC 3339, a bare ISO date or unix seconds.
func parseTime(raw string) (time.Time, error) {
	if t, err := schema.ParseISODate(raw); err == nil {
		return t, nil
	}
	if unix, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("invalid time format")
}
