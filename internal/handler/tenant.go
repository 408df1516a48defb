package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fxhedge/hedgegate/internal/model"
	"github.com/fxhedge/hedgegate/internal/pkg/apperrors"
	"github.com/fxhedge/hedgegate/internal/repository"
	"github.com/fxhedge/hedgegate/internal/service"
)

type TenantHandler struct {
	svc *service.TenantService
}

func NewTenantHandler(svc *service.TenantService) *TenantHandler {
	return &TenantHandler{svc: svc}
}

func (h *TenantHandler) List(c *gin.Context) {
	limit := 100
	offset := 0
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}
	if raw := c.Query("offset"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			offset = parsed
		}
	}

	tenants, err := h.svc.List(c.Request.Context(), limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, toTenantPublicList(tenants))
}

func (h *TenantHandler) Get(c *gin.Context) {
	tenant, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(tenantError(err))
		return
	}
	c.JSON(http.StatusOK, toTenantPublic(tenant))
}

func (h *TenantHandler) Create(c *gin.Context) {
	var req service.TenantCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.NewInvalidRequest(err.Error()))
		return
	}
	tenant, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, toTenantPublic(tenant))
}

func (h *TenantHandler) Update(c *gin.Context) {
	var req service.TenantUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.NewInvalidRequest(err.Error()))
		return
	}
	tenant, err := h.svc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		_ = c.Error(tenantError(err))
		return
	}
	c.JSON(http.StatusOK, toTenantPublic(tenant))
}

func (h *TenantHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		_ = c.Error(tenantError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func tenantError(err error) error {
	if errors.Is(err, repository.ErrTenantNotFound) {
		return apperrors.New(apperrors.ErrNotFound, "tenant not found", err)
	}
	return err
}

// TenantPublic is the admin view of a tenant; the API key is masked.
type TenantPublic struct {
	ID     string                `json:"id"`
	Name   string                `json:"name"`
	APIKey string                `json:"api_key"`
	Risk   model.RiskLimits      `json:"risk"`
	Rate   model.RateLimitConfig `json:"rate_limit"`
}

func toTenantPublic(t *model.Tenant) *TenantPublic {
	if t == nil {
		return nil
	}
	return &TenantPublic{
		ID:     t.ID,
		Name:   t.Name,
		APIKey: maskSecret(t.APIKey),
		Risk:   t.Risk,
		Rate:   t.Rate,
	}
}

func toTenantPublicList(tenants []*model.Tenant) []*TenantPublic {
	out := make([]*TenantPublic, 0, len(tenants))
	for _, tenant := range tenants {
		out = append(out, toTenantPublic(tenant))
	}
	return out
}

func maskSecret(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if len(value) <= 8 {
		return "****"
	}
	return value[:4] + "..." + value[len(value)-4:]
}
