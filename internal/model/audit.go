package model

import (
	"time"
)

// AuditLog 代表一次完整的 BFF 请求审计记录
type AuditLog struct {
	ID        string `json:"id" gorm:"primaryKey"` // 唯一请求 ID (UUID)
	TenantID  string `json:"tenant_id" gorm:"index:idx_audit_tenant_created,priority:1"`
	UserID    string `json:"user_id,omitempty"`
	Method    string `json:"method"`
	Path      string `json:"path"`
	IP        string `json:"ip"`
	UserAgent string `json:"user_agent"`

	// 请求详情 (脱敏后)
	RequestBody   string `json:"request_body"`
	RequestHeader string `json:"request_header"`

	// 响应详情
	StatusCode   int    `json:"status_code"`
	ResponseBody string `json:"response_body"`
	LatencyMs    int64  `json:"latency_ms"`

	// 业务上下文：网关端点、上游状态码、订单号等
	Context map[string]any `json:"context" gorm:"serializer:json"`

	CreatedAt time.Time `json:"created_at" gorm:"index:idx_audit_tenant_created,priority:2"`
}

func (AuditLog) TableName() string { return "audit_logs" }
