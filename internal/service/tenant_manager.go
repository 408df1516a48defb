package service

import (
	"context"
	"sync"

	"golang.org/x/time/rate"

	"github.com/fxhedge/hedgegate/internal/config"
	"github.com/fxhedge/hedgegate/internal/model"
)

const (
	defaultTenantQPS   = 10
	defaultTenantBurst = 20
)

// TenantManager 管理租户信息以及每个租户的限流器
type TenantManager struct {
	mu            sync.RWMutex
	tenants       map[string]*model.Tenant // Key: Gateway ApiKey
	limiters      map[string]*rate.Limiter // Key: TenantID
	defaultTenant *model.Tenant
	repo          TenantRepo
}

type TenantRepo interface {
	GetByApiKey(ctx context.Context, apiKey string) (*model.Tenant, error)
}

func NewTenantManager(cfg *config.Config, repo TenantRepo) *TenantManager {
	tm := &TenantManager{
		tenants:  make(map[string]*model.Tenant),
		limiters: make(map[string]*rate.Limiter),
		repo:     repo,
	}

	// 配置化租户 (优先)，未设置的风控项继承全局配置
	if len(cfg.Tenants) > 0 {
		for _, tc := range cfg.Tenants {
			tm.RegisterTenant(&model.Tenant{
				ID:     tc.ID,
				Name:   tc.Name,
				APIKey: tc.APIKey,
				Risk: model.RiskLimits{
					MaxOrderNotional: chooseFloat(cfg.Risk.MaxOrderNotional, tc.Risk.MaxOrderNotional),
					MaxDailyNotional: chooseFloat(cfg.Risk.MaxDailyNotional, tc.Risk.MaxDailyNotional),
					MaxDailyOrders:   chooseInt(cfg.Risk.MaxDailyOrders, tc.Risk.MaxDailyOrders),
					MaxSlippageBps:   chooseFloat(cfg.Risk.MaxSlippageBps, tc.Risk.MaxSlippageBps),
					MaxLadderRungs:   chooseInt(cfg.Risk.MaxLadderRungs, tc.Risk.MaxLadderRungs),
					BlockedPairs:     chooseStringSlice(cfg.Risk.BlockedPairs, tc.Risk.BlockedPairs),
				},
				Rate: model.RateLimitConfig{
					QPS:   chooseFloat(defaultTenantQPS, tc.RateQPS),
					Burst: chooseInt(defaultTenantBurst, tc.RateBurst),
				},
			})
		}
		return tm
	}

	// 单租户模式：以 auth.api_key 作为默认租户
	if cfg.Auth.APIKey != "" {
		tenant := &model.Tenant{
			ID:     "default-tenant",
			Name:   "Default Desk",
			APIKey: cfg.Auth.APIKey,
			Risk: model.RiskLimits{
				MaxOrderNotional: cfg.Risk.MaxOrderNotional,
				MaxDailyNotional: cfg.Risk.MaxDailyNotional,
				MaxDailyOrders:   cfg.Risk.MaxDailyOrders,
				MaxSlippageBps:   cfg.Risk.MaxSlippageBps,
				MaxLadderRungs:   cfg.Risk.MaxLadderRungs,
				BlockedPairs:     cfg.Risk.BlockedPairs,
			},
			Rate: model.RateLimitConfig{QPS: defaultTenantQPS, Burst: defaultTenantBurst},
		}
		tm.RegisterTenant(tenant)
		tm.defaultTenant = tenant
	}

	return tm
}

func (tm *TenantManager) RegisterTenant(t *model.Tenant) {
	if t == nil {
		return
	}
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.tenants[t.APIKey] = t

	// QPS 为 0 表示不限流
	limit := rate.Limit(t.Rate.QPS)
	if limit == 0 {
		limit = rate.Inf
	}
	burst := t.Rate.Burst
	if burst == 0 {
		burst = 1
	}
	tm.limiters[t.ID] = rate.NewLimiter(limit, burst)
}

func (tm *TenantManager) ReplaceTenant(t *model.Tenant) {
	tm.RemoveTenantByID(t.ID)
	tm.RegisterTenant(t)
}

func (tm *TenantManager) RemoveTenantByID(id string) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	for key, tenant := range tm.tenants {
		if tenant != nil && tenant.ID == id {
			delete(tm.tenants, key)
			delete(tm.limiters, tenant.ID)
		}
	}
}

func (tm *TenantManager) GetTenantByID(id string) (*model.Tenant, bool) {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	for _, tenant := range tm.tenants {
		if tenant != nil && tenant.ID == id {
			return tenant, true
		}
	}
	return nil, false
}

func (tm *TenantManager) ListTenants() []*model.Tenant {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	results := make([]*model.Tenant, 0, len(tm.tenants))
	seen := make(map[string]struct{})
	for _, tenant := range tm.tenants {
		if tenant == nil {
			continue
		}
		if _, ok := seen[tenant.ID]; ok {
			continue
		}
		seen[tenant.ID] = struct{}{}
		results = append(results, tenant)
	}
	return results
}

func (tm *TenantManager) GetTenantByApiKey(apiKey string) (*model.Tenant, bool) {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	t, ok := tm.tenants[apiKey]
	return t, ok
}

// GetTenantByApiKeyWithFallback 内存未命中时回源数据库并缓存
func (tm *TenantManager) GetTenantByApiKeyWithFallback(ctx context.Context, apiKey string) (*model.Tenant, bool) {
	if t, ok := tm.GetTenantByApiKey(apiKey); ok {
		return t, true
	}
	if tm.repo == nil {
		return nil, false
	}
	t, err := tm.repo.GetByApiKey(ctx, apiKey)
	if err != nil || t == nil {
		return nil, false
	}
	tm.RegisterTenant(t)
	return t, true
}

func (tm *TenantManager) DefaultTenant() *model.Tenant {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return tm.defaultTenant
}

func (tm *TenantManager) GetLimiterForTenant(tenantID string) *rate.Limiter {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return tm.limiters[tenantID]
}

func chooseFloat(base, override float64) float64 {
	if override > 0 {
		return override
	}
	return base
}

func chooseStringSlice(base, override []string) []string {
	if len(override) > 0 {
		return override
	}
	return base
}

func chooseInt(base, override int) int {
	if override > 0 {
		return override
	}
	return base
}
