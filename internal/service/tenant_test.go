package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/fxhedge/hedgegate/internal/config"
	"github.com/fxhedge/hedgegate/internal/model"
	"github.com/fxhedge/hedgegate/internal/pkg/apperrors"
	"github.com/fxhedge/hedgegate/internal/repository"
)

type stubTenantRepo struct {
	byKey map[string]*model.Tenant
	calls int
}

func (s *stubTenantRepo) GetByApiKey(_ context.Context, apiKey string) (*model.Tenant, error) {
	s.calls++
	if t, ok := s.byKey[apiKey]; ok {
		return t, nil
	}
	return nil, repository.ErrTenantNotFound
}

func TestTenantManagerMergesGlobalRisk(t *testing.T) {
	cfg := &config.Config{
		Risk: config.RiskConfig{MaxOrderNotional: 1000, MaxSlippageBps: 50, BlockedPairs: []string{"USDRUB"}},
		Tenants: []config.TenantConfig{
			{ID: "a", APIKey: "ka", Risk: config.RiskConfig{MaxOrderNotional: 5000}},
			{ID: "b", APIKey: "kb", RateQPS: 2, RateBurst: 4},
		},
	}
	tm := NewTenantManager(cfg, nil)

	a, ok := tm.GetTenantByApiKey("ka")
	require.True(t, ok)
	assert.Equal(t, 5000.0, a.Risk.MaxOrderNotional)
	assert.Equal(t, 50.0, a.Risk.MaxSlippageBps)
	assert.Equal(t, []string{"USDRUB"}, a.Risk.BlockedPairs)
	assert.Equal(t, model.RateLimitConfig{QPS: 10, Burst: 20}, a.Rate)

	b, ok := tm.GetTenantByApiKey("kb")
	require.True(t, ok)
	assert.Equal(t, 1000.0, b.Risk.MaxOrderNotional)
	limiter := tm.GetLimiterForTenant("b")
	require.NotNil(t, limiter)
	assert.Equal(t, rate.Limit(2), limiter.Limit())
	assert.Equal(t, 4, limiter.Burst())

	assert.Nil(t, tm.DefaultTenant())
	assert.Len(t, tm.ListTenants(), 2)
}

func TestTenantManagerDefaultTenant(t *testing.T) {
	tm := NewTenantManager(&config.Config{Auth: config.AuthConfig{APIKey: "sk-desk"}}, nil)
	def := tm.DefaultTenant()
	require.NotNil(t, def)
	assert.Equal(t, "sk-desk", def.APIKey)

	empty := NewTenantManager(&config.Config{}, nil)
	assert.Nil(t, empty.DefaultTenant())
}

func TestTenantManagerFallsBackToRepo(t *testing.T) {
	repo := &stubTenantRepo{byKey: map[string]*model.Tenant{"kdb": {ID: "db", APIKey: "kdb"}}}
	tm := NewTenantManager(&config.Config{}, repo)

	got, ok := tm.GetTenantByApiKeyWithFallback(context.Background(), "kdb")
	require.True(t, ok)
	assert.Equal(t, "db", got.ID)
	_, ok = tm.GetTenantByApiKeyWithFallback(context.Background(), "kdb")
	assert.True(t, ok)
	assert.Equal(t, 1, repo.calls, "second lookup is served from memory")

	_, ok = tm.GetTenantByApiKeyWithFallback(context.Background(), "missing")
	assert.False(t, ok)
	assert.Equal(t, rate.Inf, tm.GetLimiterForTenant("db").Limit())
}

func TestTenantServiceInMemoryLifecycle(t *testing.T) {
	tm := NewTenantManager(&config.Config{}, nil)
	svc := NewTenantService(tm, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, TenantCreateRequest{ID: " ", APIKey: "k"})
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrInvalidRequest, appErr.Type)

	created, err := svc.Create(ctx, TenantCreateRequest{ID: "ops", Name: "Ops", APIKey: "k-ops"})
	require.NoError(t, err)
	assert.Equal(t, "ops", created.ID)

	_, err = svc.Create(ctx, TenantCreateRequest{ID: "dup", APIKey: "k-ops"})
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrConflict, appErr.Type)

	newKey := "k-ops-2"
	updated, err := svc.Update(ctx, "ops", TenantUpdateRequest{APIKey: &newKey, Risk: &model.RiskLimits{MaxDailyOrders: 3}})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Risk.MaxDailyOrders)
	_, ok := tm.GetTenantByApiKey("k-ops")
	assert.False(t, ok, "old key is unregistered")
	_, ok = tm.GetTenantByApiKey("k-ops-2")
	assert.True(t, ok)

	require.NoError(t, svc.Delete(ctx, "ops"))
	_, err = svc.Get(ctx, "ops")
	assert.ErrorIs(t, err, repository.ErrTenantNotFound)
	_, err = svc.Update(ctx, "ops", TenantUpdateRequest{})
	assert.ErrorIs(t, err, repository.ErrTenantNotFound)
}
