package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fxhedge/hedgegate/internal/model"
	"github.com/fxhedge/hedgegate/internal/pkg/apperrors"
)

func riskTenant(limits model.RiskLimits) *model.Tenant {
	return &model.Tenant{ID: "desk", APIKey: "gk", Risk: limits}
}

func order(qty, limit float64) model.ExecutionOrderRequest {
	return model.ExecutionOrderRequest{
		DueDate:    time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		Quantity:   qty,
		Side:       model.SideBuy,
		Strike:     1.1,
		Right:      model.RightCall,
		LimitPrice: limit,
		Ladder:     model.LadderParams{Rungs: 1},
	}
}

func assertRiskReject(t *testing.T, err error, contains string) {
	t.Helper()
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrRiskReject, appErr.Type)
	assert.Contains(t, appErr.Message, contains)
}

func TestOrderNotionalFallsBackToStrike(t *testing.T) {
	assert.Equal(t, "2500", OrderNotional(order(100000, 0.025)).String())
	assert.Equal(t, "110000", OrderNotional(order(100000, 0)).String())
}

func TestCheckOrderPerOrderLimits(t *testing.T) {
	engine := NewRiskEngine(NewRiskUsageStore())
	tenant := riskTenant(model.RiskLimits{MaxOrderNotional: 5000, MaxSlippageBps: 25, MaxLadderRungs: 3})
	ctx := context.Background()

	require.NoError(t, engine.CheckOrder(ctx, tenant, order(100000, 0.05)))

	assertRiskReject(t, engine.CheckOrder(ctx, tenant, order(100000, 0.06)), "order notional 6000.00")

	slippy := order(1000, 0.05)
	slippy.SlippageBps = 30
	assertRiskReject(t, engine.CheckOrder(ctx, tenant, slippy), "slippage")

	ladder := order(1000, 0.05)
	ladder.Ladder.Rungs = 4
	assertRiskReject(t, engine.CheckOrder(ctx, tenant, ladder), "ladder of 4 rungs")

	assertRiskReject(t, engine.CheckOrder(ctx, tenant, order(0, 0.05)), "quantity")
}

func TestCheckOrderDailyLimits(t *testing.T) {
	store := NewRiskUsageStore()
	engine := NewRiskEngine(store)
	tenant := riskTenant(model.RiskLimits{MaxDailyNotional: 10000, MaxDailyOrders: 2})
	ctx := context.Background()

	first := order(100000, 0.04)
	require.NoError(t, engine.CheckOrder(ctx, tenant, first))
	require.NoError(t, engine.PostOrderHook(ctx, tenant, first))

	orders, volume, err := store.GetDailyUsage(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, orders)
	assert.InDelta(t, 4000.0, volume, 1e-9)

	assertRiskReject(t, engine.CheckOrder(ctx, tenant, order(100000, 0.07)), "daily notional")

	require.NoError(t, engine.PostOrderHook(ctx, tenant, order(1000, 0.01)))
	assertRiskReject(t, engine.CheckOrder(ctx, tenant, order(1000, 0.01)), "daily order limit")
}

type failingUsage struct{}

func (failingUsage) GetDailyUsage(context.Context, string) (int, float64, error) {
	return 0, 0, errors.New("redis down")
}
func (failingUsage) AddDailyUsage(context.Context, string, int, float64) error { return nil }

func TestCheckOrderUsageErrorIsNotARiskReject(t *testing.T) {
	engine := NewRiskEngine(failingUsage{})
	err := engine.CheckOrder(context.Background(), riskTenant(model.RiskLimits{MaxDailyOrders: 1}), order(1, 1))
	require.Error(t, err)
	var appErr *apperrors.AppError
	assert.False(t, errors.As(err, &appErr))
	assert.Contains(t, err.Error(), "redis down")
}

func TestCheckQuoteBlockedPairs(t *testing.T) {
	engine := NewRiskEngine(NewRiskUsageStore())
	tenant := riskTenant(model.RiskLimits{BlockedPairs: []string{"usd/rub"}})

	assertRiskReject(t, engine.CheckQuote(tenant, model.QuoteRequest{CurrencyPair: "USDRUB"}), "USDRUB")
	assert.NoError(t, engine.CheckQuote(tenant, model.QuoteRequest{CurrencyPair: "EURUSD"}))
}

func TestRiskUsageStoreRollsOverByUTCDay(t *testing.T) {
	store := NewRiskUsageStore()
	day := time.Date(2025, 1, 1, 23, 59, 0, 0, time.UTC)
	store.now = func() time.Time { return day }
	ctx := context.Background()

	require.NoError(t, store.AddDailyUsage(ctx, "desk", 1, 10))
	day = day.Add(2 * time.Minute)
	orders, volume, err := store.GetDailyUsage(ctx, "desk")
	require.NoError(t, err)
	assert.Zero(t, orders)
	assert.Zero(t, volume)
}
