package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fxhedge/hedgegate/internal/gateway"
	"github.com/fxhedge/hedgegate/internal/model"
	"github.com/fxhedge/hedgegate/internal/pkg/apperrors"
	"github.com/fxhedge/hedgegate/internal/schema"
)

type fakeGateway struct {
	quotes   []any
	plans    []any
	orders   []any
	orderErr error
}

func (f *fakeGateway) RequestBindingQuote(_ context.Context, input any, _ ...gateway.RequestOption) (*model.BindingQuoteResponse, error) {
	f.quotes = append(f.quotes, input)
	return &model.BindingQuoteResponse{Price: 0.0123, PricingModel: "GK"}, nil
}

func (f *fakeGateway) FetchRiskPlan(_ context.Context, input any, _ ...gateway.RequestOption) (*model.RiskPlanResponse, error) {
	f.plans = append(f.plans, input)
	return &model.RiskPlanResponse{}, nil
}

func (f *fakeGateway) SubmitExecutionOrder(_ context.Context, input any, _ ...gateway.RequestOption) (*model.ExecutionOrderResponse, error) {
	f.orders = append(f.orders, input)
	if f.orderErr != nil {
		return nil, f.orderErr
	}
	return &model.ExecutionOrderResponse{Orders: []model.PlacedOrder{{OrderID: "o-1", Status: "accepted"}}}, nil
}

func executionInput(limit string, dryRun bool) map[string]any {
	return map[string]any{
		"due_date":    "2025-09-30",
		"quantity":    "250000",
		"side":        "SELL",
		"strike":      1.085,
		"right":       "PUT",
		"limit_price": limit,
		"dry_run":     dryRun,
	}
}

func TestHedgeServiceDisabled(t *testing.T) {
	svc := NewHedgeService(nil, nil)
	assert.False(t, svc.Enabled())

	_, err := svc.Plan(context.Background(), nil, map[string]any{})
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrGatewayDisabled, appErr.Type)
	assert.Equal(t, 503, appErr.HTTPStatus)
}

func TestHedgeServiceQuoteValidatesAndChecksPairs(t *testing.T) {
	fake := &fakeGateway{}
	svc := NewHedgeService(fake, NewRiskEngine(NewRiskUsageStore()))
	tenant := riskTenant(model.RiskLimits{BlockedPairs: []string{"USDTRY"}})
	quote := func(pair string) map[string]any {
		return map[string]any{
			"currency_pair": pair,
			"notional":      "1000000",
			"strike":        "1.10",
			"tenor_days":    "30",
			"market_data": map[string]any{
				"spot": 1.09, "vol": 0.08, "rate_domestic": 0.05, "rate_foreign": 0.03, "as_of": "2025-05-01",
			},
		}
	}

	resp, err := svc.Quote(context.Background(), tenant, quote("eur/usd"))
	require.NoError(t, err)
	assert.Equal(t, "GK", resp.PricingModel)
	require.Len(t, fake.quotes, 1)
	sent := fake.quotes[0].(model.QuoteRequest)
	assert.Equal(t, "EURUSD", sent.CurrencyPair)
	assert.Equal(t, 30, sent.TenorDays)

	_, err = svc.Quote(context.Background(), tenant, quote("USD/TRY"))
	assertRiskReject(t, err, "USDTRY")

	_, err = svc.Quote(context.Background(), tenant, map[string]any{"currency_pair": "EURUSD"})
	var verr *schema.Error
	require.True(t, errors.As(err, &verr))
	assert.Len(t, fake.quotes, 1)
}

func TestHedgeServiceExecuteRecordsUsage(t *testing.T) {
	fake := &fakeGateway{}
	store := NewRiskUsageStore()
	svc := NewHedgeService(fake, NewRiskEngine(store))
	tenant := riskTenant(model.RiskLimits{MaxOrderNotional: 10000})
	ctx := context.Background()

	resp, err := svc.Execute(ctx, tenant, executionInput("0.02", false))
	require.NoError(t, err)
	require.Len(t, resp.Orders, 1)

	sent := fake.orders[0].(model.ExecutionOrderRequest)
	assert.Equal(t, time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC), sent.DueDate)
	assert.Equal(t, 1, sent.Ladder.Rungs)

	orders, volume, err := store.GetDailyUsage(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, orders)
	assert.InDelta(t, 5000.0, volume, 1e-9)
}

func TestHedgeServiceExecuteRejectsBeforeGateway(t *testing.T) {
	fake := &fakeGateway{}
	svc := NewHedgeService(fake, NewRiskEngine(NewRiskUsageStore()))
	tenant := riskTenant(model.RiskLimits{MaxOrderNotional: 1000})

	_, err := svc.Execute(context.Background(), tenant, executionInput("0.02", false))
	assertRiskReject(t, err, "order notional")
	assert.Empty(t, fake.orders)
}

func TestHedgeServiceDryRunSkipsRisk(t *testing.T) {
	fake := &fakeGateway{}
	store := NewRiskUsageStore()
	svc := NewHedgeService(fake, NewRiskEngine(store))
	tenant := riskTenant(model.RiskLimits{MaxOrderNotional: 1})

	_, err := svc.Execute(context.Background(), tenant, executionInput("0.02", true))
	require.NoError(t, err)
	assert.Len(t, fake.orders, 1)

	orders, _, _ := store.GetDailyUsage(context.Background(), tenant.ID)
	assert.Zero(t, orders)
}

func TestHedgeServiceFailedSubmitDoesNotCountUsage(t *testing.T) {
	upstream := &gateway.GatewayError{Endpoint: model.EndpointExecution, Status: 503}
	fake := &fakeGateway{orderErr: upstream}
	store := NewRiskUsageStore()
	svc := NewHedgeService(fake, NewRiskEngine(store))

	_, err := svc.Execute(context.Background(), riskTenant(model.RiskLimits{}), executionInput("0.02", false))
	assert.ErrorIs(t, err, upstream)

	orders, _, _ := store.GetDailyUsage(context.Background(), "desk")
	assert.Zero(t, orders)
}
