package contract

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fxhedge/hedgegate/internal/model"
	"github.com/fxhedge/hedgegate/internal/schema"
)

func quoteInput() map[string]any {
	return map[string]any{
		"currency_pair": "eur/usd",
		"notional":      "1000000",
		"strike":        1.1,
		"tenor_days":    "30",
		"market_data": map[string]any{
			"spot":          "1.0850",
			"vol":           0.07,
			"rate_domestic": 0.05,
			"rate_foreign":  "0.035",
			"as_of":         "2025-04-01T09:00:00Z",
		},
	}
}

func TestQuoteRequestCoercion(t *testing.T) {
	q, err := QuoteRequestSchema.Parse(quoteInput())
	require.NoError(t, err)
	assert.Equal(t, "EURUSD", q.CurrencyPair)
	assert.Equal(t, 1000000.0, q.Notional)
	assert.Equal(t, 30, q.TenorDays)
	assert.Equal(t, 1.085, q.MarketData.Spot)
	assert.Equal(t, 0.035, q.MarketData.RateForeign)
	assert.Equal(t, time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC), q.MarketData.AsOf)
}

func TestQuoteRequestRejectsBadInput(t *testing.T) {
	in := quoteInput()
	in["tenor_days"] = "7.5"
	_, err := QuoteRequestSchema.Parse(in)
	require.Error(t, err)
	issues := schema.Issues(err)
	require.Len(t, issues, 1)
	assert.Equal(t, []string{"tenor_days"}, issues[0].Path)

	in = quoteInput()
	in["currency_pair"] = "EURO"
	_, err = QuoteRequestSchema.Parse(in)
	assert.Error(t, err)

	in = quoteInput()
	in["market_data"].(map[string]any)["as_of"] = "yesterday"
	_, err = QuoteRequestSchema.Parse(in)
	require.Error(t, err)
	assert.Equal(t, []string{"market_data", "as_of"}, schema.Issues(err)[0].Path)
	assert.Equal(t, schema.CodeInvalidDate, schema.Issues(err)[0].Code)
}

func TestIntegerFieldsRejectOverflow(t *testing.T) {
	in := quoteInput()
	in["tenor_days"] = "1e30"
	_, err := QuoteRequestSchema.Parse(in)
	require.Error(t, err)
	issues := schema.Issues(err)
	require.Len(t, issues, 1)
	assert.Equal(t, []string{"tenor_days"}, issues[0].Path)
	assert.Equal(t, schema.CodeTooBig, issues[0].Code)

	in = quoteInput()
	in["tenor_days"] = 9.3e18
	_, err = QuoteRequestSchema.Parse(in)
	require.Error(t, err)
	assert.Equal(t, schema.CodeTooBig, schema.Issues(err)[0].Code)

	_, err = ExecutionOrderRequestSchema.Parse(map[string]any{
		"due_date": "2025-05-01", "quantity": 1, "side": "BUY", "strike": 1.1, "right": "CALL", "limit_price": 0.01,
		"ladder": map[string]any{"rungs": "1e30"},
	})
	require.Error(t, err)
	issues = schema.Issues(err)
	require.Len(t, issues, 1)
	assert.Equal(t, []string{"ladder", "rungs"}, issues[0].Path)
	assert.Equal(t, schema.CodeTooBig, issues[0].Code)
}

func TestBindingQuoteResponse(t *testing.T) {
	raw, err := schema.DecodeJSON([]byte(`{
		"price": 12500.5, "pricing_model": "garman-kohlhagen", "valid_until": "2025-04-01T09:05:00Z",
		"implied_vol": 0.071, "cap": 1.2, "safety_buffer": 0.02, "latency_ms": 18,
		"event": {"type": "quote.bound", "id": "evt_1", "occurred_at": "2025-04-01T09:00:01Z"}
	}`))
	require.NoError(t, err)
	res, err := BindingQuoteResponseSchema.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, 12500.5, res.Price)
	require.NotNil(t, res.Event)
	assert.Equal(t, "quote.bound", res.Event.Type)

	raw, err = schema.DecodeJSON([]byte(`{"price": "12500.5", "pricing_model": "gk", "valid_until": "2025-04-01T09:05:00Z",
		"implied_vol": 0.07, "cap": 1, "safety_buffer": 0, "latency_ms": 1}`))
	require.NoError(t, err)
	_, err = BindingQuoteResponseSchema.Parse(raw)
	require.Error(t, err, "responses are not coerced")
	assert.Equal(t, []string{"price"}, schema.Issues(err)[0].Path)
}

func TestRiskPlanRequestDefaults(t *testing.T) {
	req, err := RiskPlanRequestSchema.Parse(map[string]any{
		"exposures": []any{
			map[string]any{"currency_pair": "GBPUSD", "amount": "-250000", "due_date": "2025-06-30"},
		},
	})
	require.NoError(t, err)
	assert.Empty(t, req.Quotes)
	assert.NotNil(t, req.Hedges)
	require.Len(t, req.Exposures, 1)
	assert.Equal(t, -250000.0, req.Exposures[0].Amount)

	_, err = RiskPlanRequestSchema.Parse(map[string]any{"exposures": []any{}})
	require.Error(t, err)
	assert.Equal(t, schema.CodeTooSmall, schema.Issues(err)[0].Code)
}

func TestRiskPlanResponse(t *testing.T) {
	raw, err := schema.DecodeJSON([]byte(`{
		"buckets": [{"week_start": "2025-06-23", "net_exposure": -250000, "hedged": 100000, "residual": -150000}],
		"execution_plan": [{"due_date": "2025-06-30", "quantity": 150000, "side": "BUY", "strike": 1.27, "right": "CALL"}],
		"netting": {"gross": 400000, "net": 250000, "savings": 150000, "savings_pct": 37.5}
	}`))
	require.NoError(t, err)
	plan, err := RiskPlanResponseSchema.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, model.SideBuy, plan.ExecutionPlan[0].Side)
	assert.Equal(t, model.RightCall, plan.ExecutionPlan[0].Right)
	assert.Equal(t, 37.5, plan.Netting.SavingsPct)
}

func TestExecutionOrderDefaults(t *testing.T) {
	req, err := ExecutionOrderRequestSchema.Parse(map[string]any{
		"due_date":    "2025-05-01",
		"quantity":    "50000",
		"side":        "SELL",
		"strike":      1.09,
		"right":       "PUT",
		"limit_price": 0.0125,
	})
	require.NoError(t, err)
	assert.Equal(t, model.LadderParams{Rungs: 1}, req.Ladder)
	assert.Zero(t, req.SlippageBps)
	assert.False(t, req.DryRun)

	_, err = ExecutionOrderRequestSchema.Parse(map[string]any{
		"due_date": "2025-05-01", "quantity": 1, "side": "HOLD", "strike": 1, "right": "PUT", "limit_price": 0,
	})
	require.Error(t, err)
	assert.Equal(t, schema.CodeInvalidEnum, schema.Issues(err)[0].Code)
}

func TestTypedExecutionOrderWithoutLadderGetsSingleRung(t *testing.T) {
	req, err := schema.ParseValue(ExecutionOrderRequestSchema, model.ExecutionOrderRequest{
		DueDate:    time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		Quantity:   10,
		Side:       model.SideBuy,
		Strike:     1.1,
		Right:      model.RightCall,
		LimitPrice: 0.01,
	})
	require.NoError(t, err)
	assert.Equal(t, model.LadderParams{Rungs: 1}, req.Ladder)

	req, err = schema.ParseValue(ExecutionOrderRequestSchema, model.ExecutionOrderRequest{
		DueDate:    time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		Quantity:   10,
		Side:       model.SideBuy,
		Strike:     1.1,
		Right:      model.RightCall,
		LimitPrice: 0.01,
		Ladder:     model.LadderParams{Rungs: 3, SpacingBps: 4},
	})
	require.NoError(t, err)
	assert.Equal(t, model.LadderParams{Rungs: 3, SpacingBps: 4}, req.Ladder)
}

func TestMarshalExecutionOrderSendsDateOnly(t *testing.T) {
	body, err := MarshalExecutionOrder(model.ExecutionOrderRequest{
		DueDate:  time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		Quantity: 10,
		Side:     model.SideBuy,
		Strike:   1.1,
		Right:    model.RightCall,
		Ladder:   model.LadderParams{Rungs: 2, SpacingBps: 5},
	})
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(body, &wire))
	assert.Equal(t, "2025-05-01", wire["due_date"])
	assert.Equal(t, "BUY", wire["side"])
	assert.Equal(t, map[string]any{"rungs": 2.0, "spacing_bps": 5.0}, wire["ladder"])
}
