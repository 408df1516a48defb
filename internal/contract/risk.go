package contract

import (
	"time"

	"github.com/fxhedge/hedgegate/internal/model"
	"github.com/fxhedge/hedgegate/internal/schema"
)

var ExposureSchema = schema.Object(
	schema.Prop("currency_pair", CurrencyPair, func(e *model.Exposure, v string) { e.CurrencyPair = v }),
	schema.Prop("amount", schema.CoerceNumber(), func(e *model.Exposure, v float64) { e.Amount = v }),
	schema.Prop("due_date", schema.CoerceDate(), func(e *model.Exposure, v time.Time) { e.DueDate = v }),
)

var HedgeSchema = schema.Object(
	schema.Prop("currency_pair", CurrencyPair, func(h *model.Hedge, v string) { h.CurrencyPair = v }),
	schema.Prop("notional", schema.CoerceNumber().Positive(), func(h *model.Hedge, v float64) { h.Notional = v }),
	schema.Prop("strike", schema.CoerceNumber().Positive(), func(h *model.Hedge, v float64) { h.Strike = v }),
	schema.Prop("expiry", schema.CoerceDate(), func(h *model.Hedge, v time.Time) { h.Expiry = v }),
)

// RiskPlanRequestSchema needs at least one exposure; quotes and hedges may be omitted.
var RiskPlanRequestSchema = schema.Object(
	schema.Prop("quotes", schema.Array[model.QuoteRequest](QuoteRequestSchema).Default([]model.QuoteRequest{}), func(r *model.RiskPlanRequest, v []model.QuoteRequest) { r.Quotes = v }),
	schema.Prop("exposures", schema.Array[model.Exposure](ExposureSchema).Nonempty(), func(r *model.RiskPlanRequest, v []model.Exposure) { r.Exposures = v }),
	schema.Prop("hedges", schema.Array[model.Hedge](HedgeSchema).Default([]model.Hedge{}), func(r *model.RiskPlanRequest, v []model.Hedge) { r.Hedges = v }),
)

var RiskBucketSchema = schema.Object(
	schema.Prop("week_start", schema.CoerceDate(), func(b *model.RiskBucket, v time.Time) { b.WeekStart = v }),
	schema.Prop("net_exposure", schema.Number(), func(b *model.RiskBucket, v float64) { b.NetExposure = v }),
	schema.Prop("hedged", schema.Number(), func(b *model.RiskBucket, v float64) { b.Hedged = v }),
	schema.Prop("residual", schema.Number(), func(b *model.RiskBucket, v float64) { b.Residual = v }),
)

var PlanEntrySchema = schema.Object(
	schema.Prop("due_date", schema.CoerceDate(), func(p *model.PlanEntry, v time.Time) { p.DueDate = v }),
	schema.Prop("quantity", schema.Number().Nonnegative(), func(p *model.PlanEntry, v float64) { p.Quantity = v }),
	schema.Prop("side", Side, func(p *model.PlanEntry, v model.Side) { p.Side = v }),
	schema.Prop("strike", schema.Number().Positive(), func(p *model.PlanEntry, v float64) { p.Strike = v }),
	schema.Prop("right", Right, func(p *model.PlanEntry, v model.OptionRight) { p.Right = v }),
)

var NettingSummarySchema = schema.Object(
	schema.Prop("gross", schema.Number(), func(n *model.NettingSummary, v float64) { n.Gross = v }),
	schema.Prop("net", schema.Number(), func(n *model.NettingSummary, v float64) { n.Net = v }),
	schema.Prop("savings", schema.Number(), func(n *model.NettingSummary, v float64) { n.Savings = v }),
	schema.Prop("savings_pct", schema.Number(), func(n *model.NettingSummary, v float64) { n.SavingsPct = v }),
)

var RiskPlanResponseSchema = schema.Object(
	schema.Prop("buckets", schema.Array[model.RiskBucket](RiskBucketSchema), func(r *model.RiskPlanResponse, v []model.RiskBucket) { r.Buckets = v }),
	schema.Prop("execution_plan", schema.Array[model.PlanEntry](PlanEntrySchema), func(r *model.RiskPlanResponse, v []model.PlanEntry) { r.ExecutionPlan = v }),
	schema.Prop("netting", NettingSummarySchema, func(r *model.RiskPlanResponse, v model.NettingSummary) { r.Netting = v }),
)
