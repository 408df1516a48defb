// Package contract declares the request and response schemas of the pricing/risk
// gateway. Requests are coerced (numeric strings, ISO dates) before they go on the
// wire; responses are validated so malformed upstream payloads fail fast.
package contract

import (
	"regexp"
	"strings"
	"time"

	"github.com/fxhedge/hedgegate/internal/model"
	"github.com/fxhedge/hedgegate/internal/schema"
)

var currencyPairPattern = regexp.MustCompile(`^[A-Z]{3}/?[A-Z]{3}$`)

// CurrencyPair accepts "eurusd", "EUR/USD" and similar, normalised to "EURUSD".
var CurrencyPair = schema.Transform[string, string](
	schema.String().Trim().ToUpper().Regex(currencyPairPattern, "currency pair must look like EURUSD or EUR/USD"),
	func(s string) (string, error) { return strings.ReplaceAll(s, "/", ""), nil },
)

var MarketSnapshotSchema = schema.Object(
	schema.Prop("spot", schema.CoerceNumber().Positive(), func(m *model.MarketSnapshot, v float64) { m.Spot = v }),
	schema.Prop("vol", schema.CoerceNumber().Nonnegative(), func(m *model.MarketSnapshot, v float64) { m.Vol = v }),
	schema.Prop("rate_domestic", schema.CoerceNumber(), func(m *model.MarketSnapshot, v float64) { m.RateDomestic = v }),
	schema.Prop("rate_foreign", schema.CoerceNumber(), func(m *model.MarketSnapshot, v float64) { m.RateForeign = v }),
	schema.Prop("as_of", schema.CoerceDate(), func(m *model.MarketSnapshot, v time.Time) { m.AsOf = v }),
)

var QuoteRequestSchema = schema.Object(
	schema.Prop("currency_pair", CurrencyPair, func(q *model.QuoteRequest, v string) { q.CurrencyPair = v }),
	schema.Prop("notional", schema.CoerceNumber().Positive(), func(q *model.QuoteRequest, v float64) { q.Notional = v }),
	schema.Prop("strike", schema.CoerceNumber().Positive(), func(q *model.QuoteRequest, v float64) { q.Strike = v }),
	schema.Prop("tenor_days", schema.AsInt(schema.CoerceNumber().Int().Positive()), func(q *model.QuoteRequest, v int) { q.TenorDays = v }),
	schema.Prop("market_data", MarketSnapshotSchema, func(q *model.QuoteRequest, v model.MarketSnapshot) { q.MarketData = v }),
)

var GatewayEventSchema = schema.Object(
	schema.Prop("type", schema.String().Nonempty(), func(e *model.GatewayEvent, v string) { e.Type = v }),
	schema.Prop("id", schema.String().Nonempty(), func(e *model.GatewayEvent, v string) { e.ID = v }),
	schema.Prop("occurred_at", schema.CoerceDate(), func(e *model.GatewayEvent, v time.Time) { e.OccurredAt = v }),
)

var BindingQuoteResponseSchema = schema.Object(
	schema.Prop("price", schema.Number().Nonnegative(), func(r *model.BindingQuoteResponse, v float64) { r.Price = v }),
	schema.Prop("pricing_model", schema.String().Nonempty(), func(r *model.BindingQuoteResponse, v string) { r.PricingModel = v }),
	schema.Prop("valid_until", schema.CoerceDate(), func(r *model.BindingQuoteResponse, v time.Time) { r.ValidUntil = v }),
	schema.Prop("implied_vol", schema.Number().Nonnegative(), func(r *model.BindingQuoteResponse, v float64) { r.ImpliedVol = v }),
	schema.Prop("cap", schema.Number(), func(r *model.BindingQuoteResponse, v float64) { r.Cap = v }),
	schema.Prop("safety_buffer", schema.Number(), func(r *model.BindingQuoteResponse, v float64) { r.SafetyBuffer = v }),
	schema.Prop("latency_ms", schema.Number().Nonnegative(), func(r *model.BindingQuoteResponse, v float64) { r.LatencyMs = v }),
	schema.Prop("event", schema.Nullish[model.GatewayEvent](GatewayEventSchema), func(r *model.BindingQuoteResponse, v *model.GatewayEvent) { r.Event = v }),
)
