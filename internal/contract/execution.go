package contract

import (
	"encoding/json"
	"time"

	"github.com/fxhedge/hedgegate/internal/model"
	"github.com/fxhedge/hedgegate/internal/schema"
)

var (
	Side  = schema.Enum(model.SideBuy, model.SideSell)
	Right = schema.Enum(model.RightCall, model.RightPut)
)

var LadderSchema = schema.Object(
	schema.Prop("rungs", schema.AsInt(schema.CoerceNumber().Int().Min(1)), func(l *model.LadderParams, v int) { l.Rungs = v }),
	schema.Prop("spacing_bps", schema.CoerceNumber().Nonnegative().Default(0), func(l *model.LadderParams, v float64) { l.SpacingBps = v }),
)

// ExecutionOrderRequestSchema: a missing ladder means a single rung.
var ExecutionOrderRequestSchema = schema.Object(
	schema.Prop("due_date", schema.CoerceDate(), func(r *model.ExecutionOrderRequest, v time.Time) { r.DueDate = v }),
	schema.Prop("quantity", schema.CoerceNumber().Positive(), func(r *model.ExecutionOrderRequest, v float64) { r.Quantity = v }),
	schema.Prop("side", Side, func(r *model.ExecutionOrderRequest, v model.Side) { r.Side = v }),
	schema.Prop("strike", schema.CoerceNumber().Positive(), func(r *model.ExecutionOrderRequest, v float64) { r.Strike = v }),
	schema.Prop("right", Right, func(r *model.ExecutionOrderRequest, v model.OptionRight) { r.Right = v }),
	schema.Prop("limit_price", schema.CoerceNumber().Nonnegative(), func(r *model.ExecutionOrderRequest, v float64) { r.LimitPrice = v }),
	schema.Prop("slippage_bps", schema.CoerceNumber().Nonnegative().Default(0), func(r *model.ExecutionOrderRequest, v float64) { r.SlippageBps = v }),
	schema.Prop("ladder", LadderSchema.Default(model.LadderParams{Rungs: 1}), func(r *model.ExecutionOrderRequest, v model.LadderParams) { r.Ladder = v }),
	schema.Prop("dry_run", schema.Boolean().Default(false), func(r *model.ExecutionOrderRequest, v bool) { r.DryRun = v }),
)

var PlacedOrderSchema = schema.Object(
	schema.Prop("order_id", schema.String().Nonempty(), func(o *model.PlacedOrder, v string) { o.OrderID = v }),
	schema.Prop("status", schema.String().Nonempty(), func(o *model.PlacedOrder, v string) { o.Status = v }),
	schema.Prop("quantity", schema.Number().Nonnegative(), func(o *model.PlacedOrder, v float64) { o.Quantity = v }),
	schema.Prop("strike", schema.Number().Positive(), func(o *model.PlacedOrder, v float64) { o.Strike = v }),
	schema.Prop("limit_price", schema.Number().Nonnegative(), func(o *model.PlacedOrder, v float64) { o.LimitPrice = v }),
	schema.Prop("placed_at", schema.CoerceDate(), func(o *model.PlacedOrder, v time.Time) { o.PlacedAt = v }),
)

var ExecutionOrderResponseSchema = schema.Object(
	schema.Prop("orders", schema.Array[model.PlacedOrder](PlacedOrderSchema), func(r *model.ExecutionOrderResponse, v []model.PlacedOrder) { r.Orders = v }),
	schema.Prop("event", schema.Nullish[model.GatewayEvent](GatewayEventSchema), func(r *model.ExecutionOrderResponse, v *model.GatewayEvent) { r.Event = v }),
)

type executionOrderWire struct {
	model.ExecutionOrderRequest
	DueDate string `json:"due_date"`
}

// MarshalExecutionOrder encodes an order for the wire. due_date is sent as a bare
// YYYY-MM-DD date (UTC calendar day) whatever its time of day.
func MarshalExecutionOrder(req model.ExecutionOrderRequest) ([]byte, error) {
	return json.Marshal(executionOrderWire{
		ExecutionOrderRequest: req,
		DueDate:               req.DueDate.UTC().Format(time.DateOnly),
	})
}
