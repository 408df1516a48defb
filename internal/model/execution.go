package model

import "time"

type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

type OptionRight string

const (
	RightCall OptionRight = "CALL"
	RightPut  OptionRight = "PUT"
)

// LadderParams splits an order into rungs spaced SpacingBps apart.
type LadderParams struct {
	Rungs      int     `json:"rungs"`
	SpacingBps float64 `json:"spacing_bps"`
}

// ExecutionOrderRequest places an option hedge with the execution venue.
// DueDate travels on the wire as a bare YYYY-MM-DD date.
type ExecutionOrderRequest struct {
	DueDate     time.Time    `json:"due_date"`
	Quantity    float64      `json:"quantity"`
	Side        Side         `json:"side"`
	Strike      float64      `json:"strike"`
	Right       OptionRight  `json:"right"`
	LimitPrice  float64      `json:"limit_price"`
	SlippageBps float64      `json:"slippage_bps"`
	Ladder      LadderParams `json:"ladder,omitzero"`
	DryRun      bool         `json:"dry_run"`
}

// PlacedOrder is one order record returned by the venue.
type PlacedOrder struct {
	OrderID    string    `json:"order_id"`
	Status     string    `json:"status"`
	Quantity   float64   `json:"quantity"`
	Strike     float64   `json:"strike"`
	LimitPrice float64   `json:"limit_price"`
	PlacedAt   time.Time `json:"placed_at"`
}

type ExecutionOrderResponse struct {
	Orders []PlacedOrder `json:"orders"`
	Event  *GatewayEvent `json:"event,omitempty"`
}
