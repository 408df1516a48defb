package model

import "time"

// Exposure is an open FX cash flow the customer wants to hedge.
type Exposure struct {
	CurrencyPair string    `json:"currency_pair"`
	Amount       float64   `json:"amount"`
	DueDate      time.Time `json:"due_date"`
}

// Hedge is an option position already in place.
type Hedge struct {
	CurrencyPair string    `json:"currency_pair"`
	Notional     float64   `json:"notional"`
	Strike       float64   `json:"strike"`
	Expiry       time.Time `json:"expiry"`
}

// RiskPlanRequest is the input of the netting/hedging recommendation.
type RiskPlanRequest struct {
	Quotes    []QuoteRequest `json:"quotes"`
	Exposures []Exposure     `json:"exposures"`
	Hedges    []Hedge        `json:"hedges"`
}

// RiskBucket aggregates exposure for one calendar week.
type RiskBucket struct {
	WeekStart   time.Time `json:"week_start"`
	NetExposure float64   `json:"net_exposure"`
	Hedged      float64   `json:"hedged"`
	Residual    float64   `json:"residual"`
}

// PlanEntry is one recommended trade.
type PlanEntry struct {
	DueDate  time.Time   `json:"due_date"`
	Quantity float64     `json:"quantity"`
	Side     Side        `json:"side"`
	Strike   float64     `json:"strike"`
	Right    OptionRight `json:"right"`
}

// NettingSummary reports what netting saves compared to hedging gross.
type NettingSummary struct {
	Gross      float64 `json:"gross"`
	Net        float64 `json:"net"`
	Savings    float64 `json:"savings"`
	SavingsPct float64 `json:"savings_pct"`
}

type RiskPlanResponse struct {
	Buckets       []RiskBucket   `json:"buckets"`
	ExecutionPlan []PlanEntry    `json:"execution_plan"`
	Netting       NettingSummary `json:"netting"`
}
