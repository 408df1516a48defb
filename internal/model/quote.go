package model

import "time"

// MarketSnapshot is the market data the quote was requested against.
type MarketSnapshot struct {
	Spot         float64   `json:"spot"`
	Vol          float64   `json:"vol"`
	RateDomestic float64   `json:"rate_domestic"`
	RateForeign  float64   `json:"rate_foreign"`
	AsOf         time.Time `json:"as_of"`
}

// QuoteRequest asks the pricing engine for a binding option quote.
type QuoteRequest struct {
	CurrencyPair string         `json:"currency_pair"`
	Notional     float64        `json:"notional"`
	Strike       float64        `json:"strike"`
	TenorDays    int            `json:"tenor_days"`
	MarketData   MarketSnapshot `json:"market_data"`
}

// BindingQuoteResponse is an executable price valid until ValidUntil.
type BindingQuoteResponse struct {
	Price        float64       `json:"price"`
	PricingModel string        `json:"pricing_model"`
	ValidUntil   time.Time     `json:"valid_until"`
	ImpliedVol   float64       `json:"implied_vol"`
	Cap          float64       `json:"cap"`
	SafetyBuffer float64       `json:"safety_buffer"`
	LatencyMs    float64       `json:"latency_ms"`
	Event        *GatewayEvent `json:"event,omitempty"`
}
