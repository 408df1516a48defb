package model

import "time"

// Endpoint identifies one of the three operations the pricing/risk gateway exposes.
type Endpoint string

const (
	EndpointBindingQuote Endpoint = "bindingQuote"
	EndpointRiskPlan     Endpoint = "riskPlan"
	EndpointExecution    Endpoint = "execution"
)

var endpointPaths = map[Endpoint]string{
	EndpointBindingQuote: "/api/quotes/binding",
	EndpointRiskPlan:     "/api/risk/plan",
	EndpointExecution:    "/api/execution/orders",
}

// Endpoints lists every endpoint in a stable order.
func Endpoints() []Endpoint {
	return []Endpoint{EndpointBindingQuote, EndpointRiskPlan, EndpointExecution}
}

// Path returns the fixed URL path of the endpoint, or "" for an unknown value.
func (e Endpoint) Path() string {
	return endpointPaths[e]
}

func (e Endpoint) Valid() bool {
	_, ok := endpointPaths[e]
	return ok
}

// GatewayEvent is a downstream domain event the gateway attaches to some responses
// (a quote becoming binding, a hedge being placed).
type GatewayEvent struct {
	Type       string    `json:"type"`
	ID         string    `json:"id"`
	OccurredAt time.Time `json:"occurred_at"`
}
