package model

import "time"

type TelemetryStatus string

const (
	TelemetrySuccess TelemetryStatus = "success"
	TelemetryError   TelemetryStatus = "error"
)

// TelemetryEvent describes the outcome of a single HTTP attempt against the gateway.
// A call that is retried twice produces three events.
type TelemetryEvent struct {
	Endpoint  Endpoint        `json:"endpoint"`
	Status    TelemetryStatus `json:"status"`
	LatencyMs int64           `json:"latency_ms"`
	ErrorCode string          `json:"error_code,omitempty"` // HTTP status, "network_error" or "validation_error"
	UserID    string          `json:"user_id,omitempty"`
	Timestamp time.Time       `json:"timestamp"` // set at emission time
}

// TelemetryQuery filters stored telemetry. Zero fields match everything.
type TelemetryQuery struct {
	Endpoint Endpoint
	Status   TelemetryStatus
	UserID   string
	From     *time.Time
	To       *time.Time
	Limit    int
}

// NormalizedLimit clamps Limit to 1..1000, defaulting to 100.
func (q TelemetryQuery) NormalizedLimit() int {
	if q.Limit <= 0 || q.Limit > 1000 {
		return 100
	}
	return q.Limit
}

func (q TelemetryQuery) Matches(ev TelemetryEvent) bool {
	if q.Endpoint != "" && ev.Endpoint != q.Endpoint {
		return false
	}
	if q.Status != "" && ev.Status != q.Status {
		return false
	}
	if q.UserID != "" && ev.UserID != q.UserID {
		return false
	}
	if q.From != nil && ev.Timestamp.Before(*q.From) {
		return false
	}
	if q.To != nil && ev.Timestamp.After(*q.To) {
		return false
	}
	return true
}
