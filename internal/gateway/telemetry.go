package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fxhedge/hedgegate/internal/model"
	"github.com/fxhedge/hedgegate/internal/schema"
)

func (c *Client) emit(ctx context.Context, endpoint model.Endpoint, status model.TelemetryStatus, latency time.Duration, code string) {
	if c.cfg.EmitTelemetry == nil {
		return
	}
	event := model.TelemetryEvent{
		Endpoint:  endpoint,
		Status:    status,
		LatencyMs: latency.Milliseconds(),
		ErrorCode: code,
		UserID:    UserIDFromContext(ctx),
	}
	if err := c.deliver(ctx, event); err != nil && c.cfg.Environment != "production" {
		c.log.WarnContext(ctx, "gateway telemetry emission failed",
			"endpoint", endpoint, "status", status, "error", err.Error())
	}
}

// deliver runs the user callbacks. A panic in either of them becomes an error.
func (c *Client) deliver(ctx context.Context, event model.TelemetryEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("telemetry panic: %v", r)
		}
	}()
	if c.cfg.GetUserID != nil {
		if id := c.cfg.GetUserID(ctx); id != "" {
			event.UserID = id
		}
	}
	event.Timestamp = c.cfg.Now().UTC()
	return c.cfg.EmitTelemetry(ctx, event)
}

func asSchemaError(err error, target **schema.Error) bool {
	return errors.As(err, target)
}
