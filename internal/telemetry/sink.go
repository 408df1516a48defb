// Package telemetry fans gateway attempt events out to logs, metrics,
// persistent stores and live admin subscribers.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fxhedge/hedgegate/internal/model"
	"github.com/fxhedge/hedgegate/internal/pkg/metrics"
)

// Sink receives one event per gateway HTTP attempt. The method value
// sink.Emit plugs straight into gateway.Config.EmitTelemetry.
type Sink interface {
	Emit(ctx context.Context, event model.TelemetryEvent) error
}

type Func func(ctx context.Context, event model.TelemetryEvent) error

func (f Func) Emit(ctx context.Context, event model.TelemetryEvent) error {
	return f(ctx, event)
}

// Fanout calls every sink, even after a failure or panic, and joins the errors.
type Fanout []Sink

func (f Fanout) Emit(ctx context.Context, event model.TelemetryEvent) error {
	var errs []error
	for _, s := range f {
		if s == nil {
			continue
		}
		if err := emitSafely(ctx, s, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func emitSafely(ctx context.Context, s Sink, event model.TelemetryEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("telemetry sink panic: %v", r)
		}
	}()
	return s.Emit(ctx, event)
}

type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Emit(ctx context.Context, event model.TelemetryEvent) error {
	level := slog.LevelDebug
	if event.Status == model.TelemetryError {
		level = slog.LevelWarn
	}
	s.Logger.Log(ctx, level, "gateway attempt",
		"endpoint", event.Endpoint,
		"status", event.Status,
		"latency_ms", event.LatencyMs,
		"error_code", event.ErrorCode,
		"user_id", event.UserID,
	)
	return nil
}

type PrometheusSink struct{}

func (PrometheusSink) Emit(_ context.Context, event model.TelemetryEvent) error {
	metrics.GatewayAttempts.WithLabelValues(string(event.Endpoint), string(event.Status), event.ErrorCode).Inc()
	metrics.GatewayAttemptLatency.WithLabelValues(string(event.Endpoint)).Observe(float64(event.LatencyMs) / 1000)
	return nil
}

// Store is implemented by the Redis and Postgres telemetry repositories.
type Store interface {
	Insert(ctx context.Context, event model.TelemetryEvent) error
	List(ctx context.Context, q model.TelemetryQuery) ([]model.TelemetryEvent, error)
}

// StoreSink writes events synchronously into a Store.
func StoreSink(store Store) Sink {
	return Func(store.Insert)
}
