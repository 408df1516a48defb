// Package gateway is the resilient client of the pricing/risk/execution gateway.
//
// Every call validates its request, POSTs it as JSON and validates the response.
// 5xx and 429 responses and transport failures are retried with capped exponential
// backoff. Each HTTP attempt produces exactly one tracing span and one telemetry event.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/fxhedge/hedgegate/internal/config"
	"github.com/fxhedge/hedgegate/internal/contract"
	"github.com/fxhedge/hedgegate/internal/model"
	"github.com/fxhedge/hedgegate/internal/pkg/logger"
	"github.com/fxhedge/hedgegate/internal/schema"
)

const tracerName = "github.com/fxhedge/hedgegate/internal/gateway"

// Doer sends one HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type DoerFunc func(req *http.Request) (*http.Response, error)

func (f DoerFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }

// DefaultTransport is used when Config.Transport is nil.
var DefaultTransport Doer = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     90 * time.Second,
	},
	Timeout: 10 * time.Second,
}

// TelemetryFunc receives one event per HTTP attempt. Errors and panics are
// logged and otherwise ignored.
type TelemetryFunc func(ctx context.Context, event model.TelemetryEvent) error

type Config struct {
	BaseURL      string
	PollInterval time.Duration // backoff unit
	MaxBackoff   time.Duration // ceiling of a single retry delay
	RetryLimit   int           // attempts per call, including the first

	Transport     Doer
	Tracer        trace.Tracer
	Propagator    propagation.TextMapPropagator // optional, injects trace headers
	EmitTelemetry TelemetryFunc
	GetUserID     func(ctx context.Context) string
	Logger        *slog.Logger
	Environment   string // "production" silences telemetry warnings

	Sleep func(ctx context.Context, d time.Duration) error
	Now   func() time.Time
}

// FromGatewayConfig converts resolved deployment settings into a client Config.
func FromGatewayConfig(gc config.GatewayConfig) Config {
	return Config{
		BaseURL:      gc.BaseURL,
		PollInterval: time.Duration(gc.PollIntervalMs) * time.Millisecond,
		MaxBackoff:   time.Duration(gc.MaxBackoffMs) * time.Millisecond,
		RetryLimit:   gc.RetryLimit,
	}
}

// Merge layers explicit over base: every non-zero field of explicit wins.
func Merge(explicit, base Config) Config {
	out := base
	if explicit.BaseURL != "" {
		out.BaseURL = explicit.BaseURL
	}
	if explicit.PollInterval != 0 {
		out.PollInterval = explicit.PollInterval
	}
	if explicit.MaxBackoff != 0 {
		out.MaxBackoff = explicit.MaxBackoff
	}
	if explicit.RetryLimit != 0 {
		out.RetryLimit = explicit.RetryLimit
	}
	if explicit.Transport != nil {
		out.Transport = explicit.Transport
	}
	if explicit.Tracer != nil {
		out.Tracer = explicit.Tracer
	}
	if explicit.Propagator != nil {
		out.Propagator = explicit.Propagator
	}
	if explicit.EmitTelemetry != nil {
		out.EmitTelemetry = explicit.EmitTelemetry
	}
	if explicit.GetUserID != nil {
		out.GetUserID = explicit.GetUserID
	}
	if explicit.Logger != nil {
		out.Logger = explicit.Logger
	}
	if explicit.Environment != "" {
		out.Environment = explicit.Environment
	}
	if explicit.Sleep != nil {
		out.Sleep = explicit.Sleep
	}
	if explicit.Now != nil {
		out.Now = explicit.Now
	}
	return out
}

// Client is safe for concurrent use. Its configuration is fixed at construction.
type Client struct {
	cfg Config
	log *slog.Logger
}

// New builds a client whose unset fields come from the process environment.
func New(cfg Config) (*Client, error) {
	return NewWithEnv(cfg, config.EnvMap(os.Environ()))
}

// NewWithEnv is New with an explicit environment map.
func NewWithEnv(cfg Config, env map[string]string) (*Client, error) {
	resolved := Merge(cfg, FromGatewayConfig(config.ReadGatewayConfig(env)))
	if resolved.Transport == nil {
		resolved.Transport = DefaultTransport
	}
	if resolved.Transport == nil {
		return nil, ErrNoTransport
	}
	if resolved.Tracer == nil {
		resolved.Tracer = noop.NewTracerProvider().Tracer(tracerName)
	}
	if resolved.RetryLimit < 1 {
		resolved.RetryLimit = 1
	}
	if resolved.Sleep == nil {
		resolved.Sleep = sleepContext
	}
	if resolved.Now == nil {
		resolved.Now = time.Now
	}
	log := resolved.Logger
	if log == nil {
		log = logger.Get()
	}
	return &Client{cfg: resolved, log: log.With("component", "gateway")}, nil
}

// Config returns a copy of the resolved configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// RequestBindingQuote asks for an executable quote. input may be a
// model.QuoteRequest or any JSON-shaped value; numeric strings are coerced.
func (c *Client) RequestBindingQuote(ctx context.Context, input any, opts ...RequestOption) (*model.BindingQuoteResponse, error) {
	req, err := schema.ParseValue(contract.QuoteRequestSchema, input)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", model.EndpointBindingQuote, err)
	}
	return execute(ctx, c, model.EndpointBindingQuote, body, contract.BindingQuoteResponseSchema, opts)
}

func (c *Client) FetchRiskPlan(ctx context.Context, input any, opts ...RequestOption) (*model.RiskPlanResponse, error) {
	req, err := schema.ParseValue(contract.RiskPlanRequestSchema, input)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", model.EndpointRiskPlan, err)
	}
	return execute(ctx, c, model.EndpointRiskPlan, body, contract.RiskPlanResponseSchema, opts)
}

// SubmitExecutionOrder places a hedge. due_date goes on the wire as YYYY-MM-DD.
func (c *Client) SubmitExecutionOrder(ctx context.Context, input any, opts ...RequestOption) (*model.ExecutionOrderResponse, error) {
	req, err := schema.ParseValue(contract.ExecutionOrderRequestSchema, input)
	if err != nil {
		return nil, err
	}
	body, err := contract.MarshalExecutionOrder(req)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", model.EndpointExecution, err)
	}
	return execute(ctx, c, model.EndpointExecution, body, contract.ExecutionOrderResponseSchema, opts)
}

func execute[T any](ctx context.Context, c *Client, endpoint model.Endpoint, body []byte, resp schema.Schema[T], opts []RequestOption) (*T, error) {
	url := strings.TrimRight(c.cfg.BaseURL, "/") + endpoint.Path()
	header := collectOptions(opts).header

	var lastErr error
	for n := 0; n < c.cfg.RetryLimit; n++ {
		out, wait, retry, err := attempt(ctx, c, endpoint, url, body, header, n, resp)
		if err == nil {
			return &out, nil
		}
		lastErr = err
		if !retry {
			return nil, err
		}
		c.log.DebugContext(ctx, "retrying gateway call",
			"endpoint", endpoint, "attempt", n+1, "delay_ms", wait.Milliseconds(), "error", err.Error())
		if serr := c.cfg.Sleep(ctx, wait); serr != nil {
			return nil, fmt.Errorf("gateway %s retry aborted: %w", endpoint, serr)
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("gateway %s request failed", endpoint)
	}
	return nil, lastErr
}

// attempt performs HTTP attempt n (0-based). When retry is true the caller sleeps
// wait and tries again; otherwise err is final.
func attempt[T any](ctx context.Context, c *Client, endpoint model.Endpoint, url string, body []byte, header http.Header, n int, resp schema.Schema[T]) (out T, wait time.Duration, retry bool, err error) {
	last := n == c.cfg.RetryLimit-1
	ctx, span := c.cfg.Tracer.Start(ctx, "gateway."+string(endpoint),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("gateway.endpoint", string(endpoint)),
			attribute.String("gateway.base_url", c.cfg.BaseURL),
			attribute.Int("gateway.attempt", n+1),
		))
	defer func() {
		retryCount := n
		if retry {
			retryCount = n + 1
		}
		span.SetAttributes(attribute.Int("retry_count", retryCount))
		span.End()
	}()

	start := c.cfg.Now()
	networkFailure := func(cause error) (T, time.Duration, bool, error) {
		var zero T
		nerr := &NetworkError{Endpoint: endpoint, Attempt: n + 1, Err: cause}
		span.SetStatus(codes.Error, nerr.Error())
		span.RecordError(nerr)
		c.emit(ctx, endpoint, model.TelemetryError, c.cfg.Now().Sub(start), ErrorCodeNetwork)
		if last || ctx.Err() != nil {
			return zero, 0, false, nerr
		}
		delay := c.scheduleRetry(span, n)
		return zero, delay, true, nerr
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return networkFailure(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, values := range header {
		req.Header[k] = values
	}
	if c.cfg.Propagator != nil {
		c.cfg.Propagator.Inject(ctx, propagation.HeaderCarrier(req.Header))
	}

	res, err := c.cfg.Transport.Do(req)
	if err != nil {
		return networkFailure(err)
	}
	defer res.Body.Close()

	latency := c.cfg.Now().Sub(start)
	span.SetAttributes(
		attribute.Int("http.status_code", res.StatusCode),
		attribute.Int64("gateway.latency_ms", latency.Milliseconds()),
	)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		payload, readErr := io.ReadAll(res.Body)
		if readErr != nil {
			payload = nil
		}
		gerr := &GatewayError{Endpoint: endpoint, Status: res.StatusCode, Body: payload}
		span.SetStatus(codes.Error, gerr.Error())
		span.RecordError(gerr)
		c.emit(ctx, endpoint, model.TelemetryError, latency, strconv.Itoa(res.StatusCode))
		if IsRetryableStatus(res.StatusCode) && !last && ctx.Err() == nil {
			return out, c.scheduleRetry(span, n), true, gerr
		}
		return out, 0, false, gerr
	}

	payload, err := io.ReadAll(res.Body)
	if err != nil {
		return networkFailure(fmt.Errorf("read response body: %w", err))
	}
	raw, err := schema.DecodeJSON(payload)
	if err != nil {
		return networkFailure(fmt.Errorf("decode response body: %w", err))
	}

	out, err = resp.Parse(raw)
	if err != nil {
		var verr *schema.Error
		if !asSchemaError(err, &verr) {
			verr = &schema.Error{Issues: []schema.Issue{{Code: schema.CodeCustom, Message: err.Error()}}}
		}
		rerr := &ResponseError{Endpoint: endpoint, Err: verr}
		span.SetStatus(codes.Error, rerr.Error())
		span.RecordError(rerr)
		c.emit(ctx, endpoint, model.TelemetryError, latency, ErrorCodeValidation)
		var zero T
		return zero, 0, false, rerr
	}

	c.emit(ctx, endpoint, model.TelemetrySuccess, latency, "")
	span.SetStatus(codes.Ok, "")
	return out, 0, false, nil
}

// scheduleRetry computes the wait before retry n+1 and records it on the span.
func (c *Client) scheduleRetry(span trace.Span, n int) time.Duration {
	wait := Backoff(n+1, c.cfg.PollInterval, c.cfg.MaxBackoff)
	span.SetAttributes(attribute.Int64("retry_delay_ms", wait.Milliseconds()))
	span.AddEvent("gateway.retry", trace.WithAttributes(
		attribute.Int("gateway.next_attempt", n+2),
		attribute.Int64("retry_delay_ms", wait.Milliseconds()),
	))
	return wait
}
