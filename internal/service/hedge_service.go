package service

import (
	"context"

	"github.com/fxhedge/hedgegate/internal/contract"
	"github.com/fxhedge/hedgegate/internal/gateway"
	"github.com/fxhedge/hedgegate/internal/model"
	"github.com/fxhedge/hedgegate/internal/pkg/apperrors"
	"github.com/fxhedge/hedgegate/internal/pkg/logger"
	"github.com/fxhedge/hedgegate/internal/pkg/metrics"
	"github.com/fxhedge/hedgegate/internal/schema"
)

// GatewayClient is the subset of *gateway.Client the hedge workflow needs.
type GatewayClient interface {
	RequestBindingQuote(ctx context.Context, input any, opts ...gateway.RequestOption) (*model.BindingQuoteResponse, error)
	FetchRiskPlan(ctx context.Context, input any, opts ...gateway.RequestOption) (*model.RiskPlanResponse, error)
	SubmitExecutionOrder(ctx context.Context, input any, opts ...gateway.RequestOption) (*model.ExecutionOrderResponse, error)
}

// HedgeService runs the BFF side of quoting, planning and execution: tenant
// risk checks around the resilient gateway client.
type HedgeService struct {
	client GatewayClient
	risk   *RiskEngine
}

// NewHedgeService accepts a nil client when the gateway is disabled; every
// call then fails with GATEWAY_DISABLED.
func NewHedgeService(client GatewayClient, risk *RiskEngine) *HedgeService {
	return &HedgeService{client: client, risk: risk}
}

func (s *HedgeService) Enabled() bool {
	return s.client != nil
}

func (s *HedgeService) Quote(ctx context.Context, tenant *model.Tenant, input any, opts ...gateway.RequestOption) (*model.BindingQuoteResponse, error) {
	if err := s.ensureEnabled(); err != nil {
		return nil, err
	}
	req, err := schema.ParseValue(contract.QuoteRequestSchema, input)
	if err != nil {
		return nil, err
	}
	if s.risk != nil && tenant != nil {
		if err := s.risk.CheckQuote(tenant, req); err != nil {
			return nil, err
		}
	}
	return s.client.RequestBindingQuote(ctx, req, opts...)
}

func (s *HedgeService) Plan(ctx context.Context, tenant *model.Tenant, input any, opts ...gateway.RequestOption) (*model.RiskPlanResponse, error) {
	if err := s.ensureEnabled(); err != nil {
		return nil, err
	}
	return s.client.FetchRiskPlan(ctx, input, opts...)
}

// Execute submits a hedge order. Dry runs skip the pre-trade checks and do
// not count towards daily usage.
func (s *HedgeService) Execute(ctx context.Context, tenant *model.Tenant, input any, opts ...gateway.RequestOption) (*model.ExecutionOrderResponse, error) {
	if err := s.ensureEnabled(); err != nil {
		return nil, err
	}
	req, err := schema.ParseValue(contract.ExecutionOrderRequestSchema, input)
	if err != nil {
		return nil, err
	}

	live := !req.DryRun && s.risk != nil && tenant != nil
	if live {
		if err := s.risk.CheckOrder(ctx, tenant, req); err != nil {
			metrics.OrdersTotal.WithLabelValues("rejected", string(req.Side)).Inc()
			return nil, err
		}
	}

	resp, err := s.client.SubmitExecutionOrder(ctx, req, opts...)
	if err != nil {
		metrics.OrdersTotal.WithLabelValues("failed", string(req.Side)).Inc()
		return nil, err
	}
	metrics.OrdersTotal.WithLabelValues("submitted", string(req.Side)).Inc()

	if live {
		if err := s.risk.PostOrderHook(ctx, tenant, req); err != nil {
			logger.FromContext(ctx).Error("failed to record daily usage", "tenant_id", tenant.ID, "error", err)
		}
	}
	return resp, nil
}

func (s *HedgeService) ensureEnabled() error {
	if s.client == nil {
		return apperrors.New(apperrors.ErrGatewayDisabled, "pricing gateway is disabled", nil)
	}
	return nil
}
