package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fxhedge/hedgegate/internal/model"
	"github.com/fxhedge/hedgegate/internal/pkg/apperrors"
	"github.com/fxhedge/hedgegate/internal/pkg/metrics"
)

type UsageRepo interface {
	GetDailyUsage(ctx context.Context, tenantID string) (int, float64, error)
	AddDailyUsage(ctx context.Context, tenantID string, orders int, amount float64) error
}

type RiskEngine struct {
	repo UsageRepo
}

func NewRiskEngine(repo UsageRepo) *RiskEngine {
	return &RiskEngine{repo: repo}
}

// OrderNotional is quantity times the limit price, or times the strike when
// the order carries no limit.
func OrderNotional(req model.ExecutionOrderRequest) decimal.Decimal {
	price := decimal.NewFromFloat(req.LimitPrice)
	if price.IsZero() {
		price = decimal.NewFromFloat(req.Strike)
	}
	return decimal.NewFromFloat(req.Quantity).Mul(price)
}

// CheckQuote 报价前检查货币对是否被禁止
func (e *RiskEngine) CheckQuote(tenant *model.Tenant, req model.QuoteRequest) error {
	pair := normalizePair(req.CurrencyPair)
	for _, blocked := range tenant.Risk.BlockedPairs {
		if normalizePair(blocked) == pair {
			metrics.RiskRejects.WithLabelValues("blocked_pair").Inc()
			return apperrors.NewRiskReject(fmt.Sprintf("risk reject: currency pair %s is blocked", pair))
		}
	}
	return nil
}

// CheckOrder 执行下单前的所有风控检查
// 如果返回 error，则必须拒绝订单
func (e *RiskEngine) CheckOrder(ctx context.Context, tenant *model.Tenant, req model.ExecutionOrderRequest) error {
	limits := tenant.Risk

	// 1. 基础检查
	if req.Quantity <= 0 {
		metrics.RiskRejects.WithLabelValues("invalid_quantity").Inc()
		return apperrors.NewRiskReject("risk reject: quantity must be positive")
	}

	// 2. 滑点与阶梯挂单
	if limits.MaxSlippageBps > 0 && req.SlippageBps > limits.MaxSlippageBps {
		metrics.RiskRejects.WithLabelValues("slippage").Inc()
		return apperrors.NewRiskReject(fmt.Sprintf("risk reject: slippage %.1fbps exceeds limit %.1fbps", req.SlippageBps, limits.MaxSlippageBps))
	}
	if limits.MaxLadderRungs > 0 && req.Ladder.Rungs > limits.MaxLadderRungs {
		metrics.RiskRejects.WithLabelValues("ladder_rungs").Inc()
		return apperrors.NewRiskReject(fmt.Sprintf("risk reject: ladder of %d rungs exceeds limit %d", req.Ladder.Rungs, limits.MaxLadderRungs))
	}

	notional := OrderNotional(req)

	// 3. 单笔限额
	if limits.MaxOrderNotional > 0 && notional.GreaterThan(decimal.NewFromFloat(limits.MaxOrderNotional)) {
		metrics.RiskRejects.WithLabelValues("max_notional").Inc()
		return apperrors.NewRiskReject(fmt.Sprintf("risk reject: order notional %s exceeds limit %.2f",
			notional.StringFixed(2), limits.MaxOrderNotional))
	}

	// 4. 每日限额
	if limits.MaxDailyNotional > 0 || limits.MaxDailyOrders > 0 {
		currentOrders, currentVol, err := e.repo.GetDailyUsage(ctx, tenant.ID)
		if err != nil {
			return fmt.Errorf("risk check failed: %w", err)
		}

		total := decimal.NewFromFloat(currentVol).Add(notional)
		if limits.MaxDailyNotional > 0 && total.GreaterThan(decimal.NewFromFloat(limits.MaxDailyNotional)) {
			metrics.RiskRejects.WithLabelValues("daily_notional_limit").Inc()
			return apperrors.NewRiskReject(fmt.Sprintf("risk reject: daily notional limit exceeded (curr: %.2f, new: %s, max: %.2f)",
				currentVol, notional.StringFixed(2), limits.MaxDailyNotional))
		}
		if limits.MaxDailyOrders > 0 && currentOrders+1 > limits.MaxDailyOrders {
			metrics.RiskRejects.WithLabelValues("daily_order_limit").Inc()
			return apperrors.NewRiskReject(fmt.Sprintf("risk reject: daily order limit exceeded (curr: %d, max: %d)",
				currentOrders, limits.MaxDailyOrders))
		}
	}

	return nil
}

// PostOrderHook 下单成功后同步更新当日用量
func (e *RiskEngine) PostOrderHook(ctx context.Context, tenant *model.Tenant, req model.ExecutionOrderRequest) error {
	return e.repo.AddDailyUsage(ctx, tenant.ID, 1, OrderNotional(req).InexactFloat64())
}

func normalizePair(p string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(p), "/", ""))
}
