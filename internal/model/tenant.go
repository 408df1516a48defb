package model

// RiskLimits 定义租户维度的下单前风控规则，0 表示不限制
type RiskLimits struct {
	MaxOrderNotional float64  `json:"max_order_notional"` // 单笔 quantity * limit_price 上限
	MaxDailyNotional float64  `json:"max_daily_notional"` // 单日累计上限
	MaxDailyOrders   int      `json:"max_daily_orders"`   // 单日订单数上限
	MaxSlippageBps   float64  `json:"max_slippage_bps"`   // 允许的最大滑点
	MaxLadderRungs   int      `json:"max_ladder_rungs"`
	BlockedPairs     []string `json:"blocked_pairs,omitempty"` // 禁止报价的货币对
}

// RateLimitConfig 定义租户的限流规则
type RateLimitConfig struct {
	QPS   float64 `json:"qps"`   // 每秒查询数
	Burst int     `json:"burst"` // 突发桶大小
}

// Tenant 代表一个接入方 (企业财资团队、内部运营台)
type Tenant struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	APIKey string          `json:"api_key"` // 网关颁发给租户的 Access Key
	Risk   RiskLimits      `json:"risk"`
	Rate   RateLimitConfig `json:"rate_limit"`
}
