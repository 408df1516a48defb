package service

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

type usageKey struct {
	tenantID string
	day      string // UTC YYYY-MM-DD
}

type dailyUsage struct {
	orders   int
	notional decimal.Decimal
}

// RiskUsageStore 是 UsageRepo 的进程内实现，未配置 Redis/DB 时使用。
// 名义金额用 decimal 累加，跨日后旧的计数在下一次写入时清理。
type RiskUsageStore struct {
	mu    sync.Mutex
	usage map[usageKey]dailyUsage
	now   func() time.Time
}

func NewRiskUsageStore() *RiskUsageStore {
	return &RiskUsageStore{
		usage: make(map[usageKey]dailyUsage),
		now:   time.Now,
	}
}

func (s *RiskUsageStore) GetDailyUsage(_ context.Context, tenantID string) (int, float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.usage[s.key(tenantID)]
	return u.orders, u.notional.InexactFloat64(), nil
}

func (s *RiskUsageStore) AddDailyUsage(_ context.Context, tenantID string, orders int, amount float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := s.key(tenantID)
	for k := range s.usage {
		if k.day != key.day {
			delete(s.usage, k)
		}
	}
	u := s.usage[key]
	u.orders += orders
	u.notional = u.notional.Add(decimal.NewFromFloat(amount))
	s.usage[key] = u
	return nil
}

func (s *RiskUsageStore) key(tenantID string) usageKey {
	return usageKey{tenantID: tenantID, day: s.now().UTC().Format(time.DateOnly)}
}
