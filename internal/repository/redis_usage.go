package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisUsageRepo 以 hash 存储租户当日的执行用量，key 两天后过期
type RedisUsageRepo struct {
	client *RedisClient
	prefix string
	now    func() time.Time
}

func NewRedisUsageRepo(client *RedisClient) *RedisUsageRepo {
	return &RedisUsageRepo{
		client: client,
		prefix: "risk",
		now:    time.Now,
	}
}

func (r *RedisUsageRepo) GetDailyUsage(ctx context.Context, tenantID string) (int, float64, error) {
	vals, err := r.client.Client.HMGet(ctx, r.makeKey(tenantID), "orders", "volume").Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, 0, err
	}
	orders, volume := 0, 0.0
	if len(vals) == 2 {
		if s, ok := vals[0].(string); ok {
			orders, _ = strconv.Atoi(s)
		}
		if s, ok := vals[1].(string); ok {
			volume, _ = strconv.ParseFloat(s, 64)
		}
	}
	return orders, volume, nil
}

func (r *RedisUsageRepo) AddDailyUsage(ctx context.Context, tenantID string, orders int, amount float64) error {
	key := r.makeKey(tenantID)
	pipe := r.client.Client.TxPipeline()
	if orders != 0 {
		pipe.HIncrBy(ctx, key, "orders", int64(orders))
	}
	if amount != 0 {
		pipe.HIncrByFloat(ctx, key, "volume", amount)
	}
	pipe.Expire(ctx, key, 48*time.Hour)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisUsageRepo) makeKey(tenantID string) string {
	date := r.now().UTC().Format(time.DateOnly)
	return fmt.Sprintf("%s:%s:%s", r.prefix, tenantID, date)
}
