package repository

import (
	"context"
	"encoding/json"

	"github.com/fxhedge/hedgegate/internal/model"
)

// RedisTelemetryRepo keeps the most recent gateway attempts in a capped list.
type RedisTelemetryRepo struct {
	client  *RedisClient
	listKey string
	listMax int
}

func NewRedisTelemetryRepo(client *RedisClient, listKey string, listMax int) *RedisTelemetryRepo {
	if listKey == "" {
		listKey = "gateway_telemetry"
	}
	if listMax <= 0 {
		listMax = 5000
	}
	return &RedisTelemetryRepo{client: client, listKey: listKey, listMax: listMax}
}

func (r *RedisTelemetryRepo) Insert(ctx context.Context, event model.TelemetryEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return r.client.pushCapped(ctx, r.listKey, payload, r.listMax)
}

func (r *RedisTelemetryRepo) List(ctx context.Context, q model.TelemetryQuery) ([]model.TelemetryEvent, error) {
	limit := q.NormalizedLimit()
	items, err := r.client.Client.LRange(ctx, r.listKey, 0, int64(r.listMax-1)).Result()
	if err != nil {
		return nil, err
	}
	results := make([]model.TelemetryEvent, 0, min(limit, len(items)))
	for _, raw := range items {
		var ev model.TelemetryEvent
		if err := json.Unmarshal([]byte(raw), &ev); err != nil {
			continue
		}
		if !q.Matches(ev) {
			continue
		}
		results = append(results, ev)
		if len(results) >= limit {
			break
		}
	}
	return results, nil
}
