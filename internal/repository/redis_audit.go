package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fxhedge/hedgegate/internal/model"
)

// RedisAuditRepo keeps audit records in a single capped Redis list.
type RedisAuditRepo struct {
	client  *RedisClient
	listKey string
	listMax int
}

func NewRedisAuditRepo(client *RedisClient, listKey string, listMax int) *RedisAuditRepo {
	if listKey == "" {
		listKey = "audit_logs"
	}
	if listMax <= 0 {
		listMax = 10000
	}
	return &RedisAuditRepo{
		client:  client,
		listKey: listKey,
		listMax: listMax,
	}
}

// Insert pushes the record onto the capped audit list, newest first.
func (r *RedisAuditRepo) Insert(ctx context.Context, entry *model.AuditLog) error {
	if entry == nil {
		return nil
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode audit %s: %w", entry.ID, err)
	}
	return r.client.pushCapped(ctx, r.listKey, payload, r.listMax)
}

// List reads a window of the newest entries and filters it in memory; the
// list is capped so the window stays small.
func (r *RedisAuditRepo) List(ctx context.Context, tenantID string, limit int, from, to *time.Time) ([]*model.AuditLog, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	window := min(max(limit*5, 100), r.listMax)
	raw, err := r.client.Client.LRange(ctx, r.listKey, 0, int64(window-1)).Result()
	if err != nil {
		return nil, err
	}

	out := make([]*model.AuditLog, 0, limit)
	for _, item := range raw {
		entry := new(model.AuditLog)
		if json.Unmarshal([]byte(item), entry) != nil || !auditMatches(entry, tenantID, from, to) {
			continue
		}
		if out = append(out, entry); len(out) == limit {
			break
		}
	}
	return out, nil
}

func auditMatches(entry *model.AuditLog, tenantID string, from, to *time.Time) bool {
	switch {
	case tenantID != "" && entry.TenantID != tenantID:
		return false
	case from != nil && entry.CreatedAt.Before(*from):
		return false
	case to != nil && entry.CreatedAt.After(*to):
		return false
	}
	return true
}
