package main

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/fxhedge/hedgegate/internal/config"
	"github.com/fxhedge/hedgegate/internal/pkg/logger"
	"github.com/fxhedge/hedgegate/internal/repository"
)

type cleaner interface {
	Cleanup(ctx context.Context, olderThan time.Duration) error
}

type retention struct {
	name      string
	store     cleaner
	olderThan time.Duration
}

// cleanupLoop prunes expired rows until ctx is cancelled. Non-positive
// retention settings disable the matching table.
func cleanupLoop(ctx context.Context, cfg config.DatabaseConfig, db *gorm.DB) {
	interval := time.Duration(cfg.CleanupIntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = time.Hour
	}

	var targets []retention
	if cfg.IdempotencyRetentionHours > 0 {
		targets = append(targets, retention{"idempotency_keys", repository.NewPostgresIdempotencyStore(db), time.Duration(cfg.IdempotencyRetentionHours) * time.Hour})
	}
	if cfg.AuditRetentionDays > 0 {
		targets = append(targets, retention{"audit_logs", repository.NewPostgresAuditRepo(db), time.Duration(cfg.AuditRetentionDays) * 24 * time.Hour})
	}
	if cfg.TelemetryRetentionDays > 0 {
		targets = append(targets, retention{"gateway_telemetry", repository.NewPostgresTelemetryRepo(db), time.Duration(cfg.TelemetryRetentionDays) * 24 * time.Hour})
	}
	if len(targets) == 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			for _, t := range targets {
				if err := t.store.Cleanup(ctx, t.olderThan); err != nil {
					logger.Warn("retention cleanup failed", "table", t.name, "error", err)
				}
			}
		case <-ctx.Done():
			return
		}
	}
}
