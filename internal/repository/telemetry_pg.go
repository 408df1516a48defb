package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/fxhedge/hedgegate/internal/model"
)

type telemetryRow struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	Endpoint  string `gorm:"size:32;index:idx_gateway_telemetry_endpoint_ts,priority:1"`
	Status    string `gorm:"size:16"`
	LatencyMs int64
	ErrorCode string    `gorm:"size:32"`
	UserID    string    `gorm:"index:idx_gateway_telemetry_user"`
	Timestamp time.Time `gorm:"column:occurred_at;index:idx_gateway_telemetry_endpoint_ts,priority:2"`
}

func (telemetryRow) TableName() string { return "gateway_telemetry" }

// PostgresTelemetryRepo persists every gateway attempt for later inspection.
type PostgresTelemetryRepo struct {
	db *gorm.DB
}

func NewPostgresTelemetryRepo(db *gorm.DB) *PostgresTelemetryRepo {
	return &PostgresTelemetryRepo{db: db}
}

func (r *PostgresTelemetryRepo) Insert(ctx context.Context, event model.TelemetryEvent) error {
	row := telemetryRow{
		Endpoint:  string(event.Endpoint),
		Status:    string(event.Status),
		LatencyMs: event.LatencyMs,
		ErrorCode: event.ErrorCode,
		UserID:    event.UserID,
		Timestamp: event.Timestamp.UTC(),
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *PostgresTelemetryRepo) List(ctx context.Context, q model.TelemetryQuery) ([]model.TelemetryEvent, error) {
	tx := r.db.WithContext(ctx).Model(&telemetryRow{})
	if q.Endpoint != "" {
		tx = tx.Where("endpoint = ?", string(q.Endpoint))
	}
	if q.Status != "" {
		tx = tx.Where("status = ?", string(q.Status))
	}
	if q.UserID != "" {
		tx = tx.Where("user_id = ?", q.UserID)
	}
	if q.From != nil {
		tx = tx.Where("occurred_at >= ?", q.From.UTC())
	}
	if q.To != nil {
		tx = tx.Where("occurred_at <= ?", q.To.UTC())
	}

	var rows []telemetryRow
	if err := tx.Order("occurred_at DESC").Order("id DESC").Limit(q.NormalizedLimit()).Find(&rows).Error; err != nil {
		return nil, err
	}
	events := make([]model.TelemetryEvent, 0, len(rows))
	for _, row := range rows {
		events = append(events, model.TelemetryEvent{
			Endpoint:  model.Endpoint(row.Endpoint),
			Status:    model.TelemetryStatus(row.Status),
			LatencyMs: row.LatencyMs,
			ErrorCode: row.ErrorCode,
			UserID:    row.UserID,
			Timestamp: row.Timestamp.UTC(),
		})
	}
	return events, nil
}

func (r *PostgresTelemetryRepo) Cleanup(ctx context.Context, olderThan time.Duration) error {
	if olderThan <= 0 {
		return nil
	}
	cutoff := time.Now().UTC().Add(-olderThan)
	return r.db.WithContext(ctx).Where("occurred_at < ?", cutoff).Delete(&telemetryRow{}).Error
}
