package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fxhedge/hedgegate/internal/model"
)

type idempotencyRow struct {
	IdemKey      string `gorm:"primaryKey"`
	StatusCode   int    `gorm:"not null;default:0"`
	ResponseBody []byte
	Processing   bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time `gorm:"index"`
}

func (idempotencyRow) TableName() string { return "idempotency_keys" }

type PostgresIdempotencyStore struct {
	db *gorm.DB
}

func NewPostgresIdempotencyStore(db *gorm.DB) *PostgresIdempotencyStore {
	return &PostgresIdempotencyStore{db: db}
}

func (s *PostgresIdempotencyStore) GetOrLock(ctx context.Context, key string) (*model.IdempotencyRecord, bool) {
	lock := idempotencyRow{IdemKey: key, Processing: true, CreatedAt: time.Now().UTC()}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&lock)
	if res.Error == nil && res.RowsAffected > 0 {
		return nil, false
	}

	var row idempotencyRow
	if err := s.db.WithContext(ctx).Where("idem_key = ?", key).Take(&row).Error; err != nil {
		return nil, false
	}
	return &model.IdempotencyRecord{
		Status:     row.StatusCode,
		Body:       row.ResponseBody,
		CreatedAt:  row.CreatedAt,
		Processing: row.Processing,
	}, true
}

func (s *PostgresIdempotencyStore) Save(ctx context.Context, key string, status int, body []byte) {
	s.db.WithContext(ctx).Model(&idempotencyRow{}).
		Where("idem_key = ?", key).
		Updates(map[string]any{
			"status_code":   status,
			"response_body": body,
			"processing":    false,
		})
}

func (s *PostgresIdempotencyStore) Unlock(ctx context.Context, key string) {
	s.db.WithContext(ctx).Where("idem_key = ?", key).Delete(&idempotencyRow{})
}

func (s *PostgresIdempotencyStore) Cleanup(ctx context.Context, olderThan time.Duration) error {
	if olderThan <= 0 {
		return nil
	}
	cutoff := time.Now().UTC().Add(-olderThan)
	return s.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&idempotencyRow{}).Error
}
