package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type dailyUsageRow struct {
	TenantID string `gorm:"primaryKey"`
	Date     string `gorm:"column:usage_date;primaryKey;size:10"`
	Orders   int
	Volume   float64
}

func (dailyUsageRow) TableName() string { return "risk_daily_usage" }

type PostgresUsageRepo struct {
	db  *gorm.DB
	now func() time.Time
}

func NewPostgresUsageRepo(db *gorm.DB) *PostgresUsageRepo {
	return &PostgresUsageRepo{db: db, now: time.Now}
}

func (r *PostgresUsageRepo) GetDailyUsage(ctx context.Context, tenantID string) (int, float64, error) {
	var row dailyUsageRow
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND usage_date = ?", tenantID, r.today()).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, err
	}
	return row.Orders, row.Volume, nil
}

func (r *PostgresUsageRepo) AddDailyUsage(ctx context.Context, tenantID string, orders int, amount float64) error {
	row := dailyUsageRow{TenantID: tenantID, Date: r.today(), Orders: orders, Volume: amount}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}, {Name: "usage_date"}},
		DoUpdates: clause.Assignments(map[string]any{
			"orders": gorm.Expr("risk_daily_usage.orders + ?", orders),
			"volume": gorm.Expr("risk_daily_usage.volume + ?", amount),
		}),
	}).Create(&row).Error
}

func (r *PostgresUsageRepo) today() string {
	return r.now().UTC().Format(time.DateOnly)
}
