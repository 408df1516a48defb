package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/fxhedge/hedgegate/internal/model"
)

// DB Model，风控与限流配置以 JSON 列存储
type tenantRow struct {
	ID        string                `gorm:"primaryKey"`
	Name      string                `gorm:"size:128"`
	APIKey    string                `gorm:"uniqueIndex"`
	Risk      model.RiskLimits      `gorm:"serializer:json"`
	Rate      model.RateLimitConfig `gorm:"serializer:json"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (tenantRow) TableName() string { return "tenants" }

func (row *tenantRow) toDomain() *model.Tenant {
	return &model.Tenant{
		ID:     row.ID,
		Name:   row.Name,
		APIKey: row.APIKey,
		Risk:   row.Risk,
		Rate:   row.Rate,
	}
}

func fromDomain(t *model.Tenant) *tenantRow {
	return &tenantRow{
		ID:     t.ID,
		Name:   t.Name,
		APIKey: t.APIKey,
		Risk:   t.Risk,
		Rate:   t.Rate,
	}
}

type PostgresTenantRepo struct {
	db *gorm.DB
}

func NewPostgresTenantRepo(db *gorm.DB) *PostgresTenantRepo {
	return &PostgresTenantRepo{db: db}
}

func (r *PostgresTenantRepo) GetByApiKey(ctx context.Context, apiKey string) (*model.Tenant, error) {
	return r.first(ctx, "api_key = ?", apiKey)
}

func (r *PostgresTenantRepo) GetByID(ctx context.Context, id string) (*model.Tenant, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *PostgresTenantRepo) first(ctx context.Context, cond string, arg any) (*model.Tenant, error) {
	var row tenantRow
	err := r.db.WithContext(ctx).Where(cond, arg).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTenantNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *PostgresTenantRepo) Create(ctx context.Context, t *model.Tenant) error {
	return r.db.WithContext(ctx).Create(fromDomain(t)).Error
}

func (r *PostgresTenantRepo) List(ctx context.Context, limit, offset int) ([]*model.Tenant, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	var rows []tenantRow
	if err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, err
	}
	results := make([]*model.Tenant, 0, len(rows))
	for i := range rows {
		results = append(results, rows[i].toDomain())
	}
	return results, nil
}

func (r *PostgresTenantRepo) Update(ctx context.Context, t *model.Tenant) error {
	row := fromDomain(t)
	row.UpdatedAt = time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&tenantRow{ID: t.ID}).
		Select("name", "api_key", "risk", "rate", "updated_at").
		Updates(row)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrTenantNotFound
	}
	return nil
}

func (r *PostgresTenantRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&tenantRow{ID: id}).Error
}
