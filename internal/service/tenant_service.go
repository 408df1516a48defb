package service

import (
	"context"
	"strings"

	"github.com/fxhedge/hedgegate/internal/model"
	"github.com/fxhedge/hedgegate/internal/pkg/apperrors"
	"github.com/fxhedge/hedgegate/internal/repository"
)

type TenantService struct {
	repo    TenantRepoCRUD
	manager *TenantManager
}

type TenantRepoCRUD interface {
	TenantRepo
	List(ctx context.Context, limit, offset int) ([]*model.Tenant, error)
	GetByID(ctx context.Context, id string) (*model.Tenant, error)
	Create(ctx context.Context, t *model.Tenant) error
	Update(ctx context.Context, t *model.Tenant) error
	Delete(ctx context.Context, id string) error
}

type TenantCreateRequest struct {
	ID     string                `json:"id" binding:"required"`
	Name   string                `json:"name"`
	APIKey string                `json:"api_key" binding:"required"`
	Risk   model.RiskLimits      `json:"risk"`
	Rate   model.RateLimitConfig `json:"rate_limit"`
}

type TenantUpdateRequest struct {
	Name   *string                `json:"name"`
	APIKey *string                `json:"api_key"`
	Risk   *model.RiskLimits      `json:"risk"`
	Rate   *model.RateLimitConfig `json:"rate_limit"`
}

// NewTenantService works against the database when repo is set and against
// the in-memory manager otherwise.
func NewTenantService(manager *TenantManager, repo TenantRepoCRUD) *TenantService {
	return &TenantService{
		repo:    repo,
		manager: manager,
	}
}

func (s *TenantService) List(ctx context.Context, limit, offset int) ([]*model.Tenant, error) {
	if s.repo != nil {
		return s.repo.List(ctx, limit, offset)
	}
	return s.manager.ListTenants(), nil
}

func (s *TenantService) Get(ctx context.Context, id string) (*model.Tenant, error) {
	if s.repo != nil {
		return s.repo.GetByID(ctx, id)
	}
	tenant, ok := s.manager.GetTenantByID(id)
	if !ok {
		return nil, repository.ErrTenantNotFound
	}
	return tenant, nil
}

func (s *TenantService) Create(ctx context.Context, req TenantCreateRequest) (*model.Tenant, error) {
	tenant := &model.Tenant{
		ID:     strings.TrimSpace(req.ID),
		Name:   req.Name,
		APIKey: strings.TrimSpace(req.APIKey),
		Risk:   req.Risk,
		Rate:   req.Rate,
	}
	if tenant.ID == "" || tenant.APIKey == "" {
		return nil, apperrors.NewInvalidRequest("id and api_key are required")
	}
	if _, taken := s.manager.GetTenantByApiKey(tenant.APIKey); taken {
		return nil, apperrors.New(apperrors.ErrConflict, "api_key already assigned", nil)
	}
	if s.repo != nil {
		if err := s.repo.Create(ctx, tenant); err != nil {
			return nil, err
		}
	}
	s.manager.RegisterTenant(tenant)
	return tenant, nil
}

func (s *TenantService) Update(ctx context.Context, id string, req TenantUpdateRequest) (*model.Tenant, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	// 不修改缓存中的实例，避免并发读到半更新状态
	tenant := *current

	if req.Name != nil {
		tenant.Name = *req.Name
	}
	if req.APIKey != nil && strings.TrimSpace(*req.APIKey) != "" {
		tenant.APIKey = strings.TrimSpace(*req.APIKey)
	}
	if req.Risk != nil {
		tenant.Risk = *req.Risk
	}
	if req.Rate != nil {
		tenant.Rate = *req.Rate
	}

	if s.repo != nil {
		if err := s.repo.Update(ctx, &tenant); err != nil {
			return nil, err
		}
	}
	s.manager.ReplaceTenant(&tenant)
	return &tenant, nil
}

func (s *TenantService) Delete(ctx context.Context, id string) error {
	if s.repo != nil {
		if err := s.repo.Delete(ctx, id); err != nil {
			return err
		}
	}
	s.manager.RemoveTenantByID(id)
	return nil
}
