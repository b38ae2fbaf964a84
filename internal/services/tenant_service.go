package services

import (
	"context"
	"fmt"
	"strings"

	"llmsaas/internal/common"
	"llmsaas/internal/models"
	"llmsaas/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TenantService interface {
	Create(ctx context.Context, name string) (*models.Tenant, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	GetByName(ctx context.Context, name string) (*models.Tenant, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type tenantService struct {
	tenantRepo repositories.TenantRepository
	logger     *zap.Logger
}

func NewTenantService(tenantRepo repositories.TenantRepository, logger *zap.Logger) TenantService {
	return &tenantService{tenantRepo: tenantRepo, logger: logger}
}

func (s *tenantService) Create(ctx context.Context, name string) (*models.Tenant, error) {
	name = strings.TrimSpace(name)
	if len(name) < 2 {
		return nil, fmt.Errorf("tenant name must be at least 2 characters: %w", common.ErrInvalid)
	}

	tenant := &models.Tenant{
		ID:   uuid.New(),
		Name: name,
	}
	if err := s.tenantRepo.Create(ctx, tenant); err != nil {
		return nil, err
	}

	s.logger.Info("tenant created",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("name", tenant.Name))
	return tenant, nil
}

func (s *tenantService) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	return s.tenantRepo.GetByID(ctx, id)
}

func (s *tenantService) GetByName(ctx context.Context, name string) (*models.Tenant, error) {
	return s.tenantRepo.GetByName(ctx, strings.TrimSpace(name))
}

// Delete removes the tenant and, through the repository's transaction, all
// of its users and messages.
func (s *tenantService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.tenantRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("tenant deleted", zap.String("tenant_id", id.String()))
	return nil
}
