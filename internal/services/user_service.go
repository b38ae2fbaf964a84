package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"llmsaas/internal/common"
	"llmsaas/internal/models"
	"llmsaas/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserService interface {
	// Register creates a self-service account in an existing tenant.
	// The role is always "user".
	Register(ctx context.Context, email, password string, tenantID uuid.UUID) (*models.User, error)

	// CreateByAdmin creates an account in the admin's own tenant with a
	// caller-chosen role. The tenant can never be picked by the client.
	CreateByAdmin(ctx context.Context, admin *models.User, email, password, role string) (*models.User, error)

	// Authenticate returns the user on a credential match, or (nil, nil)
	// when either the email is unknown or the password is wrong. The two
	// cases are deliberately indistinguishable.
	Authenticate(ctx context.Context, email, password string) (*models.User, error)

	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.User, error)
}

type userService struct {
	userRepo   repositories.UserRepository
	tenantRepo repositories.TenantRepository
	logger     *zap.Logger
}

func NewUserService(userRepo repositories.UserRepository, tenantRepo repositories.TenantRepository, logger *zap.Logger) UserService {
	return &userService{
		userRepo:   userRepo,
		tenantRepo: tenantRepo,
		logger:     logger,
	}
}

func (s *userService) Register(ctx context.Context, email, password string, tenantID uuid.UUID) (*models.User, error) {
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	// The tenant must exist before we attach a user to it.
	if _, err := s.tenantRepo.GetByID(ctx, tenantID); err != nil {
		return nil, err
	}

	user, err := s.insert(ctx, email, password, models.RoleUser, tenantID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		zap.String("user_id", user.ID.String()),
		zap.String("tenant_id", user.TenantID.String()))
	return user, nil
}

func (s *userService) CreateByAdmin(ctx context.Context, admin *models.User, email, password, role string) (*models.User, error) {
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}
	if !models.ValidRole(role) {
		return nil, fmt.Errorf("unknown role %q: %w", role, common.ErrInvalid)
	}

	user, err := s.insert(ctx, email, password, role, admin.TenantID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("admin created user",
		zap.String("user_id", user.ID.String()),
		zap.String("role", user.Role),
		zap.String("tenant_id", admin.TenantID.String()),
		zap.String("created_by", admin.ID.String()))
	return user, nil
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			// Burn a hash comparison anyway so unknown-email and
			// wrong-password take the same time.
			CheckPassword(password, dummyHash)
			return nil, nil
		}
		return nil, err
	}

	if !CheckPassword(password, user.PasswordHash) {
		return nil, nil
	}
	return user, nil
}

func (s *userService) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.User, error) {
	return s.userRepo.ListByTenant(ctx, tenantID)
}

func (s *userService) insert(ctx context.Context, email, password, role string, tenantID uuid.UUID) (*models.User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		TenantID:     tenantID,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func validateCredentials(email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("a valid email is required: %w", common.ErrInvalid)
	}
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters: %w", common.ErrInvalid)
	}
	return nil
}
